package dexclient

import (
	"strconv"
	"time"
)

type Token struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
}

type Liquidity struct {
	Usd float64 `json:"usd"`
}

type Volume struct {
	H24 float64 `json:"h24"`
}

// Pair is the wire shape of a trading pair as returned by the listings feed.
// PriceUsd is a decimal string on the wire to avoid float truncation of
// sub-cent prices.
type Pair struct {
	ChainID       string    `json:"chainId"`
	PairAddress   string    `json:"pairAddress"`
	BaseToken     Token     `json:"baseToken"`
	PriceUsd      string    `json:"priceUsd"`
	MarketCap     float64   `json:"marketCap"`
	Liquidity     Liquidity `json:"liquidity"`
	Volume        Volume    `json:"volume"`
	PairCreatedAt int64     `json:"pairCreatedAt"` // unix ms
	Creator       string    `json:"creator"`
	URL           string    `json:"url"`
}

func (p *Pair) PriceUsdFloat() float64 {
	price, err := strconv.ParseFloat(p.PriceUsd, 64)
	if err != nil {
		return 0
	}
	return price
}

// CreatedTime returns the pair creation time, or the zero time when the feed
// did not provide one.
func (p *Pair) CreatedTime() time.Time {
	if p.PairCreatedAt <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(p.PairCreatedAt)
}

type pairsResponse struct {
	Pairs []Pair `json:"pairs"`
}
