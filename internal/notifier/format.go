package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/MaksimYurchanka/pump-monitor/internal/db/model"
	"github.com/MaksimYurchanka/pump-monitor/internal/types"
)

// FormatNewTokenAlert renders the discovery alert for a freshly tracked token.
func FormatNewTokenAlert(c *types.Candidate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🆕 <b>New token:</b> %s (%s)\n", html.EscapeString(c.Name), html.EscapeString(c.Symbol))
	fmt.Fprintf(&b, "💰 Market cap: %s\n", FormatUSD(c.MarketCapUsd))
	fmt.Fprintf(&b, "💧 Liquidity: %s\n", FormatUSD(c.LiquidityUsd))
	fmt.Fprintf(&b, "📊 Volume 24h: %s\n", FormatUSD(c.Volume24hUsd))
	fmt.Fprintf(&b, "📈 Price: %s\n", FormatPrice(c.PriceUsd))
	if !c.CreatedAt.IsZero() {
		fmt.Fprintf(&b, "🕐 Created: %s\n", c.CreatedAt.UTC().Format("2006-01-02 15:04:05 UTC"))
	}
	fmt.Fprintf(&b, "🔑 <code>%s</code>", c.TokenAddress)
	if c.Creator != "" {
		fmt.Fprintf(&b, "\n👤 Creator: <code>%s</code>", ShortAddress(c.Creator))
	}
	if c.URL != "" {
		fmt.Fprintf(&b, "\n🔗 %s", c.URL)
	}
	return b.String()
}

// FormatMilestoneAlert renders a multiplier achievement for a tracked token.
// The graduation rung at the top of the ladder gets its own framing.
func FormatMilestoneAlert(token *model.TokenDocument, multiplier, priceUsd, marketCapUsd float64) string {
	var b strings.Builder
	if multiplier >= types.TopOfLadder() {
		fmt.Fprintf(&b, "🎓 <b>%s hit %gx and graduated!</b>\n", html.EscapeString(token.Symbol), multiplier)
	} else {
		fmt.Fprintf(&b, "🚀 <b>%s hit %gx!</b>\n", html.EscapeString(token.Symbol), multiplier)
	}
	fmt.Fprintf(&b, "💰 Market cap: %s (from %s)\n", FormatUSD(marketCapUsd), FormatUSD(token.InitialMarketCapUsd))
	fmt.Fprintf(&b, "📈 Price: %s\n", FormatPrice(priceUsd))
	if !token.CreatedAt.IsZero() {
		fmt.Fprintf(&b, "⏱ %s since launch\n", FormatElapsed(time.Since(token.CreatedAt)))
	}
	fmt.Fprintf(&b, "🔑 <code>%s</code>", token.TokenAddress)
	if token.URL != "" {
		fmt.Fprintf(&b, "\n🔗 %s", token.URL)
	}
	return b.String()
}

// FormatSerialCreatorAlert renders a repeat-creator notice. Above the caution
// threshold the tone shifts from informational to warning. A nil latest
// snapshot renders the address-only body.
func FormatSerialCreatorAlert(address string, tokenCount int, caution bool, latest *types.Candidate) string {
	var b strings.Builder
	if caution {
		fmt.Fprintf(&b, "⚠️ <b>Caution: serial creator</b>\n")
	} else {
		fmt.Fprintf(&b, "👀 <b>Repeat creator spotted</b>\n")
	}
	fmt.Fprintf(&b, "👤 <code>%s</code>\n", ShortAddress(address))
	fmt.Fprintf(&b, "🪙 Tokens launched: %d", tokenCount)
	writeLatestToken(&b, latest)
	return b.String()
}

// FormatBlacklistAlert renders the one-time notice that an actor dropped
// below the blacklist threshold.
func FormatBlacklistAlert(address string, score, tokenCount int, latest *types.Candidate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "⛔️ <b>Actor blacklisted</b>\n")
	fmt.Fprintf(&b, "👤 <code>%s</code>\n", ShortAddress(address))
	fmt.Fprintf(&b, "📉 Reputation: %d\n", score)
	fmt.Fprintf(&b, "🪙 Tokens launched: %d", tokenCount)
	writeLatestToken(&b, latest)
	return b.String()
}

func writeLatestToken(b *strings.Builder, latest *types.Candidate) {
	if latest == nil {
		return
	}
	fmt.Fprintf(b, "\n\n<b>Latest:</b> %s (%s)\n", html.EscapeString(latest.Name), html.EscapeString(latest.Symbol))
	fmt.Fprintf(b, "💰 Market cap: %s\n", FormatUSD(latest.MarketCapUsd))
	fmt.Fprintf(b, "💧 Liquidity: %s\n", FormatUSD(latest.LiquidityUsd))
	fmt.Fprintf(b, "📈 Price: %s\n", FormatPrice(latest.PriceUsd))
	fmt.Fprintf(b, "🔑 <code>%s</code>", latest.TokenAddress)
}

// FormatBootstrapSummary renders the startup digest: total tracked tokens and
// up to ten of the most recent ones.
func FormatBootstrapSummary(tokens []model.TokenDocument, total int) string {
	if total == 0 {
		return "🔍 Monitoring started. No tokens in the current window yet."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🔍 <b>Monitoring started:</b> %d token(s) in window\n", total)

	shown := tokens
	if len(shown) > 10 {
		shown = shown[:10]
	}
	for i, token := range shown {
		fmt.Fprintf(&b, "%d. %s (%s) %s\n",
			i+1, html.EscapeString(token.Name), html.EscapeString(token.Symbol), FormatUSD(token.LastMarketCapUsd))
	}
	if total > len(shown) {
		fmt.Fprintf(&b, "… and %d more", total-len(shown))
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatUSD renders a dollar amount with K/M/B suffixes.
func FormatUSD(v float64) string {
	switch {
	case v >= 1_000_000_000:
		return fmt.Sprintf("$%.2fB", v/1_000_000_000)
	case v >= 1_000_000:
		return fmt.Sprintf("$%.2fM", v/1_000_000)
	case v >= 1_000:
		return fmt.Sprintf("$%.1fK", v/1_000)
	default:
		return fmt.Sprintf("$%.2f", v)
	}
}

// FormatPrice renders a token price, keeping significant digits for sub-cent
// values typical of new pairs.
func FormatPrice(v float64) string {
	switch {
	case v >= 1:
		return fmt.Sprintf("$%.4f", v)
	case v >= 0.01:
		return fmt.Sprintf("$%.6f", v)
	default:
		return fmt.Sprintf("$%.10f", v)
	}
}

// FormatElapsed renders a duration as a compact age, minute resolution.
func FormatElapsed(d time.Duration) string {
	if d < time.Minute {
		return "<1m"
	}
	d = d.Round(time.Minute)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	switch {
	case h == 0:
		return fmt.Sprintf("%dm", m)
	case m == 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dh%dm", h, m)
	}
}

// ShortAddress abbreviates a long address to its ends.
func ShortAddress(addr string) string {
	if len(addr) <= 12 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-4:]
}
