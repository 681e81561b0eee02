package notifier

import "strings"

// MaxMessageLen is the Telegram hard cap on message text length.
const MaxMessageLen = 4096

// SplitMessage breaks text into chunks no longer than limit, preferring line
// boundaries. A single line longer than limit is hard-split.
func SplitMessage(text string, limit int) []string {
	if limit <= 0 || len(text) <= limit {
		return []string{text}
	}

	var (
		chunks  []string
		current strings.Builder
	)
	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
		}
	}

	for _, line := range strings.Split(text, "\n") {
		// hard-split lines that cannot fit on their own
		for len(line) > limit {
			flush()
			chunks = append(chunks, line[:limit])
			line = line[limit:]
		}

		need := len(line)
		if current.Len() > 0 {
			need++ // newline separator
		}
		if current.Len()+need > limit {
			flush()
		}
		if current.Len() > 0 {
			current.WriteByte('\n')
		}
		current.WriteString(line)
	}
	flush()

	return chunks
}
