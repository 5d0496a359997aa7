package stock

import (
	"regexp"
	"strings"
)

const maxTickers = 5

var (
	tickerPattern = regexp.MustCompile(`\b([A-Z]{1,5})\b`)
	noise         = map[string]bool{
		"I": true, "A": true, "AND": true, "OR": true, "THE": true, "FOR": true,
		"OF": true, "IN": true, "IS": true, "IT": true, "TO": true, "MY": true,
		"HOW": true, "VS": true, "NYSE": true, "NASDAQ": true, "SP": true,
	}
	infoPhrases = []string{"info", "detail", "about", "tell me about"}
)

// extractTickers returns up to five upper-case symbols from the original
// (not lower-cased) command.
func extractTickers(command string) []string {
	var tickers []string
	for _, m := range tickerPattern.FindAllStringSubmatch(command, -1) {
		if noise[m[1]] {
			continue
		}
		tickers = append(tickers, m[1])
		if len(tickers) == maxTickers {
			break
		}
	}
	return tickers
}

func parseWatchlist(s string) []string {
	var tickers []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.ToUpper(strings.TrimSpace(part)); t != "" {
			tickers = append(tickers, t)
		}
	}
	return tickers
}

func wantsInfo(command string) bool {
	cmd := strings.ToLower(command)
	for _, p := range infoPhrases {
		if strings.Contains(cmd, p) {
			return true
		}
	}
	return false
}
