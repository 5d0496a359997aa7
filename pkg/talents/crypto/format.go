package crypto

import (
	"fmt"
	"math/big"
	"strings"
	"unicode"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
)

func formatPrice(p float64) string {
	switch {
	case p >= 1:
		return "$" + humanize.FormatFloat("#,###.##", p)
	case p >= 0.01:
		return fmt.Sprintf("$%.4f", p)
	default:
		return fmt.Sprintf("$%.8f", p)
	}
}

func formatLarge(v float64) string {
	switch {
	case v >= 1e12:
		return fmt.Sprintf("$%.1fT", v/1e12)
	case v >= 1e9:
		return fmt.Sprintf("$%.1fB", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("$%.1fM", v/1e6)
	default:
		return "$" + humanize.FormatFloat("#,###.", v)
	}
}

// cell pads or truncates s to exactly w terminal columns.
func cell(s string, w int) string {
	return runewidth.FillRight(runewidth.Truncate(s, w, ""), w)
}

func rcell(s string, w int) string {
	return runewidth.FillLeft(s, w)
}

// displayName turns an id like "shiba-inu" into "Shiba Inu".
func displayName(id string) string {
	words := strings.Fields(strings.ReplaceAll(id, "-", " "))
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// etherFromWei renders a wei amount in ether with up to six decimals.
func etherFromWei(wei *big.Int) (string, float64) {
	eth := new(big.Float).Quo(new(big.Float).SetInt(wei), big.NewFloat(1e18))
	f, _ := eth.Float64()
	return humanize.FtoaWithDigits(f, 6), f
}

func shortAddress(addr string) string {
	if len(addr) < 12 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-4:]
}
