package crypto

import (
	"regexp"
	"strings"
)

type alias struct{ name, id string }

// aliases maps names and symbols to CoinGecko ids. Order matters: the first
// alias found in the command wins.
var aliases = []alias{
	{"bitcoin", "bitcoin"}, {"btc", "bitcoin"},
	{"ethereum", "ethereum"}, {"eth", "ethereum"},
	{"solana", "solana"}, {"sol", "solana"},
	{"cardano", "cardano"}, {"ada", "cardano"},
	{"dogecoin", "dogecoin"}, {"doge", "dogecoin"},
	{"polkadot", "polkadot"}, {"dot", "polkadot"},
	{"avalanche", "avalanche-2"}, {"avax", "avalanche-2"},
	{"chainlink", "chainlink"}, {"link", "chainlink"},
	{"polygon", "matic-network"}, {"matic", "matic-network"},
	{"litecoin", "litecoin"}, {"ltc", "litecoin"},
	{"xrp", "ripple"}, {"ripple", "ripple"},
	{"bnb", "binancecoin"}, {"binance", "binancecoin"},
	{"tron", "tron"}, {"trx", "tron"},
	{"shiba", "shiba-inu"}, {"shib", "shiba-inu"},
}

var aliasIndex = func() map[string]string {
	m := make(map[string]string, len(aliases))
	for _, a := range aliases {
		m[a.name] = a.id
	}
	return m
}()

type intentKind int

const (
	intentCoin intentKind = iota
	intentTop
	intentWallet
	intentWatchlist
)

type intent struct {
	kind    intentKind
	coin    string // intentCoin
	address string // intentWallet
}

var (
	topPhrases     = []string{"top crypto", "top coin", "market overview", "crypto market", "crypto prices"}
	addressPattern = regexp.MustCompile(`0x[0-9a-fA-F]{40}`)
	namePattern    = regexp.MustCompile(`(?:price of|check|how much is|price for)\s+(\w+)`)
)

func parse(text string) intent {
	if addr := addressPattern.FindString(text); addr != "" {
		return intent{kind: intentWallet, address: addr}
	}

	cmd := strings.TrimSpace(strings.ToLower(text))
	for _, p := range topPhrases {
		if strings.Contains(cmd, p) {
			return intent{kind: intentTop}
		}
	}
	if id := extractCoin(cmd); id != "" {
		return intent{kind: intentCoin, coin: id}
	}
	return intent{kind: intentWatchlist}
}

func extractCoin(cmd string) string {
	for _, a := range aliases {
		if strings.Contains(cmd, a.name) {
			return a.id
		}
	}
	if m := namePattern.FindStringSubmatch(cmd); m != nil {
		return resolveCoin(m[1])
	}
	return ""
}

// resolveCoin maps a name to a CoinGecko id, passing unknown names through
// as ids.
func resolveCoin(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))
	if id, ok := aliasIndex[name]; ok {
		return id
	}
	if len(name) > 1 {
		return name
	}
	return ""
}

func parseWatchlist(s string) []string {
	var ids []string
	for _, part := range strings.Split(s, ",") {
		if id := resolveCoin(part); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
