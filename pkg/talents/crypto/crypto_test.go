package crypto

import (
	"context"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talon-assistant/talent-catalog/pkg/talent"
	"github.com/talon-assistant/talent-catalog/pkg/webapi"
)

const coinGeckoFixture = `{
  "name": "Bitcoin",
  "symbol": "btc",
  "market_data": {
    "current_price": {"usd": 64250.5, "eur": 59000},
    "price_change_percentage_24h": -1.234,
    "price_change_percentage_7d": 4.5,
    "market_cap": {"usd": 1265000000000},
    "total_volume": {"usd": 28500000000},
    "high_24h": {"usd": 65000},
    "low_24h": {"usd": 63000.25},
    "ath": {"usd": 73738}
  }
}`

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/coins/bitcoin", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "false", r.URL.Query().Get("tickers"))
		_, _ = w.Write([]byte(coinGeckoFixture))
	})
	mux.HandleFunc("/coins/markets", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "eur", r.URL.Query().Get("vs_currency"))
		_, _ = w.Write([]byte(`[
		  {"market_cap_rank": 1, "name": "Bitcoin", "current_price": 59000, "price_change_percentage_24h": 2.31, "market_cap": 1160000000000},
		  {"market_cap_rank": null, "name": "Some Extremely Long Coin Name", "current_price": 0.005, "price_change_percentage_24h": null, "market_cap": 950000}
		]`))
	})
	mux.HandleFunc("/simple/price", func(w http.ResponseWriter, r *http.Request) {
		ids := r.URL.Query().Get("ids")
		switch ids {
		case "ethereum":
			_, _ = w.Write([]byte(`{"ethereum": {"usd": 3000}}`))
		default:
			assert.Equal(t, "bitcoin,shiba-inu", ids)
			_, _ = w.Write([]byte(`{"bitcoin": {"usd": 64000, "usd_24h_change": 1.26}, "shiba-inu": {"usd": 0.0000231, "usd_24h_change": -3.04}}`))
		}
	})
	mux.HandleFunc("/coins/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTalent(t *testing.T, opts ...Option) *Talent {
	srv := newServer(t)
	opts = append([]Option{WithAPI(webapi.New("CoinGecko"), srv.URL)}, opts...)
	return New(nil, opts...)
}

func run(tl *Talent, text string) talent.Result {
	return tl.Execute(context.Background(), talent.NewCommand(text))
}

func TestCoinPrice(t *testing.T) {
	tl := newTalent(t)
	res := run(tl, "what's the bitcoin price")
	require.True(t, res.Success, res.Response)
	assert.Equal(t, strings.Join([]string{
		"Bitcoin (BTC)",
		"  Price: $64,250.50 USD",
		"  24h Change: " + downArrow + " -1.23%",
		"  7d Change: +4.50%",
		"  24h Range: $63,000.25 - $65,000.00",
		"  Market Cap: $1.3T USD",
		"  24h Volume: $28.5B USD",
		"  All-Time High: $73,738.00 USD",
	}, "\n"), res.Response)
	assert.Equal(t, talent.Action{Action: "crypto", Target: "bitcoin"}, res.Actions[0])
}

func TestUnknownCoin(t *testing.T) {
	tl := newTalent(t)
	res := run(tl, "crypto price of zzcoin")
	assert.False(t, res.Success)
	assert.Empty(t, res.Actions)
	assert.Equal(t, "Coin not found: zzcoin", res.Response)
}

func TestTopCoins(t *testing.T) {
	tl := newTalent(t)
	require.NoError(t, tl.UpdateConfig(schema.Resolve(map[string]any{"currency": "eur"})))

	res := run(tl, "show me the top crypto prices")
	require.True(t, res.Success, res.Response)
	lines := strings.Split(res.Response, "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "Top 10 Cryptocurrencies (EUR):", lines[0])
	assert.Equal(t, "  #   Name                   Price      24h      Mkt Cap", lines[2])
	assert.Equal(t, "  1   Bitcoin           $59,000.00    +2.3%        $1.2T", lines[4])
	assert.Equal(t, "  ?   Some Extremely   $0.00500000    +0.0%     $950,000", lines[5])
}

func TestWatchlist(t *testing.T) {
	tl := newTalent(t)

	res := run(tl, "crypto")
	assert.False(t, res.Success)
	assert.Equal(t, "Which cryptocurrency? Try 'bitcoin price' or 'check ethereum'.", res.Response)

	require.NoError(t, tl.UpdateConfig(schema.Resolve(map[string]any{"watchlist": "BTC, shib"})))
	res = run(tl, "crypto")
	require.True(t, res.Success, res.Response)
	assert.Equal(t, "Crypto Prices (USD):\n\n  Bitcoin: $64,000.00 \u2b06 +1.3%\n  Shiba Inu: $0.00002310 \u2b07 -3.0%", res.Response)
}

func TestRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	tl := New(nil, WithAPI(webapi.New("CoinGecko"), srv.URL))
	res := run(tl, "ethereum price")
	assert.False(t, res.Success)
	assert.Equal(t, "CoinGecko rate limit reached. Please wait a minute and try again.", res.Response)
}

type balances map[common.Address]*big.Int

func (b balances) BalanceAt(_ context.Context, a common.Address, _ *big.Int) (*big.Int, error) {
	if v, ok := b[a]; ok {
		return v, nil
	}
	return nil, errors.New("unknown account")
}

func TestWalletBalance(t *testing.T) {
	const addr = "0x00000000219ab540356cBB839Cbe05303d7705Fa"
	wei, _ := new(big.Int).SetString("1500000000000000000", 10)
	var dialed string
	tl := newTalent(t, WithDialer(func(_ context.Context, rawURL string) (BalanceReader, error) {
		dialed = rawURL
		return balances{common.HexToAddress(addr): wei}, nil
	}))

	res := run(tl, "eth balance of "+addr)
	assert.False(t, res.Success)
	assert.Contains(t, res.Response, "eth_rpc_url")

	require.NoError(t, tl.UpdateConfig(schema.Resolve(map[string]any{"eth_rpc_url": "http://node:8545"})))
	res = run(tl, "eth balance of "+addr)
	require.True(t, res.Success, res.Response)
	assert.Equal(t, "http://node:8545", dialed)
	assert.Equal(t, "Wallet 0x0000…05Fa\n  Balance: 1.5 ETH\n  Value: $4,500.00 USD", res.Response)
}

func TestParse(t *testing.T) {
	assert.Equal(t, intent{kind: intentCoin, coin: "ethereum"}, parse("check ethereum"))
	assert.Equal(t, intent{kind: intentCoin, coin: "avalanche-2"}, parse("price of avax today"))
	assert.Equal(t, intent{kind: intentCoin, coin: "pepe"}, parse("how much is pepe"))
	assert.Equal(t, intent{kind: intentTop}, parse("crypto market overview"))
	assert.Equal(t, intent{kind: intentWatchlist}, parse("crypto"))
	assert.Equal(t, []string{"bitcoin", "matic-network", "pepe"}, parseWatchlist("btc, Polygon,,pepe, x"))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "$1,234.57", formatPrice(1234.567))
	assert.Equal(t, "$0.5000", formatPrice(0.5))
	assert.Equal(t, "$12,346", formatLarge(12345.6))
	assert.Equal(t, "$2.0M", formatLarge(2e6))
}

func TestCanHandle(t *testing.T) {
	tl := New(nil)
	assert.True(t, tl.CanHandle("bitcoin price"))
	assert.True(t, tl.CanHandle("check ethereum"))
	assert.False(t, tl.CanHandle("bitcoin stock ticker"))
	assert.False(t, tl.CanHandle("add task buy bitcoin"))
}
