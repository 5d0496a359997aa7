// Package crypto reports cryptocurrency prices from CoinGecko and Ethereum
// wallet balances from a JSON-RPC node.
package crypto

import (
	"context"
	"fmt"
	"math/big"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"golang.org/x/time/rate"

	"github.com/talon-assistant/talent-catalog/pkg/talent"
	"github.com/talon-assistant/talent-catalog/pkg/webapi"
)

// DefaultBaseURL is the public CoinGecko v3 API.
const DefaultBaseURL = "https://api.coingecko.com/api/v3"

const (
	upArrow      = "\u2b06\ufe0f"
	downArrow    = "\u2b07\ufe0f"
	topCoinCount = 10
)

var info = talent.Info{
	Name:        "crypto",
	Description: "Check cryptocurrency prices, market cap, and 24h changes",
	Keywords: []string{
		"crypto", "cryptocurrency", "bitcoin", "btc", "ethereum", "eth",
		"coin price", "token price", "dogecoin", "solana",
	},
	Exclusions: []string{
		"remind", "timer", "email", "note", "weather", "hue",
		"light", "search", "news", "todo", "task", "pomodoro",
		"docker", "github", "regex", "json", "snippet",
		"stock", "ticker", "shares", "nasdaq",
	},
	Priority: 50,
}

var schema = talent.Schema{Fields: []talent.Field{
	talent.Choice("currency", "Display Currency", "usd", "usd", "eur", "gbp", "jpy", "cad", "aud"),
	talent.String("watchlist", "Watchlist (comma-separated coins)", ""),
	talent.String("eth_rpc_url", "Ethereum RPC URL (wallet balances)", ""),
}}

// BalanceReader reads an account balance in wei. *ethclient.Client
// satisfies it.
type BalanceReader interface {
	BalanceAt(ctx context.Context, account common.Address, block *big.Int) (*big.Int, error)
}

// Dialer connects to an Ethereum node.
type Dialer func(ctx context.Context, rawURL string) (BalanceReader, error)

// DialEthereum is the default Dialer.
func DialEthereum(ctx context.Context, rawURL string) (BalanceReader, error) {
	c, err := ethclient.DialContext(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// NewClient returns the CoinGecko client: responses cached for a minute and
// requests limited to one every two seconds with a burst of five.
func NewClient() *webapi.Client {
	return webapi.New("CoinGecko",
		webapi.WithCache(time.Minute),
		webapi.WithRateLimit(rate.Every(2*time.Second), 5),
	)
}

type settings struct {
	currency  string
	watchlist []string
	rpcURL    string
}

// Talent answers price questions.
type Talent struct {
	talent.Base
	api     *webapi.Client
	baseURL string
	dial    Dialer
	logger  *log.Logger
	cfg     atomic.Pointer[settings]
}

// Option configures a Talent.
type Option func(*Talent)

// WithAPI points the talent at a different CoinGecko client and base URL.
func WithAPI(api *webapi.Client, baseURL string) Option {
	return func(t *Talent) {
		t.api = api
		t.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithDialer replaces the Ethereum dialer.
func WithDialer(d Dialer) Option {
	return func(t *Talent) { t.dial = d }
}

func New(logger *log.Logger, opts ...Option) *Talent {
	if logger == nil {
		logger = log.Default()
	}
	t := &Talent{
		Base:    talent.NewBase(info),
		api:     NewClient(),
		baseURL: DefaultBaseURL,
		dial:    DialEthereum,
		logger:  logger.With("talent", info.Name),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.apply(schema.Defaults())
	return t
}

func (t *Talent) ConfigSchema() talent.Schema { return schema }

func (t *Talent) Initialize(cfg talent.Config) error   { t.apply(cfg); return nil }
func (t *Talent) UpdateConfig(cfg talent.Config) error { t.apply(cfg); return nil }

func (t *Talent) apply(cfg talent.Config) {
	t.cfg.Store(&settings{
		currency:  cfg.String("currency"),
		watchlist: parseWatchlist(cfg.String("watchlist")),
		rpcURL:    strings.TrimSpace(cfg.String("eth_rpc_url")),
	})
}

func (t *Talent) Execute(ctx context.Context, cmd talent.Command) talent.Result {
	s := t.cfg.Load()
	in := parse(cmd.Text)
	switch in.kind {
	case intentTop:
		return t.top(ctx, s.currency)
	case intentWallet:
		return t.wallet(ctx, s, in.address)
	case intentCoin:
		return t.coin(ctx, in.coin, s.currency)
	default:
		if len(s.watchlist) > 0 {
			return t.prices(ctx, s.watchlist, s.currency)
		}
		return talent.Fail("Which cryptocurrency? Try 'bitcoin price' or 'check ethereum'.")
	}
}

type coinDetail struct {
	Name       string `json:"name"`
	Symbol     string `json:"symbol"`
	MarketData struct {
		CurrentPrice map[string]float64 `json:"current_price"`
		Change24h    float64            `json:"price_change_percentage_24h"`
		Change7d     float64            `json:"price_change_percentage_7d"`
		MarketCap    map[string]float64 `json:"market_cap"`
		TotalVolume  map[string]float64 `json:"total_volume"`
		High24h      map[string]float64 `json:"high_24h"`
		Low24h       map[string]float64 `json:"low_24h"`
		ATH          map[string]float64 `json:"ath"`
	} `json:"market_data"`
}

func (t *Talent) coin(ctx context.Context, id, currency string) talent.Result {
	q := url.Values{}
	q.Set("localization", "false")
	q.Set("tickers", "false")
	q.Set("community_data", "false")
	q.Set("developer_data", "false")

	var d coinDetail
	if err := t.api.GetJSON(ctx, t.baseURL+"/coins/"+url.PathEscape(id)+"?"+q.Encode(), &d); err != nil {
		if talent.KindOf(err) == talent.KindNotFound {
			return talent.FailErr(talent.NotFound("Coin not found: " + id))
		}
		t.logger.Debug("coin lookup failed", "coin", id, "err", err)
		return talent.FailErr(err)
	}

	m := d.MarketData
	cur := strings.ToUpper(currency)
	name := d.Name
	if name == "" {
		name = id
	}
	arrow := upArrow
	if m.Change24h < 0 {
		arrow = downArrow
	}

	lines := []string{
		fmt.Sprintf("%s (%s)", name, strings.ToUpper(d.Symbol)),
		fmt.Sprintf("  Price: %s %s", formatPrice(m.CurrentPrice[currency]), cur),
		fmt.Sprintf("  24h Change: %s %+.2f%%", arrow, m.Change24h),
		fmt.Sprintf("  7d Change: %+.2f%%", m.Change7d),
		fmt.Sprintf("  24h Range: %s - %s", formatPrice(m.Low24h[currency]), formatPrice(m.High24h[currency])),
	}
	if v := m.MarketCap[currency]; v != 0 {
		lines = append(lines, fmt.Sprintf("  Market Cap: %s %s", formatLarge(v), cur))
	}
	if v := m.TotalVolume[currency]; v != 0 {
		lines = append(lines, fmt.Sprintf("  24h Volume: %s %s", formatLarge(v), cur))
	}
	if v := m.ATH[currency]; v != 0 {
		lines = append(lines, fmt.Sprintf("  All-Time High: %s %s", formatPrice(v), cur))
	}
	return ok(strings.Join(lines, "\n"), id)
}

func (t *Talent) simplePrice(ctx context.Context, ids []string, currency string) (map[string]map[string]float64, error) {
	q := url.Values{}
	q.Set("ids", strings.Join(ids, ","))
	q.Set("vs_currencies", currency)
	q.Set("include_24hr_change", "true")
	q.Set("include_market_cap", "true")

	var data map[string]map[string]float64
	err := t.api.GetJSON(ctx, t.baseURL+"/simple/price?"+q.Encode(), &data)
	return data, err
}

func (t *Talent) prices(ctx context.Context, ids []string, currency string) talent.Result {
	data, err := t.simplePrice(ctx, ids, currency)
	if err != nil {
		return talent.FailErr(err)
	}

	lines := []string{fmt.Sprintf("Crypto Prices (%s):\n", strings.ToUpper(currency))}
	for _, id := range ids {
		coin := data[id]
		change := coin[currency+"_24h_change"]
		arrow := "\u2b06"
		if change < 0 {
			arrow = "\u2b07"
		}
		lines = append(lines, fmt.Sprintf("  %s: %s %s %+.1f%%", displayName(id), formatPrice(coin[currency]), arrow, change))
	}
	return ok(strings.Join(lines, "\n"), strings.Join(ids, ","))
}

type market struct {
	Rank      *int     `json:"market_cap_rank"`
	Name      string   `json:"name"`
	Price     float64  `json:"current_price"`
	Change24h *float64 `json:"price_change_percentage_24h"`
	MarketCap float64  `json:"market_cap"`
}

func (t *Talent) top(ctx context.Context, currency string) talent.Result {
	q := url.Values{}
	q.Set("vs_currency", currency)
	q.Set("order", "market_cap_desc")
	q.Set("per_page", fmt.Sprint(topCoinCount))
	q.Set("page", "1")

	var coins []market
	if err := t.api.GetJSON(ctx, t.baseURL+"/coins/markets?"+q.Encode(), &coins); err != nil {
		return talent.FailErr(err)
	}

	lines := []string{
		fmt.Sprintf("Top %d Cryptocurrencies (%s):\n", topCoinCount, strings.ToUpper(currency)),
		fmt.Sprintf("  %-3s %-15s %12s %8s %12s", "#", "Name", "Price", "24h", "Mkt Cap"),
		"  " + strings.Repeat("-", 54),
	}
	for _, c := range coins {
		rank := "?"
		if c.Rank != nil {
			rank = fmt.Sprint(*c.Rank)
		}
		var change float64
		if c.Change24h != nil {
			change = *c.Change24h
		}
		lines = append(lines, fmt.Sprintf("  %-3s %s %s %+7.1f%% %s",
			rank, cell(c.Name, 15), rcell(formatPrice(c.Price), 12), change, rcell(formatLarge(c.MarketCap), 12)))
	}
	return ok(strings.Join(lines, "\n"), "top")
}

func (t *Talent) wallet(ctx context.Context, s *settings, address string) talent.Result {
	if s.rpcURL == "" {
		return talent.FailErr(talent.Unavailable("Wallet lookups need an Ethereum RPC URL. Set eth_rpc_url in the crypto settings."))
	}
	if !common.IsHexAddress(address) {
		return talent.FailErr(talent.InvalidInput("That does not look like an Ethereum address."))
	}

	client, err := t.dial(ctx, s.rpcURL)
	if err != nil {
		return talent.FailErr(talent.Remote("Could not reach the Ethereum node.", err))
	}
	if c, ok := client.(interface{ Close() }); ok {
		defer c.Close()
	}

	wei, err := client.BalanceAt(ctx, common.HexToAddress(address), nil)
	if err != nil {
		return talent.FailErr(talent.Remote("Could not read the wallet balance.", err))
	}
	eth, amount := etherFromWei(wei)

	lines := []string{
		"Wallet " + shortAddress(address),
		"  Balance: " + eth + " ETH",
	}
	// The fiat value is best effort; the balance alone still answers the question.
	if data, err := t.simplePrice(ctx, []string{"ethereum"}, s.currency); err == nil {
		if p := data["ethereum"][s.currency]; p > 0 {
			lines = append(lines, fmt.Sprintf("  Value: %s %s", formatPrice(amount*p), strings.ToUpper(s.currency)))
		}
	} else {
		t.logger.Debug("ether price lookup failed", "err", err)
	}
	return ok(strings.Join(lines, "\n"), address)
}

func ok(msg, target string) talent.Result {
	return talent.OK(msg, talent.Action{Action: "crypto", Target: target})
}
