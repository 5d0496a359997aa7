// Package stock looks up equity quotes from the Yahoo Finance chart API.
package stock

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
	"golang.org/x/sync/errgroup"

	"github.com/talon-assistant/talent-catalog/pkg/talent"
	"github.com/talon-assistant/talent-catalog/pkg/webapi"
)

var info = talent.Info{
	Name:        "stock",
	Description: "Look up stock prices, ticker info, and basic market data",
	Keywords: []string{
		"stock", "stock price", "ticker", "shares", "market",
		"nasdaq", "nyse", "s&p", "dow jones",
	},
	Exclusions: []string{
		"remind", "timer", "email", "note", "weather", "hue",
		"light", "search", "news", "todo", "task", "pomodoro",
		"docker", "github", "regex", "json", "snippet",
		"crypto", "bitcoin", "ethereum",
	},
	Priority: 50,
}

var schema = talent.Schema{Fields: []talent.Field{
	talent.String("default_tickers", "Watchlist (comma-separated tickers)", ""),
}}

var tickerHints = []string{"price", "how is", "check"}

// Talent answers stock questions.
type Talent struct {
	talent.Base
	api       *webapi.Client
	baseURL   string
	logger    *log.Logger
	watchlist atomic.Pointer[[]string]
}

// NewClient returns the Yahoo client with quotes cached for 30 seconds.
func NewClient() *webapi.Client {
	return webapi.New("Yahoo Finance", webapi.WithCache(30*time.Second))
}

// New returns the talent. api may be nil for the default client; an empty
// baseURL selects DefaultBaseURL.
func New(api *webapi.Client, baseURL string, logger *log.Logger) *Talent {
	if api == nil {
		api = NewClient()
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = log.Default()
	}
	t := &Talent{
		Base:    talent.NewBase(info),
		api:     api,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger.With("talent", info.Name),
	}
	t.apply(schema.Defaults())
	return t
}

func (t *Talent) ConfigSchema() talent.Schema { return schema }

func (t *Talent) Initialize(cfg talent.Config) error   { t.apply(cfg); return nil }
func (t *Talent) UpdateConfig(cfg talent.Config) error { t.apply(cfg); return nil }

func (t *Talent) apply(cfg talent.Config) {
	w := parseWatchlist(cfg.String("default_tickers"))
	t.watchlist.Store(&w)
}

// CanHandle also accepts a bare upper-case ticker next to a price word, as
// in "how is TSLA doing".
func (t *Talent) CanHandle(text string) bool {
	m := info.Matcher()
	lower := strings.ToLower(text)
	if m.Excluded(lower) {
		return false
	}
	if m.Match(text) {
		return true
	}
	if !tickerPattern.MatchString(text) {
		return false
	}
	for _, h := range tickerHints {
		if strings.Contains(lower, h) {
			return true
		}
	}
	return false
}

func (t *Talent) Execute(ctx context.Context, cmd talent.Command) talent.Result {
	tickers := extractTickers(cmd.Text)
	if len(tickers) == 0 {
		tickers = *t.watchlist.Load()
	}
	switch {
	case len(tickers) == 0:
		return talent.Fail("Which stock? Include a ticker symbol like AAPL, TSLA, MSFT.")
	case len(tickers) > 1:
		return t.compare(ctx, tickers)
	case wantsInfo(cmd.Text):
		return t.details(ctx, tickers[0])
	default:
		return t.price(ctx, tickers[0])
	}
}

func (t *Talent) price(ctx context.Context, ticker string) talent.Result {
	q, err := fetchQuote(ctx, t.api, t.baseURL, ticker)
	if err != nil {
		return talent.FailErr(err)
	}

	change := ""
	if diff, pct, ok := q.Change(); ok {
		arrow, sign := "\u2b06\ufe0f", "+"
		if diff < 0 {
			arrow, sign = "\u2b07\ufe0f", ""
		}
		change = fmt.Sprintf("  %s %s%.2f (%s%.2f%%)", arrow, sign, diff, sign, pct)
	}

	lines := []string{
		fmt.Sprintf("%s (%s)", q.Name(), ticker),
		fmt.Sprintf("  Price: $%.2f %s%s", q.Price, q.Currency, change),
	}
	if q.DayHigh != 0 && q.DayLow != 0 {
		lines = append(lines, fmt.Sprintf("  Day Range: $%.2f - $%.2f", q.DayLow, q.DayHigh))
	}
	if q.Volume != 0 {
		lines = append(lines, "  Volume: "+humanize.Comma(int64(q.Volume)))
	}
	return ok(strings.Join(lines, "\n"), ticker)
}

func (t *Talent) details(ctx context.Context, ticker string) talent.Result {
	q, err := fetchQuote(ctx, t.api, t.baseURL, ticker)
	if err != nil {
		return talent.FailErr(err)
	}

	lines := []string{fmt.Sprintf("%s (%s)\n", q.Name(), ticker)}
	add := func(label, value string) {
		if value != "" {
			lines = append(lines, fmt.Sprintf("  %s: %s", label, value))
		}
	}
	add("Name", q.LongName)
	add("Exchange", q.Exchange)
	add("Type", q.Instrument)
	add("Currency", q.Currency)
	add("Timezone", q.Timezone)
	add("Price", money(q.Price))
	add("52-Week High", money(q.YearHigh))
	add("52-Week Low", money(q.YearLow))
	if q.YearHigh != 0 && q.Price != 0 {
		add("From 52-Week High", fmt.Sprintf("%+.2f%%", (q.Price-q.YearHigh)/q.YearHigh*100))
	}
	return ok(strings.Join(lines, "\n"), ticker)
}

func (t *Talent) compare(ctx context.Context, tickers []string) talent.Result {
	quotes := make([]Quote, len(tickers))
	errs := make([]error, len(tickers))

	var g errgroup.Group
	g.SetLimit(maxTickers)
	for i, ticker := range tickers {
		g.Go(func() error {
			quotes[i], errs[i] = fetchQuote(ctx, t.api, t.baseURL, ticker)
			return nil
		})
	}
	_ = g.Wait()

	lines := []string{
		"Stock Comparison:\n",
		fmt.Sprintf("  %-8s %10s %10s %12s", "Ticker", "Price", "Change", "Volume"),
		"  " + strings.Repeat("-", 44),
	}
	for i, ticker := range tickers {
		if errs[i] != nil {
			t.logger.Debug("quote failed", "ticker", ticker, "err", errs[i])
			lines = append(lines, fmt.Sprintf("  %s %10s", runewidth.FillRight(ticker, 8), "Error"))
			continue
		}
		q := quotes[i]
		change := "N/A"
		if _, pct, ok := q.Change(); ok {
			change = fmt.Sprintf("%+.2f%%", pct)
		}
		price := "N/A"
		if q.Price != 0 {
			price = fmt.Sprintf("$%.2f", q.Price)
		}
		lines = append(lines, fmt.Sprintf("  %s %10s %10s %12s", runewidth.FillRight(ticker, 8), price, change, compact(q.Volume)))
	}
	return ok(strings.Join(lines, "\n"), strings.Join(tickers, ","))
}

func money(v float64) string {
	if v == 0 {
		return ""
	}
	return "$" + humanize.FormatFloat("#,###.##", v)
}

func compact(v float64) string {
	switch {
	case v >= 1e9:
		return fmt.Sprintf("%.1fB", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("%.1fM", v/1e6)
	case v > 0:
		return humanize.Comma(int64(v))
	default:
		return "N/A"
	}
}

func ok(msg, target string) talent.Result {
	return talent.OK(msg, talent.Action{Action: "stock", Target: target})
}
