package stock

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talon-assistant/talent-catalog/pkg/talent"
	"github.com/talon-assistant/talent-catalog/pkg/webapi"
)

var fixtures = map[string]string{
	"AAPL": `{"chart":{"result":[{"meta":{"symbol":"AAPL","shortName":"Apple Inc.","longName":"Apple Inc.",
		"currency":"USD","fullExchangeName":"NasdaqGS","instrumentType":"EQUITY","exchangeTimezoneName":"America/New_York",
		"regularMarketPrice":190.5,"chartPreviousClose":188,"regularMarketDayHigh":191.25,"regularMarketDayLow":187.8,
		"regularMarketVolume":52345678,"fiftyTwoWeekHigh":199.62,"fiftyTwoWeekLow":164.08}}],"error":null}}`,
	"MSFT": `{"chart":{"result":[{"meta":{"symbol":"MSFT","shortName":"Microsoft","currency":"USD",
		"regularMarketPrice":400,"chartPreviousClose":410,"regularMarketVolume":1234567000}}],"error":null}}`,
}

func newTalent(t *testing.T) *Talent {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ticker := strings.TrimPrefix(r.URL.Path, "/chart/")
		body, ok := fixtures[ticker]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found"}}}`))
			return
		}
		assert.Equal(t, "1d", r.URL.Query().Get("range"))
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return New(webapi.New("Yahoo Finance"), srv.URL+"/chart", nil)
}

func run(tl *Talent, text string) talent.Result {
	return tl.Execute(context.Background(), talent.NewCommand(text))
}

func TestPrice(t *testing.T) {
	tl := newTalent(t)
	res := run(tl, "stock price of AAPL")
	require.True(t, res.Success, res.Response)
	assert.Equal(t, "Apple Inc. (AAPL)\n"+
		"  Price: $190.50 USD  \u2b06\ufe0f +2.50 (+1.33%)\n"+
		"  Day Range: $187.80 - $191.25\n"+
		"  Volume: 52,345,678", res.Response)
	assert.Equal(t, talent.Action{Action: "stock", Target: "AAPL"}, res.Actions[0])
}

func TestPriceDown(t *testing.T) {
	tl := newTalent(t)
	res := run(tl, "how is MSFT doing")
	require.True(t, res.Success, res.Response)
	assert.Contains(t, res.Response, "  Price: $400.00 USD  \u2b07\ufe0f -10.00 (-2.44%)")
}

func TestInfo(t *testing.T) {
	tl := newTalent(t)
	res := run(tl, "stock info for AAPL")
	require.True(t, res.Success, res.Response)
	assert.Contains(t, res.Response, "Apple Inc. (AAPL)\n\n  Name: Apple Inc.\n  Exchange: NasdaqGS")
	assert.Contains(t, res.Response, "  52-Week High: $199.62")
	assert.Contains(t, res.Response, "  From 52-Week High: -4.57%")
}

func TestCompare(t *testing.T) {
	tl := newTalent(t)
	res := run(tl, "compare AAPL and MSFT and ZZZZ stock")
	require.True(t, res.Success, res.Response)
	lines := strings.Split(res.Response, "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, "  Ticker        Price     Change       Volume", lines[2])
	assert.Equal(t, "  AAPL        $190.50     +1.33%        52.3M", lines[4])
	assert.Equal(t, "  MSFT        $400.00     -2.44%         1.2B", lines[5])
	assert.Equal(t, "  ZZZZ          Error", lines[6])
}

func TestUnknownTicker(t *testing.T) {
	tl := newTalent(t)
	res := run(tl, "check ZZZZ stock")
	assert.False(t, res.Success)
	assert.Empty(t, res.Actions)
	assert.Equal(t, "Could not fetch price for ZZZZ. Is the ticker correct?", res.Response)
}

func TestWatchlistFallback(t *testing.T) {
	tl := newTalent(t)
	res := run(tl, "how is the stock market")
	assert.False(t, res.Success)
	assert.Equal(t, "Which stock? Include a ticker symbol like AAPL, TSLA, MSFT.", res.Response)

	require.NoError(t, tl.UpdateConfig(schema.Resolve(map[string]any{"default_tickers": "aapl"})))
	res = run(tl, "how is the stock market")
	require.True(t, res.Success, res.Response)
	assert.True(t, strings.HasPrefix(res.Response, "Apple Inc. (AAPL)"))
}

func TestExtractTickers(t *testing.T) {
	assert.Equal(t, []string{"AAPL", "MSFT"}, extractTickers("how is AAPL VS MSFT on NASDAQ"))
	assert.Nil(t, extractTickers("I want THE price"))
	assert.Len(t, extractTickers("A B C D E F G H"), 5)
}

func TestCanHandle(t *testing.T) {
	tl := New(nil, "", nil)
	assert.True(t, tl.CanHandle("stock price of AAPL"))
	assert.True(t, tl.CanHandle("how is TSLA doing"))
	assert.True(t, tl.CanHandle("check NVDA"))
	assert.False(t, tl.CanHandle("how is it going"))
	assert.False(t, tl.CanHandle("bitcoin market cap"))
	assert.False(t, tl.CanHandle("Check the Weather"))
}
