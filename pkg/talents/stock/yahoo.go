package stock

import (
	"context"
	"fmt"
	"net/url"

	"github.com/talon-assistant/talent-catalog/pkg/talent"
	"github.com/talon-assistant/talent-catalog/pkg/webapi"
)

// DefaultBaseURL is the Yahoo Finance chart API.
const DefaultBaseURL = "https://query1.finance.yahoo.com/v8/finance/chart"

// Quote is the market snapshot for one ticker.
type Quote struct {
	Symbol        string  `json:"symbol"`
	ShortName     string  `json:"shortName"`
	LongName      string  `json:"longName"`
	Currency      string  `json:"currency"`
	Exchange      string  `json:"fullExchangeName"`
	Instrument    string  `json:"instrumentType"`
	Timezone      string  `json:"exchangeTimezoneName"`
	Price         float64 `json:"regularMarketPrice"`
	PreviousClose float64 `json:"chartPreviousClose"`
	DayHigh       float64 `json:"regularMarketDayHigh"`
	DayLow        float64 `json:"regularMarketDayLow"`
	Volume        float64 `json:"regularMarketVolume"`
	YearHigh      float64 `json:"fiftyTwoWeekHigh"`
	YearLow       float64 `json:"fiftyTwoWeekLow"`
}

// Name is the display name, falling back to the ticker.
func (q Quote) Name() string {
	switch {
	case q.ShortName != "":
		return q.ShortName
	case q.LongName != "":
		return q.LongName
	default:
		return q.Symbol
	}
}

// Change returns the absolute and percent change from the previous close.
// ok is false when there is no previous close.
func (q Quote) Change() (diff, pct float64, ok bool) {
	if q.PreviousClose == 0 || q.Price == 0 {
		return 0, 0, false
	}
	diff = q.Price - q.PreviousClose
	return diff, diff / q.PreviousClose * 100, true
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta Quote `json:"meta"`
		} `json:"result"`
	} `json:"chart"`
}

func fetchQuote(ctx context.Context, api *webapi.Client, baseURL, ticker string) (Quote, error) {
	q := url.Values{}
	q.Set("range", "1d")
	q.Set("interval", "1d")

	var resp chartResponse
	if err := api.GetJSON(ctx, baseURL+"/"+url.PathEscape(ticker)+"?"+q.Encode(), &resp); err != nil {
		if talent.KindOf(err) == talent.KindNotFound {
			return Quote{}, notFound(ticker)
		}
		return Quote{}, err
	}
	if len(resp.Chart.Result) == 0 || resp.Chart.Result[0].Meta.Price == 0 {
		return Quote{}, notFound(ticker)
	}
	quote := resp.Chart.Result[0].Meta
	if quote.Symbol == "" {
		quote.Symbol = ticker
	}
	if quote.Currency == "" {
		quote.Currency = "USD"
	}
	return quote, nil
}

func notFound(ticker string) error {
	return talent.NotFound(fmt.Sprintf("Could not fetch price for %s. Is the ticker correct?", ticker))
}
