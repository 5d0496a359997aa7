// Package units converts between units of measurement and currencies.
package units

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/talon-assistant/talent-catalog/pkg/talent"
	"github.com/talon-assistant/talent-catalog/pkg/webapi"
)

// DefaultRatesURL is the exchange rate endpoint; the base currency code is
// appended.
const DefaultRatesURL = "https://open.er-api.com/v6/latest/"

const usage = "Please use format: 'convert 100 miles to kilometers'\n" +
	"Supported: length, weight, temperature, volume, speed, data, time, currency."

var info = talent.Info{
	Name:        "unit_converter",
	Description: "Convert between units of measurement and currencies",
	Keywords: []string{
		"convert", "conversion", "how many", "how much is",
		"celsius", "fahrenheit", "miles", "kilometers",
		"pounds", "kilograms", "liters", "gallons",
		"inches", "centimeters", "feet", "meters",
		"exchange rate", "currency",
	},
	Exclusions: []string{
		"remind", "timer", "email", "note", "weather", "hue",
		"light", "search", "news", "todo", "task", "pomodoro",
		"docker", "github", "regex", "json", "snippet",
		"stock", "crypto", "bitcoin",
	},
	Priority: 39,
}

// Talent converts units locally and currencies through an exchange rate API.
type Talent struct {
	talent.Base
	rates    *webapi.Client
	ratesURL string
}

// New returns a converter. rates may be nil, in which case a client caching
// rates for an hour is created.
func New(rates *webapi.Client, ratesURL string) *Talent {
	if rates == nil {
		rates = webapi.New("Currency API", webapi.WithCache(time.Hour))
	}
	if ratesURL == "" {
		ratesURL = DefaultRatesURL
	}
	return &Talent{Base: talent.NewBase(info), rates: rates, ratesURL: ratesURL}
}

func (t *Talent) ConfigSchema() talent.Schema { return talent.Schema{} }

func (t *Talent) Execute(ctx context.Context, cmd talent.Command) talent.Result {
	c, ok := parse(cmd.Text)
	if !ok {
		return talent.Fail(usage)
	}

	from, to := strings.ToUpper(c.from), strings.ToUpper(c.to)
	if currencies[from] && currencies[to] {
		return t.currency(ctx, c.value, from, to)
	}
	return convert(c)
}

// Convert converts value between two unit aliases and returns the formatted
// result, e.g. "160.9344".
func Convert(value float64, from, to string) (string, error) {
	fu, ok := units[from]
	if !ok {
		return "", talent.InvalidInput(fmt.Sprintf("Unknown unit: '%s'", from))
	}
	tu, ok := units[to]
	if !ok {
		return "", talent.InvalidInput(fmt.Sprintf("Unknown unit: '%s'", to))
	}
	if fu.category != tu.category {
		return "", talent.InvalidInput(fmt.Sprintf(
			"Cannot convert %s (%s) to %s (%s). Units must be in the same category.",
			from, fu.category, to, tu.category))
	}

	if fu.category == Temperature {
		r := fromCelsius(toCelsius(value, fu.scale), tu.scale)
		return humanize.Ftoa(math.Round(r*100) / 100), nil
	}

	r := value * fu.factor / tu.factor
	if math.Abs(r) < 0.01 {
		return strconv.FormatFloat(r, 'g', 8, 64), nil
	}
	return humanize.Commaf(math.Round(r*1e4) / 1e4), nil
}

func convert(c conversion) talent.Result {
	out, err := Convert(c.value, c.from, c.to)
	if err != nil {
		return talent.FailErr(err)
	}
	return talent.OK(fmt.Sprintf("%s %s = %s %s", humanize.Ftoa(c.value), c.from, out, c.to),
		talent.Action{Action: "unit_converter", Target: c.to})
}

type ratesResponse struct {
	Result string             `json:"result"`
	Rates  map[string]float64 `json:"rates"`
}

func (t *Talent) currency(ctx context.Context, value float64, from, to string) talent.Result {
	var resp ratesResponse
	if err := t.rates.GetJSON(ctx, t.ratesURL+from, &resp); err != nil {
		return talent.FailErr(err)
	}
	rate, ok := resp.Rates[to]
	if !ok {
		return talent.FailErr(talent.NotFound(fmt.Sprintf("Exchange rate not found for %s to %s.", from, to)))
	}
	msg := fmt.Sprintf("%s %s = %s %s\n  Rate: 1 %s = %.4f %s",
		money(value), from, money(value*rate), to, from, rate, to)
	return talent.OK(msg, talent.Action{Action: "unit_converter", Target: to})
}

func money(v float64) string {
	return humanize.FormatFloat("#,###.##", v)
}
