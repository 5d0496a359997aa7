package units

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talon-assistant/talent-catalog/pkg/talent"
	"github.com/talon-assistant/talent-catalog/pkg/webapi"
)

func run(tl *Talent, text string) talent.Result {
	return tl.Execute(context.Background(), talent.NewCommand(text))
}

func TestConvertMilesToKilometers(t *testing.T) {
	res := run(New(nil, ""), "convert 100 miles to kilometers")
	require.True(t, res.Success, res.Response)
	assert.Equal(t, "100 miles = 160.9344 kilometers", res.Response)
	assert.Equal(t, "unit_converter", res.Actions[0].Action)
}

func TestConvert(t *testing.T) {
	tests := []struct {
		value    float64
		from, to string
		want     string
	}{
		{72, "fahrenheit", "celsius", "22.22"},
		{0, "c", "k", "273.15"},
		{5, "pounds", "kilograms", "2.268"},
		{1, "tb", "gb", "1,024"},
		{1, "gallon", "liters", "3.7854"},
		{3, "feet", "inches", "36"},
		{1, "mm", "km", "1e-06"},
		{1, "day", "hours", "24"},
	}
	for _, tt := range tests {
		t.Run(tt.from+"_"+tt.to, func(t *testing.T) {
			got, err := Convert(tt.value, tt.from, tt.to)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConvertErrors(t *testing.T) {
	_, err := Convert(1, "parsecs", "meters")
	assert.Equal(t, talent.KindInput, talent.KindOf(err))
	assert.Equal(t, "Unknown unit: 'parsecs'", talent.Describe(err))

	res := run(New(nil, ""), "convert 5 kg to meters")
	assert.False(t, res.Success)
	assert.Empty(t, res.Actions)
	assert.Equal(t, "Cannot convert kg (weight) to meters (length). Units must be in the same category.", res.Response)

	res = run(New(nil, ""), "convert some miles please")
	assert.False(t, res.Success)
	assert.Equal(t, usage, res.Response)
}

func TestParse(t *testing.T) {
	tests := []struct {
		text string
		want conversion
	}{
		{"convert 1,000 meters into feet", conversion{1000, "meters", "feet"}},
		{"what is 5 km in miles", conversion{5, "km", "miles"}},
		{"how many cups in 2 liters", conversion{2, "liters", "cups"}},
		{"how many liters in a gallon", conversion{1, "gallon", "liters"}},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, ok := parse(tt.text)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := parse("convert 1.2.3 miles to km")
	assert.False(t, ok)
}

func TestCurrency(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		assert.Equal(t, "/v6/latest/USD", r.URL.Path)
		_, _ = w.Write([]byte(`{"result":"success","rates":{"USD":1,"EUR":0.92}}`))
	}))
	defer srv.Close()

	tl := New(webapi.New("Currency API", webapi.WithCache(0)), srv.URL+"/v6/latest/")
	res := run(tl, "convert 1,500 usd to eur")
	require.True(t, res.Success, res.Response)
	assert.Equal(t, "1,500.00 USD = 1,380.00 EUR\n  Rate: 1 USD = 0.9200 EUR", res.Response)

	res = run(tl, "convert 2 usd to gbp")
	assert.False(t, res.Success)
	assert.Equal(t, "Exchange rate not found for USD to GBP.", res.Response)
	assert.Equal(t, 1, hits)
}

func TestCurrencyUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	res := run(New(webapi.New("Currency API"), srv.URL+"/"), "convert 10 eur to usd")
	assert.False(t, res.Success)
	assert.Empty(t, res.Actions)
	assert.Equal(t, "Currency API returned an error (HTTP 503).", res.Response)
}

func TestCanHandle(t *testing.T) {
	tl := New(nil, "")
	assert.True(t, tl.CanHandle("convert 100 miles to kilometers"))
	assert.True(t, tl.CanHandle("how many liters in a gallon"))
	assert.False(t, tl.CanHandle("convert bitcoin to usd"))
	assert.False(t, tl.CanHandle("what's the weather in celsius"))
}
