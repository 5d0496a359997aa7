package units

// Category groups units that convert into each other.
type Category string

const (
	Length      Category = "length"
	Weight      Category = "weight"
	Volume      Category = "volume"
	Speed       Category = "speed"
	Data        Category = "data"
	Time        Category = "time"
	Temperature Category = "temperature"
)

type scale int

const (
	celsius scale = iota + 1
	fahrenheit
	kelvin
)

// unit is one alias. factor converts to the category base unit; temperature
// uses scale instead.
type unit struct {
	category Category
	factor   float64
	scale    scale
}

var units = map[string]unit{}

func register(c Category, factors map[string]float64) {
	for alias, f := range factors {
		units[alias] = unit{category: c, factor: f}
	}
}

func init() {
	// base: meter
	register(Length, map[string]float64{
		"meter": 1, "meters": 1, "m": 1,
		"kilometer": 1000, "kilometers": 1000, "km": 1000,
		"centimeter": 0.01, "centimeters": 0.01, "cm": 0.01,
		"millimeter": 0.001, "millimeters": 0.001, "mm": 0.001,
		"mile": 1609.344, "miles": 1609.344, "mi": 1609.344,
		"yard": 0.9144, "yards": 0.9144, "yd": 0.9144,
		"foot": 0.3048, "feet": 0.3048, "ft": 0.3048,
		"inch": 0.0254, "inches": 0.0254, "in": 0.0254,
		"nautical_mile": 1852, "nautical_miles": 1852, "nmi": 1852,
	})
	// base: kilogram
	register(Weight, map[string]float64{
		"kilogram": 1, "kilograms": 1, "kg": 1,
		"gram": 0.001, "grams": 0.001, "g": 0.001,
		"milligram": 0.000001, "milligrams": 0.000001, "mg": 0.000001,
		"pound": 0.453592, "pounds": 0.453592, "lb": 0.453592, "lbs": 0.453592,
		"ounce": 0.0283495, "ounces": 0.0283495, "oz": 0.0283495,
		"ton": 907.185, "tons": 907.185,
		"metric_ton": 1000, "tonne": 1000, "tonnes": 1000,
		"stone": 6.35029, "stones": 6.35029, "st": 6.35029,
	})
	// base: liter
	register(Volume, map[string]float64{
		"liter": 1, "liters": 1, "l": 1, "litre": 1, "litres": 1,
		"milliliter": 0.001, "milliliters": 0.001, "ml": 0.001,
		"gallon": 3.78541, "gallons": 3.78541, "gal": 3.78541,
		"quart": 0.946353, "quarts": 0.946353, "qt": 0.946353,
		"pint": 0.473176, "pints": 0.473176, "pt": 0.473176,
		"cup": 0.236588, "cups": 0.236588,
		"fluid_ounce": 0.0295735, "fluid_ounces": 0.0295735, "floz": 0.0295735,
		"tablespoon": 0.0147868, "tablespoons": 0.0147868, "tbsp": 0.0147868,
		"teaspoon": 0.00492892, "teaspoons": 0.00492892, "tsp": 0.00492892,
	})
	// base: meters per second
	register(Speed, map[string]float64{
		"mps": 1, "m/s": 1,
		"kph": 0.277778, "km/h": 0.277778, "kmh": 0.277778,
		"mph": 0.44704,
		"knot": 0.514444, "knots": 0.514444, "kn": 0.514444,
	})
	// base: byte
	register(Data, map[string]float64{
		"byte": 1, "bytes": 1, "b": 1,
		"kilobyte": 1 << 10, "kilobytes": 1 << 10, "kb": 1 << 10,
		"megabyte": 1 << 20, "megabytes": 1 << 20, "mb": 1 << 20,
		"gigabyte": 1 << 30, "gigabytes": 1 << 30, "gb": 1 << 30,
		"terabyte": 1 << 40, "terabytes": 1 << 40, "tb": 1 << 40,
	})
	// base: second
	register(Time, map[string]float64{
		"second": 1, "seconds": 1, "sec": 1,
		"minute": 60, "minutes": 60, "min": 60,
		"hour": 3600, "hours": 3600, "hr": 3600,
		"day": 86400, "days": 86400,
		"week": 604800, "weeks": 604800,
		"month": 2592000, "months": 2592000,
		"year": 31536000, "years": 31536000,
	})

	for alias, s := range map[string]scale{
		"celsius": celsius, "c": celsius,
		"fahrenheit": fahrenheit, "f": fahrenheit,
		"kelvin": kelvin, "k": kelvin,
	} {
		units[alias] = unit{category: Temperature, scale: s}
	}
}

// currencies are the codes the exchange rate lookup accepts.
var currencies = map[string]bool{
	"USD": true, "EUR": true, "GBP": true, "JPY": true, "CAD": true, "AUD": true,
	"CHF": true, "CNY": true, "INR": true, "BRL": true, "KRW": true, "MXN": true,
	"NZD": true, "SGD": true, "HKD": true, "NOK": true, "SEK": true, "DKK": true,
	"PLN": true, "ZAR": true, "RUB": true, "TRY": true, "THB": true, "IDR": true,
}

func toCelsius(v float64, s scale) float64 {
	switch s {
	case fahrenheit:
		return (v - 32) * 5 / 9
	case kelvin:
		return v - 273.15
	default:
		return v
	}
}

func fromCelsius(c float64, s scale) float64 {
	switch s {
	case fahrenheit:
		return c*9/5 + 32
	case kelvin:
		return c + 273.15
	default:
		return c
	}
}
