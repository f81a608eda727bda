// Package fx holds the static currency conversion table used for every
// cross-border amount shown or settled by the app. The table is fixed at
// process start; nothing mutates it at runtime.
package fx

import "strings"

// CurrencyConfig describes one supported currency.
type CurrencyConfig struct {
	Code   string  `json:"code"`
	Symbol string  `json:"symbol"`
	Rate   float64 `json:"rate"` // 1 unit of Code = Rate INR
}

// DefaultCode is the anchor currency a scanned code falls back to when it
// cannot be resolved against the table.
const DefaultCode = "USD"

var rates = map[string]CurrencyConfig{
	"USD": {Code: "USD", Symbol: "$", Rate: 89.96},
	"EUR": {Code: "EUR", Symbol: "€", Rate: 105.00},
	"GBP": {Code: "GBP", Symbol: "£", Rate: 121.00},
	"AED": {Code: "AED", Symbol: "د.إ", Rate: 24.50},
	"SGD": {Code: "SGD", Symbol: "S$", Rate: 67.90},
	"CAD": {Code: "CAD", Symbol: "C$", Rate: 65.61},
	"AUD": {Code: "AUD", Symbol: "A$", Rate: 60.20},
	"JPY": {Code: "JPY", Symbol: "¥", Rate: 0.58},
	"HKD": {Code: "HKD", Symbol: "HK$", Rate: 11.54},
	"THB": {Code: "THB", Symbol: "฿", Rate: 2.85},
	"INR": {Code: "INR", Symbol: "₹", Rate: 1.00},
}

// Lookup resolves a currency code to its configuration. It is total: the code
// is trimmed and uppercased before lookup, and unknown codes resolve to the
// DefaultCode entry rather than failing.
func Lookup(code string) CurrencyConfig {
	c := strings.ToUpper(strings.TrimSpace(code))
	if cfg, ok := rates[c]; ok {
		return cfg
	}
	return rates[DefaultCode]
}
