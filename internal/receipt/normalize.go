// Package receipt validates raw OCR output and normalizes it into the
// canonical payment draft.
package receipt

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/arnavkapoor/bridgepay/internal/domain"
	"github.com/arnavkapoor/bridgepay/internal/fx"
)

var (
	// ErrValidation is the generic normalization failure all specific
	// failures wrap.
	ErrValidation = errors.New("receipt: invalid payload")

	// ErrNoPayableAmount means no positive total could be derived from the
	// extracted fields.
	ErrNoPayableAmount = fmt.Errorf("%w: no payable amount", ErrValidation)
)

// Defaults applied when the model could not read a field.
const (
	defaultMerchant = "Unknown Merchant"
	defaultCountry  = "Global Node"
)

// amountTolerance is the slack allowed when comparing a declared total against
// the subtotal+tax breakdown. One paisa/cent covers rounding on the receipt.
const amountTolerance = 0.01

// Normalizer turns raw OCR field maps into PaymentData drafts.
type Normalizer struct {
	fastRail []string // lowercased fast-rail country names
}

// NewNormalizer builds a normalizer with the given fast-rail country list.
func NewNormalizer(fastRailCountries []string) *Normalizer {
	rail := make([]string, 0, len(fastRailCountries))
	for _, c := range fastRailCountries {
		c = strings.ToLower(strings.TrimSpace(c))
		if c != "" {
			rail = append(rail, c)
		}
	}
	return &Normalizer{fastRail: rail}
}

// Normalize validates raw extraction output and produces a fully populated
// draft.
//
// Amount reconciliation follows the math-shield policy: when the receipt
// carries a subtotal+tax breakdown, that sum is authoritative and overrides a
// disagreeing declared total. OCR misreads the single total line far more
// often than it misreads the itemized lines. The declared total is used only
// when no breakdown is available.
func (n *Normalizer) Normalize(raw map[string]any) (domain.PaymentData, error) {
	subtotal := numberField(raw, "subtotal")
	tax := numberField(raw, "tax")
	declared := numberField(raw, "total")

	total := declared
	if breakdown := subtotal + tax; breakdown > 0 && math.Abs(breakdown-declared) > amountTolerance {
		total = breakdown
	}
	if total <= 0 {
		return domain.PaymentData{}, ErrNoPayableAmount
	}

	cfg := fx.Lookup(stringField(raw, "currency"))

	merchant := stringField(raw, "merchantName")
	if merchant == "" {
		merchant = defaultMerchant
	}
	country := stringField(raw, "country")
	if country == "" {
		country = defaultCountry
	}

	// Reported subtotal falls back to the resolved total when the breakdown
	// was unreadable, so the draft never carries a zero subtotal alongside a
	// positive amount.
	if subtotal <= 0 {
		subtotal = total
	}

	return domain.PaymentData{
		MerchantName:     merchant,
		Country:          country,
		OriginalCurrency: cfg.Code,
		OriginalAmount:   total,
		Subtotal:         subtotal,
		Tax:              tax,
		INRAmount:        total * cfg.Rate,
		IsNIPL:           n.isFastRail(country, merchant),
	}, nil
}

// isFastRail reports whether the country or merchant name mentions one of the
// configured fast-rail countries.
func (n *Normalizer) isFastRail(country, merchant string) bool {
	country = strings.ToLower(country)
	merchant = strings.ToLower(merchant)
	for _, c := range n.fastRail {
		if strings.Contains(country, c) || strings.Contains(merchant, c) {
			return true
		}
	}
	return false
}

// numberField coerces a raw field to float64, defaulting to 0 when the field
// is absent or not numeric. Models occasionally quote numbers, so numeric
// strings are accepted too.
func numberField(m map[string]any, key string) float64 {
	v, ok := m[key]
	if !ok || v == nil {
		return 0
	}
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// stringField coerces a raw field to a trimmed string, defaulting to "".
func stringField(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}
