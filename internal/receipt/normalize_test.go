package receipt

import (
	"errors"
	"math"
	"testing"
)

var fastRail = []string{
	"UAE", "Singapore", "Mauritius", "Nepal", "Bhutan",
	"Sri Lanka", "Qatar", "Cyprus", "France",
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestNormalizeParisCafe(t *testing.T) {
	n := NewNormalizer(fastRail)

	raw := map[string]any{
		"merchantName": "Cafe X",
		"country":      "France",
		"currency":     "eur",
		"subtotal":     20.0,
		"tax":          2.0,
		"total":        22.0,
	}

	got, err := n.Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	if got.OriginalCurrency != "EUR" {
		t.Errorf("OriginalCurrency = %q, want EUR", got.OriginalCurrency)
	}
	if !almostEqual(got.OriginalAmount, 22) {
		t.Errorf("OriginalAmount = %v, want 22", got.OriginalAmount)
	}
	if !almostEqual(got.INRAmount, 2310.00) {
		t.Errorf("INRAmount = %v, want 2310.00", got.INRAmount)
	}
	if !got.IsNIPL {
		t.Error("IsNIPL = false, want true for France")
	}
}

func TestNormalizeMathShield(t *testing.T) {
	tests := []struct {
		name       string
		raw        map[string]any
		wantAmount float64
	}{
		{
			name: "breakdown overrides misread total",
			raw: map[string]any{
				"subtotal": 20.0,
				"tax":      2.0,
				"total":    50.0, // OCR misread
			},
			wantAmount: 22,
		},
		{
			name: "breakdown agrees with total",
			raw: map[string]any{
				"subtotal": 20.0,
				"tax":      2.0,
				"total":    22.0,
			},
			wantAmount: 22,
		},
		{
			name: "breakdown fills in missing total",
			raw: map[string]any{
				"subtotal": 18.5,
				"tax":      1.5,
			},
			wantAmount: 20,
		},
		{
			name: "declared total used when no breakdown",
			raw: map[string]any{
				"total": 37.80,
			},
			wantAmount: 37.80,
		},
		{
			name: "tolerates receipt rounding",
			raw: map[string]any{
				"subtotal": 20.0,
				"tax":      2.005,
				"total":    22.0,
			},
			wantAmount: 22,
		},
	}

	n := NewNormalizer(fastRail)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := n.Normalize(tt.raw)
			if err != nil {
				t.Fatalf("Normalize() error = %v", err)
			}
			if !almostEqual(got.OriginalAmount, tt.wantAmount) {
				t.Errorf("OriginalAmount = %v, want %v", got.OriginalAmount, tt.wantAmount)
			}
		})
	}
}

func TestNormalizeNoPayableAmount(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
	}{
		{name: "all zero", raw: map[string]any{"subtotal": 0.0, "tax": 0.0, "total": 0.0}},
		{name: "empty payload", raw: map[string]any{}},
		{name: "negative total", raw: map[string]any{"total": -5.0}},
		{name: "non-numeric fields", raw: map[string]any{"subtotal": "n/a", "tax": nil, "total": "unknown"}},
	}

	n := NewNormalizer(fastRail)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := n.Normalize(tt.raw)
			if !errors.Is(err, ErrNoPayableAmount) {
				t.Errorf("Normalize() error = %v, want ErrNoPayableAmount", err)
			}
			if !errors.Is(err, ErrValidation) {
				t.Errorf("error %v should wrap ErrValidation", err)
			}
		})
	}
}

func TestNormalizeUnknownCurrencyFallsBack(t *testing.T) {
	n := NewNormalizer(fastRail)

	got, err := n.Normalize(map[string]any{
		"currency": "XYZ",
		"total":    10.0,
	})
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if got.OriginalCurrency != "USD" {
		t.Errorf("OriginalCurrency = %q, want default USD", got.OriginalCurrency)
	}
	if !almostEqual(got.INRAmount, 10*89.96) {
		t.Errorf("INRAmount = %v, want %v", got.INRAmount, 10*89.96)
	}
}

func TestNormalizeDefaultsAndCoercion(t *testing.T) {
	n := NewNormalizer(fastRail)

	got, err := n.Normalize(map[string]any{
		"total": "22.50", // quoted number
	})
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if got.MerchantName != "Unknown Merchant" {
		t.Errorf("MerchantName = %q, want default", got.MerchantName)
	}
	if got.Country != "Global Node" {
		t.Errorf("Country = %q, want default", got.Country)
	}
	if !almostEqual(got.OriginalAmount, 22.50) {
		t.Errorf("OriginalAmount = %v, want coerced 22.50", got.OriginalAmount)
	}
	// Subtotal falls back to the resolved total when unreadable.
	if !almostEqual(got.Subtotal, 22.50) {
		t.Errorf("Subtotal = %v, want 22.50", got.Subtotal)
	}
}

func TestIsFastRail(t *testing.T) {
	tests := []struct {
		name     string
		country  string
		merchant string
		want     bool
	}{
		{name: "country match", country: "Singapore", merchant: "Hawker Stall", want: true},
		{name: "case-insensitive country", country: "sri lanka", merchant: "", want: true},
		{name: "merchant mentions country", country: "", merchant: "Qatar Duty Free", want: true},
		{name: "substring inside country", country: "United Arab Emirates (UAE)", merchant: "", want: true},
		{name: "no match", country: "Germany", merchant: "Berlin Kiosk", want: false},
	}

	n := NewNormalizer(fastRail)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := map[string]any{
				"merchantName": tt.merchant,
				"country":      tt.country,
				"total":        10.0,
			}
			got, err := n.Normalize(raw)
			if err != nil {
				t.Fatalf("Normalize() error = %v", err)
			}
			if got.IsNIPL != tt.want {
				t.Errorf("IsNIPL = %v, want %v", got.IsNIPL, tt.want)
			}
		})
	}
}
