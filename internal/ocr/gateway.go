// Package ocr is the boundary to the external vision provider that turns a
// receipt photo into structured fields. The concrete provider sits behind the
// Provider interface so the rest of the app can be tested without network
// calls.
package ocr

import "context"

// Provider extracts structured receipt fields from a JPEG image.
//
// The returned map carries the raw extraction output - merchantName, country,
// currency, subtotal, tax and total - with whatever loose types the provider
// produced. The receipt normalizer is responsible for validating and coercing
// it; the gateway only guarantees that a JSON object was obtained.
//
// Implementations must honor context cancellation, make exactly one attempt
// per call and classify failures using the sentinel errors in this package.
type Provider interface {
	ExtractReceipt(ctx context.Context, jpegBytes []byte) (map[string]any, error)
}
