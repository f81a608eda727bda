package ocr

import "errors"

// Classified gateway failures. The session converts these into user-facing
// scan messages; none of them are retried automatically - every retry is a
// new explicit user action.
var (
	// ErrMissingCredential means no provider API key is configured. It is
	// returned before any network call is attempted.
	ErrMissingCredential = errors.New("ocr: provider API key is not configured")

	// ErrGatewayTimeout means the provider did not respond within the
	// deadline. The in-flight request is abandoned.
	ErrGatewayTimeout = errors.New("ocr: provider did not respond within the deadline")

	// ErrExtractionFailed means the response contained no JSON object at all.
	ErrExtractionFailed = errors.New("ocr: no structured data detected in provider response")

	// ErrMalformedPayload means a JSON object was found but could not be parsed.
	ErrMalformedPayload = errors.New("ocr: embedded JSON payload could not be parsed")

	// ErrProviderConfigConflict means the provider rejected the request
	// configuration, typically an unsupported schema/model combination.
	ErrProviderConfigConflict = errors.New("ocr: provider rejected the request configuration")
)
