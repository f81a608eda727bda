package ocr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

// GeminiProvider implements Provider against the Gemini API.
type GeminiProvider struct {
	apiKey     string
	model      string
	timeout    time.Duration
	structured bool // request schema-enforced JSON output
	log        zerolog.Logger
}

// GeminiOptions configures a GeminiProvider.
type GeminiOptions struct {
	APIKey string
	Model  string
	// Timeout bounds a single extraction call. Zero means 25s.
	Timeout time.Duration
	// Structured requests schema-enforced JSON output. Models that do not
	// support it reject the request; the caller then sees
	// ErrProviderConfigConflict rather than a silent fallback.
	Structured bool
}

// NewGeminiProvider builds the provider. It fails fast with
// ErrMissingCredential when no API key is configured, before any network call.
func NewGeminiProvider(opts GeminiOptions, log zerolog.Logger) (*GeminiProvider, error) {
	if opts.APIKey == "" {
		return nil, ErrMissingCredential
	}
	if opts.Model == "" {
		opts.Model = "gemini-2.5-flash"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 25 * time.Second
	}
	return &GeminiProvider{
		apiKey:     opts.APIKey,
		model:      opts.Model,
		timeout:    opts.Timeout,
		structured: opts.Structured,
		log:        log,
	}, nil
}

// receiptSchema is the response schema used in structured mode.
var receiptSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"merchantName": {Type: genai.TypeString},
		"country":      {Type: genai.TypeString},
		"currency":     {Type: genai.TypeString},
		"subtotal":     {Type: genai.TypeNumber},
		"tax":          {Type: genai.TypeNumber},
		"total":        {Type: genai.TypeNumber},
	},
	Required: []string{"merchantName", "country", "currency", "total"},
}

// ExtractReceipt sends one image plus the extraction instruction to Gemini and
// returns the raw field map. A single attempt is made; the hard timeout
// abandons the in-flight request.
func (p *GeminiProvider) ExtractReceipt(ctx context.Context, jpegBytes []byte) (map[string]any, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      p.apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("ExtractReceipt: create genai client: %w", err)
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{InlineData: &genai.Blob{MIMEType: "image/jpeg", Data: jpegBytes}},
				{Text: extractionPrompt},
			},
		},
	}

	var cfg *genai.GenerateContentConfig
	if p.structured {
		cfg = &genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   receiptSchema,
		}
	}

	start := time.Now()
	resp, err := client.Models.GenerateContent(ctx, p.model, contents, cfg)
	if err != nil {
		return nil, p.classify(err)
	}

	rawText := resp.Text()
	if rawText == "" {
		return nil, fmt.Errorf("%w: empty response from model", ErrExtractionFailed)
	}

	p.log.Debug().
		Str("model", p.model).
		Dur("duration", time.Since(start)).
		Int("response_len", len(rawText)).
		Msg("Receipt extraction response received")

	return decodeReceiptPayload(rawText)
}

// classify maps transport-level failures onto the gateway error taxonomy so
// the session can show an actionable message instead of a generic one.
func (p *GeminiProvider) classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s", ErrGatewayTimeout, p.timeout)
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusBadRequest {
		// INVALID_ARGUMENT: the model rejected the request shape, usually a
		// schema/JSON-mode flag it does not support.
		return fmt.Errorf("%w: %s", ErrProviderConfigConflict, apiErr.Message)
	}

	return fmt.Errorf("ExtractReceipt: generate content: %w", err)
}
