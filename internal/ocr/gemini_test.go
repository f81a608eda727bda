package ocr

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"google.golang.org/genai"

	"github.com/arnavkapoor/bridgepay/internal/logger"
)

func testProvider(t *testing.T) *GeminiProvider {
	t.Helper()
	p, err := NewGeminiProvider(GeminiOptions{APIKey: "test-key"}, logger.New("test"))
	if err != nil {
		t.Fatalf("NewGeminiProvider() error = %v", err)
	}
	return p
}

func TestNewGeminiProviderMissingKey(t *testing.T) {
	_, err := NewGeminiProvider(GeminiOptions{}, logger.New("test"))
	if !errors.Is(err, ErrMissingCredential) {
		t.Errorf("NewGeminiProvider() error = %v, want ErrMissingCredential", err)
	}
}

func TestNewGeminiProviderDefaults(t *testing.T) {
	p := testProvider(t)
	if p.model == "" {
		t.Error("model default not applied")
	}
	if p.timeout != 25*time.Second {
		t.Errorf("timeout = %v, want 25s", p.timeout)
	}
}

func TestClassify(t *testing.T) {
	p := testProvider(t)

	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "deadline exceeded becomes gateway timeout",
			err:  fmt.Errorf("rpc: %w", context.DeadlineExceeded),
			want: ErrGatewayTimeout,
		},
		{
			name: "invalid argument becomes config conflict",
			err:  genai.APIError{Code: 400, Message: "response_schema is not supported for this model"},
			want: ErrProviderConfigConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.classify(tt.err); !errors.Is(got, tt.want) {
				t.Errorf("classify(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestClassifyPassesThroughOtherErrors(t *testing.T) {
	p := testProvider(t)

	serverErr := genai.APIError{Code: 500, Message: "internal"}
	got := p.classify(serverErr)

	if errors.Is(got, ErrProviderConfigConflict) || errors.Is(got, ErrGatewayTimeout) {
		t.Errorf("classify(500) = %v, should not match a specific taxonomy entry", got)
	}
	var apiErr genai.APIError
	if !errors.As(got, &apiErr) {
		t.Errorf("classify(500) = %v, want the provider error preserved in the chain", got)
	}
}
