package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arnavkapoor/bridgepay/internal/api/handlers"
	"github.com/arnavkapoor/bridgepay/internal/api/middleware"
	"github.com/arnavkapoor/bridgepay/internal/config"
	"github.com/arnavkapoor/bridgepay/internal/domain"
	"github.com/arnavkapoor/bridgepay/internal/ledger"
	"github.com/arnavkapoor/bridgepay/internal/logger"
	"github.com/arnavkapoor/bridgepay/internal/ocr"
	"github.com/arnavkapoor/bridgepay/internal/receipt"
	"github.com/arnavkapoor/bridgepay/internal/session"
)

// demoTransactions seed the dashboard so the first screen is not empty. They
// are display history only and do not affect the balance.
var demoTransactions = []domain.Transaction{
	{
		ID:       "1",
		Merchant: "Starbucks Times Square",
		Amount:   4.50,
		Currency: "USD",
		INRValue: 404.82,
		Date:     "Dec 29, 2025",
		Status:   domain.StatusSuccess,
	},
	{
		ID:       "2",
		Merchant: "Louver Museum Paris",
		Amount:   22.00,
		Currency: "EUR",
		INRValue: 2310.00,
		Date:     "Dec 28, 2025",
		Status:   domain.StatusSuccess,
	},
}

func main() {
	var (
		port       = flag.String("port", "", "HTTP server port (overrides config)")
		configPath = flag.String("config", "", "path to config.yaml")
	)
	flag.Parse()

	log := logger.New("bridgepay-api")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if *port != "" {
		cfg.Server.Port = *port
	}

	provider, err := ocr.NewGeminiProvider(ocr.GeminiOptions{
		APIKey:     cfg.OCR.APIKey,
		Model:      cfg.OCR.Model,
		Timeout:    cfg.OCR.Timeout(),
		Structured: cfg.OCR.StructuredOutput,
	}, log)
	if err != nil {
		// Most commonly ErrMissingCredential: fail fast before serving.
		log.Fatal().Err(err).Msg("Failed to initialize OCR provider")
	}

	normalizer := receipt.NewNormalizer(cfg.Payment.FastRailCountries)
	wallet := ledger.New(cfg.Payment.InitialBalance, demoTransactions...)

	sess := session.New(provider, normalizer, wallet, session.Options{
		DismissAfter: cfg.Payment.DismissAfter(),
		MaxImageDim:  cfg.Image.MaxDimension,
		JPEGQuality:  cfg.Image.JPEGQuality,
	}, log)

	sessionHandler := handlers.NewSessionHandler(sess, log)

	mux := http.NewServeMux()

	mux.HandleFunc("/api/session", requireMethod(http.MethodGet, sessionHandler.GetSession))
	mux.HandleFunc("/api/transactions", requireMethod(http.MethodGet, sessionHandler.ListTransactions))
	mux.HandleFunc("/api/scan/start", requireMethod(http.MethodPost, sessionHandler.StartScan))
	mux.HandleFunc("/api/scan", requireMethod(http.MethodPost, sessionHandler.Scan))
	mux.HandleFunc("/api/payment/confirm", requireMethod(http.MethodPost, sessionHandler.ConfirmPreview))
	mux.HandleFunc("/api/payment/authenticate", requireMethod(http.MethodPost, sessionHandler.Authenticate))
	mux.HandleFunc("/api/session/cancel", requireMethod(http.MethodPost, sessionHandler.Cancel))
	mux.HandleFunc("/api/session/dismiss", requireMethod(http.MethodPost, sessionHandler.Dismiss))

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(mux),
			),
		),
	)

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: handler,
		// Scan requests block on the provider call; settlement blocks on the
		// scripted sequence. The write timeout must cover both.
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Str("model", cfg.OCR.Model).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// requireMethod rejects all methods except the given one.
func requireMethod(method string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		next(w, r)
	}
}
