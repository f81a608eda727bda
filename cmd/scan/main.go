// Command scan runs a single receipt image through the full extraction
// pipeline (prepare, OCR, normalize) and prints the resulting draft as JSON.
// Useful for checking provider behavior against real receipts without
// driving the whole session flow.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/arnavkapoor/bridgepay/internal/config"
	"github.com/arnavkapoor/bridgepay/internal/imageprep"
	"github.com/arnavkapoor/bridgepay/internal/logger"
	"github.com/arnavkapoor/bridgepay/internal/ocr"
	"github.com/arnavkapoor/bridgepay/internal/receipt"
)

func main() {
	var (
		imagePath  = flag.String("image", "", "path to a receipt image (jpeg/png/gif)")
		configPath = flag.String("config", "", "path to config.yaml")
		rawOutput  = flag.Bool("raw", false, "print the raw extraction fields instead of the normalized draft")
	)
	flag.Parse()

	log := logger.New("bridgepay-scan")

	if *imagePath == "" {
		fmt.Fprintln(os.Stderr, "usage: scan -image <path> [-config <path>] [-raw]")
		os.Exit(1)
	}

	if err := run(*imagePath, *configPath, *rawOutput); err != nil {
		log.Fatal().Err(err).Msg("Scan failed")
	}
}

func run(imagePath, configPath string, rawOutput bool) error {
	ctx := context.Background()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New("bridgepay-scan")

	provider, err := ocr.NewGeminiProvider(ocr.GeminiOptions{
		APIKey:     cfg.OCR.APIKey,
		Model:      cfg.OCR.Model,
		Timeout:    cfg.OCR.Timeout(),
		Structured: cfg.OCR.StructuredOutput,
	}, log)
	if err != nil {
		return err
	}

	imageData, err := os.ReadFile(imagePath)
	if err != nil {
		return fmt.Errorf("read image %q: %w", imagePath, err)
	}

	jpegBytes, err := imageprep.PrepareJPEG(imageData, cfg.Image.MaxDimension, cfg.Image.JPEGQuality)
	if err != nil {
		return err
	}
	log.Info().
		Int("original_bytes", len(imageData)).
		Int("upload_bytes", len(jpegBytes)).
		Msg("Image prepared")

	raw, err := provider.ExtractReceipt(ctx, jpegBytes)
	if err != nil {
		return err
	}

	var out any = raw
	if !rawOutput {
		draft, err := receipt.NewNormalizer(cfg.Payment.FastRailCountries).Normalize(raw)
		if err != nil {
			return err
		}
		out = draft
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
