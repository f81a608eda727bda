// Package session owns the scan-to-settle payment cycle: the screen state
// machine, the current payment draft, the settlement simulation and the
// ledger. All mutation goes through session methods; the internal mutex
// stands in for the single-threaded UI loop of the original mobile design,
// since HTTP handlers call in from multiple goroutines.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/arnavkapoor/bridgepay/internal/domain"
	"github.com/arnavkapoor/bridgepay/internal/fees"
	"github.com/arnavkapoor/bridgepay/internal/imageprep"
	"github.com/arnavkapoor/bridgepay/internal/ledger"
	"github.com/arnavkapoor/bridgepay/internal/ocr"
	"github.com/arnavkapoor/bridgepay/internal/receipt"
)

// State is the current screen/mode of the payment cycle.
type State string

const (
	StateDashboard      State = "dashboard"
	StateScanning       State = "scanning"
	StatePreview        State = "payment_preview"
	StateAuthenticating State = "authenticating"
	StateSuccess        State = "success"
)

// Transition and input failures reported to the presentation layer.
var (
	ErrInvalidTransition = errors.New("session: action not allowed in current state")
	ErrScanInFlight      = errors.New("session: a scan is already in progress")
	ErrInvalidPIN        = errors.New("session: PIN must be exactly 4 digits")
	ErrSettling          = errors.New("session: settlement already running")
)

// Options configures a Session.
type Options struct {
	// DismissAfter is how long the success receipt stays up before the
	// session returns to the dashboard on its own. Zero means 6s.
	DismissAfter time.Duration

	// Script generates the settlement terminal sequence. Nil means the stock
	// BridgeScript with 1.2s steps.
	Script Script

	// VerifyDelay simulates PIN verification; CompleteDelay holds the last
	// terminal line before the receipt appears. Zero means the stock
	// 1.5s / 1s; tests inject a no-op Sleep instead.
	VerifyDelay   time.Duration
	CompleteDelay time.Duration

	// Sleep is the delay primitive used during settlement. Tests inject a
	// no-op. Nil means time.Sleep.
	Sleep func(time.Duration)

	// Now supplies transaction timestamps. Nil means time.Now.
	Now func() time.Time

	// MaxImageDim and JPEGQuality shape the image sent to the provider.
	// Zero means 1000px / quality 65.
	MaxImageDim int
	JPEGQuality int
}

// Session is the single owner of payment-cycle state. One scan-to-settle
// cycle is in flight at most; a new scan can only start after the previous
// one resolved.
type Session struct {
	mu sync.Mutex

	state     State
	draft     *domain.PaymentData
	scanErr   string
	scanBusy  bool
	scanGen   uint64
	settling  bool
	settleLog []string

	ledger     *ledger.Ledger
	provider   ocr.Provider
	normalizer *receipt.Normalizer

	script        Script
	verifyDelay   time.Duration
	completeDelay time.Duration
	dismissAfter  time.Duration
	dismissTimer  *time.Timer

	sleep func(time.Duration)
	now   func() time.Time

	maxImageDim int
	jpegQuality int

	log zerolog.Logger
}

// New creates a session starting on the dashboard.
func New(provider ocr.Provider, normalizer *receipt.Normalizer, lgr *ledger.Ledger, opts Options, log zerolog.Logger) *Session {
	if opts.DismissAfter == 0 {
		opts.DismissAfter = 6 * time.Second
	}
	if opts.Script == nil {
		opts.Script = BridgeScript{StepDelay: 1200 * time.Millisecond}
	}
	if opts.VerifyDelay == 0 {
		opts.VerifyDelay = 1500 * time.Millisecond
	}
	if opts.CompleteDelay == 0 {
		opts.CompleteDelay = time.Second
	}
	if opts.Sleep == nil {
		opts.Sleep = time.Sleep
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.MaxImageDim == 0 {
		opts.MaxImageDim = 1000
	}
	if opts.JPEGQuality == 0 {
		opts.JPEGQuality = 65
	}

	return &Session{
		state:         StateDashboard,
		ledger:        lgr,
		provider:      provider,
		normalizer:    normalizer,
		script:        opts.Script,
		verifyDelay:   opts.VerifyDelay,
		completeDelay: opts.CompleteDelay,
		dismissAfter:  opts.DismissAfter,
		sleep:         opts.Sleep,
		now:           opts.Now,
		maxImageDim:   opts.MaxImageDim,
		jpegQuality:   opts.JPEGQuality,
		log:           log,
	}
}

// View is a read-only snapshot of the session for the presentation layer.
type View struct {
	State         State               `json:"state"`
	Draft         *domain.PaymentData `json:"draft,omitempty"`
	ScanError     string              `json:"scanError,omitempty"`
	ScanBusy      bool                `json:"scanBusy"`
	Balance       float64             `json:"balance"`
	SettlementLog []string            `json:"settlementLog,omitempty"`
}

// Snapshot returns the current session view.
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		State:     s.state,
		ScanError: s.scanErr,
		ScanBusy:  s.scanBusy,
		Balance:   s.ledger.Balance(),
	}
	if s.draft != nil {
		draft := *s.draft
		v.Draft = &draft
	}
	if len(s.settleLog) > 0 {
		v.SettlementLog = append([]string(nil), s.settleLog...)
	}
	return v
}

// Transactions returns the ledger contents, newest first.
func (s *Session) Transactions() []domain.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Transactions()
}

// StartScan moves from the dashboard to the scanner.
func (s *Session) StartScan() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateDashboard {
		return fmt.Errorf("%w: start scan from %s", ErrInvalidTransition, s.state)
	}
	s.state = StateScanning
	s.scanErr = ""
	return nil
}

// Scan runs one capture through the OCR gateway and the normalizer. On
// success the draft is stored and the session moves to the payment preview.
// Every failure is non-fatal: the session stays on the scanner with a
// user-visible message, the draft stays empty and the classified error is
// returned so the caller can shape its response. No automatic retry happens
// here - retrying is a new Scan call. A scan whose cycle was cancelled while
// the provider call was in flight is abandoned without touching session state.
func (s *Session) Scan(ctx context.Context, imageData []byte) error {
	s.mu.Lock()
	if s.state != StateScanning {
		s.mu.Unlock()
		return fmt.Errorf("%w: scan from %s", ErrInvalidTransition, s.state)
	}
	if s.scanBusy {
		s.mu.Unlock()
		return ErrScanInFlight
	}
	s.scanBusy = true
	s.scanErr = ""
	gen := s.scanGen
	s.mu.Unlock()

	data, err := s.runScan(ctx, imageData)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.scanBusy = false

	// The lock was released during the provider call, so the user may have
	// cancelled in the meantime. A cancelled scan is abandoned outright: its
	// result must not touch a session that already left the scanner, and a
	// stale result must not leak into a new scan cycle.
	if s.state != StateScanning || gen != s.scanGen {
		s.log.Info().Msg("Scan resolved after cancel, result abandoned")
		return fmt.Errorf("%w: scan cancelled while in flight", ErrInvalidTransition)
	}

	if err != nil {
		s.scanErr = scanMessage(err)
		s.log.Warn().Err(err).Msg("Receipt scan failed")
		return err
	}

	s.draft = &data
	s.state = StatePreview
	s.log.Info().
		Str("merchant", data.MerchantName).
		Str("currency", data.OriginalCurrency).
		Float64("inr_amount", data.INRAmount).
		Bool("nipl", data.IsNIPL).
		Msg("Receipt normalized")
	return nil
}

// runScan executes the prep -> extract -> normalize pipeline without holding
// the session lock, so snapshots stay responsive during the provider call.
func (s *Session) runScan(ctx context.Context, imageData []byte) (domain.PaymentData, error) {
	jpegBytes, err := imageprep.PrepareJPEG(imageData, s.maxImageDim, s.jpegQuality)
	if err != nil {
		return domain.PaymentData{}, err
	}

	raw, err := s.provider.ExtractReceipt(ctx, jpegBytes)
	if err != nil {
		return domain.PaymentData{}, err
	}

	return s.normalizer.Normalize(raw)
}

// ConfirmPreview moves from the payment preview to PIN entry.
func (s *Session) ConfirmPreview() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StatePreview {
		return fmt.Errorf("%w: confirm preview from %s", ErrInvalidTransition, s.state)
	}
	s.state = StateAuthenticating
	s.settleLog = nil
	return nil
}

// Authenticate accepts the 4-digit PIN, simulates verification and runs the
// scripted settlement sequence to completion, then finalizes the payment.
// The sequence is not interruptible once started. The PIN is cosmetic; it is
// not verified against any secret.
func (s *Session) Authenticate(ctx context.Context, pin string) error {
	s.mu.Lock()
	if s.state != StateAuthenticating {
		s.mu.Unlock()
		return fmt.Errorf("%w: authenticate from %s", ErrInvalidTransition, s.state)
	}
	if !validPIN(pin) {
		s.mu.Unlock()
		return ErrInvalidPIN
	}
	if s.settling {
		s.mu.Unlock()
		return ErrSettling
	}
	s.settling = true
	draft := *s.draft
	s.mu.Unlock()

	s.sleep(s.verifyDelay)

	for _, step := range s.script.Steps(draft) {
		s.mu.Lock()
		s.settleLog = append(s.settleLog, step.Message)
		s.mu.Unlock()
		s.sleep(step.Delay)
	}
	s.sleep(s.completeDelay)

	s.finalize(draft)
	return nil
}

// finalize computes the deduction, records the transaction and shows the
// receipt. This is the only place a Transaction is created or the balance
// moves.
func (s *Session) finalize(draft domain.PaymentData) {
	deduction := fees.ComputeDeduction(draft.INRAmount)

	tx := domain.Transaction{
		ID:       uuid.NewString(),
		Merchant: draft.MerchantName,
		Amount:   draft.OriginalAmount,
		Currency: draft.OriginalCurrency,
		INRValue: deduction.Total,
		Date:     s.now().Format("Jan 2, 2006"),
		Status:   domain.StatusSuccess,
	}

	s.mu.Lock()
	s.ledger.Record(tx)
	balance := s.ledger.Balance()
	s.state = StateSuccess
	s.settling = false
	s.dismissTimer = time.AfterFunc(s.dismissAfter, s.Dismiss)
	s.mu.Unlock()

	s.log.Info().
		Str("transaction_id", tx.ID).
		Str("merchant", tx.Merchant).
		Float64("inr_value", tx.INRValue).
		Float64("balance", balance).
		Msg("Payment settled")
}

// Cancel abandons the current cycle and returns to the dashboard, clearing
// the draft and any scan error. It is allowed from the scanner and the
// preview; settlement cannot be cancelled once running.
func (s *Session) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateScanning, StatePreview:
		s.state = StateDashboard
		s.draft = nil
		s.scanErr = ""
		s.scanGen++ // invalidate any scan still in flight
		return nil
	default:
		return fmt.Errorf("%w: cancel from %s", ErrInvalidTransition, s.state)
	}
}

// Dismiss closes the success receipt and returns to the dashboard. It is
// called by the auto-dismiss timer and by an explicit user action; the timer
// is cancelled either way so a late fire cannot disturb a new cycle.
func (s *Session) Dismiss() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dismissTimer != nil {
		s.dismissTimer.Stop()
		s.dismissTimer = nil
	}
	if s.state != StateSuccess {
		return
	}
	s.state = StateDashboard
	s.draft = nil
	s.scanErr = ""
	s.settleLog = nil
}

// validPIN requires exactly four digit characters.
func validPIN(pin string) bool {
	if len(pin) != 4 {
		return false
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// scanMessage converts a classified scan failure into the message shown on
// the scanner screen.
func scanMessage(err error) string {
	switch {
	case errors.Is(err, ocr.ErrMissingCredential):
		return "The scanner is not configured with an API credential."
	case errors.Is(err, ocr.ErrGatewayTimeout):
		return "The OCR node failed to respond in time. Please try again."
	case errors.Is(err, ocr.ErrProviderConfigConflict):
		return "The scanning engine parameters were rejected. Please verify model capability."
	case errors.Is(err, ocr.ErrExtractionFailed):
		return "No structured data detected on the receipt. Please retake the photo."
	case errors.Is(err, ocr.ErrMalformedPayload):
		return "The scanner output was corrupted. Please try again."
	case errors.Is(err, receipt.ErrNoPayableAmount):
		return "No payable amount found on this receipt."
	case errors.Is(err, receipt.ErrValidation):
		return "The receipt could not be read. Please try again."
	default:
		return "Receipt scan failed. Please try again."
	}
}
