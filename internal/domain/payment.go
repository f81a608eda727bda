package domain

// PaymentData is the normalized draft produced from one scanned receipt.
// It lives from the moment a scan succeeds until the cycle is finalized or
// cancelled; it is never persisted.
type PaymentData struct {
	MerchantName     string  `json:"merchantName"`
	Country          string  `json:"country"`
	OriginalCurrency string  `json:"originalCurrency"` // resolved FX code, e.g. "EUR"
	OriginalAmount   float64 `json:"originalAmount"`   // in OriginalCurrency, > 0
	Subtotal         float64 `json:"subtotal"`
	Tax              float64 `json:"tax"`
	INRAmount        float64 `json:"inrAmount"` // OriginalAmount * FX rate
	IsNIPL           bool    `json:"isNIPL"`    // qualifies for the fast-rail routing path
}

// TransactionStatus is the settlement outcome recorded in the ledger.
type TransactionStatus string

const (
	StatusSuccess TransactionStatus = "SUCCESS"
	StatusFailed  TransactionStatus = "FAILED"
	StatusPending TransactionStatus = "PENDING"
)

// Transaction is one settled payment. It is created only when a payment cycle
// finalizes and is immutable from then on.
type Transaction struct {
	ID       string            `json:"id"`
	Merchant string            `json:"merchant"`
	Amount   float64           `json:"amount"`   // in Currency
	Currency string            `json:"currency"` // original receipt currency
	INRValue float64           `json:"inrValue"` // total deducted, fees included
	Date     string            `json:"date"`     // e.g. "Dec 29, 2025"
	Status   TransactionStatus `json:"status"`
}
