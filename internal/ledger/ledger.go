// Package ledger holds the process-lifetime record of settled transactions
// and the running INR balance. Data is lost on restart - there is no
// database-backed store in this demo.
package ledger

import "github.com/arnavkapoor/bridgepay/internal/domain"

// Ledger is an append-only, newest-first list of transactions paired with the
// balance they have been deducted from. It is owned by the payment session;
// the session serializes all access, so the ledger itself carries no lock.
type Ledger struct {
	balance float64
	txs     []domain.Transaction
}

// New creates a ledger with the given starting balance. Seed transactions are
// display history only; they do not affect the balance.
func New(initialBalance float64, seed ...domain.Transaction) *Ledger {
	l := &Ledger{balance: initialBalance}
	l.txs = append(l.txs, seed...)
	return l
}

// Record appends a finalized transaction at the head and decrements the
// balance by its total INR deduction.
func (l *Ledger) Record(tx domain.Transaction) {
	l.txs = append([]domain.Transaction{tx}, l.txs...)
	l.balance -= tx.INRValue
}

// Balance returns the current INR balance.
func (l *Ledger) Balance() float64 {
	return l.balance
}

// Transactions returns the recorded transactions, newest first. The returned
// slice is a copy so callers cannot modify ledger state.
func (l *Ledger) Transactions() []domain.Transaction {
	out := make([]domain.Transaction, len(l.txs))
	copy(out, l.txs)
	return out
}

// Len reports how many transactions the ledger holds.
func (l *Ledger) Len() int {
	return len(l.txs)
}
