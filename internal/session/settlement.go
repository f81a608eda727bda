package session

import (
	"fmt"
	"time"

	"github.com/arnavkapoor/bridgepay/internal/domain"
	"github.com/arnavkapoor/bridgepay/internal/fx"
)

// Step is one line of the simulated settlement terminal together with the
// pause shown before the next line appears.
type Step struct {
	Message string
	Delay   time.Duration
}

// Script produces the scripted settlement sequence for a draft. It is an
// interface so tests can substitute a zero-delay script.
type Script interface {
	Steps(data domain.PaymentData) []Step
}

// BridgeScript is the stock settlement terminal sequence: ISO-20022
// handshake, correspondent bank, FX confirmation, rail dispatch and credit
// confirmation. The rail line depends on whether the payment qualifies for
// the fast-rail path.
type BridgeScript struct {
	StepDelay time.Duration
}

// Steps implements Script.
func (b BridgeScript) Steps(data domain.PaymentData) []Step {
	rate := fx.Lookup(data.OriginalCurrency).Rate

	rail := "Global BaaS Bridge"
	if data.IsNIPL {
		rail = "Native Rail"
	}

	messages := []string{
		"> [BRIDGE] Handshake Initiated: Requesting pacs.008 ISO-20022 message...",
		"> [CORE] Communicating with Global Correspondent Bank (Sponsor Node)...",
		fmt.Sprintf("> [FX] Mid-Market Rate conversion finalized: 1 %s = %g INR.", data.OriginalCurrency, rate),
		fmt.Sprintf("> [SETTLE] Dispatching funds via %s (FedNow/SEPA/FPS)...", rail),
		"> [SUCCESS] Merchant Account Credited. Bridge Closed.",
	}

	steps := make([]Step, len(messages))
	for i, msg := range messages {
		steps[i] = Step{Message: msg, Delay: b.StepDelay}
	}
	return steps
}
