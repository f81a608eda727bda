// Package fees computes the deduction applied to every cross-border
// settlement: a bridge fee on the INR amount plus GST on that fee.
package fees

// Fee rates are fixed for the demo. BridgeFeeRate applies to the converted
// INR amount; GSTOnFeeRate applies to the bridge fee only.
const (
	BridgeFeeRate = 0.015
	GSTOnFeeRate  = 0.18
)

// Deduction is the full fee breakdown for one settlement.
type Deduction struct {
	Fee   float64 `json:"fee"`
	GST   float64 `json:"gst"`
	Total float64 `json:"total"` // base amount + Fee + GST
}

// ComputeDeduction returns the deduction for a base INR amount. It is pure and
// deterministic; every call site that shows or applies a deduction (preview,
// finalize, receipt) must go through it so the displayed figures always equal
// the amount actually deducted.
func ComputeDeduction(baseAmount float64) Deduction {
	fee := baseAmount * BridgeFeeRate
	gst := fee * GSTOnFeeRate
	return Deduction{
		Fee:   fee,
		GST:   gst,
		Total: baseAmount + fee + gst,
	}
}
