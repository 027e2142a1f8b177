// Package eligibility decides whether a reputation-network profile can
// receive a donation. Evaluation is pure: no I/O, and identical input always
// produces an identical decision, so callers may re-evaluate freely before
// touching the chain.
package eligibility

import (
	"github.com/hallenjay/tokentribute/internal/domain"
)

// Decision is the outcome of an eligibility check.
type Decision struct {
	// Eligible reports whether the credibility score meets the threshold.
	Eligible bool
	// SettlementAddress is the wallet extracted from the profile's key list,
	// empty when no address key exists. The address is not format-validated
	// here; the transfer layer owns that.
	SettlementAddress string
	// Reason is set whenever the profile is not donatable.
	Reason domain.IneligibleReason
}

// Donatable reports whether a transfer may proceed: the score gate passed and
// a settlement address exists.
func (d Decision) Donatable() bool {
	return d.Eligible && d.SettlementAddress != ""
}

// Evaluate checks a profile against the minimum credibility score and
// extracts its settlement address. The two non-donatable states are kept
// distinct: a profile below the threshold reports ReasonBelowThreshold even
// when it also lacks a wallet, because raising the score is the remediation
// the user sees first.
func Evaluate(p domain.Profile, minScore int) Decision {
	addr, _ := p.SettlementAddress()

	d := Decision{
		Eligible:          p.CredibilityScore >= minScore,
		SettlementAddress: addr,
	}

	switch {
	case !d.Eligible:
		d.Reason = domain.ReasonBelowThreshold
	case addr == "":
		d.Reason = domain.ReasonNoWallet
	}

	return d
}

// Err converts a non-donatable decision into the typed error the donation
// flow reports upward. It returns nil when the decision is donatable.
func (d Decision) Err(score, minScore int) error {
	if d.Donatable() {
		return nil
	}
	return &domain.NotEligibleError{
		Reason:   d.Reason,
		Score:    score,
		MinScore: minScore,
	}
}
