package eligibility

import (
	"errors"
	"testing"

	"github.com/hallenjay/tokentribute/internal/domain"
)

func profileWith(score int, rawKeys ...string) domain.Profile {
	return domain.Profile{
		Username:         "tester",
		CredibilityScore: score,
		Keys:             domain.ParseUserKeys(rawKeys),
	}
}

func TestEvaluate(t *testing.T) {
	const threshold = 1400

	tests := []struct {
		name      string
		profile   domain.Profile
		donatable bool
		address   string
		reason    domain.IneligibleReason
	}{
		{
			name:      "above threshold with wallet",
			profile:   profileWith(1800, "address:0xD1C7bf8990FbA07F9C8B57529e3D9753D00A73aA", "twitter:x"),
			donatable: true,
			address:   "0xD1C7bf8990FbA07F9C8B57529e3D9753D00A73aA",
		},
		{
			name:      "exactly at threshold",
			profile:   profileWith(1400, "address:0xabc"),
			donatable: true,
			address:   "0xabc",
		},
		{
			name:      "below threshold regardless of keys",
			profile:   profileWith(800, "address:0xabc"),
			donatable: false,
			address:   "0xabc",
			reason:    domain.ReasonBelowThreshold,
		},
		{
			name:      "eligible but no wallet",
			profile:   profileWith(1800, "twitter:nobody", "github:nobody"),
			donatable: false,
			reason:    domain.ReasonNoWallet,
		},
		{
			name:      "first address key wins",
			profile:   profileWith(1800, "twitter:a", "address:0xfirst", "address:0xsecond"),
			donatable: true,
			address:   "0xfirst",
		},
		{
			name:      "empty key list",
			profile:   profileWith(1800),
			donatable: false,
			reason:    domain.ReasonNoWallet,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Evaluate(tt.profile, threshold)
			if d.Donatable() != tt.donatable {
				t.Errorf("Donatable() = %v, want %v", d.Donatable(), tt.donatable)
			}
			if d.SettlementAddress != tt.address {
				t.Errorf("SettlementAddress = %q, want %q", d.SettlementAddress, tt.address)
			}
			if !tt.donatable && d.Reason != tt.reason {
				t.Errorf("Reason = %q, want %q", d.Reason, tt.reason)
			}
		})
	}
}

func TestEvaluateIsPure(t *testing.T) {
	p := profileWith(1500, "address:0xabc")
	first := Evaluate(p, 1400)
	for i := 0; i < 10; i++ {
		if got := Evaluate(p, 1400); got != first {
			t.Fatalf("run %d produced %+v, want %+v", i, got, first)
		}
	}
}

func TestDecisionErr(t *testing.T) {
	d := Evaluate(profileWith(800, "address:0xabc"), 1400)
	err := d.Err(800, 1400)

	var ne *domain.NotEligibleError
	if !errors.As(err, &ne) {
		t.Fatalf("expected NotEligibleError, got %v", err)
	}
	if ne.Reason != domain.ReasonBelowThreshold {
		t.Errorf("reason = %q, want %q", ne.Reason, domain.ReasonBelowThreshold)
	}

	ok := Evaluate(profileWith(1800, "address:0xabc"), 1400)
	if err := ok.Err(1800, 1400); err != nil {
		t.Errorf("donatable decision should have nil error, got %v", err)
	}
}
