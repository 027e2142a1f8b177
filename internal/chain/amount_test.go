package chain

import (
	"errors"
	"testing"

	"github.com/hallenjay/tokentribute/internal/domain"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input string
		want  string // base-10 units, empty means error expected
	}{
		{"12.34", "12340000"},
		{"50", "50000000"},
		{"0.000001", "1"},
		{"1.", "1000000"},
		{" 5 ", "5000000"},
		{"0", ""},
		{"0.0", ""},
		{"", ""},
		{"   ", ""},
		{"-5", ""},
		{"abc", ""},
		{"1.2.3", ""},
		{"1,5", ""},
		{"0.0000001", ""}, // more precision than USDC carries
		{".", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			units, err := ParseAmount(tt.input, USDCDecimals)
			if tt.want == "" {
				if err == nil {
					t.Fatalf("ParseAmount(%q) = %s, want error", tt.input, units)
				}
				var ia *domain.InvalidAmountError
				if !errors.As(err, &ia) {
					t.Fatalf("error type = %T, want InvalidAmountError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAmount(%q) error: %v", tt.input, err)
			}
			if units.String() != tt.want {
				t.Errorf("ParseAmount(%q) = %s, want %s", tt.input, units, tt.want)
			}
		})
	}
}
