package chain

import (
	"math/big"
	"strings"

	"github.com/hallenjay/tokentribute/internal/domain"
)

// USDCDecimals is the ERC-20 decimals value of the USDC contract.
const USDCDecimals = 6

// ParseAmount converts user-entered decimal text into token base units.
// It rejects empty, non-numeric, zero, and negative input before any wallet
// interaction happens. "12.34" with 6 decimals becomes 12340000.
func ParseAmount(input string, decimals int) (*big.Int, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return nil, &domain.InvalidAmountError{Input: input, Detail: "amount is empty"}
	}
	if strings.HasPrefix(s, "-") {
		return nil, &domain.InvalidAmountError{Input: input, Detail: "amount must be positive"}
	}
	if strings.HasPrefix(s, "+") {
		s = s[1:]
	}

	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" && frac == "" {
		return nil, &domain.InvalidAmountError{Input: input, Detail: "amount is not a number"}
	}
	if !isDigits(whole) || !isDigits(frac) {
		return nil, &domain.InvalidAmountError{Input: input, Detail: "amount is not a number"}
	}
	if len(frac) > decimals {
		return nil, &domain.InvalidAmountError{Input: input, Detail: "too many decimal places"}
	}

	// Scale the fractional part up to the full decimals width.
	frac += strings.Repeat("0", decimals-len(frac))

	units, ok := new(big.Int).SetString(whole+frac, 10)
	if !ok {
		return nil, &domain.InvalidAmountError{Input: input, Detail: "amount is not a number"}
	}
	if units.Sign() <= 0 {
		return nil, &domain.InvalidAmountError{Input: input, Detail: "amount must be positive"}
	}

	return units, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
