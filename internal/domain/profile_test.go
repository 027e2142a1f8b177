package domain

import "testing"

func TestParseUserKey(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		scheme  KeyScheme
		service string
		value   string
	}{
		{"address", "address:0xD1C7bf8990FbA07F9C8B57529e3D9753D00A73aA", KeySchemeAddress, "", "0xD1C7bf8990FbA07F9C8B57529e3D9753D00A73aA"},
		{"twitter", "twitter:hallenjayArt", KeySchemeSocial, "twitter", "hallenjayArt"},
		{"github", "github:jaytechent", KeySchemeSocial, "github", "jaytechent"},
		{"mixed case service", "Twitter:someone", KeySchemeSocial, "twitter", "someone"},
		{"unknown scheme", "lens:someone", KeySchemeUnknown, "", "someone"},
		{"no separator", "justastring", KeySchemeUnknown, "", ""},
		{"empty value", "address:", KeySchemeUnknown, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k := ParseUserKey(tt.raw)
			if k.Scheme != tt.scheme {
				t.Errorf("scheme = %q, want %q", k.Scheme, tt.scheme)
			}
			if k.Service != tt.service {
				t.Errorf("service = %q, want %q", k.Service, tt.service)
			}
			if k.Value != tt.value {
				t.Errorf("value = %q, want %q", k.Value, tt.value)
			}
			if k.Raw != tt.raw {
				t.Errorf("raw = %q, want %q", k.Raw, tt.raw)
			}
		})
	}
}

func TestProfileSettlementAddress(t *testing.T) {
	p := Profile{Keys: ParseUserKeys([]string{
		"twitter:alice",
		"address:0xabc",
		"address:0xdef",
	})}

	addr, ok := p.SettlementAddress()
	if !ok {
		t.Fatal("expected an address")
	}
	// First address key wins.
	if addr != "0xabc" {
		t.Errorf("address = %q, want %q", addr, "0xabc")
	}

	none := Profile{Keys: ParseUserKeys([]string{"twitter:bob"})}
	if _, ok := none.SettlementAddress(); ok {
		t.Error("expected no address for profile without address key")
	}
}

func TestDonationDedupeKey(t *testing.T) {
	a := Donation{DonorAddress: "0xAAA", RecipientUsername: "alice", Amount: "50", TransactionHash: "0xHASH1"}
	b := Donation{DonorAddress: "0xaaa", RecipientUsername: "alice", Amount: "50", TransactionHash: "0xhash1"}
	if a.DedupeKey() != b.DedupeKey() {
		t.Error("keys with same identity but different case should match")
	}

	c := Donation{DonorAddress: "0xAAA", RecipientUsername: "alice", Amount: "50", TransactionHash: "0xHASH2"}
	if a.DedupeKey() == c.DedupeKey() {
		t.Error("different tx hashes must produce different keys")
	}
}
