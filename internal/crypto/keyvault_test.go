package crypto

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testKeyHex = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

func TestSealUnsealRoundTrip(t *testing.T) {
	sealed, err := SealKey("0x"+testKeyHex, "hunter2")
	if err != nil {
		t.Fatalf("SealKey: %v", err)
	}

	got, err := UnsealKey(sealed, "hunter2")
	if err != nil {
		t.Fatalf("UnsealKey: %v", err)
	}
	if got != testKeyHex {
		t.Errorf("unsealed key = %q, want %q", got, testKeyHex)
	}
}

func TestUnsealWrongPassword(t *testing.T) {
	sealed, err := SealKey(testKeyHex, "correct")
	if err != nil {
		t.Fatalf("SealKey: %v", err)
	}
	if _, err := UnsealKey(sealed, "wrong"); err == nil {
		t.Fatal("UnsealKey with wrong password should fail")
	}
}

func TestSealKeyValidation(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		password string
	}{
		{"empty password", testKeyHex, ""},
		{"not hex", "zzzz", "pw"},
		{"short key", "abcd", "pw"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := SealKey(tt.key, tt.password); err == nil {
				t.Error("SealKey should fail")
			}
		})
	}
}

func TestResolveOperatorKeyRawTakesPrecedence(t *testing.T) {
	got, err := ResolveOperatorKey(KeySource{RawHex: "0x" + testKeyHex, SealedPath: "/nonexistent"})
	if err != nil {
		t.Fatalf("ResolveOperatorKey: %v", err)
	}
	if got != testKeyHex {
		t.Errorf("key = %q, want %q", got, testKeyHex)
	}
}

func TestResolveOperatorKeyFromSealedFile(t *testing.T) {
	sealed, err := SealKey(testKeyHex, "pw")
	if err != nil {
		t.Fatalf("SealKey: %v", err)
	}
	path := filepath.Join(t.TempDir(), "operator.key.json")
	if err := os.WriteFile(path, sealed, 0o600); err != nil {
		t.Fatalf("writing sealed file: %v", err)
	}

	got, err := ResolveOperatorKey(KeySource{SealedPath: path, Password: "pw"})
	if err != nil {
		t.Fatalf("ResolveOperatorKey: %v", err)
	}
	if got != testKeyHex {
		t.Errorf("key = %q, want %q", got, testKeyHex)
	}
}

func TestResolveOperatorKeyNoSource(t *testing.T) {
	_, err := ResolveOperatorKey(KeySource{})
	if err == nil || !strings.Contains(err.Error(), "no wallet key source") {
		t.Fatalf("error = %v, want no-source error", err)
	}
}
