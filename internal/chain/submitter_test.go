package chain

import (
	"context"
	"errors"
	"log/slog"
	"math/big"
	"testing"
	"time"

	"github.com/hallenjay/tokentribute/internal/domain"
)

type stubSender struct {
	address   string
	connected bool
	sendHash  string
	sendErr   error
	calls     int
}

func (s *stubSender) Address() (string, bool) {
	return s.address, s.connected
}

func (s *stubSender) SendTokenTransfer(ctx context.Context, to string, amount *big.Int) (string, error) {
	s.calls++
	if s.sendErr != nil {
		return "", s.sendErr
	}
	return s.sendHash, nil
}

type stubWatcher struct {
	conf  Confirmation
	err   error
	calls int
}

func (w *stubWatcher) AwaitConfirmation(ctx context.Context, txHash string, timeout time.Duration) (Confirmation, error) {
	w.calls++
	w.conf.TxHash = txHash
	return w.conf, w.err
}

func newTestSubmitter(sender *stubSender, watcher *stubWatcher) *Submitter {
	return NewSubmitter(sender, watcher, time.Minute, slog.Default())
}

func TestSubmitConfirmed(t *testing.T) {
	sender := &stubSender{address: "0xOP", connected: true, sendHash: "0xHASH1"}
	watcher := &stubWatcher{conf: Confirmation{Status: ConfirmationConfirmed}}
	sub := newTestSubmitter(sender, watcher)

	outcome, err := sub.Submit(context.Background(), domain.TransferRequest{
		RecipientAddress: "0xD1C7",
		Amount:           "50",
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if outcome.Status != domain.TransferConfirmed {
		t.Errorf("status = %s, want confirmed", outcome.Status)
	}
	if outcome.TransactionHash != "0xHASH1" {
		t.Errorf("hash = %q, want 0xHASH1", outcome.TransactionHash)
	}
	if sub.State() != domain.TransferStateConfirmed {
		t.Errorf("state = %s, want confirmed", sub.State())
	}
}

func TestSubmitRejectsInvalidAmountBeforeWallet(t *testing.T) {
	for _, amount := range []string{"0", "", "-5", "abc"} {
		sender := &stubSender{address: "0xOP", connected: true, sendHash: "0xHASH"}
		watcher := &stubWatcher{conf: Confirmation{Status: ConfirmationConfirmed}}
		sub := newTestSubmitter(sender, watcher)

		_, err := sub.Submit(context.Background(), domain.TransferRequest{
			RecipientAddress: "0xD1C7",
			Amount:           amount,
		})
		var ia *domain.InvalidAmountError
		if !errors.As(err, &ia) {
			t.Errorf("amount %q: error = %v, want InvalidAmountError", amount, err)
		}
		if sender.calls != 0 {
			t.Errorf("amount %q: wallet was called %d times, want 0", amount, sender.calls)
		}
		if sub.State() != domain.TransferStateIdle {
			t.Errorf("amount %q: state = %s, want idle", amount, sub.State())
		}
	}
}

func TestSubmitRequiresWalletSession(t *testing.T) {
	sender := &stubSender{connected: false}
	sub := newTestSubmitter(sender, &stubWatcher{})

	_, err := sub.Submit(context.Background(), domain.TransferRequest{
		RecipientAddress: "0xD1C7",
		Amount:           "10",
	})
	if !errors.Is(err, domain.ErrNoWalletSession) {
		t.Fatalf("error = %v, want ErrNoWalletSession", err)
	}
	if sub.State() != domain.TransferStateIdle {
		t.Errorf("state = %s, want idle", sub.State())
	}
}

func TestSubmitClassifiesProviderErrors(t *testing.T) {
	tests := []struct {
		name    string
		sendErr error
		want    error
	}{
		{"user rejected", errors.New("MetaMask Tx Signature: User rejected the request"), domain.ErrWalletRejected},
		{"insufficient funds", errors.New("err: insufficient funds for gas * price + value"), domain.ErrInsufficientBalance},
		{"erc20 balance", errors.New("execution reverted: ERC20: transfer amount exceeds balance"), domain.ErrInsufficientBalance},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &stubSender{address: "0xOP", connected: true, sendErr: tt.sendErr}
			sub := newTestSubmitter(sender, &stubWatcher{})

			outcome, err := sub.Submit(context.Background(), domain.TransferRequest{
				RecipientAddress: "0xD1C7",
				Amount:           "10",
			})
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
			if outcome.Status != domain.TransferFailed {
				t.Errorf("status = %s, want failed", outcome.Status)
			}
			if sub.State() != domain.TransferStateFailed {
				t.Errorf("state = %s, want failed", sub.State())
			}
		})
	}
}

func TestSubmitUnknownProviderErrorBecomesChainError(t *testing.T) {
	sender := &stubSender{address: "0xOP", connected: true, sendErr: errors.New("nonce too low")}
	sub := newTestSubmitter(sender, &stubWatcher{})

	_, err := sub.Submit(context.Background(), domain.TransferRequest{
		RecipientAddress: "0xD1C7",
		Amount:           "10",
	})
	var ce *domain.ChainError
	if !errors.As(err, &ce) {
		t.Fatalf("error = %v, want ChainError", err)
	}
}

func TestSubmitConfirmationTimeout(t *testing.T) {
	sender := &stubSender{address: "0xOP", connected: true, sendHash: "0xHASH2"}
	watcher := &stubWatcher{
		conf: Confirmation{Status: ConfirmationTimedOut},
		err:  domain.ErrConfirmationTimeout,
	}
	sub := newTestSubmitter(sender, watcher)

	outcome, err := sub.Submit(context.Background(), domain.TransferRequest{
		RecipientAddress: "0xD1C7",
		Amount:           "10",
	})
	if !errors.Is(err, domain.ErrConfirmationTimeout) {
		t.Fatalf("error = %v, want ErrConfirmationTimeout", err)
	}
	if outcome.Status != domain.TransferFailed {
		t.Errorf("status = %s, want failed", outcome.Status)
	}
	// The hash stays visible: the transfer may still confirm out-of-band.
	if outcome.TransactionHash != "0xHASH2" {
		t.Errorf("hash = %q, want 0xHASH2", outcome.TransactionHash)
	}
}

func TestSubmitWatcherFaultCarriesOriginalError(t *testing.T) {
	sender := &stubSender{address: "0xOP", connected: true, sendHash: "0xHASH4"}
	watcher := &stubWatcher{err: errors.New("rpc node unreachable")}
	sub := newTestSubmitter(sender, watcher)

	outcome, err := sub.Submit(context.Background(), domain.TransferRequest{
		RecipientAddress: "0xD1C7",
		Amount:           "10",
	})
	if err == nil || err.Error() != "rpc node unreachable" {
		t.Fatalf("error = %v, want the watcher's error", err)
	}
	if errors.Is(err, domain.ErrConfirmationTimeout) {
		t.Error("a watcher fault must not be reported as a timeout")
	}
	if outcome.FailureReason != "rpc node unreachable" {
		t.Errorf("failure reason = %q, want the watcher's error text", outcome.FailureReason)
	}
	if outcome.TransactionHash != "0xHASH4" {
		t.Errorf("hash = %q, want 0xHASH4", outcome.TransactionHash)
	}
}

func TestSubmitterIsSingleUse(t *testing.T) {
	sender := &stubSender{address: "0xOP", connected: true, sendHash: "0xHASH3"}
	watcher := &stubWatcher{conf: Confirmation{Status: ConfirmationConfirmed}}
	sub := newTestSubmitter(sender, watcher)

	req := domain.TransferRequest{RecipientAddress: "0xD1C7", Amount: "10"}
	if _, err := sub.Submit(context.Background(), req); err != nil {
		t.Fatalf("first submit: %v", err)
	}

	if _, err := sub.Submit(context.Background(), req); err == nil {
		t.Fatal("second submit on same instance should fail")
	}
	if sender.calls != 1 {
		t.Errorf("wallet called %d times, want 1", sender.calls)
	}
}
