// Package notify fans operator alerts out to the configured channels
// (Telegram, Discord). Delivery failures never propagate into the donation
// flow; a settled donation is settled whether or not the alert landed.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hallenjay/tokentribute/internal/domain"
)

// Event types emitted by the platform.
const (
	EventDonationSettled  = "donation.settled"
	EventArchiveCompleted = "archive.completed"
	EventSaveRecovery     = "save.recovery"
)

// Sender is one delivery channel.
type Sender interface {
	// Send delivers a notification with the given title and message body.
	Send(ctx context.Context, title, message string) error
	// Name returns a human-readable identifier, e.g. "telegram".
	Name() string
}

// Notifier dispatches notifications to the registered senders, filtered by
// event type. An empty event list allows everything.
type Notifier struct {
	senders []Sender
	events  map[string]bool
	logger  *slog.Logger
}

// NewNotifier creates a Notifier delivering to the given senders. Only events
// whose type appears in events are forwarded; an empty list allows all.
func NewNotifier(senders []Sender, events []string, logger *slog.Logger) *Notifier {
	allowed := make(map[string]bool, len(events))
	for _, e := range events {
		allowed[strings.TrimSpace(e)] = true
	}
	return &Notifier{
		senders: senders,
		events:  allowed,
		logger:  logger.With(slog.String("component", "notifier")),
	}
}

// Notify sends a notification to all senders if the event type is allowed.
func (n *Notifier) Notify(ctx context.Context, event, title, message string) error {
	if len(n.events) > 0 && !n.events[event] {
		n.logger.DebugContext(ctx, "event filtered out",
			slog.String("event", event),
		)
		return nil
	}
	return n.dispatch(ctx, title, message)
}

// DonationSettled announces a recorded donation. Errors are logged, not
// returned: this is the hook the settlement flow calls and it must not fail
// the donation.
func (n *Notifier) DonationSettled(ctx context.Context, d domain.Donation) {
	message := fmt.Sprintf("%s USDC from %s to @%s\ntx %s",
		d.Amount, d.DonorAddress, d.RecipientUsername, d.TransactionHash)
	if err := n.Notify(ctx, EventDonationSettled, "Donation settled", message); err != nil {
		n.logger.WarnContext(ctx, "donation alert failed",
			slog.String("error", err.Error()),
		)
	}
}

// SaveRecoveryNeeded alerts operators that a confirmed transfer could not be
// recorded. The funds have moved, so someone has to reconcile the row by hand.
func (n *Notifier) SaveRecoveryNeeded(ctx context.Context, d domain.Donation) {
	message := fmt.Sprintf("settled but unsaved: %s USDC from %s to @%s\ntx %s",
		d.Amount, d.DonorAddress, d.RecipientUsername, d.TransactionHash)
	if err := n.Notify(ctx, EventSaveRecovery, "Donation save failed", message); err != nil {
		n.logger.WarnContext(ctx, "save recovery alert failed",
			slog.String("error", err.Error()),
		)
	}
}

// dispatch sends to every sender, collecting failures so one bad channel does
// not block the rest.
func (n *Notifier) dispatch(ctx context.Context, title, message string) error {
	if len(n.senders) == 0 {
		return nil
	}

	var errs []string
	for _, s := range n.senders {
		if err := s.Send(ctx, title, message); err != nil {
			n.logger.ErrorContext(ctx, "sender failed",
				slog.String("sender", s.Name()),
				slog.String("error", err.Error()),
			)
			errs = append(errs, fmt.Sprintf("%s: %v", s.Name(), err))
		} else {
			n.logger.DebugContext(ctx, "notification sent",
				slog.String("sender", s.Name()),
				slog.String("title", title),
			)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("notify: %d sender(s) failed: %s", len(errs), strings.Join(errs, "; "))
	}
	return nil
}
