package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hallenjay/tokentribute/internal/chain"
	"github.com/hallenjay/tokentribute/internal/crypto"
	"github.com/hallenjay/tokentribute/internal/notify"
	"github.com/hallenjay/tokentribute/internal/server"
	"github.com/hallenjay/tokentribute/internal/server/handler"
	"github.com/hallenjay/tokentribute/internal/server/ws"
	"github.com/hallenjay/tokentribute/internal/service"
	"github.com/hallenjay/tokentribute/internal/settlement"
)

// saveLatchTTL bounds how long an in-flight save claim is honoured before a
// retry is allowed through.
const saveLatchTTL = 10 * time.Minute

// ServerMode runs the HTTP API without an operator wallet. Donations are
// recorded as donor-settled; POST /api/donate reports the wallet as
// unconfigured.
func (a *App) ServerMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting server mode")

	g, ctx := errgroup.WithContext(ctx)

	a.startHTTPServer(ctx, g, deps, nil)
	a.startArchiveLoop(ctx, g, deps)

	return g.Wait()
}

// FullMode runs the HTTP API plus the operator wallet settlement flow and
// background jobs.
func (a *App) FullMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting full mode")

	keyHex, err := crypto.ResolveOperatorKey(crypto.KeySource{
		RawHex:     a.cfg.Wallet.PrivateKey,
		SealedPath: a.cfg.Wallet.EncryptedKeyPath,
		Password:   a.cfg.Wallet.KeyPassword,
	})
	if err != nil {
		return fmt.Errorf("app: operator key: %w", err)
	}

	chainClient, err := chain.New(chain.ClientConfig{
		RPCEndpoint:   a.cfg.Chain.RPCEndpoint,
		ChainID:       a.cfg.Chain.ChainID,
		TokenAddress:  a.cfg.Chain.TokenAddress,
		PrivateKeyHex: keyHex,
	}, a.logger)
	if err != nil {
		return fmt.Errorf("app: chain client: %w", err)
	}
	a.closers = append(a.closers, chainClient.Close)

	if addr, ok := chainClient.Address(); ok {
		a.logger.InfoContext(ctx, "operator wallet ready",
			slog.String("address", addr),
			slog.Int64("chain_id", a.cfg.Chain.ChainID),
		)
	}

	receiptTimeout := a.cfg.Chain.ReceiptTimeout.Duration
	latch := settlement.NewSaveLatch(saveLatchTTL)
	recorder := settlement.NewRecorder(deps.DonationStore, latch, a.logger)

	orchestrator := settlement.NewOrchestrator(settlement.OrchestratorOpts{
		Profiles: deps.Ethos,
		Submitter: func() settlement.TransferSubmitter {
			return chain.NewSubmitter(chainClient, chainClient, receiptTimeout, a.logger)
		},
		Recorder: recorder,
		Notifier: deps.Notifier,
		Bus:      deps.SignalBus,
		MinScore: a.cfg.Eligibility.DonationMinScore,
		ChainID:  a.cfg.Chain.ChainID,
		Logger:   a.logger,
	})

	g, ctx := errgroup.WithContext(ctx)

	// Expired latch entries are purged on a slow tick so an abandoned save
	// cannot block a retry forever.
	g.Go(func() error {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				latch.Cleanup()
			}
		}
	})

	a.startHTTPServer(ctx, g, deps, orchestrator)
	a.startArchiveLoop(ctx, g, deps)

	return g.Wait()
}

// startHTTPServer adds the WebSocket hub and HTTP server goroutines to the
// given errgroup. donator is nil in server mode; POST /api/donate then
// rejects requests instead of settling.
func (a *App) startHTTPServer(
	ctx context.Context,
	g *errgroup.Group,
	deps *Dependencies,
	donator service.Donator,
) {
	profileSvc := service.NewProfileService(
		deps.Ethos,
		deps.ProfileCache,
		a.cfg.Eligibility.DonationMinScore,
		a.cfg.Redis.ProfileTTL.Duration,
		a.logger,
	)
	donationSvc := service.NewDonationService(deps.DonationStore, donator, a.logger)
	talentSvc := service.NewTalentService(deps.TalentStore, a.logger)
	messageSvc := service.NewMessageService(
		deps.MessageStore,
		deps.Ethos,
		a.cfg.Eligibility.MessageMinScore,
		a.logger,
	)

	hub := ws.NewHub(deps.SignalBus, a.cfg.Server.CORSOrigins, a.logger)
	g.Go(func() error {
		return hub.Run(ctx)
	})

	handlers := server.Handlers{
		Health:    handler.NewHealthHandler(a.logger),
		Donations: handler.NewDonationHandler(donationSvc, a.logger),
		Profiles:  handler.NewProfileHandler(profileSvc, a.logger),
		Talent:    handler.NewTalentHandler(talentSvc, a.logger),
		Messages:  handler.NewMessageHandler(messageSvc, a.logger),
	}

	srv := server.NewServer(server.Config{
		Port:        a.cfg.Server.Port,
		CORSOrigins: a.cfg.Server.CORSOrigins,
		APIKey:      a.cfg.Server.APIKey,
		RateLimit:   a.cfg.Server.RateLimit,
		RateWindow:  a.cfg.Server.RateWindow.Duration,
	}, handlers, hub, deps.RateLimiter, a.logger)

	g.Go(func() error {
		return srv.Start()
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("server shutdown failed", slog.String("error", err.Error()))
		}
		return ctx.Err()
	})
}

// startArchiveLoop adds the periodic cold-storage archival job when it is
// enabled and the blob layer is wired.
func (a *App) startArchiveLoop(ctx context.Context, g *errgroup.Group, deps *Dependencies) {
	if !a.cfg.Archive.Enabled || deps.Archiver == nil {
		return
	}

	interval := a.cfg.Archive.Interval.Duration
	retention := a.cfg.Archive.RetentionDays

	g.Go(func() error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		a.logger.InfoContext(ctx, "archive loop started",
			slog.Duration("interval", interval),
			slog.Int("retention_days", retention),
		)

		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				report, err := deps.Archiver.ArchiveDonations(ctx, retention)
				if err != nil {
					a.logger.ErrorContext(ctx, "archive run failed",
						slog.String("error", err.Error()),
					)
					continue
				}
				a.logger.InfoContext(ctx, "archive run completed",
					slog.Int64("archived", report.DonationsArchived),
					slog.Int64("deleted", report.DonationsDeleted),
				)
				if report.DonationsArchived > 0 {
					msg := fmt.Sprintf("%d donations archived, %d pruned",
						report.DonationsArchived, report.DonationsDeleted)
					if err := deps.Notifier.Notify(ctx, notify.EventArchiveCompleted, "Archive completed", msg); err != nil {
						a.logger.WarnContext(ctx, "archive alert failed",
							slog.String("error", err.Error()),
						)
					}
				}
			}
		}
	})
}
