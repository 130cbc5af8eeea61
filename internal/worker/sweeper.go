// Package worker holds the background loops started from main.
package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/suyogshakya/rentwheels/internal/application"
	"github.com/suyogshakya/rentwheels/internal/application/services"
	"github.com/suyogshakya/rentwheels/internal/infrastructure/esewa"
	"github.com/suyogshakya/rentwheels/internal/metrics"
)

// Sweeper periodically evicts stale intents from the pending store so a
// long-lived process does not grow without bound. Before an intent is
// discarded for good, the gateway is asked for the authoritative status: a
// payment whose callback was lost still becomes a booking here.
type Sweeper struct {
	pending  application.PendingStore
	gateway  application.GatewayClient
	promoter *services.Promoter
	ttl      time.Duration
	interval time.Duration
	logger   *slog.Logger
}

func NewSweeper(
	pending application.PendingStore,
	gateway application.GatewayClient,
	promoter *services.Promoter,
	ttl time.Duration,
	interval time.Duration,
	logger *slog.Logger,
) *Sweeper {
	return &Sweeper{
		pending:  pending,
		gateway:  gateway,
		promoter: promoter,
		ttl:      ttl,
		interval: interval,
		logger:   logger,
	}
}

func (w *Sweeper) Start(ctx context.Context) {
	w.logger.Info("pending-intent sweeper started", "interval", w.interval, "ttl", w.ttl)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("pending-intent sweeper stopping")
			return
		case <-ticker.C:
			if err := w.SweepOnce(ctx); err != nil {
				w.logger.Error("sweep cycle failed", "error", err)
			}
		}
	}
}

// SweepOnce runs a single sweep cycle.
func (w *Sweeper) SweepOnce(ctx context.Context) error {
	stale, err := w.pending.Sweep(ctx, w.ttl)
	if err != nil {
		return err
	}
	if len(stale) == 0 {
		return nil
	}

	w.logger.Info("sweeping stale pending intents", "count", len(stale))

	var promoted int
	for _, intent := range stale {
		status, err := w.gateway.CheckStatus(ctx, intent.TransactionID, intent.TotalAmount)
		if err != nil {
			// Age exceeded the TTL; the store is advisory, so the entry is
			// dropped even when the gateway cannot confirm its fate.
			w.logger.Warn("discarding stale intent without gateway confirmation",
				"transaction_id", intent.TransactionID, "error", err)
			metrics.IncIntentSwept()
			continue
		}
		metrics.IncGatewayStatusCheck(status.Status)

		if status.Status == esewa.StatusComplete {
			if _, err := w.promoter.Promote(ctx, intent, services.GatewayConfirmation{RefID: status.RefID}, "sweep"); err != nil {
				w.logger.Error("failed to promote swept intent",
					"transaction_id", intent.TransactionID, "error", err)
			} else {
				promoted++
			}
			continue
		}

		w.logger.Info("discarding stale intent",
			"transaction_id", intent.TransactionID, "gateway_status", status.Status)
		metrics.IncIntentSwept()
	}

	w.logger.Info("sweep cycle complete", "swept", len(stale), "promoted", promoted)
	return nil
}
