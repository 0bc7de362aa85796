package workers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	application "ballotpool/contexts/voting-market/campaign-registry/application"
	"ballotpool/contexts/voting-market/campaign-registry/application/commands"
	domainerrors "ballotpool/contexts/voting-market/campaign-registry/domain/errors"
	"ballotpool/contexts/voting-market/campaign-registry/ports"
)

// SchedulerIdentity is the caller recorded on campaigns closed by the
// settlement scheduler.
const SchedulerIdentity = "settlement-scheduler"

// SettlementScheduler finishes campaigns whose deadline has passed.
type SettlementScheduler struct {
	Repo      ports.Repository
	Registry  commands.RegistryUseCase
	Clock     ports.Clock
	BatchSize int
	Logger    *slog.Logger
}

// RunOnce returns the number of campaigns it closed. Campaigns finished by
// someone else in the meantime are skipped.
func (s SettlementScheduler) RunOnce(ctx context.Context) (int, error) {
	logger := application.ResolveLogger(s.Logger)
	limit := s.BatchSize
	if limit <= 0 {
		limit = 100
	}
	now := time.Now().UTC()
	if s.Clock != nil {
		now = s.Clock.Now().UTC()
	}

	names, err := s.Repo.ListExpiredActive(ctx, now, limit)
	if err != nil {
		logger.Error("registry settlement scan failed",
			"event", "registry_settlement_scan_failed",
			"module", moduleName,
			"layer", "worker",
			"error", err.Error(),
		)
		return 0, err
	}

	finished := 0
	for _, name := range names {
		_, err := s.Registry.Finish(ctx, commands.FinishCommand{
			CallerID:     SchedulerIdentity,
			CampaignName: name,
		})
		if errors.Is(err, domainerrors.ErrVotingInactive) {
			continue
		}
		if err != nil {
			logger.Error("registry scheduled finish failed",
				"event", "registry_settlement_finish_failed",
				"module", moduleName,
				"layer", "worker",
				"campaign_name", name,
				"error", err.Error(),
			)
			return finished, err
		}
		finished++
	}

	if finished > 0 {
		logger.Info("registry settlement cycle completed",
			"event", "registry_settlement_completed",
			"module", moduleName,
			"layer", "worker",
			"finished_count", finished,
		)
	}
	return finished, nil
}
