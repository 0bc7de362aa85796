package commands

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"
	"time"

	application "ballotpool/contexts/voting-market/campaign-registry/application"
	"ballotpool/contexts/voting-market/campaign-registry/domain/entities"
	domainerrors "ballotpool/contexts/voting-market/campaign-registry/domain/errors"
	"ballotpool/contexts/voting-market/campaign-registry/domain/services"
	"ballotpool/contexts/voting-market/campaign-registry/ports"
)

const moduleName = "voting-market/campaign-registry"

type AddVotingCommand struct {
	CallerID        string
	Name            string
	Candidates      []string
	DurationSeconds int64
}

type AddVotingResult struct {
	Campaign entities.Campaign
}

type VoteCommand struct {
	VoterID      string
	CampaignName string
	Candidate    string
	AmountPaid   int64
}

// VoteResult carries the accepted vote. Refunded is the part of the payment
// above the vote price that went back to the voter.
type VoteResult struct {
	Vote     entities.Vote
	Refunded int64
	Campaign entities.Campaign
}

type FinishCommand struct {
	CallerID     string
	CampaignName string
}

type FinishResult struct {
	Campaign   entities.Campaign
	Settlement services.Settlement
	Payouts    []entities.Transfer
}

type WithdrawCommissionCommand struct {
	CallerID string
}

type CommissionSweep struct {
	CampaignName string
	Amount       int64
}

type WithdrawCommissionResult struct {
	Total  int64
	Sweeps []CommissionSweep
}

// RegistryUseCase owns every state change of the campaign registry. Each
// command reads the clock once and runs its checks and writes inside a
// single Repository.Atomically call, so a rejected command leaves no trace.
type RegistryUseCase struct {
	Repo          ports.Repository
	Clock         ports.Clock
	IDGen         ports.IDGenerator
	Metrics       ports.Metrics
	Admin         string
	VotePrice     int64
	CommissionBps int64
	Logger        *slog.Logger
}

func (uc RegistryUseCase) AddVoting(ctx context.Context, cmd AddVotingCommand) (AddVotingResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	callerID := strings.TrimSpace(cmd.CallerID)
	name := strings.TrimSpace(cmd.Name)

	if !uc.isAdmin(callerID) {
		logger.Warn("add voting rejected for non-admin caller",
			"event", "registry_add_voting_unauthorized",
			"module", moduleName,
			"layer", "application",
			"caller_id", callerID,
			"campaign_name", name,
		)
		uc.metrics().OperationRejected("add_voting", rejectionReason(domainerrors.ErrUnauthorized))
		return AddVotingResult{}, domainerrors.ErrUnauthorized
	}
	candidates, ok := normalizeCandidates(cmd.Candidates)
	if name == "" || !ok || cmd.DurationSeconds <= 0 || cmd.DurationSeconds > math.MaxInt64/int64(time.Second) {
		logger.Warn("add voting validation failed",
			"event", "registry_add_voting_validation_failed",
			"module", moduleName,
			"layer", "application",
			"campaign_name", name,
			"candidates", len(cmd.Candidates),
			"duration_seconds", cmd.DurationSeconds,
		)
		uc.metrics().OperationRejected("add_voting", rejectionReason(domainerrors.ErrInvalidInput))
		return AddVotingResult{}, domainerrors.ErrInvalidInput
	}

	now := uc.now()
	tallies := make([]entities.CandidateTally, 0, len(candidates))
	for _, identity := range candidates {
		tallies = append(tallies, entities.CandidateTally{Identity: identity})
	}
	campaign := entities.Campaign{
		Name:       name,
		Candidates: tallies,
		Deadline:   now.Add(time.Duration(cmd.DurationSeconds) * time.Second),
		Active:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err := uc.Repo.Atomically(ctx, func(tx ports.Tx) error {
		exists, err := tx.CampaignExists(ctx, name)
		if err != nil {
			return err
		}
		if exists {
			return domainerrors.ErrDuplicateCampaign
		}
		if err := tx.CreateCampaign(ctx, campaign); err != nil {
			return err
		}
		return uc.appendEvent(ctx, tx, "voting.created", campaignPartition, now, map[string]any{
			"campaign_name": name,
			"candidates":    candidates,
			"deadline":      campaign.Deadline.UTC(),
			"created_by":    callerID,
		})
	})
	if err != nil {
		uc.logRejection(logger, "add_voting", name, callerID, err)
		return AddVotingResult{}, err
	}

	uc.metrics().CampaignCreated()
	logger.Info("voting created",
		"event", "registry_voting_created",
		"module", moduleName,
		"layer", "application",
		"campaign_name", name,
		"candidates", len(candidates),
		"deadline", campaign.Deadline.UTC(),
	)
	return AddVotingResult{Campaign: campaign.Clone()}, nil
}

// Vote records one paid vote. Checks run in a fixed order: campaign open,
// deadline not reached, voter has not voted, payment covers the price,
// candidate is listed. Only the vote price is credited to the campaign; any
// excess is refunded to the voter in the same unit of work.
func (uc RegistryUseCase) Vote(ctx context.Context, cmd VoteCommand) (VoteResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	voterID := strings.TrimSpace(cmd.VoterID)
	name := strings.TrimSpace(cmd.CampaignName)
	candidate := strings.TrimSpace(cmd.Candidate)
	if voterID == "" || voterID == entities.RegistryAccount {
		uc.metrics().OperationRejected("vote", rejectionReason(domainerrors.ErrInvalidInput))
		return VoteResult{}, domainerrors.ErrInvalidInput
	}

	now := uc.now()
	price := uc.votePrice()
	var result VoteResult
	err := uc.Repo.Atomically(ctx, func(tx ports.Tx) error {
		campaign, err := tx.LockCampaign(ctx, name)
		if errors.Is(err, domainerrors.ErrCampaignNotFound) {
			return domainerrors.ErrVotingInactive
		}
		if err != nil {
			return err
		}
		if !campaign.Active {
			return domainerrors.ErrVotingInactive
		}
		if !campaign.AcceptsVotesAt(now) {
			return domainerrors.ErrVotingExpired
		}
		voted, err := tx.HasVoted(ctx, name, voterID)
		if err != nil {
			return err
		}
		if voted {
			return domainerrors.ErrDuplicateVote
		}
		if cmd.AmountPaid < price {
			return domainerrors.ErrInsufficientPayment
		}
		if !campaign.HasCandidate(candidate) {
			return domainerrors.ErrUnknownCandidate
		}
		if campaign.Balance > math.MaxInt64-price {
			return domainerrors.ErrInvalidInput
		}

		voteID, err := uc.IDGen.NewID(ctx)
		if err != nil {
			return err
		}
		vote := entities.Vote{
			VoteID:         voteID,
			CampaignName:   name,
			Voter:          voterID,
			Candidate:      candidate,
			AmountPaid:     cmd.AmountPaid,
			AmountCredited: price,
			CreatedAt:      now,
		}
		if err := tx.RecordVote(ctx, vote); err != nil {
			return err
		}
		campaign.RecordVote(candidate, price, now)
		if err := tx.SaveCampaign(ctx, campaign); err != nil {
			return err
		}
		if _, err := uc.recordTransfer(ctx, tx, name, voterID, entities.RegistryAccount, cmd.AmountPaid, entities.TransferKindVotePayment, now); err != nil {
			return err
		}
		refunded := cmd.AmountPaid - price
		if refunded > 0 {
			if _, err := uc.recordTransfer(ctx, tx, name, entities.RegistryAccount, voterID, refunded, entities.TransferKindVoteRefund, now); err != nil {
				return err
			}
		}
		if err := uc.appendEvent(ctx, tx, "vote.cast", campaignPartition, now, map[string]any{
			"campaign_name":   name,
			"vote_id":         voteID,
			"voter_id":        voterID,
			"candidate":       candidate,
			"amount_paid":     cmd.AmountPaid,
			"amount_credited": price,
			"amount_refunded": refunded,
		}); err != nil {
			return err
		}
		result = VoteResult{Vote: vote, Refunded: refunded, Campaign: campaign.Clone()}
		return nil
	})
	if err != nil {
		uc.logRejection(logger, "vote", name, voterID, err)
		return VoteResult{}, err
	}

	uc.metrics().VoteAccepted(price, result.Refunded)
	logger.Info("vote accepted",
		"event", "registry_vote_accepted",
		"module", moduleName,
		"layer", "application",
		"campaign_name", name,
		"voter_id", voterID,
		"candidate", candidate,
		"amount_refunded", result.Refunded,
	)
	return result, nil
}

// Finish closes a campaign whose deadline has passed and pays every winner
// an equal share of the prize pool. Anyone may finish a campaign.
func (uc RegistryUseCase) Finish(ctx context.Context, cmd FinishCommand) (FinishResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	callerID := strings.TrimSpace(cmd.CallerID)
	name := strings.TrimSpace(cmd.CampaignName)
	if callerID == "" {
		uc.metrics().OperationRejected("finish", rejectionReason(domainerrors.ErrInvalidInput))
		return FinishResult{}, domainerrors.ErrInvalidInput
	}

	now := uc.now()
	var result FinishResult
	err := uc.Repo.Atomically(ctx, func(tx ports.Tx) error {
		campaign, err := tx.LockCampaign(ctx, name)
		if errors.Is(err, domainerrors.ErrCampaignNotFound) {
			return domainerrors.ErrVotingInactive
		}
		if err != nil {
			return err
		}
		if !campaign.Active {
			return domainerrors.ErrVotingInactive
		}
		if !campaign.CanFinishAt(now) {
			return domainerrors.ErrVotingNotYetExpired
		}

		settlement, err := services.Settle(campaign, uc.commissionBps())
		if err != nil {
			return err
		}
		payouts := make([]entities.Transfer, 0, len(settlement.Winners))
		if settlement.SharePerWinner > 0 {
			for _, winner := range settlement.Winners {
				transfer, err := uc.recordTransfer(ctx, tx, name, entities.RegistryAccount, winner, settlement.SharePerWinner, entities.TransferKindPrizePayout, now)
				if err != nil {
					return err
				}
				payouts = append(payouts, transfer)
				if err := uc.appendEvent(ctx, tx, "prize.paid", campaignPartition, now, map[string]any{
					"campaign_name": name,
					"transfer_id":   transfer.TransferID,
					"winner":        winner,
					"amount":        transfer.Amount,
				}); err != nil {
					return err
				}
			}
		}
		campaign.Close(settlement.PaidOut(), now)
		if err := tx.SaveCampaign(ctx, campaign); err != nil {
			return err
		}
		if err := uc.appendEvent(ctx, tx, "voting.finished", campaignPartition, now, map[string]any{
			"campaign_name":    name,
			"finished_by":      callerID,
			"winners":          settlement.Winners,
			"top_votes":        settlement.TopVotes,
			"share_per_winner": settlement.SharePerWinner,
			"retained":         campaign.Balance,
		}); err != nil {
			return err
		}
		result = FinishResult{Campaign: campaign.Clone(), Settlement: settlement, Payouts: payouts}
		return nil
	})
	if err != nil {
		uc.logRejection(logger, "finish", name, callerID, err)
		return FinishResult{}, err
	}

	uc.metrics().CampaignFinished(len(result.Settlement.Winners), result.Settlement.PaidOut())
	logger.Info("voting finished",
		"event", "registry_voting_finished",
		"module", moduleName,
		"layer", "application",
		"campaign_name", name,
		"finished_by", callerID,
		"winners", len(result.Settlement.Winners),
		"paid_out", result.Settlement.PaidOut(),
		"retained", result.Campaign.Balance,
	)
	return result, nil
}

// WithdrawCommission sweeps the residual balance of every finished campaign
// to the admin. Active campaigns are left untouched.
func (uc RegistryUseCase) WithdrawCommission(ctx context.Context, cmd WithdrawCommissionCommand) (WithdrawCommissionResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	callerID := strings.TrimSpace(cmd.CallerID)
	if !uc.isAdmin(callerID) {
		logger.Warn("commission withdrawal rejected for non-admin caller",
			"event", "registry_withdraw_commission_unauthorized",
			"module", moduleName,
			"layer", "application",
			"caller_id", callerID,
		)
		uc.metrics().OperationRejected("withdraw_commission", rejectionReason(domainerrors.ErrUnauthorized))
		return WithdrawCommissionResult{}, domainerrors.ErrUnauthorized
	}

	now := uc.now()
	var result WithdrawCommissionResult
	err := uc.Repo.Atomically(ctx, func(tx ports.Tx) error {
		settled, err := tx.LockSettledCampaigns(ctx)
		if err != nil {
			return err
		}
		sweeps := make([]CommissionSweep, 0, len(settled))
		var total int64
		for _, campaign := range settled {
			amount := campaign.SweepResidual(now)
			if amount <= 0 {
				continue
			}
			if err := tx.SaveCampaign(ctx, campaign); err != nil {
				return err
			}
			if _, err := uc.recordTransfer(ctx, tx, campaign.Name, entities.RegistryAccount, callerID, amount, entities.TransferKindCommissionWithdrawal, now); err != nil {
				return err
			}
			sweeps = append(sweeps, CommissionSweep{CampaignName: campaign.Name, Amount: amount})
			total += amount
		}
		if total > 0 {
			if err := uc.appendEvent(ctx, tx, "commission.withdrawn", adminPartition, now, map[string]any{
				"admin_id":  callerID,
				"total":     total,
				"campaigns": len(sweeps),
			}); err != nil {
				return err
			}
		}
		result = WithdrawCommissionResult{Total: total, Sweeps: sweeps}
		return nil
	})
	if err != nil {
		uc.logRejection(logger, "withdraw_commission", "", callerID, err)
		return WithdrawCommissionResult{}, err
	}

	uc.metrics().CommissionWithdrawn(result.Total)
	logger.Info("commission withdrawn",
		"event", "registry_commission_withdrawn",
		"module", moduleName,
		"layer", "application",
		"admin_id", callerID,
		"total", result.Total,
		"campaigns", len(result.Sweeps),
	)
	return result, nil
}

func (uc RegistryUseCase) recordTransfer(
	ctx context.Context,
	tx ports.Tx,
	campaignName string,
	from string,
	to string,
	amount int64,
	kind entities.TransferKind,
	now time.Time,
) (entities.Transfer, error) {
	transferID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Transfer{}, err
	}
	transfer := entities.Transfer{
		TransferID:   transferID,
		CampaignName: campaignName,
		From:         from,
		To:           to,
		Amount:       amount,
		Kind:         kind,
		CreatedAt:    now,
	}
	if err := tx.RecordTransfer(ctx, transfer); err != nil {
		return entities.Transfer{}, err
	}
	return transfer, nil
}

func (uc RegistryUseCase) appendEvent(
	ctx context.Context,
	tx ports.Tx,
	eventType string,
	partitionKeyPath string,
	now time.Time,
	data map[string]any,
) error {
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	envelope, err := newRegistryEnvelope(eventID, eventType, partitionKeyPath, now, data)
	if err != nil {
		return err
	}
	return tx.AppendOutbox(ctx, envelope)
}

func (uc RegistryUseCase) logRejection(logger *slog.Logger, operation string, campaignName string, callerID string, err error) {
	reason := rejectionReason(err)
	uc.metrics().OperationRejected(operation, reason)
	if reason == "internal" {
		logger.Error("registry command failed",
			"event", "registry_"+operation+"_failed",
			"module", moduleName,
			"layer", "application",
			"campaign_name", campaignName,
			"caller_id", callerID,
			"error", err.Error(),
		)
		return
	}
	logger.Warn("registry command rejected",
		"event", "registry_"+operation+"_rejected",
		"module", moduleName,
		"layer", "application",
		"campaign_name", campaignName,
		"caller_id", callerID,
		"reason", reason,
	)
}

func (uc RegistryUseCase) isAdmin(callerID string) bool {
	admin := strings.TrimSpace(uc.Admin)
	return admin != "" && callerID == admin
}

func (uc RegistryUseCase) now() time.Time {
	if uc.Clock == nil {
		return time.Now().UTC()
	}
	return uc.Clock.Now().UTC()
}

func (uc RegistryUseCase) votePrice() int64 {
	if uc.VotePrice <= 0 {
		return entities.DefaultVotePrice
	}
	return uc.VotePrice
}

func (uc RegistryUseCase) commissionBps() int64 {
	if uc.CommissionBps <= 0 {
		return entities.DefaultCommissionBps
	}
	return uc.CommissionBps
}

func (uc RegistryUseCase) metrics() ports.Metrics {
	if uc.Metrics == nil {
		return application.NopMetrics{}
	}
	return uc.Metrics
}

func normalizeCandidates(items []string) ([]string, bool) {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		identity := strings.TrimSpace(item)
		if identity == "" || identity == entities.RegistryAccount {
			return nil, false
		}
		if _, ok := seen[identity]; ok {
			return nil, false
		}
		seen[identity] = struct{}{}
		out = append(out, identity)
	}
	return out, true
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domainerrors.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, domainerrors.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, domainerrors.ErrDuplicateCampaign):
		return "duplicate_campaign"
	case errors.Is(err, domainerrors.ErrVotingInactive):
		return "voting_inactive"
	case errors.Is(err, domainerrors.ErrVotingExpired):
		return "voting_expired"
	case errors.Is(err, domainerrors.ErrVotingNotYetExpired):
		return "voting_not_yet_expired"
	case errors.Is(err, domainerrors.ErrDuplicateVote):
		return "duplicate_vote"
	case errors.Is(err, domainerrors.ErrInsufficientPayment):
		return "insufficient_payment"
	case errors.Is(err, domainerrors.ErrUnknownCandidate):
		return "unknown_candidate"
	default:
		return "internal"
	}
}
