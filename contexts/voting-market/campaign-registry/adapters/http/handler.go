package httpadapter

import (
	"context"
	"log/slog"
	"time"

	application "ballotpool/contexts/voting-market/campaign-registry/application"
	"ballotpool/contexts/voting-market/campaign-registry/application/commands"
	"ballotpool/contexts/voting-market/campaign-registry/application/queries"
	"ballotpool/contexts/voting-market/campaign-registry/domain/entities"
	httptransport "ballotpool/contexts/voting-market/campaign-registry/transport/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	moduleName = "voting-market/campaign-registry"
	tracerName = "ballotpool/contexts/voting-market/campaign-registry"
)

type Handler struct {
	Registry commands.RegistryUseCase
	Queries  queries.RegistryQueries
	Logger   *slog.Logger
}

// AddVotingHandler godoc
// @Summary Create a voting
// @Description Opens a new voting with the given candidates. Admin only.
// @Tags votings
// @Accept json
// @Produce json
// @Param X-User-Id header string true "Caller identity"
// @Param request body httptransport.AddVotingRequest true "Voting definition"
// @Success 201 {object} httptransport.VotingResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 401 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /v1/votings [post]
func (h Handler) AddVotingHandler(
	ctx context.Context,
	callerID string,
	req httptransport.AddVotingRequest,
) (httptransport.VotingResponse, error) {
	ctx, span := startSpan(ctx, "campaign_registry.add_voting", attribute.String("campaign.name", req.Name))
	defer span.End()
	h.received("add_voting", "campaign_name", req.Name, "caller_id", callerID)

	result, err := h.Registry.AddVoting(ctx, commands.AddVotingCommand{
		CallerID:        callerID,
		Name:            req.Name,
		Candidates:      req.Candidates,
		DurationSeconds: req.DurationSeconds,
	})
	if err != nil {
		return httptransport.VotingResponse{}, h.fail(span, "add_voting", err)
	}
	return mapVoting(result.Campaign), nil
}

// ListVotingsHandler godoc
// @Summary List votings
// @Description Returns every voting in creation order with the total count.
// @Tags votings
// @Produce json
// @Success 200 {object} httptransport.VotingListResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /v1/votings [get]
func (h Handler) ListVotingsHandler(ctx context.Context) (httptransport.VotingListResponse, error) {
	ctx, span := startSpan(ctx, "campaign_registry.list_votings")
	defer span.End()

	campaigns, err := h.Queries.ListVotings(ctx)
	if err != nil {
		return httptransport.VotingListResponse{}, h.fail(span, "list_votings", err)
	}
	items := make([]httptransport.VotingResponse, 0, len(campaigns))
	for _, campaign := range campaigns {
		items = append(items, mapVoting(campaign))
	}
	return httptransport.VotingListResponse{Count: len(items), Items: items}, nil
}

// GetVotingHandler godoc
// @Summary Get a voting
// @Description Returns state, counters, balance and deadline of one voting.
// @Tags votings
// @Produce json
// @Param name path string true "Voting name"
// @Success 200 {object} httptransport.VotingResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /v1/votings/{name} [get]
func (h Handler) GetVotingHandler(ctx context.Context, name string) (httptransport.VotingResponse, error) {
	ctx, span := startSpan(ctx, "campaign_registry.get_voting", attribute.String("campaign.name", name))
	defer span.End()

	campaign, err := h.Queries.GetVoting(ctx, name)
	if err != nil {
		return httptransport.VotingResponse{}, h.fail(span, "get_voting", err)
	}
	return mapVoting(campaign), nil
}

// VoteHandler godoc
// @Summary Cast a paid vote
// @Description Records one vote per caller. Payment above the vote price is refunded.
// @Tags votings
// @Accept json
// @Produce json
// @Param X-User-Id header string true "Caller identity"
// @Param name path string true "Voting name"
// @Param request body httptransport.VoteRequest true "Vote"
// @Success 200 {object} httptransport.VoteResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 401 {object} httptransport.ErrorResponse
// @Failure 402 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Failure 422 {object} httptransport.ErrorResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /v1/votings/{name}/votes [post]
func (h Handler) VoteHandler(
	ctx context.Context,
	callerID string,
	name string,
	req httptransport.VoteRequest,
) (httptransport.VoteResponse, error) {
	ctx, span := startSpan(ctx, "campaign_registry.vote",
		attribute.String("campaign.name", name),
		attribute.String("vote.candidate", req.Candidate),
		attribute.Int64("vote.amount_paid", req.AmountPaid),
	)
	defer span.End()
	h.received("vote", "campaign_name", name, "caller_id", callerID)

	result, err := h.Registry.Vote(ctx, commands.VoteCommand{
		VoterID:      callerID,
		CampaignName: name,
		Candidate:    req.Candidate,
		AmountPaid:   req.AmountPaid,
	})
	if err != nil {
		return httptransport.VoteResponse{}, h.fail(span, "vote", err)
	}
	return httptransport.VoteResponse{
		VoteID:         result.Vote.VoteID,
		CampaignName:   result.Vote.CampaignName,
		VoterID:        result.Vote.Voter,
		Candidate:      result.Vote.Candidate,
		AmountPaid:     result.Vote.AmountPaid,
		AmountCredited: result.Vote.AmountCredited,
		AmountRefunded: result.Refunded,
		VotingBalance:  result.Campaign.Balance,
	}, nil
}

// FinishHandler godoc
// @Summary Finish a voting
// @Description Closes an expired voting and pays the winners. Any caller may finish.
// @Tags votings
// @Produce json
// @Param X-User-Id header string true "Caller identity"
// @Param name path string true "Voting name"
// @Success 200 {object} httptransport.FinishResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 401 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /v1/votings/{name}/finish [post]
func (h Handler) FinishHandler(ctx context.Context, callerID string, name string) (httptransport.FinishResponse, error) {
	ctx, span := startSpan(ctx, "campaign_registry.finish", attribute.String("campaign.name", name))
	defer span.End()
	h.received("finish", "campaign_name", name, "caller_id", callerID)

	result, err := h.Registry.Finish(ctx, commands.FinishCommand{
		CallerID:     callerID,
		CampaignName: name,
	})
	if err != nil {
		return httptransport.FinishResponse{}, h.fail(span, "finish", err)
	}
	span.SetAttributes(attribute.Int("campaign.winners", len(result.Settlement.Winners)))
	return httptransport.FinishResponse{
		CampaignName:   result.Campaign.Name,
		Winners:        append([]string{}, result.Settlement.Winners...),
		TopVotes:       result.Settlement.TopVotes,
		SharePerWinner: result.Settlement.SharePerWinner,
		PaidOut:        result.Settlement.PaidOut(),
		Retained:       result.Campaign.Balance,
	}, nil
}

// CandidatesHandler godoc
// @Summary Show candidates
// @Description Lists candidate identities; unknown votings yield an empty list.
// @Tags votings
// @Produce json
// @Param name path string true "Voting name"
// @Success 200 {object} httptransport.CandidatesResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /v1/votings/{name}/candidates [get]
func (h Handler) CandidatesHandler(ctx context.Context, name string) (httptransport.CandidatesResponse, error) {
	ctx, span := startSpan(ctx, "campaign_registry.show_candidates", attribute.String("campaign.name", name))
	defer span.End()

	candidates, err := h.Queries.ShowCandidates(ctx, name)
	if err != nil {
		return httptransport.CandidatesResponse{}, h.fail(span, "show_candidates", err)
	}
	return httptransport.CandidatesResponse{CampaignName: name, Candidates: candidates}, nil
}

// ResultsHandler godoc
// @Summary Show results
// @Description Lists vote tallies per candidate; unknown votings yield an empty list.
// @Tags votings
// @Produce json
// @Param name path string true "Voting name"
// @Success 200 {object} httptransport.ResultsResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /v1/votings/{name}/results [get]
func (h Handler) ResultsHandler(ctx context.Context, name string) (httptransport.ResultsResponse, error) {
	ctx, span := startSpan(ctx, "campaign_registry.show_results", attribute.String("campaign.name", name))
	defer span.End()

	results, err := h.Queries.ShowResults(ctx, name)
	if err != nil {
		return httptransport.ResultsResponse{}, h.fail(span, "show_results", err)
	}
	items := make([]httptransport.ResultItem, 0, len(results))
	for _, result := range results {
		items = append(items, httptransport.ResultItem{Candidate: result.Candidate, Votes: result.Votes})
	}
	return httptransport.ResultsResponse{CampaignName: name, Items: items}, nil
}

// TransfersHandler godoc
// @Summary List ledger transfers of a voting
// @Description Returns payments, refunds, payouts and commission sweeps in ledger order.
// @Tags votings
// @Produce json
// @Param name path string true "Voting name"
// @Success 200 {object} httptransport.TransfersResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /v1/votings/{name}/transfers [get]
func (h Handler) TransfersHandler(ctx context.Context, name string) (httptransport.TransfersResponse, error) {
	ctx, span := startSpan(ctx, "campaign_registry.list_transfers", attribute.String("campaign.name", name))
	defer span.End()

	campaign, err := h.Queries.GetVoting(ctx, name)
	if err != nil {
		return httptransport.TransfersResponse{}, h.fail(span, "list_transfers", err)
	}
	transfers, err := h.Queries.ListTransfers(ctx, campaign.Name)
	if err != nil {
		return httptransport.TransfersResponse{}, h.fail(span, "list_transfers", err)
	}
	items := make([]httptransport.TransferItem, 0, len(transfers))
	for _, transfer := range transfers {
		items = append(items, httptransport.TransferItem{
			TransferID: transfer.TransferID,
			From:       transfer.From,
			To:         transfer.To,
			Amount:     transfer.Amount,
			Kind:       string(transfer.Kind),
			CreatedAt:  transfer.CreatedAt.UTC(),
		})
	}
	return httptransport.TransfersResponse{CampaignName: campaign.Name, Items: items}, nil
}

// WithdrawCommissionHandler godoc
// @Summary Withdraw accumulated commission
// @Description Sweeps the residual balance of every finished voting to the admin.
// @Tags registry
// @Produce json
// @Param X-User-Id header string true "Caller identity"
// @Success 200 {object} httptransport.WithdrawCommissionResponse
// @Failure 401 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /v1/commission/withdraw [post]
func (h Handler) WithdrawCommissionHandler(ctx context.Context, callerID string) (httptransport.WithdrawCommissionResponse, error) {
	ctx, span := startSpan(ctx, "campaign_registry.withdraw_commission")
	defer span.End()
	h.received("withdraw_commission", "caller_id", callerID)

	result, err := h.Registry.WithdrawCommission(ctx, commands.WithdrawCommissionCommand{CallerID: callerID})
	if err != nil {
		return httptransport.WithdrawCommissionResponse{}, h.fail(span, "withdraw_commission", err)
	}
	sweeps := make([]httptransport.CommissionSweepItem, 0, len(result.Sweeps))
	for _, sweep := range result.Sweeps {
		sweeps = append(sweeps, httptransport.CommissionSweepItem{CampaignName: sweep.CampaignName, Amount: sweep.Amount})
	}
	span.SetAttributes(attribute.Int64("commission.total", result.Total))
	return httptransport.WithdrawCommissionResponse{Total: result.Total, Sweeps: sweeps}, nil
}

// RegistryHandler godoc
// @Summary Registry balances
// @Description Returns the custody balance, the commission pool and the number of votings.
// @Tags registry
// @Produce json
// @Success 200 {object} httptransport.RegistryResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /v1/registry [get]
func (h Handler) RegistryHandler(ctx context.Context) (httptransport.RegistryResponse, error) {
	ctx, span := startSpan(ctx, "campaign_registry.summary")
	defer span.End()

	summary, err := h.Queries.Summary(ctx)
	if err != nil {
		return httptransport.RegistryResponse{}, h.fail(span, "registry_summary", err)
	}
	return httptransport.RegistryResponse{
		VotingsNumber:  summary.VotingsNumber,
		Balance:        summary.Custody,
		CommissionPool: summary.CommissionPool,
	}, nil
}

func (h Handler) received(operation string, args ...any) {
	args = append([]any{
		"event", "http_" + operation + "_received",
		"module", moduleName,
		"layer", "transport",
	}, args...)
	application.ResolveLogger(h.Logger).Info(operation+" request received", args...)
}

func (h Handler) fail(span trace.Span, operation string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	application.ResolveLogger(h.Logger).Error(operation+" request failed",
		"event", "http_"+operation+"_failed",
		"module", moduleName,
		"layer", "transport",
		"error", err.Error(),
	)
	return err
}

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, name, trace.WithAttributes(attrs...))
}

func mapVoting(campaign entities.Campaign) httptransport.VotingResponse {
	var finishedAt *time.Time
	if campaign.FinishedAt != nil {
		value := campaign.FinishedAt.UTC()
		finishedAt = &value
	}
	return httptransport.VotingResponse{
		Name:             campaign.Name,
		Active:           campaign.Active,
		Candidates:       campaign.CandidateIdentities(),
		CandidatesNumber: len(campaign.Candidates),
		VotersNumber:     campaign.VoterCount,
		Balance:          campaign.Balance,
		Deadline:         campaign.Deadline.UTC(),
		CreatedAt:        campaign.CreatedAt.UTC(),
		FinishedAt:       finishedAt,
	}
}
