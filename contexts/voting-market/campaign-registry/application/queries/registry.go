package queries

import (
	"context"
	"errors"
	"strings"

	"ballotpool/contexts/voting-market/campaign-registry/domain/entities"
	domainerrors "ballotpool/contexts/voting-market/campaign-registry/domain/errors"
	"ballotpool/contexts/voting-market/campaign-registry/ports"
)

// CandidateResult is one row of the running or final tally.
type CandidateResult struct {
	Candidate string
	Votes     int64
}

// RegistrySummary is the registry-wide accounting view.
type RegistrySummary struct {
	VotingsNumber  int
	Custody        int64
	CommissionPool int64
}

// RegistryQueries answers read-only questions against committed state.
type RegistryQueries struct {
	Repo ports.Repository
}

func (q RegistryQueries) IsVotingActive(ctx context.Context, name string) (bool, error) {
	campaign, err := q.Repo.GetCampaign(ctx, strings.TrimSpace(name))
	if err != nil {
		return false, err
	}
	return campaign.Active, nil
}

func (q RegistryQueries) GetCandidatesNumber(ctx context.Context, name string) (int, error) {
	campaign, err := q.Repo.GetCampaign(ctx, strings.TrimSpace(name))
	if err != nil {
		return 0, err
	}
	return len(campaign.Candidates), nil
}

func (q RegistryQueries) GetVotersNumber(ctx context.Context, name string) (int, error) {
	campaign, err := q.Repo.GetCampaign(ctx, strings.TrimSpace(name))
	if err != nil {
		return 0, err
	}
	return campaign.VoterCount, nil
}

func (q RegistryQueries) GetVotingBalance(ctx context.Context, name string) (int64, error) {
	campaign, err := q.Repo.GetCampaign(ctx, strings.TrimSpace(name))
	if err != nil {
		return 0, err
	}
	return campaign.Balance, nil
}

func (q RegistryQueries) GetVoting(ctx context.Context, name string) (entities.Campaign, error) {
	return q.Repo.GetCampaign(ctx, strings.TrimSpace(name))
}

func (q RegistryQueries) ListVotings(ctx context.Context) ([]entities.Campaign, error) {
	return q.Repo.ListCampaigns(ctx)
}

func (q RegistryQueries) GetVotingsNumber(ctx context.Context) (int, error) {
	return q.Repo.CountCampaigns(ctx)
}

// GetBalance is the registry custody according to the transfer ledger.
func (q RegistryQueries) GetBalance(ctx context.Context) (int64, error) {
	return q.Repo.Custody(ctx)
}

// GetCommissionPool sums what finished campaigns still hold for the admin.
func (q RegistryQueries) GetCommissionPool(ctx context.Context) (int64, error) {
	campaigns, err := q.Repo.ListCampaigns(ctx)
	if err != nil {
		return 0, err
	}
	var pool int64
	for _, campaign := range campaigns {
		if !campaign.Active {
			pool += campaign.Balance
		}
	}
	return pool, nil
}

func (q RegistryQueries) Summary(ctx context.Context) (RegistrySummary, error) {
	count, err := q.GetVotingsNumber(ctx)
	if err != nil {
		return RegistrySummary{}, err
	}
	custody, err := q.GetBalance(ctx)
	if err != nil {
		return RegistrySummary{}, err
	}
	pool, err := q.GetCommissionPool(ctx)
	if err != nil {
		return RegistrySummary{}, err
	}
	return RegistrySummary{VotingsNumber: count, Custody: custody, CommissionPool: pool}, nil
}

// ShowCandidates lists the candidate identities in creation order. Unknown
// names yield an empty list.
func (q RegistryQueries) ShowCandidates(ctx context.Context, name string) ([]string, error) {
	campaign, found, err := q.lookup(ctx, name)
	if err != nil || !found {
		return []string{}, err
	}
	return campaign.CandidateIdentities(), nil
}

// ShowResults lists every candidate with its vote count. Unknown names yield
// an empty list.
func (q RegistryQueries) ShowResults(ctx context.Context, name string) ([]CandidateResult, error) {
	campaign, found, err := q.lookup(ctx, name)
	if err != nil || !found {
		return []CandidateResult{}, err
	}
	items := make([]CandidateResult, 0, len(campaign.Candidates))
	for _, candidate := range campaign.Candidates {
		items = append(items, CandidateResult{Candidate: candidate.Identity, Votes: candidate.Votes})
	}
	return items, nil
}

func (q RegistryQueries) ListTransfers(ctx context.Context, name string) ([]entities.Transfer, error) {
	return q.Repo.ListTransfers(ctx, strings.TrimSpace(name))
}

func (q RegistryQueries) lookup(ctx context.Context, name string) (entities.Campaign, bool, error) {
	campaign, err := q.Repo.GetCampaign(ctx, strings.TrimSpace(name))
	if err != nil {
		if errors.Is(err, domainerrors.ErrCampaignNotFound) {
			return entities.Campaign{}, false, nil
		}
		return entities.Campaign{}, false, err
	}
	return campaign, true, nil
}
