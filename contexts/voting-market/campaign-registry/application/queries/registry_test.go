package queries

import (
	"context"
	"errors"
	"testing"
	"time"

	"ballotpool/contexts/voting-market/campaign-registry/adapters/memory"
	"ballotpool/contexts/voting-market/campaign-registry/domain/entities"
	domainerrors "ballotpool/contexts/voting-market/campaign-registry/domain/errors"
)

func seededQueries() RegistryQueries {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	finishedAt := now.Add(time.Hour)
	store := memory.NewStore([]entities.Campaign{
		{
			Name: "open",
			Candidates: []entities.CandidateTally{
				{Identity: "a", Votes: 2},
				{Identity: "b", Votes: 1},
			},
			Deadline:   now.Add(24 * time.Hour),
			Active:     true,
			Balance:    3 * entities.DefaultVotePrice,
			VoterCount: 3,
			CreatedAt:  now,
		},
		{
			Name:       "closed",
			Candidates: []entities.CandidateTally{{Identity: "c", Votes: 1}},
			Deadline:   now,
			Active:     false,
			Balance:    1_000_000,
			VoterCount: 1,
			CreatedAt:  now,
			FinishedAt: &finishedAt,
		},
		{
			Name:      "empty",
			Deadline:  now.Add(time.Hour),
			Active:    true,
			CreatedAt: now,
		},
	})
	return RegistryQueries{Repo: store}
}

func TestNumericQueriesRequireExistingCampaign(t *testing.T) {
	q := seededQueries()
	ctx := context.Background()

	if _, err := q.IsVotingActive(ctx, "missing"); !errors.Is(err, domainerrors.ErrCampaignNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := q.GetCandidatesNumber(ctx, "missing"); !errors.Is(err, domainerrors.ErrCampaignNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := q.GetVotersNumber(ctx, "missing"); !errors.Is(err, domainerrors.ErrCampaignNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := q.GetVotingBalance(ctx, "missing"); !errors.Is(err, domainerrors.ErrCampaignNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	active, err := q.IsVotingActive(ctx, "closed")
	if err != nil || active {
		t.Fatalf("expected closed campaign inactive, got %v, %v", active, err)
	}
	candidates, _ := q.GetCandidatesNumber(ctx, "open")
	voters, _ := q.GetVotersNumber(ctx, "open")
	balance, _ := q.GetVotingBalance(ctx, "open")
	if candidates != 2 || voters != 3 || balance != 3*entities.DefaultVotePrice {
		t.Fatalf("unexpected open campaign numbers: %d %d %d", candidates, voters, balance)
	}
}

func TestShowQueriesTolerateUnknownAndEmptyCampaigns(t *testing.T) {
	q := seededQueries()
	ctx := context.Background()

	for _, name := range []string{"missing", "empty"} {
		candidates, err := q.ShowCandidates(ctx, name)
		if err != nil || candidates == nil || len(candidates) != 0 {
			t.Fatalf("%s: expected empty candidate list, got %v, %v", name, candidates, err)
		}
		results, err := q.ShowResults(ctx, name)
		if err != nil || results == nil || len(results) != 0 {
			t.Fatalf("%s: expected empty results, got %v, %v", name, results, err)
		}
	}

	results, err := q.ShowResults(ctx, "open")
	if err != nil {
		t.Fatalf("show results: %v", err)
	}
	if len(results) != 2 || results[0].Candidate != "a" || results[0].Votes != 2 || results[1].Votes != 1 {
		t.Fatalf("unexpected results %+v", results)
	}
}

func TestSummaryReportsCommissionPool(t *testing.T) {
	q := seededQueries()
	summary, err := q.Summary(context.Background())
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.VotingsNumber != 3 {
		t.Fatalf("expected 3 votings, got %d", summary.VotingsNumber)
	}
	if summary.CommissionPool != 1_000_000 {
		t.Fatalf("expected commission pool of the closed campaign, got %d", summary.CommissionPool)
	}
	if summary.Custody != 0 {
		t.Fatalf("seeded store has no ledger entries, got custody %d", summary.Custody)
	}
}
