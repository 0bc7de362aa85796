package services

import (
	"errors"
	"math"
	"testing"

	"ballotpool/contexts/voting-market/campaign-registry/domain/entities"
	domainerrors "ballotpool/contexts/voting-market/campaign-registry/domain/errors"
)

func TestSettleSplitsPrizeBetweenTiedWinners(t *testing.T) {
	campaign := entities.Campaign{
		Balance: 2 * entities.DefaultVotePrice,
		Candidates: []entities.CandidateTally{
			{Identity: "cand-0", Votes: 1},
			{Identity: "cand-1", Votes: 1},
			{Identity: "cand-2"},
			{Identity: "cand-3"},
			{Identity: "cand-4"},
		},
	}

	settlement, err := Settle(campaign, entities.DefaultCommissionBps)
	if err != nil {
		t.Fatalf("settle failed: %v", err)
	}
	if len(settlement.Winners) != 2 || settlement.Winners[0] != "cand-0" || settlement.Winners[1] != "cand-1" {
		t.Fatalf("unexpected winners: %v", settlement.Winners)
	}
	if settlement.SharePerWinner != 9_000_000 {
		t.Fatalf("expected share 0.009 coin, got %d", settlement.SharePerWinner)
	}
	if settlement.PaidOut() != 18_000_000 {
		t.Fatalf("expected 0.018 coin paid out, got %d", settlement.PaidOut())
	}
	if settlement.Retained() != 2_000_000 {
		t.Fatalf("expected 0.002 coin retained, got %d", settlement.Retained())
	}
}

func TestSettleKeepsRoundingRemainder(t *testing.T) {
	candidates := make([]entities.CandidateTally, 0, 8)
	for i := 0; i < 7; i++ {
		candidates = append(candidates, entities.CandidateTally{Identity: string(rune('a' + i)), Votes: 2})
	}
	candidates = append(candidates, entities.CandidateTally{Identity: "h", Votes: 1})
	campaign := entities.Campaign{
		Balance:    15 * entities.DefaultVotePrice,
		Candidates: candidates,
	}

	settlement, err := Settle(campaign, entities.DefaultCommissionBps)
	if err != nil {
		t.Fatalf("settle failed: %v", err)
	}
	if len(settlement.Winners) != 7 {
		t.Fatalf("expected 7 winners, got %d", len(settlement.Winners))
	}
	if settlement.PrizePool != 135_000_000 {
		t.Fatalf("unexpected prize pool %d", settlement.PrizePool)
	}
	wantShare := campaign.Balance * 9 / 10 / 7
	if settlement.SharePerWinner != wantShare {
		t.Fatalf("expected share %d, got %d", wantShare, settlement.SharePerWinner)
	}
	if settlement.Remainder != 2 {
		t.Fatalf("expected remainder 2, got %d", settlement.Remainder)
	}
	if got := campaign.Balance - settlement.PaidOut(); got != settlement.Retained() {
		t.Fatalf("retained mismatch: balance left %d, retained %d", got, settlement.Retained())
	}
}

func TestSettleWithoutVotesMakesEveryCandidateAWinner(t *testing.T) {
	campaign := entities.Campaign{
		Candidates: []entities.CandidateTally{{Identity: "a"}, {Identity: "b"}, {Identity: "c"}},
	}
	settlement, err := Settle(campaign, entities.DefaultCommissionBps)
	if err != nil {
		t.Fatalf("settle failed: %v", err)
	}
	if len(settlement.Winners) != 3 || settlement.PaidOut() != 0 {
		t.Fatalf("unexpected settlement: %+v", settlement)
	}
}

func TestSettleWithoutCandidatesRetainsEverything(t *testing.T) {
	settlement, err := Settle(entities.Campaign{Balance: 50}, entities.DefaultCommissionBps)
	if err != nil {
		t.Fatalf("settle failed: %v", err)
	}
	if len(settlement.Winners) != 0 {
		t.Fatalf("expected no winners, got %v", settlement.Winners)
	}
	if settlement.PaidOut() != 0 || settlement.Retained() != 50 {
		t.Fatalf("expected full balance retained, got %+v", settlement)
	}
}

func TestSettleFloorsPrizePool(t *testing.T) {
	campaign := entities.Campaign{
		Balance:    15,
		Candidates: []entities.CandidateTally{{Identity: "a", Votes: 1}},
	}
	settlement, err := Settle(campaign, entities.DefaultCommissionBps)
	if err != nil {
		t.Fatalf("settle failed: %v", err)
	}
	if settlement.PrizePool != 13 || settlement.Commission != 2 {
		t.Fatalf("expected prize 13 and commission 2, got %+v", settlement)
	}
}

func TestSettleRejectsInvalidRate(t *testing.T) {
	if _, err := Settle(entities.Campaign{}, entities.BasisPoints+1); !errors.Is(err, domainerrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestSettleLargeBalanceKeepsFundsConserved(t *testing.T) {
	for _, balance := range []int64{2_000_000_000_000_000, math.MaxInt64 / 2, math.MaxInt64} {
		campaign := entities.Campaign{
			Balance:    balance,
			Candidates: []entities.CandidateTally{{Identity: "a", Votes: 2}, {Identity: "b", Votes: 2}},
		}
		settlement, err := Settle(campaign, entities.DefaultCommissionBps)
		if err != nil {
			t.Fatalf("balance %d: settle failed: %v", balance, err)
		}
		if settlement.PrizePool < 0 || settlement.PaidOut() < 0 || settlement.PaidOut() > balance {
			t.Fatalf("balance %d: payout out of range %+v", balance, settlement)
		}
		if settlement.PaidOut()+settlement.Retained() != balance {
			t.Fatalf("balance %d: payout and retained do not add up: %+v", balance, settlement)
		}
		wantPool := balance/10*9 + (balance%10)*9/10
		if settlement.PrizePool != wantPool {
			t.Fatalf("balance %d: expected prize pool %d, got %d", balance, wantPool, settlement.PrizePool)
		}
	}
}
