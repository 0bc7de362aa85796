package services

import (
	"ballotpool/contexts/voting-market/campaign-registry/domain/entities"
	domainerrors "ballotpool/contexts/voting-market/campaign-registry/domain/errors"
)

// Settlement is the payout plan for a campaign at close.
type Settlement struct {
	Winners        []string
	TopVotes       int64
	PrizePool      int64
	Commission     int64
	SharePerWinner int64
	Remainder      int64
}

// PaidOut is the amount leaving the campaign balance at close.
func (s Settlement) PaidOut() int64 {
	return s.SharePerWinner * int64(len(s.Winners))
}

// Retained is what stays on the campaign balance until the commission sweep.
func (s Settlement) Retained() int64 {
	return s.Commission + s.Remainder
}

// Settle computes the winner set and the prize split for the campaign.
//
// Winners are all candidates sharing the highest tally, in candidate order.
// The prize pool is floor(balance * (1 - rate)); the commission is the rest
// of the balance. Shares are floored, and the rounding remainder stays with
// the campaign together with the commission.
func Settle(campaign entities.Campaign, commissionBps int64) (Settlement, error) {
	if campaign.Balance < 0 || commissionBps < 0 || commissionBps > entities.BasisPoints {
		return Settlement{}, domainerrors.ErrInvalidInput
	}

	var top int64
	for _, candidate := range campaign.Candidates {
		if candidate.Votes > top {
			top = candidate.Votes
		}
	}
	winners := make([]string, 0, len(campaign.Candidates))
	for _, candidate := range campaign.Candidates {
		if candidate.Votes == top {
			winners = append(winners, candidate.Identity)
		}
	}

	prizePool := prizeShare(campaign.Balance, entities.BasisPoints-commissionBps)
	if prizePool < 0 || prizePool > campaign.Balance {
		return Settlement{}, domainerrors.ErrInvalidInput
	}
	settlement := Settlement{
		Winners:    winners,
		TopVotes:   top,
		PrizePool:  prizePool,
		Commission: campaign.Balance - prizePool,
	}
	if len(winners) == 0 {
		settlement.Remainder = prizePool
		return settlement, nil
	}
	settlement.SharePerWinner = prizePool / int64(len(winners))
	settlement.Remainder = prizePool - settlement.SharePerWinner*int64(len(winners))
	return settlement, nil
}

// prizeShare is floor(balance * keepBps / BasisPoints) without forming the
// full product, which would overflow int64 for large balances.
func prizeShare(balance int64, keepBps int64) int64 {
	whole := balance / entities.BasisPoints
	rest := balance % entities.BasisPoints
	return whole*keepBps + rest*keepBps/entities.BasisPoints
}
