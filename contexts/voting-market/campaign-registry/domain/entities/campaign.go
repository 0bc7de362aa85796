package entities

import "time"

const (
	// MinorUnitsPerCoin is the number of ledger units in one coin.
	MinorUnitsPerCoin int64 = 1_000_000_000
	// DefaultVotePrice is 0.01 coin.
	DefaultVotePrice int64 = MinorUnitsPerCoin / 100
	// DefaultCommissionBps is the house cut in basis points (10%).
	DefaultCommissionBps int64 = 1000
	// BasisPoints is the denominator for commission rates.
	BasisPoints int64 = 10000
)

type CandidateTally struct {
	Identity string
	Votes    int64
}

// Campaign is one named voting with a fixed candidate list and deadline.
// Balance is tracked in minor units.
type Campaign struct {
	Name       string
	Candidates []CandidateTally
	Deadline   time.Time
	Active     bool
	Balance    int64
	VoterCount int
	CreatedAt  time.Time
	UpdatedAt  time.Time
	FinishedAt *time.Time
}

// AcceptsVotesAt reports whether now is strictly before the deadline.
func (c Campaign) AcceptsVotesAt(now time.Time) bool {
	return now.Before(c.Deadline)
}

// CanFinishAt reports whether the deadline has been reached.
func (c Campaign) CanFinishAt(now time.Time) bool {
	return !now.Before(c.Deadline)
}

func (c Campaign) HasCandidate(identity string) bool {
	return c.candidateIndex(identity) >= 0
}

func (c Campaign) CandidateIdentities() []string {
	items := make([]string, 0, len(c.Candidates))
	for _, candidate := range c.Candidates {
		items = append(items, candidate.Identity)
	}
	return items
}

// RecordVote adds one vote for the candidate and credits the campaign.
// The caller validates the candidate beforehand.
func (c *Campaign) RecordVote(candidate string, credited int64, now time.Time) {
	if idx := c.candidateIndex(candidate); idx >= 0 {
		c.Candidates[idx].Votes++
	}
	c.VoterCount++
	c.Balance += credited
	c.UpdatedAt = now
}

// Close moves the campaign into its terminal state.
func (c *Campaign) Close(paidOut int64, now time.Time) {
	c.Balance -= paidOut
	c.Active = false
	c.UpdatedAt = now
	finishedAt := now
	c.FinishedAt = &finishedAt
}

// SweepResidual empties the balance of a finished campaign and returns what
// was left on it. Active campaigns are never swept.
func (c *Campaign) SweepResidual(now time.Time) int64 {
	if c.Active || c.Balance <= 0 {
		return 0
	}
	amount := c.Balance
	c.Balance = 0
	c.UpdatedAt = now
	return amount
}

// Clone returns a copy that shares no slices or pointers with c.
func (c Campaign) Clone() Campaign {
	out := c
	out.Candidates = append([]CandidateTally(nil), c.Candidates...)
	if c.FinishedAt != nil {
		finishedAt := *c.FinishedAt
		out.FinishedAt = &finishedAt
	}
	return out
}

func (c Campaign) candidateIndex(identity string) int {
	for i, candidate := range c.Candidates {
		if candidate.Identity == identity {
			return i
		}
	}
	return -1
}

type Vote struct {
	VoteID         string
	CampaignName   string
	Voter          string
	Candidate      string
	AmountPaid     int64
	AmountCredited int64
	CreatedAt      time.Time
}
