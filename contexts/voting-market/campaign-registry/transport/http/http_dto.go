package http

import "time"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type AddVotingRequest struct {
	Name            string   `json:"name"`
	Candidates      []string `json:"candidates"`
	DurationSeconds int64    `json:"duration_seconds"`
}

type VotingResponse struct {
	Name             string     `json:"name"`
	Active           bool       `json:"active"`
	Candidates       []string   `json:"candidates"`
	CandidatesNumber int        `json:"candidates_number"`
	VotersNumber     int        `json:"voters_number"`
	Balance          int64      `json:"balance"`
	Deadline         time.Time  `json:"deadline"`
	CreatedAt        time.Time  `json:"created_at"`
	FinishedAt       *time.Time `json:"finished_at,omitempty"`
}

type VotingListResponse struct {
	Count int              `json:"count"`
	Items []VotingResponse `json:"items"`
}

type VoteRequest struct {
	Candidate  string `json:"candidate"`
	AmountPaid int64  `json:"amount_paid"`
}

type VoteResponse struct {
	VoteID         string `json:"vote_id"`
	CampaignName   string `json:"campaign_name"`
	VoterID        string `json:"voter_id"`
	Candidate      string `json:"candidate"`
	AmountPaid     int64  `json:"amount_paid"`
	AmountCredited int64  `json:"amount_credited"`
	AmountRefunded int64  `json:"amount_refunded"`
	VotingBalance  int64  `json:"voting_balance"`
}

type FinishResponse struct {
	CampaignName   string   `json:"campaign_name"`
	Winners        []string `json:"winners"`
	TopVotes       int64    `json:"top_votes"`
	SharePerWinner int64    `json:"share_per_winner"`
	PaidOut        int64    `json:"paid_out"`
	Retained       int64    `json:"retained"`
}

type CandidatesResponse struct {
	CampaignName string   `json:"campaign_name"`
	Candidates   []string `json:"candidates"`
}

type ResultItem struct {
	Candidate string `json:"candidate"`
	Votes     int64  `json:"votes"`
}

type ResultsResponse struct {
	CampaignName string       `json:"campaign_name"`
	Items        []ResultItem `json:"items"`
}

type TransferItem struct {
	TransferID string    `json:"transfer_id"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	Amount     int64     `json:"amount"`
	Kind       string    `json:"kind"`
	CreatedAt  time.Time `json:"created_at"`
}

type TransfersResponse struct {
	CampaignName string         `json:"campaign_name"`
	Items        []TransferItem `json:"items"`
}

type CommissionSweepItem struct {
	CampaignName string `json:"campaign_name"`
	Amount       int64  `json:"amount"`
}

type WithdrawCommissionResponse struct {
	Total  int64                 `json:"total"`
	Sweeps []CommissionSweepItem `json:"sweeps"`
}

type RegistryResponse struct {
	VotingsNumber  int   `json:"votings_number"`
	Balance        int64 `json:"balance"`
	CommissionPool int64 `json:"commission_pool"`
}
