package errors

import "errors"

var (
	ErrInvalidInput         = errors.New("campaign registry input is invalid")
	ErrUnauthorized         = errors.New("caller is not the registry admin")
	ErrCampaignNotFound     = errors.New("voting not found")
	ErrDuplicateCampaign    = errors.New("voting with this name already exists")
	ErrVotingInactive       = errors.New("this voting is inactive")
	ErrVotingExpired        = errors.New("voting time has finished")
	ErrVotingNotYetExpired  = errors.New("voting time has not finished")
	ErrDuplicateVote        = errors.New("this user has already voted")
	ErrInsufficientPayment  = errors.New("not enough money to vote")
	ErrUnknownCandidate     = errors.New("candidate is not part of this voting")
	ErrOutboxRecordNotFound = errors.New("outbox record not found")
)
