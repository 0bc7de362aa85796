package entities

import "time"

// RegistryAccount is the ledger identity holding campaign funds.
const RegistryAccount = "registry"

type TransferKind string

const (
	TransferKindVotePayment          TransferKind = "vote_payment"
	TransferKindVoteRefund           TransferKind = "vote_refund"
	TransferKindPrizePayout          TransferKind = "prize_payout"
	TransferKindCommissionWithdrawal TransferKind = "commission_withdrawal"
)

// Transfer is one value movement between identities. Every transfer is
// recorded inside the operation that caused it.
type Transfer struct {
	TransferID   string
	CampaignName string
	From         string
	To           string
	Amount       int64
	Kind         TransferKind
	CreatedAt    time.Time
}

// CustodyDelta is the effect of the transfer on the registry's holdings.
func (t Transfer) CustodyDelta() int64 {
	switch {
	case t.To == RegistryAccount && t.From != RegistryAccount:
		return t.Amount
	case t.From == RegistryAccount && t.To != RegistryAccount:
		return -t.Amount
	default:
		return 0
	}
}
