package memory

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"ballotpool/contexts/voting-market/campaign-registry/domain/entities"
	domainerrors "ballotpool/contexts/voting-market/campaign-registry/domain/errors"
	"ballotpool/contexts/voting-market/campaign-registry/ports"

	"github.com/google/uuid"
)

type outboxRecord struct {
	message   ports.OutboxMessage
	published bool
}

// Store keeps the whole registry in memory. A single mutex guards it and
// Atomically holds that mutex for the full callback, which serializes every
// mutating operation.
type Store struct {
	mu sync.RWMutex

	campaigns     map[string]entities.Campaign
	campaignOrder []string
	votes         map[string]map[string]entities.Vote
	transfers     []entities.Transfer
	outbox        map[string]outboxRecord
	outboxOrder   []string
}

func NewStore(seed []entities.Campaign) *Store {
	store := &Store{
		campaigns: make(map[string]entities.Campaign, len(seed)),
		votes:     make(map[string]map[string]entities.Vote),
		outbox:    make(map[string]outboxRecord),
	}
	for _, campaign := range seed {
		name := strings.TrimSpace(campaign.Name)
		if _, exists := store.campaigns[name]; exists {
			continue
		}
		campaign.Name = name
		store.campaigns[name] = campaign.Clone()
		store.campaignOrder = append(store.campaignOrder, name)
	}
	return store
}

// Atomically stages every write of fn and applies them only when fn
// returns nil.
func (s *Store) Atomically(_ context.Context, fn func(tx ports.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &storeTx{
		store:     s,
		campaigns: make(map[string]entities.Campaign),
		voters:    make(map[string]struct{}),
	}
	if err := fn(tx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

func (s *Store) GetCampaign(_ context.Context, name string) (entities.Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	campaign, ok := s.campaigns[strings.TrimSpace(name)]
	if !ok {
		return entities.Campaign{}, domainerrors.ErrCampaignNotFound
	}
	return campaign.Clone(), nil
}

func (s *Store) ListCampaigns(_ context.Context) ([]entities.Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Campaign, 0, len(s.campaignOrder))
	for _, name := range s.campaignOrder {
		items = append(items, s.campaigns[name].Clone())
	}
	return items, nil
}

func (s *Store) CountCampaigns(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.campaignOrder), nil
}

func (s *Store) ListExpiredActive(_ context.Context, now time.Time, limit int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]string, 0)
	for _, name := range s.campaignOrder {
		if limit > 0 && len(items) >= limit {
			break
		}
		campaign := s.campaigns[name]
		if campaign.Active && campaign.CanFinishAt(now) {
			items = append(items, name)
		}
	}
	return items, nil
}

func (s *Store) Custody(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var total int64
	for _, transfer := range s.transfers {
		total += transfer.CustodyDelta()
	}
	return total, nil
}

// ListTransfers returns the ledger of one campaign, or the whole ledger when
// campaignName is empty.
func (s *Store) ListTransfers(_ context.Context, campaignName string) ([]entities.Transfer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	campaignName = strings.TrimSpace(campaignName)
	items := make([]entities.Transfer, 0)
	for _, transfer := range s.transfers {
		if campaignName == "" || transfer.CampaignName == campaignName {
			items = append(items, transfer)
		}
	}
	return items, nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 {
		limit = 100
	}
	items := make([]ports.OutboxMessage, 0, limit)
	for _, id := range s.outboxOrder {
		if len(items) >= limit {
			break
		}
		record := s.outbox[id]
		if record.published {
			continue
		}
		message := record.message
		message.Payload = append([]byte(nil), message.Payload...)
		items = append(items, message)
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.outbox[strings.TrimSpace(outboxID)]
	if !ok {
		return domainerrors.ErrOutboxRecordNotFound
	}
	record.published = true
	s.outbox[strings.TrimSpace(outboxID)] = record
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

type storeTx struct {
	store *Store

	campaigns map[string]entities.Campaign
	created   []string
	votes     []entities.Vote
	voters    map[string]struct{}
	transfers []entities.Transfer
	outbox    []ports.OutboxMessage
}

func (tx *storeTx) CampaignExists(_ context.Context, name string) (bool, error) {
	_, ok := tx.lookup(strings.TrimSpace(name))
	return ok, nil
}

func (tx *storeTx) CreateCampaign(_ context.Context, campaign entities.Campaign) error {
	name := strings.TrimSpace(campaign.Name)
	if _, ok := tx.lookup(name); ok {
		return domainerrors.ErrDuplicateCampaign
	}
	campaign.Name = name
	tx.campaigns[name] = campaign.Clone()
	tx.created = append(tx.created, name)
	return nil
}

func (tx *storeTx) LockCampaign(_ context.Context, name string) (entities.Campaign, error) {
	campaign, ok := tx.lookup(strings.TrimSpace(name))
	if !ok {
		return entities.Campaign{}, domainerrors.ErrCampaignNotFound
	}
	return campaign.Clone(), nil
}

func (tx *storeTx) SaveCampaign(_ context.Context, campaign entities.Campaign) error {
	name := strings.TrimSpace(campaign.Name)
	if _, ok := tx.lookup(name); !ok {
		return domainerrors.ErrCampaignNotFound
	}
	tx.campaigns[name] = campaign.Clone()
	return nil
}

func (tx *storeTx) LockSettledCampaigns(_ context.Context) ([]entities.Campaign, error) {
	items := make([]entities.Campaign, 0)
	names := append(append([]string(nil), tx.store.campaignOrder...), tx.created...)
	for _, name := range names {
		campaign, _ := tx.lookup(name)
		if !campaign.Active && campaign.Balance > 0 {
			items = append(items, campaign.Clone())
		}
	}
	return items, nil
}

func (tx *storeTx) HasVoted(_ context.Context, campaignName string, voter string) (bool, error) {
	campaignName = strings.TrimSpace(campaignName)
	voter = strings.TrimSpace(voter)
	if _, ok := tx.voters[voterKey(campaignName, voter)]; ok {
		return true, nil
	}
	_, ok := tx.store.votes[campaignName][voter]
	return ok, nil
}

func (tx *storeTx) RecordVote(ctx context.Context, vote entities.Vote) error {
	voted, err := tx.HasVoted(ctx, vote.CampaignName, vote.Voter)
	if err != nil {
		return err
	}
	if voted {
		return domainerrors.ErrDuplicateVote
	}
	tx.voters[voterKey(vote.CampaignName, vote.Voter)] = struct{}{}
	tx.votes = append(tx.votes, vote)
	return nil
}

func (tx *storeTx) RecordTransfer(_ context.Context, transfer entities.Transfer) error {
	if transfer.Amount <= 0 {
		return domainerrors.ErrInvalidInput
	}
	tx.transfers = append(tx.transfers, transfer)
	return nil
}

func (tx *storeTx) AppendOutbox(_ context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	outboxID := strings.TrimSpace(envelope.EventID)
	if outboxID == "" {
		outboxID = uuid.NewString()
	}
	tx.outbox = append(tx.outbox, ports.OutboxMessage{
		OutboxID:     outboxID,
		EventType:    envelope.EventType,
		PartitionKey: envelope.PartitionKey,
		Payload:      payload,
		CreatedAt:    envelope.OccurredAt.UTC(),
	})
	return nil
}

func (tx *storeTx) lookup(name string) (entities.Campaign, bool) {
	if campaign, ok := tx.campaigns[name]; ok {
		return campaign, true
	}
	campaign, ok := tx.store.campaigns[name]
	return campaign, ok
}

func (tx *storeTx) commit() {
	s := tx.store
	for name, campaign := range tx.campaigns {
		s.campaigns[name] = campaign
	}
	s.campaignOrder = append(s.campaignOrder, tx.created...)
	for _, vote := range tx.votes {
		byVoter, ok := s.votes[vote.CampaignName]
		if !ok {
			byVoter = make(map[string]entities.Vote)
			s.votes[vote.CampaignName] = byVoter
		}
		byVoter[vote.Voter] = vote
	}
	s.transfers = append(s.transfers, tx.transfers...)
	for _, message := range tx.outbox {
		if _, exists := s.outbox[message.OutboxID]; exists {
			continue
		}
		s.outbox[message.OutboxID] = outboxRecord{message: message}
		s.outboxOrder = append(s.outboxOrder, message.OutboxID)
	}
}

func voterKey(campaignName string, voter string) string {
	return campaignName + "\x00" + voter
}

var (
	_ ports.Repository       = (*Store)(nil)
	_ ports.OutboxRepository = (*Store)(nil)
	_ ports.Clock            = (*Store)(nil)
	_ ports.IDGenerator      = (*Store)(nil)
)
