package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"ballotpool/contexts/voting-market/campaign-registry/domain/entities"
	domainerrors "ballotpool/contexts/voting-market/campaign-registry/domain/errors"
	"ballotpool/contexts/voting-market/campaign-registry/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

// Repository persists the registry with gorm. It runs on PostgreSQL in
// production and on SQLite for embedded deployments and tests.
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Migrate creates or updates the registry tables.
func (r *Repository) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(
		&campaignModel{},
		&candidateModel{},
		&voteModel{},
		&transferModel{},
		&outboxModel{},
	); err != nil {
		return r.logError("registry_repo_migrate_failed", err)
	}
	return nil
}

// Atomically runs fn inside one database transaction. Campaign rows read
// through the Tx are locked until commit.
func (r *Repository) Atomically(ctx context.Context, fn func(tx ports.Tx) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&repositoryTx{db: tx, repo: r})
	})
}

func (r *Repository) GetCampaign(ctx context.Context, name string) (entities.Campaign, error) {
	campaign, err := loadCampaign(r.db.WithContext(ctx), strings.TrimSpace(name), false)
	if err != nil {
		if errors.Is(err, domainerrors.ErrCampaignNotFound) {
			return entities.Campaign{}, err
		}
		return entities.Campaign{}, r.logError("registry_repo_get_campaign_failed", err, "campaign_name", strings.TrimSpace(name))
	}
	return campaign, nil
}

func (r *Repository) ListCampaigns(ctx context.Context) ([]entities.Campaign, error) {
	db := r.db.WithContext(ctx)
	var rows []campaignModel
	if err := db.Order("seq ASC").Find(&rows).Error; err != nil {
		return nil, r.logError("registry_repo_list_campaigns_failed", err)
	}
	var candidateRows []candidateModel
	if err := db.Order("campaign_name ASC, position ASC").Find(&candidateRows).Error; err != nil {
		return nil, r.logError("registry_repo_list_candidates_failed", err)
	}
	byCampaign := make(map[string][]candidateModel, len(rows))
	for _, row := range candidateRows {
		byCampaign[row.CampaignName] = append(byCampaign[row.CampaignName], row)
	}
	items := make([]entities.Campaign, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity(byCampaign[row.Name]))
	}
	return items, nil
}

func (r *Repository) CountCampaigns(ctx context.Context) (int, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&campaignModel{}).Count(&count).Error; err != nil {
		return 0, r.logError("registry_repo_count_campaigns_failed", err)
	}
	return int(count), nil
}

// ListExpiredActive filters deadlines in Go so the comparison does not
// depend on how the dialect stores timestamps.
func (r *Repository) ListExpiredActive(ctx context.Context, now time.Time, limit int) ([]string, error) {
	var rows []campaignModel
	if err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("seq ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("registry_repo_list_expired_active_failed", err)
	}
	items := make([]string, 0)
	for _, row := range rows {
		if limit > 0 && len(items) >= limit {
			break
		}
		if !now.Before(row.Deadline) {
			items = append(items, row.Name)
		}
	}
	return items, nil
}

func (r *Repository) Custody(ctx context.Context) (int64, error) {
	db := r.db.WithContext(ctx)
	var inflow int64
	if err := db.Model(&transferModel{}).
		Where("to_identity = ? AND from_identity <> ?", entities.RegistryAccount, entities.RegistryAccount).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&inflow).Error; err != nil {
		return 0, r.logError("registry_repo_custody_inflow_failed", err)
	}
	var outflow int64
	if err := db.Model(&transferModel{}).
		Where("from_identity = ? AND to_identity <> ?", entities.RegistryAccount, entities.RegistryAccount).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&outflow).Error; err != nil {
		return 0, r.logError("registry_repo_custody_outflow_failed", err)
	}
	return inflow - outflow, nil
}

func (r *Repository) ListTransfers(ctx context.Context, campaignName string) ([]entities.Transfer, error) {
	tx := r.db.WithContext(ctx).Model(&transferModel{})
	if strings.TrimSpace(campaignName) != "" {
		tx = tx.Where("campaign_name = ?", strings.TrimSpace(campaignName))
	}
	var rows []transferModel
	if err := tx.Order("seq ASC").Find(&rows).Error; err != nil {
		return nil, r.logError("registry_repo_list_transfers_failed", err,
			"campaign_name", strings.TrimSpace(campaignName),
		)
	}
	items := make([]entities.Transfer, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("seq ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("registry_repo_list_pending_outbox_failed", err, "limit", limit)
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:     row.OutboxID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      append([]byte(nil), row.Payload...),
			CreatedAt:    row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": publishedAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("registry_repo_mark_outbox_published_failed", result.Error,
			"outbox_id", strings.TrimSpace(outboxID),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrOutboxRecordNotFound
	}
	return nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "voting-market/campaign-registry",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("registry repository operation failed", fields...)
	return err
}

type repositoryTx struct {
	db   *gorm.DB
	repo *Repository
}

func (t *repositoryTx) CampaignExists(ctx context.Context, name string) (bool, error) {
	var count int64
	if err := t.db.WithContext(ctx).
		Model(&campaignModel{}).
		Where("name = ?", strings.TrimSpace(name)).
		Count(&count).Error; err != nil {
		return false, t.repo.logError("registry_repo_campaign_exists_failed", err, "campaign_name", strings.TrimSpace(name))
	}
	return count > 0, nil
}

func (t *repositoryTx) CreateCampaign(ctx context.Context, campaign entities.Campaign) error {
	row := campaignModelFromEntity(campaign)
	db := t.db.WithContext(ctx)
	if err := db.Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrDuplicateCampaign
		}
		return t.repo.logError("registry_repo_create_campaign_failed", err, "campaign_name", row.Name)
	}
	if len(campaign.Candidates) == 0 {
		return nil
	}
	candidates := make([]candidateModel, 0, len(campaign.Candidates))
	for i, candidate := range campaign.Candidates {
		candidates = append(candidates, candidateModel{
			CampaignName: row.Name,
			Identity:     candidate.Identity,
			Position:     i,
			Votes:        candidate.Votes,
		})
	}
	if err := db.Create(&candidates).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrInvalidInput
		}
		return t.repo.logError("registry_repo_create_candidates_failed", err, "campaign_name", row.Name)
	}
	return nil
}

func (t *repositoryTx) LockCampaign(ctx context.Context, name string) (entities.Campaign, error) {
	campaign, err := loadCampaign(t.db.WithContext(ctx), strings.TrimSpace(name), true)
	if err != nil {
		if errors.Is(err, domainerrors.ErrCampaignNotFound) {
			return entities.Campaign{}, err
		}
		return entities.Campaign{}, t.repo.logError("registry_repo_lock_campaign_failed", err, "campaign_name", strings.TrimSpace(name))
	}
	return campaign, nil
}

func (t *repositoryTx) SaveCampaign(ctx context.Context, campaign entities.Campaign) error {
	db := t.db.WithContext(ctx)
	name := strings.TrimSpace(campaign.Name)
	result := db.Model(&campaignModel{}).
		Where("name = ?", name).
		Updates(map[string]any{
			"active":      campaign.Active,
			"balance":     campaign.Balance,
			"voter_count": campaign.VoterCount,
			"updated_at":  campaign.UpdatedAt.UTC(),
			"finished_at": optionalTime(campaign.FinishedAt),
		})
	if result.Error != nil {
		return t.repo.logError("registry_repo_save_campaign_failed", result.Error, "campaign_name", name)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrCampaignNotFound
	}
	for _, candidate := range campaign.Candidates {
		if err := db.Model(&candidateModel{}).
			Where("campaign_name = ? AND identity = ?", name, candidate.Identity).
			Update("votes", candidate.Votes).Error; err != nil {
			return t.repo.logError("registry_repo_save_candidate_failed", err,
				"campaign_name", name,
				"candidate", candidate.Identity,
			)
		}
	}
	return nil
}

func (t *repositoryTx) LockSettledCampaigns(ctx context.Context) ([]entities.Campaign, error) {
	db := t.db.WithContext(ctx)
	var rows []campaignModel
	if err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("active = ? AND balance > ?", false, 0).
		Order("seq ASC").
		Find(&rows).Error; err != nil {
		return nil, t.repo.logError("registry_repo_lock_settled_campaigns_failed", err)
	}
	items := make([]entities.Campaign, 0, len(rows))
	for _, row := range rows {
		candidates, err := loadCandidates(db, row.Name)
		if err != nil {
			return nil, t.repo.logError("registry_repo_load_candidates_failed", err, "campaign_name", row.Name)
		}
		items = append(items, row.toEntity(candidates))
	}
	return items, nil
}

func (t *repositoryTx) HasVoted(ctx context.Context, campaignName string, voter string) (bool, error) {
	var count int64
	if err := t.db.WithContext(ctx).
		Model(&voteModel{}).
		Where("campaign_name = ? AND voter = ?", strings.TrimSpace(campaignName), strings.TrimSpace(voter)).
		Count(&count).Error; err != nil {
		return false, t.repo.logError("registry_repo_has_voted_failed", err,
			"campaign_name", strings.TrimSpace(campaignName),
			"voter_id", strings.TrimSpace(voter),
		)
	}
	return count > 0, nil
}

func (t *repositoryTx) RecordVote(ctx context.Context, vote entities.Vote) error {
	row := voteModel{
		VoteID:         vote.VoteID,
		CampaignName:   vote.CampaignName,
		Voter:          vote.Voter,
		Candidate:      vote.Candidate,
		AmountPaid:     vote.AmountPaid,
		AmountCredited: vote.AmountCredited,
		CreatedAt:      vote.CreatedAt.UTC(),
	}
	if err := t.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrDuplicateVote
		}
		return t.repo.logError("registry_repo_record_vote_failed", err,
			"campaign_name", vote.CampaignName,
			"voter_id", vote.Voter,
		)
	}
	return nil
}

func (t *repositoryTx) RecordTransfer(ctx context.Context, transfer entities.Transfer) error {
	if transfer.Amount <= 0 {
		return domainerrors.ErrInvalidInput
	}
	row := transferModel{
		TransferID:   transfer.TransferID,
		CampaignName: transfer.CampaignName,
		FromIdentity: transfer.From,
		ToIdentity:   transfer.To,
		Amount:       transfer.Amount,
		Kind:         string(transfer.Kind),
		CreatedAt:    transfer.CreatedAt.UTC(),
	}
	if err := t.db.WithContext(ctx).Create(&row).Error; err != nil {
		return t.repo.logError("registry_repo_record_transfer_failed", err,
			"campaign_name", transfer.CampaignName,
			"transfer_id", transfer.TransferID,
		)
	}
	return nil
}

func (t *repositoryTx) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return t.repo.logError("registry_repo_append_outbox_marshal_failed", err,
			"event_id", strings.TrimSpace(envelope.EventID),
			"event_type", strings.TrimSpace(envelope.EventType),
		)
	}
	row := outboxModel{
		OutboxID:     strings.TrimSpace(envelope.EventID),
		EventType:    strings.TrimSpace(envelope.EventType),
		PartitionKey: strings.TrimSpace(envelope.PartitionKey),
		Payload:      payload,
		Status:       outboxStatusPending,
		CreatedAt:    envelope.OccurredAt.UTC(),
	}
	if row.OutboxID == "" {
		row.OutboxID = uuid.NewString()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if err := t.db.WithContext(ctx).Create(&row).Error; err != nil {
		return t.repo.logError("registry_repo_append_outbox_insert_failed", err,
			"outbox_id", row.OutboxID,
		)
	}
	return nil
}

func loadCampaign(db *gorm.DB, name string, lock bool) (entities.Campaign, error) {
	query := db
	if lock {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var row campaignModel
	if err := query.Where("name = ?", name).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Campaign{}, domainerrors.ErrCampaignNotFound
		}
		return entities.Campaign{}, err
	}
	candidates, err := loadCandidates(db, name)
	if err != nil {
		return entities.Campaign{}, err
	}
	return row.toEntity(candidates), nil
}

func loadCandidates(db *gorm.DB, campaignName string) ([]candidateModel, error) {
	var rows []candidateModel
	err := db.Where("campaign_name = ?", campaignName).
		Order("position ASC").
		Find(&rows).Error
	return rows, err
}

type campaignModel struct {
	Seq        int64      `gorm:"column:seq;primaryKey;autoIncrement"`
	Name       string     `gorm:"column:name;uniqueIndex:idx_registry_campaigns_name;not null"`
	Deadline   time.Time  `gorm:"column:deadline;not null"`
	Active     bool       `gorm:"column:active;not null"`
	Balance    int64      `gorm:"column:balance;not null"`
	VoterCount int        `gorm:"column:voter_count;not null"`
	CreatedAt  time.Time  `gorm:"column:created_at"`
	UpdatedAt  time.Time  `gorm:"column:updated_at"`
	FinishedAt *time.Time `gorm:"column:finished_at"`
}

func (campaignModel) TableName() string {
	return "registry_campaigns"
}

func campaignModelFromEntity(campaign entities.Campaign) campaignModel {
	return campaignModel{
		Name:       strings.TrimSpace(campaign.Name),
		Deadline:   campaign.Deadline.UTC(),
		Active:     campaign.Active,
		Balance:    campaign.Balance,
		VoterCount: campaign.VoterCount,
		CreatedAt:  campaign.CreatedAt.UTC(),
		UpdatedAt:  campaign.UpdatedAt.UTC(),
		FinishedAt: normalizeOptionalTime(campaign.FinishedAt),
	}
}

func (m campaignModel) toEntity(candidates []candidateModel) entities.Campaign {
	tallies := make([]entities.CandidateTally, 0, len(candidates))
	for _, candidate := range candidates {
		tallies = append(tallies, entities.CandidateTally{Identity: candidate.Identity, Votes: candidate.Votes})
	}
	return entities.Campaign{
		Name:       m.Name,
		Candidates: tallies,
		Deadline:   m.Deadline.UTC(),
		Active:     m.Active,
		Balance:    m.Balance,
		VoterCount: m.VoterCount,
		CreatedAt:  m.CreatedAt.UTC(),
		UpdatedAt:  m.UpdatedAt.UTC(),
		FinishedAt: normalizeOptionalTime(m.FinishedAt),
	}
}

type candidateModel struct {
	CampaignName string `gorm:"column:campaign_name;primaryKey"`
	Identity     string `gorm:"column:identity;primaryKey"`
	Position     int    `gorm:"column:position;not null"`
	Votes        int64  `gorm:"column:votes;not null"`
}

func (candidateModel) TableName() string {
	return "registry_candidates"
}

type voteModel struct {
	VoteID         string    `gorm:"column:vote_id;primaryKey"`
	CampaignName   string    `gorm:"column:campaign_name;uniqueIndex:idx_registry_votes_campaign_voter;not null"`
	Voter          string    `gorm:"column:voter;uniqueIndex:idx_registry_votes_campaign_voter;not null"`
	Candidate      string    `gorm:"column:candidate;not null"`
	AmountPaid     int64     `gorm:"column:amount_paid;not null"`
	AmountCredited int64     `gorm:"column:amount_credited;not null"`
	CreatedAt      time.Time `gorm:"column:created_at"`
}

func (voteModel) TableName() string {
	return "registry_votes"
}

type transferModel struct {
	Seq          int64     `gorm:"column:seq;primaryKey;autoIncrement"`
	TransferID   string    `gorm:"column:transfer_id;uniqueIndex:idx_registry_transfers_transfer_id;not null"`
	CampaignName string    `gorm:"column:campaign_name;index:idx_registry_transfers_campaign"`
	FromIdentity string    `gorm:"column:from_identity;not null"`
	ToIdentity   string    `gorm:"column:to_identity;not null"`
	Amount       int64     `gorm:"column:amount;not null"`
	Kind         string    `gorm:"column:kind;not null"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (transferModel) TableName() string {
	return "registry_transfers"
}

func (m transferModel) toEntity() entities.Transfer {
	return entities.Transfer{
		TransferID:   m.TransferID,
		CampaignName: m.CampaignName,
		From:         m.FromIdentity,
		To:           m.ToIdentity,
		Amount:       m.Amount,
		Kind:         entities.TransferKind(m.Kind),
		CreatedAt:    m.CreatedAt.UTC(),
	}
}

type outboxModel struct {
	Seq          int64      `gorm:"column:seq;primaryKey;autoIncrement"`
	OutboxID     string     `gorm:"column:outbox_id;uniqueIndex:idx_registry_outbox_outbox_id;not null"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status;index:idx_registry_outbox_status"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "registry_outbox"
}

func normalizeOptionalTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	normalized := value.UTC()
	return &normalized
}

func optionalTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return value.UTC()
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var (
	_ ports.Repository       = (*Repository)(nil)
	_ ports.OutboxRepository = (*Repository)(nil)
	_ ports.Tx               = (*repositoryTx)(nil)
)
