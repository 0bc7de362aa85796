package campaignregistry

import (
	"log/slog"

	httpadapter "ballotpool/contexts/voting-market/campaign-registry/adapters/http"
	"ballotpool/contexts/voting-market/campaign-registry/adapters/memory"
	"ballotpool/contexts/voting-market/campaign-registry/application/commands"
	"ballotpool/contexts/voting-market/campaign-registry/application/queries"
	"ballotpool/contexts/voting-market/campaign-registry/application/workers"
	"ballotpool/contexts/voting-market/campaign-registry/domain/entities"
	"ballotpool/contexts/voting-market/campaign-registry/ports"
)

type Module struct {
	Handler     httpadapter.Handler
	Registry    commands.RegistryUseCase
	Queries     queries.RegistryQueries
	OutboxRelay workers.OutboxRelay
	Scheduler   workers.SettlementScheduler
	Auditor     workers.EventAuditor
	Store       *memory.Store
}

type Dependencies struct {
	Repository    ports.Repository
	Outbox        ports.OutboxRepository
	Publisher     ports.EventPublisher
	Subscriber    ports.EventSubscriber
	Clock         ports.Clock
	IDGen         ports.IDGenerator
	Metrics       ports.Metrics
	Admin         string
	VotePrice     int64
	CommissionBps int64
	BatchSize     int
	Logger        *slog.Logger
}

func NewModule(deps Dependencies) Module {
	registry := commands.RegistryUseCase{
		Repo:          deps.Repository,
		Clock:         deps.Clock,
		IDGen:         deps.IDGen,
		Metrics:       deps.Metrics,
		Admin:         deps.Admin,
		VotePrice:     deps.VotePrice,
		CommissionBps: deps.CommissionBps,
		Logger:        deps.Logger,
	}
	registryQueries := queries.RegistryQueries{
		Repo: deps.Repository,
	}
	return Module{
		Handler: httpadapter.Handler{
			Registry: registry,
			Queries:  registryQueries,
			Logger:   deps.Logger,
		},
		Registry: registry,
		Queries:  registryQueries,
		OutboxRelay: workers.OutboxRelay{
			Outbox:    deps.Outbox,
			Publisher: deps.Publisher,
			Clock:     deps.Clock,
			BatchSize: deps.BatchSize,
			Logger:    deps.Logger,
		},
		Scheduler: workers.SettlementScheduler{
			Repo:      deps.Repository,
			Registry:  registry,
			Clock:     deps.Clock,
			BatchSize: deps.BatchSize,
			Logger:    deps.Logger,
		},
		Auditor: workers.EventAuditor{
			Subscriber: deps.Subscriber,
			Logger:     deps.Logger,
		},
	}
}

// NewInMemoryModule wires the module on a fresh in-memory store seeded with
// the given campaigns. The store backs the repository, outbox and ID ports;
// it is also the clock unless deps supplies one. Zero pricing fields fall
// back to the default vote price and commission rate.
func NewInMemoryModule(seed []entities.Campaign, deps Dependencies) Module {
	store := memory.NewStore(seed)
	deps.Repository = store
	deps.Outbox = store
	deps.IDGen = store
	if deps.Clock == nil {
		deps.Clock = store
	}
	if deps.VotePrice == 0 {
		deps.VotePrice = entities.DefaultVotePrice
	}
	if deps.CommissionBps == 0 {
		deps.CommissionBps = entities.DefaultCommissionBps
	}
	if deps.BatchSize == 0 {
		deps.BatchSize = 100
	}
	module := NewModule(deps)
	module.Store = store
	return module
}
