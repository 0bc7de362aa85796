package metricsadapter

import (
	"ballotpool/contexts/voting-market/campaign-registry/ports"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ballotpool_registry"

// Prometheus records registry business counters. Amounts are exported in
// minor units.
type Prometheus struct {
	campaignsCreated    prometheus.Counter
	votesAccepted       prometheus.Counter
	creditedTotal       prometheus.Counter
	refundedTotal       prometheus.Counter
	rejections          *prometheus.CounterVec
	campaignsFinished   prometheus.Counter
	winnersTotal        prometheus.Counter
	prizesPaidTotal     prometheus.Counter
	commissionWithdrawn prometheus.Counter
}

// NewPrometheus registers the registry collectors with registry. Passing the
// same registry twice fails with a duplicate registration panic, so callers
// build one per process.
func NewPrometheus(registry prometheus.Registerer) *Prometheus {
	factory := promauto.With(registry)
	return &Prometheus{
		campaignsCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "campaigns_created_total",
			Help:      "Total number of campaigns created",
		}),
		votesAccepted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "votes_accepted_total",
			Help:      "Total number of accepted votes",
		}),
		creditedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vote_credits_minor_total",
			Help:      "Total amount credited to campaign balances by votes",
		}),
		refundedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vote_refunds_minor_total",
			Help:      "Total amount refunded to voters who paid above the vote price",
		}),
		rejections: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_rejected_total",
			Help:      "Total number of rejected registry operations",
		}, []string{"operation", "reason"}),
		campaignsFinished: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "campaigns_finished_total",
			Help:      "Total number of finished campaigns",
		}),
		winnersTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "winners_total",
			Help:      "Total number of winners across finished campaigns",
		}),
		prizesPaidTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prizes_paid_minor_total",
			Help:      "Total amount paid out as prizes",
		}),
		commissionWithdrawn: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commission_withdrawn_minor_total",
			Help:      "Total amount swept to the admin as commission",
		}),
	}
}

func (p *Prometheus) CampaignCreated() {
	p.campaignsCreated.Inc()
}

func (p *Prometheus) VoteAccepted(credited int64, refunded int64) {
	p.votesAccepted.Inc()
	p.creditedTotal.Add(float64(credited))
	if refunded > 0 {
		p.refundedTotal.Add(float64(refunded))
	}
}

func (p *Prometheus) OperationRejected(operation string, reason string) {
	p.rejections.WithLabelValues(operation, reason).Inc()
}

func (p *Prometheus) CampaignFinished(winners int, paidOut int64) {
	p.campaignsFinished.Inc()
	p.winnersTotal.Add(float64(winners))
	p.prizesPaidTotal.Add(float64(paidOut))
}

func (p *Prometheus) CommissionWithdrawn(amount int64) {
	if amount > 0 {
		p.commissionWithdrawn.Add(float64(amount))
	}
}

var _ ports.Metrics = (*Prometheus)(nil)
