package application

import "log/slog"

// ResolveLogger guarantees a non-nil logger for application/worker code paths.
func ResolveLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// NopMetrics discards every measurement. Modules built without a metrics
// adapter fall back to it.
type NopMetrics struct{}

func (NopMetrics) CampaignCreated() {}
func (NopMetrics) VoteAccepted(int64, int64) {}
func (NopMetrics) OperationRejected(string, string) {}
func (NopMetrics) CampaignFinished(int, int64) {}
func (NopMetrics) CommissionWithdrawn(int64) {}
