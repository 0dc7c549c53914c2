package aggregates

import (
	"strings"
	"time"

	"github.com/yungbote/atlas-backend/internal/observability"
)

// Hooks receives one signal per geo write. Ops are named "Geo.<Entity>.<Action>".
type Hooks interface {
	ObserveWrite(op, status string, dur time.Duration)
	IncConflict(op string)
	IncRetry(op string)
	// ObserveRollup reports how many country populations a committed city write refreshed.
	ObserveRollup(op string, countries int)
}

type noopHooks struct{}

func (noopHooks) ObserveWrite(string, string, time.Duration) {}
func (noopHooks) IncConflict(string)                         {}
func (noopHooks) IncRetry(string)                            {}
func (noopHooks) ObserveRollup(string, int)                  {}

// metricsHooks splits op names into entity and action labels.
type metricsHooks struct {
	metrics *observability.Metrics
}

func NewObservabilityHooks(metrics *observability.Metrics) Hooks {
	if metrics == nil {
		return noopHooks{}
	}
	return metricsHooks{metrics: metrics}
}

func (h metricsHooks) ObserveWrite(op, status string, dur time.Duration) {
	entity, action := SplitOp(op)
	h.metrics.ObserveGeoWrite(entity, action, strings.TrimSpace(status), dur)
}

func (h metricsHooks) IncConflict(op string) {
	entity, action := SplitOp(op)
	h.metrics.IncGeoWriteConflict(entity, action)
}

func (h metricsHooks) IncRetry(op string) {
	entity, action := SplitOp(op)
	h.metrics.IncGeoWriteRetry(entity, action)
}

func (h metricsHooks) ObserveRollup(op string, countries int) {
	_, action := SplitOp(op)
	h.metrics.ObserveRollupCountries(action, countries)
}

// SplitOp turns "Geo.City.CreateCity" into ("city", "CreateCity").
// Names outside the Geo namespace land under entity "other".
func SplitOp(op string) (entity, action string) {
	op = strings.TrimSpace(op)
	rest, ok := strings.CutPrefix(op, "Geo.")
	if !ok {
		return "other", op
	}
	entity, action, ok = strings.Cut(rest, ".")
	if !ok || entity == "" {
		return "other", rest
	}
	return strings.ToLower(entity), action
}
