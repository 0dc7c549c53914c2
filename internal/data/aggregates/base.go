package aggregates

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	domainagg "github.com/yungbote/atlas-backend/internal/domain/aggregates"
	"github.com/yungbote/atlas-backend/internal/platform/ctxutil"
	"github.com/yungbote/atlas-backend/internal/platform/dbctx"
	"github.com/yungbote/atlas-backend/internal/platform/logger"
)

const defaultTxTimeout = 15 * time.Second

type BaseDeps struct {
	DB     *gorm.DB
	Log    *logger.Logger
	Runner TxRunner
	Hooks  Hooks
	// TxTimeout bounds each write transaction. Zero uses the default; negative disables it.
	TxTimeout time.Duration
}

func (d BaseDeps) withDefaults() BaseDeps {
	if d.Runner == nil {
		d.Runner = NewGormTxRunner(d.DB)
	}
	if d.Hooks == nil {
		d.Hooks = noopHooks{}
	}
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	if d.TxTimeout == 0 {
		d.TxTimeout = defaultTxTimeout
	}
	return d
}

func executeWrite(ctx context.Context, deps BaseDeps, op string, fn func(dbc dbctx.Context) error) error {
	start := time.Now()
	deps = deps.withDefaults()
	op = strings.TrimSpace(op)
	if op == "" {
		op = "aggregate.write"
	}
	ctx = ctxutil.Default(ctx)
	if deps.TxTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, deps.TxTimeout)
		defer cancel()
	}
	err := deps.Runner.InTx(ctx, fn)
	mapped := MapError(op, err)

	status := "success"
	if mapped != nil {
		status = aggregateErrorStatus(mapped)
		if domainagg.IsCode(mapped, domainagg.CodeConflict) {
			deps.Hooks.IncConflict(op)
		}
		if domainagg.IsCode(mapped, domainagg.CodeRetryable) {
			deps.Hooks.IncRetry(op)
		}
		if domainagg.IsCode(mapped, domainagg.CodeInternal) {
			deps.Log.Error("aggregate write failed", append(ctxutil.LogFields(ctx), "op", op, "error", mapped)...)
		}
	}
	deps.Hooks.ObserveWrite(op, status, time.Since(start))
	return mapped
}

func aggregateErrorStatus(err error) string {
	if err == nil {
		return "success"
	}
	code := strings.TrimSpace(string(domainagg.CodeOf(err)))
	if code == "" {
		code = strings.TrimSpace(string(domainagg.CodeOf(MapError("aggregate.status", err))))
	}
	if code == "" {
		return "failure"
	}
	return code
}
