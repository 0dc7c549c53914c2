package aggregates

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/yungbote/atlas-backend/internal/data/cache"
	"github.com/yungbote/atlas-backend/internal/data/repos"
	domainagg "github.com/yungbote/atlas-backend/internal/domain/aggregates"
	"github.com/yungbote/atlas-backend/internal/platform/ctxutil"
	"github.com/yungbote/atlas-backend/internal/platform/dbctx"
)

const defaultResolveAttempts = 3

// Resolution outcomes reported to a ResolutionObserver.
const (
	ResolutionCacheHit = "cache_hit"
	ResolutionFound    = "found"
	ResolutionCreated  = "created"
	ResolutionShared   = "shared"
	ResolutionError    = "error"
)

// ResolutionObserver records how continent names were resolved.
type ResolutionObserver interface {
	IncContinentResolution(outcome string)
}

type ContinentResolverDeps struct {
	Base BaseDeps

	Continents repos.ContinentRepo
	// Cache is optional. Entries are verified against the database before use.
	Cache       cache.ContinentCache
	Observer    ResolutionObserver
	MaxAttempts int
}

type continentResolver struct {
	deps  ContinentResolverDeps
	group singleflight.Group
}

func NewContinentResolver(deps ContinentResolverDeps) domainagg.ContinentResolver {
	deps.Base = deps.Base.withDefaults()
	if deps.MaxAttempts <= 0 {
		deps.MaxAttempts = defaultResolveAttempts
	}
	return &continentResolver{deps: deps}
}

func (r *continentResolver) Contract() domainagg.Contract {
	return domainagg.ContinentResolverContract
}

func (r *continentResolver) observe(outcome string) {
	if r.deps.Observer != nil {
		r.deps.Observer.IncContinentResolution(outcome)
	}
}

func (r *continentResolver) Resolve(ctx context.Context, name string) (domainagg.ResolveResult, error) {
	const op = "Geo.Continent.Resolve"
	var out domainagg.ResolveResult
	if r.deps.Continents == nil {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "continent resolver repo not configured", nil)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing continent name", nil)
	}
	ctx = ctxutil.Default(ctx)

	if id, ok := r.cached(ctx, name); ok {
		r.observe(ResolutionCacheHit)
		return domainagg.ResolveResult{ContinentID: id}, nil
	}

	// Concurrent callers for one name share a single database round trip. The
	// shared lookup ignores any one caller's cancellation; executeWrite still
	// bounds it with the tx timeout. The closure only runs for the leader, so
	// followers never report Created.
	leader := false
	shared := context.WithoutCancel(ctx)
	ch := r.group.DoChan(name, func() (interface{}, error) {
		leader = true
		return r.resolve(shared, op, name)
	})
	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		r.observe(ResolutionError)
		return out, MapError(op, ctx.Err())
	}
	if res.Err != nil {
		r.observe(ResolutionError)
		return out, res.Err
	}
	out = res.Val.(domainagg.ResolveResult)
	switch {
	case !leader:
		out.Created = false
		r.observe(ResolutionShared)
	case out.Created:
		r.observe(ResolutionCreated)
	default:
		r.observe(ResolutionFound)
	}
	return out, nil
}

func (r *continentResolver) resolve(ctx context.Context, op, name string) (domainagg.ResolveResult, error) {
	var lastErr error
	for attempt := 1; attempt <= r.deps.MaxAttempts; attempt++ {
		var out domainagg.ResolveResult
		err := executeWrite(ctx, r.deps.Base, op, func(dbc dbctx.Context) error {
			row, err := r.deps.Continents.GetByName(dbc, name)
			if err != nil {
				return err
			}
			if row != nil {
				out = domainagg.ResolveResult{ContinentID: row.ID}
				return nil
			}
			inserted, err := r.deps.Continents.InsertIfAbsent(dbc, name, domainagg.PlaceholderDescription(name))
			if err != nil {
				return err
			}
			row, err = r.deps.Continents.GetByName(dbc, name)
			if err != nil {
				return err
			}
			if row == nil {
				return RetryableError(fmt.Sprintf("continent %q vanished during resolution", name))
			}
			out = domainagg.ResolveResult{ContinentID: row.ID, Created: inserted}
			return nil
		})
		if err == nil {
			if out.Created {
				r.deps.Base.Log.Info("continent created by resolution", append(ctxutil.LogFields(ctx), "name", name, "continent_id", out.ContinentID)...)
			}
			r.remember(ctx, name, out.ContinentID)
			return out, nil
		}
		if !domainagg.IsCode(err, domainagg.CodeRetryable) || ctx.Err() != nil {
			return domainagg.ResolveResult{}, err
		}
		lastErr = err
		r.deps.Base.Log.Warn("continent resolution retry", "name", name, "attempt", attempt, "error", err)
	}
	return domainagg.ResolveResult{}, domainagg.NewError(
		domainagg.CodeConflict,
		op,
		fmt.Sprintf("could not resolve continent %q after %d attempts", name, r.deps.MaxAttempts),
		lastErr,
	)
}

func (r *continentResolver) Forget(ctx context.Context, name string) {
	name = strings.TrimSpace(name)
	if r.deps.Cache == nil || name == "" {
		return
	}
	if err := r.deps.Cache.Delete(ctxutil.Default(ctx), name); err != nil {
		r.deps.Base.Log.Warn("continent cache delete failed", "name", name, "error", err)
	}
}

// cached returns a cached id only if the row still exists under the same name.
func (r *continentResolver) cached(ctx context.Context, name string) (uint, bool) {
	if r.deps.Cache == nil {
		return 0, false
	}
	id, ok, err := r.deps.Cache.Get(ctx, name)
	if err != nil {
		r.deps.Base.Log.Warn("continent cache get failed", "name", name, "error", err)
		return 0, false
	}
	if !ok {
		return 0, false
	}
	row, err := r.deps.Continents.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		r.deps.Base.Log.Warn("continent cache verify failed", "name", name, "continent_id", id, "error", err)
		return 0, false
	}
	if row == nil || row.Name != name {
		r.Forget(ctx, name)
		return 0, false
	}
	return id, true
}

func (r *continentResolver) remember(ctx context.Context, name string, id uint) {
	if r.deps.Cache == nil || id == 0 {
		return
	}
	if err := r.deps.Cache.Set(ctx, name, id); err != nil {
		r.deps.Base.Log.Warn("continent cache set failed", "name", name, "error", err)
	}
}
