package aggregates_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/yungbote/atlas-backend/internal/data/aggregates"
	"github.com/yungbote/atlas-backend/internal/data/cache"
	"github.com/yungbote/atlas-backend/internal/data/repos"
	"github.com/yungbote/atlas-backend/internal/data/repos/testutil"
	domainagg "github.com/yungbote/atlas-backend/internal/domain/aggregates"
	"github.com/yungbote/atlas-backend/internal/domain/geo"
	"github.com/yungbote/atlas-backend/internal/platform/dbctx"
)

type outcomeRecorder struct {
	mu       sync.Mutex
	outcomes map[string]int
}

func (r *outcomeRecorder) IncContinentResolution(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.outcomes == nil {
		r.outcomes = map[string]int{}
	}
	r.outcomes[outcome]++
}

func (r *outcomeRecorder) count(outcome string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.outcomes[outcome]
}

func TestContinentResolverFindOrCreate(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	log := testutil.Logger(t)
	rec := &outcomeRecorder{}
	resolver := aggregates.NewContinentResolver(aggregates.ContinentResolverDeps{
		Base:       aggregates.BaseDeps{DB: db, Log: log},
		Continents: repos.NewContinentRepo(db, log),
		Observer:   rec,
	})

	first, err := resolver.Resolve(ctx, "  Oceania ")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !first.Created || first.ContinentID == 0 {
		t.Fatalf("first resolve: %+v", first)
	}
	second, err := resolver.Resolve(ctx, "Oceania")
	if err != nil {
		t.Fatalf("Resolve again: %v", err)
	}
	if second.Created || second.ContinentID != first.ContinentID {
		t.Fatalf("second resolve: want id=%d created=false got=%+v", first.ContinentID, second)
	}

	var row geo.Continent
	if err := db.First(&row, first.ContinentID).Error; err != nil {
		t.Fatalf("load continent: %v", err)
	}
	if row.Description != domainagg.PlaceholderDescription("Oceania") {
		t.Fatalf("description: got=%q", row.Description)
	}
	if rec.count(aggregates.ResolutionCreated) != 1 || rec.count(aggregates.ResolutionFound) != 1 {
		t.Fatalf("outcomes: %+v", rec.outcomes)
	}

	if _, err := resolver.Resolve(ctx, "   "); !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("blank name: want validation got=%v", err)
	}
}

func TestContinentResolverConcurrentCallersShareOneRow(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	log := testutil.Logger(t)

	// Two resolvers stand in for two server processes; each has its own in-flight group.
	newResolver := func() domainagg.ContinentResolver {
		return aggregates.NewContinentResolver(aggregates.ContinentResolverDeps{
			Base:       aggregates.BaseDeps{DB: db, Log: log},
			Continents: repos.NewContinentRepo(db, log),
		})
	}
	resolvers := []domainagg.ContinentResolver{newResolver(), newResolver()}

	const callers = 16
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		ids     = map[uint]int{}
		created int
		errs    []error
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(r domainagg.ContinentResolver) {
			defer wg.Done()
			res, err := r.Resolve(ctx, "Antarctica")
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			ids[res.ContinentID]++
			if res.Created {
				created++
			}
		}(resolvers[i%len(resolvers)])
	}
	wg.Wait()

	if len(errs) != 0 {
		t.Fatalf("resolve errors: %v", errs)
	}
	if len(ids) != 1 {
		t.Fatalf("distinct ids: want=1 got=%v", ids)
	}
	if created != 1 {
		t.Fatalf("created flags: want=1 got=%d", created)
	}
	var count int64
	if err := db.Model(&geo.Continent{}).Where("name = ?", "Antarctica").Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("rows: want=1 got=%d", count)
	}
}

func TestContinentResolverDropsStaleCacheEntries(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	log := testutil.Logger(t)
	names := cache.NewMemoryContinentCache(time.Minute)
	continents := repos.NewContinentRepo(db, log)
	rec := &outcomeRecorder{}
	resolver := aggregates.NewContinentResolver(aggregates.ContinentResolverDeps{
		Base:       aggregates.BaseDeps{DB: db, Log: log},
		Continents: continents,
		Cache:      names,
		Observer:   rec,
	})

	europe := testutil.SeedContinent(t, ctx, db, "Europe")
	if err := names.Set(ctx, "Europe", europe.ID+100); err != nil {
		t.Fatalf("Set: %v", err)
	}
	res, err := resolver.Resolve(ctx, "Europe")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.ContinentID != europe.ID {
		t.Fatalf("stale cache should be ignored: want=%d got=%d", europe.ID, res.ContinentID)
	}
	if id, ok, _ := names.Get(ctx, "Europe"); !ok || id != europe.ID {
		t.Fatalf("cache refreshed: want=%d got=%d ok=%v", europe.ID, id, ok)
	}

	if _, err := resolver.Resolve(ctx, "Europe"); err != nil {
		t.Fatalf("Resolve cached: %v", err)
	}
	if rec.count(aggregates.ResolutionCacheHit) != 1 {
		t.Fatalf("cache hits: want=1 got=%d", rec.count(aggregates.ResolutionCacheHit))
	}

	if _, err := continents.Delete(dbctx.Context{Ctx: ctx}, europe.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	again, err := resolver.Resolve(ctx, "Europe")
	if err != nil {
		t.Fatalf("Resolve after delete: %v", err)
	}
	if !again.Created || again.ContinentID == europe.ID {
		t.Fatalf("deleted continent must be recreated, got %+v", again)
	}
}

func TestContinentResolverGivesUpAfterRetries(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	log := testutil.Logger(t)
	resolver := aggregates.NewContinentResolver(aggregates.ContinentResolverDeps{
		Base:        aggregates.BaseDeps{DB: db, Log: log},
		Continents:  vanishingContinents{ContinentRepo: repos.NewContinentRepo(db, log)},
		MaxAttempts: 2,
	})

	_, err := resolver.Resolve(ctx, "Lemuria")
	if !domainagg.IsCode(err, domainagg.CodeConflict) {
		t.Fatalf("want conflict after exhausted retries, got=%v", err)
	}
}

// vanishingContinents never finds a row by name, as if every insert were rolled back by a peer.
type vanishingContinents struct {
	repos.ContinentRepo
}

func (vanishingContinents) GetByName(dbctx.Context, string) (*geo.Continent, error) {
	return nil, nil
}

// gatedRunner holds the first transaction until release is closed.
type gatedRunner struct {
	inner   aggregates.TxRunner
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (g *gatedRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	g.once.Do(func() {
		close(g.entered)
		<-g.release
	})
	return g.inner.InTx(ctx, fn)
}

func TestContinentResolverSurvivesCancelledPeer(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	gate := &gatedRunner{
		inner:   aggregates.NewGormTxRunner(db),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	resolver := aggregates.NewContinentResolver(aggregates.ContinentResolverDeps{
		Base:       aggregates.BaseDeps{DB: db, Log: log, Runner: gate},
		Continents: repos.NewContinentRepo(db, log),
	})

	type outcome struct {
		res domainagg.ResolveResult
		err error
	}
	firstCtx, cancelFirst := context.WithCancel(context.Background())
	defer cancelFirst()
	first := make(chan outcome, 1)
	go func() {
		res, err := resolver.Resolve(firstCtx, "Atlantis")
		first <- outcome{res, err}
	}()
	<-gate.entered

	second := make(chan outcome, 1)
	go func() {
		res, err := resolver.Resolve(context.Background(), "Atlantis")
		second <- outcome{res, err}
	}()
	time.Sleep(20 * time.Millisecond)
	cancelFirst()

	select {
	case got := <-first:
		if !domainagg.IsCode(got.err, domainagg.CodeRetryable) {
			t.Fatalf("cancelled caller: want retryable got=%v", got.err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("cancelled caller did not return while the lookup was held")
	}
	close(gate.release)

	select {
	case got := <-second:
		if got.err != nil {
			t.Fatalf("live caller: %v", got.err)
		}
		if got.res.ContinentID == 0 {
			t.Fatalf("live caller: want continent id got=%+v", got.res)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("live caller did not return")
	}

	var count int64
	if err := db.Model(&geo.Continent{}).Where("name = ?", "Atlantis").Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("rows: want=1 got=%d", count)
	}
}
