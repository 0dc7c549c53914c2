package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/yungbote/atlas-backend/internal/app"
	"github.com/yungbote/atlas-backend/internal/platform/config"
)

type idList []uint

func (l *idList) String() string {
	parts := make([]string, 0, len(*l))
	for _, id := range *l {
		parts = append(parts, strconv.FormatUint(uint64(id), 10))
	}
	return strings.Join(parts, ",")
}

func (l *idList) Set(v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	id, err := strconv.ParseUint(v, 10, 64)
	if err != nil || id == 0 {
		return fmt.Errorf("invalid country id %q", v)
	}
	*l = append(*l, uint(id))
	return nil
}

func main() {
	var (
		countries  idList
		configPath string
		batchSize  int
	)
	flag.Var(&countries, "country", "country id to recompute (repeatable); all countries when omitted")
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.IntVar(&batchSize, "batch", 500, "countries per transaction when recomputing all")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("load config: %v\n", err)
		os.Exit(1)
	}
	cfg.Resolution.CacheEnabled = false
	cfg.Observability.MetricsEnabled = false

	ctx := context.Background()
	application, err := app.New(ctx, cfg, app.Options{})
	if err != nil {
		fmt.Printf("init app: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	cities := application.Aggregates.City
	if len(countries) > 0 {
		for _, id := range countries {
			res, err := cities.RecomputeCountry(ctx, id)
			if err != nil {
				application.Log.Error("recompute failed", "country_id", id, "error", err)
				continue
			}
			fmt.Printf("country %d population=%d\n", res.CountryID, res.Population)
		}
		return
	}

	res, err := cities.RecomputeAll(ctx, batchSize)
	if err != nil {
		application.Log.Error("backfill failed", "error", err)
		application.Close()
		os.Exit(1)
	}
	fmt.Printf("scanned=%d changed=%d\n", res.Scanned, res.Changed)
}
