package services

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	domainagg "github.com/yungbote/atlas-backend/internal/domain/aggregates"
	"github.com/yungbote/atlas-backend/internal/platform/logger"
)

// CountryRecord is one country as delivered by an external source. Region is a continent name.
type CountryRecord struct {
	Name             string   `json:"nome"`
	Region           string   `json:"regiao"`
	Population       int64    `json:"populacao"`
	OfficialLanguage string   `json:"idioma_oficial"`
	Currency         string   `json:"moeda"`
	FlagURL          *string  `json:"url_bandeira,omitempty"`
	GDPPerCapita     *float64 `json:"pib_per_capita,omitempty"`
	Inflation        *float64 `json:"inflacao,omitempty"`
}

// CountrySource yields country records from an external provider.
type CountrySource interface {
	FetchCountries(ctx context.Context) ([]CountryRecord, error)
}

const (
	ImportCreated = "created"
	ImportFailed  = "failed"
)

type ImportResult struct {
	Index       int    `json:"index"`
	Name        string `json:"nome"`
	Status      string `json:"status"`
	CountryID   uint   `json:"id,omitempty"`
	ContinentID uint   `json:"id_continente,omitempty"`
	Code        string `json:"code,omitempty"`
	Error       string `json:"error,omitempty"`
}

type ImportReport struct {
	Created int            `json:"created"`
	Failed  int            `json:"failed"`
	Results []ImportResult `json:"results"`
}

// ImportObserver counts imported records by result.
type ImportObserver interface {
	IncImportRecord(result string)
}

type CountryImportService interface {
	Import(ctx context.Context, records []CountryRecord) (ImportReport, error)
	ImportFrom(ctx context.Context, src CountrySource) (ImportReport, error)
}

type countryImportService struct {
	log         *logger.Logger
	countries   domainagg.CountryAggregate
	resolver    domainagg.ContinentResolver
	observer    ImportObserver
	concurrency int
}

func NewCountryImportService(
	log *logger.Logger,
	countries domainagg.CountryAggregate,
	resolver domainagg.ContinentResolver,
	observer ImportObserver,
	concurrency int,
) CountryImportService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &countryImportService{
		log:         log.With("service", "CountryImportService"),
		countries:   countries,
		resolver:    resolver,
		observer:    observer,
		concurrency: concurrency,
	}
}

func (s *countryImportService) ImportFrom(ctx context.Context, src CountrySource) (ImportReport, error) {
	if src == nil {
		return ImportReport{}, domainagg.NewError(domainagg.CodeInternal, "CountryImportService.ImportFrom", "no country source configured", nil)
	}
	records, err := src.FetchCountries(ctx)
	if err != nil {
		return ImportReport{}, domainagg.Wrap(domainagg.CodeRetryable, "CountryImportService.ImportFrom", fmt.Errorf("fetch countries: %w", err))
	}
	return s.Import(ctx, records)
}

// Import creates one country per record. A failing record does not stop the others; only a
// cancelled ctx aborts the run.
func (s *countryImportService) Import(ctx context.Context, records []CountryRecord) (ImportReport, error) {
	results := make([]ImportResult, len(records))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i := range records {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = s.importOne(gctx, i, records[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return ImportReport{}, domainagg.Wrap(domainagg.CodeRetryable, "CountryImportService.Import", err)
	}

	report := ImportReport{Results: results}
	for _, r := range results {
		if r.Status == ImportCreated {
			report.Created++
		} else {
			report.Failed++
		}
		if s.observer != nil {
			s.observer.IncImportRecord(r.Status)
		}
	}
	s.log.Info("country import finished", "records", len(records), "created", report.Created, "failed", report.Failed)
	return report, nil
}

func (s *countryImportService) importOne(ctx context.Context, index int, rec CountryRecord) ImportResult {
	out := ImportResult{Index: index, Name: strings.TrimSpace(rec.Name), Status: ImportFailed}
	fail := func(err error) ImportResult {
		out.Code = string(domainagg.CodeOf(err))
		out.Error = domainagg.MessageOf(err)
		s.log.Warn("country import record failed", "index", index, "name", out.Name, "error", err)
		return out
	}

	if out.Name == "" {
		return fail(domainagg.NewError(domainagg.CodeValidation, "CountryImportService.Import", "missing country name", nil))
	}
	resolved, err := s.resolver.Resolve(ctx, rec.Region)
	if err != nil {
		return fail(err)
	}
	out.ContinentID = resolved.ContinentID

	row, err := s.countries.CreateCountry(ctx, domainagg.CountryInput{
		Name:             out.Name,
		Population:       rec.Population,
		OfficialLanguage: rec.OfficialLanguage,
		Currency:         rec.Currency,
		ContinentID:      resolved.ContinentID,
		FlagURL:          rec.FlagURL,
		GDPPerCapita:     rec.GDPPerCapita,
		Inflation:        rec.Inflation,
	})
	if err != nil {
		return fail(err)
	}
	out.Status = ImportCreated
	out.CountryID = row.ID
	return out
}
