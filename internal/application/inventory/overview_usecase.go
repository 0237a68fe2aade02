package inventory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	engine "github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// OverviewABCPeriod período de la clasificación ABC del resumen (últimos 90 días).
const OverviewABCPeriod = 90 * day

// OverviewReport resumen de inventario de una empresa: todos los reportes calculados
// sobre la misma instantánea del ledger.
type OverviewReport struct {
	CompanyID   string
	GeneratedAt time.Time
	Records     int
	Stock       engine.StockLevelSummary
	Valuation   engine.ValuationReport
	ABC         engine.ABCReport
	Aging       engine.AgingReport
	Attention   engine.AttentionReport
	Transfers   engine.TransferReport
	Books       map[string]entity.Book // metadatos para mostrar; pueden faltar
	Sites       map[string]entity.Site
}

// BookTitle título del libro o su ID si no está en el catálogo.
func (r *OverviewReport) BookTitle(id string) string {
	if b, ok := r.Books[id]; ok && b.Title != "" {
		return b.Title
	}
	return id
}

// SiteName nombre de la sede o su ID si no está en el catálogo.
func (r *OverviewReport) SiteName(id string) string {
	if s, ok := r.Sites[id]; ok && s.Name != "" {
		return s.Name
	}
	return id
}

// OverviewUseCase genera el resumen y lo exporta con los renderers registrados.
type OverviewUseCase struct {
	ledger    repository.LedgerRepository
	settings  ReportSettings
	renderers map[string]OverviewRenderer
	catalog   repository.CatalogRepository
	log       *logger.Logger
	clock     Clock
}

// NewOverviewUseCase construye el caso de uso. Los renderers se indexan por Format().
func NewOverviewUseCase(ledger repository.LedgerRepository, settings ReportSettings, log *logger.Logger, clock Clock, renderers ...OverviewRenderer) *OverviewUseCase {
	byFormat := make(map[string]OverviewRenderer, len(renderers))
	for _, r := range renderers {
		byFormat[r.Format()] = r
	}
	return &OverviewUseCase{
		ledger:    ledger,
		settings:  settings,
		renderers: byFormat,
		log:       logger.OrNop(log),
		clock:     clock,
	}
}

// WithCatalog habilita el enriquecimiento con títulos y nombres de sede.
func (uc *OverviewUseCase) WithCatalog(c repository.CatalogRepository) *OverviewUseCase {
	uc.catalog = c
	return uc
}

// Overview lee el ledger una sola vez y calcula los reportes en paralelo.
//
//  1. StockLevels(ahora)     → Stock, Valuation, Aging
//  2. ClassifyABC(90 días)   → ABC
//  3. FlagAttention          → Attention
//  4. Reconcile              → Transfers
func (uc *OverviewUseCase) Overview(ctx context.Context, companyID string) (*OverviewReport, error) {
	start := time.Now()
	now := uc.clock.now()

	records, err := uc.ledger.Query(ctx, companyID, repository.MovementFilter{To: &now})
	if err != nil {
		return nil, fmt.Errorf("overview: ledger: %w", err)
	}

	report := &OverviewReport{CompanyID: companyID, GeneratedAt: now, Records: len(records)}

	// ── Cálculos en paralelo sobre la instantánea (solo lectura) ───────────────
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		levels := engine.StockLevels(records, now)
		if err := gctx.Err(); err != nil {
			return err
		}
		report.Stock = engine.SummarizeLevels(levels, now)
		report.Valuation = engine.Valuate(levels, "")
		report.Aging = engine.AnalyzeAging(levels, now, uc.settings.Aging)
		return nil
	})
	g.Go(func() error {
		report.ABC = engine.ClassifyABC(records, now.Add(-OverviewABCPeriod), now, uc.settings.ABC)
		return nil
	})
	g.Go(func() error {
		report.Attention = engine.FlagAttention(records, now, uc.settings.Attention)
		return nil
	})
	g.Go(func() error {
		var legs []entity.MovementRecord
		for _, m := range records {
			if m.Type.IsTransfer() {
				legs = append(legs, m)
			}
		}
		report.Transfers = engine.NewReconciler(uc.settings.Matcher, uc.settings.TransferWindow).Reconcile(legs)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("overview: %w", err)
	}
	uc.enrich(ctx, report)

	uc.log.Info().
		Str("report", "overview").
		Str("company_id", companyID).
		Int("records", len(records)).
		Dur("elapsed", time.Since(start)).
		Msg("reporte generado")
	return report, nil
}

// enrich carga los metadatos del catálogo. Un fallo no invalida el resumen.
func (uc *OverviewUseCase) enrich(ctx context.Context, report *OverviewReport) {
	if uc.catalog == nil {
		return
	}
	var bookIDs, siteIDs []string
	seenBook, seenSite := map[string]bool{}, map[string]bool{}
	for _, l := range report.Stock.Levels {
		if !seenBook[l.BookID] {
			seenBook[l.BookID] = true
			bookIDs = append(bookIDs, l.BookID)
		}
		if !seenSite[l.SiteID] {
			seenSite[l.SiteID] = true
			siteIDs = append(siteIDs, l.SiteID)
		}
	}
	books, err := uc.catalog.BooksByIDs(ctx, report.CompanyID, bookIDs)
	if err != nil {
		uc.log.Warn().Err(err).Str("company_id", report.CompanyID).Msg("overview: catálogo de libros no disponible")
	}
	sites, err := uc.catalog.SitesByIDs(ctx, report.CompanyID, siteIDs)
	if err != nil {
		uc.log.Warn().Err(err).Str("company_id", report.CompanyID).Msg("overview: catálogo de sedes no disponible")
	}
	report.Books, report.Sites = books, sites
}

// Formats formatos de exportación disponibles además de JSON, en orden alfabético.
func (uc *OverviewUseCase) Formats() []string {
	out := make([]string, 0, len(uc.renderers))
	for f := range uc.renderers {
		out = append(out, f)
	}
	slices.Sort(out)
	return out
}

// Export genera el resumen y lo renderiza en format ("pdf", "xlsx").
// Devuelve el archivo y su content type.
func (uc *OverviewUseCase) Export(ctx context.Context, companyID, format string) ([]byte, string, error) {
	r, ok := uc.renderers[strings.ToLower(format)]
	if !ok {
		ve := &domain.ValidationError{}
		ve.Add("format", fmt.Sprintf("formato %q no soportado; use json o uno de: %s", format, strings.Join(uc.Formats(), ", ")))
		return nil, "", ve
	}
	report, err := uc.Overview(ctx, companyID)
	if err != nil {
		return nil, "", err
	}
	data, err := r.Render(ctx, report)
	if err != nil {
		return nil, "", fmt.Errorf("overview: render %s: %w", r.Format(), err)
	}
	return data, r.ContentType(), nil
}
