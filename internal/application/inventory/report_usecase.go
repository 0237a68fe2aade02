package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	engine "github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

const day = 24 * time.Hour

// ReportSettings umbrales por defecto de los reportes.
type ReportSettings struct {
	Attention      engine.AttentionThresholds
	Aging          engine.AgingThresholds
	ABC            engine.ABCThresholds
	Matcher        engine.TransferMatcher
	TransferWindow time.Duration
}

// DefaultReportSettings valores por defecto del motor.
func DefaultReportSettings() ReportSettings {
	return ReportSettings{
		Attention:      engine.DefaultAttentionThresholds(),
		Aging:          engine.DefaultAgingThresholds(),
		ABC:            engine.DefaultABCThresholds(),
		Matcher:        engine.FirstMatch{},
		TransferWindow: engine.DefaultTransferWindow,
	}
}

// NewReportSettings traduce la sección Reports de la configuración.
func NewReportSettings(c config.ReportsConfig) (ReportSettings, error) {
	m, err := engine.MatcherByName(c.TransferMatcher)
	if err != nil {
		return ReportSettings{}, err
	}
	return ReportSettings{
		Attention: engine.AttentionThresholds{
			HighValue:          c.HighValueThreshold,
			HighQuantity:       c.HighQuantityThreshold,
			LargeAdjustmentQty: c.LargeAdjustmentQty,
			Window:             time.Duration(c.AttentionWindowDays) * day,
		},
		Aging:          engine.AgingThresholds{SlowMovingDays: c.SlowMovingDays, DeadStockDays: c.DeadStockDays},
		ABC:            engine.ABCThresholds{LimitA: c.ABCLimitA, LimitB: c.ABCLimitB},
		Matcher:        m,
		TransferWindow: time.Duration(c.TransferWindowDays) * day,
	}, nil
}

// ReportUseCase deriva los reportes de inventario a partir del ledger. Ningún reporte
// se persiste: cada llamada vuelve a leer los movimientos.
type ReportUseCase struct {
	ledger   repository.LedgerRepository
	settings ReportSettings
	log      *logger.Logger
	clock    Clock
}

// NewReportUseCase construye el caso de uso. log y clock pueden ser nil.
func NewReportUseCase(ledger repository.LedgerRepository, settings ReportSettings, log *logger.Logger, clock Clock) *ReportUseCase {
	return &ReportUseCase{ledger: ledger, settings: settings, log: logger.OrNop(log), clock: clock}
}

// Settings umbrales por defecto en uso.
func (uc *ReportUseCase) Settings() ReportSettings { return uc.settings }

// QueryMovements devuelve los movimientos de la empresa que cumplen f.
func (uc *ReportUseCase) QueryMovements(ctx context.Context, companyID string, f repository.MovementFilter) ([]entity.MovementRecord, error) {
	return uc.ledger.Query(ctx, companyID, f)
}

// CurrentStockLevels reproduce el ledger hasta asOf (cero = ahora) sin materializarlo.
func (uc *ReportUseCase) CurrentStockLevels(ctx context.Context, companyID string, asOf time.Time, f repository.MovementFilter) (engine.StockLevelSummary, error) {
	start := time.Now()
	if asOf.IsZero() {
		asOf = uc.clock.now()
	}
	levels, n, err := uc.levels(ctx, companyID, asOf, f)
	if err != nil {
		return engine.StockLevelSummary{}, err
	}
	uc.logReport("stock_levels", companyID, n, start)
	return engine.SummarizeLevels(levels, asOf), nil
}

// Valuation valoriza el stock actual; siteID vacío = todas las sedes.
func (uc *ReportUseCase) Valuation(ctx context.Context, companyID, siteID string) (engine.ValuationReport, error) {
	start := time.Now()
	levels, n, err := uc.levels(ctx, companyID, uc.clock.now(), repository.MovementFilter{SiteID: siteID})
	if err != nil {
		return engine.ValuationReport{}, err
	}
	uc.logReport("valuation", companyID, n, start)
	return engine.Valuate(levels, siteID), nil
}

// ABCAnalysis clasifica los libros por valor movido en [from, to]. Cero = sin límite.
func (uc *ReportUseCase) ABCAnalysis(ctx context.Context, companyID string, from, to time.Time) (engine.ABCReport, error) {
	start := time.Now()
	f, err := periodFilter(from, to)
	if err != nil {
		return engine.ABCReport{}, err
	}
	records, err := uc.ledger.Query(ctx, companyID, f)
	if err != nil {
		return engine.ABCReport{}, err
	}
	uc.logReport("abc", companyID, len(records), start)
	return engine.ClassifyABC(records, from, to, uc.settings.ABC), nil
}

// AgingReport detecta stock lento y muerto a la fecha. slowDays/deadDays en 0 toman los
// valores configurados.
func (uc *ReportUseCase) AgingReport(ctx context.Context, companyID string, slowDays, deadDays int) (engine.AgingReport, error) {
	start := time.Now()
	th := uc.settings.Aging
	if slowDays != 0 {
		th.SlowMovingDays = slowDays
	}
	if deadDays != 0 {
		th.DeadStockDays = deadDays
	}
	ve := &domain.ValidationError{}
	if th.SlowMovingDays <= 0 {
		ve.Add("slow_days", "debe ser positivo")
	}
	if th.DeadStockDays < th.SlowMovingDays {
		ve.Add("dead_days", "no puede ser menor que slow_days")
	}
	if err := ve.OrNil(); err != nil {
		return engine.AgingReport{}, err
	}

	now := uc.clock.now()
	levels, n, err := uc.levels(ctx, companyID, now, repository.MovementFilter{})
	if err != nil {
		return engine.AgingReport{}, err
	}
	uc.logReport("aging", companyID, n, start)
	return engine.AnalyzeAging(levels, now, th), nil
}

// AttentionParams sobrescrituras opcionales de los umbrales de alerta.
type AttentionParams struct {
	HighValue          decimal.NullDecimal
	HighQuantity       *int64
	LargeAdjustmentQty *int64
	WindowDays         int // 0 = configurado
}

func (p AttentionParams) apply(th engine.AttentionThresholds) (engine.AttentionThresholds, error) {
	ve := &domain.ValidationError{}
	if p.HighValue.Valid {
		if p.HighValue.Decimal.IsNegative() {
			ve.Add("high_value", "no puede ser negativo")
		}
		th.HighValue = p.HighValue.Decimal
	}
	if p.HighQuantity != nil {
		if *p.HighQuantity < 0 {
			ve.Add("high_quantity", "no puede ser negativo")
		}
		th.HighQuantity = *p.HighQuantity
	}
	if p.LargeAdjustmentQty != nil {
		if *p.LargeAdjustmentQty < 0 {
			ve.Add("large_adjustment", "no puede ser negativo")
		}
		th.LargeAdjustmentQty = *p.LargeAdjustmentQty
	}
	switch {
	case p.WindowDays < 0:
		ve.Add("window_days", "no puede ser negativo")
	case p.WindowDays > 0:
		th.Window = time.Duration(p.WindowDays) * day
	}
	return th, ve.OrNil()
}

// AttentionReport marca los movimientos recientes que requieren revisión.
func (uc *ReportUseCase) AttentionReport(ctx context.Context, companyID string, p AttentionParams) (engine.AttentionReport, error) {
	start := time.Now()
	th, err := p.apply(uc.settings.Attention)
	if err != nil {
		return engine.AttentionReport{}, err
	}
	now := uc.clock.now()
	since := now.Add(-th.Window)
	records, err := uc.ledger.Query(ctx, companyID, repository.MovementFilter{From: &since})
	if err != nil {
		return engine.AttentionReport{}, err
	}
	uc.logReport("attention", companyID, len(records), start)
	return engine.FlagAttention(records, now, th), nil
}

// TransferReport concilia los traslados despachados en [from, to] (cero = sin límite).
// matcher vacío usa la estrategia configurada.
func (uc *ReportUseCase) TransferReport(ctx context.Context, companyID string, from, to time.Time, matcher string) (engine.TransferReport, error) {
	start := time.Now()
	m := uc.settings.Matcher
	if matcher != "" {
		var err error
		if m, err = engine.MatcherByName(matcher); err != nil {
			ve := &domain.ValidationError{}
			ve.Add("matcher", err.Error())
			return engine.TransferReport{}, ve
		}
	}
	if _, err := periodFilter(from, to); err != nil {
		return engine.TransferReport{}, err
	}

	// Las llegadas pueden caer hasta una ventana antes o después del período.
	window := uc.settings.TransferWindow
	var f repository.MovementFilter
	if !from.IsZero() {
		lo := from.Add(-window)
		f.From = &lo
	}
	if !to.IsZero() {
		hi := to.Add(window)
		f.To = &hi
	}
	var legs []entity.MovementRecord
	err := uc.ledger.Scan(ctx, companyID, f, func(r entity.MovementRecord) error {
		switch r.Type {
		case entity.MovementTransferOut:
			if engine.InPeriod(r.Timestamp, from, to) {
				legs = append(legs, r)
			}
		case entity.MovementTransferIn:
			legs = append(legs, r)
		}
		return nil
	})
	if err != nil {
		return engine.TransferReport{}, err
	}
	uc.logReport("transfers", companyID, len(legs), start)
	return engine.NewReconciler(m, window).Reconcile(legs), nil
}

// levels pliega los movimientos en el agregador a medida que se leen.
func (uc *ReportUseCase) levels(ctx context.Context, companyID string, asOf time.Time, f repository.MovementFilter) (map[entity.StockKey]entity.StockLevel, int, error) {
	agg := engine.NewAggregator(asOf)
	n := 0
	err := uc.ledger.Scan(ctx, companyID, f, func(m entity.MovementRecord) error {
		agg.Add(m)
		n++
		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("stock levels: %w", err)
	}
	return agg.Levels(), n, nil
}

func (uc *ReportUseCase) logReport(report, companyID string, records int, start time.Time) {
	uc.log.Info().
		Str("report", report).
		Str("company_id", companyID).
		Int("records", records).
		Dur("elapsed", time.Since(start)).
		Msg("reporte generado")
}

// periodFilter filtro de fechas inclusivo; rechaza from > to.
func periodFilter(from, to time.Time) (repository.MovementFilter, error) {
	var f repository.MovementFilter
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		ve := &domain.ValidationError{}
		ve.Add("from", "no puede ser posterior a to")
		return f, ve
	}
	if !from.IsZero() {
		f.From = &from
	}
	if !to.IsZero() {
		f.To = &to
	}
	return f, nil
}

