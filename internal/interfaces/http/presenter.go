package http

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	appinv "github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	engine "github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// Presenter convierte los resultados del motor en DTOs y añade títulos y nombres de sede
// desde el catálogo. Si el catálogo falla o no tiene un ID, el campo queda vacío.
type Presenter struct {
	catalog repository.CatalogRepository
	log     *logger.Logger
}

// NewPresenter construye el presenter. catalog puede ser nil (sin enriquecimiento).
func NewPresenter(catalog repository.CatalogRepository, log *logger.Logger) *Presenter {
	return &Presenter{catalog: catalog, log: logger.OrNop(log)}
}

// names metadatos resueltos para una respuesta.
type names struct {
	books map[string]entity.Book
	sites map[string]entity.Site
}

func (n names) title(bookID string) string { return n.books[bookID].Title }
func (n names) isbn(bookID string) string  { return n.books[bookID].ISBN }
func (n names) site(siteID string) string  { return n.sites[siteID].Name }

// idSet junta los IDs a resolver sin repetir.
type idSet struct {
	books, sites []string
	seen         map[string]bool
}

func (s *idSet) add(bookID string, siteIDs ...string) {
	if s.seen == nil {
		s.seen = make(map[string]bool)
	}
	if bookID != "" && !s.seen["b:"+bookID] {
		s.seen["b:"+bookID] = true
		s.books = append(s.books, bookID)
	}
	for _, id := range siteIDs {
		if id != "" && !s.seen["s:"+id] {
			s.seen["s:"+id] = true
			s.sites = append(s.sites, id)
		}
	}
}

func (p *Presenter) lookup(ctx context.Context, companyID string, ids idSet) names {
	var n names
	if p.catalog == nil {
		return n
	}
	var err error
	if len(ids.books) > 0 {
		if n.books, err = p.catalog.BooksByIDs(ctx, companyID, ids.books); err != nil {
			p.log.Warn().Err(err).Str("company_id", companyID).Msg("catálogo de libros no disponible")
		}
	}
	if len(ids.sites) > 0 {
		if n.sites, err = p.catalog.SitesByIDs(ctx, companyID, ids.sites); err != nil {
			p.log.Warn().Err(err).Str("company_id", companyID).Msg("catálogo de sedes no disponible")
		}
	}
	return n
}

// ── Movimientos ──────────────────────────────────────────────────────────────

// Movement presenta un movimiento recién anexado.
func (p *Presenter) Movement(ctx context.Context, m entity.MovementRecord) dto.MovementDTO {
	var ids idSet
	ids.add(m.BookID, m.SiteID)
	return movementDTO(m, p.lookup(ctx, m.CompanyID, ids))
}

// Movements presenta un listado.
func (p *Presenter) Movements(ctx context.Context, companyID string, ms []entity.MovementRecord) []dto.MovementDTO {
	var ids idSet
	for _, m := range ms {
		ids.add(m.BookID, m.SiteID)
	}
	n := p.lookup(ctx, companyID, ids)
	out := make([]dto.MovementDTO, len(ms))
	for i, m := range ms {
		out[i] = movementDTO(m, n)
	}
	return out
}

func movementDTO(m entity.MovementRecord, n names) dto.MovementDTO {
	return dto.MovementDTO{
		ID:            m.ID,
		SiteID:        m.SiteID,
		SiteName:      n.site(m.SiteID),
		BookID:        m.BookID,
		BookTitle:     n.title(m.BookID),
		Type:          m.Type.String(),
		Quantity:      m.Quantity,
		UnitCost:      exact(m.UnitCost),
		TotalCost:     exact(m.TotalCost),
		ReferenceType: m.ReferenceType,
		ReferenceID:   m.ReferenceID,
		FromSiteID:    m.FromSiteID,
		ToSiteID:      m.ToSiteID,
		Timestamp:     m.Timestamp,
		CreatedBy:     m.CreatedBy,
	}
}

// ── Reportes ─────────────────────────────────────────────────────────────────

// StockLevels presenta el resumen de stock.
func (p *Presenter) StockLevels(ctx context.Context, companyID string, s engine.StockLevelSummary) dto.StockLevelsResponse {
	var ids idSet
	for _, l := range s.Levels {
		ids.add(l.BookID, l.SiteID)
	}
	return stockLevelsDTO(s, p.lookup(ctx, companyID, ids))
}

func stockLevelsDTO(s engine.StockLevelSummary, n names) dto.StockLevelsResponse {
	out := dto.StockLevelsResponse{
		AsOf:          s.AsOf,
		Levels:        make([]dto.StockLevelDTO, len(s.Levels)),
		TotalStockIn:  s.TotalStockIn,
		TotalStockOut: s.TotalStockOut,
		TotalCurrent:  s.TotalCurrent,
		NegativeLines: s.NegativeLines,
	}
	for i, l := range s.Levels {
		out.Levels[i] = dto.StockLevelDTO{
			SiteID:           l.SiteID,
			SiteName:         n.site(l.SiteID),
			BookID:           l.BookID,
			BookTitle:        n.title(l.BookID),
			ISBN:             n.isbn(l.BookID),
			StockIn:          l.StockIn,
			StockOut:         l.StockOut,
			CurrentStock:     l.CurrentStock,
			LastMovementDate: l.LastMovementDate,
			LastMovementType: l.LastMovementType.String(),
			AverageCost:      money(l.AverageCost),
		}
	}
	return out
}

// Valuation presenta la valorización.
func (p *Presenter) Valuation(ctx context.Context, companyID string, r engine.ValuationReport) dto.ValuationResponse {
	var ids idSet
	for _, l := range r.Lines {
		ids.add(l.BookID, l.SiteID)
	}
	return valuationDTO(r, p.lookup(ctx, companyID, ids))
}

func valuationDTO(r engine.ValuationReport, n names) dto.ValuationResponse {
	out := dto.ValuationResponse{
		SiteID:        r.SiteID,
		Method:        "average",
		Lines:         make([]dto.ValuationLineDTO, len(r.Lines)),
		Sites:         make([]dto.SiteValuationDTO, len(r.Sites)),
		TotalUnits:    r.TotalUnits,
		TotalValue:    r.TotalValue.Round(2),
		AverageCost:   money(r.AverageCost),
		ExcludedLines: r.ExcludedLines,
	}
	for i, l := range r.Lines {
		out.Lines[i] = dto.ValuationLineDTO{
			SiteID:       l.SiteID,
			SiteName:     n.site(l.SiteID),
			BookID:       l.BookID,
			BookTitle:    n.title(l.BookID),
			CurrentStock: l.CurrentStock,
			AverageCost:  l.AverageCost.Round(2),
			TotalValue:   l.TotalValue.Round(2),
		}
	}
	for i, s := range r.Sites {
		out.Sites[i] = dto.SiteValuationDTO{
			SiteID:     s.SiteID,
			SiteName:   n.site(s.SiteID),
			Lines:      s.Lines,
			TotalUnits: s.TotalUnits,
			TotalValue: s.TotalValue.Round(2),
		}
	}
	return out
}

// ABC presenta la clasificación ABC.
func (p *Presenter) ABC(ctx context.Context, companyID string, r engine.ABCReport) dto.ABCResponse {
	var ids idSet
	for _, a := range r.Assignments {
		ids.add(a.BookID)
	}
	return abcDTO(r, p.lookup(ctx, companyID, ids))
}

func abcDTO(r engine.ABCReport, n names) dto.ABCResponse {
	out := dto.ABCResponse{
		From:        optionalTime(r.PeriodStart),
		To:          optionalTime(r.PeriodEnd),
		TotalValue:  r.TotalValue.Round(2),
		Assignments: make([]dto.ABCAssignmentDTO, len(r.Assignments)),
		Categories:  make([]dto.ABCCategoryDTO, len(r.Categories)),
	}
	for i, a := range r.Assignments {
		out.Assignments[i] = dto.ABCAssignmentDTO{
			Rank:                 a.Rank,
			BookID:               a.BookID,
			BookTitle:            n.title(a.BookID),
			Category:             a.Category.String(),
			TotalValue:           a.TotalValue.Round(2),
			ValuePercentage:      a.ValuePercentage.Round(2),
			CumulativePercentage: a.CumulativePercentage.Round(2),
			Movements:            a.Movements,
			Units:                a.Units,
		}
	}
	for i, c := range r.Categories {
		out.Categories[i] = dto.ABCCategoryDTO{
			Category:        c.Category.String(),
			Books:           c.Books,
			TotalValue:      c.TotalValue.Round(2),
			ValuePercentage: c.ValuePercentage.Round(2),
		}
	}
	return out
}

// Aging presenta el reporte de antigüedad.
func (p *Presenter) Aging(ctx context.Context, companyID string, r engine.AgingReport) dto.AgingResponse {
	var ids idSet
	for _, it := range append(append([]engine.AgingItem{}, r.SlowMoving...), r.DeadStock...) {
		ids.add(it.BookID, it.SiteID)
	}
	return agingDTO(r, p.lookup(ctx, companyID, ids))
}

func agingDTO(r engine.AgingReport, n names) dto.AgingResponse {
	items := func(in []engine.AgingItem) []dto.AgingItemDTO {
		out := make([]dto.AgingItemDTO, len(in))
		for i, it := range in {
			out[i] = dto.AgingItemDTO{
				SiteID:            it.SiteID,
				SiteName:          n.site(it.SiteID),
				BookID:            it.BookID,
				BookTitle:         n.title(it.BookID),
				CurrentStock:      it.CurrentStock,
				LastMovementDate:  it.LastMovementDate,
				LastMovementType:  it.LastMovementType.String(),
				DaysSinceMovement: it.DaysSinceMovement,
				Value:             money(it.Value),
			}
		}
		return out
	}
	return dto.AgingResponse{
		AsOf:            r.AsOf,
		SlowMovingDays:  r.Thresholds.SlowMovingDays,
		DeadStockDays:   r.Thresholds.DeadStockDays,
		SlowMoving:      items(r.SlowMoving),
		DeadStock:       items(r.DeadStock),
		SlowMovingValue: r.SlowMovingValue.Round(2),
		DeadStockValue:  r.DeadStockValue.Round(2),
	}
}

// Attention presenta las alertas.
func (p *Presenter) Attention(ctx context.Context, companyID string, r engine.AttentionReport) dto.AttentionResponse {
	var ids idSet
	for _, it := range r.Items {
		ids.add(it.Movement.BookID, it.Movement.SiteID)
	}
	return attentionDTO(r, p.lookup(ctx, companyID, ids))
}

func attentionDTO(r engine.AttentionReport, n names) dto.AttentionResponse {
	out := dto.AttentionResponse{
		Since:        r.Since,
		HighValue:    r.Thresholds.HighValue,
		HighQuantity: r.Thresholds.HighQuantity,
		Total:        len(r.Items),
		Items:        make([]dto.AttentionItemDTO, len(r.Items)),
		ByReason:     make(map[string]int, len(r.ByRule)),
	}
	for i, it := range r.Items {
		reasons := it.Reasons()
		out.Items[i] = dto.AttentionItemDTO{
			Movement: movementDTO(it.Movement, n),
			Priority: it.Priority,
			Reason:   reasons[0],
			Reasons:  reasons,
		}
	}
	for rule, count := range r.ByRule {
		out.ByReason[rule.Reason()] = count
	}
	return out
}

// Transfers presenta la conciliación de traslados.
func (p *Presenter) Transfers(ctx context.Context, companyID string, r engine.TransferReport) dto.TransferReportResponse {
	var ids idSet
	for _, pair := range r.Pairs {
		ids.add(pair.Out.BookID, pair.Out.SiteID, pair.Out.ToSiteID)
	}
	return transfersDTO(r, p.lookup(ctx, companyID, ids))
}

func transfersDTO(r engine.TransferReport, n names) dto.TransferReportResponse {
	out := dto.TransferReportResponse{
		Matcher:             r.Matcher,
		WindowDays:          r.Window.Hours() / 24,
		TotalTransfers:      r.TotalTransfers,
		Completed:           r.Completed,
		Pending:             r.Pending,
		AverageDurationDays: r.AverageDurationDays,
		Transfers:           make([]dto.TransferPairDTO, len(r.Pairs)),
		Routes:              make([]dto.TransferRouteDTO, len(r.Routes)),
	}
	for i, pair := range r.Pairs {
		d := dto.TransferPairDTO{Status: "pending", Out: movementDTO(pair.Out, n)}
		if pair.Completed() {
			in := movementDTO(*pair.In, n)
			days := pair.DurationDays
			d.Status, d.In, d.DurationDays = "completed", &in, &days
		}
		out.Transfers[i] = d
	}
	for i, rs := range r.Routes {
		out.Routes[i] = dto.TransferRouteDTO{
			FromSiteID:          rs.FromSiteID,
			FromSiteName:        n.site(rs.FromSiteID),
			ToSiteID:            rs.ToSiteID,
			ToSiteName:          n.site(rs.ToSiteID),
			Transfers:           rs.Transfers,
			Completed:           rs.Completed,
			Pending:             rs.Pending,
			QuantitySent:        rs.QuantitySent,
			AverageDurationDays: rs.AverageDurationDays,
		}
	}
	return out
}

// Overview presenta el resumen con los metadatos que ya trae el reporte.
func (p *Presenter) Overview(o *appinv.OverviewReport) dto.OverviewResponse {
	n := names{books: o.Books, sites: o.Sites}
	return dto.OverviewResponse{
		GeneratedAt: o.GeneratedAt,
		Records:     o.Records,
		Stock:       stockLevelsDTO(o.Stock, n),
		Valuation:   valuationDTO(o.Valuation, n),
		ABC:         abcDTO(o.ABC, n),
		Aging:       agingDTO(o.Aging, n),
		Attention:   attentionDTO(o.Attention, n),
		Transfers:   transfersDTO(o.Transfers, n),
	}
}

func money(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal.Round(2)
	return &v
}

func exact(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}
