package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterMovementRequest body para POST /api/inventory/movements.
type RegisterMovementRequest struct {
	SiteID        string           `json:"site_id"`
	BookID        string           `json:"book_id"`
	Type          string           `json:"movement_type"` // STOCK_IN, STOCK_OUT, TRANSFER_IN, TRANSFER_OUT, ADJUSTMENT
	Quantity      int64            `json:"quantity"`
	UnitCost      *decimal.Decimal `json:"unit_cost,omitempty"`
	ReferenceType string           `json:"reference_type,omitempty"`
	ReferenceID   string           `json:"reference_id,omitempty"`
	FromSiteID    string           `json:"from_site_id,omitempty"` // solo TRANSFER_IN
	ToSiteID      string           `json:"to_site_id,omitempty"`   // solo TRANSFER_OUT
	Timestamp     *time.Time       `json:"timestamp,omitempty"`    // vacío = ahora
}

// CorrectionRequest body para POST /api/inventory/movements/:id/corrections.
type CorrectionRequest struct {
	Delta  int64  `json:"delta"` // con signo
	Reason string `json:"reason,omitempty"`
}

// TransferRequest body para POST /api/inventory/transfers.
// Immediate=true anexa salida y llegada juntas.
type TransferRequest struct {
	BookID        string           `json:"book_id"`
	FromSiteID    string           `json:"from_site_id"`
	ToSiteID      string           `json:"to_site_id"`
	Quantity      int64            `json:"quantity"`
	UnitCost      *decimal.Decimal `json:"unit_cost,omitempty"`
	ReferenceType string           `json:"reference_type,omitempty"`
	ReferenceID   string           `json:"reference_id,omitempty"`
	Timestamp     *time.Time       `json:"timestamp,omitempty"`
	Immediate     bool             `json:"immediate,omitempty"`
}

// ReceiptRequest body para POST /api/inventory/transfers/:id/receipt. Todo opcional.
type ReceiptRequest struct {
	Quantity  int64            `json:"quantity,omitempty"` // 0 = lo despachado
	UnitCost  *decimal.Decimal `json:"unit_cost,omitempty"`
	Timestamp *time.Time       `json:"timestamp,omitempty"`
}

// MovementDTO movimiento del ledger con metadatos de catálogo cuando existen.
type MovementDTO struct {
	ID            string           `json:"id"`
	SiteID        string           `json:"site_id"`
	SiteName      string           `json:"site_name,omitempty"`
	BookID        string           `json:"book_id"`
	BookTitle     string           `json:"book_title,omitempty"`
	Type          string           `json:"movement_type"`
	Quantity      int64            `json:"quantity"`
	UnitCost      *decimal.Decimal `json:"unit_cost,omitempty"`
	TotalCost     *decimal.Decimal `json:"total_cost,omitempty"`
	ReferenceType string           `json:"reference_type,omitempty"`
	ReferenceID   string           `json:"reference_id,omitempty"`
	FromSiteID    string           `json:"from_site_id,omitempty"`
	ToSiteID      string           `json:"to_site_id,omitempty"`
	Timestamp     time.Time        `json:"timestamp"`
	CreatedBy     string           `json:"created_by,omitempty"`
}

// TransferResponse respuesta de POST /api/inventory/transfers.
type TransferResponse struct {
	Out *MovementDTO `json:"out"`
	In  *MovementDTO `json:"in,omitempty"` // solo con immediate
}

// MovementListResponse respuesta de GET /api/inventory/movements.
type MovementListResponse struct {
	Page      PageResponse  `json:"page"`
	Movements []MovementDTO `json:"movements"`
}

// StockLevelDTO stock derivado de un (sede, libro).
type StockLevelDTO struct {
	SiteID           string           `json:"site_id"`
	SiteName         string           `json:"site_name,omitempty"`
	BookID           string           `json:"book_id"`
	BookTitle        string           `json:"book_title,omitempty"`
	ISBN             string           `json:"isbn,omitempty"`
	StockIn          int64            `json:"stock_in"`
	StockOut         int64            `json:"stock_out"`
	CurrentStock     int64            `json:"current_stock"`
	LastMovementDate time.Time        `json:"last_movement_date"`
	LastMovementType string           `json:"last_movement_type"`
	AverageCost      *decimal.Decimal `json:"average_cost,omitempty"`
}

// StockLevelsResponse respuesta de GET /api/inventory/stock-levels.
type StockLevelsResponse struct {
	AsOf          time.Time       `json:"as_of"`
	Levels        []StockLevelDTO `json:"levels"`
	TotalStockIn  int64           `json:"total_stock_in"`
	TotalStockOut int64           `json:"total_stock_out"`
	TotalCurrent  int64           `json:"total_current"`
	NegativeLines int             `json:"negative_lines"`
}

// ValuationLineDTO línea de valorización.
type ValuationLineDTO struct {
	SiteID       string          `json:"site_id"`
	SiteName     string          `json:"site_name,omitempty"`
	BookID       string          `json:"book_id"`
	BookTitle    string          `json:"book_title,omitempty"`
	CurrentStock int64           `json:"current_stock"`
	AverageCost  decimal.Decimal `json:"average_cost"`
	TotalValue   decimal.Decimal `json:"total_value"`
}

// SiteValuationDTO subtotal por sede.
type SiteValuationDTO struct {
	SiteID     string          `json:"site_id"`
	SiteName   string          `json:"site_name,omitempty"`
	Lines      int             `json:"lines"`
	TotalUnits int64           `json:"total_units"`
	TotalValue decimal.Decimal `json:"total_value"`
}

// ValuationResponse respuesta de GET /api/inventory/valuation.
type ValuationResponse struct {
	SiteID        string             `json:"site_id,omitempty"`
	Method        string             `json:"method"` // siempre "average"
	Lines         []ValuationLineDTO `json:"lines"`
	Sites         []SiteValuationDTO `json:"sites"`
	TotalUnits    int64              `json:"total_units"`
	TotalValue    decimal.Decimal    `json:"total_value"`
	AverageCost   *decimal.Decimal   `json:"average_cost,omitempty"`
	ExcludedLines int                `json:"excluded_lines"`
}

// ABCAssignmentDTO clasificación de un libro.
type ABCAssignmentDTO struct {
	Rank                 int             `json:"rank"`
	BookID               string          `json:"book_id"`
	BookTitle            string          `json:"book_title,omitempty"`
	Category             string          `json:"category"`
	TotalValue           decimal.Decimal `json:"total_value"`
	ValuePercentage      decimal.Decimal `json:"value_percentage"`
	CumulativePercentage decimal.Decimal `json:"cumulative_percentage"`
	Movements            int             `json:"movements"`
	Units                int64           `json:"units"`
}

// ABCCategoryDTO totales por categoría.
type ABCCategoryDTO struct {
	Category        string          `json:"category"`
	Books           int             `json:"books"`
	TotalValue      decimal.Decimal `json:"total_value"`
	ValuePercentage decimal.Decimal `json:"value_percentage"`
}

// ABCResponse respuesta de GET /api/inventory/abc.
type ABCResponse struct {
	From        *time.Time         `json:"from,omitempty"`
	To          *time.Time         `json:"to,omitempty"`
	TotalValue  decimal.Decimal    `json:"total_value"`
	Assignments []ABCAssignmentDTO `json:"assignments"`
	Categories  []ABCCategoryDTO   `json:"categories"`
}

// AgingItemDTO existencia sin movimiento reciente.
type AgingItemDTO struct {
	SiteID            string           `json:"site_id"`
	SiteName          string           `json:"site_name,omitempty"`
	BookID            string           `json:"book_id"`
	BookTitle         string           `json:"book_title,omitempty"`
	CurrentStock      int64            `json:"current_stock"`
	LastMovementDate  time.Time        `json:"last_movement_date"`
	LastMovementType  string           `json:"last_movement_type"`
	DaysSinceMovement int              `json:"days_since_movement"`
	Value             *decimal.Decimal `json:"value,omitempty"`
}

// AgingResponse respuesta de GET /api/inventory/aging.
type AgingResponse struct {
	AsOf            time.Time       `json:"as_of"`
	SlowMovingDays  int             `json:"slow_moving_days"`
	DeadStockDays   int             `json:"dead_stock_days"`
	SlowMoving      []AgingItemDTO  `json:"slow_moving"`
	DeadStock       []AgingItemDTO  `json:"dead_stock"`
	SlowMovingValue decimal.Decimal `json:"slow_moving_value"`
	DeadStockValue  decimal.Decimal `json:"dead_stock_value"`
}

// AttentionItemDTO movimiento a revisar.
type AttentionItemDTO struct {
	Movement MovementDTO `json:"movement"`
	Priority int         `json:"priority"` // 1 = más urgente
	Reason   string      `json:"reason"`   // la regla de mayor precedencia
	Reasons  []string    `json:"reasons"`
}

// AttentionResponse respuesta de GET /api/inventory/attention.
type AttentionResponse struct {
	Since        time.Time          `json:"since"`
	HighValue    decimal.Decimal    `json:"high_value_threshold"`
	HighQuantity int64              `json:"high_quantity_threshold"`
	Total        int                `json:"total"`
	Items        []AttentionItemDTO `json:"items"`
	ByReason     map[string]int     `json:"by_reason"`
}

// TransferPairDTO traslado con su llegada, si la hay.
type TransferPairDTO struct {
	Status       string       `json:"status"` // completed | pending
	Out          MovementDTO  `json:"out"`
	In           *MovementDTO `json:"in,omitempty"`
	DurationDays *float64     `json:"duration_days,omitempty"`
}

// TransferRouteDTO agregado por ruta.
type TransferRouteDTO struct {
	FromSiteID          string  `json:"from_site_id"`
	FromSiteName        string  `json:"from_site_name,omitempty"`
	ToSiteID            string  `json:"to_site_id"`
	ToSiteName          string  `json:"to_site_name,omitempty"`
	Transfers           int     `json:"transfers"`
	Completed           int     `json:"completed"`
	Pending             int     `json:"pending"`
	QuantitySent        int64   `json:"quantity_sent"`
	AverageDurationDays float64 `json:"average_duration_days"`
}

// TransferReportResponse respuesta de GET /api/inventory/transfers.
type TransferReportResponse struct {
	Matcher             string             `json:"matcher"`
	WindowDays          float64            `json:"window_days"`
	TotalTransfers      int                `json:"total_transfers"`
	Completed           int                `json:"completed"`
	Pending             int                `json:"pending"`
	AverageDurationDays float64            `json:"average_duration_days"`
	Transfers           []TransferPairDTO  `json:"transfers"`
	Routes              []TransferRouteDTO `json:"routes"`
}

// OverviewResponse respuesta JSON de GET /api/inventory/overview.
type OverviewResponse struct {
	GeneratedAt time.Time              `json:"generated_at"`
	Records     int                    `json:"records"`
	Stock       StockLevelsResponse    `json:"stock"`
	Valuation   ValuationResponse      `json:"valuation"`
	ABC         ABCResponse            `json:"abc"`
	Aging       AgingResponse          `json:"aging"`
	Attention   AttentionResponse      `json:"attention"`
	Transfers   TransferReportResponse `json:"transfers"`
}
