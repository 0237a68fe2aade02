package inventory

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// AttentionRule regla de alerta. El valor numérico es la prioridad (1 = más alta).
type AttentionRule uint8

const (
	RuleHighValue AttentionRule = iota + 1
	RuleLargeAdjustment
	RuleHighQuantity
	RuleTransferWithoutCost
	RuleStockOutWithoutReference
)

// AttentionRules las reglas en orden de precedencia.
var AttentionRules = []AttentionRule{
	RuleHighValue,
	RuleLargeAdjustment,
	RuleHighQuantity,
	RuleTransferWithoutCost,
	RuleStockOutWithoutReference,
}

// Reason texto estable de la regla (se expone tal cual en la API).
func (r AttentionRule) Reason() string {
	switch r {
	case RuleHighValue:
		return "High value movement"
	case RuleLargeAdjustment:
		return "Large stock adjustment"
	case RuleHighQuantity:
		return "High quantity movement"
	case RuleTransferWithoutCost:
		return "Transfer without cost information"
	case RuleStockOutWithoutReference:
		return "Stock out without reference"
	}
	return fmt.Sprintf("AttentionRule(%d)", uint8(r))
}

func (r AttentionRule) String() string { return r.Reason() }

// Priority prioridad de la regla; 1 es la más alta.
func (r AttentionRule) Priority() int { return int(r) }

// Valores por defecto de las reglas de alerta.
const (
	DefaultAttentionWindow    = 30 * 24 * time.Hour
	DefaultLargeAdjustmentQty = 10
	DefaultHighQuantity       = 100
)

// DefaultHighValue umbral de costo total para "High value movement".
var DefaultHighValue = decimal.NewFromInt(1000)

// AttentionThresholds parámetros de las reglas.
type AttentionThresholds struct {
	HighValue          decimal.Decimal
	HighQuantity       int64
	LargeAdjustmentQty int64
	Window             time.Duration // solo movimientos con timestamp ≥ today − Window
}

// DefaultAttentionThresholds 1000 / 100 / 10 / 30 días.
func DefaultAttentionThresholds() AttentionThresholds {
	return AttentionThresholds{
		HighValue:          DefaultHighValue,
		HighQuantity:       DefaultHighQuantity,
		LargeAdjustmentQty: DefaultLargeAdjustmentQty,
		Window:             DefaultAttentionWindow,
	}
}

// AttentionItem movimiento que requiere revisión.
type AttentionItem struct {
	Movement entity.MovementRecord
	Priority int
	Rules    []AttentionRule // todas las que aplican, en orden de precedencia
}

// Reasons textos de todas las reglas que aplican.
func (it AttentionItem) Reasons() []string {
	out := make([]string, len(it.Rules))
	for i, r := range it.Rules {
		out[i] = r.Reason()
	}
	return out
}

// AttentionReport alertas ordenadas por prioridad ascendente.
type AttentionReport struct {
	Since      time.Time
	Thresholds AttentionThresholds
	Items      []AttentionItem
	ByRule     map[AttentionRule]int // coincidencias por regla (no solo la primera)
}

// EvaluateRules devuelve las reglas que dispara m, en orden de precedencia.
func EvaluateRules(m entity.MovementRecord, th AttentionThresholds) []AttentionRule {
	var rules []AttentionRule
	if m.TotalCost.Valid && m.TotalCost.Decimal.GreaterThan(th.HighValue) {
		rules = append(rules, RuleHighValue)
	}
	if m.Type == entity.MovementAdjustment && m.Magnitude() > th.LargeAdjustmentQty {
		rules = append(rules, RuleLargeAdjustment)
	}
	if m.Magnitude() > th.HighQuantity {
		rules = append(rules, RuleHighQuantity)
	}
	if m.Type.IsTransfer() && !m.UnitCost.Valid {
		rules = append(rules, RuleTransferWithoutCost)
	}
	if m.Type == entity.MovementStockOut && !m.HasReference() {
		rules = append(rules, RuleStockOutWithoutReference)
	}
	return rules
}

// FlagAttention revisa los movimientos recientes (timestamp ≥ today − Window) y devuelve
// los que disparan alguna regla. La prioridad es la de la primera regla que aplica;
// a igual prioridad se conserva el orden de entrada.
func FlagAttention(records []entity.MovementRecord, today time.Time, th AttentionThresholds) AttentionReport {
	if th.Window <= 0 {
		th.Window = DefaultAttentionWindow
	}
	report := AttentionReport{
		Since:      today.Add(-th.Window),
		Thresholds: th,
		ByRule:     make(map[AttentionRule]int, len(AttentionRules)),
	}

	for _, m := range records {
		if m.Timestamp.Before(report.Since) {
			continue
		}
		rules := EvaluateRules(m, th)
		if len(rules) == 0 {
			continue
		}
		for _, r := range rules {
			report.ByRule[r]++
		}
		report.Items = append(report.Items, AttentionItem{
			Movement: m,
			Priority: rules[0].Priority(),
			Rules:    rules,
		})
	}

	sort.SliceStable(report.Items, func(i, j int) bool {
		return report.Items[i].Priority < report.Items[j].Priority
	})
	return report
}
