package inventory_test

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

var day0 = time.Date(2025, 1, 6, 10, 0, 0, 0, time.UTC)

func day(n int) time.Time { return day0.AddDate(0, 0, n) }

func money(v string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(v))
}

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

// mov arma un movimiento válido con ID fijo para que los tests sean deterministas.
type mov struct {
	id     string
	typ    entity.MovementType
	site   string
	book   string
	qty    int64
	cost   string // "" = sin costo
	at     time.Time
	from   string
	to     string
	refTyp string
	refID  string
}

func (m mov) record() entity.MovementRecord {
	r := entity.MovementRecord{
		ID:            m.id,
		CompanyID:     "company-1",
		SiteID:        m.site,
		BookID:        m.book,
		Type:          m.typ,
		Quantity:      m.qty,
		FromSiteID:    m.from,
		ToSiteID:      m.to,
		ReferenceType: m.refTyp,
		ReferenceID:   m.refID,
		Timestamp:     m.at,
		CreatedBy:     "user-1",
	}
	if r.SiteID == "" {
		r.SiteID = "site-1"
	}
	if r.BookID == "" {
		r.BookID = "book-a"
	}
	if r.Timestamp.IsZero() {
		r.Timestamp = day0
	}
	if m.cost != "" {
		r.UnitCost = money(m.cost)
		r.TotalCost = decimal.NewNullDecimal(r.UnitCost.Decimal.Mul(decimal.NewFromInt(r.Quantity)))
	}
	return r
}

func records(ms ...mov) []entity.MovementRecord {
	out := make([]entity.MovementRecord, len(ms))
	for i, m := range ms {
		out[i] = m.record()
	}
	return out
}

func key(site, book string) entity.StockKey {
	return entity.StockKey{SiteID: site, BookID: book}
}
