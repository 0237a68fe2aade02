package inventory

import (
	"context"
	"time"
)

// Clock fuente de la hora actual. nil = time.Now.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}

// OverviewRenderer exporta el resumen de inventario a un formato de archivo (PDF, XLSX).
type OverviewRenderer interface {
	Format() string      // "pdf", "xlsx"
	ContentType() string // MIME del archivo generado
	Render(ctx context.Context, report *OverviewReport) ([]byte, error)
}
