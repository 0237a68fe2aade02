package http

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// queryTime lee un query param de fecha: RFC 3339 o AAAA-MM-DD. Ausente = cero.
// Con endOfDay, una fecha sin hora se lleva al último instante del día.
func queryTime(c *fiber.Ctx, key string, endOfDay bool) (time.Time, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("se espera RFC 3339 o %s", dateLayout)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}

// queryInt64 lee un entero opcional; nil si está ausente.
func queryInt64(c *fiber.Ctx, key string) (*int64, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("se espera un entero")
	}
	return &n, nil
}

// queryDecimal lee un decimal opcional.
func queryDecimal(c *fiber.Ctx, key string) (decimal.NullDecimal, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("se espera un número")
	}
	return decimal.NewNullDecimal(d), nil
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
