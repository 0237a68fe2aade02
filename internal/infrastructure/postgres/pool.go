package postgres

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/stock-ledger/pkg/config"
)

var errNoIPv4 = errors.New("sin dirección IPv4")

// NewPool abre el pool del ledger y verifica la conexión.
func NewPool(ctx context.Context, cfg config.DBConfig) (*pgxpool.Pool, error) {
	poolConfig, err := NewPoolConfig(cfg)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("crear pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping DB: %w", err)
	}
	return pool, nil
}

// NewPoolConfig traduce DBConfig a la configuración de pgxpool: DSN (DATABASE_URL o DB_*),
// tamaño y vida de las conexiones, codec NUMERIC ⇄ decimal.Decimal y, con ForceIPv4,
// resolución del host solo a IPv4.
func NewPoolConfig(cfg config.DBConfig) (*pgxpool.Config, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parse DSN: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	poolConfig.MinConns = min(cfg.MinConns, poolConfig.MaxConns)
	if cfg.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	poolConfig.HealthCheckPeriod = time.Minute

	// unit_cost y total_cost se leen y escriben como decimal.Decimal en todas las conexiones.
	poolConfig.AfterConnect = func(_ context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	if cfg.ForceIPv4 {
		poolConfig.ConnConfig.LookupFunc = ipv4Lookup{fallbackDNS: cfg.FallbackDNS}.lookup
	}
	return poolConfig, nil
}

// ipv4Lookup resuelve el host de la base solo a direcciones IPv4. Si el resolver del sistema
// no devuelve ninguna y hay fallbackDNS, consulta ese servidor.
type ipv4Lookup struct {
	fallbackDNS string // host:puerto; vacío = sin respaldo
}

func (l ipv4Lookup) lookup(ctx context.Context, host string) ([]string, error) {
	if ip := net.ParseIP(host); ip != nil {
		if ip.To4() == nil {
			return nil, fmt.Errorf("host %s: %w", host, errNoIPv4)
		}
		return []string{host}, nil
	}

	addrs, err := lookupIPv4(ctx, net.DefaultResolver, host)
	if err == nil || l.fallbackDNS == "" {
		return addrs, err
	}
	fallback := &net.Resolver{
		PreferGo: true,
		Dial: func(ctx context.Context, network, _ string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, network, l.fallbackDNS)
		},
	}
	return lookupIPv4(ctx, fallback, host)
}

func lookupIPv4(ctx context.Context, r *net.Resolver, host string) ([]string, error) {
	ips, err := r.LookupIP(ctx, "ip4", host)
	if err != nil {
		return nil, fmt.Errorf("resolver %s: %w", host, err)
	}
	addrs := make([]string, 0, len(ips))
	for _, ip := range ips {
		if ip.To4() != nil {
			addrs = append(addrs, ip.String())
		}
	}
	if len(addrs) == 0 {
		return nil, fmt.Errorf("host %s: %w", host, errNoIPv4)
	}
	return addrs, nil
}
