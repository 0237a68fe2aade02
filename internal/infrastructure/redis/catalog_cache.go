package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

const keyPrefix = "catalog"

// NewClient abre el cliente a partir de REDIS_URL y verifica la conexión.
func NewClient(ctx context.Context, url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis: url inválida: %w", err)
	}
	rdb := goredis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return rdb, nil
}

// CatalogCache decora un CatalogRepository con una caché en Redis (JSON por entrada).
// Los fallos de Redis no fallan la consulta: se registran y se va al repositorio.
type CatalogCache struct {
	next repository.CatalogRepository
	rdb  goredis.UniversalClient
	ttl  time.Duration
	log  *logger.Logger
}

var _ repository.CatalogRepository = (*CatalogCache)(nil)

// NewCatalogCache construye la caché. ttl <= 0 guarda sin expiración.
func NewCatalogCache(next repository.CatalogRepository, rdb goredis.UniversalClient, ttl time.Duration, log *logger.Logger) *CatalogCache {
	return &CatalogCache{next: next, rdb: rdb, ttl: max(ttl, 0), log: logger.OrNop(log)}
}

func (c *CatalogCache) BooksByIDs(ctx context.Context, companyID string, ids []string) (map[string]entity.Book, error) {
	return cached(ctx, c, companyID, "book", ids, c.next.BooksByIDs)
}

func (c *CatalogCache) SitesByIDs(ctx context.Context, companyID string, ids []string) (map[string]entity.Site, error) {
	return cached(ctx, c, companyID, "site", ids, c.next.SitesByIDs)
}

// Invalidate borra las entradas de la empresa (tras re-sembrar el catálogo).
func (c *CatalogCache) Invalidate(ctx context.Context, companyID string) error {
	iter := c.rdb.Scan(ctx, 0, fmt.Sprintf("%s:%s:*", keyPrefix, companyID), 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis: scan: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}

func key(companyID, kind, id string) string {
	return fmt.Sprintf("%s:%s:%s:%s", keyPrefix, companyID, kind, id)
}

func cached[T any](
	ctx context.Context,
	c *CatalogCache,
	companyID, kind string,
	ids []string,
	fetch func(context.Context, string, []string) (map[string]T, error),
) (map[string]T, error) {
	out := make(map[string]T, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = key(companyID, kind, id)
	}
	missing := ids
	vals, err := c.rdb.MGet(ctx, keys...).Result()
	if err != nil && !errors.Is(err, goredis.Nil) {
		c.log.Warn().Err(err).Str("kind", kind).Msg("caché de catálogo no disponible")
	} else {
		missing = missing[:0:0]
		for i, v := range vals {
			s, ok := v.(string)
			if !ok {
				missing = append(missing, ids[i])
				continue
			}
			var item T
			if err := json.Unmarshal([]byte(s), &item); err != nil {
				missing = append(missing, ids[i])
				continue
			}
			out[ids[i]] = item
		}
	}
	if len(missing) == 0 {
		return out, nil
	}

	fetched, err := fetch(ctx, companyID, missing)
	if err != nil {
		return nil, err
	}
	pipe := c.rdb.Pipeline()
	for id, item := range fetched {
		out[id] = item
		b, err := json.Marshal(item)
		if err != nil {
			continue
		}
		pipe.Set(ctx, key(companyID, kind, id), b, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		c.log.Warn().Err(err).Str("kind", kind).Msg("no se pudo guardar en caché de catálogo")
	}
	return out, nil
}
