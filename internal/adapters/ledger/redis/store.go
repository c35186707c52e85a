// Package redis guarda los contadores del ledger en un hash por organización.
// Útil cuando varias instancias comparten el ledger y la base principal es memory.
package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"epaws/internal/domain/ledger"
	"epaws/internal/platform/sentinel"
)

const keyPrefix = "epaws:ledger:"

// adjustScript suma y aplica el piso en cero dentro de Redis, así el
// read-modify-write es atómico entre instancias.
var adjustScript = redis.NewScript(`
local v = redis.call('HINCRBY', KEYS[1], ARGV[1], ARGV[2])
if v < 0 then
  redis.call('HSET', KEYS[1], ARGV[1], 0)
  return 0
end
return v
`)

var fields = []ledger.Field{ledger.CurrentAnimals, ledger.TotalRescues, ledger.TotalCasesHandled}

type Store struct {
	client *redis.Client
}

var _ ledger.Store = (*Store)(nil)

func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

// Dial abre el cliente desde una URL redis:// y verifica la conexión.
func Dial(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

func key(orgID string) string { return keyPrefix + orgID }

func (s *Store) Adjust(ctx context.Context, orgID string, f ledger.Field, delta int64) (int64, error) {
	col := f.Column()
	if col == "" {
		return 0, fmt.Errorf("%w: unknown ledger field %q", sentinel.ErrValidation, f)
	}
	if strings.TrimSpace(orgID) == "" {
		return 0, fmt.Errorf("%w: organization id required", sentinel.ErrValidation)
	}
	return adjustScript.Run(ctx, s.client, []string{key(orgID)}, col, delta).Int64()
}

func (s *Store) Get(ctx context.Context, orgID string) (ledger.Counters, error) {
	cols := make([]string, 0, len(fields))
	for _, f := range fields {
		cols = append(cols, f.Column())
	}

	vals, err := s.client.HMGet(ctx, key(orgID), cols...).Result()
	if err != nil {
		return ledger.Counters{}, err
	}

	var c ledger.Counters
	for i, v := range vals {
		if v == nil {
			continue
		}
		n, err := strconv.ParseInt(fmt.Sprint(v), 10, 64)
		if err != nil {
			return ledger.Counters{}, fmt.Errorf("ledger %s.%s: %w", orgID, cols[i], err)
		}
		c.Set(fields[i], n)
	}
	return c, nil
}
