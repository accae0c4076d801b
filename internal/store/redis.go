package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/park285/rooky/internal/note"
	"github.com/park285/rooky/internal/obslog"
)

// RedisStore keeps one JSON document per entry plus a created_at sorted
// index and one id set per origin.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: fmt.Sprintf("%s:v%d", note.StoreName, note.SchemaVersion)}
}

// OpenRedis connects to a redis:// or rediss:// URL and pings it.
func OpenRedis(ctx context.Context, redisURL string) (*RedisStore, error) {
	if strings.TrimSpace(redisURL) == "" {
		return nil, fmt.Errorf("REDIS_URL required for redis store")
	}
	opts, err := parseRedisURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedisStore(rdb), nil
}

func (s *RedisStore) keyEntry(id string) string { return s.prefix + ":entry:" + strings.TrimSpace(id) }
func (s *RedisStore) keyByDate() string         { return s.prefix + ":by_date" }
func (s *RedisStore) keyOrigin(o note.Origin) string {
	return s.prefix + ":origin:" + strings.ToLower(o.String())
}

// maxTxRetries bounds optimistic retries when a watched entry changes under us.
const maxTxRetries = 5

// watchEntry runs fn in a WATCH transaction on the entry key, retrying while
// concurrent writers win the race.
func (s *RedisStore) watchEntry(ctx context.Context, id string, fn func(tx *redis.Tx, prev *note.Entry) error) error {
	key := s.keyEntry(id)
	var err error
	for attempt := 0; attempt < maxTxRetries; attempt++ {
		err = s.rdb.Watch(ctx, func(tx *redis.Tx) error {
			prev, err := decodeEntry(tx.Get(ctx, key), id)
			if err != nil {
				return err
			}
			return fn(tx, prev)
		}, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
		obslog.L().Debug("store_tx_retry", zap.String("backend", "redis"), zap.String("id", id), zap.Int("attempt", attempt+1))
	}
	return err
}

func (s *RedisStore) Put(ctx context.Context, e note.Entry) error {
	if err := validate(e); err != nil {
		return err
	}
	raw, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}

	err = s.watchEntry(ctx, e.ID, func(tx *redis.Tx, prev *note.Entry) error {
		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, s.keyEntry(e.ID), raw, 0)
			pipe.ZAdd(ctx, s.keyByDate(), redis.Z{Score: float64(e.CreatedAt), Member: e.ID})
			// the id lives in exactly one origin set
			if prev != nil && prev.Origin != e.Origin {
				pipe.SRem(ctx, s.keyOrigin(prev.Origin), e.ID)
			}
			pipe.SAdd(ctx, s.keyOrigin(e.Origin), e.ID)
			return nil
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("store entry: %w", err)
	}
	obslog.L().Debug("store_put", zap.String("backend", "redis"), zap.String("id", e.ID), zap.String("origin", e.Origin.String()))
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*note.Entry, error) {
	return decodeEntry(s.rdb.Get(ctx, s.keyEntry(id)), id)
}

func decodeEntry(cmd *redis.StringCmd, id string) (*note.Entry, error) {
	raw, err := cmd.Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var e note.Entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, fmt.Errorf("decode entry %s: %w", id, err)
	}
	return &e, nil
}

// List walks the date index newest first and loads documents only until
// Limit is reached. Origin filters are resolved against the origin sets
// before any document is read.
func (s *RedisStore) List(ctx context.Context, opts ListOptions) ([]note.Entry, error) {
	index, err := s.rdb.ZRevRangeWithScores(ctx, s.keyByDate(), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	// redis breaks score ties by member descending; listings want id ascending
	sort.SliceStable(index, func(i, j int) bool {
		if index[i].Score != index[j].Score {
			return index[i].Score > index[j].Score
		}
		return index[i].Member.(string) < index[j].Member.(string)
	})

	var allowed map[string]struct{}
	if len(opts.Origins) > 0 {
		allowed = make(map[string]struct{})
		for _, o := range opts.Origins {
			ids, err := s.IDsByOrigin(ctx, o)
			if err != nil {
				return nil, err
			}
			for _, id := range ids {
				allowed[id] = struct{}{}
			}
		}
	}

	var out []note.Entry
	for _, z := range index {
		if opts.Limit > 0 && len(out) == opts.Limit {
			break
		}
		id := z.Member.(string)
		if allowed != nil {
			if _, ok := allowed[id]; !ok {
				continue
			}
		}
		e, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if e == nil || !opts.matches(e.Origin) {
			continue
		}
		out = append(out, *e)
	}
	return out, nil
}

// IDsByOrigin reads the origin index directly.
func (s *RedisStore) IDsByOrigin(ctx context.Context, o note.Origin) ([]string, error) {
	return s.rdb.SMembers(ctx, s.keyOrigin(o)).Result()
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	err := s.watchEntry(ctx, id, func(tx *redis.Tx, prev *note.Entry) error {
		if prev == nil {
			return ErrNotFound
		}
		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, s.keyEntry(id))
			pipe.ZRem(ctx, s.keyByDate(), prev.ID)
			pipe.SRem(ctx, s.keyOrigin(prev.Origin), prev.ID)
			return nil
		})
		return err
	})
	if errors.Is(err, ErrNotFound) {
		return err
	}
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	if s == nil || s.rdb == nil {
		return nil
	}
	return s.rdb.Close()
}

func parseRedisURL(raw string) (*redis.Options, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "redis" && u.Scheme != "rediss" {
		return nil, fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	db := 0
	if p := strings.TrimPrefix(u.Path, "/"); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			db = n
		}
	}
	pass, _ := u.User.Password()
	return &redis.Options{Addr: u.Host, Password: pass, DB: db}, nil
}
