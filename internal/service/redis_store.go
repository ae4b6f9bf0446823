package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore is a redis-backed key/value service backend with the same
// procedure vocabulary as MemoryStore. Values are stored JSON-encoded under a
// per-backend namespace so multiple stores can share one server.
type RedisStore struct {
	*TableBackend

	client *redis.Client
	prefix string
	// ownsClient controls whether Dispose closes the connection
	ownsClient bool
}

// RedisStoreConfig holds connection settings for a redis store backend.
type RedisStoreConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisStore connects a new client and verifies it with a ping.
func NewRedisStore(ctx context.Context, name string, config RedisStoreConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", config.Addr, err)
	}
	s := newRedisStore(name, client)
	s.ownsClient = true
	return s, nil
}

// NewRedisStoreWithClient wraps an existing client; Dispose leaves it open.
func NewRedisStoreWithClient(name string, client *redis.Client) *RedisStore {
	return newRedisStore(name, client)
}

func newRedisStore(name string, client *redis.Client) *RedisStore {
	s := &RedisStore{
		client: client,
		prefix: "weft:" + name + ":",
	}
	s.TableBackend = NewTableBackend(name, map[string]ProcFunc{
		"get":      s.procGet,
		"set":      s.procSet,
		"delete":   s.procDelete,
		"has":      s.procHas,
		"keys":     s.procKeys,
		"snapshot": s.procSnapshot,
	})
	s.TableBackend.OnDispose(func() error {
		if s.ownsClient {
			return s.client.Close()
		}
		return nil
	})
	return s
}

func (s *RedisStore) key(k string) string {
	return s.prefix + k
}

func (s *RedisStore) procGet(ctx context.Context, args []any) (any, error) {
	key, err := stringArg(args, 0, "get")
	if err != nil {
		return nil, err
	}
	raw, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeValue(raw)
}

func (s *RedisStore) procSet(ctx context.Context, args []any) (any, error) {
	key, err := stringArg(args, 0, "set")
	if err != nil {
		return nil, err
	}
	if len(args) < 2 {
		return nil, fmt.Errorf("set requires a value argument")
	}
	raw, err := json.Marshal(args[1])
	if err != nil {
		return nil, fmt.Errorf("value is not serializable: %w", err)
	}
	if err := s.client.Set(ctx, s.key(key), raw, 0).Err(); err != nil {
		return nil, err
	}
	return true, nil
}

func (s *RedisStore) procDelete(ctx context.Context, args []any) (any, error) {
	key, err := stringArg(args, 0, "delete")
	if err != nil {
		return nil, err
	}
	n, err := s.client.Del(ctx, s.key(key)).Result()
	if err != nil {
		return nil, err
	}
	return n > 0, nil
}

func (s *RedisStore) procHas(ctx context.Context, args []any) (any, error) {
	key, err := stringArg(args, 0, "has")
	if err != nil {
		return nil, err
	}
	n, err := s.client.Exists(ctx, s.key(key)).Result()
	if err != nil {
		return nil, err
	}
	return n > 0, nil
}

func (s *RedisStore) procKeys(ctx context.Context, _ []any) (any, error) {
	keys, err := s.scanKeys(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k[len(s.prefix):]
	}
	return out, nil
}

func (s *RedisStore) procSnapshot(ctx context.Context, _ []any) (any, error) {
	keys, err := s.scanKeys(ctx)
	if err != nil {
		return nil, err
	}
	snapshot := make(map[string]any, len(keys))
	if len(keys) == 0 {
		return snapshot, nil
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	for i, k := range keys {
		if values[i] == nil {
			continue
		}
		raw, ok := values[i].(string)
		if !ok {
			continue
		}
		v, err := decodeValue(raw)
		if err != nil {
			return nil, err
		}
		snapshot[k[len(s.prefix):]] = v
	}
	return snapshot, nil
}

func (s *RedisStore) scanKeys(ctx context.Context) ([]string, error) {
	var keys []string
	var cursor uint64
	for {
		batch, next, err := s.client.Scan(ctx, cursor, s.prefix+"*", 100).Result()
		if err != nil {
			return nil, err
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			return keys, nil
		}
	}
}

func decodeValue(raw string) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, fmt.Errorf("corrupt stored value: %w", err)
	}
	return v, nil
}
