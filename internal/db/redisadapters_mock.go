package db

import (
	"context"
	"encoding"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Implements the LimitedRedis client struct
// Only suitable for testing and development
// The value set for the IntCmd or similar results is always 1 regardless of how many records were affected
// Contexts are completely ignored
type MockRedisClient struct {
	lock     sync.Mutex
	store    map[string]map[string]any
	expiries map[string]time.Time
	now      func() time.Time
}

func NewMockRedisClient() *MockRedisClient {
	return &MockRedisClient{
		store:    map[string]map[string]any{},
		expiries: map[string]time.Time{},
		now:      time.Now,
	}
}

// NewMockRedisAdapter returns an adapter backed by a MockRedisClient, encryption is enabled
// when a key is passed.
func NewMockRedisAdapter(encryptionKey ...string) (RedisAdapter, *MockRedisClient) {
	client := NewMockRedisClient()
	db := RedisAdapter{rdb: client}
	if len(encryptionKey) > 0 {
		enc, err := NewGCMEncryptor(encryptionKey[0])
		if err != nil {
			panic(err)
		}
		db.encryptor = enc
	}
	return db, client
}

func convertValuesToMap(values ...any) (map[string]any, error) {
	if len(values)%2 != 0 {
		return map[string]any{}, fmt.Errorf("number of provided values must be even")
	}
	output := map[string]any{}
	for i := 0; i < len(values); i += 2 {
		key, ok := values[i].(string)
		if !ok {
			return map[string]any{}, fmt.Errorf("hash field names must be strings, got %T", values[i])
		}
		output[key] = values[i+1]
	}
	return output, nil
}

// expireLocked drops the key if its expiry has passed, the lock must be held
func (m *MockRedisClient) expireLocked(key string) {
	expiry, found := m.expiries[key]
	if found && !m.now().Before(expiry) {
		delete(m.store, key)
		delete(m.expiries, key)
	}
}

func (m *MockRedisClient) HSet(_ context.Context, key string, values ...any) *redis.IntCmd {
	m.lock.Lock()
	defer m.lock.Unlock()
	res := redis.IntCmd{}
	val, err := convertValuesToMap(values...)
	if err != nil {
		res.SetErr(err)
		return &res
	}
	m.expireLocked(key)
	existing, found := m.store[key]
	if !found {
		existing = map[string]any{}
		m.store[key] = existing
	}
	for k, v := range val {
		existing[k] = v
	}
	res.SetVal(1)
	return &res
}

func (m *MockRedisClient) Del(_ context.Context, keys ...string) *redis.IntCmd {
	m.lock.Lock()
	defer m.lock.Unlock()
	for _, k := range keys {
		delete(m.store, k)
		delete(m.expiries, k)
	}
	res := redis.IntCmd{}
	res.SetVal(1)
	return &res
}

func (m *MockRedisClient) ExpireAt(_ context.Context, key string, tm time.Time) *redis.BoolCmd {
	m.lock.Lock()
	defer m.lock.Unlock()
	res := redis.BoolCmd{}
	m.expireLocked(key)
	if _, found := m.store[key]; !found {
		res.SetVal(false)
		return &res
	}
	m.expiries[key] = tm
	res.SetVal(true)
	return &res
}

func (m *MockRedisClient) Persist(_ context.Context, key string) *redis.BoolCmd {
	m.lock.Lock()
	defer m.lock.Unlock()
	res := redis.BoolCmd{}
	_, found := m.expiries[key]
	delete(m.expiries, key)
	res.SetVal(found)
	return &res
}

// TTL returns the remaining time to live of a key and whether the key has an expiry at all
func (m *MockRedisClient) TTL(key string) (time.Duration, bool) {
	m.lock.Lock()
	defer m.lock.Unlock()
	expiry, found := m.expiries[key]
	if !found {
		return 0, false
	}
	return expiry.Sub(m.now()), true
}

func (m *MockRedisClient) HGetAll(_ context.Context, key string) *redis.MapStringStringCmd {
	m.lock.Lock()
	defer m.lock.Unlock()
	res := redis.MapStringStringCmd{}
	res.SetVal(map[string]string{})
	res.SetErr(nil)
	m.expireLocked(key)
	val, found := m.store[key]
	if !found {
		return &res
	}
	output := map[string]string{}
	for k, v := range val {
		switch typed := v.(type) {
		case string:
			output[k] = typed
		case encoding.TextMarshaler:
			raw, err := typed.MarshalText()
			if err != nil {
				res.SetErr(err)
				return &res
			}
			output[k] = string(raw)
		default:
			output[k] = fmt.Sprint(typed)
		}
	}
	res.SetVal(output)
	return &res
}
