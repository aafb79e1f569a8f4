package temple

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	backend "github.com/redis/go-redis/v9"
)

// RedisSource stores each template as a hash under prefix+name and keeps
// the set of names under prefix+"index".
type RedisSource struct {
	client *backend.Client
	prefix string
	mu     sync.RWMutex
	closed bool
}

// RedisOption configures a RedisSource.
type RedisOption func(*RedisSource)

// WithRedisPrefix sets the key prefix.
func WithRedisPrefix(prefix string) RedisOption {
	return func(s *RedisSource) {
		s.prefix = prefix
	}
}

// RedisSourceDriver opens RedisSource instances.
type RedisSourceDriver struct{}

func init() {
	RegisterSourceDriver(SourceDriverRedis, &RedisSourceDriver{})
}

// Open creates a RedisSource from a redis:// URL.
func (d *RedisSourceDriver) Open(dsn string) (TemplateSource, error) {
	if dsn == "" {
		return nil, NewSourceError(ErrMsgSourceEmptyDSN, SourceDriverRedis, nil)
	}
	opts, err := backend.ParseURL(dsn)
	if err != nil {
		return nil, NewSourceError(ErrMsgSourceConnectFailed, SourceDriverRedis, err)
	}
	client := backend.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), SQLDefaultQueryTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, NewSourceError(ErrMsgSourceConnectFailed, SourceDriverRedis, err)
	}
	return NewRedisSource(client), nil
}

// NewRedisSource creates a source from an existing client.
func NewRedisSource(client *backend.Client, opts ...RedisOption) *RedisSource {
	s := &RedisSource{
		client: client,
		prefix: RedisDefaultPrefix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisSource) key(name string) string {
	return s.prefix + name
}

func (s *RedisSource) indexKey() string {
	return s.prefix + RedisIndexSuffix
}

// Get retrieves a template by name.
func (s *RedisSource) Get(ctx context.Context, name string) (*SourceRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewSourceClosedError()
	}

	fields, err := s.client.HGetAll(ctx, s.key(name)).Result()
	if err != nil {
		return nil, NewSourceError(ErrMsgSourceQueryFailed, name, err)
	}
	body, ok := fields[RedisFieldBody]
	if !ok {
		return nil, NewSourceNotFoundError(name)
	}

	rec := &SourceRecord{ID: fields[RedisFieldID], Name: name, Body: body}
	if ms, err := strconv.ParseInt(fields[RedisFieldUpdated], 10, 64); err == nil {
		rec.UpdatedAt = time.UnixMilli(ms)
	}
	return rec, nil
}

// Save writes the template hash and indexes its name in one transaction.
func (s *RedisSource) Save(ctx context.Context, rec *SourceRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !validTemplateName(rec.Name) {
		return NewSourceError(ErrMsgInvalidTemplateName, rec.Name, nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewSourceClosedError()
	}

	key := s.key(rec.Name)
	id, err := s.client.HGet(ctx, key, RedisFieldID).Result()
	if err != nil && !errors.Is(err, backend.Nil) {
		return NewSourceError(ErrMsgSourceQueryFailed, rec.Name, err)
	}
	if id == "" {
		id = uuid.NewString()
	}
	now := time.Now()

	_, err = s.client.TxPipelined(ctx, func(pipe backend.Pipeliner) error {
		pipe.HSet(ctx, key,
			RedisFieldID, id,
			RedisFieldBody, rec.Body,
			RedisFieldUpdated, strconv.FormatInt(now.UnixMilli(), 10))
		pipe.SAdd(ctx, s.indexKey(), rec.Name)
		return nil
	})
	if err != nil {
		return NewSourceError(ErrMsgSourceWriteFailed, rec.Name, err)
	}

	rec.ID = id
	rec.UpdatedAt = time.UnixMilli(now.UnixMilli())
	return nil
}

// Delete removes a template and its index entry.
func (s *RedisSource) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewSourceClosedError()
	}

	var del *backend.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe backend.Pipeliner) error {
		del = pipe.Del(ctx, s.key(name))
		pipe.SRem(ctx, s.indexKey(), name)
		return nil
	})
	if err != nil {
		return NewSourceError(ErrMsgSourceWriteFailed, name, err)
	}
	if del.Val() == 0 {
		return NewSourceNotFoundError(name)
	}
	return nil
}

// List returns all indexed template names in sorted order.
func (s *RedisSource) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewSourceClosedError()
	}

	names, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, NewSourceError(ErrMsgSourceListFailed, s.indexKey(), err)
	}
	sort.Strings(names)
	return names, nil
}

// Close closes the underlying client.
func (s *RedisSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewSourceClosedError()
	}
	s.closed = true
	return s.client.Close()
}
