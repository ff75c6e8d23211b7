package store

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"strings"

	"github.com/redis/go-redis/v9"

	errs "github.com/matzehuels/layerstack/pkg/errors"
	pkgio "github.com/matzehuels/layerstack/pkg/io"
)

// RedisConfig configures a [RedisStore].
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string // key prefix, default "layerstack:style:"
}

// DefaultRedisPrefix namespaces document keys.
const DefaultRedisPrefix = "layerstack:style:"

// RedisStore keeps each document as a JSON string under prefix+name.
// Suitable for multi-instance servers; revision checks use WATCH so
// concurrent writers from different processes cannot overwrite each other.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to Redis and verifies the connection with PING.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	if cfg.Addr == "" {
		return nil, errs.New(errs.ErrCodeInvalidInput, "redis store requires an address")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, unavailable(err, "ping redis at %s", cfg.Addr)
	}
	return newRedisStore(client, cfg.Prefix), nil
}

func newRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(name string) string { return s.prefix + name }

func (s *RedisStore) Get(ctx context.Context, name string) (*pkgio.Document, error) {
	if err := errs.ValidateDocumentName(name); err != nil {
		return nil, err
	}

	var data []byte
	err := RetryWithBackoff(ctx, func() error {
		var err error
		data, err = s.client.Get(ctx, s.key(name)).Bytes()
		return redisRetryable(err)
	})
	if errors.Is(err, redis.Nil) {
		return nil, notFound(name)
	}
	if err != nil {
		return nil, unavailable(err, "get %q", name)
	}
	return pkgio.ReadJSON(bytes.NewReader(data))
}

func (s *RedisStore) Put(ctx context.Context, name string, doc *pkgio.Document) error {
	if err := validate(name, doc); err != nil {
		return err
	}
	key := s.key(name)
	expected := doc.Revision

	var buf bytes.Buffer
	stored := stamp(name, doc)
	if err := pkgio.WriteJSON(stored, &buf); err != nil {
		doc.Revision = expected
		return err
	}

	txn := func(tx *redis.Tx) error {
		current, exists, err := redisRevision(ctx, tx, key)
		if err != nil {
			return err
		}
		if err := checkRevision(name, expected, current, exists); err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, buf.Bytes(), 0)
			return nil
		})
		return err
	}

	err := RetryWithBackoff(ctx, func() error {
		return redisRetryable(s.client.Watch(ctx, txn, key))
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, redis.TxFailedErr):
		err = errs.Wrap(errs.ErrCodeConflict, ErrConflict, "document %q changed during save", name)
	case errs.GetCode(err) == "":
		err = unavailable(err, "put %q", name)
	}
	doc.Revision = expected
	return err
}

// redisRevision reads the stored revision inside a WATCH transaction.
func redisRevision(ctx context.Context, tx *redis.Tx, key string) (string, bool, error) {
	data, err := tx.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	cur, err := pkgio.ReadJSON(bytes.NewReader(data))
	if err != nil {
		return "", false, err
	}
	return cur.Revision, true, nil
}

func (s *RedisStore) Delete(ctx context.Context, name string) error {
	if err := errs.ValidateDocumentName(name); err != nil {
		return err
	}
	err := RetryWithBackoff(ctx, func() error {
		return redisRetryable(s.client.Del(ctx, s.key(name)).Err())
	})
	if err != nil {
		return unavailable(err, "delete %q", name)
	}
	return nil
}

func (s *RedisStore) List(ctx context.Context) ([]string, error) {
	var names []string
	err := RetryWithBackoff(ctx, func() error {
		names = names[:0]
		iter := s.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
		for iter.Next(ctx) {
			names = append(names, strings.TrimPrefix(iter.Val(), s.prefix))
		}
		return redisRetryable(iter.Err())
	})
	if err != nil {
		return nil, unavailable(err, "list documents")
	}
	return sortedNames(names), nil
}

// Close closes the Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// redisRetryable marks connection-level failures as retryable. redis.Nil,
// transaction aborts and coded errors pass through unchanged.
func redisRetryable(err error) error {
	if err == nil || errors.Is(err, redis.Nil) || errors.Is(err, redis.TxFailedErr) {
		return err
	}
	var ne net.Error
	if errors.As(err, &ne) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return Retryable(err)
	}
	return err
}

var _ Store = (*RedisStore)(nil)
