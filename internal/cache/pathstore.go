package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/dgallion1/docoutline/internal/pathstore"
)

const pathstorePrefix = "outline/cache/"

// PathstoreStore keeps cache entries in a remote pathstore service.
// Transient failures (429, 5xx) are retried with backoff.
type PathstoreStore struct {
	client   *pathstore.Client
	attempts uint
	delay    time.Duration
	now      func() time.Time
}

func NewPathstoreStore(client *pathstore.Client) *PathstoreStore {
	return &PathstoreStore{
		client:   client,
		attempts: 3,
		delay:    200 * time.Millisecond,
		now:      time.Now,
	}
}

func (s *PathstoreStore) do(ctx context.Context, fn func() error) error {
	return retry.Do(fn,
		retry.Context(ctx),
		retry.Attempts(s.attempts),
		retry.Delay(s.delay),
		retry.DelayType(retry.BackOffDelay),
		retry.RetryIf(isRetryable),
		retry.LastErrorOnly(true),
	)
}

func isRetryable(err error) bool {
	var retryErr *pathstore.RetryableError
	return errors.As(err, &retryErr)
}

func (s *PathstoreStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var node *pathstore.NodeResponse
	err := s.do(ctx, func() error {
		var err error
		node, err = s.client.GetNode(ctx, pathstorePrefix+key)
		return err
	})
	if err != nil {
		return nil, false, err
	}
	if node == nil || node.Expired(s.now()) {
		return nil, false, nil
	}

	var value string
	if err := json.Unmarshal(node.Value, &value); err != nil {
		return nil, false, fmt.Errorf("decode pathstore value %s: %w", key, err)
	}
	return []byte(value), true, nil
}

func (s *PathstoreStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	req := pathstore.NodeRequest{
		Value:  string(value),
		Source: "docoutline",
	}
	if ttl > 0 {
		req.ExpiresAt = s.now().Add(ttl).UTC().Format(time.RFC3339Nano)
	}
	return s.do(ctx, func() error {
		return s.client.PutNode(ctx, pathstorePrefix+key, req)
	})
}

func (s *PathstoreStore) Delete(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		err := s.do(ctx, func() error {
			return s.client.DeleteNode(ctx, pathstorePrefix+k)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *PathstoreStore) Close() error {
	s.client.Close()
	return nil
}
