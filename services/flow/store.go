package flow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"clinicflow/models"

	"github.com/go-redis/redis/v8"
)

// Store is the keyed, TTL-backed storage for active booking flows. One
// non-expired flow exists per (clinic, patient phone); Redis TTL handles
// expiry.
type Store interface {
	Get(ctx context.Context, clinicID, patientPhone string) (*models.BookingFlow, error)
	Create(ctx context.Context, f *models.BookingFlow) error
	// Save persists a mutated flow, but only if the stored stage still equals
	// expectedState. Returns StaleFlowStateError otherwise.
	Save(ctx context.Context, f *models.BookingFlow, expectedState string) error
	// Expire shortens the flow's remaining TTL, used for post-terminal cleanup.
	Expire(ctx context.Context, clinicID, patientPhone string, ttl time.Duration) error
	Delete(ctx context.Context, clinicID, patientPhone string) error
}

// RedisStore implements Store on a dedicated Redis DB.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func flowKey(clinicID, patientPhone string) string {
	return fmt.Sprintf("flow:%s:%s", clinicID, patientPhone)
}

func (s *RedisStore) Get(ctx context.Context, clinicID, patientPhone string) (*models.BookingFlow, error) {
	raw, err := s.client.Get(ctx, flowKey(clinicID, patientPhone)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrFlowNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch booking flow: %w", err)
	}
	var f models.BookingFlow
	if err := json.Unmarshal([]byte(raw), &f); err != nil {
		return nil, fmt.Errorf("failed to parse booking flow: %w", err)
	}
	return &f, nil
}

func (s *RedisStore) Create(ctx context.Context, f *models.BookingFlow) error {
	f.ExpiresAt = time.Now().Add(s.ttl)
	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to marshal booking flow: %w", err)
	}
	key := flowKey(f.ClinicID, f.PatientPhone)
	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store booking flow: %w", err)
	}
	return nil
}

// Save re-reads the key under WATCH and only writes when the stored stage
// still matches the stage the caller read at fetch time. A concurrent update
// between read and write surfaces as StaleFlowStateError.
func (s *RedisStore) Save(ctx context.Context, f *models.BookingFlow, expectedState string) error {
	key := flowKey(f.ClinicID, f.PatientPhone)

	txn := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			return ErrFlowNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to fetch booking flow: %w", err)
		}
		var current models.BookingFlow
		if err := json.Unmarshal([]byte(raw), &current); err != nil {
			return fmt.Errorf("failed to parse booking flow: %w", err)
		}
		if current.State != expectedState {
			return &StaleFlowStateError{Expected: expectedState, Actual: current.State}
		}

		f.UpdatedAt = time.Now()
		f.ExpiresAt = f.UpdatedAt.Add(s.ttl)
		data, err := json.Marshal(f)
		if err != nil {
			return fmt.Errorf("failed to marshal booking flow: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, s.ttl)
			return nil
		})
		return err
	}

	err := s.client.Watch(ctx, txn, key)
	if errors.Is(err, redis.TxFailedErr) {
		return &StaleFlowStateError{Expected: expectedState, Actual: "unknown"}
	}
	return err
}

func (s *RedisStore) Expire(ctx context.Context, clinicID, patientPhone string, ttl time.Duration) error {
	if err := s.client.Expire(ctx, flowKey(clinicID, patientPhone), ttl).Err(); err != nil {
		return fmt.Errorf("failed to expire booking flow: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, clinicID, patientPhone string) error {
	if err := s.client.Del(ctx, flowKey(clinicID, patientPhone)).Err(); err != nil {
		return fmt.Errorf("failed to delete booking flow: %w", err)
	}
	return nil
}
