package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/Leasebot-Tour-Booking-Dialogue/agent/contract"
)

const (
	defaultQueueKey   = "leasebot:notify:retry"
	defaultMaxRetries = 5
	popBlock          = 5 * time.Second
)

// RetryJob is a confirmation whose first delivery failed, parked for
// out-of-band redelivery.
type RetryJob struct {
	ID           string                 `json:"id"`
	Confirmation contractx.Confirmation `json:"confirmation"`
	Attempts     int                    `json:"attempts"`
	EnqueuedAt   time.Time              `json:"enqueued_at"`
}

type RetryQueue interface {
	Enqueue(ctx context.Context, job RetryJob) error
}

// RedisRetryQueue parks failed confirmations in a redis list.
type RedisRetryQueue struct {
	client *redis.Client
	key    string
}

var _ RetryQueue = (*RedisRetryQueue)(nil)

func NewRedisRetryQueue(client *redis.Client) *RedisRetryQueue {
	return &RedisRetryQueue{client: client, key: defaultQueueKey}
}

func (q *RedisRetryQueue) Enqueue(ctx context.Context, job RetryJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.EnqueuedAt.IsZero() {
		job.EnqueuedAt = time.Now().UTC()
	}
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("notify: marshal retry job: %w", err)
	}
	if err := q.client.LPush(ctx, q.key, payload).Err(); err != nil {
		return fmt.Errorf("notify: enqueue retry job: %w", err)
	}
	return nil
}

// StartWorker drains the retry list until ctx is done. A job that keeps
// failing is dropped after maxRetries with a distinct log record, so a
// booking with an undeliverable confirmation remains observable.
func (q *RedisRetryQueue) StartWorker(ctx context.Context, notifier contractx.Notifier) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			res, err := q.client.BRPop(ctx, popBlock, q.key).Result()
			if err != nil {
				if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) {
					continue
				}
				log.Error().Err(err).Msg("notify retry: pop failed")
				time.Sleep(popBlock)
				continue
			}
			if len(res) < 2 {
				continue
			}

			var job RetryJob
			if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
				log.Error().Err(err).Msg("notify retry: bad job payload dropped")
				continue
			}

			err = notifier.SendConfirmation(ctx, job.Confirmation)
			if err == nil {
				log.Info().Str("job_id", job.ID).Str("email", job.Confirmation.Email).
					Int("attempts", job.Attempts+1).Msg("confirmation delivered on retry")
				continue
			}

			job.Attempts++
			if job.Attempts >= defaultMaxRetries {
				log.Error().Str("job_id", job.ID).Str("email", job.Confirmation.Email).
					Int("attempts", job.Attempts).Msg("confirmation undeliverable, giving up")
				continue
			}
			log.Warn().Err(err).Str("job_id", job.ID).Int("attempts", job.Attempts).
				Msg("confirmation retry failed, requeueing")
			if qerr := q.Enqueue(ctx, job); qerr != nil {
				log.Error().Err(qerr).Str("job_id", job.ID).Msg("requeue failed, job lost")
			}
		}
	}()
}

// NopQueue is used when redis is not configured; failures are logged only.
type NopQueue struct{}

var _ RetryQueue = NopQueue{}

func (NopQueue) Enqueue(ctx context.Context, job RetryJob) error {
	log.Warn().Str("email", job.Confirmation.Email).
		Msg("no retry queue configured, confirmation will not be redelivered")
	return nil
}
