package worker

// dlq.go: jobs that keep failing after the in-process retries land in
// dlq:{original_queue} for manual inspection or replay.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const DLQPrefix = "dlq:"

// DLQEntry wraps a failed job with metadata for debugging.
type DLQEntry struct {
	OriginalQueue string          `json:"original_queue"`
	JobType       string          `json:"job_type"`
	Payload       json.RawMessage `json:"payload"`
	Reason        string          `json:"reason"`
	FailedAt      string          `json:"failed_at"` // RFC 3339
	Attempts      int             `json:"attempts"`
}

// SendToDLQ pushes a failed job onto the dead letter list of queue.
func SendToDLQ(ctx context.Context, rdb *redis.Client, queue, jobType string, payload json.RawMessage, reason string, attempts int) {
	entry := DLQEntry{
		OriginalQueue: queue,
		JobType:       jobType,
		Payload:       payload,
		Reason:        reason,
		FailedAt:      time.Now().UTC().Format(time.RFC3339),
		Attempts:      attempts,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: marshal entry")
		return
	}
	key := DLQPrefix + queue
	if err := rdb.LPush(ctx, key, data).Err(); err != nil {
		log.Error().Err(err).Str("dlq_key", key).Msg("dlq: push failed")
		return
	}
	log.Warn().
		Str("queue", queue).
		Str("job_type", jobType).
		Str("reason", reason).
		Int("attempts", attempts).
		Msg("dlq: job moved to dead letter queue")
}

// DLQLength returns the number of entries waiting in the DLQ of queue.
func DLQLength(ctx context.Context, rdb *redis.Client, queue string) (int64, error) {
	return rdb.LLen(ctx, DLQPrefix+queue).Result()
}

// ReplayDLQ moves up to max entries back onto their original queue with a
// fresh attempt budget. It returns how many were moved.
func ReplayDLQ(ctx context.Context, rdb *redis.Client, queue string, max int) (int, error) {
	moved := 0
	for moved < max {
		raw, err := rdb.RPop(ctx, DLQPrefix+queue).Result()
		if err == redis.Nil {
			break
		}
		if err != nil {
			return moved, err
		}
		var entry DLQEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			log.Error().Err(err).Msg("dlq: dropping unreadable entry")
			continue
		}
		job, _ := json.Marshal(Job{Type: entry.JobType, Payload: entry.Payload})
		if err := rdb.LPush(ctx, entry.OriginalQueue, job).Err(); err != nil {
			return moved, err
		}
		moved++
	}
	return moved, nil
}
