// Package store persists job status in Redis hashes so the API can answer
// GET /api/jobs/{id} without touching the worker.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// Job states.
const (
	StateQueued    = "queued"
	StateRunning   = "running"
	StateCompleted = "completed"
	StateFailed    = "failed"
)

// Status is the persisted view of one outline job.
type Status struct {
	State      string     `json:"state"`
	Ref        string     `json:"ref,omitempty"`
	Message    string     `json:"message,omitempty"`
	ResultPath string     `json:"result_path,omitempty"`
	Start      *time.Time `json:"start_time,omitempty"`
	End        *time.Time `json:"end_time,omitempty"`
}

// RedisStatus stores job status hashes under job:<id>:status.
type RedisStatus struct {
	client *redis.Client
	keyNS  string
	ttl    time.Duration
}

// NewRedisStatus connects to Redis. Completed statuses expire after a week.
func NewRedisStatus(redisURL string) (*RedisStatus, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	c := redis.NewClient(opt)
	if err := c.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}
	return &RedisStatus{client: c, keyNS: "job", ttl: 7 * 24 * time.Hour}, nil
}

func (s *RedisStatus) key(jobID string) string {
	return fmt.Sprintf("%s:%s:status", s.keyNS, jobID)
}

// Set writes the full status hash for a job.
func (s *RedisStatus) Set(ctx context.Context, jobID string, st Status) error {
	m := map[string]interface{}{
		"state":   st.State,
		"ref":     st.Ref,
		"message": st.Message,
		"result":  st.ResultPath,
	}
	if st.Start != nil {
		m["start"] = st.Start.Format(time.RFC3339Nano)
	}
	if st.End != nil {
		m["end"] = st.End.Format(time.RFC3339Nano)
	}
	key := s.key(jobID)
	if err := s.client.HSet(ctx, key, m).Err(); err != nil {
		return err
	}
	return s.client.Expire(ctx, key, s.ttl).Err()
}

// Get reads a job status. The bool reports whether the job exists.
func (s *RedisStatus) Get(ctx context.Context, jobID string) (Status, bool, error) {
	res, err := s.client.HGetAll(ctx, s.key(jobID)).Result()
	if err != nil {
		return Status{}, false, err
	}
	if len(res) == 0 {
		return Status{}, false, nil
	}
	st := Status{
		State:      res["state"],
		Ref:        res["ref"],
		Message:    res["message"],
		ResultPath: res["result"],
	}
	if v := res["start"]; v != "" {
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			st.Start = &t
		}
	}
	if v := res["end"]; v != "" {
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			st.End = &t
		}
	}
	return st, true, nil
}

// SetResult stores the finished outline JSON alongside the status so the API
// can return it inline.
func (s *RedisStatus) SetResult(ctx context.Context, jobID string, result any) error {
	b, err := json.Marshal(result)
	if err != nil {
		return err
	}
	key := fmt.Sprintf("%s:%s:result", s.keyNS, jobID)
	return s.client.Set(ctx, key, b, s.ttl).Err()
}

// GetResult fetches the stored outline JSON, if any.
func (s *RedisStatus) GetResult(ctx context.Context, jobID string) ([]byte, bool, error) {
	key := fmt.Sprintf("%s:%s:result", s.keyNS, jobID)
	b, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

// Ping checks connectivity for the status endpoint.
func (s *RedisStatus) Ping(ctx context.Context) error { return s.client.Ping(ctx).Err() }

func (s *RedisStatus) Close() error { return s.client.Close() }
