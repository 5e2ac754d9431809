package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/local/outliner/internal/metrics"
	"github.com/local/outliner/internal/queue"
	"github.com/local/outliner/internal/store"
)

// Job is the queue payload for one outline request.
type Job struct {
	ID       string `json:"job_id"`
	Ref      string `json:"ref"`
	Attempts int    `json:"attempts"`
}

// Worker consumes outline jobs from the Redis stream and runs them through
// the pipeline. Failed jobs are retried up to the configured attempt limit,
// then parked in the dead-letter stream.
type Worker struct {
	pipe *Pipeline
	q    *queue.RedisQueue
	st   *store.RedisStatus

	stop chan struct{}
	wg   sync.WaitGroup
}

// NewWorker wires a queue consumer around the pipeline.
func NewWorker(pipe *Pipeline, q *queue.RedisQueue, st *store.RedisStatus) *Worker {
	return &Worker{pipe: pipe, q: q, st: st, stop: make(chan struct{})}
}

// Start launches the consumer goroutines and the queue depth reporter.
func (w *Worker) Start() {
	n := w.pipe.cfg.Worker.Concurrency
	if n <= 0 {
		n = 1
	}
	for i := 0; i < n; i++ {
		w.wg.Add(1)
		go w.loop(i)
	}
	w.wg.Add(1)
	go w.reportDepths()
}

// Stop signals all goroutines and waits for in-flight jobs to finish.
func (w *Worker) Stop() {
	close(w.stop)
	w.wg.Wait()
}

func (w *Worker) loop(id int) {
	defer w.wg.Done()
	consumer := fmt.Sprintf("%s-%d", w.pipe.cfg.Queue.Consumer, id)
	log.Info().Int("worker", id).Str("consumer", consumer).Msg("queue worker started")

	for {
		select {
		case <-w.stop:
			log.Info().Int("worker", id).Msg("queue worker stopped")
			return
		default:
		}

		msgID, data, err := w.q.Dequeue(context.Background(), consumer, 2*time.Second)
		if err != nil {
			log.Error().Err(err).Msg("queue dequeue error")
			time.Sleep(500 * time.Millisecond)
			continue
		}
		if data == nil {
			time.Sleep(w.pipe.cfg.Queue.PollInterval)
			continue
		}
		w.handle(msgID, data)
	}
}

func (w *Worker) handle(msgID string, data []byte) {
	ctx := context.Background()

	var job Job
	if err := json.Unmarshal(data, &job); err != nil || job.Ref == "" {
		log.Error().Err(err).Str("msg_id", msgID).Msg("malformed job payload")
		_ = w.q.Ack(ctx, msgID)
		_ = w.q.AddDLQ(ctx, data, "malformed payload")
		return
	}

	now := time.Now()
	_ = w.st.Set(ctx, job.ID, store.Status{
		State: store.StateRunning,
		Ref:   job.Ref,
		Start: &now,
	})

	jobCtx, cancel := context.WithTimeout(ctx, w.pipe.cfg.Worker.JobTimeout)
	path, err := w.pipe.ProcessAndSave(jobCtx, job.Ref)
	cancel()

	// Ack either way; retries re-enter as fresh messages.
	_ = w.q.Ack(ctx, msgID)

	if err == nil {
		end := time.Now()
		_ = w.st.Set(ctx, job.ID, store.Status{
			State:      store.StateCompleted,
			Ref:        job.Ref,
			ResultPath: path,
			Start:      &now,
			End:        &end,
		})
		if data, rerr := os.ReadFile(path); rerr == nil {
			_ = w.st.SetResult(ctx, job.ID, json.RawMessage(data))
		}
		log.Info().Str("job_id", job.ID).Str("result", path).Msg("job completed")
		return
	}

	job.Attempts++
	if job.Attempts < w.pipe.cfg.Queue.MaxAttempts {
		payload, _ := json.Marshal(job)
		if qerr := w.q.Enqueue(ctx, payload); qerr == nil {
			_ = w.st.Set(ctx, job.ID, store.Status{
				State:   store.StateQueued,
				Ref:     job.Ref,
				Message: fmt.Sprintf("retry %d: %v", job.Attempts, err),
			})
			log.Warn().Err(err).Str("job_id", job.ID).Int("attempt", job.Attempts).Msg("job retried")
			return
		}
	}

	end := time.Now()
	_ = w.q.AddDLQ(ctx, data, err.Error())
	_ = w.st.Set(ctx, job.ID, store.Status{
		State:   store.StateFailed,
		Ref:     job.Ref,
		Message: err.Error(),
		Start:   &now,
		End:     &end,
	})
	log.Error().Err(err).Str("job_id", job.ID).Msg("job failed")
}

func (w *Worker) reportDepths() {
	defer w.wg.Done()
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-w.stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			stream, dlq, err := w.q.Depths(ctx)
			cancel()
			if err != nil {
				continue
			}
			metrics.SetQueueDepth("stream", stream)
			metrics.SetQueueDepth("dlq", dlq)
		}
	}
}
