// Package worker persists conversation and recommendation records in the
// background so request handlers never wait on storage.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/ewilliams-labs/moodify/internal/core/domain"
	"github.com/ewilliams-labs/moodify/internal/core/ports"
	"github.com/ewilliams-labs/moodify/internal/logging"
	"github.com/ewilliams-labs/moodify/internal/metrics"
)

const (
	kindConversation   = "conversation"
	kindRecommendation = "recommendation"

	DefaultSaveTimeout = 5 * time.Second
)

// Job is a single record waiting to be written. Exactly one of the two
// fields is set.
type Job struct {
	Conversation   *domain.Conversation
	Recommendation *domain.Recommendation
}

func (j Job) kind() string {
	if j.Conversation != nil {
		return kindConversation
	}
	return kindRecommendation
}

// Pool manages background workers for persistence jobs.
type Pool struct {
	repo        ports.HistoryRepository
	jobs        chan Job
	wg          sync.WaitGroup
	saveTimeout time.Duration

	mu     sync.RWMutex
	closed bool
}

var _ ports.Recorder = (*Pool)(nil)

// NewPool creates a pool with the given queue size. Workers are launched
// by Start.
func NewPool(repo ports.HistoryRepository, queueSize int, saveTimeout time.Duration) *Pool {
	if queueSize < 1 {
		queueSize = 1
	}
	if saveTimeout <= 0 {
		saveTimeout = DefaultSaveTimeout
	}
	return &Pool{repo: repo, jobs: make(chan Job, queueSize), saveTimeout: saveTimeout}
}

// Start launches the worker goroutines.
func (p *Pool) Start(workers int) {
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				p.processJob(job)
			}
		}()
	}
}

// Stop closes the queue and waits for queued jobs to drain.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()
	p.wg.Wait()
}

// RecordConversation queues c for persistence.
func (p *Pool) RecordConversation(c domain.Conversation) {
	p.Submit(Job{Conversation: &c})
}

// RecordRecommendation queues r for persistence.
func (p *Pool) RecordRecommendation(r domain.Recommendation) {
	p.Submit(Job{Recommendation: &r})
}

// Submit queues a job without blocking. Jobs are dropped when the queue is
// full or the pool is stopped.
func (p *Pool) Submit(job Job) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		metrics.RecordRecorderDrop(job.kind())
		logging.Warn().Str("kind", job.kind()).Msg("worker: pool stopped, dropping job")
		return
	}
	select {
	case p.jobs <- job:
	default:
		metrics.RecordRecorderDrop(job.kind())
		logging.Warn().Str("kind", job.kind()).Msg("worker: queue full, dropping job")
	}
}

func (p *Pool) processJob(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), p.saveTimeout)
	defer cancel()

	var (
		err error
		id  string
	)
	switch {
	case job.Conversation != nil:
		id = job.Conversation.ID
		err = p.repo.SaveConversation(ctx, *job.Conversation)
	case job.Recommendation != nil:
		id = job.Recommendation.ID
		err = p.repo.SaveRecommendation(ctx, *job.Recommendation)
	default:
		return
	}
	metrics.RecordRecorderJob(job.kind(), err)
	if err != nil {
		logging.Error().Err(err).Str("kind", job.kind()).Str("id", id).Msg("worker: failed to persist record")
		return
	}
	logging.Debug().Str("kind", job.kind()).Str("id", id).Msg("worker: record persisted")
}
