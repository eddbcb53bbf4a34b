package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/leveling-api/pkg/jobs"
)

// JobTypeProgressionRebuild labels queued history replays.
const JobTypeProgressionRebuild = "progression_rebuild"

// RebuildScheduler queues progression rebuilds so entry writes return without
// waiting for the history replay.
type RebuildScheduler struct {
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewRebuildScheduler wires the queue that will execute rebuilds.
func NewRebuildScheduler(progression *ProgressionService, cfg jobs.QueueConfig) *RebuildScheduler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	handler := func(ctx context.Context, job jobs.Job) error {
		userID, ok := job.Payload.(string)
		if !ok || userID == "" {
			logger.Warn("rebuild job without user id", zap.String("job_id", job.ID))
			return nil
		}
		return progression.Rebuild(ctx, userID)
	}
	return &RebuildScheduler{
		queue:  jobs.NewQueue(JobTypeProgressionRebuild, handler, cfg),
		logger: logger,
	}
}

// Start launches the queue workers.
func (s *RebuildScheduler) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the queue workers.
func (s *RebuildScheduler) Stop() {
	s.queue.Stop()
}

// Schedule enqueues a rebuild for the user. Failures are logged, not
// propagated; a missed rebuild is recovered by the next write or a manual
// trigger.
func (s *RebuildScheduler) Schedule(userID string) {
	err := s.queue.Enqueue(jobs.Job{
		ID:      uuid.NewString(),
		Type:    JobTypeProgressionRebuild,
		Payload: userID,
	})
	if err != nil {
		s.logger.Warn("failed to enqueue progression rebuild", zap.String("user_id", userID), zap.Error(err))
	}
}
