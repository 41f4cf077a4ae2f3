package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/balcaohq/balcao-backend/pkg/logger"
)

const defaultIdleTTL = 4 * time.Hour

// idleSweeper cancels terminal sessions idle past a cutoff. The composition
// service implements it.
type idleSweeper interface {
	SweepIdle(ctx context.Context, cutoff time.Time) (int, error)
}

// SessionSweepJob cancels composition sessions abandoned at the counter. A
// terminal that crashes or walks away mid-order holds its slot until this
// reclaims it.
type SessionSweepJob struct {
	sweeper idleSweeper
	idleTTL time.Duration
	logg    *logger.Logger
	now     func() time.Time
}

// NewSessionSweepJob builds the sweep job.
func NewSessionSweepJob(sweeper idleSweeper, idleTTL time.Duration, logg *logger.Logger) (*SessionSweepJob, error) {
	if sweeper == nil {
		return nil, fmt.Errorf("session sweeper required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if idleTTL <= 0 {
		idleTTL = defaultIdleTTL
	}
	return &SessionSweepJob{
		sweeper: sweeper,
		idleTTL: idleTTL,
		logg:    logg,
		now:     time.Now,
	}, nil
}

func (j *SessionSweepJob) Name() string {
	return "session_sweep"
}

func (j *SessionSweepJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.idleTTL)
	swept, err := j.sweeper.SweepIdle(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("sweeping idle sessions: %w", err)
	}
	if swept > 0 {
		j.logg.Info(j.logg.WithField(ctx, "swept", swept), "idle sessions cancelled")
	}
	return nil
}
