package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/logger"
)

const (
	day                = 24 * time.Hour
	defaultKeepDays    = 30
	defaultDeadLetters = 10
)

type outboxPruner interface {
	DeletePublishedBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time, minAttemptCount int) (int64, error)
}

// OutboxPrune drops order events that were delivered, or gave up delivering,
// more than KeepDays ago.
type OutboxPrune struct {
	Logger   *logger.Logger
	Outbox   outboxPruner
	KeepDays int
	// GiveUpAttempts marks an unpublished row as dead once it reached this many attempts.
	GiveUpAttempts int
	Now            func() time.Time
}

func NewOutboxPrune(job OutboxPrune) (*OutboxPrune, error) {
	if job.Logger == nil {
		return nil, errors.New("logger required")
	}
	if job.Outbox == nil {
		return nil, errors.New("outbox repository required")
	}
	if job.KeepDays <= 0 {
		job.KeepDays = defaultKeepDays
	}
	if job.GiveUpAttempts <= 0 {
		job.GiveUpAttempts = defaultDeadLetters
	}
	if job.Now == nil {
		job.Now = time.Now
	}
	return &job, nil
}

func (*OutboxPrune) Name() string { return "outbox-prune" }

func (j *OutboxPrune) cutoff() time.Time {
	return j.Now().UTC().Add(-time.Duration(j.KeepDays) * day)
}

func (j *OutboxPrune) Run(ctx context.Context) error {
	cutoff := j.cutoff()
	n, err := j.Outbox.DeletePublishedBefore(ctx, nil, cutoff, j.GiveUpAttempts)
	if err != nil {
		return fmt.Errorf("prune outbox before %s: %w", cutoff.Format(time.DateOnly), err)
	}
	if n > 0 {
		j.Logger.Info(j.Logger.WithFields(ctx, map[string]any{"cutoff": cutoff, "deleted": n}), "outbox pruned")
	}
	return nil
}
