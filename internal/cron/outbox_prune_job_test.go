package cron

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/db/dbtest"
	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/db/models"
	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/enums"
	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/logger"
	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/outbox"
)

type recordingPruner struct {
	cutoffs  []time.Time
	attempts int
	err      error
}

func (r *recordingPruner) DeletePublishedBefore(_ context.Context, _ *gorm.DB, cutoff time.Time, attempts int) (int64, error) {
	r.cutoffs = append(r.cutoffs, cutoff)
	r.attempts = attempts
	return 3, r.err
}

func TestOutboxPruneDefaults(t *testing.T) {
	clock := time.Date(2025, 7, 10, 15, 0, 0, 0, time.FixedZone("PHT", 8*3600))
	pruner := &recordingPruner{}
	job, err := NewOutboxPrune(OutboxPrune{Logger: logger.Nop(), Outbox: pruner, Now: func() time.Time { return clock }})
	require.NoError(t, err)

	require.NoError(t, job.Run(context.Background()))
	require.Len(t, pruner.cutoffs, 1)
	assert.Equal(t, time.Date(2025, 6, 10, 7, 0, 0, 0, time.UTC), pruner.cutoffs[0])
	assert.Equal(t, defaultDeadLetters, pruner.attempts)
	assert.Equal(t, "outbox-prune", job.Name())
}

func TestOutboxPruneWrapsError(t *testing.T) {
	job, err := NewOutboxPrune(OutboxPrune{Logger: logger.Nop(), Outbox: &recordingPruner{err: errors.New("db gone")}, KeepDays: 7})
	require.NoError(t, err)
	err = job.Run(context.Background())
	require.ErrorContains(t, err, "prune outbox before")
	require.ErrorContains(t, err, "db gone")
}

func TestNewOutboxPruneValidates(t *testing.T) {
	_, err := NewOutboxPrune(OutboxPrune{Outbox: &recordingPruner{}})
	require.Error(t, err)
	_, err = NewOutboxPrune(OutboxPrune{Logger: logger.Nop()})
	require.Error(t, err)
}

func TestOutboxPruneKeepsRecentAndPendingEvents(t *testing.T) {
	client := dbtest.New(t)
	conn := client.DB()
	now := time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC)
	longAgo := now.AddDate(0, 0, -40)
	lastWeek := now.AddDate(0, 0, -7)

	insert := func(published *time.Time, attempts int) {
		require.NoError(t, conn.Create(&models.OutboxEvent{
			EventType:     enums.EventOrderStatusChanged,
			AggregateType: enums.AggregateOrder,
			AggregateID:   uuid.New(),
			Payload:       json.RawMessage(`{}`),
			CreatedAt:     longAgo,
			PublishedAt:   published,
			AttemptCount:  attempts,
		}).Error)
	}
	insert(&longAgo, 1)
	insert(&lastWeek, 1)
	insert(nil, 2)
	insert(nil, 12)

	job, err := NewOutboxPrune(OutboxPrune{
		Logger: logger.Nop(),
		Outbox: outbox.NewRepository(conn),
		Now:    func() time.Time { return now },
	})
	require.NoError(t, err)
	require.NoError(t, job.Run(context.Background()))

	var left []models.OutboxEvent
	require.NoError(t, conn.Order("attempt_count").Find(&left).Error)
	require.Len(t, left, 2)
	assert.NotNil(t, left[0].PublishedAt)
	assert.Nil(t, left[1].PublishedAt)
	assert.Equal(t, 2, left[1].AttemptCount)
}
