package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"

	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/config"
	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/db/models"
	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/logger"
	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/outbox/codec"
)

const (
	defaultBatch       = 50
	defaultIdle        = 500 * time.Millisecond
	defaultMaxAttempts = 10
	maxRetryDelay      = 10 * time.Second
	publishTimeout     = 15 * time.Second
)

type rowStore interface {
	FetchUnpublishedForPublish(tx *gorm.DB, limit, maxAttempts int) ([]models.OutboxEvent, error)
	MarkPublishedTx(tx *gorm.DB, id uuid.UUID) error
	MarkFailedTx(tx *gorm.DB, id uuid.UUID, err error) error
	MarkTerminalTx(tx *gorm.DB, id uuid.UUID, err error, terminalAttempts int) error
}

type database interface {
	Ping(ctx context.Context) error
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type pinger interface {
	Ping(ctx context.Context) error
}

type sender interface {
	Send(ctx context.Context, msg *codec.Message) error
}

type RelayParams struct {
	Logger *logger.Logger
	DB     database
	Rows   rowStore
	Broker pinger
	Out    sender
	Outbox config.OutboxConfig
}

// Relay moves committed order events from outbox_events to Pub/Sub.
type Relay struct {
	logg        *logger.Logger
	db          database
	rows        rowStore
	broker      pinger
	out         sender
	batch       int
	maxAttempts int
	idle        time.Duration
}

func NewRelay(p RelayParams) (*Relay, error) {
	switch {
	case p.Logger == nil:
		return nil, errors.New("logger required")
	case p.DB == nil:
		return nil, errors.New("database required")
	case p.Rows == nil:
		return nil, errors.New("outbox repository required")
	case p.Broker == nil || p.Out == nil:
		return nil, errors.New("pubsub required")
	}
	r := &Relay{
		logg:        p.Logger,
		db:          p.DB,
		rows:        p.Rows,
		broker:      p.Broker,
		out:         p.Out,
		batch:       p.Outbox.BatchSize,
		maxAttempts: p.Outbox.MaxAttempts,
		idle:        time.Duration(p.Outbox.PollIntervalMS) * time.Millisecond,
	}
	if r.batch <= 0 {
		r.batch = defaultBatch
	}
	if r.maxAttempts <= 0 {
		r.maxAttempts = defaultMaxAttempts
	}
	if r.idle <= 0 {
		r.idle = defaultIdle
	}
	return r, nil
}

// Run drains the outbox until ctx ends. A full batch is followed by another
// right away; an empty one waits the poll interval; a failed one backs off.
func (r *Relay) Run(ctx context.Context) error {
	if err := r.db.Ping(ctx); err != nil {
		return fmt.Errorf("database not ready: %w", err)
	}
	if err := r.broker.Ping(ctx); err != nil {
		return fmt.Errorf("pubsub not ready: %w", err)
	}

	var wait time.Duration
	failures := 0
	for {
		if err := pause(ctx, wait); err != nil {
			return err
		}
		handled, err := r.drain(ctx)
		switch {
		case err != nil:
			failures++
			wait = retryDelay(r.idle, failures)
			r.logg.Error(r.logg.WithField(ctx, "retry_in_ms", wait.Milliseconds()), "outbox batch failed", err)
		case handled == 0:
			failures, wait = 0, r.idle
		default:
			failures, wait = 0, 0
		}
	}
}

// drain publishes one batch and reports how many rows left the queue. After a
// failed send, later events of the same order in the batch wait for the next
// pass so subscribers never see them out of order.
func (r *Relay) drain(ctx context.Context) (int, error) {
	handled := 0
	err := r.db.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := r.rows.FetchUnpublishedForPublish(tx, r.batch, r.maxAttempts)
		if err != nil {
			return fmt.Errorf("fetch outbox: %w", err)
		}
		held := map[uuid.UUID]bool{}
		for _, row := range rows {
			if held[row.AggregateID] {
				continue
			}
			done, err := r.deliver(ctx, tx, row)
			if err != nil {
				return err
			}
			if done {
				handled++
			} else {
				held[row.AggregateID] = true
			}
		}
		return nil
	})
	return handled, err
}

// deliver reports true once the row will not be fetched again.
func (r *Relay) deliver(ctx context.Context, tx *gorm.DB, row models.OutboxEvent) (bool, error) {
	ctx = r.logg.WithFields(ctx, map[string]any{
		"outbox_id":  row.ID.String(),
		"order_id":   row.AggregateID.String(),
		"event_type": row.EventType,
	})

	msg, err := codec.Decode(row)
	if err != nil {
		return true, r.park(ctx, tx, row, err)
	}
	ctx = r.logg.WithField(ctx, "event_id", msg.EventID)

	sendErr := r.out.Send(ctx, msg)
	if sendErr == nil {
		if err := r.rows.MarkPublishedTx(tx, row.ID); err != nil {
			return false, fmt.Errorf("mark %s published: %w", row.ID, err)
		}
		r.logg.Debug(ctx, "order event published")
		return true, nil
	}
	if rejected(sendErr) {
		return true, r.park(ctx, tx, row, sendErr)
	}

	attempt := row.AttemptCount + 1
	if attempt >= r.maxAttempts {
		return true, r.park(ctx, tx, row, fmt.Errorf("gave up after %d attempts: %w", attempt, sendErr))
	}
	r.logg.Warn(r.logg.WithFields(ctx, map[string]any{"attempt": attempt, "error": sendErr.Error()}), "order event publish failed")
	if err := r.rows.MarkFailedTx(tx, row.ID, sendErr); err != nil {
		return false, fmt.Errorf("mark %s failed: %w", row.ID, err)
	}
	return false, nil
}

// park stops retrying a row. It stays in the table with its last error until pruned.
func (r *Relay) park(ctx context.Context, tx *gorm.DB, row models.OutboxEvent, cause error) error {
	r.logg.Error(ctx, "order event parked", cause)
	if err := r.rows.MarkTerminalTx(tx, row.ID, cause, r.maxAttempts); err != nil {
		return fmt.Errorf("park %s: %w", row.ID, err)
	}
	return nil
}

// rejected reports broker answers that a retry cannot change.
func rejected(err error) bool {
	switch status.Code(err) {
	case codes.InvalidArgument, codes.NotFound, codes.PermissionDenied:
		return true
	}
	return false
}

func retryDelay(base time.Duration, failures int) time.Duration {
	d := base
	for i := 0; i < failures && d < maxRetryDelay; i++ {
		d *= 2
	}
	d = min(d, maxRetryDelay)
	return d + rand.N(base/2+1)
}

func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// topicSender publishes with the order ID as ordering key. A failed publish
// pauses that key inside the client, so it is resumed for the retry.
type topicSender struct {
	pub *gcppubsub.Publisher
}

func (s topicSender) Send(ctx context.Context, msg *codec.Message) error {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	_, err := s.pub.Publish(ctx, &gcppubsub.Message{
		Data:        msg.Data,
		Attributes:  msg.Attributes,
		OrderingKey: msg.OrderingKey,
	}).Get(ctx)
	if err != nil && msg.OrderingKey != "" {
		s.pub.ResumePublish(msg.OrderingKey)
	}
	return err
}
