package cron

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	// LeaseName is shared by every cron-worker replica.
	LeaseName       = "cron:order-engine"
	defaultLeaseTTL = 5 * time.Minute
)

// Lock gives one replica at a time the right to run a cycle.
type Lock interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

type leaseStore interface {
	AcquireLease(ctx context.Context, name, owner string, ttl time.Duration) (bool, error)
	ReleaseLease(ctx context.Context, name, owner string) (bool, error)
}

// Lease is a Lock backed by an expiring Redis key. The TTL bounds how long a
// crashed replica can stall the sweep.
type Lease struct {
	store leaseStore
	name  string
	ttl   time.Duration
	owner string
}

func NewLease(store leaseStore, name string, ttl time.Duration) (*Lease, error) {
	switch {
	case store == nil:
		return nil, errors.New("lease store required")
	case name == "":
		return nil, errors.New("lease name required")
	}
	if ttl <= 0 {
		ttl = defaultLeaseTTL
	}
	return &Lease{store: store, name: name, ttl: ttl}, nil
}

func (l *Lease) Acquire(ctx context.Context) (bool, error) {
	owner := uuid.NewString()
	ok, err := l.store.AcquireLease(ctx, l.name, owner, l.ttl)
	if err != nil || !ok {
		return false, err
	}
	l.owner = owner
	return true, nil
}

// Release is a no-op once the lease expired and another replica took it.
func (l *Lease) Release(ctx context.Context) error {
	owner := l.owner
	if owner == "" {
		return nil
	}
	l.owner = ""
	_, err := l.store.ReleaseLease(ctx, l.name, owner)
	return err
}
