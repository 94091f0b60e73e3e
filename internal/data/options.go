package data

import (
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// SnapshotSink receives every published snapshot of a collection. *store.Saver
// implements it.
type SnapshotSink[T any] interface {
	Enqueue(snapshot []T)
}

type options struct {
	log   logrus.FieldLogger
	now   func() time.Time
	newID func() string
}

type Option func(*options)

func WithLogger(log logrus.FieldLogger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// WithClock overrides the time source used for slug disambiguation.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithIDGenerator overrides how item ids are minted.
func WithIDGenerator(newID func() string) Option {
	return func(o *options) {
		if newID != nil {
			o.newID = newID
		}
	}
}

func buildOptions(opts []Option) options {
	discard := logrus.New()
	discard.SetLevel(logrus.PanicLevel)
	o := options{
		log:   discard,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
