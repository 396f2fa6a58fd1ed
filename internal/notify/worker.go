package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/riverqueue/river"
)

// RecordWaitEventArgs is the queue payload for recording that a caller
// entered a waiting state. Delivery to a human (email/SMS) is out of scope;
// the record is the contract.
type RecordWaitEventArgs struct {
	EventKind string  `json:"kind"`
	Handle    string  `json:"handle"`
	RefID     *string `json:"ref_id,omitempty"`
}

func (RecordWaitEventArgs) Kind() string { return "record_wait_event" }

// InsertTxFunc enqueues a RecordWaitEvent job within the given transaction.
// Provided by main using river.Client.InsertTx so the enqueue commits or
// rolls back together with the row that entered the waiting state.
type InsertTxFunc func(ctx context.Context, tx pgx.Tx, args RecordWaitEventArgs) error

// EventStore is the minimal persistence interface the worker needs.
type EventStore interface {
	Create(ctx context.Context, kind, handle string, refID *string) error
}

type RecordWaitEventWorker struct {
	river.WorkerDefaults[RecordWaitEventArgs]
	store EventStore
	log   *slog.Logger
}

func NewRecordWaitEventWorker(store EventStore, log *slog.Logger) *RecordWaitEventWorker {
	if log == nil {
		log = slog.Default()
	}
	return &RecordWaitEventWorker{store: store, log: log}
}

func (w *RecordWaitEventWorker) Work(ctx context.Context, job *river.Job[RecordWaitEventArgs]) error {
	args := job.Args
	if err := w.store.Create(ctx, args.EventKind, args.Handle, args.RefID); err != nil {
		return fmt.Errorf("record wait event %q for %q: %w", args.EventKind, args.Handle, err)
	}
	w.log.Info("wait event recorded", "kind", args.EventKind, "handle", args.Handle)
	return nil
}
