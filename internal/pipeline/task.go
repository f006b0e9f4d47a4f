package pipeline

import (
	"context"

	"github.com/google/uuid"
	"github.com/lotas/tabsalvage/internal/applog"
)

const taskBuffer = 16

// Task is a load running on its own goroutine.
type Task struct {
	rec    *FileRecord
	msgs   chan Message
	cancel context.CancelFunc
	done   chan struct{}
}

// Spawn reads path, drives it to the parsed stage and lists its windows in
// the background. Messages is closed when the work ends. Previews are left
// to the consumer, which knows the current selection.
func Spawn(ctx context.Context, path string, opts Options) *Task {
	ctx, cancel := context.WithCancel(ctx)
	t := &Task{
		rec:    NewRecord(path),
		msgs:   make(chan Message, taskBuffer),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go t.run(ctx, opts)
	return t
}

// ID identifies the record this task loads.
func (t *Task) ID() uuid.UUID { return t.rec.ID }

// Record returns the record being loaded. Read it only after a message
// carrying Groups has been received.
func (t *Task) Record() *FileRecord { return t.rec }

// Messages delivers progress in emission order.
func (t *Task) Messages() <-chan Message { return t.msgs }

// Cancel stops the task before its next step. Messages not yet delivered
// may be dropped.
func (t *Task) Cancel() { t.cancel() }

// Wait blocks until the worker has exited.
func (t *Task) Wait() { <-t.done }

func (t *Task) run(ctx context.Context, opts Options) {
	defer close(t.done)
	defer close(t.msgs)
	defer t.cancel()

	emit := func(m Message) {
		select {
		case t.msgs <- m:
		case <-ctx.Done():
		}
	}

	applog.Info("pipeline.spawn", "record", t.rec.ID, "path", t.rec.SourcePath)
	emit(t.rec.message(StatusReading))
	if err := t.rec.Read(); err != nil {
		emit(t.rec.failed(StatusReadFailed, err))
		return
	}

	if _, err := Drive(ctx, t.rec, opts, emit); err != nil {
		applog.Debug("pipeline.stopped", "record", t.rec.ID, "err", err)
	}
}
