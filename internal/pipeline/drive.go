package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lotas/tabsalvage/internal/export"
	"github.com/lotas/tabsalvage/internal/firefox"
	"github.com/lotas/tabsalvage/internal/selection"
	"github.com/lotas/tabsalvage/internal/tabgroups"
	"github.com/lotas/tabsalvage/internal/types"
)

// Options tune a load.
type Options struct {
	MaxRatio int // decoded/compressed size guard; 0 means firefox.DefaultMaxRatio
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{MaxRatio: firefox.DefaultMaxRatio}
}

// Message is one progress report. Messages of one load arrive in the order
// the steps ran.
type Message struct {
	RecordID uuid.UUID
	Status   string
	Stage    Stage
	Err      error

	// Set once the session is parsed and its windows listed.
	Tree   *types.SessionTree
	Groups *types.AllTabGroups

	// Set once the preview is rendered.
	Preview    string
	HasPreview bool
}

// Failed reports whether the message ends its load with an error.
func (m Message) Failed() bool { return m.Err != nil }

func (r *FileRecord) message(status string) Message {
	return Message{RecordID: r.ID, Status: status, Stage: r.stage}
}

func (r *FileRecord) failed(status string, err error) Message {
	m := r.message(failure(status, err))
	m.Err = err
	return m
}

// Drive advances rec until it is parsed, reporting each step before running
// it, then lists its windows. It stops at the first error or when ctx is
// done. Step errors are wrapped with their failure status.
func Drive(ctx context.Context, rec *FileRecord, opts Options, emit func(Message)) (types.AllTabGroups, error) {
	steps := []struct {
		from    Stage
		status  string
		failure string
	}{
		{StageRaw, StatusDecompressing, StatusDecompressFail},
		{StageDecompressed, StatusParsing, StatusParseFailed},
	}
	for _, s := range steps {
		if rec.Stage() != s.from {
			continue
		}
		if err := ctx.Err(); err != nil {
			return types.AllTabGroups{}, err
		}
		emit(rec.message(s.status))
		if err := rec.Advance(opts.MaxRatio); err != nil {
			emit(rec.failed(s.failure, err))
			return types.AllTabGroups{}, fmt.Errorf("%s: %w", s.failure, err)
		}
	}

	groups, err := listGroups(rec.Tree())
	if err != nil {
		emit(rec.failed(StatusListFailed, err))
		return types.AllTabGroups{}, fmt.Errorf("%s: %w", StatusListFailed, err)
	}
	m := rec.message("")
	m.Tree = rec.Tree()
	m.Groups = &groups
	emit(m)
	return groups, nil
}

func listGroups(tree *types.SessionTree) (groups types.AllTabGroups, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%v", p)
		}
	}()
	if tree == nil {
		return groups, errors.New("session is not parsed")
	}
	return tabgroups.Extract(tree), nil
}

// Preview renders the text preview of a selection and reports it.
func Preview(rec *FileRecord, groups types.AllTabGroups, sel selection.GenerateOptions, emit func(Message)) (string, error) {
	emit(rec.message(StatusPreviewing))
	text, err := export.Preview(rec.Tree(), groups, sel)
	if err != nil {
		emit(rec.failed(StatusPreviewFailed, err))
		return "", err
	}
	m := rec.message(StatusLoaded)
	m.Preview = text
	m.HasPreview = true
	emit(m)
	return text, nil
}

// Save renders a selection and writes it to path.
func Save(rec *FileRecord, groups types.AllTabGroups, sel selection.GenerateOptions, path string, out export.OutputOptions, emit func(Message)) error {
	emit(rec.message(StatusSaving))
	data, err := export.Render(rec.Tree(), groups, sel, out.Format)
	if err == nil {
		err = export.WriteToFile(data, path, out)
	}
	if err != nil {
		emit(rec.failed(StatusSaveFailed, err))
		return err
	}
	emit(rec.message(StatusSaved))
	return nil
}
