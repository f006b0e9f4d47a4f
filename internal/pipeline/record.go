// Package pipeline moves a session file through its load stages and reports
// progress as ordered messages.
package pipeline

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/lotas/tabsalvage/internal/applog"
	"github.com/lotas/tabsalvage/internal/fileio"
	"github.com/lotas/tabsalvage/internal/firefox"
	"github.com/lotas/tabsalvage/internal/types"
)

// Stage is how far a FileRecord has been processed.
type Stage int

const (
	StageRaw Stage = iota
	StageDecompressed
	StageParsed
)

func (s Stage) String() string {
	switch s {
	case StageRaw:
		return "raw"
	case StageDecompressed:
		return "decompressed"
	case StageParsed:
		return "parsed"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// FileRecord is one load of one session file. Every load gets a fresh ID so
// results of an abandoned load can be told apart from the current one.
type FileRecord struct {
	ID         uuid.UUID
	SourcePath string

	stage   Stage
	payload []byte // container bytes at Raw, JSON at Decompressed
	tree    *types.SessionTree
}

// NewRecord creates an empty record at StageRaw.
func NewRecord(path string) *FileRecord {
	return &FileRecord{ID: uuid.New(), SourcePath: path, stage: StageRaw}
}

// FromBytes creates a record at StageRaw holding raw container bytes.
func FromBytes(path string, raw []byte) *FileRecord {
	r := NewRecord(path)
	r.payload = raw
	return r
}

// Load reads path into a new record.
func Load(path string) (*FileRecord, error) {
	r := NewRecord(path)
	if err := r.Read(); err != nil {
		return nil, err
	}
	return r, nil
}

// Read (re)loads the source file and resets the record to StageRaw.
func (r *FileRecord) Read() error {
	data, err := fileio.ReadFile(r.SourcePath)
	if err != nil {
		applog.Error("pipeline.read", err, "record", r.ID, "path", r.SourcePath)
		return err
	}
	r.stage = StageRaw
	r.payload = data
	r.tree = nil
	applog.Info("pipeline.read", "record", r.ID, "path", r.SourcePath, "size", humanize.Bytes(uint64(len(data))))
	return nil
}

// Stage returns the current stage.
func (r *FileRecord) Stage() Stage { return r.stage }

// Tree returns the parsed session, or nil before StageParsed.
func (r *FileRecord) Tree() *types.SessionTree { return r.tree }

// Size returns the length of the data held for the current stage.
func (r *FileRecord) Size() int { return len(r.payload) }

// Advance performs the next transition. On failure the stage is unchanged
// and the same call may be retried. Advancing a parsed record does nothing.
func (r *FileRecord) Advance(maxRatio int) error {
	switch r.stage {
	case StageRaw:
		if r.payload == nil {
			panic("pipeline: advancing a raw record with no data")
		}
		plain, err := firefox.DecompressMozLz4Limit(r.payload, maxRatio)
		if err != nil {
			applog.Error("pipeline.decode", err, "record", r.ID)
			return err
		}
		applog.Info("pipeline.decoded", "record", r.ID,
			"compressed", humanize.Bytes(uint64(len(r.payload))),
			"plain", humanize.Bytes(uint64(len(plain))))
		r.payload = plain
		r.stage = StageDecompressed
	case StageDecompressed:
		if r.payload == nil {
			panic("pipeline: advancing a decompressed record with no data")
		}
		tree, err := firefox.ParseSession(r.payload)
		if err != nil {
			applog.Error("pipeline.parse", err, "record", r.ID)
			return err
		}
		applog.Info("pipeline.parsed", "record", r.ID, "windows", len(tree.Windows), "tabs", tree.TabCount())
		r.tree = tree
		r.payload = nil
		r.stage = StageParsed
	}
	return nil
}
