package pipeline

import (
	"sync"
	"time"
)

// RunStatus represents the state of a generation run.
type RunStatus string

const (
	StatusQueued      RunStatus = "queued"
	StatusDiscovering RunStatus = "discovering"
	StatusParsing     RunStatus = "parsing"
	StatusWriting     RunStatus = "writing"
	StatusIndexing    RunStatus = "indexing"
	StatusConverting  RunStatus = "converting"
	StatusCompleted   RunStatus = "completed"
	StatusFailed      RunStatus = "failed"
)

// Run tracks the state of a single generation run.
type Run struct {
	mu sync.Mutex

	ID     string    `json:"run_id"`
	Status RunStatus `json:"status"`
	Phase  string    `json:"phase"`

	Progress Progress `json:"progress"`

	StartedAt time.Time `json:"started_at"`
	UpdatedAt time.Time `json:"updated_at"`

	errors []string
}

// Progress counts what a run has processed so far.
type Progress struct {
	FilesTotal   int      `json:"files_total"`
	FilesParsed  int      `json:"files_parsed"`
	FilesSkipped int      `json:"files_skipped"` // No definitions
	Definitions  int      `json:"definitions"`
	Undocumented int      `json:"undocumented"`
	PagesWritten int      `json:"pages_written"`
	Errors       []string `json:"errors"`
}

// NewRun creates a queued run with a fresh ID.
func NewRun() *Run {
	now := time.Now()
	return &Run{
		ID:        generateULID(),
		Status:    StatusQueued,
		Phase:     "queued",
		StartedAt: now,
		UpdatedAt: now,
	}
}

// SetStatus updates run status atomically.
func (r *Run) SetStatus(status RunStatus, phase string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Status = status
	r.Phase = phase
	r.UpdatedAt = time.Now()
}

// AddError records an error.
func (r *Run) AddError(err string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, err)
	r.Progress.Errors = r.errors
	r.UpdatedAt = time.Now()
}

// SetFilesTotal records the number of discovered source files.
func (r *Run) SetFilesTotal(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Progress.FilesTotal = n
	r.UpdatedAt = time.Now()
}

// FileParsed records one parsed file and its definitions.
func (r *Run) FileParsed(definitions, undocumented int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Progress.FilesParsed++
	if definitions == 0 {
		r.Progress.FilesSkipped++
	}
	r.Progress.Definitions += definitions
	r.Progress.Undocumented += undocumented
	r.UpdatedAt = time.Now()
}

// PageWritten records one written documentation page.
func (r *Run) PageWritten() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Progress.PagesWritten++
	r.UpdatedAt = time.Now()
}

// RunSnapshot is a read-only, JSON-safe copy of run state.
type RunSnapshot struct {
	ID        string    `json:"run_id"`
	Status    RunStatus `json:"status"`
	Phase     string    `json:"phase"`
	Progress  Progress  `json:"progress"`
	StartedAt time.Time `json:"started_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the run state.
func (r *Run) Snapshot() RunSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.Progress
	p.Errors = append([]string{}, r.errors...)
	return RunSnapshot{
		ID:        r.ID,
		Status:    r.Status,
		Phase:     r.Phase,
		Progress:  p,
		StartedAt: r.StartedAt,
		UpdatedAt: r.UpdatedAt,
	}
}
