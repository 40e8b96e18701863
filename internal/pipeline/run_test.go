package pipeline

import (
	"sort"
	"strings"
	"testing"
	"time"
)

func TestRun_StateTransitions(t *testing.T) {
	run := NewRun()
	if run.Status != StatusQueued {
		t.Fatalf("expected new run to be queued, got %q", run.Status)
	}

	transitions := []struct {
		status RunStatus
		phase  string
	}{
		{StatusDiscovering, "discovering"},
		{StatusParsing, "parsing"},
		{StatusWriting, "writing"},
		{StatusIndexing, "indexing"},
		{StatusConverting, "converting"},
		{StatusCompleted, "done"},
	}

	for _, tr := range transitions {
		before := run.UpdatedAt
		// Small sleep to ensure time difference is detectable.
		time.Sleep(time.Millisecond)
		run.SetStatus(tr.status, tr.phase)

		if run.Status != tr.status {
			t.Errorf("expected status %q, got %q", tr.status, run.Status)
		}
		if run.Phase != tr.phase {
			t.Errorf("expected phase %q, got %q", tr.phase, run.Phase)
		}
		if !run.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", tr.status)
		}
	}
}

func TestRun_AddError(t *testing.T) {
	run := NewRun()
	run.AddError("open a.sv: permission denied")
	run.AddError("write page: disk full")

	snap := run.Snapshot()
	if len(snap.Progress.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(snap.Progress.Errors))
	}
	if snap.Progress.Errors[0] != "open a.sv: permission denied" {
		t.Errorf("unexpected first error %q", snap.Progress.Errors[0])
	}
}

func TestRun_SnapshotErrorsNeverNil(t *testing.T) {
	snap := NewRun().Snapshot()
	if snap.Progress.Errors == nil {
		t.Error("expected empty, non-nil errors slice")
	}
}

func TestRun_FileParsed(t *testing.T) {
	run := NewRun()
	run.SetFilesTotal(3)
	run.FileParsed(2, 1)
	run.FileParsed(0, 0)
	run.FileParsed(1, 0)
	run.PageWritten()

	p := run.Snapshot().Progress
	if p.FilesTotal != 3 || p.FilesParsed != 3 {
		t.Errorf("unexpected file counts %+v", p)
	}
	if p.FilesSkipped != 1 {
		t.Errorf("expected 1 skipped file, got %d", p.FilesSkipped)
	}
	if p.Definitions != 3 || p.Undocumented != 1 {
		t.Errorf("unexpected definition counts %+v", p)
	}
	if p.PagesWritten != 1 {
		t.Errorf("expected 1 page, got %d", p.PagesWritten)
	}
}

func TestULID_Format(t *testing.T) {
	id := generateULID()
	if len(id) != 26 {
		t.Fatalf("expected 26 characters, got %d (%q)", len(id), id)
	}
	for _, c := range id {
		if !strings.ContainsRune(crockford, c) {
			t.Errorf("unexpected character %q in %q", c, id)
		}
	}
}

func TestULID_SortsByTime(t *testing.T) {
	base := time.UnixMilli(1_700_000_000_000)
	ids := []string{
		newULID(base.Add(2 * time.Second)),
		newULID(base),
		newULID(base.Add(time.Second)),
	}
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	if sorted[0] != ids[1] || sorted[1] != ids[2] || sorted[2] != ids[0] {
		t.Errorf("ULIDs do not sort by time: %v", sorted)
	}
}

func TestULID_UniqueWithinMillisecond(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_123)
	seen := map[string]bool{}
	for range 100 {
		id := newULID(now)
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}

func TestEncodeULID_KnownValue(t *testing.T) {
	var b [16]byte
	b[15] = 1
	if got := encodeULID(b); got != "00000000000000000000000001" {
		t.Errorf("unexpected encoding %q", got)
	}
	for i := range b {
		b[i] = 0xff
	}
	if got := encodeULID(b); got != "7ZZZZZZZZZZZZZZZZZZZZZZZZZ" {
		t.Errorf("unexpected encoding %q", got)
	}
}

func TestNameAllocator(t *testing.T) {
	a := newNameAllocator()
	got := []string{a.next("fifo"), a.next("alu"), a.next("fifo"), a.next("fifo"), a.next("alu")}
	want := []string{"fifo", "alu", "fifo_2", "fifo_3", "alu_2"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("next #%d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestNameAllocator_SkipsTakenSuffixes(t *testing.T) {
	tests := []struct {
		names []string
		want  []string
	}{
		{[]string{"foo", "foo", "foo_2"}, []string{"foo", "foo_2", "foo_2_2"}},
		{[]string{"foo_2", "foo", "foo"}, []string{"foo_2", "foo", "foo_3"}},
		{[]string{"foo_3", "foo", "foo", "foo", "foo"}, []string{"foo_3", "foo", "foo_2", "foo_4", "foo_5"}},
	}
	for _, tt := range tests {
		a := newNameAllocator()
		for i, name := range tt.names {
			if got := a.next(name); got != tt.want[i] {
				t.Errorf("%v: next #%d: expected %q, got %q", tt.names, i, tt.want[i], got)
			}
		}
	}
}
