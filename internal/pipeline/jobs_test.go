package pipeline

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/docoutline/internal/outline"
)

func TestContentHashHex_Consistency(t *testing.T) {
	data := []byte("hello world")
	h1 := ContentHashHex(data)
	h2 := ContentHashHex(data)
	if h1 != h2 {
		t.Errorf("expected identical hashes, got %q and %q", h1, h2)
	}
	// SHA-256 of "hello world" is well-known.
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if h1 != want {
		t.Errorf("expected hash %q, got %q", want, h1)
	}
}

func TestContentHashHex_DifferentInputs(t *testing.T) {
	h1 := ContentHashHex([]byte("aaa"))
	h2 := ContentHashHex([]byte("bbb"))
	if h1 == h2 {
		t.Error("expected different hashes for different inputs")
	}
}

func TestNewJob(t *testing.T) {
	job := NewJob("42", nil)
	if _, err := uuid.Parse(job.ID); err != nil {
		t.Errorf("expected uuid job id, got %q: %v", job.ID, err)
	}
	if job.Status != StatusQueued {
		t.Errorf("expected queued, got %q", job.Status)
	}
	if len(job.Variants) != 1 || job.Variants[0] != outline.DefaultOptions() {
		t.Errorf("expected default variant, got %+v", job.Variants)
	}
	if job.Progress.TotalVariants != 1 || len(job.Progress.Nodes) != 1 {
		t.Errorf("unexpected progress: %+v", job.Progress)
	}
	if NewJob("42", nil).ID == job.ID {
		t.Error("expected distinct job ids")
	}
}

func TestJob_StateTransitions(t *testing.T) {
	job := NewJob("42", nil)

	transitions := []struct {
		status JobStatus
		phase  string
	}{
		{StatusImporting, "importing"},
		{StatusParsing, "parsing"},
		{StatusBuilding, "building"},
		{StatusCompleted, "done"},
	}

	for _, tr := range transitions {
		before := job.UpdatedAt
		// Small sleep to ensure time difference is detectable.
		time.Sleep(time.Millisecond)
		job.SetStatus(tr.status, tr.phase)

		if job.Status != tr.status {
			t.Errorf("expected status %q, got %q", tr.status, job.Status)
		}
		if job.Phase != tr.phase {
			t.Errorf("expected phase %q, got %q", tr.phase, job.Phase)
		}
		if !job.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", tr.status)
		}
	}
}

func TestJob_AddError(t *testing.T) {
	job := &Job{ID: "err-test", UpdatedAt: time.Now()}
	job.AddError("variant 0 failed")
	job.AddError("variant 2 failed")

	snap := job.Snapshot()
	if len(snap.Progress.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(snap.Progress.Errors))
	}
	if snap.Progress.Errors[0] != "variant 0 failed" {
		t.Errorf("expected first error %q, got %q", "variant 0 failed", snap.Progress.Errors[0])
	}
}

func TestJob_VariantDone(t *testing.T) {
	job := NewJob("42", []outline.Options{{Depth: 1}, {Depth: 5}})
	job.VariantDone(1, 7)
	job.VariantDone(0, 3)
	job.VariantDone(9, 1) // out of range: counted, not stored

	snap := job.Snapshot()
	if snap.Progress.VariantsDone != 3 {
		t.Errorf("expected 3 variants done, got %d", snap.Progress.VariantsDone)
	}
	if snap.Progress.Nodes[0] != 3 || snap.Progress.Nodes[1] != 7 {
		t.Errorf("expected nodes [3 7], got %v", snap.Progress.Nodes)
	}
}

func TestJob_SetParsed(t *testing.T) {
	job := &Job{ID: "parsed"}
	job.SetParsed(2, 9)
	snap := job.Snapshot()
	if snap.Progress.Pages != 2 || snap.Progress.Headings != 9 {
		t.Errorf("unexpected progress: %+v", snap.Progress)
	}
}

func TestJob_ContentAndFileData(t *testing.T) {
	job := &Job{ID: "data-test"}
	job.SetContent("<h2>A</h2>")
	job.SetFileData([]byte("file content here"))
	if job.Content() != "<h2>A</h2>" {
		t.Errorf("unexpected content %q", job.Content())
	}
	if string(job.FileData()) != "file content here" {
		t.Errorf("unexpected file data %q", job.FileData())
	}
}

func TestJob_SnapshotIsCopy(t *testing.T) {
	job := NewJob("42", nil)
	snap := job.Snapshot()
	if snap.Progress.Errors == nil {
		t.Error("expected non-nil errors slice in snapshot")
	}
	snap.Progress.Nodes[0] = 99
	if job.Snapshot().Progress.Nodes[0] == 99 {
		t.Error("expected snapshot to be detached from the job")
	}
}

func TestJobStore_PutGet(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := &Job{ID: "store-1", UpdatedAt: time.Now()}
	store.Put(job)

	got := store.Get("store-1")
	if got == nil {
		t.Fatal("expected to get job back")
	}
	if got.ID != "store-1" {
		t.Errorf("expected ID %q, got %q", "store-1", got.ID)
	}
	if store.Get("nonexistent") != nil {
		t.Error("expected nil for missing job")
	}
}

func TestJobStore_TTLCleanup(t *testing.T) {
	store := NewJobStore(50 * time.Millisecond)

	expired := &Job{ID: "old", UpdatedAt: time.Now()}
	store.Put(expired)

	// Wait for the TTL to pass.
	time.Sleep(100 * time.Millisecond)

	fresh := &Job{ID: "new", UpdatedAt: time.Now()}
	store.Put(fresh)

	store.Cleanup()

	if store.Get("old") != nil {
		t.Error("expected expired job to be cleaned up")
	}
	if store.Get("new") == nil {
		t.Error("expected fresh job to survive cleanup")
	}
	if store.Len() != 1 {
		t.Errorf("expected 1 job left, got %d", store.Len())
	}
}
