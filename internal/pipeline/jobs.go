package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/docoutline/internal/outline"
)

// JobStatus represents the state of a cache warming job.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusImporting JobStatus = "importing"
	StatusParsing   JobStatus = "parsing"
	StatusBuilding  JobStatus = "building"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
	StatusPartial   JobStatus = "partial"
)

// Job warms the outline cache of one document for a set of option variants.
type Job struct {
	mu sync.Mutex

	ID    string `json:"job_id"`
	DocID string `json:"doc_id"`

	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Filename string    `json:"filename,omitempty"`

	// Drop existing cache entries before warming.
	Refresh  bool              `json:"refresh"`
	Variants []outline.Options `json:"variants"`

	Progress Progress `json:"progress"`

	ContentHash string    `json:"content_hash,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Internal: not serialized.
	content  string
	fileData []byte
	errors   []string
}

// Progress tracks processing progress.
type Progress struct {
	TotalVariants int      `json:"total_variants"`
	VariantsDone  int      `json:"variants_done"`
	Pages         int      `json:"pages"`
	Headings      int      `json:"headings"`
	Nodes         []int    `json:"nodes"` // per variant, in request order
	Errors        []string `json:"errors"`
}

// NewJob returns a queued job with a fresh id. With no variants the default
// options are warmed.
func NewJob(docID string, variants []outline.Options) *Job {
	if len(variants) == 0 {
		variants = []outline.Options{outline.DefaultOptions()}
	}
	now := time.Now()
	return &Job{
		ID:        uuid.NewString(),
		DocID:     docID,
		Status:    StatusQueued,
		Phase:     "queued",
		Variants:  variants,
		Progress:  Progress{TotalVariants: len(variants), Nodes: make([]int, len(variants))},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Len returns the number of tracked jobs.
func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		updated := job.UpdatedAt
		job.mu.Unlock()
		if now.Sub(updated) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetParsed records the size of the parsed document.
func (j *Job) SetParsed(pages, headings int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Pages = pages
	j.Progress.Headings = headings
	j.UpdatedAt = time.Now()
}

// VariantDone records the node count of variant i.
func (j *Job) VariantDone(i, nodes int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if i >= 0 && i < len(j.Progress.Nodes) {
		j.Progress.Nodes[i] = nodes
	}
	j.Progress.VariantsDone++
	j.UpdatedAt = time.Now()
}

// SetContent sets the document markup to warm.
func (j *Job) SetContent(content string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.content = content
}

// Content returns the document markup.
func (j *Job) Content() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.content
}

// SetContentHash records the hash of the markup being warmed.
func (j *Job) SetContentHash(hash string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.ContentHash = hash
}

// SetFileData sets raw source file bytes to import before warming.
func (j *Job) SetFileData(data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = data
}

// FileData returns the raw file bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID          string    `json:"job_id"`
	DocID       string    `json:"doc_id"`
	Status      JobStatus `json:"status"`
	Phase       string    `json:"phase"`
	Filename    string    `json:"filename,omitempty"`
	ContentHash string    `json:"content_hash,omitempty"`
	Progress    Progress  `json:"progress"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := append([]string{}, j.Progress.Errors...)
	return JobSnapshot{
		ID:          j.ID,
		DocID:       j.DocID,
		Status:      j.Status,
		Phase:       j.Phase,
		Filename:    j.Filename,
		ContentHash: j.ContentHash,
		Progress: Progress{
			TotalVariants: j.Progress.TotalVariants,
			VariantsDone:  j.Progress.VariantsDone,
			Pages:         j.Progress.Pages,
			Headings:      j.Progress.Headings,
			Nodes:         append([]int{}, j.Progress.Nodes...),
			Errors:        errs,
		},
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
