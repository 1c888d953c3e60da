// Package job queues and tracks asynchronous comparison jobs.
package job

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/googlegenomics/vcfdiff/analytics"
	"github.com/googlegenomics/vcfdiff/compare"
	"github.com/googlegenomics/vcfdiff/genomics"
)

// State describes the lifecycle position of a job.
type State string

const (
	// StatePending marks a job that has been accepted but not started.
	StatePending State = "pending"
	// StateRunning marks a job that is currently comparing records.
	StateRunning State = "running"
	// StateDone marks a job that finished successfully.
	StateDone State = "done"
	// StateFailed marks a job that stopped with an error.
	StateFailed State = "failed"
)

// Request describes a comparison to run.  The two VCF inputs must name
// tabix-indexed files reachable by the server (local paths, gs:// or s3://
// URLs).  Either a single region or a worker count with a chromosome
// lengths table may be provided, not both.
type Request struct {
	VCFA string `json:"vcf_a"`
	VCFB string `json:"vcf_b"`

	Truth string `json:"truth,omitempty"`
	Mask  string `json:"mask,omitempty"`

	Region     string `json:"region,omitempty"`
	Lengths    string `json:"lengths,omitempty"`
	Workers    int    `json:"workers,omitempty"`
	MinSegment uint32 `json:"min_segment,omitempty"`

	IndelWiden int64 `json:"indel_widen,omitempty"`
	SVWiden    int64 `json:"sv_widen,omitempty"`
}

// Validate reports the first problem that would prevent the request from
// running.
func (r *Request) Validate() error {
	if r.VCFA == "" || r.VCFB == "" {
		return errors.New("both vcf_a and vcf_b are required")
	}
	if r.Workers < 0 {
		return fmt.Errorf("invalid worker count %d", r.Workers)
	}
	if r.Workers > 0 && r.Lengths == "" {
		return errors.New("workers requires a chromosome lengths table")
	}
	if r.Workers > 0 && r.Region != "" {
		return errors.New("region and workers are mutually exclusive")
	}
	if r.IndelWiden < 0 || r.SVWiden < 0 {
		return errors.New("widen distances cannot be negative")
	}
	if _, err := genomics.ParseRegion(r.Region); err != nil {
		return err
	}
	return nil
}

// Summary is the JSON form of one per-kind category summary.
type Summary struct {
	Kind   string          `json:"kind"`
	Counts []compare.Count `json:"counts"`
}

// Job is one queued, running or finished comparison.
type Job struct {
	ID      string    `json:"id"`
	State   State     `json:"state"`
	Created time.Time `json:"created"`
	Request Request   `json:"request"`

	Summaries          []Summary `json:"summaries,omitempty"`
	Warnings           []string  `json:"warnings,omitempty"`
	MissedTruthRegions int       `json:"missed_truth_regions,omitempty"`
	Error              string    `json:"error,omitempty"`

	// done is closed when the job reaches a terminal state.
	done chan struct{}
}

// Runner executes a comparison request.
type Runner func(ctx context.Context, req Request) (*compare.Result, error)

// Store tracks comparison jobs in memory.  Jobs are kept for the lifetime
// of the process.
type Store struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ids  []string

	run    Runner
	report func(analytics.Hit)
}

// NewStore returns an empty store that executes submitted requests with run.
func NewStore(run Runner) *Store {
	return &Store{jobs: make(map[string]*Job), run: run}
}

// ReportTo registers a callback that receives job lifecycle hits.  It must
// be called before the store accepts jobs.
func (s *Store) ReportTo(report func(analytics.Hit)) {
	s.report = report
}

// Submit queues req and returns a snapshot of the new job.  The request
// must already be validated.
func (s *Store) Submit(req Request) Job {
	job := &Job{
		ID:      uuid.New().String(),
		State:   StatePending,
		Created: time.Now().UTC(),
		Request: req,
		done:    make(chan struct{}),
	}

	s.mu.Lock()
	s.jobs[job.ID] = job
	s.ids = append(s.ids, job.ID)
	snapshot := *job
	s.mu.Unlock()

	go s.execute(job.ID)
	return snapshot
}

// Get returns a snapshot of the job with the given ID.
func (s *Store) Get(id string) (Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

// List returns snapshots of all jobs in submission order.
func (s *Store) List() []Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	jobs := make([]Job, 0, len(s.ids))
	for _, id := range s.ids {
		jobs = append(jobs, *s.jobs[id])
	}
	return jobs
}

func (s *Store) execute(id string) {
	s.mu.Lock()
	job := s.jobs[id]
	job.State = StateRunning
	req := job.Request
	s.mu.Unlock()

	start := time.Now()
	result, err := s.run(context.Background(), req)
	elapsed := time.Since(start)

	s.mu.Lock()
	if err != nil {
		job.State = StateFailed
		job.Error = err.Error()
	} else {
		job.State = StateDone
		job.Summaries = makeSummaries(result.Summaries)
		job.Warnings = result.Warnings
		job.MissedTruthRegions = result.MissedTruthRegions
	}
	s.mu.Unlock()

	if err != nil {
		log.Printf("Comparison %s failed: %v", id, err)
	}
	if s.report != nil {
		if err != nil {
			s.report(analytics.Event("Comparisons", "Comparison Failed", "", nil))
		} else {
			s.report(analytics.Event("Comparisons", "Comparison Completed", "", nil))
		}
		s.report(analytics.Timing("Comparisons", "comparison", elapsed))
	}
	close(job.done)
}

func makeSummaries(summaries []*compare.Summary) []Summary {
	out := make([]Summary, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, Summary{Kind: s.Kind().String(), Counts: s.Counts()})
	}
	return out
}
