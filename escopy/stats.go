package escopy

import (
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/dataops-tools/escopy/pairs"
)

// Outcome is the result of copying a single index pair.
type Outcome struct {
	Pair pairs.IndexMapping

	// Documents is the number of documents read from the source index.
	Documents int64
	// Rejected is the number of documents the destination refused.
	Rejected int64

	Elapsed time.Duration
	Err     error
}

// RunStats aggregates per-index outcomes across a run. Safe for concurrent
// recording.
type RunStats struct {
	mu sync.Mutex

	startedAt time.Time
	elapsed   time.Duration

	succeeded []Outcome
	failed    []Outcome
}

func NewRunStats() *RunStats {
	return &RunStats{startedAt: time.Now()}
}

// Record files the outcome under succeeded or failed depending on its error.
func (s *RunStats) Record(o Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if o.Err != nil {
		s.failed = append(s.failed, o)

		return
	}

	s.succeeded = append(s.succeeded, o)
}

// Finish fixes the total elapsed time. Recording after Finish is allowed but
// does not extend it.
func (s *RunStats) Finish() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.elapsed = time.Since(s.startedAt)
}

func (s *RunStats) Succeeded() []Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]Outcome(nil), s.succeeded...)
}

func (s *RunStats) Failed() []Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]Outcome(nil), s.failed...)
}

func (s *RunStats) HasFailures() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.failed) != 0
}

// TotalDocuments is the number of documents read across all successfully
// copied indices.
func (s *RunStats) TotalDocuments() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total int64
	for _, o := range s.succeeded {
		total += o.Documents
	}

	return total
}

// Summary renders the end-of-run report.
func (s *RunStats) Summary() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total, rejected int64
	for _, o := range s.succeeded {
		total += o.Documents
		rejected += o.Rejected
	}

	elapsed := s.elapsed
	if elapsed == 0 {
		elapsed = time.Since(s.startedAt)
	}

	var b strings.Builder

	rule := strings.Repeat("=", 50)

	b.WriteString(rule + "\n")
	b.WriteString("Copy summary\n")
	b.WriteString(rule + "\n")
	b.WriteString("Elapsed time:       " + elapsed.Round(time.Millisecond).String() + "\n")
	b.WriteString("Indices copied:     " + humanize.Comma(int64(len(s.succeeded))) + "\n")
	b.WriteString("Indices failed:     " + humanize.Comma(int64(len(s.failed))) + "\n")
	b.WriteString("Documents copied:   " + humanize.Comma(total) + "\n")
	b.WriteString("Documents rejected: " + humanize.Comma(rejected) + "\n")

	if len(s.succeeded) != 0 {
		b.WriteString("\nCompleted:\n")

		for _, o := range s.succeeded {
			b.WriteString("  " + o.Pair.String() + ": " +
				humanize.Comma(o.Documents) + " documents in " +
				o.Elapsed.Round(time.Millisecond).String() + "\n")
		}
	}

	if len(s.failed) != 0 {
		b.WriteString("\nFailed:\n")

		for _, o := range s.failed {
			b.WriteString("  " + o.Pair.String() + ": " + o.Err.Error() + "\n")
		}
	}

	return b.String()
}
