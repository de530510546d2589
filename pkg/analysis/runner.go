package analysis

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ritzau/pd-parser/pkg/cycles"
	"github.com/ritzau/pd-parser/pkg/diff"
	"github.com/ritzau/pd-parser/pkg/logging"
	"github.com/ritzau/pd-parser/pkg/parse"
	"github.com/ritzau/pd-parser/pkg/pubsub"
	"github.com/ritzau/pd-parser/pkg/validate"
)

// Options configures a run
type Options struct {
	// Jobs is the number of files parsed in parallel, 0 means one per CPU
	Jobs int

	// Validate runs structural checks and feedback loop detection on every
	// successfully parsed file
	Validate bool

	Reason string // e.g. "initial parse", "patch changed"
}

// Runner parses patch files and keeps the results in a store. Results are
// published to a publisher when one is set.
type Runner struct {
	store     *Store
	publisher pubsub.Publisher
	mu        sync.Mutex // Prevent concurrent runs
}

// NewRunner creates a runner. publisher may be nil.
func NewRunner(store *Store, publisher pubsub.Publisher) *Runner {
	return &Runner{store: store, publisher: publisher}
}

// Store returns the result store
func (r *Runner) Store() *Store {
	return r.store
}

// Run parses the given files concurrently and returns their results in the
// same order. Unreadable files produce a result with ReadError set, the
// returned error is only set when the context was cancelled.
func (r *Runner) Run(ctx context.Context, paths []string, opts Options) ([]*FileResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	start := time.Now()
	logging.Info("starting parse run", "reason", opts.Reason, "files", len(paths), "jobs", jobs)
	r.publishStatus("parsing", fmt.Sprintf("Parsing %d file(s)", len(paths)), 0, len(paths))

	results := make([]*FileResult, len(paths))
	var done atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			fr := ParseFile(path, opts.Validate)
			if prev, ok := r.store.Lookup(path); ok {
				fr.Changes = compare(prev, fr)
			}
			results[i] = fr
			r.store.Put(fr)
			r.publishResult("parsed", fr)

			n := int(done.Add(1))
			r.publishStatus("parsing", fmt.Sprintf("Parsed %s", path), n, len(paths))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("parse run cancelled: %w", err)
	}

	failed := 0
	for _, fr := range results {
		if !fr.OK(false) {
			failed++
		}
	}
	logging.Info("parse run complete",
		"reason", opts.Reason,
		"files", len(paths),
		"failed", failed,
		"durationMs", time.Since(start).Milliseconds())
	r.publishStatus("ready", fmt.Sprintf("Parsed %d file(s), %d failed", len(paths), failed), len(paths), len(paths))

	return results, nil
}

// Forget removes files from the store, e.g. after they were deleted
func (r *Runner) Forget(paths []string) {
	for _, path := range paths {
		r.store.Remove(path)
		r.publishResult("removed", &FileResult{Path: path, ReadError: "file removed"})
		logging.Info("patch removed", "file", path)
	}
}

// ParseFile reads and parses one file
func ParseFile(path string, withValidation bool) *FileResult {
	data, err := os.ReadFile(path)
	if err != nil {
		logging.Warn("failed to read patch", "file", path, "error", err)
		return &FileResult{Path: path, ReadError: err.Error()}
	}
	return ParseText(path, string(data), withValidation)
}

// ParseText parses patch text that was read elsewhere, e.g. an HTTP body
func ParseText(name, text string, withValidation bool) *FileResult {
	fr := &FileResult{Path: name, Result: parse.Parse(text)}

	if fr.Result.OK() && withValidation {
		fr.Issues = validate.Validate(fr.Result.Pd)
		fr.FeedbackLoops = cycles.FindAllFeedbackLoops(fr.Result.Pd)
	}

	logging.Debug("parsed file",
		"file", name,
		"status", fr.Result.Status,
		"warnings", len(fr.Result.Warnings),
		"errors", len(fr.Result.Errors),
		"issues", len(fr.Issues))
	return fr
}

// compare diffs two parses of the same file when both produced a graph
func compare(prev, next *FileResult) *diff.Diff {
	if prev.Pd() == nil || next.Pd() == nil {
		return nil
	}
	changes := diff.Compare(prev.Pd(), next.Pd())
	if !changes.Empty() {
		logging.Debug("patch changed", "file", next.Path, "changes", changes.String())
	}
	return changes
}

func (r *Runner) publishStatus(state, message string, done, total int) {
	if r.publisher == nil {
		return
	}
	status := pubsub.ParseStatus{State: state, Message: message, Done: done, Total: total}
	if err := r.publisher.Publish(pubsub.TopicStatus, state, status); err != nil {
		logging.Debug("failed to publish status", "error", err)
	}
}

func (r *Runner) publishResult(eventType string, fr *FileResult) {
	if r.publisher == nil {
		return
	}
	if err := r.publisher.Publish(pubsub.TopicResult, eventType, fr.Summary()); err != nil {
		logging.Debug("failed to publish result", "file", fr.Path, "error", err)
	}
}
