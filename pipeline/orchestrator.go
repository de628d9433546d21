package pipeline

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Status of one stage, or of the run as a whole.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusRunning Status = "RUNNING"
	StatusDone    Status = "DONE"
	StatusFailed  Status = "FAILED"
	StatusSkipped Status = "SKIPPED"

	RunCompleted Status = "COMPLETED"
	RunFailed    Status = "FAILED"
)

// Stage names, in dependency order.
const (
	StagePlan      = "plan"
	StageScript    = "script"
	StageNarration = "narration"
	StagePrompts   = "image_prompts"
	StageImages    = "images"
	StageSubtitles = "subtitles"
	StageCompose   = "compose"
)

// Stage is one unit of work. Done reports whether the stage's outputs
// already exist and are usable, so a resumed run can skip it. Run may
// only read artifacts produced by stages named in Deps.
type Stage struct {
	Name string
	Deps []string
	Done func() bool
	Run  func(ctx context.Context) error
}

// StageRecord is one stage's entry in the run summary.
type StageRecord struct {
	Name       string `json:"name"`
	Status     Status `json:"status"`
	StartedAt  string `json:"started_at,omitempty"`
	FinishedAt string `json:"finished_at,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Summary is the persisted outcome of a run, written to
// pipeline_results.json whether the run completed or not.
type Summary struct {
	RunID       string        `json:"run_id"`
	Topic       string        `json:"topic"`
	OutputDir   string        `json:"output_dir"`
	StartedAt   string        `json:"started_at"`
	FinishedAt  string        `json:"finished_at"`
	DurationSec float64       `json:"duration_sec"`
	Status      Status        `json:"status"`
	FailedStage string        `json:"failed_stage,omitempty"`
	Error       string        `json:"error,omitempty"`
	Warnings    []string      `json:"warnings,omitempty"`
	Stages      []StageRecord `json:"stages"`
}

// Options configure one run.
type Options struct {
	Topic string
	// Resume skips stages whose outputs already pass their Done check.
	// A fresh run directory makes Resume a no-op.
	Resume bool
}

// Orchestrator drives the stage graph. Stages whose dependencies are
// all satisfied run together; a stage failure stops the run after the
// current wave finishes, leaving unreached stages PENDING.
type Orchestrator struct {
	store  *Store
	opts   Options
	runID  string
	stages []Stage

	mu       sync.Mutex
	records  map[string]*StageRecord
	warnings []string
}

// NewOrchestrator prepares a run over the given store.
func NewOrchestrator(store *Store, opts Options) *Orchestrator {
	return &Orchestrator{
		store:   store,
		opts:    opts,
		runID:   uuid.NewString(),
		records: make(map[string]*StageRecord),
	}
}

// RunID returns the identifier assigned to this run.
func (o *Orchestrator) RunID() string { return o.runID }

// SetStages installs the stage graph. Stages execute in the order
// their dependencies allow; the slice order only affects reporting.
func (o *Orchestrator) SetStages(stages []Stage) {
	o.stages = stages
	for _, st := range stages {
		o.records[st.Name] = &StageRecord{Name: st.Name, Status: StatusPending}
	}
}

// Warnf records a non-fatal warning against the run.
func (o *Orchestrator) Warnf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	o.mu.Lock()
	o.warnings = append(o.warnings, msg)
	o.mu.Unlock()
	o.logf("[warn] %s", msg)
}

// Execute runs the pipeline and returns the summary. The summary is
// also persisted to the store, including on failure.
func (o *Orchestrator) Execute(ctx context.Context) *Summary {
	started := time.Now()
	o.logf("[pipeline] run %s: %q", o.runID, o.opts.Topic)

	for {
		ready := o.readyStages()
		if len(ready) == 0 {
			break
		}

		var wave []Stage
		for _, st := range ready {
			if o.opts.Resume && st.Done != nil && st.Done() {
				o.setStatus(st.Name, StatusSkipped, "")
				o.logf("[%s] outputs present, skipping", st.Name)
				continue
			}
			wave = append(wave, st)
		}
		if len(wave) == 0 {
			continue
		}

		// Stages in a wave are independent of each other. A failure
		// in one does not interrupt the others mid-flight; it only
		// prevents further waves from starting.
		var g errgroup.Group
		for _, st := range wave {
			st := st
			o.markRunning(st.Name)
			o.logf("[%s] running", st.Name)
			g.Go(func() error {
				if err := st.Run(ctx); err != nil {
					o.setStatus(st.Name, StatusFailed, err.Error())
					o.logf("[%s] failed: %v", st.Name, err)
					return err
				}
				o.setStatus(st.Name, StatusDone, "")
				o.logf("[%s] done ✓", st.Name)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			break
		}
	}

	sum := o.summarize(started)
	if err := o.store.WriteJSON(ArtifactSummary, sum); err != nil {
		o.logf("[pipeline] could not write summary: %v", err)
	}
	o.logf("[pipeline] %s in %.1fs", sum.Status, sum.DurationSec)
	return sum
}

// readyStages returns pending stages whose dependencies have all
// finished successfully or been skipped.
func (o *Orchestrator) readyStages() []Stage {
	o.mu.Lock()
	defer o.mu.Unlock()
	var ready []Stage
	for _, st := range o.stages {
		if o.records[st.Name].Status != StatusPending {
			continue
		}
		ok := true
		for _, dep := range st.Deps {
			rec, found := o.records[dep]
			if !found || (rec.Status != StatusDone && rec.Status != StatusSkipped) {
				ok = false
				break
			}
		}
		if ok {
			ready = append(ready, st)
		}
	}
	return ready
}

func (o *Orchestrator) markRunning(name string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	rec := o.records[name]
	rec.Status = StatusRunning
	rec.StartedAt = time.Now().UTC().Format(time.RFC3339)
}

func (o *Orchestrator) setStatus(name string, status Status, errMsg string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	rec := o.records[name]
	rec.Status = status
	rec.FinishedAt = time.Now().UTC().Format(time.RFC3339)
	rec.Error = errMsg
}

func (o *Orchestrator) summarize(started time.Time) *Summary {
	o.mu.Lock()
	defer o.mu.Unlock()

	finished := time.Now()
	sum := &Summary{
		RunID:       o.runID,
		Topic:       o.opts.Topic,
		OutputDir:   o.store.Dir(),
		StartedAt:   started.UTC().Format(time.RFC3339),
		FinishedAt:  finished.UTC().Format(time.RFC3339),
		DurationSec: finished.Sub(started).Seconds(),
		Warnings:    o.warnings,
	}
	for _, st := range o.stages {
		rec := o.records[st.Name]
		sum.Stages = append(sum.Stages, *rec)
		if rec.Status == StatusFailed && sum.FailedStage == "" {
			sum.FailedStage = rec.Name
			sum.Error = rec.Error
		}
	}

	// The run succeeded exactly when the final artifact was produced,
	// whether by this run or one it resumed.
	final := o.records[StageCompose]
	if final != nil && (final.Status == StatusDone || final.Status == StatusSkipped) {
		sum.Status = RunCompleted
	} else {
		sum.Status = RunFailed
	}
	return sum
}

// logf writes to both the process log and the run's pipeline.log.
func (o *Orchestrator) logf(format string, args ...any) {
	log.Printf(format, args...)
	f, err := os.OpenFile(o.store.Path(ArtifactLog), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	defer f.Close()
	fmt.Fprintf(f, time.Now().UTC().Format(time.RFC3339)+" "+format+"\n", args...)
}
