package agents

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/mwiater/paper2pod/internal/appconfig"
	"github.com/mwiater/paper2pod/internal/logging"
	"github.com/mwiater/paper2pod/internal/providers"
	"github.com/mwiater/paper2pod/internal/transcript"
)

// Stage is a step of the orchestrator's state machine.
type Stage string

const (
	StageIdle     Stage = "IDLE"
	StageResearch Stage = "RESEARCH"
	StageScript   Stage = "SCRIPT"
	StageDone     Stage = "DONE"
	StageFailed   Stage = "FAILED"
)

// ErrNoDialogue is returned when the script stage produces no speaker turns.
var ErrNoDialogue = errors.New("script agent produced no dialogue")

// Options configures an Orchestrator.
type Options struct {
	Runner     *Runner
	SearchTool providers.ToolDefinition
	Persona    appconfig.Persona
	HostName   string
	// Structured requests JSON dialogue from the script agent instead of labelled text.
	Structured bool
	// OnStage, when set, is called on every stage transition.
	OnStage func(Stage)
}

// Result is the terminal output of a successful run.
type Result struct {
	Research   Research
	Transcript transcript.Transcript
	Structured bool
}

// Orchestrator sequences RESEARCH -> SCRIPT -> DONE.
type Orchestrator struct {
	opts Options

	mu    sync.Mutex
	stage Stage
}

// NewOrchestrator returns an idle orchestrator.
func NewOrchestrator(opts Options) *Orchestrator {
	return &Orchestrator{opts: opts, stage: StageIdle}
}

// Stage reports the current stage.
func (o *Orchestrator) Stage() Stage {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.stage
}

func (o *Orchestrator) enter(s Stage) {
	o.mu.Lock()
	o.stage = s
	o.mu.Unlock()
	logging.LogEvent("[PIPELINE] stage %s", s)
	if o.opts.OnStage != nil {
		o.opts.OnStage(s)
	}
}

// Run executes the research task, hands its summary to the script task
// through a single-slot channel, and returns the script. The script task
// runs in its own goroutine but blocks until research has published. Any
// failure cancels both and no partial result is returned.
func (o *Orchestrator) Run(ctx context.Context) (Result, error) {
	if o.opts.Runner == nil {
		return Result{}, fmt.Errorf("orchestrator: no runner configured")
	}

	g, gctx := errgroup.WithContext(ctx)
	handoff := make(chan Research, 1)
	var result Result

	g.Go(func() error {
		o.enter(StageResearch)
		summary, err := o.opts.Runner.Execute(gctx, NewResearcher(o.opts.SearchTool), ResearchTask())
		if err != nil {
			return fmt.Errorf("research: %w", err)
		}
		research := ParseResearch(summary)
		if !research.AuthorFound {
			logging.LogWarn("lead author not found in research summary; guest will be %q", GuestFallbackName)
		}
		handoff <- research
		return nil
	})

	g.Go(func() error {
		var research Research
		select {
		case research = <-handoff:
		case <-gctx.Done():
			return gctx.Err()
		}

		o.enter(StageScript)
		task := ScriptTask(o.opts.HostName, research, o.opts.Structured)
		output, err := o.opts.Runner.Execute(gctx, NewScriptWriter(o.opts.Persona), task)
		if err != nil {
			return fmt.Errorf("script: %w", err)
		}
		tr, structured := transcript.FromOutput(output, o.opts.Structured)
		if o.opts.Structured && !structured {
			logging.LogWarn("script output was not valid structured dialogue; falling back to label segmentation")
		}
		if len(tr.Turns) == 0 {
			return fmt.Errorf("script: %w", ErrNoDialogue)
		}
		result = Result{Research: research, Transcript: tr, Structured: structured}
		return nil
	})

	if err := g.Wait(); err != nil {
		o.enter(StageFailed)
		return Result{}, err
	}
	o.enter(StageDone)
	return result, nil
}
