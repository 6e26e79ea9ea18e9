package interfaces

import "github.com/peternemser-ui/font-scanner-sub013/internal/model"

// ProgressSink receives lifecycle progress for one scan run. Implementations
// must tolerate being called from a goroutine other than the one that started
// the scan; the controller serializes calls, it does not serialize sinks
// across runs.
type ProgressSink interface {
	// StepStarted fires when the run advances to the 1-based step index.
	// The final step is always reported before Succeeded, even when the
	// response arrived ahead of the cosmetic ticker.
	StepStarted(index int, step model.Step)

	// Succeeded fires once, after the last step, when the run completed.
	Succeeded()

	// Failed fires once with the terminal error of the run.
	Failed(err error)
}

// Renderer turns a completed report into user-visible output. It is invoked
// exactly once per successful run, and never for a failed one.
type Renderer interface {
	Render(rc *model.ReportContext) error
}

// RendererFunc adapts a function to the Renderer interface.
type RendererFunc func(rc *model.ReportContext) error

func (f RendererFunc) Render(rc *model.ReportContext) error { return f(rc) }
