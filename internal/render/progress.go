package render

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/peternemser-ui/font-scanner-sub013/internal/model"
)

var (
	stepDoneStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00D26A"))
	stepLabelStyle = lipgloss.NewStyle().Bold(true)
	failStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF3838")).Bold(true)
)

// StepPrinter is a ProgressSink that prints each step as it starts, one line
// per step. It is the CLI's progress view.
type StepPrinter struct {
	Out   io.Writer
	Total int

	mu sync.Mutex
}

func (p *StepPrinter) StepStarted(index int, step model.Step) {
	p.mu.Lock()
	defer p.mu.Unlock()
	line := fmt.Sprintf("%s [%d/%d] %s",
		stepDoneStyle.Render("▸"), index, p.Total, stepLabelStyle.Render(step.Label))
	if step.Detail != "" {
		line += " " + mutedStyle.Render(step.Detail)
	}
	fmt.Fprintln(p.Out, line)
}

func (p *StepPrinter) Succeeded() {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.Out, stepDoneStyle.Render("✓ scan complete"))
}

func (p *StepPrinter) Failed(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.Out, failStyle.Render("✗ "+err.Error()))
}
