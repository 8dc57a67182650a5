package cli

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pterm/pterm"
	"github.com/samber/lo"
)

type progressSpinner interface {
	Stop() error
	Success(...any)
	Fail(...any)
	UpdateText(string)
}

type progressSpinnerFactory func(string) (progressSpinner, error)

var defaultSpinnerFactory progressSpinnerFactory = func(text string) (progressSpinner, error) {
	spinner, err := pterm.DefaultSpinner.
		WithRemoveWhenDone(false).
		WithText(text).
		Start()
	if err != nil {
		return nil, err
	}
	return spinner, nil
}

// batchProgress shows a single spinner for a trace run: how many trajectories are done and the
// stage every trajectory in flight is at. A nil *batchProgress or one without a spinner only
// keeps counts.
type batchProgress struct {
	mu        sync.Mutex
	spinner   progressSpinner
	total     int
	done      int
	failed    int
	running   map[string]string
	startTime time.Time
}

func newBatchProgress(total int, factory progressSpinnerFactory) (*batchProgress, error) {
	p := &batchProgress{
		total:     total,
		running:   map[string]string{},
		startTime: time.Now(),
	}
	if factory == nil {
		return p, nil
	}
	spinner, err := factory(p.textLocked())
	if err != nil {
		return nil, fmt.Errorf("failed to start progress spinner: %w", err)
	}
	p.spinner = spinner
	return p, nil
}

// stage records that file entered stage.
func (p *batchProgress) stage(file, stage string) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.running[file] = stage
	p.updateLocked()
}

// finish records that file is done, failed when err is set.
func (p *batchProgress) finish(file string, err error) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.running, file)
	p.done++
	if err != nil {
		p.failed++
	}
	p.updateLocked()
}

// stop ends the spinner with the outcome of the run.
func (p *batchProgress) stop() {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.spinner == nil {
		return
	}
	elapsed := time.Since(p.startTime).Round(time.Second)
	if p.failed > 0 {
		p.spinner.Fail(fmt.Sprintf("%d of %d trajectories failed (%s)", p.failed, p.total, elapsed))
	} else {
		p.spinner.Success(fmt.Sprintf("traced %d trajectories (%s)", p.total, elapsed))
	}
	p.spinner = nil
}

func (p *batchProgress) updateLocked() {
	if p.spinner != nil {
		p.spinner.UpdateText(p.textLocked())
	}
}

func (p *batchProgress) textLocked() string {
	text := fmt.Sprintf("%d/%d trajectories", p.done, p.total)
	if len(p.running) == 0 {
		return text
	}
	files := lo.Keys(p.running)
	sort.Strings(files)
	stages := lo.Map(files, func(file string, _ int) string {
		return file + ": " + p.running[file]
	})
	return text + " (" + strings.Join(stages, ", ") + ")"
}
