package cli

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"go.viam.com/test"
)

type fakeSpinner struct {
	mu        sync.Mutex
	history   []string
	stopped   bool
	successes []string
	failures  []string
}

func (f *fakeSpinner) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
	return nil
}

func (f *fakeSpinner) Success(message ...any) {
	f.mu.Lock()
	f.successes = append(f.successes, fmt.Sprint(message...))
	f.mu.Unlock()
	_ = f.Stop()
}

func (f *fakeSpinner) Fail(message ...any) {
	f.mu.Lock()
	f.failures = append(f.failures, fmt.Sprint(message...))
	f.mu.Unlock()
	_ = f.Stop()
}

func (f *fakeSpinner) UpdateText(text string) {
	f.mu.Lock()
	f.history = append(f.history, text)
	f.mu.Unlock()
}

// fakeSpinners records every spinner a factory starts.
type fakeSpinners struct {
	started []*fakeSpinner
}

func (fs *fakeSpinners) factory(text string) (progressSpinner, error) {
	spinner := &fakeSpinner{}
	spinner.UpdateText(text)
	fs.started = append(fs.started, spinner)
	return spinner, nil
}

func TestBatchProgress(t *testing.T) {
	spinners := &fakeSpinners{}
	progress, err := newBatchProgress(3, spinners.factory)
	test.That(t, err, test.ShouldBeNil)
	spinner := spinners.started[0]

	progress.stage("b.csv", stageLoad)
	progress.stage("a.csv", stageLoad)
	progress.stage("a.csv", stageSample)
	progress.finish("b.csv", nil)
	progress.stage("c.csv", stageLink)
	progress.finish("a.csv", errors.New("no path"))
	progress.finish("c.csv", nil)
	progress.stop()

	test.That(t, spinner.history, test.ShouldResemble, []string{
		"0/3 trajectories",
		"0/3 trajectories (b.csv: load)",
		"0/3 trajectories (a.csv: load, b.csv: load)",
		"0/3 trajectories (a.csv: sample, b.csv: load)",
		"1/3 trajectories (a.csv: sample)",
		"1/3 trajectories (a.csv: sample, c.csv: link)",
		"2/3 trajectories (c.csv: link)",
		"3/3 trajectories",
	})
	test.That(t, spinner.stopped, test.ShouldBeTrue)
	test.That(t, spinner.failures, test.ShouldHaveLength, 1)
	test.That(t, spinner.failures[0], test.ShouldStartWith, "1 of 3 trajectories failed")

	// Stopping again is a no-op.
	progress.stop()
	test.That(t, spinner.failures, test.ShouldHaveLength, 1)
}

func TestBatchProgressSuccess(t *testing.T) {
	spinners := &fakeSpinners{}
	progress, err := newBatchProgress(1, spinners.factory)
	test.That(t, err, test.ShouldBeNil)
	progress.stage("a.csv", stageWrite)
	progress.finish("a.csv", nil)
	progress.stop()
	test.That(t, spinners.started[0].successes, test.ShouldHaveLength, 1)
	test.That(t, spinners.started[0].successes[0], test.ShouldStartWith, "traced 1 trajectories")
}

func TestBatchProgressDisabled(t *testing.T) {
	progress, err := newBatchProgress(2, nil)
	test.That(t, err, test.ShouldBeNil)
	progress.stage("a.csv", stageLoad)
	progress.finish("a.csv", errors.New("bad"))
	progress.stop()
	test.That(t, progress.done, test.ShouldEqual, 1)
	test.That(t, progress.failed, test.ShouldEqual, 1)

	var none *batchProgress
	none.stage("a.csv", stageLoad)
	none.finish("a.csv", nil)
	none.stop()
}

func TestBatchProgressFactoryError(t *testing.T) {
	_, err := newBatchProgress(1, func(string) (progressSpinner, error) {
		return nil, errors.New("no terminal")
	})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "no terminal")
}
