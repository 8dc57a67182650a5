package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.opencensus.io/trace"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"go.viam.com/iklink/config"
	"go.viam.com/iklink/logging"
	"go.viam.com/iklink/trajectory"
	"go.viam.com/iklink/utils"
)

// Layout of a source tree.
const (
	InputDir    = "input_trajectories"
	OutputDir   = "output_motions"
	SettingsDir = "configs/settings"
)

// The stages a trajectory goes through, named in errors.
const (
	stageLoad     = "load"
	stageSettings = "settings"
	stageSample   = "sample"
	stageLink     = "link"
	stageWrite    = "write"
)

// FileResult is the outcome of solving one trajectory file.
type FileResult struct {
	Input            string
	Output           string
	Robot            string
	Steps            int
	Reconfigurations int
	Travel           float64
	Err              error
}

func stageError(file, stage string, err error) error {
	return errors.Wrapf(err, "%s: %s", file, stage)
}

// TraceOptions tunes a TraceDir run.
type TraceOptions struct {
	// Parallel is the number of trajectories solved at once.
	Parallel int
	// DebugFiles names input files whose solving logs at debug level.
	DebugFiles []string
	// Progress shows a spinner with the stage of every trajectory in flight.
	Progress bool

	spinnerFactory progressSpinnerFactory
}

// newIKLink builds the engine of one trajectory from its robot settings.
var newIKLink = (*config.Settings).NewIKLink

// TraceDir solves every trajectory under src. Each file is solved with its own robot and solver,
// so a failure of one, including a panic, never affects another. The results are in file name
// order; the returned error combines every file's failure.
func TraceDir(ctx context.Context, src string, opts TraceOptions, logger logging.Logger) ([]FileResult, error) {
	inputs, err := filepath.Glob(filepath.Join(src, InputDir, "*.csv"))
	if err != nil {
		return nil, err
	}
	sort.Strings(inputs)
	parallel := opts.Parallel
	if parallel < 1 {
		parallel = 1
	}

	var factory progressSpinnerFactory
	if opts.Progress && len(inputs) > 0 {
		factory = opts.spinnerFactory
		if factory == nil {
			factory = defaultSpinnerFactory
		}
	}
	progress, err := newBatchProgress(len(inputs), factory)
	if err != nil {
		return nil, err
	}

	results := make([]FileResult, len(inputs))
	var group errgroup.Group
	group.SetLimit(parallel)
	for i, input := range inputs {
		fileCtx := ctx
		if slices.Contains(opts.DebugFiles, filepath.Base(input)) {
			fileCtx = logging.EnableDebugMode(ctx, filepath.Base(input))
		}
		group.Go(func() error {
			results[i] = traceFile(fileCtx, src, input, logger, progress)
			return nil
		})
	}
	//nolint:errcheck
	group.Wait()
	progress.stop()

	var errs error
	for _, r := range results {
		if r.Err != nil {
			logger.Errorw("failed to solve trajectory", "file", r.Input, "error", r.Err)
			errs = multierr.Append(errs, r.Err)
		}
	}
	return results, errs
}

func traceFile(ctx context.Context, src, input string, logger logging.Logger, progress *batchProgress) (res FileResult) {
	ctx, span := trace.StartSpan(ctx, "iklink::traceFile")
	defer span.End()

	name := filepath.Base(input)
	res = FileResult{
		Input: input,
		Robot: trajectory.RobotNameFromPath(input),
	}
	stage := stageLoad
	enter := func(s string) {
		stage = s
		progress.stage(name, s)
	}
	fail := func(err error) FileResult {
		res.Err = stageError(name, stage, err)
		return res
	}
	defer func() {
		if r := recover(); r != nil {
			res.Err = stageError(name, stage, errors.Errorf("panic: %v", r))
		}
		progress.finish(name, res.Err)
	}()

	enter(stageLoad)
	output, err := utils.SafeJoinDir(filepath.Join(src, OutputDir), name)
	if err != nil {
		return fail(err)
	}
	res.Output = output
	waypoints, err := trajectory.ReadWaypointsFile(input)
	if err != nil {
		return fail(err)
	}

	enter(stageSettings)
	settings, err := config.ReadSettings(config.SettingsPath(filepath.Join(src, SettingsDir), res.Robot))
	if err != nil {
		return fail(err)
	}
	fileLogger := logger.Sublogger(name)
	link, _, err := newIKLink(settings, res.Robot, fileLogger)
	if err != nil {
		return fail(err)
	}

	enter(stageSample)
	candidates, exhausted, err := link.Sample(ctx, waypoints)
	if err != nil {
		return fail(err)
	}

	enter(stageLink)
	sol, err := link.Link(ctx, res.Robot, candidates)
	if err != nil {
		if len(exhausted) > 0 {
			err = errors.Wrapf(err, "sampling exhausted at waypoints %v", exhausted)
		}
		return fail(err)
	}

	enter(stageWrite)
	if err := trajectory.WriteMotionFile(res.Output, sol.Motion); err != nil {
		return fail(err)
	}
	fileLogger.Infow("saved motion", "output", res.Output)

	res.Steps = sol.Motion.Len()
	res.Reconfigurations = sol.Cost.Reconfigurations
	res.Travel = sol.Cost.Travel
	return res
}

func resultsTable(results []FileResult) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"File", "Robot", "Steps", "Reconfigurations", "Travel", "Status"})
	for _, r := range results {
		if r.Err != nil {
			t.AppendRow(table.Row{filepath.Base(r.Input), r.Robot, "", "", "", "failed"})
			continue
		}
		t.AppendRow(table.Row{
			filepath.Base(r.Input),
			r.Robot,
			r.Steps,
			r.Reconfigurations,
			fmt.Sprintf("%.4f", r.Travel),
			"ok",
		})
	}
	return t.Render()
}

// TraceAction is the trace command.
func TraceAction(c *cli.Context) error {
	logger := newLogger(c)
	src := c.Path(flagSrc)
	results, err := TraceDir(c.Context, src, TraceOptions{
		Parallel:   c.Int(flagParallel),
		DebugFiles: c.StringSlice(flagDebugFile),
		Progress:   !c.Bool(flagNoProgress),
	}, logger)
	if len(results) == 0 && err == nil {
		warningf(c.App.ErrWriter, "no trajectories found in %s", filepath.Join(src, InputDir))
		return nil
	}
	printf(c.App.Writer, "%s", resultsTable(results))
	return err
}
