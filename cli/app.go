// Package cli contains the iklink command line tool.
package cli

import (
	"io"

	"github.com/urfave/cli/v2"
)

// Flags.
const (
	flagDebug      = "debug"
	flagSrc        = "src"
	flagParallel   = "parallel"
	flagDebugFile  = "debug-file"
	flagNoProgress = "no-progress"
	flagSettings   = "settings"
	flagInput      = "input"
	flagOutput     = "output"
	flagMotion     = "motion"
	flagRobot      = "robot"
	flagPlot       = "plot"
	flagBins       = "histogram-bins"
)

var app = &cli.App{
	Name:            "iklink",
	Usage:           "retarget end-effector trajectories onto robot arms",
	HideHelpCommand: true,
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:    flagDebug,
			Aliases: []string{"vvv"},
			Usage:   "enable debug logging",
		},
	},
	Commands: []*cli.Command{
		{
			Name:  "trace",
			Usage: "solve every trajectory of a source tree",
			Description: `Reads DIR/input_trajectories/*.csv. Each file's robot is the part of its name before the
first underscore and is described by DIR/configs/settings/<robot>.yaml. Motions are written to
DIR/output_motions under the input's name. A file that fails is reported and skipped.`,
			UsageText: "iklink trace --src DIR [--parallel N] [--debug-file NAME.csv]... [--no-progress]",
			Flags: []cli.Flag{
				&cli.PathFlag{
					Name:     flagSrc,
					Usage:    "source tree `DIR`",
					Required: true,
				},
				&cli.IntFlag{
					Name:  flagParallel,
					Usage: "number of trajectories solved at once",
					Value: 1,
				},
				&cli.StringSliceFlag{
					Name:  flagDebugFile,
					Usage: "log sampling of these input files at debug level",
				},
				&cli.BoolFlag{
					Name:  flagNoProgress,
					Usage: "do not show the progress spinner",
				},
			},
			Action: TraceAction,
		},
		{
			Name:      "solve",
			Usage:     "solve one trajectory",
			UsageText: "iklink solve --settings FILE --input IN.csv --output OUT.csv [--plot OUT.png]",
			Flags: []cli.Flag{
				&cli.PathFlag{
					Name:      flagSettings,
					Usage:     "robot settings `FILE`",
					Required:  true,
					TakesFile: true,
				},
				&cli.PathFlag{
					Name:      flagInput,
					Usage:     "trajectory `FILE`",
					Required:  true,
					TakesFile: true,
				},
				&cli.PathFlag{
					Name:      flagOutput,
					Usage:     "motion `FILE` to write",
					Required:  true,
					TakesFile: true,
				},
				&cli.StringFlag{
					Name:        flagRobot,
					Usage:       "robot name used in the motion header",
					DefaultText: "from the input file name",
				},
				&cli.PathFlag{
					Name:      flagPlot,
					Usage:     "also plot the joints to `FILE` (png, svg or pdf)",
					TakesFile: true,
				},
				&cli.IntFlag{
					Name:  flagBins,
					Usage: "print a histogram of step sizes with this many buckets",
				},
			},
			Action: SolveAction,
		},
		{
			Name:      "verify",
			Usage:     "check a motion against the trajectory it was solved for",
			UsageText: "iklink verify --settings FILE --input IN.csv --motion OUT.csv",
			Flags: []cli.Flag{
				&cli.PathFlag{
					Name:     flagSettings,
					Usage:    "robot settings `FILE`",
					Required: true,
				},
				&cli.PathFlag{
					Name:     flagInput,
					Usage:    "trajectory `FILE`",
					Required: true,
				},
				&cli.PathFlag{
					Name:     flagMotion,
					Usage:    "motion `FILE`",
					Required: true,
				},
			},
			Action: VerifyAction,
		},
		{
			Name:      "describe",
			Usage:     "print a robot's joint table",
			UsageText: "iklink describe --settings FILE",
			Flags: []cli.Flag{
				&cli.PathFlag{
					Name:     flagSettings,
					Usage:    "robot settings `FILE`",
					Required: true,
				},
			},
			Action: DescribeAction,
		},
	},
}

// NewApp returns a new app with the CLI API, Writer set to out, and ErrWriter
// set to errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	app.Writer = out
	app.ErrWriter = errOut
	return app
}
