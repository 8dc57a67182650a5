package cli

import (
	"fmt"
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"go.viam.com/iklink/config"
	"go.viam.com/iklink/iklink"
	"go.viam.com/iklink/kinematics"
	"go.viam.com/iklink/trajectory"
)

func summaryTable(s *trajectory.Summary) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Joint", "Min", "Max", "Travel", "Max speed", "Mean speed"})
	for _, j := range s.Joints {
		t.AppendRow(table.Row{
			j.Name,
			fmt.Sprintf("%.4f", j.Min),
			fmt.Sprintf("%.4f", j.Max),
			fmt.Sprintf("%.4f", j.Travel),
			fmt.Sprintf("%.4f", j.MaxSpeed),
			fmt.Sprintf("%.4f", j.MeanSpeed),
		})
	}
	t.AppendFooter(table.Row{"total", "", "", fmt.Sprintf("%.4f", s.JointTravel), "", ""})
	return t.Render()
}

// SolveAction is the solve command.
func SolveAction(c *cli.Context) error {
	logger := newLogger(c)
	input := c.Path(flagInput)
	robot := c.String(flagRobot)
	if robot == "" {
		robot = trajectory.RobotNameFromPath(input)
	}

	waypoints, err := trajectory.ReadWaypointsFile(input)
	if err != nil {
		return stageError(input, stageLoad, err)
	}
	settings, err := config.ReadSettings(c.Path(flagSettings))
	if err != nil {
		return stageError(input, stageSettings, err)
	}
	link, _, err := settings.NewIKLink(robot, logger)
	if err != nil {
		return stageError(input, stageSettings, err)
	}
	sol, err := link.Solve(c.Context, robot, waypoints)
	if err != nil {
		return stageError(input, stageLink, err)
	}
	output := c.Path(flagOutput)
	if err := trajectory.WriteMotionFile(output, sol.Motion); err != nil {
		return stageError(input, stageWrite, err)
	}
	if len(sol.Exhausted) > 0 {
		warningf(c.App.ErrWriter, "sampling stopped short at waypoints %v", sol.Exhausted)
	}

	summary, err := trajectory.Summarize(sol.Motion)
	if err != nil {
		return err
	}
	printf(c.App.Writer, "solved %d waypoints with %d reconfigurations at steps %v",
		sol.Motion.Len(), sol.Cost.Reconfigurations, sol.Reconfigurations())
	printf(c.App.Writer, "%s", summaryTable(summary))

	if bins := c.Int(flagBins); bins > 0 && sol.Motion.Len() > 1 {
		printf(c.App.Writer, "step sizes:")
		if err := trajectory.PrintStepHistogram(c.App.Writer, sol.Motion, bins, 40); err != nil {
			return err
		}
	}
	if plotPath := c.Path(flagPlot); plotPath != "" {
		if err := trajectory.SaveJointPlot(plotPath, sol.Motion); err != nil {
			return errors.Wrap(err, "plot")
		}
		printf(c.App.Writer, "saved plot to %s", plotPath)
	}
	printf(c.App.Writer, "saved motion to %s", output)
	return nil
}

// VerifyAction is the verify command.
func VerifyAction(c *cli.Context) error {
	input := c.Path(flagInput)
	waypoints, err := trajectory.ReadWaypointsFile(input)
	if err != nil {
		return stageError(input, stageLoad, err)
	}
	settings, err := config.ReadSettings(c.Path(flagSettings))
	if err != nil {
		return stageError(input, stageSettings, err)
	}
	motionPath := c.Path(flagMotion)
	motion, err := trajectory.ReadMotionFile(motionPath)
	if err != nil {
		return stageError(motionPath, stageLoad, err)
	}
	kin, err := settings.Robot(motion.RobotName, newLogger(c))
	if err != nil {
		return stageError(input, stageSettings, err)
	}
	if err := checkJointNames(kin, motion); err != nil {
		return stageError(motionPath, stageLoad, err)
	}
	jumps, err := iklink.VerifyMotion(kin, waypoints, motion)
	if err != nil {
		return errors.Wrapf(err, "%s does not track %s", filepath.Base(motionPath), filepath.Base(input))
	}
	printf(c.App.Writer, "%s tracks %s: %d steps, %d reconfigurations at steps %v",
		filepath.Base(motionPath), filepath.Base(input), motion.Len(), len(jumps), jumps)
	return nil
}

func checkJointNames(kin *kinematics.RobotKinematics, m *trajectory.Motion) error {
	names := kin.JointNames()
	if len(names) != len(m.JointNames) {
		return errors.Errorf("motion has %d joints, robot has %d", len(m.JointNames), len(names))
	}
	for i := range names {
		if names[i] != m.JointNames[i] {
			return errors.Errorf("motion joint %d is %q, robot joint is %q", i, m.JointNames[i], names[i])
		}
	}
	return nil
}

// DescribeAction is the describe command.
func DescribeAction(c *cli.Context) error {
	path := c.Path(flagSettings)
	settings, err := config.ReadSettings(path)
	if err != nil {
		return err
	}
	kin, err := settings.Robot(trajectory.RobotNameFromPath(path), newLogger(c))
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.AppendHeader(table.Row{"#", "Joint", "Type", "Lower", "Upper", "Velocity"})
	for i, j := range kin.Joints() {
		lower, upper := "", ""
		if j.Type == kinematics.Bounded {
			lower = fmt.Sprintf("%.4f", j.Lower)
			upper = fmt.Sprintf("%.4f", j.Upper)
		}
		t.AppendRow(table.Row{i, j.Name, string(j.Type), lower, upper, fmt.Sprintf("%.3f", j.Velocity)})
	}
	printf(c.App.Writer, "robot %s, %d dof, urdf %s", kin.Name(), kin.DoF(), settings.URDFPath())
	for _, chain := range kin.Chains() {
		printf(c.App.Writer, "chain %s -> %s", chain.BaseLink, chain.EELink)
	}
	printf(c.App.Writer, "%s", t.Render())
	return nil
}
