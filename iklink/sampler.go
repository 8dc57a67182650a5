package iklink

import (
	"context"

	"github.com/pkg/errors"
	"go.opencensus.io/trace"

	"go.viam.com/iklink/logging"
	"go.viam.com/iklink/referenceframe"
	"go.viam.com/iklink/spatialmath"
)

// sampler fills a candidate table one waypoint at a time. Reach queries seed new candidates and
// each success is tracked forward along the trajectory; configurations tracked onto a later
// waypoint are clustered into that waypoint's first candidates.
type sampler struct {
	session *Session
	opts    Options
	logger  logging.Logger
}

// sample returns the filled table and the indices of waypoints that stopped short of the quota.
func (s *sampler) sample(ctx context.Context, times []float64, goals []spatialmath.Pose) (*Table, []int, error) {
	ctx, span := trace.StartSpan(ctx, "iklink::sample")
	defer span.End()

	n := len(goals)
	table := NewTable(times)
	pools := make([][][]referenceframe.Input, n)
	var exhausted []int

	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		s.logger.CDebugf(ctx, "constructing nodes for point %d / %d", i, n)

		for _, rep := range clusterRepresentatives(pools[i], s.opts.ClusterTolerance, s.opts.ClusterMinPoints) {
			if len(table.Columns[i]) >= s.opts.CandidateQuota {
				break
			}
			table.Add(i, rep)
		}
		seeded := len(table.Columns[i])
		pools[i] = nil

		failures := 0
		for len(table.Columns[i]) < s.opts.CandidateQuota {
			config, ok, err := s.session.TryReach(ctx, goals[i])
			if err != nil {
				return nil, nil, err
			}
			if !ok {
				failures++
				if s.opts.MaxReachFailures > 0 && failures >= s.opts.MaxReachFailures {
					s.logger.Warnw("stopped sampling waypoint",
						"waypoint", i,
						"candidates", len(table.Columns[i]),
						"error", errors.Wrapf(ErrSamplingExhausted, "%d reach failures in a row", failures),
					)
					exhausted = append(exhausted, i)
					break
				}
				if err := ctx.Err(); err != nil {
					return nil, nil, err
				}
				continue
			}
			failures = 0
			table.Add(i, config)

			for r := i; r < n; r++ {
				tracked, ok, err := s.session.TryTrack(ctx, goals[r])
				if err != nil {
					return nil, nil, err
				}
				if !ok {
					break
				}
				if r > i {
					pools[r] = append(pools[r], tracked)
				}
			}
		}
		s.logger.CDebugw(ctx, "constructed nodes",
			"waypoint", i,
			"from_propagation", seeded,
			"candidates", len(table.Columns[i]),
		)
	}
	return table, exhausted, nil
}
