package utils

import (
	"context"
	"runtime"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/utils"
)

// ParallelFactor controls the max level of parallelization. This might be useful
// to set in tests where too much parallelism actually slows tests down in
// aggregate.
var ParallelFactor = runtime.GOMAXPROCS(0)

func init() {
	if ParallelFactor <= 0 {
		ParallelFactor = 1
	}
	quarterProcs := float64(ParallelFactor) * .25
	if quarterProcs > 8 {
		ParallelFactor = int(quarterProcs)
	}
}

type (
	// BeforeParallelGroupWorkFunc executes before any work starts with the calculated number of groups.
	BeforeParallelGroupWorkFunc func(numGroups int)
	// MemberWorkFunc runs for each work item (member) of a group.
	MemberWorkFunc func(memberNum, workNum int)
	// GroupWorkDoneFunc runs when a single group's work is done; helpful for merge stages.
	GroupWorkDoneFunc func()
	// GroupWorkFunc runs to determine what work members should do, if any.
	GroupWorkFunc func(groupNum, groupSize, from, to int) (MemberWorkFunc, GroupWorkDoneFunc)
)

// GroupWorkParallel splits [0, totalSize) into at most ParallelFactor contiguous groups and runs
// each on its own goroutine. Every work index is visited exactly once. The context is checked
// between members; a cancelled context stops remaining work and its error is returned. A panic
// in a group stops that group and is returned as an error once every group has finished.
func GroupWorkParallel(ctx context.Context, totalSize int, before BeforeParallelGroupWorkFunc, groupWork GroupWorkFunc) error {
	numGroups := ParallelFactor
	if totalSize < numGroups {
		numGroups = totalSize
	}
	if numGroups <= 0 {
		if before != nil {
			before(0)
		}
		return ctx.Err()
	}
	groupSize := totalSize / numGroups
	extra := totalSize % numGroups

	if before != nil {
		before(numGroups)
	}

	var (
		wait      sync.WaitGroup
		panicsMu  sync.Mutex
		panicErrs error
	)
	wait.Add(numGroups)
	from := 0
	for groupNum := 0; groupNum < numGroups; groupNum++ {
		thisGroupSize := groupSize
		if groupNum < extra {
			thisGroupSize++
		}
		groupNum, groupFrom, groupTo := groupNum, from, from+thisGroupSize
		from = groupTo
		// wait.Done is not deferred: on a panic the callback runs after f unwinds and must record
		// the error before Wait returns.
		utils.PanicCapturingGoWithCallback(func() {
			runGroup(ctx, groupWork, groupNum, groupFrom, groupTo)
			wait.Done()
		}, func(err interface{}) {
			panicsMu.Lock()
			panicErrs = multierr.Append(panicErrs, errors.Errorf("panic in work group %d [%d, %d): %v", groupNum, groupFrom, groupTo, err))
			panicsMu.Unlock()
			wait.Done()
		})
	}
	wait.Wait()
	if panicErrs != nil {
		return panicErrs
	}
	return ctx.Err()
}

func runGroup(ctx context.Context, groupWork GroupWorkFunc, groupNum, from, to int) {
	memberWork, groupWorkDone := groupWork(groupNum, to-from, from, to)
	if memberWork != nil {
		memberNum := 0
		for workNum := from; workNum < to; workNum++ {
			if ctx.Err() != nil {
				return
			}
			memberWork(memberNum, workNum)
			memberNum++
		}
	}
	if groupWorkDone != nil {
		groupWorkDone()
	}
}
