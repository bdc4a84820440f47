package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/frontopt/frontier/internal/engine"
	"github.com/frontopt/frontier/internal/moo"
	"github.com/frontopt/frontier/internal/scalarize"
	"github.com/frontopt/frontier/internal/store"
)

// runJob executes a front generation job in the background.
// If runStore is not nil the finished run is persisted under the job ID.
func runJob(ctx context.Context, jm *JobManager, runStore store.Store, jobID string) error {
	defer jm.releaseCancel(jobID)

	// Get the job
	job, exists := jm.GetJob(jobID)
	if !exists {
		return fmt.Errorf("job not found: %s", jobID)
	}

	// Update state to running
	err := jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateRunning
	})
	if err != nil {
		return err
	}

	slog.Info("Starting job", "job_id", jobID, "problem", job.Config.Problem, "method", job.Config.Method)

	problem, err := moo.Benchmark(job.Config.Problem)
	if err != nil {
		markJobFailed(jm, jobID, fmt.Errorf("failed to resolve problem: %w", err))
		return err
	}

	cfg, err := engineConfig(job.Config)
	if err != nil {
		markJobFailed(jm, jobID, err)
		return err
	}

	eng, err := engine.New(problem, nil, cfg)
	if err != nil {
		markJobFailed(jm, jobID, err)
		return err
	}

	// Check for cancellation before starting expensive operation
	select {
	case <-ctx.Done():
		markJobCancelled(jm, jobID)
		return ctx.Err()
	default:
	}

	start := time.Now()

	// Start progress monitoring goroutine
	progressDone := make(chan struct{})
	go monitorProgress(ctx, jm, eng, jobID, start, progressDone)

	err = eng.GenerateFront(ctx)
	close(progressDone)
	elapsed := time.Since(start)

	if err != nil {
		if ctx.Err() != nil {
			markJobCancelled(jm, jobID)
			return ctx.Err()
		}
		markJobFailed(jm, jobID, err)
		return err
	}

	// Cancellation mid-run surfaces as non-converged points, not as an error
	select {
	case <-ctx.Done():
		markJobCancelled(jm, jobID)
		return ctx.Err()
	default:
	}

	summary := eng.Summary()

	// Persist the run before announcing completion so the download
	// endpoints work as soon as the state flips
	if runStore != nil {
		manifest := store.NewRunManifest(jobID, job.Config, problem.VariableNames(), problem.ObjectiveNames())
		manifest.Subproblems = summary.Subproblems
		manifest.Converged = summary.Converged
		manifest.Filtered = summary.Filtered
		manifest.ElapsedMS = elapsed.Milliseconds()

		unfiltered := eng.ParetoFront().Points()
		filtered := eng.ParetoFrontFiltered().Points()
		if err := runStore.SaveRun(manifest, unfiltered, filtered); err != nil {
			markJobFailed(jm, jobID, fmt.Errorf("failed to save run: %w", err))
			return err
		}
	}

	// Update job with results
	endTime := time.Now()
	err = jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCompleted
		j.Solved = summary.Subproblems
		j.Total = summary.Subproblems
		j.Converged = summary.Converged
		j.Filtered = summary.Filtered
		j.EndTime = &endTime
	})
	if err != nil {
		return err
	}

	sps := float64(0)
	if elapsed.Seconds() > 0 {
		sps = float64(summary.Subproblems) / elapsed.Seconds()
	}

	slog.Info("Job completed",
		"job_id", jobID,
		"elapsed", elapsed,
		"subproblems", summary.Subproblems,
		"converged", summary.Converged,
		"filtered", summary.Filtered,
	)

	// Broadcast final completion event
	jm.broadcaster.Broadcast(ProgressEvent{
		JobID:     jobID,
		State:     StateCompleted,
		Solved:    summary.Subproblems,
		Total:     summary.Subproblems,
		SPS:       sps,
		Timestamp: time.Now(),
	})

	return nil
}

// engineConfig maps a job request to an engine configuration
func engineConfig(rc RunConfig) (engine.Config, error) {
	cfg := engine.DefaultConfig()

	method, err := scalarize.ParseMethod(rc.Method)
	if err != nil {
		return cfg, err
	}
	cfg.Method = method
	cfg.Points = rc.Points
	if rc.Tolerance > 0 {
		cfg.Tolerance = rc.Tolerance
	}
	cfg.HotStart = rc.HotStartOn()
	cfg.Workers = rc.Workers
	cfg.Filter.KeepUnconverged = rc.KeepUnconverged
	return cfg, nil
}

// monitorProgress periodically broadcasts progress events while the engine runs
func monitorProgress(ctx context.Context, jm *JobManager, eng *engine.Engine, jobID string, startTime time.Time, done chan struct{}) {
	ticker := time.NewTicker(500 * time.Millisecond) // Throttle to 2 updates per second
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			solved, total := eng.Progress()

			jm.UpdateJob(jobID, func(j *Job) {
				j.Solved = solved
				j.Total = total
			})

			// Get current job state
			job, exists := jm.GetJob(jobID)
			if !exists {
				return
			}

			elapsed := time.Since(startTime).Seconds()
			var sps float64
			if elapsed > 0 && solved > 0 {
				sps = float64(solved) / elapsed
			}

			// Broadcast progress event
			jm.broadcaster.Broadcast(ProgressEvent{
				JobID:     jobID,
				State:     job.State,
				Solved:    solved,
				Total:     total,
				SPS:       sps,
				Timestamp: time.Now(),
			})
		}
	}
}

// markJobFailed marks a job as failed with an error message
func markJobFailed(jm *JobManager, jobID string, err error) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateFailed
		j.Error = err.Error()
		j.EndTime = &endTime
	})
	slog.Error("Job failed", "job_id", jobID, "error", err)

	broadcastFinalState(jm, jobID, StateFailed)
}

// markJobCancelled marks a job as cancelled
func markJobCancelled(jm *JobManager, jobID string) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCancelled
		j.EndTime = &endTime
	})
	slog.Info("Job cancelled", "job_id", jobID)

	broadcastFinalState(jm, jobID, StateCancelled)
}

// broadcastFinalState pushes a terminal state to stream subscribers so they
// do not wait on a job that will never progress again
func broadcastFinalState(jm *JobManager, jobID string, state JobState) {
	job, exists := jm.GetJob(jobID)
	if !exists {
		return
	}
	jm.broadcaster.Broadcast(ProgressEvent{
		JobID:     jobID,
		State:     state,
		Solved:    job.Solved,
		Total:     job.Total,
		Timestamp: time.Now(),
	})
}
