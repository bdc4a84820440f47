package server

import (
	"context"
	"testing"
	"time"
)

func testRunConfig() RunConfig {
	return RunConfig{
		Problem:   "binh",
		Method:    "ws",
		Points:    3,
		Tolerance: 1e-6,
	}
}

func TestJobManager_CreateJob(t *testing.T) {
	jm := NewJobManager()

	job := jm.CreateJob(testRunConfig())

	if job.ID == "" {
		t.Error("Job ID should not be empty")
	}

	if job.State != StatePending {
		t.Errorf("Initial state should be pending, got %s", job.State)
	}

	if job.Config.Problem != "binh" {
		t.Errorf("Config not set correctly")
	}
}

func TestJobManager_GetJob(t *testing.T) {
	jm := NewJobManager()

	job := jm.CreateJob(testRunConfig())

	retrieved, exists := jm.GetJob(job.ID)
	if !exists {
		t.Error("Job should exist")
	}

	if retrieved.ID != job.ID {
		t.Error("Retrieved wrong job")
	}

	_, exists = jm.GetJob("nonexistent")
	if exists {
		t.Error("Should not find nonexistent job")
	}
}

func TestJobManager_GetJobReturnsSnapshot(t *testing.T) {
	jm := NewJobManager()

	job := jm.CreateJob(testRunConfig())

	snapshot, _ := jm.GetJob(job.ID)
	snapshot.State = StateFailed
	snapshot.Solved = 99

	// Mutating the snapshot must not affect the managed job
	fresh, _ := jm.GetJob(job.ID)
	if fresh.State != StatePending {
		t.Errorf("Managed job state changed through snapshot: %s", fresh.State)
	}
	if fresh.Solved != 0 {
		t.Errorf("Managed job progress changed through snapshot: %d", fresh.Solved)
	}
}

func TestJobManager_ListJobs(t *testing.T) {
	jm := NewJobManager()

	if len(jm.ListJobs()) != 0 {
		t.Error("Should start with no jobs")
	}

	jm.CreateJob(testRunConfig())
	jm.CreateJob(testRunConfig())

	jobs := jm.ListJobs()
	if len(jobs) != 2 {
		t.Errorf("Expected 2 jobs, got %d", len(jobs))
	}
}

func TestJobManager_UpdateJob(t *testing.T) {
	jm := NewJobManager()

	job := jm.CreateJob(testRunConfig())

	err := jm.UpdateJob(job.ID, func(j *Job) {
		j.State = StateRunning
		j.Solved = 10
		j.Total = 21
	})

	if err != nil {
		t.Errorf("Update should succeed: %v", err)
	}

	updated, _ := jm.GetJob(job.ID)
	if updated.State != StateRunning {
		t.Error("State should be updated")
	}
	if updated.Solved != 10 {
		t.Error("Solved should be updated")
	}
	if updated.Total != 21 {
		t.Error("Total should be updated")
	}

	err = jm.UpdateJob("nonexistent", func(j *Job) {})
	if err == nil {
		t.Error("Update of nonexistent job should fail")
	}
}

func TestJobManager_GetRunningJobs(t *testing.T) {
	jm := NewJobManager()

	running := jm.CreateJob(testRunConfig())
	jm.CreateJob(testRunConfig())

	jm.UpdateJob(running.ID, func(j *Job) {
		j.State = StateRunning
	})

	jobs := jm.GetRunningJobs()
	if len(jobs) != 1 {
		t.Fatalf("Expected 1 running job, got %d", len(jobs))
	}
	if jobs[0].ID != running.ID {
		t.Error("Wrong job reported as running")
	}
}

func TestJobManager_CancelJob(t *testing.T) {
	jm := NewJobManager()

	job := jm.CreateJob(testRunConfig())
	ctx, cancel := context.WithCancel(context.Background())
	jm.registerCancel(job.ID, cancel)

	if !jm.CancelJob(job.ID) {
		t.Fatal("Cancel of pending job should succeed")
	}

	select {
	case <-ctx.Done():
		// context cancelled as expected
	case <-time.After(time.Second):
		t.Fatal("Cancel did not propagate to the job context")
	}

	if jm.CancelJob("nonexistent") {
		t.Error("Cancel of unknown job should fail")
	}

	jm.UpdateJob(job.ID, func(j *Job) {
		j.State = StateCompleted
	})
	if jm.CancelJob(job.ID) {
		t.Error("Cancel of completed job should fail")
	}
}

func TestJobManager_ReleaseCancel(t *testing.T) {
	jm := NewJobManager()

	job := jm.CreateJob(testRunConfig())
	ctx, cancel := context.WithCancel(context.Background())
	jm.registerCancel(job.ID, cancel)

	jm.releaseCancel(job.ID)

	select {
	case <-ctx.Done():
		// release invokes the cancel func so contexts are not leaked
	case <-time.After(time.Second):
		t.Fatal("releaseCancel should invoke the cancel function")
	}

	// Releasing twice is harmless
	jm.releaseCancel(job.ID)
}

func TestJobManager_ThreadSafety(t *testing.T) {
	jm := NewJobManager()

	job := jm.CreateJob(testRunConfig())

	// Simulate concurrent updates
	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func(n int) {
			jm.UpdateJob(job.ID, func(j *Job) {
				j.Solved = n
				time.Sleep(1 * time.Millisecond)
			})
			done <- true
		}(i)
	}

	// Wait for all updates
	for i := 0; i < 10; i++ {
		<-done
	}

	// Should not crash - actual value depends on scheduling
	_, exists := jm.GetJob(job.ID)
	if !exists {
		t.Error("Job should still exist after concurrent updates")
	}
}
