package server

import (
	"context"
	"testing"
	"time"

	"github.com/frontopt/frontier/internal/store"
)

func TestRunJob_Success(t *testing.T) {
	st, err := store.NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	jm := NewJobManager()
	job := jm.CreateJob(testRunConfig())

	ctx := context.Background()
	if err := runJob(ctx, jm, st, job.ID); err != nil {
		t.Fatalf("runJob should succeed: %v", err)
	}

	updated, _ := jm.GetJob(job.ID)
	if updated.State != StateCompleted {
		t.Fatalf("Job should be completed, got %s (%s)", updated.State, updated.Error)
	}
	if updated.Total != 3 {
		t.Errorf("Expected 3 subproblems, got %d", updated.Total)
	}
	if updated.Solved != 3 {
		t.Errorf("Expected 3 solved, got %d", updated.Solved)
	}
	if updated.Converged != 3 {
		t.Errorf("Expected 3 converged on a convex problem, got %d", updated.Converged)
	}
	if updated.Filtered < 1 || updated.Filtered > 3 {
		t.Errorf("Filtered count out of range: %d", updated.Filtered)
	}
	if updated.EndTime == nil {
		t.Error("EndTime should be set")
	}

	// The run is persisted under the job ID
	m, err := st.LoadManifest(job.ID)
	if err != nil {
		t.Fatalf("Run manifest should be saved: %v", err)
	}
	if m.Subproblems != 3 {
		t.Errorf("Manifest subproblems mismatch: %d", m.Subproblems)
	}
	if m.Dim() != 2 || m.NumObjectives() != 2 {
		t.Errorf("Manifest column layout mismatch: %d/%d", m.Dim(), m.NumObjectives())
	}

	points, err := st.LoadFront(job.ID, false)
	if err != nil {
		t.Fatalf("Front should be saved: %v", err)
	}
	if len(points) != 3 {
		t.Errorf("Expected 3 persisted points, got %d", len(points))
	}
}

func TestRunJob_NoStore(t *testing.T) {
	jm := NewJobManager()
	cfg := testRunConfig()
	cfg.Points = 2
	job := jm.CreateJob(cfg)

	if err := runJob(context.Background(), jm, nil, job.ID); err != nil {
		t.Fatalf("runJob without a store should succeed: %v", err)
	}

	updated, _ := jm.GetJob(job.ID)
	if updated.State != StateCompleted {
		t.Errorf("Job should be completed, got %s (%s)", updated.State, updated.Error)
	}
}

func TestRunJob_UnknownProblem(t *testing.T) {
	jm := NewJobManager()
	cfg := testRunConfig()
	cfg.Problem = "nonexistent"
	job := jm.CreateJob(cfg)

	err := runJob(context.Background(), jm, nil, job.ID)
	if err == nil {
		t.Error("runJob should fail for an unknown problem")
	}

	updated, _ := jm.GetJob(job.ID)
	if updated.State != StateFailed {
		t.Errorf("Job should be failed, got %s", updated.State)
	}
	if updated.Error == "" {
		t.Error("Error message should be set")
	}
}

func TestRunJob_Cancellation(t *testing.T) {
	jm := NewJobManager()
	config := RunConfig{
		Problem: "zdt1",
		Method:  "ws",
		Points:  500, // Long-running job
	}

	job := jm.CreateJob(config)

	ctx, cancel := context.WithCancel(context.Background())
	jm.registerCancel(job.ID, cancel)

	done := make(chan error)
	go func() {
		done <- runJob(ctx, jm, nil, job.ID)
	}()

	// Give it time to start
	time.Sleep(50 * time.Millisecond)

	// Cancel the job
	cancel()

	// Wait for completion
	if err := <-done; err == nil {
		t.Error("runJob should return error when cancelled")
	}

	updated, _ := jm.GetJob(job.ID)
	if updated.State != StateCancelled {
		t.Errorf("Job should be cancelled, got %s", updated.State)
	}
	if updated.EndTime == nil {
		t.Error("EndTime should be set on cancellation")
	}
}

func TestEngineConfig_Mapping(t *testing.T) {
	on := false
	rc := RunConfig{
		Problem:         "binh",
		Method:          "nbi",
		Points:          11,
		Tolerance:       1e-10,
		HotStart:        &on,
		Workers:         4,
		KeepUnconverged: true,
	}

	cfg, err := engineConfig(rc)
	if err != nil {
		t.Fatalf("engineConfig failed: %v", err)
	}

	if string(cfg.Method) != "nbi" {
		t.Errorf("Method mismatch: %s", cfg.Method)
	}
	if cfg.Points != 11 {
		t.Errorf("Points mismatch: %d", cfg.Points)
	}
	if cfg.Tolerance != 1e-10 {
		t.Errorf("Tolerance mismatch: %g", cfg.Tolerance)
	}
	if cfg.HotStart {
		t.Error("HotStart false should map through")
	}
	if cfg.Workers != 4 {
		t.Errorf("Workers mismatch: %d", cfg.Workers)
	}
	if !cfg.Filter.KeepUnconverged {
		t.Error("KeepUnconverged should map through")
	}
}

func TestEngineConfig_Defaults(t *testing.T) {
	rc := RunConfig{Problem: "binh", Method: "ws", Points: 5}

	cfg, err := engineConfig(rc)
	if err != nil {
		t.Fatalf("engineConfig failed: %v", err)
	}

	if !cfg.HotStart {
		t.Error("Absent hotStart should default to enabled")
	}
	if cfg.Tolerance <= 0 {
		t.Errorf("Zero request tolerance should fall back to the engine default, got %g", cfg.Tolerance)
	}
}

func TestEngineConfig_BadMethod(t *testing.T) {
	rc := RunConfig{Problem: "binh", Method: "simplex", Points: 5}

	if _, err := engineConfig(rc); err == nil {
		t.Error("Expected error for unknown method")
	}
}
