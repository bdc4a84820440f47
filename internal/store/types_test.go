package store

import (
	"encoding/json"
	"testing"
	"time"
)

func TestRunManifest_JSONSerialization(t *testing.T) {
	hot := false
	original := &RunManifest{
		RunID: "test-run-123",
		Config: RunConfig{
			Problem:         "expbump",
			Method:          "nbi",
			Points:          41,
			Tolerance:       1e-8,
			HotStart:        &hot,
			Workers:         4,
			KeepUnconverged: true,
		},
		Variables:   []string{"y1", "y2"},
		Objectives:  []string{"f1", "f2"},
		Subproblems: 41,
		Converged:   39,
		Filtered:    30,
		ElapsedMS:   1234,
		CreatedAt:   time.Date(2026, 8, 25, 10, 30, 0, 0, time.UTC),
	}

	// Serialize to JSON
	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Failed to marshal manifest: %v", err)
	}

	// Verify JSON is not empty
	if len(data) == 0 {
		t.Fatal("Marshaled JSON is empty")
	}

	// Deserialize from JSON
	var restored RunManifest
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("Failed to unmarshal manifest: %v", err)
	}

	// Verify all fields match
	if restored.RunID != original.RunID {
		t.Errorf("RunID mismatch: expected %s, got %s", original.RunID, restored.RunID)
	}
	if restored.Config.Problem != original.Config.Problem {
		t.Errorf("Config.Problem mismatch: expected %s, got %s", original.Config.Problem, restored.Config.Problem)
	}
	if restored.Config.Method != original.Config.Method {
		t.Errorf("Config.Method mismatch: expected %s, got %s", original.Config.Method, restored.Config.Method)
	}
	if restored.Config.Points != original.Config.Points {
		t.Errorf("Config.Points mismatch: expected %d, got %d", original.Config.Points, restored.Config.Points)
	}
	if restored.Config.Tolerance != original.Config.Tolerance {
		t.Errorf("Config.Tolerance mismatch: expected %g, got %g", original.Config.Tolerance, restored.Config.Tolerance)
	}
	if restored.Config.HotStart == nil || *restored.Config.HotStart != false {
		t.Errorf("Config.HotStart mismatch: expected explicit false, got %v", restored.Config.HotStart)
	}
	if !restored.Config.KeepUnconverged {
		t.Error("Config.KeepUnconverged should survive the round trip")
	}
	if len(restored.Variables) != 2 || restored.Variables[0] != "y1" {
		t.Errorf("Variables mismatch: %v", restored.Variables)
	}
	if len(restored.Objectives) != 2 || restored.Objectives[1] != "f2" {
		t.Errorf("Objectives mismatch: %v", restored.Objectives)
	}
	if restored.Subproblems != original.Subproblems {
		t.Errorf("Subproblems mismatch: expected %d, got %d", original.Subproblems, restored.Subproblems)
	}
	if restored.Converged != original.Converged {
		t.Errorf("Converged mismatch: expected %d, got %d", original.Converged, restored.Converged)
	}
	if restored.Filtered != original.Filtered {
		t.Errorf("Filtered mismatch: expected %d, got %d", original.Filtered, restored.Filtered)
	}
	if restored.ElapsedMS != original.ElapsedMS {
		t.Errorf("ElapsedMS mismatch: expected %d, got %d", original.ElapsedMS, restored.ElapsedMS)
	}
	if !restored.CreatedAt.Equal(original.CreatedAt) {
		t.Errorf("CreatedAt mismatch: expected %v, got %v", original.CreatedAt, restored.CreatedAt)
	}
}

func TestRunConfig_HotStartAbsentMeansEnabled(t *testing.T) {
	// A request body without the hotStart key keeps the default behavior.
	var cfg RunConfig
	if err := json.Unmarshal([]byte(`{"problem":"expbump","method":"nbi","points":5}`), &cfg); err != nil {
		t.Fatalf("Failed to unmarshal config: %v", err)
	}
	if cfg.HotStart != nil {
		t.Errorf("Expected nil HotStart for absent key, got %v", *cfg.HotStart)
	}
	if !cfg.HotStartOn() {
		t.Error("Absent hotStart should resolve to enabled")
	}
}

func TestRunConfig_HotStartOn(t *testing.T) {
	on, off := true, false
	testCases := []struct {
		name     string
		hotStart *bool
		want     bool
	}{
		{"nil defaults to on", nil, true},
		{"explicit true", &on, true},
		{"explicit false", &off, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := RunConfig{HotStart: tc.hotStart}
			if got := cfg.HotStartOn(); got != tc.want {
				t.Errorf("HotStartOn() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestRunConfig_Validate_Valid(t *testing.T) {
	cfg := RunConfig{
		Problem:   "expbump",
		Method:    "nbi",
		Points:    21,
		Tolerance: 1e-8,
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Valid config should not have validation error: %v", err)
	}
}

func TestRunConfig_Validate_Invalid(t *testing.T) {
	testCases := []struct {
		name   string
		config RunConfig
	}{
		{"empty problem", RunConfig{Problem: "", Method: "nbi", Points: 5}},
		{"empty method", RunConfig{Problem: "expbump", Method: "", Points: 5}},
		{"unknown method", RunConfig{Problem: "expbump", Method: "simplex", Points: 5}},
		{"one point", RunConfig{Problem: "expbump", Method: "nbi", Points: 1}},
		{"zero points", RunConfig{Problem: "expbump", Method: "nbi", Points: 0}},
		{"negative tolerance", RunConfig{Problem: "expbump", Method: "nbi", Points: 5, Tolerance: -1e-8}},
		{"negative workers", RunConfig{Problem: "expbump", Method: "nbi", Points: 5, Workers: -1}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.config.Validate()
			if err == nil {
				t.Fatalf("Expected validation error for %s", tc.name)
			}
			if _, ok := err.(*ValidationError); !ok {
				t.Errorf("Expected ValidationError, got %T", err)
			}
		})
	}
}

func TestRunManifest_Validate_Valid(t *testing.T) {
	m := createTestManifest("valid-run")

	if err := m.Validate(); err != nil {
		t.Errorf("Valid manifest should not have validation error: %v", err)
	}
}

func TestRunManifest_Validate_Invalid(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(m *RunManifest)
	}{
		{"empty runID", func(m *RunManifest) { m.RunID = "" }},
		{"invalid config", func(m *RunManifest) { m.Config.Points = 0 }},
		{"no variables", func(m *RunManifest) { m.Variables = nil }},
		{"single objective", func(m *RunManifest) { m.Objectives = []string{"f1"} }},
		{"negative subproblems", func(m *RunManifest) { m.Subproblems = -1 }},
		{"converged exceeds subproblems", func(m *RunManifest) { m.Converged = m.Subproblems + 1 }},
		{"filtered exceeds subproblems", func(m *RunManifest) { m.Filtered = m.Subproblems + 1 }},
		{"zero createdAt", func(m *RunManifest) { m.CreatedAt = time.Time{} }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := createTestManifest("test-run")
			tc.mutate(m)

			if err := m.Validate(); err == nil {
				t.Fatalf("Expected validation error for %s", tc.name)
			}
		})
	}
}

func TestRunManifest_ColumnLayout(t *testing.T) {
	m := createTestManifest("test-run")

	if m.Dim() != 2 {
		t.Errorf("Expected 2 variable columns, got %d", m.Dim())
	}
	if m.NumObjectives() != 2 {
		t.Errorf("Expected 2 objective columns, got %d", m.NumObjectives())
	}
}

func TestRunInfo_FromManifest(t *testing.T) {
	m := createTestManifest("test-run")

	info := m.ToInfo()

	if info.RunID != m.RunID {
		t.Errorf("RunID mismatch: expected %s, got %s", m.RunID, info.RunID)
	}
	if info.Problem != m.Config.Problem {
		t.Errorf("Problem mismatch: expected %s, got %s", m.Config.Problem, info.Problem)
	}
	if info.Method != m.Config.Method {
		t.Errorf("Method mismatch: expected %s, got %s", m.Config.Method, info.Method)
	}
	if info.Points != m.Config.Points {
		t.Errorf("Points mismatch: expected %d, got %d", m.Config.Points, info.Points)
	}
	if info.Subproblems != m.Subproblems {
		t.Errorf("Subproblems mismatch: expected %d, got %d", m.Subproblems, info.Subproblems)
	}
	if info.Converged != m.Converged {
		t.Errorf("Converged mismatch: expected %d, got %d", m.Converged, info.Converged)
	}
	if info.Filtered != m.Filtered {
		t.Errorf("Filtered mismatch: expected %d, got %d", m.Filtered, info.Filtered)
	}
	if !info.CreatedAt.Equal(m.CreatedAt) {
		t.Errorf("CreatedAt mismatch")
	}
}

func TestNewRunManifest(t *testing.T) {
	cfg := RunConfig{
		Problem:   "expbump",
		Method:    "ws",
		Points:    11,
		Tolerance: 1e-6,
	}

	m := NewRunManifest("test-run", cfg, []string{"y1", "y2"}, []string{"f1", "f2"})

	if m.RunID != "test-run" {
		t.Errorf("RunID mismatch: expected test-run, got %s", m.RunID)
	}
	if m.Config.Method != "ws" {
		t.Errorf("Method mismatch: expected ws, got %s", m.Config.Method)
	}
	if m.Dim() != 2 || m.NumObjectives() != 2 {
		t.Errorf("Column layout mismatch: %d variables, %d objectives", m.Dim(), m.NumObjectives())
	}
	if m.CreatedAt.IsZero() {
		t.Error("CreatedAt should not be zero")
	}
}
