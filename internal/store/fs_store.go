package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/frontopt/frontier/internal/front"
)

// FSStore implements the Store interface using filesystem-based persistence.
// Runs are stored in a directory structure: <baseDir>/runs/<runID>/ holding
// manifest.json, front.txt, front_filtered.txt, and optionally trace.jsonl.
//
// Thread-safety: all writes go through atomic temp file + rename, so no
// locks are needed and concurrent calls are safe.
type FSStore struct {
	baseDir string // root directory for all run data (e.g., "./data")
}

// NewFSStore creates a new filesystem-based store.
// The baseDir will be created if it doesn't exist.
func NewFSStore(baseDir string) (*FSStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &FSStore{baseDir: baseDir}, nil
}

// runDir returns the directory path for a given run ID.
func (fs *FSStore) runDir(runID string) string {
	return filepath.Join(fs.baseDir, "runs", runID)
}

// manifestPath returns the path to the manifest.json file for a run.
func (fs *FSStore) manifestPath(runID string) string {
	return filepath.Join(fs.runDir(runID), "manifest.json")
}

// frontPath returns the path to a persisted front file.
func (fs *FSStore) frontPath(runID string, filtered bool) string {
	name := "front.txt"
	if filtered {
		name = "front_filtered.txt"
	}
	return filepath.Join(fs.runDir(runID), name)
}

// SaveRun atomically persists the manifest and both fronts for a run.
// Uses temp file + rename for the manifest; the front files go through
// front.WriteFile which does the same.
func (fs *FSStore) SaveRun(m *RunManifest, unfiltered, filtered []front.Point) error {
	if m == nil {
		return fmt.Errorf("manifest cannot be nil")
	}
	if err := m.Validate(); err != nil {
		return fmt.Errorf("invalid manifest: %w", err)
	}

	runDir := fs.runDir(m.RunID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return fmt.Errorf("failed to create run directory: %w", err)
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize manifest: %w", err)
	}

	tempPath := fs.manifestPath(m.RunID) + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp manifest file: %w", err)
	}

	finalPath := fs.manifestPath(m.RunID)
	if err := os.Rename(tempPath, finalPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename manifest file: %w", err)
	}

	if err := front.WriteFile(fs.frontPath(m.RunID, false), unfiltered); err != nil {
		return fmt.Errorf("failed to write front: %w", err)
	}
	if err := front.WriteFile(fs.frontPath(m.RunID, true), filtered); err != nil {
		return fmt.Errorf("failed to write filtered front: %w", err)
	}

	slog.Debug("Run saved", "runID", m.RunID, "path", runDir)
	return nil
}

// LoadManifest retrieves the manifest for the given run.
func (fs *FSStore) LoadManifest(runID string) (*RunManifest, error) {
	if runID == "" {
		return nil, fmt.Errorf("runID cannot be empty")
	}

	path := fs.manifestPath(runID)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &NotFoundError{RunID: runID}
		}
		return nil, fmt.Errorf("failed to read manifest file: %w", err)
	}

	var m RunManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to deserialize manifest: %w", err)
	}

	slog.Debug("Manifest loaded", "runID", runID, "path", path)
	return &m, nil
}

// LoadFront reads a persisted front back using the manifest's column layout.
func (fs *FSStore) LoadFront(runID string, filtered bool) ([]front.Point, error) {
	m, err := fs.LoadManifest(runID)
	if err != nil {
		return nil, err
	}

	path := fs.frontPath(runID, filtered)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, &NotFoundError{RunID: runID}
	}

	points, err := front.ReadFile(path, m.Dim(), m.NumObjectives())
	if err != nil {
		return nil, fmt.Errorf("failed to read front file: %w", err)
	}
	return points, nil
}

// ListRuns returns metadata for all stored runs.
func (fs *FSStore) ListRuns() ([]RunInfo, error) {
	runsDir := filepath.Join(fs.baseDir, "runs")

	if _, err := os.Stat(runsDir); os.IsNotExist(err) {
		// no runs exist yet
		return []RunInfo{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to stat runs directory: %w", err)
	}

	entries, err := os.ReadDir(runsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read runs directory: %w", err)
	}

	var infos []RunInfo
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		runID := entry.Name()
		if _, err := os.Stat(fs.manifestPath(runID)); os.IsNotExist(err) {
			continue // skip directories without a manifest
		}

		m, err := fs.LoadManifest(runID)
		if err != nil {
			slog.Warn("Failed to load manifest for listing", "runID", runID, "error", err)
			continue
		}
		infos = append(infos, m.ToInfo())
	}

	slog.Debug("Listed runs", "count", len(infos))
	return infos, nil
}

// DeleteRun removes the run directory and all artifacts in it.
func (fs *FSStore) DeleteRun(runID string) error {
	if runID == "" {
		return fmt.Errorf("runID cannot be empty")
	}

	runDir := fs.runDir(runID)
	if _, err := os.Stat(runDir); os.IsNotExist(err) {
		return &NotFoundError{RunID: runID}
	} else if err != nil {
		return fmt.Errorf("failed to stat run directory: %w", err)
	}

	if err := os.RemoveAll(runDir); err != nil {
		return fmt.Errorf("failed to remove run directory: %w", err)
	}

	slog.Debug("Run deleted", "runID", runID, "path", runDir)
	return nil
}
