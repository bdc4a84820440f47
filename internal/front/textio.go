package front

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/frontopt/frontier/internal/nlp"
	"github.com/frontopt/frontier/internal/scalarize"
)

// WriteText writes the persisted layout: one point per line, variable
// fields then objective fields in declaration order, space separated, no
// header. Floats use shortest round-trip formatting so a reread reproduces
// the exact values.
func WriteText(w io.Writer, points []Point) error {
	bw := bufio.NewWriter(w)
	for _, pt := range points {
		fields := 0
		writeField := func(v float64) {
			if fields > 0 {
				bw.WriteByte(' ')
			}
			bw.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
			fields++
		}
		for _, v := range pt.X {
			writeField(v)
		}
		for _, v := range pt.F {
			writeField(v)
		}
		bw.WriteByte('\n')
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write front: %w", err)
	}
	return nil
}

// ReadText parses the persisted layout back into points given the variable
// and objective counts. The layout carries no status column, so reread
// points are marked converged.
func ReadText(r io.Reader, dim, m int) ([]Point, error) {
	rows, err := ReadVectors(r, dim+m)
	if err != nil {
		return nil, err
	}
	points := make([]Point, len(rows))
	for i, row := range rows {
		points[i] = Point{
			Params: scalarize.Params{Active: -1},
			X:      row[:dim],
			F:      row[dim:],
			Status: nlp.Converged,
		}
	}
	return points, nil
}

// ReadVectors reads whitespace-separated float rows of the given width,
// skipping blank lines. Seed files for initial guesses use this with the
// variable count as width.
func ReadVectors(r io.Reader, width int) ([][]float64, error) {
	if width <= 0 {
		return nil, fmt.Errorf("vector width must be positive, got %d", width)
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var rows [][]float64
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != width {
			return nil, fmt.Errorf("line %d: %d fields, want %d", line, len(fields), width)
		}
		row := make([]float64, width)
		for i, field := range fields {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d field %d: %w", line, i+1, err)
			}
			row[i] = v
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read vectors: %w", err)
	}
	return rows, nil
}

// WriteFile writes the text layout to path atomically (temp file + rename)
func WriteFile(path string, points []Point) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tempPath := path + ".tmp"
	f, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temp front file: %w", err)
	}
	if err := WriteText(f, points); err != nil {
		f.Close()
		os.Remove(tempPath)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close temp front file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename front file: %w", err)
	}
	return nil
}

// ReadFile reads the text layout from path
func ReadFile(path string, dim, m int) ([]Point, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open front file: %w", err)
	}
	defer f.Close()
	return ReadText(f, dim, m)
}

// ReadVectorsFile reads seed vectors from path
func ReadVectorsFile(path string, width int) ([][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open vector file: %w", err)
	}
	defer f.Close()
	return ReadVectors(f, width)
}
