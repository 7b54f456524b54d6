package scene

import (
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/emfield/field"
)

// CellRecord is one grid cell of a snapshot in CSV form.
type CellRecord struct {
	X            int     `csv:"x"`
	Y            int     `csv:"y"`
	EX           float32 `csv:"ex"`
	EY           float32 `csv:"ey"`
	EZ           float32 `csv:"ez"`
	HX           float32 `csv:"hx"`
	HY           float32 `csv:"hy"`
	HZ           float32 `csv:"hz"`
	Permittivity float32 `csv:"permittivity"`
	Permeability float32 `csv:"permeability"`
	Conductivity float32 `csv:"conductivity"`
}

// Records flattens a snapshot into one record per cell, row by row.
func Records(s *field.Snapshot) []CellRecord {
	w, h := s.Shape()
	records := make([]CellRecord, 0, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			records = append(records, CellRecord{
				X: x, Y: y,
				EX: s.EX.At(x, y), EY: s.EY.At(x, y), EZ: s.EZ.At(x, y),
				HX: s.HX.At(x, y), HY: s.HY.At(x, y), HZ: s.HZ.At(x, y),
				Permittivity: s.Permittivity.At(x, y),
				Permeability: s.Permeability.At(x, y),
				Conductivity: s.Conductivity.At(x, y),
			})
		}
	}
	return records
}

// FromRecords rebuilds a snapshot. The grid spans the largest coordinates
// present; cells without a record stay zero.
func FromRecords(records []CellRecord) (*field.Snapshot, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("no cell records")
	}
	w, h := 0, 0
	for i, r := range records {
		if r.X < 0 || r.Y < 0 {
			return nil, fmt.Errorf("record %d: negative cell (%d,%d)", i, r.X, r.Y)
		}
		w = max(w, r.X+1)
		h = max(h, r.Y+1)
	}

	s := field.NewSnapshot(w, h)
	seen := make([]bool, w*h)
	for i, r := range records {
		idx := r.Y*w + r.X
		if seen[idx] {
			return nil, fmt.Errorf("record %d: duplicate cell (%d,%d)", i, r.X, r.Y)
		}
		seen[idx] = true

		s.EX.Data[idx] = r.EX
		s.EY.Data[idx] = r.EY
		s.EZ.Data[idx] = r.EZ
		s.HX.Data[idx] = r.HX
		s.HY.Data[idx] = r.HY
		s.HZ.Data[idx] = r.HZ
		s.Permittivity.Data[idx] = r.Permittivity
		s.Permeability.Data[idx] = r.Permeability
		s.Conductivity.Data[idx] = r.Conductivity
	}
	return s, nil
}

// WriteCSV writes a snapshot with a header row.
func WriteCSV(w io.Writer, s *field.Snapshot) error {
	if err := gocsv.Marshal(Records(s), w); err != nil {
		return fmt.Errorf("writing snapshot csv: %w", err)
	}
	return nil
}

// ReadCSV reads a snapshot written by WriteCSV or any CSV with the same
// header names, in any row order.
func ReadCSV(r io.Reader) (*field.Snapshot, error) {
	var records []CellRecord
	if err := gocsv.Unmarshal(r, &records); err != nil {
		return nil, fmt.Errorf("reading snapshot csv: %w", err)
	}
	return FromRecords(records)
}

// SaveCSV writes a snapshot to a file.
func SaveCSV(path string, s *field.Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := WriteCSV(f, s); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LoadCSV reads a snapshot from a file.
func LoadCSV(path string) (*field.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return ReadCSV(f)
}
