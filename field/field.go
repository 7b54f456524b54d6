// Package field holds the 2D sample grids produced by the field simulator
// each step: six electromagnetic components and three material properties.
package field

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Field is a W×H grid of float32 samples stored row-major by y then x.
type Field struct {
	W, H int
	Data []float32
}

// New allocates a zeroed field.
func New(w, h int) *Field {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return &Field{W: w, H: h, Data: make([]float32, w*h)}
}

// FromRows copies rows indexed [y][x] into a new field.
// All rows must have the same length.
func FromRows(rows [][]float32) (*Field, error) {
	h := len(rows)
	if h == 0 {
		return New(0, 0), nil
	}
	w := len(rows[0])
	f := New(w, h)
	for y, row := range rows {
		if len(row) != w {
			return nil, fmt.Errorf("row %d has %d samples, want %d", y, len(row), w)
		}
		copy(f.Data[y*w:(y+1)*w], row)
	}
	return f, nil
}

// Sample returns the value stored at the cell containing (x, y), or 0 when
// the coordinate lies outside [0,W)×[0,H). Fractional coordinates truncate
// toward the stored index.
func (f *Field) Sample(x, y float32) float32 {
	if !(x >= 0 && x < float32(f.W) && y >= 0 && y < float32(f.H)) {
		return 0
	}
	return f.Data[int(y)*f.W+int(x)]
}

// At is the integral form of Sample.
func (f *Field) At(x, y int) float32 {
	if x < 0 || x >= f.W || y < 0 || y >= f.H {
		return 0
	}
	return f.Data[y*f.W+x]
}

// Set writes a value; out-of-range writes are ignored.
func (f *Field) Set(x, y int, v float32) {
	if x < 0 || x >= f.W || y < 0 || y >= f.H {
		return
	}
	f.Data[y*f.W+x] = v
}

// Fill sets every sample to v.
func (f *Field) Fill(v float32) {
	for i := range f.Data {
		f.Data[i] = v
	}
}

// Stats summarizes the sample values of a field.
type Stats struct {
	Min, Max float64
	Sum      float64
	Mean     float64
}

// Stats computes min, max, sum and mean over all samples.
// An empty field returns the zero Stats.
func (f *Field) Stats() Stats {
	if len(f.Data) == 0 {
		return Stats{}
	}
	vals := make([]float64, len(f.Data))
	for i, v := range f.Data {
		vals[i] = float64(v)
	}
	sum := floats.Sum(vals)
	return Stats{
		Min:  floats.Min(vals),
		Max:  floats.Max(vals),
		Sum:  sum,
		Mean: sum / float64(len(vals)),
	}
}
