package field

// Component names used in error messages, CSV headers and logs.
const (
	NameEX           = "ex"
	NameEY           = "ey"
	NameEZ           = "ez"
	NameHX           = "hx"
	NameHY           = "hy"
	NameHZ           = "hz"
	NamePermittivity = "permittivity"
	NamePermeability = "permeability"
	NameConductivity = "conductivity"
)

// Snapshot is one simulator step: the electric and magnetic field components
// plus the three material grids. The caller owns every field; renderers only
// read them for the duration of a frame.
type Snapshot struct {
	EX, EY, EZ *Field
	HX, HY, HZ *Field

	Permittivity *Field
	Permeability *Field
	Conductivity *Field
}

// Named pairs a field with its component name.
type Named struct {
	Name  string
	Field *Field
}

// NewSnapshot allocates nine zeroed w×h fields.
func NewSnapshot(w, h int) *Snapshot {
	return &Snapshot{
		EX: New(w, h), EY: New(w, h), EZ: New(w, h),
		HX: New(w, h), HY: New(w, h), HZ: New(w, h),
		Permittivity: New(w, h),
		Permeability: New(w, h),
		Conductivity: New(w, h),
	}
}

// Fields lists the nine components in a fixed order.
func (s *Snapshot) Fields() []Named {
	return []Named{
		{NameEX, s.EX}, {NameEY, s.EY}, {NameEZ, s.EZ},
		{NameHX, s.HX}, {NameHY, s.HY}, {NameHZ, s.HZ},
		{NamePermittivity, s.Permittivity},
		{NamePermeability, s.Permeability},
		{NameConductivity, s.Conductivity},
	}
}

// Shape returns the dimensions of the electric X component, or 0,0 if unset.
func (s *Snapshot) Shape() (int, int) {
	if s == nil || s.EX == nil {
		return 0, 0
	}
	return s.EX.W, s.EX.H
}
