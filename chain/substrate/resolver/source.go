package resolver

// Choice is one entry of a single-choice selection.
type Choice struct {
	// returned when chosen
	Value string
	Label string
	// shown next to the label, e.g. documentation or a type
	Hint string
}

// Source supplies values while resolving a call, either from fragments given up front or from the operator.
type Source interface {
	// NextPositional consumes the next pre-supplied fragment, if any remain.
	NextPositional() (string, bool)
	// Input asks for free text. The placeholder is a hint only, the default is returned on empty input.
	Input(label string, placeholder string, defaultValue string) (string, error)
	// Select asks for exactly one of the choices and returns its value.
	Select(label string, choices []Choice) (string, error)
	Confirm(label string, initial bool) (bool, error)
}

// Fragments is a Source of pre-supplied values only. Any interactive request fails.
type Fragments struct {
	values []string
	pos    int
}

var _ Source = &Fragments{}

func NewFragments(values ...string) *Fragments {
	return &Fragments{values: values}
}

func (f *Fragments) NextPositional() (string, bool) {
	if f.pos >= len(f.values) {
		return "", false
	}
	value := f.values[f.pos]
	f.pos++
	return value, true
}

// Remaining counts the fragments not consumed yet.
func (f *Fragments) Remaining() int {
	return len(f.values) - f.pos
}

// Rest consumes and returns the fragments not consumed yet.
func (f *Fragments) Rest() []string {
	rest := f.values[f.pos:]
	f.pos = len(f.values)
	return rest
}

func (f *Fragments) Input(label string, _ string, _ string) (string, error) {
	return "", errNonInteractive(label)
}

func (f *Fragments) Select(label string, _ []Choice) (string, error) {
	return "", errNonInteractive(label)
}

func (f *Fragments) Confirm(label string, _ bool) (bool, error) {
	return false, errNonInteractive(label)
}
