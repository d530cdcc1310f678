package engine

type optionKind int

const (
	optionInt optionKind = iota
	optionReal
)

func (k optionKind) String() string {
	if k == optionInt {
		return "integer"
	}
	return "real"
}

type option struct {
	name string
	kind optionKind
	i    int
	r    float64
}

// Options is an ordered collection of named parameter values. Nothing is
// validated here; names and kinds are checked against the computation's
// schema at dispatch time, where the schema is known. When a name repeats,
// the later entry wins during binding.
type Options []option

// DefaultOptions returns an empty set, leaving every parameter at the
// computation's default.
func DefaultOptions() Options {
	return nil
}

// AddInt appends an integer-valued option and returns the extended set, so
// calls can be chained.
func (o Options) AddInt(name string, v int) Options {
	return append(o, option{name: name, kind: optionInt, i: v})
}

// AddReal appends a real-valued option and returns the extended set.
func (o Options) AddReal(name string, v float64) Options {
	return append(o, option{name: name, kind: optionReal, r: v})
}
