package types

// Fresher keeps track of new variable IDs
// it is mutable and not suitable for concurrent use.
//
// A single Fresher should be shared by every inference of a program, so that
// variables left in the types of imported bindings never collide with new ones
type Fresher struct {
	freshCount uint64
}

func NewFresher() *Fresher {
	return &Fresher{}
}

// Fresh returns a new unconstrained Variable
func (f *Fresher) Fresh(nameHint string) Variable {
	f.freshCount++
	return Variable{ID: VarID(f.freshCount), NameHint: nameHint}
}
