package types

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/cottand/sema/util/hset"
)

// VarID identifies a Variable. IDs are handed out by a Fresher and are unique
// for every Fresher shared across a program.
type VarID uint64

// Type is the algebraic representation of the types the engine reasons about.
//
// The following types exist:
//
//	Variable:    not-yet-known type, resolved through TypeConstraints
//	Parametric:  named type applied to zero or more arguments (Number, List<a>, Map<k, v>...)
//	Curried:     function type, as a chain of parameters ending in the result
//	Union:       two or more types, any of which is an acceptable instance
//
// Types are values: they are never mutated in place, and unification
// always produces new ones.
type Type interface {
	fmt.Stringer
	// Hash is structural: equal types have equal hashes
	Hash() uint64
	isType()
}

var (
	_ Type = Variable{}
	_ Type = Parametric{}
	_ Type = Curried{}
	_ Type = Union{}
)

const (
	NumberName  = "Number"
	StringName  = "String"
	BooleanName = "Boolean"
	VoidName    = "Void"
	ListName    = "List"
	MapName     = "Map"
	TupleName   = "Tuple"
	// TypeName is the type of identifiers which name a primitive type, like `Number`
	TypeName = "Type"
)

var (
	Number  = Parametric{Name: NumberName}
	String  = Parametric{Name: StringName}
	Boolean = Parametric{Name: BooleanName}
	// Void is the sentinel parameter of functions declared without parameters
	Void = Parametric{Name: VoidName}
)

// PrimitiveNames are the names of the zero-argument built-in types
var PrimitiveNames = []string{NumberName, StringName, BooleanName, VoidName}

type Variable struct {
	ID VarID
	// NameHint may be ""
	NameHint string
}

func (Variable) isType() {}

func (v Variable) String() string {
	if v.NameHint != "" {
		return fmt.Sprintf("'%s%d", v.NameHint, v.ID)
	}
	return fmt.Sprintf("'t%d", v.ID)
}

func (v Variable) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("Variable")
	arr = binary.LittleEndian.AppendUint64(arr, uint64(v.ID))
	_, _ = h.Write(arr)
	return h.Sum64()
}

type Parametric struct {
	Name   string
	Params []Type
}

func (Parametric) isType() {}

func (t Parametric) String() string {
	if len(t.Params) == 0 {
		return t.Name
	}
	return t.Name + "<" + joinTypes(t.Params, ", ") + ">"
}

func (t Parametric) Hash() uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte("Parametric"))
	_, _ = h.Write([]byte(t.Name))
	arr := make([]byte, 0, 8*len(t.Params))
	for _, param := range t.Params {
		arr = binary.LittleEndian.AppendUint64(arr, param.Hash())
	}
	_, _ = h.Write(arr)
	return h.Sum64()
}

// Curried is a function type. The last of Params is the result type,
// so a Curried with a single parameter is a function which takes no arguments.
type Curried struct {
	Params []Type
}

func (Curried) isType() {}

// NewCurried panics when params is empty
func NewCurried(params ...Type) Curried {
	if len(params) == 0 {
		panic("curried type must have at least one parameter")
	}
	return Curried{Params: params}
}

func (t Curried) String() string {
	return "(" + joinTypes(t.Params, " -> ") + ")"
}

func (t Curried) Hash() uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte("Curried"))
	arr := make([]byte, 0, 8*len(t.Params))
	for _, param := range t.Params {
		arr = binary.LittleEndian.AppendUint64(arr, param.Hash())
	}
	_, _ = h.Write(arr)
	return h.Sum64()
}

// Result is the type returned once every argument is applied
func (t Curried) Result() Type {
	return t.Params[len(t.Params)-1]
}

// Arguments are the parameters which must be applied, without the leading Void
func (t Curried) Arguments() []Type {
	params := dropVoid(t.Params)
	return params[:len(params)-1]
}

// Union is never nested directly inside another Union, and always has at least two members.
// Build one with NewUnion.
type Union struct {
	Params []Type
}

func (Union) isType() {}

func (t Union) String() string {
	return joinTypes(t.Params, " | ")
}

func (t Union) Hash() uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte("Union"))
	arr := make([]byte, 0, 8*len(t.Params))
	for _, param := range t.Params {
		arr = binary.LittleEndian.AppendUint64(arr, param.Hash())
	}
	_, _ = h.Write(arr)
	return h.Sum64()
}

// NewUnion flattens nested unions and removes structurally equal members,
// keeping the order in which members were first seen.
//
// When a single member is left, that member is returned instead of a Union.
func NewUnion(members ...Type) Type {
	if len(members) == 0 {
		panic("union must have at least one member")
	}
	seen := hset.Empty[Type](TypeHasher{})
	for _, member := range members {
		if asUnion, ok := member.(Union); ok {
			seen.Add(asUnion.Params...)
			continue
		}
		seen.Add(member)
	}
	flat := seen.AsSlice()
	if len(flat) == 1 {
		return flat[0]
	}
	return Union{Params: flat}
}

// NewList, NewMap and NewTuple are shorthands for the built-in Parametric types
func NewList(elem Type) Parametric { return Parametric{Name: ListName, Params: []Type{elem}} }

func NewMap(key, value Type) Parametric {
	return Parametric{Name: MapName, Params: []Type{key, value}}
}

func NewTuple(elems ...Type) Parametric { return Parametric{Name: TupleName, Params: elems} }

// Equal compares types structurally
func Equal(a, b Type) bool {
	switch a := a.(type) {
	case Variable:
		b, ok := b.(Variable)
		return ok && a.ID == b.ID
	case Parametric:
		b, ok := b.(Parametric)
		return ok && a.Name == b.Name && equalAll(a.Params, b.Params)
	case Curried:
		b, ok := b.(Curried)
		return ok && equalAll(a.Params, b.Params)
	case Union:
		b, ok := b.(Union)
		return ok && equalAll(a.Params, b.Params)
	default:
		return false
	}
}

func equalAll(as, bs []Type) bool {
	if len(as) != len(bs) {
		return false
	}
	for i := range as {
		if !Equal(as[i], bs[i]) {
			return false
		}
	}
	return true
}

// TypeHasher implements immutable.Hasher for Type
type TypeHasher struct{}

func (TypeHasher) Hash(t Type) uint32 {
	h := t.Hash()
	return uint32(h ^ (h >> 32))
}

func (TypeHasher) Equal(a, b Type) bool { return Equal(a, b) }

func joinTypes(ts []Type, sep string) string {
	sb := strings.Builder{}
	for i, t := range ts {
		if i > 0 {
			sb.WriteString(sep)
		}
		if _, isUnion := t.(Union); isUnion {
			sb.WriteString("(" + t.String() + ")")
			continue
		}
		sb.WriteString(t.String())
	}
	return sb.String()
}

// dropVoid removes the leading Void parameter of a function declared with no parameters
func dropVoid(params []Type) []Type {
	if len(params) >= 2 && Equal(params[0], Void) {
		return params[1:]
	}
	return params
}
