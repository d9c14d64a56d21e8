// Package value defines the frozen constant values that compiled chunks
// embed: the literals a compiler places in a chunk's constant pool and in
// instruction arguments. The live runtime value model lives above this
// layer; these types only need identity, hashing, and rendering.
package value

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chazu/starling/pkg/collections"
)

// Value is a frozen constant embedded in compiled code. Frozen values are
// immutable once published and may be shared freely.
type Value interface {
	// TypeName returns the Starling type name ("int", "dict", ...).
	TypeName() string
	// Repr returns the source-level rendering of the value.
	Repr() string
	// Hash returns the value's canonical hash. It panics for unhashable
	// kinds (list, dict); embedding one as a mapping key is a compiler
	// defect, not a runtime condition.
	Hash() collections.HashValue
	// Equal reports whether other is the same constant.
	Equal(other Value) bool
}

// HashOf adapts Value.Hash to the collections hash-function shape.
func HashOf(v Value) collections.HashValue { return v.Hash() }

// Eq adapts Value.Equal to the collections equality-function shape.
func Eq(a, b Value) bool { return a.Equal(b) }

// NoneType is the type of None.
type NoneType struct{}

// None is the sole value of NoneType.
var None = NoneType{}

func (NoneType) TypeName() string { return "NoneType" }
func (NoneType) Repr() string     { return "None" }

func (NoneType) Hash() collections.HashValue { return collections.HashString("None") }

func (NoneType) Equal(other Value) bool {
	_, ok := other.(NoneType)
	return ok
}

// Bool is a frozen boolean.
type Bool bool

// True and False are the two Bool constants.
const (
	True  Bool = true
	False Bool = false
)

func (Bool) TypeName() string { return "bool" }

func (b Bool) Repr() string {
	if b {
		return "True"
	}
	return "False"
}

func (b Bool) Hash() collections.HashValue {
	if b {
		return collections.HashInt64(1)
	}
	return collections.HashInt64(0)
}

func (b Bool) Equal(other Value) bool {
	o, ok := other.(Bool)
	return ok && b == o
}

// Int is a frozen integer.
type Int int64

func (Int) TypeName() string { return "int" }

func (i Int) Repr() string { return strconv.FormatInt(int64(i), 10) }

func (i Int) Hash() collections.HashValue { return collections.HashInt64(int64(i)) }

func (i Int) Equal(other Value) bool {
	o, ok := other.(Int)
	return ok && i == o
}

// Str is a frozen string.
type Str string

func (Str) TypeName() string { return "string" }

func (s Str) Repr() string { return strconv.Quote(string(s)) }

func (s Str) Hash() collections.HashValue { return collections.HashString(string(s)) }

func (s Str) Equal(other Value) bool {
	o, ok := other.(Str)
	return ok && s == o
}

// List is a frozen list.
type List []Value

func (List) TypeName() string { return "list" }

func (l List) Repr() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, v := range l {
		if i != 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(v.Repr())
	}
	sb.WriteByte(']')
	return sb.String()
}

func (l List) Hash() collections.HashValue {
	panic(fmt.Sprintf("unhashable type: %s", l.TypeName()))
}

func (l List) Equal(other Value) bool {
	o, ok := other.(List)
	if !ok || len(l) != len(o) {
		return false
	}
	for i := range l {
		if !l[i].Equal(o[i]) {
			return false
		}
	}
	return true
}

// Dict is a frozen mapping. It preserves the literal's insertion order, so
// rendering and iteration are deterministic.
type Dict struct {
	entries *collections.SmallMap[Value, Value]
}

// NewDict creates an empty frozen-dict under construction. The compiler
// populates it with SetKey and then embeds it; after embedding it must not
// be mutated.
func NewDict() *Dict {
	return &Dict{entries: collections.NewSmallMap[Value, Value](HashOf, Eq)}
}

func (*Dict) TypeName() string { return "dict" }

func (d *Dict) Repr() string {
	var sb strings.Builder
	sb.WriteByte('{')
	first := true
	d.entries.All(func(k, v Value) bool {
		if !first {
			sb.WriteString(", ")
		}
		first = false
		sb.WriteString(k.Repr())
		sb.WriteString(": ")
		sb.WriteString(v.Repr())
		return true
	})
	sb.WriteByte('}')
	return sb.String()
}

func (d *Dict) Hash() collections.HashValue {
	panic(fmt.Sprintf("unhashable type: %s", d.TypeName()))
}

func (d *Dict) Equal(other Value) bool {
	o, ok := other.(*Dict)
	if !ok {
		return false
	}
	// Dict constants compare by content and insertion order both, so two
	// chunks compile identically only when their literals match exactly.
	return d.entries.EqOrdered(o.entries, Eq)
}

// SetKey stores v under k. The key must be hashable.
func (d *Dict) SetKey(k, v Value) {
	d.entries.Insert(k, v)
}

// Get returns the value stored for k.
func (d *Dict) Get(k Value) (Value, bool) {
	return d.entries.Get(k)
}

// Len returns the number of entries.
func (d *Dict) Len() int { return d.entries.Len() }

// All calls yield for each entry in insertion order until yield returns
// false.
func (d *Dict) All(yield func(k, v Value) bool) {
	d.entries.All(yield)
}
