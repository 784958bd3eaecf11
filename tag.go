// Package nbt reads and writes Minecraft's Named Binary Tag format: a tree of
// typed values serialized big-endian, optionally gzip-framed on disk.
//
// Strings are treated as plain UTF-8. The format technically uses Java's
// modified UTF-8; names and values that depend on MUTF-8 surrogate encoding
// will not round-trip. In practice save data is ASCII-safe.
package nbt

import (
	"fmt"
	"slices"

	"github.com/bongnv/go-container/orderedmap"
)

// Type identifies one of the thirteen NBT tag types.
type Type byte

const (
	TypeEnd Type = iota
	TypeByte
	TypeShort
	TypeInt
	TypeLong
	TypeFloat
	TypeDouble
	TypeByteArray
	TypeString
	TypeList
	TypeCompound
	TypeIntArray
	TypeLongArray
)

var typeNames = map[Type]string{
	TypeEnd:       "End",
	TypeByte:      "Byte",
	TypeShort:     "Short",
	TypeInt:       "Int",
	TypeLong:      "Long",
	TypeFloat:     "Float",
	TypeDouble:    "Double",
	TypeByteArray: "ByteArray",
	TypeString:    "String",
	TypeList:      "List",
	TypeCompound:  "Compound",
	TypeIntArray:  "IntArray",
	TypeLongArray: "LongArray",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Type(0x%02x)", byte(t))
}

func (t Type) valid() bool {
	return t <= TypeLongArray
}

// Tag is one node of an NBT tree. The set of implementations is closed: the
// twelve value types below plus the End terminator, which never appears as a
// node and has no Tag representation.
type Tag interface {
	Type() Type
}

type Byte int8
type Short int16
type Int int32
type Long int64
type Float float32
type Double float64
type ByteArray []int8
type String string
type IntArray []int32
type LongArray []int64

func (Byte) Type() Type      { return TypeByte }
func (Short) Type() Type     { return TypeShort }
func (Int) Type() Type       { return TypeInt }
func (Long) Type() Type      { return TypeLong }
func (Float) Type() Type     { return TypeFloat }
func (Double) Type() Type    { return TypeDouble }
func (ByteArray) Type() Type { return TypeByteArray }
func (String) Type() Type    { return TypeString }
func (IntArray) Type() Type  { return TypeIntArray }
func (LongArray) Type() Type { return TypeLongArray }

// List is a homogeneous sequence of unnamed tags. The element type is fixed
// at construction; TypeEnd is allowed only while the list stays empty.
type List struct {
	elem  Type
	items []Tag
}

// NewList creates a list holding tags of type elem.
func NewList(elem Type, items ...Tag) (*List, error) {
	if !elem.valid() {
		return nil, fmt.Errorf("%w: list element %v", ErrUnknownTag, elem)
	}
	l := &List{elem: elem}
	if err := l.Append(items...); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *List) Type() Type { return TypeList }

// ElementType reports the declared type of the list's elements.
func (l *List) ElementType() Type { return l.elem }

func (l *List) Len() int { return len(l.items) }

// At returns the i-th element. It panics if i is out of range, like a slice
// index.
func (l *List) At(i int) Tag { return l.items[i] }

// Append adds tags to the end of the list. All of them must match the
// declared element type.
func (l *List) Append(items ...Tag) error {
	for _, item := range items {
		if item == nil || item.Type() != l.elem {
			return fmt.Errorf("%w: cannot put %v into list of %v", ErrTypeMismatch, tagType(item), l.elem)
		}
	}
	l.items = append(l.items, items...)
	return nil
}

// SetAt replaces the i-th element. It panics if i is out of range.
func (l *List) SetAt(i int, item Tag) error {
	if item == nil || item.Type() != l.elem {
		return fmt.Errorf("%w: cannot put %v into list of %v", ErrTypeMismatch, tagType(item), l.elem)
	}
	l.items[i] = item
	return nil
}

func tagType(t Tag) Type {
	if t == nil {
		return TypeEnd
	}
	return t.Type()
}

// Compound is a mapping from names to tags. Insertion order is preserved;
// setting an existing name replaces its value without moving it.
type Compound struct {
	entries *orderedmap.OrderedMap[string, Tag]
}

func NewCompound() *Compound {
	return &Compound{entries: orderedmap.New[string, Tag]()}
}

func (c *Compound) Type() Type { return TypeCompound }

func (c *Compound) Len() int { return c.entries.Len() }

func (c *Compound) Get(name string) (Tag, bool) {
	return c.entries.Get(name)
}

// Set stores tag under name. Replacing an existing name keeps its slot in
// the iteration order. A nil tag is rejected.
func (c *Compound) Set(name string, tag Tag) error {
	if tag == nil {
		return fmt.Errorf("%w: nil tag for compound entry %q", ErrTypeMismatch, name)
	}
	if _, exists := c.entries.Get(name); !exists {
		c.entries.Set(name, tag)
		return nil
	}

	// The backing map appends a replaced key to the back. Re-push every key
	// that followed the replaced one so the relative order is unchanged.
	var successors []string
	seen := false
	c.entries.Scan(func(key string, _ Tag) bool {
		if key == name {
			seen = true
		} else if seen {
			successors = append(successors, key)
		}
		return true
	})

	c.entries.Set(name, tag)
	for _, key := range successors {
		value, _ := c.entries.Get(key)
		c.entries.Delete(key)
		c.entries.Set(key, value)
	}
	return nil
}

func (c *Compound) Delete(name string) {
	c.entries.Delete(name)
}

// Keys returns the names in insertion order.
func (c *Compound) Keys() []string {
	keys := make([]string, 0, c.entries.Len())
	c.entries.Scan(func(name string, _ Tag) bool {
		keys = append(keys, name)
		return true
	})
	return keys
}

// Range calls fn for each entry in insertion order until fn returns false.
func (c *Compound) Range(fn func(name string, tag Tag) bool) {
	c.entries.Scan(fn)
}

// Equal reports whether two tags are structurally equal. Equality is
// type-sensitive: Byte(5) is not equal to Short(5). Compound comparison
// ignores insertion order; list comparison includes the element type, so two
// empty lists of different element types differ.
func Equal(a, b Tag) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Type() != b.Type() {
		return false
	}
	switch at := a.(type) {
	case Byte, Short, Int, Long, Float, Double, String:
		return a == b
	case ByteArray:
		return slices.Equal(at, b.(ByteArray))
	case IntArray:
		return slices.Equal(at, b.(IntArray))
	case LongArray:
		return slices.Equal(at, b.(LongArray))
	case *List:
		bt := b.(*List)
		if at.elem != bt.elem || len(at.items) != len(bt.items) {
			return false
		}
		for i := range at.items {
			if !Equal(at.items[i], bt.items[i]) {
				return false
			}
		}
		return true
	case *Compound:
		bt := b.(*Compound)
		if at.Len() != bt.Len() {
			return false
		}
		equal := true
		at.Range(func(name string, tag Tag) bool {
			other, ok := bt.Get(name)
			if !ok || !Equal(tag, other) {
				equal = false
			}
			return equal
		})
		return equal
	default:
		return false
	}
}
