package nbt

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Encoder writes raw (uncompressed) NBT data. It mirrors Decoder byte for
// byte: any tree built through this package's constructors round-trips
// exactly.
type Encoder struct {
	w io.Writer
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Encode writes tag as a named root tag.
func (e *Encoder) Encode(tag Tag, name string) error {
	if tag == nil {
		return fmt.Errorf("%w: nil root tag", ErrTypeMismatch)
	}
	if err := e.writeType(tag.Type()); err != nil {
		return err
	}
	if err := e.writeString(name); err != nil {
		return err
	}
	return e.writePayload(tag)
}

func (e *Encoder) writePayload(tag Tag) error {
	switch t := tag.(type) {
	case Byte:
		return e.writeValue(int8(t))
	case Short:
		return e.writeValue(int16(t))
	case Int:
		return e.writeValue(int32(t))
	case Long:
		return e.writeValue(int64(t))
	case Float:
		return e.writeValue(math.Float32bits(float32(t)))
	case Double:
		return e.writeValue(math.Float64bits(float64(t)))

	case ByteArray:
		if err := e.writeLength(len(t)); err != nil {
			return err
		}
		return e.writeValue([]int8(t))
	case IntArray:
		if err := e.writeLength(len(t)); err != nil {
			return err
		}
		return e.writeValue([]int32(t))
	case LongArray:
		if err := e.writeLength(len(t)); err != nil {
			return err
		}
		return e.writeValue([]int64(t))

	case String:
		return e.writeString(string(t))

	case *List:
		if err := e.writeType(t.elem); err != nil {
			return err
		}
		if err := e.writeLength(len(t.items)); err != nil {
			return err
		}
		for _, item := range t.items {
			if err := e.writePayload(item); err != nil {
				return err
			}
		}
		return nil

	case *Compound:
		var err error
		t.Range(func(name string, item Tag) bool {
			if err = e.writeType(item.Type()); err != nil {
				return false
			}
			if err = e.writeString(name); err != nil {
				return false
			}
			err = e.writePayload(item)
			return err == nil
		})
		if err != nil {
			return err
		}
		return e.writeType(TypeEnd)
	}

	return fmt.Errorf("%w: %T", ErrUnknownTag, tag)
}

func (e *Encoder) writeType(id Type) error {
	_, err := e.w.Write([]byte{byte(id)})
	return err
}

func (e *Encoder) writeString(s string) error {
	if len(s) > math.MaxUint16 {
		return fmt.Errorf("nbt: string of %d bytes exceeds 16-bit length prefix", len(s))
	}
	if err := e.writeValue(uint16(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(e.w, s)
	return err
}

func (e *Encoder) writeLength(n int) error {
	if n > math.MaxInt32 {
		return fmt.Errorf("nbt: array of %d elements exceeds 32-bit length prefix", n)
	}
	return e.writeValue(int32(n))
}

func (e *Encoder) writeValue(v any) error {
	return binary.Write(e.w, binary.BigEndian, v)
}
