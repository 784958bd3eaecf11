package nbt

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// maxDepth bounds List/Compound nesting so corrupt input fails cleanly
// instead of exhausting the stack.
const maxDepth = 512

// Decoder reads a stream of raw (uncompressed) NBT data.
type Decoder struct {
	r io.Reader
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r}
}

// Decode reads one named root tag and returns it together with its name.
// The root is conventionally a Compound but any tag type other than End is
// accepted.
func (d *Decoder) Decode() (Tag, string, error) {
	id, err := d.readType()
	if err != nil {
		return nil, "", err
	}
	if id == TypeEnd {
		return nil, "", fmt.Errorf("%w: end tag at root", ErrUnknownTag)
	}
	name, err := d.readString()
	if err != nil {
		return nil, "", err
	}
	tag, err := d.readPayload(id, 0)
	if err != nil {
		return nil, "", err
	}
	return tag, name, nil
}

func (d *Decoder) readType() (Type, error) {
	var buf [1]byte
	if _, err := io.ReadFull(d.r, buf[:]); err != nil {
		return TypeEnd, eofErr(err)
	}
	id := Type(buf[0])
	if !id.valid() {
		return TypeEnd, fmt.Errorf("%w: id %d", ErrUnknownTag, buf[0])
	}
	return id, nil
}

func (d *Decoder) readPayload(id Type, depth int) (Tag, error) {
	if depth > maxDepth {
		return nil, ErrDepthExceeded
	}

	switch id {
	case TypeByte:
		var v int8
		if err := d.readValue(&v); err != nil {
			return nil, err
		}
		return Byte(v), nil

	case TypeShort:
		var v int16
		if err := d.readValue(&v); err != nil {
			return nil, err
		}
		return Short(v), nil

	case TypeInt:
		var v int32
		if err := d.readValue(&v); err != nil {
			return nil, err
		}
		return Int(v), nil

	case TypeLong:
		var v int64
		if err := d.readValue(&v); err != nil {
			return nil, err
		}
		return Long(v), nil

	case TypeFloat:
		var v uint32
		if err := d.readValue(&v); err != nil {
			return nil, err
		}
		return Float(math.Float32frombits(v)), nil

	case TypeDouble:
		var v uint64
		if err := d.readValue(&v); err != nil {
			return nil, err
		}
		return Double(math.Float64frombits(v)), nil

	case TypeByteArray:
		length, err := d.readLength()
		if err != nil {
			return nil, err
		}
		v := make(ByteArray, length)
		if err := d.readValue(([]int8)(v)); err != nil {
			return nil, err
		}
		return v, nil

	case TypeIntArray:
		length, err := d.readLength()
		if err != nil {
			return nil, err
		}
		v := make(IntArray, length)
		if err := d.readValue(([]int32)(v)); err != nil {
			return nil, err
		}
		return v, nil

	case TypeLongArray:
		length, err := d.readLength()
		if err != nil {
			return nil, err
		}
		v := make(LongArray, length)
		if err := d.readValue(([]int64)(v)); err != nil {
			return nil, err
		}
		return v, nil

	case TypeString:
		s, err := d.readString()
		if err != nil {
			return nil, err
		}
		return String(s), nil

	case TypeList:
		return d.readList(depth)

	case TypeCompound:
		return d.readCompound(depth)
	}

	return nil, fmt.Errorf("%w: id %d", ErrUnknownTag, id)
}

func (d *Decoder) readList(depth int) (*List, error) {
	elem, err := d.readType()
	if err != nil {
		return nil, err
	}
	length, err := d.readLength()
	if err != nil {
		return nil, err
	}
	if elem == TypeEnd && length > 0 {
		return nil, fmt.Errorf("%w: non-empty list of end tags", ErrUnknownTag)
	}

	list := &List{elem: elem}
	for i := 0; i < length; i++ {
		item, err := d.readPayload(elem, depth+1)
		if err != nil {
			return nil, err
		}
		list.items = append(list.items, item)
	}
	return list, nil
}

func (d *Decoder) readCompound(depth int) (*Compound, error) {
	compound := NewCompound()
	for {
		id, err := d.readType()
		if err != nil {
			return nil, err
		}
		if id == TypeEnd {
			return compound, nil
		}
		name, err := d.readString()
		if err != nil {
			return nil, err
		}
		tag, err := d.readPayload(id, depth+1)
		if err != nil {
			return nil, err
		}
		if err := compound.Set(name, tag); err != nil {
			return nil, err
		}
	}
}

// readString reads a 16-bit length prefix followed by that many bytes of
// UTF-8. Used for both names and string payloads.
func (d *Decoder) readString() (string, error) {
	var length uint16
	if err := d.readValue(&length); err != nil {
		return "", err
	}
	raw := make([]byte, length)
	if _, err := io.ReadFull(d.r, raw); err != nil {
		return "", eofErr(err)
	}
	return string(raw), nil
}

// readLength reads a signed 32-bit array/list element count.
func (d *Decoder) readLength() (int, error) {
	var length int32
	if err := d.readValue(&length); err != nil {
		return 0, err
	}
	if length < 0 {
		return 0, fmt.Errorf("%w: %d", ErrNegativeLength, length)
	}
	return int(length), nil
}

func (d *Decoder) readValue(v any) error {
	if err := binary.Read(d.r, binary.BigEndian, v); err != nil {
		return eofErr(err)
	}
	return nil
}

func eofErr(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrUnexpectedEOF
	}
	return err
}
