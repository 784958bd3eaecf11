package nbt

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ToSNBT renders a tag in the stringified NBT form used by in-game commands,
// e.g. {name:"Eggbert",value:0.5f}.
func ToSNBT(tag Tag) string {
	var sb strings.Builder
	appendSNBT(&sb, tag)
	return sb.String()
}

func appendSNBT(sb *strings.Builder, tag Tag) {
	switch t := tag.(type) {
	case Byte:
		fmt.Fprintf(sb, "%db", int8(t))
	case Short:
		fmt.Fprintf(sb, "%ds", int16(t))
	case Int:
		fmt.Fprintf(sb, "%d", int32(t))
	case Long:
		fmt.Fprintf(sb, "%dl", int64(t))
	case Float:
		sb.WriteString(strconv.FormatFloat(float64(t), 'g', -1, 32))
		sb.WriteByte('f')
	case Double:
		sb.WriteString(strconv.FormatFloat(float64(t), 'g', -1, 64))
		sb.WriteByte('d')
	case ByteArray:
		sb.WriteString("[B;")
		for i, v := range t {
			if i > 0 {
				sb.WriteByte(',')
			}
			fmt.Fprintf(sb, "%db", v)
		}
		sb.WriteByte(']')
	case IntArray:
		sb.WriteString("[I;")
		for i, v := range t {
			if i > 0 {
				sb.WriteByte(',')
			}
			fmt.Fprintf(sb, "%d", v)
		}
		sb.WriteByte(']')
	case LongArray:
		sb.WriteString("[L;")
		for i, v := range t {
			if i > 0 {
				sb.WriteByte(',')
			}
			fmt.Fprintf(sb, "%dl", v)
		}
		sb.WriteByte(']')
	case String:
		sb.WriteString(quoteSNBT(string(t)))
	case *List:
		sb.WriteByte('[')
		for i, item := range t.items {
			if i > 0 {
				sb.WriteByte(',')
			}
			appendSNBT(sb, item)
		}
		sb.WriteByte(']')
	case *Compound:
		sb.WriteByte('{')
		first := true
		t.Range(func(name string, item Tag) bool {
			if !first {
				sb.WriteByte(',')
			}
			first = false
			sb.WriteString(quoteSNBTKey(name))
			sb.WriteByte(':')
			appendSNBT(sb, item)
			return true
		})
		sb.WriteByte('}')
	}
}

var snbtBareRe = regexp.MustCompile(`^[0-9a-zA-Z.+_-]+$`)

func quoteSNBT(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' || s[i] == '"' {
			sb.WriteByte('\\')
		}
		sb.WriteByte(s[i])
	}
	sb.WriteByte('"')
	return sb.String()
}

func quoteSNBTKey(s string) string {
	if snbtBareRe.MatchString(s) {
		return s
	}
	return quoteSNBT(s)
}

// ParseSNBT parses a stringified NBT value. Untyped integers become Int,
// untyped decimals become Double and true/false become Byte, matching the
// game's command parser.
func ParseSNBT(s string) (Tag, error) {
	rest, tag, err := parseSNBT(s)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(rest) != "" {
		return nil, fmt.Errorf("%w: trailing data %q", ErrInvalidSNBT, rest)
	}
	return tag, nil
}

var (
	snbtUnquotedRe    = regexp.MustCompile(`^[0-9a-zA-Z.+_-]*`)
	snbtArrayOpenRe   = regexp.MustCompile(`^\[([BIL]);`)
	snbtKeySepRe      = regexp.MustCompile(`^\s*:`)
	snbtFloatRe       = regexp.MustCompile(`^([-+]?(?:[0-9]+\.?|[0-9]*\.[0-9]+)(?:e[-+]?[0-9]+)?)([fd])$`)
	snbtBareDecimalRe = regexp.MustCompile(`^([-+]?(?:[0-9]+\.|[0-9]*\.[0-9]+)(?:e[-+]?[0-9]+)?)$`)
	snbtIntRe         = regexp.MustCompile(`^([+-]?(?:0|[1-9][0-9]*))([bsl]?)`)
)

func parseSNBT(s string) (string, Tag, error) {
	s = strings.TrimLeft(s, " \t\r\n")
	if s == "" {
		return "", nil, fmt.Errorf("%w: nothing to parse", ErrInvalidSNBT)
	}

	if s[0] == '"' || s[0] == '\'' {
		rest, value, err := parseQuotedString(s)
		if err != nil {
			return "", nil, err
		}
		return rest, String(value), nil
	}

	if m := snbtArrayOpenRe.FindStringSubmatch(s); m != nil {
		return parseSNBTArray(s[3:], m[1][0])
	}

	if s[0] == '[' {
		return parseSNBTList(s[1:])
	}

	if s[0] == '{' {
		return parseSNBTCompound(s[1:])
	}

	rest, chunk, err := parseUnquotedString(s)
	if err != nil {
		return "", nil, err
	}

	if m := snbtFloatRe.FindStringSubmatch(chunk); m != nil {
		return parseSNBTFloat(rest, m[1], m[2][0])
	}
	if m := snbtBareDecimalRe.FindStringSubmatch(chunk); m != nil {
		return parseSNBTFloat(rest, m[1], 'd')
	}

	if m := snbtIntRe.FindStringSubmatch(chunk); m != nil && len(m[0]) == len(chunk) {
		tag, err := makeSNBTInt(m[1], suffixOf(m[2]))
		if err != nil {
			return "", nil, err
		}
		return rest, tag, nil
	}

	switch chunk {
	case "true":
		return rest, Byte(1), nil
	case "false":
		return rest, Byte(0), nil
	}

	return "", nil, fmt.Errorf("%w: cannot parse %q", ErrInvalidSNBT, chunk)
}

func suffixOf(m string) byte {
	if m == "" {
		return 'i'
	}
	return m[0]
}

func parseSNBTFloat(rest, digits string, suffix byte) (string, Tag, error) {
	value, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %q", ErrInvalidSNBT, digits)
	}
	if suffix == 'f' {
		return rest, Float(value), nil
	}
	return rest, Double(value), nil
}

func makeSNBTInt(digits string, suffix byte) (Tag, error) {
	bits := map[byte]int{'b': 8, 's': 16, 'i': 32, 'l': 64}[suffix]
	value, err := strconv.ParseInt(digits, 10, bits)
	if err != nil {
		return nil, fmt.Errorf("%w: integer %q out of range", ErrInvalidSNBT, digits)
	}
	switch suffix {
	case 'b':
		return Byte(value), nil
	case 's':
		return Short(value), nil
	case 'l':
		return Long(value), nil
	}
	return Int(value), nil
}

func parseSNBTArray(s string, kind byte) (string, Tag, error) {
	var values []int64
	bits := map[byte]int{'B': 8, 'I': 32, 'L': 64}[kind]
	want := map[byte]byte{'B': 'b', 'I': 'i', 'L': 'l'}[kind]

	for {
		s = strings.TrimLeft(s, " \t\r\n")
		if s == "" {
			return "", nil, fmt.Errorf("%w: unclosed array", ErrInvalidSNBT)
		}
		if s[0] == ']' {
			s = s[1:]
			break
		}
		if len(values) > 0 {
			if s[0] != ',' {
				return "", nil, fmt.Errorf("%w: array elements must be comma separated", ErrInvalidSNBT)
			}
			s = strings.TrimLeft(s[1:], " \t\r\n")
		}

		m := snbtIntRe.FindStringSubmatch(s)
		if m == nil {
			return "", nil, fmt.Errorf("%w: expected integer in array", ErrInvalidSNBT)
		}
		if suffixOf(m[2]) != want {
			return "", nil, fmt.Errorf("%w: wrong integer type in array", ErrInvalidSNBT)
		}
		value, err := strconv.ParseInt(m[1], 10, bits)
		if err != nil {
			return "", nil, fmt.Errorf("%w: integer %q out of range", ErrInvalidSNBT, m[1])
		}
		values = append(values, value)
		s = s[len(m[0]):]
	}

	switch kind {
	case 'B':
		arr := make(ByteArray, len(values))
		for i, v := range values {
			arr[i] = int8(v)
		}
		return s, arr, nil
	case 'L':
		arr := make(LongArray, len(values))
		copy(arr, values)
		return s, arr, nil
	}
	arr := make(IntArray, len(values))
	for i, v := range values {
		arr[i] = int32(v)
	}
	return s, arr, nil
}

func parseSNBTList(s string) (string, Tag, error) {
	var items []Tag
	for {
		s = strings.TrimLeft(s, " \t\r\n")
		if s == "" {
			return "", nil, fmt.Errorf("%w: unclosed list", ErrInvalidSNBT)
		}
		if s[0] == ']' {
			s = s[1:]
			break
		}
		if len(items) > 0 {
			if s[0] != ',' {
				return "", nil, fmt.Errorf("%w: list elements must be comma separated", ErrInvalidSNBT)
			}
			s = strings.TrimLeft(s[1:], " \t\r\n")
		}

		var (
			tag Tag
			err error
		)
		s, tag, err = parseSNBT(s)
		if err != nil {
			return "", nil, err
		}
		items = append(items, tag)
	}

	// Element type of an empty list is unknowable from the text; Int is as
	// good a choice as any.
	elem := TypeInt
	if len(items) > 0 {
		elem = items[0].Type()
	}
	list, err := NewList(elem, items...)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidSNBT, err)
	}
	return s, list, nil
}

func parseSNBTCompound(s string) (string, Tag, error) {
	compound := NewCompound()
	for {
		s = strings.TrimLeft(s, " \t\r\n")
		if s == "" {
			return "", nil, fmt.Errorf("%w: unclosed compound", ErrInvalidSNBT)
		}
		if s[0] == '}' {
			s = s[1:]
			break
		}
		if compound.Len() > 0 {
			if s[0] != ',' {
				return "", nil, fmt.Errorf("%w: compound entries must be comma separated", ErrInvalidSNBT)
			}
			s = strings.TrimLeft(s[1:], " \t\r\n")
		}

		var (
			key string
			err error
		)
		if s != "" && (s[0] == '"' || s[0] == '\'') {
			s, key, err = parseQuotedString(s)
		} else {
			s, key, err = parseUnquotedString(s)
		}
		if err != nil {
			return "", nil, err
		}

		m := snbtKeySepRe.FindString(s)
		if m == "" {
			return "", nil, fmt.Errorf("%w: missing ':' after compound key %q", ErrInvalidSNBT, key)
		}
		s = s[len(m):]

		var value Tag
		s, value, err = parseSNBT(s)
		if err != nil {
			return "", nil, err
		}
		if err := compound.Set(key, value); err != nil {
			return "", nil, err
		}
	}
	return s, compound, nil
}

func parseUnquotedString(s string) (string, string, error) {
	value := snbtUnquotedRe.FindString(s)
	if value == "" {
		return "", "", fmt.Errorf("%w: empty unquoted string", ErrInvalidSNBT)
	}
	return s[len(value):], value, nil
}

func parseQuotedString(s string) (string, string, error) {
	quote := s[0]
	var sb strings.Builder
	for i := 1; i < len(s); i++ {
		switch {
		case s[i] == '\\':
			if i+1 >= len(s) {
				return "", "", fmt.Errorf("%w: unclosed string", ErrInvalidSNBT)
			}
			next := s[i+1]
			if next == '"' || next == '\'' || next == '\\' {
				sb.WriteByte(next)
				i++
			} else {
				// Unknown escapes pass through verbatim.
				sb.WriteByte('\\')
			}
		case s[i] == quote:
			return s[i+1:], sb.String(), nil
		default:
			sb.WriteByte(s[i])
		}
	}
	return "", "", fmt.Errorf("%w: unclosed string", ErrInvalidSNBT)
}
