package nbt

import (
	"fmt"
	"strings"
)

// Format renders a tag tree as an indented multi-line listing, one entry per
// line, for human inspection.
func Format(tag Tag) string {
	var sb strings.Builder
	formatTag(&sb, tag, 0)
	return sb.String()
}

const formatIndent = "  "

func formatTag(sb *strings.Builder, tag Tag, level int) {
	pad := strings.Repeat(formatIndent, level)

	switch t := tag.(type) {
	case nil:
		sb.WriteString("End")

	case ByteArray:
		fmt.Fprintf(sb, "ByteArray(len=%d) %v", len(t), t)
	case IntArray:
		fmt.Fprintf(sb, "IntArray(len=%d) %v", len(t), t)
	case LongArray:
		fmt.Fprintf(sb, "LongArray(len=%d) %v", len(t), t)

	case String:
		fmt.Fprintf(sb, "String(%q)", string(t))

	case *List:
		fmt.Fprintf(sb, "List<%v> [\n", t.elem)
		for _, item := range t.items {
			sb.WriteString(pad + formatIndent)
			formatTag(sb, item, level+1)
			sb.WriteByte('\n')
		}
		sb.WriteString(pad + "]")

	case *Compound:
		sb.WriteString("Compound {\n")
		t.Range(func(name string, item Tag) bool {
			sb.WriteString(pad + formatIndent + name + ": ")
			formatTag(sb, item, level+1)
			sb.WriteByte('\n')
			return true
		})
		sb.WriteString(pad + "}")

	default:
		fmt.Fprintf(sb, "%v(%v)", t.Type(), t)
	}
}
