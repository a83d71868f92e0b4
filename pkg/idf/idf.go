// Package idf formats EnergyPlus input records. An entry is a record kind
// plus parallel field-name and value lists; a Document collects entries
// into sections and always renders them in the fixed section order.
package idf

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chazu/envi/pkg/graph"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Entry renders one record. Each value goes on its own line followed by
// its field name as a comment; the last value is terminated by ';'. A
// record with an empty kind is written headerless on a single line per
// value, without the trailing blank line.
func Entry(kind string, fields []string, values []string) string {
	if len(fields) != len(values) {
		panic(fmt.Sprintf("idf: %s: %d fields for %d values", kind, len(fields), len(values)))
	}
	width := 0
	for _, v := range values {
		if len(v)+1 > width {
			width = len(v) + 1
		}
	}
	indent := "    "
	if kind == "" {
		indent = ""
	}

	var b strings.Builder
	if kind != "" {
		b.WriteString(kind)
		b.WriteString(",\n")
	}
	for i, v := range values {
		sep := ","
		if i == len(values)-1 {
			sep = ";"
		}
		fmt.Fprintf(&b, "%s%-*s  !- %s\n", indent, width, v+sep, fields[i])
	}
	if kind != "" {
		b.WriteString("\n")
	}
	return b.String()
}

// Values formats a mixed list of record values. Floats use the shortest
// representation that round-trips.
func Values(vs ...any) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		switch x := v.(type) {
		case string:
			out[i] = x
		case int:
			out[i] = strconv.Itoa(x)
		case float64:
			out[i] = Num(x)
		case bool:
			out[i] = YesNo(x)
		default:
			out[i] = fmt.Sprint(x)
		}
	}
	return out
}

// Num formats a number for a record value.
func Num(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}

// YesNo formats a flag.
func YesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// Vertex formats a surface vertex.
func Vertex(v v3.Vec) string {
	return fmt.Sprintf("  %.4f, %.4f, %.4f", v.X, v.Y, v.Z)
}

// ShadingVertex formats a shading surface vertex.
func ShadingVertex(v v3.Vec) string {
	return fmt.Sprintf("%.4f, %.4f, %.4f", v.X, v.Y, v.Z)
}

// VertexFields returns the field names of n vertices.
func VertexFields(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("X,Y,Z ==> Vertex %d (m)", i)
	}
	return out
}

// ---------------------------------------------------------------------------
// Schedules
// ---------------------------------------------------------------------------

// Compact renders a Schedule:Compact record from authored rules.
func Compact(name, limits string, rules []graph.ScheduleRule) string {
	fields := []string{"Name", "Schedule Type Limits Name"}
	values := []string{name, limits}
	add := func(v string) {
		values = append(values, v)
		fields = append(fields, fmt.Sprintf("Field %d", len(values)-2))
	}
	for _, r := range rules {
		add("Through: " + r.Through)
		for _, d := range r.Days {
			add("For: " + d.For)
			for _, u := range d.Untils {
				add(fmt.Sprintf("Until: %s,%s", u.Time, Num(u.Value)))
			}
		}
	}
	return Entry("Schedule:Compact", fields, values)
}

// ConstantSchedule renders a year-round schedule holding value.
func ConstantSchedule(name, limits, value string) string {
	return Entry("Schedule:Compact",
		[]string{"Name", "Schedule Type Limits Name", "Field 1", "Field 2", "Field 3"},
		[]string{name, limits, "Through: 12/31", "For: Alldays", "Until: 24:00," + value})
}

// OutputVariable renders a one-line report variable request.
func OutputVariable(key, name, frequency string) string {
	return fmt.Sprintf("Output:Variable,%s,%s,%s;\n", key, name, frequency)
}
