package pcd

import (
	"sort"
	"strings"
)

// Field binds one member of a point shape to a PCD field: its
// canonical lowercase name, scalar class, native byte width and a
// get/set accessor pair.
type Field[P any] struct {
	Name string
	Type FieldType
	Size int
	Get  func(*P) Value
	Set  func(*P, Value)
}

// Point is implemented by any shape that can be decoded into or
// encoded from. PCDFields must return the same table on every call.
type Point[P any] interface {
	PCDFields() []Field[P]
}

// fieldMapping is the resolved correspondence between one header
// field and the target shape, including its byte offset within a
// record. Built once per (header, shape) pair and reused for every
// record of the stream.
type fieldMapping struct {
	name   string // normalized header field name
	typ    FieldType
	size   int
	count  int
	offset int
	member int // index into the shape's field table, -1 when unmapped
}

// synonyms maps canonical field names to member names that may bind
// to them, tried in order after an exact match fails. The normal_x
// spelling variants are handled by canonicalName instead.
var synonyms = map[string][]string{
	"rgb":  {"rgba"},
	"rgba": {"rgb"},
}

// resolveDecode builds the ordered field mapping for a header against
// the given member names. Both sides are compared by canonical name.
// Header fields without a member stay in the mapping as unmapped so
// later offsets come out right.
func resolveDecode(h *Header, members []string) ([]fieldMapping, error) {
	if err := h.validate(); err != nil {
		return nil, err
	}
	idx := make(map[string]int, len(members))
	for i, m := range members {
		name := canonicalName(m)
		if _, ok := idx[name]; !ok {
			idx[name] = i
		}
	}

	maps := make([]fieldMapping, len(h.Fields))
	offset := 0
	for i, f := range h.Fields {
		name := canonicalName(f)
		member := -1
		if j, ok := idx[name]; ok {
			member = j
		} else {
			for _, alt := range synonyms[name] {
				if j, ok := idx[alt]; ok {
					member = j
					break
				}
			}
		}
		count := h.count(i)
		maps[i] = fieldMapping{
			name:   name,
			typ:    h.Types[i],
			size:   h.Sizes[i],
			count:  count,
			offset: offset,
			member: member,
		}
		offset += h.Sizes[i] * count
	}
	return maps, nil
}

func recordSizeOf(maps []fieldMapping) int {
	var n int
	for _, m := range maps {
		n += m.size * m.count
	}
	return n
}

// fieldPriority fixes the emit order of well-known fields on encode;
// anything else keeps its discovery order after them.
var fieldPriority = []string{
	"x", "y", "z",
	"normal_x", "normal_y", "normal_z",
	"curvature",
	"rgb", "rgba", "r", "g", "b", "a",
	"intensity", "label",
}

// canonicalRenames folds alternate spellings into the PCD field name.
var canonicalRenames = map[string]string{
	"normalx": "normal_x",
	"normaly": "normal_y",
	"normalz": "normal_z",
	"nx":      "normal_x",
	"ny":      "normal_y",
	"nz":      "normal_z",
}

// canonicalName lowercases a field or member name and folds alternate
// spellings, so transforms and matching always see the PCD spelling.
func canonicalName(name string) string {
	n := strings.ToLower(name)
	if c, ok := canonicalRenames[n]; ok {
		return c
	}
	return n
}

type encodeField struct {
	name   string
	typ    FieldType
	size   int
	member int
}

// resolveEncode derives the emitted field list from a shape's member
// table. Encode never consults an existing header: the fields come
// strictly from the shape itself.
func resolveEncode(names []string, types []FieldType, sizes []int) []encodeField {
	efs := make([]encodeField, len(names))
	for i := range names {
		efs[i] = encodeField{name: canonicalName(names[i]), typ: types[i], size: sizes[i], member: i}
	}
	sort.SliceStable(efs, func(i, j int) bool {
		return priorityOf(efs[i].name) < priorityOf(efs[j].name)
	})
	return efs
}

func priorityOf(name string) int {
	for i, p := range fieldPriority {
		if p == name {
			return i
		}
	}
	return len(fieldPriority)
}

func memberNames[P any](fields []Field[P]) []string {
	names := make([]string, len(fields))
	for i := range fields {
		names[i] = fields[i].Name
	}
	return names
}
