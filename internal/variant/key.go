package variant

import (
	"bytes"
	"encoding/json"
	"sort"
)

// Key returns the canonical content key of the assignment.
//
// The key is a canonical JSON object with pairs sorted by name (then value),
// no HTML escaping and no insignificant whitespace:
//
//	{"Color":"Red","Size":"S"}
//
// Two assignments have the same key iff they have the same content,
// regardless of pair order.
func (a Assignment) Key() string {
	pairs := a.Clone()
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Name != pairs[j].Name {
			return pairs[i].Name < pairs[j].Name
		}
		return pairs[i].Value < pairs[j].Value
	})

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range pairs {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeCanonicalString(&buf, p.Name)
		buf.WriteByte(':')
		writeCanonicalString(&buf, p.Value)
	}
	buf.WriteByte('}')
	return buf.String()
}

// writeCanonicalString appends s as a JSON string without HTML escaping.
func writeCanonicalString(buf *bytes.Buffer, s string) {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	// Encoding a plain string cannot fail.
	_ = enc.Encode(s)

	// json.Encoder adds a trailing newline
	out := tmp.Bytes()
	if n := len(out); n > 0 && out[n-1] == '\n' {
		out = out[:n-1]
	}
	buf.Write(out)
}

// index maps canonical keys to positions in a combination list.
// The first occurrence of a key wins.
func index(combos []Combination) (map[string]int, []int) {
	byKey := make(map[string]int, len(combos))
	var dupes []int
	for i, c := range combos {
		k := c.Attributes.Key()
		if _, ok := byKey[k]; ok {
			dupes = append(dupes, i)
			continue
		}
		byKey[k] = i
	}
	return byKey, dupes
}
