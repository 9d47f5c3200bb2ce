package dispatch

import (
	"regexp"
	"strings"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// routeLiterals are the fixed tokens of the route table. A few of them
// ("comments", "online", "status") also satisfy the identifier
// heuristic, so they are pinned as literals; any other qualifying
// segment is treated as an id.
var routeLiterals = map[string]struct{}{
	"posts":    {},
	"comments": {},
	"users":    {},
	"online":   {},
	"status":   {},
	"vote":     {},
	"pin":      {},
	"lock":     {},
}

// LooksLikeIdentifier reports whether a path segment is shaped like a
// generated id: the identifier character class, longer than five
// characters. It is a heuristic, not a schema check — it must tolerate
// any format the id generator produces, and it will claim long literal
// tokens too, which is why TemplatePath pins the route table's own
// literals separately.
func LooksLikeIdentifier(segment string) bool {
	return len(segment) > 5 && identifierPattern.MatchString(segment)
}

// TemplatePath normalizes a raw path into a route template by replacing
// identifier-shaped segments with "{id}". The replaced values are
// returned in path order.
func TemplatePath(path string) (string, []string) {
	segments := strings.Split(path, "/")
	var ids []string
	for i, seg := range segments {
		if seg == "" {
			continue
		}
		if _, literal := routeLiterals[seg]; literal {
			continue
		}
		if LooksLikeIdentifier(seg) {
			ids = append(ids, seg)
			segments[i] = "{id}"
		}
	}
	return strings.Join(segments, "/"), ids
}
