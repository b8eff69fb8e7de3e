package domnode

import (
	"bytes"
	"encoding/json"
)

// Violation is one schema error found while parsing a node.
type Violation struct {
	// Path is the dotted property path from the root node, e.g.
	// "children.2.nodeName". Empty for the root itself.
	Path    string
	Message string
}

// ErrorSet collects every violation of one parse attempt, in the order they
// were found. An empty set means the node is valid.
type ErrorSet []Violation

// Empty reports whether the parse produced no violations.
func (s ErrorSet) Empty() bool { return len(s) == 0 }

func (s *ErrorSet) add(path, msg string) {
	*s = append(*s, Violation{Path: path, Message: msg})
}

// Text renders the set as a JSON object mapping each path to its message,
// preserving order. An empty set renders as "".
func (s ErrorSet) Text() string {
	if len(s) == 0 {
		return ""
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, v := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, _ := json.Marshal(v.Path)
		m, _ := json.Marshal(v.Message)
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(m)
	}
	buf.WriteByte('}')
	return buf.String()
}

func (s ErrorSet) String() string { return s.Text() }
