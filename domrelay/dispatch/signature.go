package dispatch

import (
	"strings"

	"github.com/hazyhaar/inspector/domrelay/script"
)

type param struct {
	name  string
	kind  script.Kind
	label string // shown instead of kind in messages when set
}

// signature is the declared argument list of one callback. Every callback is
// checked against its signature before any argument is read.
type signature struct {
	event  string
	params []param
}

var (
	sigDocumentUpdated = signature{event: "DocumentUpdated"}

	sigChildNodeInserted = signature{event: "ChildNodeInserted", params: []param{
		{name: "parentId", kind: script.KindNumber},
		{name: "lastId", kind: script.KindNumber},
		{name: "node", kind: script.KindString, label: "JSON String"},
	}}

	sigChildNodeRemoved = signature{event: "ChildNodeRemoved", params: []param{
		{name: "parentId", kind: script.KindNumber},
		{name: "nodeId", kind: script.KindNumber},
	}}

	sigAttributeModified = signature{event: "AttributeModified", params: []param{
		{name: "nodeId", kind: script.KindNumber},
		{name: "name", kind: script.KindString},
		{name: "value", kind: script.KindString},
	}}

	sigAttributeRemoved = signature{event: "AttributeRemoved", params: []param{
		{name: "nodeId", kind: script.KindNumber},
		{name: "name", kind: script.KindString},
	}}
)

func (s signature) String() string {
	if len(s.params) == 0 {
		return "(none)"
	}
	parts := make([]string, len(s.params))
	for i, p := range s.params {
		label := p.label
		if label == "" {
			label = p.kind.String()
		}
		parts[i] = p.name + ": " + label
	}
	return strings.Join(parts, ", ")
}

// check validates arity and every argument type at once.
func (s signature) check(args script.Args) error {
	if args.Len() != len(s.params) {
		return s.invalid("")
	}
	for i, p := range s.params {
		if args.At(i).Kind() != p.kind {
			return s.invalid("")
		}
	}
	return nil
}

func (s signature) invalid(detail string) *ArgumentError {
	return &ArgumentError{Event: s.event, Signature: s.String(), Detail: detail}
}
