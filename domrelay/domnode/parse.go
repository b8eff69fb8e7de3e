package domnode

import (
	"math"
	"strconv"

	"github.com/go-rod/rod/lib/proto"
)

type fieldType int

const (
	typeInteger fieldType = iota
	typeString
	typeBoolean
	typeStrings
	typeEnum
	typeNode
	typeNodes
	typeBackendNode
	typeBackendNodes
)

type field struct {
	name     string
	typ      fieldType
	optional bool
	enum     []string
}

// nodeSchema is the DOM.Node type of the DOM domain. Properties not listed
// here are ignored, as protocol parsers do.
var nodeSchema = []field{
	{name: "nodeId", typ: typeInteger},
	{name: "parentId", typ: typeInteger, optional: true},
	{name: "backendNodeId", typ: typeInteger},
	{name: "nodeType", typ: typeInteger},
	{name: "nodeName", typ: typeString},
	{name: "localName", typ: typeString},
	{name: "nodeValue", typ: typeString},
	{name: "childNodeCount", typ: typeInteger, optional: true},
	{name: "children", typ: typeNodes, optional: true},
	{name: "attributes", typ: typeStrings, optional: true},
	{name: "documentURL", typ: typeString, optional: true},
	{name: "baseURL", typ: typeString, optional: true},
	{name: "publicId", typ: typeString, optional: true},
	{name: "systemId", typ: typeString, optional: true},
	{name: "internalSubset", typ: typeString, optional: true},
	{name: "xmlVersion", typ: typeString, optional: true},
	{name: "name", typ: typeString, optional: true},
	{name: "value", typ: typeString, optional: true},
	{name: "pseudoType", typ: typeEnum, optional: true, enum: pseudoTypes},
	{name: "pseudoIdentifier", typ: typeString, optional: true},
	{name: "shadowRootType", typ: typeEnum, optional: true, enum: []string{"user-agent", "open", "closed"}},
	{name: "frameId", typ: typeString, optional: true},
	{name: "contentDocument", typ: typeNode, optional: true},
	{name: "shadowRoots", typ: typeNodes, optional: true},
	{name: "templateContent", typ: typeNode, optional: true},
	{name: "pseudoElements", typ: typeNodes, optional: true},
	{name: "distributedNodes", typ: typeBackendNodes, optional: true},
	{name: "isSVG", typ: typeBoolean, optional: true},
	{name: "compatibilityMode", typ: typeEnum, optional: true, enum: []string{"QuirksMode", "LimitedQuirksMode", "NoQuirksMode"}},
	{name: "assignedSlot", typ: typeBackendNode, optional: true},
}

var backendNodeSchema = []field{
	{name: "nodeType", typ: typeInteger},
	{name: "nodeName", typ: typeString},
	{name: "backendNodeId", typ: typeInteger},
}

var pseudoTypes = []string{
	"first-line", "first-letter", "checkmark", "before", "after", "picker-icon",
	"marker", "backdrop", "column", "selection", "search-text", "target-text",
	"spelling-error", "grammar-error", "highlight", "first-line-inherited",
	"scroll-marker", "scroll-marker-group", "scroll-button", "scrollbar",
	"scrollbar-thumb", "scrollbar-button", "scrollbar-track",
	"scrollbar-track-piece", "scrollbar-corner", "resizer", "input-list-button",
	"view-transition", "view-transition-group", "view-transition-image-pair",
	"view-transition-old", "view-transition-new", "placeholder",
	"file-selector-button", "details-content", "picker",
}

// ParseNode decodes a CBOR tree and checks it against the DOM.Node schema.
// Every violation is collected; the node is returned only when there are none.
func ParseNode(bin []byte) (*proto.DOMNode, ErrorSet) {
	var errs ErrorSet

	var tree any
	if err := decMode.Unmarshal(bin, &tree); err != nil {
		errs.add("", "invalid binary tree: "+err.Error())
		return nil, errs
	}

	checkObject(tree, "", nodeSchema, &errs)
	if !errs.Empty() {
		return nil, errs
	}

	var node proto.DOMNode
	if err := decMode.Unmarshal(bin, &node); err != nil {
		errs.add("", "node decode failed: "+err.Error())
		return nil, errs
	}
	return &node, nil
}

func checkObject(v any, path string, schema []field, errs *ErrorSet) {
	obj, ok := v.(map[string]any)
	if !ok {
		errs.add(path, "object expected")
		return
	}
	for _, f := range schema {
		p := join(path, f.name)
		val, present := obj[f.name]
		if !present {
			if !f.optional {
				errs.add(p, "value expected")
			}
			continue
		}
		checkField(val, p, f, errs)
	}
}

func checkField(v any, path string, f field, errs *ErrorSet) {
	switch f.typ {
	case typeInteger:
		if !isInteger(v) {
			errs.add(path, "integer value expected")
		}
	case typeString:
		if _, ok := v.(string); !ok {
			errs.add(path, "string value expected")
		}
	case typeBoolean:
		if _, ok := v.(bool); !ok {
			errs.add(path, "boolean value expected")
		}
	case typeEnum:
		s, ok := v.(string)
		if !ok {
			errs.add(path, "string value expected")
			return
		}
		if !contains(f.enum, s) {
			errs.add(path, "invalid enum value: "+s)
		}
	case typeStrings:
		list, ok := v.([]any)
		if !ok {
			errs.add(path, "array expected")
			return
		}
		for i, item := range list {
			if _, ok := item.(string); !ok {
				errs.add(join(path, strconv.Itoa(i)), "string value expected")
			}
		}
	case typeNode:
		checkObject(v, path, nodeSchema, errs)
	case typeNodes:
		checkList(v, path, nodeSchema, errs)
	case typeBackendNode:
		checkObject(v, path, backendNodeSchema, errs)
	case typeBackendNodes:
		checkList(v, path, backendNodeSchema, errs)
	}
}

func checkList(v any, path string, schema []field, errs *ErrorSet) {
	list, ok := v.([]any)
	if !ok {
		errs.add(path, "array expected")
		return
	}
	for i, item := range list {
		checkObject(item, join(path, strconv.Itoa(i)), schema, errs)
	}
}

// isInteger accepts CBOR integers that fit the protocol's 32-bit integers.
func isInteger(v any) bool {
	switch n := v.(type) {
	case uint64:
		return n <= math.MaxInt32
	case int64:
		return n >= math.MinInt32 && n <= math.MaxInt32
	default:
		return false
	}
}

func contains(list []string, s string) bool {
	for _, e := range list {
		if e == s {
			return true
		}
	}
	return false
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}
