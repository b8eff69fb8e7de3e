// Package domnode converts the textual node description handed over by the
// script runtime into a schema-checked DOM-domain node.
//
// The pipeline has three steps, each usable on its own:
//
//	text := AnnotateBackendID(payload, BackendIDFromNode) // add backendNodeId
//	bin, err := TextToBinary(text)                         // JSON -> CBOR tree
//	node, errs := ParseNode(bin)                           // CBOR -> *proto.DOMNode
//
// Convert runs all three.
package domnode

import (
	"encoding/json"
	"strconv"
	"strings"

	jsonpatch "github.com/evanphx/json-patch/v5"
)

// BackendIDMode selects the value given to a node that has no backendNodeId.
type BackendIDMode string

const (
	// BackendIDFromNode copies the node's own nodeId.
	BackendIDFromNode BackendIDMode = "node"
	// BackendIDZero uses 0.
	BackendIDZero BackendIDMode = "zero"
)

// Keys under which a node nests other nodes.
var (
	nestedLists  = []string{"children", "shadowRoots", "pseudoElements"}
	nestedSingle = []string{"contentDocument", "templateContent"}
)

// AnnotateBackendID returns text with a backendNodeId property added to every
// node of the tree that lacks one. The edit is applied as a JSON patch so the
// rest of the document is left as written. Text that is not a JSON object is
// returned unchanged; ParseNode reports it.
func AnnotateBackendID(text string, mode BackendIDMode) string {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	var root map[string]any
	if err := dec.Decode(&root); err != nil {
		return text
	}

	var ops []patchOp
	collectBackendIDOps(root, "", mode, &ops)
	if len(ops) == 0 {
		return text
	}

	raw, err := json.Marshal(ops)
	if err != nil {
		return text
	}
	patch, err := jsonpatch.DecodePatch(raw)
	if err != nil {
		return text
	}
	out, err := patch.Apply([]byte(text))
	if err != nil {
		return text
	}
	return string(out)
}

type patchOp struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Value any    `json:"value"`
}

func collectBackendIDOps(node map[string]any, path string, mode BackendIDMode, ops *[]patchOp) {
	if _, ok := node["backendNodeId"]; !ok {
		*ops = append(*ops, patchOp{Op: "add", Path: path + "/backendNodeId", Value: backendID(node, mode)})
	}

	for _, key := range nestedLists {
		list, ok := node[key].([]any)
		if !ok {
			continue
		}
		for i, item := range list {
			if child, ok := item.(map[string]any); ok {
				collectBackendIDOps(child, path+"/"+key+"/"+strconv.Itoa(i), mode, ops)
			}
		}
	}
	for _, key := range nestedSingle {
		if child, ok := node[key].(map[string]any); ok {
			collectBackendIDOps(child, path+"/"+key, mode, ops)
		}
	}
}

func backendID(node map[string]any, mode BackendIDMode) json.Number {
	if mode == BackendIDFromNode {
		if id, ok := node["nodeId"].(json.Number); ok {
			if _, err := id.Int64(); err == nil {
				return id
			}
		}
	}
	return json.Number("0")
}
