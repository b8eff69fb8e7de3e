package domnode

import (
	"github.com/go-rod/rod/lib/proto"
)

// Convert runs the full pipeline on a textual node payload. A non-nil error
// means the text could not be turned into a binary tree at all; schema
// problems are reported through the returned ErrorSet instead.
func Convert(text string, mode BackendIDMode) (*proto.DOMNode, ErrorSet, error) {
	bin, err := TextToBinary(AnnotateBackendID(text, mode))
	if err != nil {
		return nil, nil, err
	}
	node, errs := ParseNode(bin)
	return node, errs, nil
}
