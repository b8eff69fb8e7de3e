// Package frontend is the outbound side of the DOM domain: the notifications
// a debugging client receives when the document changes, and the registry
// holding the frontend of the currently attached debugging session.
package frontend

import (
	"context"

	"github.com/go-rod/rod/lib/proto"
)

// Frontend delivers DOM-domain notifications to a connected debugging client.
type Frontend interface {
	DocumentUpdated(ctx context.Context) error
	ChildNodeInserted(ctx context.Context, parentID, previousID proto.DOMNodeID, node *proto.DOMNode) error
	ChildNodeRemoved(ctx context.Context, parentID, nodeID proto.DOMNodeID) error
	AttributeModified(ctx context.Context, nodeID proto.DOMNodeID, name, value string) error
	AttributeRemoved(ctx context.Context, nodeID proto.DOMNodeID, name string) error
}
