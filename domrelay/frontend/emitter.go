package frontend

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod/lib/proto"
	"github.com/google/uuid"
)

// Message is one protocol notification as it leaves the relay.
// Method is the fully qualified event name, e.g. "DOM.childNodeInserted".
type Message struct {
	ID        string      `json:"id"`
	Session   string      `json:"session,omitempty"`
	Method    string      `json:"method"`
	Params    proto.Event `json:"params"`
	Timestamp int64       `json:"timestamp"` // epoch milliseconds
}

// Sender delivers messages to their destination. The sinks in
// domrelay/internal/sink implement it.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Emitter is a Frontend that turns every notification into a Message.
type Emitter struct {
	out     Sender
	session string
	newID   func() string
	now     func() time.Time
}

// EmitterOption configures an Emitter.
type EmitterOption func(*Emitter)

// WithSession stamps every message with a session identifier.
func WithSession(id string) EmitterOption {
	return func(e *Emitter) { e.session = id }
}

// WithIDGenerator overrides the message ID generator. Default: UUIDv7.
func WithIDGenerator(gen func() string) EmitterOption {
	return func(e *Emitter) { e.newID = gen }
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) EmitterOption {
	return func(e *Emitter) { e.now = now }
}

// NewEmitter creates an Emitter writing to out.
func NewEmitter(out Sender, opts ...EmitterOption) *Emitter {
	e := &Emitter{
		out:   out,
		newID: func() string { return uuid.Must(uuid.NewV7()).String() },
		now:   time.Now,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

func (e *Emitter) DocumentUpdated(ctx context.Context) error {
	return e.emit(ctx, &proto.DOMDocumentUpdated{})
}

func (e *Emitter) ChildNodeInserted(ctx context.Context, parentID, previousID proto.DOMNodeID, node *proto.DOMNode) error {
	return e.emit(ctx, &proto.DOMChildNodeInserted{
		ParentNodeID:   parentID,
		PreviousNodeID: previousID,
		Node:           node,
	})
}

func (e *Emitter) ChildNodeRemoved(ctx context.Context, parentID, nodeID proto.DOMNodeID) error {
	return e.emit(ctx, &proto.DOMChildNodeRemoved{ParentNodeID: parentID, NodeID: nodeID})
}

func (e *Emitter) AttributeModified(ctx context.Context, nodeID proto.DOMNodeID, name, value string) error {
	return e.emit(ctx, &proto.DOMAttributeModified{NodeID: nodeID, Name: name, Value: value})
}

func (e *Emitter) AttributeRemoved(ctx context.Context, nodeID proto.DOMNodeID, name string) error {
	return e.emit(ctx, &proto.DOMAttributeRemoved{NodeID: nodeID, Name: name})
}

func (e *Emitter) emit(ctx context.Context, ev proto.Event) error {
	msg := Message{
		ID:        e.newID(),
		Session:   e.session,
		Method:    ev.ProtoEvent(),
		Params:    ev,
		Timestamp: e.now().UnixMilli(),
	}
	if err := e.out.Send(ctx, msg); err != nil {
		return fmt.Errorf("frontend: emit %s: %w", msg.Method, err)
	}
	return nil
}
