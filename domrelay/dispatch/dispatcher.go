// Package dispatch is the entry point for DOM mutation callbacks raised by
// the script runtime. Each callback checks its arguments against a declared
// signature, converts them, and forwards exactly one notification to the
// active frontend.
//
// Every exported callback returns nil or a *script.Exception. When no
// debugging session is attached the callbacks do nothing and return nil.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-rod/rod/lib/proto"
	"github.com/hazyhaar/inspector/domrelay/domnode"
	"github.com/hazyhaar/inspector/domrelay/frontend"
	"github.com/hazyhaar/inspector/domrelay/script"
)

// Event names a callback by its protocol event name.
type Event string

const (
	EventDocumentUpdated   Event = "documentUpdated"
	EventChildNodeInserted Event = "childNodeInserted"
	EventChildNodeRemoved  Event = "childNodeRemoved"
	EventAttributeModified Event = "attributeModified"
	EventAttributeRemoved  Event = "attributeRemoved"
)

// AgentFunc looks up the frontend of the active debugging session. It is
// called on every callback; ok is false when no session is attached.
// frontend.Registry.Active satisfies it.
type AgentFunc func() (fe frontend.Frontend, ok bool)

// Dispatcher handles the DOM mutation callbacks.
type Dispatcher struct {
	agent     AgentFunc
	logger    *slog.Logger
	backendID domnode.BackendIDMode
	strictIDs bool
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger dropped node payloads are reported to.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

// WithBackendIDMode selects how missing backendNodeId properties are filled.
// Default: domnode.BackendIDFromNode.
func WithBackendIDMode(m domnode.BackendIDMode) Option {
	return func(d *Dispatcher) { d.backendID = m }
}

// WithStrictIDs rejects node identifiers that are not integers in the int32
// range instead of wrapping them.
func WithStrictIDs(strict bool) Option {
	return func(d *Dispatcher) { d.strictIDs = strict }
}

// New creates a Dispatcher resolving the active frontend through agent.
func New(agent AgentFunc, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		agent:     agent,
		logger:    slog.Default(),
		backendID: domnode.BackendIDFromNode,
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Call dispatches a callback by event name.
func (d *Dispatcher) Call(ctx context.Context, ev Event, args script.Args) error {
	switch ev {
	case EventDocumentUpdated:
		return d.DocumentUpdated(ctx, args)
	case EventChildNodeInserted:
		return d.ChildNodeInserted(ctx, args)
	case EventChildNodeRemoved:
		return d.ChildNodeRemoved(ctx, args)
	case EventAttributeModified:
		return d.AttributeModified(ctx, args)
	case EventAttributeRemoved:
		return d.AttributeRemoved(ctx, args)
	default:
		return &script.Exception{
			Message: fmt.Sprintf("Error: unknown DOM event %q", string(ev)),
			Cause:   fmt.Errorf("%w: %s", ErrUnknownEvent, ev),
		}
	}
}

// DocumentUpdated handles documentUpdated(). It takes no arguments.
func (d *Dispatcher) DocumentUpdated(ctx context.Context, args script.Args) error {
	return d.run(sigDocumentUpdated, args, func(fe frontend.Frontend) error {
		return fe.DocumentUpdated(ctx)
	})
}

// ChildNodeInserted handles childNodeInserted(parentId, lastId, node) where
// node is the JSON text of the inserted subtree. A node that fails schema
// validation is logged and dropped; it is not an error for the caller.
func (d *Dispatcher) ChildNodeInserted(ctx context.Context, args script.Args) error {
	sig := sigChildNodeInserted
	return d.run(sig, args, func(fe frontend.Frontend) error {
		parentID, err := d.nodeID(sig, args, 0)
		if err != nil {
			return err
		}
		previousID, err := d.nodeID(sig, args, 1)
		if err != nil {
			return err
		}

		node, errs, err := domnode.Convert(args.At(2).Text(), d.backendID)
		if err != nil {
			return fmt.Errorf("convert node: %w", err)
		}
		if !errs.Empty() {
			d.logger.Error("dispatch: error while parsing debug DOM Node object",
				"parent_id", parentID, "previous_id", previousID, "errors", errs.Text())
			return nil
		}

		return fe.ChildNodeInserted(ctx, parentID, previousID, node)
	})
}

// ChildNodeRemoved handles childNodeRemoved(parentId, nodeId).
func (d *Dispatcher) ChildNodeRemoved(ctx context.Context, args script.Args) error {
	sig := sigChildNodeRemoved
	return d.run(sig, args, func(fe frontend.Frontend) error {
		parentID, err := d.nodeID(sig, args, 0)
		if err != nil {
			return err
		}
		nodeID, err := d.nodeID(sig, args, 1)
		if err != nil {
			return err
		}
		return fe.ChildNodeRemoved(ctx, parentID, nodeID)
	})
}

// AttributeModified handles attributeModified(nodeId, name, value).
func (d *Dispatcher) AttributeModified(ctx context.Context, args script.Args) error {
	sig := sigAttributeModified
	return d.run(sig, args, func(fe frontend.Frontend) error {
		nodeID, err := d.nodeID(sig, args, 0)
		if err != nil {
			return err
		}
		return fe.AttributeModified(ctx, nodeID, args.At(1).Text(), args.At(2).Text())
	})
}

// AttributeRemoved handles attributeRemoved(nodeId, name).
func (d *Dispatcher) AttributeRemoved(ctx context.Context, args script.Args) error {
	sig := sigAttributeRemoved
	return d.run(sig, args, func(fe frontend.Frontend) error {
		nodeID, err := d.nodeID(sig, args, 0)
		if err != nil {
			return err
		}
		return fe.AttributeRemoved(ctx, nodeID, args.At(1).Text())
	})
}

// run resolves the agent, validates args and calls notify, all inside the
// failure boundary.
func (d *Dispatcher) run(sig signature, args script.Args, notify func(frontend.Frontend) error) error {
	return boundary(sig.event, func() error {
		if d.agent == nil {
			return nil
		}
		fe, ok := d.agent()
		if !ok || fe == nil {
			return nil
		}
		if err := sig.check(args); err != nil {
			return err
		}
		return notify(fe)
	})
}

func (d *Dispatcher) nodeID(sig signature, args script.Args, i int) (proto.DOMNodeID, error) {
	f := args.At(i).Float()
	if !d.strictIDs {
		return proto.DOMNodeID(script.ToInt32(f)), nil
	}
	id, ok := script.ExactInt32(f)
	if !ok {
		return 0, sig.invalid(fmt.Sprintf("%s %v is not a 32-bit integer", sig.params[i].name, f))
	}
	return proto.DOMNodeID(id), nil
}
