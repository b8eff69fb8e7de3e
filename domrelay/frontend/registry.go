package frontend

import "sync/atomic"

// Registry holds the frontend of the active debugging session, if any.
// Sessions attach and detach from any goroutine; readers always see either
// the previous or the next frontend, never a partial one.
type Registry struct {
	cur atomic.Pointer[slot]
}

type slot struct{ fe Frontend }

// Attach makes fe the active frontend and returns the one it replaced.
// Attaching nil is the same as Detach.
func (r *Registry) Attach(fe Frontend) Frontend {
	var next *slot
	if fe != nil {
		next = &slot{fe: fe}
	}
	return unwrap(r.cur.Swap(next))
}

// Detach clears the active frontend and returns it.
func (r *Registry) Detach() Frontend {
	return unwrap(r.cur.Swap(nil))
}

// Active returns the current frontend. ok is false when no session is attached.
func (r *Registry) Active() (fe Frontend, ok bool) {
	s := r.cur.Load()
	if s == nil {
		return nil, false
	}
	return s.fe, true
}

func unwrap(s *slot) Frontend {
	if s == nil {
		return nil
	}
	return s.fe
}
