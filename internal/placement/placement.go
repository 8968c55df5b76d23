// Package placement implements the placing-mode state machine of a document
// view. A click is recorded as a placement only while the session is armed,
// and at most once: Begin moves the session to committing so a repeated
// click is rejected until Finish runs.
package placement

import (
	"github.com/dharsanguruparan/vdocsign/internal/apperr"
	"github.com/dharsanguruparan/vdocsign/internal/model"
)

// State enumerates the session states.
type State uint8

const (
	Idle State = iota
	Armed
	Committing
)

func (s State) String() string {
	switch s {
	case Armed:
		return "armed"
	case Committing:
		return "committing"
	default:
		return "idle"
	}
}

// Session is the placement state of one document view. It is not safe for
// concurrent use; the owning controller serializes access.
type Session struct {
	state State
	kind  model.FieldKind
}

// State returns the current state and the targeted kind (empty when idle).
func (s *Session) State() (State, model.FieldKind) {
	return s.state, s.kind
}

// Armed reports whether the next click should be recorded.
func (s *Session) Armed() bool { return s.state == Armed }

// Arm targets kind. Re-arming with a different kind is allowed; arming while
// a commit is in flight is not.
func (s *Session) Arm(kind model.FieldKind) error {
	if !kind.Valid() {
		return apperr.Validation("arm", "unknown field kind")
	}
	if s.state == Committing {
		return apperr.State("arm", apperr.ErrBusy)
	}
	s.state = Armed
	s.kind = kind
	return nil
}

// Disarm returns to idle without side effects.
func (s *Session) Disarm() {
	s.state = Idle
	s.kind = ""
}

// Begin claims the armed session for one commit and returns the kind.
func (s *Session) Begin() (model.FieldKind, error) {
	switch s.state {
	case Idle:
		return "", apperr.State("commit", apperr.ErrIdle)
	case Committing:
		return "", apperr.State("commit", apperr.ErrBusy)
	}
	s.state = Committing
	return s.kind, nil
}

// Finish ends a commit started by Begin. Success and not-found both return
// to idle; any other failure re-arms the same kind so the user can retry.
func (s *Session) Finish(err error) {
	if s.state != Committing {
		return
	}
	if err == nil || apperr.KindOf(err) == apperr.KindNotFound {
		s.Disarm()
		return
	}
	s.state = Armed
}

// Commit runs fn as one placement: Begin, fn, Finish.
func (s *Session) Commit(fn func(kind model.FieldKind) error) error {
	kind, err := s.Begin()
	if err != nil {
		return err
	}
	err = fn(kind)
	s.Finish(err)
	return err
}
