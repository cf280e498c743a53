package review

import (
	"context"
	"errors"
	"log"
	"os"
	"sync"
	"time"
)

// State is the editing session's position in the submission flow.
type State string

const (
	StateEditing    State = "editing"
	StateValidating State = "validating"
	StateSubmitted  State = "submitted"
)

// Ack is the submission boundary's acknowledgement of an accepted review.
type Ack struct {
	ID         string    `json:"id"`
	ReceivedAt time.Time `json:"receivedAt"`
}

// Submitter accepts a fully validated form snapshot. What happens to it
// afterwards is the boundary's business.
type Submitter interface {
	Submit(ctx context.Context, f Form) (Ack, error)
}

// Refiner polishes free text. Implementations never fail outward; on any
// problem they return the input unchanged.
type Refiner interface {
	Refine(ctx context.Context, text string) string
}

// Session owns the single live form aggregate for one editing session. It
// applies field updates, clears stale validation errors as the user edits,
// autosaves a draft when configured with one, runs the submission flow, and
// guards async refinement results against clobbering newer input. There is exactly one writer; the mutex only covers
// the refinement goroutine's write-back.
type Session struct {
	mu        sync.Mutex
	form      Form
	errs      Errors
	state     State
	descGen   uint64
	draftPath string
	submitter Submitter
	refiner   Refiner
}

// NewSession starts a session with a freshly defaulted form.
func NewSession(sub Submitter, ref Refiner) *Session {
	return &Session{
		form:      NewForm(),
		errs:      Errors{},
		state:     StateEditing,
		submitter: sub,
		refiner:   ref,
	}
}

// ResumeSession starts a session from the draft at path, restoring whatever
// was autosaved last time. A missing draft starts fresh. Every subsequent
// edit autosaves back to the same path; a successful submission removes it.
func ResumeSession(sub Submitter, ref Refiner, draftPath string) (*Session, error) {
	f, err := LoadDraft(draftPath)
	if err != nil {
		return nil, err
	}
	s := NewSession(sub, ref)
	s.form = f
	s.draftPath = draftPath
	return s, nil
}

// autosaveLocked writes the current snapshot to the draft path, best effort.
// Callers hold the mutex.
func (s *Session) autosaveLocked() {
	if s.draftPath == "" {
		return
	}
	if err := SaveDraft(s.draftPath, s.form); err != nil {
		log.Printf("review draft_save_failed path=%s err=%v", s.draftPath, err)
	}
}

// clearDraftLocked removes the draft file once the form it held is no longer
// in play. Callers hold the mutex.
func (s *Session) clearDraftLocked() {
	if s.draftPath == "" {
		return
	}
	if err := os.Remove(s.draftPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("review draft_remove_failed path=%s err=%v", s.draftPath, err)
	}
}

// Form returns the current snapshot.
func (s *Session) Form() Form {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form
}

// State returns the session state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Errors returns a copy of the currently surfaced Error Map.
func (s *Session) Errors() Errors {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(Errors, len(s.errs))
	for k, v := range s.errs {
		out[k] = v
	}
	return out
}

// SetInstallerName updates the installer name and clears its stale error.
func (s *Session) SetInstallerName(v string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateEditing {
		return
	}
	s.form = s.form.WithInstallerName(v)
	delete(s.errs, FieldInstallerName)
	s.autosaveLocked()
}

// SetCustomerField updates one contact field and clears its stale error.
func (s *Session) SetCustomerField(field Field, v string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateEditing {
		return
	}
	s.form = s.form.WithCustomerField(field, v)
	delete(s.errs, field)
	s.autosaveLocked()
}

// SetReviewDescription updates the review body. Each call advances the
// description generation, which invalidates refinement calls issued against
// older text.
func (s *Session) SetReviewDescription(v string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateEditing {
		return
	}
	s.form = s.form.WithReviewDescription(v)
	s.descGen++
	s.autosaveLocked()
}

// Edit applies any other field update to the current snapshot. Updates are
// ignored outside the editing state.
func (s *Session) Edit(fn func(Form) Form) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateEditing {
		return
	}
	s.form = fn(s.form)
	s.autosaveLocked()
}

// RefineDescription fires a best-effort refinement of the current review body
// and returns immediately. The result is applied only if the session is still
// editing and the body has not changed since the call was issued; otherwise
// it is discarded. Without a configured refiner the call is a no-op.
func (s *Session) RefineDescription(ctx context.Context) {
	if s.refiner == nil {
		return
	}
	s.mu.Lock()
	if s.state != StateEditing {
		s.mu.Unlock()
		return
	}
	gen := s.descGen
	text := s.form.ReviewDescription
	s.mu.Unlock()

	go func() {
		refined := s.refiner.Refine(ctx, text)
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.state != StateEditing || s.descGen != gen {
			log.Printf("review refine_discarded gen=%d current=%d state=%s", gen, s.descGen, s.state)
			return
		}
		if refined == text {
			return
		}
		s.form = s.form.WithReviewDescription(refined)
		s.descGen++
		s.autosaveLocked()
	}()
}

// Submit runs the validation pass over the current snapshot. On failure the
// Error Map is surfaced, the session stays in editing, and the returned map's
// FirstSection names where to direct the user. On success the snapshot is
// handed to the submission boundary and the session becomes submitted. A
// boundary failure leaves the session editing so submission can be retried.
func (s *Session) Submit(ctx context.Context) (Ack, Errors, error) {
	s.mu.Lock()
	if s.state != StateEditing {
		s.mu.Unlock()
		return Ack{}, nil, ErrNotEditing
	}
	s.state = StateValidating
	snapshot := s.form
	s.mu.Unlock()

	errs := Validate(snapshot)
	if !errs.OK() {
		s.mu.Lock()
		s.state = StateEditing
		s.errs = errs
		s.mu.Unlock()
		return Ack{}, errs, nil
	}

	ack, err := s.submitter.Submit(ctx, snapshot)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = StateEditing
		return Ack{}, nil, err
	}
	s.state = StateSubmitted
	s.errs = Errors{}
	s.clearDraftLocked()
	return ack, nil, nil
}

// StartOver discards the submitted aggregate and re-enters editing with fresh
// defaults. It is only available from the submitted state.
func (s *Session) StartOver() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateSubmitted {
		return
	}
	s.form = NewForm()
	s.errs = Errors{}
	s.state = StateEditing
	s.descGen++
	s.clearDraftLocked()
}
