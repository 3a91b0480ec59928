package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/qmuntal/stateless"

	"github.com/edvin/configurator/internal/model"
)

var ErrNameIndexOutOfRange = errors.New("name index out of range")

// NamingState is the position of a NamingSession in the submit flow.
type NamingState string

const (
	NamingStateEditing   NamingState = "editing"
	NamingStateNaming    NamingState = "naming"
	NamingStateCommitted NamingState = "committed"
)

const (
	triggerBeginNaming  = "begin_naming"
	triggerBack         = "back"
	triggerConfirm      = "confirm"
	triggerCommitDirect = "commit_direct"
)

// NamingSession walks one draft through submission. New drafts with a
// quantity above one stop in the naming state so each unit can be named
// before they are committed together.
//
//	editing --begin_naming--> naming --confirm--> committed
//	editing <-----back------- naming
//	editing --commit_direct-------------------> committed
type NamingSession struct {
	svc       *ProvisionService
	draft     model.Draft
	editingID string
	names     []string
	records   []model.ProvisionedConfiguration
	machine   *stateless.StateMachine
}

// NewNamingSession starts in the editing state. editingID is empty for a new
// configuration.
func NewNamingSession(svc *ProvisionService, draft model.Draft, editingID string) *NamingSession {
	s := &NamingSession{
		svc:       svc,
		draft:     draft.Clone(),
		editingID: editingID,
	}

	m := stateless.NewStateMachine(NamingStateEditing)
	m.Configure(NamingStateEditing).
		OnEntryFrom(triggerBack, func(_ context.Context, _ ...any) error {
			s.names = nil
			return nil
		}).
		Permit(triggerBeginNaming, NamingStateNaming).
		Permit(triggerCommitDirect, NamingStateCommitted)
	m.Configure(NamingStateNaming).
		OnEntryFrom(triggerBeginNaming, func(_ context.Context, _ ...any) error {
			s.names = s.svc.SeedNames(&s.draft)
			return nil
		}).
		Permit(triggerBack, NamingStateEditing).
		Permit(triggerConfirm, NamingStateCommitted)
	m.Configure(NamingStateCommitted)
	s.machine = m

	return s
}

func (s *NamingSession) State() NamingState {
	return s.machine.MustState().(NamingState)
}

func (s *NamingSession) Draft() model.Draft {
	return s.draft.Clone()
}

func (s *NamingSession) Names() []string {
	return append([]string(nil), s.names...)
}

// Records returns what the session committed, if it has.
func (s *NamingSession) Records() []model.ProvisionedConfiguration {
	return s.records
}

// Submit commits edits and single units directly. A new draft with a
// quantity above one is validated and moves to naming with seeded names;
// nothing is written and no records are returned in that case.
func (s *NamingSession) Submit(ctx context.Context) ([]model.ProvisionedConfiguration, error) {
	if err := s.require(NamingStateEditing, "submit"); err != nil {
		return nil, err
	}

	if s.editingID != "" || s.draft.Quantity <= 1 {
		records, err := s.svc.Commit(ctx, CommitRequest{Draft: s.draft, EditingID: s.editingID})
		if err != nil {
			return nil, err
		}
		if err := s.fire(ctx, triggerCommitDirect); err != nil {
			return nil, err
		}
		s.records = records
		return records, nil
	}

	res, err := s.svc.Validate(ctx, &s.draft)
	if err != nil {
		return nil, err
	}
	if err := res.Err(); err != nil {
		return nil, err
	}
	if err := s.fire(ctx, triggerBeginNaming); err != nil {
		return nil, err
	}
	return nil, nil
}

// Rename sets the name of unit i while naming.
func (s *NamingSession) Rename(i int, name string) error {
	if err := s.require(NamingStateNaming, "rename"); err != nil {
		return err
	}
	if i < 0 || i >= len(s.names) {
		return fmt.Errorf("rename %d of %d: %w", i, len(s.names), ErrNameIndexOutOfRange)
	}
	s.names[i] = name
	return nil
}

// SetNames replaces every name at once. The count must match the seeded names.
func (s *NamingSession) SetNames(names []string) error {
	if err := s.require(NamingStateNaming, "set names"); err != nil {
		return err
	}
	if len(names) != len(s.names) {
		return invalid(CodeInvalidQuantity, "names", "%d names given for quantity %d", len(names), len(s.names))
	}
	copy(s.names, names)
	return nil
}

// Back returns to editing and discards the names. The draft is untouched.
func (s *NamingSession) Back(ctx context.Context) error {
	return s.fire(ctx, triggerBack)
}

// Confirm commits one record per name. On failure the session stays in
// naming with the names intact.
func (s *NamingSession) Confirm(ctx context.Context) ([]model.ProvisionedConfiguration, error) {
	if err := s.require(NamingStateNaming, "confirm"); err != nil {
		return nil, err
	}
	records, err := s.svc.Commit(ctx, CommitRequest{Draft: s.draft, Names: s.Names()})
	if err != nil {
		return nil, err
	}
	if err := s.fire(ctx, triggerConfirm); err != nil {
		return nil, err
	}
	s.records = records
	return records, nil
}

func (s *NamingSession) require(state NamingState, op string) error {
	if cur := s.State(); cur != state {
		return fmt.Errorf("%s in state %s: %w", op, cur, ErrInvalidTransition)
	}
	return nil
}

func (s *NamingSession) fire(ctx context.Context, trigger string) error {
	if err := s.machine.FireCtx(ctx, trigger); err != nil {
		return fmt.Errorf("%s from %s: %w", trigger, s.State(), ErrInvalidTransition)
	}
	return nil
}
