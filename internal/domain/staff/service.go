package staff

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/careconnect/careconnect/internal/platform/apperr"
	"github.com/careconnect/careconnect/internal/platform/realtime"
)

const table = "staff"

type Service struct {
	members MemberRepository
	pub     realtime.Publisher
}

func NewService(members MemberRepository, pub realtime.Publisher) *Service {
	return &Service{members: members, pub: pub}
}

func (s *Service) publish(ctx context.Context, op string, id uuid.UUID) {
	if s.pub != nil {
		_ = s.pub.Publish(ctx, realtime.Change{Table: table, Op: op, RecordID: id.String()})
	}
}

// Create adds a member to a directory. New members are active.
func (s *Service) Create(ctx context.Context, m *Member) error {
	if err := m.Validate(); err != nil {
		return err
	}
	m.Active = true
	if err := s.members.Create(ctx, m); err != nil {
		return fmt.Errorf("create staff member: %w", err)
	}
	s.publish(ctx, realtime.OpInsert, m.ID)
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Member, error) {
	return s.members.GetByID(ctx, id)
}

// Update replaces the member's details. The directory a member belongs to
// is fixed at creation.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in *Member) (*Member, error) {
	cur, err := s.members.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	in.ID, in.CreatedAt = cur.ID, cur.CreatedAt
	if in.Kind == "" {
		in.Kind = cur.Kind
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if in.Kind != cur.Kind {
		return nil, apperr.Validation("kind", "cannot move a %s to the %s directory", cur.Kind, in.Kind)
	}
	if err := s.members.Update(ctx, in); err != nil {
		return nil, err
	}
	s.publish(ctx, realtime.OpUpdate, in.ID)
	return in, nil
}

// SetActive marks a member as on or off duty roster.
func (s *Service) SetActive(ctx context.Context, id uuid.UUID, active bool) (*Member, error) {
	m, err := s.members.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.Active == active {
		return m, nil
	}
	m.Active = active
	if err := s.members.Update(ctx, m); err != nil {
		return nil, err
	}
	s.publish(ctx, realtime.OpUpdate, m.ID)
	return m, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.members.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, realtime.OpDelete, id)
	return nil
}

func (s *Service) List(ctx context.Context, f Filter, limit, offset int) ([]*Member, int, error) {
	return s.members.List(ctx, f, limit, offset)
}

// IsActiveDoctor reports whether staffID is an active member of the doctors
// directory.
func (s *Service) IsActiveDoctor(ctx context.Context, staffID uuid.UUID) (bool, error) {
	m, err := s.members.GetByID(ctx, staffID)
	if errors.Is(err, apperr.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return m.Kind == KindDoctor && m.Active, nil
}

// Exists reports whether staffID names any directory member.
func (s *Service) Exists(ctx context.Context, staffID uuid.UUID) (bool, error) {
	_, err := s.members.GetByID(ctx, staffID)
	if errors.Is(err, apperr.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}
