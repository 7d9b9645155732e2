package inbox

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/careconnect/careconnect/internal/platform/apperr"
	"github.com/careconnect/careconnect/internal/platform/realtime"
)

const table = "messages"

type Service struct {
	messages  MessageRepository
	directory Directory
	pub       realtime.Publisher
	now       func() time.Time
}

func NewService(messages MessageRepository, directory Directory, pub realtime.Publisher) *Service {
	return &Service{messages: messages, directory: directory, pub: pub, now: time.Now}
}

// publish notifies both mailboxes and nobody else.
func (s *Service) publish(ctx context.Context, op string, m *Message) {
	if s.pub == nil {
		return
	}
	_ = s.pub.Publish(ctx, realtime.Change{
		Table:    table,
		Op:       op,
		RecordID: m.ID.String(),
		Topics:   []string{realtime.InboxTopic(m.RecipientID.String()), realtime.InboxTopic(m.SenderID.String())},
		Private:  true,
	})
}

// Send stores m after checking the recipient account exists.
func (s *Service) Send(ctx context.Context, m *Message) error {
	if err := m.Validate(); err != nil {
		return err
	}
	ok, err := s.directory.UserExists(ctx, m.RecipientID)
	if err != nil {
		return fmt.Errorf("resolve recipient: %w", err)
	}
	if !ok {
		return apperr.Validation("recipient_id", "no such account")
	}
	m.ReadAt = nil
	if err := s.messages.Create(ctx, m); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	s.publish(ctx, realtime.OpInsert, m)
	return nil
}

// Get returns a message visible to userID. Messages of other accounts are
// reported as not found.
func (s *Service) Get(ctx context.Context, id, userID uuid.UUID) (*Message, error) {
	m, err := s.messages.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !m.Participant(userID) {
		return nil, apperr.ErrNotFound
	}
	return m, nil
}

// MarkRead is idempotent; only the recipient may mark a message read.
func (s *Service) MarkRead(ctx context.Context, id, userID uuid.UUID) (*Message, error) {
	m, err := s.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if m.RecipientID != userID {
		return nil, apperr.ErrForbidden
	}
	if !m.Unread() {
		return m, nil
	}
	at, err := s.messages.MarkRead(ctx, id, s.now().UTC())
	if err != nil {
		return nil, err
	}
	m.ReadAt = &at
	s.publish(ctx, realtime.OpUpdate, m)
	return m, nil
}

func (s *Service) Delete(ctx context.Context, id, userID uuid.UUID) error {
	m, err := s.Get(ctx, id, userID)
	if err != nil {
		return err
	}
	if err := s.messages.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, realtime.OpDelete, m)
	return nil
}

func (s *Service) List(ctx context.Context, userID uuid.UUID, f Filter, limit, offset int) ([]*Message, int, error) {
	switch f.Folder {
	case "":
		f.Folder = FolderInbox
	case FolderInbox, FolderSent:
	default:
		return nil, 0, apperr.Validation("folder", "must be inbox or sent")
	}
	return s.messages.List(ctx, userID, f, limit, offset)
}

func (s *Service) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.messages.CountUnread(ctx, userID)
}
