package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/careconnect/careconnect/internal/platform/apperr"
	"github.com/careconnect/careconnect/internal/platform/auth"
)

// ExistsFunc reports whether a linked record exists.
type ExistsFunc func(ctx context.Context, id uuid.UUID) (bool, error)

// Links resolves the records an account may be bound to.
type Links struct {
	Patient ExistsFunc
	Staff   ExistsFunc
}

type Options struct {
	EmailDomain string
	BcryptCost  int
}

type Service struct {
	users    UserRepository
	tokens   *auth.TokenIssuer
	sessions auth.SessionStore
	links    Links
	domain   string
	hasher   *hasher
	now      func() time.Time
}

func NewService(users UserRepository, tokens *auth.TokenIssuer, sessions auth.SessionStore, links Links, opts Options) *Service {
	return &Service{
		users:    users,
		tokens:   tokens,
		sessions: sessions,
		links:    links,
		domain:   opts.EmailDomain,
		hasher:   newHasher(opts.BcryptCost),
		now:      time.Now,
	}
}

// SignIn verifies the password for accountNumber and opens a session.
func (s *Service) SignIn(ctx context.Context, accountNumber, password string) (*SignInResult, error) {
	u, err := s.users.GetByLogin(ctx, LoginFor(accountNumber, s.domain))
	if errors.Is(err, apperr.ErrNotFound) {
		s.hasher.burn(password)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("load account: %w", err)
	}
	if !s.hasher.matches(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	session := auth.NewSession(u.ID, u.Role, u.AccountNumber)
	session.PatientID, session.StaffID = u.PatientID, u.StaffID
	token, err := s.tokens.Issue(session)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Put(ctx, session.TokenID, u.ID.String(), session.ExpiresAt); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	at := s.now().UTC()
	if err := s.users.TouchSignIn(ctx, u.ID, at); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("user_id", u.ID.String()).Msg("record sign-in time")
	} else {
		u.LastSignInAt = &at
	}
	return &SignInResult{Token: token, Session: session, User: u}, nil
}

// SignOut ends the caller's session.
func (s *Service) SignOut(ctx context.Context, session *auth.Session) error {
	if session == nil || session.TokenID == "" {
		return nil
	}
	return s.sessions.Revoke(ctx, session.TokenID)
}

func (s *Service) CurrentUser(ctx context.Context, session *auth.Session) (*User, error) {
	if session == nil {
		return nil, apperr.ErrForbidden
	}
	return s.users.GetByID(ctx, session.UserID)
}

// UpdatePassword changes the caller's own password after checking the
// current one.
func (s *Service) UpdatePassword(ctx context.Context, session *auth.Session, current, next string) error {
	u, err := s.CurrentUser(ctx, session)
	if err != nil {
		return err
	}
	if !s.hasher.matches(u.PasswordHash, current) {
		return apperr.Validation("current_password", "is incorrect")
	}
	if err := ValidatePassword(next); err != nil {
		return err
	}
	hash, err := s.hasher.hash(next)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.users.SetPassword(ctx, u.ID, hash)
}

func (s *Service) checkLinked(ctx context.Context, field string, id *uuid.UUID, exists ExistsFunc) error {
	if id == nil || exists == nil {
		return nil
	}
	ok, err := exists(ctx, *id)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Validation(field, "no such record")
	}
	return nil
}

// CreateUser adds an account. The account number must be unique.
func (s *Service) CreateUser(ctx context.Context, in NewUser) (*User, error) {
	number, err := NormalizeAccountNumber(in.AccountNumber)
	if err != nil {
		return nil, err
	}
	role, ok := auth.ParseRole(in.Role)
	if !ok {
		return nil, apperr.Validation("role", "must be staff, doctor, medtech, radtech or patient")
	}
	if err := CheckLink(role, in.PatientID, in.StaffID); err != nil {
		return nil, err
	}
	if err := ValidatePassword(in.Password); err != nil {
		return nil, err
	}
	if err := s.checkLinked(ctx, "patient_id", in.PatientID, s.links.Patient); err != nil {
		return nil, err
	}
	if err := s.checkLinked(ctx, "staff_id", in.StaffID, s.links.Staff); err != nil {
		return nil, err
	}

	hash, err := s.hasher.hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &User{
		Role:          role,
		AccountNumber: number,
		Login:         LoginFor(number, s.domain),
		PasswordHash:  hash,
		PatientID:     in.PatientID,
		StaffID:       in.StaffID,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.users.GetByID(ctx, id)
}

// UserExists lets the message service resolve recipients.
func (s *Service) UserExists(ctx context.Context, id uuid.UUID) (bool, error) {
	_, err := s.users.GetByID(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (s *Service) ListUsers(ctx context.Context, f Filter, limit, offset int) ([]*User, int, error) {
	if f.Role != "" {
		role, ok := auth.ParseRole(f.Role)
		if !ok {
			return nil, 0, apperr.Validation("role", "unknown role %q", f.Role)
		}
		f.Role = string(role)
	}
	return s.users.List(ctx, f, limit, offset)
}

// ResetPassword sets a new password for another account and ends all of its
// sessions.
func (s *Service) ResetPassword(ctx context.Context, id uuid.UUID, password string) error {
	if err := ValidatePassword(password); err != nil {
		return err
	}
	hash, err := s.hasher.hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.SetPassword(ctx, id, hash); err != nil {
		return err
	}
	_, err = s.sessions.RevokeAllForUser(ctx, id.String())
	return err
}

// DeleteUser removes an account and ends its sessions. An account cannot
// delete itself.
func (s *Service) DeleteUser(ctx context.Context, actor *auth.Session, id uuid.UUID) error {
	if actor != nil && actor.UserID == id {
		return apperr.Validation("id", "cannot delete the signed-in account")
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	if _, err := s.sessions.RevokeAllForUser(ctx, id.String()); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("user_id", id.String()).Msg("revoke sessions of deleted account")
	}
	return nil
}
