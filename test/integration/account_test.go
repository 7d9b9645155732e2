//go:build integration

package integration

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careconnect/careconnect/internal/domain/account"
	"github.com/careconnect/careconnect/internal/domain/inbox"
	"github.com/careconnect/careconnect/internal/platform/apperr"
	"github.com/careconnect/careconnect/internal/platform/auth"
)

func TestAccount_SignInAndRevoke(t *testing.T) {
	ctx := context.Background()
	s := newSuite(t)

	number := unique("N")
	u, err := s.accounts.CreateUser(ctx, account.NewUser{AccountNumber: number, Role: "staff", Password: "night-shift-2025"})
	require.NoError(t, err)
	assert.Equal(t, auth.RoleStaff, u.Role)

	_, err = s.accounts.CreateUser(ctx, account.NewUser{AccountNumber: number, Role: "staff", Password: "another-password"})
	assert.True(t, errors.Is(apperr.FromStore(err), apperr.ErrConflict), "duplicate account number, got %v", err)

	_, err = s.accounts.SignIn(ctx, number, "wrong-password")
	assert.True(t, errors.Is(err, account.ErrInvalidCredentials))

	res, err := s.accounts.SignIn(ctx, number, "night-shift-2025")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.True(t, res.Session.Capabilities.CanManageUsers)

	active, err := s.sessions.Active(ctx, res.Session.TokenID)
	require.NoError(t, err)
	assert.True(t, active)

	require.NoError(t, s.accounts.ResetPassword(ctx, u.ID, "day-shift-2025!"))
	active, err = s.sessions.Active(ctx, res.Session.TokenID)
	require.NoError(t, err)
	assert.False(t, active, "password reset should end existing sessions")

	stored, err := s.accounts.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.LastSignInAt)
}

func TestAccount_PatientLinkMustExist(t *testing.T) {
	ctx := context.Background()
	s := newSuite(t)
	p := createTestPatient(t, s, unique("H-"))

	u, err := s.accounts.CreateUser(ctx, account.NewUser{
		AccountNumber: unique("P"), Role: "patient", Password: "patient-portal-1", PatientID: &p.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, u.PatientID)

	missing := createTestPatient(t, s, unique("H-"))
	require.NoError(t, s.patients.Delete(ctx, missing.ID))
	_, err = s.accounts.CreateUser(ctx, account.NewUser{
		AccountNumber: unique("P"), Role: "patient", Password: "patient-portal-1", PatientID: &missing.ID,
	})
	assert.True(t, apperr.IsValidation(err), "expected validation error, got %v", err)
}

func TestInbox_MessageBetweenAccounts(t *testing.T) {
	ctx := context.Background()
	s := newSuite(t)
	doctor := createTestDoctor(t, s, "Garcia")
	p := createTestPatient(t, s, unique("H-"))

	nurse, err := s.accounts.CreateUser(ctx, account.NewUser{AccountNumber: unique("N"), Role: "staff", Password: "ward-three-nurse"})
	require.NoError(t, err)
	doc, err := s.accounts.CreateUser(ctx, account.NewUser{
		AccountNumber: unique("D"), Role: "doctor", Password: "attending-garcia", StaffID: &doctor.ID,
	})
	require.NoError(t, err)

	msg := &inbox.Message{
		SenderID:    nurse.ID,
		RecipientID: doc.ID,
		PatientID:   &p.ID,
		Subject:     "Fever spike",
		Body:        "T 38.9 at 14:00, paracetamol given.",
	}
	require.NoError(t, s.inbox.Send(ctx, msg))

	unread, err := s.inbox.UnreadCount(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, unread)

	_, err = s.inbox.MarkRead(ctx, msg.ID, nurse.ID)
	assert.True(t, errors.Is(err, apperr.ErrForbidden), "sender cannot mark read")

	read, err := s.inbox.MarkRead(ctx, msg.ID, doc.ID)
	require.NoError(t, err)
	assert.NotNil(t, read.ReadAt)

	unread, err = s.inbox.UnreadCount(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, unread)

	sent, total, err := s.inbox.List(ctx, nurse.ID, inbox.Filter{Folder: inbox.FolderSent}, 20, 0)
	require.NoError(t, err)
	require.Equal(t, 1, total)
	assert.Equal(t, msg.ID, sent[0].ID)

	require.NoError(t, s.accounts.DeleteUser(ctx, auth.NewSession(nurse.ID, auth.RoleStaff, nurse.AccountNumber), doc.ID))
	_, err = s.inbox.Get(ctx, msg.ID, nurse.ID)
	assert.True(t, errors.Is(err, apperr.ErrNotFound), "messages go with the deleted account")
}
