package repositories_test

import (
	"context"
	"testing"

	"coursehub/models"
	"coursehub/repositories"
	"coursehub/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedContact(t *testing.T, repo *repositories.ContactRepository, subject string) *models.Contact {
	t.Helper()
	c := &models.Contact{Name: "Ada", Email: "ada@example.com", Subject: subject, Message: "Hello there"}
	require.NoError(t, repo.Create(context.Background(), c))
	return c
}

func TestContactRespondResolvesMessage(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	admin := testutil.SeedUser(t, db, "admin@example.com", models.RoleAdmin)
	repo := repositories.NewContactRepository(db)
	msg := seedContact(t, repo, "Billing")
	assert.Equal(t, models.ContactStatusNew, msg.Status)

	require.NoError(t, repo.Respond(ctx, msg.ID, admin.ID, "We fixed it."))

	got, err := repo.FindByID(ctx, msg.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ContactStatusResolved, got.Status)
	assert.True(t, got.IsRead)
	assert.Equal(t, "We fixed it.", got.AdminResponse)
	require.NotNil(t, got.RespondedBy)
	assert.Equal(t, admin.ID, *got.RespondedBy)
	assert.NotNil(t, got.RespondedAt)
	require.NotNil(t, got.Responder)
	assert.Equal(t, admin.Email, got.Responder.Email)

	assert.ErrorIs(t, repo.Respond(ctx, msg.ID+100, admin.ID, "x"), repositories.ErrNotFound)
}

func TestContactReadFlagAndUnreadCount(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	repo := repositories.NewContactRepository(db)
	first := seedContact(t, repo, "One")
	seedContact(t, repo, "Two")

	unread, err := repo.CountUnread(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), unread)

	require.NoError(t, repo.SetRead(ctx, first.ID, true))
	unread, err = repo.CountUnread(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)

	read := true
	list, _, err := repo.List(ctx, repositories.ContactFilter{IsRead: &read})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, first.ID, list[0].ID)

	require.NoError(t, repo.SetRead(ctx, first.ID, false))
	unread, err = repo.CountUnread(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), unread)

	assert.ErrorIs(t, repo.SetRead(ctx, first.ID+100, true), repositories.ErrNotFound)
}

func TestContactStatusUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	repo := repositories.NewContactRepository(db)
	msg := seedContact(t, repo, "Access")

	require.NoError(t, repo.UpdateStatus(ctx, msg.ID, models.ContactStatusInProgress))
	require.NoError(t, repo.UpdateStatus(ctx, msg.ID, models.ContactStatusInProgress))

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[models.ContactStatusInProgress])
	assert.Equal(t, int64(0), counts[models.ContactStatusNew])

	require.NoError(t, repo.Delete(ctx, msg.ID))
	_, err = repo.FindByID(ctx, msg.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, msg.ID), repositories.ErrNotFound)
}
