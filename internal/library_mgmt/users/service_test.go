package users

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc := NewService(NewFileStore(filepath.Join(t.TempDir(), "users.txt")))
	require.NoError(t, svc.Load(context.Background()))
	return svc
}

func mustCreate(t *testing.T, svc *Service, username string) UserResponse {
	t.Helper()
	res, err := svc.Create(context.Background(), CreateUserRequest{
		Username: username,
		FullName: "Full Name",
		Email:    username + "@example.com",
	})
	require.NoError(t, err)
	return res
}

func TestCreateDuplicateUsername(t *testing.T) {
	svc := newTestService(t)
	mustCreate(t, svc, "alice")

	_, err := svc.Create(context.Background(), CreateUserRequest{
		Username: "alice", FullName: "Another", Email: "other@example.com",
	})
	require.Error(t, err)
	assert.Equal(t, CodeConflict, err.(*APIError).Code)
}

func TestUpdatePartial(t *testing.T) {
	svc := newTestService(t)
	created := mustCreate(t, svc, "alice")

	email := "new@example.com"
	res, err := svc.Update(context.Background(), created.UserID, UpdateUserRequest{Email: &email})
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", res.Email)
	assert.Equal(t, "alice", res.Username)
	assert.Equal(t, "Full Name", res.FullName)
}

func TestUpdateUsernameConflict(t *testing.T) {
	svc := newTestService(t)
	mustCreate(t, svc, "alice")
	bob := mustCreate(t, svc, "bob")

	name := "alice"
	_, err := svc.Update(context.Background(), bob.UserID, UpdateUserRequest{Username: &name})
	require.Error(t, err)
	assert.Equal(t, CodeConflict, err.(*APIError).Code)
}

func TestDeleteGuard(t *testing.T) {
	svc := newTestService(t)
	created := mustCreate(t, svc, "alice")
	svc.SetInUseCheck(func(userID int) bool { return userID == created.UserID })

	err := svc.Delete(context.Background(), created.UserID)
	require.Error(t, err)
	assert.Equal(t, CodeConflict, err.(*APIError).Code)
}

func TestReloadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.txt")
	ctx := context.Background()

	svc := NewService(NewFileStore(path))
	require.NoError(t, svc.Load(ctx))
	mustCreate(t, svc, "alice")
	mustCreate(t, svc, "bob")

	again := NewService(NewFileStore(path))
	require.NoError(t, again.Load(ctx))
	assert.Equal(t, svc.List(ctx), again.List(ctx))
	assert.True(t, again.Exists(ctx, 1))
	assert.False(t, again.Exists(ctx, 99))
}
