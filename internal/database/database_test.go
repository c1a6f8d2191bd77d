package database

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"birthday-inbox/internal/models"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := Open(Config{Path: filepath.Join(t.TempDir(), "test.db"), BusyTimeout: time.Second})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func createUser(t *testing.T, repo *UserRepo, username string) *models.User {
	t.Helper()

	user := &models.User{Username: username, PasswordHash: "hash-" + username}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func TestOpen_MigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "app.db")

	db, err := Open(Config{Path: path})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = Open(Config{Path: path})
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM migrations").Scan(&count))
	assert.Equal(t, len(migrations), count)
}

func TestUserRepo_CreateAndLookupIgnoresCase(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepo(openTestDB(t))

	alice := createUser(t, repo, "Alice")
	assert.NotZero(t, alice.ID)

	got, err := repo.GetByUsername(ctx, "aLiCe")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)
	assert.Equal(t, "Alice", got.Username)
	assert.Equal(t, "hash-Alice", got.PasswordHash)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, err = repo.GetByUsername(ctx, "bob")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserRepo_DuplicateUsernameAnyCase(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepo(openTestDB(t))

	createUser(t, repo, "alice")

	for _, name := range []string{"alice", "ALICE", "Alice"} {
		err := repo.Create(ctx, &models.User{Username: name, PasswordHash: "x"})
		assert.ErrorIs(t, err, ErrUserAlreadyExists, name)
	}

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestUserRepo_UpdatePassword(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepo(openTestDB(t))

	alice := createUser(t, repo, "alice")
	require.NoError(t, repo.UpdatePassword(ctx, alice.ID, "new-hash"))

	got, err := repo.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", got.PasswordHash)

	assert.ErrorIs(t, repo.UpdatePassword(ctx, 9999, "x"), ErrUserNotFound)
}

func TestMessageRepo_ListByReceiverNewestFirst(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewMessageRepo(db)

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	seed := []*models.Message{
		{Sender: "bob", Receiver: "Alice", Body: "first", Timestamp: base},
		{Sender: "carol", Receiver: "alice", Body: "second", Timestamp: base.Add(time.Minute)},
		{Sender: "alice", Receiver: "bob", Body: "not for alice", Timestamp: base.Add(2 * time.Minute)},
		{Sender: "bob", Receiver: "ALICE", Body: "third", Timestamp: base.Add(3 * time.Minute)},
	}
	for _, m := range seed {
		require.NoError(t, repo.Create(ctx, m))
	}

	inbox, err := repo.ListByReceiver(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, inbox, 3)
	assert.Equal(t, "third", inbox[0].Body)
	assert.Equal(t, "second", inbox[1].Body)
	assert.Equal(t, "first", inbox[2].Body)
	assert.True(t, inbox[0].Timestamp.Equal(base.Add(3*time.Minute)))

	empty, err := repo.ListByReceiver(ctx, "dave")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMessageRepo_SameTimestampOrdersByID(t *testing.T) {
	ctx := context.Background()
	repo := NewMessageRepo(openTestDB(t))

	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for _, body := range []string{"a", "b", "c"} {
		require.NoError(t, repo.Create(ctx, &models.Message{Sender: "bob", Receiver: "alice", Body: body, Timestamp: ts}))
	}

	inbox, err := repo.ListByReceiver(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, inbox, 3)
	assert.Equal(t, []string{"c", "b", "a"}, []string{inbox[0].Body, inbox[1].Body, inbox[2].Body})
}

func TestMessageRepo_GetByID(t *testing.T) {
	ctx := context.Background()
	repo := NewMessageRepo(openTestDB(t))

	msg := &models.Message{Sender: "bob", Receiver: "alice", Body: "hi"}
	require.NoError(t, repo.Create(ctx, msg))
	assert.False(t, msg.Timestamp.IsZero())

	got, err := repo.GetByID(ctx, msg.ID)
	require.NoError(t, err)
	assert.Equal(t, "hi", got.Body)

	_, err = repo.GetByID(ctx, msg.ID+1)
	assert.ErrorIs(t, err, ErrMessageNotFound)
}

func TestSessionRepo_Lifecycle(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	users := NewUserRepo(db)
	repo := NewSessionRepo(db)

	alice := createUser(t, users, "alice")

	token, session, err := repo.Create(ctx, alice.ID, "127.0.0.1", "test", time.Hour)
	require.NoError(t, err)
	assert.Len(t, token, 64)
	assert.NotEqual(t, token, session.TokenHash)

	got, err := repo.GetByToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.UserID)

	require.NoError(t, repo.DeleteByToken(ctx, token))
	_, err = repo.GetByToken(ctx, token)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, repo.DeleteByToken(ctx, token), ErrSessionNotFound)
}

func TestSessionRepo_Expired(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	alice := createUser(t, NewUserRepo(db), "alice")
	repo := NewSessionRepo(db)

	expired, _, err := repo.Create(ctx, alice.ID, "", "", -time.Minute)
	require.NoError(t, err)
	_, _, err = repo.Create(ctx, alice.ID, "", "", -time.Minute)
	require.NoError(t, err)
	live, _, err := repo.Create(ctx, alice.ID, "", "", time.Hour)
	require.NoError(t, err)

	_, err = repo.GetByToken(ctx, expired)
	assert.ErrorIs(t, err, ErrSessionExpired)
	_, err = repo.GetByToken(ctx, expired)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	n, err := repo.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = repo.GetByToken(ctx, live)
	assert.NoError(t, err)

	n, err = repo.DeleteAllForUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestAuditRepo_LogAndList(t *testing.T) {
	ctx := context.Background()
	repo := NewAuditRepo(openTestDB(t))

	require.NoError(t, repo.Log(ctx, "alice", models.ActionLogin, "alice", nil, "10.0.0.1"))
	require.NoError(t, repo.Log(ctx, "alice", models.ActionMessageSend, "bob", map[string]int64{"message_id": 1}, "10.0.0.1"))

	all, err := repo.List(ctx, "", 10)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	sends, err := repo.List(ctx, models.ActionMessageSend, 10)
	require.NoError(t, err)
	require.Len(t, sends, 1)
	assert.Equal(t, "bob", sends[0].Target)
	assert.JSONEq(t, `{"message_id":1}`, sends[0].Details)
}

func TestInspector_SnapshotOmitsHashes(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	createUser(t, NewUserRepo(db), "alice")
	require.NoError(t, NewMessageRepo(db).Create(ctx, &models.Message{Sender: "bob", Receiver: "alice", Body: "hi"}))

	snap, err := NewInspector(db, "/tmp/test.db").Snapshot(ctx)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/test.db", snap.Path)
	assert.Contains(t, snap.Tables, "users")
	assert.Contains(t, snap.Tables, "messages")
	assert.NotContains(t, snap.Tables, "sqlite_sequence")
	assert.Len(t, snap.Users, 1)
	assert.Len(t, snap.Messages, 1)

	var names []string
	for _, col := range snap.Tables["users"] {
		names = append(names, col.Name)
	}
	assert.Equal(t, []string{"id", "username", "password_hash", "created_at", "updated_at"}, names)
}
