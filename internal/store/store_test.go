package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soyeahso/botline/internal/directline"
	"github.com/soyeahso/botline/internal/logging"
)

func testRecord() directline.SessionRecord {
	return directline.SessionRecord{
		Conversation: directline.Conversation{
			ConversationID: "conv-1",
			Token:          "tok-1",
			ExpiresIn:      1800,
			StreamURL:      "wss://example.test/stream",
		},
		Watermark: "42",
	}
}

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "botline.db"), logging.Silent())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSQLiteSessionStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewSQLiteSessionStore(openTestDB(t))

	// empty store loads nothing, without error
	rec, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, rec)

	require.NoError(t, s.Save(ctx, testRecord()))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "conv-1", got.Conversation.ConversationID)
	assert.Equal(t, "tok-1", got.Conversation.Token)
	assert.Equal(t, "42", got.Watermark)
}

func TestSQLiteSessionStoreOverwrites(t *testing.T) {
	ctx := context.Background()
	s := NewSQLiteSessionStore(openTestDB(t))

	require.NoError(t, s.Save(ctx, testRecord()))

	updated := testRecord()
	updated.Watermark = "99"
	updated.Conversation.Token = "tok-2"
	require.NoError(t, s.Save(ctx, updated))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "99", got.Watermark)
	assert.Equal(t, "tok-2", got.Conversation.Token)
}

func TestSQLiteSessionStoreClear(t *testing.T) {
	ctx := context.Background()
	s := NewSQLiteSessionStore(openTestDB(t))

	require.NoError(t, s.Save(ctx, testRecord()))
	require.NoError(t, s.Clear(ctx))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	// clearing an empty store is fine
	require.NoError(t, s.Clear(ctx))
}

func TestSQLiteStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "botline.db")

	db, err := Open(path, logging.Silent())
	require.NoError(t, err)
	require.NoError(t, NewSQLiteSessionStore(db).Save(ctx, testRecord()))
	require.NoError(t, db.Close())

	db, err = Open(path, logging.Silent())
	require.NoError(t, err)
	defer db.Close()

	got, err := NewSQLiteSessionStore(db).Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "conv-1", got.Conversation.ConversationID)
}

func TestMemorySessionStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemorySessionStore()

	rec, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, rec)

	require.NoError(t, s.Save(ctx, testRecord()))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "conv-1", got.Conversation.ConversationID)

	// the loaded record is a copy; mutating it must not leak back
	got.Watermark = "mutated"
	again, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "42", again.Watermark)

	require.NoError(t, s.Clear(ctx))
	rec, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, rec)
}
