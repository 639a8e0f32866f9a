package pebblestore

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/stretchr/testify/require"

	"github.com/velmie/statementq"
)

func TestStoreCRUD(t *testing.T) {
	ctx := context.Background()
	store, err := Open(Options{DataDir: t.TempDir()})
	require.NoError(t, err)
	defer store.Close()

	at := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)
	record := statementq.Record{ID: "stat1", Kind: "completed/level", Payload: []byte(`{"a":1}`), LastAttemptAt: at}
	require.NoError(t, store.Put(ctx, record))
	record.Attempts = 3
	require.NoError(t, store.Put(ctx, record))

	got, err := store.Get(ctx, "stat1")
	require.NoError(t, err)
	require.Equal(t, 3, got.Attempts)
	require.Equal(t, `{"a":1}`, string(got.Payload))
	require.True(t, got.LastAttemptAt.Equal(at))

	require.NoError(t, store.Remove(ctx, "stat1"))
	require.NoError(t, store.Remove(ctx, "stat1"))
	_, err = store.Get(ctx, "stat1")
	require.ErrorIs(t, err, statementq.ErrRecordNotFound)
}

func TestStoreNamespacesAreIsolated(t *testing.T) {
	ctx := context.Background()
	db, err := pebble.Open("", &pebble.Options{FS: vfs.NewMem()})
	require.NoError(t, err)
	defer db.Close()

	dwarfs, err := New(db, "dwarfs", false)
	require.NoError(t, err)
	dwarfs2, err := New(db, "dwarfs2", false)
	require.NoError(t, err)

	base := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, dwarfs.Put(ctx, statementq.Record{ID: "b", Payload: []byte(`{}`), LastAttemptAt: base}))
	require.NoError(t, dwarfs.Put(ctx, statementq.Record{ID: "a", Payload: []byte(`{}`), LastAttemptAt: base.Add(time.Second)}))
	require.NoError(t, dwarfs2.Put(ctx, statementq.Record{ID: "x", Payload: []byte(`{}`), LastAttemptAt: base}))

	list, err := dwarfs.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "b", list[0].ID)
	require.Equal(t, "a", list[1].ID)

	list, err = dwarfs2.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestStoreRejectsCorruptValue(t *testing.T) {
	ctx := context.Background()
	db, err := pebble.Open("", &pebble.Options{FS: vfs.NewMem()})
	require.NoError(t, err)
	defer db.Close()

	store, err := New(db, "", false)
	require.NoError(t, err)
	require.NoError(t, db.Set(store.key("bad"), []byte("{"), pebble.NoSync))

	_, err = store.Get(ctx, "bad")
	require.ErrorIs(t, err, statementq.ErrInvalidRecord)
}

func TestStoreListReturnsDecodableRecords(t *testing.T) {
	ctx := context.Background()
	db, err := pebble.Open("", &pebble.Options{FS: vfs.NewMem()})
	require.NoError(t, err)
	defer db.Close()

	store, err := New(db, "", false)
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, statementq.Record{ID: "good", Payload: []byte(`{}`), LastAttemptAt: time.Now()}))
	require.NoError(t, db.Set(store.key("bad"), []byte("{"), pebble.NoSync))

	list, err := store.List(ctx)
	var invalid *statementq.InvalidRecordsError
	require.ErrorAs(t, err, &invalid)
	require.Equal(t, []string{"bad"}, invalid.IDs)
	require.Len(t, list, 1)
	require.Equal(t, "good", list[0].ID)

	c, err := statementq.New(store, statementq.SenderFunc(func(context.Context, statementq.Record) error { return nil }))
	require.NoError(t, err)
	result, err := c.Reconcile(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, result.Admitted)
	require.Equal(t, 1, result.Invalid)
	require.Equal(t, 1, c.QueueLength())

	_, err = store.Get(ctx, "bad")
	require.ErrorIs(t, err, statementq.ErrRecordNotFound)
	list, err = store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestStoreRejectsNestedNamespace(t *testing.T) {
	db, err := pebble.Open("", &pebble.Options{FS: vfs.NewMem()})
	require.NoError(t, err)
	defer db.Close()

	_, err = New(db, "a/b", false)
	require.ErrorIs(t, err, ErrInvalidNamespace)
	_, err = Open(Options{DataDir: t.TempDir(), Namespace: "a/b"})
	require.ErrorIs(t, err, ErrInvalidNamespace)
}

func TestStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	first, err := Open(Options{DataDir: dir, Namespace: "game"})
	require.NoError(t, err)
	require.NoError(t, first.Put(ctx, statementq.Record{ID: "stat1", Payload: []byte(`{}`), LastAttemptAt: time.Now()}))
	require.NoError(t, first.Close())

	second, err := Open(Options{DataDir: dir, Namespace: "game"})
	require.NoError(t, err)
	defer second.Close()

	list, err := second.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestUpperBound(t *testing.T) {
	require.Equal(t, []byte("ab"), upperBound([]byte("aa")))
	require.Equal(t, []byte("b"), upperBound([]byte{'a', 0xff}))
	require.Nil(t, upperBound([]byte{0xff}))
}

func TestOpenRequiresDir(t *testing.T) {
	_, err := Open(Options{})
	require.ErrorIs(t, err, ErrDataDirRequired)
}
