package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRecord struct {
	ID    string `json:"id"`
	Group string `json:"group"`
	Name  string `json:"name"`
}

func newTestEntity(t *testing.T) *Entity[testRecord] {
	t.Helper()
	s := setupTestStore(t)
	return NewEntity[testRecord](s, "rec:").
		WithIndex("group", func(r *testRecord) []string {
			return []string{r.Group}
		})
}

func TestEntity_CreateGet(t *testing.T) {
	e := newTestEntity(t)
	ctx := context.Background()

	rec := &testRecord{ID: "rec-1", Group: "a", Name: "first"}
	require.NoError(t, e.Create(ctx, rec.ID, rec))

	got, err := e.Get(ctx, "rec-1")
	require.NoError(t, err)
	assert.Equal(t, "first", got.Name)
}

func TestEntity_CreateDuplicate(t *testing.T) {
	e := newTestEntity(t)
	ctx := context.Background()

	rec := &testRecord{ID: "rec-1", Group: "a"}
	require.NoError(t, e.Create(ctx, rec.ID, rec))
	assert.ErrorIs(t, e.Create(ctx, rec.ID, rec), ErrAlreadyExists)
}

func TestEntity_UpdateMissing(t *testing.T) {
	e := newTestEntity(t)

	err := e.Update(context.Background(), "rec-nope", &testRecord{ID: "rec-nope"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEntity_DeleteIdempotent(t *testing.T) {
	e := newTestEntity(t)
	ctx := context.Background()

	require.NoError(t, e.Delete(ctx, "rec-nope"))

	rec := &testRecord{ID: "rec-1", Group: "a"}
	require.NoError(t, e.Create(ctx, rec.ID, rec))
	require.NoError(t, e.Delete(ctx, "rec-1"))
	require.NoError(t, e.Delete(ctx, "rec-1"))
}

func TestEntity_List_SkipsIndexKeys(t *testing.T) {
	e := newTestEntity(t)
	ctx := context.Background()

	for i := range 5 {
		rec := &testRecord{ID: fmt.Sprintf("rec-%d", i), Group: "a"}
		require.NoError(t, e.Create(ctx, rec.ID, rec))
	}

	count := 0
	for rec, err := range e.List(ctx) {
		require.NoError(t, err)
		require.NotNil(t, rec)
		count++
	}
	assert.Equal(t, 5, count)
}

func TestEntity_ListByIndex_NonUnique(t *testing.T) {
	e := newTestEntity(t)
	ctx := context.Background()

	// Three records share group "a"; a non-unique index must allow that.
	for i := range 3 {
		rec := &testRecord{ID: fmt.Sprintf("rec-a%d", i), Group: "a"}
		require.NoError(t, e.Create(ctx, rec.ID, rec))
	}
	require.NoError(t, e.Create(ctx, "rec-b", &testRecord{ID: "rec-b", Group: "b"}))

	var ids []string
	for rec, err := range e.ListByIndex(ctx, "group", "a") {
		require.NoError(t, err)
		ids = append(ids, rec.ID)
	}
	assert.Len(t, ids, 3)
	assert.NotContains(t, ids, "rec-b")
}

func TestEntity_ListByIndex_UpdatedGroup(t *testing.T) {
	e := newTestEntity(t)
	ctx := context.Background()

	rec := &testRecord{ID: "rec-1", Group: "a"}
	require.NoError(t, e.Create(ctx, rec.ID, rec))

	rec.Group = "b"
	require.NoError(t, e.Update(ctx, rec.ID, rec))

	for _, err := range e.ListByIndex(ctx, "group", "a") {
		require.NoError(t, err)
		t.Fatal("stale index entry for old group")
	}

	count := 0
	for _, err := range e.ListByIndex(ctx, "group", "b") {
		require.NoError(t, err)
		count++
	}
	assert.Equal(t, 1, count)
}

func TestEntity_UniqueIndexConflict(t *testing.T) {
	s := setupTestStore(t)
	e := NewEntity[testRecord](s, "uq:").
		WithUniqueIndex("name", func(r *testRecord) []string {
			return []string{r.Name}
		})
	ctx := context.Background()

	require.NoError(t, e.Create(ctx, "rec-1", &testRecord{ID: "rec-1", Name: "taken"}))
	err := e.Create(ctx, "rec-2", &testRecord{ID: "rec-2", Name: "taken"})
	assert.ErrorIs(t, err, ErrAlreadyExists)
}
