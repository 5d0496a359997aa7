package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`
	Done bool   `json:"done"`
}

func TestRoundTripPreservesOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todo.json")

	s := Open[record](path, nil)
	s.Append(record{ID: NextID(), Text: "first"})
	s.Append(record{ID: NextID(), Text: "second"})
	s.Append(record{ID: NextID(), Text: "third"})

	reloaded := Open[record](path, nil)
	assert.Equal(t, s.Items(), reloaded.Items())
	assert.Equal(t, "second", reloaded.Items()[1].Text)
}

func TestOpenMissingFile(t *testing.T) {
	s := Open[record](filepath.Join(t.TempDir(), "nested", "none.json"), nil)
	assert.Equal(t, 0, s.Len())
	assert.NotNil(t, s.Items())

	s.Replace(nil)
	assert.NotNil(t, s.Items())
	assert.Empty(t, s.Items())
}

func TestOpenCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	s := Open[record](path, nil)
	assert.Equal(t, 0, s.Len())

	s.Append(record{ID: 1, Text: "recovered"})
	assert.Equal(t, 1, Open[record](path, nil).Len())
}

func TestUpdateAndRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.json")
	s := Open[record](path, nil)
	s.Replace([]record{{ID: 1, Text: "a"}, {ID: 2, Text: "b"}, {ID: 3, Text: "c"}})

	require.True(t, s.Update(1, func(r *record) { r.Done = true }))
	assert.False(t, s.Update(5, func(r *record) { r.Done = true }))

	removed, ok := s.Remove(0)
	require.True(t, ok)
	assert.Equal(t, "a", removed.Text)
	_, ok = s.Remove(-1)
	assert.False(t, ok)

	got := Open[record](path, nil).Items()
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].Text)
	assert.True(t, got[0].Done)

	r, ok := s.At(1)
	require.True(t, ok)
	assert.Equal(t, "c", r.Text)
	_, ok = s.At(2)
	assert.False(t, ok)
}

func TestItemsIsACopy(t *testing.T) {
	s := Open[record](filepath.Join(t.TempDir(), "s.json"), nil)
	s.Append(record{ID: 1, Text: "a"})

	items := s.Items()
	items[0].Text = "mutated"
	assert.Equal(t, "a", s.Items()[0].Text)
}

func TestNextIDIsMonotonic(t *testing.T) {
	prev := NextID()
	for i := 0; i < 100; i++ {
		id := NextID()
		assert.Greater(t, id, prev)
		prev = id
	}
}

func TestNextIDSkipsPersistedIDs(t *testing.T) {
	future := time.Now().Add(time.Hour).UnixMilli()
	assert.Equal(t, future+1, NextID(3, future, 7))
	assert.Greater(t, NextID(), future+1)
}
