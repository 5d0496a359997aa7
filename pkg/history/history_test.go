package history

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddKeepsNewest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	l := Open(path, 3, nil)
	for i := 1; i <= 5; i++ {
		l.Add(Entry{ID: fmt.Sprint(i), Text: fmt.Sprintf("command %d", i)})
	}

	require.Equal(t, 3, l.Len())
	got := l.Recent(0)
	assert.Equal(t, []string{"3", "4", "5"}, []string{got[0].ID, got[1].ID, got[2].ID})
	assert.Equal(t, "5", l.Recent(1)[0].ID)

	reopened := Open(path, 2, nil)
	assert.Equal(t, 2, reopened.Len())
	assert.Equal(t, "4", reopened.Recent(0)[0].ID)
}

func TestAddAtLimitKeepsFileBounded(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	l := Open(path, 2, nil)
	for i := 1; i <= 4; i++ {
		l.Add(Entry{ID: fmt.Sprint(i)})
		assert.LessOrEqual(t, Open(path, 100, nil).Len(), 2)
	}
	got := Open(path, 100, nil).Recent(0)
	require.Len(t, got, 2)
	assert.Equal(t, "3", got[0].ID)
	assert.Equal(t, "4", got[1].ID)
}

func TestSearchAndClear(t *testing.T) {
	l := Open(filepath.Join(t.TempDir(), "history.json"), 10, nil)
	l.Add(Entry{Text: "add task buy milk", Reply: "Added task: \"buy milk\""})
	l.Add(Entry{Text: "convert 5 miles to km", Reply: "5 miles = 8.0467 kilometers"})

	found := l.Search("MILK")
	require.Len(t, found, 1)
	assert.Equal(t, "add task buy milk", found[0].Text)
	assert.Len(t, l.Search("kilometers"), 1)
	assert.Empty(t, l.Search("docker"))

	l.Clear()
	assert.Zero(t, l.Len())
	assert.Empty(t, l.Recent(5))
}

func TestConcurrentAdds(t *testing.T) {
	l := Open(filepath.Join(t.TempDir(), "history.json"), 20, nil)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Add(Entry{ID: fmt.Sprint(i)})
		}()
	}
	wg.Wait()
	assert.Equal(t, 20, l.Len())
}
