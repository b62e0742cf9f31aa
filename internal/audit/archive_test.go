package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/librarian/internal/catalog"
)

func TestArchiver(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	archiver := NewArchiver(dir)

	t.Run("SaveJSON creates directory and saves file", func(t *testing.T) {
		snap := catalog.Snapshot{
			Available: []catalog.Book{{Title: "dune", Category: catalog.Fiction}},
		}

		filename, err := archiver.SaveJSON(snap)
		require.NoError(t, err)
		assert.Contains(t, filename, ".json")

		data, err := os.ReadFile(filepath.Join(dir, filename))
		require.NoError(t, err)

		var loaded catalog.Snapshot
		require.NoError(t, json.Unmarshal(data, &loaded))
		assert.Equal(t, snap.Available, loaded.Available)
	})

	t.Run("SaveJSON generates unique filenames", func(t *testing.T) {
		first, err := archiver.SaveJSON(map[string]int{"n": 1})
		require.NoError(t, err)
		second, err := archiver.SaveJSON(map[string]int{"n": 2})
		require.NoError(t, err)
		assert.NotEqual(t, first, second)
	})

	t.Run("SaveJSON rejects unmarshalable data", func(t *testing.T) {
		_, err := archiver.SaveJSON(make(chan int))
		assert.Error(t, err)
	})
}
