package recall

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDatabase(t *testing.T) {
	t.Run("create new database", func(t *testing.T) {
		tmpDir := filepath.Join(t.TempDir(), "test_db")
		db, err := NewDatabase(tmpDir)
		require.NoError(t, err)
		require.NotNil(t, db)
		defer db.Close()

		// Verify components are initialized
		assert.NotNil(t, db.ConversationRepository())
		assert.NotNil(t, db.backend)
		assert.NotNil(t, db.logger)
	})

	t.Run("in memory", func(t *testing.T) {
		db, err := NewDatabase("", WithInMemory(), WithDatabaseLogger(nil))
		require.NoError(t, err)
		defer db.Close()
		assert.NotNil(t, db.logger)
	})

	t.Run("error with invalid path", func(t *testing.T) {
		// Try to create a database at a file path instead of directory
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		err := os.WriteFile(tmpFile, []byte("test"), 0644)
		require.NoError(t, err)

		db, err := NewDatabase(tmpFile)
		assert.Error(t, err)
		assert.Nil(t, db)
	})
}

func TestDatabase_Close(t *testing.T) {
	tmpDir := t.TempDir()
	db, err := NewDatabase(tmpDir)
	require.NoError(t, err)
	require.NotNil(t, db)

	// Close the database
	err = db.Close()
	assert.NoError(t, err)
}

func TestDatabase_ImportThenSearch(t *testing.T) {
	db, err := NewDatabase("", WithInMemory())
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()

	imp, err := db.NewImporter()
	require.NoError(t, err)
	defer imp.Release()

	report, err := imp.ImportFile(ctx, filepath.Join("importer", "testdata", "transcript.json"))
	require.NoError(t, err)
	assert.Equal(t, 3, report.Conversations)

	engine, err := db.NewEngine()
	require.NoError(t, err)

	results := engine.SearchMessages(ctx, "paris", 10)
	require.Len(t, results, 2)
	assert.Equal(t, "Paris has great museums", results[0].Snippet)

	conversations := engine.SearchConversations(ctx, "paris", 10)
	require.Len(t, conversations, 1)
	assert.Equal(t, "Trip Planning", conversations[0].Title)

	assert.Equal(t, []string{"process", "project"}, engine.GetSearchSuggestions(ctx, "pr", 10))

	stats := engine.GetSearchStats(ctx)
	assert.Equal(t, 5, stats.TotalIndexedMessages)
}
