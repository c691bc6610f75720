package attachment

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocalStore_RoundTrip(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	assert.NoError(t, err)
	ctx := context.Background()

	content := "attachment body"
	key, err := store.Put(ctx, strings.NewReader(content), int64(len(content)), "plan.pdf", "application/pdf")
	assert.NoError(t, err)
	assert.True(t, strings.HasSuffix(key, ".pdf"))

	exists, err := store.Exists(ctx, key)
	assert.NoError(t, err)
	assert.True(t, exists)

	rc, err := store.Open(ctx, key)
	assert.NoError(t, err)
	defer rc.Close()
	raw, err := io.ReadAll(rc)
	assert.NoError(t, err)
	assert.Equal(t, content, string(raw))
}

func TestLocalStore_UniqueKeys(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	assert.NoError(t, err)
	ctx := context.Background()

	first, err := store.Put(ctx, strings.NewReader("a"), 1, "report.docx", "application/msword")
	assert.NoError(t, err)
	second, err := store.Put(ctx, strings.NewReader("b"), 1, "report.docx", "application/msword")
	assert.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestLocalStore_DeleteIdempotent(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	assert.NoError(t, err)
	ctx := context.Background()

	key, err := store.Put(ctx, strings.NewReader("x"), 1, "note.txt", "text/plain")
	assert.NoError(t, err)

	assert.NoError(t, store.Delete(ctx, key))
	// deleting a missing blob is not an error
	assert.NoError(t, store.Delete(ctx, key))

	exists, err := store.Exists(ctx, key)
	assert.NoError(t, err)
	assert.False(t, exists)
}
