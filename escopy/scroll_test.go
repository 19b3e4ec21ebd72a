package escopy

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeDocs(n int) []hit {
	docs := make([]hit, n)
	for i := range docs {
		docs[i] = hit{
			ID:     fmt.Sprintf("doc-%d", i),
			Source: json.RawMessage(fmt.Sprintf(`{"n":%d}`, i)),
		}
	}

	return docs
}

func TestScrollCursor(t *testing.T) {
	t.Parallel()

	t.Run("pages through all documents", func(t *testing.T) {
		t.Parallel()

		source := newFakeSource("src", makeDocs(25))

		cursor, err := openCursor(t.Context(), source, "src", 10, time.Minute)
		require.NoError(t, err)

		var read []hit

		for {
			page, err := cursor.Next(t.Context())
			require.NoError(t, err)

			if len(page) == 0 {
				break
			}

			read = append(read, page...)
		}

		require.Len(t, read, 25)
		assert.Equal(t, "doc-0", read[0].ID)
		assert.Equal(t, "doc-24", read[24].ID)

		// The fake rejects stale continuation tokens, so a full read also
		// proves the cursor adopts the token returned with each page.
		assert.Equal(t, 1, source.searchCalls)
		assert.Equal(t, 3, source.scrollCalls)
	})

	t.Run("empty index", func(t *testing.T) {
		t.Parallel()

		source := newFakeSource("src", nil)

		cursor, err := openCursor(t.Context(), source, "src", 10, time.Minute)
		require.NoError(t, err)

		page, err := cursor.Next(t.Context())
		require.NoError(t, err)
		assert.Empty(t, page)
		assert.Zero(t, source.scrollCalls)
	})

	t.Run("open failure", func(t *testing.T) {
		t.Parallel()

		source := newFakeSource("src", nil)
		source.searchStatus = 500

		_, err := openCursor(t.Context(), source, "src", 10, time.Minute)

		var openErr *CursorOpenError
		require.ErrorAs(t, err, &openErr)
		assert.Equal(t, "src", openErr.Index)
		assert.NotEmpty(t, RemoteDetail(err))
	})

	t.Run("expired scroll context", func(t *testing.T) {
		t.Parallel()

		source := newFakeSource("src", makeDocs(25))
		source.scrollStatus = 404
		source.failScrollAt = 2

		cursor, err := openCursor(t.Context(), source, "src", 10, time.Minute)
		require.NoError(t, err)

		page, err := cursor.Next(t.Context())
		require.NoError(t, err)
		require.Len(t, page, 10)

		_, err = cursor.Next(t.Context())

		var fetchErr *CursorFetchError
		require.ErrorAs(t, err, &fetchErr)
		assert.Equal(t, "src", fetchErr.Index)
	})

	t.Run("close releases the latest token once", func(t *testing.T) {
		t.Parallel()

		source := newFakeSource("src", makeDocs(25))

		cursor, err := openCursor(t.Context(), source, "src", 10, time.Minute)
		require.NoError(t, err)

		_, err = cursor.Next(t.Context())
		require.NoError(t, err)

		cursor.Close(t.Context())
		cursor.Close(t.Context())

		require.Len(t, source.clearedIDs, 1)
		assert.Equal(t, "cursor-2", source.clearedIDs[0])
	})
}
