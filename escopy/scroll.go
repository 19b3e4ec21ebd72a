package escopy

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/dataops-tools/escopy/log"
	"github.com/dataops-tools/escopy/metrics"
)

// hit is a single document returned by a search page. The source payload is
// kept opaque so the document body round-trips without re-serialization.
type hit struct {
	ID     string          `json:"_id"`
	Source json.RawMessage `json:"_source"`
}

type scrollResponse struct {
	ScrollID string `json:"_scroll_id"`
	Hits     struct {
		Hits []hit `json:"hits"`
	} `json:"hits"`
}

// scrollCursor pages through a source index via the scroll API. Opening the
// cursor fetches the first page; each Next call renews the server-side lease
// and replaces the continuation token with the latest one returned.
type scrollCursor struct {
	tr        esapi.Transport
	index     string
	keepAlive time.Duration

	scrollID string
	page     []hit
	closed   bool
}

func openCursor(
	ctx context.Context,
	tr esapi.Transport,
	index string,
	batchSize int,
	keepAlive time.Duration,
) (*scrollCursor, error) {
	body := strings.NewReader(`{"query":{"match_all":{}},"size":` +
		strconv.Itoa(batchSize) + `}`)

	started := time.Now()

	res, err := esapi.SearchRequest{
		Index:  []string{index},
		Scroll: keepAlive,
		Body:   body,
	}.Do(ctx, tr)
	if err != nil {
		return nil, &CursorOpenError{Index: index, cause: err}
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, &CursorOpenError{Index: index, Body: res.String()}
	}

	var sr scrollResponse

	err = jsonDecode.NewDecoder(res.Body).Decode(&sr)
	if err != nil {
		return nil, &CursorOpenError{Index: index, cause: err}
	}

	metrics.ObserveScrollFetchDuration(time.Since(started))

	return &scrollCursor{
		tr:        tr,
		index:     index,
		keepAlive: keepAlive,
		scrollID:  sr.ScrollID,
		page:      sr.Hits.Hits,
	}, nil
}

// Next returns the current page and advances the cursor. It returns an empty
// page when the index is exhausted.
func (c *scrollCursor) Next(ctx context.Context) ([]hit, error) {
	page := c.page
	if len(page) == 0 {
		return nil, nil
	}

	started := time.Now()

	res, err := esapi.ScrollRequest{
		ScrollID: c.scrollID,
		Scroll:   c.keepAlive,
	}.Do(ctx, c.tr)
	if err != nil {
		return nil, &CursorFetchError{Index: c.index, cause: err}
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, &CursorFetchError{Index: c.index, Body: res.String()}
	}

	var sr scrollResponse

	err = jsonDecode.NewDecoder(res.Body).Decode(&sr)
	if err != nil {
		return nil, &CursorFetchError{Index: c.index, cause: err}
	}

	metrics.ObserveScrollFetchDuration(time.Since(started))

	// The server may rotate the continuation token between pages. Always
	// keep the most recent one.
	if sr.ScrollID != "" {
		c.scrollID = sr.ScrollID
	}

	c.page = sr.Hits.Hits

	return page, nil
}

// Close releases the server-side scroll context. It is best effort: failures
// are logged, not returned, and repeated calls are no-ops.
func (c *scrollCursor) Close(ctx context.Context) {
	if c.closed {
		return
	}

	c.closed = true

	if c.scrollID == "" {
		return
	}

	res, err := esapi.ClearScrollRequest{ScrollID: []string{c.scrollID}}.Do(ctx, c.tr)
	if err != nil {
		log.Ctx(ctx).Warnf("Clear scroll for index %q: %s", c.index, err)

		return
	}
	defer res.Body.Close()

	if res.IsError() {
		log.Ctx(ctx).Warnf("Clear scroll for index %q: %s", c.index, res.String())
	}
}
