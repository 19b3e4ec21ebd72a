package escopy

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
)

// fakeSource emulates the source cluster: settings and mapping reads plus a
// scroll session over a fixed document set. The continuation token rotates on
// every page so callers that hold on to a stale token are caught.
type fakeSource struct {
	mu sync.Mutex

	index    string
	docs     []hit
	shards   string
	replicas string
	limit    string
	mappings string

	settingsStatus int
	mappingsStatus int
	searchStatus   int
	scrollStatus   int
	failScrollAt   int // fail the Nth scroll continuation, 1-based

	searchCalls  int
	scrollCalls  int
	clearedIDs   []string
	offset       int
	pageSize     int
	currentToken string
	tokenSeq     int
}

func newFakeSource(index string, docs []hit) *fakeSource {
	return &fakeSource{
		index:    index,
		docs:     docs,
		shards:   "3",
		replicas: "2",
		limit:    "2000",
		mappings: `{"properties":{"name":{"type":"keyword"}}}`,
	}
}

func (s *fakeSource) Perform(req *http.Request) (*http.Response, error) {
	rec := httptest.NewRecorder()
	s.handle(rec, req)

	return rec.Result(), nil
}

func (s *fakeSource) nextToken() string {
	s.tokenSeq++
	s.currentToken = "cursor-" + strconv.Itoa(s.tokenSeq)

	return s.currentToken
}

func (s *fakeSource) page() []hit {
	end := min(s.offset+s.pageSize, len(s.docs))
	page := s.docs[s.offset:end]
	s.offset = end

	return page
}

func writePage(w http.ResponseWriter, token string, page []hit) {
	resp := map[string]any{
		"_scroll_id": token,
		"hits":       map[string]any{"hits": page},
	}

	json.NewEncoder(w).Encode(resp) //nolint:errcheck
}

func (s *fakeSource) handle(w http.ResponseWriter, req *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case req.Method == http.MethodGet && req.URL.Path == "/"+s.index+"/_settings":
		if s.settingsStatus != 0 {
			http.Error(w, `{"error":{"type":"index_not_found_exception"}}`, s.settingsStatus)

			return
		}

		fmt.Fprintf(w, `{%q:{"settings":{"index":{`+
			`"number_of_shards":%q,"number_of_replicas":%q,`+
			`"mapping":{"total_fields":{"limit":%q}}}}}}`,
			s.index, s.shards, s.replicas, s.limit)

	case req.Method == http.MethodGet && req.URL.Path == "/"+s.index+"/_mapping":
		if s.mappingsStatus != 0 {
			http.Error(w, `{"error":{"type":"index_not_found_exception"}}`, s.mappingsStatus)

			return
		}

		fmt.Fprintf(w, `{%q:{"mappings":%s}}`, s.index, s.mappings)

	case req.Method == http.MethodPost && req.URL.Path == "/"+s.index+"/_search":
		s.searchCalls++

		if s.searchStatus != 0 {
			http.Error(w, `{"error":{"type":"search_phase_execution_exception"}}`, s.searchStatus)

			return
		}

		if req.URL.Query().Get("scroll") == "" {
			http.Error(w, "missing scroll parameter", http.StatusBadRequest)

			return
		}

		var body struct {
			Size int `json:"size"`
		}

		if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body.Size <= 0 {
			http.Error(w, "bad search body", http.StatusBadRequest)

			return
		}

		s.pageSize = body.Size
		s.offset = 0

		writePage(w, s.nextToken(), s.page())

	case req.URL.Path == "/_search/scroll" && req.Method != http.MethodDelete:
		s.scrollCalls++

		if s.scrollStatus != 0 && (s.failScrollAt == 0 || s.scrollCalls == s.failScrollAt) {
			http.Error(w, `{"error":{"type":"search_context_missing_exception"}}`, s.scrollStatus)

			return
		}

		if got := req.URL.Query().Get("scroll_id"); got != s.currentToken {
			http.Error(w, "stale scroll_id "+got, http.StatusNotFound)

			return
		}

		writePage(w, s.nextToken(), s.page())

	case req.Method == http.MethodDelete && strings.HasPrefix(req.URL.Path, "/_search/scroll"):
		id := strings.TrimPrefix(strings.TrimPrefix(req.URL.Path, "/_search/scroll"), "/")
		if id == "" {
			id = req.URL.Query().Get("scroll_id")
		}

		if id == "" && req.Body != nil {
			var body struct {
				ScrollID []string `json:"scroll_id"`
			}

			if err := json.NewDecoder(req.Body).Decode(&body); err == nil &&
				len(body.ScrollID) > 0 {
				id = body.ScrollID[0]
			}
		}

		s.clearedIDs = append(s.clearedIDs, id)
		fmt.Fprint(w, `{"succeeded":true,"num_freed":1}`)

	default:
		http.Error(w, "unexpected request "+req.Method+" "+req.URL.Path, http.StatusNotFound)
	}
}

// fakeTarget emulates the destination cluster: index delete and create plus
// the bulk endpoint. Documents named in rejectIDs are refused per item.
type fakeTarget struct {
	mu sync.Mutex

	index     string
	rejectIDs map[string]bool

	createStatus int
	bulkStatus   int

	deleteCalls int
	createBody  []byte
	bulkBodies  [][]byte
	stored      map[string]json.RawMessage
}

func newFakeTarget(index string) *fakeTarget {
	return &fakeTarget{index: index, stored: make(map[string]json.RawMessage)}
}

func (t *fakeTarget) Perform(req *http.Request) (*http.Response, error) {
	rec := httptest.NewRecorder()
	t.handle(rec, req)

	return rec.Result(), nil
}

func (t *fakeTarget) handle(w http.ResponseWriter, req *http.Request) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch {
	case req.Method == http.MethodDelete && req.URL.Path == "/"+t.index:
		t.deleteCalls++
		fmt.Fprint(w, `{"acknowledged":true}`)

	case req.Method == http.MethodPut && req.URL.Path == "/"+t.index:
		body, _ := io.ReadAll(req.Body)
		t.createBody = body

		if t.createStatus != 0 {
			http.Error(w, `{"error":{"type":"validation_exception"}}`, t.createStatus)

			return
		}

		fmt.Fprintf(w, `{"acknowledged":true,"index":%q}`, t.index)

	case req.Method == http.MethodPost && req.URL.Path == "/_bulk":
		if t.bulkStatus != 0 {
			http.Error(w, `{"error":{"type":"circuit_breaking_exception"}}`, t.bulkStatus)

			return
		}

		body, _ := io.ReadAll(req.Body)
		t.bulkBodies = append(t.bulkBodies, body)
		t.respondBulk(w, body)

	default:
		http.Error(w, "unexpected request "+req.Method+" "+req.URL.Path, http.StatusNotFound)
	}
}

// respondBulk parses the NDJSON payload and builds a per-item response,
// rejecting the documents listed in rejectIDs.
func (t *fakeTarget) respondBulk(w http.ResponseWriter, payload []byte) {
	type itemDetail struct {
		ID     string `json:"_id"`
		Status int    `json:"status"`
		Error  *struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error,omitempty"`
	}

	var (
		items     []map[string]itemDetail
		hasErrors bool
	)

	scanner := bufio.NewScanner(bytes.NewReader(payload))
	for scanner.Scan() {
		var action map[string]struct {
			Index string `json:"_index"`
			ID    string `json:"_id"`
		}

		if err := json.Unmarshal(scanner.Bytes(), &action); err != nil {
			continue
		}

		meta, ok := action["index"]
		if !ok || meta.Index != t.index {
			continue
		}

		if !scanner.Scan() {
			break
		}

		detail := itemDetail{ID: meta.ID, Status: http.StatusCreated}

		if t.rejectIDs[meta.ID] {
			hasErrors = true
			detail.Status = http.StatusBadRequest
			detail.Error = &struct {
				Type   string `json:"type"`
				Reason string `json:"reason"`
			}{
				Type:   "document_parsing_exception",
				Reason: "failed to parse document " + meta.ID,
			}
		} else {
			t.stored[meta.ID] = json.RawMessage(
				append([]byte(nil), scanner.Bytes()...))
		}

		items = append(items, map[string]itemDetail{"index": detail})
	}

	resp := map[string]any{"errors": hasErrors, "items": items}

	json.NewEncoder(w).Encode(resp) //nolint:errcheck
}
