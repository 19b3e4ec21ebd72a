package escopy

import (
	"bytes"
	"context"
	"time"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.elastic.co/fastjson"

	"github.com/dataops-tools/escopy/log"
	"github.com/dataops-tools/escopy/metrics"
)

// bulkOutcome reports a single bulk flush: how many actions were sent and how
// many of them the destination rejected.
type bulkOutcome struct {
	attempted int64
	failed    int64
}

type bulkResponse struct {
	Errors bool `json:"errors"`
	Items  []map[string]struct {
		Status int `json:"status"`
		Error  struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error"`
	} `json:"items"`
}

// bulkLoader writes document pages into the destination index. The payload
// buffer is reused across flushes.
type bulkLoader struct {
	tr    esapi.Transport
	index string

	buf bytes.Buffer
}

func newBulkLoader(tr esapi.Transport, index string) *bulkLoader {
	return &bulkLoader{tr: tr, index: index}
}

// writeAction appends one index action to the payload: the action metadata
// line followed by the raw document source.
func (l *bulkLoader) writeAction(doc hit) {
	var w fastjson.Writer

	w.RawString(`{"index":{"_index":`)
	w.String(l.index)
	w.RawString(`,"_id":`)
	w.String(doc.ID)
	w.RawString(`}}`)

	l.buf.Write(w.Bytes())
	l.buf.WriteByte('\n')
	l.buf.Write(doc.Source)
	l.buf.WriteByte('\n')
}

// Flush sends one page of documents as a single bulk request. Documents the
// destination rejects are counted and logged; only transport-level and
// request-level failures are returned as errors.
func (l *bulkLoader) Flush(ctx context.Context, page []hit) (bulkOutcome, error) {
	if len(page) == 0 {
		return bulkOutcome{}, nil
	}

	l.buf.Reset()

	for _, doc := range page {
		l.writeAction(doc)
	}

	started := time.Now()

	res, err := esapi.BulkRequest{Body: bytes.NewReader(l.buf.Bytes())}.Do(ctx, l.tr)
	if err != nil {
		return bulkOutcome{}, &BulkRequestError{Index: l.index, cause: err}
	}
	defer res.Body.Close()

	if res.IsError() {
		return bulkOutcome{}, &BulkRequestError{Index: l.index, Body: res.String()}
	}

	var br bulkResponse

	err = jsonDecode.NewDecoder(res.Body).Decode(&br)
	if err != nil {
		return bulkOutcome{}, &BulkRequestError{Index: l.index, cause: err}
	}

	metrics.ObserveBulkFlushDuration(time.Since(started))

	outcome := bulkOutcome{attempted: int64(len(page))}
	if !br.Errors {
		return outcome, nil
	}

	lg := log.Ctx(ctx)

	for _, item := range br.Items {
		for _, detail := range item {
			if detail.Status < 200 || detail.Status >= 300 {
				outcome.failed++

				lg.Warnf("Document rejected by index %q: [%d] %s: %s",
					l.index, detail.Status, detail.Error.Type, detail.Error.Reason)
			}
		}
	}

	return outcome, nil
}
