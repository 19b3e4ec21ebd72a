package escopy

import (
	"fmt"

	"github.com/dataops-tools/escopy/errors"
)

// remoteError is implemented by errors that carry the remote response body.
type remoteError interface {
	RemoteBody() string
}

// RemoteDetail extracts the remote response body carried by err, if any.
func RemoteDetail(err error) string {
	var re remoteError
	if errors.As(err, &re) {
		return re.RemoteBody()
	}

	return ""
}

// SchemaFetchError indicates the source settings or mappings could not be read.
type SchemaFetchError struct {
	Index string
	What  string // "settings" or "mappings"
	Body  string
	cause error
}

func (e *SchemaFetchError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("fetch %s for index %q: %s", e.What, e.Index, e.cause.Error())
	}

	return fmt.Sprintf("fetch %s for index %q: %s", e.What, e.Index, e.Body)
}

func (e *SchemaFetchError) Unwrap() error { return e.cause }

func (e *SchemaFetchError) RemoteBody() string { return e.Body }

// SchemaCreateError indicates the destination index could not be created.
// The destination is left absent: deletion always precedes creation.
type SchemaCreateError struct {
	Index string
	Body  string
	cause error
}

func (e *SchemaCreateError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("create index %q: %s", e.Index, e.cause.Error())
	}

	return fmt.Sprintf("create index %q: %s", e.Index, e.Body)
}

func (e *SchemaCreateError) Unwrap() error { return e.cause }

func (e *SchemaCreateError) RemoteBody() string { return e.Body }

// CursorOpenError indicates the scroll session could not be opened.
type CursorOpenError struct {
	Index string
	Body  string
	cause error
}

func (e *CursorOpenError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("open scroll cursor for index %q: %s", e.Index, e.cause.Error())
	}

	return fmt.Sprintf("open scroll cursor for index %q: %s", e.Index, e.Body)
}

func (e *CursorOpenError) Unwrap() error { return e.cause }

func (e *CursorOpenError) RemoteBody() string { return e.Body }

// CursorFetchError indicates a scroll page could not be fetched.
type CursorFetchError struct {
	Index string
	Body  string
	cause error
}

func (e *CursorFetchError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("fetch scroll page for index %q: %s", e.Index, e.cause.Error())
	}

	return fmt.Sprintf("fetch scroll page for index %q: %s", e.Index, e.Body)
}

func (e *CursorFetchError) Unwrap() error { return e.cause }

func (e *CursorFetchError) RemoteBody() string { return e.Body }

// BulkRequestError indicates a whole bulk request failed (transport error or
// non-2xx response). Partial per-document failures are not an error; they are
// reported through bulkOutcome.
type BulkRequestError struct {
	Index string
	Body  string
	cause error
}

func (e *BulkRequestError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("bulk write to index %q: %s", e.Index, e.cause.Error())
	}

	return fmt.Sprintf("bulk write to index %q: %s", e.Index, e.Body)
}

func (e *BulkRequestError) Unwrap() error { return e.cause }

func (e *BulkRequestError) RemoteBody() string { return e.Body }
