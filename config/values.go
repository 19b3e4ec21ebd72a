package config

import "time"

const (
	// DefaultBatchSize is the number of documents fetched and bulk-indexed per page.
	DefaultBatchSize = 1000

	// DefaultScrollKeepAlive is the scroll cursor lease duration. The lease is
	// renewed on every page fetch; an unreleased cursor expires server-side after
	// this interval.
	DefaultScrollKeepAlive = 5 * time.Minute

	// FieldLimitFromSource is the TotalFieldsLimit sentinel that copies the
	// source index's total-fields limit verbatim.
	FieldLimitFromSource = -1

	// MaxBatchSize caps the scroll page size. Elasticsearch rejects scroll
	// sizes above index.max_result_window (10000 by default).
	MaxBatchSize = 10000

	// CloseTimeout bounds cursor release and shutdown work after the run
	// context is done.
	CloseTimeout = 10 * time.Second
)
