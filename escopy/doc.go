/*
Package escopy implements the replication pipeline that copies Elasticsearch
indices between clusters.

This package includes the following main components:

  - Copier: Drives the replication of an ordered list of index pairs and
    isolates per-index failures.

  - schema transfer: Reads source settings and mappings and recreates the
    destination index (delete-then-create, all-or-nothing).

  - scroll cursor: Pages through all documents of a source index using a
    time-leased server-side scroll session.

  - bulk loader: Writes one fetched page per bulk request into the destination
    index, preserving document identifiers.

  - RunStats: Collects per-index outcomes and renders the final run summary.
*/
package escopy
