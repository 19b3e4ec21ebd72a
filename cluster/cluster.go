// Package cluster builds authenticated Elasticsearch clients for the source and
// target endpoints.
package cluster

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	jsoniter "github.com/json-iterator/go"

	"github.com/dataops-tools/escopy/errors"
)

// RequestTimeout is the per-request HTTP timeout for cluster calls.
const RequestTimeout = 90 * time.Second

// Endpoint identifies one cluster with basic credentials.
type Endpoint struct {
	URL      string
	Username string
	Password string
}

// Connect builds a client for the endpoint. No connection is established until
// the first request; use Version to probe reachability.
//
// Transport-level retries are disabled: the tool has no retry semantics of its
// own, and silent retries would skew the per-page accounting.
func Connect(ep Endpoint) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:    []string{strings.TrimRight(ep.URL, "/")},
		Username:     ep.Username,
		Password:     ep.Password,
		DisableRetry: true,
		Transport: &http.Transport{
			ResponseHeaderTimeout: RequestTimeout,
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "new client")
	}

	return client, nil
}

// Info describes a connected cluster.
type Info struct {
	ClusterName string `json:"cluster_name"`
	Version     struct {
		Number string `json:"number"`
	} `json:"version"`
}

func (i *Info) String() string {
	return i.ClusterName + " [" + i.Version.Number + "]"
}

// Version probes the cluster root endpoint and returns its identity.
func Version(ctx context.Context, tr esapi.Transport) (*Info, error) {
	res, err := esapi.InfoRequest{}.Do(ctx, tr)
	if err != nil {
		return nil, errors.Wrap(err, "info request")
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, errors.Errorf("info request: %s", res.String())
	}

	var info Info

	err = jsoniter.NewDecoder(res.Body).Decode(&info)
	if err != nil {
		return nil, errors.Wrap(err, "decode info response")
	}

	return &info, nil
}
