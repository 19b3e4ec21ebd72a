package escopy

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	jsoniter "github.com/json-iterator/go"
	"go.elastic.co/fastjson"

	"github.com/dataops-tools/escopy/config"
	"github.com/dataops-tools/escopy/log"
)

//nolint:gochecknoglobals
var jsonDecode = jsoniter.ConfigCompatibleWithStandardLibrary

// indexSettings is the computed structural configuration applied to the
// destination index. All values are kept as strings, the way Elasticsearch
// reports them in the settings API.
type indexSettings struct {
	Shards   string
	Replicas string
	// FieldLimit is the index.mapping.total_fields.limit value.
	// Empty omits the setting so the destination falls back to its own default.
	FieldLimit string
}

// sourceIndexSettings mirrors the relevant subset of a GET _settings response
// for a single index.
type sourceIndexSettings struct {
	Index struct {
		NumberOfShards   string `json:"number_of_shards"`
		NumberOfReplicas string `json:"number_of_replicas"`
		Mapping          struct {
			TotalFields struct {
				Limit string `json:"limit"`
			} `json:"total_fields"`
		} `json:"mapping"`
	} `json:"index"`
}

// sourceSchema holds everything read from the source index. The mapping schema
// is an opaque blob copied verbatim to the destination.
type sourceSchema struct {
	settings sourceIndexSettings
	mappings json.RawMessage
}

func fetchSourceSchema(
	ctx context.Context,
	tr esapi.Transport,
	index string,
) (*sourceSchema, error) {
	schema := &sourceSchema{}

	res, err := esapi.IndicesGetSettingsRequest{Index: []string{index}}.Do(ctx, tr)
	if err != nil {
		return nil, &SchemaFetchError{Index: index, What: "settings", cause: err}
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, &SchemaFetchError{Index: index, What: "settings", Body: res.String()}
	}

	var settingsByIndex map[string]struct {
		Settings sourceIndexSettings `json:"settings"`
	}

	err = jsonDecode.NewDecoder(res.Body).Decode(&settingsByIndex)
	if err != nil {
		return nil, &SchemaFetchError{Index: index, What: "settings", cause: err}
	}

	entry, ok := settingsByIndex[index]
	if !ok {
		return nil, &SchemaFetchError{
			Index: index, What: "settings",
			Body: "index key absent from settings response",
		}
	}

	schema.settings = entry.Settings

	res, err = esapi.IndicesGetMappingRequest{Index: []string{index}}.Do(ctx, tr)
	if err != nil {
		return nil, &SchemaFetchError{Index: index, What: "mappings", cause: err}
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, &SchemaFetchError{Index: index, What: "mappings", Body: res.String()}
	}

	var mappingsByIndex map[string]struct {
		Mappings json.RawMessage `json:"mappings"`
	}

	err = jsonDecode.NewDecoder(res.Body).Decode(&mappingsByIndex)
	if err != nil {
		return nil, &SchemaFetchError{Index: index, What: "mappings", cause: err}
	}

	mapping, ok := mappingsByIndex[index]
	if !ok {
		return nil, &SchemaFetchError{
			Index: index, What: "mappings",
			Body: "index key absent from mappings response",
		}
	}

	schema.mappings = mapping.Mappings

	return schema, nil
}

// computeSettings derives the destination settings from the source settings
// and the total-fields-limit policy.
func computeSettings(fieldLimitPolicy int, src sourceIndexSettings) indexSettings {
	settings := indexSettings{
		Shards:   src.Index.NumberOfShards,
		Replicas: src.Index.NumberOfReplicas,
	}

	if settings.Shards == "" {
		settings.Shards = "1"
	}

	if settings.Replicas == "" {
		settings.Replicas = "1"
	}

	switch {
	case fieldLimitPolicy == config.FieldLimitFromSource:
		settings.FieldLimit = src.Index.Mapping.TotalFields.Limit
	case fieldLimitPolicy > 0:
		settings.FieldLimit = strconv.Itoa(fieldLimitPolicy)
	}

	return settings
}

// buildCreateBody serializes the index creation request: computed settings
// plus the source mapping schema copied verbatim.
func buildCreateBody(settings indexSettings, mappings json.RawMessage) []byte {
	var w fastjson.Writer

	w.RawString(`{"settings":{"index":{"number_of_shards":`)
	w.String(settings.Shards)
	w.RawString(`,"number_of_replicas":`)
	w.String(settings.Replicas)

	if settings.FieldLimit != "" {
		w.RawString(`,"mapping":{"total_fields":{"limit":`)
		w.String(settings.FieldLimit)
		w.RawString(`}}`)
	}

	w.RawString(`}}`)

	if len(mappings) != 0 {
		w.RawString(`,"mappings":`)
		w.RawString(string(mappings))
	}

	w.RawByte('}')

	return w.Bytes()
}

// transferSchema replaces the destination index with one carrying the computed
// settings and the source's mappings. Deletion failures are swallowed; only
// the create step can fail. A failed create leaves no index behind.
func (c *Copier) transferSchema(
	ctx context.Context,
	sourceIndex, targetIndex string,
) (indexSettings, error) {
	lg := log.Ctx(ctx)

	schema, err := fetchSourceSchema(ctx, c.source, sourceIndex)
	if err != nil {
		return indexSettings{}, err
	}

	lg.Debugf("Retrieved settings and mappings for index %q", sourceIndex)

	settings := computeSettings(c.options.TotalFieldsLimit, schema.settings)

	res, err := esapi.IndicesDeleteRequest{
		Index:             []string{targetIndex},
		IgnoreUnavailable: esapi.BoolPtr(true),
	}.Do(ctx, c.target)

	switch {
	case err != nil:
		lg.Debugf("Delete index %q before create: %s", targetIndex, err)
	case res.IsError():
		lg.Debugf("Delete index %q before create: %s", targetIndex, res.String())
		res.Body.Close()
	default:
		lg.Infof("Deleted existing index %q", targetIndex)
		res.Body.Close()
	}

	res, err = esapi.IndicesCreateRequest{
		Index: targetIndex,
		Body:  bytes.NewReader(buildCreateBody(settings, schema.mappings)),
	}.Do(ctx, c.target)
	if err != nil {
		return indexSettings{}, &SchemaCreateError{Index: targetIndex, cause: err}
	}
	defer res.Body.Close()

	if res.IsError() {
		return indexSettings{}, &SchemaCreateError{Index: targetIndex, Body: res.String()}
	}

	lg.Infof("Created index %q with settings and mappings", targetIndex)

	return settings, nil
}
