package pairs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dataops-tools/escopy/pairs"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		spec    string
		want    []pairs.IndexMapping
		wantErr string
	}{
		{
			name: "explicit pairs",
			spec: "logs-2024:logs-2024-copy,metrics:metrics-new",
			want: []pairs.IndexMapping{
				{Source: "logs-2024", Target: "logs-2024-copy"},
				{Source: "metrics", Target: "metrics-new"},
			},
		},
		{
			name: "bare name is shorthand for same target",
			spec: "apim_event_faulty",
			want: []pairs.IndexMapping{
				{Source: "apim_event_faulty", Target: "apim_event_faulty"},
			},
		},
		{
			name: "mixed with whitespace",
			spec: " a : b , c ",
			want: []pairs.IndexMapping{
				{Source: "a", Target: "b"},
				{Source: "c", Target: "c"},
			},
		},
		{
			name: "repeated source keeps position, takes last target",
			spec: "a:x,b:y,a:z",
			want: []pairs.IndexMapping{
				{Source: "a", Target: "z"},
				{Source: "b", Target: "y"},
			},
		},
		{
			name: "trailing comma ignored",
			spec: "a:b,",
			want: []pairs.IndexMapping{{Source: "a", Target: "b"}},
		},
		{
			name:    "empty spec",
			spec:    "   ",
			wantErr: "no index mappings specified",
		},
		{
			name:    "missing target",
			spec:    "a:",
			wantErr: "invalid index mapping entry",
		},
		{
			name:    "missing source",
			spec:    ":b",
			wantErr: "invalid index mapping entry",
		},
		{
			name:    "only separators",
			spec:    ",,",
			wantErr: "no valid index mappings found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := pairs.Parse(tt.spec)

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
