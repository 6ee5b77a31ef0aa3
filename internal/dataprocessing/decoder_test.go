package dataprocessing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeLine(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    map[string]any
		wantErr error
	}{
		{
			name: "object",
			line: `{"api_method":"get","latency_ms":5}`,
			want: map[string]any{"api_method": "get", "latency_ms": 5.0},
		},
		{
			name: "surrounding whitespace and CR",
			line: "  {\"a\":\"b\"}\r",
			want: map[string]any{"a": "b"},
		},
		{name: "empty line", line: "", wantErr: ErrEmptyLine},
		{name: "blank line", line: "   \t", wantErr: ErrEmptyLine},
		{name: "null", line: "null", wantErr: ErrNotObject},
		{name: "not json", line: "not-json"},
		{name: "array", line: `[1,2,3]`},
		{name: "truncated", line: `{"api_method":"get"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := DecodeLine([]byte(tt.line))
			if tt.want != nil {
				require.NoError(t, err)
				assert.Equal(t, tt.want, map[string]any(rec))
				return
			}

			require.Error(t, err)
			var decErr *DecodeError
			assert.True(t, errors.As(err, &decErr), "want *DecodeError, got %T", err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
