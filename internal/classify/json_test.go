package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONObjects(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "single object",
			input: `{"a":1}`,
			want:  []string{`{"a":1}`},
		},
		{
			name:  "object surrounded by prose",
			input: `Here you go: {"a":1} hope that helps!`,
			want:  []string{`{"a":1}`},
		},
		{
			name:  "multiple objects",
			input: `{"a":1} and {"b":2}`,
			want:  []string{`{"a":1}`, `{"b":2}`},
		},
		{
			name:  "nested objects count as one span",
			input: `{"a":{"b":2}}`,
			want:  []string{`{"a":{"b":2}}`},
		},
		{
			name:  "malformed span is discarded, valid one kept",
			input: `{"Date":"01-01-2024","Description":"Coffee","Amount":"5.00","Category":"Expenses"} garbage {bad json`,
			want:  []string{`{"Date":"01-01-2024","Description":"Coffee","Amount":"5.00","Category":"Expenses"}`},
		},
		{
			name:  "braces inside string literals do not affect nesting",
			input: `{"desc":"curly } brace"} {"b":2}`,
			want:  []string{`{"desc":"curly } brace"}`, `{"b":2}`},
		},
		{
			name:  "unbalanced closing brace ignored",
			input: `} {"a":1}`,
			want:  []string{`{"a":1}`},
		},
		{
			name:  "no objects",
			input: `nothing here`,
			want:  nil,
		},
		{
			name:  "balanced span with invalid json discarded",
			input: `{not json at all}`,
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractJSONObjects(tt.input)
			require.Len(t, got, len(tt.want))
			for i, want := range tt.want {
				assert.JSONEq(t, want, string(got[i]))
			}
		})
	}
}
