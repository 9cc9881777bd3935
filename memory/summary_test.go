package memory

import (
	"strings"
	"testing"

	"github.com/rickchristie/lessongraph"
	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	type input struct {
		records []lessongraph.MemoryRecord
		n       int
	}

	tests := []struct {
		name     string
		input    input
		expected string
	}{
		{
			name:     "no records",
			input:    input{n: 5},
			expected: NoHistory,
		},
		{
			name: "single record with review",
			input: input{
				records: []lessongraph.MemoryRecord{
					{Task: "Design a fractions lesson", Plan: "1. Warm up\n2. Explain", CriticReview: "0\nClear and complete."},
				},
				n: 5,
			},
			expected: "Last 1 task(s):\n1. Task: Design a fractions lesson\n   Plan: 1. Warm up\n   Review: Clear and complete.",
		},
		{
			name: "keeps newest n",
			input: input{
				records: []lessongraph.MemoryRecord{{Task: "a"}, {Task: "b"}, {Task: "c"}},
				n:       2,
			},
			expected: "Last 2 task(s):\n1. Task: b\n2. Task: c",
		},
		{
			name: "non-positive n keeps all",
			input: input{
				records: []lessongraph.MemoryRecord{{Task: "a"}, {Task: "b"}},
				n:       0,
			},
			expected: "Last 2 task(s):\n1. Task: a\n2. Task: b",
		},
		{
			name: "bare verdict review is omitted",
			input: input{
				records: []lessongraph.MemoryRecord{{Task: "a", CriticReview: "0"}},
				n:       1,
			},
			expected: "Last 1 task(s):\n1. Task: a",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Summarize(tc.input.records, tc.input.n))
		})
	}
}

func TestSummarize_ClipsLongFields(t *testing.T) {
	long := strings.Repeat("é", summaryFieldLimit+30)
	got := Summarize([]lessongraph.MemoryRecord{{Task: "\n\n" + long + "\nsecond line"}}, 1)

	assert.Equal(t, "Last 1 task(s):\n1. Task: "+strings.Repeat("é", summaryFieldLimit)+"...", got)
}
