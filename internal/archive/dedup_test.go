package archive

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNameSet_Unique(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{
			name:  "no collisions",
			input: []string{"a.txt", "b.txt"},
			want:  []string{"a.txt", "b.txt"},
		},
		{
			name:  "simple collision",
			input: []string{"a.txt", "a.txt"},
			want:  []string{"a.txt", "a_1.txt"},
		},
		{
			name:  "triple collision",
			input: []string{"a.txt", "a.txt", "a.txt"},
			want:  []string{"a.txt", "a_1.txt", "a_2.txt"},
		},
		{
			name:  "collision with existing probe target",
			input: []string{"a.txt", "a_1.txt", "a.txt"},
			want:  []string{"a.txt", "a_1.txt", "a_2.txt"},
		},
		{
			name:  "no extension",
			input: []string{"Makefile", "Makefile"},
			want:  []string{"Makefile", "Makefile_1"},
		},
		{
			name:  "multiple dots split at last",
			input: []string{"report.tar.gz", "report.tar.gz"},
			want:  []string{"report.tar.gz", "report.tar_1.gz"},
		},
		{
			name:  "leading dot stays in the stem",
			input: []string{".env", ".env"},
			want:  []string{".env", ".env_1"},
		},
		{
			name:  "leading dot with extension",
			input: []string{".env.local", ".env.local"},
			want:  []string{".env.local", ".env_1.local"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := NewNameSet()
			got := make([]string, 0, len(tt.input))
			for _, n := range tt.input {
				got = append(got, set.Unique(n))
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNameSet_AllDistinct(t *testing.T) {
	set := NewNameSet()
	seen := make(map[string]struct{})

	// Arbitrary repeats must still yield pairwise distinct names, with
	// the first occurrence of each original name left unchanged.
	firsts := make(map[string]string)
	for i := 0; i < 200; i++ {
		original := fmt.Sprintf("file%d.txt", i%7)
		out := set.Unique(original)

		_, dup := seen[out]
		assert.False(t, dup, "duplicate output %q", out)
		seen[out] = struct{}{}

		if _, ok := firsts[original]; !ok {
			firsts[original] = out
		}
	}
	for original, first := range firsts {
		assert.Equal(t, original, first)
	}
}
