package vocab

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultExtract(t *testing.T) {
	m := Default()

	tests := []struct {
		name       string
		text       string
		wantTopics []string
	}{
		{
			name:       "storage and scalability vocabulary",
			text:       "We could use Redis for caching and PostgreSQL with sharding.",
			wantTopics: []string{"redis", "caching", "postgresql", "sharding"},
		},
		{
			name:       "complexity notation",
			text:       "The lookup is O(log n) with a binary search.",
			wantTopics: []string{"o(log n)", "binary search"},
		},
		{
			name:       "quantified metrics",
			text:       "Design for 10 million users at 5000 qps.",
			wantTopics: []string{"10 million users", "5000 qps"},
		},
		{
			name:       "no vocabulary hits",
			text:       "hello there, nice weather today",
			wantTopics: nil,
		},
		{
			name:       "empty text",
			text:       "",
			wantTopics: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches := m.Extract(tt.text)
			got := make(map[string]bool, len(matches))
			for _, match := range matches {
				got[match.Topic] = true
			}
			for _, want := range tt.wantTopics {
				if !got[want] {
					t.Errorf("Extract(%q) missing topic %q (got %v)", tt.text, want, matches)
				}
			}
			if len(tt.wantTopics) == 0 && len(matches) != 0 {
				t.Errorf("Extract(%q) = %v, want none", tt.text, matches)
			}
		})
	}
}

func TestExtractDeduplicatesPerCall(t *testing.T) {
	m := Default()
	matches := m.Extract("redis redis redis")
	if len(matches) != 1 {
		t.Fatalf("Extract() = %v, want one distinct topic", matches)
	}
	if matches[0].Topic != "redis" || matches[0].Class != "storage" {
		t.Errorf("match = %+v, want redis/storage", matches[0])
	}
}

func TestCompileRejectsBadPattern(t *testing.T) {
	_, err := Compile(Table{Classes: []Class{
		{Name: "broken", Patterns: []string{"("}},
	}})
	if err == nil {
		t.Fatal("Compile() accepted an invalid regex")
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("valid table", func(t *testing.T) {
		path := filepath.Join(dir, "vocab.yaml")
		content := `classes:
  - name: greetings
    weight: 2.0
    patterns:
      - '(?i)\bhello\b'
`
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}

		m, err := LoadFile(path)
		if err != nil {
			t.Fatalf("LoadFile() error = %v", err)
		}
		matches := m.Extract("Hello world")
		if len(matches) != 1 || matches[0].Topic != "hello" || matches[0].Weight != 2.0 {
			t.Errorf("Extract() = %v, want hello with weight 2.0", matches)
		}
	})

	t.Run("schema violation", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		if err := os.WriteFile(path, []byte("classes:\n  - name: x\n"), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadFile(path); err == nil {
			t.Fatal("LoadFile() accepted a table with no patterns")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadFile(filepath.Join(dir, "nope.yaml")); err == nil {
			t.Fatal("LoadFile() accepted a missing file")
		}
	})
}
