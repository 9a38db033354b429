package vocab

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// tableSchema validates vocabulary files before they replace the active
// matcher. A file that fails validation never becomes live.
const tableSchema = `{
	"type": "object",
	"required": ["classes"],
	"properties": {
		"classes": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["name", "patterns"],
				"properties": {
					"name": {"type": "string", "minLength": 1},
					"patterns": {
						"type": "array",
						"minItems": 1,
						"items": {"type": "string", "minLength": 1}
					},
					"weight": {"type": "number", "minimum": 0}
				}
			}
		}
	}
}`

// LoadFile reads, validates and compiles a YAML vocabulary table.
func LoadFile(path string) (*RegexMatcher, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read vocabulary file: %w", err)
	}

	// Unmarshal into a generic document first so it can be schema-checked
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse vocabulary yaml: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(tableSchema),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return nil, fmt.Errorf("vocabulary schema validation failed: %w", err)
	}
	if !result.Valid() {
		var problems []string
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}
		return nil, fmt.Errorf("invalid vocabulary table: %s", strings.Join(problems, "; "))
	}

	var table Table
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to decode vocabulary table: %w", err)
	}

	return Compile(table)
}

// Watcher keeps a matcher in sync with a vocabulary file on disk.
// Reload failures keep the previous matcher live.
type Watcher struct {
	path    string
	logger  *slog.Logger
	watcher *fsnotify.Watcher

	mu      sync.RWMutex
	current Matcher

	done chan struct{}
}

// NewWatcher loads path and starts watching it for changes. The initial
// load must succeed; later reload failures are logged and ignored.
func NewWatcher(path string, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	matcher, err := LoadFile(path)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	// Watch the directory: editors often replace the file atomically,
	// which drops a watch set on the file itself.
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch vocabulary directory: %w", err)
	}

	w := &Watcher{
		path:    path,
		logger:  logger,
		watcher: fsw,
		current: matcher,
		done:    make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// Matcher returns the currently live matcher.
func (w *Watcher) Matcher() Matcher {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// Extract implements Matcher by delegating to the live table.
func (w *Watcher) Extract(text string) []Match {
	return w.Matcher().Extract(text)
}

// Close stops watching. The last loaded matcher stays usable.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}

func (w *Watcher) loop() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			matcher, err := LoadFile(w.path)
			if err != nil {
				w.logger.Warn("vocabulary reload failed, keeping previous table", "path", w.path, "error", err)
				continue
			}
			w.mu.Lock()
			w.current = matcher
			w.mu.Unlock()
			w.logger.Info("vocabulary table reloaded", "path", w.path)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("vocabulary watcher error", "error", err)
		}
	}
}
