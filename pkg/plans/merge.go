package plans

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-json"
)

// MergeMode selects how plan JSON files are combined.
type MergeMode string

const (
	// MergeList collects every file's content into one array.
	MergeList MergeMode = "list"

	// MergeObject merges top-level objects key by key; later files win.
	// Array files are appended under MergedListKey.
	MergeObject MergeMode = "object"
)

// MergedListKey holds array contents in object mode.
const MergedListKey = "merged_list"

// SkippedFile is a file left out of a merge.
type SkippedFile struct {
	Path string
	Err  error
}

// MergeResult summarizes a merge.
type MergeResult struct {
	// Merged is the combined document.
	Merged any

	// Files is the number of files merged.
	Files int

	// Skipped lists files that were not valid JSON.
	Skipped []SkippedFile
}

// ParseMergeMode validates a mode name. An empty name selects MergeList.
func ParseMergeMode(s string) (MergeMode, error) {
	switch MergeMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", MergeList:
		return MergeList, nil
	case MergeObject:
		return MergeObject, nil
	default:
		return "", fmt.Errorf("unknown merge mode %q (expected list or object)", s)
	}
}

// MergeDirectory merges the .json files directly inside dir, in name order.
// Invalid files are skipped with a warning.
func MergeDirectory(dir string, mode MergeMode, logger *slog.Logger) (*MergeResult, error) {
	if logger == nil {
		logger = slog.Default()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %q: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".json") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	result := &MergeResult{}
	list := make([]any, 0, len(names))
	object := make(map[string]any)

	for _, name := range names {
		path := filepath.Join(dir, name)

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %q: %w", path, err)
		}

		var v any
		if err := json.Unmarshal(data, &v); err != nil {
			logger.Warn("skipping invalid JSON file", "file", name, "error", err)
			result.Skipped = append(result.Skipped, SkippedFile{Path: path, Err: err})
			continue
		}
		result.Files++

		switch mode {
		case MergeObject:
			switch t := v.(type) {
			case map[string]any:
				for k, val := range t {
					object[k] = val
				}
			case []any:
				existing, _ := object[MergedListKey].([]any)
				object[MergedListKey] = append(existing, t...)
			}
		default:
			list = append(list, v)
		}
	}

	if mode == MergeObject {
		result.Merged = object
	} else {
		result.Merged = list
	}
	return result, nil
}

// WriteMerged writes v as two-space indented JSON.
func WriteMerged(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode merged plans: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write %q: %w", path, err)
	}
	return nil
}
