package plans

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/Sanjai-Magilan/insurance-assistant/pkg/policydoc"
)

// LoaderConfig configures plan file discovery and limits.
type LoaderConfig struct {
	// Extensions are the plan file extensions, lower case with a leading dot.
	Extensions []string

	// MaxFileSize is the maximum file size in bytes.
	MaxFileSize int64

	// SkipHidden skips files and directories starting with ".".
	SkipHidden bool

	// FollowSymlinks follows symbolic links to files.
	FollowSymlinks bool
}

// DefaultLoaderConfig returns the default loader configuration.
func DefaultLoaderConfig() *LoaderConfig {
	return &LoaderConfig{
		Extensions:     []string{".json", ".yaml", ".yml"},
		MaxFileSize:    10 * 1024 * 1024,
		SkipHidden:     true,
		FollowSymlinks: true,
	}
}

// Loader reads plan documents from the file system. A file holds either one
// plan object or an array of plan objects.
type Loader struct {
	config *LoaderConfig
}

// NewLoader creates a loader. A nil config uses DefaultLoaderConfig.
func NewLoader(config *LoaderConfig) *Loader {
	if config == nil {
		config = DefaultLoaderConfig()
	}
	return &Loader{config: config}
}

// LoadFile loads the plans in one file. Plans without an ID field are named
// after the file, with a 1-based index suffix when the file holds several.
func (l *Loader) LoadFile(path string) ([]*policydoc.Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &LoadError{FilePath: path, Message: "file not found", Cause: err}
		}
		if os.IsPermission(err) {
			return nil, &LoadError{FilePath: path, Message: "permission denied", Cause: err}
		}
		return nil, &LoadError{FilePath: path, Message: "failed to access file", Cause: err}
	}

	if !info.Mode().IsRegular() {
		return nil, &LoadError{FilePath: path, Message: "not a regular file"}
	}

	if info.Size() > l.config.MaxFileSize {
		return nil, &LoadError{
			FilePath: path,
			Message:  fmt.Sprintf("file size %d bytes exceeds maximum %d bytes", info.Size(), l.config.MaxFileSize),
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{FilePath: path, Message: "failed to read file", Cause: err}
	}

	if !utf8.Valid(data) {
		return nil, &LoadError{FilePath: path, Message: "file contains invalid UTF-8 encoding"}
	}

	root, err := decode(path, data)
	if err != nil {
		return nil, err
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return documents(path, stem, root)
}

// LoadDirectory loads every plan file under dir recursively. It returns the
// plans that loaded together with an ErrorList for the files that did not.
func (l *Loader) LoadDirectory(dir string) ([]*policydoc.Document, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &LoadError{FilePath: dir, Message: "directory not found", Cause: err}
		}
		return nil, &LoadError{FilePath: dir, Message: "failed to access directory", Cause: err}
	}
	if !info.IsDir() {
		return nil, &LoadError{FilePath: dir, Message: "not a directory"}
	}

	files, err := l.CollectFiles(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, &LoadError{FilePath: dir, Message: "no plan files found in directory"}
	}

	var docs []*policydoc.Document
	seen := make(map[string]string)
	errList := &ErrorList{}

	for _, path := range files {
		loaded, err := l.LoadFile(path)
		if err != nil {
			errList.Add(err)
			continue
		}
		for _, doc := range loaded {
			if first, dup := seen[doc.ID()]; dup {
				errList.Add(&LoadError{
					FilePath: path,
					Message:  fmt.Sprintf("duplicate plan id %q (first defined in %s)", doc.ID(), first),
				})
				continue
			}
			seen[doc.ID()] = path
			docs = append(docs, doc)
		}
	}

	if len(docs) == 0 && errList.HasErrors() {
		return nil, errList
	}
	if errList.HasErrors() {
		return docs, errList
	}
	return docs, nil
}

// CollectFiles returns the plan file paths under dir in lexical order.
func (l *Loader) CollectFiles(dir string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if l.config.SkipHidden && strings.HasPrefix(d.Name(), ".") && path != dir {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			if !l.config.FollowSymlinks {
				return nil
			}
			target, err := os.Stat(path)
			if err != nil || !target.Mode().IsRegular() {
				return nil
			}
		}

		if l.HasExtension(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, &LoadError{FilePath: dir, Message: "failed to walk directory", Cause: err}
	}

	sort.Strings(files)
	return files, nil
}

// HasExtension reports whether path has one of the configured extensions.
func (l *Loader) HasExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, valid := range l.config.Extensions {
		if ext == strings.ToLower(valid) {
			return true
		}
	}
	return false
}

func decode(path string, data []byte) (any, error) {
	var root any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &root); err != nil {
			return nil, &ParseError{FilePath: path, Message: "YAML parsing failed", Cause: err}
		}
	default:
		if err := json.Unmarshal(data, &root); err != nil {
			return nil, &ParseError{FilePath: path, Message: "JSON parsing failed", Cause: err}
		}
	}
	return root, nil
}

func documents(path, stem string, root any) ([]*policydoc.Document, error) {
	switch t := root.(type) {
	case map[string]any:
		doc, err := document(stem, t)
		if err != nil {
			return nil, &ParseError{FilePath: path, Message: "invalid plan document", Cause: err}
		}
		return []*policydoc.Document{doc}, nil

	case []any:
		docs := make([]*policydoc.Document, 0, len(t))
		for i, item := range t {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, &ParseError{FilePath: path, Message: fmt.Sprintf("entry %d is not an object", i)}
			}
			doc, err := document(fmt.Sprintf("%s-%d", stem, i+1), m)
			if err != nil {
				return nil, &ParseError{FilePath: path, Message: fmt.Sprintf("invalid plan document at entry %d", i), Cause: err}
			}
			docs = append(docs, doc)
		}
		if len(docs) == 0 {
			return nil, &ParseError{FilePath: path, Message: "file contains no plans"}
		}
		return docs, nil

	default:
		return nil, &ParseError{FilePath: path, Message: "top level must be an object or an array of objects"}
	}
}

// document prefers the plan's own ID field over the fallback name.
func document(fallbackID string, root map[string]any) (*policydoc.Document, error) {
	doc, err := policydoc.New("", root)
	if err != nil {
		return nil, err
	}
	if doc.ID() != "" {
		return doc, nil
	}
	return policydoc.New(fallbackID, root)
}
