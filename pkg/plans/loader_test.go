package plans

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const planJSON = `{
  "plan_id": "star-comprehensive",
  "company": "Star Health",
  "plan_name": "Comprehensive",
  "waiting_periods": {"initial": "30 days", "pre_existing": "36 months"}
}`

const planYAML = `
plan_id: care-supreme
company: Care Health
plan_name: Care Supreme
sub_limits:
  cataract: "Rs. 40,000 per eye"
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestLoader_LoadFile(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name     string
		file     string
		content  string
		wantIDs  []string
		wantErr  bool
		errMatch string
	}{
		{
			name:    "json object",
			file:    "star.json",
			content: planJSON,
			wantIDs: []string{"star-comprehensive"},
		},
		{
			name:    "yaml object",
			file:    "care.yaml",
			content: planYAML,
			wantIDs: []string{"care-supreme"},
		},
		{
			name:    "yml without id uses file name",
			file:    "basic.yml",
			content: "company: Acme\nplan_name: Basic\n",
			wantIDs: []string{"basic"},
		},
		{
			name:    "json array",
			file:    "bundle.json",
			content: `[{"plan_id": "a", "company": "A"}, {"company": "B"}]`,
			wantIDs: []string{"a", "bundle-2"},
		},
		{
			name:     "invalid json",
			file:     "broken.json",
			content:  `{"company": `,
			wantErr:  true,
			errMatch: "JSON parsing failed",
		},
		{
			name:     "scalar top level",
			file:     "scalar.json",
			content:  `42`,
			wantErr:  true,
			errMatch: "top level",
		},
		{
			name:     "empty object",
			file:     "empty.json",
			content:  `{}`,
			wantErr:  true,
			errMatch: "invalid plan document",
		},
	}

	loader := NewLoader(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, tt.file, tt.content)

			docs, err := loader.LoadFile(path)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				var perr *ParseError
				if !errors.As(err, &perr) {
					t.Errorf("expected *ParseError, got %T", err)
				}
				if !strings.Contains(err.Error(), tt.errMatch) {
					t.Errorf("expected error containing %q, got %q", tt.errMatch, err.Error())
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(docs) != len(tt.wantIDs) {
				t.Fatalf("expected %d documents, got %d", len(tt.wantIDs), len(docs))
			}
			for i, id := range tt.wantIDs {
				if docs[i].ID() != id {
					t.Errorf("document %d: expected id %q, got %q", i, id, docs[i].ID())
				}
			}
		})
	}
}

func TestLoader_LoadFile_Limits(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "big.json", planJSON)

	loader := NewLoader(&LoaderConfig{Extensions: []string{".json"}, MaxFileSize: 10})
	_, err := loader.LoadFile(path)

	var lerr *LoadError
	if !errors.As(err, &lerr) {
		t.Fatalf("expected *LoadError, got %v", err)
	}
	if !strings.Contains(lerr.Message, "exceeds maximum") {
		t.Errorf("unexpected message: %s", lerr.Message)
	}

	if _, err := loader.LoadFile(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoader_LoadDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "star.json", planJSON)
	writeFile(t, dir, "nested/care.yaml", planYAML)
	writeFile(t, dir, "notes.txt", "not a plan")
	writeFile(t, dir, ".hidden/secret.json", `{"plan_id": "hidden"}`)

	docs, err := NewLoader(nil).LoadDirectory(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ids := make(map[string]bool)
	for _, d := range docs {
		ids[d.ID()] = true
	}
	if len(ids) != 2 || !ids["star-comprehensive"] || !ids["care-supreme"] {
		t.Errorf("unexpected plans: %v", ids)
	}
}

func TestLoader_LoadDirectory_PartialFailure(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.json", planJSON)
	writeFile(t, dir, "b.json", `{broken`)
	writeFile(t, dir, "c.json", planJSON)

	docs, err := NewLoader(nil).LoadDirectory(dir)

	var errList *ErrorList
	if !errors.As(err, &errList) {
		t.Fatalf("expected *ErrorList, got %v", err)
	}
	if len(errList.Errors) != 2 {
		t.Errorf("expected 2 errors (parse + duplicate), got %d: %v", len(errList.Errors), errList)
	}
	if len(docs) != 1 || docs[0].ID() != "star-comprehensive" {
		t.Errorf("expected the first star plan to survive, got %d docs", len(docs))
	}

	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Error("expected ErrorList to expose the parse error")
	}
}

func TestLoader_LoadDirectory_Errors(t *testing.T) {
	loader := NewLoader(nil)

	if _, err := loader.LoadDirectory(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing directory")
	}

	empty := t.TempDir()
	writeFile(t, empty, "readme.md", "# plans")
	if _, err := loader.LoadDirectory(empty); err == nil || !strings.Contains(err.Error(), "no plan files") {
		t.Errorf("expected no plan files error, got %v", err)
	}

	file := writeFile(t, t.TempDir(), "plan.json", planJSON)
	if _, err := loader.LoadDirectory(file); err == nil {
		t.Error("expected error when path is a file")
	}
}

func TestLoader_HasExtension(t *testing.T) {
	loader := NewLoader(nil)

	tests := []struct {
		path string
		want bool
	}{
		{"plan.json", true},
		{"plan.JSON", true},
		{"plans/care.yaml", true},
		{"care.yml", true},
		{"notes.txt", false},
		{"README", false},
	}

	for _, tt := range tests {
		if got := loader.HasExtension(tt.path); got != tt.want {
			t.Errorf("HasExtension(%q): expected %v, got %v", tt.path, tt.want, got)
		}
	}
}
