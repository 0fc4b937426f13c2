package main

import (
	"os"
	"path/filepath"
	"testing"
)

const goldPlan = `{
	"company": "Acme Health",
	"plan_name": "Gold Care",
	"sum_insured": "5 Lakh",
	"waiting_periods": {"initial": "30 days", "pre_existing": "36 months"}
}`

const silverPlan = `{
	"company": "Acme Health",
	"plan_name": "Silver Shield",
	"sum_insured": "3 Lakh"
}`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// setupConfig writes a plan directory and a config file pointing at it, and
// selects the config for the commands under test.
func setupConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	plansDir := filepath.Join(dir, "plans")
	if err := os.MkdirAll(plansDir, 0755); err != nil {
		t.Fatalf("failed to create plans dir: %v", err)
	}
	writeFile(t, filepath.Join(plansDir, "gold-care.json"), goldPlan)
	writeFile(t, filepath.Join(plansDir, "silver-shield.json"), silverPlan)

	cfgPath := filepath.Join(dir, "config.yaml")
	writeFile(t, cfgPath, "plans:\n  directory: "+plansDir+"\ntelemetry:\n  logging:\n    level: error\n")

	orig := cfgFile
	cfgFile = cfgPath
	t.Cleanup(func() { cfgFile = orig })
	return dir
}
