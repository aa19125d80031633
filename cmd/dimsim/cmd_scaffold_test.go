package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/slateworks/dimsim/internal/shop"
)

func TestScaffoldCmd(t *testing.T) {
	tmpDir := t.TempDir()
	_, configPath := writeConfigFile(t, tmpDir, 42, shop.DifficultyMedium)

	rootCmd := newTestRootCmd()
	rootCmd.AddCommand(newScaffoldCmd())
	rootCmd.SetArgs([]string{"scaffold", configPath})
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("scaffold failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, `"fact_tables"`) {
		t.Error("output should contain the scaffold document")
	}
	if !strings.Contains(out, "Fact tables: ") {
		t.Error("output should contain the summary counts")
	}
}

func TestScaffoldCmd_OutputFile(t *testing.T) {
	tmpDir := t.TempDir()
	_, configPath := writeConfigFile(t, tmpDir, 42, shop.DifficultyAdversarial)
	outPath := filepath.Join(tmpDir, "scaffold.json")

	rootCmd := newTestRootCmd()
	rootCmd.AddCommand(newScaffoldCmd())
	rootCmd.SetArgs([]string{"scaffold", configPath, "--output", outPath})
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("scaffold failed: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read scaffold: %v", err)
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("scaffold is not valid JSON: %v", err)
	}
	if _, ok := doc["fact_tables"]; !ok {
		t.Error("scaffold missing fact_tables")
	}

	// Adversarial configs always carry traps, so the scaffold carries
	// open decisions.
	out := buf.String()
	if !strings.Contains(out, "Key decisions needed:") {
		t.Errorf("output = %q, want the decisions section", out)
	}
}
