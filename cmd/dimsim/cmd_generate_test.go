package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/slateworks/dimsim/internal/shop"
)

func runGenerate(t *testing.T, args ...string) (string, error) {
	t.Helper()
	rootCmd := newTestRootCmd()
	rootCmd.AddCommand(newGenerateCmd())
	rootCmd.SetArgs(append([]string{"generate"}, args...))
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestGenerateCmd(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)
	outDir := filepath.Join(tmpDir, "out")

	out, err := runGenerate(t,
		"--seed", "42",
		"--difficulty", "easy",
		"--num-events", "150",
		"--simulation-days", "20",
		"--output-dir", outDir,
	)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	for _, name := range []string{"shop_config.json", "events.json", "description.md"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("expected %s to exist: %v", name, err)
		}
	}

	cfg, err := loadShopConfig(filepath.Join(outDir, "shop_config.json"))
	if err != nil {
		t.Fatalf("written config does not parse: %v", err)
	}
	if cfg.Seed != 42 {
		t.Errorf("Seed = %d, want 42", cfg.Seed)
	}
	if cfg.ShopName == "" {
		t.Error("ShopName is empty")
	}

	seed, err := readEventsSeed(filepath.Join(outDir, "events.json"))
	if err != nil {
		t.Fatalf("written events do not parse: %v", err)
	}
	if seed != 42 {
		t.Errorf("events seed = %d, want 42", seed)
	}

	desc, err := os.ReadFile(filepath.Join(outDir, "description.md"))
	if err != nil {
		t.Fatalf("read description: %v", err)
	}
	if !strings.Contains(string(desc), cfg.ShopName) {
		t.Error("description should mention the shop name")
	}

	if !strings.Contains(out, "Generating shop with seed 42") {
		t.Errorf("output = %q, want the generation banner", out)
	}
	if !strings.Contains(out, "Events saved to") {
		t.Errorf("output = %q, want the events confirmation", out)
	}
}

func TestGenerateCmd_Deterministic(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)

	dirA := filepath.Join(tmpDir, "a")
	dirB := filepath.Join(tmpDir, "b")

	for _, dir := range []string{dirA, dirB} {
		if _, err := runGenerate(t, "--seed", "7", "--difficulty", "medium", "--num-events", "100", "--output-dir", dir); err != nil {
			t.Fatalf("generate into %s failed: %v", dir, err)
		}
	}

	eventsA, err := os.ReadFile(filepath.Join(dirA, "events.json"))
	if err != nil {
		t.Fatalf("read events A: %v", err)
	}
	eventsB, err := os.ReadFile(filepath.Join(dirB, "events.json"))
	if err != nil {
		t.Fatalf("read events B: %v", err)
	}
	if !bytes.Equal(eventsA, eventsB) {
		t.Error("same seed should produce identical event logs")
	}
}

func TestGenerateCmd_RandomSeedWhenOmitted(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)
	outDir := filepath.Join(tmpDir, "out")

	out, err := runGenerate(t, "--difficulty", "easy", "--num-events", "50", "--output-dir", outDir)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if !strings.Contains(out, "Generating shop with seed") {
		t.Errorf("output = %q, want the generation banner", out)
	}

	cfg, err := loadShopConfig(filepath.Join(outDir, "shop_config.json"))
	if err != nil {
		t.Fatalf("written config does not parse: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("generated config invalid: %v", err)
	}
}

func TestGenerateCmd_InvalidDifficulty(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)

	_, err := runGenerate(t, "--difficulty", "brutal", "--output-dir", filepath.Join(tmpDir, "out"))
	if err == nil {
		t.Fatal("expected error for invalid difficulty")
	}
	if !strings.Contains(err.Error(), "invalid difficulty") {
		t.Errorf("error = %q, want it to mention invalid difficulty", err.Error())
	}
}

func TestGenerateCmd_DifficultyAffectsConfig(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)

	easyDir := filepath.Join(tmpDir, "easy")
	advDir := filepath.Join(tmpDir, "adv")

	if _, err := runGenerate(t, "--seed", "42", "--difficulty", "easy", "--num-events", "50", "--output-dir", easyDir); err != nil {
		t.Fatalf("generate easy: %v", err)
	}
	if _, err := runGenerate(t, "--seed", "42", "--difficulty", "adversarial", "--num-events", "50", "--output-dir", advDir); err != nil {
		t.Fatalf("generate adversarial: %v", err)
	}

	easyCfg, err := loadShopConfig(filepath.Join(easyDir, "shop_config.json"))
	if err != nil {
		t.Fatalf("parse easy config: %v", err)
	}
	advCfg, err := loadShopConfig(filepath.Join(advDir, "shop_config.json"))
	if err != nil {
		t.Fatalf("parse adversarial config: %v", err)
	}

	// Easy never draws the mixed-grain or frequent-hierarchy options.
	if easyCfg.Transactions.Grain == shop.GrainMixed {
		t.Error("easy difficulty should never produce mixed grain")
	}
	if easyCfg.Products.HierarchyChangeFrequency == shop.HierarchyChangesFrequent {
		t.Error("easy difficulty should never produce frequent hierarchy changes")
	}

	// Adversarial always enables hierarchy drift, so at least one trap
	// is guaranteed.
	if advCfg.Products.HierarchyChangeFrequency == shop.HierarchyChangesNone {
		t.Error("adversarial difficulty should always produce hierarchy changes")
	}
	if len(shop.ExtractEnabledTraps(advCfg)) == 0 {
		t.Error("adversarial config should enable at least one trap")
	}
}
