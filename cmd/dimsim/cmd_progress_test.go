package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/slateworks/dimsim/internal/evaluate"
	"github.com/slateworks/dimsim/internal/progress"
	"github.com/slateworks/dimsim/internal/shop"
)

func runProgress(t *testing.T, args ...string) (string, error) {
	t.Helper()
	rootCmd := newTestRootCmd()
	rootCmd.AddCommand(newProgressCmd())
	rootCmd.SetArgs(append([]string{"progress"}, args...))
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	err := rootCmd.Execute()
	return buf.String(), err
}

// pointProgressDB routes the progress store at a temp path for the
// duration of the test.
func pointProgressDB(t *testing.T, path string) {
	t.Helper()
	old := os.Getenv("DIMSIM_PROGRESS_DB")
	os.Setenv("DIMSIM_PROGRESS_DB", path)
	t.Cleanup(func() {
		os.Setenv("DIMSIM_PROGRESS_DB", old)
	})
}

// seedAttempt writes one attempt into the store at dbPath.
func seedAttempt(t *testing.T, dbPath string, seed uint32, difficulty shop.Difficulty, score int) {
	t.Helper()
	store, err := progress.NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	result := &evaluate.Result{
		TotalScore:       score,
		MaxPossibleScore: 100,
		Percentage:       float64(score),
		AxisScores: []evaluate.AxisScore{
			{AxisName: "grain", Score: score / 2, MaxScore: 50},
		},
	}
	attempt := progress.NewAttempt(result, "abcdef0123456789")
	if _, err := store.RecordAttempt(context.Background(), seed, difficulty, attempt); err != nil {
		t.Fatalf("record attempt: %v", err)
	}
}

func TestProgressCmd_RequiresSeedOrAll(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)

	_, err := runProgress(t)
	if err == nil {
		t.Fatal("expected error without --seed or --all")
	}
	if !strings.Contains(err.Error(), "--seed or --all") {
		t.Errorf("error = %q, want it to name the flags", err.Error())
	}
}

func TestProgressCmd_NoAttempts(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)
	pointProgressDB(t, filepath.Join(tmpDir, "progress.db"))

	out, err := runProgress(t, "--seed", "42", "--difficulty", "medium")
	if err != nil {
		t.Fatalf("progress failed: %v", err)
	}
	if !strings.Contains(out, "No previous attempts") {
		t.Errorf("output = %q, want the empty-history note", out)
	}
}

func TestProgressCmd_ShowsHistory(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)
	dbPath := filepath.Join(tmpDir, "progress.db")
	pointProgressDB(t, dbPath)

	seedAttempt(t, dbPath, 42, shop.DifficultyMedium, 60)
	seedAttempt(t, dbPath, 42, shop.DifficultyMedium, 75)

	out, err := runProgress(t, "--seed", "42", "--difficulty", "medium")
	if err != nil {
		t.Fatalf("progress failed: %v", err)
	}
	if !strings.Contains(out, "Progress: Seed 42, Medium") {
		t.Errorf("output = %q, want the scenario header", out)
	}
	if !strings.Contains(out, "Best Score: 75") {
		t.Errorf("output = %q, want the best score", out)
	}
	if !strings.Contains(out, "Attempts: 2") {
		t.Errorf("output = %q, want the attempt count", out)
	}
}

func TestProgressCmd_All(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)
	dbPath := filepath.Join(tmpDir, "progress.db")
	pointProgressDB(t, dbPath)

	seedAttempt(t, dbPath, 7, shop.DifficultyEasy, 50)
	seedAttempt(t, dbPath, 42, shop.DifficultyHard, 80)

	out, err := runProgress(t, "--all")
	if err != nil {
		t.Fatalf("progress failed: %v", err)
	}
	if !strings.Contains(out, "Seed") || !strings.Contains(out, "Difficulty") {
		t.Errorf("output = %q, want the listing header", out)
	}
	if !strings.Contains(out, "easy") || !strings.Contains(out, "hard") {
		t.Errorf("output = %q, want both scenarios listed", out)
	}
}

func TestProgressCmd_AllEmpty(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)
	pointProgressDB(t, filepath.Join(tmpDir, "progress.db"))

	out, err := runProgress(t, "--all")
	if err != nil {
		t.Fatalf("progress failed: %v", err)
	}
	if !strings.Contains(out, "No attempts recorded yet.") {
		t.Errorf("output = %q, want the empty note", out)
	}
}
