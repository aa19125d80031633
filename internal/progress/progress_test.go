package progress_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slateworks/dimsim/internal/evaluate"
	"github.com/slateworks/dimsim/internal/progress"
	"github.com/slateworks/dimsim/internal/schema"
	"github.com/slateworks/dimsim/internal/shop"
)

// attempt builds a minimal record with the percentage derived from the
// score, the way NewAttempt does.
func attempt(score, max int) progress.AttemptRecord {
	return progress.AttemptRecord{
		AttemptID:      uuid.New(),
		Timestamp:      time.Now().UTC(),
		SchemaHash:     "ab12cd34ef56ab12",
		TotalScore:     score,
		MaxScore:       max,
		Percentage:     float64(score) / float64(max) * 100,
		AxisScores:     map[string]int{"grain_correctness": score / 6},
		DeductionCount: 2,
	}
}

func simpleSubmission(grainDesc string) *schema.Submission {
	return &schema.Submission{
		FactTables: []schema.FactTable{{
			Name:             "fact_sales",
			GrainDescription: grainDesc,
			GrainColumns:     []schema.GrainColumn{{Name: "transaction_id", IsDegenerate: true}},
			DimensionKeys:    []string{"date_key"},
		}},
	}
}

func TestComputeSchemaHash(t *testing.T) {
	h1, err := progress.ComputeSchemaHash(simpleSubmission("One row per receipt"))
	require.NoError(t, err)
	assert.Len(t, h1, 16)
	assert.Regexp(t, "^[0-9a-f]{16}$", h1)

	h2, err := progress.ComputeSchemaHash(simpleSubmission("One row per receipt"))
	require.NoError(t, err)
	assert.Equal(t, h1, h2, "same document should hash identically")

	h3, err := progress.ComputeSchemaHash(simpleSubmission("One row per line item"))
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)
}

func TestRecordAttemptStatuses(t *testing.T) {
	ctx := context.Background()
	store := progress.NewInMemoryStore()

	status, err := store.RecordAttempt(ctx, 42, shop.DifficultyMedium, attempt(300, 600))
	require.NoError(t, err)
	assert.Equal(t, progress.RecordStatus{FirstAttempt: true, NewBest: true}, status)

	status, err = store.RecordAttempt(ctx, 42, shop.DifficultyMedium, attempt(400, 600))
	require.NoError(t, err)
	assert.Equal(t, progress.RecordStatus{NewBest: true, Improvement: true}, status)

	status, err = store.RecordAttempt(ctx, 42, shop.DifficultyMedium, attempt(350, 600))
	require.NoError(t, err)
	assert.Equal(t, progress.RecordStatus{Regression: true}, status)

	status, err = store.RecordAttempt(ctx, 42, shop.DifficultyMedium, attempt(350, 600))
	require.NoError(t, err)
	assert.Zero(t, status, "unchanged percentage is neither improvement nor regression")

	status, err = store.RecordAttempt(ctx, 42, shop.DifficultyMedium, attempt(450, 600))
	require.NoError(t, err)
	assert.Equal(t, progress.RecordStatus{NewBest: true, Improvement: true}, status)

	p, err := store.Scenario(ctx, 42, shop.DifficultyMedium)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, 450, p.BestScore)
	assert.InDelta(t, 75.0, p.BestPercentage, 1e-9)
	assert.Equal(t, 5, p.AttemptCount())
	require.NotNil(t, p.FirstAttempt)
	require.NotNil(t, p.LastAttempt)
	assert.False(t, p.LastAttempt.Before(*p.FirstAttempt))
}

func TestScenariosAreIsolated(t *testing.T) {
	ctx := context.Background()
	store := progress.NewInMemoryStore()

	_, err := store.RecordAttempt(ctx, 42, shop.DifficultyMedium, attempt(300, 600))
	require.NoError(t, err)

	p, err := store.Scenario(ctx, 42, shop.DifficultyHard)
	require.NoError(t, err)
	assert.Nil(t, p, "same seed at another difficulty is a separate scenario")

	p, err = store.Scenario(ctx, 7, shop.DifficultyMedium)
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestScenariosSortedBySeedThenDifficulty(t *testing.T) {
	ctx := context.Background()
	store := progress.NewInMemoryStore()

	for _, sc := range []struct {
		seed       uint32
		difficulty shop.Difficulty
	}{
		{7, shop.DifficultyMedium},
		{3, shop.DifficultyHard},
		{3, shop.DifficultyEasy},
	} {
		_, err := store.RecordAttempt(ctx, sc.seed, sc.difficulty, attempt(300, 600))
		require.NoError(t, err)
	}

	all, err := store.Scenarios(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, uint32(3), all[0].Seed)
	assert.Equal(t, shop.DifficultyEasy, all[0].Difficulty)
	assert.Equal(t, uint32(3), all[1].Seed)
	assert.Equal(t, shop.DifficultyHard, all[1].Difficulty)
	assert.Equal(t, uint32(7), all[2].Seed)
}

func TestTrackerRecord(t *testing.T) {
	ctx := context.Background()
	store := progress.NewInMemoryStore()
	tracker := progress.NewTracker(store)

	result := &evaluate.Result{
		TotalScore:       450,
		MaxPossibleScore: 600,
		Percentage:       75,
		AxisScores: []evaluate.AxisScore{
			{
				AxisName: "grain_correctness",
				Score:    60,
				MaxScore: 100,
				Deductions: []evaluate.Deduction{
					{Points: 25, Reason: "grain is vague", Severity: evaluate.SeverityMajor},
					{Points: 15, Reason: "grain mentions two concepts", Severity: evaluate.SeverityMajor},
				},
			},
			{AxisName: "queryability", Score: 90, MaxScore: 100},
		},
	}

	status, err := tracker.Record(ctx, 42, shop.DifficultyMedium, result, simpleSubmission("One row per receipt"))
	require.NoError(t, err)
	assert.True(t, status.FirstAttempt)
	assert.True(t, status.NewBest)

	p, err := tracker.Scenario(ctx, 42, shop.DifficultyMedium)
	require.NoError(t, err)
	require.NotNil(t, p)
	require.Len(t, p.Attempts, 1)

	got := p.Attempts[0]
	assert.NotEqual(t, uuid.Nil, got.AttemptID)
	assert.Len(t, got.SchemaHash, 16)
	assert.Equal(t, 450, got.TotalScore)
	assert.Equal(t, 600, got.MaxScore)
	assert.InDelta(t, 75.0, got.Percentage, 1e-9)
	assert.Equal(t, map[string]int{"grain_correctness": 60, "queryability": 90}, got.AxisScores)
	assert.Equal(t, 2, got.DeductionCount)
}

func TestRecordStatusMessage(t *testing.T) {
	cases := []struct {
		name   string
		status progress.RecordStatus
		want   string
	}{
		{"first attempt wins over new best", progress.RecordStatus{FirstAttempt: true, NewBest: true}, "First attempt recorded"},
		{"new best", progress.RecordStatus{NewBest: true, Improvement: true}, "NEW PERSONAL BEST!"},
		{"improvement", progress.RecordStatus{Improvement: true}, "Improvement from last attempt!"},
		{"regression", progress.RecordStatus{Regression: true}, "Regression from last attempt"},
		{"unchanged", progress.RecordStatus{}, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.status.Message())
		})
	}
}

func TestRenderHistory(t *testing.T) {
	ts := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	mk := func(score int, pct float64) progress.AttemptRecord {
		return progress.AttemptRecord{
			AttemptID:  uuid.New(),
			Timestamp:  ts,
			TotalScore: score,
			MaxScore:   600,
			Percentage: pct,
		}
	}

	p := &progress.ScenarioProgress{
		Seed:           42,
		Difficulty:     shop.DifficultyMedium,
		BestScore:      520,
		BestPercentage: 260.0 / 3.0,
		Attempts: []progress.AttemptRecord{
			mk(240, 40),
			mk(300, 50),
			mk(300, 50),
			mk(450, 75),
			mk(360, 60),
			mk(520, 260.0/3.0),
		},
		LastAttempt: &ts,
	}

	got := progress.RenderHistory(p, ts.Add(2*time.Hour+5*time.Minute))

	want := "Progress: Seed 42, Medium\n" +
		"Best Score: 520 (86.7%)\n" +
		"Attempts: 6\n" +
		"\n" +
		"Recent History:\n" +
		"  #2   50.0%  ██████████░░░░░░░░░░ +10%\n" +
		"  #3   50.0%  ██████████░░░░░░░░░░\n" +
		"  #4   75.0%  ███████████████░░░░░ +25%\n" +
		"  #5   60.0%  ████████████░░░░░░░░ -15%\n" +
		"  #6   86.7%  █████████████████░░░ +27% BEST\n" +
		"\n" +
		"Last attempt: 2 hours ago"
	assert.Equal(t, want, got)
}

func TestRenderHistoryEmpty(t *testing.T) {
	assert.Equal(t, "No previous attempts for this scenario.",
		progress.RenderHistory(nil, time.Now()))
	assert.Equal(t, "No previous attempts for this scenario.",
		progress.RenderHistory(&progress.ScenarioProgress{Seed: 1}, time.Now()))
}
