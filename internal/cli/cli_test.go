package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claude/setflow/internal/models"
	"github.com/claude/setflow/internal/storage"
)

// execute runs setflowctl against the SQLite database at db. Package-level
// flag values are reset first since cobra keeps them between runs.
func execute(t *testing.T, db string, args ...string) (string, error) {
	t.Helper()
	configPath, dbPath, verbose = "", "", false
	exerciseDuration, exerciseDelay, exerciseMinutes = 0, defaultDelay, false
	mcpServerURL = ""

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--db", db}, args...))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func mustExecute(t *testing.T, db string, args ...string) string {
	t.Helper()
	out, err := execute(t, db, args...)
	require.NoError(t, err, "setflowctl %s: %s", strings.Join(args, " "), out)
	return out
}

func testDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "setflow.db")
}

func loadPlans(t *testing.T, db string) []models.Plan {
	t.Helper()
	store, err := storage.OpenLocal(db)
	require.NoError(t, err)
	defer store.Close()
	plans, err := store.ListPlans(context.Background())
	require.NoError(t, err)
	return plans
}

func exerciseNames(p models.Plan) []string {
	names := make([]string, len(p.Exercises))
	for i, e := range p.Exercises {
		names[i] = e.Name
	}
	return names
}

func TestCommandsRegistered(t *testing.T) {
	want := []string{"plans", "exercises", "history", "stats", "export", "import", "run", "mcp"}
	var got []string
	for _, cmd := range rootCmd.Commands() {
		got = append(got, cmd.Name())
	}
	for _, name := range want {
		assert.Contains(t, got, name)
	}
}

func TestPlansCreateAndList(t *testing.T) {
	db := testDB(t)

	out := mustExecute(t, db, "plans", "list")
	assert.Contains(t, out, "No plans yet")

	out = mustExecute(t, db, "plans", "create", "Legs")
	assert.Contains(t, out, `Created plan "Legs"`)
	out = mustExecute(t, db, "plans", "create")
	assert.Contains(t, out, models.DefaultPlanName)

	out = mustExecute(t, db, "plans", "list")
	assert.Contains(t, out, "Legs")
	assert.Contains(t, out, models.DefaultPlanName)
	require.Len(t, loadPlans(t, db), 2)
}

// TestExercisesCommands walks a plan through every exercise edit.
func TestExercisesCommands(t *testing.T) {
	db := testDB(t)
	mustExecute(t, db, "plans", "create", "Legs")

	mustExecute(t, db, "exercises", "add", "legs", "Squat", "--duration", "1", "--minutes")
	mustExecute(t, db, "exercises", "add", "Legs", "Lunge", "-d", "30", "--delay", "0")
	mustExecute(t, db, "exercises", "add", "Legs", "Plank", "-d", "-5", "--delay", "5")

	p := loadPlans(t, db)[0]
	require.Equal(t, []string{"Squat", "Lunge", "Plank"}, exerciseNames(p))
	assert.Equal(t, 60, p.Exercises[0].Duration)
	assert.Equal(t, defaultDelay, p.Exercises[0].Delay)
	assert.Equal(t, 0, p.Exercises[1].Delay)
	assert.Equal(t, 0, p.Exercises[2].Duration)

	mustExecute(t, db, "exercises", "rename", "Legs", "2", "Split Lunge")
	mustExecute(t, db, "exercises", "move", "Legs", "3", "1")
	p = loadPlans(t, db)[0]
	require.Equal(t, []string{"Plank", "Squat", "Split Lunge"}, exerciseNames(p))

	mustExecute(t, db, "exercises", "clone", "Legs", p.Exercises[1].ID)
	mustExecute(t, db, "exercises", "remove", "Legs", "1")
	p = loadPlans(t, db)[0]
	require.Equal(t, []string{"Squat", "Split Lunge", "Squat (Copy)"}, exerciseNames(p))
	assert.NotEqual(t, p.Exercises[0].ID, p.Exercises[2].ID)

	out := mustExecute(t, db, "plans", "show", "Legs")
	assert.Contains(t, out, "Split Lunge")
	assert.Contains(t, out, "1:00")
}

func TestExercisesErrors(t *testing.T) {
	db := testDB(t)
	mustExecute(t, db, "plans", "create", "Legs")
	mustExecute(t, db, "exercises", "add", "Legs", "Squat", "-d", "30")

	tests := []struct {
		name string
		args []string
	}{
		{"unknown plan", []string{"exercises", "add", "Arms", "Curl"}},
		{"empty name", []string{"exercises", "add", "Legs", "  "}},
		{"unknown exercise", []string{"exercises", "remove", "Legs", "7"}},
		{"move out of range", []string{"exercises", "move", "Legs", "1", "2"}},
		{"move not a number", []string{"exercises", "move", "Legs", "one", "1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, db, tt.args...)
			assert.Error(t, err)
		})
	}
	require.Len(t, loadPlans(t, db)[0].Exercises, 1)
}

func TestPlansCloneRenameDelete(t *testing.T) {
	db := testDB(t)
	mustExecute(t, db, "plans", "create", "Core")
	mustExecute(t, db, "exercises", "add", "Core", "Plank", "-d", "45")

	out := mustExecute(t, db, "plans", "clone", "Core")
	assert.Contains(t, out, "Core (Copy)")

	_, err := execute(t, db, "plans", "rename", "Core (Copy)", " ")
	require.Error(t, err)
	mustExecute(t, db, "plans", "rename", "Core (Copy)", "Core B")

	plans := loadPlans(t, db)
	require.Len(t, plans, 2)
	var clone models.Plan
	for _, p := range plans {
		if p.Name == "Core B" {
			clone = p
		}
	}
	require.Equal(t, []string{"Plank"}, exerciseNames(clone))

	mustExecute(t, db, "plans", "delete", clone.ID)
	plans = loadPlans(t, db)
	require.Len(t, plans, 1)
	assert.Equal(t, "Core", plans[0].Name)

	_, err = execute(t, db, "plans", "delete", "Core B")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestResolvePlanAmbiguousName(t *testing.T) {
	db := testDB(t)
	mustExecute(t, db, "plans", "create", "Core")
	mustExecute(t, db, "plans", "create", "core")

	_, err := execute(t, db, "plans", "show", "CORE")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "use the plan ID")
}

func seedPlan(t *testing.T, db string) models.Plan {
	t.Helper()
	require.NoError(t, storage.RunLocalMigrations(db))
	store, err := storage.OpenLocal(db)
	require.NoError(t, err)
	defer store.Close()

	created := time.Date(2025, 3, 1, 7, 0, 0, 0, time.UTC)
	p := models.Plan{
		ID:        "p1",
		Name:      "Legs",
		Exercises: []models.Exercise{{ID: "e1", Name: "Squat", Duration: 60, Delay: 10}, {ID: "e2", Name: "Lunge", Duration: 20}},
		History: []models.HistoryRecord{
			{ID: "h1", Date: created.Add(time.Hour), Duration: 90, ExerciseCount: 2},
			{ID: "h2", Date: created.Add(49 * time.Hour), Duration: 90, ExerciseCount: 2},
		},
		CreatedAt: created,
		UpdatedAt: created,
	}
	require.NoError(t, store.ImportPlan(context.Background(), p))
	return p
}

func TestHistoryAndStats(t *testing.T) {
	db := testDB(t)
	p := seedPlan(t, db)

	out := mustExecute(t, db, "history", "Legs")
	assert.Contains(t, out, "Legs: 2 workouts")
	assert.Contains(t, out, formatDate(p.History[1].Date))
	assert.Less(t, strings.Index(out, formatDate(p.History[1].Date)), strings.Index(out, formatDate(p.History[0].Date)),
		"newest workout should be listed first")

	out = mustExecute(t, db, "stats")
	assert.Contains(t, out, "Plans:          1")
	assert.Contains(t, out, "Workouts:       2")
	assert.Contains(t, out, "Exercises:      2")
	assert.Contains(t, out, "Time trained:   3 min")

	out = mustExecute(t, db, "stats", "p1")
	assert.Contains(t, out, "Mar 1")
	assert.Contains(t, out, "75%")
	assert.Contains(t, out, "25%")
}

func TestHistoryEmpty(t *testing.T) {
	db := testDB(t)
	mustExecute(t, db, "plans", "create", "Fresh")
	out := mustExecute(t, db, "history", "Fresh")
	assert.Contains(t, out, "No workouts recorded")
}

func TestExportImport(t *testing.T) {
	src := testDB(t)
	want := seedPlan(t, src)
	file := filepath.Join(t.TempDir(), "plans.json")

	mustExecute(t, src, "export", file)

	dst := testDB(t)
	out := mustExecute(t, dst, "import", file)
	assert.Contains(t, out, "Imported 1 plans")

	got := loadPlans(t, dst)
	require.Len(t, got, 1)
	assert.Equal(t, want.Name, got[0].Name)
	assert.Equal(t, exerciseNames(want), exerciseNames(got[0]))
	require.Len(t, got[0].History, 2)
	assert.Equal(t, "h2", got[0].History[1].ID)
	assert.True(t, want.History[1].Date.Equal(got[0].History[1].Date))
}

func TestImportRejectsBadFile(t *testing.T) {
	db := testDB(t)
	_, err := execute(t, db, "import", filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestRunEmptyPlan(t *testing.T) {
	db := testDB(t)
	mustExecute(t, db, "plans", "create", "Empty")
	_, err := execute(t, db, "run", "Empty")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no exercises")
}
