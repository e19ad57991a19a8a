package cli

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/runbuddy/internal/pipeline"
	"github.com/i474232898/runbuddy/internal/recommend"
	"github.com/i474232898/runbuddy/internal/trails"
	"github.com/i474232898/runbuddy/internal/trails/sources"
)

type answerFunc func(ctx context.Context, q string) (pipeline.Answer, error)

func (f answerFunc) Answer(ctx context.Context, q string) (pipeline.Answer, error) { return f(ctx, q) }

type staticCatalog []trails.Record

func (c staticCatalog) Load(context.Context) ([]trails.Record, error) { return c, nil }

func run(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app.Out = &out
	cmd := NewRootCmd(app)
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestAskPrintsAnswer(t *testing.T) {
	name := "Milne Dam"
	var asked string
	app := &App{Answerer: answerFunc(func(_ context.Context, q string) (pipeline.Answer, error) {
		asked = q
		return pipeline.Answer{
			When:   recommend.Slot{Date: "2025-06-02", Time: "07:00"},
			City:   "Markham",
			Result: recommend.Recommendation{TrailName: &name, Reason: "Cool and dry."},
		}, nil
	})}

	out, err := run(t, app, "--ask", "I'm going to Markham tomorrow, where should I run at 7am?")
	require.NoError(t, err)
	assert.Equal(t, "I'm going to Markham tomorrow, where should I run at 7am?", asked)
	assert.Contains(t, out, "2025-06-02 07:00")
	assert.Contains(t, out, "Milne Dam")
	assert.Contains(t, out, "Cool and dry.")
}

func TestAskRequiresQuestion(t *testing.T) {
	_, err := run(t, &App{})
	assert.Error(t, err)
}

func TestAskPropagatesError(t *testing.T) {
	app := &App{Answerer: answerFunc(func(context.Context, string) (pipeline.Answer, error) {
		return pipeline.Answer{}, trails.ErrNoCandidates
	})}
	_, err := run(t, app, "--ask", "where?")
	assert.ErrorIs(t, err, trails.ErrNoCandidates)
}

func TestDebugRaisesLogLevel(t *testing.T) {
	level := new(slog.LevelVar)
	level.Set(slog.LevelInfo)
	app := &App{
		Level: level,
		Answerer: answerFunc(func(context.Context, string) (pipeline.Answer, error) {
			return pipeline.Answer{Result: recommend.Recommendation{Reason: "ok"}}, nil
		}),
	}

	_, err := run(t, app, "--ask", "where?", "--debug")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level.Level())
}

func TestServeAndWatchDelegate(t *testing.T) {
	var served, watched bool
	app := &App{
		Serve: func(ctx context.Context) error { served = true; return nil },
		Watch: func(ctx context.Context) error { watched = true; return errors.New("scheduler failed") },
	}

	_, err := run(t, app, "serve")
	require.NoError(t, err)
	assert.True(t, served)

	_, err = run(t, app, "watch")
	assert.EqualError(t, err, "scheduler failed")
	assert.True(t, watched)
}

func TestTrailsListAndExport(t *testing.T) {
	catalog := staticCatalog{
		{Name: "Rouge Park Vista", Location: "Scarborough", LengthKm: 6.5},
		{Name: "Milne Dam", Location: "Markham", LengthKm: 3},
	}
	app := &App{Catalog: catalog}

	out, err := run(t, app, "trails", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Rouge Park Vista")
	assert.Contains(t, out, "Milne Dam")

	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "trails.yaml")
	out, err = run(t, app, "trails", "export", "--out", yamlPath)
	require.NoError(t, err)
	assert.Contains(t, out, "exported 2 trails")

	got, err := sources.NewYAMLCatalog(yamlPath).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []trails.Record(catalog), got)

	dbPath := filepath.Join(dir, "trails.db")
	_, err = run(t, app, "trails", "export", "--format", "sqlite", "-o", dbPath)
	require.NoError(t, err)

	db, err := sources.OpenSQLiteCatalog(dbPath)
	require.NoError(t, err)
	defer db.Close()
	got, err = db.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Milne Dam", got[1].Name)

	_, err = run(t, app, "trails", "export", "--format", "csv", "-o", dbPath)
	assert.Error(t, err)
}
