package calendar

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

var loc = time.FixedZone("EST", -5*3600)

func fixedNow() time.Time {
	return time.Date(2025, 6, 2, 9, 0, 0, 0, loc)
}

func TestIsRunEvent(t *testing.T) {
	assert.True(t, IsRunEvent(Event{Summary: "Morning RUN"}))
	assert.True(t, IsRunEvent(Event{Summary: "easy jog with Sam"}))
	assert.False(t, IsRunEvent(Event{Summary: "Dentist"}))
}

func TestFinder_OnDateIgnoresNonRunEvents(t *testing.T) {
	day := time.Date(2025, 6, 3, 0, 0, 0, 0, loc)
	cal := Static{
		{Start: time.Date(2025, 6, 3, 8, 0, 0, 0, loc), Summary: "Standup"},
		{Start: time.Date(2025, 6, 3, 17, 45, 0, 0, loc), Summary: "Tempo run"},
		{Start: time.Date(2025, 6, 4, 6, 0, 0, 0, loc), Summary: "Long run"},
	}
	f := NewFinder(cal, loc, 0, fixedNow, nil)

	got, ok, err := f.OnDate(context.Background(), day)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 6, 3, 17, 45, 0, 0, loc), got)

	_, ok, err = f.OnDate(context.Background(), day.AddDate(0, 0, 5))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFinder_NextSkipsPastEvents(t *testing.T) {
	cal := Static{
		{Start: time.Date(2025, 6, 5, 18, 0, 0, 0, loc), Summary: "Jog"},
		{Start: time.Date(2025, 6, 1, 18, 0, 0, 0, loc), Summary: "Run"},
		{Start: time.Date(2025, 6, 3, 18, 0, 0, 0, loc), Summary: "Run club"},
	}
	f := NewFinder(cal, loc, 0, fixedNow, nil)

	got, ok, err := f.Next(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 3, got.Day())
}

func TestLoadStatic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`events:
  - summary: Evening run
    start: 2025-06-03T18:30
  - summary: Dentist
    start: 2025-06-03 09:00
  - summary: Long run
    date: 2025-06-07
`), 0o644))

	cal, err := LoadStatic(path, loc)
	require.NoError(t, err)
	require.Len(t, cal, 3)
	assert.Equal(t, time.Date(2025, 6, 3, 18, 30, 0, 0, loc), cal[0].Start)
	assert.True(t, cal[2].AllDay)
	assert.Equal(t, time.Date(2025, 6, 7, AllDayHour, AllDayMinute, 0, 0, loc), cal[2].Start)

	f := NewFinder(cal, loc, 0, fixedNow, nil)
	got, ok, err := f.Next(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 6, 3, 18, 30, 0, 0, loc), got)
}

func TestLoadStatic_RejectsBadEvents(t *testing.T) {
	dir := t.TempDir()
	for name, body := range map[string]string{
		"bad-start.yaml": "events:\n  - summary: run\n    start: tomorrow\n",
		"no-time.yaml":   "events:\n  - summary: run\n",
	} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
		_, err := LoadStatic(path, loc)
		assert.Error(t, err, name)
	}

	_, err := LoadStatic(filepath.Join(dir, "missing.yaml"), loc)
	assert.Error(t, err)
}

type failing struct{}

func (failing) Upcoming(context.Context, int) ([]Event, error) {
	return nil, errors.New("calendar down")
}

func TestFinder_PropagatesProviderError(t *testing.T) {
	f := NewFinder(failing{}, loc, 0, fixedNow, nil)
	_, ok, err := f.Today(context.Background())
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestGoogleProvider_Upcoming(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[
			{"summary":"Evening run","start":{"dateTime":"2025-06-02T23:30:00Z"}},
			{"summary":"Race day jog","start":{"date":"2025-06-07"}},
			{"summary":"broken","start":{}}
		]}`))
	}))
	defer srv.Close()

	g, err := NewGoogleProvider(context.Background(), "", loc,
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	g.now = fixedNow

	events, err := g.Upcoming(context.Background(), 25)
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.True(t, strings.HasSuffix(gotPath, "/calendars/primary/events"))
	assert.Contains(t, gotQuery, "singleEvents=true")
	assert.Contains(t, gotQuery, "maxResults=25")

	assert.Equal(t, time.Date(2025, 6, 2, 18, 30, 0, 0, loc), events[0].Start)
	assert.False(t, events[0].AllDay)

	assert.True(t, events[1].AllDay)
	assert.Equal(t, time.Date(2025, 6, 7, 7, 0, 0, 0, loc), events[1].Start)
}
