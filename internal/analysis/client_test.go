package analysis

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *[]string) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	var ops []string
	client, err := NewClient(Config{
		BaseURL:     server.URL + "/",
		RateLimit:   1000,
		Burst:       100,
		MaxRetries:  2,
		BaseBackoff: time.Millisecond,
	}, nil, func(op string, _ time.Duration, _ error) {
		ops = append(ops, op)
	})
	require.NoError(t, err)
	return client, &ops
}

func TestClient_AnalyzeGeneratedProject(t *testing.T) {
	client, ops := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/analyze", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		data, err := io.ReadAll(file)
		require.NoError(t, err)
		require.Equal(t, "jpegbytes", string(data))
		require.Equal(t, "image/jpeg", header.Header.Get("Content-Type"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"success","message":{
			"title":"Bottle Planter","materials":["bottle","soil"],"difficulty":"Easy",
			"timeRequired":"30 minutes","steps":["cut","fill","plant"],"tips":["use gloves"],
			"warnings":{"1":"sharp edges"}}}`))
	})

	res, err := client.Analyze(context.Background(), []byte("jpegbytes"), "")
	require.NoError(t, err)
	require.NotNil(t, res.Project)
	require.Equal(t, "Bottle Planter", res.Project.Title)
	require.Len(t, res.Project.Steps, 3)
	require.Equal(t, "sharp edges", res.Project.Warnings["1"])
	require.Equal(t, []string{"Bottle Planter"}, res.Titles())
	require.Equal(t, []string{"analyze"}, *ops)
}

func TestClient_AnalyzeSuggestions(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"success","message":[
			{"title":"Birdhouse","materials":["wood"],"steps":["a","b"]},
			{"title":"Coaster","materials":["cork"],"steps":["c"]}]}`))
	})

	res, err := client.Analyze(context.Background(), []byte("img"), "image/png")
	require.NoError(t, err)
	require.Nil(t, res.Project)
	require.Len(t, res.Suggestions, 2)
	require.Equal(t, []string{"Birdhouse", "Coaster"}, res.Titles())
}

func TestClient_AnalyzeErrorMessage(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"success","message":"Error analyzing image"}`))
	})

	_, err := client.Analyze(context.Background(), []byte("img"), "")
	require.ErrorIs(t, err, ErrUnexpectedResponse)
	require.Contains(t, err.Error(), "Error analyzing image")
}

func TestClient_AnalyzeEmptyImage(t *testing.T) {
	client, ops := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("backend must not be called")
	})

	_, err := client.Analyze(context.Background(), nil, "")
	require.ErrorIs(t, err, ErrEmptyImage)
	require.Empty(t, *ops)
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode([]LeaderboardEntry{{Rank: 1, Name: "Emma", DIYCompleted: 95, DaysActive: 100}})
	})

	entries, err := client.Leaderboard(context.Background())
	require.NoError(t, err)
	require.Equal(t, int32(3), calls.Load())
	require.Equal(t, "Emma", entries[0].Name)
}

func TestClient_GivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := client.Achievements(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "max retries exceeded")
	require.Equal(t, int32(3), calls.Load())

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"detail":"Missing required fields"}`, http.StatusBadRequest)
	})

	_, err := client.ClarifyStep(context.Background(), ClarifyRequest{ProjectTitle: "x"})
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
	require.Equal(t, int32(1), calls.Load())
}

func TestClient_ClarifyStep(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/clarify-step", r.URL.Path)
		var req ClarifyRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, ClarifyRequest{ProjectTitle: "Birdhouse", StepNumber: 2, StepContent: "nail the roof"}, req)

		_, _ = w.Write([]byte(`{"status":"success","clarification":{
			"detailed_steps":["First"],"tips":["tip"],"common_mistakes":["oops"]}}`))
	})

	c, err := client.ClarifyStep(context.Background(), ClarifyRequest{ProjectTitle: "Birdhouse", StepNumber: 2, StepContent: "nail the roof"})
	require.NoError(t, err)
	require.Equal(t, []string{"First"}, c.DetailedSteps)
	require.Equal(t, []string{"oops"}, c.CommonMistakes)
}

func TestClient_LeaderboardAndAchievements(t *testing.T) {
	client, ops := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		switch r.URL.Path {
		case "/leaderboard":
			_, _ = w.Write([]byte(`[{"rank":1,"name":"Ada","diy_completed":12,"days_active":30},
				{"rank":2,"name":"Lin","diy_completed":7,"days_active":21}]`))
		case "/achievements":
			_, _ = w.Write([]byte(`[{"id":1,"title":"First Build","icon":"hammer","description":"Finish a project"}]`))
		default:
			http.NotFound(w, r)
		}
	})

	board, err := client.Leaderboard(context.Background())
	require.NoError(t, err)
	require.Len(t, board, 2)
	require.Equal(t, LeaderboardEntry{Rank: 1, Name: "Ada", DIYCompleted: 12, DaysActive: 30}, board[0])

	achievements, err := client.Achievements(context.Background())
	require.NoError(t, err)
	require.Equal(t, "First Build", achievements[0].Title)

	require.Equal(t, []string{"leaderboard", "achievements"}, *ops)
}

func TestClient_ContextCanceled(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "busy", http.StatusServiceUnavailable)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.Leaderboard(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestNewClient_RequiresBaseURL(t *testing.T) {
	_, err := NewClient(Config{}, nil, nil)
	require.Error(t, err)
}
