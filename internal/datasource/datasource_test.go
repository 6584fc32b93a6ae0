package datasource

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func testHTTPClient() *RateLimitedHTTPClient {
	cfg := DefaultHTTPClientConfig()
	cfg.MaxRetries = 0
	cfg.RateLimit = 1000
	return NewRateLimitedHTTPClient(cfg, log.New(io.Discard, "", 0))
}

func TestCollegeFootballFetchGames(t *testing.T) {
	hs, as := 31, 17
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Query().Get("year") != "2024" {
			t.Errorf("expected year=2024, got %s", r.URL.RawQuery)
		}
		_ = json.NewEncoder(w).Encode([]cfbGame{
			{
				ID: 401525, Season: 2024, Week: 1,
				HomeTeam: "Georgia", AwayTeam: "Clemson",
				HomePoints: &hs, AwayPoints: &as,
				Completed: true, StartDate: "2024-08-31T19:30:00Z",
			},
		})
	}))
	defer server.Close()

	client := NewCollegeFootballClient(testHTTPClient(), server.URL, "test-key", true, log.New(io.Discard, "", 0))
	games, err := client.FetchGames(context.Background(), 2024, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(games) != 1 {
		t.Fatalf("expected 1 game, got %d", len(games))
	}
	g := games[0]
	if g.HomeTeam != "Georgia" || *g.HomeScore != 31 {
		t.Fatalf("game not normalized: %+v", g)
	}
	if g.KickoffTime.UTC().Hour() != 19 {
		t.Fatalf("kickoff not parsed as UTC: %v", g.KickoffTime)
	}
}

func TestCollegeFootballAuthenticationFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewCollegeFootballClient(testHTTPClient(), server.URL, "bad-key", true, log.New(io.Discard, "", 0))
	_, err := client.FetchGames(context.Background(), 2024, 0)
	if !errors.Is(err, ErrAuthenticationFailed) {
		t.Fatalf("expected ErrAuthenticationFailed, got %v", err)
	}
}

func TestCollegeFootballDisabledSource(t *testing.T) {
	client := NewCollegeFootballClient(testHTTPClient(), "http://unused", "key", false, log.New(io.Discard, "", 0))
	if _, err := client.FetchGames(context.Background(), 2024, 0); err == nil {
		t.Fatalf("disabled source must refuse to fetch")
	}
}

func TestHistoricalFileSourceRoundTrip(t *testing.T) {
	root := t.TempDir()
	seasonDir := filepath.Join(root, "2023")
	if err := os.MkdirAll(filepath.Join(seasonDir, "boxscores"), 0o755); err != nil {
		t.Fatalf("setup: %v", err)
	}

	games := []GameData{
		{SourceID: "g1", Season: 2023, Week: 1, HomeTeam: "Michigan", AwayTeam: "Ohio State", Completed: true, KickoffTime: time.Now().UTC()},
		{SourceID: "g2", Season: 2023, Week: 2, HomeTeam: "Alabama", AwayTeam: "Auburn", Completed: true, KickoffTime: time.Now().UTC()},
	}
	writeJSON(t, filepath.Join(seasonDir, "games.json"), games)
	writeJSON(t, filepath.Join(seasonDir, "teams.json"), []TeamData{{SourceID: "t1", Name: "Michigan", Classification: "fbs"}})
	writeJSON(t, filepath.Join(seasonDir, "boxscores", "g1.json"), []BoxScoreData{
		{SourceGameID: "g1", Team: "Michigan", Points: 30},
		{SourceGameID: "g1", Team: "Ohio State", Points: 24},
	})

	src := NewHistoricalFileSource(root, true, log.New(io.Discard, "", 0))

	all, err := src.FetchGames(context.Background(), 2023, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 games, got %d", len(all))
	}

	week2, err := src.FetchGames(context.Background(), 2023, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(week2) != 1 || week2[0].SourceID != "g2" {
		t.Fatalf("week filter failed: %+v", week2)
	}

	scores, err := src.FetchBoxScores(context.Background(), "g1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(scores) != 2 {
		t.Fatalf("expected both teams' lines, got %d", len(scores))
	}

	teams, err := src.FetchTeams(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(teams) != 1 || teams[0].Name != "Michigan" {
		t.Fatalf("teams not loaded: %+v", teams)
	}
}

func TestHistoricalFileSourceMissingSeason(t *testing.T) {
	src := NewHistoricalFileSource(t.TempDir(), true, log.New(io.Discard, "", 0))
	if _, err := src.FetchGames(context.Background(), 1999, 0); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCircuitBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := DefaultHTTPClientConfig()
	cfg.MaxRetries = 0
	cfg.RateLimit = 1000
	cfg.CircuitBreakerMax = 2
	client := NewRateLimitedHTTPClient(cfg, log.New(io.Discard, "", 0))

	// 500s surface as retry-exhausted errors; after two the breaker opens.
	for i := 0; i < 2; i++ {
		if _, err := client.Get(context.Background(), server.URL); err == nil {
			t.Fatalf("expected error on attempt %d", i)
		}
	}

	before := calls
	if _, err := client.Get(context.Background(), server.URL); err == nil {
		t.Fatalf("expected circuit breaker to reject the request")
	}
	if calls != before {
		t.Fatalf("open breaker must not hit the network")
	}
}

func writeJSON(t *testing.T, path string, v interface{}) {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}
