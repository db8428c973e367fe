package github

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("encode response: %v", err)
	}
}

func setRateHeaders(w http.ResponseWriter, remaining int, reset time.Time) {
	w.Header().Set("X-RateLimit-Limit", "60")
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))
}

// testServer serves handler and counts requests.
type testServer struct {
	*httptest.Server
	hits atomic.Int32
}

func newTestServer(t *testing.T, handler http.HandlerFunc) *testServer {
	t.Helper()
	ts := &testServer{}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ts.hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func newTestClient(ts *testServer, token string) *Client {
	return NewClient(Config{APIURL: ts.URL, Token: token}, Options{Logger: discardLogger()})
}

func sampleRepo(fullName string) Repository {
	return Repository{
		ID:       1,
		FullName: fullName,
		Name:     fullName,
		Stars:    10,
		Forks:    2,
		HTMLURL:  "https://github.com/" + fullName,
		Owner:    Owner{Login: "octocat", AvatarURL: "https://avatars.example/octocat"},
	}
}
