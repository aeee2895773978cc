package saavn_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ewilliams-labs/moodify/internal/adapters/saavn"
	"github.com/ewilliams-labs/moodify/internal/core/domain"
	"github.com/ewilliams-labs/moodify/internal/core/ports"
)

// --- Helpers ---

func compareTracks(t *testing.T, got, want domain.Track) {
	t.Helper()

	if got.ID != want.ID {
		t.Errorf("ID: got %v, want %v", got.ID, want.ID)
	}
	if got.Title != want.Title {
		t.Errorf("Title: got %v, want %v", got.Title, want.Title)
	}
	if got.Artist != want.Artist {
		t.Errorf("Artist: got %v, want %v", got.Artist, want.Artist)
	}
	if got.ImageURL != want.ImageURL {
		t.Errorf("ImageURL: got %v, want %v", got.ImageURL, want.ImageURL)
	}
	if got.PageURL != want.PageURL {
		t.Errorf("PageURL: got %v, want %v", got.PageURL, want.PageURL)
	}
	if got.StreamURL != want.StreamURL {
		t.Errorf("StreamURL: got %v, want %v", got.StreamURL, want.StreamURL)
	}
	if got.DurationSeconds != want.DurationSeconds {
		t.Errorf("DurationSeconds: got %v, want %v", got.DurationSeconds, want.DurationSeconds)
	}
}

// catalogServer serves canned search and detail payloads and records the
// requests it saw.
type catalogServer struct {
	mu       sync.Mutex
	search   map[string]string // query -> body
	details  map[string]string // id -> body
	status   int
	queries  []string
	limits   []string
	detailed []string
}

func (s *catalogServer) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.status != 0 {
			w.WriteHeader(s.status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/search/songs":
			q := r.URL.Query().Get("query")
			s.queries = append(s.queries, q)
			s.limits = append(s.limits, r.URL.Query().Get("limit"))
			body, ok := s.search[q]
			if !ok {
				body = `{"success":true,"data":{"results":[]}}`
			}
			_, _ = w.Write([]byte(body))
		case strings.HasPrefix(r.URL.Path, "/songs/"):
			id := strings.TrimPrefix(r.URL.Path, "/songs/")
			s.detailed = append(s.detailed, id)
			body, ok := s.details[id]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			_, _ = w.Write([]byte(body))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func newCatalog(t *testing.T) (*catalogServer, *saavn.Client) {
	t.Helper()
	cs := &catalogServer{search: map[string]string{}, details: map[string]string{}}
	srv := httptest.NewServer(cs.handler())
	t.Cleanup(srv.Close)
	return cs, saavn.NewClient(srv.Client(), srv.URL)
}

func song(id, name, stream string) string {
	dl := `[]`
	if stream != "" {
		dl = `[{"quality":"96kbps","url":"` + stream + `-96"},{"quality":"320kbps","url":"` + stream + `"}]`
	}
	return `{"id":"` + id + `","name":"` + name + `","url":"https://www.jiosaavn.com/song/` + id + `","duration":200,` +
		`"artists":{"primary":[{"name":"Artist ` + id + `"}]},"image":[],"downloadUrl":` + dl + `}`
}

func results(songs ...string) string {
	return `{"success":true,"data":{"results":[` + strings.Join(songs, ",") + `]}}`
}

// --- Tests ---

func TestSearch_MapsResults(t *testing.T) {
	cs, client := newCatalog(t)
	cs.search["tum hi ho arijit"] = `{"success":true,"data":{"total":2,"results":[
		{"id":"abc","name":"Tum Hi Ho &amp; More","url":"https://www.jiosaavn.com/song/tum-hi-ho/abc","duration":"262",
		 "year":2013,"language":"hindi","album":{"name":"Aashiqui 2"},
		 "artists":{"primary":[{"name":"Arijit Singh"},{"name":"Mithoon"}]},
		 "image":[{"quality":"50x50","url":"https://img/50"},{"quality":"500x500","url":"https://img/500"}],
		 "downloadUrl":[{"quality":"12kbps","url":"https://aac/12"},{"quality":"320kbps","url":"https://aac/320"}]},
		{"id":"","name":"","artists":{"primary":[]},"image":[{"quality":"150x150","url":"https://img/150"}],"downloadUrl":[{"quality":"160kbps","url":"https://aac/160"}]}
	]}}`

	got, err := client.Search(context.Background(), "tum hi ho arijit", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 tracks, got %d", len(got))
	}
	compareTracks(t, got[0], domain.Track{
		ID:              "abc",
		Title:           "Tum Hi Ho & More",
		Artist:          "Arijit Singh, Mithoon",
		ImageURL:        "https://img/500",
		PageURL:         "https://www.jiosaavn.com/song/tum-hi-ho/abc",
		StreamURL:       "https://aac/320",
		DurationSeconds: 262,
	})
	if got[0].Quality != "320kbps" || got[0].Album != "Aashiqui 2" || got[0].Year != "2013" {
		t.Errorf("unexpected extra fields %+v", got[0])
	}
	compareTracks(t, got[1], domain.Track{
		Title:     domain.UnknownTitle,
		Artist:    domain.UnknownArtist,
		ImageURL:  "https://img/150",
		StreamURL: "https://aac/160",
	})
	if len(cs.detailed) != 0 {
		t.Fatalf("no detail fetch expected, got %v", cs.detailed)
	}
	if cs.limits[0] != "5" {
		t.Fatalf("expected limit=5, got %q", cs.limits[0])
	}
}

func TestSearch_DetailFetch(t *testing.T) {
	tests := []struct {
		name       string
		detail     string
		wantStream string
	}{
		{
			name:       "array payload prefers 320kbps",
			detail:     `{"success":true,"data":[{"id":"s1","downloadUrl":[{"quality":"48kbps","url":"https://aac/48"},{"quality":"320kbps","url":"https://aac/320"}]}]}`,
			wantStream: "https://aac/320",
		},
		{
			name:       "object payload falls back to first variant",
			detail:     `{"success":true,"data":{"id":"s1","downloadUrl":[{"quality":"96kbps","url":"https://aac/96"},{"quality":"160kbps","url":"https://aac/160"}]}}`,
			wantStream: "https://aac/96",
		},
		{
			name:       "detail without download urls",
			detail:     `{"success":true,"data":[{"id":"s1"}]}`,
			wantStream: "",
		},
		{
			name:       "unsuccessful detail envelope",
			detail:     `{"success":false,"message":"not found"}`,
			wantStream: "",
		},
		{
			name:       "detail request fails",
			detail:     "",
			wantStream: "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cs, client := newCatalog(t)
			cs.search["q"] = results(song("s1", "No Stream", ""), song("s2", "Has Stream", "https://aac/s2"))
			if tc.detail != "" {
				cs.details["s1"] = tc.detail
			}

			got, err := client.Search(context.Background(), "q", 2)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != 2 {
				t.Fatalf("expected batch of 2, got %d", len(got))
			}
			if got[0].StreamURL != tc.wantStream {
				t.Fatalf("StreamURL: got %q, want %q", got[0].StreamURL, tc.wantStream)
			}
			if got[1].StreamURL != "https://aac/s2" {
				t.Fatalf("second track should be unaffected, got %q", got[1].StreamURL)
			}
			if len(cs.detailed) != 1 || cs.detailed[0] != "s1" {
				t.Fatalf("expected exactly one detail fetch for s1, got %v", cs.detailed)
			}
		})
	}
}

func TestSearch_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "server error", status: http.StatusInternalServerError},
		{name: "unsuccessful envelope", body: `{"success":false,"data":null}`},
		{name: "malformed body", body: `{"success":true,"data":`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cs, client := newCatalog(t)
			cs.status = tc.status
			cs.search["q"] = tc.body

			got, err := client.Search(context.Background(), "q", 3)
			if !errors.Is(err, ports.ErrCatalogUnavailable) {
				t.Fatalf("expected ErrCatalogUnavailable, got %v", err)
			}
			if got == nil || len(got) != 0 {
				t.Fatalf("expected empty list, got %#v", got)
			}
		})
	}
}

func TestSearch_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	client := saavn.NewClient(&http.Client{Timeout: time.Second}, srv.URL)
	srv.Close()

	got, err := client.Search(context.Background(), "anything", 2)
	if !errors.Is(err, ports.ErrCatalogUnavailable) {
		t.Fatalf("expected ErrCatalogUnavailable, got %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no tracks, got %d", len(got))
	}
}

func TestSearchMood(t *testing.T) {
	cs, client := newCatalog(t)
	queries := domain.CatalogMoodQueries(domain.MoodSad)
	cs.search[queries[0]] = results(song("a", "A", "https://aac/a"), song("b", "B", ""))
	cs.search[queries[1]] = results(song("a", "A", "https://aac/a2"))
	cs.search[domain.GenericQuery] = results(song("a", "A", "https://aac/a3"), song("c", "C", "https://aac/c"), song("d", "D", "https://aac/d"))

	got := client.SearchMood(context.Background(), domain.MoodSad, 3)

	var titles []string
	for _, tr := range got {
		titles = append(titles, tr.Title)
		if tr.StreamURL == "" {
			t.Fatalf("unplayable track %q returned", tr.Title)
		}
	}
	if strings.Join(titles, ",") != "A,C,D" {
		t.Fatalf("expected A,C,D got %v", titles)
	}
	wantQueries := append(append([]string{}, queries...), domain.GenericQuery)
	if strings.Join(cs.queries, "|") != strings.Join(wantQueries, "|") {
		t.Fatalf("unexpected query sequence %v", cs.queries)
	}
	for _, l := range cs.limits {
		if l != "6" {
			t.Fatalf("expected limit=6 (twice the request), got %q", l)
		}
	}
}

func TestSearchMood_CatalogDown(t *testing.T) {
	cs, client := newCatalog(t)
	cs.status = http.StatusBadGateway

	if got := client.SearchMood(context.Background(), domain.MoodHappy, 4); len(got) != 0 {
		t.Fatalf("expected no tracks, got %v", got)
	}
}

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	var mu sync.Mutex
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		hits++
		mu.Unlock()
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := saavn.NewClient(srv.Client(), srv.URL, saavn.WithBreaker(saavn.BreakerConfig{
		Name:        "test-breaker-open",
		MaxFailures: 2,
		OpenTimeout: time.Minute,
	}))

	for i := 0; i < 5; i++ {
		if _, err := client.Search(context.Background(), "q", 1); !errors.Is(err, ports.ErrCatalogUnavailable) {
			t.Fatalf("call %d: expected ErrCatalogUnavailable, got %v", i, err)
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if hits != 2 {
		t.Fatalf("expected breaker to stop traffic after 2 failures, server saw %d", hits)
	}
}

func TestBreaker_IgnoresClientErrors(t *testing.T) {
	var mu sync.Mutex
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		hits++
		mu.Unlock()
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := saavn.NewClient(srv.Client(), srv.URL, saavn.WithBreaker(saavn.BreakerConfig{
		Name:        "test-breaker-4xx",
		MaxFailures: 2,
	}))
	for i := 0; i < 4; i++ {
		_, _ = client.Search(context.Background(), "q", 1)
	}

	mu.Lock()
	defer mu.Unlock()
	if hits != 4 {
		t.Fatalf("expected every request to reach the server, got %d", hits)
	}
}

func TestBreaker_IgnoresCallerCancellation(t *testing.T) {
	var mu sync.Mutex
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits++
		mu.Unlock()
		if r.URL.Query().Get("query") == "slow" {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(results(song("1", "Song One", "https://cdn.test/1.mp4"))))
	}))
	defer srv.Close()

	client := saavn.NewClient(srv.Client(), srv.URL, saavn.WithBreaker(saavn.BreakerConfig{
		Name:        "test-breaker-cancel",
		MaxFailures: 2,
		OpenTimeout: time.Minute,
	}))

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	for i := 0; i < 5; i++ {
		if _, err := client.Search(cancelled, "q", 1); !errors.Is(err, context.Canceled) {
			t.Fatalf("call %d: expected context.Canceled, got %v", i, err)
		}
	}

	for i := 0; i < 3; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		_, err := client.Search(ctx, "slow", 1)
		cancel()
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("slow call %d: expected context.DeadlineExceeded, got %v", i, err)
		}
	}

	tracks, err := client.Search(context.Background(), "q", 1)
	if err != nil {
		t.Fatalf("expected healthy catalog to answer, got %v", err)
	}
	if len(tracks) != 1 {
		t.Fatalf("expected 1 track, got %d", len(tracks))
	}

	mu.Lock()
	defer mu.Unlock()
	if hits != 4 {
		t.Fatalf("expected cancelled calls to skip the server and slow calls to reach it, server saw %d", hits)
	}
}

func TestNewHTTPClient_OAuth(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil || r.Form.Get("grant_type") != "client_credentials" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok-123","token_type":"bearer","expires_in":3600}`))
	}))
	defer tokenSrv.Close()

	var gotAuth string
	apiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"success":true,"data":{"results":[]}}`))
	}))
	defer apiSrv.Close()

	hc := saavn.NewHTTPClient(context.Background(), 5*time.Second, saavn.OAuthConfig{
		TokenURL:     tokenSrv.URL,
		ClientID:     "id",
		ClientSecret: "secret",
	})
	client := saavn.NewClient(hc, apiSrv.URL)
	if _, err := client.Search(context.Background(), "q", 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "Bearer tok-123" {
		t.Fatalf("expected bearer token, got %q", gotAuth)
	}
}

func TestNewHTTPClient_NoOAuth(t *testing.T) {
	hc := saavn.NewHTTPClient(context.Background(), 3*time.Second, saavn.OAuthConfig{})
	if hc.Timeout != 3*time.Second {
		t.Fatalf("expected timeout to be set, got %v", hc.Timeout)
	}
	if hc.Transport != nil {
		t.Fatalf("expected default transport without oauth")
	}
}
