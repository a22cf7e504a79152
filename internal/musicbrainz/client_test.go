package musicbrainz_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"notionbrainz/internal/musicbrainz"
	"notionbrainz/internal/services"
)

const (
	radioheadID = "a74b1b7f-71a5-4011-9441-d0b5e4122711"
	okcID       = "b1392450-e666-3926-a536-22c65f834433"
)

type recordingSleeper struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *recordingSleeper) sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays = append(s.delays, d)
	return ctx.Err()
}

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...musicbrainz.Option) (*musicbrainz.Client, *recordingSleeper) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	sleeper := &recordingSleeper{}
	base := []musicbrainz.Option{
		musicbrainz.WithMinInterval(0),
		musicbrainz.WithSleeper(sleeper.sleep),
		musicbrainz.WithCoverArtURL(server.URL + "/caa"),
	}
	client, err := musicbrainz.New("notionbrainz-test/1.0 (test@example.com)", server.URL+"/ws/2", append(base, opts...)...)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return client, sleeper
}

func TestNewRequiresUserAgent(t *testing.T) {
	if _, err := musicbrainz.New(" ", ""); err == nil {
		t.Fatal("expected error when user agent missing")
	}
}

func TestSearchArtistsSendsQueryAndHeaders(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ws/2/artist" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("query") != "Radiohead" || q.Get("limit") != "5" || q.Get("fmt") != "json" {
			t.Fatalf("unexpected query %q", r.URL.RawQuery)
		}
		if !strings.HasPrefix(r.Header.Get("User-Agent"), "notionbrainz-test") {
			t.Fatalf("missing user agent header: %q", r.Header.Get("User-Agent"))
		}
		if r.Header.Get("Accept") != "application/json" {
			t.Fatalf("unexpected accept header %q", r.Header.Get("Accept"))
		}
		_, _ = w.Write([]byte(`{"artists":[{"id":"` + radioheadID + `","name":"Radiohead","score":100}]}`))
	})
	artists, err := client.SearchArtists(context.Background(), "Radiohead", 5)
	if err != nil {
		t.Fatalf("SearchArtists returned error: %v", err)
	}
	if len(artists) != 1 || artists[0].Name != "Radiohead" || artists[0].Score != 100 {
		t.Fatalf("unexpected artists: %#v", artists)
	}
}

func TestReleaseDetailIsMemoized(t *testing.T) {
	calls := 0
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if got := r.URL.Query().Get("inc"); !strings.Contains(got, "recordings") {
			t.Fatalf("expected recordings include, got %q", got)
		}
		_, _ = w.Write([]byte(`{"id":"` + okcID + `","title":"OK Computer","country":"GB",
			"release-group":{"primary-type":"Album","genres":[{"name":"alternative rock"}]},
			"media":[{"format":"CD","track-count":2,"tracks":[
				{"position":1,"recording":{"id":"r1","title":"Airbag"}},
				{"position":2,"recording":{"id":"r2","title":"Paranoid Android"}}]}]}`))
	})
	for i := 0; i < 2; i++ {
		release, err := client.Release(context.Background(), okcID)
		if err != nil {
			t.Fatalf("Release returned error: %v", err)
		}
		if pos, ok := release.TrackPosition("r2"); !ok || pos != 2 {
			t.Fatalf("unexpected track position %d %v", pos, ok)
		}
	}
	if calls != 1 {
		t.Fatalf("expected one request, got %d", calls)
	}
	client.Reset()
	if _, err := client.Release(context.Background(), okcID); err != nil {
		t.Fatalf("Release after reset: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected reset to force a refetch, got %d calls", calls)
	}
}

func TestDetailNotFoundIsTerminal(t *testing.T) {
	calls := 0
	client, sleeper := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.NotFound(w, r)
	})
	_, err := client.Artist(context.Background(), radioheadID)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if calls != 1 || len(sleeper.delays) != 0 {
		t.Fatalf("expected no retries, got %d calls and delays %v", calls, sleeper.delays)
	}
}

func TestInvalidIDSkipsNetwork(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("unexpected request %s", r.URL)
	})
	if _, err := client.Label(context.Background(), "not-a-uuid"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found for malformed id, got %v", err)
	}
}

func TestRetryScheduleFor429(t *testing.T) {
	calls := 0
	client, sleeper := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
	})
	_, err := client.SearchReleases(context.Background(), musicbrainz.ReleaseQuery("OK Computer", "Radiohead"), 10)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient error after retries, got %v", err)
	}
	if calls != 4 {
		t.Fatalf("expected 4 attempts, got %d", calls)
	}
	want := []time.Duration{2 * time.Second, 3 * time.Second, 5 * time.Second}
	if len(sleeper.delays) != len(want) {
		t.Fatalf("unexpected delays %v", sleeper.delays)
	}
	for i := range want {
		if sleeper.delays[i] != want[i] {
			t.Fatalf("delay %d: got %s want %s", i, sleeper.delays[i], want[i])
		}
	}
}

func TestRetryRecoversFromServerError(t *testing.T) {
	calls := 0
	client, sleeper := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"labels":[{"id":"l1","name":"Parlophone"}]}`))
	})
	labels, err := client.SearchLabels(context.Background(), "Parlophone", 5)
	if err != nil {
		t.Fatalf("SearchLabels returned error: %v", err)
	}
	if len(labels) != 1 || calls != 2 {
		t.Fatalf("unexpected result %v after %d calls", labels, calls)
	}
	if len(sleeper.delays) != 1 || sleeper.delays[0] != time.Second {
		t.Fatalf("unexpected delays %v", sleeper.delays)
	}
}

func TestCoverArtCachesMisses(t *testing.T) {
	calls := 0
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if !strings.HasPrefix(r.URL.Path, "/caa/release/") {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		http.NotFound(w, r)
	})
	for i := 0; i < 2; i++ {
		url, err := client.CoverArt(context.Background(), okcID)
		if err != nil || url != "" {
			t.Fatalf("expected empty cover, got %q %v", url, err)
		}
	}
	if calls != 1 {
		t.Fatalf("expected cached miss, got %d calls", calls)
	}
}

func TestCoverArtPicksFrontImage(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"images":[{"front":false,"image":"http://img/back.jpg"},{"front":true,"image":"http://img/front.jpg"}]}`))
	})
	url, err := client.CoverArt(context.Background(), okcID)
	if err != nil {
		t.Fatalf("CoverArt returned error: %v", err)
	}
	if url != "http://img/front.jpg" {
		t.Fatalf("got %q want %q", url, "http://img/front.jpg")
	}
}

func TestReleasesWithRecordingUsesBrowse(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("recording") != radioheadID {
			t.Fatalf("expected recording browse, got %q", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"releases":[{"id":"x","title":"Pablo Honey"}]}`))
	})
	releases, err := client.ReleasesWithRecording(context.Background(), radioheadID, 100)
	if err != nil || len(releases) != 1 {
		t.Fatalf("unexpected result %v %v", releases, err)
	}
}

func TestCanceledContextStopsRetries(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := client.SearchArtists(ctx, "Radiohead", 5); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled, got %v", err)
	}
}
