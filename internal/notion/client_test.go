package notion_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"notionbrainz/internal/notion"
	"notionbrainz/internal/services"
)

func newClient(t *testing.T, handler http.HandlerFunc) *notion.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := notion.New("secret_test",
		notion.WithBaseURL(server.URL),
		notion.WithSleeper(func(context.Context, time.Duration) error { return nil }))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return client
}

func decodeBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("decode body %q: %v", raw, err)
	}
	return body
}

func TestNewRequiresToken(t *testing.T) {
	if _, err := notion.New(""); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestSchemaMapsPropertyIDs(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret_test" || r.Header.Get("Notion-Version") != "2022-06-28" {
			t.Fatalf("missing headers: %v", r.Header)
		}
		_, _ = w.Write([]byte(`{"id":"db1","title":[{"plain_text":"Artists"}],"properties":{
			"Name":{"id":"title","name":"Name","type":"title"},
			"MBID":{"id":"W%5BxR","name":"MBID","type":"rich_text"}}}`))
	})
	schema, err := client.Schema(context.Background(), "db1")
	if err != nil {
		t.Fatalf("Schema returned error: %v", err)
	}
	if schema.TitleKey != "Name" {
		t.Fatalf("unexpected title key %q", schema.TitleKey)
	}
	for _, id := range []string{"W%5BxR", "W[xR"} {
		if key, ok := schema.Key(id); !ok || key != "MBID" {
			t.Fatalf("Key(%q) = %q,%v", id, key, ok)
		}
	}
	if _, ok := schema.Key("nope"); ok {
		t.Fatal("expected unknown id to miss")
	}
}

func TestQueryDatabasePaginates(t *testing.T) {
	calls := 0
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		body := decodeBody(t, r)
		switch calls {
		case 1:
			if _, ok := body["start_cursor"]; ok {
				t.Fatal("first request should not carry a cursor")
			}
			if body["filter"].(map[string]any)["property"] != "Name" {
				t.Fatalf("missing filter: %v", body)
			}
			_, _ = w.Write([]byte(`{"results":[{"id":"p1"}],"has_more":true,"next_cursor":"c2"}`))
		case 2:
			if body["start_cursor"] != "c2" {
				t.Fatalf("expected cursor c2, got %v", body["start_cursor"])
			}
			_, _ = w.Write([]byte(`{"results":[{"id":"p2"}],"has_more":false,"next_cursor":null}`))
		default:
			t.Fatalf("unexpected request %d", calls)
		}
	})
	pages, err := client.QueryDatabase(context.Background(), "db1", notion.Query{Filter: notion.TitleEquals("Name", "Radiohead")})
	if err != nil {
		t.Fatalf("QueryDatabase returned error: %v", err)
	}
	if len(pages) != 2 || pages[0].ID != "p1" || pages[1].ID != "p2" {
		t.Fatalf("unexpected pages %+v", pages)
	}
}

func TestRelationIDsFollowsCursor(t *testing.T) {
	calls := 0
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.Method != http.MethodGet || r.URL.Path != "/pages/page-1/properties/mb;id" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		switch calls {
		case 1:
			if r.URL.Query().Get("start_cursor") != "" {
				t.Fatal("first request should not carry a cursor")
			}
			_, _ = w.Write([]byte(`{"object":"list","results":[{"type":"relation","relation":{"id":"a"}},{"type":"relation","relation":{"id":"b"}}],"has_more":true,"next_cursor":"c2"}`))
		case 2:
			if got := r.URL.Query().Get("start_cursor"); got != "c2" {
				t.Fatalf("got cursor %q want %q", got, "c2")
			}
			_, _ = w.Write([]byte(`{"object":"list","results":[{"type":"relation","relation":{"id":"c"}}],"has_more":false,"next_cursor":null}`))
		default:
			t.Fatalf("unexpected request %d", calls)
		}
	})
	ids, err := client.RelationIDs(context.Background(), "page-1", "mb%3Bid")
	if err != nil {
		t.Fatalf("RelationIDs returned error: %v", err)
	}
	if len(ids) != 3 || ids[0] != "a" || ids[2] != "c" {
		t.Fatalf("got %v want [a b c]", ids)
	}
}

func TestQueryDatabaseLimitAndSort(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		body := decodeBody(t, r)
		if body["page_size"].(float64) != 1 {
			t.Fatalf("expected page_size 1, got %v", body["page_size"])
		}
		sorts := body["sorts"].([]any)
		if sorts[0].(map[string]any)["timestamp"] != "last_edited_time" {
			t.Fatalf("unexpected sorts %v", sorts)
		}
		_, _ = w.Write([]byte(`{"results":[{"id":"newest"}],"has_more":true,"next_cursor":"c"}`))
	})
	pages, err := client.QueryDatabase(context.Background(), "db1", notion.Query{Sorts: []notion.Sort{notion.LastEditedFirst()}, Limit: 1})
	if err != nil || len(pages) != 1 || pages[0].ID != "newest" {
		t.Fatalf("unexpected result %+v %v", pages, err)
	}
}

func TestCreatePageSendsCoverAndIcon(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/pages" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		body := decodeBody(t, r)
		if body["parent"].(map[string]any)["database_id"] != "db1" {
			t.Fatalf("unexpected parent %v", body["parent"])
		}
		if body["icon"].(map[string]any)["emoji"] != "💿" {
			t.Fatalf("unexpected icon %v", body["icon"])
		}
		cover := body["cover"].(map[string]any)["external"].(map[string]any)
		if cover["url"] != "http://img/front.jpg" {
			t.Fatalf("unexpected cover %v", cover)
		}
		props := body["properties"].(map[string]any)
		title := props["Name"].(map[string]any)["title"].([]any)[0].(map[string]any)["text"].(map[string]any)["content"]
		if title != "OK Computer" {
			t.Fatalf("unexpected title %v", title)
		}
		_, _ = w.Write([]byte(`{"id":"new-page"}`))
	})
	id, err := client.CreatePage(context.Background(), "db1",
		notion.Properties{"Name": notion.Title("OK Computer")},
		notion.PageOptions{CoverURL: "http://img/front.jpg", Icon: "💿"})
	if err != nil || id != "new-page" {
		t.Fatalf("CreatePage got %q %v", id, err)
	}
}

func TestUpdatePageRejectedIsWriteFailure(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"object":"error","status":400,"code":"validation_error","message":"bad select"}`))
	})
	err := client.UpdatePage(context.Background(), "p1", notion.Properties{"Type": notion.Select("Group")}, notion.PageOptions{})
	if !errors.Is(err, services.ErrWriteFailure) {
		t.Fatalf("expected write failure, got %v", err)
	}
}

func TestRateLimitedRequestIsRetried(t *testing.T) {
	calls := 0
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("Retry-After", "2")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"id":"p1","properties":{"Name":{"id":"title","type":"title","title":[{"plain_text":"Creep"}]}}}`))
	})
	page, err := client.Page(context.Background(), "p1")
	if err != nil {
		t.Fatalf("Page returned error: %v", err)
	}
	if page.Title() != "Creep" || calls != 2 {
		t.Fatalf("unexpected page %q after %d calls", page.Title(), calls)
	}
}

func TestUnauthorizedIsConfigurationError(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	if _, err := client.Database(context.Background(), "db1"); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
