package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"notionbrainz/internal/config"
	"notionbrainz/internal/history"
	"notionbrainz/internal/testsupport"
)

const testLabelMBID = "9e6b4d7f-4958-4db7-8504-d89e315836af"

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	notion     *fakeNotion
}

// fakeNotion serves one labels database holding a single page.
type fakeNotion struct {
	mu      sync.Mutex
	patches int
	mbid    string
}

func (f *fakeNotion) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/databases/labels-db":
		fmt.Fprint(w, `{"id":"labels-db","title":[{"plain_text":"Labels"}],"properties":{
			"Name":{"id":"title","name":"Name","type":"title"},
			"MBID":{"id":"mb%3Bid","name":"MBID","type":"rich_text"},
			"Country":{"id":"ctry","name":"Country","type":"select"}}}`)
	case r.Method == http.MethodPost && r.URL.Path == "/databases/labels-db/query":
		page := map[string]any{
			"id":               "page-1",
			"last_edited_time": "2024-05-01T10:00:00.000Z",
			"properties": map[string]any{
				"Name": map[string]any{"id": "title", "type": "title", "title": []map[string]string{{"plain_text": "Parlophone"}}},
				"MBID": map[string]any{"id": "mb%3Bid", "type": "rich_text", "rich_text": []map[string]string{{"plain_text": f.mbid}}},
			},
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"results": []any{page}, "has_more": false})
	case r.Method == http.MethodPatch && strings.HasPrefix(r.URL.Path, "/pages/"):
		f.mu.Lock()
		f.patches++
		f.mu.Unlock()
		fmt.Fprint(w, `{"id":"page-1"}`)
	default:
		http.NotFound(w, r)
	}
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	fake := &fakeNotion{mbid: testLabelMBID}
	notionServer := httptest.NewServer(fake)
	t.Cleanup(notionServer.Close)

	mbServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/label/"+testLabelMBID {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"id":%q,"name":"Parlophone","country":"GB"}`, testLabelMBID)
	}))
	t.Cleanup(mbServer.Close)

	cfg := testsupport.NewConfig(t,
		testsupport.WithNotionURL(notionServer.URL),
		testsupport.WithMusicBrainzURL(mbServer.URL),
		testsupport.WithDatabase(config.KindLabels, "labels-db"),
		testsupport.WithField(config.KindLabels, config.FieldMusicBrainzID, "mb;id"),
		testsupport.WithField(config.KindLabels, config.FieldCountry, "ctry"),
	)
	return &cliTestEnv{
		cfg:        cfg,
		configPath: testsupport.WriteConfig(t, cfg),
		notion:     fake,
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q, got:\n%s", needle, haystack)
	}
}

func TestSyncSkipsLinkedPageAndRecordsHistory(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"sync", "--database", "labels"}, env.configPath)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	requireContains(t, out, "completed")
	requireContains(t, out, "labels")
	if env.notion.patches != 0 {
		t.Fatalf("expected no page updates for a linked page, got %d", env.notion.patches)
	}

	out, _, err = runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "completed")
	requireContains(t, out, "labels")

	if _, err := os.Stat(env.cfg.HistoryPath()); err != nil {
		t.Fatalf("expected ledger file: %v", err)
	}
}

func TestRootCommandRunsSync(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"--database", "labels", "--force-all"}, env.configPath)
	if err != nil {
		t.Fatalf("root sync: %v", err)
	}
	requireContains(t, out, "completed")
	if env.notion.patches != 1 {
		t.Fatalf("expected one page update with --force-all, got %d", env.notion.patches)
	}
}

func TestSyncRejectsUnknownDatabase(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"sync", "--database", "playlists"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "invalid database") {
		t.Fatalf("expected invalid database error, got %v", err)
	}
}

func TestPropertiesListsMappedFields(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"properties", "--database", "labels"}, env.configPath)
	if err != nil {
		t.Fatalf("properties: %v", err)
	}
	requireContains(t, out, "labels (Labels)")
	requireContains(t, out, "mb%3Bid")
	requireContains(t, out, "musicbrainz_id")
	requireContains(t, out, "country")
}

func TestHistoryShowPrintsOutcomes(t *testing.T) {
	env := setupCLITestEnv(t)
	ledger := testsupport.MustOpenHistory(t, env.cfg)
	testsupport.SeedRun(t, ledger, history.Run{ID: "0f1e2d3c-aaaa-bbbb-cccc-000000000001", Database: "albums"},
		history.Outcome{Kind: "albums", PageID: "p1", Title: "OK Computer", Status: history.OutcomeSuccess, MBID: "b1392450-e666-3926-a536-22c65f834433"},
		history.Outcome{Kind: "albums", PageID: "p2", Title: "Unknown Demo", Status: history.OutcomeFailed, Reason: "no_exact_match"},
	)
	ledger.Close()

	out, _, err := runCLI(t, []string{"history", "show", "0f1e2d3c"}, env.configPath)
	if err != nil {
		t.Fatalf("history show: %v", err)
	}
	requireContains(t, out, "0f1e2d3c-aaaa-bbbb-cccc-000000000001")
	requireContains(t, out, "OK Computer")
	requireContains(t, out, "no_exact_match")
	requireContains(t, out, "completed")
}

func TestHistoryShowUnknownRun(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"history", "show", "does-not-exist"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, "Database labels:  yes")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected error when config already exists")
	}
}

func TestConfigShowMasksToken(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if strings.Contains(out, "secret_test") {
		t.Fatalf("token leaked in config show output:\n%s", out)
	}
	requireContains(t, out, "labels-db")
}
