package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/joho/godotenv"

	"github.com/nbjcoach/nbjfeedback/internal/usage"
	"github.com/nbjcoach/nbjfeedback/pkg/llm"
)

// isolateEnv clears the variables config.Load reads and points the data
// directory at a fresh temp dir.
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"NBJ_ADDR", "NBJ_PROFILE", "NBJ_UPSTREAM_TIMEOUT", "NBJ_USAGE_DB", "NBJ_MAX_BODY_BYTES",
		"OPENAI_API_KEY", "OPENAI_BASE_URL", "OPENAI_MODEL", "MAX_OUTPUT_TOKENS", "TEMPERATURE",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	t.Setenv("NBJ_DATA_DIR", t.TempDir())
}

// setAskFlags sets the ask flag variables and restores the defaults afterwards.
func setAskFlags(t *testing.T, profile, lang string, step int, notes, style string, durations []string, dryRun bool) {
	t.Helper()
	askProfile, askLanguage, askStep, askText, askNotes, askStyle, askDurations, askDryRun =
		profile, lang, step, "", notes, style, durations, dryRun
	t.Cleanup(func() {
		askProfile, askLanguage, askStep, askText, askNotes, askStyle, askDurations, askDryRun =
			"", "de", 1, "", "", "", nil, false
	})
}

func TestParseDurations(t *testing.T) {
	got, err := parseDurations([]string{"1=40", " 2 = 75.5 ", "end=3"})
	if err != nil {
		t.Fatalf("parseDurations: %v", err)
	}
	want := map[string]float64{"1": 40, "2": 75.5, "end": 3}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("parseDurations = %v; want %v", got, want)
	}

	if got, err := parseDurations(nil); err != nil || got != nil {
		t.Errorf("parseDurations(nil) = %v, %v", got, err)
	}

	for _, bad := range []string{"40", "=3", "1=abc"} {
		if _, err := parseDurations([]string{bad}); err == nil {
			t.Errorf("parseDurations(%q) should fail", bad)
		}
	}
}

func TestConfigSet_WritesFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("NBJ_DATA_DIR", dir)

	var out strings.Builder
	configSetCmd.SetOut(&out)
	if err := runConfigSet(configSetCmd, []string{"openai_api_key", "sk-abcdefghijkl"}); err != nil {
		t.Fatalf("runConfigSet: %v", err)
	}
	if err := runConfigSet(configSetCmd, []string{"OPENAI_MODEL", "gpt-4o"}); err != nil {
		t.Fatalf("runConfigSet: %v", err)
	}
	if strings.Contains(out.String(), "sk-abcdefghijkl") {
		t.Errorf("output leaks key: %s", out.String())
	}

	path := filepath.Join(dir, "config.env")
	values, err := godotenv.Read(path)
	if err != nil {
		t.Fatalf("reading config: %v", err)
	}
	if values["OPENAI_API_KEY"] != "sk-abcdefghijkl" || values["OPENAI_MODEL"] != "gpt-4o" {
		t.Errorf("unexpected config: %v", values)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("config mode = %v; want 0600", info.Mode().Perm())
	}

	if err := runConfigSet(configSetCmd, []string{"OPENAI_MODEL", ""}); err != nil {
		t.Fatalf("runConfigSet: %v", err)
	}
	values, _ = godotenv.Read(path)
	if _, ok := values["OPENAI_MODEL"]; ok {
		t.Error("empty value should remove the key")
	}
}

func TestConfigSet_RejectsUnknownKey(t *testing.T) {
	t.Setenv("NBJ_DATA_DIR", t.TempDir())
	if err := runConfigSet(configSetCmd, []string{"GITHUB_TOKEN", "x"}); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestStylesCommand(t *testing.T) {
	var out strings.Builder
	stylesCmd.SetOut(&out)
	if err := stylesCmd.RunE(stylesCmd, []string{"tone"}); err != nil {
		t.Fatalf("styles: %v", err)
	}
	for _, want := range []string{"tone", "* warm", "klar"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
	if err := stylesCmd.RunE(stylesCmd, []string{"nope"}); err == nil {
		t.Error("expected error for unknown profile")
	}
}

func TestAsk_DryRunPrintsResolvedRequest(t *testing.T) {
	isolateEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-dry-run-secret")
	setAskFlags(t, "reflection", "nb", 3, "Notiz", "BCC", []string{"2=75", "1=40"}, true)

	var out strings.Builder
	askCmd.SetOut(&out)
	if err := runAsk(askCmd, []string{"Ich bin müde"}); err != nil {
		t.Fatalf("runAsk: %v", err)
	}
	if strings.Contains(out.String(), "sk-dry-run-secret") {
		t.Fatalf("dry run leaks credential:\n%s", out.String())
	}

	var payload struct {
		Model     string        `json:"model"`
		Messages  []llm.Message `json:"messages"`
		MaxTokens int           `json:"max_tokens"`
	}
	if err := json.Unmarshal([]byte(out.String()), &payload); err != nil {
		t.Fatalf("decoding dry-run output: %v\n%s", err, out.String())
	}
	if payload.Model != "gpt-4o" || payload.MaxTokens != 700 {
		t.Errorf("model = %q, max_tokens = %d; want reflection defaults", payload.Model, payload.MaxTokens)
	}
	if len(payload.Messages) != 2 || payload.Messages[0].Role != llm.RoleSystem || payload.Messages[1].Role != llm.RoleUser {
		t.Fatalf("unexpected messages: %+v", payload.Messages)
	}
	if !strings.Contains(payload.Messages[0].Content, "Perspektive: bcc") {
		t.Errorf("system message missing resolved style:\n%s", payload.Messages[0].Content)
	}
	user := payload.Messages[1].Content
	for _, want := range []string{"NBJ-Schritt: 3", "Ich bin müde", "Notizen (Zusatzmaterial): Notiz", "Dauer pro Schritt (Sekunden): 1=40, 2=75"} {
		if !strings.Contains(user, want) {
			t.Errorf("user message missing %q:\n%s", want, user)
		}
	}
}

func TestAsk_SendsThroughTranslator(t *testing.T) {
	isolateEnv(t)
	var gotModel, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Model string `json:"model"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		gotModel, gotAuth = body.Model, r.Header.Get("Authorization")
		w.Write([]byte(`{"choices":[{"message":{"content":"Atme tief durch."}}]}`))
	}))
	defer srv.Close()

	t.Setenv("OPENAI_API_KEY", "sk-send")
	t.Setenv("OPENAI_BASE_URL", srv.URL)
	setAskFlags(t, "tone", "en", 1, "", "", nil, false)

	var out strings.Builder
	askCmd.SetOut(&out)
	if err := runAsk(askCmd, []string{"hello"}); err != nil {
		t.Fatalf("runAsk: %v", err)
	}
	if gotModel != "gpt-4o-mini" || gotAuth != "Bearer sk-send" {
		t.Errorf("upstream saw model %q auth %q", gotModel, gotAuth)
	}
	for _, want := range []string{"[tone · warm · en]", "Atme tief durch."} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestAsk_MissingCredential(t *testing.T) {
	isolateEnv(t)
	setAskFlags(t, "", "de", 1, "", "", nil, false)
	err := runAsk(askCmd, []string{"x"})
	if err == nil || !strings.Contains(err.Error(), "Missing OPENAI_API_KEY") {
		t.Fatalf("expected missing credential error, got %v", err)
	}
}

func TestUsageCommand(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "usage.db")

	st, err := usage.NewStore(path)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	ctx := context.Background()
	for _, e := range []*usage.Event{
		{Profile: "reflection", Language: "de", Step: 2, Style: "bcc", Model: "gpt-4o", Outcome: usage.OutcomeOK,
			Status: 200, Latency: 120 * time.Millisecond, PromptTokens: 10, CompletionTokens: 5},
		{Profile: "tone", Language: "en", Step: 1, Style: "warm", Model: "gpt-4o-mini", Outcome: usage.OutcomeFallback,
			Status: 200, Latency: 80 * time.Millisecond},
	} {
		if err := st.Record(ctx, e); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	st.Close()

	t.Setenv("NBJ_USAGE_DB", path)
	usageLimit = 20
	var out strings.Builder
	usageCmd.SetOut(&out)
	if err := runUsage(usageCmd, nil); err != nil {
		t.Fatalf("runUsage: %v", err)
	}
	for _, want := range []string{"Total: 2", "tokens: 15", "fallback", "reflection", "bcc", "PROFILE"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestUsageCommand_Disabled(t *testing.T) {
	isolateEnv(t)
	if err := runUsage(usageCmd, nil); err == nil || !strings.Contains(err.Error(), "NBJ_USAGE_DB") {
		t.Fatalf("expected disabled ledger error, got %v", err)
	}
}

func TestConfigSet_NarrowsExistingFilePermissions(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("NBJ_DATA_DIR", dir)
	path := filepath.Join(dir, "config.env")
	if err := os.WriteFile(path, []byte("OPENAI_MODEL=gpt-4o\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chmod(path, 0o644); err != nil {
		t.Fatal(err)
	}

	configSetCmd.SetOut(&strings.Builder{})
	if err := runConfigSet(configSetCmd, []string{"OPENAI_API_KEY", "sk-abcdefghijkl"}); err != nil {
		t.Fatalf("runConfigSet: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("config mode = %v; want 0600", info.Mode().Perm())
	}
	values, _ := godotenv.Read(path)
	if values["OPENAI_MODEL"] != "gpt-4o" || values["OPENAI_API_KEY"] != "sk-abcdefghijkl" {
		t.Errorf("unexpected config: %v", values)
	}
}
