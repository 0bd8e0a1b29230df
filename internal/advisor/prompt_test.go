package advisor

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func promptTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestAdvicePrompt_EmbedsQueryVerbatim(t *testing.T) {
	templates := DefaultTemplates()
	query := "deuteranopia, garden wedding"
	prompt := templates.AdvicePrompt(query)

	if !strings.Contains(prompt, "This is the user request: "+query) {
		t.Fatalf("prompt should embed the query verbatim:\n%s", prompt)
	}
	if strings.Contains(prompt, queryPlaceholder) {
		t.Fatal("placeholder should be replaced")
	}
	if !strings.Contains(prompt, "Makeup:") || !strings.Contains(prompt, "Outfit:") {
		t.Fatal("prompt should request both labeled sections")
	}
}

func TestLoadTemplates_MissingDir(t *testing.T) {
	templates := LoadTemplates(filepath.Join(t.TempDir(), "nope"), promptTestLogger())
	if templates.Welcome != DefaultTemplates().Welcome {
		t.Fatal("missing dir should yield defaults")
	}
}

func TestLoadTemplates_EmptyDirName(t *testing.T) {
	templates := LoadTemplates("", promptTestLogger())
	if templates.Apology == "" {
		t.Fatal("defaults should be complete")
	}
}

func TestLoadTemplates_PartialOverride(t *testing.T) {
	dir := t.TempDir()
	data := "welcome: \"Hi there!\"\n"
	if err := os.WriteFile(filepath.Join(dir, "custom.yaml"), []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	templates := LoadTemplates(dir, promptTestLogger())
	if templates.Welcome != "Hi there!" {
		t.Fatalf("expected override, got %q", templates.Welcome)
	}
	if templates.Apology != DefaultTemplates().Apology {
		t.Fatal("unset fields should keep defaults")
	}
}

func TestLoadTemplates_IgnoresMalformedFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte(":\t-not yaml"), 0o644); err != nil {
		t.Fatal(err)
	}

	templates := LoadTemplates(dir, promptTestLogger())
	if templates.Welcome != DefaultTemplates().Welcome {
		t.Fatal("malformed file should be skipped")
	}
}

func TestLoadTemplates_IgnoresNonYAML(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("welcome: nope"), 0o644); err != nil {
		t.Fatal(err)
	}

	templates := LoadTemplates(dir, promptTestLogger())
	if templates.Welcome != DefaultTemplates().Welcome {
		t.Fatal("non-yaml files should be ignored")
	}
}
