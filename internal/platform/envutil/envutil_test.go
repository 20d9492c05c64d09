package envutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDurationAcceptsSecondsAndGoSyntax(t *testing.T) {
	t.Setenv("TL_DUR_SECS", "90")
	if got := Duration("TL_DUR_SECS", time.Second); got != 90*time.Second {
		t.Fatalf("seconds: got=%s", got)
	}
	t.Setenv("TL_DUR_GO", "2m")
	if got := Duration("TL_DUR_GO", time.Second); got != 2*time.Minute {
		t.Fatalf("go syntax: got=%s", got)
	}
	t.Setenv("TL_DUR_BAD", "soon")
	if got := Duration("TL_DUR_BAD", 5*time.Second); got != 5*time.Second {
		t.Fatalf("fallback: got=%s", got)
	}
}

func TestBoolAndList(t *testing.T) {
	t.Setenv("TL_BOOL", "off")
	if Bool("TL_BOOL", true) {
		t.Fatalf("expected false")
	}
	if !Bool("TL_BOOL_UNSET", true) {
		t.Fatalf("expected default true")
	}
	t.Setenv("TL_LIST", " a, ,b ")
	got := List("TL_LIST", nil)
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("unexpected list: %#v", got)
	}
}

func TestLoadYAMLKeepsEnvironmentPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trustlens.yaml")
	body := "tl_yaml_port: 9090\nTL_YAML_SECRET: from-file\nTL_YAML_ORIGINS:\n  - http://a\n  - http://b\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("TL_YAML_SECRET", "from-env")
	t.Cleanup(func() {
		_ = os.Unsetenv("TL_YAML_PORT")
		_ = os.Unsetenv("TL_YAML_ORIGINS")
	})

	n, err := LoadYAML(path)
	if err != nil {
		t.Fatalf("LoadYAML: %v", err)
	}
	if n != 2 {
		t.Fatalf("applied: got=%d want=2", n)
	}
	if Int("TL_YAML_PORT", 0) != 9090 {
		t.Fatalf("port not applied")
	}
	if String("TL_YAML_SECRET", "") != "from-env" {
		t.Fatalf("environment overridden by file")
	}
	if got := List("TL_YAML_ORIGINS", nil); len(got) != 2 || got[1] != "http://b" {
		t.Fatalf("origins: %#v", got)
	}

	if n, err := LoadYAML(""); err != nil || n != 0 {
		t.Fatalf("empty path: n=%d err=%v", n, err)
	}
	if _, err := LoadYAML(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected missing file error")
	}
}
