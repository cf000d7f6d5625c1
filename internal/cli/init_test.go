package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ppiankov/riskgate/internal/rulebase"
)

func TestRunInitRules_UserMode(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)

	initMode = "user"
	initForce = false

	if err := runInitRules(nil, nil); err != nil {
		t.Fatalf("runInitRules failed: %v", err)
	}

	path := filepath.Join(tmpDir, ".riskgate", "rules.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("rules.yaml not created: %v", err)
	}
	if !strings.HasPrefix(string(data), "# riskgate rule base") {
		t.Error("rules.yaml missing header comment")
	}

	// The written file must load as a valid, total rule base.
	rb, err := rulebase.Load(path)
	if err != nil {
		t.Fatalf("written rules.yaml does not load: %v", err)
	}
	if rb.Version() != rulebase.Default().Version() {
		t.Errorf("expected version %s, got %s", rulebase.Default().Version(), rb.Version())
	}
}

func TestRunInitRules_NoOverwriteWithoutForce(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)

	configDir := filepath.Join(tmpDir, ".riskgate")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		t.Fatal(err)
	}
	sentinel := "# sentinel content\n"
	path := filepath.Join(configDir, "rules.yaml")
	if err := os.WriteFile(path, []byte(sentinel), 0o644); err != nil {
		t.Fatal(err)
	}

	initMode = "user"
	initForce = false
	if err := runInitRules(nil, nil); err != nil {
		t.Fatalf("runInitRules failed: %v", err)
	}

	data, _ := os.ReadFile(path)
	if string(data) != sentinel {
		t.Error("rules.yaml was overwritten without --force")
	}

	initForce = true
	defer func() { initForce = false }()
	if err := runInitRules(nil, nil); err != nil {
		t.Fatalf("runInitRules --force failed: %v", err)
	}
	data, _ = os.ReadFile(path)
	if string(data) == sentinel {
		t.Error("rules.yaml was NOT overwritten with --force")
	}
}

func TestRunInitRules_InvalidMode(t *testing.T) {
	initMode = "invalid"
	defer func() { initMode = "user" }()

	err := runInitRules(nil, nil)
	if err == nil {
		t.Fatal("expected error for invalid mode")
	}
	if !strings.Contains(err.Error(), "unknown mode") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestInitConfigDir(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)
	defer func() { initMode = "user" }()

	tests := []struct {
		mode    string
		want    string
		wantErr bool
	}{
		{"user", filepath.Join(tmpDir, ".riskgate"), false},
		{"system", "/etc/riskgate", false},
		{"invalid", "", true},
	}

	for _, tt := range tests {
		initMode = tt.mode
		got, err := initConfigDir()
		if tt.wantErr {
			if err == nil {
				t.Errorf("mode=%q: expected error", tt.mode)
			}
			continue
		}
		if err != nil {
			t.Errorf("mode=%q: unexpected error: %v", tt.mode, err)
			continue
		}
		if got != tt.want {
			t.Errorf("mode=%q: got %q, want %q", tt.mode, got, tt.want)
		}
	}
}

func TestWriteIfMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "test.txt")
	defer func() { initForce = false }()

	initForce = false
	wrote, err := writeIfMissing(path, "hello")
	if err != nil || !wrote {
		t.Fatalf("first write: wrote=%v err=%v", wrote, err)
	}

	wrote, err = writeIfMissing(path, "world")
	if err != nil || wrote {
		t.Fatalf("second write without force: wrote=%v err=%v", wrote, err)
	}
	if data, _ := os.ReadFile(path); string(data) != "hello" {
		t.Errorf("content changed without force: %q", string(data))
	}

	initForce = true
	wrote, err = writeIfMissing(path, "world")
	if err != nil || !wrote {
		t.Fatalf("force write: wrote=%v err=%v", wrote, err)
	}
	if data, _ := os.ReadFile(path); string(data) != "world" {
		t.Errorf("force write didn't overwrite: %q", string(data))
	}
}
