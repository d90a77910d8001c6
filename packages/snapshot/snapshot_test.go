package snapshot

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/abdul-hamid-achik/adminspec/packages/sonata"
)

var dashboardMenu = sonata.Menu{
	sonata.Leaf("Dashboard"),
	sonata.NewGroup("Analytics", sonata.Leaf("Reports"), sonata.Leaf("Funnels")),
}

func TestManager_Compare_NewSnapshot(t *testing.T) {
	tmpDir := t.TempDir()
	checkFile := filepath.Join(tmpDir, "admin.yaml")

	manager := NewManager(true)

	result := manager.Compare(checkFile, "dashboard", "", dashboardMenu)

	if !result.Passed {
		t.Errorf("expected passed to be true, got false: %s", result.Message)
	}
	if !result.IsNew {
		t.Error("expected IsNew to be true")
	}

	snapshotPath := filepath.Join(tmpDir, SnapshotDir, "admin.snap.json")
	data, err := os.ReadFile(snapshotPath)
	if err != nil {
		t.Fatalf("expected snapshot file to be created: %v", err)
	}
	if !strings.Contains(string(data), `"Analytics"`) {
		t.Errorf("snapshot file does not hold the menu: %s", data)
	}
}

func TestManager_Compare_ExistingSnapshot_Match(t *testing.T) {
	tmpDir := t.TempDir()
	checkFile := filepath.Join(tmpDir, "admin.yaml")

	result := NewManager(true).Compare(checkFile, "dashboard", "", dashboardMenu)
	if !result.Passed || !result.IsNew {
		t.Fatal("failed to create initial snapshot")
	}

	result = NewManager(false).Compare(checkFile, "dashboard", "", dashboardMenu)
	if !result.Passed {
		t.Errorf("expected match, got: %s", result.Message)
	}
}

func TestManager_Compare_ExistingSnapshot_Mismatch(t *testing.T) {
	tmpDir := t.TempDir()
	checkFile := filepath.Join(tmpDir, "admin.yaml")

	result := NewManager(true).Compare(checkFile, "dashboard", "", dashboardMenu)
	if !result.Passed || !result.IsNew {
		t.Fatal("failed to create initial snapshot")
	}

	reordered := sonata.Menu{
		sonata.NewGroup("Analytics", sonata.Leaf("Funnels"), sonata.Leaf("Reports")),
		sonata.Leaf("Dashboard"),
	}
	result = NewManager(false).Compare(checkFile, "dashboard", "", reordered)

	if result.Passed {
		t.Error("expected mismatch, got passed")
	}
	if result.Message != "snapshot mismatch" {
		t.Errorf("unexpected message: %s", result.Message)
	}
	if !strings.Contains(result.Diff, "--- snapshot") || !strings.Contains(result.Diff, "+++ page") {
		t.Errorf("diff is missing its headers:\n%s", result.Diff)
	}
}

func TestManager_Compare_UpdateExisting(t *testing.T) {
	tmpDir := t.TempDir()
	checkFile := filepath.Join(tmpDir, "admin.yaml")

	manager := NewManager(true)

	result := manager.Compare(checkFile, "dashboard", "", dashboardMenu)
	if !result.Passed || !result.IsNew {
		t.Fatal("failed to create initial snapshot")
	}

	result = manager.Compare(checkFile, "dashboard", "", sonata.Menu{sonata.Leaf("Dashboard")})
	if !result.Passed {
		t.Errorf("expected passed, got: %s", result.Message)
	}
	if !result.WasUpdated {
		t.Error("expected WasUpdated to be true")
	}

	result = NewManager(false).Compare(checkFile, "dashboard", "", sonata.Menu{sonata.Leaf("Dashboard")})
	if !result.Passed {
		t.Errorf("updated snapshot was not persisted: %s", result.Message)
	}
}

func TestManager_Compare_NoSnapshotNoUpdateMode(t *testing.T) {
	checkFile := filepath.Join(t.TempDir(), "admin.yaml")

	result := NewManager(false).Compare(checkFile, "dashboard", "", dashboardMenu)

	if result.Passed {
		t.Error("expected failure when no snapshot exists and update mode disabled")
	}
}

func TestManager_Compare_EmptyGroup(t *testing.T) {
	checkFile := filepath.Join(t.TempDir(), "admin.yaml")
	menu := sonata.Menu{sonata.Group{Name: "Empty"}}

	if result := NewManager(true).Compare(checkFile, "p", "", menu); !result.Passed {
		t.Fatalf("failed to create snapshot: %s", result.Message)
	}

	result := NewManager(false).Compare(checkFile, "p", "", sonata.Menu{sonata.NewGroup("Empty")})
	if !result.Passed {
		t.Errorf("nil and empty group lists should match: %s", result.Message)
	}

	result = NewManager(false).Compare(checkFile, "p", "", sonata.Menu{sonata.Leaf("Empty")})
	if result.Passed {
		t.Error("a leaf must not match an empty group")
	}
}

func TestManager_Compare_Parallel(t *testing.T) {
	checkFile := filepath.Join(t.TempDir(), "admin.yaml")
	manager := NewManager(true)

	var wg sync.WaitGroup
	for _, name := range []string{"a", "b", "c", "d"} {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			manager.Compare(checkFile, name, "", dashboardMenu)
		}(name)
	}
	wg.Wait()

	verify := NewManager(false)
	for _, name := range []string{"a", "b", "c", "d"} {
		if result := verify.Compare(checkFile, name, "", dashboardMenu); !result.Passed {
			t.Errorf("snapshot %q missing: %s", name, result.Message)
		}
	}
}

func TestManager_Compare_CorruptFile(t *testing.T) {
	tmpDir := t.TempDir()
	checkFile := filepath.Join(tmpDir, "admin.yaml")
	if err := os.MkdirAll(filepath.Join(tmpDir, SnapshotDir), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(FilePath(checkFile), []byte("{nope"), 0644); err != nil {
		t.Fatal(err)
	}

	result := NewManager(true).Compare(checkFile, "dashboard", "", dashboardMenu)
	if result.Passed {
		t.Error("expected failure for an unreadable snapshot file")
	}
	if !strings.HasPrefix(result.Message, "failed to load snapshots") {
		t.Errorf("unexpected message: %s", result.Message)
	}
}

func TestKey(t *testing.T) {
	tests := []struct {
		pageName string
		name     string
		expected string
	}{
		{"dashboard", "menu", "dashboard::menu"},
		{"dashboard", "", "dashboard"},
		{"", "menu", "::menu"},
	}

	for _, tt := range tests {
		if key := Key(tt.pageName, tt.name); key != tt.expected {
			t.Errorf("Key(%q, %q): got %q, expected %q", tt.pageName, tt.name, key, tt.expected)
		}
	}
}

func TestFilePath(t *testing.T) {
	got := FilePath(filepath.Join("checks", "admin.yaml"))
	expected := filepath.Join("checks", SnapshotDir, "admin.snap.json")
	if got != expected {
		t.Errorf("got %q, expected %q", got, expected)
	}
}
