// Package snapshot stores extracted sidebar menus next to the check files
// that reference them and compares later runs against the stored copy.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/abdul-hamid-achik/adminspec/packages/sonata"
	"github.com/pmezard/go-difflib/difflib"
)

const (
	// SnapshotDir is the directory name for storing snapshots
	SnapshotDir = "__snapshots__"
	// SnapshotExt is the file extension for snapshot files
	SnapshotExt = ".snap.json"
)

// Manager handles snapshot storage and comparison. It is safe for use by
// pages running in parallel.
type Manager struct {
	updateMode bool

	mu    sync.Mutex
	files map[string]map[string]sonata.Menu // snapshot file -> {key -> menu}
}

// NewManager creates a new snapshot manager. In update mode missing or
// mismatching snapshots are written instead of failing.
func NewManager(updateMode bool) *Manager {
	return &Manager{
		updateMode: updateMode,
		files:      make(map[string]map[string]sonata.Menu),
	}
}

// Result represents the result of a snapshot comparison.
type Result struct {
	Passed     bool
	Message    string
	Expected   sonata.Menu
	Actual     sonata.Menu
	Diff       string
	IsNew      bool
	WasUpdated bool
}

// Compare compares actual against the snapshot stored under pageName and
// name for checkFile.
func (m *Manager) Compare(checkFile, pageName, name string, actual sonata.Menu) *Result {
	result := &Result{Actual: actual}

	m.mu.Lock()
	defer m.mu.Unlock()

	path := FilePath(checkFile)
	key := Key(pageName, name)

	snapshots, err := m.load(path)
	if err != nil {
		result.Message = fmt.Sprintf("failed to load snapshots: %v", err)
		return result
	}

	expected, exists := snapshots[key]
	if !exists {
		if !m.updateMode {
			result.Message = "snapshot does not exist (run with --update-snapshots to create)"
			return result
		}
		snapshots[key] = actual
		if err := m.save(path, snapshots); err != nil {
			result.Message = fmt.Sprintf("failed to save snapshot: %v", err)
			return result
		}
		result.Passed = true
		result.IsNew = true
		result.Expected = actual
		result.Message = "new snapshot created"
		return result
	}

	result.Expected = expected
	if equal(expected, actual) {
		result.Passed = true
		return result
	}

	if m.updateMode {
		snapshots[key] = actual
		if err := m.save(path, snapshots); err != nil {
			result.Message = fmt.Sprintf("failed to update snapshot: %v", err)
			return result
		}
		result.Passed = true
		result.WasUpdated = true
		result.Message = "snapshot updated"
		return result
	}

	result.Diff = Diff(expected, actual)
	result.Message = "snapshot mismatch"
	return result
}

// FilePath returns the snapshot file for a check file:
// checks/admin.yaml -> checks/__snapshots__/admin.snap.json.
func FilePath(checkFile string) string {
	dir := filepath.Dir(checkFile)
	base := filepath.Base(checkFile)
	name := strings.TrimSuffix(base, filepath.Ext(base))

	return filepath.Join(dir, SnapshotDir, name+SnapshotExt)
}

// Key names a snapshot inside its file.
func Key(pageName, name string) string {
	if name == "" {
		return pageName
	}
	return pageName + "::" + name
}

// Diff renders a unified diff of the two menus' tree forms.
func Diff(expected, actual sonata.Menu) string {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(expected.String() + "\n"),
		B:        difflib.SplitLines(actual.String() + "\n"),
		FromFile: "snapshot",
		ToFile:   "page",
		Context:  2,
	})
	if err != nil {
		return ""
	}
	return diff
}

func (m *Manager) load(path string) (map[string]sonata.Menu, error) {
	if cached, ok := m.files[path]; ok {
		return cached, nil
	}

	snapshots := make(map[string]sonata.Menu)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			m.files[path] = snapshots
			return snapshots, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, &snapshots); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	m.files[path] = snapshots
	return snapshots, nil
}

func (m *Manager) save(path string, snapshots map[string]sonata.Menu) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(snapshots, "", "  ")
	if err != nil {
		return err
	}

	m.files[path] = snapshots
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// equal compares the serialized forms, so a nil and an empty group list
// are the same menu.
func equal(a, b sonata.Menu) bool {
	aJSON, errA := json.Marshal(a)
	bJSON, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return string(aJSON) == string(bJSON)
}
