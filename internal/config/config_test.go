package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "osim.cfg")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadWithoutMemoryLine(t *testing.T) {
	path := writeTempConfig(t, "2 1 2\n0 progA 1\n5 progB\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.TimeSlot != 2 || cfg.NumCPUs != 1 || cfg.NumProcesses != 2 {
		t.Fatalf("header = %+v, want {TimeSlot:2 NumCPUs:1 NumProcesses:2}", cfg)
	}
	if cfg.Memory != nil {
		t.Fatalf("Memory = %+v, want nil", cfg.Memory)
	}
	if len(cfg.Processes) != 2 {
		t.Fatalf("len(Processes) = %d, want 2", len(cfg.Processes))
	}
	if cfg.Processes[0] != (Process{StartTick: 0, ProgBasename: "progA", Priority: 1}) {
		t.Fatalf("Processes[0] = %+v, want {0 progA 1}", cfg.Processes[0])
	}
	if cfg.Processes[1] != (Process{StartTick: 5, ProgBasename: "progB", Priority: 0}) {
		t.Fatalf("Processes[1] = %+v, want {5 progB 0} (priority defaults to 0)", cfg.Processes[1])
	}
}

func TestLoadWithMemoryLine(t *testing.T) {
	path := writeTempConfig(t, "# comment\n1 2 1\n4096 256 256 256 256\n\n0 progA\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Memory == nil {
		t.Fatal("Memory = nil, want a parsed memory line")
	}
	if cfg.Memory.RAMBytes != 4096 {
		t.Fatalf("RAMBytes = %d, want 4096", cfg.Memory.RAMBytes)
	}
	if cfg.Memory.SwapBytes != [4]int{256, 256, 256, 256} {
		t.Fatalf("SwapBytes = %v, want [256 256 256 256]", cfg.Memory.SwapBytes)
	}
	if len(cfg.Processes) != 1 {
		t.Fatalf("len(Processes) = %d, want 1", len(cfg.Processes))
	}
}

func TestLoadEmptyFileFails(t *testing.T) {
	path := writeTempConfig(t, "\n# only a comment\n")
	if _, err := Load(path); err == nil {
		t.Fatal("Load on an empty configuration should fail")
	}
}

func TestLoadBadHeaderFieldCount(t *testing.T) {
	path := writeTempConfig(t, "1 2\n")
	if _, err := Load(path); err == nil {
		t.Fatal("Load with a 2-field header should fail")
	}
}

func TestLoadBadHeaderInteger(t *testing.T) {
	path := writeTempConfig(t, "x 2 1\n0 progA\n")
	if _, err := Load(path); err == nil {
		t.Fatal("Load with a non-numeric time_slot should fail")
	}
}

func TestLoadProcessCountMismatch(t *testing.T) {
	path := writeTempConfig(t, "1 2 2\n0 progA\n")
	if _, err := Load(path); err == nil {
		t.Fatal("Load should fail when fewer process lines than num_processes are present")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "does-not-exist.cfg")); err == nil {
		t.Fatal("Load on a missing file should fail")
	}
}
