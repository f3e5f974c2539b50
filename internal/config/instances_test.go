package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func testInstance(docID string, port int) Instance {
	return Instance{
		PID:       os.Getpid(),
		DocID:     docID,
		Path:      "/books/" + docID + ".pdf",
		Host:      "127.0.0.1",
		Port:      port,
		StartedAt: time.Now(),
	}
}

func TestRegisterAndListInstances(t *testing.T) {
	t.Setenv("FOLIO_HOME", t.TempDir())

	if err := RegisterInstance(testInstance("doc-1", 8790)); err != nil {
		t.Fatalf("RegisterInstance failed: %v", err)
	}

	instances, err := ListInstances()
	if err != nil {
		t.Fatalf("ListInstances failed: %v", err)
	}
	if len(instances) != 1 {
		t.Fatalf("Expected 1 instance, got %d", len(instances))
	}
	if instances[0].DocID != "doc-1" {
		t.Fatalf("Expected doc-1, got %q", instances[0].DocID)
	}
	if got := instances[0].URL(); got != "http://127.0.0.1:8790" {
		t.Fatalf("URL() = %q", got)
	}
}

func TestUnregisterInstance(t *testing.T) {
	t.Setenv("FOLIO_HOME", t.TempDir())

	if err := RegisterInstance(testInstance("doc-1", 8790)); err != nil {
		t.Fatalf("RegisterInstance failed: %v", err)
	}
	if err := UnregisterInstance(os.Getpid()); err != nil {
		t.Fatalf("UnregisterInstance failed: %v", err)
	}

	instances, err := ListInstances()
	if err != nil {
		t.Fatalf("ListInstances failed: %v", err)
	}
	if len(instances) != 0 {
		t.Fatalf("Expected 0 instances after unregister, got %d", len(instances))
	}
}

func TestStalePIDCleanup(t *testing.T) {
	t.Setenv("FOLIO_HOME", t.TempDir())

	inst := testInstance("gone", 8791)
	inst.PID = 999999999 // almost certainly not a real PID
	if err := RegisterInstance(inst); err != nil {
		t.Fatalf("RegisterInstance failed: %v", err)
	}

	instances, err := ListInstances()
	if err != nil {
		t.Fatalf("ListInstances failed: %v", err)
	}
	if len(instances) != 0 {
		t.Fatalf("Expected 0 instances after stale cleanup, got %d", len(instances))
	}
}

func TestRegisterReplacesSamePID(t *testing.T) {
	t.Setenv("FOLIO_HOME", t.TempDir())

	if err := RegisterInstance(testInstance("first", 8790)); err != nil {
		t.Fatal(err)
	}
	if err := RegisterInstance(testInstance("second", 8791)); err != nil {
		t.Fatal(err)
	}

	instances, err := ListInstances()
	if err != nil {
		t.Fatal(err)
	}
	if len(instances) != 1 || instances[0].DocID != "second" {
		t.Fatalf("Expected only the second registration, got %+v", instances)
	}
}

func TestFindInstanceByDoc(t *testing.T) {
	t.Setenv("FOLIO_HOME", t.TempDir())

	if err := RegisterInstance(testInstance("doc-1", 8790)); err != nil {
		t.Fatalf("RegisterInstance failed: %v", err)
	}

	found := FindInstanceByDoc("doc-1")
	if found == nil {
		t.Fatal("Expected to find instance for doc-1")
	}
	if found.Port != 8790 {
		t.Fatalf("Expected port 8790, got %d", found.Port)
	}
	if FindInstanceByDoc("doc-2") != nil {
		t.Fatal("Expected nil for unknown document")
	}
}

func TestInstancesFileCreation(t *testing.T) {
	home := t.TempDir()
	t.Setenv("FOLIO_HOME", home)

	if err := RegisterInstance(testInstance("doc-1", 8790)); err != nil {
		t.Fatalf("RegisterInstance failed: %v", err)
	}

	path := filepath.Join(home, "instances.json")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatalf("instances.json was not created at %s", path)
	}
}
