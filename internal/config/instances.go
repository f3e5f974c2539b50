package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// Instance is a running reader that serves position events.
type Instance struct {
	PID       int       `json:"pid"`
	DocID     string    `json:"doc_id"`
	Path      string    `json:"path"`
	Host      string    `json:"host"`
	Port      int       `json:"port"`
	Auth      bool      `json:"auth,omitempty"` // a bearer token is required
	StartedAt time.Time `json:"started_at"`
}

// URL returns the base URL of the instance's event server.
func (i Instance) URL() string {
	return "http://" + ServerConfig{Host: i.Host, Port: i.Port}.Addr()
}

// instancesPath returns the path to the instances file.
func instancesPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "instances.json"), nil
}

// RegisterInstance adds a new instance entry, cleaning stale entries first.
// An existing entry with the same PID is replaced.
func RegisterInstance(inst Instance) error {
	path, err := instancesPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	instances, _ := readInstances(path)
	instances = cleanStale(instances)
	kept := instances[:0]
	for _, existing := range instances {
		if existing.PID != inst.PID {
			kept = append(kept, existing)
		}
	}
	kept = append(kept, inst)

	return writeInstances(path, kept)
}

// UnregisterInstance removes an instance by PID.
func UnregisterInstance(pid int) error {
	path, err := instancesPath()
	if err != nil {
		return err
	}

	instances, _ := readInstances(path)
	filtered := make([]Instance, 0, len(instances))
	for _, inst := range instances {
		if inst.PID != pid {
			filtered = append(filtered, inst)
		}
	}

	return writeInstances(path, filtered)
}

// ListInstances returns all live instances, newest first.
func ListInstances() ([]Instance, error) {
	path, err := instancesPath()
	if err != nil {
		return nil, err
	}

	instances, err := readInstances(path)
	if err != nil {
		return nil, err
	}

	live := cleanStale(instances)
	// Write back cleaned list if we removed any stale entries
	if len(live) != len(instances) {
		writeInstances(path, live)
	}

	sort.SliceStable(live, func(a, b int) bool {
		return live[a].StartedAt.After(live[b].StartedAt)
	})
	return live, nil
}

// FindInstanceByDoc returns the newest instance reading docID, or nil.
func FindInstanceByDoc(docID string) *Instance {
	instances, err := ListInstances()
	if err != nil {
		return nil
	}
	for _, inst := range instances {
		if inst.DocID == docID {
			return &inst
		}
	}
	return nil
}

func readInstances(path string) ([]Instance, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var instances []Instance
	if err := json.Unmarshal(data, &instances); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return instances, nil
}

func writeInstances(path string, instances []Instance) error {
	data, err := json.MarshalIndent(instances, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// cleanStale removes entries whose PID is no longer running.
func cleanStale(instances []Instance) []Instance {
	live := make([]Instance, 0, len(instances))
	for _, inst := range instances {
		if isProcessAlive(inst.PID) {
			live = append(live, inst)
		}
	}
	return live
}
