// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// WorkerRegistry is the manifest of workers this service exposes to
// process designers. It is the source of truth for which task types
// exist, what they accept, and what BPMN error codes they can throw.
type WorkerRegistry struct {
	Version     string   `json:"version"`
	LastUpdated string   `json:"lastUpdated"`
	Workers     []Worker `json:"workers"`
}

type Worker struct {
	ID                   string                 `json:"id"`
	DisplayName          string                 `json:"displayName"`
	Description          string                 `json:"description"`
	Category             string                 `json:"category"`
	Version              string                 `json:"version"`
	TaskType             string                 `json:"taskType"`
	ImplementationStatus string                 `json:"implementationStatus"`
	InputSchema          map[string]interface{} `json:"inputSchema"`
	OutputSchema         map[string]interface{} `json:"outputSchema"`
	ErrorCodes           []string               `json:"errorCodes"`
	Timeout              string                 `json:"timeout"`
	Retries              int                    `json:"retries"`
	Workflows            []string               `json:"workflows"`
	Tags                 []string               `json:"tags"`
}

func Load(path string) (*WorkerRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg WorkerRegistry
	err = json.Unmarshal(data, &reg)
	return &reg, err
}

// Save writes the registry as indented JSON, creating parent
// directories as needed, and stamps LastUpdated.
func (r *WorkerRegistry) Save(path string) error {
	r.LastUpdated = time.Now().Format(time.RFC3339)

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}

// Find returns the worker with the given ID, or nil.
func (r *WorkerRegistry) Find(id string) *Worker {
	for i := range r.Workers {
		if r.Workers[i].ID == id {
			return &r.Workers[i]
		}
	}
	return nil
}

// Add appends a worker, rejecting duplicate IDs.
func (r *WorkerRegistry) Add(w Worker) error {
	if r.Find(w.ID) != nil {
		return fmt.Errorf("worker with ID %s already exists", w.ID)
	}
	r.Workers = append(r.Workers, w)
	return nil
}

// Validate checks the registry for duplicate IDs and missing required fields.
func (r *WorkerRegistry) Validate() error {
	if len(r.Workers) == 0 {
		return fmt.Errorf("registry contains no workers")
	}

	ids := make(map[string]bool)
	for _, w := range r.Workers {
		if w.ID == "" {
			return fmt.Errorf("worker missing required field: ID")
		}
		if ids[w.ID] {
			return fmt.Errorf("duplicate worker ID: %s", w.ID)
		}
		ids[w.ID] = true

		if w.DisplayName == "" {
			return fmt.Errorf("worker %s missing required field: DisplayName", w.ID)
		}
		if w.TaskType == "" {
			return fmt.Errorf("worker %s missing required field: TaskType", w.ID)
		}
		if w.Category == "" {
			return fmt.Errorf("worker %s missing required field: Category", w.ID)
		}
	}
	return nil
}
