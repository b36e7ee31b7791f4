// pkg/registry/registry_test.go
package registry

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRegistry() *WorkerRegistry {
	return &WorkerRegistry{
		Version: "1.0.0",
		Workers: []Worker{
			{
				ID:          "rate-student",
				DisplayName: "Rate Student",
				Description: "Scores a student profile on the 0-100 scale",
				Category:    "scoring",
				TaskType:    "rate-student",
			},
			{
				ID:          "rate-college",
				DisplayName: "Rate College",
				Description: "Scores a college on the 0-100 scale",
				Category:    "scoring",
				TaskType:    "rate-college",
			},
		},
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "configs", "worker-registry.json")

	reg := sampleRegistry()
	require.NoError(t, reg.Save(path))
	assert.NotEmpty(t, reg.LastUpdated)

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", loaded.Version)
	require.Len(t, loaded.Workers, 2)
	assert.Equal(t, "rate-student", loaded.Workers[0].TaskType)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestAddRejectsDuplicateID(t *testing.T) {
	reg := sampleRegistry()

	err := reg.Add(Worker{ID: "rate-student", DisplayName: "Duplicate", Category: "scoring", TaskType: "rate-student"})
	assert.Error(t, err)

	err = reg.Add(Worker{ID: "admission-odds", DisplayName: "Admission Odds", Category: "scoring", TaskType: "admission-odds"})
	assert.NoError(t, err)
	assert.NotNil(t, reg.Find("admission-odds"))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*WorkerRegistry)
		wantErr string
	}{
		{
			name:   "valid registry passes",
			mutate: func(r *WorkerRegistry) {},
		},
		{
			name:    "empty registry fails",
			mutate:  func(r *WorkerRegistry) { r.Workers = nil },
			wantErr: "no workers",
		},
		{
			name: "duplicate IDs fail",
			mutate: func(r *WorkerRegistry) {
				r.Workers = append(r.Workers, r.Workers[0])
			},
			wantErr: "duplicate worker ID",
		},
		{
			name: "missing task type fails",
			mutate: func(r *WorkerRegistry) {
				r.Workers[1].TaskType = ""
			},
			wantErr: "missing required field: TaskType",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := sampleRegistry()
			tt.mutate(reg)

			err := reg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
