package workbook

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/prophecies/pkg/types"
)

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		backend string
		path    string
		create  bool
		wantErr error
	}{
		{name: "xlsx", backend: types.BackendXLSX, path: filepath.Join(dir, "book.xlsx"), create: true},
		{name: "sqlite", backend: types.BackendSQLite, path: filepath.Join(dir, "book.db"), create: true},
		{name: "memory", backend: types.BackendMemory},
		{name: "missing xlsx", backend: types.BackendXLSX, path: filepath.Join(dir, "missing.xlsx"), wantErr: types.ErrWorkbookUnavailable},
		{name: "missing sqlite", backend: types.BackendSQLite, path: filepath.Join(dir, "missing.db"), wantErr: types.ErrWorkbookUnavailable},
		{name: "no path", backend: types.BackendXLSX, wantErr: types.ErrWorkbookUnavailable},
		{name: "empty backend", backend: "", wantErr: types.ErrBackendEmpty},
		{name: "unknown backend", backend: "ods", wantErr: types.ErrBackendUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := types.DefaultConfig()
			cfg.Backend = tt.backend
			cfg.Workbook = tt.path
			if tt.create {
				created, err := Create(cfg)
				require.NoError(t, err)
				assert.True(t, created)
			}

			h, err := Open(cfg)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, h)
				return
			}
			require.NoError(t, err)
			defer h.Close()

			s, err := h.AddSheet("prophecies")
			require.NoError(t, err)
			require.NoError(t, s.SetCell(1, 1, "id"))
			require.NoError(t, h.Save())
		})
	}
}

func TestCreateNoop(t *testing.T) {
	cfg := types.DefaultConfig()
	created, err := Create(cfg)
	require.NoError(t, err)
	assert.False(t, created, "no workbook path")

	cfg.Backend = types.BackendMemory
	cfg.Workbook = filepath.Join(t.TempDir(), "ignored")
	created, err = Create(cfg)
	require.NoError(t, err)
	assert.False(t, created)
}
