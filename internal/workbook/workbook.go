// Package workbook opens the tabular surface selected by configuration.
package workbook

import (
	"fmt"

	"github.com/mesh-intelligence/prophecies/internal/tabular"
	"github.com/mesh-intelligence/prophecies/internal/workbook/memory"
	"github.com/mesh-intelligence/prophecies/internal/workbook/sqlite"
	"github.com/mesh-intelligence/prophecies/internal/workbook/xlsx"
	"github.com/mesh-intelligence/prophecies/pkg/types"
)

// Handle is an open workbook. Changes are kept until Save; Close releases
// the workbook without saving.
type Handle interface {
	tabular.Workbook
	Save() error
	Close() error
}

// Open opens the workbook named by cfg.Workbook with the cfg.Backend
// backend. The memory backend ignores the path and starts empty.
func Open(cfg types.Config) (Handle, error) {
	switch cfg.Backend {
	case types.BackendXLSX:
		wb, err := xlsx.Open(cfg.Workbook)
		if err != nil {
			return nil, err
		}
		return wb, nil
	case types.BackendSQLite:
		wb, err := sqlite.Open(cfg.Workbook)
		if err != nil {
			return nil, err
		}
		return wb, nil
	case types.BackendMemory:
		return memory.New(), nil
	case "":
		return nil, types.ErrBackendEmpty
	default:
		return nil, fmt.Errorf("%w: %q", types.ErrBackendUnknown, cfg.Backend)
	}
}

// Create makes an empty workbook at cfg.Workbook when none exists and
// reports whether one was created. It is a no-op for the memory backend
// and when no workbook path is configured.
func Create(cfg types.Config) (bool, error) {
	if cfg.Workbook == "" {
		return false, nil
	}
	switch cfg.Backend {
	case types.BackendXLSX:
		return xlsx.Create(cfg.Workbook)
	case types.BackendSQLite:
		return sqlite.Create(cfg.Workbook)
	case types.BackendMemory:
		return false, nil
	default:
		return false, fmt.Errorf("%w: %q", types.ErrBackendUnknown, cfg.Backend)
	}
}
