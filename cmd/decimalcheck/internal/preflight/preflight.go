// Package preflight makes sure the directories decimalcheck writes to exist
// before any file is opened.
package preflight

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/thalib/decimalcheck/cmd/decimalcheck/internal/config"
	"github.com/thalib/decimalcheck/cmd/decimalcheck/internal/constants"
	"github.com/thalib/decimalcheck/cmd/decimalcheck/internal/database"
)

// DirCheck is a directory that must exist
type DirCheck struct {
	Path    string
	Purpose string
}

// CheckResult represents the result of a preflight check
type CheckResult struct {
	Path    string
	Purpose string
	Created bool
	Error   error
}

// ChecksFor returns the directories required by cfg: the parent of the log
// file and, for a file-backed SQLite audit store, the parent of the database.
func ChecksFor(cfg *config.AppConfig) []DirCheck {
	var checks []DirCheck

	if cfg.Logging.Path != "" {
		checks = append(checks, DirCheck{Path: filepath.Dir(cfg.Logging.Path), Purpose: "log file"})
	}

	if cfg.Audit.Enabled {
		if path, ok := database.SQLitePath(cfg.Audit.Connection); ok {
			checks = append(checks, DirCheck{Path: filepath.Dir(path), Purpose: "audit database"})
		}
	}

	return checks
}

// EnsureDirs creates missing directories. It returns results for all checks
// and the first error encountered.
func EnsureDirs(checks []DirCheck) ([]CheckResult, error) {
	results := make([]CheckResult, 0, len(checks))
	var firstErr error

	for _, check := range checks {
		result := CheckResult{Path: check.Path, Purpose: check.Purpose}

		info, err := os.Stat(check.Path)
		switch {
		case err == nil && !info.IsDir():
			result.Error = fmt.Errorf("%s path exists but is not a directory: %s", check.Purpose, check.Path)
		case err == nil:
		case os.IsNotExist(err):
			if err := os.MkdirAll(check.Path, constants.DirPermissions); err != nil {
				result.Error = fmt.Errorf("failed to create %s directory %s: %w", check.Purpose, check.Path, err)
			} else {
				result.Created = true
			}
		default:
			result.Error = fmt.Errorf("failed to check path %s: %w", check.Path, err)
		}

		if result.Error != nil && firstErr == nil {
			firstErr = result.Error
		}
		results = append(results, result)
	}

	return results, firstErr
}
