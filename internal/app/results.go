package app

import (
	"fmt"

	"kleinpress/internal/common"
)

// SaveResult writes the last result into dir without overwriting existing
// files. An empty dir uses the preferred download folder, then the
// configured output directory.
func (a *App) SaveResult(dir string) (string, error) {
	a.mu.Lock()
	result := a.lastResult
	a.mu.Unlock()
	if result == nil {
		return "", fmt.Errorf("nothing to save: run a compression first")
	}

	if dir == "" {
		if prefs, err := a.db.GetPreferences(); err == nil {
			dir = prefs.DefaultDownloadFolder
		}
	}
	if dir == "" && a.config != nil {
		dir = a.config.Paths.OutputDir
	}
	if dir == "" {
		return "", fmt.Errorf("no output folder configured")
	}

	path := common.UniquePath(dir, result.FileName)
	if err := common.WriteFile(path, result.Data); err != nil {
		return "", fmt.Errorf("save %s: %w", result.FileName, err)
	}
	a.logger.Info("Result saved", "path", path, "bytes", len(result.Data))
	return path, nil
}

// SaveResultAs asks for a destination and writes the last result there.
func (a *App) SaveResultAs() (string, error) {
	a.mu.Lock()
	result := a.lastResult
	a.mu.Unlock()
	if result == nil {
		return "", fmt.Errorf("nothing to save: run a compression first")
	}

	path, err := a.ShowSaveDialog(result.FileName)
	if err != nil || path == "" {
		return "", err
	}
	if err := common.WriteFile(path, result.Data); err != nil {
		return "", fmt.Errorf("save %s: %w", result.FileName, err)
	}
	return path, nil
}
