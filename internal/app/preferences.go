package app

import (
	"errors"

	"kleinpress/internal/database"
)

// GetPreferences gets the current user preferences
func (a *App) GetPreferences() (*database.UserPreferencesData, error) {
	if a.db == nil {
		return nil, errors.New("preferences unavailable")
	}
	return a.db.GetPreferences()
}

// UpdatePreferences updates user preferences
func (a *App) UpdatePreferences(data map[string]interface{}) error {
	if a.db == nil {
		return errors.New("preferences unavailable")
	}
	if err := a.db.UpdatePreferences(data); err != nil {
		a.logger.Error("Failed to update preferences", "error", err)
		return err
	}
	return nil
}
