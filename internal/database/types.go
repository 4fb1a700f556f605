package database

import (
	"encoding/json"
	"time"

	"kleinpress/internal/common"
)

// UserPreferences database model
type UserPreferences struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	PreferencesJSON string    `gorm:"type:text" json:"preferences_json"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// UserPreferencesData represents user preferences data
type UserPreferencesData struct {
	DefaultPipeline         string `json:"default_pipeline"`
	DefaultCompressionLevel string `json:"default_compression_level"`
	DefaultDownloadFolder   string `json:"default_download_folder"`
	AutoDownloadEnabled     bool   `json:"auto_download_enabled"`
}

// DefaultPreferences returns default user preferences
func DefaultPreferences() UserPreferencesData {
	return UserPreferencesData{
		DefaultPipeline:         common.DefaultPipeline,
		DefaultCompressionLevel: common.DefaultLevel,
		DefaultDownloadFolder:   "",
		AutoDownloadEnabled:     false,
	}
}

// GetPreferences returns the user preferences data
func (up *UserPreferences) GetPreferences() UserPreferencesData {
	if up.PreferencesJSON == "" {
		return DefaultPreferences()
	}

	prefs := DefaultPreferences()
	if err := json.Unmarshal([]byte(up.PreferencesJSON), &prefs); err != nil {
		return DefaultPreferences()
	}

	return prefs
}

// SetPreferences sets the user preferences data
func (up *UserPreferences) SetPreferences(prefs UserPreferencesData) error {
	data, err := json.Marshal(prefs)
	if err != nil {
		return err
	}

	up.PreferencesJSON = string(data)
	return nil
}

// RunRecord is one finished run, kept for lifetime statistics.
type RunRecord struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	Pipeline      string    `gorm:"index;size:16" json:"pipeline"`
	Level         string    `gorm:"size:16" json:"level"`
	FileCount     int       `json:"file_count"`
	FailedCount   int       `json:"failed_count"`
	OriginalBytes int64     `json:"original_bytes"`
	NewBytes      int64     `json:"new_bytes"`
	ResultName    string    `json:"result_name"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`
}

// Totals aggregates every recorded run.
type Totals struct {
	Runs          int64 `json:"runs"`
	Files         int64 `json:"files"`
	OriginalBytes int64 `json:"original_bytes"`
	NewBytes      int64 `json:"new_bytes"`
}

// Saved returns the bytes saved across all runs, never negative.
func (t Totals) Saved() int64 {
	return max(t.OriginalBytes-t.NewBytes, 0)
}
