package database

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"kleinpress/internal/common"
	"kleinpress/internal/compression"
)

// Database handles database operations
type Database struct {
	db *gorm.DB
}

// NewDatabase creates a new database instance
func NewDatabase(dbPath string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	database := &Database{db: db}

	// Auto-migrate the schema
	err = db.AutoMigrate(&UserPreferences{}, &RunRecord{})
	if err != nil {
		return nil, err
	}

	return database, nil
}

// Close releases the underlying connection pool.
func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// GetPreferences gets the current user preferences
func (d *Database) GetPreferences() (*UserPreferencesData, error) {
	prefs, err := d.getOrCreatePreferences()
	if err != nil {
		return nil, err
	}

	prefsData := prefs.GetPreferences()
	return &prefsData, nil
}

// UpdatePreferences updates user preferences
func (d *Database) UpdatePreferences(data map[string]interface{}) error {
	prefs, err := d.getOrCreatePreferences()
	if err != nil {
		return err
	}

	currentPrefs := prefs.GetPreferences()

	// Update fields from request data
	if val, ok := data["default_pipeline"]; ok {
		if name, ok := val.(string); ok {
			pipeline, err := compression.ParsePipeline(name)
			if err != nil {
				return err
			}
			currentPrefs.DefaultPipeline = pipeline.String()
		}
	}

	if val, ok := data["default_compression_level"]; ok {
		if name, ok := val.(string); ok {
			level, err := compression.ParseLevel(name)
			if err != nil {
				return err
			}
			currentPrefs.DefaultCompressionLevel = level.String()
		}
	}

	if val, ok := data["default_download_folder"]; ok {
		if folder, ok := val.(string); ok {
			currentPrefs.DefaultDownloadFolder = strings.TrimSpace(folder)
		}
	}

	if val, ok := data["auto_download_enabled"]; ok {
		if enabled, ok := val.(bool); ok {
			currentPrefs.AutoDownloadEnabled = enabled
		}
	}

	// Save updated preferences
	if err := prefs.SetPreferences(currentPrefs); err != nil {
		return err
	}

	return d.db.Save(prefs).Error
}

// RecordRun stores a finished run. An empty ID is filled in.
func (d *Database) RecordRun(record RunRecord) error {
	if record.ID == "" {
		record.ID = common.GenerateUUID()
	}
	if err := d.db.Create(&record).Error; err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (d *Database) RecentRuns(limit int) ([]RunRecord, error) {
	var runs []RunRecord
	err := d.db.Order("created_at desc").Limit(limit).Find(&runs).Error
	return runs, err
}

// Totals sums every recorded run.
func (d *Database) Totals() (Totals, error) {
	var totals Totals
	err := d.db.Model(&RunRecord{}).
		Select("COUNT(*) AS runs, COALESCE(SUM(file_count), 0) AS files, " +
			"COALESCE(SUM(original_bytes), 0) AS original_bytes, COALESCE(SUM(new_bytes), 0) AS new_bytes").
		Scan(&totals).Error
	return totals, err
}

// getOrCreatePreferences gets existing preferences or creates default ones
func (d *Database) getOrCreatePreferences() (*UserPreferences, error) {
	var prefs UserPreferences

	// Try to get existing preferences with ID = 1
	result := d.db.First(&prefs, 1)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			// Create default preferences
			prefs = UserPreferences{
				ID: 1,
			}

			defaultPrefs := DefaultPreferences()
			if err := prefs.SetPreferences(defaultPrefs); err != nil {
				return nil, err
			}

			if err := d.db.Create(&prefs).Error; err != nil {
				return nil, err
			}
		} else {
			return nil, result.Error
		}
	}

	return &prefs, nil
}
