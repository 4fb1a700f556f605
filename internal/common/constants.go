package common

import "time"

const (
	// Processing defaults
	DefaultPipeline     = "image"
	DefaultLevel        = "medium"
	MaxConcurrencyLimit = 8
	DefaultFileTimeout  = 2 * time.Minute

	// File operation constants
	DefaultFilePermissions = 0755
	OutputFilePermissions  = 0644
)
