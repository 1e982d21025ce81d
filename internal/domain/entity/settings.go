package entity

import (
	"time"
)

// Settings is the singleton app configuration row
type Settings struct {
	ID                 string
	SoundEnabled       bool
	VibrationEnabled   bool
	AutoScanEnabled    bool
	DesktopModeEnabled bool
	UpdatedAt          time.Time
}

// DefaultSettings returns the settings used before the user changes anything
func DefaultSettings() *Settings {
	return &Settings{
		ID:               "main",
		SoundEnabled:     true,
		VibrationEnabled: true,
		UpdatedAt:        time.Now(),
	}
}
