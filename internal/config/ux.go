package config

import (
	"fmt"
	"time"
)

// UIConfig holds terminal interface configuration.
type UIConfig struct {
	// Theme is "auto", "light" or "dark".
	Theme string `yaml:"theme" json:"theme"`

	// CopyFeedback is how long the copied mark stays next to a field.
	CopyFeedback string `yaml:"copy_feedback" json:"copy_feedback"`

	// MaxColumnWidth caps a table column; longer cells are truncated in the grid only.
	MaxColumnWidth int `yaml:"max_column_width" json:"max_column_width"`
}

// DefaultUIConfig returns sensible UI defaults.
func DefaultUIConfig() *UIConfig {
	return &UIConfig{
		Theme:          "auto",
		CopyFeedback:   "2s",
		MaxColumnWidth: 32,
	}
}

// GetCopyFeedback returns CopyFeedback as a duration.
func (c *UIConfig) GetCopyFeedback() time.Duration {
	d, err := time.ParseDuration(c.CopyFeedback)
	if err != nil {
		return 2 * time.Second
	}
	return d
}

// Validate checks the UI values.
func (c *UIConfig) Validate() error {
	switch c.Theme {
	case "", "auto", "light", "dark":
	default:
		return fmt.Errorf("invalid ui.theme: %s (valid: auto, light, dark)", c.Theme)
	}
	if c.MaxColumnWidth < 4 {
		return fmt.Errorf("ui.max_column_width must be >= 4")
	}
	return nil
}
