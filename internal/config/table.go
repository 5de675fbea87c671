package config

import "fmt"

// TableConfig controls pagination of the table view.
type TableConfig struct {
	PageSize  int `yaml:"page_size" json:"page_size"`   // Rows per page
	BlockSize int `yaml:"block_size" json:"block_size"` // Page numbers shown per block
	FastJump  int `yaml:"fast_jump" json:"fast_jump"`   // Pages skipped by fast prev/next
}

// DefaultTableConfig returns the stock pagination settings.
func DefaultTableConfig() TableConfig {
	return TableConfig{
		PageSize:  50,
		BlockSize: 10,
		FastJump:  10,
	}
}

// ValidateTable checks that pagination values are usable.
func (c *Config) ValidateTable() error {
	if c.Table.PageSize < 1 {
		return fmt.Errorf("table.page_size must be >= 1")
	}
	if c.Table.BlockSize < 1 {
		return fmt.Errorf("table.block_size must be >= 1")
	}
	if c.Table.FastJump < 1 {
		return fmt.Errorf("table.fast_jump must be >= 1")
	}
	return nil
}
