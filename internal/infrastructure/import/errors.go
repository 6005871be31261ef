package csvimport

import (
	"errors"
	"fmt"
)

// Common import errors
var (
	ErrEmptyFile       = errors.New("CSV file is empty")
	ErrInvalidEncoding = errors.New("file is not valid UTF-8")
	ErrMissingHeader   = errors.New("CSV file missing header row")
	ErrDuplicateHeader = errors.New("duplicate column")
	ErrNoDataRows      = errors.New("CSV file contains no data rows")
	ErrTooManyRows     = errors.New("too many rows")
)

// RowError represents an error in a specific row
type RowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column,omitempty"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

// Error implements the error interface
func (e RowError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("row %d, column '%s': %s", e.Row, e.Column, e.Message)
	}
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

// RowErrors collects row errors up to a limit
type RowErrors struct {
	max    int
	errors []RowError
	total  int
}

// NewRowErrors creates a collector keeping at most max errors; zero keeps all
func NewRowErrors(max int) *RowErrors {
	return &RowErrors{max: max}
}

// Add records an error, counting it even when the list is full
func (c *RowErrors) Add(e RowError) {
	c.total++
	if c.max > 0 && len(c.errors) >= c.max {
		return
	}
	c.errors = append(c.errors, e)
}

// List returns the kept errors
func (c *RowErrors) List() []RowError {
	return c.errors
}

// Total counts every error added, kept or not
func (c *RowErrors) Total() int {
	return c.total
}

// Truncated reports whether errors were dropped
func (c *RowErrors) Truncated() bool {
	return c.total > len(c.errors)
}
