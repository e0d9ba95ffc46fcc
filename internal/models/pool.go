package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidPool is wrapped by pool and category validation failures.
var ErrInvalidPool = errors.New("invalid pool")

// PoolMode is presentational: it never changes the arithmetic.
type PoolMode string

const (
	PoolModeEquity  PoolMode = "equity"
	PoolModePhantom PoolMode = "phantom"
)

// ParsePoolMode maps a raw string onto a PoolMode.
func ParsePoolMode(raw string) (PoolMode, error) {
	switch m := PoolMode(strings.ToLower(strings.TrimSpace(raw))); m {
	case PoolModeEquity, PoolModePhantom:
		return m, nil
	default:
		return "", fmt.Errorf("%w: unknown mode %q", ErrInvalidPool, raw)
	}
}

// Pool is the slice of company equity reserved for contributors.
type Pool struct {
	// SizePercent is the total percentage distributed, e.g. 5.0 for 5%.
	SizePercent float64  `json:"poolSizePercent"`
	Mode        PoolMode `json:"mode"`
}

// CategoryCap is an advisory ceiling on the aggregate share of one category.
type CategoryCap struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	// MaxPercent is expressed in percentage points of the whole company,
	// the same unit as share percentages. It is compared, never enforced.
	MaxPercent float64 `json:"maxPercent"`
}

// Validate checks the category identity.
func (c CategoryCap) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("%w: category id is required", ErrInvalidPool)
	}
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: category %s has no name", ErrInvalidPool, c.ID)
	}
	return nil
}
