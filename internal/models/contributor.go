package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidContributor is wrapped by every Contributor validation failure.
var ErrInvalidContributor = errors.New("invalid contributor")

// ContributionType determines how a contributor's economic value is computed.
type ContributionType string

const (
	// ContributionHours is hourly work: quantity hours at valueUnit per hour.
	ContributionHours ContributionType = "hours"
	// ContributionDelivery is a fixed-fee delivery: quantity units at valueUnit each.
	ContributionDelivery ContributionType = "delivery"
	// ContributionCapital is cash: quantity is the amount, valueUnit and weight are ignored.
	ContributionCapital ContributionType = "capital"
)

// ParseContributionType maps a raw string onto a ContributionType.
func ParseContributionType(raw string) (ContributionType, error) {
	switch t := ContributionType(strings.ToLower(strings.TrimSpace(raw))); t {
	case ContributionHours, ContributionDelivery, ContributionCapital:
		return t, nil
	default:
		return "", fmt.Errorf("%w: unknown contribution type %q", ErrInvalidContributor, raw)
	}
}

// Contributor is one participant of the equity pool.
type Contributor struct {
	// ID is the unique identifier. Sequential numeric strings ("1", "2", ...)
	// for seeded and newly added contributors.
	ID string `json:"id"`

	// Name is the display label.
	Name string `json:"name"`

	// Category references CategoryCap.ID.
	Category string `json:"category"`

	// Type selects the economic value formula.
	Type ContributionType `json:"type"`

	// Quantity is hours worked, delivery units or the capital amount.
	Quantity float64 `json:"quantity"`

	// ValueUnit is the hourly rate or fixed fee. Unused for capital.
	ValueUnit float64 `json:"valueUnit"`

	// Weight is the risk/seniority multiplier. Defaults to 1.
	Weight float64 `json:"weight"`

	// StartDate is the ISO date (YYYY-MM-DD) the contribution started.
	StartDate string `json:"startDate"`

	// VestingMonths and CliffMonths describe the release schedule.
	// Informational only: the allocation engine never gates on time.
	VestingMonths int `json:"vestingMonths"`
	CliffMonths   int `json:"cliffMonths"`

	// HasMilestone marks a conditional release. The description and trigger
	// value are descriptive metadata and are nil when not set.
	HasMilestone          bool     `json:"hasMilestone"`
	MilestoneDescription  *string  `json:"milestoneDescription,omitempty"`
	MilestoneTriggerValue *float64 `json:"milestoneTriggerValue,omitempty"`

	// IsLocked excludes the contributor from the allocation (economic value
	// and share forced to zero) while keeping it visible.
	IsLocked bool `json:"isLocked"`
}

// NewContributor builds a contributor with the defaults used when a row is
// added from the simulator: weight 1, 24 months vesting, 6 months cliff.
func NewContributor(id, name, category string, typ ContributionType) (*Contributor, error) {
	c := &Contributor{
		ID:            id,
		Name:          name,
		Category:      category,
		Type:          typ,
		Weight:        1,
		VestingMonths: 24,
		CliffMonths:   6,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks structural invariants. Negative quantities, rates and
// weights are accepted here: the allocation engine propagates them as-is.
func (c *Contributor) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidContributor)
	}
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidContributor)
	}
	if strings.TrimSpace(c.Category) == "" {
		return fmt.Errorf("%w: category is required", ErrInvalidContributor)
	}
	if _, err := ParseContributionType(string(c.Type)); err != nil {
		return err
	}
	if c.VestingMonths < 0 || c.CliffMonths < 0 {
		return fmt.Errorf("%w: vesting and cliff must not be negative", ErrInvalidContributor)
	}
	if c.CliffMonths > c.VestingMonths {
		return fmt.Errorf("%w: cliff (%d) exceeds vesting (%d)", ErrInvalidContributor, c.CliffMonths, c.VestingMonths)
	}
	if c.HasMilestone && (c.MilestoneDescription == nil || strings.TrimSpace(*c.MilestoneDescription) == "") {
		return fmt.Errorf("%w: milestone requires a description", ErrInvalidContributor)
	}
	return nil
}

// Clone returns a deep copy, including the optional milestone fields.
func (c Contributor) Clone() Contributor {
	if c.MilestoneDescription != nil {
		d := *c.MilestoneDescription
		c.MilestoneDescription = &d
	}
	if c.MilestoneTriggerValue != nil {
		v := *c.MilestoneTriggerValue
		c.MilestoneTriggerValue = &v
	}
	return c
}
