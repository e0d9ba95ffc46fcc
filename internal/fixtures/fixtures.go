// Package fixtures loads the static seed data the dashboard starts from.
//
// The default data set is embedded in the binary. A YAML file with the same
// layout can replace it at startup.
package fixtures

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mmynk/mandato360/internal/calculator"
	"github.com/mmynk/mandato360/internal/models"
	"github.com/mmynk/mandato360/internal/storage"
)

//go:embed default.yaml
var defaultYAML []byte

// ErrInvalidFixtures wraps every validation failure of a fixture file.
var ErrInvalidFixtures = errors.New("invalid fixtures")

// Fixtures is the decoded seed data.
type Fixtures struct {
	Pool         models.Pool
	Categories   []models.CategoryCap
	Contributors []models.Contributor
	Financials   []models.FinancialYear
	Contacts     []models.Contact
	Competitors  []models.Competitor
	Roadmap      Roadmap
	Chat         Chat
}

// Roadmap holds the defaults of the revenue roadmap calculator.
type Roadmap struct {
	FirstYear  int
	StartMonth int
	ChurnRate  float64
	AnnualGoal float64
	Levels     []models.Level
	Targets    []calculator.YearTarget
}

// Chat holds the assistant prompts.
type Chat struct {
	SystemInstruction string
	WelcomeMessage    string
}

// Seed returns the part of the fixtures that lives in the store.
func (f *Fixtures) Seed() storage.Seed {
	return storage.Seed{
		Pool:         f.Pool,
		Categories:   f.Categories,
		Contributors: f.Contributors,
		Financials:   f.Financials,
		Contacts:     f.Contacts,
	}
}

// file mirrors the YAML layout.
type file struct {
	Pool struct {
		SizePercent float64 `yaml:"size_percent"`
		Mode        string  `yaml:"mode"`
	} `yaml:"pool"`
	Categories []struct {
		ID         string  `yaml:"id"`
		Name       string  `yaml:"name"`
		MaxPercent float64 `yaml:"max_percent"`
	} `yaml:"categories"`
	Contributors []struct {
		ID                    string   `yaml:"id"`
		Name                  string   `yaml:"name"`
		Category              string   `yaml:"category"`
		Type                  string   `yaml:"type"`
		Quantity              float64  `yaml:"quantity"`
		ValueUnit             float64  `yaml:"value_unit"`
		Weight                *float64 `yaml:"weight"`
		StartDate             string   `yaml:"start_date"`
		VestingMonths         int      `yaml:"vesting_months"`
		CliffMonths           int      `yaml:"cliff_months"`
		HasMilestone          bool     `yaml:"has_milestone"`
		MilestoneDescription  *string  `yaml:"milestone_description"`
		MilestoneTriggerValue *float64 `yaml:"milestone_trigger_value"`
		IsLocked              bool     `yaml:"is_locked"`
	} `yaml:"contributors"`
	Financials []struct {
		Year    int     `yaml:"year"`
		Revenue float64 `yaml:"revenue"`
		Costs   float64 `yaml:"costs"`
		Profit  float64 `yaml:"profit"`
	} `yaml:"financials"`
	Contacts []struct {
		ID          string `yaml:"id"`
		Name        string `yaml:"name"`
		Role        string `yaml:"role"`
		City        string `yaml:"city"`
		Status      string `yaml:"status"`
		LastContact string `yaml:"last_contact"`
	} `yaml:"contacts"`
	Competitors []struct {
		Name     string `yaml:"name"`
		Type     string `yaml:"type"`
		Weakness string `yaml:"weakness"`
		Strength string `yaml:"strength"`
	} `yaml:"competitors"`
	Roadmap struct {
		FirstYear  int     `yaml:"first_year"`
		StartMonth int     `yaml:"start_month"`
		ChurnRate  float64 `yaml:"churn_rate"`
		AnnualGoal float64 `yaml:"annual_goal"`
		Levels     []struct {
			ID           string  `yaml:"id"`
			Name         string  `yaml:"name"`
			Ticket       float64 `yaml:"ticket"`
			Implantation float64 `yaml:"implantation"`
			Clients      int     `yaml:"clients"`
			Goal         *int    `yaml:"goal"`
		} `yaml:"levels"`
		Targets []struct {
			Year   int     `yaml:"year"`
			Value  float64 `yaml:"value"`
			Target float64 `yaml:"target"`
		} `yaml:"targets"`
	} `yaml:"roadmap"`
	Chat struct {
		SystemInstruction string `yaml:"system_instruction"`
		WelcomeMessage    string `yaml:"welcome_message"`
	} `yaml:"chat"`
}

// Default returns the embedded data set.
func Default() (*Fixtures, error) {
	return Parse(defaultYAML)
}

// Load reads fixtures from path, or the embedded defaults when path is empty.
func Load(path string) (*Fixtures, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixtures: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse decodes and validates a YAML document.
func Parse(data []byte) (*Fixtures, error) {
	var raw file
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFixtures, err)
	}
	return raw.build()
}

func (raw *file) build() (*Fixtures, error) {
	f := &Fixtures{}

	mode, err := models.ParsePoolMode(raw.Pool.Mode)
	if err != nil {
		return nil, fmt.Errorf("%w: pool: %v", ErrInvalidFixtures, err)
	}
	f.Pool = models.Pool{SizePercent: raw.Pool.SizePercent, Mode: mode}

	categoryIDs := make(map[string]bool, len(raw.Categories))
	for _, c := range raw.Categories {
		cat := models.CategoryCap{ID: c.ID, Name: c.Name, MaxPercent: c.MaxPercent}
		if err := cat.Validate(); err != nil {
			return nil, fmt.Errorf("%w: category %q: %v", ErrInvalidFixtures, c.ID, err)
		}
		if categoryIDs[c.ID] {
			return nil, fmt.Errorf("%w: duplicate category %q", ErrInvalidFixtures, c.ID)
		}
		categoryIDs[c.ID] = true
		f.Categories = append(f.Categories, cat)
	}

	contributorIDs := make(map[string]bool, len(raw.Contributors))
	for _, c := range raw.Contributors {
		weight := 1.0
		if c.Weight != nil {
			weight = *c.Weight
		}
		con := models.Contributor{
			ID:                    c.ID,
			Name:                  c.Name,
			Category:              c.Category,
			Type:                  models.ContributionType(c.Type),
			Quantity:              c.Quantity,
			ValueUnit:             c.ValueUnit,
			Weight:                weight,
			StartDate:             c.StartDate,
			VestingMonths:         c.VestingMonths,
			CliffMonths:           c.CliffMonths,
			HasMilestone:          c.HasMilestone,
			MilestoneDescription:  c.MilestoneDescription,
			MilestoneTriggerValue: c.MilestoneTriggerValue,
			IsLocked:              c.IsLocked,
		}
		if err := con.Validate(); err != nil {
			return nil, fmt.Errorf("%w: contributor %q: %v", ErrInvalidFixtures, c.ID, err)
		}
		if contributorIDs[c.ID] {
			return nil, fmt.Errorf("%w: duplicate contributor %q", ErrInvalidFixtures, c.ID)
		}
		contributorIDs[c.ID] = true
		f.Contributors = append(f.Contributors, con)
	}

	for _, r := range raw.Financials {
		f.Financials = append(f.Financials, models.FinancialYear{
			Year: r.Year, Revenue: r.Revenue, Costs: r.Costs, Profit: r.Profit,
		})
	}

	for _, c := range raw.Contacts {
		status := models.ContactStatus(c.Status)
		if !status.Valid() {
			return nil, fmt.Errorf("%w: contact %q: unknown status %q", ErrInvalidFixtures, c.ID, c.Status)
		}
		f.Contacts = append(f.Contacts, models.Contact{
			ID: c.ID, Name: c.Name, Role: c.Role, City: c.City, Status: status, LastContact: c.LastContact,
		})
	}

	for _, c := range raw.Competitors {
		f.Competitors = append(f.Competitors, models.Competitor{
			Name: c.Name, Type: c.Type, Weakness: c.Weakness, Strength: c.Strength,
		})
	}

	rm := raw.Roadmap
	if rm.StartMonth < 0 || rm.StartMonth > 11 {
		return nil, fmt.Errorf("%w: roadmap: %v", ErrInvalidFixtures, calculator.ErrInvalidStartMonth)
	}
	f.Roadmap = Roadmap{
		FirstYear:  rm.FirstYear,
		StartMonth: rm.StartMonth,
		ChurnRate:  rm.ChurnRate,
		AnnualGoal: rm.AnnualGoal,
	}
	for _, l := range rm.Levels {
		f.Roadmap.Levels = append(f.Roadmap.Levels, models.Level{
			ID: l.ID, Name: l.Name, Ticket: l.Ticket, Implantation: l.Implantation, Clients: l.Clients, Goal: l.Goal,
		})
	}
	for _, t := range rm.Targets {
		f.Roadmap.Targets = append(f.Roadmap.Targets, calculator.YearTarget{Year: t.Year, Value: t.Value, Target: t.Target})
	}

	f.Chat = Chat{
		SystemInstruction: raw.Chat.SystemInstruction,
		WelcomeMessage:    raw.Chat.WelcomeMessage,
	}
	return f, nil
}
