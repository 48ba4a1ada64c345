package kpi

import (
	"fmt"
	"strings"
	"time"
)

type Unit string

const (
	UnitNumber   Unit = "number"
	UnitPercent  Unit = "percent"
	UnitCurrency Unit = "currency"
	UnitHours    Unit = "hours"
)

func (u Unit) Valid() bool {
	switch u {
	case UnitNumber, UnitPercent, UnitCurrency, UnitHours:
		return true
	}
	return false
}

type Category string

const (
	CategoryGeneral     Category = "general"
	CategorySales       Category = "sales"
	CategoryMarketing   Category = "marketing"
	CategorySupport     Category = "support"
	CategoryDevelopment Category = "development"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryGeneral, CategorySales, CategoryMarketing, CategorySupport, CategoryDevelopment:
		return true
	}
	return false
}

type Period string

const (
	PeriodDaily     Period = "daily"
	PeriodWeekly    Period = "weekly"
	PeriodMonthly   Period = "monthly"
	PeriodQuarterly Period = "quarterly"
	PeriodYearly    Period = "yearly"
)

func (p Period) Valid() bool {
	switch p {
	case PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodQuarterly, PeriodYearly:
		return true
	}
	return false
}

const (
	// OnTrackRatio is the progress at or above which a KPI is on track.
	OnTrackRatio = 0.7
	// ExceededRatio is the progress at or above which a KPI has met its target.
	ExceededRatio = 1.0
)

type KPI struct {
	ID           string    `json:"id" yaml:"id"`
	Name         string    `json:"name" yaml:"name"`
	Description  string    `json:"description,omitempty" yaml:"description,omitempty"`
	TargetValue  float64   `json:"target_value" yaml:"target_value"`
	CurrentValue float64   `json:"current_value" yaml:"current_value"`
	Unit         Unit      `json:"unit" yaml:"unit"`
	Category     Category  `json:"category" yaml:"category"`
	Assignee     string    `json:"assignee,omitempty" yaml:"assignee,omitempty"`
	Period       Period    `json:"period" yaml:"period"`
	CreatedAt    time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" yaml:"updated_at"`
}

func (k *KPI) Validate() error {
	if strings.TrimSpace(k.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if k.TargetValue <= 0 {
		return fmt.Errorf("target_value must be positive")
	}
	if k.CurrentValue < 0 {
		return fmt.Errorf("current_value must not be negative")
	}
	if !k.Unit.Valid() {
		return fmt.Errorf("invalid unit %q", k.Unit)
	}
	if !k.Category.Valid() {
		return fmt.Errorf("invalid category %q", k.Category)
	}
	if !k.Period.Valid() {
		return fmt.Errorf("invalid period %q", k.Period)
	}
	return nil
}

// Progress is current/target; it may exceed 1.
func (k *KPI) Progress() float64 {
	if k.TargetValue <= 0 {
		return 0
	}
	return k.CurrentValue / k.TargetValue
}

func (k *KPI) OnTrack() bool {
	return k.Progress() >= OnTrackRatio
}

func (k *KPI) Exceeded() bool {
	return k.Progress() >= ExceededRatio
}

type Summary struct {
	Total           int     `json:"total"`
	OnTrack         int     `json:"on_track"`
	Exceeded        int     `json:"exceeded"`
	AverageProgress float64 `json:"average_progress"`
}

// Summarize aggregates kpis. AverageProgress is a percentage with progress
// capped at 100 per KPI.
func Summarize(kpis []*KPI) Summary {
	s := Summary{Total: len(kpis)}
	if len(kpis) == 0 {
		return s
	}
	var sum float64
	for _, k := range kpis {
		p := k.Progress()
		if k.OnTrack() {
			s.OnTrack++
		}
		if k.Exceeded() {
			s.Exceeded++
		}
		sum += min(p, 1)
	}
	s.AverageProgress = sum / float64(len(kpis)) * 100
	return s
}
