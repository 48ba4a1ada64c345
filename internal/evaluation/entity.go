package evaluation

import (
	"fmt"
	"strings"
	"time"
)

type Category string

const (
	CategoryPerformance   Category = "performance"
	CategoryCommunication Category = "communication"
	CategoryLeadership    Category = "leadership"
	CategoryTeamwork      Category = "teamwork"
	CategoryTechnical     Category = "technical"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryPerformance, CategoryCommunication, CategoryLeadership, CategoryTeamwork, CategoryTechnical:
		return true
	}
	return false
}

const (
	MinRating = 1
	MaxRating = 5
)

type Evaluation struct {
	ID        string    `json:"id" yaml:"id"`
	Evaluator string    `json:"evaluator" yaml:"evaluator"`
	Evaluated string    `json:"evaluated" yaml:"evaluated"`
	Rating    int       `json:"rating" yaml:"rating"`
	Category  Category  `json:"category" yaml:"category"`
	Feedback  string    `json:"feedback,omitempty" yaml:"feedback,omitempty"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

func (e *Evaluation) Validate() error {
	if strings.TrimSpace(e.Evaluator) == "" {
		return fmt.Errorf("evaluator is required")
	}
	if strings.TrimSpace(e.Evaluated) == "" {
		return fmt.Errorf("evaluated is required")
	}
	if e.Rating < MinRating || e.Rating > MaxRating {
		return fmt.Errorf("rating must be between %d and %d", MinRating, MaxRating)
	}
	if !e.Category.Valid() {
		return fmt.Errorf("invalid category %q", e.Category)
	}
	return nil
}
