package rubric

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrInvalidRubric indicates the rubric violates its structural invariants.
var ErrInvalidRubric = errors.New("invalid rubric")

// Canonical level names, from strongest to weakest.
const (
	LevelExemplary  = "exemplary"
	LevelProficient = "proficient"
	LevelDeveloping = "developing"
	LevelInadequate = "inadequate"
)

// Level is one qualitative tier of a criterion with an inclusive point range.
type Level struct {
	Name        string `json:"name"`
	MinPoints   int    `json:"min_points"`
	MaxPoints   int    `json:"max_points"`
	Description string `json:"description"`
	Order       int    `json:"order"`
}

// Criterion is one scored line item of a rubric.
type Criterion struct {
	Name        string  `json:"name"`
	Points      int     `json:"points"`
	Description string  `json:"description,omitempty"`
	Order       int     `json:"order"`
	Levels      []Level `json:"levels"`
}

// Category groups ordered criteria under a weighted heading.
type Category struct {
	Name        string      `json:"name"`
	Weight      int         `json:"weight"`
	Description string      `json:"description,omitempty"`
	Order       int         `json:"order"`
	Criteria    []Criterion `json:"criteria"`
}

// Rubric is the complete scoring definition for an assignment.
type Rubric struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Version     string     `json:"version"`
	TotalPoints int        `json:"total_points"`
	Categories  []Category `json:"categories"`
}

// Criteria returns every criterion in rubric-declared order.
func (r Rubric) Criteria() []Criterion {
	var out []Criterion
	for _, category := range r.Categories {
		out = append(out, category.Criteria...)
	}
	return out
}

// CriteriaCount returns the number of criteria across all categories.
func (r Rubric) CriteriaCount() int {
	count := 0
	for _, category := range r.Categories {
		count += len(category.Criteria)
	}
	return count
}

// Validate enforces the structural invariants: each category's weight equals
// the sum of its criteria's points, the rubric total equals the sum of
// category weights, and each criterion's level ranges partition
// [0, criterion.Points] without gaps. Callers may treat the returned error
// as a warning; the rubric remains usable for scoring either way.
func (r Rubric) Validate() error {
	var problems []string

	weightSum := 0
	for _, category := range r.Categories {
		pointSum := 0
		for _, criterion := range category.Criteria {
			pointSum += criterion.Points
			if err := criterion.validateLevels(); err != nil {
				problems = append(problems, err.Error())
			}
		}
		if pointSum != category.Weight {
			problems = append(problems, fmt.Sprintf("category %q weight %d does not match criteria sum %d", category.Name, category.Weight, pointSum))
		}
		weightSum += category.Weight
	}

	if r.TotalPoints != weightSum {
		problems = append(problems, fmt.Sprintf("rubric total %d does not match category weight sum %d", r.TotalPoints, weightSum))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidRubric, strings.Join(problems, "; "))
	}

	return nil
}

func (c Criterion) validateLevels() error {
	if len(c.Levels) == 0 {
		return fmt.Errorf("criterion %q has no levels", c.Name)
	}

	levels := make([]Level, len(c.Levels))
	copy(levels, c.Levels)
	sort.Slice(levels, func(i, j int) bool { return levels[i].MinPoints < levels[j].MinPoints })

	if levels[0].MinPoints != 0 {
		return fmt.Errorf("criterion %q levels do not start at 0", c.Name)
	}
	if levels[len(levels)-1].MaxPoints != c.Points {
		return fmt.Errorf("criterion %q levels do not reach %d points", c.Name, c.Points)
	}
	for i := 1; i < len(levels); i++ {
		if levels[i].MinPoints != levels[i-1].MaxPoints+1 {
			return fmt.Errorf("criterion %q has a gap between levels %q and %q", c.Name, levels[i-1].Name, levels[i].Name)
		}
	}

	return nil
}
