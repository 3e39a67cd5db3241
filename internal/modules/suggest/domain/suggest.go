package domain

import (
	"fmt"
	"strings"

	missiondomain "ascend/internal/modules/mission/domain"
	apperrors "ascend/internal/platform/errors"
)

const (
	DefaultCount = 3
	MaxCount     = 10
)

// Request describes what a generator should propose. Existing holds titles
// of missions already planned so generators can avoid repeats.
type Request struct {
	Categories []missiondomain.Category
	Existing   []string
	Count      int
}

func NewRequest(categories []string, existing []string, count int) (Request, error) {
	if count <= 0 {
		count = DefaultCount
	}
	if count > MaxCount {
		return Request{}, apperrors.Invalid("count", "at most %d suggestions per request", MaxCount)
	}
	out := Request{Existing: existing, Count: count}
	seen := map[missiondomain.Category]struct{}{}
	for _, raw := range categories {
		category := missiondomain.Category(strings.ToLower(strings.TrimSpace(raw)))
		if err := category.Validate(); err != nil {
			return Request{}, err
		}
		if _, ok := seen[category]; ok {
			continue
		}
		seen[category] = struct{}{}
		out.Categories = append(out.Categories, category)
	}
	if len(out.Categories) == 0 {
		out.Categories = missiondomain.Categories()
	}
	return out, nil
}

type Candidate struct {
	Title     string
	Category  missiondomain.Category
	Priority  missiondomain.Priority
	Rationale string
}

func (c Candidate) Validate() error {
	if strings.TrimSpace(c.Title) == "" {
		return apperrors.Invalid("title", "must not be empty")
	}
	if err := c.Category.Validate(); err != nil {
		return err
	}
	return c.Priority.Validate()
}

// Filter drops invalid candidates, candidates outside the requested
// categories and titles that repeat an existing mission or an earlier
// candidate. It keeps at most req.Count.
func Filter(req Request, candidates []Candidate) []Candidate {
	allowed := map[missiondomain.Category]struct{}{}
	for _, c := range req.Categories {
		allowed[c] = struct{}{}
	}
	seen := map[string]struct{}{}
	for _, title := range req.Existing {
		seen[normalizeTitle(title)] = struct{}{}
	}
	out := make([]Candidate, 0, len(candidates))
	for _, candidate := range candidates {
		candidate.Title = strings.TrimSpace(candidate.Title)
		candidate.Category = missiondomain.Category(strings.ToLower(string(candidate.Category)))
		candidate.Priority = missiondomain.Priority(strings.ToLower(string(candidate.Priority)))
		if candidate.Priority == "" {
			candidate.Priority = missiondomain.PriorityMedium
		}
		if candidate.Validate() != nil {
			continue
		}
		if _, ok := allowed[candidate.Category]; !ok {
			continue
		}
		key := normalizeTitle(candidate.Title)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, candidate)
		if len(out) == req.Count {
			break
		}
	}
	return out
}

func normalizeTitle(title string) string {
	return strings.Join(strings.Fields(strings.ToLower(title)), " ")
}

type QuizItem struct {
	Concept      string
	Prompt       string
	Options      []string
	CorrectIndex int
	Explanation  string
}

func (q QuizItem) Validate() error {
	if strings.TrimSpace(q.Prompt) == "" {
		return fmt.Errorf("quiz prompt is empty")
	}
	if len(q.Options) < 2 {
		return fmt.Errorf("quiz needs at least two options, got %d", len(q.Options))
	}
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
		return fmt.Errorf("quiz answer index %d out of range", q.CorrectIndex)
	}
	return nil
}
