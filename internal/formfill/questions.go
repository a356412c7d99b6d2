package formfill

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/campusforms/docufill-api/internal/models"
)

// Question types handled by the batch fill dispatch. School question sets use
// the snake_case names; the general set uses the legacy display names.
var freeTextTypes = map[string]bool{
	"short_answer": true,
	"long_answer":  true,
	"Text":         true,
	"Date":         true,
}

var selectTypes = map[string]bool{
	"single_select_dropdown": true,
	"single_select_radio":    true,
	"multi_select_dropdown":  true,
	"multi_select_checkbox":  true,
	"Dropdown/Radio":         true,
}

// LoadGeneralQuestions reads the general application question set. A missing
// file is not fatal: general-question filling is simply unavailable.
func LoadGeneralQuestions(path string) ([]models.Question, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read general questions: %w", err)
	}

	var questions []models.Question
	if err := json.Unmarshal(data, &questions); err != nil {
		return nil, fmt.Errorf("failed to parse general questions: %w", err)
	}
	return questions, nil
}

// LoadSchoolQuestions reads the per-school question sets, keyed by school ID.
func LoadSchoolQuestions(path string) (map[string][]models.Question, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read school questions: %w", err)
	}

	var questions map[string][]models.Question
	if err := json.Unmarshal(data, &questions); err != nil {
		return nil, fmt.Errorf("failed to parse school questions: %w", err)
	}
	return questions, nil
}

// SectionsOf returns the sorted unique sections of a question set.
func SectionsOf(questions []models.Question) []string {
	seen := make(map[string]bool)
	var sections []string
	for _, q := range questions {
		if q.Section != "" && !seen[q.Section] {
			seen[q.Section] = true
			sections = append(sections, q.Section)
		}
	}
	sort.Strings(sections)
	return sections
}
