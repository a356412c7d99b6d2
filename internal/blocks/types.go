package blocks

// BlockType is one of the 11 fixed semantic block types used to organize
// application document content, plus UNKNOWN for unclassifiable blocks.
type BlockType string

const (
	TypePersonalProfile         BlockType = "PERSONAL_PROFILE"
	TypeAcademicPerformance     BlockType = "ACADEMIC_PERFORMANCE"
	TypeStandardizedTesting     BlockType = "STANDARDIZED_TESTING"
	TypeResearchExperience      BlockType = "RESEARCH_EXPERIENCE"
	TypeAwardHonorRecognition   BlockType = "AWARD_HONOR_RECOGNITION"
	TypeExtracurricularActivity BlockType = "EXTRACURRICULAR_ACTIVITY"
	TypeWorkExperience          BlockType = "WORK_EXPERIENCE"
	TypeFamilyBackground        BlockType = "FAMILY_BACKGROUND"
	TypeEssaysWriting           BlockType = "ESSAYS_WRITING"
	TypeInstitutionalPrefs      BlockType = "INSTITUTIONAL_PREFERENCES"
	TypeApplicationMetadata     BlockType = "APPLICATION_METADATA"
	TypeUnknown                 BlockType = "UNKNOWN"
)

// Priority of a block for form filling.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// typeDefinition carries everything tied to one block type: the one-line
// description embedded in the formation prompt, the keyword set used by the
// classifier fallback, and the legacy category string used for filtering.
type typeDefinition struct {
	Type        BlockType
	Description string
	Keywords    []string
	Category    string
}

// typeTable is an ordered slice, not a map: classifier tie-breaks resolve to
// the first type reaching the maximum score in this declaration order.
var typeTable = []typeDefinition{
	{
		Type:        TypePersonalProfile,
		Description: "Identity, contact info, biographical data (name, DOB, address, etc.)",
		Keywords:    []string{"name", "contact", "email", "phone", "birthdate", "address", "personal"},
		Category:    "personal_info",
	},
	{
		Type:        TypeAcademicPerformance,
		Description: "Academic standing (GPA, class rank, high school, graduation date)",
		Keywords:    []string{"gpa", "grade", "transcript", "academic", "school", "class rank"},
		Category:    "academic_performance",
	},
	{
		Type:        TypeStandardizedTesting,
		Description: "Test scores (SAT, ACT, AP exams with dates and scores)",
		Keywords:    []string{"sat", "act", "ap exam", "test score", "toefl", "ielts"},
		Category:    "test_scores",
	},
	{
		Type:        TypeResearchExperience,
		Description: "Research projects with mentors, methods, outcomes, publications",
		Keywords:    []string{"research", "project", "experiment", "publication", "mentor"},
		Category:    "research",
	},
	{
		Type:        TypeAwardHonorRecognition,
		Description: "Individual awards and honors with dates and reasons",
		Keywords:    []string{"award", "honor", "recognition", "scholarship", "dean's list"},
		Category:    "award",
	},
	{
		Type:        TypeExtracurricularActivity,
		Description: "Clubs, activities with roles, time commitment, impact",
		Keywords:    []string{"club", "activity", "volunteer", "sport", "team", "leadership"},
		Category:    "activity",
	},
	{
		Type:        TypeWorkExperience,
		Description: "Jobs and employment with responsibilities and outcomes",
		Keywords:    []string{"job", "work", "employment", "internship", "company", "position"},
		Category:    "work",
	},
	{
		Type:        TypeFamilyBackground,
		Description: "Family information (parents, siblings, household context)",
		Keywords:    []string{"family", "parent", "sibling", "household", "brother", "sister"},
		Category:    "family",
	},
	{
		Type:        TypeEssaysWriting,
		Description: "Complete essays and writing samples with prompts",
		Keywords:    []string{"essay", "writing", "prompt", "statement", "personal statement"},
		Category:    "writing",
	},
	{
		Type:        TypeInstitutionalPrefs,
		Description: "College preferences, majors, admission plans",
		Keywords:    []string{"college", "university", "major", "program", "admission"},
		Category:    "education",
	},
	{
		Type:        TypeApplicationMetadata,
		Description: "Administrative info (submission status, fees, consents)",
		Keywords:    []string{"application", "submission", "deadline", "fee", "status"},
		Category:    "metadata",
	},
}

// CategoryFallback is the category assigned to blocks whose type is not one
// of the 11 fixed types, and to naive fallback chunks.
const CategoryFallback = "custom_documentation"

// AllTypes returns the 11 fixed block types in table order.
func AllTypes() []BlockType {
	types := make([]BlockType, len(typeTable))
	for i, def := range typeTable {
		types[i] = def.Type
	}
	return types
}

// Describe returns the prompt description for a block type, or an empty
// string for unknown types.
func Describe(t BlockType) string {
	for _, def := range typeTable {
		if def.Type == t {
			return def.Description
		}
	}
	return ""
}

// CategoryFor maps a block type to its stable lowercase category used for
// backward-compatible chunk filtering.
func CategoryFor(t BlockType) string {
	for _, def := range typeTable {
		if def.Type == t {
			return def.Category
		}
	}
	return CategoryFallback
}

// IsValidType reports whether t is one of the 11 fixed block types.
func IsValidType(t BlockType) bool {
	for _, def := range typeTable {
		if def.Type == t {
			return true
		}
	}
	return false
}
