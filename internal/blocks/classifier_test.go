package blocks

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInferType(t *testing.T) {
	tests := []struct {
		name string
		text string
		want BlockType
	}{
		{
			name: "testing keywords",
			text: "SAT composite 1520, ACT 34, AP exam results pending",
			want: TypeStandardizedTesting,
		},
		{
			name: "academic keywords",
			text: "Unweighted GPA of 3.9 on the transcript, class rank 4",
			want: TypeAcademicPerformance,
		},
		{
			name: "work keywords",
			text: "Held a part-time job at a local company, internship position in sales",
			want: TypeWorkExperience,
		},
		{
			name: "no keywords",
			text: "zzz qqq completely unrelated nonsense",
			want: TypeUnknown,
		},
		{
			name: "empty text",
			text: "",
			want: TypeUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InferType(tt.text))
		})
	}
}

// Tie-breaks must resolve to the earliest type in table order so inference is
// reproducible.
func TestInferTypeTieBreakIsStable(t *testing.T) {
	// "name" hits PERSONAL_PROFILE and "gpa" hits ACADEMIC_PERFORMANCE, one
	// keyword each; PERSONAL_PROFILE is declared first.
	got := InferType("name gpa")
	assert.Equal(t, TypePersonalProfile, got)
}

func TestInferTypeCaseInsensitive(t *testing.T) {
	assert.Equal(t, TypeStandardizedTesting, InferType("TOEFL and IELTS results"))
}

func TestCategoryFor(t *testing.T) {
	assert.Equal(t, "personal_info", CategoryFor(TypePersonalProfile))
	assert.Equal(t, "test_scores", CategoryFor(TypeStandardizedTesting))
	assert.Equal(t, "education", CategoryFor(TypeInstitutionalPrefs))
	assert.Equal(t, CategoryFallback, CategoryFor(TypeUnknown))
	assert.Equal(t, CategoryFallback, CategoryFor(BlockType("MADE_UP")))
}

func TestAllTypesOrderMatchesTable(t *testing.T) {
	types := AllTypes()
	assert.Len(t, types, 11)
	assert.Equal(t, TypePersonalProfile, types[0])
	assert.Equal(t, TypeApplicationMetadata, types[10])
}
