package catalog

import (
	"testing"

	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_HasFiveCareers(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	ids := make([]string, 0, len(c.Careers))
	for _, career := range c.Careers {
		ids = append(ids, career.ID)
	}
	assert.Equal(t, []string{"data-analyst", "software-engineer", "product-manager", "ui-ux-designer", "business-analyst"}, ids)
	assert.Len(t, c.ResumeTips, 3)
}

func TestCareer_LookupBySlugOrName(t *testing.T) {
	c := MustDefault()

	career, ok := c.Career("UI/UX Designer")
	require.True(t, ok)
	assert.Equal(t, "ui-ux-designer", career.ID)

	_, ok = c.Career("astronaut")
	assert.False(t, ok)
}

func TestQuestions(t *testing.T) {
	c := MustDefault()

	qs := c.Questions("data-analyst", entity.QuestionTechnical, 5)
	require.Len(t, qs, 2)
	assert.Equal(t, "Data Analyst", qs[0].CareerFocus)
	assert.Equal(t, entity.QuestionTechnical, qs[0].QuestionType)
	assert.Equal(t, entity.PracticeNew, qs[0].PracticeStatus)
	assert.NotEmpty(t, qs[0].KeyPoints)

	mixed := c.Questions("Software Engineer", "", 2)
	require.Len(t, mixed, 2)
	assert.Equal(t, entity.QuestionBehavioral, mixed[0].QuestionType)
	assert.Equal(t, entity.QuestionTechnical, mixed[1].QuestionType)

	fallback := c.Questions("unknown career", entity.QuestionBehavioral, 0)
	require.NotEmpty(t, fallback)
	assert.Equal(t, "Data Analyst", fallback[0].CareerFocus)
}

func TestProfile(t *testing.T) {
	p, ok := MustDefault().Profile("Priya")
	require.True(t, ok)

	up := p.UserProfile()
	assert.Equal(t, entity.ExperienceStudent, up.ExperienceLevel)
	require.NotEmpty(t, up.Skills)
	assert.Equal(t, "SQL", up.Skills[0].Name)
	assert.Equal(t, entity.ProficiencyAdvanced, up.Skills[0].Proficiency)
}

func TestParse_RejectsUnknownQuestionType(t *testing.T) {
	_, err := Parse([]byte(`
careers:
  - id: x
    name: X
    questions:
      riddles:
        - question: q
          difficulty_level: entry
`))
	assert.Error(t, err)
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "ui-ux-designer", Slug("UI/UX Designer"))
	assert.Equal(t, "data-analyst", Slug("  Data   Analyst "))
}
