// Package catalog is the built-in demo content: careers with a small
// interview question bank, sample profiles and resume tips.
package catalog

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/entity"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var raw []byte

type Question struct {
	Question        string                `yaml:"question" json:"question"`
	SuggestedAnswer string                `yaml:"suggested_answer" json:"suggested_answer"`
	KeyPoints       []string              `yaml:"key_points" json:"key_points"`
	DifficultyLevel entity.SeniorityLevel `yaml:"difficulty_level" json:"difficulty_level"`
}

type Career struct {
	ID        string                             `yaml:"id" json:"id"`
	Name      string                             `yaml:"name" json:"name"`
	Questions map[entity.QuestionType][]Question `yaml:"questions" json:"-"`
}

type Profile struct {
	ID          string     `yaml:"id" json:"id"`
	Name        string     `yaml:"name" json:"name"`
	Role        string     `yaml:"role" json:"role"`
	Description string     `yaml:"description" json:"description"`
	Profile     DemoFields `yaml:"profile" json:"-"`
}

// DemoFields is a UserProfile without owner or system fields.
type DemoFields struct {
	CurrentRole         string                 `yaml:"current_role"`
	ExperienceLevel     entity.ExperienceLevel `yaml:"experience_level"`
	EducationBackground string                 `yaml:"education_background"`
	CareerGoals         string                 `yaml:"career_goals"`
	CareerInterests     []string               `yaml:"career_interests"`
	PreferredIndustries []string               `yaml:"preferred_industries"`
	Skills              []struct {
		Name        string               `yaml:"name"`
		Proficiency entity.Proficiency   `yaml:"proficiency"`
		Category    entity.SkillCategory `yaml:"category"`
	} `yaml:"skills"`
}

type ResumeTip struct {
	Title    string `yaml:"title" json:"title"`
	Original string `yaml:"original" json:"original"`
	Improved string `yaml:"improved" json:"improved"`
}

type Catalog struct {
	Careers    []Career    `yaml:"careers"`
	Profiles   []Profile   `yaml:"profiles"`
	ResumeTips []ResumeTip `yaml:"resume_tips"`
}

var (
	once    sync.Once
	loaded  *Catalog
	loadErr error
)

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	once.Do(func() {
		loaded, loadErr = Parse(raw)
	})
	return loaded, loadErr
}

func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	for _, career := range c.Careers {
		for qt, qs := range career.Questions {
			if !entity.ValidQuestionTypes[qt] {
				return nil, fmt.Errorf("career %s: unknown question type %q", career.ID, qt)
			}
			for _, q := range qs {
				if !entity.ValidSeniorityLevels[q.DifficultyLevel] {
					return nil, fmt.Errorf("career %s: unknown difficulty %q", career.ID, q.DifficultyLevel)
				}
			}
		}
	}
	return &c, nil
}

// Career finds a demo career by slug ("data-analyst") or display name
// ("Data Analyst").
func (c *Catalog) Career(key string) (Career, bool) {
	slug := Slug(key)
	for _, career := range c.Careers {
		if career.ID == slug || Slug(career.Name) == slug {
			return career, true
		}
	}
	return Career{}, false
}

// Questions returns up to n demo questions for the career as InterviewPrep
// records. An empty questionType mixes every type.
func (c *Catalog) Questions(careerKey string, questionType entity.QuestionType, n int) []entity.InterviewPrep {
	career, ok := c.Career(careerKey)
	if !ok {
		career = c.Careers[0]
	}

	types := []entity.QuestionType{questionType}
	if questionType == "" {
		types = []entity.QuestionType{entity.QuestionBehavioral, entity.QuestionTechnical}
	}

	var out []entity.InterviewPrep
	for _, qt := range types {
		for _, q := range career.Questions[qt] {
			if n > 0 && len(out) >= n {
				return out
			}
			out = append(out, entity.InterviewPrep{
				CareerFocus:     career.Name,
				QuestionType:    qt,
				Question:        q.Question,
				SuggestedAnswer: q.SuggestedAnswer,
				KeyPoints:       q.KeyPoints,
				DifficultyLevel: q.DifficultyLevel,
				PracticeStatus:  entity.PracticeNew,
			})
		}
	}
	return out
}

func (c *Catalog) Profile(id string) (Profile, bool) {
	for _, p := range c.Profiles {
		if p.ID == strings.ToLower(id) {
			return p, true
		}
	}
	return Profile{}, false
}

// UserProfile converts the demo fields into an entity.
func (p Profile) UserProfile() entity.UserProfile {
	up := entity.UserProfile{
		CurrentRole:         p.Profile.CurrentRole,
		ExperienceLevel:     p.Profile.ExperienceLevel,
		EducationBackground: p.Profile.EducationBackground,
		CareerGoals:         p.Profile.CareerGoals,
		CareerInterests:     p.Profile.CareerInterests,
		PreferredIndustries: p.Profile.PreferredIndustries,
	}
	for _, s := range p.Profile.Skills {
		up.Skills = append(up.Skills, entity.Skill{Name: s.Name, Proficiency: s.Proficiency, Category: s.Category})
	}
	return up
}

// Slug lowercases and joins words with dashes: "UI/UX Designer" -> "ui-ux-designer".
func Slug(s string) string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	return strings.Join(fields, "-")
}
