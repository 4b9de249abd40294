// Package entity holds the typed form of the five record kinds. The store
// works on validated field maps; these structs are what Go callers use.
package entity

import "time"

type Kind string

const (
	KindUserProfile   Kind = "UserProfile"
	KindCareerPath    Kind = "CareerPath"
	KindLearningPath  Kind = "LearningPath"
	KindProject       Kind = "Project"
	KindInterviewPrep Kind = "InterviewPrep"
)

// Record is implemented by every entity struct.
type Record interface {
	Kind() Kind
	RecordID() string
}

// Meta carries the fields the store maintains on every record.
type Meta struct {
	ID          string    `json:"id,omitempty"`
	CreatedDate time.Time `json:"created_date,omitempty"`
	UpdatedDate time.Time `json:"updated_date,omitempty"`
	Version     int       `json:"version,omitempty"`
}

type UserProfile struct {
	Meta
	CreatedBy           string          `json:"created_by,omitempty"`
	CurrentRole         string          `json:"current_role,omitempty"`
	ExperienceLevel     ExperienceLevel `json:"experience_level,omitempty"`
	EducationBackground string          `json:"education_background,omitempty"`
	Skills              []Skill         `json:"skills,omitempty"`
	CareerInterests     []string        `json:"career_interests,omitempty"`
	PreferredIndustries []string        `json:"preferred_industries,omitempty"`
	CareerGoals         string          `json:"career_goals,omitempty"`
	ResumeURL           string          `json:"resume_url,omitempty"`
	LastAssessmentDate  string          `json:"last_assessment_date,omitempty"`
}

type Skill struct {
	Name        string        `json:"name,omitempty"`
	Proficiency Proficiency   `json:"proficiency,omitempty"`
	Category    SkillCategory `json:"category,omitempty"`
}

type CareerPath struct {
	Meta
	Title              string          `json:"title,omitempty"`
	Industry           string          `json:"industry,omitempty"`
	Description        string          `json:"description,omitempty"`
	RequiredSkills     []RequiredSkill `json:"required_skills,omitempty"`
	SalaryRange        *SalaryRange    `json:"salary_range,omitempty"`
	JobOutlook         JobOutlook      `json:"job_outlook,omitempty"`
	TypicalProgression []string        `json:"typical_progression,omitempty"`
	MatchScore         float64         `json:"match_score,omitempty"`
	RecommendedForUser string          `json:"recommended_for_user,omitempty"`
}

type RequiredSkill struct {
	Skill             string      `json:"skill,omitempty"`
	Importance        Importance  `json:"importance,omitempty"`
	ProficiencyNeeded Proficiency `json:"proficiency_needed,omitempty"`
}

type SalaryRange struct {
	Min      float64 `json:"min,omitempty"`
	Max      float64 `json:"max,omitempty"`
	Currency string  `json:"currency,omitempty"`
}

type LearningPath struct {
	Meta
	Title             string           `json:"title,omitempty"`
	TargetCareer      string           `json:"target_career,omitempty"`
	SkillGaps         []string         `json:"skill_gaps,omitempty"`
	Courses           []Course         `json:"courses,omitempty"`
	EstimatedDuration string           `json:"estimated_duration,omitempty"`
	DifficultyLevel   Difficulty       `json:"difficulty_level,omitempty"`
	CompletionStatus  CompletionStatus `json:"completion_status,omitempty"`
	CreatedForUser    string           `json:"created_for_user,omitempty"`
}

type Course struct {
	Name       string     `json:"name,omitempty"`
	Provider   string     `json:"provider,omitempty"`
	URL        string     `json:"url,omitempty"`
	Duration   string     `json:"duration,omitempty"`
	Difficulty Difficulty `json:"difficulty,omitempty"`
	Cost       Cost       `json:"cost,omitempty"`
	Priority   int        `json:"priority,omitempty"`
}

type Project struct {
	Meta
	Title            string           `json:"title,omitempty"`
	Description      string           `json:"description,omitempty"`
	CareerRelevance  string           `json:"career_relevance,omitempty"`
	SkillsPracticed  []string         `json:"skills_practiced,omitempty"`
	DifficultyLevel  Difficulty       `json:"difficulty_level,omitempty"`
	EstimatedHours   float64          `json:"estimated_hours,omitempty"`
	Requirements     []string         `json:"requirements,omitempty"`
	Deliverables     []string         `json:"deliverables,omitempty"`
	Resources        []Resource       `json:"resources,omitempty"`
	CompletionStatus CompletionStatus `json:"completion_status,omitempty"`
	AssignedToUser   string           `json:"assigned_to_user,omitempty"`
}

type Resource struct {
	Name string       `json:"name,omitempty"`
	URL  string       `json:"url,omitempty"`
	Type ResourceType `json:"type,omitempty"`
}

type InterviewPrep struct {
	Meta
	CareerFocus      string         `json:"career_focus,omitempty"`
	QuestionType     QuestionType   `json:"question_type,omitempty"`
	Question         string         `json:"question,omitempty"`
	SuggestedAnswer  string         `json:"suggested_answer,omitempty"`
	KeyPoints        []string       `json:"key_points,omitempty"`
	DifficultyLevel  SeniorityLevel `json:"difficulty_level,omitempty"`
	PracticeStatus   PracticeStatus `json:"practice_status,omitempty"`
	UserAnswer       string         `json:"user_answer,omitempty"`
	Feedback         string         `json:"feedback,omitempty"`
	GeneratedForUser string         `json:"generated_for_user,omitempty"`
}

func (UserProfile) Kind() Kind   { return KindUserProfile }
func (CareerPath) Kind() Kind    { return KindCareerPath }
func (LearningPath) Kind() Kind  { return KindLearningPath }
func (Project) Kind() Kind       { return KindProject }
func (InterviewPrep) Kind() Kind { return KindInterviewPrep }

func (m Meta) RecordID() string { return m.ID }
