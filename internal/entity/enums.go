package entity

type ExperienceLevel string

const (
	ExperienceStudent    ExperienceLevel = "student"
	ExperienceEntryLevel ExperienceLevel = "entry_level"
	Experience1To3Years  ExperienceLevel = "1-3_years"
	Experience3To5Years  ExperienceLevel = "3-5_years"
	Experience5PlusYears ExperienceLevel = "5+_years"
)

type Proficiency string

const (
	ProficiencyBeginner     Proficiency = "beginner"
	ProficiencyIntermediate Proficiency = "intermediate"
	ProficiencyAdvanced     Proficiency = "advanced"
	ProficiencyExpert       Proficiency = "expert"
)

type SkillCategory string

const (
	CategoryTechnical SkillCategory = "technical"
	CategorySoft      SkillCategory = "soft"
	CategoryDomain    SkillCategory = "domain"
	CategoryLanguage  SkillCategory = "language"
	CategoryTool      SkillCategory = "tool"
)

type Importance string

const (
	ImportanceEssential Importance = "essential"
	ImportanceImportant Importance = "important"
	ImportancePreferred Importance = "preferred"
)

type JobOutlook string

const (
	OutlookDeclining      JobOutlook = "declining"
	OutlookStable         JobOutlook = "stable"
	OutlookGrowing        JobOutlook = "growing"
	OutlookRapidlyGrowing JobOutlook = "rapidly_growing"
)

// Difficulty is shared by courses, learning paths and projects.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

type Cost string

const (
	CostFree     Cost = "free"
	CostPaid     Cost = "paid"
	CostFreemium Cost = "freemium"
)

type ResourceType string

const (
	ResourceDocumentation ResourceType = "documentation"
	ResourceTutorial      ResourceType = "tutorial"
	ResourceTool          ResourceType = "tool"
	ResourceDataset       ResourceType = "dataset"
)

type CompletionStatus string

const (
	StatusNotStarted CompletionStatus = "not_started"
	StatusInProgress CompletionStatus = "in_progress"
	StatusCompleted  CompletionStatus = "completed"
)

var ValidCompletionStatuses = map[CompletionStatus]bool{
	StatusNotStarted: true,
	StatusInProgress: true,
	StatusCompleted:  true,
}

type QuestionType string

const (
	QuestionBehavioral  QuestionType = "behavioral"
	QuestionTechnical   QuestionType = "technical"
	QuestionSituational QuestionType = "situational"
	QuestionCaseStudy   QuestionType = "case_study"
)

var ValidQuestionTypes = map[QuestionType]bool{
	QuestionBehavioral:  true,
	QuestionTechnical:   true,
	QuestionSituational: true,
	QuestionCaseStudy:   true,
}

type SeniorityLevel string

const (
	SeniorityEntry  SeniorityLevel = "entry"
	SeniorityMid    SeniorityLevel = "mid"
	SenioritySenior SeniorityLevel = "senior"
)

var ValidSeniorityLevels = map[SeniorityLevel]bool{
	SeniorityEntry:  true,
	SeniorityMid:    true,
	SenioritySenior: true,
}

type PracticeStatus string

const (
	PracticeNew       PracticeStatus = "new"
	PracticePracticed PracticeStatus = "practiced"
	PracticeMastered  PracticeStatus = "mastered"
)

var ValidPracticeStatuses = map[PracticeStatus]bool{
	PracticeNew:       true,
	PracticePracticed: true,
	PracticeMastered:  true,
}
