// Package pages holds the server-side view-state of each screen: which
// records are loaded, what is selected or filtered, and whether a load or
// generation is in flight.
package pages

import (
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/entity"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/generation"
)

type Phase string

const (
	PhaseLoading    Phase = "loading"
	PhaseReady      Phase = "ready"
	PhaseGenerating Phase = "generating"
)

// Slot is one list a page loads from the store on mount.
type Slot struct {
	Name  string
	Kind  entity.Kind
	Sort  string
	Limit int
}

// Page declares what a screen loads and which flows it may run.
type Page struct {
	Name  string
	Slots []Slot
	Flows []string
	// Primary is the slot that search, filters and ordering apply to.
	Primary string
	// Search lists the fields matched by the free-text search.
	Search []string
	// Filters lists the fields that accept equality filters.
	Filters []string
	// Order sorts the primary slot in the view, e.g. "-match_score".
	Order     string
	summarize func(*State) any
}

func (p *Page) slot(name string) (Slot, bool) {
	for _, s := range p.Slots {
		if s.Name == name {
			return s, true
		}
	}
	return Slot{}, false
}

func (p *Page) allowsFlow(flow string) bool {
	for _, f := range p.Flows {
		if f == flow {
			return true
		}
	}
	return false
}

func (p *Page) allowsFilter(field string) bool {
	for _, f := range p.Filters {
		if f == field {
			return true
		}
	}
	return false
}

const (
	SlotProfile   = "profile"
	SlotCareers   = "careers"
	SlotPaths     = "paths"
	SlotProjects  = "projects"
	SlotQuestions = "questions"
)

var (
	profileSlot   = Slot{Name: SlotProfile, Kind: entity.KindUserProfile, Limit: 1}
	careersSlot   = Slot{Name: SlotCareers, Kind: entity.KindCareerPath}
	pathsSlot     = Slot{Name: SlotPaths, Kind: entity.KindLearningPath, Sort: "-created_date"}
	projectsSlot  = Slot{Name: SlotProjects, Kind: entity.KindProject, Sort: "-created_date"}
	questionsSlot = Slot{Name: SlotQuestions, Kind: entity.KindInterviewPrep, Sort: "-created_date"}
)

// Registry is the set of known pages keyed by name.
type Registry map[string]*Page

// Default returns the pages of the application.
func Default() Registry {
	pages := []*Page{
		{
			Name:      "dashboard",
			Slots:     []Slot{profileSlot, careersSlot, pathsSlot, projectsSlot, questionsSlot},
			summarize: dashboardSummary,
		},
		{
			Name:      "careers",
			Slots:     []Slot{profileSlot, careersSlot},
			Flows:     []string{generation.FlowCareers},
			Primary:   SlotCareers,
			Search:    []string{"title", "industry"},
			Filters:   []string{"job_outlook", "industry"},
			Order:     "-match_score",
			summarize: careersSummary,
		},
		{
			Name:      "learning",
			Slots:     []Slot{profileSlot, careersSlot, pathsSlot},
			Flows:     []string{generation.FlowLearningPath},
			Primary:   SlotPaths,
			Search:    []string{"title", "target_career"},
			Filters:   []string{"completion_status", "difficulty_level"},
			summarize: learningSummary,
		},
		{
			Name:      "projects",
			Slots:     []Slot{profileSlot, careersSlot, projectsSlot},
			Flows:     []string{generation.FlowProjects},
			Primary:   SlotProjects,
			Search:    []string{"title", "career_relevance"},
			Filters:   []string{"completion_status", "difficulty_level"},
			summarize: projectsSummary,
		},
		{
			Name:      "interview",
			Slots:     []Slot{careersSlot, questionsSlot},
			Flows:     []string{generation.FlowInterviewQuestions, generation.FlowAnswerFeedback},
			Primary:   SlotQuestions,
			Search:    []string{"question", "career_focus"},
			Filters:   []string{"question_type", "practice_status", "difficulty_level"},
			summarize: interviewSummary,
		},
		{
			Name:  "assessment",
			Slots: []Slot{profileSlot},
			Flows: []string{generation.FlowResumeSkills, generation.FlowDemoProfile},
		},
		{
			Name:  "resume",
			Slots: []Slot{profileSlot},
			Flows: []string{generation.FlowResumeTips, generation.FlowResumeSkills},
		},
	}
	r := make(Registry, len(pages))
	for _, p := range pages {
		r[p.Name] = p
	}
	return r
}
