// Package career holds the pure computations shown alongside careers,
// learning paths and projects. Nothing here touches the store.
package career

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/entity"
)

// Proficiency points used by the gap analysis and the skill tracker.
var levelPoints = map[entity.Proficiency]int{
	entity.ProficiencyBeginner:     25,
	entity.ProficiencyIntermediate: 50,
	entity.ProficiencyAdvanced:     75,
	entity.ProficiencyExpert:       100,
}

const (
	defaultRequiredPoints = 50
	trackedSkillThreshold = 75
)

// Level returns the points for a proficiency, 0 when unknown.
func Level(p entity.Proficiency) int {
	return levelPoints[p]
}

func skillIndex(skills []entity.Skill) map[string]entity.Skill {
	idx := make(map[string]entity.Skill, len(skills))
	for _, s := range skills {
		idx[strings.ToLower(strings.TrimSpace(s.Name))] = s
	}
	return idx
}

// SkillMatch is round(matched/required*100), matching names without regard
// to case. A career without required skills matches 0%.
func SkillMatch(c entity.CareerPath, skills []entity.Skill) int {
	if len(c.RequiredSkills) == 0 {
		return 0
	}
	idx := skillIndex(skills)
	matched := 0
	for _, req := range c.RequiredSkills {
		if _, ok := idx[strings.ToLower(strings.TrimSpace(req.Skill))]; ok {
			matched++
		}
	}
	return int(math.Round(float64(matched) / float64(len(c.RequiredSkills)) * 100))
}

type SkillComparison struct {
	Skill    string `json:"skill"`
	User     int    `json:"user"`
	Required int    `json:"required"`
	Gap      int    `json:"gap"`
}

type GapAnalysis struct {
	CareerID    string            `json:"career_id,omitempty"`
	Career      string            `json:"career"`
	MatchScore  int               `json:"skill_match"`
	Comparisons []SkillComparison `json:"comparisons"`
	Have        []SkillComparison `json:"have"`
	Develop     []SkillComparison `json:"develop"`
}

// SkillGap compares the user's level with each required level. A required
// skill without a known proficiency counts as intermediate.
func SkillGap(c entity.CareerPath, skills []entity.Skill) GapAnalysis {
	idx := skillIndex(skills)
	g := GapAnalysis{
		CareerID:    c.ID,
		Career:      c.Title,
		MatchScore:  SkillMatch(c, skills),
		Comparisons: []SkillComparison{},
		Have:        []SkillComparison{},
		Develop:     []SkillComparison{},
	}
	for _, req := range c.RequiredSkills {
		required, ok := levelPoints[req.ProficiencyNeeded]
		if !ok {
			required = defaultRequiredPoints
		}
		user := Level(idx[strings.ToLower(strings.TrimSpace(req.Skill))].Proficiency)
		cmp := SkillComparison{Skill: req.Skill, User: user, Required: required}
		if user >= required {
			g.Have = append(g.Have, cmp)
		} else {
			cmp.Gap = required - user
			g.Develop = append(g.Develop, cmp)
		}
		g.Comparisons = append(g.Comparisons, cmp)
	}
	return g
}

type TrackedSkill struct {
	Name     string             `json:"name"`
	Level    entity.Proficiency `json:"current_level,omitempty"`
	HasSkill bool               `json:"has_skill"`
	Progress int                `json:"progress"`
}

type SkillTracker struct {
	Skills  []TrackedSkill `json:"skills"`
	Overall int            `json:"overall_progress"`
	// Missing lists the first gaps the user has no level in at all.
	Missing []string `json:"focus_next"`
}

// TrackSkills reports progress on a learning path's skill gaps. Overall is
// the share of gaps where the user is at least advanced.
func TrackSkills(p entity.LearningPath, skills []entity.Skill) SkillTracker {
	idx := skillIndex(skills)
	t := SkillTracker{Skills: []TrackedSkill{}, Missing: []string{}}
	done := 0
	for _, gap := range p.SkillGaps {
		s, ok := idx[strings.ToLower(strings.TrimSpace(gap))]
		ts := TrackedSkill{Name: gap, HasSkill: ok}
		if ok {
			ts.Level = s.Proficiency
			ts.Progress = Level(s.Proficiency)
		} else if len(t.Missing) < 2 {
			t.Missing = append(t.Missing, gap)
		}
		if ts.Progress >= trackedSkillThreshold {
			done++
		}
		t.Skills = append(t.Skills, ts)
	}
	if len(p.SkillGaps) > 0 {
		t.Overall = int(math.Round(float64(done) / float64(len(p.SkillGaps)) * 100))
	}
	return t
}

// ProgressPercent is the progress bar value for a completion status.
func ProgressPercent(s entity.CompletionStatus) int {
	switch s {
	case entity.StatusCompleted:
		return 100
	case entity.StatusInProgress:
		return 45
	default:
		return 0
	}
}

type Stats struct {
	SkillsMapped       int `json:"skills_mapped"`
	CareersExplored    int `json:"careers_explored"`
	LearningProgress   int `json:"learning_progress"`
	ProjectsCompleted  int `json:"projects_completed"`
	TotalProjects      int `json:"total_projects"`
	LearningPaths      int `json:"learning_paths"`
	CompletedLearning  int `json:"completed_learning"`
	QuestionsPracticed int `json:"questions_practiced"`
}

// DashboardStats summarizes what the user has done so far. profile may be
// nil before the first assessment.
func DashboardStats(profile *entity.UserProfile, careers []entity.CareerPath, paths []entity.LearningPath, projects []entity.Project, questions []entity.InterviewPrep) Stats {
	s := Stats{
		CareersExplored: len(careers),
		LearningPaths:   len(paths),
		TotalProjects:   len(projects),
	}
	if profile != nil {
		s.SkillsMapped = len(profile.Skills)
	}
	for _, p := range paths {
		if p.CompletionStatus == entity.StatusCompleted {
			s.CompletedLearning++
		}
	}
	if len(paths) > 0 {
		s.LearningProgress = int(math.Round(float64(s.CompletedLearning) / float64(len(paths)) * 100))
	}
	for _, p := range projects {
		if p.CompletionStatus == entity.StatusCompleted {
			s.ProjectsCompleted++
		}
	}
	for _, q := range questions {
		if q.PracticeStatus == entity.PracticePracticed || q.PracticeStatus == entity.PracticeMastered {
			s.QuestionsPracticed++
		}
	}
	return s
}

type Step struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Page        string `json:"page"`
	Done        bool   `json:"done"`
}

// NextSteps orders the guided path through the app. The first step that is
// not done is what the dashboard highlights.
func NextSteps(profile *entity.UserProfile, careers []entity.CareerPath, paths []entity.LearningPath, projects []entity.Project) []Step {
	hasSkills := profile != nil && len(profile.Skills) > 0
	hasInterests := profile != nil && len(profile.CareerInterests) > 0

	steps := []Step{
		{ID: "assessment", Title: "Complete your skill assessment", Description: "Upload a resume or add skills so recommendations fit you.", Page: "assessment", Done: hasSkills},
		{ID: "careers", Title: "Explore career paths", Description: "Generate career recommendations matched to your skills and interests.", Page: "careers", Done: hasInterests && len(careers) > 0},
		{ID: "learning", Title: "Start a learning path", Description: "Close your skill gaps with a curated course plan.", Page: "learning", Done: len(paths) > 0},
		{ID: "projects", Title: "Build a portfolio project", Description: "Practice with real-world project briefs for your target role.", Page: "projects", Done: len(projects) > 0},
	}
	return steps
}

// NextStep returns the first unfinished step, or false when all are done.
func NextStep(steps []Step) (Step, bool) {
	for _, s := range steps {
		if !s.Done {
			return s, true
		}
	}
	return Step{}, false
}

type Activity struct {
	Kind      entity.Kind `json:"kind"`
	ID        string      `json:"id"`
	Title     string      `json:"title"`
	Status    string      `json:"status,omitempty"`
	CreatedAt time.Time   `json:"created_date"`
}

const recentActivityLimit = 5

// RecentActivity merges careers, learning paths and projects, newest first.
func RecentActivity(careers []entity.CareerPath, paths []entity.LearningPath, projects []entity.Project) []Activity {
	out := make([]Activity, 0, len(careers)+len(paths)+len(projects))
	for _, c := range careers {
		out = append(out, Activity{Kind: entity.KindCareerPath, ID: c.ID, Title: c.Title, CreatedAt: c.CreatedDate})
	}
	for _, p := range paths {
		out = append(out, Activity{Kind: entity.KindLearningPath, ID: p.ID, Title: p.Title, Status: string(p.CompletionStatus), CreatedAt: p.CreatedDate})
	}
	for _, p := range projects {
		out = append(out, Activity{Kind: entity.KindProject, ID: p.ID, Title: p.Title, Status: string(p.CompletionStatus), CreatedAt: p.CreatedDate})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > recentActivityLimit {
		out = out[:recentActivityLimit]
	}
	return out
}
