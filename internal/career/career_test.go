package career

import (
	"errors"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/apperrors"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func required(names ...string) []entity.RequiredSkill {
	out := make([]entity.RequiredSkill, 0, len(names))
	for _, n := range names {
		out = append(out, entity.RequiredSkill{Skill: n})
	}
	return out
}

func TestSkillMatch_TwoOfThree(t *testing.T) {
	c := entity.CareerPath{RequiredSkills: required("A", "B", "C")}
	skills := []entity.Skill{{Name: "A"}, {Name: "C"}}
	assert.Equal(t, 67, SkillMatch(c, skills))
}

func TestSkillMatch_SQLPythonScenario(t *testing.T) {
	c := entity.CareerPath{RequiredSkills: []entity.RequiredSkill{
		{Skill: "SQL", ProficiencyNeeded: entity.ProficiencyIntermediate},
		{Skill: "Python", ProficiencyNeeded: entity.ProficiencyBeginner},
	}}
	skills := []entity.Skill{{Name: "SQL", Proficiency: entity.ProficiencyAdvanced}}

	assert.Equal(t, 50, SkillMatch(c, skills))

	gap := SkillGap(c, skills)
	assert.Equal(t, 50, gap.MatchScore)
	require.Len(t, gap.Have, 1)
	assert.Equal(t, SkillComparison{Skill: "SQL", User: 75, Required: 50}, gap.Have[0])
	require.Len(t, gap.Develop, 1)
	assert.Equal(t, SkillComparison{Skill: "Python", User: 0, Required: 25, Gap: 25}, gap.Develop[0])
}

func TestSkillMatch_EdgeCases(t *testing.T) {
	assert.Equal(t, 0, SkillMatch(entity.CareerPath{}, []entity.Skill{{Name: "Go"}}))

	c := entity.CareerPath{RequiredSkills: required("sql")}
	assert.Equal(t, 100, SkillMatch(c, []entity.Skill{{Name: " SQL "}}))
	assert.Equal(t, 0, SkillMatch(c, nil))
}

func TestSkillGap_UnknownRequiredLevelDefaultsToIntermediate(t *testing.T) {
	c := entity.CareerPath{RequiredSkills: required("Excel")}
	gap := SkillGap(c, []entity.Skill{{Name: "excel", Proficiency: entity.ProficiencyBeginner}})
	require.Len(t, gap.Develop, 1)
	assert.Equal(t, 50, gap.Develop[0].Required)
	assert.Equal(t, 25, gap.Develop[0].Gap)
}

func TestTrackSkills(t *testing.T) {
	p := entity.LearningPath{SkillGaps: []string{"SQL", "Python", "Tableau", "Statistics"}}
	skills := []entity.Skill{
		{Name: "SQL", Proficiency: entity.ProficiencyAdvanced},
		{Name: "Python", Proficiency: entity.ProficiencyIntermediate},
	}

	tr := TrackSkills(p, skills)
	assert.Equal(t, 25, tr.Overall)
	assert.Equal(t, []string{"Tableau", "Statistics"}, tr.Missing)
	assert.Equal(t, 75, tr.Skills[0].Progress)
	assert.False(t, tr.Skills[2].HasSkill)

	assert.Equal(t, 0, TrackSkills(entity.LearningPath{}, skills).Overall)
}

func TestTransition_Start(t *testing.T) {
	field, next, err := Transition(entity.KindLearningPath, string(entity.StatusNotStarted), ActionStart)
	require.NoError(t, err)
	assert.Equal(t, "completion_status", field)
	assert.Equal(t, string(entity.StatusInProgress), next)

	for _, from := range []entity.CompletionStatus{entity.StatusInProgress, entity.StatusCompleted} {
		_, _, err := Transition(entity.KindLearningPath, string(from), ActionStart)
		assert.True(t, errors.Is(err, apperrors.ErrValidation), from)
	}
}

func TestTransition_Table(t *testing.T) {
	cases := []struct {
		kind    entity.Kind
		from    string
		action  Action
		field   string
		to      string
		wantErr bool
	}{
		{entity.KindProject, "", ActionStart, "completion_status", "in_progress", false},
		{entity.KindProject, "in_progress", ActionComplete, "completion_status", "completed", false},
		{entity.KindLearningPath, "completed", ActionReview, "completion_status", "in_progress", false},
		{entity.KindLearningPath, "not_started", ActionComplete, "", "", true},
		{entity.KindInterviewPrep, "new", ActionPractice, "practice_status", "practiced", false},
		{entity.KindInterviewPrep, "practiced", ActionMaster, "practice_status", "mastered", false},
		{entity.KindInterviewPrep, "mastered", ActionReview, "practice_status", "practiced", false},
		{entity.KindInterviewPrep, "new", ActionMaster, "", "", true},
		{entity.KindCareerPath, "", ActionStart, "", "", true},
		{entity.KindProject, "not_started", Action("pause"), "", "", true},
		{entity.KindProject, "paused", ActionComplete, "", "", true},
		{entity.KindInterviewPrep, "forgotten", ActionPractice, "", "", true},
	}
	for _, tc := range cases {
		field, to, err := Transition(tc.kind, tc.from, tc.action)
		if tc.wantErr {
			assert.Error(t, err, "%s %s from %q", tc.kind, tc.action, tc.from)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tc.field, field)
		assert.Equal(t, tc.to, to)
	}
}

func TestProgressPercent(t *testing.T) {
	assert.Equal(t, 100, ProgressPercent(entity.StatusCompleted))
	assert.Equal(t, 45, ProgressPercent(entity.StatusInProgress))
	assert.Equal(t, 0, ProgressPercent(entity.StatusNotStarted))
	assert.Equal(t, 0, ProgressPercent(""))
}

func TestDashboardStats(t *testing.T) {
	profile := &entity.UserProfile{Skills: []entity.Skill{{Name: "SQL"}, {Name: "Go"}}}
	paths := []entity.LearningPath{
		{CompletionStatus: entity.StatusCompleted},
		{CompletionStatus: entity.StatusInProgress},
		{CompletionStatus: entity.StatusNotStarted},
	}
	projects := []entity.Project{{CompletionStatus: entity.StatusCompleted}, {}}
	questions := []entity.InterviewPrep{{PracticeStatus: entity.PracticeMastered}, {PracticeStatus: entity.PracticeNew}}

	s := DashboardStats(profile, make([]entity.CareerPath, 4), paths, projects, questions)
	assert.Equal(t, Stats{
		SkillsMapped:       2,
		CareersExplored:    4,
		LearningProgress:   33,
		ProjectsCompleted:  1,
		TotalProjects:      2,
		LearningPaths:      3,
		CompletedLearning:  1,
		QuestionsPracticed: 1,
	}, s)

	assert.Equal(t, Stats{}, DashboardStats(nil, nil, nil, nil, nil))
}

func TestNextSteps(t *testing.T) {
	step, ok := NextStep(NextSteps(nil, nil, nil, nil))
	require.True(t, ok)
	assert.Equal(t, "assessment", step.ID)

	profile := &entity.UserProfile{Skills: []entity.Skill{{Name: "SQL"}}}
	step, _ = NextStep(NextSteps(profile, nil, nil, nil))
	assert.Equal(t, "careers", step.ID)

	profile.CareerInterests = []string{"Data"}
	step, _ = NextStep(NextSteps(profile, make([]entity.CareerPath, 1), nil, nil))
	assert.Equal(t, "learning", step.ID)

	step, _ = NextStep(NextSteps(profile, make([]entity.CareerPath, 1), make([]entity.LearningPath, 1), nil))
	assert.Equal(t, "projects", step.ID)

	_, ok = NextStep(NextSteps(profile, make([]entity.CareerPath, 1), make([]entity.LearningPath, 1), make([]entity.Project, 1)))
	assert.False(t, ok)
}

func TestRecentActivity(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	at := func(h int) entity.Meta { return entity.Meta{ID: time.Duration(h).String(), CreatedDate: base.Add(time.Duration(h) * time.Hour)} }

	careers := []entity.CareerPath{{Meta: at(1), Title: "c1"}, {Meta: at(5), Title: "c5"}}
	paths := []entity.LearningPath{{Meta: at(3), Title: "l3"}, {Meta: at(6), Title: "l6"}}
	projects := []entity.Project{{Meta: at(2), Title: "p2"}, {Meta: at(4), Title: "p4"}}

	got := RecentActivity(careers, paths, projects)
	require.Len(t, got, 5)
	titles := make([]string, 0, len(got))
	for _, a := range got {
		titles = append(titles, a.Title)
	}
	assert.Equal(t, []string{"l6", "c5", "p4", "l3", "p2"}, titles)
	assert.Equal(t, entity.KindLearningPath, got[0].Kind)
}
