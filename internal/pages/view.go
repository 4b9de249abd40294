package pages

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/career"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/entity"
)

// View is what a client renders: the state with search, filters and
// ordering applied to the primary slot, plus page-specific figures.
type View struct {
	Page      string             `json:"page"`
	Phase     Phase              `json:"phase"`
	Selection string             `json:"selection,omitempty"`
	Search    string             `json:"search,omitempty"`
	Filters   map[string]string  `json:"filters,omitempty"`
	Error     string             `json:"error,omitempty"`
	Slots     map[string][]Entry `json:"slots"`
	Data      map[string]any     `json:"data,omitempty"`
	Summary   any                `json:"summary,omitempty"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// Project derives the view from a state. It never touches the store.
func Project(page *Page, st *State) View {
	v := View{
		Page:      st.Page,
		Phase:     st.Phase,
		Selection: st.Selection,
		Search:    st.Search,
		Filters:   st.Filters,
		Error:     st.Error,
		Slots:     make(map[string][]Entry, len(st.Slots)),
		Data:      st.Data,
		UpdatedAt: st.UpdatedAt,
	}
	for name, entries := range st.Slots {
		if name != page.Primary {
			v.Slots[name] = entries
			continue
		}
		v.Slots[name] = narrow(entries, page, st.Search, st.Filters)
	}
	if page.summarize != nil {
		v.Summary = page.summarize(st)
	}
	return v
}

func narrow(entries []Entry, page *Page, search string, filters map[string]string) []Entry {
	needle := strings.ToLower(strings.TrimSpace(search))
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if needle != "" && !matchesSearch(e, page.Search, needle) {
			continue
		}
		if !matchesFilters(e, filters) {
			continue
		}
		out = append(out, e)
	}
	if page.Order != "" {
		orderEntries(out, page.Order)
	}
	return out
}

func matchesSearch(e Entry, fields []string, needle string) bool {
	for _, f := range fields {
		if s, ok := e[f].(string); ok && strings.Contains(strings.ToLower(s), needle) {
			return true
		}
	}
	return false
}

func matchesFilters(e Entry, filters map[string]string) bool {
	for field, want := range filters {
		got, ok := e[field]
		if !ok || fmt.Sprint(got) != want {
			return false
		}
	}
	return true
}

// orderEntries sorts by one field; "-" means descending. Entries without
// the field go last.
func orderEntries(entries []Entry, key string) {
	desc := strings.HasPrefix(key, "-")
	field := strings.TrimPrefix(key, "-")
	sort.SliceStable(entries, func(i, j int) bool {
		a, aok := entries[i][field]
		b, bok := entries[j][field]
		if !aok || !bok {
			return aok && !bok
		}
		c := compare(a, b)
		if desc {
			return c > 0
		}
		return c < 0
	})
}

func compare(a, b any) int {
	af, aok := number(a)
	bf, bok := number(b)
	if aok && bok {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		}
		return 0
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func decodeSlot[T any](st *State, slot string) []T {
	out := make([]T, 0, len(st.Slots[slot]))
	for _, e := range st.Slots[slot] {
		var v T
		b, err := json.Marshal(e)
		if err == nil {
			err = json.Unmarshal(b, &v)
		}
		if err != nil {
			slog.Warn("skipping undecodable page entry",
				"action", "page.project",
				"page", st.Page,
				"slot", slot,
				"id", e["id"],
				"error", err.Error(),
			)
			continue
		}
		out = append(out, v)
	}
	return out
}

func profileOf(st *State) *entity.UserProfile {
	profiles := decodeSlot[entity.UserProfile](st, SlotProfile)
	if len(profiles) == 0 {
		return nil
	}
	return &profiles[0]
}

func skillsOf(st *State) []entity.Skill {
	if p := profileOf(st); p != nil {
		return p.Skills
	}
	return nil
}

type DashboardSummary struct {
	Stats    career.Stats      `json:"stats"`
	Steps    []career.Step     `json:"steps"`
	NextStep *career.Step      `json:"next_step,omitempty"`
	Recent   []career.Activity `json:"recent_activity"`
}

func dashboardSummary(st *State) any {
	profile := profileOf(st)
	careers := decodeSlot[entity.CareerPath](st, SlotCareers)
	paths := decodeSlot[entity.LearningPath](st, SlotPaths)
	projects := decodeSlot[entity.Project](st, SlotProjects)
	questions := decodeSlot[entity.InterviewPrep](st, SlotQuestions)

	s := DashboardSummary{
		Stats:  career.DashboardStats(profile, careers, paths, projects, questions),
		Steps:  career.NextSteps(profile, careers, paths, projects),
		Recent: career.RecentActivity(careers, paths, projects),
	}
	if next, ok := career.NextStep(s.Steps); ok {
		s.NextStep = &next
	}
	return s
}

type CareersSummary struct {
	SkillMatch map[string]int      `json:"skill_match"`
	Gap        *career.GapAnalysis `json:"skill_gap,omitempty"`
}

func careersSummary(st *State) any {
	skills := skillsOf(st)
	s := CareersSummary{SkillMatch: map[string]int{}}
	for _, c := range decodeSlot[entity.CareerPath](st, SlotCareers) {
		s.SkillMatch[c.ID] = career.SkillMatch(c, skills)
		if c.ID == st.Selection {
			gap := career.SkillGap(c, skills)
			s.Gap = &gap
		}
	}
	return s
}

type LearningSummary struct {
	Progress map[string]int       `json:"progress"`
	Tracker  *career.SkillTracker `json:"skill_tracker,omitempty"`
}

func learningSummary(st *State) any {
	s := LearningSummary{Progress: map[string]int{}}
	for _, p := range decodeSlot[entity.LearningPath](st, SlotPaths) {
		s.Progress[p.ID] = career.ProgressPercent(p.CompletionStatus)
		if p.ID == st.Selection {
			t := career.TrackSkills(p, skillsOf(st))
			s.Tracker = &t
		}
	}
	return s
}

type ProjectsSummary struct {
	Progress  map[string]int `json:"progress"`
	Completed int            `json:"completed"`
	Total     int            `json:"total"`
}

func projectsSummary(st *State) any {
	projects := decodeSlot[entity.Project](st, SlotProjects)
	s := ProjectsSummary{Progress: map[string]int{}, Total: len(projects)}
	for _, p := range projects {
		s.Progress[p.ID] = career.ProgressPercent(p.CompletionStatus)
		if p.CompletionStatus == entity.StatusCompleted {
			s.Completed++
		}
	}
	return s
}

type InterviewSummary struct {
	ByStatus map[entity.PracticeStatus]int `json:"by_status"`
	ByType   map[entity.QuestionType]int   `json:"by_type"`
}

func interviewSummary(st *State) any {
	s := InterviewSummary{ByStatus: map[entity.PracticeStatus]int{}, ByType: map[entity.QuestionType]int{}}
	for _, q := range decodeSlot[entity.InterviewPrep](st, SlotQuestions) {
		status := q.PracticeStatus
		if status == "" {
			status = entity.PracticeNew
		}
		s.ByStatus[status]++
		if q.QuestionType != "" {
			s.ByType[q.QuestionType]++
		}
	}
	return s
}
