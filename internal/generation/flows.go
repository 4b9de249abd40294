package generation

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/apperrors"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/catalog"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/completion"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/entity"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/identity"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/schema"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/storage"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/store"
)

const (
	FlowCareers            = "careers"
	FlowLearningPath       = "learning_path"
	FlowProjects           = "projects"
	FlowInterviewQuestions = "interview_questions"
	FlowResumeSkills       = "resume_skills"
	FlowAnswerFeedback     = "answer_feedback"
	FlowResumeTips         = "resume_tips"
	FlowDemoProfile        = "demo_profile"
)

const (
	careerCount      = 5
	projectCount     = 3
	questionCount    = 5
	maxQuestionCount = 10
)

// Args carries the inputs of every flow; each flow reads the ones it needs.
type Args struct {
	CareerID       string              `json:"career_id,omitempty"`
	CareerFocus    string              `json:"career_focus,omitempty"`
	QuestionType   entity.QuestionType `json:"question_type,omitempty"`
	Count          int                 `json:"count,omitempty"`
	FileURL        string              `json:"file_url,omitempty"`
	QuestionID     string              `json:"question_id,omitempty"`
	Answer         string              `json:"answer,omitempty"`
	ResumeText     string              `json:"resume_text,omitempty"`
	JobDescription string              `json:"job_description,omitempty"`
	ProfileID      string              `json:"profile_id,omitempty"`
}

// Flows lists the flow names Generate accepts.
func Flows() []string {
	return []string{
		FlowCareers, FlowLearningPath, FlowProjects, FlowInterviewQuestions,
		FlowResumeSkills, FlowAnswerFeedback, FlowResumeTips, FlowDemoProfile,
	}
}

// Generate dispatches a flow by name.
func (s *Service) Generate(ctx context.Context, who identity.Identity, flow string, args Args) (Result, error) {
	switch flow {
	case FlowCareers:
		return s.Careers(ctx, who)
	case FlowLearningPath:
		return s.LearningPath(ctx, who, args.CareerID)
	case FlowProjects:
		return s.Projects(ctx, who, args.CareerID)
	case FlowInterviewQuestions:
		return s.InterviewQuestions(ctx, who, args.CareerFocus, args.QuestionType, args.Count)
	case FlowResumeSkills:
		return s.ResumeSkills(ctx, who, args.FileURL)
	case FlowAnswerFeedback:
		return s.AnswerFeedback(ctx, who, args.QuestionID, args.Answer)
	case FlowResumeTips:
		return s.ResumeTips(ctx, who, args.ResumeText, args.JobDescription, args.FileURL)
	case FlowDemoProfile:
		return s.DemoProfile(ctx, who, args.ProfileID)
	}
	return Result{}, apperrors.Validation("flow", "unknown generation flow %q", flow)
}

// Careers recommends careers from the user's profile and appends them.
func (s *Service) Careers(ctx context.Context, who identity.Identity) (Result, error) {
	res := Result{Flow: FlowCareers, Slot: "careers", Position: Append}
	profile, err := s.profile(ctx, who)
	if err != nil {
		return res, err
	}
	if profile == nil {
		return res, apperrors.Validation("profile", "complete the skill assessment first")
	}
	res.Records, err = s.Run(ctx, who, Job{
		Flow:   FlowCareers,
		Kind:   entity.KindCareerPath,
		Prompt: careersPrompt(*profile, careerCount),
		Count:  careerCount,
	})
	return res, err
}

// LearningPath builds one path towards careerID, the user's first career
// when empty, or a general tech career when the user has none.
func (s *Service) LearningPath(ctx context.Context, who identity.Identity, careerID string) (Result, error) {
	res := Result{Flow: FlowLearningPath, Slot: "paths", Position: Prepend}
	career, err := s.career(ctx, who, careerID)
	if err != nil {
		return res, err
	}
	profile, err := s.profile(ctx, who)
	if err != nil {
		return res, err
	}

	target := generalCareer
	if career != nil {
		target = career.Title
	}
	res.Records, err = s.Run(ctx, who, Job{
		Flow:   FlowLearningPath,
		Kind:   entity.KindLearningPath,
		Prompt: learningPathPrompt(profile, career),
		Omit:   []string{"completion_status", "target_career"},
		Set: map[string]any{
			"completion_status": string(entity.StatusNotStarted),
			"target_career":     target,
		},
	})
	return res, err
}

// Projects generates project briefs for careerID or the user's first career.
func (s *Service) Projects(ctx context.Context, who identity.Identity, careerID string) (Result, error) {
	res := Result{Flow: FlowProjects, Slot: "projects", Position: Prepend}
	career, err := s.career(ctx, who, careerID)
	if err != nil {
		return res, err
	}
	if career == nil {
		return res, apperrors.Validation("career_id", "explore careers before generating projects")
	}
	profile, err := s.profile(ctx, who)
	if err != nil {
		return res, err
	}

	res.Records, err = s.Run(ctx, who, Job{
		Flow:   FlowProjects,
		Kind:   entity.KindProject,
		Prompt: projectsPrompt(profile, *career, projectCount),
		Count:  projectCount,
		Omit:   []string{"completion_status", "career_relevance"},
		Set: map[string]any{
			"completion_status": string(entity.StatusNotStarted),
			"career_relevance":  career.Title,
		},
	})
	return res, err
}

// InterviewQuestions generates practice questions. Without a completion
// provider it copies questions from the demo catalog instead.
func (s *Service) InterviewQuestions(ctx context.Context, who identity.Identity, focus string, qt entity.QuestionType, n int) (Result, error) {
	res := Result{Flow: FlowInterviewQuestions, Slot: "questions", Position: Prepend}
	if err := who.Require(); err != nil {
		return res, err
	}
	if qt != "" && !entity.ValidQuestionTypes[qt] {
		return res, apperrors.Validation("question_type", "unknown question type %q", qt)
	}
	switch {
	case n <= 0:
		n = questionCount
	case n > maxQuestionCount:
		n = maxQuestionCount
	}
	focus = strings.TrimSpace(focus)
	if focus == "" {
		career, err := s.career(ctx, who, "")
		if err != nil {
			return res, err
		}
		if career != nil {
			focus = career.Title
		} else {
			focus = s.catalog.Careers[0].Name
		}
	}

	if !s.Configured() {
		recs, err := s.demoQuestions(ctx, who, focus, qt, n)
		res.Records = recs
		return res, err
	}

	profile, err := s.profile(ctx, who)
	if err != nil {
		return res, err
	}
	set := map[string]any{
		"practice_status": string(entity.PracticeNew),
		"career_focus":    focus,
	}
	omit := []string{"practice_status", "user_answer", "feedback", "career_focus"}
	if qt != "" {
		set["question_type"] = string(qt)
		omit = append(omit, "question_type")
	}
	res.Records, err = s.Run(ctx, who, Job{
		Flow:   FlowInterviewQuestions,
		Kind:   entity.KindInterviewPrep,
		Prompt: interviewPrompt(focus, qt, n, profile),
		Count:  n,
		Omit:   omit,
		Set:    set,
	})
	return res, err
}

func (s *Service) demoQuestions(ctx context.Context, who identity.Identity, focus string, qt entity.QuestionType, n int) (recs store.Records, err error) {
	defer s.observe(FlowInterviewQuestions, &err)

	questions := s.catalog.Questions(focus, qt, n)
	if len(questions) == 0 {
		return nil, apperrors.Validation("question_type", "no demo questions of type %q", qt)
	}
	items := make([]map[string]any, 0, len(questions))
	for _, q := range questions {
		fields, err := store.ToFields(q)
		if err != nil {
			return nil, err
		}
		items = append(items, fields)
	}
	return s.store.BulkCreate(ctx, who, string(entity.KindInterviewPrep), items)
}

var resumeFields = []string{"skills", "current_role", "education_background", "experience_level", "preferred_industries"}

// ResumeSkills extracts skills and background from an uploaded resume and
// merges them into the user's profile, creating it when missing.
func (s *Service) ResumeSkills(ctx context.Context, who identity.Identity, fileURL string) (res Result, err error) {
	res = Result{Flow: FlowResumeSkills, Slot: "profile", Position: Replace}
	if err := who.Require(); err != nil {
		return res, err
	}
	fileURL = strings.TrimSpace(fileURL)
	if fileURL == "" {
		return res, apperrors.Validation("file_url", "is required")
	}
	defer s.observe(FlowResumeSkills, &err)

	doc, err := s.document(ctx, who, fileURL)
	if err != nil {
		return res, err
	}
	req := completion.Request{
		SchemaName: "resume_profile",
		Prompt:     resumeSkillsPrompt(doc.Text),
		Images:     images(doc),
	}

	sch, err := s.store.Schema(string(entity.KindUserProfile))
	if err != nil {
		return res, err
	}
	ask := sch.Subset(resumeFields...)
	req.Schema = ask.JSONSchema()

	var raw map[string]any
	if err := s.complete(ctx, req, &raw); err != nil {
		return res, err
	}
	var extracted entity.UserProfile
	if err := convert(ask.Conform(raw), &extracted); err != nil {
		return res, apperrors.Transport("decode "+FlowResumeSkills, err)
	}

	existing, err := s.profile(ctx, who)
	if err != nil {
		return res, err
	}
	patch := resumePatch(existing, extracted)
	patch["resume_url"] = fileURL
	patch["last_assessment_date"] = store.Timestamp(s.now()).Format(store.TimeLayout)

	rec, err := s.saveProfile(ctx, who, existing, patch)
	if err != nil {
		return res, err
	}
	res.Records = store.Records{rec}
	res.Data = extracted.Skills
	return res, nil
}

// resumePatch keeps existing values the resume does not mention and merges
// skills by name, preferring what the user already recorded.
func resumePatch(existing *entity.UserProfile, extracted entity.UserProfile) map[string]any {
	patch := map[string]any{}
	set := func(name, v string) {
		if strings.TrimSpace(v) != "" {
			patch[name] = v
		}
	}
	set("current_role", extracted.CurrentRole)
	set("education_background", extracted.EducationBackground)
	set("experience_level", string(extracted.ExperienceLevel))
	if len(extracted.PreferredIndustries) > 0 {
		industries := make([]any, 0, len(extracted.PreferredIndustries))
		for _, i := range extracted.PreferredIndustries {
			industries = append(industries, i)
		}
		patch["preferred_industries"] = industries
	}

	var current []entity.Skill
	if existing != nil {
		current = existing.Skills
	}
	merged := mergeSkills(current, extracted.Skills)
	skills := make([]any, 0, len(merged))
	for _, sk := range merged {
		m := map[string]any{"name": sk.Name}
		if sk.Proficiency != "" {
			m["proficiency"] = string(sk.Proficiency)
		}
		if sk.Category != "" {
			m["category"] = string(sk.Category)
		}
		skills = append(skills, m)
	}
	patch["skills"] = skills
	return patch
}

func mergeSkills(current, extracted []entity.Skill) []entity.Skill {
	seen := make(map[string]bool, len(current)+len(extracted))
	out := make([]entity.Skill, 0, len(current)+len(extracted))
	for _, list := range [][]entity.Skill{current, extracted} {
		for _, sk := range list {
			key := strings.ToLower(strings.TrimSpace(sk.Name))
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, sk)
		}
	}
	return out
}

// AnswerFeedback reviews the user's answer to a question and records both.
func (s *Service) AnswerFeedback(ctx context.Context, who identity.Identity, questionID, answer string) (res Result, err error) {
	res = Result{Flow: FlowAnswerFeedback, Slot: "questions", Position: Replace}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return res, apperrors.Validation("answer", "is required")
	}
	q, err := s.questions.Get(ctx, who, questionID)
	if err != nil {
		return res, err
	}
	defer s.observe(FlowAnswerFeedback, &err)

	var out struct {
		Feedback string `json:"feedback"`
	}
	req := completion.Request{
		Prompt:     feedbackPrompt(q, answer),
		SchemaName: "answer_feedback",
		Schema: schema.ObjectSchema(map[string]*schema.Field{
			"feedback": {Type: schema.String, Description: "Constructive feedback on the answer"},
		}),
	}
	if err := s.complete(ctx, req, &out); err != nil {
		return res, err
	}
	if strings.TrimSpace(out.Feedback) == "" {
		return res, apperrors.Transport("decode "+FlowAnswerFeedback, errNoItems)
	}

	patch := map[string]any{"user_answer": answer, "feedback": out.Feedback}
	if q.PracticeStatus == "" || q.PracticeStatus == entity.PracticeNew {
		patch["practice_status"] = string(entity.PracticePracticed)
	}
	rec, err := s.store.Update(ctx, who, string(entity.KindInterviewPrep), q.ID, patch)
	if err != nil {
		return res, err
	}
	res.Records = store.Records{rec}
	return res, nil
}

// ResumeTips suggests resume rewrites for a job description. Tips are not
// stored. Without a completion provider the demo tips are returned.
func (s *Service) ResumeTips(ctx context.Context, who identity.Identity, resume, job, fileURL string) (res Result, err error) {
	res = Result{Flow: FlowResumeTips, Slot: "tips", Position: Replace}
	if err := who.Require(); err != nil {
		return res, err
	}
	if strings.TrimSpace(job) == "" {
		return res, apperrors.Validation("job_description", "is required")
	}
	var attached []completion.Image
	if strings.TrimSpace(resume) == "" && strings.TrimSpace(fileURL) != "" {
		doc, err := s.document(ctx, who, fileURL)
		if err != nil {
			return res, err
		}
		resume, attached = doc.Text, images(doc)
	}
	if strings.TrimSpace(resume) == "" && len(attached) == 0 {
		return res, apperrors.Validation("resume_text", "provide resume text or a resume upload")
	}
	if !s.Configured() {
		res.Data = s.catalog.ResumeTips
		return res, nil
	}
	defer s.observe(FlowResumeTips, &err)

	var out struct {
		Tips []catalog.ResumeTip `json:"tips"`
	}
	req := completion.Request{
		Prompt:     resumeTipsPrompt(resume, job),
		Images:     attached,
		SchemaName: "resume_tips",
		Schema: schema.ObjectSchema(map[string]*schema.Field{
			"tips": {Type: schema.Array, Items: &schema.Field{Type: schema.Object, Properties: map[string]*schema.Field{
				"title":    {Type: schema.String},
				"original": {Type: schema.String},
				"improved": {Type: schema.String},
			}}},
		}),
	}
	if err := s.complete(ctx, req, &out); err != nil {
		return res, err
	}
	if len(out.Tips) == 0 {
		return res, apperrors.Transport("decode "+FlowResumeTips, errNoItems)
	}
	res.Data = out.Tips
	return res, nil
}

// DemoProfile replaces the user's profile fields with a catalog profile.
func (s *Service) DemoProfile(ctx context.Context, who identity.Identity, id string) (res Result, err error) {
	res = Result{Flow: FlowDemoProfile, Slot: "profile", Position: Replace}
	if err := who.Require(); err != nil {
		return res, err
	}
	demo, ok := s.catalog.Profile(id)
	if !ok {
		return res, apperrors.NotFound("demo profile", id)
	}
	defer s.observe(FlowDemoProfile, &err)

	fields, err := store.ToFields(demo.UserProfile())
	if err != nil {
		return res, err
	}
	fields["last_assessment_date"] = store.Timestamp(s.now()).Format(store.TimeLayout)

	existing, err := s.profile(ctx, who)
	if err != nil {
		return res, err
	}
	rec, err := s.saveProfile(ctx, who, existing, fields)
	if err != nil {
		return res, err
	}
	res.Records = store.Records{rec}
	return res, nil
}

// profile returns the user's first profile, or nil when there is none.
func (s *Service) profile(ctx context.Context, who identity.Identity) (*entity.UserProfile, error) {
	profiles, err := s.profiles.Owned(ctx, who, store.Limit(1))
	if err != nil || len(profiles) == 0 {
		return nil, err
	}
	return &profiles[0], nil
}

func (s *Service) saveProfile(ctx context.Context, who identity.Identity, existing *entity.UserProfile, fields map[string]any) (store.Record, error) {
	kind := string(entity.KindUserProfile)
	if existing != nil {
		return s.store.Update(ctx, who, kind, existing.ID, fields)
	}
	return s.store.Create(ctx, who, kind, fields)
}

// career returns the career id, or the user's first career when id is
// empty. Nil means the user has no careers yet.
func (s *Service) career(ctx context.Context, who identity.Identity, id string) (*entity.CareerPath, error) {
	if id != "" {
		c, err := s.careers.Get(ctx, who, id)
		if err != nil {
			return nil, err
		}
		return &c, nil
	}
	careers, err := s.careers.Owned(ctx, who, store.Limit(1))
	if err != nil || len(careers) == 0 {
		return nil, err
	}
	return &careers[0], nil
}

// document loads an upload owned by who. A URL that does not point at one
// of the caller's uploads is rejected rather than handed to the model.
func (s *Service) document(ctx context.Context, who identity.Identity, fileURL string) (storage.Document, error) {
	if s.uploads == nil {
		return storage.Document{}, apperrors.Transport("uploads", errNoUploads)
	}
	key, ok := storage.KeyFromURL(fileURL, who.ID)
	if !ok {
		return storage.Document{}, apperrors.Validation("file_url", "must point at one of your uploads")
	}
	return storage.Load(ctx, s.uploads, key)
}

func images(doc storage.Document) []completion.Image {
	if !doc.IsImage() {
		return nil
	}
	return []completion.Image{{MediaType: doc.ContentType, Data: doc.Data}}
}

func convert(in map[string]any, out any) error {
	b, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}
