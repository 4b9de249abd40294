package generation

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/apperrors"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/completion"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/entity"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/identity"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/storage"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/store"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/store/memstore"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/store/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc     *Service
	store   *store.Store
	backend *memstore.Backend
	mock    *completion.Mock
	who     identity.Identity
}

func newFixture(t *testing.T, responses ...string) *fixture {
	t.Helper()
	backend := memstore.New()
	st, _ := storetest.NewStore(t, backend)
	mock := &completion.Mock{Responses: responses}
	return &fixture{
		svc:     New(st, mock, WithClock(storetest.Clock()), WithUploads(storage.NewMemory("http://files.test"))),
		store:   st,
		backend: backend,
		mock:    mock,
		who:     storetest.NewUser(),
	}
}

func (f *fixture) seedProfile(t *testing.T) {
	t.Helper()
	_, err := f.store.Create(context.Background(), f.who, "UserProfile", map[string]any{
		"current_role":     "Support Analyst",
		"experience_level": "1-3_years",
		"skills": []any{
			map[string]any{"name": "SQL", "proficiency": "intermediate", "category": "technical"},
		},
		"career_interests": []any{"data"},
	})
	require.NoError(t, err)
}

func (f *fixture) seedCareer(t *testing.T, title string) store.Record {
	t.Helper()
	rec, err := f.store.Create(context.Background(), f.who, "CareerPath", map[string]any{
		"title": title,
		"required_skills": []any{
			map[string]any{"skill": "SQL", "importance": "essential", "proficiency_needed": "advanced"},
		},
	})
	require.NoError(t, err)
	return rec
}

const fiveCareers = `{"items": [
	{"title": "Data Analyst", "job_outlook": "Growing", "match_score": 80, "confidence": 0.9},
	{"title": "BI Developer", "job_outlook": "stable", "match_score": 70},
	{"title": "Analytics Engineer", "job_outlook": "growing", "match_score": 65},
	{"title": "Data Engineer", "job_outlook": "rapidly_growing", "match_score": 55},
	{"title": "Product Analyst", "job_outlook": "growing", "match_score": 60},
	{"title": "Extra", "job_outlook": "growing"}
]}`

func TestCareers_RequiresProfile(t *testing.T) {
	f := newFixture(t, fiveCareers)

	_, err := f.svc.Careers(context.Background(), f.who)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
	assert.Empty(t, f.mock.Requests())
}

func TestCareers_PersistsConformedRecords(t *testing.T) {
	f := newFixture(t, fiveCareers)
	f.seedProfile(t)

	res, err := f.svc.Careers(context.Background(), f.who)
	require.NoError(t, err)

	assert.Equal(t, "careers", res.Slot)
	assert.Equal(t, Append, res.Position)
	require.Len(t, res.Records, careerCount)
	assert.Equal(t, "Data Analyst", res.Records[0].Fields["title"])
	assert.Equal(t, "growing", res.Records[0].Fields["job_outlook"])
	assert.Equal(t, f.who.Owner(), res.Records[0].Fields["recommended_for_user"])
	assert.NotContains(t, res.Records[0].Fields, "confidence")

	reqs := f.mock.Requests()
	require.Len(t, reqs, 1)
	assert.Contains(t, reqs[0].Prompt, "SQL (intermediate)")
	assert.Contains(t, reqs[0].Prompt, "Generate 5")
	assert.Contains(t, string(reqs[0].Schema), `"items"`)
	assert.NotContains(t, string(reqs[0].Schema), "recommended_for_user")
}

func TestRun_InvalidItemPersistsNothing(t *testing.T) {
	f := newFixture(t, `{"items": [{"title": "A", "job_outlook": "growing"}, {"title": "B", "job_outlook": "booming"}]}`)
	f.seedProfile(t)
	before := f.backend.Len()

	_, err := f.svc.Careers(context.Background(), f.who)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
	assert.Equal(t, before, f.backend.Len())
}

func TestRun_MalformedOutputIsTransport(t *testing.T) {
	for name, body := range map[string]string{
		"no items":   `{"items": []}`,
		"wrong type": `{"items": "five careers"}`,
		"no list":    `{"title": "Data Analyst"}`,
	} {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, body)
			f.seedProfile(t)

			_, err := f.svc.Careers(context.Background(), f.who)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrTransport))
		})
	}
}

func TestRun_CompletionFailureIsTransport(t *testing.T) {
	f := newFixture(t)
	f.mock.Err = errors.New("upstream 502")
	f.seedProfile(t)

	_, err := f.svc.Careers(context.Background(), f.who)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrTransport))
}

func TestRun_RequiresIdentity(t *testing.T) {
	f := newFixture(t, fiveCareers)
	_, err := f.svc.Run(context.Background(), identity.Identity{}, Job{Flow: "x", Kind: entity.KindCareerPath, Count: 1})
	assert.True(t, errors.Is(err, apperrors.ErrAuthentication))
}

func TestDecodeItems_AcceptsRenamedEnvelope(t *testing.T) {
	items, err := decodeItems([]byte(`{"careers": [{"title": "A"}]}`), true)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	items, err = decodeItems([]byte(`[{"title": "A"}, {"title": "B"}]`), true)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	_, err = decodeItems([]byte(`{"a": [{}], "b": [{}]}`), true)
	assert.Error(t, err)
}

func TestLearningPath_DefaultsWithoutCareer(t *testing.T) {
	f := newFixture(t, `{"title": "Into tech", "completion_status": "completed", "target_career": "Astronaut"}`)

	res, err := f.svc.LearningPath(context.Background(), f.who, "")
	require.NoError(t, err)

	require.Len(t, res.Records, 1)
	assert.Equal(t, Prepend, res.Position)
	assert.Equal(t, "not_started", res.Records[0].Fields["completion_status"])
	assert.Equal(t, generalCareer, res.Records[0].Fields["target_career"])
	assert.Contains(t, f.mock.Requests()[0].Prompt, "Target career: "+generalCareer)
}

func TestLearningPath_UsesCareerRequirements(t *testing.T) {
	f := newFixture(t, `{"title": "Analyst path", "courses": [{"name": "SQL", "priority": 1, "cost": "Free"}]}`)
	career := f.seedCareer(t, "Data Analyst")

	res, err := f.svc.LearningPath(context.Background(), f.who, career.ID)
	require.NoError(t, err)
	assert.Equal(t, "Data Analyst", res.Records[0].Fields["target_career"])
	assert.Contains(t, f.mock.Requests()[0].Prompt, "SQL (advanced)")
}

func TestProjects(t *testing.T) {
	t.Run("needs a career", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Projects(context.Background(), f.who, "")
		assert.True(t, errors.Is(err, apperrors.ErrValidation))
	})

	t.Run("sets relevance and status", func(t *testing.T) {
		f := newFixture(t, `{"items": [
			{"title": "Sales dashboard", "completion_status": "completed", "career_relevance": "none"},
			{"title": "Churn analysis"},
			{"title": "ETL pipeline"}
		]}`)
		f.seedCareer(t, "Data Analyst")

		res, err := f.svc.Projects(context.Background(), f.who, "")
		require.NoError(t, err)
		require.Len(t, res.Records, projectCount)
		for _, rec := range res.Records {
			assert.Equal(t, "Data Analyst", rec.Fields["career_relevance"])
			assert.Equal(t, "not_started", rec.Fields["completion_status"])
		}
		assert.Contains(t, f.mock.Requests()[0].Prompt, `aiming for a "Data Analyst" role`)
	})

	t.Run("unknown career", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Projects(context.Background(), f.who, "missing")
		assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	})
}

func TestInterviewQuestions_CatalogFallback(t *testing.T) {
	backend := memstore.New()
	st, _ := storetest.NewStore(t, backend)
	svc := New(st, completion.NewChain(time.Second, nil))
	who := storetest.NewUser()

	res, err := svc.InterviewQuestions(context.Background(), who, "Data Analyst", entity.QuestionTechnical, 2)
	require.NoError(t, err)
	require.Len(t, res.Records, 2)
	for _, rec := range res.Records {
		assert.Equal(t, "technical", rec.Fields["question_type"])
		assert.Equal(t, "new", rec.Fields["practice_status"])
		assert.Equal(t, "Data Analyst", rec.Fields["career_focus"])
	}
}

func TestInterviewQuestions_OverridesTypeAndFocus(t *testing.T) {
	f := newFixture(t, `{"items": [
		{"question": "Explain a JOIN", "question_type": "behavioral", "difficulty_level": "Entry", "practice_status": "mastered"},
		{"question": "Window functions?", "difficulty_level": "mid"}
	]}`)
	f.seedCareer(t, "Data Analyst")

	res, err := f.svc.InterviewQuestions(context.Background(), f.who, "", entity.QuestionTechnical, 0)
	require.NoError(t, err)
	require.Len(t, res.Records, 2)
	assert.Equal(t, "technical", res.Records[0].Fields["question_type"])
	assert.Equal(t, "new", res.Records[0].Fields["practice_status"])
	assert.Equal(t, "entry", res.Records[0].Fields["difficulty_level"])
	assert.Equal(t, "Data Analyst", res.Records[1].Fields["career_focus"])
	assert.Contains(t, f.mock.Requests()[0].Prompt, "Generate 5 interview questions")
}

func TestInterviewQuestions_RejectsUnknownType(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.InterviewQuestions(context.Background(), f.who, "", "trivia", 3)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
}

func TestResumeSkills_MergesIntoProfile(t *testing.T) {
	f := newFixture(t, `{
		"skills": [
			{"name": "sql", "proficiency": "expert", "category": "technical"},
			{"name": "Tableau", "proficiency": "Intermediate", "category": "tool"}
		],
		"current_role": "Data Analyst",
		"career_goals": "ignored"
	}`)
	f.seedProfile(t)
	ctx := context.Background()

	ref, err := f.svc.uploads.Upload(ctx, f.who.ID, "cv.txt", "text/plain", strings.NewReader("Five years of SQL and Tableau."), 30)
	require.NoError(t, err)

	res, err := f.svc.ResumeSkills(ctx, f.who, ref.URL)
	require.NoError(t, err)
	require.Len(t, res.Records, 1)

	fields := res.Records[0].Fields
	assert.Equal(t, "Data Analyst", fields["current_role"])
	assert.Equal(t, "1-3_years", fields["experience_level"])
	assert.Equal(t, ref.URL, fields["resume_url"])
	assert.NotEmpty(t, fields["last_assessment_date"])
	assert.Equal(t, []any{
		map[string]any{"name": "SQL", "proficiency": "intermediate", "category": "technical"},
		map[string]any{"name": "Tableau", "proficiency": "intermediate", "category": "tool"},
	}, fields["skills"])

	req := f.mock.Requests()[0]
	assert.Contains(t, req.Prompt, "Five years of SQL and Tableau.")
	assert.Empty(t, req.Images)
	assert.NotContains(t, string(req.Schema), "career_goals")
}

func docxWithText(t *testing.T, lines ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	body := `<?xml version="1.0" encoding="UTF-8"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`
	for _, l := range lines {
		body += `<w:p><w:r><w:t>` + l + `</w:t></w:r></w:p>`
	}
	body += `</w:body></w:document>`
	_, err = io.WriteString(w, body)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestResumeSkills_SendsDocumentText(t *testing.T) {
	f := newFixture(t, `{"skills": [{"name": "Go", "proficiency": "expert", "category": "technical"}]}`)
	ctx := context.Background()

	data := docxWithText(t, "Staff engineer", "Go and Kubernetes at Acme QX7_RESUME_LINE")
	ref, err := f.svc.uploads.Upload(ctx, f.who.ID, "cv.docx", "application/octet-stream", bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	res, err := f.svc.ResumeSkills(ctx, f.who, ref.URL)
	require.NoError(t, err)
	assert.Equal(t, f.who.Owner(), res.Records[0].Fields["created_by"])

	req := f.mock.Requests()[0]
	assert.Contains(t, req.Prompt, "Go and Kubernetes at Acme QX7_RESUME_LINE")
	assert.NotContains(t, req.Prompt, ref.URL)
	assert.Empty(t, req.Images)
}

func TestResumeSkills_SendsImagesInline(t *testing.T) {
	f := newFixture(t, `{"skills": [{"name": "Figma"}]}`)
	ctx := context.Background()

	png := []byte("\x89PNG\r\n\x1a\nfake")
	ref, err := f.svc.uploads.Upload(ctx, f.who.ID, "cv.png", "image/png", bytes.NewReader(png), int64(len(png)))
	require.NoError(t, err)

	_, err = f.svc.ResumeSkills(ctx, f.who, ref.URL)
	require.NoError(t, err)

	req := f.mock.Requests()[0]
	require.Len(t, req.Images, 1)
	assert.Equal(t, "image/png", req.Images[0].MediaType)
	assert.Equal(t, png, req.Images[0].Data)
	assert.NotContains(t, req.Prompt, ref.URL)
}

func TestResumeSkills_UnreadableFilesNeverReachTheModel(t *testing.T) {
	ctx := context.Background()

	t.Run("foreign url", func(t *testing.T) {
		f := newFixture(t, `{"skills": [{"name": "Invented"}]}`)
		_, err := f.svc.ResumeSkills(ctx, f.who, "https://cdn.test/cv.pdf")
		assert.True(t, errors.Is(err, apperrors.ErrValidation))
		assert.Empty(t, f.mock.Requests())
		assert.Equal(t, 0, f.backend.Len())
	})

	t.Run("another user's upload", func(t *testing.T) {
		f := newFixture(t, `{"skills": [{"name": "Invented"}]}`)
		ref, err := f.svc.uploads.Upload(ctx, storetest.NewUser().ID, "cv.txt", "text/plain", strings.NewReader("Rust"), 4)
		require.NoError(t, err)
		_, err = f.svc.ResumeSkills(ctx, f.who, ref.URL)
		assert.True(t, errors.Is(err, apperrors.ErrValidation))
		assert.Empty(t, f.mock.Requests())
	})

	t.Run("pdf without text", func(t *testing.T) {
		f := newFixture(t, `{"skills": [{"name": "Invented"}]}`)
		junk := []byte("not really a pdf at all")
		ref, err := f.svc.uploads.Upload(ctx, f.who.ID, "cv.pdf", "application/pdf", bytes.NewReader(junk), int64(len(junk)))
		require.NoError(t, err)
		_, err = f.svc.ResumeSkills(ctx, f.who, ref.URL)
		assert.True(t, errors.Is(err, apperrors.ErrValidation))
		assert.Empty(t, f.mock.Requests())
		assert.Equal(t, 0, f.backend.Len())
	})
}

func TestAnswerFeedback(t *testing.T) {
	f := newFixture(t, `{"feedback": "Mention indexes."}`)
	ctx := context.Background()
	q, err := f.store.Create(ctx, f.who, "InterviewPrep", map[string]any{"question": "How do you speed up a query?"})
	require.NoError(t, err)

	_, err = f.svc.AnswerFeedback(ctx, f.who, q.ID, "   ")
	assert.True(t, errors.Is(err, apperrors.ErrValidation))

	res, err := f.svc.AnswerFeedback(ctx, f.who, q.ID, "Look at the plan.")
	require.NoError(t, err)
	fields := res.Records[0].Fields
	assert.Equal(t, "Look at the plan.", fields["user_answer"])
	assert.Equal(t, "Mention indexes.", fields["feedback"])
	assert.Equal(t, "practiced", fields["practice_status"])
	assert.Equal(t, 2, res.Records[0].Version)
}

func TestResumeTips(t *testing.T) {
	t.Run("catalog without provider", func(t *testing.T) {
		st, _ := storetest.NewStore(t, memstore.New())
		svc := New(st, completion.NewChain(time.Second, nil))

		res, err := svc.ResumeTips(context.Background(), storetest.NewUser(), "my resume", "a job", "")
		require.NoError(t, err)
		assert.NotEmpty(t, res.Data)
		assert.Empty(t, res.Records)
	})

	t.Run("requires job description", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.ResumeTips(context.Background(), f.who, "my resume", "", "")
		assert.True(t, errors.Is(err, apperrors.ErrValidation))
	})

	t.Run("generated", func(t *testing.T) {
		f := newFixture(t, `{"tips": [{"title": "Quantify", "original": "Did reports", "improved": "Built 12 weekly reports"}]}`)
		res, err := f.svc.ResumeTips(context.Background(), f.who, "Did reports", "Analyst", "")
		require.NoError(t, err)
		assert.Len(t, res.Data, 1)
		assert.Equal(t, 0, f.backend.Len())
	})
}

func TestDemoProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.DemoProfile(ctx, f.who, "nobody")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	res, err := f.svc.DemoProfile(ctx, f.who, "priya")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Records[0].Fields["skills"])

	again, err := f.svc.DemoProfile(ctx, f.who, "priya")
	require.NoError(t, err)
	assert.Equal(t, res.Records[0].ID, again.Records[0].ID)
	assert.Equal(t, 1, f.backend.Len())
}

func TestGenerate_UnknownFlow(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Generate(context.Background(), f.who, "horoscope", Args{})
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
}
