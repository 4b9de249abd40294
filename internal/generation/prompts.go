package generation

import (
	"fmt"
	"strings"

	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/entity"
)

const generalCareer = "General Tech Career"

func skillList(skills []entity.Skill) string {
	if len(skills) == 0 {
		return "none listed"
	}
	parts := make([]string, 0, len(skills))
	for _, s := range skills {
		if s.Proficiency == "" {
			parts = append(parts, s.Name)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s (%s)", s.Name, s.Proficiency))
	}
	return strings.Join(parts, ", ")
}

func orNone(values []string) string {
	if len(values) == 0 {
		return "none listed"
	}
	return strings.Join(values, ", ")
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "not specified"
	}
	return s
}

func careersPrompt(p entity.UserProfile, n int) string {
	var b strings.Builder
	b.WriteString("You are an experienced career counselor. Based on this user profile:\n")
	fmt.Fprintf(&b, "- Current role: %s\n", orUnknown(p.CurrentRole))
	fmt.Fprintf(&b, "- Experience level: %s\n", orUnknown(string(p.ExperienceLevel)))
	fmt.Fprintf(&b, "- Education: %s\n", orUnknown(p.EducationBackground))
	fmt.Fprintf(&b, "- Skills: %s\n", skillList(p.Skills))
	fmt.Fprintf(&b, "- Career interests: %s\n", orNone(p.CareerInterests))
	fmt.Fprintf(&b, "- Preferred industries: %s\n", orNone(p.PreferredIndustries))
	fmt.Fprintf(&b, "- Career goals: %s\n\n", orUnknown(p.CareerGoals))
	fmt.Fprintf(&b, "Generate %d personalized career recommendations. For each career give the title, industry, "+
		"a short description, the required skills with importance and proficiency needed, a realistic salary range "+
		"in USD, the job outlook, a typical progression and a match score from 0 to 100 that reflects how well "+
		"the user's current skills fit.", n)
	return b.String()
}

func learningPathPrompt(p *entity.UserProfile, career *entity.CareerPath) string {
	var b strings.Builder
	b.WriteString("Create a personalized learning path.\n")
	target := generalCareer
	if career != nil {
		target = career.Title
	}
	fmt.Fprintf(&b, "Target career: %s\n", target)
	if career != nil && len(career.RequiredSkills) > 0 {
		req := make([]string, 0, len(career.RequiredSkills))
		for _, r := range career.RequiredSkills {
			req = append(req, fmt.Sprintf("%s (%s)", r.Skill, orUnknown(string(r.ProficiencyNeeded))))
		}
		fmt.Fprintf(&b, "Required skills: %s\n", strings.Join(req, ", "))
	}
	if p != nil {
		fmt.Fprintf(&b, "Current skills: %s\n", skillList(p.Skills))
		fmt.Fprintf(&b, "Experience level: %s\n", orUnknown(string(p.ExperienceLevel)))
		fmt.Fprintf(&b, "Interests: %s\n", orNone(p.CareerInterests))
	}
	b.WriteString("\nIdentify the skill gaps and recommend 4-6 real online courses ordered by priority " +
		"(1 is highest), with provider, url, duration, difficulty and cost. Give an overall estimated " +
		"duration and difficulty level.")
	return b.String()
}

func projectsPrompt(p *entity.UserProfile, career entity.CareerPath, n int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "A learner is aiming for a %q role", career.Title)
	if p != nil {
		fmt.Fprintf(&b, " with %s experience and these skills: %s", orUnknown(string(p.ExperienceLevel)), skillList(p.Skills))
	}
	b.WriteString(".\n")
	if len(career.RequiredSkills) > 0 {
		req := make([]string, 0, len(career.RequiredSkills))
		for _, r := range career.RequiredSkills {
			req = append(req, r.Skill)
		}
		fmt.Fprintf(&b, "The role needs: %s.\n", strings.Join(req, ", "))
	}
	fmt.Fprintf(&b, "\nGenerate %d distinct, real-world project briefs that build a portfolio for this role. "+
		"Each needs a title, description, skills practiced, difficulty level, estimated hours, "+
		"requirements, deliverables and a few helpful resources.", n)
	return b.String()
}

func interviewPrompt(focus string, qt entity.QuestionType, n int, p *entity.UserProfile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate %d interview questions for a %s position.\n", n, focus)
	if qt != "" {
		fmt.Fprintf(&b, "All questions must be %s questions.\n", strings.ReplaceAll(string(qt), "_", " "))
	} else {
		b.WriteString("Mix behavioral, technical, situational and case study questions.\n")
	}
	if p != nil && p.ExperienceLevel != "" {
		fmt.Fprintf(&b, "The candidate's experience level is %s.\n", p.ExperienceLevel)
	}
	b.WriteString("For each question include a strong suggested answer, the key points an interviewer " +
		"listens for and a difficulty level of entry, mid or senior.")
	return b.String()
}

func resumeSkillsPrompt(text string) string {
	var b strings.Builder
	b.WriteString("Extract the candidate's professional profile from the attached resume.\n")
	b.WriteString("List every skill with a name, a proficiency (beginner, intermediate, advanced or expert) " +
		"and a category: technical, soft, domain, language or tool. Also extract the current role, " +
		"education background, experience level and preferred industries when the resume shows them.")
	if text != "" {
		b.WriteString("\n\nResume:\n")
		b.WriteString(text)
	}
	return b.String()
}

func feedbackPrompt(q entity.InterviewPrep, answer string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are an interview coach for %s roles.\n", orUnknown(q.CareerFocus))
	fmt.Fprintf(&b, "Question: %s\n", q.Question)
	if len(q.KeyPoints) > 0 {
		fmt.Fprintf(&b, "Key points a strong answer covers: %s\n", strings.Join(q.KeyPoints, "; "))
	}
	fmt.Fprintf(&b, "Candidate's answer: %s\n\n", answer)
	b.WriteString("Give concise, constructive feedback: what worked, what was missing and how to improve.")
	return b.String()
}

func resumeTipsPrompt(resume, job string) string {
	if resume == "" {
		resume = "(see the attached image)"
	}
	return "Compare this resume against the job description and suggest concrete improvements.\n" +
		"For each tip give a short title, the original resume line and an improved version " +
		"tailored to the job.\n\nJob description:\n" + job + "\n\nResume:\n" + resume
}
