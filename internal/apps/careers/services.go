package careers

import (
	"context"

	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/career"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/entity"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/identity"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/store"
)

// CareerService compares stored careers and learning paths with the
// caller's profile skills.
type CareerService struct {
	profiles *store.Collection[entity.UserProfile]
	careers  *store.Collection[entity.CareerPath]
	paths    *store.Collection[entity.LearningPath]
}

func NewCareerService(st *store.Store) *CareerService {
	return &CareerService{
		profiles: store.NewCollection[entity.UserProfile](st),
		careers:  store.NewCollection[entity.CareerPath](st),
		paths:    store.NewCollection[entity.LearningPath](st),
	}
}

func (s *CareerService) SkillGap(ctx context.Context, who identity.Identity, careerID string) (career.GapAnalysis, error) {
	c, err := s.careers.Get(ctx, who, careerID)
	if err != nil {
		return career.GapAnalysis{}, err
	}
	skills, err := s.skills(ctx, who)
	if err != nil {
		return career.GapAnalysis{}, err
	}
	return career.SkillGap(c, skills), nil
}

func (s *CareerService) Tracker(ctx context.Context, who identity.Identity, pathID string) (career.SkillTracker, error) {
	p, err := s.paths.Get(ctx, who, pathID)
	if err != nil {
		return career.SkillTracker{}, err
	}
	skills, err := s.skills(ctx, who)
	if err != nil {
		return career.SkillTracker{}, err
	}
	return career.TrackSkills(p, skills), nil
}

// skills reads the caller's profile skills. No profile means no skills.
func (s *CareerService) skills(ctx context.Context, who identity.Identity) ([]entity.Skill, error) {
	profiles, err := s.profiles.Owned(ctx, who, store.Limit(1))
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, nil
	}
	return profiles[0].Skills, nil
}
