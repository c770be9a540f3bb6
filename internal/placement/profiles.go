package placement

import (
	"context"
	"fmt"
	"strings"

	"placement-portal/internal/tenancy"
)

const maxCGPA = 10

type SaveProfileRequest struct {
	EnrollmentNumber string  `json:"enrollmentNumber"`
	Branch           string  `json:"branch"`
	Degree           string  `json:"degree"`
	CGPA             float64 `json:"cgpa"`
	PassingYear      int     `json:"passingYear"`
	ResumeLink       string  `json:"resumeLink"`
	Skills           string  `json:"skills"`
}

// SaveProfile creates or replaces the calling student's own profile.
func (s *Service) SaveProfile(ctx context.Context, scope tenancy.Scope, req SaveProfileRequest) (StudentProfile, error) {
	if scope.Kind() != tenancy.KindOwnRecords || scope.Owner() == "" {
		return StudentProfile{}, tenancy.ErrForbidden
	}
	p := StudentProfile{
		StudentID:        scope.Owner(),
		EnrollmentNumber: strings.TrimSpace(req.EnrollmentNumber),
		Branch:           strings.TrimSpace(req.Branch),
		Degree:           strings.TrimSpace(req.Degree),
		CGPA:             req.CGPA,
		PassingYear:      req.PassingYear,
		ResumeLink:       strings.TrimSpace(req.ResumeLink),
		Skills:           strings.TrimSpace(req.Skills),
	}
	switch {
	case p.EnrollmentNumber == "":
		return StudentProfile{}, fmt.Errorf("%w: enrollmentNumber is required", ErrInvalidArgument)
	case p.Branch == "":
		return StudentProfile{}, fmt.Errorf("%w: branch is required", ErrInvalidArgument)
	case p.CGPA < 0 || p.CGPA > maxCGPA:
		return StudentProfile{}, fmt.Errorf("%w: cgpa must be between 0 and %d", ErrInvalidArgument, maxCGPA)
	case p.PassingYear < 0:
		return StudentProfile{}, fmt.Errorf("%w: passingYear must not be negative", ErrInvalidArgument)
	}

	now := s.now()
	p.CreatedAt, p.UpdatedAt = now, now
	if err := s.repo.UpsertProfile(ctx, &p); err != nil {
		return StudentProfile{}, err
	}
	return p, nil
}

// MyProfile returns the calling student's profile.
func (s *Service) MyProfile(ctx context.Context, scope tenancy.Scope) (StudentProfile, error) {
	if scope.Kind() != tenancy.KindOwnRecords || scope.Owner() == "" {
		return StudentProfile{}, tenancy.ErrForbidden
	}
	return s.repo.GetProfile(ctx, scope.Owner())
}

// GetProfile reads one student's profile. Company staff see it only when the
// student applied to one of their companies.
func (s *Service) GetProfile(ctx context.Context, scope tenancy.Scope, studentID string) (StudentProfile, error) {
	p, err := s.repo.GetProfile(ctx, studentID)
	if err != nil {
		return StudentProfile{}, err
	}
	if scope.Kind() != tenancy.KindCompanies {
		if err := scope.Check(0, p.StudentID); err != nil {
			return StudentProfile{}, err
		}
		return p, nil
	}
	apps, err := s.repo.ListApplications(ctx, scope)
	if err != nil {
		return StudentProfile{}, err
	}
	for _, a := range apps {
		if a.StudentID == studentID {
			return p, nil
		}
	}
	return StudentProfile{}, tenancy.ErrForbidden
}

func (s *Service) ListProfiles(ctx context.Context, scope tenancy.Scope) ([]StudentProfile, error) {
	return s.repo.ListProfiles(ctx, scope)
}
