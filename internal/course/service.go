package course

import (
	"context"
	"errors"
)

// ErrCourseNotFound indicates the requested course does not exist
var ErrCourseNotFound = errors.New("course not found")

// Service handles course business logic
type Service struct {
	repo *Repository
}

// NewService creates a new course service
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// Create creates a new course
func (s *Service) Create(ctx context.Context, req *CreateCourseRequest) (*Course, error) {
	return s.repo.Create(ctx, req)
}

// GetByID retrieves a course by its ID
func (s *Service) GetByID(ctx context.Context, id int64) (*Course, error) {
	course, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, ErrCourseNotFound
	}
	return course, nil
}

// List retrieves all courses with pagination
func (s *Service) List(ctx context.Context, page, perPage int) ([]*Course, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.repo.List(ctx, perPage, offset)
}
