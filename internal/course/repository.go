package course

import (
	"context"
	"database/sql"
	"fmt"
)

// Repository handles course data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new course repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new course into the database
func (r *Repository) Create(ctx context.Context, req *CreateCourseRequest) (*Course, error) {
	query := `
		INSERT INTO courses (name, code, term)
		VALUES ($1, $2, $3)
		RETURNING id, name, code, term, created_at
	`

	course := &Course{}
	err := r.db.QueryRowContext(ctx, query, req.Name, req.Code, req.Term).Scan(
		&course.ID,
		&course.Name,
		&course.Code,
		&course.Term,
		&course.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create course: %w", err)
	}

	return course, nil
}

// GetByID retrieves a course by its ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*Course, error) {
	query := `SELECT id, name, code, term, created_at FROM courses WHERE id = $1`

	course := &Course{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&course.ID,
		&course.Name,
		&course.Code,
		&course.Term,
		&course.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	return course, nil
}

// List retrieves all courses with pagination
func (r *Repository) List(ctx context.Context, limit, offset int) ([]*Course, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM courses`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count courses: %w", err)
	}

	query := `
		SELECT id, name, code, term, created_at
		FROM courses
		ORDER BY term DESC, code
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list courses: %w", err)
	}
	defer rows.Close()

	var courses []*Course
	for rows.Next() {
		course := &Course{}
		if err := rows.Scan(
			&course.ID,
			&course.Name,
			&course.Code,
			&course.Term,
			&course.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan course: %w", err)
		}
		courses = append(courses, course)
	}

	return courses, total, nil
}
