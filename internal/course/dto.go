package course

// CreateCourseRequest represents the request to create a course
type CreateCourseRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
	Code string `json:"code" validate:"required,min=1,max=20"`
	Term string `json:"term" validate:"required,min=1,max=20"`
}

// CourseResponse represents the response for a course
type CourseResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Code      string `json:"code"`
	Term      string `json:"term"`
	CreatedAt string `json:"created_at"`
}

// ToResponse converts a Course model to a CourseResponse DTO
func (c *Course) ToResponse() *CourseResponse {
	return &CourseResponse{
		ID:        c.ID,
		Name:      c.Name,
		Code:      c.Code,
		Term:      c.Term,
		CreatedAt: c.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
