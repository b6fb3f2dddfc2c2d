package course

import "time"

// Course represents a course students can attach study groups to
type Course struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	Term      string    `json:"term"`
	CreatedAt time.Time `json:"created_at"`
}
