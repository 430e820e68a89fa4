package domain

import (
	"errors"
	"fmt"
)

type Assignment struct {
	ID             int64       `json:"id"`
	InstructorID   int64       `json:"instructor_id"`
	InstructorName *string     `json:"instructor_name,omitempty"`
	StudentID      int64       `json:"student_id"`
	StudentName    *string     `json:"student_name,omitempty"`
	ContentType    ContentType `json:"content_type"`
	ContentID      string      `json:"content_id"`
	ContentTitle   string      `json:"content_title"`
	Title          string      `json:"title"`
	Description    *string     `json:"description,omitempty"`
	Instructions   *string     `json:"instructions,omitempty"`
	Status         Status      `json:"status"`
	AssignedAt     Timestamp   `json:"assigned_at"`
	DueDate        *Timestamp  `json:"due_date,omitempty"`
	CompletedAt    *Timestamp  `json:"completed_at,omitempty"`
	IsActive       bool        `json:"is_active"`

	CourseProgressPercentage *float64 `json:"course_progress_percentage,omitempty"`
	TotalLessons             *int     `json:"total_lessons,omitempty"`
	CompletedLessons         *int     `json:"completed_lessons,omitempty"`

	SupportingDecks      []string `json:"supporting_decks,omitempty"`
	SupportingDeckTitles []string `json:"supporting_deck_titles,omitempty"`

	CreatedAt Timestamp  `json:"created_at"`
	UpdatedAt *Timestamp `json:"updated_at,omitempty"`
}

// Content returns the typed content reference of the assignment.
func (a *Assignment) Content() ContentRef {
	return ContentRef{Type: a.ContentType, ID: a.ContentID}
}

// Validate checks the fields every assignment from the boundary must carry.
func (a *Assignment) Validate() error {
	if a.ID <= 0 {
		return errors.New("assignment id is missing")
	}
	if !a.ContentType.IsValid() {
		return fmt.Errorf("assignment %d: unknown content_type %q", a.ID, a.ContentType)
	}
	return nil
}

type CreateAssignmentRequest struct {
	InstructorID         int64       `json:"instructor_id"`
	StudentID            int64       `json:"student_id"`
	ContentType          ContentType `json:"content_type"`
	ContentID            string      `json:"content_id"`
	ContentTitle         string      `json:"content_title"`
	Title                string      `json:"title"`
	Description          *string     `json:"description,omitempty"`
	Instructions         *string     `json:"instructions,omitempty"`
	DueDate              *Timestamp  `json:"due_date,omitempty"`
	SupportingDecks      []string    `json:"supporting_decks,omitempty"`
	SupportingDeckTitles []string    `json:"supporting_deck_titles,omitempty"`
}

// AssignmentPatch is a partial update. Nil fields are left unchanged
// server-side.
type AssignmentPatch struct {
	Title                *string    `json:"title,omitempty"`
	Description          *string    `json:"description,omitempty"`
	Instructions         *string    `json:"instructions,omitempty"`
	DueDate              *Timestamp `json:"due_date,omitempty"`
	Status               *Status    `json:"status,omitempty"`
	SupportingDecks      []string   `json:"supporting_decks,omitempty"`
	SupportingDeckTitles []string   `json:"supporting_deck_titles,omitempty"`
}

type AssignmentFilter struct {
	StudentID    int64
	InstructorID int64
	Page         int
	Size         int
}

const (
	DefaultPage = 1
	DefaultSize = 50
)

// WithDefaults fills page and size the way the boundary client expects.
func (f AssignmentFilter) WithDefaults() AssignmentFilter {
	if f.Page <= 0 {
		f.Page = DefaultPage
	}
	if f.Size <= 0 {
		f.Size = DefaultSize
	}
	return f
}

type AssignmentList struct {
	Assignments []*Assignment `json:"assignments"`
	Total       int           `json:"total"`
	Page        int           `json:"page"`
	Size        int           `json:"size"`
	TotalPages  int           `json:"total_pages"`
}

func (l *AssignmentList) Validate() error {
	if l.Assignments == nil {
		return errors.New("assignments field is missing")
	}
	for _, a := range l.Assignments {
		if a == nil {
			return errors.New("assignments contains null")
		}
		if err := a.Validate(); err != nil {
			return err
		}
	}
	return nil
}
