package domain

type ContentType string

const (
	ContentTypeCourse ContentType = "course"
	ContentTypeDeck   ContentType = "deck"
)

func (c ContentType) IsValid() bool {
	switch c {
	case ContentTypeCourse, ContentTypeDeck:
		return true
	default:
		return false
	}
}

// ContentRef identifies a piece of content. A course id and a deck id are
// never interchangeable, so the pair is the identity.
type ContentRef struct {
	Type ContentType
	ID   string
}

func (r ContentRef) String() string {
	return string(r.Type) + ":" + r.ID
}

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusOverdue    Status = "overdue"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusOverdue:
		return true
	default:
		return false
	}
}

type UserRole string

const (
	UserRoleTeacher UserRole = "TEACHER"
	UserRoleStudent UserRole = "STUDENT"
)
