package service

import (
	"assignmentgateway/internal/errdefs"
	"errors"
)

type Operation string

const (
	OpCreateAssignment       Operation = "create_assignment"
	OpUpdateAssignment       Operation = "update_assignment"
	OpUpdateAssignmentStatus Operation = "update_assignment_status"
	OpDeleteAssignment       Operation = "delete_assignment"
	OpCreateStudent          Operation = "create_student"
	OpUpdateStudent          Operation = "update_student"
	OpDeleteStudent          Operation = "delete_student"
)

const VariantDestructive = "destructive"

// Notification is the toast shown after a write.
type Notification struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Variant     string `json:"variant,omitempty"`
}

type notificationText struct {
	successTitle string
	successText  string
	errorTitle   string
	fallback     string
}

var notificationTexts = map[Operation]notificationText{
	OpCreateAssignment: {
		successTitle: "Assignment Created",
		successText:  "Assignment has been created successfully",
		errorTitle:   "Error Creating Assignment",
		fallback:     "Failed to create assignment",
	},
	OpUpdateAssignment: {
		successTitle: "Assignment Updated",
		successText:  "Assignment has been updated successfully",
		errorTitle:   "Error",
		fallback:     "Failed to update assignment",
	},
	OpUpdateAssignmentStatus: {
		successTitle: "Status Updated",
		successText:  "Assignment status has been updated successfully",
		errorTitle:   "Error",
		fallback:     "Failed to update assignment status",
	},
	OpDeleteAssignment: {
		successTitle: "Assignment Deleted",
		successText:  "Assignment has been deleted successfully",
		errorTitle:   "Error",
		fallback:     "Failed to delete assignment",
	},
	OpCreateStudent: {
		successTitle: "Student Created",
		successText:  "Student account has been created successfully",
		errorTitle:   "Error",
		fallback:     "Failed to create student",
	},
	OpUpdateStudent: {
		successTitle: "Student Updated",
		successText:  "Student information has been updated successfully",
		errorTitle:   "Error",
		fallback:     "Failed to update student",
	},
	OpDeleteStudent: {
		successTitle: "Student Deleted",
		successText:  "Student account has been deleted successfully",
		errorTitle:   "Error",
		fallback:     "Failed to delete student",
	},
}

// NotificationFor maps the outcome of op to the notification the user sees.
// A nil err is a success.
func NotificationFor(op Operation, err error) Notification {
	text, ok := notificationTexts[op]
	if !ok {
		text = notificationText{successTitle: "Success", errorTitle: "Error", fallback: "Something went wrong"}
	}

	if err == nil {
		return Notification{Title: text.successTitle, Description: text.successText}
	}

	var valErr *errdefs.ValidationError
	if errors.As(err, &valErr) {
		return Notification{
			Title:       "Validation Error",
			Description: errdefs.UserMessage(err, text.fallback),
			Variant:     VariantDestructive,
		}
	}
	return Notification{
		Title:       text.errorTitle,
		Description: errdefs.UserMessage(err, text.fallback),
		Variant:     VariantDestructive,
	}
}
