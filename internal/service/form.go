package service

import (
	"assignmentgateway/internal/domain"
	"assignmentgateway/internal/errdefs"
	"context"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

const (
	requiredText = "this field is required"
	dateText     = "must be a date in YYYY-MM-DD format"
	positiveText = "must be a positive integer"
)

// AssignmentDraft is the assignment form as submitted. Every field is raw
// text, FormValidator turns it into a CreateAssignmentRequest.
type AssignmentDraft struct {
	StudentID       string   `json:"student_id" validate:"required"`
	ContentType     string   `json:"content_type" validate:"required,oneof=course deck"`
	ContentID       string   `json:"content_id" validate:"required"`
	Title           string   `json:"title" validate:"required"`
	Description     string   `json:"description"`
	Instructions    string   `json:"instructions"`
	DueDate         string   `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	SupportingDecks []string `json:"supporting_decks"`
}

// AssignmentPatchDraft is the edit form. Nil fields are left unchanged.
type AssignmentPatchDraft struct {
	Title           *string   `json:"title"`
	Description     *string   `json:"description"`
	Instructions    *string   `json:"instructions"`
	DueDate         *string   `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	Status          *string   `json:"status"`
	SupportingDecks *[]string `json:"supporting_decks"`
}

func (d *AssignmentPatchDraft) IsEmpty() bool {
	return d.Title == nil && d.Description == nil && d.Instructions == nil &&
		d.DueDate == nil && d.Status == nil && d.SupportingDecks == nil
}

// FormValidator checks assignment drafts before anything is sent to the
// store. Content ids are resolved against the catalog matching their type.
type FormValidator struct {
	validate   *validator.Validate
	translator ut.Translator
	catalog    ContentCatalog
}

func NewFormValidator(catalog ContentCatalog) *FormValidator {
	validate := validator.New()
	english := en.New()
	uni := ut.New(english, english)
	translator, _ := uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Report fields by their JSON names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	registerTranslation(validate, translator, "required", requiredText)
	registerTranslation(validate, translator, "datetime", dateText)

	return &FormValidator{validate: validate, translator: translator, catalog: catalog}
}

func registerTranslation(validate *validator.Validate, translator ut.Translator, tag, text string) {
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

func (v *FormValidator) structErrors(draft any) *errdefs.ValidationError {
	fields := errdefs.NewValidationError()
	err := v.validate.Struct(draft)
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			fields.Add(fe.Field(), fe.Translate(v.translator))
		}
	}
	return fields
}

// Validate returns a normalized create request or a *errdefs.ValidationError.
// Catalog lookups only run once the draft is structurally valid. A lookup
// that fails for any reason other than not found is returned as-is.
func (v *FormValidator) Validate(ctx context.Context, instructorID int64, draft AssignmentDraft) (*domain.CreateAssignmentRequest, error) {
	d := trimDraft(draft)

	fields := v.structErrors(&d)
	var studentID int64
	if d.StudentID != "" {
		id, err := strconv.ParseInt(d.StudentID, 10, 64)
		if err != nil || id <= 0 {
			fields.Add("student_id", positiveText)
		}
		studentID = id
	}
	if instructorID <= 0 {
		fields.Add("instructor_id", "no instructor is signed in")
	}
	if err := fields.OrNil(); err != nil {
		return nil, err
	}

	req := &domain.CreateAssignmentRequest{
		InstructorID: instructorID,
		StudentID:    studentID,
		ContentType:  domain.ContentType(d.ContentType),
		ContentID:    d.ContentID,
		Title:        d.Title,
		Description:  optional(d.Description),
		Instructions: optional(d.Instructions),
	}

	if d.DueDate != "" {
		due, err := domain.EndOfDay(d.DueDate)
		if err != nil {
			fields.Add("due_date", dateText)
		} else {
			req.DueDate = &due
		}
	}

	title, ok, err := v.resolveContent(ctx, domain.ContentRef{Type: req.ContentType, ID: req.ContentID})
	if err != nil {
		return nil, err
	}
	if !ok {
		fields.Add("content_id", fmt.Sprintf("%s %q not found", req.ContentType, req.ContentID))
	}
	req.ContentTitle = title

	if req.ContentType == domain.ContentTypeCourse {
		ids, titles, err := v.resolveDecks(ctx, d.SupportingDecks, fields)
		if err != nil {
			return nil, err
		}
		req.SupportingDecks, req.SupportingDeckTitles = ids, titles
	}

	if err := fields.OrNil(); err != nil {
		return nil, err
	}
	return req, nil
}

// ValidatePatch checks an edit. contentType is the type of the assignment
// being edited and is only consulted when the patch sets supporting decks.
func (v *FormValidator) ValidatePatch(ctx context.Context, draft AssignmentPatchDraft, contentType domain.ContentType) (*domain.AssignmentPatch, error) {
	if draft.DueDate != nil {
		date := strings.TrimSpace(*draft.DueDate)
		draft.DueDate = &date
	}
	fields := v.structErrors(&draft)
	patch := &domain.AssignmentPatch{}

	if draft.Title != nil {
		title := strings.TrimSpace(*draft.Title)
		if title == "" {
			fields.Add("title", requiredText)
		}
		patch.Title = &title
	}
	if draft.Description != nil {
		s := strings.TrimSpace(*draft.Description)
		patch.Description = &s
	}
	if draft.Instructions != nil {
		s := strings.TrimSpace(*draft.Instructions)
		patch.Instructions = &s
	}
	if draft.Status != nil {
		status := domain.Status(strings.TrimSpace(*draft.Status))
		if !status.IsValid() {
			fields.Add("status", "must be one of pending, in_progress, completed, overdue")
		}
		patch.Status = &status
	}
	if draft.DueDate != nil {
		// A blank date is malformed, not a request to clear it.
		due, err := domain.EndOfDay(*draft.DueDate)
		if err == nil {
			patch.DueDate = &due
		} else if !hasField(fields, "due_date") {
			fields.Add("due_date", dateText)
		}
	}
	if err := fields.OrNil(); err != nil {
		return nil, err
	}

	if draft.SupportingDecks != nil {
		if contentType != domain.ContentTypeCourse {
			fields.Add("supporting_decks", "supporting decks are only allowed on courses")
			return nil, fields
		}
		ids, titles, err := v.resolveDecks(ctx, trimIDs(*draft.SupportingDecks), fields)
		if err != nil {
			return nil, err
		}
		if err := fields.OrNil(); err != nil {
			return nil, err
		}
		patch.SupportingDecks, patch.SupportingDeckTitles = ids, titles
	}
	return patch, nil
}

func (v *FormValidator) resolveContent(ctx context.Context, ref domain.ContentRef) (string, bool, error) {
	var title string
	var err error
	switch ref.Type {
	case domain.ContentTypeCourse:
		var course *domain.Course
		if course, err = v.catalog.GetCourse(ctx, ref.ID); err == nil {
			title = course.Title
		}
	case domain.ContentTypeDeck:
		var deck *domain.Deck
		if deck, err = v.catalog.GetDeck(ctx, ref.ID); err == nil {
			title = deck.Title
		}
	default:
		return "", false, nil
	}

	if errors.Is(err, errdefs.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve %s: %w", ref, err)
	}
	return title, true, nil
}

func (v *FormValidator) resolveDecks(ctx context.Context, ids []string, fields *errdefs.ValidationError) ([]string, []string, error) {
	if len(ids) == 0 {
		return nil, nil, nil
	}
	titles := make([]string, 0, len(ids))
	for _, id := range ids {
		title, ok, err := v.resolveContent(ctx, domain.ContentRef{Type: domain.ContentTypeDeck, ID: id})
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			fields.Add("supporting_decks", fmt.Sprintf("deck %q not found", id))
			continue
		}
		titles = append(titles, title)
	}
	return ids, titles, nil
}

func trimDraft(d AssignmentDraft) AssignmentDraft {
	d.StudentID = strings.TrimSpace(d.StudentID)
	d.ContentType = strings.TrimSpace(d.ContentType)
	d.ContentID = strings.TrimSpace(d.ContentID)
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)
	d.Instructions = strings.TrimSpace(d.Instructions)
	d.DueDate = strings.TrimSpace(d.DueDate)
	d.SupportingDecks = trimIDs(d.SupportingDecks)
	return d
}

// trimIDs drops blank entries and keeps the order of the rest.
func trimIDs(ids []string) []string {
	var out []string
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func hasField(fields *errdefs.ValidationError, name string) bool {
	for _, f := range fields.Fields {
		if f.Field == name {
			return true
		}
	}
	return false
}

// Struct checks the validate tags of s and reports failures as a
// *errdefs.ValidationError.
func (v *FormValidator) Struct(s any) error {
	return v.structErrors(s).OrNil()
}
