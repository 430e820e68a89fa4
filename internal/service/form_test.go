package service_test

import (
	"assignmentgateway/internal/domain"
	"assignmentgateway/internal/errdefs"
	"assignmentgateway/internal/service"
	"assignmentgateway/internal/service/mocks"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type FormValidatorSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	catalog   *mocks.MockContentCatalog
	validator *service.FormValidator
	ctx       context.Context
}

func TestFormValidatorSuite(t *testing.T) {
	suite.Run(t, new(FormValidatorSuite))
}

func (s *FormValidatorSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.catalog = mocks.NewMockContentCatalog(s.ctrl)
	s.validator = service.NewFormValidator(s.catalog)
	s.ctx = context.Background()
}

func (s *FormValidatorSuite) fields(err error) map[string]string {
	var valErr *errdefs.ValidationError
	s.Require().True(errors.As(err, &valErr), "expected a validation error, got %v", err)
	out := make(map[string]string, len(valErr.Fields))
	for _, f := range valErr.Fields {
		if _, ok := out[f.Field]; !ok {
			out[f.Field] = f.Message
		}
	}
	return out
}

func (s *FormValidatorSuite) TestEmptyDraftReportsRequiredFields() {
	_, err := s.validator.Validate(s.ctx, 1, service.AssignmentDraft{})

	fields := s.fields(err)
	for _, name := range []string{"student_id", "content_type", "content_id", "title"} {
		s.Equal("this field is required", fields[name], name)
	}
	s.NotContains(fields, "due_date")
}

func (s *FormValidatorSuite) TestWhitespaceOnlyIsMissing() {
	_, err := s.validator.Validate(s.ctx, 1, service.AssignmentDraft{
		StudentID: "2", ContentType: "course", ContentID: "c-1", Title: "   ",
	})

	s.Equal(map[string]string{"title": "this field is required"}, s.fields(err))
}

func (s *FormValidatorSuite) TestFieldFormats() {
	_, err := s.validator.Validate(s.ctx, 1, service.AssignmentDraft{
		StudentID: "abc", ContentType: "video", ContentID: "c-1", Title: "Read", DueDate: "2025-13-01",
	})

	fields := s.fields(err)
	s.Equal("must be a positive integer", fields["student_id"])
	s.Equal("must be a date in YYYY-MM-DD format", fields["due_date"])
	s.Contains(fields, "content_type")
}

func (s *FormValidatorSuite) TestNoSignedInInstructor() {
	_, err := s.validator.Validate(s.ctx, 0, service.AssignmentDraft{
		StudentID: "2", ContentType: "deck", ContentID: "d-1", Title: "Read",
	})

	s.Contains(s.fields(err), "instructor_id")
}

func (s *FormValidatorSuite) TestDeckIgnoresSupportingDecks() {
	s.catalog.EXPECT().GetDeck(gomock.Any(), "d-1").Return(&domain.Deck{ID: "d-1", Title: "Verbs"}, nil)

	req, err := s.validator.Validate(s.ctx, 1, service.AssignmentDraft{
		StudentID: " 2 ", ContentType: "deck", ContentID: " d-1 ", Title: " Read ",
		DueDate: "2025-06-30", SupportingDecks: []string{"d-2"},
	})

	s.Require().NoError(err)
	s.Equal(int64(2), req.StudentID)
	s.Equal("d-1", req.ContentID)
	s.Equal("Verbs", req.ContentTitle)
	s.Equal("Read", req.Title)
	s.Equal("2025-06-30T23:59:59", req.DueDate.String())
	s.Nil(req.SupportingDecks)
	s.Nil(req.Description)
}

func (s *FormValidatorSuite) TestUnknownContentIsFieldError() {
	s.catalog.EXPECT().GetCourse(gomock.Any(), "c-9").Return(nil, &errdefs.RequestError{StatusCode: 404})
	s.catalog.EXPECT().GetDeck(gomock.Any(), "d-1").Return(&domain.Deck{ID: "d-1"}, nil)
	s.catalog.EXPECT().GetDeck(gomock.Any(), "d-9").Return(nil, &errdefs.RequestError{StatusCode: 404})

	_, err := s.validator.Validate(s.ctx, 1, service.AssignmentDraft{
		StudentID: "2", ContentType: "course", ContentID: "c-9", Title: "Read",
		SupportingDecks: []string{"d-1", "", "d-9"},
	})

	fields := s.fields(err)
	s.Equal(`course "c-9" not found`, fields["content_id"])
	s.Equal(`deck "d-9" not found`, fields["supporting_decks"])
}

func (s *FormValidatorSuite) TestPatch() {
	blank := "  "
	date := " 2025-07-01 "
	status := "in_progress"

	patch, err := s.validator.ValidatePatch(s.ctx, service.AssignmentPatchDraft{DueDate: &date, Status: &status}, domain.ContentTypeDeck)
	s.Require().NoError(err)
	s.Equal("2025-07-01T23:59:59", patch.DueDate.String())
	s.Equal(domain.StatusInProgress, *patch.Status)
	s.Nil(patch.Title)

	_, err = s.validator.ValidatePatch(s.ctx, service.AssignmentPatchDraft{Title: &blank}, domain.ContentTypeDeck)
	s.Equal(map[string]string{"title": "this field is required"}, s.fields(err))

	empty := ""
	_, err = s.validator.ValidatePatch(s.ctx, service.AssignmentPatchDraft{DueDate: &blank}, domain.ContentTypeDeck)
	s.Equal(map[string]string{"due_date": "must be a date in YYYY-MM-DD format"}, s.fields(err))
	_, err = s.validator.ValidatePatch(s.ctx, service.AssignmentPatchDraft{DueDate: &empty}, domain.ContentTypeDeck)
	s.Equal(map[string]string{"due_date": "must be a date in YYYY-MM-DD format"}, s.fields(err))

	done := "done"
	_, err = s.validator.ValidatePatch(s.ctx, service.AssignmentPatchDraft{Status: &done}, domain.ContentTypeDeck)
	s.Contains(s.fields(err), "status")
}

func (s *FormValidatorSuite) TestPatchSupportingDecksOnlyOnCourses() {
	decks := []string{"d-1"}

	_, err := s.validator.ValidatePatch(s.ctx, service.AssignmentPatchDraft{SupportingDecks: &decks}, domain.ContentTypeDeck)
	s.Contains(s.fields(err), "supporting_decks")

	s.catalog.EXPECT().GetDeck(gomock.Any(), "d-1").Return(&domain.Deck{ID: "d-1", Title: "One"}, nil)
	patch, err := s.validator.ValidatePatch(s.ctx, service.AssignmentPatchDraft{SupportingDecks: &decks}, domain.ContentTypeCourse)
	s.Require().NoError(err)
	s.Equal([]string{"d-1"}, patch.SupportingDecks)
	s.Equal([]string{"One"}, patch.SupportingDeckTitles)
}

func (s *FormValidatorSuite) TestStruct() {
	err := s.validator.Struct(domain.CreateUserRequest{Email: "not-an-email", Password: "short"})

	fields := s.fields(err)
	s.Equal("this field is required", fields["username"])
	s.Equal("this field is required", fields["full_name"])
	s.Contains(fields, "email")
	s.Contains(fields, "password")

	s.NoError(s.validator.Struct(domain.CreateUserRequest{
		Username: "ann", Email: "ann@example.com", Password: "longenough", FullName: "Ann Lee",
	}))
}
