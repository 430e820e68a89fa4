package worker

import (
	"assignmentgateway/internal/ctxdata"
	"assignmentgateway/internal/domain"
	"assignmentgateway/internal/errdefs"
	"assignmentgateway/internal/kafka"
	"assignmentgateway/internal/logging"
	"assignmentgateway/internal/service/mocks"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type fakeSender struct {
	mu     sync.Mutex
	events []kafka.ReminderEvent
	fail   map[int64]bool
}

func (s *fakeSender) SendReminder(_ context.Context, event kafka.ReminderEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail[event.AssignmentID] {
		return errors.New("broker down")
	}
	s.events = append(s.events, event)
	return nil
}

func (s *fakeSender) ids() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int64, 0, len(s.events))
	for _, e := range s.events {
		ids = append(ids, e.AssignmentID)
	}
	return ids
}

var now = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

func due(id int64, date string, status domain.Status) *domain.Assignment {
	ts, _ := domain.EndOfDay(date)
	return &domain.Assignment{ID: id, InstructorID: 7, StudentID: 3, Title: "Read", Status: status, DueDate: &ts}
}

func newTestWorker(t *testing.T, sender *fakeSender) (*ReminderWorker, *mocks.MockAssignmentStore) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockAssignmentStore(ctrl)
	w := NewReminderWorker(store, sender, logging.Nop(), Config{InstructorID: 7, ServiceToken: "token"})
	w.now = func() time.Time { return now }
	return w, store
}

func TestDueSoon(t *testing.T) {
	window := 24 * time.Hour
	tests := []struct {
		name       string
		assignment *domain.Assignment
		expected   bool
	}{
		{"DueToday", due(1, "2025-06-10", domain.StatusPending), true},
		{"InProgress", due(1, "2025-06-10", domain.StatusInProgress), true},
		{"TooFar", due(1, "2025-06-11", domain.StatusPending), false},
		{"AlreadyOverdue", due(1, "2025-06-01", domain.StatusPending), false},
		{"MarkedOverdue", due(1, "2025-06-10", domain.StatusOverdue), false},
		{"Completed", due(1, "2025-06-10", domain.StatusCompleted), false},
		{"NoDueDate", &domain.Assignment{ID: 1, Status: domain.StatusPending}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, dueSoon(tc.assignment, now, window))
		})
	}
}

func TestProcessReminders_PagesAndSelects(t *testing.T) {
	sender := &fakeSender{}
	w, store := newTestWorker(t, sender)
	ctx := context.Background()

	store.EXPECT().List(gomock.Any(), domain.AssignmentFilter{InstructorID: 7, Page: 1, Size: 50}).
		Return(&domain.AssignmentList{
			Assignments: []*domain.Assignment{due(1, "2025-06-10", domain.StatusPending), due(2, "2025-06-20", domain.StatusPending)},
			Page:        1, TotalPages: 2,
		}, nil)
	store.EXPECT().List(gomock.Any(), domain.AssignmentFilter{InstructorID: 7, Page: 2, Size: 50}).
		Return(&domain.AssignmentList{
			Assignments: []*domain.Assignment{due(3, "2025-06-10", domain.StatusInProgress), due(4, "2025-06-10", domain.StatusCompleted)},
			Page:        2, TotalPages: 2,
		}, nil)

	w.processReminders(ctx)

	assert.Equal(t, []int64{1, 3}, sender.ids())
	event := sender.events[0]
	assert.Equal(t, int64(3), event.StudentID)
	assert.Equal(t, "2025-06-10T23:59:59", event.DueDate)
	assert.Equal(t, now, event.SentAt)
}

func TestProcessReminders_AnnouncesOncePerDueDate(t *testing.T) {
	sender := &fakeSender{}
	w, store := newTestWorker(t, sender)
	w.cfg.Window = 48 * time.Hour
	ctx := context.Background()

	first := &domain.AssignmentList{Assignments: []*domain.Assignment{due(1, "2025-06-10", domain.StatusPending)}, TotalPages: 1}
	moved := &domain.AssignmentList{Assignments: []*domain.Assignment{due(1, "2025-06-11", domain.StatusPending)}, TotalPages: 1}
	gomock.InOrder(
		store.EXPECT().List(gomock.Any(), gomock.Any()).Return(first, nil),
		store.EXPECT().List(gomock.Any(), gomock.Any()).Return(first, nil),
		store.EXPECT().List(gomock.Any(), gomock.Any()).Return(moved, nil),
	)

	w.processReminders(ctx)
	w.processReminders(ctx)
	assert.Equal(t, []int64{1}, sender.ids())

	w.processReminders(ctx)
	assert.Equal(t, []int64{1, 1}, sender.ids())
}

func TestProcessReminders_FailedSendIsRetriedNextTick(t *testing.T) {
	sender := &fakeSender{fail: map[int64]bool{1: true}}
	w, store := newTestWorker(t, sender)
	ctx := context.Background()

	list := &domain.AssignmentList{Assignments: []*domain.Assignment{due(1, "2025-06-10", domain.StatusPending)}, TotalPages: 1}
	store.EXPECT().List(gomock.Any(), gomock.Any()).Return(list, nil).Times(2)

	w.processReminders(ctx)
	assert.Empty(t, sender.ids())

	sender.fail = nil
	w.processReminders(ctx)
	assert.Equal(t, []int64{1}, sender.ids())
}

func TestProcessReminders_StoreFailure(t *testing.T) {
	sender := &fakeSender{}
	w, store := newTestWorker(t, sender)

	store.EXPECT().List(gomock.Any(), gomock.Any()).
		Return(nil, &errdefs.TransportError{Op: "list assignments", Err: errors.New("refused")})

	w.processReminders(context.Background())
	assert.Empty(t, sender.ids())
}

func TestStart_UsesServiceTokenAndStops(t *testing.T) {
	sender := &fakeSender{}
	w, store := newTestWorker(t, sender)
	w.cfg.Interval = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	listed := make(chan struct{})
	store.EXPECT().List(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ domain.AssignmentFilter) (*domain.AssignmentList, error) {
			header, ok := ctxdata.GetAuthHeader(ctx)
			assert.True(t, ok)
			assert.Equal(t, "Bearer token", header)
			close(listed)
			return &domain.AssignmentList{}, nil
		})

	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	<-listed
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		require.Fail(t, "worker did not stop")
	}
}
