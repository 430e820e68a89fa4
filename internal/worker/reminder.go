package worker

import (
	"assignmentgateway/internal/ctxdata"
	"assignmentgateway/internal/domain"
	"assignmentgateway/internal/kafka"
	"assignmentgateway/internal/logging"
	"assignmentgateway/internal/service"
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type ReminderSender interface {
	SendReminder(ctx context.Context, event kafka.ReminderEvent) error
}

type Config struct {
	InstructorID int64
	ServiceToken string
	Interval     time.Duration
	Window       time.Duration
}

// ReminderWorker periodically publishes a reminder for every open
// assignment of one instructor that falls due within the window. Each
// assignment is announced once per due date.
type ReminderWorker struct {
	store  service.AssignmentStore
	sender ReminderSender
	logger *logging.Logger
	cfg    Config
	now    func() time.Time

	sent map[int64]string
}

func NewReminderWorker(store service.AssignmentStore, sender ReminderSender, logger *logging.Logger, cfg Config) *ReminderWorker {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.Window <= 0 {
		cfg.Window = 24 * time.Hour
	}
	return &ReminderWorker{
		store:  store,
		sender: sender,
		logger: logger,
		cfg:    cfg,
		now:    time.Now,
		sent:   make(map[int64]string),
	}
}

func (w *ReminderWorker) Start(ctx context.Context) {
	ctx = ctxdata.WithAuthHeader(ctx, "Bearer "+w.cfg.ServiceToken)
	ctx = logging.ContextWithLogger(ctx, w.logger)

	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	w.processReminders(ctx)
	for {
		select {
		case <-ctx.Done():
			w.logger.Info(ctx, "Reminder worker stopped")
			return
		case <-ticker.C:
			w.processReminders(ctx)
		}
	}
}

func (w *ReminderWorker) processReminders(ctx context.Context) {
	now := w.now()
	assignments, err := w.listAll(ctx)
	if err != nil {
		w.logger.Error(ctx, "Failed to list assignments", zap.Int64("instructor_id", w.cfg.InstructorID), zap.Error(err))
		return
	}

	due := make(map[int64]string)
	for _, a := range assignments {
		if !dueSoon(a, now, w.cfg.Window) {
			continue
		}
		date := a.DueDate.String()
		due[a.ID] = date
		if w.sent[a.ID] == date {
			continue
		}

		event := kafka.ReminderEvent{
			AssignmentID: a.ID,
			StudentID:    a.StudentID,
			InstructorID: a.InstructorID,
			Title:        a.Title,
			ContentType:  string(a.ContentType),
			ContentTitle: a.ContentTitle,
			DueDate:      date,
			Status:       string(a.Status),
			SentAt:       now,
		}
		if err := w.sender.SendReminder(ctx, event); err != nil {
			w.logger.Error(ctx, "Failed to send reminder", zap.Int64("assignment_id", a.ID), zap.Error(err))
			delete(due, a.ID)
			continue
		}
		w.logger.Info(ctx, "Sent reminder", zap.Int64("assignment_id", a.ID), zap.String("due_date", date))
	}
	// Forget assignments that left the window so a new due date is announced again.
	w.sent = due
}

func (w *ReminderWorker) listAll(ctx context.Context) ([]*domain.Assignment, error) {
	filter := domain.AssignmentFilter{InstructorID: w.cfg.InstructorID}.WithDefaults()
	var all []*domain.Assignment
	for {
		list, err := w.store.List(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("failed to list page %d: %w", filter.Page, err)
		}
		all = append(all, list.Assignments...)
		if len(list.Assignments) == 0 || filter.Page >= list.TotalPages {
			return all, nil
		}
		filter.Page++
	}
}

func dueSoon(a *domain.Assignment, now time.Time, window time.Duration) bool {
	if a.DueDate == nil {
		return false
	}
	switch domain.EffectiveStatus(a, now) {
	case domain.StatusPending, domain.StatusInProgress:
		return a.DueDate.Within(now, window)
	}
	return false
}
