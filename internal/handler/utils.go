package handler

import (
	"assignmentgateway/internal/errdefs"
	"assignmentgateway/internal/logging"
	"assignmentgateway/internal/service"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

var ErrBadRequest = errors.New("bad request")

func mapErr(err error) int {
	switch {
	case errors.Is(err, ErrBadRequest), errors.Is(err, errdefs.ErrValidation), errors.Is(err, errdefs.ErrRequest):
		return http.StatusBadRequest
	case errors.Is(err, errdefs.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errdefs.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, errdefs.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, errdefs.ErrTransport), errors.Is(err, errdefs.ErrParse):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

type errorResponse struct {
	Error        string                `json:"error"`
	Fields       []errdefs.FieldError  `json:"fields,omitempty"`
	Notification *service.Notification `json:"notification,omitempty"`
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		writeErrorJSON(w, http.StatusInternalServerError, "failed to serialize response")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(data)
}

func writeErrorJSON(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	resp, _ := json.Marshal(errorResponse{Error: message})
	w.Write(resp)
}

// writeOpError reports a failed write together with its notification.
func writeOpError(w http.ResponseWriter, r *http.Request, op service.Operation, err error) {
	notification := service.NotificationFor(op, err)
	resp := errorResponse{Error: notification.Description, Notification: &notification}
	var valErr *errdefs.ValidationError
	if errors.As(err, &valErr) {
		resp.Fields = valErr.Fields
	}
	statusCode := mapErr(err)
	logFailure(r, statusCode, err)
	writeJSON(w, statusCode, resp)
}

// writeReadError reports a failed read. fallback is shown for failures that
// carry no boundary message.
func writeReadError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	statusCode := mapErr(err)
	logFailure(r, statusCode, err)
	writeErrorJSON(w, statusCode, errdefs.UserMessage(err, fallback))
}

func logFailure(r *http.Request, statusCode int, err error) {
	ctx := r.Context()
	logger, ok := logging.GetFromContext(ctx)
	if !ok {
		return
	}
	if statusCode >= http.StatusInternalServerError {
		logger.Error(ctx, "request failed", zap.String("path", r.URL.Path), zap.Int("status", statusCode), zap.Error(err))
		return
	}
	logger.Info(ctx, "request rejected", zap.String("path", r.URL.Path), zap.Int("status", statusCode), zap.Error(err))
}

func parsePathParam(r *http.Request, key string) (string, error) {
	val := chi.URLParam(r, key)
	if val == "" {
		return "", fmt.Errorf("missing path param %s: %w", key, ErrBadRequest)
	}
	return val, nil
}

func parseIDParam(r *http.Request, key string) (int64, error) {
	val, err := parsePathParam(r, key)
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(val, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid path param %s=%q: %w", key, val, ErrBadRequest)
	}
	return id, nil
}

func parseQueryInt64(r *http.Request, key string) (int64, error) {
	val := r.URL.Query().Get(key)
	if val == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid query param %s=%q: %w", key, val, ErrBadRequest)
	}
	return n, nil
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %v: %w", err, ErrBadRequest)
	}
	return nil
}
