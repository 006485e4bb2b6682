package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/2beens/workoutfines/internal/report"
	"github.com/2beens/workoutfines/internal/telemetry/tracing"
	"github.com/2beens/workoutfines/internal/workouts"
	"github.com/2beens/workoutfines/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

const (
	maxBodyBytes      = 1 << 16
	resetConfirmation = "reset"
)

type workoutService interface {
	SetGoal(ctx context.Context, userID, username string, weeklyGoal int) (*workouts.UserGoal, error)
	ProcessPhotoUpload(ctx context.Context, userID, username, filename string) (*workouts.WorkoutResult, error)
	AdminAddWorkout(ctx context.Context, userID, username, date string) (*workouts.WorkoutResult, error)
	RevokeWorkoutToday(ctx context.Context, userID string) (*workouts.WorkoutResult, error)
	RevokeWorkoutOnDate(ctx context.Context, userID, date string) (*workouts.WorkoutResult, error)
	CurrentWeeklyProgress(ctx context.Context, userID string) (*workouts.WeeklyProgress, error)
}

type reportService interface {
	TargetWeekStart(offset int) (time.Time, error)
	GenerateWeeklyReportData(ctx context.Context, weekStart time.Time) (*report.WeeklyReport, error)
	ProcessWeeklyPenaltyRecords(ctx context.Context, weekStart time.Time) (*report.RollupResult, error)
	UserWeeklySummary(ctx context.Context, userID string, reference time.Time) (*report.UserSummary, error)
	ResetAll(ctx context.Context) error
}

type SetGoalRequest struct {
	UserID     string `json:"userId"`
	Username   string `json:"username"`
	WeeklyGoal int    `json:"weeklyGoal"`
}

type PhotoUploadRequest struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Filename string `json:"filename"`
}

type AdminAddWorkoutRequest struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Date     string `json:"date"`
}

type ResetRequest struct {
	Confirmation string `json:"confirmation"`
}

// ConflictResponse is sent with 409. The result still carries the current
// counts so the caller can show them.
type ConflictResponse struct {
	pkg.ErrorResponse
	Result *workouts.WorkoutResult `json:"result,omitempty"`
}

type Handler struct {
	workouts workoutService
	reports  reportService
}

func NewHandler(workouts workoutService, reports reportService) *Handler {
	return &Handler{
		workouts: workouts,
		reports:  reports,
	}
}

func (h *Handler) HandleSetGoal(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.goals.set")
	defer span.End()

	var req SetGoalRequest
	if !decodeBody(w, r, &req) {
		return
	}

	goal, err := h.workouts.SetGoal(ctx, req.UserID, req.Username, req.WeeklyGoal)
	if err != nil {
		writeServiceError(w, "set goal", err, nil)
		return
	}
	pkg.WriteJSON(w, http.StatusOK, goal)
}

func (h *Handler) HandlePhotoUpload(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.photo")
	defer span.End()

	var req PhotoUploadRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.workouts.ProcessPhotoUpload(ctx, req.UserID, req.Username, req.Filename)
	if err != nil {
		writeServiceError(w, "photo upload", err, result)
		return
	}
	pkg.WriteJSON(w, http.StatusCreated, result)
}

func (h *Handler) HandleRevokeWorkout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.revoke")
	defer span.End()

	vars := mux.Vars(r)
	userID := vars["userId"]

	var (
		result *workouts.WorkoutResult
		err    error
	)
	if date, ok := vars["date"]; ok {
		result, err = h.workouts.RevokeWorkoutOnDate(ctx, userID, date)
	} else {
		result, err = h.workouts.RevokeWorkoutToday(ctx, userID)
	}
	if err != nil {
		writeServiceError(w, "revoke workout", err, result)
		return
	}
	pkg.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) HandleProgress(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.progress.get")
	defer span.End()

	progress, err := h.workouts.CurrentWeeklyProgress(ctx, mux.Vars(r)["userId"])
	if err != nil {
		writeServiceError(w, "weekly progress", err, nil)
		return
	}
	pkg.WriteJSON(w, http.StatusOK, progress)
}

func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.summary.get")
	defer span.End()

	summary, err := h.reports.UserWeeklySummary(ctx, mux.Vars(r)["userId"], time.Time{})
	if err != nil {
		writeServiceError(w, "user summary", err, nil)
		return
	}
	pkg.WriteJSON(w, http.StatusOK, summary)
}

func (h *Handler) HandleWeeklyReport(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.reports.weekly")
	defer span.End()

	weekStart, ok := h.targetWeek(w, r)
	if !ok {
		return
	}

	weekly, err := h.reports.GenerateWeeklyReportData(ctx, weekStart)
	if err != nil {
		writeServiceError(w, "weekly report", err, nil)
		return
	}
	pkg.WriteJSON(w, http.StatusOK, weekly)
}

func (h *Handler) HandleAdminAddWorkout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.admin.workouts.add")
	defer span.End()

	var req AdminAddWorkoutRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.workouts.AdminAddWorkout(ctx, req.UserID, req.Username, req.Date)
	if err != nil {
		writeServiceError(w, "admin add workout", err, result)
		return
	}
	log.Infof("admin: workout added for %s on %s", req.UserID, req.Date)
	pkg.WriteJSON(w, http.StatusCreated, result)
}

func (h *Handler) HandleAdminRollup(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.admin.rollup")
	defer span.End()

	weekStart, ok := h.targetWeek(w, r)
	if !ok {
		return
	}

	result, err := h.reports.ProcessWeeklyPenaltyRecords(ctx, weekStart)
	if err != nil {
		writeServiceError(w, "admin rollup", err, nil)
		return
	}
	pkg.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) HandleAdminReset(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.admin.reset")
	defer span.End()

	var req ResetRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Confirmation != resetConfirmation {
		pkg.WriteJSONError(w, http.StatusBadRequest, workouts.KindValidation.String(), `confirmation must be "reset"`)
		return
	}

	if err := h.reports.ResetAll(ctx); err != nil {
		writeServiceError(w, "admin reset", err, nil)
		return
	}
	pkg.WriteJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteJSONResponseOK(w, `{"status":"ok"}`)
}

func (h *Handler) targetWeek(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	offset := 0
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		var err error
		offset, err = strconv.Atoi(offsetStr)
		if err != nil {
			pkg.WriteJSONError(w, http.StatusBadRequest, workouts.KindValidation.String(), "offset must be a number")
			return time.Time{}, false
		}
	}

	weekStart, err := h.reports.TargetWeekStart(offset)
	if err != nil {
		writeServiceError(w, "target week", err, nil)
		return time.Time{}, false
	}
	return weekStart, true
}

// PhotoUploadRateKey picks the user id out of a photo upload body so uploads
// are limited per user. The body is restored for the handler.
func PhotoUploadRateKey(r *http.Request) string {
	if r.Body == nil {
		return ""
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return ""
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	var req PhotoUploadRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return ""
	}
	return req.UserID
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		log.Debugf("decode %s body: %s", r.URL.Path, err)
		pkg.WriteJSONError(w, http.StatusBadRequest, workouts.KindValidation.String(), "invalid json body")
		return false
	}
	return true
}

func statusCodeOf(kind workouts.Kind) int {
	switch kind {
	case workouts.KindValidation:
		return http.StatusBadRequest
	case workouts.KindConflict:
		return http.StatusConflict
	case workouts.KindNotFound:
		return http.StatusNotFound
	case workouts.KindStore:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeServiceError(w http.ResponseWriter, op string, err error, result *workouts.WorkoutResult) {
	kind := workouts.KindOf(err)
	statusCode := statusCodeOf(kind)

	switch kind {
	case workouts.KindStore, workouts.KindUnknown:
		log.Errorf("%s: %s", op, err)
	default:
		log.Debugf("%s: %s", op, err)
	}

	message := workouts.MessageOf(err)
	if kind == workouts.KindStore || kind == workouts.KindUnknown {
		// internals stay in the log
		message = "service temporarily unavailable"
	}

	if kind == workouts.KindConflict && result != nil {
		pkg.WriteJSON(w, statusCode, ConflictResponse{
			ErrorResponse: pkg.ErrorResponse{Error: message, Kind: kind.String()},
			Result:        result,
		})
		return
	}
	pkg.WriteJSONError(w, statusCode, kind.String(), message)
}
