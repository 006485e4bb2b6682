package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterRoutes mounts all routes on r. photoUploadLimit wraps the photo
// upload route only and may be nil.
func (h *Handler) RegisterRoutes(r *mux.Router, photoUploadLimit mux.MiddlewareFunc) {
	r.HandleFunc("/healthz", h.HandleHealth).Methods(http.MethodGet)

	r.HandleFunc("/goals", h.HandleSetGoal).Methods(http.MethodPost)

	photoHandler := http.Handler(http.HandlerFunc(h.HandlePhotoUpload))
	if photoUploadLimit != nil {
		photoHandler = photoUploadLimit(photoHandler)
	}
	r.Handle("/workouts/photo", photoHandler).Methods(http.MethodPost)
	r.HandleFunc("/workouts/{userId}/{date}", h.HandleRevokeWorkout).Methods(http.MethodDelete)
	r.HandleFunc("/workouts/{userId}", h.HandleRevokeWorkout).Methods(http.MethodDelete)

	r.HandleFunc("/progress/{userId}", h.HandleProgress).Methods(http.MethodGet)
	r.HandleFunc("/summary/{userId}", h.HandleSummary).Methods(http.MethodGet)
	r.HandleFunc("/reports/weekly", h.HandleWeeklyReport).Methods(http.MethodGet)

	adminRouter := r.PathPrefix("/admin").Subrouter()
	adminRouter.HandleFunc("/workouts", h.HandleAdminAddWorkout).Methods(http.MethodPost)
	adminRouter.HandleFunc("/rollup", h.HandleAdminRollup).Methods(http.MethodPost)
	adminRouter.HandleFunc("/reset", h.HandleAdminReset).Methods(http.MethodPost)
}
