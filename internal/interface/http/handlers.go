// Package http implements the REST API for Praxis Practice Hub.
package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/praxis-hub/praxis-practice-hub/internal/application/command"
	"github.com/praxis-hub/praxis-practice-hub/internal/application/query"
	"github.com/praxis-hub/praxis-practice-hub/internal/domain/commitment"
	"github.com/praxis-hub/praxis-practice-hub/internal/domain/shared"
)

// dateLayout is the wire format for calendar days.
const dateLayout = "2006-01-02"

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleRoot serves the root endpoint with basic API information.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	info := map[string]interface{}{
		"name":        "Praxis Practice Hub API",
		"version":     "v1",
		"description": "REST API for practice commitments and progress analytics",
		"endpoints": map[string]string{
			"health":      "/health",
			"practices":   "/api/v1/practices",
			"commitments": "/api/v1/commitments",
			"completeAll": "/api/v1/logs/complete-all",
		},
	}

	writeJSON(w, http.StatusOK, info)
}

// handleHealth handles the health check endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		status := s.deps.HealthChecker.Check(r.Context())
		if !status.Healthy {
			writeJSON(w, http.StatusServiceUnavailable, status)
			return
		}
		writeJSON(w, http.StatusOK, status)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"uptime":  s.Uptime().String(),
		"version": "v1",
	})
}

// handleReady handles the readiness probe endpoint (for Kubernetes).
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		status := s.deps.HealthChecker.Check(r.Context())
		if !status.Ready {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not_ready",
				"reason": status.Message,
			})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleLive handles the liveness probe endpoint (for Kubernetes).
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST BINDING HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// requireUserID reads the acting user from the X-User-ID header. Requests
// without it get a 401 and the handler stops.
func (s *Server) requireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		writeJSONError(w, http.StatusUnauthorized, "missing_user", "X-User-ID header is required")
		return "", false
	}
	return userID, true
}

// decodeBody decodes a JSON request body into dst, rejecting unknown fields.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "Request body is not valid JSON: "+err.Error())
		return false
	}
	return true
}

// parseDateParam parses an optional YYYY-MM-DD query parameter. A missing
// parameter yields the zero time.
func parseDateParam(r *http.Request, key string) (time.Time, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return time.Time{}, true
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// parseDateField parses an optional YYYY-MM-DD body field.
func parseDateField(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, true
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func badDate(w http.ResponseWriter, field string) {
	writeJSONError(w, http.StatusBadRequest, "invalid_date", field+" must be formatted as YYYY-MM-DD")
}

// getQueryParamBool extracts a boolean query parameter.
func getQueryParamBool(r *http.Request, key string) bool {
	switch r.URL.Query().Get(key) {
	case "true", "1", "yes":
		return true
	}
	return false
}

// getQueryParamInt extracts a non-negative integer query parameter,
// returning 0 when absent or malformed.
func getQueryParamInt(r *http.Request, key string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// ══════════════════════════════════════════════════════════════════════════════
// PRACTICE CATALOG HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleBrowsePractices handles GET /api/v1/practices
func (s *Server) handleBrowsePractices(w http.ResponseWriter, r *http.Request) {
	q := query.BrowsePracticesQuery{
		Category: r.URL.Query().Get("category"),
		// Disabled templates surface only in curator views.
		IncludeDisabled: getQueryParamBool(r, "include_disabled") && s.isAdmin(r),
	}
	if getQueryParamBool(r, "mine") {
		userID, ok := s.requireUserID(w, r)
		if !ok {
			return
		}
		q.CreatorID = userID
	}

	result, err := s.deps.BrowsePracticesHandler.Handle(r.Context(), q)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleGetPractice handles GET /api/v1/practices/{id}
func (s *Server) handleGetPractice(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.GetPracticeHandler.Handle(r.Context(), query.GetPracticeQuery{
		TemplateID: r.PathValue("id"),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// createPracticeRequest is the body for POST /api/v1/practices.
type createPracticeRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Tracking    string `json:"tracking"`

	// Custom marks the practice as user-owned rather than a curated
	// catalog template.
	Custom bool `json:"custom"`
}

// handleCreatePractice handles POST /api/v1/practices
func (s *Server) handleCreatePractice(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}

	var req createPracticeRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	cmd := command.CreatePracticeCommand{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Tracking:    req.Tracking,
	}
	if req.Custom {
		cmd.CreatorID = userID
	} else if !s.isAdmin(r) {
		// Curated catalog entries are admin-only.
		s.writeDomainError(w, r, shared.ErrForbidden)
		return
	}

	result, err := s.deps.CreatePracticeHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// updatePracticeRequest is the body for PUT /api/v1/practices/{id}.
type updatePracticeRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// catalogActor maps the caller onto the command layer's actor convention:
// admins act as curators (empty actor) on the curated catalog, everyone
// else acts as themselves and can only touch what they own.
func (s *Server) catalogActor(r *http.Request, userID string) string {
	if s.isAdmin(r) {
		return ""
	}
	return userID
}

// handleUpdatePractice handles PUT /api/v1/practices/{id}
func (s *Server) handleUpdatePractice(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}

	var req updatePracticeRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	result, err := s.deps.UpdatePracticeHandler.Handle(r.Context(), command.UpdatePracticeCommand{
		TemplateID:  r.PathValue("id"),
		ActorID:     s.catalogActor(r, userID),
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleRemovePractice handles DELETE /api/v1/practices/{id}
func (s *Server) handleRemovePractice(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}

	result, err := s.deps.RemovePracticeHandler.Handle(r.Context(), command.RemovePracticeCommand{
		TemplateID: r.PathValue("id"),
		ActorID:    s.catalogActor(r, userID),
		Delete:     getQueryParamBool(r, "hard"),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// COMMITMENT HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleListCommitments handles GET /api/v1/commitments
func (s *Server) handleListCommitments(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}

	viewDate, ok := parseDateParam(r, "date")
	if !ok {
		badDate(w, "date")
		return
	}

	result, err := s.deps.ListCommitmentsHandler.Handle(r.Context(), query.ListCommitmentsQuery{
		UserID:          userID,
		ViewDate:        viewDate,
		IncludeArchived: getQueryParamBool(r, "include_archived"),
		Page:            getQueryParamInt(r, "page"),
		PageSize:        getQueryParamInt(r, "page_size"),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// joinPracticeRequest is the body for POST /api/v1/commitments.
type joinPracticeRequest struct {
	TemplateID  string   `json:"template_id"`
	StartDate   string   `json:"start_date,omitempty"`
	EndDate     string   `json:"end_date,omitempty"`
	TargetValue *float64 `json:"target_value,omitempty"`
}

// handleJoinPractice handles POST /api/v1/commitments
func (s *Server) handleJoinPractice(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}

	var req joinPracticeRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	startDate, ok := parseDateField(req.StartDate)
	if !ok {
		badDate(w, "start_date")
		return
	}

	cmd := command.JoinPracticeCommand{
		UserID:      userID,
		TemplateID:  req.TemplateID,
		StartDate:   startDate,
		TargetValue: req.TargetValue,
	}
	if req.EndDate != "" {
		endDate, ok := parseDateField(req.EndDate)
		if !ok {
			badDate(w, "end_date")
			return
		}
		cmd.EndDate = &endDate
	}

	result, err := s.deps.JoinPracticeHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// updateCommitmentRequest is the body for PATCH /api/v1/commitments/{id}.
// Absent fields are left unchanged.
type updateCommitmentRequest struct {
	Status       string   `json:"status,omitempty"`
	StartDate    string   `json:"start_date,omitempty"`
	EndDate      string   `json:"end_date,omitempty"`
	ClearEndDate bool     `json:"clear_end_date,omitempty"`
	TargetValue  *float64 `json:"target_value,omitempty"`
	ClearTarget  bool     `json:"clear_target,omitempty"`
}

// handleUpdateCommitment handles PATCH /api/v1/commitments/{id}
func (s *Server) handleUpdateCommitment(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}

	var req updateCommitmentRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	cmd := command.UpdateCommitmentCommand{
		UserID:       userID,
		CommitmentID: r.PathValue("id"),
		ClearEndDate: req.ClearEndDate,
		TargetValue:  req.TargetValue,
		ClearTarget:  req.ClearTarget,
	}

	if req.Status != "" {
		status, err := commitment.ParseStatus(req.Status)
		if err != nil {
			s.writeDomainError(w, r, err)
			return
		}
		cmd.Status = &status
	}

	startDate, ok := parseDateField(req.StartDate)
	if !ok {
		badDate(w, "start_date")
		return
	}
	cmd.StartDate = startDate

	endDate, ok := parseDateField(req.EndDate)
	if !ok {
		badDate(w, "end_date")
		return
	}
	cmd.EndDate = endDate

	result, err := s.deps.UpdateCommitmentHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleLeavePractice handles DELETE /api/v1/commitments/{id}
func (s *Server) handleLeavePractice(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}

	result, err := s.deps.LeavePracticeHandler.Handle(r.Context(), command.LeavePracticeCommand{
		UserID:       userID,
		CommitmentID: r.PathValue("id"),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// DAILY LOG HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// logProgressRequest is the body for PUT /api/v1/commitments/{id}/logs.
type logProgressRequest struct {
	Date      string   `json:"date,omitempty"`
	Completed bool     `json:"completed"`
	Value     *float64 `json:"value,omitempty"`
	Notes     *string  `json:"notes,omitempty"`
}

// handleLogProgress handles PUT /api/v1/commitments/{id}/logs
func (s *Server) handleLogProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}

	var req logProgressRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	date, ok := parseDateField(req.Date)
	if !ok {
		badDate(w, "date")
		return
	}

	result, err := s.deps.LogProgressHandler.Handle(r.Context(), command.LogProgressCommand{
		UserID:       userID,
		CommitmentID: r.PathValue("id"),
		Date:         date,
		Completed:    req.Completed,
		Value:        req.Value,
		Notes:        req.Notes,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	writeJSON(w, status, result)
}

// completeAllRequest is the body for POST /api/v1/logs/complete-all.
type completeAllRequest struct {
	Date string `json:"date,omitempty"`
}

// completeAllResponse flattens the per-commitment outcome; errors are
// reported as strings.
type completeAllResponse struct {
	Completed []string          `json:"completed"`
	Skipped   []string          `json:"skipped"`
	Failed    map[string]string `json:"failed,omitempty"`
}

// handleCompleteAll handles POST /api/v1/logs/complete-all
func (s *Server) handleCompleteAll(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}

	var req completeAllRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	date, ok := parseDateField(req.Date)
	if !ok {
		badDate(w, "date")
		return
	}

	result, err := s.deps.CompleteAllHandler.Handle(r.Context(), command.CompleteAllCommand{
		UserID: userID,
		Date:   date,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	resp := completeAllResponse{
		Completed: result.Completed,
		Skipped:   result.Skipped,
	}
	if len(result.Failed) > 0 {
		resp.Failed = make(map[string]string, len(result.Failed))
		for id, ferr := range result.Failed {
			resp.Failed[id] = ferr.Error()
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// ══════════════════════════════════════════════════════════════════════════════
// ANALYTICS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleGetProgress handles GET /api/v1/commitments/{id}/progress
func (s *Server) handleGetProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}

	from, ok := parseDateParam(r, "from")
	if !ok {
		badDate(w, "from")
		return
	}
	to, ok := parseDateParam(r, "to")
	if !ok {
		badDate(w, "to")
		return
	}

	result, err := s.deps.GetProgressHandler.Handle(r.Context(), query.GetProgressQuery{
		UserID:       userID,
		CommitmentID: r.PathValue("id"),
		From:         from,
		To:           to,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleGetHeatmap handles GET /api/v1/commitments/{id}/heatmap
func (s *Server) handleGetHeatmap(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}

	from, ok := parseDateParam(r, "from")
	if !ok {
		badDate(w, "from")
		return
	}
	to, ok := parseDateParam(r, "to")
	if !ok {
		badDate(w, "to")
		return
	}

	result, err := s.deps.GetHeatmapHandler.Handle(r.Context(), query.GetHeatmapQuery{
		UserID:       userID,
		CommitmentID: r.PathValue("id"),
		From:         from,
		To:           to,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
