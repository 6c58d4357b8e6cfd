package targetshttp

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/branchpulse/branchpulse/internal/directory"
	"github.com/branchpulse/branchpulse/internal/platform/httpx"
	"github.com/branchpulse/branchpulse/internal/shared"
	"github.com/branchpulse/branchpulse/internal/targets"
)

const requestTimeout = 5 * time.Second

// TargetService is the slice of the targets service the handler needs.
type TargetService interface {
	SubmitBulk(ctx context.Context, user directory.StaffMember, sub targets.Submission) (targets.Result, error)
}

// Handler exposes target submission over HTTP.
type Handler struct {
	logger    *slog.Logger
	service   TargetService
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service TargetService) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

type bulkRequest struct {
	StaffCode string             `json:"staff_code"`
	Branch    string             `json:"branch"`
	Month     string             `json:"month" validate:"required,len=7"`
	DueDate   string             `json:"due_date" validate:"omitempty,len=10"`
	Values    map[string]float64 `json:"values" validate:"required,min=1"`
}

func (h *Handler) handleBulkSubmit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	user, ok := shared.IdentityFromContext(ctx)
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}

	var req bulkRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	sub, err := req.toSubmission()
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", err.Error())
		return
	}

	result, err := h.service.SubmitBulk(ctx, user, sub)
	if err != nil {
		h.respondSubmitError(w, err)
		return
	}

	status := http.StatusOK
	if result.Failed > 0 {
		status = http.StatusMultiStatus
	}
	httpx.JSON(w, status, result)
}

func (req bulkRequest) toSubmission() (targets.Submission, error) {
	month, err := time.ParseInLocation("2006-01", req.Month, time.Local)
	if err != nil {
		return targets.Submission{}, errors.New("month must use the 2006-01 format")
	}
	sub := targets.Submission{
		StaffCode: req.StaffCode,
		Branch:    req.Branch,
		Month:     month,
		Values:    req.Values,
	}
	if req.DueDate != "" {
		due, err := time.ParseInLocation("2006-01-02", req.DueDate, time.Local)
		if err != nil {
			return targets.Submission{}, errors.New("due_date must use the 2006-01-02 format")
		}
		sub.DueDate = &due
	}
	return sub, nil
}

func (h *Handler) respondSubmitError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, targets.ErrInvalid):
		httpx.Problem(w, http.StatusBadRequest, "Invalid Submission", err.Error())
	case errors.Is(err, targets.ErrForbidden):
		httpx.Problem(w, http.StatusForbidden, "Forbidden", err.Error())
	case errors.Is(err, targets.ErrUnknownMetric):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Unknown Metric", err.Error())
	default:
		h.logger.Error("bulk target submit", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
