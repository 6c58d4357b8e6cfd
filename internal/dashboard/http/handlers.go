package dashhttp

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/branchpulse/branchpulse/internal/dashboard"
	"github.com/branchpulse/branchpulse/internal/directory"
	"github.com/branchpulse/branchpulse/internal/metrics"
	"github.com/branchpulse/branchpulse/internal/platform/httpx"
	"github.com/branchpulse/branchpulse/internal/shared"
)

const requestTimeout = 2 * time.Second

// DashboardService defines the data contract the handler depends on.
type DashboardService interface {
	Overview(ctx context.Context, user directory.StaffMember, f dashboard.Filter) (dashboard.Overview, error)
	Products(ctx context.Context, user directory.StaffMember, f dashboard.Filter) ([]dashboard.ProductShare, error)
	Report(ctx context.Context, user directory.StaffMember, f dashboard.Filter) (dashboard.Report, error)
	Progress(ctx context.Context, user directory.StaffMember, month time.Time) (dashboard.Progress, error)
}

// Handler serves the dashboard JSON endpoints.
type Handler struct {
	logger  *slog.Logger
	service DashboardService
	now     func() time.Time
}

// NewHandler constructs the dashboard HTTP handler.
func NewHandler(logger *slog.Logger, service DashboardService) *Handler {
	return &Handler{logger: logger, service: service, now: time.Now}
}

// WithNow overrides the handler clock for testing.
func (h *Handler) WithNow(fn func() time.Time) {
	if fn != nil {
		h.now = fn
	}
}

// overviewResponse bundles the KPI card with the contribution breakdown the
// dashboard page renders next to it.
type overviewResponse struct {
	Overview dashboard.Overview       `json:"overview"`
	Products []dashboard.ProductShare `json:"products"`
}

func (h *Handler) handleOverview(w http.ResponseWriter, r *http.Request) {
	user, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	filter, err := h.parseFilter(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Filter", err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var resp overviewResponse
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		overview, err := h.service.Overview(gctx, user, filter)
		if err != nil {
			return err
		}
		resp.Overview = overview
		return nil
	})
	g.Go(func() error {
		products, err := h.service.Products(gctx, user, filter)
		if err != nil {
			return err
		}
		resp.Products = products
		return nil
	})
	if err := g.Wait(); err != nil {
		h.logger.Error("load overview", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) handleProducts(w http.ResponseWriter, r *http.Request) {
	user, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	filter, err := h.parseFilter(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Filter", err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	products, err := h.service.Products(ctx, user, filter)
	if err != nil {
		h.logger.Error("load products", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, products)
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	user, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	filter, err := h.parseFilter(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Filter", err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	report, err := h.service.Report(ctx, user, filter)
	if err != nil {
		h.logger.Error("load report", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) handleProgress(w http.ResponseWriter, r *http.Request) {
	user, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	month := h.now()
	if raw := r.URL.Query().Get("month"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01", raw, time.Local)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Filter", fmt.Sprintf("month %q: want YYYY-MM", raw))
			return
		}
		month = parsed
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	progress, err := h.service.Progress(ctx, user, month)
	if err != nil {
		h.logger.Error("load progress", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, progress)
}

// parseFilter reads from/to/date/product query params. With no explicit
// bounds the window defaults to month-to-date.
func (h *Handler) parseFilter(r *http.Request) (dashboard.Filter, error) {
	q := r.URL.Query()
	var filter dashboard.Filter

	parse := func(name string) (*time.Time, error) {
		raw := q.Get(name)
		if raw == "" {
			return nil, nil
		}
		t, err := time.ParseInLocation(metrics.DayFormat, raw, time.Local)
		if err != nil {
			return nil, fmt.Errorf("%s %q: want YYYY-MM-DD", name, raw)
		}
		return &t, nil
	}

	from, err := parse("from")
	if err != nil {
		return dashboard.Filter{}, err
	}
	to, err := parse("to")
	if err != nil {
		return dashboard.Filter{}, err
	}
	day, err := parse("date")
	if err != nil {
		return dashboard.Filter{}, err
	}

	filter.From, filter.To, filter.Day = from, to, day
	filter.Product = q.Get("product")

	if filter.From == nil && filter.To == nil && filter.Day == nil {
		start, end := metrics.MonthToDateRange(h.now())
		filter.From, filter.To = &start, &end
	}
	return filter, nil
}
