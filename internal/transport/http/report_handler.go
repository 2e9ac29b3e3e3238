package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "astrasreport/internal/errors"
	"astrasreport/internal/exporter"
	mw "astrasreport/internal/middleware"
	"astrasreport/internal/services"
	"astrasreport/internal/session"
	"astrasreport/pkg/contracts/domain"
)

// Query keys of a selection
const (
	QueryOrganizations = "orgs"
	QueryMonths        = "months"
	QueryFormat        = "format"
)

// DefaultMultipartMemory is the part of a multipart body kept in memory
const DefaultMultipartMemory = 32 << 20

// ReportService defines the report operations used by the handlers
type ReportService interface {
	CreateSession(ctx context.Context) (*session.Session, error)
	GetSession(ctx context.Context, id string) (*session.Session, error)
	DeleteSession(ctx context.Context, id string) error
	Upload(ctx context.Context, id string, kind session.FileKind, name string, data []byte) (*session.Session, error)
	Filters(ctx context.Context, id string) (*services.Filters, error)
	Dashboard(ctx context.Context, id string, sel domain.Selection) (domain.Dashboard, error)
	Export(ctx context.Context, id string, view domain.ExportView, format exporter.Format, sel domain.Selection) (*services.Download, error)
}

// ReportHandler serves the session, dashboard and export API
type ReportHandler struct {
	service      ReportService
	validation   *mw.ValidationMiddleware
	query        *mw.QueryParamValidator
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

// NewReportHandler creates a report handler
func NewReportHandler(service ReportService, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ReportHandler {
	return &ReportHandler{
		service:      service,
		validation:   mw.NewValidationMiddleware(logger, errorHandler),
		query:        mw.NewQueryParamValidator(logger, errorHandler),
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("handler", "report")),
	}
}

// Routes returns the session routes
func (h *ReportHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.CreateSession)

	r.Route("/{sessionID}", func(r chi.Router) {
		r.Get("/", h.GetSession)
		r.Delete("/", h.DeleteSession)
		r.With(mw.ContentTypeValidator(h.errorHandler, "multipart/form-data")).
			Put("/files/{kind}", h.UploadFile)
		r.Get("/filters", h.GetFilters)
		r.Get("/dashboard", h.GetDashboard)
		r.With(mw.ContentTypeValidator(h.errorHandler, "application/json"), h.validation.ValidateRequest).
			Post("/dashboard", h.PostDashboard)
		r.Get("/exports/{view}", h.Export)
	})

	return r
}

// CreateSession handles POST /api/sessions
func (h *ReportHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.service.CreateSession(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, sess)
}

// GetSession handles GET /api/sessions/{sessionID}
func (h *ReportHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.service.GetSession(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"session": sess,
		"missing": sess.Missing(),
	})
}

// DeleteSession handles DELETE /api/sessions/{sessionID}
func (h *ReportHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteSession(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadFile handles PUT /api/sessions/{sessionID}/files/{kind}
func (h *ReportHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	kind, err := session.ParseFileKind(chi.URLParam(r, "kind"))
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("kind", "kind must be one of: events, clusters"))
		return
	}

	if err := r.ParseMultipartForm(DefaultMultipartMemory); err != nil {
		h.errorHandler.HandleError(w, r, multipartError(err))
		return
	}

	name, data, err := readFormFile(r, "file")
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	sess, err := h.service.Upload(r.Context(), id, kind, name, data)
	if err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}

	h.logger.InfoContext(r.Context(), "workbook received",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("session_id", id),
		slog.String("kind", string(kind)),
		slog.Int("size", len(data)))

	render.JSON(w, r, map[string]interface{}{
		"session": sess,
		"missing": sess.Missing(),
	})
}

// GetFilters handles GET /api/sessions/{sessionID}/filters
func (h *ReportHandler) GetFilters(w http.ResponseWriter, r *http.Request) {
	filters, err := h.service.Filters(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, filters)
}

// GetDashboard handles GET /api/sessions/{sessionID}/dashboard
func (h *ReportHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	sel := ParseSelection(r.URL.Query())
	h.dashboard(w, r, sel)
}

// PostDashboard handles POST /api/sessions/{sessionID}/dashboard with a JSON selection
func (h *ReportHandler) PostDashboard(w http.ResponseWriter, r *http.Request) {
	var sel domain.Selection
	if err := render.DecodeJSON(r.Body, &sel); err != nil && !errors.Is(err, io.EOF) {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	h.dashboard(w, r, sel)
}

func (h *ReportHandler) dashboard(w http.ResponseWriter, r *http.Request, sel domain.Selection) {
	if err := h.validation.ValidateStruct(sel); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	d, err := h.service.Dashboard(r.Context(), chi.URLParam(r, "sessionID"), sel)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, d)
}

// Export handles GET /api/sessions/{sessionID}/exports/{view}
func (h *ReportHandler) Export(w http.ResponseWriter, r *http.Request) {
	view := domain.ExportView(chi.URLParam(r, "view"))
	if !view.Valid() {
		h.errorHandler.HandleError(w, r, apierrors.UnknownViewError(string(view)))
		return
	}

	value, ok := h.query.ValidateEnum(w, r, QueryFormat, []string{string(exporter.FormatXLSX), string(exporter.FormatCSV)}, string(exporter.FormatXLSX))
	if !ok {
		return
	}
	format, err := exporter.ParseFormat(value)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation(QueryFormat, err.Error()))
		return
	}

	sel := ParseSelection(r.URL.Query())
	if err := h.validation.ValidateStruct(sel); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	download, err := h.service.Export(r.Context(), chi.URLParam(r, "sessionID"), view, format, sel)
	if err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}

	writeDownload(w, download)
}

// ParseSelection reads a selection from query values. An absent key leaves that
// part unspecified (nil); a key whose values are all empty selects nothing.
func ParseSelection(q url.Values) domain.Selection {
	return domain.Selection{
		Organizations: selectionValues(q, QueryOrganizations),
		Months:        selectionValues(q, QueryMonths),
	}
}

// SelectionQuery encodes sel so that ParseSelection returns it again
func SelectionQuery(sel domain.Selection) url.Values {
	q := url.Values{}
	encode := func(key string, values []string) {
		if values == nil {
			return
		}
		if len(values) == 0 {
			q.Set(key, "")
			return
		}
		for _, v := range values {
			q.Add(key, v)
		}
	}
	encode(QueryOrganizations, sel.Organizations)
	encode(QueryMonths, sel.Months)
	return q
}

func selectionValues(q url.Values, key string) []string {
	raw, ok := q[key]
	if !ok {
		return nil
	}
	values := make([]string, 0, len(raw))
	for _, v := range raw {
		if v != "" {
			values = append(values, v)
		}
	}
	return values
}

// readFormFile reads one uploaded file of a parsed multipart form
func readFormFile(r *http.Request, field string) (string, []byte, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil, apierrors.ErrValidation(field, fmt.Sprintf("%s file is required", field))
		}
		return "", nil, multipartError(err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, multipartError(err)
	}
	return header.Filename, data, nil
}

// multipartError keeps body limit errors so they map to 413
func multipartError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return maxErr
	}
	return apierrors.InvalidRequestWithError(err)
}

// mapServiceError converts service sentinel errors to API errors
func mapServiceError(err error) error {
	switch {
	case errors.Is(err, services.ErrUnknownView):
		return apierrors.NewWithDetails(http.StatusNotFound, "UNKNOWN_VIEW", "Export view does not exist", err.Error())
	case errors.Is(err, services.ErrViewEmpty):
		return apierrors.NewWithDetails(http.StatusNotFound, "NOT_FOUND", "Export view has no data for this selection", err.Error())
	case errors.Is(err, services.ErrEmptyUpload):
		return apierrors.ErrValidation("file", "uploaded file is empty")
	case errors.Is(err, services.ErrInvalidUpload):
		return apierrors.ErrValidation("file", "uploaded file is not an xlsx workbook")
	}
	return err
}

func writeDownload(w http.ResponseWriter, d *services.Download) {
	w.Header().Set("Content-Type", d.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, d.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(d.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(d.Data)
}
