package http

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"astrasreport/internal/dataprocessing"
	apierrors "astrasreport/internal/errors"
	"astrasreport/internal/exporter"
	mw "astrasreport/internal/middleware"
	"astrasreport/internal/session"
	"astrasreport/pkg/contracts/domain"
)

// PlotlyScript is the chart library loaded by the dashboard page
const PlotlyScript = mw.PlotlyCDN + "/plotly-2.35.2.min.js"

//go:embed templates/*.html
var templateFS embed.FS

// PageHandler serves the server-rendered upload and dashboard pages
type PageHandler struct {
	service      ReportService
	validation   *mw.ValidationMiddleware
	templates    *template.Template
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

type uploadPage struct {
	Title string
	Error string
}

type exportLink struct {
	Label string
	URL   string
}

type dashboardPage struct {
	Title     string
	SessionID string
	Dashboard domain.Dashboard
	Charts    template.JS
	Orgs      map[string]bool
	Months    map[string]bool
	Exports   []exportLink
	Plotly    string
}

// NewPageHandler parses the embedded page templates
func NewPageHandler(service ReportService, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) (*PageHandler, error) {
	tmpl, err := template.New("pages").Funcs(template.FuncMap{
		"cell": exporter.CellText,
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse page templates: %w", err)
	}

	return &PageHandler{
		service:      service,
		validation:   mw.NewValidationMiddleware(logger, errorHandler),
		templates:    tmpl,
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("handler", "pages")),
	}, nil
}

// RegisterRoutes registers the page routes on r
func (h *PageHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.UploadPage)
	r.Post("/upload", h.Upload)
	r.Get("/dashboard/{sessionID}", h.DashboardPage)
}

// UploadPage handles GET /
func (h *PageHandler) UploadPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "upload.html", uploadPage{Title: domain.DashboardTitle})
}

// Upload handles POST /upload with the multipart fields "events" and "clusters"
func (h *PageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(DefaultMultipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.errorHandler.HandleError(w, r, maxErr)
			return
		}
		h.uploadFailed(w, r, http.StatusBadRequest, "The upload could not be read.")
		return
	}

	files := make(map[session.FileKind]*uploadedFile, 2)
	var missing []string
	for _, kind := range []session.FileKind{session.FileEvents, session.FileClusters} {
		name, data, err := readFormFile(r, string(kind))
		if err != nil || len(data) == 0 {
			missing = append(missing, string(kind))
			continue
		}
		files[kind] = &uploadedFile{name: name, data: data}
	}
	if len(missing) > 0 {
		prompt := (&dataprocessing.MissingInputError{Missing: missing}).Prompt()
		h.uploadFailed(w, r, http.StatusUnprocessableEntity, prompt)
		return
	}

	sess, err := h.service.CreateSession(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	for kind, f := range files {
		if _, err := h.service.Upload(r.Context(), sess.ID, kind, f.name, f.data); err != nil {
			_ = h.service.DeleteSession(r.Context(), sess.ID)
			h.uploadFailed(w, r, http.StatusUnprocessableEntity, uploadMessage(kind, err))
			return
		}
	}

	http.Redirect(w, r, "/dashboard/"+url.PathEscape(sess.ID), http.StatusSeeOther)
}

// DashboardPage handles GET /dashboard/{sessionID}
func (h *PageHandler) DashboardPage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	sel := ParseSelection(r.URL.Query())
	if err := h.validation.ValidateStruct(sel); err != nil {
		h.uploadFailed(w, r, http.StatusBadRequest, pageMessage(err))
		return
	}

	d, err := h.service.Dashboard(r.Context(), id, sel)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		h.uploadFailed(w, r, http.StatusUnprocessableEntity, pageMessage(err))
		return
	}

	charts := []domain.ChartSpec{d.MonthlyChart}
	if d.ClusterChart != nil {
		charts = append(charts, *d.ClusterChart)
	}
	if d.OrganizationChart != nil {
		charts = append(charts, *d.OrganizationChart)
	}
	chartJSON, err := json.Marshal(charts)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, "dashboard.html", dashboardPage{
		Title:     domain.DashboardTitle,
		SessionID: id,
		Dashboard: d,
		Charts:    template.JS(chartJSON),
		Orgs:      toSet(d.Selection.Organizations),
		Months:    toSet(d.Selection.Months),
		Exports:   exportLinks(id, d),
		Plotly:    PlotlyScript,
	})
}

type uploadedFile struct {
	name string
	data []byte
}

func (h *PageHandler) uploadFailed(w http.ResponseWriter, r *http.Request, status int, message string) {
	h.logger.InfoContext(r.Context(), "upload rejected",
		slog.Int("status", status),
		slog.String("reason", message))
	h.render(w, r, status, "upload.html", uploadPage{Title: domain.DashboardTitle, Error: message})
}

// render executes a page into a buffer so template errors never produce half a page
func (h *PageHandler) render(w http.ResponseWriter, r *http.Request, status int, name string, data interface{}) {
	var buf bytes.Buffer
	if err := h.templates.ExecuteTemplate(&buf, name, data); err != nil {
		h.logger.ErrorContext(r.Context(), "page rendering failed",
			slog.String("template", name),
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, apierrors.ErrRenderFailed)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func exportLinks(id string, d domain.Dashboard) []exportLink {
	query := SelectionQuery(d.Selection)
	link := func(label string, view domain.ExportView) exportLink {
		u := url.URL{
			Path:     "/api/sessions/" + id + "/exports/" + string(view),
			RawQuery: query.Encode(),
		}
		return exportLink{Label: label, URL: u.String()}
	}

	links := []exportLink{
		link("Download Export Data", domain.ExportViewEvents),
		link("Download Pivot Table 1", domain.ExportViewMonthOrg),
	}
	if d.MonthClusterPivot != nil {
		links = append(links, link("Download Pivot Table 2", domain.ExportViewMonthCluster))
	}
	for i := range links {
		csv := links[i]
		csv.Label += " (CSV)"
		csv.URL += withFormat(csv.URL, exporter.FormatCSV)
		links = append(links, csv)
	}
	return links
}

func withFormat(u string, f exporter.Format) string {
	sep := "?"
	if parsed, err := url.Parse(u); err == nil && parsed.RawQuery != "" {
		sep = "&"
	}
	return sep + QueryFormat + "=" + string(f)
}

func uploadMessage(kind session.FileKind, err error) string {
	msg := pageMessage(err)
	if kind == session.FileEvents {
		return "Sourcing events file: " + msg
	}
	return "Supplier market structure file: " + msg
}

// pageMessage turns a pipeline error into text for the upload page
func pageMessage(err error) string {
	var missing *dataprocessing.MissingInputError
	if errors.As(err, &missing) {
		return missing.Prompt()
	}
	var apiErr *apierrors.APIError
	if errors.As(mapServiceError(err), &apiErr) {
		switch details := apiErr.Details.(type) {
		case apierrors.ValidationError:
			return details.Message
		case apierrors.ValidationErrors:
			messages := make([]string, 0, len(details.Errors))
			for _, fe := range details.Errors {
				messages = append(messages, fe.Message)
			}
			if len(messages) > 0 {
				return strings.Join(messages, "; ")
			}
		}
		return apiErr.Message
	}
	return err.Error()
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
