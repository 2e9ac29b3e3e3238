package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"astrasreport/internal/config"
	"astrasreport/internal/dataprocessing"
	"astrasreport/internal/exporter"
	"astrasreport/internal/infrastructure"
	"astrasreport/internal/report"
	"astrasreport/internal/session"
	"astrasreport/internal/validation"
	"astrasreport/pkg/contracts/domain"
)

// TracerName is the instrumentation scope of report spans
const TracerName = "astrasreport.report"

// Prepared is the enriched event set built from one pair of workbooks
type Prepared struct {
	Columns []string
	Events  []domain.SourcingEvent
}

// Filters lists the selectable values and the default selection of a session
type Filters struct {
	Options  domain.FilterOptions `json:"options"`
	Defaults domain.Selection     `json:"defaults"`
	Total    int                  `json:"total_events"`
}

// Download is a serialized export ready to be sent to the client
type Download struct {
	FileName    string
	ContentType string
	Data        []byte
}

// ReportService runs the load, transform, filter, aggregate and present pipeline
type ReportService struct {
	sessions    session.Store
	loader      *dataprocessing.Loader
	transformer *dataprocessing.Transformer
	presenter   *report.Presenter
	exporter    *exporter.Exporter
	validator   *validation.FileValidator
	metrics     *infrastructure.ReportMetrics
	tracer      trace.Tracer
	logger      *slog.Logger
}

// NewReportService creates a report service. sessions may be nil when only the
// stateless Render and ExportTable operations are used; metrics may be nil.
func NewReportService(cfg config.ReportConfig, sessions session.Store, metrics *infrastructure.ReportMetrics, logger *slog.Logger) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}

	transformer := dataprocessing.NewTransformer(dataprocessing.TransformOptions{
		AllowedOrganizations: cfg.AllowedOrganizations,
		FallbackOrganization: cfg.FallbackOrganization,
	}, logger)

	logger.Info("ReportService initialized",
		slog.String("cluster_sheet", cfg.ClusterSheet),
		slog.String("fallback_organization", transformer.FallbackOrganization()),
		slog.Int("allowed_organizations", len(cfg.AllowedOrganizations)))

	return &ReportService{
		sessions:    sessions,
		loader:      dataprocessing.NewLoader(cfg.ClusterSheet, logger),
		transformer: transformer,
		presenter:   report.NewPresenter(transformer.FallbackOrganization()),
		exporter:    exporter.NewExporter(logger),
		validator:   validation.NewFileValidator(logger),
		metrics:     metrics,
		tracer:      otel.Tracer(TracerName),
		logger:      infrastructure.WithComponent(logger, "report_service"),
	}
}

// Prepare loads both workbooks concurrently and enriches the events
func (s *ReportService) Prepare(ctx context.Context, events, clusters []byte) (*Prepared, error) {
	ctx, span := s.tracer.Start(ctx, "report.prepare",
		trace.WithAttributes(
			attribute.Int("report.events_bytes", len(events)),
			attribute.Int("report.clusters_bytes", len(clusters)),
		),
	)
	defer span.End()

	var missing []string
	if len(events) == 0 {
		missing = append(missing, dataprocessing.EventsFile)
	}
	if len(clusters) == 0 {
		missing = append(missing, dataprocessing.ClustersFile)
	}
	if len(missing) > 0 {
		err := &dataprocessing.MissingInputError{Missing: missing}
		s.fail(span, err)
		return nil, err
	}

	start := time.Now()
	var (
		sheet    *domain.EventSheet
		mappings []domain.ClusterMapping
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, loadSpan := s.tracer.Start(gctx, "report.load.events")
		defer loadSpan.End()

		var err error
		sheet, err = s.loader.LoadEvents(bytes.NewReader(events))
		if err != nil {
			s.fail(loadSpan, err)
		}
		return err
	})
	g.Go(func() error {
		_, loadSpan := s.tracer.Start(gctx, "report.load.clusters")
		defer loadSpan.End()

		var err error
		mappings, err = s.loader.LoadClusters(bytes.NewReader(clusters))
		if err != nil {
			s.fail(loadSpan, err)
		}
		return err
	})
	if err := g.Wait(); err != nil {
		s.fail(span, err)
		return nil, err
	}
	s.metrics.RecordStage(ctx, "load", time.Since(start))

	start = time.Now()
	enriched := s.transformer.Transform(sheet, mappings)
	s.metrics.RecordStage(ctx, "transform", time.Since(start))

	span.SetAttributes(
		attribute.Int("report.raw_rows", len(sheet.Rows)),
		attribute.Int("report.mappings", len(mappings)),
		attribute.Int("report.events", len(enriched)),
	)

	return &Prepared{Columns: sheet.Columns, Events: enriched}, nil
}

// Render runs the whole pipeline on two workbooks for one selection
func (s *ReportService) Render(ctx context.Context, events, clusters []byte, sel domain.Selection) (domain.Dashboard, error) {
	start := time.Now()

	prepared, err := s.Prepare(ctx, events, clusters)
	if err != nil {
		s.metrics.RecordRender(ctx, time.Since(start), 0, err)
		return domain.Dashboard{}, err
	}

	dashboard := s.present(ctx, prepared, sel)
	s.metrics.RecordRender(ctx, time.Since(start), len(prepared.Events), nil)

	s.logger.InfoContext(ctx, "Rendered report",
		slog.Int("events", len(prepared.Events)),
		slog.Int("selected", dashboard.TotalEvents),
		slog.Int("organizations", len(dashboard.Selection.Organizations)),
		slog.Int("months", len(dashboard.Selection.Months)),
		slog.Duration("duration", time.Since(start)))

	return dashboard, nil
}

// ExportTable serializes one view of a dashboard
func (s *ReportService) ExportTable(ctx context.Context, d domain.Dashboard, view domain.ExportView, format exporter.Format) (*Download, error) {
	if !view.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownView, view)
	}
	table, ok := report.View(d, view)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrViewEmpty, view)
	}

	_, span := s.tracer.Start(ctx, "report.export",
		trace.WithAttributes(
			attribute.String("report.view", string(view)),
			attribute.String("report.format", string(format)),
			attribute.Int("report.rows", len(table.Rows)),
		),
	)
	defer span.End()

	start := time.Now()
	data, err := s.exporter.Bytes(table, format)
	if err != nil {
		s.fail(span, err)
		return nil, err
	}
	s.metrics.RecordStage(ctx, "export", time.Since(start))
	s.metrics.RecordExport(ctx, string(view), string(format))

	return &Download{
		FileName:    view.FileName() + format.Extension(),
		ContentType: format.ContentType(),
		Data:        data,
	}, nil
}

// CreateSession opens an empty upload session
func (s *ReportService) CreateSession(ctx context.Context) (*session.Session, error) {
	sess, err := s.sessions.Create()
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	s.logger.InfoContext(ctx, "Session created", slog.String("session_id", sess.ID))
	return sess, nil
}

// GetSession returns the session with its uploaded file metadata
func (s *ReportService) GetSession(ctx context.Context, id string) (*session.Session, error) {
	return s.sessions.Get(id)
}

// DeleteSession discards a session and its files
func (s *ReportService) DeleteSession(ctx context.Context, id string) error {
	if err := s.sessions.Delete(id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Session deleted", slog.String("session_id", id))
	return nil
}

// Upload stores one workbook in a session, replacing any earlier upload of that kind
func (s *ReportService) Upload(ctx context.Context, id string, kind session.FileKind, name string, data []byte) (*session.Session, error) {
	if err := s.validator.ValidateWorkbook(name, data); err != nil {
		if errors.Is(err, validation.ErrEmptyWorkbook) {
			return nil, fmt.Errorf("%w: %s", ErrEmptyUpload, kind)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidUpload, err)
	}

	if err := s.sessions.PutFile(id, kind, session.File{Name: name, Data: data}); err != nil {
		return nil, err
	}
	s.metrics.RecordUpload(ctx, string(kind), len(data))

	s.logger.InfoContext(ctx, "Workbook uploaded",
		slog.String("session_id", id),
		slog.String("kind", string(kind)),
		slog.String("file_name", name),
		slog.Int("size", len(data)))

	return s.sessions.Get(id)
}

// Filters returns the selectable organizations and months of a session
func (s *ReportService) Filters(ctx context.Context, id string) (*Filters, error) {
	prepared, err := s.prepareSession(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Filters{
		Options:  dataprocessing.Options(prepared.Events),
		Defaults: dataprocessing.DefaultSelection(prepared.Events),
		Total:    len(prepared.Events),
	}, nil
}

// Dashboard renders the session's workbooks for sel
func (s *ReportService) Dashboard(ctx context.Context, id string, sel domain.Selection) (domain.Dashboard, error) {
	start := time.Now()

	prepared, err := s.prepareSession(ctx, id)
	if err != nil {
		s.metrics.RecordRender(ctx, time.Since(start), 0, err)
		return domain.Dashboard{}, err
	}

	dashboard := s.present(ctx, prepared, sel)
	s.metrics.RecordRender(ctx, time.Since(start), len(prepared.Events), nil)

	return dashboard, nil
}

// Export renders the session's workbooks for sel and serializes one view
func (s *ReportService) Export(ctx context.Context, id string, view domain.ExportView, format exporter.Format, sel domain.Selection) (*Download, error) {
	if !view.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownView, view)
	}

	dashboard, err := s.Dashboard(ctx, id, sel)
	if err != nil {
		return nil, err
	}
	return s.ExportTable(ctx, dashboard, view, format)
}

// prepareSession runs Prepare on the files of a session
func (s *ReportService) prepareSession(ctx context.Context, id string) (*Prepared, error) {
	sess, err := s.sessions.Get(id)
	if err != nil {
		return nil, err
	}

	var events, clusters []byte
	if f := sess.File(session.FileEvents); f != nil {
		events = f.Data
	}
	if f := sess.File(session.FileClusters); f != nil {
		clusters = f.Data
	}

	return s.Prepare(ctx, events, clusters)
}

func (s *ReportService) present(ctx context.Context, prepared *Prepared, sel domain.Selection) domain.Dashboard {
	_, span := s.tracer.Start(ctx, "report.present")
	defer span.End()

	start := time.Now()
	dashboard := s.presenter.Dashboard(prepared.Columns, prepared.Events, sel)
	s.metrics.RecordStage(ctx, "present", time.Since(start))

	span.SetAttributes(attribute.Int("report.selected_events", dashboard.TotalEvents))
	return dashboard
}

func (s *ReportService) fail(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
