package dataprocessing

import (
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"astrasreport/pkg/contracts/domain"
)

// EntryDateLayout is the day/month/year layout of the "Date of entry" column.
// Single-digit day and month are accepted as well as zero-padded ones.
const EntryDateLayout = "2/1/2006"

var categoryPattern = regexp.MustCompile(`\[(\d+)\]`)

// TransformOptions configures organization normalization
type TransformOptions struct {
	AllowedOrganizations []string
	FallbackOrganization string
}

// DefaultTransformOptions returns the stock allow-list and fallback label
func DefaultTransformOptions() TransformOptions {
	allowed := make([]string, len(domain.DefaultAllowedOrganizations))
	copy(allowed, domain.DefaultAllowedOrganizations)
	return TransformOptions{
		AllowedOrganizations: allowed,
		FallbackOrganization: domain.DefaultFallbackOrganization,
	}
}

// Transformer enriches raw events with category, cluster, organization group and month
type Transformer struct {
	allowed  map[string]bool
	fallback string
	logger   *slog.Logger
}

// NewTransformer creates a transformer
func NewTransformer(opts TransformOptions, logger *slog.Logger) *Transformer {
	if opts.FallbackOrganization == "" {
		opts.FallbackOrganization = domain.DefaultFallbackOrganization
	}
	if opts.AllowedOrganizations == nil {
		opts.AllowedOrganizations = domain.DefaultAllowedOrganizations
	}
	if logger == nil {
		logger = slog.Default()
	}

	allowed := make(map[string]bool, len(opts.AllowedOrganizations))
	for _, org := range opts.AllowedOrganizations {
		allowed[org] = true
	}

	return &Transformer{
		allowed:  allowed,
		fallback: opts.FallbackOrganization,
		logger:   logger.With(slog.String("component", "transformer")),
	}
}

// FallbackOrganization returns the label used for organizations outside the allow-list
func (t *Transformer) FallbackOrganization() string {
	return t.fallback
}

// Transform runs every enrichment step in order and returns the enriched events.
// Events whose code matches several mappings appear once per match.
func (t *Transformer) Transform(sheet *domain.EventSheet, mappings []domain.ClusterMapping) []domain.SourcingEvent {
	if sheet == nil {
		return nil
	}

	byCode := indexMappings(mappings)
	if dups := duplicatedCodes(byCode); len(dups) > 0 {
		t.logger.Warn("Purchasing categories map to more than one cluster, matching events are duplicated",
			slog.Any("codes", dups))
	}

	events := make([]domain.SourcingEvent, 0, len(sheet.Rows))
	excluded := 0
	unmatched := 0
	undated := 0

	for _, row := range sheet.Rows {
		category := ExtractCategory(row.Material)
		if IsTestRecord(row.Name) {
			excluded++
			continue
		}

		base := domain.SourcingEvent{
			Row:      row,
			Category: category,
			OrgGroup: t.NormalizeOrganization(row.Organization),
		}
		if date := ParseEntryDate(row.DateOfEntry); date != nil {
			base.EntryDate = date
			base.Month = int(date.Month())
			base.MonthName = MonthName(base.Month)
		} else {
			undated++
		}

		var matches []string
		if category != nil {
			matches = byCode[*category]
		}
		if len(matches) == 0 {
			unmatched++
			events = append(events, base)
			continue
		}
		for _, cluster := range matches {
			event := base
			if strings.TrimSpace(cluster) != "" {
				c := cluster
				event.Cluster = &c
			}
			events = append(events, event)
		}
	}

	t.logger.Info("Transformed sourcing events",
		slog.Int("input_rows", len(sheet.Rows)),
		slog.Int("test_rows_excluded", excluded),
		slog.Int("unmatched_rows", unmatched),
		slog.Int("undated_rows", undated),
		slog.Int("output_rows", len(events)))

	return events
}

// NormalizeOrganization keeps allow-listed names verbatim and maps everything else to the fallback
func (t *Transformer) NormalizeOrganization(org string) string {
	if t.allowed[org] {
		return org
	}
	return t.fallback
}

// ExtractCategory returns the first bracketed digit run in material, or nil
func ExtractCategory(material string) *int64 {
	m := categoryPattern.FindStringSubmatch(material)
	if m == nil {
		return nil
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return nil
	}
	return &n
}

// IsTestRecord reports whether name contains "test" in any letter case
func IsTestRecord(name string) bool {
	return strings.Contains(strings.ToLower(name), "test")
}

// ParseEntryDate parses a day/month/year string or an Excel serial date.
// Anything else yields nil.
func ParseEntryDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if d, err := time.Parse(EntryDateLayout, raw); err == nil {
		return &d
	}
	serial, err := strconv.ParseFloat(raw, 64)
	if err != nil || serial < 1 {
		return nil
	}
	d, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return nil
	}
	d = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	return &d
}

func indexMappings(mappings []domain.ClusterMapping) map[int64][]string {
	byCode := make(map[int64][]string)
	for _, m := range mappings {
		if m.Code == nil {
			continue
		}
		byCode[*m.Code] = append(byCode[*m.Code], m.Cluster)
	}
	return byCode
}

func duplicatedCodes(byCode map[int64][]string) []int64 {
	var dups []int64
	for code, clusters := range byCode {
		if len(clusters) > 1 {
			dups = append(dups, code)
		}
	}
	sort.Slice(dups, func(i, j int) bool { return dups[i] < dups[j] })
	return dups
}
