// Package analyzer orchestrates one analysis run end to end: decode the
// uploaded exports, aggregate the campaign anchors locally, reduce the
// high-cardinality datasets, invoke the report generator and record the
// run outcome.
package analyzer

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/adaian/adreport-cli/internal/config"
	"github.com/adaian/adreport-cli/internal/ingest"
	"github.com/adaian/adreport-cli/internal/metrics"
	"github.com/adaian/adreport-cli/internal/model"
	"github.com/adaian/adreport-cli/internal/report"
	"github.com/adaian/adreport-cli/internal/resilience"
	"github.com/adaian/adreport-cli/internal/store"
)

// Input is one uploaded export file.
type Input struct {
	// Role names the dataset: campaign, device, keyword (search family) or
	// campaign, creative, audience (GFA family).
	Role string
	Name string
	Data []byte
}

// Result is a completed analysis.
type Result struct {
	RunID  string
	Report *model.AnalysisReport
	Totals *ingest.Totals
}

// Analyzer runs the full pipeline.
type Analyzer struct {
	cfg      *config.Config
	store    store.Store
	asm      *report.Assembler
	profiles map[ingest.Kind]ingest.Profile
	metrics  *metrics.Metrics
}

// New creates an Analyzer. Profiles may be nil, in which case the built-in
// fragment tables are used. Metrics may be nil.
func New(cfg *config.Config, st store.Store, asm *report.Assembler, profiles map[ingest.Kind]ingest.Profile, m *metrics.Metrics) *Analyzer {
	if profiles == nil {
		profiles = ingest.DefaultProfiles()
	}
	return &Analyzer{cfg: cfg, store: st, asm: asm, profiles: profiles, metrics: m}
}

// kindFor maps a family and input role to the document kind carrying its
// header profile.
func kindFor(family model.Family, role string) (ingest.Kind, bool) {
	switch family {
	case model.FamilySearch:
		switch role {
		case "campaign":
			return ingest.KindSearchCampaign, true
		case "device":
			return ingest.KindSearchDevice, true
		case "keyword":
			return ingest.KindSearchKeyword, true
		}
	case model.FamilyGFA:
		switch role {
		case "campaign":
			return ingest.KindGFACampaign, true
		case "creative":
			return ingest.KindGFACreative, true
		case "audience":
			return ingest.KindGFAAudience, true
		}
	}
	return "", false
}

// Run executes one analysis. The returned error, when non-nil, is always an
// *Error carrying the failure kind.
func (a *Analyzer) Run(ctx context.Context, family model.Family, inputs []Input) (*Result, error) {
	start := time.Now()
	log := zap.L().With(zap.String("family", string(family)))

	if !family.Valid() {
		return nil, &Error{Kind: KindBadInput, Err: eris.Errorf("unknown family %q", family)}
	}

	var totalBytes int64
	files := make([]model.InputFile, 0, len(inputs))
	hasCampaign := false
	for _, in := range inputs {
		if _, ok := kindFor(family, in.Role); !ok {
			return nil, &Error{Kind: KindBadInput, Err: eris.Errorf("role %q is not valid for family %s", in.Role, family)}
		}
		if in.Role == "campaign" {
			hasCampaign = true
		}
		totalBytes += int64(len(in.Data))
		files = append(files, model.InputFile{Role: in.Role, Name: in.Name, Bytes: len(in.Data)})
	}
	if !hasCampaign {
		return nil, &Error{Kind: KindBadInput, Err: eris.New("campaign file is required")}
	}
	if totalBytes > a.cfg.Ingest.MaxBodyBytes {
		return nil, &Error{Kind: KindTooLarge, Err: eris.Errorf("inputs total %d bytes, limit %d", totalBytes, a.cfg.Ingest.MaxBodyBytes)}
	}

	run, err := a.store.CreateRun(ctx, family, files)
	if err != nil {
		return nil, &Error{Kind: KindGenerate, Err: err}
	}
	log = log.With(zap.String("run_id", run.ID))
	a.metrics.RunStarted(string(family))

	// Run-record updates must survive the analysis deadline expiring.
	bookCtx := context.WithoutCancel(ctx)
	ctx, cancel := context.WithTimeout(ctx, a.cfg.Report.Deadline())
	defer cancel()

	result, runErr := a.analyze(ctx, log, family, inputs)
	elapsed := time.Since(start)

	if runErr != nil {
		log.Warn("analysis failed",
			zap.String("kind", runErr.Kind),
			zap.Error(runErr.Err),
			zap.Duration("elapsed", elapsed),
		)
		a.metrics.RunFailed(string(family), runErr.Kind, elapsed.Seconds())
		if err := a.store.FailRun(bookCtx, run.ID, runErr.Kind, runErr.Err.Error(), elapsed.Milliseconds()); err != nil {
			log.Error("record run failure", zap.Error(err))
		}
		return nil, runErr
	}

	totals := result.Totals
	anchors := &model.AnchorTotals{
		Cost:           totals.Cost,
		Revenue:        totals.Revenue,
		Conversions:    totals.Conversions,
		Clicks:         totals.Clicks,
		Impressions:    totals.Impressions,
		Roas:           totals.Roas,
		RowsUsed:       totals.RowsUsed,
		RowsSkipped:    totals.RowsSkipped,
		CellsDefaulted: totals.CellsDefaulted,
	}
	if err := a.store.CompleteRun(bookCtx, run.ID, anchors, elapsed.Milliseconds()); err != nil {
		log.Error("record run completion", zap.Error(err))
	}
	a.metrics.RunSucceeded(string(family), elapsed.Seconds())
	log.Info("analysis complete",
		zap.Duration("elapsed", elapsed),
		zap.Int("rows_used", totals.RowsUsed),
		zap.Int("rows_skipped", totals.RowsSkipped),
	)

	result.RunID = run.ID
	return result, nil
}

func (a *Analyzer) analyze(ctx context.Context, log *zap.Logger, family model.Family, inputs []Input) (*Result, *Error) {
	docs, err := a.decodeAll(ctx, inputs)
	if err != nil {
		return nil, &Error{Kind: KindBadInput, Err: err}
	}

	campaignKind, _ := kindFor(family, "campaign")
	totals, err := ingest.Aggregate(docs["campaign"], a.profiles[campaignKind])
	if err != nil {
		var hdrErr *ingest.HeaderNotFoundError
		if errors.As(err, &hdrErr) {
			return nil, &Error{Kind: KindHeaderNotFound, Err: err}
		}
		return nil, &Error{Kind: KindBadInput, Err: err}
	}
	log.Debug("campaign anchors computed",
		zap.Float64("cost", totals.Cost),
		zap.Float64("roas", totals.Roas),
		zap.Int("cells_defaulted", totals.CellsDefaulted),
	)

	sections := a.buildSections(family, docs)

	rep, err := a.asm.Generate(ctx, family, totals, sections)
	if err != nil {
		return nil, &Error{Kind: classifyGenerate(err), Err: err}
	}

	return &Result{Report: rep, Totals: totals}, nil
}

// decodeAll decodes every input concurrently; exports routinely reach
// megabytes and the EUC-KR fallback pass is not free.
func (a *Analyzer) decodeAll(ctx context.Context, inputs []Input) (map[string]*ingest.Document, error) {
	var mu sync.Mutex
	docs := make(map[string]*ingest.Document, len(inputs))

	g, _ := errgroup.WithContext(ctx)
	for _, in := range inputs {
		g.Go(func() error {
			doc, err := ingest.NewDocument(in.Data)
			if err != nil {
				return eris.Wrapf(err, "decode %s file %q", in.Role, in.Name)
			}
			mu.Lock()
			docs[in.Role] = doc
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

// buildSections lays out the prompt datasets. Campaign and device exports go
// in whole (capped), keyword, creative and audience exports are reduced to
// the top spenders first.
func (a *Analyzer) buildSections(family model.Family, docs map[string]*ingest.Document) []report.Section {
	var sections []report.Section

	switch family {
	case model.FamilyGFA:
		bodyCap := a.cfg.Report.GFASectionCap
		sections = append(sections, report.Section{
			Title: "CAMPAIGN (Daily)",
			Body:  joinDoc(docs["campaign"]),
			Cap:   bodyCap,
		})
		if doc, ok := docs["creative"]; ok {
			sections = append(sections, a.reducedSection("CREATIVES", doc, ingest.KindGFACreative, bodyCap))
		}
		if doc, ok := docs["audience"]; ok {
			sections = append(sections, a.reducedSection("AUDIENCE", doc, ingest.KindGFAAudience, bodyCap))
		}
	default:
		bodyCap := a.cfg.Report.SearchSectionCap
		sections = append(sections, report.Section{
			Title: "CAMPAIGN (Weekly)",
			Body:  joinDoc(docs["campaign"]),
			Cap:   bodyCap,
		})
		if doc, ok := docs["device"]; ok {
			sections = append(sections, report.Section{
				Title: "DEVICE",
				Body:  joinDoc(doc),
				Cap:   bodyCap,
			})
		}
		if doc, ok := docs["keyword"]; ok {
			sections = append(sections, a.reducedSection("KEYWORDS", doc, ingest.KindSearchKeyword, bodyCap))
		}
	}
	return sections
}

func (a *Analyzer) reducedSection(title string, doc *ingest.Document, kind ingest.Kind, bodyCap int) report.Section {
	reduced := ingest.ReduceTopN(doc, a.profiles[kind], a.cfg.Ingest.TopN)
	s := report.Section{
		Title: title + " (Top spenders, pre-filtered)",
		Body:  reduced.Text(),
		Note:  "Pre-filtered to the highest-cost rows to fit the context window.",
		Cap:   bodyCap,
	}
	if reduced.Fallback {
		s.Note = "Column structure not recognized; raw leading rows included as-is."
	}
	return s
}

func joinDoc(doc *ingest.Document) string {
	if doc == nil {
		return ""
	}
	return strings.Join(doc.Lines(), "\n")
}

// classifyGenerate maps a generation failure to its run error kind.
func classifyGenerate(err error) string {
	var fmtErr *report.FormatError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return KindDeadline
	case resilience.IsQuota(err):
		return KindQuota
	case resilience.IsTransient(err):
		return KindOverloaded
	case errors.As(err, &fmtErr):
		return KindBadFormat
	default:
		return KindGenerate
	}
}
