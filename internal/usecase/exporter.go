package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"resume-studio/internal/domain"
	"resume-studio/internal/model"
	"resume-studio/internal/render"
	"resume-studio/pkg/infrastructure"
)

const defaultRenderAttempts = 3

// Renderer prints an HTML document to PDF.
type Renderer interface {
	RenderHTMLToPDF(ctx context.Context, html string) ([]byte, error)
}

// Sink delivers a finished artifact and returns where it ended up.
type Sink interface {
	Put(ctx context.Context, a domain.Artifact) (string, error)
}

// Exporter turns a record snapshot into downloadable artifacts. It never
// touches session state.
type Exporter struct {
	renderer  Renderer
	sink      Sink
	log       *zap.Logger
	attempts  int
	backoff   func(attempt int) time.Duration
	now       func() time.Time
	pageCount func([]byte) (int, error)
}

type ExporterOption func(*Exporter)

func WithExportLogger(l *zap.Logger) ExporterOption {
	return func(e *Exporter) {
		if l != nil {
			e.log = l
		}
	}
}

func WithSink(s Sink) ExporterOption {
	return func(e *Exporter) { e.sink = s }
}

func WithRenderAttempts(n int) ExporterOption {
	return func(e *Exporter) {
		if n > 0 {
			e.attempts = n
		}
	}
}

// WithBackoff overrides the wait before retry attempt+1.
func WithBackoff(f func(attempt int) time.Duration) ExporterOption {
	return func(e *Exporter) { e.backoff = f }
}

func WithNow(f func() time.Time) ExporterOption {
	return func(e *Exporter) { e.now = f }
}

func WithPageCounter(f func([]byte) (int, error)) ExporterOption {
	return func(e *Exporter) { e.pageCount = f }
}

func NewExporter(r Renderer, opts ...ExporterOption) *Exporter {
	e := &Exporter{
		renderer:  r,
		log:       zap.NewNop(),
		attempts:  defaultRenderAttempts,
		backoff:   func(i int) time.Duration { return time.Duration(1<<i) * time.Second },
		now:       time.Now,
		pageCount: infrastructure.CountPDFPages,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Export renders r in one format.
func (e *Exporter) Export(ctx context.Context, r model.Resume, f domain.Format) (domain.Artifact, error) {
	a := domain.Artifact{
		ID:          uuid.New(),
		Format:      f,
		ContentType: f.ContentType(),
		CreatedAt:   e.now().UTC(),
	}
	var err error
	switch f {
	case domain.FormatDOCX:
		a.FileName = model.FileName(r.Basics.Name, "Resume", "", "docx")
		a.Data, err = render.DOCX(r)
	case domain.FormatHTML:
		a.FileName = model.FileName(r.Basics.Name, "Resume", "_branded", "html")
		a.Data, err = render.StaticPage(r)
	case domain.FormatJSON:
		a.FileName = model.FileName(r.Basics.Name, "resume", "", "json")
		a.Data, err = model.MarshalExchange(r)
	case domain.FormatPDF:
		a.FileName = model.FileName(r.Basics.Name, "Resume", "", "pdf")
		a.Data, a.PageCount, err = e.pdf(ctx, r)
	default:
		return domain.Artifact{}, fmt.Errorf("%w: %q", domain.ErrUnknownFormat, f)
	}
	if err != nil {
		e.log.Warn("export failed", zap.String("format", string(f)), zap.Error(err))
		return domain.Artifact{}, fmt.Errorf("export %s: %w", f, err)
	}
	e.log.Info("export rendered",
		zap.String("format", string(f)),
		zap.String("file", a.FileName),
		zap.Int("bytes", len(a.Data)))
	return a, nil
}

// ExportAll renders every format concurrently from the same snapshot. The
// result follows the order of formats.
func (e *Exporter) ExportAll(ctx context.Context, r model.Resume, formats ...domain.Format) ([]domain.Artifact, error) {
	if len(formats) == 0 {
		formats = domain.Formats()
	}
	snap := r.Clone()
	out := make([]domain.Artifact, len(formats))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range formats {
		g.Go(func() error {
			a, err := e.Export(gctx, snap, f)
			if err != nil {
				return err
			}
			out[i] = a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Publish hands each artifact to the configured sink and records its
// location. Without a sink the artifacts are returned unchanged.
func (e *Exporter) Publish(ctx context.Context, arts []domain.Artifact) ([]domain.Artifact, error) {
	if e.sink == nil {
		return arts, nil
	}
	out := make([]domain.Artifact, len(arts))
	g, gctx := errgroup.WithContext(ctx)
	for i, a := range arts {
		g.Go(func() error {
			loc, err := e.sink.Put(gctx, a)
			if err != nil {
				return fmt.Errorf("publish %s: %w", a.FileName, err)
			}
			a.Location = loc
			out[i] = a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (e *Exporter) pdf(ctx context.Context, r model.Resume) ([]byte, int, error) {
	if e.renderer == nil {
		return nil, 0, infrastructure.NewRenderError(infrastructure.ErrCodeRenderFailed, "no PDF renderer configured", nil)
	}
	page, err := render.StaticPage(r)
	if err != nil {
		return nil, 0, err
	}

	var (
		data      []byte
		renderErr error
	)
	for i := 0; i < e.attempts; i++ {
		data, renderErr = e.renderer.RenderHTMLToPDF(ctx, string(page))
		if renderErr == nil {
			if infrastructure.IsPDF(data) {
				break
			}
			renderErr = infrastructure.NewRenderError(infrastructure.ErrCodeInvalidPDF, "renderer returned non-PDF output", nil)
		}
		e.log.Warn("pdf render attempt failed", zap.Int("attempt", i+1), zap.Error(renderErr))
		if i < e.attempts-1 {
			select {
			case <-time.After(e.backoff(i)):
			case <-ctx.Done():
				return nil, 0, ctx.Err()
			}
		}
	}
	if renderErr != nil {
		return nil, 0, fmt.Errorf("rendering failed after %d attempts: %w", e.attempts, renderErr)
	}

	pages, err := e.pageCount(data)
	if err != nil {
		e.log.Warn("pdf page count unavailable", zap.Error(err))
		pages = 0
	}
	return data, pages, nil
}
