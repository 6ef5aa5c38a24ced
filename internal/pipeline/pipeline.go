// Package pipeline owns the session state and runs the add operation:
// append the link, resubmit the whole registry to the inference client, parse
// and validate the reply, normalize the scores, and commit the product list.
//
// Add and Reset are serialized by a single semaphore held across the entire
// sequence, so the stored product list always lines up with the registry. A
// failed add rolls the appended link back and leaves the stored list as it was.
package pipeline

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/hyperjump/ecorank/internal/apperr"
	"github.com/hyperjump/ecorank/internal/inference"
	"github.com/hyperjump/ecorank/internal/models"
	"github.com/hyperjump/ecorank/internal/prompt"
	"github.com/hyperjump/ecorank/internal/ranking"
	"github.com/hyperjump/ecorank/internal/registry"
	"github.com/hyperjump/ecorank/internal/reply"
	"github.com/hyperjump/ecorank/internal/storage"
	"github.com/hyperjump/ecorank/pkg/utils"
)

// DefaultTimeout bounds one inference call when no timeout is configured.
const DefaultTimeout = 60 * time.Second

// Instruction supplies the instruction template sent with every query.
type Instruction interface {
	Text() string
}

// Pipeline is the session state plus the add/reset operations over it.
type Pipeline struct {
	sem         *semaphore.Weighted
	links       *registry.Registry
	store       storage.SessionStore
	client      inference.Client
	instruction Instruction
	timeout     time.Duration
	onStage     func(Stage)
	logger      *zap.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithStore replaces the default in-memory session store.
func WithStore(s storage.SessionStore) Option {
	return func(p *Pipeline) { p.store = s }
}

// WithInstruction sets the instruction template source.
func WithInstruction(i Instruction) Option {
	return func(p *Pipeline) { p.instruction = i }
}

// WithTimeout bounds each inference call. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(p *Pipeline) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithStageHook registers fn to be called on every stage transition.
func WithStageHook(fn func(Stage)) Option {
	return func(p *Pipeline) { p.onStage = fn }
}

// New returns a pipeline with an empty session that queries client.
func New(client inference.Client, opts ...Option) *Pipeline {
	p := &Pipeline{
		sem:     semaphore.NewWeighted(1),
		links:   registry.New(),
		timeout: DefaultTimeout,
		client:  client,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.store == nil {
		p.store = storage.NewMemoryStore()
	}
	if p.instruction == nil {
		p.instruction = prompt.NewTemplate()
	}
	p.logger = utils.OrNop(p.logger)
	return p
}

// AddLink appends link, rescores the whole registry and returns the complete
// product list in submission order. On failure the link is removed again and
// the stored product list is unchanged.
//
// If ctx ends while waiting for another add or reset to finish, the context
// error is returned as is and nothing is changed.
func (p *Pipeline) AddLink(ctx context.Context, link string) ([]models.ScoredProduct, error) {
	in := models.LinkInput{Link: link}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer p.sem.Release(1)

	start := time.Now()
	prior := p.links.Len()
	p.links.Append(in.Link)
	p.stage(StagePending, prior+1)

	products, err := p.rescore(ctx)
	if err != nil {
		p.links.Truncate(prior)
		p.stage(StageFailed, prior+1)
		p.logger.Warn("add link failed",
			zap.String("kind", apperr.KindOf(err).String()),
			zap.Int("links", prior),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return nil, err
	}

	p.stage(StageDone, len(products))
	p.logger.Info("add link done", zap.Int("links", len(products)), zap.Duration("elapsed", time.Since(start)))
	return products, nil
}

// rescore runs querying through commit for the current registry.
func (p *Pipeline) rescore(ctx context.Context) ([]models.ScoredProduct, error) {
	links := p.links.Snapshot()

	p.stage(StageQuerying, len(links))
	raw, err := p.query(ctx, registry.Batch(links))
	if err != nil {
		return nil, err
	}
	p.logger.Debug("inference reply", zap.String("reply", utils.Truncate(raw, 512)))

	p.stage(StageParsing, len(links))
	records, err := reply.Parse(raw)
	if err != nil {
		return nil, err
	}

	p.stage(StageValidating, len(links))
	if err := reply.ValidateCardinality(records, len(links)); err != nil {
		return nil, err
	}

	p.stage(StageNormalizing, len(links))
	scored := make([]models.ScoredProduct, len(records))
	for i, r := range records {
		scored[i] = models.ScoredProduct{URL: links[i], Name: r.Name, RawIndex: r.RawIndex}
	}
	products, err := ranking.Normalize(scored)
	if err != nil {
		return nil, err
	}

	if err := p.store.Save(ctx, products); err != nil {
		return nil, err
	}
	return models.CloneProducts(products), nil
}

// query calls the client under the configured timeout. Unclassified failures,
// including an expired deadline, are reported as AdapterUnavailable.
func (p *Pipeline) query(ctx context.Context, batch string) (string, error) {
	qctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	raw, err := p.client.Query(qctx, batch, p.instruction.Text())
	if err == nil {
		return raw, nil
	}
	if errors.Is(err, context.DeadlineExceeded) && apperr.KindOf(err) != apperr.AdapterUnavailable {
		return "", apperr.Wrap(apperr.AdapterUnavailable, "pipeline.Query", err, "inference timed out")
	}
	if apperr.KindOf(err) == apperr.Unknown {
		return "", apperr.Wrap(apperr.AdapterUnavailable, "pipeline.Query", err, "inference failed")
	}
	return "", err
}

// Products returns the last committed product list (empty, never nil).
func (p *Pipeline) Products(ctx context.Context) ([]models.ScoredProduct, error) {
	return p.store.Products(ctx)
}

// Links returns the registry in submission order.
func (p *Pipeline) Links() []string {
	return p.links.Snapshot()
}

// SessionID identifies the current session; it changes on Reset.
func (p *Pipeline) SessionID() string {
	return p.store.ID()
}

// Reset clears the registry and the stored product list. It waits for any
// in-flight add to finish first.
func (p *Pipeline) Reset(ctx context.Context) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer p.sem.Release(1)

	if err := p.store.Clear(ctx); err != nil {
		return err
	}
	p.links.Reset()
	p.logger.Info("session reset", zap.String("session_id", p.store.ID()))
	return nil
}

func (p *Pipeline) stage(s Stage, links int) {
	p.logger.Debug("pipeline stage", zap.String("stage", s.String()), zap.Int("links", links))
	if p.onStage != nil {
		p.onStage(s)
	}
}
