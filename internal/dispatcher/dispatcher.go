package dispatcher

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"llmjobs/internal/capability"
	"llmjobs/internal/jobstore"
	"llmjobs/internal/metrics"
	"llmjobs/internal/models"
	"llmjobs/internal/provider"
	"llmjobs/internal/translator"
)

// Dispatcher turns message requests into upstream calls and stored jobs.
type Dispatcher struct {
	provider provider.Provider
	store    *jobstore.Store
	defaults translator.Defaults
	table    capability.Table
	log      zerolog.Logger
}

// New constructs a dispatcher. A nil table uses capability.Default.
func New(p provider.Provider, store *jobstore.Store, defaults translator.Defaults, table capability.Table, log zerolog.Logger) (*Dispatcher, error) {
	if p == nil {
		return nil, errors.New("provider must not be nil")
	}
	if store == nil {
		return nil, errors.New("job store must not be nil")
	}
	if table == nil {
		table = capability.Default
	}
	return &Dispatcher{
		provider: p,
		store:    store,
		defaults: defaults,
		table:    table,
		log:      log.With().Str("component", "dispatcher").Logger(),
	}, nil
}

// CreateMessage sends the prompt upstream and records the reply as a job.
// Nothing is stored when the upstream call fails. A failed write-through of
// the job file is logged and does not fail the request.
func (d *Dispatcher) CreateMessage(ctx context.Context, in translator.MessageInput) (models.Job, error) {
	req, err := translator.BuildChatRequest(in, d.defaults)
	if err != nil {
		return models.Job{}, err
	}

	if len(in.Images) > 0 && in.Model != "" && in.Model != req.Model {
		d.log.Debug().Str("requested", in.Model).Str("model", req.Model).Int("images", len(in.Images)).Msg("images attached, using vision model")
	}

	start := time.Now()
	resp, err := d.provider.Chat(ctx, req)
	metrics.RecordUpstream("chat", err, time.Since(start).Seconds())
	if err != nil {
		d.log.Error().Err(err).Str("model", req.Model).Msg("upstream chat failed")
		return models.Job{}, err
	}
	if resp == nil {
		return models.Job{}, provider.Wrap(d.provider.Name(), "chat", provider.ErrEmptyResponse)
	}

	job, err := d.store.Create(in.Content, req.Model, resp.Content)
	if err != nil {
		if !errors.Is(err, jobstore.ErrPersist) {
			return models.Job{}, err
		}
		metrics.RecordPersistFailure()
		d.log.Error().Err(err).Str("job_id", job.ID).Msg("job stored in memory but not persisted")
	}
	metrics.RecordJobCreated(job.Model)

	d.log.Info().
		Str("job_id", job.ID).
		Str("model", job.Model).
		Int("images", len(in.Images)).
		Int("total_tokens", resp.Usage.TotalTokens).
		Msg("job created")

	return job, nil
}

// ListJobs returns every stored job in creation order.
func (d *Dispatcher) ListJobs() []models.Job {
	return d.store.List()
}

// GetJob returns a stored job or an error wrapping jobstore.ErrNotFound.
func (d *Dispatcher) GetJob(id string) (models.Job, error) {
	return d.store.Get(id)
}

// ListModels lists upstream models decorated with capability metadata.
func (d *Dispatcher) ListModels(ctx context.Context) ([]models.ModelDescriptor, error) {
	start := time.Now()
	upstream, err := d.provider.ListModels(ctx)
	metrics.RecordUpstream("list_models", err, time.Since(start).Seconds())
	if err != nil {
		d.log.Error().Err(err).Msg("upstream model listing failed")
		return nil, err
	}
	return translator.DecorateModels(upstream, d.table), nil
}
