package dispatcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"llmjobs/internal/jobstore"
	"llmjobs/internal/models"
	"llmjobs/internal/provider"
	"llmjobs/internal/provider/providertest"
	"llmjobs/internal/translator"
)

var testDefaults = translator.Defaults{Model: "gpt-3.5-turbo", VisionModel: "gpt-4o"}

func newDispatcher(t *testing.T, fake *providertest.Fake, store *jobstore.Store) *Dispatcher {
	t.Helper()
	if store == nil {
		store = jobstore.New(jobstore.Options{Logger: zerolog.Nop()})
	}
	d, err := New(fake, store, testDefaults, nil, zerolog.Nop())
	require.NoError(t, err)
	return d
}

func TestCreateMessageStoresJob(t *testing.T) {
	fake := &providertest.Fake{Reply: "Hi there"}
	d := newDispatcher(t, fake, nil)

	job, err := d.CreateMessage(context.Background(), translator.MessageInput{Content: "Hello", Model: "gpt-3.5-turbo"})
	require.NoError(t, err)

	assert.Equal(t, models.JobStatusCompleted, job.Status)
	assert.Equal(t, "Hello", job.Content)
	assert.Equal(t, "gpt-3.5-turbo", job.Model)
	assert.Equal(t, "Hi there", job.Response)

	assert.Equal(t, []models.Job{job}, d.ListJobs())
	got, err := d.GetJob(job.ID)
	require.NoError(t, err)
	assert.Equal(t, job, got)
}

func TestCreateMessageWithImageUsesVisionModel(t *testing.T) {
	fake := &providertest.Fake{Reply: "A cat"}
	d := newDispatcher(t, fake, nil)

	job, err := d.CreateMessage(context.Background(), translator.MessageInput{
		Content: "What is this?",
		Model:   "gpt-3.5-turbo",
		Images:  []translator.Image{{ContentType: "image/png", Data: []byte("png")}},
	})
	require.NoError(t, err)

	requests := fake.Requests()
	require.Len(t, requests, 1)
	assert.Equal(t, "gpt-4o", requests[0].Model)
	assert.Equal(t, "gpt-4o", job.Model)
}

func TestCreateMessageUpstreamFailureStoresNothing(t *testing.T) {
	fake := &providertest.Fake{ChatErr: errors.New("The model `bogus` does not exist")}
	d := newDispatcher(t, fake, nil)

	_, err := d.CreateMessage(context.Background(), translator.MessageInput{Content: "Hello", Model: "bogus"})
	require.Error(t, err)
	assert.True(t, provider.IsUpstream(err))
	assert.Contains(t, err.Error(), "does not exist")
	assert.Empty(t, d.ListJobs())
}

func TestCreateMessageEmptyContentSkipsUpstream(t *testing.T) {
	fake := &providertest.Fake{Reply: "unused"}
	d := newDispatcher(t, fake, nil)

	_, err := d.CreateMessage(context.Background(), translator.MessageInput{Content: ""})
	assert.ErrorIs(t, err, translator.ErrEmptyContent)
	assert.Empty(t, fake.Requests())
	assert.Empty(t, d.ListJobs())
}

func TestCreateMessagePersistFailureStillReturnsJob(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	store := jobstore.New(jobstore.Options{Path: jobstore.PathFor(blocker), Logger: zerolog.Nop()})

	d := newDispatcher(t, &providertest.Fake{Reply: "Hi"}, store)

	job, err := d.CreateMessage(context.Background(), translator.MessageInput{Content: "Hello"})
	require.NoError(t, err)
	assert.Equal(t, "gpt-3.5-turbo", job.Model)
	assert.Len(t, d.ListJobs(), 1)
}

func TestGetJobUnknown(t *testing.T) {
	d := newDispatcher(t, &providertest.Fake{}, nil)
	_, err := d.GetJob("unknown-id")
	assert.ErrorIs(t, err, jobstore.ErrNotFound)
}

func TestListModelsDecorates(t *testing.T) {
	fake := &providertest.Fake{Models: []models.UpstreamModel{{ID: "gpt-4"}, {ID: "totally-unknown-model"}}}
	d := newDispatcher(t, fake, nil)

	out, err := d.ListModels(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.False(t, out[0].Capabilities.IsUnknown())
	assert.True(t, out[1].Capabilities.IsUnknown())
}

func TestListModelsUpstreamFailure(t *testing.T) {
	d := newDispatcher(t, &providertest.Fake{ModelsErr: errors.New("Incorrect API key provided")}, nil)

	_, err := d.ListModels(context.Background())
	require.Error(t, err)
	assert.True(t, provider.IsUpstream(err))
}

func TestNewValidatesDependencies(t *testing.T) {
	store := jobstore.New(jobstore.Options{Logger: zerolog.Nop()})

	_, err := New(nil, store, testDefaults, nil, zerolog.Nop())
	assert.Error(t, err)

	_, err = New(&providertest.Fake{}, nil, testDefaults, nil, zerolog.Nop())
	assert.Error(t, err)
}
