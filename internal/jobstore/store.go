package jobstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"llmjobs/internal/models"
)

const (
	// IDPrefix starts every job identifier.
	IDPrefix = "llmjobid:"

	// FileName is the job file kept under the data directory.
	FileName = "jobs.json"

	idTokenLength = 5
	maxIDAttempts = 32
)

var (
	// ErrNotFound is returned by Get for identifiers that were never issued.
	ErrNotFound = errors.New("job not found")

	// ErrPersist wraps failures writing the job file.
	ErrPersist = errors.New("persist jobs")
)

// Options configures a Store. A blank Path keeps jobs in memory only.
type Options struct {
	Path     string
	Logger   zerolog.Logger
	Now      func() time.Time
	NewToken func() string
}

// Store owns the ordered job collection and, when configured, its file.
type Store struct {
	mu    sync.RWMutex
	jobs  []models.Job
	index map[string]int

	path     string
	log      zerolog.Logger
	now      func() time.Time
	newToken func() string
}

// PathFor returns the job file location inside dataDir.
func PathFor(dataDir string) string {
	return filepath.Join(dataDir, FileName)
}

// New constructs an empty store. Call Load to pick up persisted jobs.
func New(opts Options) *Store {
	s := &Store{
		index:    make(map[string]int),
		path:     strings.TrimSpace(opts.Path),
		log:      opts.Logger.With().Str("component", "jobstore").Logger(),
		now:      opts.Now,
		newToken: opts.NewToken,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newToken == nil {
		s.newToken = randomToken
	}
	return s
}

// Persistent reports whether writes go through to a file.
func (s *Store) Persistent() bool {
	return s.path != ""
}

// Create appends a completed job. When persistence fails the job is still
// stored and returned alongside an error wrapping ErrPersist.
func (s *Store) Create(content, model, response string) (models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job := models.Job{
		ID:        s.nextIDLocked(),
		Content:   content,
		Model:     model,
		Response:  response,
		CreatedAt: s.now(),
		Status:    models.JobStatusCompleted,
	}

	s.index[job.ID] = len(s.jobs)
	s.jobs = append(s.jobs, job)

	if s.Persistent() {
		if err := s.saveLocked(); err != nil {
			return job, err
		}
	}
	return job, nil
}

// List returns every job in insertion order.
func (s *Store) List() []models.Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Job, len(s.jobs))
	copy(out, s.jobs)
	return out
}

// Get returns the job with the given identifier or ErrNotFound.
func (s *Store) Get(id string) (models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pos, ok := s.index[id]
	if !ok {
		return models.Job{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.jobs[pos], nil
}

// Len reports the number of stored jobs.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}

// Load replaces the in-memory collection with the persisted one. A missing
// file yields an empty store; unreadable or corrupt files are logged and also
// yield an empty store so that startup never fails on bad state.
func (s *Store) Load() []models.Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs = nil
	s.index = make(map[string]int)

	if !s.Persistent() {
		return nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.log.Debug().Str("path", s.path).Msg("no job file yet, starting empty")
		} else {
			s.log.Error().Err(err).Str("path", s.path).Msg("read job file failed, starting empty")
		}
		return nil
	}

	var loaded []models.Job
	if err := json.Unmarshal(data, &loaded); err != nil {
		s.log.Error().Err(err).Str("path", s.path).Msg("parse job file failed, starting empty")
		return nil
	}

	for _, job := range loaded {
		if job.ID == "" {
			s.log.Warn().Str("path", s.path).Msg("skipping persisted job without id")
			continue
		}
		if _, dup := s.index[job.ID]; dup {
			s.log.Warn().Str("job_id", job.ID).Msg("skipping duplicate persisted job")
			continue
		}
		s.index[job.ID] = len(s.jobs)
		s.jobs = append(s.jobs, job)
	}

	s.log.Info().Str("path", s.path).Int("jobs", len(s.jobs)).Msg("loaded jobs")

	out := make([]models.Job, len(s.jobs))
	copy(out, s.jobs)
	return out
}

// Save rewrites the job file with the full collection.
func (s *Store) Save() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.Persistent() {
		return nil
	}
	return s.saveLocked()
}

func (s *Store) saveLocked() error {
	jobs := s.jobs
	if jobs == nil {
		jobs = []models.Job{}
	}

	data, err := json.MarshalIndent(jobs, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshal: %w", ErrPersist, err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("%w: ensure directory: %w", ErrPersist, err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("%w: write file: %w", ErrPersist, err)
	}
	return nil
}

func (s *Store) nextIDLocked() string {
	for i := 0; i < maxIDAttempts; i++ {
		id := IDPrefix + strings.ToLower(s.newToken())
		if _, taken := s.index[id]; !taken {
			return id
		}
	}

	// The short token space is exhausted or the generator is stuck.
	id := IDPrefix + uuid.NewString()
	s.log.Warn().Str("job_id", id).Msg("short id space collided, using full uuid")
	return id
}

func randomToken() string {
	return uuid.NewString()[:idTokenLength]
}
