package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"churnmail/internal/config"
	"churnmail/pkg/contracts/domain"
)

// ArtifactStore holds generated mailing files for download. The files of
// one run share a single uuid and live on disk under the store directory;
// the index is in memory only, so artifacts do not survive a restart.
// Expired entries are evicted lazily on access, files included.
type ArtifactStore struct {
	dir    string
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time

	mu      sync.Mutex
	entries map[string]*artifactSet
}

// artifactSet is the file group of one mailing run.
type artifactSet struct {
	createdAt time.Time
	files     map[domain.ArtifactFormat]artifactFile
}

type artifactFile struct {
	artifact domain.Artifact
	path     string
}

// ArtifactStoreOption configures an ArtifactStore.
type ArtifactStoreOption func(*ArtifactStore)

// WithArtifactClock replaces the wall clock used for TTL decisions.
func WithArtifactClock(now func() time.Time) ArtifactStoreOption {
	return func(s *ArtifactStore) {
		s.now = now
	}
}

// NewArtifactStore creates a store rooted at dir. An empty dir or a
// non-positive ttl falls back to the application defaults.
func NewArtifactStore(dir string, ttl time.Duration, logger *slog.Logger, opts ...ArtifactStoreOption) (*ArtifactStore, error) {
	if dir == "" {
		dir = config.DefaultArtifactsDir
	}
	if ttl <= 0 {
		ttl = config.DefaultArtifactTTL
	}
	if logger == nil {
		logger = slog.Default()
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create artifacts directory %s: %w", dir, err)
	}

	logger.Info("ArtifactStore initialized",
		slog.String("dir", dir),
		slog.Duration("ttl", ttl))

	return &ArtifactStore{
		dir:     dir,
		ttl:     ttl,
		logger:  logger,
		now:     time.Now,
		entries: make(map[string]*artifactSet),
	}, nil
}

// NewID returns a fresh run id for a file group.
func (s *ArtifactStore) NewID() string {
	return uuid.New().String()
}

// Write streams one artifact file into the store under the given run id.
// Sibling formats of the same run share the id; concurrent writers of
// different formats are safe. filename is the download name presented to
// the client, not the on-disk name.
func (s *ArtifactStore) Write(ctx context.Context, id, filename string, format domain.ArtifactFormat, write func(io.Writer) error) (domain.Artifact, error) {
	path := filepath.Join(s.dir, id+"."+string(format))

	f, err := os.Create(path)
	if err != nil {
		return domain.Artifact{}, fmt.Errorf("failed to create artifact file: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		os.Remove(path)
		return domain.Artifact{}, fmt.Errorf("failed to write %s artifact: %w", format, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return domain.Artifact{}, fmt.Errorf("failed to flush artifact file: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return domain.Artifact{}, fmt.Errorf("failed to stat artifact file: %w", err)
	}

	artifact := domain.Artifact{
		ID:        id,
		Filename:  filename,
		Format:    format,
		Size:      info.Size(),
		CreatedAt: s.now(),
	}

	s.mu.Lock()
	s.evictExpired()
	set, ok := s.entries[id]
	if !ok {
		set = &artifactSet{
			createdAt: artifact.CreatedAt,
			files:     make(map[domain.ArtifactFormat]artifactFile),
		}
		s.entries[id] = set
	}
	set.files[format] = artifactFile{artifact: artifact, path: path}
	s.mu.Unlock()

	s.logger.DebugContext(ctx, "artifact stored",
		slog.String("artifact_id", id),
		slog.String("format", string(format)),
		slog.String("filename", filename),
		slog.Int64("size", artifact.Size))

	return artifact, nil
}

// Open returns the stored file of the run id in the given format. The
// caller owns the returned ReadCloser. Unknown and expired ids both come
// back as ErrArtifactNotFound.
func (s *ArtifactStore) Open(id string, format domain.ArtifactFormat) (io.ReadCloser, domain.Artifact, error) {
	s.mu.Lock()
	s.evictExpired()
	set, ok := s.entries[id]
	var file artifactFile
	if ok {
		file, ok = set.files[format]
	}
	s.mu.Unlock()

	if !ok {
		return nil, domain.Artifact{}, ErrArtifactNotFound
	}

	f, err := os.Open(file.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.mu.Lock()
			delete(s.entries, id)
			s.mu.Unlock()
			return nil, domain.Artifact{}, ErrArtifactNotFound
		}
		return nil, domain.Artifact{}, fmt.Errorf("failed to open artifact file: %w", err)
	}

	return f, file.artifact, nil
}

// Len returns the number of live runs in the store.
func (s *ArtifactStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictExpired()
	return len(s.entries)
}

// evictExpired drops every run past its TTL and removes its files. The
// caller must hold mu.
func (s *ArtifactStore) evictExpired() {
	cutoff := s.now().Add(-s.ttl)
	for id, set := range s.entries {
		if !set.createdAt.Before(cutoff) {
			continue
		}
		for _, file := range set.files {
			if err := os.Remove(file.path); err != nil && !os.IsNotExist(err) {
				s.logger.Warn("failed to remove expired artifact file",
					slog.String("artifact_id", id),
					slog.String("path", file.path),
					slog.String("error", err.Error()))
			}
		}
		delete(s.entries, id)
		s.logger.Debug("artifact expired", slog.String("artifact_id", id))
	}
}
