package tarsnap

import (
	"context"

	"github.com/sirupsen/logrus"
)

// toolClient is the slice of Client the store needs.
type toolClient interface {
	ListArchives(ctx context.Context) ([]string, error)
	CreateArchive(ctx context.Context, name string, sources []string, excludes []string) error
	DeleteArchive(ctx context.Context, name string) error
}

// Store is the archive list cache plus the mutations that keep it coherent.
// The cache fills lazily on first read and stays until Refresh. Listing
// archives is by far the most expensive tool call, so one run lists once
// and tracks its own changes from there.
//
// In dry run mode mutations never reach the tool but still update the
// cache: a later expire in the same run sees the archive a simulated make
// would have created. A dry run store must not be reused for a real run.
//
// Runs are strictly sequential, the store is not safe for concurrent use.
type Store struct {
	logger logrus.FieldLogger

	client toolClient
	dryRun bool

	archives []string
	loaded   bool
}

func NewStore(logger logrus.FieldLogger, client toolClient, dryRun bool) *Store {
	return &Store{
		logger: logger,
		client: client,
		dryRun: dryRun,
	}
}

// Archives returns the cached archive list, listing once on first use.
func (s *Store) Archives(ctx context.Context) ([]string, error) {
	if err := s.ensure(ctx); err != nil {
		return nil, err
	}

	return s.archives, nil
}

// Refresh drops the cache and lists archives again.
func (s *Store) Refresh(ctx context.Context) error {
	s.loaded = false
	s.archives = nil

	return s.ensure(ctx)
}

func (s *Store) ensure(ctx context.Context) error {
	if s.loaded {
		return nil
	}

	archives, err := s.client.ListArchives(ctx)
	if err != nil {
		return err
	}

	s.logger.WithField("archives", len(archives)).Debug("Fetched archive list")

	s.archives = archives
	s.loaded = true

	return nil
}

// Create archives the sources under the given name and records the new
// archive in the cache. In dry run mode only the cache changes.
func (s *Store) Create(ctx context.Context, name string, sources []string, excludes []string) error {
	if err := s.ensure(ctx); err != nil {
		return err
	}

	if s.dryRun {
		s.logger.WithField("archive", name).Info("Dry run, not creating archive")
	} else if err := s.client.CreateArchive(ctx, name, sources, excludes); err != nil {
		return err
	}

	s.recordCreated(name)

	return nil
}

// Delete removes the named archive and drops it from the cache. In dry run
// mode only the cache changes.
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := s.ensure(ctx); err != nil {
		return err
	}

	if s.dryRun {
		s.logger.WithField("archive", name).Info("Dry run, not deleting archive")
	} else if err := s.client.DeleteArchive(ctx, name); err != nil {
		return err
	}

	s.recordDeleted(name)

	return nil
}

func (s *Store) recordCreated(name string) {
	s.archives = append(s.archives, name)
}

func (s *Store) recordDeleted(name string) {
	for i, archive := range s.archives {
		if archive == name {
			s.archives = append(s.archives[:i], s.archives[i+1:]...)
			return
		}
	}
}
