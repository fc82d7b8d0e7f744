package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// FetchClient pages through the remote responses API for a time window.
// Either bound may be nil, meaning unbounded on that side. Transport errors
// propagate unmodified; retry policy belongs to the implementation.
type FetchClient interface {
	FetchResponses(ctx context.Context, since, until *time.Time) ([]*RawSubmission, error)
}

// SyncResult reports what a window fetch did.
type SyncResult struct {
	Fetched  int `json:"fetched"`
	Stored   int `json:"stored"`
	Rejected int `json:"rejected"`
}

// SyncService pulls a window of remote submissions, normalizes them and
// replaces the store contents with the batch. The webhook append path stays
// separate; sync is a whole-window overwrite.
type SyncService struct {
	client     FetchClient
	store      RowStore
	normalizer *Normalizer
	log        zerolog.Logger
}

func NewSyncService(client FetchClient, store RowStore, normalizer *Normalizer, log zerolog.Logger) *SyncService {
	return &SyncService{client: client, store: store, normalizer: normalizer, log: log}
}

// Sync fetches the window and persists the normalized batch. Submissions
// missing a mandatory domain score are rejected and counted; the rest of the
// batch still lands.
func (s *SyncService) Sync(ctx context.Context, since, until *time.Time) (*SyncResult, error) {
	items, err := s.client.FetchResponses(ctx, since, until)
	if err != nil {
		return nil, err
	}
	result := &SyncResult{Fetched: len(items)}
	rows := make([]*NormalizedRow, 0, len(items))
	for _, item := range items {
		res, err := s.normalizer.Normalize(item)
		if err != nil {
			result.Rejected++
			s.log.Warn().Err(err).Str("token", item.Token).Msg("submission rejected during sync")
			continue
		}
		rows = append(rows, res.Row)
	}
	if err := s.store.ReplaceAll(rows); err != nil {
		return nil, err
	}
	result.Stored = len(rows)
	s.log.Info().Int("fetched", result.Fetched).Int("stored", result.Stored).
		Int("rejected", result.Rejected).Msg("sync complete")
	return result, nil
}

// SyncSession tracks the last fetched window so callers can decide whether a
// range change requires a re-fetch. Explicit state instead of ambient
// globals, so the decision is unit-testable.
type SyncSession struct {
	synced    bool
	lastStart *time.Time
	lastEnd   *time.Time
}

// NeedsSync reports whether the requested window differs from the last one
// fetched. A session that never synced always needs one.
func (s *SyncSession) NeedsSync(start, end *time.Time) bool {
	if !s.synced {
		return true
	}
	return !sameBound(s.lastStart, start) || !sameBound(s.lastEnd, end)
}

// MarkSynced records the window just fetched.
func (s *SyncSession) MarkSynced(start, end *time.Time) {
	s.synced = true
	s.lastStart = copyBound(start)
	s.lastEnd = copyBound(end)
}

func sameBound(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func copyBound(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
