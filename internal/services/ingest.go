package services

import (
	"github.com/rs/zerolog"
)

// RealtimeGate reports whether webhook deliveries should be written.
type RealtimeGate interface {
	Enabled() bool
}

// IngestService handles webhook deliveries: one submission in, one row
// appended, provided the realtime gate is open.
type IngestService struct {
	store      RowStore
	gate       RealtimeGate
	normalizer *Normalizer
	log        zerolog.Logger
}

func NewIngestService(store RowStore, gate RealtimeGate, normalizer *Normalizer, log zerolog.Logger) *IngestService {
	return &IngestService{store: store, gate: gate, normalizer: normalizer, log: log}
}

// Ingest normalizes and appends one delivery. Returns ErrRealtimeDisabled
// without writing when the gate is closed; a MissingFieldError from
// normalization rejects the submission.
func (s *IngestService) Ingest(eventID string, raw *RawSubmission) error {
	if !s.gate.Enabled() {
		s.log.Debug().Str("event_id", eventID).Msg("webhook ignored, realtime disabled")
		return ErrRealtimeDisabled
	}
	res, err := s.normalizer.Normalize(raw)
	if err != nil {
		return err
	}
	if err := s.store.Append(res.Row); err != nil {
		return err
	}
	s.log.Info().Str("event_id", eventID).Time("submitted_at", raw.SubmittedAt).Msg("webhook row appended")
	return nil
}
