package analyses

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/bryanwahyu/analysis-gateway/internal/application"
	"github.com/bryanwahyu/analysis-gateway/internal/application/normalize"
	"github.com/bryanwahyu/analysis-gateway/internal/domain/analysis"
	"github.com/bryanwahyu/analysis-gateway/internal/domain/triggers"
	"github.com/bryanwahyu/analysis-gateway/internal/logger"
)

// Service runs the trigger pipeline: encode → build → relay → normalize → derive.
// It is safe for concurrent use.
type Service struct {
	Registry *analysis.Registry
	Encoder  analysis.Encoder
	Relay    analysis.Relayer
	Triggers triggers.Repository // optional
	Clock    application.Clock

	seq sequencer
}

// Upload is a raw file attached to a trigger.
type Upload struct {
	Name string
	Data []byte
}

// TriggerCommand is the inbound trigger from the operator.
type TriggerCommand struct {
	AnalysisID  analysis.ID
	Session     analysis.Session
	ExtraInputs map[string]any
	File        *Upload
	View        normalize.DeriveInput
}

type TriggerResult struct {
	TriggerID  string             `json:"trigger_id"`
	AnalysisID analysis.ID        `json:"analysis_id"`
	View       analysis.ViewModel `json:"view"`
	DurationMS int64              `json:"duration_ms"`
}

// Catalog lists the configured analyses.
func (s *Service) Catalog() []analysis.Descriptor {
	return s.Registry.List()
}

// Trigger runs one analysis. Input and encoding errors return before any
// network call. Nothing is retried.
func (s *Service) Trigger(ctx context.Context, cmd TriggerCommand) (TriggerResult, error) {
	desc, err := s.Registry.Lookup(cmd.AnalysisID)
	if err != nil {
		return TriggerResult{}, err
	}

	start := s.Clock.Now()
	rec := &triggers.Trigger{
		ID:         uuid.New().String(),
		UserID:     cmd.Session.UserID,
		Email:      cmd.Session.Email,
		AnalysisID: string(desc.ID),
		Status:     triggers.StatusQueued,
		CreatedAt:  start,
	}
	res := TriggerResult{TriggerID: rec.ID, AnalysisID: desc.ID}
	log := logger.Log.WithFields(logrus.Fields{
		"trigger_id": rec.ID,
		"analysis":   desc.ID,
		"user_id":    cmd.Session.UserID,
	})

	var file *analysis.EncodedFile
	if cmd.File != nil && desc.FileCategory != analysis.FileNone {
		rec.FileName = cmd.File.Name
		enc, err := s.Encoder.Encode(cmd.File.Name, cmd.File.Data, desc.FileCategory)
		if err != nil {
			s.finish(rec, triggers.StatusFailed, err)
			return res, err
		}
		file = &enc
	}

	req, err := Build(desc, cmd.Session, cmd.ExtraInputs, file)
	if err != nil {
		s.finish(rec, triggers.StatusFailed, err)
		return res, err
	}

	n := s.seq.next(cmd.Session.UserID)
	raw, err := s.Relay.Relay(ctx, req)
	if err != nil {
		log.WithError(err).Error("relay failed")
		s.finish(rec, triggers.StatusFailed, err)
		return res, err
	}
	if !s.seq.isLatest(cmd.Session.UserID, n) {
		log.Info("response superseded by a newer trigger, dropped")
		s.finish(rec, triggers.StatusSuperseded, analysis.ErrSuperseded)
		return res, analysis.ErrSuperseded
	}

	vm, err := normalize.Normalize(desc.ID, raw)
	if err != nil {
		var rre *analysis.RemoteReportedError
		if errors.As(err, &rre) {
			log.WithField("status", rre.Status).Warn(rre.Message)
			s.finish(rec, triggers.StatusRemoteError, err)
		} else {
			s.finish(rec, triggers.StatusFailed, err)
		}
		return res, err
	}

	res.View = normalize.Derive(vm, cmd.View)
	res.DurationMS = s.finish(rec, triggers.StatusSuccess, nil)
	return res, nil
}

// Latest returns the caller's most recent triggers.
func (s *Service) Latest(ctx context.Context, userID string, limit int) ([]*triggers.Trigger, error) {
	if s.Triggers == nil {
		return []*triggers.Trigger{}, nil
	}
	return s.Triggers.Latest(ctx, userID, limit)
}

// finish stamps the trigger record and stores it; a storage failure never fails the trigger.
func (s *Service) finish(rec *triggers.Trigger, status triggers.Status, cause error) int64 {
	rec.Status = status
	rec.DurationMS = application.ElapsedMS(s.Clock, rec.CreatedAt)
	if cause != nil {
		rec.Message = cause.Error()
	}
	if s.Triggers == nil {
		return rec.DurationMS
	}
	// pakai context.Background supaya log tetap tersimpan walau request sudah di-cancel
	if err := s.Triggers.Save(context.Background(), rec); err != nil {
		logger.Log.WithError(err).WithField("trigger_id", rec.ID).Error("saving trigger log failed")
	}
	return rec.DurationMS
}
