// Package registry owns the canonical patient set: it refreshes it from
// the sheet feed, folds in profile edits, and answers every role-scoped
// read. It is the only writer to the patient snapshot slot.
package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/docmanage/opd-api/internal/model"
	"github.com/docmanage/opd-api/internal/repository"
	"github.com/docmanage/opd-api/internal/sheet"
	"github.com/docmanage/opd-api/pkg/logger"
)

var ErrPatientNotFound = errors.New("patient not found")

// Fetcher is the sheet feed boundary.
type Fetcher interface {
	Fetch(ctx context.Context) (string, error)
}

type Service struct {
	fetcher Fetcher
	repo    repository.SnapshotRepository
	logger  *logger.Logger

	// mu guards patients. The merge pipeline replaces the slice
	// wholesale; deliberately no generation guard, so of two
	// overlapping refreshes the last to complete wins.
	mu       sync.RWMutex
	patients []model.Patient
}

func NewService(fetcher Fetcher, repo repository.SnapshotRepository, l *logger.Logger) *Service {
	return &Service{
		fetcher: fetcher,
		repo:    repo,
		logger:  l,
	}
}

// Hydrate loads the last persisted patient set so the dashboard serves
// last-known-good data before the first fetch completes.
func (s *Service) Hydrate(ctx context.Context) error {
	patients, err := s.repo.LoadPatients(ctx)
	if err != nil {
		return fmt.Errorf("failed to load patient snapshot: %w", err)
	}

	s.mu.Lock()
	s.patients = patients
	s.mu.Unlock()

	s.logger.Info("hydrated patient set from snapshot", "count", len(patients))
	return nil
}

// Refresh runs the full pipeline: fetch, parse, aggregate, merge with the
// current set, replace it and persist the merged snapshot. On fetch
// failure the current set is left untouched.
func (s *Service) Refresh(ctx context.Context) (int, error) {
	refreshTotal.Inc()

	csvText, err := s.fetcher.Fetch(ctx)
	if err != nil {
		refreshFailures.Inc()
		return 0, fmt.Errorf("failed to fetch sheet data: %w", err)
	}

	candidates := sheet.BuildPatients(sheet.ParseRows(csvText))

	s.mu.Lock()
	merged := Merge(candidates, s.patients)
	s.patients = merged
	s.mu.Unlock()

	patientCount.Set(float64(len(merged)))

	if err := s.repo.SavePatients(ctx, merged); err != nil {
		s.logger.Error(err, "failed to persist merged patient set")
		return len(merged), fmt.Errorf("failed to persist patient snapshot: %w", err)
	}

	s.logger.Info("refreshed patient set from sheet", "count", len(merged))
	return len(merged), nil
}

// Merge combines a freshly aggregated candidate set with the previously
// held set. Membership follows the candidates: patients absent from the
// new fetch are dropped. For a candidate whose identity already exists,
// the locally edited clinical fields survive while identity, demographics
// and the recomputed history come from the candidate.
func Merge(candidates, existing []model.Patient) []model.Patient {
	byID := make(map[string]model.Patient, len(existing))
	for _, p := range existing {
		byID[p.WhatsAppNumber] = p
	}

	merged := make([]model.Patient, 0, len(candidates))
	for _, candidate := range candidates {
		if prev, ok := byID[candidate.WhatsAppNumber]; ok {
			candidate.VisitStatus = prev.VisitStatus
			candidate.PaymentStatus = prev.PaymentStatus
			candidate.DoctorNotes = prev.DoctorNotes
			candidate.VisitDate = prev.VisitDate
			candidate.NextVisitDate = prev.NextVisitDate
			candidate.InternalMessage = prev.InternalMessage
		}
		merged = append(merged, candidate)
	}
	return merged
}

// Patients returns the subset of the canonical set visible to the actor.
func (s *Service) Patients(actor *model.AuthUser) []model.Patient {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Visible(s.patients, actor)
}

// Patient returns one visible patient by identity.
func (s *Service) Patient(actor *model.AuthUser, id string) (*model.Patient, error) {
	for _, p := range s.Patients(actor) {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, ErrPatientNotFound
}

// Search filters the visible set by a case-insensitive substring of the
// name or a substring of the WhatsApp number.
func (s *Service) Search(actor *model.AuthUser, query string) []model.Patient {
	visible := s.Patients(actor)
	if query == "" {
		return visible
	}
	return filterByQuery(visible, query)
}

// Stats computes the dashboard reductions over the actor's visible set.
func (s *Service) Stats(actor *model.AuthUser) model.DashboardStats {
	return ComputeStats(s.Patients(actor))
}

// UpdatePatient folds a profile edit into the canonical set: the one
// matching identity is replaced in place and the full set persisted. The
// edit does not go through re-aggregation.
func (s *Service) UpdatePatient(ctx context.Context, actor *model.AuthUser, id string, req *model.PatientUpdateRequest) (*model.Patient, error) {
	if _, err := s.Patient(actor, id); err != nil {
		return nil, err
	}

	s.mu.Lock()
	var updated *model.Patient
	for i := range s.patients {
		if s.patients[i].ID != id {
			continue
		}
		s.patients[i].VisitStatus = req.VisitStatus
		s.patients[i].PaymentStatus = req.PaymentStatus
		s.patients[i].VisitDate = req.VisitDate
		s.patients[i].NextVisitDate = req.NextVisitDate
		s.patients[i].DoctorNotes = req.DoctorNotes
		s.patients[i].InternalMessage = req.InternalMessage
		p := s.patients[i]
		updated = &p
		break
	}
	snapshot := make([]model.Patient, len(s.patients))
	copy(snapshot, s.patients)
	s.mu.Unlock()

	if updated == nil {
		return nil, ErrPatientNotFound
	}

	if err := s.repo.SavePatients(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("failed to persist patient snapshot: %w", err)
	}

	s.logger.Info("patient record updated", "patient_id", id, "editor", actor.ID)
	return updated, nil
}

func filterByQuery(patients []model.Patient, query string) []model.Patient {
	q := strings.ToLower(query)
	matched := make([]model.Patient, 0, len(patients))
	for _, p := range patients {
		if strings.Contains(strings.ToLower(p.Name), q) || strings.Contains(p.WhatsAppNumber, query) {
			matched = append(matched, p)
		}
	}
	return matched
}
