package registry

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docmanage/opd-api/internal/model"
	"github.com/docmanage/opd-api/pkg/logger"
)

type fakeRepo struct {
	patients    []model.Patient
	creds       []model.Credential
	currentUser *model.AuthUser
	saveCount   int
	failSave    bool
}

func (r *fakeRepo) LoadPatients(context.Context) ([]model.Patient, error) {
	return r.patients, nil
}

func (r *fakeRepo) SavePatients(_ context.Context, patients []model.Patient) error {
	if r.failSave {
		return errors.New("save failed")
	}
	r.patients = patients
	r.saveCount++
	return nil
}

func (r *fakeRepo) LoadCurrentUser(context.Context) (*model.AuthUser, error) {
	return r.currentUser, nil
}

func (r *fakeRepo) SaveCurrentUser(_ context.Context, u *model.AuthUser) error {
	r.currentUser = u
	return nil
}

func (r *fakeRepo) ClearCurrentUser(context.Context) error {
	r.currentUser = nil
	return nil
}

func (r *fakeRepo) LoadCredentials(context.Context) ([]model.Credential, error) {
	return r.creds, nil
}

func (r *fakeRepo) SaveCredentials(_ context.Context, creds []model.Credential) error {
	r.creds = creds
	return nil
}

type stubFetcher struct {
	csv string
	err error
}

func (f *stubFetcher) Fetch(context.Context) (string, error) {
	return f.csv, f.err
}

func testLogger() *logger.Logger {
	return logger.NewLogger(&logger.Config{
		Level:      logger.ErrorLevel,
		TimeFormat: time.RFC3339,
		Output:     io.Discard,
	})
}

var admin = &model.AuthUser{ID: "admin", Name: "Administrator", Role: model.RoleAdmin}

func TestMergePreservesLocalEdits(t *testing.T) {
	existing := []model.Patient{{
		ID:              "919",
		WhatsAppNumber:  "919",
		Name:            "Amit",
		PaymentStatus:   model.PaymentStatusPaid,
		VisitStatus:     model.VisitStatusVisited,
		DoctorNotes:     "locally edited",
		VisitDate:       "2024-05-10",
		NextVisitDate:   "2024-05-17",
		InternalMessage: "see you next week",
	}}
	candidates := []model.Patient{{
		ID:             "919",
		WhatsAppNumber: "919",
		Name:           "Amit Patel",
		Address:        "Bandra East",
		PaymentStatus:  model.PaymentStatusNotPaid,
		VisitStatus:    model.VisitStatusNotVisited,
		History:        []model.Visit{{Timestamp: "2024-01-01T00:00:00Z"}},
	}}

	merged := Merge(candidates, existing)
	require.Len(t, merged, 1)

	p := merged[0]
	// Local clinical edits survive the re-fetch.
	assert.Equal(t, model.PaymentStatusPaid, p.PaymentStatus)
	assert.Equal(t, model.VisitStatusVisited, p.VisitStatus)
	assert.Equal(t, "locally edited", p.DoctorNotes)
	assert.Equal(t, "2024-05-10", p.VisitDate)
	assert.Equal(t, "2024-05-17", p.NextVisitDate)
	assert.Equal(t, "see you next week", p.InternalMessage)
	// Sheet-sourced fields and history follow the candidate.
	assert.Equal(t, "Amit Patel", p.Name)
	assert.Equal(t, "Bandra East", p.Address)
	assert.Len(t, p.History, 1)
}

func TestMergeDropsVanishedPatients(t *testing.T) {
	existing := []model.Patient{
		{ID: "919", WhatsAppNumber: "919"},
		{ID: "918", WhatsAppNumber: "918"},
	}
	candidates := []model.Patient{{ID: "919", WhatsAppNumber: "919"}}

	merged := Merge(candidates, existing)
	require.Len(t, merged, 1)
	assert.Equal(t, "919", merged[0].ID)
}

func TestMergeNewCandidateUsedAsIs(t *testing.T) {
	candidate := model.Patient{
		ID:             "917",
		WhatsAppNumber: "917",
		VisitStatus:    model.VisitStatusNotVisited,
		PaymentStatus:  model.PaymentStatusNotPaid,
	}
	merged := Merge([]model.Patient{candidate}, nil)
	require.Len(t, merged, 1)
	assert.Equal(t, candidate, merged[0])
}

func TestRefreshPipelinePersistsMergedSet(t *testing.T) {
	csv := "whatsapp number,timestamp,name,payment status\n" +
		"919,2024-02-01T00:00:00Z,Amit,Not Paid\n"

	repo := &fakeRepo{}
	svc := NewService(&stubFetcher{csv: csv}, repo, testLogger())

	// Pre-existing local edit for the same identity.
	svc.patients = []model.Patient{{
		ID:             "919",
		WhatsAppNumber: "919",
		PaymentStatus:  model.PaymentStatusPaid,
	}}

	count, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, 1, repo.saveCount, "merged snapshot persisted after merge")

	patients := svc.Patients(admin)
	require.Len(t, patients, 1)
	assert.Equal(t, model.PaymentStatusPaid, patients[0].PaymentStatus)
	assert.Equal(t, "Amit", patients[0].Name)
}

func TestRefreshFetchFailureLeavesSetIntact(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(&stubFetcher{err: errors.New("network down")}, repo, testLogger())
	svc.patients = []model.Patient{{ID: "919", WhatsAppNumber: "919"}}

	_, err := svc.Refresh(context.Background())
	assert.Error(t, err)
	assert.Len(t, svc.Patients(admin), 1, "last-known-good set untouched")
	assert.Zero(t, repo.saveCount, "no partial snapshot written")
}

func TestHydrateLoadsSnapshot(t *testing.T) {
	repo := &fakeRepo{patients: []model.Patient{{ID: "919", WhatsAppNumber: "919"}}}
	svc := NewService(&stubFetcher{}, repo, testLogger())

	require.NoError(t, svc.Hydrate(context.Background()))
	assert.Len(t, svc.Patients(admin), 1)
}

func TestUpdatePatient(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(&stubFetcher{}, repo, testLogger())
	svc.patients = []model.Patient{
		{ID: "919", WhatsAppNumber: "919", Name: "Amit"},
		{ID: "918", WhatsAppNumber: "918", Name: "Priya"},
	}

	updated, err := svc.UpdatePatient(context.Background(), admin, "919", &model.PatientUpdateRequest{
		VisitStatus:     model.VisitStatusVisited,
		PaymentStatus:   model.PaymentStatusPaid,
		DoctorNotes:     "recovering well",
		NextVisitDate:   "2024-06-12",
		InternalMessage: "keep up the exercises",
	})
	require.NoError(t, err)

	assert.Equal(t, model.VisitStatusVisited, updated.VisitStatus)
	assert.Equal(t, "recovering well", updated.DoctorNotes)
	assert.Equal(t, "Amit", updated.Name, "demographics untouched by edit")

	assert.Equal(t, 1, repo.saveCount, "full set persisted")
	require.Len(t, repo.patients, 2)

	// The other patient is unchanged.
	p, err := svc.Patient(admin, "918")
	require.NoError(t, err)
	assert.Empty(t, p.DoctorNotes)
}

func TestUpdatePatientNotFound(t *testing.T) {
	svc := NewService(&stubFetcher{}, &fakeRepo{}, testLogger())
	_, err := svc.UpdatePatient(context.Background(), admin, "missing", &model.PatientUpdateRequest{
		VisitStatus:   model.VisitStatusVisited,
		PaymentStatus: model.PaymentStatusPaid,
	})
	assert.ErrorIs(t, err, ErrPatientNotFound)
}

func TestUpdatePatientInvisibleToDoctor(t *testing.T) {
	svc := NewService(&stubFetcher{}, &fakeRepo{}, testLogger())
	svc.patients = []model.Patient{{ID: "919", WhatsAppNumber: "919", DoctorName: "Dr. Smith"}}

	other := &model.AuthUser{ID: "Dr. Anevesh", Name: "Dr. Anevesh", Role: model.RoleDoctor}
	_, err := svc.UpdatePatient(context.Background(), other, "919", &model.PatientUpdateRequest{
		VisitStatus:   model.VisitStatusVisited,
		PaymentStatus: model.PaymentStatusPaid,
	})
	assert.ErrorIs(t, err, ErrPatientNotFound)
}

func TestSearch(t *testing.T) {
	svc := NewService(&stubFetcher{}, &fakeRepo{}, testLogger())
	svc.patients = []model.Patient{
		{ID: "919876", WhatsAppNumber: "919876", Name: "Rahul Sharma"},
		{ID: "918765", WhatsAppNumber: "918765", Name: "Priya Verma"},
	}

	assert.Len(t, svc.Search(admin, "rahul"), 1, "name match is case-insensitive")
	assert.Len(t, svc.Search(admin, "8765"), 1, "phone substring match")
	assert.Len(t, svc.Search(admin, ""), 2)
	assert.Empty(t, svc.Search(admin, "nobody"))
}
