package patient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docmanage/opd-api/internal/handler"
	"github.com/docmanage/opd-api/internal/model"
	"github.com/docmanage/opd-api/internal/service/registry"
	"github.com/docmanage/opd-api/pkg/logger"
)

type stubFetcher struct {
	csv string
	err error
}

func (f *stubFetcher) Fetch(context.Context) (string, error) {
	return f.csv, f.err
}

type memRepo struct {
	patients []model.Patient
}

func (r *memRepo) LoadPatients(context.Context) ([]model.Patient, error) { return r.patients, nil }

func (r *memRepo) SavePatients(_ context.Context, p []model.Patient) error {
	r.patients = p
	return nil
}

func (r *memRepo) LoadCurrentUser(context.Context) (*model.AuthUser, error)  { return nil, nil }
func (r *memRepo) SaveCurrentUser(context.Context, *model.AuthUser) error    { return nil }
func (r *memRepo) ClearCurrentUser(context.Context) error                    { return nil }
func (r *memRepo) LoadCredentials(context.Context) ([]model.Credential, error) { return nil, nil }
func (r *memRepo) SaveCredentials(context.Context, []model.Credential) error { return nil }

func newTestRouter(t *testing.T, fetcher *stubFetcher, patients []model.Patient, actor *model.AuthUser) (*gin.Engine, *memRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := &memRepo{patients: patients}
	l := logger.NewLogger(&logger.Config{
		Level:      logger.ErrorLevel,
		TimeFormat: time.RFC3339,
		Output:     io.Discard,
	})
	svc := registry.NewService(fetcher, repo, l)
	require.NoError(t, svc.Hydrate(context.Background()))

	engine := gin.New()
	api := engine.Group("/api/v1")
	api.Use(func(c *gin.Context) {
		if actor != nil {
			c.Set("actor", actor)
		}
		c.Next()
	})
	NewHandler(svc).RegisterRoutes(api)
	return engine, repo
}

func doRequest(engine *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) handler.Response {
	t.Helper()
	var resp handler.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

var (
	adminActor  = &model.AuthUser{ID: "ss78648742", Name: "Administrator", Role: model.RoleAdmin}
	doctorActor = &model.AuthUser{ID: "smith42", Name: "Dr. Smith", Role: model.RoleDoctor}

	testPatients = []model.Patient{
		{ID: "919", WhatsAppNumber: "919", Name: "Rahul Sharma", DoctorName: "Dr. Smith", InternalMessage: "carry reports"},
		{ID: "918", WhatsAppNumber: "918", Name: "Priya Verma", DoctorName: "Dr. Anevesh"},
	}
)

func TestListAsAdmin(t *testing.T) {
	engine, _ := newTestRouter(t, &stubFetcher{}, testPatients, adminActor)

	w := doRequest(engine, http.MethodGet, "/api/v1/patients", "")
	assert.Equal(t, http.StatusOK, w.Code)

	resp := decode(t, w)
	assert.Len(t, resp.Data, 2)
}

func TestListAsDoctorIsScoped(t *testing.T) {
	engine, _ := newTestRouter(t, &stubFetcher{}, testPatients, doctorActor)

	w := doRequest(engine, http.MethodGet, "/api/v1/patients", "")
	resp := decode(t, w)
	require.Len(t, resp.Data, 1)
}

func TestListSearch(t *testing.T) {
	engine, _ := newTestRouter(t, &stubFetcher{}, testPatients, adminActor)

	w := doRequest(engine, http.MethodGet, "/api/v1/patients?q=priya", "")
	resp := decode(t, w)
	assert.Len(t, resp.Data, 1)
}

func TestGetInvisiblePatientIsNotFound(t *testing.T) {
	engine, _ := newTestRouter(t, &stubFetcher{}, testPatients, doctorActor)

	// Assigned to the other doctor: indistinguishable from missing.
	w := doRequest(engine, http.MethodGet, "/api/v1/patients/918", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdatePatient(t *testing.T) {
	engine, repo := newTestRouter(t, &stubFetcher{}, testPatients, doctorActor)

	body := `{"visit_status":"Visited","payment_status":"Paid","doctor_notes":"improving"}`
	w := doRequest(engine, http.MethodPut, "/api/v1/patients/919", body)
	assert.Equal(t, http.StatusOK, w.Code)

	// Edit persisted as a full snapshot.
	require.Len(t, repo.patients, 2)
	for _, p := range repo.patients {
		if p.ID == "919" {
			assert.Equal(t, model.VisitStatusVisited, p.VisitStatus)
			assert.Equal(t, "improving", p.DoctorNotes)
		}
	}
}

func TestUpdateRejectsUnknownStatus(t *testing.T) {
	engine, _ := newTestRouter(t, &stubFetcher{}, testPatients, adminActor)

	body := `{"visit_status":"Maybe","payment_status":"Paid"}`
	w := doRequest(engine, http.MethodPut, "/api/v1/patients/919", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStats(t *testing.T) {
	engine, _ := newTestRouter(t, &stubFetcher{}, testPatients, adminActor)

	w := doRequest(engine, http.MethodGet, "/api/v1/patients/stats", "")
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data model.DashboardStats `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Data.TotalUniquePatients)
}

func TestRefreshFetchFailure(t *testing.T) {
	engine, repo := newTestRouter(t, &stubFetcher{err: errors.New("down")}, testPatients, adminActor)

	w := doRequest(engine, http.MethodPost, "/api/v1/patients/refresh", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Len(t, repo.patients, 2, "snapshot untouched on fetch failure")
}

func TestRefreshMergesSheet(t *testing.T) {
	csv := "whatsapp number,timestamp,name\n919,2024-02-01T00:00:00Z,Rahul Sharma\n"
	engine, repo := newTestRouter(t, &stubFetcher{csv: csv}, testPatients, adminActor)

	w := doRequest(engine, http.MethodPost, "/api/v1/patients/refresh", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, repo.patients, 1, "membership follows the candidate set")
}

func TestHistory(t *testing.T) {
	patients := []model.Patient{{
		ID:             "919",
		WhatsAppNumber: "919",
		DoctorName:     "Dr. Smith",
		History: []model.Visit{
			{Timestamp: "2024-01-01T00:00:00Z", VisitStatus: model.VisitStatusVisited},
		},
	}}
	engine, _ := newTestRouter(t, &stubFetcher{}, patients, doctorActor)

	w := doRequest(engine, http.MethodGet, "/api/v1/patients/919/history", "")
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []model.Visit `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
}

func TestWhatsAppLink(t *testing.T) {
	engine, _ := newTestRouter(t, &stubFetcher{}, testPatients, adminActor)

	w := doRequest(engine, http.MethodGet, "/api/v1/patients/919/whatsapp-link", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "https://wa.me/919?text=")
	assert.Contains(t, w.Body.String(), "carry+reports")
}
