package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pilger-eventos/rsvp-api/internal/model"
	"github.com/pilger-eventos/rsvp-api/internal/repository/memory"
	"github.com/pilger-eventos/rsvp-api/internal/service/appconfig"
	"github.com/pilger-eventos/rsvp-api/internal/service/automation"
	guestService "github.com/pilger-eventos/rsvp-api/internal/service/guest"
	"github.com/pilger-eventos/rsvp-api/pkg/logger"
)

type guestFixture struct {
	router *gin.Engine
	guests *memory.GuestRepository
	queue  *memory.QueueRepository
	sender *noopSender
}

func newGuestFixture(t *testing.T) *guestFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	guests := memory.NewGuestRepository()
	rules := memory.NewRuleRepository()
	queue := memory.NewQueueRepository()
	configRepo := memory.NewAppConfigRepository()
	sender := &noopSender{}
	log := logger.New(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})

	ctx := context.Background()
	for key, value := range map[string]string{
		model.ConfigKeyAPIURL:   "https://wa.example.com",
		model.ConfigKeyAPIKey:   "secret",
		model.ConfigKeyInstance: "main",
	} {
		require.NoError(t, configRepo.Upsert(ctx, &model.ConfigEntry{Key: key, Value: value}))
	}

	configSvc := appconfig.NewService(configRepo)
	automationSvc := automation.NewService(guests, rules, queue, nil, log)
	svc := guestService.NewService(guests, queue, configSvc, sender, automationSvc, "cenario_economico", log)

	h := NewGuestHandler(svc, log)
	r := gin.New()
	r.POST("/rsvp", h.Register)
	r.GET("/admin/guests", h.List)
	r.GET("/admin/guests/:id", h.Get)
	r.DELETE("/admin/guests/:id", h.Delete)
	r.POST("/admin/guests/:id/checkin", h.CheckIn)

	return &guestFixture{router: r, guests: guests, queue: queue, sender: sender}
}

func (f *guestFixture) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestRSVPRegister(t *testing.T) {
	f := newGuestFixture(t)

	w := f.do(t, http.MethodPost, "/rsvp", gin.H{
		"name":  "Maria",
		"phone": "(51) 99876-5432",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)

	guests, err := f.guests.List(context.Background())
	require.NoError(t, err)
	require.Len(t, guests, 1)
	assert.Equal(t, "Maria", guests[0].Name)
	assert.Equal(t, 1, f.sender.calls)
}

func TestRSVPRegisterMissingName(t *testing.T) {
	f := newGuestFixture(t)

	w := f.do(t, http.MethodPost, "/rsvp", gin.H{"phone": "51999990000"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRSVPRegisterShortPhoneRejected(t *testing.T) {
	f := newGuestFixture(t)

	w := f.do(t, http.MethodPost, "/rsvp", gin.H{"name": "Maria", "phone": "123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRSVPRegisterDuplicateConflict(t *testing.T) {
	f := newGuestFixture(t)

	body := gin.H{"name": "Maria", "phone": "51999990000"}
	w := f.do(t, http.MethodPost, "/rsvp", body)
	require.Equal(t, http.StatusCreated, w.Code)

	w = f.do(t, http.MethodPost, "/rsvp", body)
	assert.Equal(t, http.StatusConflict, w.Code)

	guests, err := f.guests.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, guests, 1)
}

func TestGuestGetAndDelete(t *testing.T) {
	f := newGuestFixture(t)
	ctx := context.Background()

	g := &model.Guest{ID: uuid.New(), Name: "Maria", Phone: "51999990000", Status: model.GuestStatusConfirmed}
	require.NoError(t, f.guests.Create(ctx, g))

	w := f.do(t, http.MethodGet, "/admin/guests/"+g.ID.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodDelete, "/admin/guests/"+g.ID.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodGet, "/admin/guests/"+g.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGuestCheckInToggle(t *testing.T) {
	f := newGuestFixture(t)
	ctx := context.Background()

	g := &model.Guest{ID: uuid.New(), Name: "Maria", Phone: "51999990000", Status: model.GuestStatusConfirmed}
	require.NoError(t, f.guests.Create(ctx, g))

	w := f.do(t, http.MethodPost, "/admin/guests/"+g.ID.String()+"/checkin", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, string(model.GuestStatusCheckedIn), data["status"])
}

func TestGuestInvalidID(t *testing.T) {
	f := newGuestFixture(t)

	w := f.do(t, http.MethodGet, "/admin/guests/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
