package routes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"punebus-backend/internal/adapters/http/handlers"
	"punebus-backend/internal/adapters/http/middleware"
	"punebus-backend/internal/adapters/persistence/models"
	"punebus-backend/internal/adapters/persistence/repositories"
	"punebus-backend/internal/config"
	"punebus-backend/internal/core/domain"
	"punebus-backend/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type staticGuard map[string]*domain.Principal

func (g staticGuard) Authenticate(_ context.Context, token string) (*domain.Principal, error) {
	if p, ok := g[token]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("unknown token: %w", domain.ErrInvalidCredential)
}

// memSubscriptions is a map-backed SubscriptionRepository
type memSubscriptions struct {
	repositories.SubscriptionRepository
	mu   sync.Mutex
	subs map[string]*models.Subscription
}

func (m *memSubscriptions) Create(_ context.Context, sub *models.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sub.ID = uuid.NewString()
	sub.CreatedAt = time.Now()
	cp := *sub
	m.subs[sub.ID] = &cp
	return nil
}

func (m *memSubscriptions) GetByID(_ context.Context, id string) (*models.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.subs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memSubscriptions) Update(_ context.Context, sub *models.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *sub
	m.subs[sub.ID] = &cp
	return nil
}

func (m *memSubscriptions) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.subs[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.subs, id)
	return nil
}

func newTestApp() *fiber.App {
	cfg := &config.Config{AppMode: "dev"}
	repo := &memSubscriptions{subs: map[string]*models.Subscription{}}
	subscriptionService := services.NewSubscriptionService(repo, domain.DefaultPlanCatalog())

	guard := staticGuard{
		"admin":   {ID: "admin-1", Role: domain.RoleAdmin, IsActive: true},
		"manager": {ID: "manager-1", Role: domain.RoleManager, IsActive: true},
		"sales":   {ID: "sales-1", Role: domain.RoleSales, IsActive: true},
		"driver":  {ID: "driver-1", Role: domain.RoleDriver, IsActive: true},
	}

	app := fiber.New(fiber.Config{ErrorHandler: middleware.CustomErrorHandler})
	Register(app, &Handlers{
		Auth:         handlers.NewAuthHandler(nil, nil, cfg),
		User:         handlers.NewUserHandler(nil),
		Subscription: handlers.NewSubscriptionHandler(subscriptionService),
		Enquiry:      handlers.NewEnquiryHandler(nil),
		Dashboard:    handlers.NewDashboardHandler(nil),
	}, guard)
	return app
}

type envelope struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Error   string                 `json:"error"`
	Data    map[string]interface{} `json:"data"`
}

func call(t *testing.T, app *fiber.App, method, path, token, body string) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var env envelope
	require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	return resp.StatusCode, env
}

func TestCreateSubscription_AuthBeforeValidation(t *testing.T) {
	app := newTestApp()

	status, env := call(t, app, http.MethodPost, "/api/v1/subscriptions", "", `{}`)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Access token required", env.Error)

	status, env = call(t, app, http.MethodPost, "/api/v1/subscriptions", "forged", `{}`)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Invalid access token", env.Error)

	status, env = call(t, app, http.MethodPost, "/api/v1/subscriptions", "driver", `{}`)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "You don't have permission to access this resource", env.Error)
}

func TestCreateSubscription(t *testing.T) {
	app := newTestApp()

	status, env := call(t, app, http.MethodPost, "/api/v1/subscriptions", "manager",
		`{"name":"Asha","phone":"9876543210","durationMonths":"3","startDate":"2025-01-15"}`)
	require.Equal(t, http.StatusCreated, status, env.Error)
	assert.True(t, env.Success)
	assert.Equal(t, "Gold", env.Data["plan"])
	assert.Equal(t, "active", env.Data["status"])
	assert.Equal(t, "2025-04-15T00:00:00Z", env.Data["endDate"])
	assert.Equal(t, "manager-1", env.Data["createdBy"])

	status, env = call(t, app, http.MethodPost, "/api/v1/subscriptions", "sales",
		`{"name":"Asha","phone":"9876543210","durationMonths":6,"startDate":"2025-01-15","status":"active"}`)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "pending", env.Data["status"])
}

func TestCreateSubscription_ValidationMessages(t *testing.T) {
	app := newTestApp()

	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"missing fields", `{"durationMonths":3}`, "Missing required fields: name, phone, startDate"},
		{"non-numeric duration", `{"name":"A","phone":"1","durationMonths":"abc","startDate":"2025-01-15"}`, "Invalid duration for Gold. Allowed: 3, 6, 12"},
		{"fractional duration", `{"name":"A","phone":"1","durationMonths":3.9,"startDate":"2025-01-15"}`, "Invalid duration for Gold. Allowed: 3, 6, 12"},
		{"duration not in plan", `{"name":"A","phone":"1","plan":"Silver","durationMonths":12,"startDate":"2025-01-15"}`, "Invalid duration for Silver. Allowed: 1, 3, 6"},
		{"bad date", `{"name":"A","phone":"1","durationMonths":3,"startDate":"15/01/2025"}`, "Invalid date for startDate"},
		{"unknown plan", `{"name":"A","phone":"1","plan":"Bronze","durationMonths":3,"startDate":"2025-01-15"}`, "Invalid plan"},
		{"malformed json", `{"name":`, "Invalid request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := call(t, app, http.MethodPost, "/api/v1/subscriptions", "admin", tt.body)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, tt.message, env.Error)
		})
	}
}

func TestUpdateAndDeleteSubscription(t *testing.T) {
	app := newTestApp()

	_, created := call(t, app, http.MethodPost, "/api/v1/subscriptions", "admin",
		`{"name":"Asha","phone":"1","durationMonths":3,"startDate":"2025-01-01"}`)
	id, _ := created.Data["id"].(string)
	require.NotEmpty(t, id)

	status, env := call(t, app, http.MethodPut, "/api/v1/subscriptions/"+id, "manager", `{"durationMonths":12}`)
	require.Equal(t, http.StatusOK, status, env.Error)
	assert.Equal(t, "2026-01-01T00:00:00Z", env.Data["endDate"])

	status, env = call(t, app, http.MethodPut, "/api/v1/subscriptions/nonexistent-id", "manager", `{"name":"x"}`)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Subscription not found", env.Error)

	status, _ = call(t, app, http.MethodDelete, "/api/v1/subscriptions/"+id, "manager", "")
	assert.Equal(t, http.StatusForbidden, status)

	status, env = call(t, app, http.MethodDelete, "/api/v1/subscriptions/nonexistent-id", "admin", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Subscription not found", env.Error)

	status, _ = call(t, app, http.MethodDelete, "/api/v1/subscriptions/"+id, "admin", "")
	assert.Equal(t, http.StatusOK, status)

	status, _ = call(t, app, http.MethodGet, "/api/v1/subscriptions/"+id, "admin", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestPlansArePublic(t *testing.T) {
	app := newTestApp()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/plans", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "public, max-age=3600", resp.Header.Get("Cache-Control"))

	var payload struct {
		Data []handlers.PlanOption `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.Len(t, payload.Data, 3)
	for _, p := range payload.Data {
		if p.Plan == "Gold" {
			assert.True(t, p.Default)
			assert.Equal(t, []int{3, 6, 12}, p.Durations)
		}
	}
}
