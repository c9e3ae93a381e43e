package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_StatusLabel(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: CustomErrorHandler})
	app.Use(Metrics())
	app.Get("/metrics-test/ok", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/metrics-test/created", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusCreated) })
	app.Get("/metrics-test/missing", func(c *fiber.Ctx) error { return fiber.ErrNotFound })
	app.Get("/metrics-test/broken", func(c *fiber.Ctx) error { return errors.New("db down") })
	app.Get("/metrics-test/:id", func(c *fiber.Ctx) error { return c.SendString(c.Params("id")) })

	tests := []struct {
		path   string
		route  string
		status string
	}{
		{"/metrics-test/ok", "/metrics-test/ok", "200"},
		{"/metrics-test/created", "/metrics-test/created", "201"},
		{"/metrics-test/missing", "/metrics-test/missing", "404"},
		{"/metrics-test/broken", "/metrics-test/broken", "500"},
		{"/metrics-test/42", "/metrics-test/:id", "200"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			counter := httpRequestsTotal.WithLabelValues(http.MethodGet, tt.route, tt.status)
			before := testutil.ToFloat64(counter)

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, tt.path, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.status, strconv.Itoa(resp.StatusCode))

			assert.Equal(t, before+1, testutil.ToFloat64(counter))
		})
	}
}
