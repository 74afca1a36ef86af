package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindLabel(t *testing.T) {
	assert.Equal(t, "unknown", KindLabel(""))
	assert.Equal(t, "relative", KindLabel("relative"))
}

func TestMetricsEndpointExposesCollectors(t *testing.T) {
	Init()
	Init()

	SubmissionsTotal.WithLabelValues("absolute", StatusSuccess).Inc()
	assert.GreaterOrEqual(t, testutil.ToFloat64(SubmissionsTotal.WithLabelValues("absolute", StatusSuccess)), 1.0)

	app := fiber.New()
	app.Get("/metrics", MetricsHandler())

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "feedback_submissions_total")
}
