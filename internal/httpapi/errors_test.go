package httpapi

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uni-regulations/rag-core/internal/ragerr"
)

func TestErrorHandler_ClassifiesSentinels(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"invalid argument", ragerr.ErrInvalidArgument, fiber.StatusBadRequest},
		{"embedder unavailable", ragerr.ErrEmbedderUnavailable, fiber.StatusServiceUnavailable},
		{"generator unavailable", ragerr.ErrGeneratorUnavailable, fiber.StatusServiceUnavailable},
		{"index corrupt", ragerr.ErrIndexCorrupt, fiber.StatusInternalServerError},
		{"unknown", errors.New("boom"), fiber.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
			app.Get("/boom", func(c *fiber.Ctx) error { return tc.err })

			req := httptest.NewRequest(fiber.MethodGet, "/boom", nil)
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.code, resp.StatusCode)
		})
	}
}

func TestErrorHandler_TypedErrorUsesItsOwnCode(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Get("/missing", func(c *fiber.Ctx) error { return ErrNotFound("document", "d1") })

	req := httptest.NewRequest(fiber.MethodGet, "/missing", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
