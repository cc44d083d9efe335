package httpapi

import "github.com/gofiber/fiber/v2"

// CheckHandler serves liveness checks, grounded on app/api/check_handler.go.
type CheckHandler struct{}

// NewCheckHandler constructs a CheckHandler.
func NewCheckHandler() *CheckHandler { return &CheckHandler{} }

// HandleHealthy reports the server is up.
func (h CheckHandler) HandleHealthy(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"result": "ok"})
}
