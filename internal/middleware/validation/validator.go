package validation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type Config struct {
	// MaxFieldLength bounds every string field in the body, in bytes.
	MaxFieldLength int
	Logger         *zap.Logger
}

// Middleware checks write requests carry a JSON object whose string fields
// are within bounds and free of NUL bytes. Field-level rules such as
// required expected output are left to the handlers.
func Middleware(cfg Config) fiber.Handler {
	if cfg.MaxFieldLength == 0 {
		cfg.MaxFieldLength = 100_000
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodPost && c.Method() != fiber.MethodPut {
			return c.Next()
		}

		if !strings.Contains(c.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
			return reject(c, fiber.StatusUnsupportedMediaType, "Unsupported content type")
		}

		var body map[string]any
		if err := json.Unmarshal(c.Body(), &body); err != nil || body == nil {
			return reject(c, fiber.StatusBadRequest, "Invalid JSON format")
		}

		if field, msg := checkStrings(body, cfg.MaxFieldLength); msg != "" {
			cfg.Logger.Warn("Rejected request body",
				zap.String("ip", c.IP()),
				zap.String("path", c.Path()),
				zap.String("field", field),
			)
			return reject(c, fiber.StatusBadRequest, msg)
		}

		return c.Next()
	}
}

func checkStrings(body map[string]any, maxLen int) (string, string) {
	for key, v := range body {
		switch val := v.(type) {
		case string:
			if len(val) > maxLen {
				return key, fmt.Sprintf("%s exceeds maximum length", key)
			}
			if strings.ContainsRune(val, 0) {
				return key, fmt.Sprintf("%s contains invalid characters", key)
			}
		case map[string]any:
			if field, msg := checkStrings(val, maxLen); msg != "" {
				return field, msg
			}
		}
	}
	return "", ""
}

func reject(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   msg,
	})
}
