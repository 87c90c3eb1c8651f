package middleware

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/logger"
)

// ============================================================
// Logger Middleware
// ============================================================

// Logger пишет строку на запрос; для выгрузок виден тип и размер ответа.
func Logger() fiber.Handler {
	return logger.New(logger.Config{
		Format:     "[HTTP] ${time} ${status} - ${latency} ${method} ${path} | ${respHeader:Content-Type} ${bytesSent}b\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	})
}
