package logger

import (
	"fmt"
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"

	helper "educenter_backend/internals/helpers"
	"educenter_backend/internals/helpers/dbtime"
)

// Health and metrics endpoints are scraped every few seconds and stay out of the log.
var quietPaths = map[string]bool{
	"/health":  true,
	"/metrics": true,
}

const accessFormat = "[${centertime}] ${reqid} ${ip} ${method} ${path} -> ${status} ${latency} actor=${actor}\n"

// LoggerMiddleware writes one access line per request, stamped in center
// time and tagged with the request id and the caller. A nil out keeps
// fiber's default of stdout.
func LoggerMiddleware(out io.Writer) fiber.Handler {
	cfg := logger.Config{
		Next:   func(c *fiber.Ctx) bool { return quietPaths[c.Path()] },
		Format: accessFormat,
		CustomTags: map[string]logger.LogFunc{
			"centertime": func(buf logger.Buffer, _ *fiber.Ctx, _ *logger.Data, _ string) (int, error) {
				return buf.WriteString(dbtime.NowInCenter().Format("2006-01-02 15:04:05"))
			},
			"reqid": func(buf logger.Buffer, c *fiber.Ctx, _ *logger.Data, _ string) (int, error) {
				id, _ := c.Locals(helper.LocRequestID).(string)
				if id == "" {
					id = "-"
				}
				return buf.WriteString(id)
			},
			"actor": func(buf logger.Buffer, c *fiber.Ctx, _ *logger.Data, _ string) (int, error) {
				return buf.WriteString(actorTag(c))
			},
		},
	}
	if out != nil {
		cfg.Output = out
	}
	return logger.New(cfg)
}

// actorTag is "id:role" once the JWT middleware has run, "-" otherwise.
func actorTag(c *fiber.Ctx) string {
	id, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return "-"
	}
	role, _ := c.Locals(helper.LocUserRole).(string)
	return fmt.Sprintf("%d:%s", id, role)
}
