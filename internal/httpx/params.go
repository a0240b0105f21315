package httpx

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
)

// ParamID parses a positive numeric route parameter.
func ParamID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil || id == 0 {
		return 0, BadRequest(fmt.Sprintf("%s is invalid", name))
	}
	return uint(id), nil
}

// QueryUint returns 0 when the parameter is absent.
func QueryUint(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, BadRequest(fmt.Sprintf("%s is invalid", name))
	}
	return uint(v), nil
}

// QueryDate parses ?name=YYYY-MM-DD in loc. ok is false when absent.
func QueryDate(c *fiber.Ctx, name string, loc *time.Location) (t time.Time, ok bool, err error) {
	raw := c.Query(name)
	if raw == "" {
		return time.Time{}, false, nil
	}
	t, err = time.ParseInLocation("2006-01-02", raw, loc)
	if err != nil {
		return time.Time{}, false, BadRequest(fmt.Sprintf("%s must be YYYY-MM-DD", name))
	}
	return t, true, nil
}
