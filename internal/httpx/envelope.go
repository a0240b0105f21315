package httpx

import "github.com/gofiber/fiber/v2"

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type Envelope struct {
	OK    bool       `json:"ok"`
	Data  any        `json:"data,omitempty"`
	Error *ErrorBody `json:"error,omitempty"`
}

// OK writes {ok:true,data}.
func OK(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(Envelope{OK: true, Data: data})
}

func Fail(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(Envelope{OK: false, Error: &ErrorBody{Code: code, Message: message}})
}
