// Package handlers adapts Fiber to the dispatcher. Fiber is transport
// only: every request is handed to the dispatcher as-is, and the
// dispatcher's own route matching decides what runs.
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"forumapi/internal/dispatch"
	"forumapi/internal/middleware"
)

type Gateway struct {
	dispatcher *dispatch.Dispatcher
}

func NewGateway(d *dispatch.Dispatcher) *Gateway {
	return &Gateway{dispatcher: d}
}

// Handle translates the Fiber request into a dispatch request and
// writes the resulting envelope back.
func (g *Gateway) Handle(c *fiber.Ctx) error {
	req := dispatch.Request{
		Method: c.Method(),
		Path:   c.Path(),
		Body:   append([]byte(nil), c.Body()...),
		Query:  c.Queries(),
	}
	if v := c.Locals(middleware.IdentityKey); v != nil {
		if identity, isIdentity := v.(dispatch.Identity); isIdentity {
			req.Identity = &identity
		}
	}

	resp := g.dispatcher.Handle(c.Context(), req)
	for k, v := range resp.Headers {
		c.Set(k, v)
	}
	if resp.Body == nil {
		return c.SendStatus(resp.Status)
	}
	return c.Status(resp.Status).JSON(resp.Body)
}

func Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}
