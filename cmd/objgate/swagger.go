package main

import (
	"strings"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/gofiber/swagger"

	"objgate/docs"
)

// swaggerHandler serves the Swagger UI with the host and scheme of the
// calling request. docs.SwaggerInfo is shared, so rendering is serialized.
func swaggerHandler(basePath string) fiber.Handler {
	docs.SwaggerInfo.BasePath = basePath

	var mu sync.Mutex
	ui := swagger.New()
	return func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
		}

		mu.Lock()
		defer mu.Unlock()
		docs.SwaggerInfo.Host = utils.CopyString(c.Get(fiber.HeaderHost))
		docs.SwaggerInfo.Schemes = []string{utils.CopyString(scheme)}
		return ui(c)
	}
}
