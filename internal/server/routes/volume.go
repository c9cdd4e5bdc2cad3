package routes

import (
	"github.com/gofiber/fiber/v3"

	"github.com/treevol/treevol/internal/lookup"
)

// RegisterVolumeRoutes 暴露参照表查询与重载接口。
func RegisterVolumeRoutes(app *fiber.App, holder *lookup.Holder) {
	if holder == nil {
		return
	}

	app.Get("/-/volume", func(c fiber.Ctx) error {
		circ, okCirc := parseNumber(c.Query("circ"))
		length, okLen := parseNumber(c.Query("len"))
		if !okCirc || !okLen {
			return writeError(c, fiber.StatusBadRequest, "invalid_measurement")
		}
		vol, ok := holder.FindExactVolume(circ, length)
		if !ok {
			return writeError(c, fiber.StatusNotFound, "volume_not_found")
		}
		return c.JSON(fiber.Map{
			"circumference": circ,
			"length":        length,
			"volume":        vol,
		})
	})

	app.Post("/-/reload", func(c fiber.Ctx) error {
		if err := holder.Reload(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(holder.Status())
		}
		return c.JSON(holder.Status())
	})
}
