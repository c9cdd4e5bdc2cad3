package routes

import (
	"github.com/gofiber/fiber/v3"

	"github.com/treevol/treevol/internal/version"
)

// RegisterStatusRoutes 暴露 /-/status 诊断接口：worker 阶段、参照表状态与台账条目数。
func RegisterStatusRoutes(app *fiber.App, deps Deps) {
	app.Get("/-/status", func(c fiber.Ctx) error {
		payload := fiber.Map{
			"version": version.Version,
			"commit":  version.Commit,
		}
		if deps.Worker != nil {
			payload["worker"] = deps.Worker.Snapshot()
		}
		if deps.Lookup != nil {
			payload["lookup"] = deps.Lookup.Status()
		}
		if deps.Ledger != nil {
			payload["entries"] = len(deps.Ledger.List())
		}
		return c.JSON(payload)
	})
}
