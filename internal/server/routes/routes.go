package routes

import (
	"errors"
	"math"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"

	"github.com/treevol/treevol/internal/ledger"
	"github.com/treevol/treevol/internal/lookup"
	"github.com/treevol/treevol/internal/worker"
)

// Deps 汇总 /-/ 接口依赖的组件。Worker 可为 nil（此时 status 不含 worker 段）。
type Deps struct {
	Logger   *logrus.Logger
	Worker   *worker.Worker
	Lookup   *lookup.Holder
	Ledger   *ledger.Ledger
	Recorder *ledger.Recorder
}

// Register 挂载全部 /-/ JSON 接口。必须在 server.NewApp 之后调用。
func Register(app *fiber.App, deps Deps) {
	if app == nil {
		return
	}
	RegisterStatusRoutes(app, deps)
	RegisterVolumeRoutes(app, deps.Lookup)
	RegisterLedgerRoutes(app, deps.Ledger, deps.Recorder, deps.Logger)
}

func writeError(c fiber.Ctx, status int, code string) error {
	return c.Status(status).JSON(fiber.Map{"error": code})
}

// writeLedgerError 将台账相关错误映射为 HTTP 状态码。
func writeLedgerError(c fiber.Ctx, logger *logrus.Logger, err error) error {
	switch {
	case errors.Is(err, ledger.ErrVolumeNotFound):
		return writeError(c, fiber.StatusNotFound, "volume_not_found")
	case errors.Is(err, ledger.ErrInvalidMeasurement):
		return writeError(c, fiber.StatusBadRequest, "invalid_measurement")
	case errors.Is(err, ledger.ErrDuplicateID):
		return writeError(c, fiber.StatusConflict, "duplicate_id")
	case errors.Is(err, ledger.ErrEmptyTruck):
		return writeError(c, fiber.StatusBadRequest, "truck_name_required")
	}
	if logger != nil {
		logger.WithFields(logrus.Fields{
			"action": "ledger",
			"path":   string(c.Request().URI().Path()),
			"error":  err.Error(),
		}).Error("ledger_write_failed")
	}
	return writeError(c, fiber.StatusInternalServerError, "ledger_unavailable")
}

// parseNumber 宽松解析表单数值：允许首尾空白与数字字符串，拒绝 NaN/Inf。
func parseNumber(value interface{}) (float64, bool) {
	if s, ok := value.(string); ok {
		value = strings.TrimSpace(s)
		if value == "" {
			return 0, false
		}
	}
	if value == nil {
		return 0, false
	}
	n, err := cast.ToFloat64E(value)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}
