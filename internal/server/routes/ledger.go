package routes

import (
	"encoding/json"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"github.com/treevol/treevol/internal/ledger"
)

// measurementRequest 接受数字或数字字符串，与网页表单提交的值一致。
type measurementRequest struct {
	Species       string      `json:"species"`
	Length        interface{} `json:"length"`
	Circumference interface{} `json:"circumference"`
	Truck         string      `json:"truck"`
}

type truckRequest struct {
	Name string `json:"name"`
}

// RegisterLedgerRoutes 暴露台账、汇总与车辆标签接口。
func RegisterLedgerRoutes(app *fiber.App, book *ledger.Ledger, recorder *ledger.Recorder, logger *logrus.Logger) {
	if book == nil {
		return
	}

	app.Get("/-/entries", func(c fiber.Ctx) error {
		entries := book.List()
		return c.JSON(fiber.Map{"entries": entries, "count": len(entries)})
	})

	if recorder != nil {
		app.Post("/-/entries", func(c fiber.Ctx) error {
			var req measurementRequest
			if err := json.Unmarshal(c.Body(), &req); err != nil {
				return writeError(c, fiber.StatusBadRequest, "invalid_body")
			}
			length, okLen := parseNumber(req.Length)
			circ, okCirc := parseNumber(req.Circumference)
			if !okLen || !okCirc {
				return writeError(c, fiber.StatusBadRequest, "invalid_measurement")
			}
			entry, err := recorder.Record(ledger.Measurement{
				Species:       req.Species,
				Length:        length,
				Circumference: circ,
				Truck:         req.Truck,
			})
			if err != nil {
				return writeLedgerError(c, logger, err)
			}
			return c.Status(fiber.StatusCreated).JSON(entry)
		})
	}

	app.Delete("/-/entries/:id", func(c fiber.Ctx) error {
		id, err := url.PathUnescape(c.Params("id"))
		if err != nil || strings.TrimSpace(id) == "" {
			return writeError(c, fiber.StatusBadRequest, "invalid_id")
		}
		if err := book.Remove(id); err != nil {
			return writeLedgerError(c, logger, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	app.Delete("/-/entries", func(c fiber.Ctx) error {
		if c.Query("confirm") != "true" {
			return writeError(c, fiber.StatusBadRequest, "confirmation_required")
		}
		if err := book.Clear(); err != nil {
			return writeLedgerError(c, logger, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	app.Get("/-/summary", func(c fiber.Ctx) error {
		truck := strings.TrimSpace(c.Query("truck"))
		return c.JSON(ledger.Summarize(book.List(), truck))
	})

	app.Get("/-/trucks", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"trucks": book.Trucks()})
	})

	app.Post("/-/trucks", func(c fiber.Ctx) error {
		var req truckRequest
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "invalid_body")
		}
		trucks, err := book.AddTruck(req.Name)
		if err != nil {
			return writeLedgerError(c, logger, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"trucks": trucks})
	})

	app.Delete("/-/trucks/:name", func(c fiber.Ctx) error {
		name, err := url.PathUnescape(c.Params("name"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "invalid_name")
		}
		trucks, err := book.RemoveTruck(name)
		if err != nil {
			return writeLedgerError(c, logger, err)
		}
		return c.JSON(fiber.Map{"trucks": trucks})
	})
}
