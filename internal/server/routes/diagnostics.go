package routes

import (
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/hydra-warm/hydra-warm/internal/manager"
	"github.com/hydra-warm/hydra-warm/internal/warmer"
)

// ReportSource 提供最近一次 hydrator warm-up 报告。
type ReportSource interface {
	LastReport() (warmer.Report, bool)
}

// ResultSource 提供最近一次 aggregate 执行结果。
type ResultSource interface {
	LastResults() []warmer.Result
}

// Diagnostics 聚合诊断接口需要的只读依赖。
type Diagnostics struct {
	Managers     *manager.Registry
	Warmers      ResultSource
	Hydrators    ReportSource
	Listed       []string
	AutoGenerate bool
}

// RegisterDiagnosticsRoutes 暴露 /-/warmers 与 /-/managers 诊断接口。
func RegisterDiagnosticsRoutes(app *fiber.App, d Diagnostics) {
	if app == nil || d.Managers == nil {
		return
	}

	app.Get("/-/warmers", func(c fiber.Ctx) error {
		payload := fiber.Map{
			"warmers": encodeResults(resultsOf(d.Warmers)),
		}
		if d.Hydrators != nil {
			if report, ok := d.Hydrators.LastReport(); ok {
				payload["hydrators"] = encodeReport(report)
			}
		}
		return c.JSON(payload)
	})

	app.Get("/-/managers", func(c fiber.Ctx) error {
		list := d.Managers.List()
		result := make([]managerPayload, 0, len(list))
		for _, m := range list {
			result = append(result, d.encodeManager(m))
		}
		return c.JSON(fiber.Map{
			"managers":      result,
			"warmup_order":  d.Listed,
			"auto_generate": d.AutoGenerate,
		})
	})

	app.Get("/-/managers/:name", func(c fiber.Ctx) error {
		name := strings.ToLower(strings.TrimSpace(c.Params("name")))
		if name == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "manager_name_required"})
		}
		m, ok := d.Managers.Resolve(name)
		if !ok {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "manager_not_found"})
		}

		payload := d.encodeManager(m)
		if m.Hydrators() == nil {
			return c.JSON(payload)
		}
		artifacts, err := m.Hydrators().Artifacts(c.Context())
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "artifacts_unavailable"})
		}
		payload.Artifacts = encodeArtifacts(artifacts)
		return c.JSON(payload)
	})
}

func resultsOf(src ResultSource) []warmer.Result {
	if src == nil {
		return nil
	}
	return src.LastResults()
}
