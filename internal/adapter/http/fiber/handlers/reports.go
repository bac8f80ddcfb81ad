package handlers

import (
	"bytes"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/imob-crm/internal/ports"
)

type ReportHandler struct {
	service ports.ReportService
	log     *zap.Logger
}

func NewReportHandler(service ports.ReportService, log *zap.Logger) *ReportHandler {
	return &ReportHandler{service: service, log: log}
}

func (h *ReportHandler) Dashboard(c *fiber.Ctx) error {
	stats, err := h.service.Dashboard(c.UserContext())
	if err != nil {
		return err
	}
	return one(c, stats)
}

// Export streams leads, clients or tasks as a CSV attachment.
func (h *ReportHandler) Export(c *fiber.Ctx) error {
	kind := ports.ExportKind(c.Params("type"))

	var buf bytes.Buffer
	if err := h.service.Export(c.UserContext(), kind, &buf); err != nil {
		return err
	}

	h.log.Info("Export generated",
		zap.String("kind", string(kind)),
		zap.Int("bytes", buf.Len()),
	)

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s.csv"`, kind))
	return c.Send(buf.Bytes())
}
