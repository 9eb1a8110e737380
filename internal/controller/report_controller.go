package controller

import (
	"ai-interview-be/internal/pkg/serverutils"
	"ai-interview-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IReportController interface {
	RegisterRoutes(r fiber.Router)
	Synthesize(ctx *fiber.Ctx) error
	Get(ctx *fiber.Ctx) error
}

type reportController struct {
	reportService service.IReportService
}

func NewReportController(reportService service.IReportService) IReportController {
	return &reportController{
		reportService: reportService,
	}
}

func (c *reportController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/report/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post(":practiceId", c.Synthesize)
	h.Get(":practiceId", c.Get)
}

func (c *reportController) Synthesize(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)
	practiceId, err := uuid.Parse(ctx.Params("practiceId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid practice id")
	}

	res, err := c.reportService.Synthesize(ctx.Context(), userId, practiceId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success synthesize report", res))
}

func (c *reportController) Get(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)
	practiceId, err := uuid.Parse(ctx.Params("practiceId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid practice id")
	}

	res, err := c.reportService.Get(ctx.Context(), userId, practiceId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get report", res))
}
