package controller

import (
	"strconv"

	"ai-interview-be/internal/dto"
	"ai-interview-be/internal/pkg/serverutils"
	"ai-interview-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IAnalysisController interface {
	RegisterRoutes(r fiber.Router)
	Analyze(ctx *fiber.Ctx) error
	GetAnalysis(ctx *fiber.Ctx) error
	SupportedKinds(ctx *fiber.Ctx) error
}

type analysisController struct {
	analysisService service.IAnalysisService
}

func NewAnalysisController(analysisService service.IAnalysisService) IAnalysisController {
	return &analysisController{
		analysisService: analysisService,
	}
}

func (c *analysisController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/analysis/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("kinds", c.SupportedKinds)
	h.Post(":practiceId/analyze", c.Analyze)
	h.Get(":practiceId/questions/:index", c.GetAnalysis)
}

func (c *analysisController) Analyze(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)
	practiceId, err := uuid.Parse(ctx.Params("practiceId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid practice id")
	}

	var req dto.AnalyzeQuestionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.analysisService.AnalyzeQuestion(ctx.Context(), userId, practiceId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success analyze question", res))
}

func (c *analysisController) GetAnalysis(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)
	practiceId, err := uuid.Parse(ctx.Params("practiceId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid practice id")
	}
	index, err := strconv.Atoi(ctx.Params("index"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "question index must be an integer")
	}

	res, err := c.analysisService.GetAnalysis(ctx.Context(), userId, practiceId, index)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get analysis", res))
}

func (c *analysisController) SupportedKinds(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Success list analysis kinds", c.analysisService.SupportedKinds()))
}
