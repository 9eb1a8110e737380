package controller

import (
	"io"
	"strconv"

	"ai-interview-be/internal/dto"
	"ai-interview-be/internal/pkg/serverutils"
	"ai-interview-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IPracticeController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	SubmitSection(ctx *fiber.Ctx) error
	SubmitSectionAudio(ctx *fiber.Ctx) error
	GetSnapshot(ctx *fiber.Ctx) error
}

type practiceController struct {
	practiceService service.IPracticeService
}

func NewPracticeController(practiceService service.IPracticeService) IPracticeController {
	return &practiceController{
		practiceService: practiceService,
	}
}

func (c *practiceController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/practice/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("", c.Create)
	h.Get("", c.List)
	h.Get(":id", c.Show)
	h.Post(":id/sections", c.SubmitSection)
	h.Post(":id/sections/audio", c.SubmitSectionAudio)
	h.Get(":id/questions/:index/snapshot", c.GetSnapshot)
}

func (c *practiceController) Create(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	var req dto.CreatePracticeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.practiceService.Create(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create practice", res))
}

func (c *practiceController) List(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	res, err := c.practiceService.List(ctx.Context(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list practices", res))
}

func (c *practiceController) Show(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid practice id")
	}

	res, err := c.practiceService.Show(ctx.Context(), userId, id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success show practice", res))
}

func (c *practiceController) SubmitSection(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid practice id")
	}

	var req dto.SubmitSectionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.practiceService.SubmitSection(ctx.Context(), userId, id, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success submit section", res))
}

// SubmitSectionAudio expects a multipart form: the recording under "file"
// plus question_index, section_name and optional time_spent_seconds fields.
func (c *practiceController) SubmitSectionAudio(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid practice id")
	}

	questionIndex, err := strconv.Atoi(ctx.FormValue("question_index"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "question_index must be an integer")
	}
	sectionName := ctx.FormValue("section_name")
	if sectionName == "" {
		return fiber.NewError(fiber.StatusBadRequest, "section_name is required")
	}
	timeSpent, _ := strconv.Atoi(ctx.FormValue("time_spent_seconds"))

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "audio file is required")
	}
	src, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	audio, err := io.ReadAll(src)
	if err != nil {
		return err
	}

	res, err := c.practiceService.SubmitSectionAudio(ctx.Context(), userId, id, questionIndex, sectionName, timeSpent, audio, fileHeader.Filename)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success submit section audio", res))
}

func (c *practiceController) GetSnapshot(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid practice id")
	}
	index, err := strconv.Atoi(ctx.Params("index"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "question index must be an integer")
	}

	res, err := c.practiceService.GetSnapshot(ctx.Context(), userId, id, index)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get snapshot", res))
}

func currentUserId(ctx *fiber.Ctx) uuid.UUID {
	userIdStr, _ := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)
	return userId
}
