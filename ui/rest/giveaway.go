// Package rest exposes the tracking data over HTTP for the dashboard.
package rest

import (
	"github.com/gofiber/fiber/v2"

	domainGiveaway "github.com/AzielCF/az-giveaway/domains/giveaway"
	pkgError "github.com/AzielCF/az-giveaway/pkg/error"
	"github.com/AzielCF/az-giveaway/pkg/utils"
	"github.com/AzielCF/az-giveaway/usecase"
	"github.com/AzielCF/az-giveaway/validations"
)

type Giveaway struct {
	Service *usecase.GiveawayUsecase
}

func InitRestGiveaway(app fiber.Router, service *usecase.GiveawayUsecase) Giveaway {
	rest := Giveaway{Service: service}
	app.Get("/giveaways", rest.List)
	app.Post("/giveaways", rest.Create)
	app.Get("/giveaways/:id", rest.Get)
	app.Put("/giveaways/:id/status", rest.UpdateStatus)
	app.Put("/giveaways/:id/result", rest.UpdateResult)
	app.Delete("/giveaways/:id", rest.Delete)
	app.Get("/stats", rest.Stats)
	app.Get("/analytics", rest.Analytics)
	app.Get("/year", rest.Year)

	return rest
}

func (handler *Giveaway) List(c *fiber.Ctx) error {
	items, err := handler.Service.List(c.UserContext(), userID(c))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Giveaways retrieved",
		Results: items,
	})
}

type createGiveawayRequest struct {
	UserID             int64  `json:"user_id"`
	Title              string `json:"title"`
	Organizer          string `json:"organizer"`
	Platform           string `json:"platform"`
	Deadline           string `json:"deadline"`
	WinnerAnnouncement string `json:"winner_announcement"`
	Prize              string `json:"prize"`
	PostURL            string `json:"post_url"`
	Requirements       string `json:"requirements"`
	Notes              string `json:"notes"`
}

func (handler *Giveaway) Create(c *fiber.Ctx) error {
	var req createGiveawayRequest
	if err := c.BodyParser(&req); err != nil {
		panic(pkgError.ValidationError("invalid request body"))
	}
	if req.UserID == 0 {
		panic(pkgError.ValidationError("user_id is required"))
	}

	draft := &domainGiveaway.Draft{
		Title:              req.Title,
		Organizer:          req.Organizer,
		Platform:           domainGiveaway.Platform(req.Platform),
		Deadline:           req.Deadline,
		WinnerAnnouncement: req.WinnerAnnouncement,
		Prize:              req.Prize,
		PostURL:            req.PostURL,
		Requirements:       req.Requirements,
		Notes:              req.Notes,
	}

	id, err := handler.Service.Save(c.UserContext(), req.UserID, draft)
	utils.PanicIfNeeded(err)

	return c.Status(201).JSON(utils.ResponseData{
		Status:  201,
		Code:    "SUCCESS",
		Message: "Giveaway created",
		Results: fiber.Map{"id": id},
	})
}

func (handler *Giveaway) Get(c *fiber.Ctx) error {
	g, err := handler.Service.Get(c.UserContext(), userID(c), giveawayID(c))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Giveaway retrieved",
		Results: g,
	})
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (handler *Giveaway) UpdateStatus(c *fiber.Ctx) error {
	var req updateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		panic(pkgError.ValidationError("invalid request body"))
	}
	utils.PanicIfNeeded(validations.ValidateStatus(req.Status))
	utils.PanicIfNeeded(handler.Service.UpdateStatus(c.UserContext(), userID(c), giveawayID(c), req.Status))

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Status updated",
	})
}

type updateResultRequest struct {
	Result string `json:"result"`
}

func (handler *Giveaway) UpdateResult(c *fiber.Ctx) error {
	var req updateResultRequest
	if err := c.BodyParser(&req); err != nil {
		panic(pkgError.ValidationError("invalid request body"))
	}
	utils.PanicIfNeeded(validations.ValidateResult(req.Result))
	utils.PanicIfNeeded(handler.Service.MarkResult(c.UserContext(), userID(c), giveawayID(c), req.Result))

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Result recorded",
	})
}

func (handler *Giveaway) Delete(c *fiber.Ctx) error {
	utils.PanicIfNeeded(handler.Service.Remove(c.UserContext(), userID(c), giveawayID(c)))

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Giveaway deleted",
	})
}

func (handler *Giveaway) Stats(c *fiber.Ctx) error {
	stats, err := handler.Service.Stats(c.UserContext(), userID(c))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Statistics retrieved",
		Results: stats,
	})
}

func (handler *Giveaway) Analytics(c *fiber.Ctx) error {
	analytics, err := handler.Service.Analytics(c.UserContext(), userID(c))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Analytics retrieved",
		Results: analytics,
	})
}

func (handler *Giveaway) Year(c *fiber.Ctx) error {
	summary, err := handler.Service.YearlySummary(c.UserContext(), userID(c))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Yearly summary retrieved",
		Results: summary,
	})
}

// userID reads the mandatory user_id query parameter. The dashboard is
// single-operator but the data is still partitioned per chat user.
func userID(c *fiber.Ctx) int64 {
	id := int64(c.QueryInt("user_id"))
	if id == 0 {
		panic(pkgError.ValidationError("user_id query parameter is required"))
	}
	return id
}

func giveawayID(c *fiber.Ctx) uint {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		panic(pkgError.ValidationError("invalid giveaway id"))
	}
	return uint(id)
}
