package nda

import (
	"net/http"

	"github.com/dealdeck/dataroom-api/application/usecases/nda"
	"github.com/dealdeck/dataroom-api/presentation/controllers/httperr"
	"github.com/dealdeck/dataroom-api/presentation/middlewares"
	"github.com/gin-gonic/gin"
)

type NDAController interface {
	Accept(ctx *gin.Context)
	GetStatus(ctx *gin.Context)
}

type ndaController struct {
	usecase nda.NDAUseCase
}

func NewNDAController(usecase nda.NDAUseCase) NDAController {
	return &ndaController{
		usecase: usecase,
	}
}

func (c *ndaController) Accept(ctx *gin.Context) {
	roomID := ctx.Param("id")

	var req AcceptRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(ctx, middlewares.TranslateValidationError(err))
		return
	}

	actor := middlewares.GetIdentity(ctx)

	acceptance, created, err := c.usecase.Accept(
		ctx.Request.Context(),
		roomID,
		actor,
		req.NDAVersion,
		ctx.ClientIP(),
		ctx.Request.UserAgent(),
	)
	if err != nil {
		httperr.Respond(ctx, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	ctx.JSON(status, AcceptanceResponse{
		ID:         acceptance.ID,
		NDAVersion: acceptance.NDAVersion,
		AcceptedAt: acceptance.AcceptedAt,
	})
}

func (c *ndaController) GetStatus(ctx *gin.Context) {
	roomID := ctx.Param("id")
	actor := middlewares.GetIdentity(ctx)

	status, err := c.usecase.GetStatus(ctx.Request.Context(), roomID, actor)
	if err != nil {
		httperr.Respond(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, StatusResponse{
		Required:   status.Required,
		Accepted:   status.Accepted,
		NDAVersion: status.NDAVersion,
		AcceptedAt: status.AcceptedAt,
	})
}
