package scan

import (
	"net/http"

	"github.com/dealdeck/dataroom-api/application/usecases/document"
	"github.com/dealdeck/dataroom-api/domain/model"
	"github.com/dealdeck/dataroom-api/presentation/controllers/httperr"
	"github.com/dealdeck/dataroom-api/presentation/middlewares"
	"github.com/gin-gonic/gin"
)

// ScanController receives terminal verdicts from the external scanner.
// The route is authenticated by a shared bearer token, not by user
// identity.
type ScanController interface {
	Callback(ctx *gin.Context)
}

type scanController struct {
	usecase document.DocumentUseCase
}

func NewScanController(usecase document.DocumentUseCase) ScanController {
	return &scanController{
		usecase: usecase,
	}
}

func (c *scanController) Callback(ctx *gin.Context) {
	var req CallbackRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(ctx, middlewares.TranslateValidationError(err))
		return
	}

	ver, err := c.usecase.HandleScanCallback(ctx.Request.Context(), req.VersionID, model.ScanStatus(req.Status), req.Reason)
	if err != nil {
		httperr.Respond(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, CallbackResponse{
		VersionID: ver.ID,
		VirusScan: string(ver.VirusScan),
	})
}
