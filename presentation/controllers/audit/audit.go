package audit

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dealdeck/dataroom-api/application/usecases/access"
	"github.com/dealdeck/dataroom-api/application/usecases/audit"
	"github.com/dealdeck/dataroom-api/domain/repository"
	"github.com/dealdeck/dataroom-api/presentation/controllers/httperr"
	"github.com/dealdeck/dataroom-api/presentation/middlewares"
	"github.com/gin-gonic/gin"
)

type AuditController interface {
	List(ctx *gin.Context)
}

type auditController struct {
	usecase  audit.AuditUseCase
	accessUC access.AccessUseCase
}

func NewAuditController(usecase audit.AuditUseCase, accessUC access.AccessUseCase) AuditController {
	return &auditController{
		usecase:  usecase,
		accessUC: accessUC,
	}
}

func (c *auditController) List(ctx *gin.Context) {
	roomID := ctx.Param("id")
	actor := middlewares.GetIdentity(ctx)

	if err := c.accessUC.Decide(ctx.Request.Context(), roomID, actor, access.ActionViewAudit, nil); err != nil {
		httperr.Respond(ctx, err)
		return
	}

	filter := repository.AuditFilter{
		Action:  ctx.Query("action"),
		ActorID: ctx.Query("actorId"),
	}
	if since := ctx.Query("since"); since != "" {
		parsed, err := time.Parse(time.RFC3339, since)
		if err != nil {
			httperr.BadRequest(ctx, "since must be an RFC3339 timestamp")
			return
		}
		filter.Since = parsed
	}
	if until := ctx.Query("until"); until != "" {
		parsed, err := time.Parse(time.RFC3339, until)
		if err != nil {
			httperr.BadRequest(ctx, "until must be an RFC3339 timestamp")
			return
		}
		filter.Until = parsed
	}

	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(ctx.DefaultQuery("offset", "0"))

	entries, total, err := c.usecase.List(ctx.Request.Context(), roomID, filter, limit, offset)
	if err != nil {
		httperr.Respond(ctx, err)
		return
	}

	responses := make([]EntryResponse, len(entries))
	for i, entry := range entries {
		responses[i] = EntryResponse{
			ID:         entry.ID,
			Action:     entry.Action,
			TargetType: entry.TargetType,
			TargetID:   entry.TargetID,
			ActorName:  entry.ActorName,
			Meta:       entry.Meta,
			CreatedAt:  entry.CreatedAt,
		}
		if entry.ActorID.Valid {
			responses[i].ActorID = entry.ActorID.String
		}
	}

	ctx.JSON(http.StatusOK, ListResponse{
		Entries: responses,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
	})
}
