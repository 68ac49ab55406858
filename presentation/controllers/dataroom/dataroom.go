package dataroom

import (
	"net/http"

	"github.com/dealdeck/dataroom-api/application/usecases/dataroom"
	"github.com/dealdeck/dataroom-api/domain/model"
	"github.com/dealdeck/dataroom-api/presentation/controllers/httperr"
	"github.com/dealdeck/dataroom-api/presentation/middlewares"
	"github.com/gin-gonic/gin"
)

type DataRoomController interface {
	InitRoom(ctx *gin.Context)
	GetRoom(ctx *gin.Context)
	Invite(ctx *gin.Context)
	Revoke(ctx *gin.Context)
	ListPermissions(ctx *gin.Context)
}

type dataRoomController struct {
	usecase dataroom.DataRoomUseCase
}

func NewDataRoomController(usecase dataroom.DataRoomUseCase) DataRoomController {
	return &dataRoomController{
		usecase: usecase,
	}
}

func (c *dataRoomController) InitRoom(ctx *gin.Context) {
	var req InitRoomRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(ctx, middlewares.TranslateValidationError(err))
		return
	}

	actor := middlewares.GetIdentity(ctx)

	room, err := c.usecase.InitRoom(ctx.Request.Context(), req.ListingID, actor, req.NDARequired)
	if err != nil {
		httperr.Respond(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, toRoomResponse(room))
}

func (c *dataRoomController) GetRoom(ctx *gin.Context) {
	roomID := ctx.Param("id")
	actor := middlewares.GetIdentity(ctx)

	room, err := c.usecase.GetRoom(ctx.Request.Context(), roomID, actor)
	if err != nil {
		httperr.Respond(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, toRoomResponse(room))
}

func (c *dataRoomController) Invite(ctx *gin.Context) {
	roomID := ctx.Param("id")

	var req InviteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(ctx, middlewares.TranslateValidationError(err))
		return
	}

	actor := middlewares.GetIdentity(ctx)

	perm, err := c.usecase.Invite(ctx.Request.Context(), roomID, actor, req.Email, model.Role(req.Role))
	if err != nil {
		httperr.Respond(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, toPermissionResponse(perm))
}

func (c *dataRoomController) Revoke(ctx *gin.Context) {
	roomID := ctx.Param("id")
	userID := ctx.Param("userId")
	actor := middlewares.GetIdentity(ctx)

	if err := c.usecase.Revoke(ctx.Request.Context(), roomID, actor, userID); err != nil {
		httperr.Respond(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, SuccessResponse{
		Message: "permission revoked",
	})
}

func (c *dataRoomController) ListPermissions(ctx *gin.Context) {
	roomID := ctx.Param("id")
	actor := middlewares.GetIdentity(ctx)

	perms, err := c.usecase.ListPermissions(ctx.Request.Context(), roomID, actor)
	if err != nil {
		httperr.Respond(ctx, err)
		return
	}

	responses := make([]PermissionResponse, len(perms))
	for i := range perms {
		responses[i] = toPermissionResponse(&perms[i])
	}
	ctx.JSON(http.StatusOK, gin.H{"permissions": responses})
}

func toRoomResponse(room *model.DataRoom) RoomResponse {
	return RoomResponse{
		ID:          room.ID,
		ListingID:   room.ListingID,
		NDARequired: room.NDARequired,
		CreatedBy:   room.CreatedBy,
		CreatedAt:   room.CreatedAt,
	}
}

func toPermissionResponse(perm *model.DataRoomPermission) PermissionResponse {
	return PermissionResponse{
		UserID:    perm.UserID,
		Role:      string(perm.Role),
		InvitedBy: perm.InvitedBy,
		CreatedAt: perm.CreatedAt,
	}
}
