package controller

import (
	"errors"
	"interview_prep_backend/internal/guided"
	"interview_prep_backend/internal/util"
	"interview_prep_backend/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError maps service errors onto the response envelope.
func respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrPlanNotFound),
		errors.Is(err, util.ErrPlanNotPublished),
		errors.Is(err, util.ErrQuestionNotFound),
		errors.Is(err, util.ErrUserNotFound):
		util.Error(ctx, http.StatusNotFound, err.Error())
	case errors.Is(err, guided.ErrQuestionNotInPlan),
		errors.Is(err, util.ErrInvalidQuestion),
		errors.Is(err, util.ErrInvalidStructure),
		errors.Is(err, util.ErrUnsupportedImport):
		util.BadRequest(ctx, err.Error())
	case errors.Is(err, util.ErrInvalidCredential):
		util.Error(ctx, http.StatusUnauthorized, err.Error())
	case errors.Is(err, util.ErrUserDisabled):
		util.Error(ctx, http.StatusForbidden, err.Error())
	case errors.Is(err, util.ErrEmailRegistered):
		util.Error(ctx, http.StatusConflict, err.Error())
	case errors.Is(err, util.ErrStoreUnavailable):
		logger.Log.Error("store unavailable", zap.String("path", ctx.FullPath()), zap.Error(err))
		util.ServiceUnavailable(ctx)
	default:
		util.LogInternalError(ctx, err)
	}
}
