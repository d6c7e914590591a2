package controller

import (
	"interview_prep_backend/internal/service"
	"interview_prep_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// GuidedLearningController serves a learner's own progress. The user id
// always comes from the token, never from the request.
type GuidedLearningController struct {
	Service *service.GuidedLearningService
}

func NewGuidedLearningController(s *service.GuidedLearningService) *GuidedLearningController {
	return &GuidedLearningController{Service: s}
}

// GetPlan godoc
// @Summary Plan tree with the learner's progress
// @Tags guided
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "plan id"
// @Success 200 {object} util.Response{data=service.PlanDetail}
// @Failure 404 {object} util.Response
// @Router /api/guided/plans/{id} [get]
func (c *GuidedLearningController) GetPlan(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	detail, err := c.Service.GetPlanDetail(ctx.Request.Context(), claims.UserID, ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, detail)
}

// StartPlan godoc
// @Summary Start a plan
// @Description Creates the progress record at the first question. Idempotent.
// @Tags guided
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "plan id"
// @Success 200 {object} util.Response{data=service.PlanDetail}
// @Failure 404 {object} util.Response
// @Failure 503 {object} util.Response
// @Router /api/guided/plans/{id}/start [post]
func (c *GuidedLearningController) StartPlan(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	detail, err := c.Service.StartPlan(ctx.Request.Context(), claims.UserID, ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, detail)
}

// SubmitAnswer godoc
// @Summary Answer a question of the plan
// @Tags guided
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "plan id"
// @Param   body body service.SubmitAnswerRequest true "answer"
// @Success 200 {object} util.Response{data=service.SubmitResult}
// @Failure 400 {object} util.Response "question not in plan"
// @Failure 503 {object} util.Response
// @Router /api/guided/plans/{id}/answers [post]
func (c *GuidedLearningController) SubmitAnswer(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.SubmitAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.Service.SubmitAnswer(ctx.Request.Context(), claims.UserID, ctx.Param("id"), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// ResetPlan godoc
// @Summary Clear the learner's progress on a plan
// @Tags guided
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "plan id"
// @Success 200 {object} util.Response{data=service.PlanDetail}
// @Router /api/guided/plans/{id}/reset [post]
func (c *GuidedLearningController) ResetPlan(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	detail, err := c.Service.ResetPlan(ctx.Request.Context(), claims.UserID, ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, detail)
}

// MyPlans godoc
// @Summary Plans the learner has started
// @Tags guided
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]service.PlanSummary}
// @Router /api/guided/my-plans [get]
func (c *GuidedLearningController) MyPlans(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	plans, err := c.Service.ListMyPlans(ctx.Request.Context(), claims.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, plans)
}
