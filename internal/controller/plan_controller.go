package controller

import (
	"interview_prep_backend/internal/service"
	"interview_prep_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type PlanController struct {
	PlanService *service.PlanService
}

func NewPlanController(planService *service.PlanService) *PlanController {
	return &PlanController{PlanService: planService}
}

// swagger:model PublishRequest
type PublishRequest struct {
	Published bool `json:"published"`
}

// ListPublished godoc
// @Summary Published plans
// @Tags plans
// @Produce  json
// @Param   page query int false "page"
// @Param   limit query int false "page size"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/plans [get]
func (c *PlanController) ListPublished(ctx *gin.Context) {
	c.list(ctx, true)
}

// List godoc
// @Summary All plans (admin)
// @Tags admin-plans
// @Produce  json
// @Security ApiKeyAuth
// @Param   page query int false "page"
// @Param   limit query int false "page size"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/admin/plans [get]
func (c *PlanController) List(ctx *gin.Context) {
	c.list(ctx, false)
}

func (c *PlanController) list(ctx *gin.Context, publishedOnly bool) {
	page, limit := util.Pagination(ctx)
	plans, total, err := c.PlanService.List(publishedOnly, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Paged(ctx, plans, total, page, limit)
}

// Create godoc
// @Summary Create a plan
// @Tags admin-plans
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.PlanRequest true "plan"
// @Success 201 {object} util.Response{data=model.Plan}
// @Router /api/admin/plans [post]
func (c *PlanController) Create(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.PlanRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	plan, err := c.PlanService.Create(claims.UserID, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, plan)
}

// Get godoc
// @Summary Plan definition with its structure
// @Tags admin-plans
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "plan id"
// @Success 200 {object} util.Response{data=model.Plan}
// @Router /api/admin/plans/{id} [get]
func (c *PlanController) Get(ctx *gin.Context) {
	plan, err := c.PlanService.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, plan)
}

// Preview godoc
// @Summary Plan tree as learners see it
// @Tags admin-plans
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "plan id"
// @Success 200 {object} util.Response{data=guided.Plan}
// @Router /api/admin/plans/{id}/preview [get]
func (c *PlanController) Preview(ctx *gin.Context) {
	tree, err := c.PlanService.Preview(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, tree)
}

// Update godoc
// @Summary Update plan metadata
// @Tags admin-plans
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "plan id"
// @Param   body body service.PlanRequest true "plan"
// @Success 200 {object} util.Response{data=model.Plan}
// @Router /api/admin/plans/{id} [put]
func (c *PlanController) Update(ctx *gin.Context) {
	var req service.PlanRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	plan, err := c.PlanService.Update(ctx.Param("id"), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, plan)
}

// ReplaceStructure godoc
// @Summary Replace the card/category/topic tree of a plan
// @Tags admin-plans
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "plan id"
// @Param   body body service.StructureRequest true "structure"
// @Success 200 {object} util.Response{data=model.Plan}
// @Failure 400 {object} util.Response "unknown question id"
// @Router /api/admin/plans/{id}/structure [put]
func (c *PlanController) ReplaceStructure(ctx *gin.Context) {
	var req service.StructureRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	plan, err := c.PlanService.ReplaceStructure(ctx.Request.Context(), ctx.Param("id"), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, plan)
}

// Publish godoc
// @Summary Publish or unpublish a plan
// @Tags admin-plans
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "plan id"
// @Param   body body PublishRequest true "flag"
// @Success 200 {object} util.Response{data=model.Plan}
// @Router /api/admin/plans/{id}/publish [put]
func (c *PlanController) Publish(ctx *gin.Context) {
	var req PublishRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	plan, err := c.PlanService.SetPublished(ctx.Param("id"), req.Published)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, plan)
}

// Delete godoc
// @Summary Delete a plan
// @Tags admin-plans
// @Security ApiKeyAuth
// @Param   id path string true "plan id"
// @Success 200 {object} util.Response
// @Router /api/admin/plans/{id} [delete]
func (c *PlanController) Delete(ctx *gin.Context) {
	if err := c.PlanService.Delete(ctx.Request.Context(), ctx.Param("id")); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
