package controller

import (
	"interview_prep_backend/internal/repository"
	"interview_prep_backend/internal/service"
	"interview_prep_backend/internal/util"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

const maxImportSize = 10 << 20

type QuestionController struct {
	QuestionService *service.QuestionService
	ImportService   *service.QuestionImportService
}

func NewQuestionController(questionService *service.QuestionService, importService *service.QuestionImportService) *QuestionController {
	return &QuestionController{
		QuestionService: questionService,
		ImportService:   importService,
	}
}

func questionFilter(ctx *gin.Context) repository.QuestionFilter {
	return repository.QuestionFilter{
		Category:   ctx.Query("category"),
		Difficulty: ctx.Query("difficulty"),
		Type:       ctx.Query("type"),
		Keyword:    strings.TrimSpace(ctx.Query("keyword")),
	}
}

// ListPublic godoc
// @Summary Browse the question bank
// @Description Active questions only, without answers.
// @Tags questions
// @Produce  json
// @Param   category query string false "category"
// @Param   difficulty query string false "beginner, intermediate or advanced"
// @Param   type query string false "question type"
// @Param   keyword query string false "search in title and content"
// @Param   page query int false "page"
// @Param   limit query int false "page size"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/questions [get]
func (c *QuestionController) ListPublic(ctx *gin.Context) {
	page, limit := util.Pagination(ctx)
	qs, total, err := c.QuestionService.ListPublic(questionFilter(ctx), page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Paged(ctx, qs, total, page, limit)
}

// List godoc
// @Summary List questions (admin)
// @Tags admin-questions
// @Produce  json
// @Security ApiKeyAuth
// @Param   category query string false "category"
// @Param   difficulty query string false "difficulty"
// @Param   type query string false "question type"
// @Param   keyword query string false "keyword"
// @Param   active query bool false "only active questions"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/admin/questions [get]
func (c *QuestionController) List(ctx *gin.Context) {
	page, limit := util.Pagination(ctx)
	f := questionFilter(ctx)
	f.ActiveOnly = ctx.Query("active") == "true"

	qs, total, err := c.QuestionService.List(f, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Paged(ctx, qs, total, page, limit)
}

// Get godoc
// @Summary Get a question (admin)
// @Tags admin-questions
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "question id"
// @Success 200 {object} util.Response{data=model.Question}
// @Router /api/admin/questions/{id} [get]
func (c *QuestionController) Get(ctx *gin.Context) {
	q, err := c.QuestionService.Get(ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, q)
}

// Create godoc
// @Summary Create a question
// @Tags admin-questions
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.QuestionRequest true "question"
// @Success 201 {object} util.Response{data=model.Question}
// @Failure 400 {object} util.Response
// @Router /api/admin/questions [post]
func (c *QuestionController) Create(ctx *gin.Context) {
	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.QuestionService.Create(req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, q)
}

// Update godoc
// @Summary Update a question
// @Tags admin-questions
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "question id"
// @Param   body body service.QuestionRequest true "question"
// @Success 200 {object} util.Response{data=model.Question}
// @Router /api/admin/questions/{id} [put]
func (c *QuestionController) Update(ctx *gin.Context) {
	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.QuestionService.Update(ctx.Param("id"), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, q)
}

// Delete godoc
// @Summary Delete a question
// @Tags admin-questions
// @Security ApiKeyAuth
// @Param   id path string true "question id"
// @Success 200 {object} util.Response
// @Router /api/admin/questions/{id} [delete]
func (c *QuestionController) Delete(ctx *gin.Context) {
	if err := c.QuestionService.Delete(ctx.Param("id")); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// Import godoc
// @Summary Bulk import questions from .xlsx or .csv
// @Tags admin-questions
// @Accept  multipart/form-data
// @Produce  json
// @Security ApiKeyAuth
// @Param   file formData file true "sheet"
// @Success 200 {object} util.Response{data=service.ImportResult}
// @Failure 400 {object} util.Response
// @Router /api/admin/questions/import [post]
func (c *QuestionController) Import(ctx *gin.Context) {
	file, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}
	if file.Size > maxImportSize {
		util.BadRequest(ctx, "file too large")
		return
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	allowed := false
	for _, e := range util.AllowedImportExtensions {
		if ext == e {
			allowed = true
			break
		}
	}
	if !allowed {
		util.BadRequest(ctx, "only .xlsx and .csv files can be imported")
		return
	}

	src, err := file.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer src.Close()

	result, err := c.ImportService.Import(ctx.Request.Context(), file.Filename, src)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// ImportTemplate godoc
// @Summary Download the import template
// @Tags admin-questions
// @Produce  application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security ApiKeyAuth
// @Success 200 {file} file
// @Router /api/admin/questions/import/template [get]
func (c *QuestionController) ImportTemplate(ctx *gin.Context) {
	data, err := c.ImportService.Template()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	ctx.Header("Content-Disposition", `attachment; filename="questions_template.xlsx"`)
	ctx.Data(http.StatusOK, util.MimeXLSX, data)
}
