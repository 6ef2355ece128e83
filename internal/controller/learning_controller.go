package controller

import (
	"errors"

	"aicu_backend/internal/model"
	"aicu_backend/internal/service"
	"aicu_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type LearningController struct {
	LearningService *service.LearningService
}

func NewLearningController(learningService *service.LearningService) *LearningController {
	return &LearningController{LearningService: learningService}
}

// @Summary Record a completed quiz question
// @Description Folds one quizCompleted event into the aggregates and notifies subscribers
// @Tags learning
// @Accept json
// @Produce json
// @Param event body model.QuizEvent true "quiz event"
// @Success 200 {object} util.Response
// @Router /learning/quiz-completed [post]
func (c *LearningController) QuizCompleted(ctx *gin.Context) {
	var event model.QuizEvent
	if err := ctx.ShouldBindJSON(&event); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	outcome, err := c.LearningService.RecordQuizEvent(event)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, outcome)
}

type startSessionRequest struct {
	Date     string `json:"date" binding:"required"`
	TimeSlot string `json:"timeSlot" binding:"required"`
}

// @Summary Start a time-slotted session
// @Description Idempotently creates the (date, timeSlot) bucket
// @Tags learning
// @Accept json
// @Produce json
// @Param session body startSessionRequest true "session key"
// @Success 201 {object} util.Response
// @Router /learning/sessions [post]
func (c *LearningController) StartSession(ctx *gin.Context) {
	var req startSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	session, err := c.LearningService.StartSession(req.Date, req.TimeSlot)
	if err != nil {
		if errors.Is(err, util.ErrInvalidDate) || errors.Is(err, util.ErrInvalidTimeSlot) {
			util.BadRequest(ctx, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, session)
}

// @Summary Continue-learning lookup
// @Description Returns the last answered question index for a category, optionally within one session
// @Tags learning
// @Produce json
// @Param category query string true "category alias or key"
// @Param date query string false "session date (YYYY-MM-DD)"
// @Param time query string false "session time slot (HH:MM)"
// @Success 200 {object} util.Response
// @Router /learning/continue [get]
func (c *LearningController) ContinueIndex(ctx *gin.Context) {
	category := ctx.Query("category")
	if category == "" {
		util.BadRequest(ctx, "category is required")
		return
	}

	date := ctx.Query("date")
	timeSlot := ctx.Query("time")
	if (date == "") != (timeSlot == "") {
		util.BadRequest(ctx, "date and time must be given together")
		return
	}
	if date != "" && !util.ValidDate(date) {
		util.BadRequest(ctx, util.ErrInvalidDate.Error())
		return
	}
	if timeSlot != "" && !util.ValidSlot(timeSlot) {
		util.BadRequest(ctx, util.ErrInvalidTimeSlot.Error())
		return
	}

	index := c.LearningService.ContinueIndex(category, date, timeSlot)
	util.Success(ctx, gin.H{
		"category":      category,
		"questionIndex": index,
	})
}
