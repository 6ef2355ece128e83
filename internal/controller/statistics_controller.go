package controller

import (
	"errors"
	"strconv"

	"aicu_backend/internal/service"
	"aicu_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type StatisticsController struct {
	LearningService *service.LearningService
	SnapshotService *service.SnapshotService
}

func NewStatisticsController(learningService *service.LearningService, snapshotService *service.SnapshotService) *StatisticsController {
	return &StatisticsController{
		LearningService: learningService,
		SnapshotService: snapshotService,
	}
}

// @Summary Category statistics document
// @Description Per-category solved/correct/accuracy with daily progress buckets
// @Tags statistics
// @Produce json
// @Success 200 {object} util.Response
// @Router /statistics/categories [get]
func (c *StatisticsController) GetCategories(ctx *gin.Context) {
	util.Success(ctx, c.LearningService.CategoryStatistics())
}

// @Summary Realtime statistics document
// @Description Global counters, current session pointer and all time-slotted sessions
// @Tags statistics
// @Produce json
// @Success 200 {object} util.Response
// @Router /statistics/realtime [get]
func (c *StatisticsController) GetRealTime(ctx *gin.Context) {
	util.Success(ctx, c.LearningService.RealTimeData())
}

// @Summary Archived quiz results
// @Tags statistics
// @Produce json
// @Param limit query int false "most recent N results" default(100)
// @Success 200 {object} util.Response
// @Router /statistics/results [get]
func (c *StatisticsController) GetResults(ctx *gin.Context) {
	limit, err := strconv.Atoi(ctx.DefaultQuery("limit", "100"))
	if err != nil || limit < 0 {
		util.BadRequest(ctx, "limit must be a non-negative integer")
		return
	}
	util.Success(ctx, c.LearningService.QuizResults(limit))
}

// @Summary Export all documents
// @Description One combined JSON view of the three statistics documents
// @Tags statistics
// @Produce json
// @Success 200 {object} util.Response
// @Router /statistics/export [get]
func (c *StatisticsController) Export(ctx *gin.Context) {
	util.Success(ctx, c.SnapshotService.Export())
}

// @Summary Upload a statistics snapshot
// @Description Writes an export to the configured storage backend
// @Tags statistics
// @Produce json
// @Success 201 {object} util.Response
// @Router /statistics/snapshot [post]
func (c *StatisticsController) CreateSnapshot(ctx *gin.Context) {
	url, err := c.SnapshotService.CreateSnapshot(ctx.Request.Context())
	if err != nil {
		if errors.Is(err, util.ErrSnapshotsDisabled) {
			util.BadRequest(ctx, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, gin.H{"url": url})
}
