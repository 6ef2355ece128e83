package controller

import (
	"errors"

	"aicu_backend/internal/model"
	"aicu_backend/internal/service"
	"aicu_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SimulationController struct {
	SimulationService *service.SimulationService
}

func NewSimulationController(simulationService *service.SimulationService) *SimulationController {
	return &SimulationController{SimulationService: simulationService}
}

type simulationTimeRequest struct {
	Date string `json:"date" binding:"required"`
	Time string `json:"time" binding:"required"`
}

// @Summary Pin the current session
// @Description Redirects the current-session pointer to an arbitrary (date, time) for deterministic replay
// @Tags simulation
// @Accept json
// @Produce json
// @Param time body simulationTimeRequest true "simulated session"
// @Success 200 {object} util.Response
// @Router /simulation/time [post]
func (c *SimulationController) SetTime(ctx *gin.Context) {
	var req simulationTimeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.SimulationService.SetSimulationTime(req.Date, req.Time); err != nil {
		if errors.Is(err, util.ErrInvalidDate) || errors.Is(err, util.ErrInvalidTimeSlot) {
			util.BadRequest(ctx, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"sessionId": model.SessionID(req.Date, req.Time)})
}

// @Summary Unpin the current session
// @Description Returns the current-session pointer to wall-clock derivation
// @Tags simulation
// @Produce json
// @Success 200 {object} util.Response
// @Router /simulation/time [delete]
func (c *SimulationController) ClearTime(ctx *gin.Context) {
	c.SimulationService.ClearSimulationTime()
	util.Success(ctx, gin.H{"cleared": true})
}

type simulationBatchRequest struct {
	Date    string                  `json:"date" binding:"required"`
	Time    string                  `json:"time" binding:"required"`
	Results []model.SimulatedResult `json:"results" binding:"required"`
}

// @Summary Apply a simulated batch
// @Description Feeds every result through the live recording pipeline in order, then broadcasts once
// @Tags simulation
// @Accept json
// @Produce json
// @Param batch body simulationBatchRequest true "batch"
// @Success 200 {object} util.Response
// @Router /simulation/batch [post]
func (c *SimulationController) RunBatch(ctx *gin.Context) {
	var req simulationBatchRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	applied, err := c.SimulationService.SimulateBatchQuizResults(req.Date, req.Time, req.Results)
	if err != nil {
		if errors.Is(err, util.ErrInvalidDate) || errors.Is(err, util.ErrInvalidTimeSlot) || errors.Is(err, util.ErrEmptyBatch) {
			util.BadRequest(ctx, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"sessionId": model.SessionID(req.Date, req.Time),
		"applied":   applied,
	})
}

// @Summary Validate recorded sessions
// @Description Compares attempts/correct per expected (date, time) session; mismatches are reported, not raised
// @Tags simulation
// @Accept json
// @Produce json
// @Param expected body map[string]map[string]model.ExpectedSession true "expected sessions"
// @Success 200 {object} util.Response
// @Router /simulation/validate [post]
func (c *SimulationController) Validate(ctx *gin.Context) {
	var expected map[string]map[string]model.ExpectedSession
	if err := ctx.ShouldBindJSON(&expected); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	util.Success(ctx, c.SimulationService.ValidateSimulationResults(expected))
}
