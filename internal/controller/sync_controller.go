package controller

import (
	"aicu_backend/internal/service"
	"aicu_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SyncController struct {
	SyncService *service.SyncService
	Hub         *service.SyncHub
}

func NewSyncController(syncService *service.SyncService, hub *service.SyncHub) *SyncController {
	return &SyncController{
		SyncService: syncService,
		Hub:         hub,
	}
}

type syncTriggerRequest struct {
	Source string `json:"source"`
}

// @Summary Page regained focus
// @Description Triggers a resync unless one was dispatched within the quiet period
// @Tags sync
// @Accept json
// @Produce json
// @Param trigger body syncTriggerRequest false "originating page"
// @Success 200 {object} util.Response
// @Router /sync/focus [post]
func (c *SyncController) Focus(ctx *gin.Context) {
	var req syncTriggerRequest
	_ = ctx.ShouldBindJSON(&req)
	if req.Source == "" {
		req.Source = "focus"
	}

	dispatched := c.SyncService.NotifyFocus(req.Source)
	util.Success(ctx, gin.H{"dispatched": dispatched})
}

// @Summary Page reconnected to storage
// @Tags sync
// @Accept json
// @Produce json
// @Param trigger body syncTriggerRequest false "originating page"
// @Success 200 {object} util.Response
// @Router /sync/reconnect [post]
func (c *SyncController) Reconnect(ctx *gin.Context) {
	var req syncTriggerRequest
	_ = ctx.ShouldBindJSON(&req)
	if req.Source == "" {
		req.Source = "reconnect"
	}

	dispatched := c.SyncService.NotifyReconnect(req.Source)
	util.Success(ctx, gin.H{"dispatched": dispatched})
}

// @Summary Recent sync events
// @Description The audit ring buffer of the most recently delivered events
// @Tags sync
// @Produce json
// @Success 200 {object} util.Response
// @Router /sync/events [get]
func (c *SyncController) RecentEvents(ctx *gin.Context) {
	util.Success(ctx, c.SyncService.RecentEvents())
}

// @Summary Subscribe over WebSocket
// @Description Upgrades the connection; every SyncEvent is pushed as one JSON frame
// @Tags sync
// @Router /sync/ws [get]
func (c *SyncController) ServeWS(ctx *gin.Context) {
	c.Hub.ServeWS(ctx)
}
