package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shop_admin_v1_202610/internal/service"
	"shop_admin_v1_202610/pkg/net"
)

type DebugController struct {
	monitor *net.CallMonitor
	apiSvc  *service.ApiService
}

func NewDebugController(monitor *net.CallMonitor, apiSvc *service.ApiService) *DebugController {
	return &DebugController{monitor: monitor, apiSvc: apiSvc}
}

// Calls 最近的出站请求
// @Summary 出站请求记录
// @Description 最近 20 次请求及缓存条目数，用于排查重复请求
// @Tags Debug
// @Produce json
// @Router /debug/calls [get]
func (c *DebugController) Calls(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"total":     c.monitor.Total(),
		"calls":     c.monitor.Snapshot(),
		"cacheSize": c.apiSvc.CacheSize(),
	})
}
