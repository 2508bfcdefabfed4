package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shop_admin_v1_202610/internal/api/dto"
	"shop_admin_v1_202610/internal/model"
)

// respond 成功 200 (或 okStatus)，失败 400
func respond[T any](ctx *gin.Context, okStatus int, r dto.Result[T]) {
	if r.Success {
		ctx.JSON(okStatus, r)
		return
	}
	ctx.JSON(http.StatusBadRequest, r)
}

func badRequest(ctx *gin.Context, err error) {
	ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "参数错误: " + err.Error()})
}

// pathID 路径参数 :id
func pathID(ctx *gin.Context) (model.ID, bool) {
	id := ctx.Param("id")
	if id == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "无效的ID"})
		return "", false
	}
	return model.ID(id), true
}
