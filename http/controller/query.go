package controller

import (
	"github.com/gin-gonic/gin"
	"github.com/tnqbao/gau-observability/entity"
	"github.com/tnqbao/gau-observability/utils"
)

func (ctrl *Controller) ExecuteQuery(c *gin.Context) {
	ctx := c.Request.Context()

	var query entity.AnalyticsQuery
	if err := c.ShouldBindJSON(&query); err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Query Engine] Failed to bind query: %v", err)
		utils.JSON400(c, "Invalid query payload")
		return
	}

	result, err := ctrl.Engine.Query.Execute(ctx, query)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Query Engine] Query execution failed: %v", err)
		utils.JSON500(c, "Query execution failed")
		return
	}

	utils.JSON200(c, result)
}

func (ctrl *Controller) FlushQueryCache(c *gin.Context) {
	ctx := c.Request.Context()

	removed, err := ctrl.Engine.Query.InvalidateCache(ctx)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Query Engine] Cache flush failed: %v", err)
		utils.JSON500(c, "Cache flush failed")
		return
	}

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[Query Engine] Cache flushed, %d entries removed", removed)
	utils.JSON200(c, gin.H{"removed": removed})
}
