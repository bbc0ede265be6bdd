package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/tnqbao/gau-observability/http/controller"
	middlewares "github.com/tnqbao/gau-observability/http/middleware"
)

func SetupRouter(ctrl *controller.Controller) *gin.Engine {
	r := gin.Default()
	middles, err := middlewares.NewMiddlewares(ctrl)
	if err != nil {
		panic(err)
	}

	r.Use(middles.CORSMiddleware)

	apiRoutes := r.Group("/api/v1/analytics")
	{
		apiRoutes.Use(middles.AuthMiddleware)

		apiRoutes.POST("/query", ctrl.ExecuteQuery)
		apiRoutes.DELETE("/query/cache", ctrl.FlushQueryCache)

		metricRoutes := apiRoutes.Group("/metrics")
		{
			metricRoutes.POST("/", ctrl.IngestMetrics)
			metricRoutes.GET("/", ctrl.ListMetricNames)
			metricRoutes.GET("/:name/aggregates", ctrl.ListMetricAggregates)
		}

		alertRoutes := apiRoutes.Group("/alerts")
		{
			alertRoutes.POST("/", ctrl.CreateAlert)
			alertRoutes.GET("/", ctrl.ListAlerts)
			alertRoutes.GET("/:id", ctrl.GetAlertByID)
			alertRoutes.PUT("/:id", ctrl.UpdateAlert)
			alertRoutes.DELETE("/:id", ctrl.DeleteAlert)
			alertRoutes.POST("/:id/silence", ctrl.SilenceAlert)
			alertRoutes.GET("/:id/history", ctrl.ListAlertHistory)
		}

		anomalyRoutes := apiRoutes.Group("/anomalies")
		{
			anomalyRoutes.GET("/", ctrl.ListAnomalies)
			anomalyRoutes.POST("/:id/acknowledge", ctrl.AcknowledgeAnomaly)
		}

		predictionRoutes := apiRoutes.Group("/predictions")
		{
			predictionRoutes.POST("/", ctrl.CreatePrediction)
			predictionRoutes.GET("/", ctrl.ListPredictions)
		}

		dashboardRoutes := apiRoutes.Group("/dashboards")
		{
			dashboardRoutes.POST("/", ctrl.CreateDashboard)
			dashboardRoutes.GET("/", ctrl.ListDashboards)
			dashboardRoutes.GET("/:id", ctrl.GetDashboardByID)
			dashboardRoutes.PUT("/:id", ctrl.UpdateDashboard)
			dashboardRoutes.DELETE("/:id", ctrl.DeleteDashboard)
			dashboardRoutes.GET("/:id/render", ctrl.RenderDashboard)
		}

		exportRoutes := apiRoutes.Group("/exports")
		{
			exportRoutes.POST("/", ctrl.CreateExport)
			exportRoutes.GET("/", ctrl.ListExports)
			exportRoutes.GET("/:id", ctrl.GetExportByID)
			exportRoutes.DELETE("/:id", ctrl.DeleteExport)
			exportRoutes.POST("/:id/run", ctrl.RunExport)
			exportRoutes.GET("/:id/executions", ctrl.ListExportExecutions)
		}
	}
	return r
}
