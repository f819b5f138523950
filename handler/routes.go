package handler

import (
	mid "github.com/Mu-L/chartbrew/middleware"
	"github.com/gin-gonic/gin"
)

func InitAppRoutes(r *gin.Engine) {
	r.Use(mid.CustomCors())

	r.GET("/project/dashboard/:brewName", mid.SetLoggedInUserByToken(), GetPublicDashboardHandler)

	r.POST("/project/:project_id/share/policy", mid.SetLoggedInUserByToken(), mid.RequireProjectAdmin(), CreateSharePolicyHandler)
	r.POST("/project/:project_id/share/token", mid.SetLoggedInUserByToken(), mid.RequireProjectAdmin(), GenerateShareTokenHandler)
}
