package api

import "github.com/gin-gonic/gin"

func RegisterRoutes(r *gin.Engine, s *Server) {
	api := r.Group("/api")
	{
		api.GET("/health", health)
		api.GET("/qr", qrHandler)
		api.POST("/jobs", s.createJob)
		api.GET("/jobs/:id", s.getJob)
		api.DELETE("/jobs/:id", s.cancelJob)
		api.GET("/jobs/:id/document", s.jobDocument)
		api.GET("/jobs/:id/inserts/:key", s.jobInsert)
		api.GET("/jobs/:id/qr", s.jobQR)
	}
}
