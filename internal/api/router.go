package api

import (
	"ucmr-pipeline/internal/api/handler"
	"ucmr-pipeline/pkg/router"

	httpSwagger "github.com/swaggo/http-swagger"

	_ "ucmr-pipeline/docs" // swagger document registration
)

// NewRouter builds the job API router with swagger UI mounted.
func NewRouter() *router.Router {
	r := router.New()

	r.POST("/api/v1/jobs", handler.CreateJob)
	r.GET("/api/v1/jobs", handler.ListJobs)
	r.GET("/api/v1/jobs/*", handler.GetJob)
	r.GET("/api/v1/download/*", handler.DownloadOutput)

	r.GET("/swagger/*", router.HandlerFunc(httpSwagger.WrapHandler))

	return r
}
