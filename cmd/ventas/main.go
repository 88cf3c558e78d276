// cmd/ventas/main.go
package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ventas-service/internal/api/handlers"
	"ventas-service/internal/api/middleware"
	"ventas-service/internal/api/responses"
	"ventas-service/internal/config"
	"ventas-service/internal/core/ventas"
	"ventas-service/internal/source"
)

func main() {
	responses.InitLogger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Fallo al cargar la configuración: ", err)
	}

	ventasService := ventas.NewService(ventas.Params{
		TaxFactor:              cfg.Engine.TaxFactor,
		ParetoThreshold:        cfg.Engine.ParetoThreshold,
		ParetoGapFloor:         cfg.Engine.ParetoGapFloor,
		IncludeNegativeNegados: cfg.Engine.IncludeNegativeNegados,
		ReferenceYear:          cfg.Engine.ReferenceYear,
	})
	fetcher := source.NewClient(cfg.Sheets.CacheTTL())
	dashboardHandler := handlers.NewDashboardHandler(ventasService, fetcher, cfg)

	router := gin.Default()
	router.Use(middleware.Metrics())

	apiV1 := router.Group("/api/v1")
	{
		// Sin middleware de sesión -- el gateway se encarga de eso
		apiV1.POST("/dashboard", dashboardHandler.HandleDashboard)
		apiV1.GET("/dashboard/:mes", dashboardHandler.HandleDashboardMes)
		apiV1.POST("/dashboard/mtd", dashboardHandler.HandleMTD)
		apiV1.GET("/meses", dashboardHandler.HandleMeses)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP", "service": cfg.App.Name})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	log.Printf("🚀 Ventas Service (Go) iniciado y escuchando en %s", cfg.HTTP.Addr())
	if err := router.Run(cfg.HTTP.Addr()); err != nil {
		log.Fatal("Fallo al iniciar el servidor de ventas: ", err)
	}
}
