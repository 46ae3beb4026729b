package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/openbingo/bingo-server/config"
	"github.com/openbingo/bingo-server/controllers"
	"github.com/openbingo/bingo-server/routes"
	"github.com/openbingo/bingo-server/services"
	appstore "github.com/openbingo/bingo-server/store"
	"github.com/openbingo/bingo-server/utils/clock"
	"github.com/openbingo/bingo-server/utils/rng"
)

// setupStore picks the Postgres store when DATABASE_URL is set, the
// in-memory store otherwise.
func setupStore(cfg config.Config) appstore.Store {
	if cfg.DatabaseURL != "" {
		st, err := appstore.NewDBStore(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("[FATAL] Failed to set up database store: %v", err)
		}
		log.Println("✅ Connected to Postgres")
		return st
	}
	log.Println("[INFO] DATABASE_URL not set, using in-memory store")
	return appstore.NewMemoryStore(clock.New())
}

// setupRouter initializes Gin routes and middleware
func setupRouter(h *controllers.Handler, orch *services.Orchestrator) *gin.Engine {
	r := gin.Default()

	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Setup REST routes
	routes.SetupRoutes(r, h)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now()})
	})

	// WebSocket endpoint
	r.GET("/ws", services.HandleWebSocket(orch))

	return r
}

func main() {
	cfg := config.Load()

	st := setupStore(cfg)
	randSource := rng.New()
	registry := services.NewRegistry()

	orch := services.NewOrchestrator(st, registry, randSource, services.Options{
		MaxPlayers:     cfg.MaxPlayersPerGame,
		StartCountdown: cfg.StartCountdown,
		CallInterval:   cfg.CallInterval,
		DefaultStake:   cfg.DefaultStakeCents,
		StartingWallet: cfg.StartingWalletCents,
		TickInterval:   cfg.TickInterval,
	})

	h := &controllers.Handler{
		Store:          st,
		Rng:            randSource,
		StartingWallet: cfg.StartingWalletCents,
	}

	router := setupRouter(h, orch)

	log.Printf("🚀 Bingo server starting on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("[FATAL] Failed to start server: %v", err)
	}
}
