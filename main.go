package main

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	ginGzip "github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"golang.org/x/time/rate"

	"polygon/internal/memory"
)

func main() {
	_ = godotenv.Load()

	app := newAppFromEnv()
	logInfo("Starting %s in %s mode", GameName, map[bool]string{true: "production", false: "development"}[app.IsProduction])

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	app.startSessionJanitor(ctx, app.CleanupInterval)

	templates, static := "templates/*.html", "./static"
	if app.IsProduction && dirExists("dist") {
		logInfo("Serving assets from dist/ directory")
		templates, static = "dist/templates/*.html", "./dist/static"
	} else {
		logInfo("Serving development assets from source directories")
	}

	router := app.setupRouter(templates, static)
	startServer(router)
}

// newAppFromEnv builds an App from environment variables.
func newAppFromEnv() *App {
	app := &App{
		IsProduction:    os.Getenv("GIN_MODE") == "release" || os.Getenv("ENV") == "production",
		StartTime:       time.Now(),
		SessionTimeout:  getEnvDuration("SESSION_TIMEOUT", 2*time.Hour),
		CookieMaxAge:    getEnvDuration("COOKIE_MAX_AGE", 2*time.Hour),
		StaticCacheAge:  getEnvDuration("STATIC_CACHE_AGE", 5*time.Minute),
		CleanupInterval: getEnvDuration("CLEANUP_INTERVAL", 10*time.Minute),
		ResolveDelay:    getEnvDuration("RESOLVE_DELAY", memory.ResolveDelay),
		RateLimitRPS:    getEnvInt("RATE_LIMIT_RPS", 10),
		RateLimitBurst:  getEnvInt("RATE_LIMIT_BURST", 20),
		DefaultGridSize: getEnvInt("DEFAULT_GRID_SIZE", memory.DefaultSize),
		Sessions:        make(map[string]*Session),
		LimiterMap:      make(map[string]*rate.Limiter),
		Hub:             NewHub(),
		Scheduler:       memory.RealScheduler{},
	}
	if !memory.ValidSize(app.DefaultGridSize) {
		logWarn("Invalid DEFAULT_GRID_SIZE %d, using %d", app.DefaultGridSize, memory.DefaultSize)
		app.DefaultGridSize = memory.DefaultSize
	}
	if app.CleanupInterval <= 0 {
		app.CleanupInterval = 10 * time.Minute
	}
	return app
}

// setupRouter wires middleware, templates and routes.
func (app *App) setupRouter(templatesGlob, staticDir string) *gin.Engine {
	router := gin.Default()

	router.Use(requestIDMiddleware())
	router.Use(ginGzip.Gzip(ginGzip.DefaultCompression,
		ginGzip.WithExcludedExtensions([]string{".svg", ".ico", ".png", ".jpg", ".jpeg", ".gif"}),
		ginGzip.WithExcludedPaths([]string{"/static/fonts", RouteWebSocket})))
	router.Use(app.cacheHeadersMiddleware())

	if err := router.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logWarn("Failed to set trusted proxies: %v", err)
	}

	router.SetFuncMap(template.FuncMap{
		"cardClasses": cardClasses,
	})
	router.LoadHTMLGlob(templatesGlob)
	if staticDir != "" {
		router.Static("/static", staticDir)
	}

	router.GET(RouteHome, app.homeHandler)
	router.GET(RouteNewGame, app.newGameHandler)
	router.POST(RouteNewGame, app.rateLimitMiddleware(), app.newGameHandler)
	router.POST(RouteSelect, app.rateLimitMiddleware(), app.selectHandler)
	router.GET(RouteGameState, app.gameStateHandler)
	router.GET(RouteAPIState, app.apiStateHandler)
	router.GET(RouteWebSocket, app.wsHandler)
	router.GET(RouteHealthz, app.healthzHandler)

	return router
}

func startServer(router *gin.Engine) {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	idleConnsClosed := make(chan struct{})
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, syscall.SIGINT, syscall.SIGTERM)
		<-sigint
		logInfo("Shutdown signal received, shutting down server gracefully...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logWarn("HTTP server Shutdown: %v", err)
		}
		close(idleConnsClosed)
	}()

	logInfo("Server starting on http://localhost:%s", port)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		logFatal("Server failed to start: %v", err)
	}
	<-idleConnsClosed
	logInfo("Server shutdown complete")
}
