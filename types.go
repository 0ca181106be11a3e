package main

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"polygon/internal/memory"
)

type contextKey string

// App holds server configuration and all per-session state.
type App struct {
	IsProduction    bool
	StartTime       time.Time
	SessionTimeout  time.Duration
	CookieMaxAge    time.Duration
	StaticCacheAge  time.Duration
	CleanupInterval time.Duration
	ResolveDelay    time.Duration
	RateLimitRPS    int
	RateLimitBurst  int
	DefaultGridSize int

	Sessions     map[string]*Session
	SessionMutex sync.RWMutex

	LimiterMap   map[string]*rate.Limiter
	LimiterMutex sync.Mutex

	Hub       *Hub
	Scheduler memory.Scheduler
}

// Session is one browser's game.
type Session struct {
	ID             string
	Game           *memory.Game
	LastAccessTime time.Time // guarded by App.SessionMutex
}
