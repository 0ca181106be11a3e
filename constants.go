package main

// Game identity
const (
	GameName  = "Polygon"
	PageTitle = "Polygon - Memory Matching Game"
)

// Session configuration constants
const (
	SessionCookieName = "session_id"
)

// Route constants
const (
	RouteHome      = "/"
	RouteNewGame   = "/new-game"
	RouteSelect    = "/select"
	RouteGameState = "/game-state"
	RouteAPIState  = "/api/state"
	RouteWebSocket = "/ws"
	RouteHealthz   = "/healthz"
)

// Websocket event types
const (
	EventSnapshot = "snapshot"
	EventGrid     = "grid"
	EventScore    = "score"
	EventTimer    = "timer"
	EventSummary  = "summary"
)

// Error message constants
const (
	ErrorInvalidSize = "Grid size must be 4, 6 or 8."
	ErrorNoSession   = "No session cookie."
	ErrorRateLimited = "Too many requests. Please slow down."
)

// Context key constants
const (
	requestIDKey contextKey = "request_id"
)
