package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"polygon/internal/memory"
)

// getOrCreateSession retrieves the session ID from the cookie or creates a new one.
func (app *App) getOrCreateSession(c *gin.Context) string {
	sessionID, err := c.Cookie(SessionCookieName)
	if err != nil || len(sessionID) < 10 {
		sessionID = uuid.NewString()
		c.SetSameSite(http.SameSiteStrictMode)
		c.SetCookie(SessionCookieName, sessionID, int(app.CookieMaxAge.Seconds()), "/", "", app.IsProduction, true)
		logInfo("Created new session: %s", sessionID)
	}
	return sessionID
}

// getSession returns the session's game, dealing a new one on first use.
func (app *App) getSession(ctx context.Context, sessionID string) *Session {
	app.SessionMutex.Lock()
	defer app.SessionMutex.Unlock()

	if sess, ok := app.Sessions[sessionID]; ok {
		sess.LastAccessTime = time.Now()
		return sess
	}

	game, err := memory.New(app.DefaultGridSize, app.gameOptions(sessionID))
	if err != nil {
		logWarn(withRequestID(ctx, "Invalid default grid size %d: %v, using %d"), app.DefaultGridSize, err, memory.DefaultSize)
		game, _ = memory.New(memory.DefaultSize, app.gameOptions(sessionID))
	}
	sess := &Session{ID: sessionID, Game: game, LastAccessTime: time.Now()}
	app.Sessions[sessionID] = sess
	logInfo(withRequestID(ctx, "New %dx%d game for session %s"), game.Size(), game.Size(), sessionID)
	return sess
}

func (app *App) gameOptions(sessionID string) memory.Options {
	return memory.Options{
		ResolveDelay: app.ResolveDelay,
		Scheduler:    app.Scheduler,
		Renderer:     app.Hub.Renderer(sessionID),
		Logf: func(format string, v ...any) {
			logInfo("[session=%s] "+format, append([]any{sessionID}, v...)...)
		},
	}
}

// cleanupIdleSessions evicts sessions not accessed within maxAge and stops
// their timers. It returns the number removed.
func (app *App) cleanupIdleSessions(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	app.SessionMutex.Lock()
	var expired []*Session
	for id, sess := range app.Sessions {
		if sess.LastAccessTime.Before(cutoff) {
			expired = append(expired, sess)
			delete(app.Sessions, id)
		}
	}
	app.SessionMutex.Unlock()

	for _, sess := range expired {
		sess.Game.Close()
		app.Hub.Drop(sess.ID)
	}
	if len(expired) > 0 {
		logInfo("Session cleanup completed: removed %d idle sessions", len(expired))
	}
	return len(expired)
}

// startSessionJanitor runs cleanupIdleSessions every interval until ctx ends.
func (app *App) startSessionJanitor(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				app.cleanupIdleSessions(app.SessionTimeout)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// sessionCount returns the number of live sessions.
func (app *App) sessionCount() int {
	app.SessionMutex.RLock()
	defer app.SessionMutex.RUnlock()
	return len(app.Sessions)
}
