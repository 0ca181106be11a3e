package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"polygon/internal/memory"
	"polygon/internal/types"
)

// formValue reads key from the POST body, falling back to the query string.
func formValue(c *gin.Context, key string) string {
	if v, ok := c.GetPostForm(key); ok {
		return strings.TrimSpace(v)
	}
	return strings.TrimSpace(c.Query(key))
}

func isHTMX(c *gin.Context) bool {
	return c.GetHeader("HX-Request") == "true"
}

// render writes the game board fragment for htmx requests and the full page
// otherwise. A non-empty errMsg is also raised as an HX-Trigger event.
func (app *App) render(c *gin.Context, view types.GameSnapshot, errMsg string) {
	if errMsg != "" {
		payload := map[string]string{"server_error": errMsg}
		if b, jerr := json.Marshal(payload); jerr == nil {
			c.Header("HX-Trigger", string(b))
		} else {
			logWarn("Failed to marshal HX-Trigger payload: %v", jerr)
		}
	}
	data := gin.H{
		"game":  view,
		"sizes": memory.Sizes,
		"error": errMsg,
	}
	if isHTMX(c) {
		c.HTML(http.StatusOK, "game-content", data)
		return
	}
	data["title"] = PageTitle
	c.HTML(http.StatusOK, "index.html", data)
}

// homeHandler renders the main game page for the current session.
func (app *App) homeHandler(c *gin.Context) {
	sessionID := app.getOrCreateSession(c)
	sess := app.getSession(c.Request.Context(), sessionID)
	app.render(c, snapshotView(sess.Game.Snapshot()), "")
}

// newGameHandler deals a new grid. With a size value the grid side changes,
// otherwise the current side is kept.
func (app *App) newGameHandler(c *gin.Context) {
	ctx := c.Request.Context()
	sessionID := app.getOrCreateSession(c)
	sess := app.getSession(ctx, sessionID)

	var errMsg string
	if raw := formValue(c, "size"); raw != "" {
		size, err := parseGridSize(raw)
		if err == nil {
			err = sess.Game.Configure(size)
		}
		switch {
		case errors.Is(err, memory.ErrInvalidSize):
			logWarn(withRequestID(ctx, "Session %s requested unsupported grid size %q"), sessionID, raw)
			errMsg = ErrorInvalidSize
		case err != nil:
			logWarn(withRequestID(ctx, "Session %s sent unparsable grid size %q: %v"), sessionID, raw, err)
			errMsg = ErrorInvalidSize
		default:
			logInfo(withRequestID(ctx, "Session %s switched to %dx%d grid"), sessionID, size, size)
		}
	} else {
		sess.Game.Restart()
		logInfo(withRequestID(ctx, "Session %s restarted its game"), sessionID)
	}

	if isHTMX(c) || errMsg != "" {
		app.render(c, snapshotView(sess.Game.Snapshot()), errMsg)
		return
	}
	c.Redirect(http.StatusSeeOther, RouteHome)
}

// selectHandler reveals one card. Ignored clicks re-render the unchanged board.
func (app *App) selectHandler(c *gin.Context) {
	ctx := c.Request.Context()
	sessionID := app.getOrCreateSession(c)
	sess := app.getSession(ctx, sessionID)

	raw := formValue(c, "card")
	index, err := strconv.Atoi(raw)
	switch {
	case err != nil:
		logWarn(withRequestID(ctx, "Session %s sent unparsable card %q"), sessionID, raw)
	case !sess.Game.Select(index):
		logInfo(withRequestID(ctx, "Session %s click on card %d ignored"), sessionID, index)
	}

	app.render(c, snapshotView(sess.Game.Snapshot()), "")
}

// gameStateHandler renders the current game board as an HTML fragment.
func (app *App) gameStateHandler(c *gin.Context) {
	sessionID := app.getOrCreateSession(c)
	sess := app.getSession(c.Request.Context(), sessionID)
	c.HTML(http.StatusOK, "game-content", gin.H{
		"game":  snapshotView(sess.Game.Snapshot()),
		"sizes": memory.Sizes,
	})
}

// apiStateHandler returns the current game as JSON.
func (app *App) apiStateHandler(c *gin.Context) {
	sessionID := app.getOrCreateSession(c)
	sess := app.getSession(c.Request.Context(), sessionID)
	c.JSON(http.StatusOK, snapshotView(sess.Game.Snapshot()))
}

// healthzHandler returns a JSON health check with server stats.
func (app *App) healthzHandler(c *gin.Context) {
	uptime := time.Since(app.StartTime)
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"env":       map[bool]string{true: "production", false: "development"}[app.IsProduction],
		"sessions":  app.sessionCount(),
		"uptime":    formatUptime(uptime),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// parseGridSize validates a grid side from user input.
func parseGridSize(raw string) (int, error) {
	size, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, err
	}
	if !memory.ValidSize(size) {
		return 0, memory.ErrInvalidSize
	}
	return size, nil
}
