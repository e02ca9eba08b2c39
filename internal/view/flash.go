package view

import (
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
)

const (
	flashSessionName = "flash-session"
	flashKeySuccess  = "success"
	flashKeyError    = "error"
)

// FlashData carries one-shot messages from a redirecting handler to the next
// rendered page.
type FlashData struct {
	Success []string
	Error   []string
}

// setFlash sets a flash message in the session.
func setFlash(c echo.Context, key, message string) {
	sess, _ := session.Get(flashSessionName, c)
	sess.AddFlash(message, key)
	_ = sess.Save(c.Request(), c.Response())
}

// SetFlashSuccess sets a success flash message.
func SetFlashSuccess(c echo.Context, message string) {
	setFlash(c, flashKeySuccess, message)
}

// SetFlashError sets an error flash message.
func SetFlashError(c echo.Context, message string) {
	setFlash(c, flashKeyError, message)
}

// GetFlashData retrieves and clears flash messages from the session.
func GetFlashData(c echo.Context) FlashData {
	var data FlashData

	sess, _ := session.Get(flashSessionName, c)

	// Flashes() retrieves and clears; save persists the clearing.
	successFlashes := sess.Flashes(flashKeySuccess)
	errorFlashes := sess.Flashes(flashKeyError)

	for _, f := range successFlashes {
		if s, ok := f.(string); ok {
			data.Success = append(data.Success, s)
		}
	}
	for _, f := range errorFlashes {
		if s, ok := f.(string); ok {
			data.Error = append(data.Error, s)
		}
	}

	if len(successFlashes) > 0 || len(errorFlashes) > 0 {
		_ = sess.Save(c.Request(), c.Response())
	}
	return data
}
