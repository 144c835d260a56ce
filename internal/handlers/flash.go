package handlers

import (
	"encoding/base64"
	"encoding/json"

	"github.com/gin-gonic/gin"
)

const (
	flashCookie = "aarogyam_flash"
	flashKey    = "flash"

	flashSuccess = "success"
	flashError   = "error"
	flashInfo    = "info"
)

// Flash is a one-time message shown on the next rendered page.
type Flash struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func (h *Handler) setFlash(c *gin.Context, kind, message string) {
	var pending []Flash
	if v, ok := c.Get(flashKey); ok {
		pending, _ = v.([]Flash)
	}
	pending = append(pending, Flash{Kind: kind, Message: message})
	c.Set(flashKey, pending)

	raw, err := json.Marshal(pending)
	if err != nil {
		return
	}
	c.SetCookie(flashCookie, base64.RawURLEncoding.EncodeToString(raw), 60, "/", "", h.cookieSecure, true)
}

// popFlashes returns and clears the flashes carried by the request cookie.
func (h *Handler) popFlashes(c *gin.Context) []Flash {
	v, err := c.Cookie(flashCookie)
	if err != nil || v == "" {
		return nil
	}
	c.SetCookie(flashCookie, "", -1, "/", "", h.cookieSecure, true)
	raw, err := base64.RawURLEncoding.DecodeString(v)
	if err != nil {
		return nil
	}
	var out []Flash
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}
