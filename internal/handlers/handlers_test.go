package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aarogyam/aarogyam/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{badRequest("bad"), http.StatusBadRequest},
		{services.ErrPastDate, http.StatusBadRequest},
		{services.ErrInvalidCredentials, http.StatusUnauthorized},
		{services.ErrForbidden, http.StatusForbidden},
		{services.ErrNotFound, http.StatusNotFound},
		{services.ErrDuplicateAccount, http.StatusConflict},
		{services.ErrSlotUnavailable, http.StatusConflict},
		{fmt.Errorf("%w: pending to pending", services.ErrInvalidTransition), http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		status, msg := classify(tt.err)
		assert.Equal(t, tt.status, status, tt.err.Error())
		assert.NotEmpty(t, msg)
	}

	_, msg := classify(errors.New("mongo: connection refused"))
	assert.Equal(t, genericError, msg, "internal details stay hidden")
}

func TestWantsJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := map[string]struct {
		header, value string
		want          bool
	}{
		"browser":   {"Accept", "text/html,application/xhtml+xml", false},
		"api":       {"Accept", "application/json", true},
		"ajax":      {"X-Requested-With", "XMLHttpRequest", true},
		"json body": {"Content-Type", "application/json; charset=utf-8", true},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
			c.Request.Header.Set(tc.header, tc.value)
			assert.Equal(t, tc.want, wantsJSON(c))
		})
	}
}

func TestFlashRoundTrip(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewHandler(Deps{Logger: zerolog.Nop()})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
	h.setFlash(c, flashSuccess, "Saved")
	h.setFlash(c, flashError, "But not everything")

	var set *http.Cookie
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == flashCookie {
			set = ck
		}
	}
	require.NotNil(t, set)

	rec = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.AddCookie(&http.Cookie{Name: flashCookie, Value: set.Value})
	flashes := h.popFlashes(c)
	require.Len(t, flashes, 2)
	assert.Equal(t, Flash{Kind: flashSuccess, Message: "Saved"}, flashes[0])
	assert.Equal(t, flashError, flashes[1].Kind)
	assert.Contains(t, rec.Header().Get("Set-Cookie"), flashCookie+"=;", "cookie cleared after reading")

	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.AddCookie(&http.Cookie{Name: flashCookie, Value: "%%%"})
	assert.Nil(t, h.popFlashes(c))
}
