package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/aarogyam/aarogyam/internal/middleware"
	"github.com/aarogyam/aarogyam/internal/services"
	"github.com/aarogyam/aarogyam/internal/storage"
	"github.com/aarogyam/aarogyam/internal/utils"
	"github.com/aarogyam/aarogyam/internal/web"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const genericError = "Something went wrong. Please try again."

// wantsJSON is true for API and AJAX callers; everything else gets HTML.
func wantsJSON(c *gin.Context) bool {
	if strings.EqualFold(c.GetHeader("X-Requested-With"), "XMLHttpRequest") {
		return true
	}
	if strings.Contains(c.GetHeader("Accept"), "application/json") {
		return true
	}
	return c.ContentType() == "application/json"
}

// render adds the signed-in user and pending flashes to a page.
func (h *Handler) render(c *gin.Context, status int, name, title string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["Title"] = title
	user, _ := middleware.CurrentPrincipal(c)
	data["User"] = user
	data["Flash"] = h.popFlashes(c)
	c.HTML(status, name, data)
}

// show answers JSON callers with data and renders the page for browsers.
func (h *Handler) show(c *gin.Context, name, title string, data gin.H) {
	if wantsJSON(c) {
		utils.Success(c, title, data)
		return
	}
	h.render(c, http.StatusOK, name, title, data)
}

// done reports a successful change.
func (h *Handler) done(c *gin.Context, message, redirect string, data interface{}) {
	if wantsJSON(c) {
		utils.Success(c, message, data)
		return
	}
	if message != "" {
		h.setFlash(c, flashSuccess, message)
	}
	c.Redirect(http.StatusFound, redirect)
}

// fail maps err to a JSON error, an error page, or a flash and redirect.
func (h *Handler) fail(c *gin.Context, err error, redirect string) {
	status, msg := classify(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		h.logger.Error().Err(err).
			Str("request_id", middleware.GetRequestID(c)).
			Str("path", c.Request.URL.Path).
			Msg("request failed")
	}
	if wantsJSON(c) {
		utils.Error(c, status, msg)
		return
	}
	if redirect == "" || status == http.StatusForbidden || status == http.StatusNotFound || status >= http.StatusInternalServerError {
		h.errorPage(c, status, msg)
		return
	}
	h.setFlash(c, flashError, msg)
	c.Redirect(http.StatusFound, redirect)
}

func (h *Handler) errorPage(c *gin.Context, status int, msg string) {
	h.render(c, status, web.ErrorPage, http.StatusText(status), gin.H{"Status": status, "Message": msg})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrPastDate):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden, "You do not have permission to access this resource."
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound, "The requested item was not found."
	case errors.Is(err, services.ErrDuplicateAccount),
		errors.Is(err, services.ErrSlotUnavailable),
		errors.Is(err, services.ErrInvalidTransition):
		return http.StatusConflict, err.Error()
	}
	return http.StatusInternalServerError, genericError
}

func badRequest(msg string) error {
	return &services.ValidationError{Message: msg}
}

func bindError(err error) error {
	return badRequest(utils.FormatValidationError(err))
}

func idParam(c *gin.Context, name string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		return primitive.NilObjectID, badRequest("invalid " + name)
	}
	return id, nil
}

// userID is set by the auth middleware on every protected route.
func userID(c *gin.Context) primitive.ObjectID {
	id, _ := middleware.GetUserIDFromContext(c)
	return id
}

func firstUpload(form *multipart.Form, field string) storage.Upload {
	if form == nil || len(form.File[field]) == 0 {
		return storage.Upload{}
	}
	return storage.FromFileHeader(form.File[field][0])
}

func uploads(form *multipart.Form, field string) []storage.Upload {
	if form == nil {
		return nil
	}
	out := make([]storage.Upload, 0, len(form.File[field]))
	for _, fh := range form.File[field] {
		out = append(out, storage.FromFileHeader(fh))
	}
	return out
}

// multipartForm returns nil for requests that are not multipart.
func multipartForm(c *gin.Context) *multipart.Form {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		return nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil
	}
	return form
}
