package handlers

import (
	"errors"
	"net/http"

	"github.com/aarogyam/aarogyam/internal/middleware"
	"github.com/aarogyam/aarogyam/internal/models"
	"github.com/aarogyam/aarogyam/internal/services"
	"github.com/aarogyam/aarogyam/internal/storage"
	"github.com/aarogyam/aarogyam/internal/utils"
	"github.com/gin-gonic/gin"
)

var (
	genders    = []models.Gender{models.GenderMale, models.GenderFemale, models.GenderOther}
	bloodTypes = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}
)

// loginRequest accepts either a username or an email in Username.
type loginRequest struct {
	Username string `form:"username" json:"username"`
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

func (h *Handler) LoginPage(c *gin.Context) {
	if p, ok := middleware.CurrentPrincipal(c); ok {
		c.Redirect(http.StatusFound, p.Role.DashboardPath())
		return
	}
	h.render(c, http.StatusOK, "auth/login", "Log in", gin.H{"Login": c.Query("login")})
}

func (h *Handler) SignupPage(c *gin.Context) {
	h.render(c, http.StatusOK, "auth/signup", "Sign up", nil)
}

func (h *Handler) DoctorSignupPage(c *gin.Context) {
	h.render(c, http.StatusOK, "auth/signup_doctor", "Doctor sign up", nil)
}

func (h *Handler) PatientSignupPage(c *gin.Context) {
	h.render(c, http.StatusOK, "auth/signup_patient", "Patient sign up", gin.H{
		"Genders":    genders,
		"BloodTypes": bloodTypes,
	})
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		h.fail(c, bindError(err), "/auth/login")
		return
	}
	login := req.Username
	if login == "" {
		login = req.Email
	}

	p, err := h.auth.Authenticate(c.Request.Context(), login, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			h.logger.Info().Str("login", login).Msg("failed login")
		}
		h.fail(c, err, "/auth/login")
		return
	}
	h.startSession(c, http.StatusOK, p, "Welcome back!")
}

func (h *Handler) SignupDoctor(c *gin.Context) {
	var in services.DoctorSignup
	if err := c.ShouldBind(&in); err != nil {
		h.fail(c, bindError(err), "/auth/signup/doctor")
		return
	}

	ctx := c.Request.Context()
	if fh, err := c.FormFile("profile"); err == nil {
		url, err := h.uploader.SaveImage(ctx, "profiles", storage.FromFileHeader(fh))
		if err != nil {
			h.fail(c, badRequest("Profile picture: "+err.Error()), "/auth/signup/doctor")
			return
		}
		in.Profile = url
	}

	d, err := h.auth.RegisterDoctor(ctx, in)
	if err != nil {
		if in.Profile != "" {
			_ = h.uploader.Remove(ctx, in.Profile)
		}
		h.fail(c, err, "/auth/signup/doctor")
		return
	}
	h.startSession(c, http.StatusCreated, d.Principal(), "Welcome to Aarogyam!")
}

func (h *Handler) SignupPatient(c *gin.Context) {
	var in services.PatientSignup
	if err := c.ShouldBind(&in); err != nil {
		h.fail(c, bindError(err), "/auth/signup/patient")
		return
	}
	p, err := h.auth.RegisterPatient(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err, "/auth/signup/patient")
		return
	}
	h.startSession(c, http.StatusCreated, p.Principal(), "Welcome to Aarogyam!")
}

func (h *Handler) Logout(c *gin.Context) {
	h.setSessionCookie(c, "", -1)
	if wantsJSON(c) {
		utils.Success(c, "Logged out", nil)
		return
	}
	h.setFlash(c, flashSuccess, "Logged out")
	c.Redirect(http.StatusFound, "/auth/login")
}

// startSession signs a token, stores it in the session cookie and sends the
// user to their dashboard.
func (h *Handler) startSession(c *gin.Context, status int, p *models.Principal, message string) {
	token, err := h.auth.IssueToken(p)
	if err != nil {
		h.fail(c, err, "")
		return
	}
	h.setSessionCookie(c, token, int(h.auth.TTL().Seconds()))

	redirect := p.Role.DashboardPath()
	if wantsJSON(c) {
		data := gin.H{"token": token, "role": p.Role, "redirect": redirect}
		if status == http.StatusCreated {
			utils.Created(c, message, data)
			return
		}
		utils.Success(c, message, data)
		return
	}
	h.setFlash(c, flashSuccess, message)
	c.Redirect(http.StatusFound, redirect)
}

func (h *Handler) setSessionCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, token, maxAge, "/", "", h.cookieSecure, true)
}

// RequireLogin answers requests that reach a protected route anonymously.
func (h *Handler) RequireLogin(c *gin.Context) {
	const msg = "Please log in to access this page."
	if wantsJSON(c) {
		utils.Unauthorized(c, msg)
		return
	}
	h.setFlash(c, flashInfo, msg)
	c.Redirect(http.StatusFound, "/auth/login")
}

// Denied answers signed-in users whose role may not use the route.
func (h *Handler) Denied(c *gin.Context) {
	h.fail(c, services.ErrForbidden, "")
}
