package handlers

import (
	"errors"
	"net/http"

	"remindme/internal/auth"
	dom "remindme/internal/domain"
	"remindme/internal/dto"
	"remindme/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	msgEmailTaken         = "An account with this email already exists."
	msgInvalidCredentials = "Invalid email or password."
)

// AuthHandler handles signup, login, logout and the session check.
type AuthHandler struct {
	sessions     *auth.Store
	userSvc      *service.UserService
	secureCookie bool
}

// NewAuthHandler returns a new AuthHandler.
func NewAuthHandler(sessions *auth.Store, userSvc *service.UserService, secureCookie bool) *AuthHandler {
	return &AuthHandler{sessions: sessions, userSvc: userSvc, secureCookie: secureCookie}
}

// Signup godoc
// @Summary      Create an account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SignupRequest  true  "Signup form"
// @Success      201   {object}  dto.SessionResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := h.userSvc.Signup(c.Request.Context(), req.Email, req.Password, req.ConfirmPassword)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": msgEmailTaken})
			return
		}
		writeError(c, err)
		return
	}
	h.startSession(c, http.StatusCreated, user)
}

// Login godoc
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "Credentials"
// @Success      200   {object}  dto.SessionResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := h.userSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": msgInvalidCredentials})
			return
		}
		writeError(c, err)
		return
	}
	h.startSession(c, http.StatusOK, user)
}

func (h *AuthHandler) startSession(c *gin.Context, status int, user dom.User) {
	sessionID, err := h.sessions.Create(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.SetCookie(auth.SessionCookieName, sessionID, int(h.sessions.TTL().Seconds()), "/", "", h.secureCookie, true)
	c.JSON(status, dto.SessionResponse{OK: true, Token: sessionID, User: userToResponse(user)})
}

// Logout godoc
// @Summary      Logout
// @Tags         auth
// @Success      204
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if sessionID := auth.SessionID(c); sessionID != "" {
		_ = h.sessions.Delete(c.Request.Context(), sessionID)
	}
	c.SetCookie(auth.SessionCookieName, "", -1, "/", "", h.secureCookie, true)
	c.Status(http.StatusNoContent)
}

// Session godoc
// @Summary      Report the signed-in user, if any
// @Tags         auth
// @Produce      json
// @Success      200  {object}  dto.SessionStatusResponse
// @Failure      500  {object}  map[string]string
// @Router       /auth/session [get]
func (h *AuthHandler) Session(c *gin.Context) {
	sessionID := auth.SessionID(c)
	if sessionID == "" {
		c.JSON(http.StatusOK, dto.SessionStatusResponse{})
		return
	}
	userID, ok, err := h.sessions.GetUserID(c.Request.Context(), sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !ok {
		c.JSON(http.StatusOK, dto.SessionStatusResponse{})
		return
	}
	user, err := h.userSvc.Profile(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusOK, dto.SessionStatusResponse{})
			return
		}
		writeError(c, err)
		return
	}
	resp := userToResponse(user)
	c.JSON(http.StatusOK, dto.SessionStatusResponse{SignedIn: true, User: &resp})
}

// Profile godoc
// @Summary      Current user's profile
// @Tags         profile
// @Produce      json
// @Security     CookieAuth
// @Success      200  {object}  dto.ProfileResponse
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /profile [get]
func (h *AuthHandler) Profile(c *gin.Context) {
	user, err := h.userSvc.Profile(c.Request.Context(), auth.UserIDFromContext(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ProfileResponse{ID: user.ID, Email: user.Email, MemberSince: user.CreatedAt})
}
