package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/boutell/sassypants/internal/usecase"
)

// AuthHandler exposes the account lifecycle endpoints: signup, confirmation,
// password reset, and login.
type AuthHandler struct {
	engine *usecase.LifecycleEngine
}

func NewAuthHandler(engine *usecase.LifecycleEngine) *AuthHandler {
	return &AuthHandler{engine: engine}
}

// RegisterRoutes binds the lifecycle endpoints.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/signup", h.Signup)
	r.GET("/confirm/:code", h.Confirm)
	r.POST("/reset", h.RequestReset)
	r.GET("/reset/:code", h.ValidateReset)
	r.POST("/reset/complete", h.CompleteReset)
	r.POST("/login", h.Login)
}

// Signup godoc
// @Summary Sign up for a new account
// @Description Creates an unconfirmed account and emails a confirmation link.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body SignupRequest true "Signup request"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid signup payload"))
		return
	}

	// The engine reports success for duplicate emails too, so this response
	// never discloses whether an account already exists.
	err := h.engine.SignUp(c.Request.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidInput, Status: http.StatusBadRequest, Message: "invalid email, name, or password"},
		}, http.StatusInternalServerError, "failed to sign up")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "check your email to confirm your account"})
}

// Confirm godoc
// @Summary Confirm a pending account
// @Description Redeems a confirmation code from the signup email.
// @Tags Auth
// @Produce json
// @Param code path string true "Confirmation code"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/confirm/{code} [get]
func (h *AuthHandler) Confirm(c *gin.Context) {
	err := h.engine.Confirm(c.Request.Context(), c.Param("code"))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrConfirmationFailed, Status: http.StatusBadRequest, Message: "confirmation code is invalid or has expired"},
		}, http.StatusInternalServerError, "failed to confirm account")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "account confirmed"})
}

// RequestReset godoc
// @Summary Request a password reset
// @Description Emails a reset link if an account with the given email exists.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body ResetRequest true "Reset request"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/reset [post]
func (h *AuthHandler) RequestReset(c *gin.Context) {
	var req ResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid reset payload"))
		return
	}

	err := h.engine.RequestReset(c.Request.Context(), req.Email)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidInput, Status: http.StatusBadRequest, Message: "invalid email"},
		}, http.StatusInternalServerError, "failed to request reset")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "if that account exists, a reset email is on its way"})
}

// ValidateReset godoc
// @Summary Check a password reset code
// @Description Verifies that a reset code exists and has not expired, so the client can show the new-password form.
// @Tags Auth
// @Produce json
// @Param code path string true "Reset code"
// @Success 200 {object} ResetValidResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/reset/{code} [get]
func (h *AuthHandler) ValidateReset(c *gin.Context) {
	account, err := h.engine.ValidateResetCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrResetFailed, Status: http.StatusBadRequest, Message: "reset code is invalid or has expired"},
		}, http.StatusInternalServerError, "failed to validate reset code")
		return
	}

	c.JSON(http.StatusOK, ResetValidResponse{Valid: true, Email: account.Email})
}

// CompleteReset godoc
// @Summary Complete a password reset
// @Description Redeems a reset code and installs the new password.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body ResetCompleteRequest true "Reset completion request"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/reset/complete [post]
func (h *AuthHandler) CompleteReset(c *gin.Context) {
	var req ResetCompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid reset payload"))
		return
	}

	err := h.engine.CompleteReset(c.Request.Context(), req.Code, req.Password)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrResetFailed, Status: http.StatusBadRequest, Message: "reset code is invalid or has expired"},
			{Err: usecase.ErrInvalidInput, Status: http.StatusBadRequest, Message: "invalid password"},
		}, http.StatusInternalServerError, "failed to reset password")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "password updated"})
}

// Login godoc
// @Summary Log in to a confirmed account
// @Description Authenticates email and password against a confirmed account.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login request"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid login payload"))
		return
	}

	account, err := h.engine.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidInput, Status: http.StatusBadRequest, Message: "invalid email or password"},
			{Err: usecase.ErrLoginFailed, Status: http.StatusUnauthorized, Message: "email or password is incorrect"},
		}, http.StatusInternalServerError, "failed to log in")
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Account: AccountSummary{
			ID:          account.ID,
			Email:       account.Email,
			Name:        account.Name,
			ConfirmedAt: account.ConfirmedAt,
			CreatedAt:   account.CreatedAt,
		},
	})
}
