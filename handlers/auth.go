package handlers

import (
	"errors"
	"net/http"

	"stashbox/config"
	"stashbox/services"
	"stashbox/utils"

	"github.com/gin-gonic/gin"
)

type SignUpRequest struct {
	FullName string `json:"full_name" binding:"required,min=1,max=100"`
	Email    string `json:"email" binding:"required,email"`
}

type SignInRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type VerifyOTPRequest struct {
	AccountID string `json:"account_id" binding:"required"`
	Code      string `json:"code" binding:"required,len=6"`
}

func setSessionCookie(c *gin.Context, secret string, maxAge int) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(config.AppConfig.Auth.CookieName, secret, maxAge, "/", "", true, true)
}

func SignUp(c *gin.Context) {
	var req SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	out, err := getServices().User.CreateAccount(c.Request.Context(), services.CreateAccountInput{
		FullName: req.FullName,
		Email:    req.Email,
	})
	if respondServiceError(c, err) {
		return
	}

	utils.Success(c, out)
}

func SignIn(c *gin.Context) {
	var req SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	out, err := getServices().User.SignIn(c.Request.Context(), req.Email)
	if respondServiceError(c, err) {
		return
	}

	utils.Success(c, out)
}

// VerifyOTP exchanges the emailed passcode for a session. The session
// secret travels only in the cookie, never in the response body.
func VerifyOTP(c *gin.Context) {
	var req VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	secret, err := getServices().User.VerifyOTP(c.Request.Context(), req.AccountID, req.Code)
	if respondServiceError(c, err) {
		return
	}

	setSessionCookie(c, secret, config.AppConfig.Auth.SessionExpireHour*3600)
	utils.Success(c, gin.H{"account_id": req.AccountID})
}

// SignOut invalidates the session if one is present, then always clears
// the cookie and redirects to the sign-in page, even when invalidation
// fails.
func SignOut(c *gin.Context) {
	secret, err := c.Cookie(config.AppConfig.Auth.CookieName)
	if err == nil && secret != "" {
		// best effort, the redirect happens regardless
		_ = getServices().User.SignOut(c.Request.Context(), secret)
	}

	setSessionCookie(c, "", -1)
	c.Redirect(http.StatusSeeOther, "/sign-in")
}

func Me(c *gin.Context) {
	secret := c.GetString("session_secret")

	user, err := getServices().User.CurrentUser(c.Request.Context(), secret)
	if err != nil {
		if errors.Is(err, services.ErrNoCurrentUser) {
			utils.Error(c, http.StatusUnauthorized, "not signed in")
			return
		}
		respondServiceError(c, err)
		return
	}

	utils.Success(c, gin.H{
		"account_id": user.AccountID,
		"full_name":  user.FullName,
		"email":      user.Email,
		"avatar":     user.Avatar,
		"created_at": user.CreatedAt,
	})
}
