package middleware

import (
	"errors"
	"net/http"

	"stashbox/config"
	"stashbox/services"
	"stashbox/utils"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware resolves the session cookie to a user and stores the
// resolved identity on the request context.
func AuthMiddleware(users services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		secret, err := c.Cookie(config.AppConfig.Auth.CookieName)
		if err != nil {
			secret = ""
		}

		user, err := users.CurrentUser(c.Request.Context(), secret)
		if err != nil {
			// an unreachable session store is a 5xx, not a sign-out
			if errors.Is(err, services.ErrNoCurrentUser) {
				utils.Error(c, http.StatusUnauthorized, "not signed in")
			} else if appErr, ok := err.(*services.AppError); ok {
				utils.Error(c, appErr.HTTPCode, appErr.Message)
			} else {
				utils.Error(c, http.StatusInternalServerError, "internal error")
			}
			c.Abort()
			return
		}

		c.Set("user_id", user.ID)
		c.Set("user_email", user.Email)
		c.Set("account_id", user.AccountID)
		c.Set("session_secret", secret)
		c.Next()
	}
}
