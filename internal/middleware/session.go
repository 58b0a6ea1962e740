package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/examdesk/examdesk-backend/internal/model"
	"github.com/examdesk/examdesk-backend/internal/response"
	"github.com/examdesk/examdesk-backend/internal/service"
)

// CheckAccountSession re-validates the session behind a structurally valid
// JWT. The account must still be active (deactivation cuts access before the
// token expires), and examinee tokens must additionally carry the JTI of the
// account's single active session (which an admin reset or a replacement
// login invalidates).
func CheckAccountSession(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		if err := authService.ValidateAccountActive(c.Request.Context(), claims.AccountID); err != nil {
			response.AbortFail(c, http.StatusForbidden, response.ErrAccountInactive)
			return
		}

		if claims.Role == model.RoleExaminee {
			if err := authService.ValidateExamineeSession(c.Request.Context(), claims.AccountID, claims.ID); err != nil {
				response.AbortFail(c, http.StatusUnauthorized, response.ErrSessionInvalidated)
				return
			}
		}

		c.Next()
	}
}
