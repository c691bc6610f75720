package middleware

import (
	"idea-review-platform/auth"
	"idea-review-platform/internal/domain"
	"idea-review-platform/internal/errors"
	"strings"

	"github.com/gin-gonic/gin"
)

type UserProvider interface {
	GetUserByID(id uint64) (*domain.User, error)
}

type RoleChecker interface {
	HasRole(userID uint64, role string) (bool, error)
}

type Auth struct {
	UserService UserProvider
	Roles       RoleChecker
}

func (m *Auth) AuthMiddleWare() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authHeader := ctx.GetHeader("Authorization")
		var token string
		tokenQuery := ctx.Query("token")

		if authHeader != "" {
			token = strings.TrimPrefix(authHeader, "Bearer ")
		} else if tokenQuery != "" {
			token = tokenQuery
		} else {
			ctx.Error(errors.Unauthorized("Authorization is not found!", nil))
			ctx.Abort()
			return
		}

		parsedToken, err := auth.VerifyJWT(token)
		if err != nil {
			ctx.Error(errors.Unauthorized("Invalid token!", err))
			ctx.Abort()
			return
		}

		userID, tokenVersion, err := auth.GetDataFromToken(parsedToken)
		if err != nil {
			ctx.Error(errors.Unauthorized("Invalid token!", err))
			ctx.Abort()
			return
		}

		user, err := m.UserService.GetUserByID(userID)
		if err != nil {
			ctx.Error(errors.Unauthorized("Invalid User ID!", err))
			ctx.Abort()
			return
		}

		// Check token version
		if user.TokenVersion != tokenVersion {
			ctx.Error(errors.Unauthorized("Invalid token version!", nil))
			ctx.Abort()
			return
		}

		ctx.Set("user_id", userID)
		ctx.Next()
	}
}

// RequireRole rejects the request up front when the caller lacks the role.
// Services re-check roles themselves; this keeps obviously unauthorized
// traffic away from the business layer.
func (m *Auth) RequireRole(role string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		userID := ctx.GetUint64("user_id")
		ok, err := m.Roles.HasRole(userID, role)
		if err != nil {
			ctx.Error(errors.Internal(err))
			ctx.Abort()
			return
		}
		if !ok {
			ctx.Error(errors.Unauthorized("You don't have permission for this action", nil))
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}
