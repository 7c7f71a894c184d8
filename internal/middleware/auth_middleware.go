package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"flexileave/internal/domain"
	"flexileave/internal/shared/apperror"
	"flexileave/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrTokenNotFound = apperror.New(apperror.CodeUnauthorized, "Token not found", http.StatusUnauthorized)
	ErrInvalidToken  = apperror.New(apperror.CodeInvalidToken, "Invalid token", http.StatusUnauthorized)
	ErrTokenExpired  = apperror.New(apperror.CodeTokenExpired, "Token has expired", http.StatusUnauthorized)
)

func abortWith(c *gin.Context, err *apperror.AppError) {
	response.Error(c, err.HTTPStatus, err.Code, err.Message, nil)
	c.Abort()
}

// AuthMiddleware verifies the HS256 token issued by the session service and
// exposes user_id and role on the gin context. Tokens are read from the
// Authorization header first, then the access_token cookie.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !found {
			tokenString = ""
		}

		if tokenString == "" {
			if cookie, err := c.Cookie("access_token"); err == nil {
				tokenString = cookie
			}
		}

		if tokenString == "" {
			abortWith(c, ErrTokenNotFound)
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(secret), nil
		})

		if err != nil || !token.Valid {
			if errors.Is(err, jwt.ErrTokenExpired) {
				abortWith(c, ErrTokenExpired)
				return
			}
			abortWith(c, ErrInvalidToken)
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			abortWith(c, ErrInvalidToken)
			return
		}

		rawUserID, ok := claims["user_id"].(string)
		if !ok || rawUserID == "" {
			response.Error(c, http.StatusUnauthorized, apperror.CodeInvalidToken, "User ID not found in token", nil)
			c.Abort()
			return
		}
		// stored owner ids are canonical, so ownership checks need the same form
		userID, err := uuid.Parse(rawUserID)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, apperror.CodeInvalidToken, "User ID in token is not a valid id", nil)
			c.Abort()
			return
		}

		rawRole, _ := claims["role"].(string)
		role, ok := domain.ParseRole(rawRole)
		if !ok {
			response.Error(c, http.StatusUnauthorized, apperror.CodeInvalidToken, "Role not recognised", nil)
			c.Abort()
			return
		}

		c.Set("user_id", userID.String())
		c.Set("role", role.String())

		c.Next()
	}
}
