package auth

import (
	"net/http"
	"strings"

	"llm_queue/internal/handlers"
	"llm_queue/internal/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// AuthMiddleware проверяет валидность access токена
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, response.ErrorResponse{
				Code:   "NO_AUTH_HEADER",
				Detail: "Требуется авторизация",
			})
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			return handlers.AccessSecret, nil
		})

		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, response.ErrorResponse{
				Code:   "INVALID_TOKEN",
				Detail: "Неверный или просроченный токен",
			})
			c.Abort()
			return
		}

		// Отозванные через signout токены не принимаются до конца срока.
		if handlers.IsTokenRevoked(tokenString) {
			c.JSON(http.StatusUnauthorized, response.ErrorResponse{
				Code:   "TOKEN_REVOKED",
				Detail: "Токен отозван",
			})
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, response.ErrorResponse{
				Code:   "INVALID_TOKEN_CLAIMS",
				Detail: "Невозможно прочитать claims токена",
			})
			c.Abort()
			return
		}

		userID, ok := claims["user_id"].(float64)
		if !ok {
			c.JSON(http.StatusUnauthorized, response.ErrorResponse{
				Code:   "INVALID_USER_ID",
				Detail: "Невозможно извлечь user_id",
			})
			c.Abort()
			return
		}

		c.Set("userID", uint(userID))
		c.Next()
	}
}

// QueueSessionMiddleware проверяет JWT сессии очереди, выданный при
// подтверждении слота. Идентификатор записи кладётся в контекст как
// queueUserID.
func QueueSessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, response.ErrorResponse{
				Code:   "NO_AUTH_HEADER",
				Detail: "Требуется токен сессии очереди",
			})
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			return handlers.QueueTokenSecret, nil
		})

		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, response.ErrorResponse{
				Code:   "INVALID_TOKEN",
				Detail: "Неверный или просроченный токен сессии очереди",
			})
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, response.ErrorResponse{
				Code:   "INVALID_TOKEN_CLAIMS",
				Detail: "Невозможно прочитать claims токена",
			})
			c.Abort()
			return
		}

		sub, ok := claims["sub"].(string)
		if !ok || sub == "" {
			c.JSON(http.StatusUnauthorized, response.ErrorResponse{
				Code:   "INVALID_USER_ID",
				Detail: "Невозможно извлечь идентификатор участника",
			})
			c.Abort()
			return
		}

		c.Set("queueUserID", sub)
		c.Next()
	}
}
