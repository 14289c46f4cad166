package middleware

import (
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// parseToken 校验"Bearer [token]"格式的授权头，返回claims
func parseToken(authHeader string) (jwt.MapClaims, error) {
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, errors.New("授权令牌格式不正确")
	}

	secretKey := []byte(os.Getenv("JWT_SECRET_KEY"))
	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
		// 确保签名方法是对称加密族
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("非预期的签名方法")
		}
		return secretKey, nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("无效的授权令牌")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("无效的授权令牌")
	}
	return claims, nil
}

// setClaims 把后续handler要用的用户信息放进Context
// jwt.MapClaims里的数字会被解析成float64，取的时候要注意转换
func setClaims(c *gin.Context, claims jwt.MapClaims) {
	c.Set("userID", claims["user_id"])
	c.Set("username", claims["username"])
	if role, ok := claims["role"].(string); ok {
		c.Set("role", role)
	}
}

// AuthMiddleware 强制认证：没有令牌或令牌无效直接401
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "请求未包含授权令牌"})
			return
		}
		claims, err := parseToken(authHeader)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuthMiddleware 可选认证：评论的读写对游客开放，
// 没带令牌照常放行（匿名身份），带了就必须有效
func OptionalAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}
		claims, err := parseToken(authHeader)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}

// RequireRole 统一的角色守卫，挂在admin路由组上
// 对外只给一个模糊的403，不解释具体原因
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		current, exists := c.Get("role")
		if !exists || current != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "没有权限执行该操作"})
			return
		}
		c.Next()
	}
}

// IsAdmin 从Context读角色判断是否管理员，给可选认证的handler用
func IsAdmin(c *gin.Context) bool {
	role, exists := c.Get("role")
	return exists && role == "admin"
}

// CurrentUserID 从Context取认证用户ID，匿名请求返回(0, false)
func CurrentUserID(c *gin.Context) (uint64, bool) {
	v, exists := c.Get("userID")
	if !exists {
		return 0, false
	}
	// jwt中间件放进来的是float64
	f, ok := v.(float64)
	if !ok {
		return 0, false
	}
	return uint64(f), true
}
