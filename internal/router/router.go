package router

import (
	"net/http"

	"Aurora_Blog/internal/handler"
	"Aurora_Blog/internal/middleware"
	"Aurora_Blog/internal/model"

	"github.com/gin-gonic/gin"
)

func SetupRouter(userHandler handler.UserHandler, commentHandler handler.CommentHandler, adminHandler handler.AdminCommentHandler) *gin.Engine {
	r := gin.Default()
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
	apiV1 := r.Group("/api/v1")
	{
		// 评论读写对游客开放，可选认证：带token则解析出身份和角色
		comments := apiV1.Group("/comments")
		comments.Use(middleware.OptionalAuthMiddleware())
		{
			comments.GET("", commentHandler.GetComments)
			comments.POST("", commentHandler.CreateComment)
		}

		userGroup := apiV1.Group("/users")
		{
			userGroup.POST("/register", userHandler.Register)
			userGroup.POST("/login", userHandler.Login)
			userGroup.GET("/profile", middleware.AuthMiddleware(), userHandler.GetProfile)
		}

		// 后台路由组统一挂认证+角色守卫，端点里不再做任何权限判断
		admin := apiV1.Group("/admin")
		admin.Use(middleware.AuthMiddleware(), middleware.RequireRole(model.RoleAdmin))
		{
			admin.GET("/comments", adminHandler.ListComments)
			admin.PUT("/comments/:comment_id/approve", adminHandler.ApproveComment)
			admin.PUT("/comments/:comment_id/reject", adminHandler.RejectComment)

			admin.GET("/sensitive-words", adminHandler.ListSensitiveWords)
			admin.POST("/sensitive-words", adminHandler.AddSensitiveWord)
			admin.DELETE("/sensitive-words/:word", adminHandler.RemoveSensitiveWord)
		}
	}

	return r
}
