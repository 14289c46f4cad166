package handler

import (
	"errors"
	"net/http"

	"Aurora_Blog/internal/middleware"
	"Aurora_Blog/internal/service"
	"Aurora_Blog/pkg/logger"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type UserHandler interface {
	Register(c *gin.Context)
	Login(c *gin.Context)
	GetProfile(c *gin.Context)
}

type userHandler struct {
	UserService service.UserService
}

func NewUserHandler(userService service.UserService) UserHandler {
	return &userHandler{UserService: userService}
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// 注册：1、绑定并校验请求 2、service层注册 3、返回新用户摘要
func (h *userHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Log.WithError(err).Error("注册请求参数解析失败")
		sendErrorResponse(c, http.StatusBadRequest, "无效的参数")
		return
	}

	logCtx := logger.Log.WithField("email", req.Email)
	logCtx.Info("开始处理用户注册请求")

	user, err := h.UserService.Register(req.Name, req.Email, req.Password)
	if err != nil {
		logCtx.WithError(err).Error("用户注册业务逻辑处理失败")
		sendErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	logCtx.WithField("user_id", user.ID).Info("用户注册成功")

	c.JSON(http.StatusOK, gin.H{
		"message": "注册成功",
		"data": gin.H{
			"id":   user.ID,
			"name": user.Name,
		},
	})
}

// 登录：1、绑定请求 2、service层验证并签发token
func (h *userHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Log.WithError(err).Error("登录请求参数解析失败")
		sendErrorResponse(c, http.StatusBadRequest, "无效的参数")
		return
	}

	logCtx := logger.Log.WithField("email", req.Email)
	token, err := h.UserService.Login(req.Email, req.Password)
	if err != nil {
		logCtx.WithError(err).Error("用户登录业务逻辑处理失败")
		// 模糊的错误提示，更安全
		sendErrorResponse(c, http.StatusUnauthorized, "邮箱或密码错误")
		return
	}
	logCtx.Info("用户登录成功")

	c.JSON(http.StatusOK, gin.H{
		"message": "登录成功",
		"data": gin.H{
			"token": token,
		},
	})
}

// 获取当前登录用户信息：claims只拿ID，资料按ID回查数据库
// 这样改完昵称或头像后不用重新签发token
func (h *userHandler) GetProfile(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		sendErrorResponse(c, http.StatusUnauthorized, "用户未认证")
		return
	}

	user, err := h.UserService.GetProfile(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			sendErrorResponse(c, http.StatusNotFound, "用户不存在")
			return
		}
		logger.Log.WithError(err).WithField("user_id", userID).Error("获取用户信息失败")
		sendErrorResponse(c, http.StatusInternalServerError, "获取用户信息失败")
		return
	}

	email := ""
	if user.Email != nil {
		email = *user.Email
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "成功获取用户信息",
		"data": gin.H{
			"user_id":  user.ID,
			"username": user.Name,
			"role":     user.Role,
			"image":    user.Image,
			"email":    email,
		},
	})
}
