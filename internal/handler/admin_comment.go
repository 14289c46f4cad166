package handler

import (
	"errors"
	"net/http"
	"strconv"

	"Aurora_Blog/internal/dto"
	"Aurora_Blog/internal/model"
	"Aurora_Blog/internal/service"
	"Aurora_Blog/pkg/logger"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AdminCommentHandler 后台接口，路由层统一挂了认证+admin角色守卫
type AdminCommentHandler interface {
	ListComments(c *gin.Context)
	ApproveComment(c *gin.Context)
	RejectComment(c *gin.Context)

	ListSensitiveWords(c *gin.Context)
	AddSensitiveWord(c *gin.Context)
	RemoveSensitiveWord(c *gin.Context)
}

type adminCommentHandler struct {
	CommentService service.CommentService
	WordService    service.SensitiveWordService
}

func NewAdminCommentHandler(commentService service.CommentService, wordService service.SensitiveWordService) AdminCommentHandler {
	return &adminCommentHandler{
		CommentService: commentService,
		WordService:    wordService,
	}
}

// 后台评论列表：1、解析状态过滤和分页参数 2、service查页+总数 3、返回扁平列表和分页信息
func (h *adminCommentHandler) ListComments(c *gin.Context) {
	status := c.Query("status")
	switch status {
	case "", model.StatusPending, model.StatusApproved, model.StatusRejected:
	default:
		sendErrorResponse(c, http.StatusBadRequest, "无效的状态过滤条件") // 400
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	comments, total, err := h.CommentService.ListComments(status, page, limit)
	if err != nil {
		logger.Log.WithError(err).Error("后台评论列表查询失败")
		sendErrorResponse(c, http.StatusInternalServerError, "获取评论列表失败") // 500
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"comments":   dto.ToAdminCommentResponses(comments),
		"pagination": dto.NewPagination(total, page, limit),
	})
}

func (h *adminCommentHandler) ApproveComment(c *gin.Context) {
	h.moderate(c, model.StatusApproved, "评论已通过审核")
}

func (h *adminCommentHandler) RejectComment(c *gin.Context) {
	h.moderate(c, model.StatusRejected, "评论已被拒绝")
}

// 状态流转的公共逻辑：1、解析评论ID 2、service执行状态机 3、映射错误类型
func (h *adminCommentHandler) moderate(c *gin.Context, target, okMessage string) {
	commentID, err := strconv.ParseUint(c.Param("comment_id"), 10, 64)
	if err != nil {
		sendErrorResponse(c, http.StatusBadRequest, "无效的评论ID") // 400
		return
	}

	logCtx := logger.Log.WithField("comment_id", commentID).WithField("target", target)
	comment, err := h.CommentService.Moderate(commentID, target)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			sendErrorResponse(c, http.StatusNotFound, "评论不存在") // 404
			return
		}
		if errors.Is(err, service.ErrStatusConflict) {
			sendErrorResponse(c, http.StatusConflict, err.Error()) // 409
			return
		}
		logCtx.WithError(err).Error("评论状态流转失败")
		sendErrorResponse(c, http.StatusInternalServerError, "操作失败") // 500
		return
	}
	logCtx.Info("评论状态流转成功")

	c.JSON(http.StatusOK, gin.H{
		"message": okMessage,
		"comment": dto.ToAdminCommentResponse(comment),
	})
}

type addWordRequest struct {
	Word string `json:"word" binding:"required"`
}

func (h *adminCommentHandler) ListSensitiveWords(c *gin.Context) {
	words, err := h.WordService.Words()
	if err != nil {
		logger.Log.WithError(err).Error("敏感词列表查询失败")
		sendErrorResponse(c, http.StatusInternalServerError, "获取敏感词失败") // 500
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": words})
}

func (h *adminCommentHandler) AddSensitiveWord(c *gin.Context) {
	var req addWordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendErrorResponse(c, http.StatusBadRequest, "敏感词不能为空") // 400
		return
	}
	if err := h.WordService.AddWord(req.Word); err != nil {
		if errors.Is(err, service.ErrWordExists) {
			sendErrorResponse(c, http.StatusBadRequest, err.Error()) // 400
			return
		}
		logger.Log.WithError(err).WithField("word", req.Word).Error("敏感词添加失败")
		sendErrorResponse(c, http.StatusInternalServerError, "敏感词添加失败") // 500
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "敏感词已添加"}) // 201
}

func (h *adminCommentHandler) RemoveSensitiveWord(c *gin.Context) {
	word := c.Param("word")
	if word == "" {
		sendErrorResponse(c, http.StatusBadRequest, "敏感词不能为空") // 400
		return
	}
	if err := h.WordService.RemoveWord(word); err != nil {
		logger.Log.WithError(err).WithField("word", word).Error("敏感词删除失败")
		sendErrorResponse(c, http.StatusInternalServerError, "敏感词删除失败") // 500
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "敏感词已删除"})
}
