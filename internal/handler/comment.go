package handler

import (
	"errors"
	"net/http"

	"Aurora_Blog/internal/dto"
	"Aurora_Blog/internal/middleware"
	"Aurora_Blog/internal/model"
	"Aurora_Blog/internal/service"
	"Aurora_Blog/pkg/logger"

	"github.com/gin-gonic/gin"
)

type CommentHandler interface {
	GetComments(c *gin.Context)
	CreateComment(c *gin.Context)
}

type commentHandler struct {
	CommentService service.CommentService
	WordService    service.SensitiveWordService
}

func NewCommentHandler(commentService service.CommentService, wordService service.SensitiveWordService) CommentHandler {
	return &commentHandler{
		CommentService: commentService,
		WordService:    wordService,
	}
}

// CreateCommentRequest 的字段名沿用对外接口约定的camelCase
type CreateCommentRequest struct {
	Content     string  `json:"content" binding:"required"`
	PostID      string  `json:"postId" binding:"required"`
	PostSlug    string  `json:"postSlug"`
	ParentID    *uint64 `json:"parentId"`
	AuthorName  string  `json:"authorName"`
	AuthorEmail string  `json:"authorEmail"`
	AuthorImage string  `json:"authorImage"`
}

// 获取文章的评论：1、校验文章引用参数 2、决定状态过滤（游客只看approved，管理员可要求全部） 3、service取线程化列表
func (h *commentHandler) GetComments(c *gin.Context) {
	postID := c.Query("postId")
	postSlug := c.Query("postSlug")
	if postID == "" && postSlug == "" {
		sendErrorResponse(c, http.StatusBadRequest, "必须提供postId或postSlug") // 400
		return
	}

	// 只有管理员显式带includeAll=true才放开状态过滤
	status := model.StatusApproved
	if c.Query("includeAll") == "true" && middleware.IsAdmin(c) {
		status = ""
	}

	parents, replyMap, err := h.CommentService.GetComments(postID, postSlug, status)
	if err != nil {
		logger.Log.WithError(err).WithField("post_id", postID).Error("获取评论列表失败")
		sendErrorResponse(c, http.StatusInternalServerError, "获取评论列表失败") // 500
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "获取评论列表成功",
		"data":    dto.ToCommentResponses(parents, replyMap),
	})
}

// 发表评论，审核策略在这一层落地：
// 敏感词判定用原始文本，入库的永远是打码后的文本；
// 管理员免审，命中敏感词直接拒绝，其余进待审队列
func (h *commentHandler) CreateComment(c *gin.Context) {
	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Log.WithError(err).Error("评论参数解析失败")
		sendErrorResponse(c, http.StatusBadRequest, "评论内容和文章ID不能为空") // 400
		return
	}

	userID, authed := middleware.CurrentUserID(c)
	if !authed && (req.AuthorName == "" || req.AuthorEmail == "") {
		sendErrorResponse(c, http.StatusBadRequest, "匿名评论必须提供昵称和邮箱") // 400
		return
	}

	isAdmin := middleware.IsAdmin(c)
	// flagged基于原始文本判定，先判定再打码
	flagged := h.WordService.Contains(req.Content)
	redacted := h.WordService.Mask(req.Content)
	status := service.ResolveStatus(isAdmin, flagged)

	in := service.CreateCommentInput{
		Content:     redacted,
		PostID:      req.PostID,
		PostSlug:    req.PostSlug,
		ParentID:    req.ParentID,
		Status:      status,
		AuthorName:  req.AuthorName,
		AuthorEmail: req.AuthorEmail,
		AuthorImage: req.AuthorImage,
	}
	if authed {
		in.UserID = &userID
	}

	logCtx := logger.Log.WithField("post_id", req.PostID).WithField("status", status)
	comment, err := h.CommentService.CreateComment(in)
	if err != nil {
		if errors.Is(err, service.ErrParentNotFound) {
			sendErrorResponse(c, http.StatusBadRequest, err.Error()) // 400
			return
		}
		logCtx.WithError(err).Error("创建评论失败")
		sendErrorResponse(c, http.StatusInternalServerError, "评论失败") // 500
		return
	}
	logCtx.WithField("comment_id", comment.ID).Info("评论创建成功")

	// 响应里的审核提示：管理员拿到干净的创建结果，不附加审核信息
	message := "评论发表成功"
	if !isAdmin {
		if flagged {
			message = "评论包含敏感内容，已被拒绝"
		} else {
			message = "评论已提交，等待审核"
		}
	}

	var data interface{}
	if comment.ParentID != nil {
		data = dto.ToReplyResponse(comment)
	} else {
		data = dto.ToCommentResponse(comment)
	}
	c.JSON(http.StatusCreated, gin.H{ // 201
		"message": message,
		"data":    data,
	})
}
