package dto

import (
	"time"

	"Aurora_Blog/internal/model"
)

// AuthorInfo 是对外暴露的作者摘要，永远不带email等隐私字段
type AuthorInfo struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

// ReplyResponse 是回复（二级评论）的响应结构
type ReplyResponse struct {
	ID        uint64     `json:"id"`
	Content   string     `json:"content"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	ParentID  *uint64    `json:"parent_id,omitempty"`
	Author    AuthorInfo `json:"author"`
}

// CommentResponse 是一级评论的响应结构，带着它的回复列表
type CommentResponse struct {
	ID        uint64          `json:"id"`
	Content   string          `json:"content"`
	Status    string          `json:"status"`
	PostID    string          `json:"post_id"`
	PostSlug  string          `json:"post_slug,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	Author    AuthorInfo      `json:"author"`
	Replies   []ReplyResponse `json:"replies"`
}

// AdminCommentResponse 是后台视角的评论摘要
// 和ReplyResponse的区别是带文章引用，审核时能看出评论属于哪篇文章
type AdminCommentResponse struct {
	ID        uint64     `json:"id"`
	Content   string     `json:"content"`
	Status    string     `json:"status"`
	PostID    string     `json:"post_id"`
	PostSlug  string     `json:"post_slug,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	ParentID  *uint64    `json:"parent_id,omitempty"`
	Author    AuthorInfo `json:"author"`
}

// Pagination 是后台列表的分页信息
type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Pages int   `json:"pages"`
}

func toAuthorInfo(user *model.User) AuthorInfo {
	// User可能没被preload出来，ID为0时只回传外键，避免脏数据
	if user.ID == 0 {
		return AuthorInfo{}
	}
	return AuthorInfo{
		ID:    user.ID,
		Name:  user.Name,
		Image: user.Image,
	}
}

func ToCommentResponse(comment *model.Comment) *CommentResponse {
	return &CommentResponse{
		ID:        comment.ID,
		Content:   comment.Content,
		Status:    comment.Status,
		PostID:    comment.PostID,
		PostSlug:  comment.PostSlug,
		CreatedAt: comment.CreatedAt,
		Author:    toAuthorInfo(&comment.User),
		Replies:   []ReplyResponse{},
	}
}

func ToReplyResponse(reply *model.Comment) *ReplyResponse {
	return &ReplyResponse{
		ID:        reply.ID,
		Content:   reply.Content,
		Status:    reply.Status,
		CreatedAt: reply.CreatedAt,
		ParentID:  reply.ParentID,
		Author:    toAuthorInfo(&reply.User),
	}
}

// ToCommentResponses 接收一级评论列表和按父ID分组的回复，拼出线程结构
func ToCommentResponses(parents []model.Comment, groupedReplies map[uint64][]*model.Comment) []CommentResponse {
	response := make([]CommentResponse, 0, len(parents))
	for i := range parents {
		pc := &parents[i]
		commentResp := *ToCommentResponse(pc)
		if replies, ok := groupedReplies[pc.ID]; ok {
			for _, r := range replies {
				commentResp.Replies = append(commentResp.Replies, *ToReplyResponse(r))
			}
		}
		response = append(response, commentResp)
	}
	return response
}

func ToAdminCommentResponse(comment *model.Comment) *AdminCommentResponse {
	return &AdminCommentResponse{
		ID:        comment.ID,
		Content:   comment.Content,
		Status:    comment.Status,
		PostID:    comment.PostID,
		PostSlug:  comment.PostSlug,
		CreatedAt: comment.CreatedAt,
		ParentID:  comment.ParentID,
		Author:    toAuthorInfo(&comment.User),
	}
}

// ToAdminCommentResponses 给后台列表用的扁平结构（不挂回复）
func ToAdminCommentResponses(comments []model.Comment) []AdminCommentResponse {
	out := make([]AdminCommentResponse, 0, len(comments))
	for i := range comments {
		out = append(out, *ToAdminCommentResponse(&comments[i]))
	}
	return out
}

// NewPagination 计算总页数，limit保证大于0
func NewPagination(total int64, page, limit int) Pagination {
	pages := int((total + int64(limit) - 1) / int64(limit))
	return Pagination{
		Total: total,
		Page:  page,
		Limit: limit,
		Pages: pages,
	}
}
