package repository

import (
	"Aurora_Blog/internal/model"

	"gorm.io/gorm"
)

// CommentFilter 是显式的查询条件对象，字段都是可选的，零值表示不过滤
type CommentFilter struct {
	PostID       string
	PostSlug     string
	Status       string
	OnlyTopLevel bool // 只要parent_id IS NULL的一级评论
}

type CommentRepository interface {
	Create(comment *model.Comment) error
	FindByID(commentID uint64) (*model.Comment, error)

	// 分页列出评论，一级评论列表和后台列表都按创建时间倒序
	List(filter CommentFilter, offset, limit int) ([]model.Comment, error)
	Count(filter CommentFilter) (int64, error)
	// 根据父评论ID列表获取回复，回复按时间正序（阅读顺序）
	RepliesByParentIDs(parentIDs []uint64, status string) ([]model.Comment, error)

	UpdateStatus(commentID uint64, status string) error

	WithTx(tx *gorm.DB) CommentRepository
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

// WithTx 返回一个新的、绑定到事务的 commentRepository 实例
func (r *commentRepository) WithTx(tx *gorm.DB) CommentRepository {
	return &commentRepository{db: tx}
}

func (r *commentRepository) Create(comment *model.Comment) error {
	return r.db.Create(comment).Error
}

// 利用commentID找comment，顺便把作者User给Preload进去
func (r *commentRepository) FindByID(commentID uint64) (*model.Comment, error) {
	var result model.Comment
	err := r.db.Preload("User").First(&result, commentID).Error
	if err != nil {
		return nil, err // 有错（包括没找到）直接返回
	}
	return &result, nil
}

// applyFilter 把CommentFilter的非零字段翻译成WHERE条件
func applyFilter(db *gorm.DB, f CommentFilter) *gorm.DB {
	if f.PostID != "" {
		db = db.Where("post_id = ?", f.PostID)
	}
	if f.PostSlug != "" {
		db = db.Where("post_slug = ?", f.PostSlug)
	}
	if f.Status != "" {
		db = db.Where("status = ?", f.Status)
	}
	if f.OnlyTopLevel {
		db = db.Where("parent_id IS NULL")
	}
	return db
}

// List 分页列出评论，limit<=0表示不分页
func (r *commentRepository) List(filter CommentFilter, offset, limit int) ([]model.Comment, error) {
	var comments []model.Comment
	db := applyFilter(r.db.Preload("User"), filter).Order("created_at desc")
	if offset > 0 {
		db = db.Offset(offset)
	}
	if limit > 0 {
		db = db.Limit(limit)
	}
	err := db.Find(&comments).Error
	return comments, err
}

func (r *commentRepository) Count(filter CommentFilter) (int64, error) {
	var total int64
	err := applyFilter(r.db.Model(&model.Comment{}), filter).Count(&total).Error
	return total, err
}

// 根据一批父评论ID一次性获取所有回复，status为空则不过滤状态
func (r *commentRepository) RepliesByParentIDs(parentIDs []uint64, status string) ([]model.Comment, error) {
	var replies []model.Comment
	db := r.db.Preload("User").Where("parent_id IN (?)", parentIDs)
	if status != "" {
		db = db.Where("status = ?", status)
	}
	err := db.Order("created_at asc").Find(&replies).Error
	return replies, err
}

// UpdateStatus 无条件更新状态，状态机检查在service层做
func (r *commentRepository) UpdateStatus(commentID uint64, status string) error {
	return r.db.Model(&model.Comment{}).Where("id = ?", commentID).
		Update("status", status).Error
}
