package model

// 评论的三种审核状态，状态机只允许 pending -> approved 和 pending -> rejected
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

type Comment struct {
	BaseModel
	// 文章由外部系统管理，这里只存引用；PostSlug是冗余的可读引用，由调用方保证同步
	PostID   string `gorm:"size:191;not null;index"`
	PostSlug string `gorm:"size:191;index"`
	UserID   uint64 `gorm:"not null;index"`
	// 存的永远是脱敏后的文本
	Content string `gorm:"type:text;not null"`
	Status  string `gorm:"size:20;not null;default:pending;index"`
	// 指针*uint64的零值是nil，这样就可以区分是一级评论还是回复
	ParentID *uint64 `gorm:"index"`

	User User `gorm:"foreignKey:UserID"`
}

func (Comment) TableName() string {
	return "comments"
}
