package model

// ModerationLog 审核流水，由consumer异步落库，用于事后审计
type ModerationLog struct {
	BaseModel
	CommentID uint64 `gorm:"not null;index"`
	PostID    string `gorm:"size:191;index"`
	Action    string `gorm:"size:20;not null"` // created / approved / rejected
	Status    string `gorm:"size:20;not null"`
}

func (ModerationLog) TableName() string {
	return "moderation_logs"
}
