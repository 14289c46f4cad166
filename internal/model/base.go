package model

import (
	"time"

	"gorm.io/gorm"
)

// gorm.Model的ID是uint类型，全站主键统一成uint64，所以自己定义base结构体
// CreatedAt由gorm自动填充，对评论来说是不可变的创建时间
type BaseModel struct {
	ID        uint64 `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}
