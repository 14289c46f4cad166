package model

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	BaseModel
	Name string `gorm:"not null"`
	// 指针*string的零值是nil，用来区分“没有email”的游客作者
	// uniqueIndex利用MySQL的唯一索引查重，同一个email永远只对应一行用户
	Email    *string `gorm:"size:191;uniqueIndex"`
	Password string  // 匿名作者没有密码，留空
	Image    string  // 头像URL
	Role     string  `gorm:"size:20;not null;default:user"`
}
