package model

// SensitiveWord 敏感词配置，落库持久化，进程重启后不丢失
type SensitiveWord struct {
	BaseModel
	Word    string `gorm:"size:100;not null;uniqueIndex"`
	Enabled bool   `gorm:"default:true"`
}

func (SensitiveWord) TableName() string {
	return "sensitive_words"
}
