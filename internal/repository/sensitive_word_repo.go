package repository

import (
	"context"
	"time"

	"Aurora_Blog/internal/model"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

const keySensitiveWords = "aurora:sensitive_words"

// 词表读多写少，用Redis的Set做一层缓存，管理端一改就删key让它失效
type SensitiveWordRepository interface {
	// FindEnabledWords 先读Redis，未命中回源MySQL并写回
	FindEnabledWords() ([]string, error)
	FindAll() ([]model.SensitiveWord, error)
	Create(word *model.SensitiveWord) error
	DeleteByWord(word string) error
	CountAll() (int64, error)
}

type sensitiveWordRepository struct {
	db  *gorm.DB
	rdb *redis.Client
}

func NewSensitiveWordRepository(db *gorm.DB, rdb *redis.Client) SensitiveWordRepository {
	return &sensitiveWordRepository{db: db, rdb: rdb}
}

func (r *sensitiveWordRepository) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 3*time.Second)
}

func (r *sensitiveWordRepository) FindEnabledWords() ([]string, error) {
	// 1. 先从缓存读
	if r.rdb != nil {
		ctx, cancel := r.ctx()
		words, err := r.rdb.SMembers(ctx, keySensitiveWords).Result()
		cancel()
		if err == nil && len(words) > 0 {
			return words, nil
		}
	}

	// 2. 缓存未命中，从数据库读
	var rows []model.SensitiveWord
	err := r.db.Where("enabled = ?", true).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	words := make([]string, 0, len(rows))
	for _, row := range rows {
		words = append(words, row.Word)
	}

	// 3. 写回缓存，方便下次读取，失败也不影响本次结果
	if r.rdb != nil && len(words) > 0 {
		ctx, cancel := r.ctx()
		_ = r.rdb.SAdd(ctx, keySensitiveWords, toInterfaces(words)...).Err()
		cancel()
	}
	return words, nil
}

func (r *sensitiveWordRepository) FindAll() ([]model.SensitiveWord, error) {
	var rows []model.SensitiveWord
	err := r.db.Order("created_at asc").Find(&rows).Error
	return rows, err
}

func (r *sensitiveWordRepository) Create(word *model.SensitiveWord) error {
	if err := r.db.Create(word).Error; err != nil {
		return err
	}
	r.invalidate()
	return nil
}

func (r *sensitiveWordRepository) DeleteByWord(word string) error {
	err := r.db.Where("word = ?", word).Delete(&model.SensitiveWord{}).Error
	if err != nil {
		return err
	}
	r.invalidate()
	return nil
}

func (r *sensitiveWordRepository) CountAll() (int64, error) {
	var total int64
	err := r.db.Model(&model.SensitiveWord{}).Count(&total).Error
	return total, err
}

// 写后失效，下一次读会回源数据库重建缓存
func (r *sensitiveWordRepository) invalidate() {
	if r.rdb == nil {
		return
	}
	ctx, cancel := r.ctx()
	defer cancel()
	_ = r.rdb.Del(ctx, keySensitiveWords).Err()
}

func toInterfaces(words []string) []interface{} {
	out := make([]interface{}, len(words))
	for i, w := range words {
		out[i] = w
	}
	return out
}
