package repository

import (
	"Aurora_Blog/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 用户仓库接口：注册用户和匿名作者都走这里
type UserRepository interface {
	Create(user *model.User) error
	FindByID(userID uint64) (*model.User, error)
	FindByEmail(email string) (*model.User, error)
	// 带行锁的查找，必须在事务内使用，给“按email找不到就建”的序列用
	FindByEmailForUpdate(email string) (*model.User, error)

	WithTx(tx *gorm.DB) UserRepository
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) WithTx(tx *gorm.DB) UserRepository {
	return &userRepository{db: tx}
}

func (r *userRepository) Create(user *model.User) error {
	return r.db.Create(user).Error
}

func (r *userRepository) FindByID(userID uint64) (*model.User, error) {
	var result model.User
	err := r.db.First(&result, userID).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *userRepository) FindByEmail(email string) (*model.User, error) {
	var result model.User
	err := r.db.Where("email = ?", email).First(&result).Error
	if err != nil {
		return nil, err // 有错（包括没找到）直接返回
	}
	return &result, nil
}

// SELECT ... FOR UPDATE，锁住已存在的email行，防止并发提交重复建用户
func (r *userRepository) FindByEmailForUpdate(email string) (*model.User, error) {
	var result model.User
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("email = ?", email).First(&result).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}
