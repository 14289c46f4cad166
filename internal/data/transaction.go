package data

import (
	"Aurora_Blog/internal/repository"

	"gorm.io/gorm"
)

// UnitOfWork 定义事务管理器的接口
type UnitOfWork interface {
	// Execute 把一个函数包裹在数据库事务中执行，
	// 并为它提供绑定到同一个事务的Repositories。
	Execute(fn func(repos *TransactionalRepositories) error) error
}

// TransactionalRepositories 持有需要在同一个事务中操作的Repository。
// “按email找用户，没有就建，然后插评论”这条序列必须整体落在一个事务里。
type TransactionalRepositories struct {
	UserRepo    repository.UserRepository
	CommentRepo repository.CommentRepository
}

// db是事务的入口和管理者
type gormUnitOfWork struct {
	db          *gorm.DB
	userRepo    repository.UserRepository
	commentRepo repository.CommentRepository
}

// NewUnitOfWork 创建一个基于GORM的工作单元。
// 注意，它接收的是原始的、非事务的repositories。
func NewUnitOfWork(db *gorm.DB, userRepo repository.UserRepository, commentRepo repository.CommentRepository) UnitOfWork {
	return &gormUnitOfWork{
		db:          db,
		userRepo:    userRepo,
		commentRepo: commentRepo,
	}
}

func (u *gormUnitOfWork) Execute(fn func(repos *TransactionalRepositories) error) error {
	// fn返回error则整个事务ROLLBACK，返回nil则COMMIT
	return u.db.Transaction(func(tx *gorm.DB) error {
		transactionalRepos := &TransactionalRepositories{
			UserRepo:    u.userRepo.WithTx(tx),
			CommentRepo: u.commentRepo.WithTx(tx),
		}
		return fn(transactionalRepos)
	})
}
