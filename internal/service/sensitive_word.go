package service

import (
	"errors"

	"Aurora_Blog/internal/filter"
	"Aurora_Blog/internal/model"
	"Aurora_Blog/internal/repository"
	"Aurora_Blog/pkg/logger"

	"golang.org/x/sync/singleflight"
)

// ErrWordExists 敏感词已存在
var ErrWordExists = errors.New("敏感词已存在")

// SensitiveWordService 是词表的唯一入口：
// 判定和打码走内存里的Filter，管理操作写穿到MySQL并让Redis缓存失效，然后重载Filter
type SensitiveWordService interface {
	Contains(text string) bool
	Mask(text string) string

	Words() ([]model.SensitiveWord, error)
	AddWord(word string) error
	RemoveWord(word string) error

	// Bootstrap 启动时调用：词表为空则写入默认词，然后加载进内存
	Bootstrap() error
	Reload() error
}

type sensitiveWordService struct {
	// 并发的缓存未命中只回源一次
	sf singleflight.Group

	repo repository.SensitiveWordRepository
	f    *filter.Filter
}

func NewSensitiveWordService(repo repository.SensitiveWordRepository) SensitiveWordService {
	return &sensitiveWordService{
		repo: repo,
		f:    filter.New(),
	}
}

func (s *sensitiveWordService) Contains(text string) bool {
	return s.f.Contains(text)
}

func (s *sensitiveWordService) Mask(text string) string {
	return s.f.Mask(text)
}

func (s *sensitiveWordService) Words() ([]model.SensitiveWord, error) {
	return s.repo.FindAll()
}

func (s *sensitiveWordService) AddWord(word string) error {
	err := s.repo.Create(&model.SensitiveWord{Word: word, Enabled: true})
	if err != nil {
		if isDuplicateKey(err) {
			return ErrWordExists
		}
		return err
	}
	return s.Reload()
}

func (s *sensitiveWordService) RemoveWord(word string) error {
	if err := s.repo.DeleteByWord(word); err != nil {
		return err
	}
	return s.Reload()
}

// Bootstrap 首次启动时数据库是空的，把默认词表落库
func (s *sensitiveWordService) Bootstrap() error {
	total, err := s.repo.CountAll()
	if err != nil {
		return err
	}
	if total == 0 {
		for _, w := range filter.DefaultWords {
			if err := s.repo.Create(&model.SensitiveWord{Word: w, Enabled: true}); err != nil {
				return err
			}
		}
		logger.Log.WithField("count", len(filter.DefaultWords)).Info("默认敏感词表已初始化")
	}
	return s.Reload()
}

// Reload 从存储读启用的词表，整体替换内存Filter
// 多个请求同时触发重载时，singleflight保证只回源一次
func (s *sensitiveWordService) Reload() error {
	_, err, _ := s.sf.Do("reload_sensitive_words", func() (interface{}, error) {
		words, err := s.repo.FindEnabledWords()
		if err != nil {
			return nil, err
		}
		s.f.Replace(words)
		return nil, nil
	})
	return err
}
