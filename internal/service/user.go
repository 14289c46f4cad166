package service

import (
	"errors"
	"os"
	"time"

	"Aurora_Blog/internal/model"
	"Aurora_Blog/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// 用户服务接口：1、注册 2、登录 3、查个人资料
type UserService interface {
	Register(name, email, password string) (*model.User, error)
	Login(email, password string) (string, error)
	GetProfile(userID uint64) (*model.User, error)
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

// 注册逻辑：1、检查email是否已被占用 2、密码加密存储 3、插入用户表
// 注意email可能已被匿名评论占用过，这种情况同样按已注册处理
func (s *userService) Register(name, email, password string) (*model.User, error) {
	_, err := s.userRepo.FindByEmail(email)
	if err == nil {
		return nil, errors.New("该邮箱已注册")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	newUser := &model.User{
		Name:     name,
		Email:    &email,
		Password: string(hashedPassword),
		Role:     model.RoleUser,
	}
	if err := s.userRepo.Create(newUser); err != nil {
		return nil, err
	}
	return newUser, nil
}

// GetProfile 按ID回查数据库，资料以库里为准而不是token里的旧claims
func (s *userService) GetProfile(userID uint64) (*model.User, error) {
	return s.userRepo.FindByID(userID)
}

// 登录逻辑：1、按email查用户 2、密码比对 3、签发携带role声明的JWT
func (s *userService) Login(email, password string) (string, error) {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", errors.New("邮箱或密码错误")
		}
		return "", err
	}
	// 匿名作者的行没有密码，不允许登录
	if user.Password == "" {
		return "", errors.New("邮箱或密码错误")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", errors.New("邮箱或密码错误")
	}

	// Payload不加密，不能放密码；role声明是后台鉴权的依据
	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Name,
		"role":     user.Role,
		"exp":      time.Now().Add(time.Hour * 72).Unix(),
		"iat":      time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	secretKey := []byte(os.Getenv("JWT_SECRET_KEY"))
	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}
	return tokenString, nil
}
