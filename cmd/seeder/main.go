package main

import (
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"Aurora_Blog/internal/model"

	"github.com/go-faker/faker/v4"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// 填充测试数据：一个管理员、一批注册用户和匿名作者、三种状态的评论
func main() {
	fmt.Println("开始填充测试数据...")

	_ = godotenv.Load()
	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		dsn = "root:root@tcp(127.0.0.1:3306)/aurora_blog?charset=utf8mb4&parseTime=True&loc=Local"
	}
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("无法连接到数据库: %v", err)
	}

	// 先删旧表再重建，保证每次填充都是干净的。注意：会删掉所有数据！
	db.Migrator().DropTable(&model.ModerationLog{}, &model.Comment{}, &model.SensitiveWord{}, &model.User{})
	if err := db.AutoMigrate(&model.User{}, &model.Comment{}, &model.SensitiveWord{}, &model.ModerationLog{}); err != nil {
		log.Fatalf("数据库迁移失败: %v", err)
	}
	fmt.Println("数据库迁移成功!")

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("密码加密失败: %v", err)
	}

	// 管理员账号
	adminEmail := "admin@aurora.blog"
	admin := model.User{
		Name:     "站长",
		Email:    &adminEmail,
		Password: string(hashedPassword),
		Role:     model.RoleAdmin,
	}
	db.Create(&admin)

	// 注册用户
	userCount := 30
	for i := 0; i < userCount; i++ {
		email := faker.Email()
		user := model.User{
			Name:     faker.Username(),
			Email:    &email,
			Password: string(hashedPassword),
			Role:     model.RoleUser,
		}
		db.Create(&user)
	}
	fmt.Printf("成功创建 %d 个注册用户和1个管理员!\n", userCount)

	// 匿名作者：没有密码，email是自然键
	anonCount := 10
	for i := 0; i < anonCount; i++ {
		email := faker.Email()
		anon := model.User{
			Name:  "匿名用户",
			Email: &email,
			Image: fmt.Sprintf("https://api.dicebear.com/7.x/avataaars/svg?seed=%d", time.Now().UnixMilli()+int64(i)),
			Role:  model.RoleUser,
		}
		db.Create(&anon)
	}
	fmt.Printf("成功创建 %d 个匿名作者!\n", anonCount)

	// 评论：分布在几篇文章上，状态三选一，少量带回复
	statuses := []string{model.StatusPending, model.StatusApproved, model.StatusRejected}
	posts := []string{"post-001", "post-002", "post-003", "post-004"}
	rand.Seed(time.Now().UnixNano())

	commentCount := 200
	var parentIDs []uint64
	for i := 0; i < commentCount; i++ {
		postIdx := rand.Intn(len(posts))
		comment := model.Comment{
			PostID:   posts[postIdx],
			PostSlug: fmt.Sprintf("slug-%s", posts[postIdx]),
			UserID:   uint64(rand.Intn(userCount+anonCount) + 2), // ID=1是管理员
			Content:  faker.Sentence(),
			Status:   statuses[rand.Intn(len(statuses))],
		}
		// 约四分之一的评论挂成已有一级评论的回复
		if len(parentIDs) > 0 && rand.Intn(4) == 0 {
			pid := parentIDs[rand.Intn(len(parentIDs))]
			comment.ParentID = &pid
			// 回复必须和父评论同一篇文章
			var parent model.Comment
			if err := db.First(&parent, pid).Error; err == nil {
				comment.PostID = parent.PostID
				comment.PostSlug = parent.PostSlug
			}
		}
		db.Create(&comment)
		if comment.ParentID == nil {
			parentIDs = append(parentIDs, comment.ID)
		}
	}
	fmt.Printf("成功创建 %d 条评论!\n", commentCount)

	fmt.Println("所有测试数据填充完毕!")
}
