package main

import (
	"log"
	"os"

	"Aurora_Blog/internal/data"
	"Aurora_Blog/internal/handler"
	"Aurora_Blog/internal/model"
	"Aurora_Blog/internal/repository"
	"Aurora_Blog/internal/router"
	"Aurora_Blog/internal/service"
	"Aurora_Blog/pkg/logger"
	"Aurora_Blog/pkg/rabbitmq"
	"Aurora_Blog/pkg/redis"

	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func main() {
	// 加载.env文件
	if err := godotenv.Load(); err != nil {
		log.Fatalf(".env文件加载失败")
	}
	// 初始化logger
	logger.InitLogger()

	// 初始化Redis
	redisClient, err := redis.InitRedis()
	if err != nil {
		logger.Log.Fatalf("无法连接到Redis: %v", err)
	}
	logger.Log.Info("Redis连接成功")

	// 初始化RabbitMQ
	rabbitMQConn, err := rabbitmq.InitRabbitMQ()
	if err != nil {
		logger.Log.Fatalf("无法连接到RabbitMQ: %v", err)
	}
	defer rabbitMQConn.Close()
	logger.Log.Info("RabbitMQ连接成功")

	// 数据源名称，用户名:密码@网络协议(地址:端口号)/数据库名?charset=字符集&parseTime=是否解析时间&loc=时区
	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		dsn = "root:root@tcp(127.0.0.1:3306)/aurora_blog?charset=utf8mb4&parseTime=True&loc=Local"
	}
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		logger.Log.Fatalf("无法连接到数据库: %v", err)
	}
	logger.Log.Info("数据库连接成功")

	// AutoMigrate：没有表就建表，没有列就加列，不会主动删除和修改
	err = db.AutoMigrate(&model.User{}, &model.Comment{}, &model.SensitiveWord{}, &model.ModerationLog{})
	if err != nil {
		logger.Log.Fatalf("数据库迁移失败: %v", err)
	}
	logger.Log.Info("数据库迁移成功")

	userRepo := repository.NewUserRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	wordRepo := repository.NewSensitiveWordRepository(db, redisClient)

	uow := data.NewUnitOfWork(db, userRepo, commentRepo)

	wordService := service.NewSensitiveWordService(wordRepo)
	// 词表为空则写入默认词，然后加载进内存
	if err := wordService.Bootstrap(); err != nil {
		logger.Log.Fatalf("敏感词表初始化失败: %v", err)
	}
	logger.Log.Info("敏感词表加载成功")

	userService := service.NewUserService(userRepo)
	commentService := service.NewCommentService(commentRepo, uow, rabbitMQConn)

	userHandler := handler.NewUserHandler(userService)
	commentHandler := handler.NewCommentHandler(commentService, wordService)
	adminHandler := handler.NewAdminCommentHandler(commentService, wordService)

	r := router.SetupRouter(userHandler, commentHandler, adminHandler)
	logger.Log.Println("服务器将在: 8080端口启动")

	if err := r.Run(":8080"); err != nil {
		logger.Log.Fatalf("服务器启动失败: %v", err)
	}
}
