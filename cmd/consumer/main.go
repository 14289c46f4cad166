package main

import (
	"encoding/json"
	"os"

	"Aurora_Blog/internal/model"
	"Aurora_Blog/internal/repository"
	"Aurora_Blog/internal/service"
	"Aurora_Blog/pkg/logger"
	"Aurora_Blog/pkg/rabbitmq"

	"github.com/joho/godotenv"
	"github.com/streadway/amqp"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// 审计消费者进程：把审核流水异步落库，请求路径完全不等它
func main() {
	_ = godotenv.Load()
	logger.InitLogger()

	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		dsn = "root:root@tcp(127.0.0.1:3306)/aurora_blog?charset=utf8mb4&parseTime=True&loc=Local"
	}
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		logger.Log.Fatalf("消费者无法连接到数据库: %v", err)
	}
	if err := db.AutoMigrate(&model.ModerationLog{}); err != nil {
		logger.Log.Fatalf("消费者数据库迁移失败: %v", err)
	}

	rabbitMQConn, err := rabbitmq.InitRabbitMQ()
	if err != nil {
		logger.Log.Fatalf("消费者无法连接到RabbitMQ: %v", err)
	}
	defer rabbitMQConn.Close()

	consumeModerationEvents(rabbitMQConn, db)
}

// 审计队列消费者：1、开Channel并声明队列 2、注册消费者 3、逐条解析消息并在事务里写流水
func consumeModerationEvents(conn *amqp.Connection, db *gorm.DB) {
	ch, err := conn.Channel()
	if err != nil {
		logger.Log.Fatalf("无法打开Channel: %v", err)
	}
	defer ch.Close()

	// 队列声明是幂等的，消费者先起也没关系
	if _, err := ch.QueueDeclare(service.QueueModeration, true, false, false, false, nil); err != nil {
		logger.Log.Fatalf("无法声明审计队列: %v", err)
	}

	msgs, err := ch.Consume(
		service.QueueModeration, // queue
		"",                      // consumer
		false,                   // auto-ack: 手动确认，落库成功才Ack
		false,                   // exclusive
		false,                   // no-local
		false,                   // no-wait
		nil,                     // args
	)
	if err != nil {
		logger.Log.Fatalf("无法注册审计消费者: %v", err)
	}

	forever := make(chan bool)

	go func() {
		for d := range msgs {
			logCtx := logger.Log.WithField("body", string(d.Body)).WithField("redelivered", d.Redelivered)
			logCtx.Info("收到一条审计消息")

			var msg service.CommentEventMessage
			if err := json.Unmarshal(d.Body, &msg); err != nil {
				logCtx.WithError(err).Error("审计消息JSON解析失败")
				// 解析不了的坏消息直接丢弃，不重新入队
				d.Nack(false, false)
				continue
			}

			err := db.Transaction(func(tx *gorm.DB) error {
				txLogRepo := repository.NewModerationLogRepository(tx)
				return txLogRepo.Create(&model.ModerationLog{
					CommentID: msg.CommentID,
					PostID:    msg.PostID,
					Action:    msg.Action,
					Status:    msg.Status,
				})
			})
			if err != nil {
				logCtx.WithError(err).Error("审计流水落库失败")
				// 落库失败让消息重新入队，等下一轮
				d.Nack(false, true)
				continue
			}
			d.Ack(false)
		}
	}()

	logger.Log.Info("审计消费者已启动，等待消息...")
	<-forever
}
