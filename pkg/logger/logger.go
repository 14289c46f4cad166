package logger

import (
	"io"
	"log"
	"os"

	"github.com/sirupsen/logrus"
)

// Log 是一个全局的、配置好的 logrus 实例
var Log = logrus.New()

// InitLogger 初始化全局的Logger实例
func InitLogger() {
	// 1. JSON格式的结构化日志，便于后续用ELK、Loki等工具分析
	Log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
	})

	// 2. 同时输出到文件和控制台
	file, err := os.OpenFile("aurora_blog.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("无法打开日志文件: %v", err)
	}
	mw := io.MultiWriter(os.Stdout, file)
	Log.SetOutput(mw)

	// 3. 只输出大于等于该级别的日志，生产环境用Info
	Log.SetLevel(logrus.InfoLevel)
}
