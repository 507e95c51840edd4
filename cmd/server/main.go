package main

import (
	"flag"
	"log"
	"os"
	"strings"
	"syscall"

	"github.com/storefront-next/internal/app"
	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"

	"github.com/gin-gonic/gin"
)

var weakSecretMarkers = []string{"change-me", "change-in-production", "your-secret-key"}

func main() {
	mode := flag.String("mode", app.ModeAll, "启动模式: all (默认), api, worker")
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	release := cfg.Server.Mode == "release"

	checkTokenSecrets(stdLog, cfg.JWT, release)
	if err := prepareDatabase(cfg.Database, !release); err != nil {
		stdLog.Fatalf("数据库初始化失败: %v", err)
	}
	if release {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := app.Run(app.Options{
		Config:  cfg,
		Logger:  logger.S(),
		Signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		Mode:    *mode,
	}); err != nil {
		stdLog.Fatalf("服务运行失败: %v", err)
	}
}

// checkTokenSecrets 弱密钥在 release 模式下直接退出
func checkTokenSecrets(stdLog *log.Logger, cfg config.JWTConfig, release bool) {
	secrets := map[string]string{"customer": cfg.CustomerSecret, "staff": cfg.StaffSecret}
	for name, secret := range secrets {
		if !isWeakSecret(secret) {
			continue
		}
		if release {
			stdLog.Fatalf("JWT %s secret 过弱或仍为默认值，请配置至少 32 位的随机密钥", name)
		}
		stdLog.Printf("警告: JWT %s secret 过弱或仍为默认值", name)
	}
	if cfg.CustomerSecret != "" && cfg.CustomerSecret == cfg.StaffSecret {
		stdLog.Printf("警告: 顾客与店员 JWT 使用了相同的 secret")
	}
}

// prepareDatabase 连接、迁移并写入默认会员等级
func prepareDatabase(cfg config.DatabaseConfig, debug bool) error {
	pool := models.DBPoolConfig{
		MaxOpenConns:           cfg.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Pool.ConnMaxIdleTimeSeconds,
	}
	if err := models.InitDB(cfg.Driver, cfg.DSN, pool, debug); err != nil {
		return err
	}
	if err := models.AutoMigrate(); err != nil {
		return err
	}
	if err := models.InitDefaultRanks(); err != nil {
		logger.Warnw("default_ranks_init_failed", "error", err)
	}
	return nil
}

func isWeakSecret(secret string) bool {
	if len(secret) < 32 {
		return true
	}
	normalized := strings.ToLower(secret)
	for _, marker := range weakSecretMarkers {
		if strings.Contains(normalized, marker) {
			return true
		}
	}
	return false
}
