package model

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"stopbonus/internal/clock"
	"stopbonus/internal/config"
	"stopbonus/internal/model/sql"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

const (
	DBTypeMySQL    = "mysql"
	DBTypeSQLite   = "sqlite"
	DBTypePostgres = "postgres"
)

// RepositoryFactory 根据数据库类型创建对应的仓库实现
type RepositoryFactory struct {
	clock clock.Clock
}

// NewRepositoryFactory 创建新的仓库工厂，clk 为空时使用系统时间
func NewRepositoryFactory(clk clock.Clock) *RepositoryFactory {
	if clk == nil {
		clk = clock.System{}
	}
	return &RepositoryFactory{clock: clk}
}

// InitRepository 初始化仓库的辅助函数
func InitRepository(cfg *config.Config, clk clock.Clock) (Repository, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	return NewRepositoryFactory(clk).CreateRepository(cfg)
}

// CreateRepository 根据配置创建对应的仓库实现
func (f *RepositoryFactory) CreateRepository(cfg *config.Config) (Repository, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.DBType)) {
	case DBTypeMySQL:
		return f.createMySQLRepository(cfg)
	case "", DBTypeSQLite:
		return f.createSQLiteRepository(cfg)
	case DBTypePostgres:
		return f.createPostgresRepository(cfg)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.DBType)
	}
}

// createMySQLRepository 创建 MySQL 仓库
func (f *RepositoryFactory) createMySQLRepository(cfg *config.Config) (Repository, error) {
	dsn := cfg.DSNURL
	if dsn == "" {
		// 从各个配置项构建 DSN，时间统一按 UTC 读写
		dsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			cfg.DBUser, cfg.DBPassword, cfg.DBAddr, cfg.DBPort, cfg.DBName)
	}

	db, err := f.openGormDB(mysql.Open(dsn), "")
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MySQL: %w", err)
	}
	configurePool(db, cfg.DBMaxOpenConns)

	return f.finish(db, cfg.DBSchema)
}

// createSQLiteRepository 创建 SQLite 仓库
func (f *RepositoryFactory) createSQLiteRepository(cfg *config.Config) (Repository, error) {
	filePath := cfg.DBPath
	if filePath == "" {
		filePath = filepath.Join("data", "bonus.db")
	}

	// SQLite 会在连接时自动创建 .db 文件，但前提是目录已存在
	if !strings.HasPrefix(filePath, "file:") {
		if dir := filepath.Dir(filePath); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create directory %q: %w", dir, err)
			}
		}
	}

	db, err := f.openGormDB(sqlite.Open(sqliteDSN(filePath)), "")
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SQLite: %w", err)
	}
	// 单连接：嵌套调用沿用 ctx 中的事务，不会再申请第二个连接
	configurePool(db, 1)

	return f.finish(db, cfg.DBSchema)
}

// createPostgresRepository 创建 PostgreSQL 仓库
func (f *RepositoryFactory) createPostgresRepository(cfg *config.Config) (Repository, error) {
	dsn := cfg.DSNURL
	if dsn == "" {
		// 从各个配置项构建 DSN
		dsn = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			cfg.DBAddr, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort)
	}

	db, err := f.openGormDB(postgres.Open(dsn), tablePrefix(DBTypePostgres, cfg.DBSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	configurePool(db, cfg.DBMaxOpenConns)

	return f.finish(db, cfg.DBSchema)
}

func (f *RepositoryFactory) finish(db *gorm.DB, namespace string) (Repository, error) {
	// 增量迁移数据库表结构
	if err := MigrateSchema(db, namespace); err != nil {
		if sqlDB, derr := db.DB(); derr == nil {
			_ = sqlDB.Close()
		}
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return sql.NewGormRepository(db), nil
}

func (f *RepositoryFactory) openGormDB(dialector gorm.Dialector, prefix string) (*gorm.DB, error) {
	// 配置 GORM 日志
	gormLogger := logger.New(
		log.New(log.Writer(), "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second * 5,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	// 表名不使用 TableName()，否则命名前缀不会生效
	return gorm.Open(dialector, &gorm.Config{
		Logger:  gormLogger,
		NowFunc: func() time.Time { return f.clock.Now().UTC() },
		NamingStrategy: schema.NamingStrategy{
			TablePrefix: prefix,
		},
		TranslateError: true,
	})
}

// configurePool 配置连接池；断开的连接由 database/sql 在下次使用时重新建立
func configurePool(db *gorm.DB, maxOpen int) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if maxOpen <= 0 {
		maxOpen = 1
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxOpen)
	if maxOpen > 1 {
		sqlDB.SetConnMaxLifetime(time.Hour)
		sqlDB.SetConnMaxIdleTime(10 * time.Minute)
	}
}

// sqliteDSN 打开外键约束并设置忙等待
func sqliteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=1&_busy_timeout=5000"
}
