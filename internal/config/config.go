package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	appDirName     = "StopBonus"
	dbFileName     = "bonus.db"
	settingsFile   = "config.json"
	backupsDirName = "backups"
)

type Config struct {
	HTTPAddr string `env:"HTTP_ADDR" envDefault:"127.0.0.1:8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	Debug    bool   `env:"DEBUG" envDefault:"false"`
	DataDir  string `env:"DATA_DIR" envDefault:""`

	DBType     string `env:"DB_TYPE" envDefault:"sqlite"`
	DSNURL     string `env:"DSN_URL" envDefault:""`
	DBUser     string `env:"DB_USER" envDefault:""`
	DBPassword string `env:"DB_PASSWORD" envDefault:""`
	DBAddr     string `env:"DB_ADDR" envDefault:""`
	DBName     string `env:"DB_NAME" envDefault:"stopbonus"`
	DBPath     string `env:"DB_PATH" envDefault:""`
	DBPort     string `env:"DB_PORT" envDefault:"3306"`
	DBSchema   string `env:"DB_SCHEMA" envDefault:"bonus"`
	// 服务端数据库的连接池上限，SQLite 固定为 1
	DBMaxOpenConns int `env:"DB_MAX_OPEN_CONNS" envDefault:"4"`

	SettingsPath string `env:"SETTINGS_PATH" envDefault:""`

	BackupIntervalMinutes int `env:"BACKUP_INTERVAL_MINUTES" envDefault:"0"`

	StorageType     string `env:"STORAGE_TYPE" envDefault:"local"`
	StorageLocalDir string `env:"STORAGE_LOCAL_DIR" envDefault:""`

	// S3 兼容存储配置
	StorageS3Region          string `env:"STORAGE_S3_REGION"`
	StorageS3Bucket          string `env:"STORAGE_S3_BUCKET"`
	StorageS3Prefix          string `env:"STORAGE_S3_PREFIX"`
	StorageS3Endpoint        string `env:"STORAGE_S3_ENDPOINT"`
	StorageS3AccessKeyID     string `env:"STORAGE_S3_ACCESS_KEY_ID"`
	StorageS3SecretAccessKey string `env:"STORAGE_S3_SECRET_ACCESS_KEY"`
	StorageS3SessionToken    string `env:"STORAGE_S3_SESSION_TOKEN"`
	StorageS3ForcePathStyle  bool   `env:"STORAGE_S3_FORCE_PATH_STYLE" envDefault:"false"`

	// 阿里云 OSS 存储配置
	StorageOSSEndpoint        string `env:"STORAGE_OSS_ENDPOINT"`
	StorageOSSBucket          string `env:"STORAGE_OSS_BUCKET"`
	StorageOSSPrefix          string `env:"STORAGE_OSS_PREFIX"`
	StorageOSSAccessKeyID     string `env:"STORAGE_OSS_ACCESS_KEY_ID"`
	StorageOSSAccessKeySecret string `env:"STORAGE_OSS_ACCESS_KEY_SECRET"`

	// 腾讯云 COS 存储配置
	StorageCOSBucketURL string `env:"STORAGE_COS_BUCKET_URL"`
	StorageCOSPrefix    string `env:"STORAGE_COS_PREFIX"`
	StorageCOSSecretID  string `env:"STORAGE_COS_SECRET_ID"`
	StorageCOSSecretKey string `env:"STORAGE_COS_SECRET_KEY"`

	// Cloudflare R2 存储配置
	StorageR2AccountID       string `env:"STORAGE_R2_ACCOUNT_ID"`
	StorageR2Endpoint        string `env:"STORAGE_R2_ENDPOINT"`
	StorageR2Region          string `env:"STORAGE_R2_REGION" envDefault:"auto"`
	StorageR2Bucket          string `env:"STORAGE_R2_BUCKET"`
	StorageR2Prefix          string `env:"STORAGE_R2_PREFIX"`
	StorageR2AccessKeyID     string `env:"STORAGE_R2_ACCESS_KEY_ID"`
	StorageR2SecretAccessKey string `env:"STORAGE_R2_SECRET_ACCESS_KEY"`
}

// ParseConfig 读取 .env（可选）和环境变量，并补全依赖数据目录的路径。
func ParseConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logrus.WithError(err).Warn("failed to load .env")
	}

	var Conf Config
	err := env.Parse(&Conf)
	if err != nil {
		logrus.WithError(err).Error("env.Parse error")
		return Config{}, err
	}
	Conf.applyDataDir()
	logrus.Debugf("%#v\n", Conf)
	return Conf, nil
}

func (c *Config) applyDataDir() {
	if strings.TrimSpace(c.DataDir) == "" {
		c.DataDir = ResolveDataDir(c.Debug, os.Getenv)
	}
	if strings.TrimSpace(c.DBPath) == "" {
		c.DBPath = filepath.Join(c.DataDir, dbFileName)
	}
	if strings.TrimSpace(c.SettingsPath) == "" {
		c.SettingsPath = filepath.Join(c.DataDir, settingsFile)
	}
	if strings.TrimSpace(c.StorageLocalDir) == "" {
		c.StorageLocalDir = filepath.Join(c.DataDir, backupsDirName)
	}
}

// ResolveDataDir 决定数据目录：调试模式用 ./data，否则依次尝试
// %LOCALAPPDATA%/StopBonus/data 和 $HOME/StopBonus/data，都没有时回退到 ./data。
func ResolveDataDir(debug bool, getenv func(string) string) string {
	local := filepath.Join(".", "data")
	if debug {
		return local
	}
	if dir := strings.TrimSpace(getenv("LOCALAPPDATA")); dir != "" {
		return filepath.Join(dir, appDirName, "data")
	}
	if dir := strings.TrimSpace(getenv("HOME")); dir != "" {
		return filepath.Join(dir, appDirName, "data")
	}
	return local
}
