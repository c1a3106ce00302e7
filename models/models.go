package models

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB is the shared handle opened by Init.
var DB *gorm.DB

func Init() (err error) {
	DB, err = open(
		viper.GetString("db.type"),
		viper.GetString("db.datafile"),
		viper.GetString("db.uri"),
		viper.GetString("db.log_level"),
	)
	if err != nil {
		return
	}
	err = DB.AutoMigrate(
		&Stream{},
		&ServiceSettings{},
		&Serial{},
		&Subscriber{},
		&Provider{},
		&Epg{},
	)
	if err != nil {
		return
	}
	seedDefaultProvider()
	return
}

func open(dbType, datafile, uri, logLevel string) (*gorm.DB, error) {
	cfg := &gorm.Config{Logger: logger.Default.LogMode(gormLogLevel(logLevel))}
	switch strings.ToLower(dbType) {
	case "mysql":
		return gorm.Open(mysql.Open(uri), cfg)
	case "postgres":
		return gorm.Open(postgres.Open(uri), cfg)
	case "", "sqlite":
		if datafile == "" {
			datafile = "streamrack.db"
		}
		return gorm.Open(sqlite.Open(datafile), cfg)
	}
	return nil, fmt.Errorf("unsupported db type %q", dbType)
}

func gormLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "info":
		return logger.Info
	case "warn":
		return logger.Warn
	case "error":
		return logger.Error
	default:
		return logger.Silent
	}
}

func seedDefaultProvider() {
	email := viper.GetString("http.default_admin")
	if email == "" {
		email = "admin@localhost"
	}
	password := viper.GetString("http.default_admin_password")
	if password == "" {
		password = "admin"
	}
	var count int64
	DB.Model(&Provider{}).Where("email = ?", email).Count(&count)
	if count == 0 {
		admin := MakeProvider(email, password, "US", DefaultLocale)
		admin.Status = ProviderActive
		DB.Create(admin)
	}
}

func Close() {
	if DB == nil {
		return
	}
	if sqlDB, err := DB.DB(); err == nil {
		sqlDB.Close()
	}
}
