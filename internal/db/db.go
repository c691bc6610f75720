package db

import (
	"fmt"
	"idea-review-platform/internal/config"
	"idea-review-platform/internal/logger"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var AppDb *gorm.DB

func ConnectDb() error {
	dsn := fmt.Sprintf("host=%v user=%v password=%v dbname=%v port=%v sslmode=disable",
		config.AppConfig.DBHost,
		config.AppConfig.DBUser,
		config.AppConfig.DBPassword,
		config.AppConfig.DBName,
		config.AppConfig.DBPort,
	)

	level := gormlogger.Info
	if config.AppConfig.Environment == "production" {
		level = gormlogger.Error
	}
	newLogger := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold: time.Second,
			LogLevel:      level,
			Colorful:      true,
		},
	)

	// TranslateError is required: the review, decision, and version
	// uniqueness races are closed by mapping gorm.ErrDuplicatedKey to a
	// conflict at the service layer.
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         newLogger,
		TranslateError: true,
	})

	if err != nil {
		logger.Log.Fatal().Err(err).Msg("error connecting to db")
		return err
	}
	AppDb = db
	logger.Log.Info().Msg("Success connecting to db")

	return nil
}

func CloseDb() {
	sqlDB, _ := AppDb.DB()
	err := sqlDB.Close()

	if err != nil {
		logger.Log.Fatal().Err(err).Msg("failed to close db")
	}
	logger.Log.Info().Msg("Closing DB")
}
