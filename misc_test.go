package keypager

import (
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// event is the model used across tests; gorm maps it to the "events" table.
type event struct {
	ID        uint `gorm:"primaryKey"`
	Status    string
	Score     *int
	CreatedAt time.Time
}

var (
	eventID        = MustModelColumn[event, uint]("id")
	eventCreatedAt = MustModelColumn[event, time.Time]("created_at")
	eventStatus    = MustModelColumn[event, string]("status")
	eventScore     = MustModelColumn[event, *int]("score")
)

var eventGetters = Getters[event]{
	"id":         func(e event) any { return e.ID },
	"created_at": func(e event) any { return e.CreatedAt },
	"score":      func(e event) any { return e.Score },
}

func newGORMMySQLMock() (string, *gorm.DB, sqlmock.Sqlmock, error) {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		return "", nil, nil, err
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      mockDB,
		SkipInitializeWithVersion: true,
	})

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return "", nil, nil, err
	}

	return "mysql", db.Debug(), mock, nil
}

func newGORMPostgresMock() (string, *gorm.DB, sqlmock.Sqlmock, error) {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		return "", nil, nil, err
	}

	dialector := postgres.New(postgres.Config{
		Conn: mockDB,
	})

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return "", nil, nil, err
	}

	return "postgres", db.Debug(), mock, nil
}

func newGORMSQLite() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	// Every connection of an in-memory sqlite database sees its own database.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err = db.AutoMigrate(&event{}); err != nil {
		return nil, err
	}

	return db, nil
}
