package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/hris-core-go/internal/config"
	"github.com/cmlabs-hris/hris-core-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-core-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-core-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-core-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-core-go/internal/repository/mongodb"
	"github.com/cmlabs-hris/hris-core-go/internal/repository/postgresql"
)

// repositories is the storage backend selected by DB_DRIVER.
type repositories struct {
	users      user.UserRepository
	attendance attendance.AttendanceRepository
	leave      leave.LeaveRequestRepository
	close      func(ctx context.Context)
}

func openRepositories(ctx context.Context, dbConfig config.DatabaseConfig) (*repositories, error) {
	switch dbConfig.Driver {
	case config.DriverPostgres:
		db, err := database.NewPostgreSQLDB(ctx, dbConfig.URL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		return &repositories{
			users:      postgresql.NewUserRepository(db),
			attendance: postgresql.NewAttendanceRepository(db),
			leave:      postgresql.NewLeaveRequestRepository(db),
			close:      func(context.Context) { db.Close() },
		}, nil

	case config.DriverMongoDB:
		mongo, err := database.NewMongoDB(ctx, dbConfig.MongoURI, dbConfig.MongoDatabase)
		if err != nil {
			return nil, err
		}
		if err := mongodb.EnsureIndexes(ctx, mongo.Database); err != nil {
			_ = mongo.Close(context.Background())
			return nil, err
		}
		return &repositories{
			users:      mongodb.NewUserRepository(mongo.Database),
			attendance: mongodb.NewAttendanceRepository(mongo.Database),
			leave:      mongodb.NewLeaveRequestRepository(mongo.Database),
			close: func(ctx context.Context) {
				if err := mongo.Close(ctx); err != nil {
					slog.Warn("mongodb disconnect", "error", err)
				}
			},
		}, nil

	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", dbConfig.Driver)
	}
}
