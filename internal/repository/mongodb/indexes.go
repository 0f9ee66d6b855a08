package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// indexModels lists the indexes every collection needs. The unique
// (user_id, date) index backs the one-record-per-day rule.
func indexModels() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		UserCollection: {
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("users_email_key"),
			},
		},
		AttendanceCollection: {
			{
				Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "date", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("attendances_user_date_key"),
			},
			{
				Keys:    bson.D{{Key: "date", Value: -1}, {Key: "clock_in", Value: -1}},
				Options: options.Index().SetName("idx_attendances_date"),
			},
		},
		LeaveRequestCollection: {
			{
				Keys:    bson.D{{Key: "employee_id", Value: 1}, {Key: "created_at", Value: -1}},
				Options: options.Index().SetName("idx_leave_requests_employee"),
			},
			{
				Keys:    bson.D{{Key: "status", Value: 1}},
				Options: options.Index().SetName("idx_leave_requests_status"),
			},
		},
	}
}

// EnsureIndexes creates missing indexes. Existing ones are left untouched.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for collection, models := range indexModels() {
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", collection, err)
		}
	}
	return nil
}
