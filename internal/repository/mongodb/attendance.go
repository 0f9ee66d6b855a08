package mongodb

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hris-core-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-core-go/internal/pkg/database"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type attendanceRepository struct {
	collection *mongo.Collection
}

func NewAttendanceRepository(db *mongo.Database) attendance.AttendanceRepository {
	return &attendanceRepository{collection: db.Collection(AttendanceCollection)}
}

// attendanceMatch builds the $match stage of a listing.
func attendanceMatch(filter attendance.AttendanceFilter) (bson.M, bool) {
	match := bson.M{}
	if filter.UserID != "" {
		oid, err := primitive.ObjectIDFromHex(filter.UserID)
		if err != nil {
			return nil, false
		}
		match["user_id"] = oid
	}

	date := bson.M{}
	if filter.StartDay != nil {
		date["$gte"] = filter.StartDay.UTC()
	}
	if filter.EndDay != nil {
		date["$lte"] = filter.EndDay.UTC()
	}
	if len(date) > 0 {
		match["date"] = date
	}
	return match, true
}

// withUser joins the owning user onto each attendance document.
func withUser(match bson.M, sort bson.D) mongo.Pipeline {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: match}},
	}
	if len(sort) > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$sort", Value: sort}})
	}
	return append(pipeline,
		bson.D{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: UserCollection},
			{Key: "localField", Value: "user_id"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "user"},
		}}},
		bson.D{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$user"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
	)
}

func (r *attendanceRepository) aggregate(ctx context.Context, op string, pipeline mongo.Pipeline) ([]attendance.Attendance, error) {
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, database.Wrap(op, err)
	}
	defer cursor.Close(ctx)

	var docs []attendanceDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, database.Wrap(op, err)
	}

	records := make([]attendance.Attendance, 0, len(docs))
	for _, d := range docs {
		records = append(records, d.toDomain())
	}
	return records, nil
}

func (r *attendanceRepository) getOne(ctx context.Context, op string, match bson.M) (attendance.Attendance, error) {
	records, err := r.aggregate(ctx, op, withUser(match, nil))
	if err != nil {
		return attendance.Attendance{}, err
	}
	if len(records) == 0 {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	return records[0], nil
}

// Create implements attendance.AttendanceRepository.
func (r *attendanceRepository) Create(ctx context.Context, newAttendance attendance.Attendance) (attendance.Attendance, error) {
	userID, err := primitive.ObjectIDFromHex(newAttendance.UserID)
	if err != nil {
		return attendance.Attendance{}, database.Wrap("insert attendance", err)
	}

	res, err := r.collection.InsertOne(ctx, newAttendanceDocument(newAttendance, userID))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return attendance.Attendance{}, attendance.ErrDuplicateDay
		}
		return attendance.Attendance{}, database.Wrap("insert attendance", err)
	}

	return r.getOne(ctx, "get attendance", bson.M{"_id": res.InsertedID})
}

// GetByUserAndDate implements attendance.AttendanceRepository.
func (r *attendanceRepository) GetByUserAndDate(ctx context.Context, userID string, date time.Time) (attendance.Attendance, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	return r.getOne(ctx, "get attendance by date", bson.M{"user_id": oid, "date": date.UTC()})
}

// Close implements attendance.AttendanceRepository.
func (r *attendanceRepository) Close(ctx context.Context, id string, clockOut time.Time, hoursWorked float64) (attendance.Attendance, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}

	// clock_out: nil matches both a null and a missing field.
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": oid, "clock_out": nil},
		bson.M{"$set": bson.M{
			"clock_out":    clockOut.UTC(),
			"hours_worked": hoursWorked,
			"updated_at":   clockOut.UTC(),
		}},
	)
	if err != nil {
		return attendance.Attendance{}, database.Wrap("close attendance", err)
	}

	if res.MatchedCount == 0 {
		n, err := r.collection.CountDocuments(ctx, bson.M{"_id": oid})
		if err != nil {
			return attendance.Attendance{}, database.Wrap("check attendance", err)
		}
		if n == 0 {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, attendance.ErrAlreadyCompleted
	}

	return r.getOne(ctx, "get attendance", bson.M{"_id": oid})
}

// List implements attendance.AttendanceRepository.
func (r *attendanceRepository) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, error) {
	match, ok := attendanceMatch(filter)
	if !ok {
		return []attendance.Attendance{}, nil
	}
	sort := bson.D{{Key: "date", Value: -1}, {Key: "clock_in", Value: -1}}
	return r.aggregate(ctx, "list attendance", withUser(match, sort))
}
