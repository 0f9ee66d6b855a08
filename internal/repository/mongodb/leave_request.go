package mongodb

import (
	"context"
	"errors"

	"github.com/cmlabs-hris/hris-core-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-core-go/internal/pkg/database"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type leaveRequestRepository struct {
	collection *mongo.Collection
}

func NewLeaveRequestRepository(db *mongo.Database) leave.LeaveRequestRepository {
	return &leaveRequestRepository{collection: db.Collection(LeaveRequestCollection)}
}

// leaveRequestMatch builds the $match stage of a listing.
func leaveRequestMatch(filter leave.LeaveRequestFilter) (bson.M, bool) {
	match := bson.M{}
	if filter.EmployeeID != "" {
		oid, err := primitive.ObjectIDFromHex(filter.EmployeeID)
		if err != nil {
			return nil, false
		}
		match["employee_id"] = oid
	}
	if filter.StatusValue != nil {
		match["status"] = string(*filter.StatusValue)
	}
	return match, true
}

// leaveRequestPipeline pages through matching requests, newest first, with
// the employee joined in.
func leaveRequestPipeline(match bson.M, skip, limit int) mongo.Pipeline {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: match}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}}},
	}
	if skip > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$skip", Value: int64(skip)}})
	}
	if limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: int64(limit)}})
	}
	return append(pipeline,
		bson.D{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: UserCollection},
			{Key: "localField", Value: "employee_id"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "employee"},
		}}},
		bson.D{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$employee"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
	)
}

func (r *leaveRequestRepository) aggregate(ctx context.Context, op string, pipeline mongo.Pipeline) ([]leave.LeaveRequest, error) {
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, database.Wrap(op, err)
	}
	defer cursor.Close(ctx)

	var docs []leaveRequestDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, database.Wrap(op, err)
	}

	requests := make([]leave.LeaveRequest, 0, len(docs))
	for _, d := range docs {
		requests = append(requests, d.toDomain())
	}
	return requests, nil
}

// Create implements leave.LeaveRequestRepository.
func (r *leaveRequestRepository) Create(ctx context.Context, request leave.LeaveRequest) (leave.LeaveRequest, error) {
	employeeID, err := primitive.ObjectIDFromHex(request.EmployeeID)
	if err != nil {
		return leave.LeaveRequest{}, database.Wrap("insert leave request", err)
	}
	approverID, ok := optionalObjectID(request.ApproverID)
	if !ok {
		return leave.LeaveRequest{}, database.Wrap("insert leave request", errors.New("invalid approver id"))
	}

	res, err := r.collection.InsertOne(ctx, newLeaveRequestDocument(request, employeeID, approverID))
	if err != nil {
		return leave.LeaveRequest{}, database.Wrap("insert leave request", err)
	}

	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		request.ID = oid.Hex()
	}
	return request, nil
}

// GetByID implements leave.LeaveRequestRepository.
func (r *leaveRequestRepository) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}

	requests, err := r.aggregate(ctx, "get leave request", leaveRequestPipeline(bson.M{"_id": oid}, 0, 1))
	if err != nil {
		return leave.LeaveRequest{}, err
	}
	if len(requests) == 0 {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	return requests[0], nil
}

// List implements leave.LeaveRequestRepository.
func (r *leaveRequestRepository) List(ctx context.Context, filter leave.LeaveRequestFilter) ([]leave.LeaveRequest, int64, error) {
	match, ok := leaveRequestMatch(filter)
	if !ok {
		return []leave.LeaveRequest{}, 0, nil
	}

	total, err := r.collection.CountDocuments(ctx, match)
	if err != nil {
		return nil, 0, database.Wrap("count leave requests", err)
	}

	requests, err := r.aggregate(ctx, "list leave requests", leaveRequestPipeline(match, filter.Offset(), filter.Limit))
	if err != nil {
		return nil, 0, err
	}
	return requests, total, nil
}

// Transition implements leave.LeaveRequestRepository. The status is part
// of the update filter, so only one concurrent transition can match.
func (r *leaveRequestRepository) Transition(ctx context.Context, id string, from leave.Status, update leave.StatusUpdate) (leave.LeaveRequest, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	approverID, ok := optionalObjectID(update.ApproverID)
	if !ok {
		return leave.LeaveRequest{}, database.Wrap("update leave request status", errors.New("invalid approver id"))
	}

	res := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": oid, "status": string(from)},
		bson.M{"$set": bson.M{
			"status":        string(update.Status),
			"approver_id":   approverID,
			"approved_at":   update.ApprovedAt,
			"denial_reason": update.DenialReason,
			"updated_at":    update.UpdatedAt.UTC(),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if err := res.Err(); err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return leave.LeaveRequest{}, database.Wrap("update leave request status", err)
		}
		n, err := r.collection.CountDocuments(ctx, bson.M{"_id": oid})
		if err != nil {
			return leave.LeaveRequest{}, database.Wrap("check leave request", err)
		}
		if n == 0 {
			return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
		}
		return leave.LeaveRequest{}, leave.ErrInvalidTransition
	}

	return r.GetByID(ctx, id)
}
