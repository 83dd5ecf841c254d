package mongo

import (
	"context"
	"log/slog"
	"time"

	"restapi/internal/domain/entity"
	domainerrors "restapi/internal/domain/errors"
	"restapi/internal/domain/lifecycle"
	"restapi/internal/domain/query"
	"restapi/internal/domain/repository"
	"restapi/internal/errors"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const activityCollection = "activities"

// activityFields maps API field names onto document keys.
var activityFields = map[string]string{
	"id":        "_id",
	"userId":    "user_id",
	"activity":  "activity",
	"module":    "action.module",
	"targetId":  "action.target_id",
	"message":   "message",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

type activityDocument struct {
	ID        string         `bson:"_id"`
	UserID    string         `bson:"user_id"`
	Activity  string         `bson:"activity"`
	Action    actionDocument `bson:"action"`
	Message   string         `bson:"message,omitempty"`
	Deleted   bool           `bson:"deleted"`
	CreatedAt time.Time      `bson:"created_at"`
	UpdatedAt time.Time      `bson:"updated_at"`
}

type actionDocument struct {
	TargetID string `bson:"target_id,omitempty"`
	Module   string `bson:"module"`
}

type activityRepository struct {
	coll *mongo.Collection
}

// NewActivityRepository stores activities in the "activities" collection.
// Populates are not supported by this store and are ignored.
func NewActivityRepository(db *mongo.Database, logger *slog.Logger) repository.ActivityRepository {
	coll := db.Collection(activityCollection)

	ctx, cancel := context.WithTimeout(context.Background(), lifecycle.DefaultTimeout)
	defer cancel()
	if err := ensureIndexes(ctx, coll); err != nil {
		logger.Warn("Failed to create activity indexes",
			slog.String("collection", activityCollection),
			slog.Any("error", err),
		)
	}

	return &activityRepository{coll: coll}
}

func ensureIndexes(ctx context.Context, coll *mongo.Collection) error {
	idx := mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
		Options: options.Index().SetName("user_created_idx"),
	}
	if _, err := coll.Indexes().CreateOne(ctx, idx); err != nil {
		return errors.Wrap(err, "failed to create user_created_idx")
	}

	return nil
}

func (r *activityRepository) Create(ctx context.Context, activity *entity.Activity) error {
	if activity.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return errors.Wrap(err, "failed to generate activity id")
		}
		activity.ID = id
	}
	now := time.Now().UTC()
	activity.CreatedAt, activity.UpdatedAt = now, now

	if _, err := r.coll.InsertOne(ctx, toDocument(activity)); err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to record activity")
	}

	return nil
}

func (r *activityRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Activity, error) {
	var doc activityDocument
	err := r.coll.FindOne(ctx, bson.M{"_id": id.String(), "deleted": false}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrActivityNotFound
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to find activity")
	}

	return doc.toEntity(), nil
}

func (r *activityRepository) List(ctx context.Context, userID *uuid.UUID, q *query.ListQuery) ([]*entity.Activity, int64, error) {
	filter := buildFilter(userID, q)

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, domainerrors.NewDatabaseExecuteError(err, "failed to count activities")
	}

	cur, err := r.coll.Find(ctx, filter, buildFindOptions(q))
	if err != nil {
		return nil, 0, domainerrors.NewDatabaseExecuteError(err, "failed to list activities")
	}
	defer cur.Close(ctx)

	var docs []activityDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, domainerrors.NewDatabaseExecuteError(err, "failed to decode activities")
	}

	activities := make([]*entity.Activity, 0, len(docs))
	for i := range docs {
		activities = append(activities, docs[i].toEntity())
	}

	return activities, total, nil
}

func (r *activityRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id.String(), "deleted": false},
		bson.M{"$set": bson.M{"deleted": true, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to delete activity")
	}
	if res.MatchedCount == 0 {
		return repository.ErrActivityNotFound
	}

	return nil
}

func buildFilter(userID *uuid.UUID, q *query.ListQuery) bson.M {
	filter := bson.M{"deleted": false}
	if q != nil {
		for field, value := range q.Filter {
			key, ok := activityFields[field]
			if !ok || field == query.FieldDeleted {
				continue
			}
			filter[key] = value
		}
	}
	if userID != nil {
		filter["user_id"] = userID.String()
	}

	return filter
}

func buildFindOptions(q *query.ListQuery) *options.FindOptions {
	opts := options.Find()
	if q == nil {
		return opts.SetSort(bson.D{{Key: "created_at", Value: -1}})
	}

	direction := -1
	if q.Sort.Direction == query.Asc {
		direction = 1
	}
	sortKey, ok := activityFields[q.Sort.Field]
	if !ok {
		sortKey = "created_at"
	}
	sort := bson.D{{Key: sortKey, Value: direction}}
	if tiebreak, ok := activityFields[q.Sort.Tiebreak]; ok && tiebreak != sortKey {
		sort = append(sort, bson.E{Key: tiebreak, Value: direction})
	}
	opts.SetSort(sort).SetSkip(int64(q.Offset)).SetLimit(int64(q.Limit))

	if len(q.Select.Fields) > 0 {
		projection := bson.M{"_id": 1, "user_id": 1}
		for _, field := range q.Select.Fields {
			if key, ok := activityFields[field]; ok {
				projection[key] = 1
			}
		}
		opts.SetProjection(projection)
	}

	return opts
}

func toDocument(a *entity.Activity) *activityDocument {
	doc := &activityDocument{
		ID:       a.ID.String(),
		UserID:   a.UserID.String(),
		Activity: a.Label,
		Action: actionDocument{
			Module: a.Action.Module,
		},
		Message:   a.Message,
		Deleted:   a.Deleted,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
	if a.Action.TargetID != uuid.Nil {
		doc.Action.TargetID = a.Action.TargetID.String()
	}

	return doc
}

func (d *activityDocument) toEntity() *entity.Activity {
	activity := &entity.Activity{
		Label:     d.Activity,
		Message:   d.Message,
		Deleted:   d.Deleted,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
		Action:    entity.ActivityAction{Module: d.Action.Module},
	}
	activity.ID, _ = uuid.Parse(d.ID)
	activity.UserID, _ = uuid.Parse(d.UserID)
	if d.Action.TargetID != "" {
		activity.Action.TargetID, _ = uuid.Parse(d.Action.TargetID)
	}

	return activity
}
