package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"chirper/internal/database"
	"chirper/internal/model"
)

type mongoNotificationRepository struct {
	col *mongo.Collection
}

func NewMongoNotificationRepository(db *mongo.Database) NotificationRepository {
	return &mongoNotificationRepository{col: db.Collection(database.NotificationsCollection)}
}

func (r *mongoNotificationRepository) Create(ctx context.Context, n *model.Notification) error {
	_, err := r.col.InsertOne(ctx, n)
	return storeErr("insert notification", err)
}

func (r *mongoNotificationRepository) ListForUser(ctx context.Context, userID string) ([]model.Notification, error) {
	cur, err := r.col.Find(ctx, bson.M{"to": userID}, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, storeErr("list notifications", err)
	}

	notifications := []model.Notification{}
	if err := cur.All(ctx, &notifications); err != nil {
		return nil, storeErr("decode notifications", err)
	}
	return notifications, nil
}

func (r *mongoNotificationRepository) MarkAllRead(ctx context.Context, userID string) error {
	_, err := r.col.UpdateMany(ctx,
		bson.M{"to": userID, "read": false},
		bson.M{"$set": bson.M{"read": true}},
	)
	return storeErr("mark notifications read", err)
}

func (r *mongoNotificationRepository) DeleteForUser(ctx context.Context, userID string) error {
	_, err := r.col.DeleteMany(ctx, bson.M{"to": userID})
	return storeErr("delete notifications", err)
}
