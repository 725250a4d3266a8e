package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"chirper/internal/database"
	"chirper/internal/model"
)

type mongoPostRepository struct {
	col *mongo.Collection
}

// NewMongoPostRepository creates a post repository on the posts collection.
// Comments are embedded in the post document.
func NewMongoPostRepository(db *mongo.Database) PostRepository {
	return &mongoPostRepository{col: db.Collection(database.PostsCollection)}
}

var newestFirst = bson.D{{Key: "created_at", Value: -1}}

func (r *mongoPostRepository) Create(ctx context.Context, p *model.Post) error {
	if p.Likes == nil {
		p.Likes = []string{}
	}
	if p.Comments == nil {
		p.Comments = []model.Comment{}
	}

	if _, err := r.col.InsertOne(ctx, p); err != nil {
		return storeErr("insert post", err)
	}
	return nil
}

func (r *mongoPostRepository) GetByID(ctx context.Context, id string) (*model.Post, error) {
	var p model.Post
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, model.ErrPostNotFound
	}
	if err != nil {
		return nil, storeErr("get post", err)
	}
	return &p, nil
}

func (r *mongoPostRepository) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return storeErr("delete post", err)
	}
	if res.DeletedCount == 0 {
		return model.ErrPostNotFound
	}
	return nil
}

func (r *mongoPostRepository) ListAll(ctx context.Context) ([]model.Post, error) {
	return r.find(ctx, bson.M{})
}

func (r *mongoPostRepository) ListByAuthors(ctx context.Context, userIDs []string) ([]model.Post, error) {
	if len(userIDs) == 0 {
		return []model.Post{}, nil
	}
	return r.find(ctx, bson.M{"user_id": bson.M{"$in": userIDs}})
}

func (r *mongoPostRepository) ListByIDs(ctx context.Context, ids []string) ([]model.Post, error) {
	if len(ids) == 0 {
		return []model.Post{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (r *mongoPostRepository) find(ctx context.Context, filter bson.M) ([]model.Post, error) {
	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, storeErr("list posts", err)
	}

	posts := []model.Post{}
	if err := cur.All(ctx, &posts); err != nil {
		return nil, storeErr("decode posts", err)
	}
	return posts, nil
}

func (r *mongoPostRepository) AddLike(ctx context.Context, postID, userID string) (bool, error) {
	return addToSet(ctx, r.col, postID, "likes", userID)
}

func (r *mongoPostRepository) RemoveLike(ctx context.Context, postID, userID string) (bool, error) {
	return pull(ctx, r.col, postID, "likes", userID)
}

func (r *mongoPostRepository) AddComment(ctx context.Context, postID string, c *model.Comment) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": postID}, bson.M{
		"$push": bson.M{"comments": c},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return storeErr("push comment", err)
	}
	if res.MatchedCount == 0 {
		return model.ErrPostNotFound
	}
	return nil
}
