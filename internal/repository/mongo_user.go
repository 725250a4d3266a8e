package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"chirper/internal/database"
	"chirper/internal/model"
)

type mongoUserRepository struct {
	col *mongo.Collection
}

// NewMongoUserRepository creates a user repository on the users collection.
func NewMongoUserRepository(db *mongo.Database) UserRepository {
	return &mongoUserRepository{col: db.Collection(database.UsersCollection)}
}

func (r *mongoUserRepository) Create(ctx context.Context, u *model.User) error {
	// Array fields must exist for $addToSet and $pull.
	if u.Followers == nil {
		u.Followers = []string{}
	}
	if u.Following == nil {
		u.Following = []string{}
	}
	if u.LikedPosts == nil {
		u.LikedPosts = []string{}
	}

	if _, err := r.col.InsertOne(ctx, u); err != nil {
		if dup := duplicateUserErr(err); dup != nil {
			return dup
		}
		return storeErr("insert user", err)
	}
	return nil
}

func (r *mongoUserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoUserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *mongoUserRepository) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	var u model.User
	err := r.col.FindOne(ctx, filter).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, model.ErrUserNotFound
	}
	if err != nil {
		return nil, storeErr("get user", err)
	}
	return &u, nil
}

func (r *mongoUserRepository) GetByIDs(ctx context.Context, ids []string) ([]model.User, error) {
	if len(ids) == 0 {
		return []model.User{}, nil
	}

	cur, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, storeErr("get users by ids", err)
	}

	users := []model.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, storeErr("decode users", err)
	}
	return users, nil
}

func (r *mongoUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, bson.M{"username": username})
}

func (r *mongoUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, bson.M{"email": email})
}

func (r *mongoUserRepository) exists(ctx context.Context, filter bson.M) (bool, error) {
	n, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return false, storeErr("count users", err)
	}
	return n > 0, nil
}

func (r *mongoUserRepository) UpdateProfile(ctx context.Context, u *model.User) error {
	u.UpdatedAt = time.Now().UTC()
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": u.ID}, bson.M{"$set": bson.M{
		"username":        u.Username,
		"email":           u.Email,
		"password_hashed": u.PasswordHashed,
		"full_name":       u.FullName,
		"bio":             u.Bio,
		"link":            u.Link,
		"profile_img":     u.ProfileImg,
		"cover_img":       u.CoverImg,
		"updated_at":      u.UpdatedAt,
	}})
	if err != nil {
		if dup := duplicateUserErr(err); dup != nil {
			return dup
		}
		return storeErr("update user", err)
	}
	if res.MatchedCount == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

func (r *mongoUserRepository) AddFollower(ctx context.Context, userID, followerID string) (bool, error) {
	return addToSet(ctx, r.col, userID, "followers", followerID)
}

func (r *mongoUserRepository) RemoveFollower(ctx context.Context, userID, followerID string) (bool, error) {
	return pull(ctx, r.col, userID, "followers", followerID)
}

func (r *mongoUserRepository) AddFollowing(ctx context.Context, userID, followeeID string) (bool, error) {
	return addToSet(ctx, r.col, userID, "following", followeeID)
}

func (r *mongoUserRepository) RemoveFollowing(ctx context.Context, userID, followeeID string) (bool, error) {
	return pull(ctx, r.col, userID, "following", followeeID)
}

func (r *mongoUserRepository) AddLikedPost(ctx context.Context, userID, postID string) (bool, error) {
	return addToSet(ctx, r.col, userID, "liked_posts", postID)
}

func (r *mongoUserRepository) RemoveLikedPost(ctx context.Context, userID, postID string) (bool, error) {
	return pull(ctx, r.col, userID, "liked_posts", postID)
}

func (r *mongoUserRepository) RemoveLikedPostFromAll(ctx context.Context, postID string) error {
	_, err := r.col.UpdateMany(ctx,
		bson.M{"liked_posts": postID},
		bson.M{"$pull": bson.M{"liked_posts": postID}},
	)
	return storeErr("pull liked post", err)
}

func (r *mongoUserRepository) Sample(ctx context.Context, excludeID string, size int) ([]model.User, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "_id", Value: bson.D{{Key: "$ne", Value: excludeID}}}}}},
		{{Key: "$sample", Value: bson.D{{Key: "size", Value: size}}}},
	}

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, storeErr("sample users", err)
	}

	users := []model.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, storeErr("decode sampled users", err)
	}
	return users, nil
}

// addToSet adds value to the array field of document id. The $ne guard makes
// the update match only when it changes something.
func addToSet(ctx context.Context, col *mongo.Collection, id, field, value string) (bool, error) {
	res, err := col.UpdateOne(ctx,
		bson.M{"_id": id, field: bson.M{"$ne": value}},
		bson.M{"$addToSet": bson.M{field: value}},
	)
	if err != nil {
		return false, storeErr("add to "+field, err)
	}
	return res.ModifiedCount > 0, nil
}

// pull removes value from the array field of document id.
func pull(ctx context.Context, col *mongo.Collection, id, field, value string) (bool, error) {
	res, err := col.UpdateOne(ctx,
		bson.M{"_id": id, field: value},
		bson.M{"$pull": bson.M{field: value}},
	)
	if err != nil {
		return false, storeErr("pull from "+field, err)
	}
	return res.ModifiedCount > 0, nil
}
