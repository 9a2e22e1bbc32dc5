package userRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"handyhub/config"
	"handyhub/database"
	"handyhub/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoUserRepo implements UserRepository using MongoDB.
type MongoUserRepo struct {
	userColl *mongo.Collection
}

// NewMongoUserRepo constructs a new instance of MongoUserRepo.
func NewMongoUserRepo() UserRepository {
	db := database.MongoClient.Database(config.AppConfig.DatabaseName)
	return &MongoUserRepo{
		userColl: db.Collection("users"),
	}
}

func (repo *MongoUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var user models.User
	if err := repo.userColl.FindOne(ctx, bson.M{"id": id}).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching user with id %s: %w", id, err)
	}
	return &user, nil
}

func (repo *MongoUserRepo) FillContact(ctx context.Context, id, name, phone string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// Only fill fields that are still empty; never overwrite user-entered data.
	if name != "" {
		filter := bson.M{"id": id, "name": bson.M{"$in": bson.A{"", nil}}}
		update := bson.M{"$set": bson.M{"name": name, "updated_at": time.Now()}}
		if _, err := repo.userColl.UpdateOne(ctx, filter, update); err != nil {
			return fmt.Errorf("error filling name for user %s: %w", id, err)
		}
	}
	if phone != "" {
		filter := bson.M{"id": id, "phone": bson.M{"$in": bson.A{"", nil}}}
		update := bson.M{"$set": bson.M{"phone": phone, "updated_at": time.Now()}}
		if _, err := repo.userColl.UpdateOne(ctx, filter, update); err != nil {
			return fmt.Errorf("error filling phone for user %s: %w", id, err)
		}
	}
	return nil
}
