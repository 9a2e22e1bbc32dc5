package catalogRepo

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

// MongoCatalogRepo implements CatalogRepository using MongoDB.
type MongoCatalogRepo struct {
	serviceColl  *mongo.Collection
	offeringColl *mongo.Collection
	hoursColl    *mongo.Collection
}

// NewMongoCatalogRepo constructs a new instance of MongoCatalogRepo.
func NewMongoCatalogRepo() CatalogRepository {
	db := database.MongoClient.Database(config.AppConfig.DatabaseName)
	return &MongoCatalogRepo{
		serviceColl:  db.Collection("services"),
		offeringColl: db.Collection("service_offerings"),
		hoursColl:    db.Collection("business_hours"),
	}
}

func (repo *MongoCatalogRepo) GetServiceByID(ctx context.Context, id string) (*models.Service, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var svc models.Service
	if err := repo.serviceColl.FindOne(ctx, bson.M{"id": id}).Decode(&svc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching service with id %s: %w", id, err)
	}
	return &svc, nil
}

func (repo *MongoCatalogRepo) GetOfferingByID(ctx context.Context, id string) (*models.ServiceOffering, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var off models.ServiceOffering
	if err := repo.offeringColl.FindOne(ctx, bson.M{"id": id}).Decode(&off); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching offering with id %s: %w", id, err)
	}
	return &off, nil
}

func (repo *MongoCatalogRepo) ListServicesByProvider(ctx context.Context, providerID string) ([]models.Service, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := repo.serviceColl.Find(ctx, bson.M{"provider_id": providerID})
	if err != nil {
		return nil, fmt.Errorf("error listing services for provider %s: %w", providerID, err)
	}
	defer cursor.Close(ctx)

	var services []models.Service
	if err := cursor.All(ctx, &services); err != nil {
		return nil, fmt.Errorf("error decoding services: %w", err)
	}
	return services, nil
}

func (repo *MongoCatalogRepo) GetBusinessHour(ctx context.Context, serviceID string, dayOfWeek int) (*models.BusinessHour, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var bh models.BusinessHour
	filter := bson.M{"service_id": serviceID, "day_of_week": dayOfWeek}
	if err := repo.hoursColl.FindOne(ctx, filter).Decode(&bh); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("error fetching business hours for service %s: %w", serviceID, err)
	}
	return &bh, nil
}

func (repo *MongoCatalogRepo) ReplaceBusinessHours(ctx context.Context, serviceID string, hours []models.BusinessHour) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := repo.hoursColl.DeleteMany(ctx, bson.M{"service_id": serviceID}); err != nil {
		return fmt.Errorf("error clearing business hours for service %s: %w", serviceID, err)
	}
	if len(hours) == 0 {
		return nil
	}

	docs := make([]interface{}, 0, len(hours))
	for _, h := range hours {
		docs = append(docs, h)
	}
	if _, err := repo.hoursColl.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("error inserting business hours for service %s: %w", serviceID, err)
	}
	return nil
}
