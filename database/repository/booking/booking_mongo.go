package bookingRepo

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
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoBookingRepo implements BookingRepository using MongoDB.
type MongoBookingRepo struct {
	bookingColl *mongo.Collection
}

// NewMongoBookingRepo constructs a new instance of MongoBookingRepo.
func NewMongoBookingRepo() BookingRepository {
	db := database.MongoClient.Database(config.AppConfig.DatabaseName)
	return &MongoBookingRepo{
		bookingColl: db.Collection("bookings"),
	}
}

func (repo *MongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var booking models.Booking
	if err := repo.bookingColl.FindOne(ctx, bson.M{"id": id}).Decode(&booking); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching booking with id %s: %w", id, err)
	}
	return &booking, nil
}

func blockingFilter(serviceID, date string) bson.M {
	return bson.M{
		"service_id": serviceID,
		"date":       date,
		"status":     bson.M{"$in": []string{models.StatusPending, models.StatusConfirmed}},
	}
}

func (repo *MongoBookingRepo) FindBlocking(ctx context.Context, serviceID, date string) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}})
	cursor, err := repo.bookingColl.Find(ctx, blockingFilter(serviceID, date), opts)
	if err != nil {
		return nil, fmt.Errorf("error finding blocking bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("error decoding bookings: %w", err)
	}
	return bookings, nil
}

// CreateIfSlotFree re-checks the no-double-booking invariant and inserts the
// booking inside one transaction, so two racing creations for overlapping
// intervals cannot both commit.
func (repo *MongoBookingRepo) CreateIfSlotFree(ctx context.Context, booking *models.Booking) error {
	client := repo.bookingColl.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	txnFn := func(sc mongo.SessionContext) error {
		overlap := blockingFilter(booking.ServiceID, booking.Date)
		// Half-open interval overlap; "HH:MM" strings order lexicographically.
		overlap["start_time"] = bson.M{"$lt": booking.EndTime}
		overlap["end_time"] = bson.M{"$gt": booking.StartTime}

		n, err := repo.bookingColl.CountDocuments(sc, overlap)
		if err != nil {
			return fmt.Errorf("overlap check failed: %w", err)
		}
		if n > 0 {
			return ErrSlotTaken
		}

		if _, err := repo.bookingColl.InsertOne(sc, booking); err != nil {
			return fmt.Errorf("insert booking failed: %w", err)
		}
		return nil
	}

	if err := mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := txnFn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	}); err != nil {
		if errors.Is(err, ErrSlotTaken) {
			return ErrSlotTaken
		}
		return fmt.Errorf("booking transaction failed: %w", err)
	}
	return nil
}

func (repo *MongoBookingRepo) findAndApply(ctx context.Context, filter, update bson.M) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Booking
	if err := repo.bookingColl.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNoMatch
		}
		return nil, fmt.Errorf("error updating booking: %w", err)
	}
	return &updated, nil
}

func (repo *MongoBookingRepo) UpdateStatus(ctx context.Context, id string, from []string, to string, entry models.AuditEntry) (*models.Booking, error) {
	filter := bson.M{"id": id, "status": bson.M{"$in": from}}
	update := bson.M{
		"$set":  bson.M{"status": to, "updated_at": time.Now()},
		"$push": bson.M{"audit_log": entry},
	}
	return repo.findAndApply(ctx, filter, update)
}

func (repo *MongoBookingRepo) MarkPaid(ctx context.Context, id, method, ref string, paidAt time.Time, entry models.AuditEntry) (*models.Booking, bool, error) {
	filter := bson.M{"id": id, "payment_status": bson.M{"$ne": models.PaymentPaid}}
	update := bson.M{
		"$set": bson.M{
			"payment_status": models.PaymentPaid,
			"payment_method": method,
			"payment_ref":    ref,
			"paid_at":        paidAt,
			"updated_at":     time.Now(),
		},
		"$push": bson.M{"audit_log": entry},
	}

	updated, err := repo.findAndApply(ctx, filter, update)
	if err == nil {
		return updated, true, nil
	}
	if !errors.Is(err, ErrNoMatch) {
		return nil, false, err
	}

	// Either already paid or missing; let the caller see which.
	booking, getErr := repo.GetByID(ctx, id)
	if getErr != nil {
		return nil, false, getErr
	}
	return booking, false, nil
}

func (repo *MongoBookingRepo) SetPaymentStatus(ctx context.Context, id, from, to string, entry models.AuditEntry) (*models.Booking, error) {
	filter := bson.M{"id": id, "payment_status": from}
	update := bson.M{
		"$set":  bson.M{"payment_status": to, "updated_at": time.Now()},
		"$push": bson.M{"audit_log": entry},
	}
	return repo.findAndApply(ctx, filter, update)
}

func (repo *MongoBookingRepo) AppendAudit(ctx context.Context, id string, entry models.AuditEntry) (*models.Booking, error) {
	filter := bson.M{"id": id}
	update := bson.M{
		"$set":  bson.M{"updated_at": time.Now()},
		"$push": bson.M{"audit_log": entry},
	}
	booking, err := repo.findAndApply(ctx, filter, update)
	if errors.Is(err, ErrNoMatch) {
		return nil, ErrNotFound
	}
	return booking, err
}

func (repo *MongoBookingRepo) ListByCustomer(ctx context.Context, customerID string) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "start_time", Value: -1}})
	cursor, err := repo.bookingColl.Find(ctx, bson.M{"customer_id": customerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing bookings for customer %s: %w", customerID, err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("error decoding bookings: %w", err)
	}
	return bookings, nil
}

func (repo *MongoBookingRepo) ListByServices(ctx context.Context, serviceIDs []string, filter ListFilter) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := bson.M{"service_id": bson.M{"$in": serviceIDs}}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	dateRange := bson.M{}
	if filter.DateFrom != "" {
		dateRange["$gte"] = filter.DateFrom
	}
	if filter.DateTo != "" {
		dateRange["$lte"] = filter.DateTo
	}
	if len(dateRange) > 0 {
		query["date"] = dateRange
	}

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "start_time", Value: 1}})
	cursor, err := repo.bookingColl.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing vendor bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("error decoding bookings: %w", err)
	}
	return bookings, nil
}

func (repo *MongoBookingRepo) ListPaymentsByCustomer(ctx context.Context, customerID string) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := bson.M{
		"customer_id": customerID,
		"payment_status": bson.M{"$in": []string{
			models.PaymentPaid, models.PaymentRefunded, models.PaymentPartiallyRefunded,
		}},
	}
	opts := options.Find().SetSort(bson.D{{Key: "paid_at", Value: -1}})
	cursor, err := repo.bookingColl.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing payments for customer %s: %w", customerID, err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("error decoding bookings: %w", err)
	}
	return bookings, nil
}
