package database

import (
	"context"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const PaymentNotificationsCollection = "payment_notifications"

// EnsurePaymentNotificationIndexes creates the dedupe key for gateway callbacks
// and a lookup index by order reference.
func EnsurePaymentNotificationIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection(PaymentNotificationsCollection).Indexes()

	dedupeIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "dedupeKey", Value: 1}},
		Options: options.Index().
			SetName("dedupeKey_unique").
			SetUnique(true),
	}
	referenceIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "orderReference", Value: 1}, {Key: "receivedAt", Value: -1}},
		Options: options.Index().SetName("orderReference_receivedAt"),
	}

	slog.Info("EnsurePaymentNotificationIndexes: creating indexes")
	if _, err := indexes.CreateMany(ctx, []mongo.IndexModel{dedupeIndex, referenceIndex}); err != nil {
		slog.Error("EnsurePaymentNotificationIndexes: index error", slog.String("error", err.Error()))
		return err
	}
	slog.Info("EnsurePaymentNotificationIndexes: indexes created")
	return nil
}
