package payment

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"craftmarket/internal/database"
)

// Notification is a gateway callback as received on the webhook.
type Notification struct {
	OrderID           string `json:"order_id" binding:"required"`
	TransactionStatus string `json:"transaction_status" binding:"required"`
	FraudStatus       string `json:"fraud_status"`
	PaymentType       string `json:"payment_type"`
	TransactionID     string `json:"transaction_id"`
}

// DedupeKey identifies one delivery of one gateway state.
func (n Notification) DedupeKey() string {
	sum := sha256.Sum256([]byte(n.OrderID + "|" + n.TransactionID + "|" + n.TransactionStatus + "|" + n.FraudStatus))
	return hex.EncodeToString(sum[:])
}

// Archive keeps the raw callbacks. Record reports duplicate=true when the same
// delivery was already stored. Forget drops a delivery so that a redelivery is
// processed again.
type Archive interface {
	Record(ctx context.Context, n Notification, raw []byte) (duplicate bool, err error)
	Forget(ctx context.Context, n Notification) error
}

type MongoArchive struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewMongoArchive(db *mongo.Database) *MongoArchive {
	return &MongoArchive{coll: db.Collection(database.PaymentNotificationsCollection), now: time.Now}
}

func (a *MongoArchive) Record(ctx context.Context, n Notification, raw []byte) (bool, error) {
	doc := bson.M{
		"dedupeKey":         n.DedupeKey(),
		"orderReference":    n.OrderID,
		"transactionId":     n.TransactionID,
		"transactionStatus": n.TransactionStatus,
		"fraudStatus":       n.FraudStatus,
		"paymentType":       n.PaymentType,
		"payload":           string(raw),
		"receivedAt":        a.now().UTC(),
	}
	if _, err := a.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return true, nil
		}
		return false, err
	}
	return false, nil
}

func (a *MongoArchive) Forget(ctx context.Context, n Notification) error {
	_, err := a.coll.DeleteOne(ctx, bson.M{"dedupeKey": n.DedupeKey()})
	return err
}

// NopArchive is used when no document store is configured.
type NopArchive struct{}

func (NopArchive) Record(context.Context, Notification, []byte) (bool, error) {
	return false, nil
}

func (NopArchive) Forget(context.Context, Notification) error {
	return nil
}
