// Package mongodb provides the durable MongoDB-backed repositories.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Alekperov-Vitalii/Diplom/internal/domain"
)

const (
	pointsCollection = "telemetry_points"
	alertsCollection = "alerts"
)

// TelemetryRepository stores telemetry points in a MongoDB collection,
// one document per point.
type TelemetryRepository struct {
	client   *mongo.Client
	database string
}

// NewTelemetryRepository connects and verifies the connection.
func NewTelemetryRepository(mongoURI, database string) (*TelemetryRepository, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return &TelemetryRepository{client: client, database: database}, nil
}

func (r *TelemetryRepository) WritePoints(ctx context.Context, points []*domain.Point) error {
	if len(points) == 0 {
		return nil
	}
	coll := r.client.Database(r.database).Collection(pointsCollection)

	docs := make([]interface{}, len(points))
	for i, p := range points {
		docs[i] = p
	}
	if _, err := coll.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("%w: insert points: %v", domain.ErrDatabaseError, err)
	}
	return nil
}

func (r *TelemetryRepository) Latest(ctx context.Context, measurement, deviceID string) (*domain.Point, error) {
	coll := r.client.Database(r.database).Collection(pointsCollection)

	filter := bson.M{"measurement": measurement, "tags.device_id": deviceID}
	opts := options.FindOne().SetSort(bson.D{{Key: "timestamp", Value: -1}})

	var point domain.Point
	err := coll.FindOne(ctx, filter, opts).Decode(&point)
	if err == mongo.ErrNoDocuments {
		return nil, domain.ErrDeviceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: query latest point: %v", domain.ErrDatabaseError, err)
	}
	return &point, nil
}

func (r *TelemetryRepository) Range(ctx context.Context, measurement, deviceID string, since time.Time) ([]*domain.Point, error) {
	coll := r.client.Database(r.database).Collection(pointsCollection)

	filter := bson.M{
		"measurement":    measurement,
		"tags.device_id": deviceID,
		"timestamp":      bson.M{"$gte": since},
	}
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})

	cursor, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: query points: %v", domain.ErrDatabaseError, err)
	}
	defer cursor.Close(ctx)

	var points []*domain.Point
	if err := cursor.All(ctx, &points); err != nil {
		return nil, fmt.Errorf("%w: decode points: %v", domain.ErrDatabaseError, err)
	}
	return points, nil
}

// Close disconnects the underlying client.
func (r *TelemetryRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

// AlertRepository stores alert history in MongoDB.
type AlertRepository struct {
	client   *mongo.Client
	database string
}

func NewAlertRepository(mongoURI, database string) (*AlertRepository, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return &AlertRepository{client: client, database: database}, nil
}

func (r *AlertRepository) Store(ctx context.Context, alert *domain.Alert) error {
	coll := r.client.Database(r.database).Collection(alertsCollection)
	if _, err := coll.InsertOne(ctx, alert); err != nil {
		return fmt.Errorf("%w: insert alert: %v", domain.ErrDatabaseError, err)
	}
	return nil
}

func (r *AlertRepository) Recent(ctx context.Context, limit int) ([]*domain.Alert, error) {
	coll := r.client.Database(r.database).Collection(alertsCollection)

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if limit > 0 {
		opts = opts.SetLimit(int64(limit))
	}

	cursor, err := coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: query alerts: %v", domain.ErrDatabaseError, err)
	}
	defer cursor.Close(ctx)

	var alerts []*domain.Alert
	if err := cursor.All(ctx, &alerts); err != nil {
		return nil, fmt.Errorf("%w: decode alerts: %v", domain.ErrDatabaseError, err)
	}
	return alerts, nil
}

func (r *AlertRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
