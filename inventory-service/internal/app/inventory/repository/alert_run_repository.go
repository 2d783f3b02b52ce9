package repository

import (
	"context"
	"fmt"
	"time"

	"inventario/inventory-service/internal/app/inventory/entity"
	"inventario/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const alertRunsCollection = "alert_runs"

type alertRunRepository struct {
	collection *mongo.Collection
}

// NewAlertRunRepository создает журнал проходов генератора в MongoDB
// Индекс по started_at нужен для выборки последних записей
func NewAlertRunRepository(db *mongo.Database) AlertRunRepository {
	collection := db.Collection(alertRunsCollection)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "started_at", Value: -1}},
		Options: options.Index().SetName("started_at_idx"),
	}
	if _, err := collection.Indexes().CreateOne(ctx, indexModel); err != nil {
		// Индекс мог быть создан ранее, журнал работает и без него
		logger.Warn().Err(err).Str("collection", alertRunsCollection).Msg("Failed to create index")
	}

	return &alertRunRepository{collection: collection}
}

// Record сохраняет запись о проходе
func (r *alertRunRepository) Record(ctx context.Context, run *entity.AlertRun) error {
	result, err := r.collection.InsertOne(ctx, run)
	if err != nil {
		return fmt.Errorf("failed to record alert run: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		run.ID = oid
	}
	return nil
}

// ListRecent возвращает последние проходы, новые первыми
func (r *alertRunRepository) ListRecent(ctx context.Context, limit int64) ([]entity.AlertRun, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "started_at", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find alert runs: %w", err)
	}
	defer cursor.Close(ctx)

	runs := make([]entity.AlertRun, 0)
	if err := cursor.All(ctx, &runs); err != nil {
		return nil, fmt.Errorf("failed to decode alert runs: %w", err)
	}
	return runs, nil
}

type noopAlertRunRepository struct{}

// NewNoopAlertRunRepository используется, когда MONGO_URI не задан
func NewNoopAlertRunRepository() AlertRunRepository {
	return noopAlertRunRepository{}
}

func (noopAlertRunRepository) Record(context.Context, *entity.AlertRun) error {
	return nil
}

func (noopAlertRunRepository) ListRecent(context.Context, int64) ([]entity.AlertRun, error) {
	return []entity.AlertRun{}, nil
}
