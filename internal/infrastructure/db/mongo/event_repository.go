package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/cbtutils/novedades/internal/core/domain"
	"github.com/cbtutils/novedades/internal/core/ports"
)

const auditCollection = "change_events"

// EventRepository implements ports.AuditRepository using MongoDB.
type EventRepository struct {
	db  *mongo.Database
	now func() time.Time
}

// NewEventRepository creates a new EventRepository.
func NewEventRepository(db *mongo.Database) ports.AuditRepository {
	return &EventRepository{db: db, now: time.Now}
}

// InsertEvent persists a published change event to the audit collection.
func (r *EventRepository) InsertEvent(ctx context.Context, event domain.ChangeEvent) error {
	doc, err := auditDocument(event, r.now())
	if err != nil {
		return err
	}
	if _, err := r.db.Collection(auditCollection).InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert audit event %s: %w", event.ID, err)
	}
	return nil
}

// auditDocument keeps the payload as a queryable sub-document rather than
// an opaque JSON string. The event id doubles as _id so retries cannot
// duplicate a record.
func auditDocument(event domain.ChangeEvent, recordedAt time.Time) (bson.M, error) {
	var data bson.M
	if len(event.Data) > 0 {
		if err := bson.UnmarshalExtJSON(event.Data, false, &data); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", event.Name, err)
		}
	}
	return bson.M{
		"_id":         event.ID,
		"event":       string(event.Name),
		"resource":    event.Name.Resource(),
		"resource_id": event.ResourceID,
		"data":        data,
		"occurred_at": event.OccurredAt.UTC(),
		"recorded_at": recordedAt.UTC(),
	}, nil
}
