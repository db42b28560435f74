package appointmentRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"frontdesk/database"
	"frontdesk/models"
	"frontdesk/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// ErrDuplicateSlot is returned when another confirmed appointment already
// holds the same tenant+start slot. The unique index is the arbiter for
// concurrent booking attempts.
var ErrDuplicateSlot = errors.New("slot already booked")

// AppointmentRepository is the durable store for appointment records.
type AppointmentRepository interface {
	Create(ctx context.Context, appt *models.Appointment) error
	GetByID(ctx context.Context, id string) (*models.Appointment, error)
	GetConfirmedBySession(ctx context.Context, tenantID, sessionID string) (*models.Appointment, error)
	ListConfirmedInRange(ctx context.Context, tenantID string, from, to time.Time) ([]models.Appointment, error)
}

type mongoAppointmentRepo struct {
	coll *mongo.Collection
}

// NewMongoAppointmentRepo returns an AppointmentRepository backed by MongoDB.
func NewMongoAppointmentRepo() AppointmentRepository {
	repo := &mongoAppointmentRepo{coll: database.Collection("appointments")}
	if err := repo.ensureIndexes(); err != nil {
		utils.GetLogger().Warn("appointment index creation failed", zap.Error(err))
	}
	return repo
}

func (r *mongoAppointmentRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		// At most one confirmed appointment per tenant and slot start.
		{
			Keys: bson.D{{Key: "tenantId", Value: 1}, {Key: "start", Value: 1}},
			Options: options.Index().SetUnique(true).SetPartialFilterExpression(
				bson.M{"status": models.AppointmentConfirmed},
			),
		},
		{Keys: bson.D{{Key: "tenantId", Value: 1}, {Key: "sessionId", Value: 1}}},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create appointment indexes: %w", err)
	}
	return nil
}

// Create inserts a new appointment record. A unique-index violation on
// tenant+start surfaces as ErrDuplicateSlot.
func (r *mongoAppointmentRepo) Create(ctx context.Context, appt *models.Appointment) error {
	if appt.ID == "" {
		appt.ID = uuid.New().String()
	}
	appt.CreatedAt = time.Now()

	if _, err := r.coll.InsertOne(ctx, appt); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateSlot
		}
		return fmt.Errorf("failed to insert appointment: %w", err)
	}
	return nil
}

// GetByID returns an appointment by its ID.
func (r *mongoAppointmentRepo) GetByID(ctx context.Context, id string) (*models.Appointment, error) {
	var appt models.Appointment
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&appt); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch appointment %s: %w", id, err)
	}
	return &appt, nil
}

// GetConfirmedBySession returns the confirmed appointment created by a
// session, or nil when the session has not booked. Used for idempotent
// re-entry of the booked phase.
func (r *mongoAppointmentRepo) GetConfirmedBySession(ctx context.Context, tenantID, sessionID string) (*models.Appointment, error) {
	filter := bson.M{
		"tenantId":  tenantID,
		"sessionId": sessionID,
		"status":    models.AppointmentConfirmed,
	}
	var appt models.Appointment
	if err := r.coll.FindOne(ctx, filter).Decode(&appt); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch appointment for session %s: %w", sessionID, err)
	}
	return &appt, nil
}

// ListConfirmedInRange returns confirmed appointments whose interval starts
// inside [from, to), ordered by start.
func (r *mongoAppointmentRepo) ListConfirmedInRange(ctx context.Context, tenantID string, from, to time.Time) ([]models.Appointment, error) {
	filter := bson.M{
		"tenantId": tenantID,
		"status":   models.AppointmentConfirmed,
		"start":    bson.M{"$gte": from, "$lt": to},
	}
	opts := options.Find().SetSort(bson.D{{Key: "start", Value: 1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	defer cursor.Close(ctx)

	var appts []models.Appointment
	if err := cursor.All(ctx, &appts); err != nil {
		return nil, fmt.Errorf("failed to decode appointments: %w", err)
	}
	return appts, nil
}
