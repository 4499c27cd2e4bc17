package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Domenick1991/roombooking/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	bookingsCollection  = "bookings"
	resourcesCollection = "booking_resources"
)

type bookingDocument struct {
	ID         string              `bson:"_id"`
	Title      string              `bson:"title"`
	Resource   string              `bson:"resource"`
	Start      time.Time           `bson:"start"`
	End        time.Time           `bson:"end"`
	AllDay     bool                `bson:"all_day"`
	ClubName   string              `bson:"club_name,omitempty"`
	Purpose    string              `bson:"purpose,omitempty"`
	NumGuests  int                 `bson:"num_guests,omitempty"`
	Color      string              `bson:"color,omitempty"`
	Recurrence *recurrenceDocument `bson:"recurrence,omitempty"`
	CreatedAt  time.Time           `bson:"created_at"`
}

type recurrenceDocument struct {
	DaysOfWeek []int  `bson:"days_of_week,omitempty"`
	StartRecur string `bson:"start_recur,omitempty"`
	EndRecur   string `bson:"end_recur,omitempty"`
}

// MongoBookingRepository requires a replica set: inserts run in a
// transaction that first bumps a per-resource guard document, so two
// concurrent inserts on one resource always write-conflict and the
// driver retries the loser, which then sees the winner's booking.
type MongoBookingRepository struct {
	client    *mongo.Client
	bookings  *mongo.Collection
	resources *mongo.Collection
	now       func() time.Time
}

func NewMongoBookingRepository(client *mongo.Client, database string) *MongoBookingRepository {
	db := client.Database(database)
	return &MongoBookingRepository{
		client:    client,
		bookings:  db.Collection(bookingsCollection),
		resources: db.Collection(resourcesCollection),
		now:       time.Now,
	}
}

func (r *MongoBookingRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.bookings.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "resource", Value: 1}, {Key: "start", Value: 1}},
		Options: options.Index().SetName("resource_start"),
	})
	return err
}

func (r *MongoBookingRepository) InsertIfNoOverlap(ctx context.Context, booking *domain.Booking) error {
	session, err := r.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	doc := toBookingDocument(booking)
	doc.CreatedAt = r.now().UTC()

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := r.resources.UpdateOne(sc,
			bson.M{"_id": booking.Resource},
			bson.M{"$inc": bson.M{"version": 1}},
			options.Update().SetUpsert(true),
		); err != nil {
			return nil, err
		}

		n, err := r.bookings.CountDocuments(sc, overlapFilter(booking.Resource, booking.Start, booking.End), options.Count().SetLimit(1))
		if err != nil {
			return nil, err
		}
		if n > 0 {
			return nil, domain.ErrConflict
		}

		_, err = r.bookings.InsertOne(sc, doc)
		return nil, err
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.Invalidf("booking %s already exists", booking.ID)
		}
		return err
	}
	booking.CreatedAt = doc.CreatedAt
	return nil
}

func (r *MongoBookingRepository) List(ctx context.Context, resource string) ([]domain.Booking, error) {
	filter := bson.M{}
	if resource != "" {
		filter["resource"] = resource
	}
	cur, err := r.bookings.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "start", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []bookingDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]domain.Booking, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *MongoBookingRepository) Delete(ctx context.Context, id string) (*domain.Booking, error) {
	var doc bookingDocument
	err := r.bookings.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	b := doc.toDomain()
	return &b, nil
}

// overlapFilter matches bookings on resource that share an instant with
// [start, end).
func overlapFilter(resource string, start, end time.Time) bson.M {
	return bson.M{
		"resource": resource,
		"start":    bson.M{"$lt": end},
		"end":      bson.M{"$gt": start},
	}
}

func toBookingDocument(b *domain.Booking) bookingDocument {
	doc := bookingDocument{
		ID:        b.ID,
		Title:     b.Title,
		Resource:  b.Resource,
		Start:     b.Start.UTC(),
		End:       b.End.UTC(),
		AllDay:    b.AllDay,
		ClubName:  b.ClubName,
		Purpose:   b.Purpose,
		NumGuests: b.NumGuests,
		Color:     b.Color,
	}
	if b.Recurrence != nil {
		doc.Recurrence = &recurrenceDocument{
			DaysOfWeek: b.Recurrence.DaysOfWeek,
			StartRecur: b.Recurrence.StartRecur,
			EndRecur:   b.Recurrence.EndRecur,
		}
	}
	return doc
}

func (d bookingDocument) toDomain() domain.Booking {
	b := domain.Booking{
		ID:        d.ID,
		Title:     d.Title,
		Resource:  d.Resource,
		Start:     d.Start.UTC(),
		End:       d.End.UTC(),
		AllDay:    d.AllDay,
		ClubName:  d.ClubName,
		Purpose:   d.Purpose,
		NumGuests: d.NumGuests,
		Color:     d.Color,
		CreatedAt: d.CreatedAt.UTC(),
	}
	if d.Recurrence != nil {
		b.Recurrence = &domain.Recurrence{
			DaysOfWeek: d.Recurrence.DaysOfWeek,
			StartRecur: d.Recurrence.StartRecur,
			EndRecur:   d.Recurrence.EndRecur,
		}
	}
	return b
}

var _ BookingRepository = (*MongoBookingRepository)(nil)
