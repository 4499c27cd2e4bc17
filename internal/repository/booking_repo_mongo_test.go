package repository

import (
	"context"
	"testing"
	"time"

	"github.com/Domenick1991/roombooking/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func TestNewMongoBookingRepository(t *testing.T) {
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI("mongodb://127.0.0.1:27017"))
	require.NoError(t, err)
	defer client.Disconnect(context.Background())

	repo := NewMongoBookingRepository(client, "scheduler")
	assert.NotNil(t, repo)
	assert.Equal(t, bookingsCollection, repo.bookings.Name())
	assert.Equal(t, resourcesCollection, repo.resources.Name())
}

func TestOverlapFilter(t *testing.T) {
	start := time.Date(2025, 5, 10, 18, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	got := overlapFilter("room-1", start, end)

	assert.Equal(t, bson.M{
		"resource": "room-1",
		"start":    bson.M{"$lt": end},
		"end":      bson.M{"$gt": start},
	}, got)
}

func TestBookingDocument_Conversion(t *testing.T) {
	start := time.Date(2025, 5, 10, 14, 0, 0, 0, time.FixedZone("EDT", -4*3600))
	b := &domain.Booking{
		ID:         "id-1",
		Title:      "Club Meeting",
		Resource:   "room-1",
		Start:      start,
		End:        start.Add(time.Hour),
		NumGuests:  12,
		Recurrence: &domain.Recurrence{DaysOfWeek: []int{2}, StartRecur: "2025-05-01"},
	}

	doc := toBookingDocument(b)
	assert.Equal(t, time.UTC, doc.Start.Location())
	assert.Equal(t, []int{2}, doc.Recurrence.DaysOfWeek)

	back := doc.toDomain()
	assert.True(t, back.Start.Equal(start))
	assert.Equal(t, "2025-05-01", back.Recurrence.StartRecur)
	assert.Equal(t, 12, back.NumGuests)
}
