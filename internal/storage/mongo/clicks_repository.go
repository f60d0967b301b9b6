package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/IgorGrieder/shortlink/internal/infrastructure/db"
	"github.com/IgorGrieder/shortlink/internal/processing/analytics"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ClicksRepository struct {
	coll *mongo.Collection
}

type clickDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	LinkID    primitive.ObjectID `bson:"linkId"`
	ClickedAt time.Time          `bson:"clickedAt"`
	Referrer  *string            `bson:"referrer"`
	UserAgent *string            `bson:"userAgent"`
	IPHash    string             `bson:"ipHash"`
	Country   *string            `bson:"country"`
}

type clickStatsDoc struct {
	Total int64     `bson:"total"`
	Last  time.Time `bson:"last"`
}

func NewClicksRepository(m *db.Mongo) (*ClicksRepository, error) {
	repo := &ClicksRepository{coll: m.Collection("clicks")}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := repo.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "linkId", Value: 1}, {Key: "clickedAt", Value: -1}},
		Options: options.Index().SetName("linkId_clickedAt_desc"),
	})
	if err != nil {
		return nil, fmt.Errorf("create clicks indexes: %w", err)
	}

	return repo, nil
}

func (r *ClicksRepository) CreateClick(ctx context.Context, ev analytics.ClickEvent) error {
	linkID, err := primitive.ObjectIDFromHex(ev.LinkID)
	if err != nil {
		return fmt.Errorf("click link id %q: %w", ev.LinkID, err)
	}

	_, err = r.coll.InsertOne(ctx, clickDoc{
		LinkID:    linkID,
		ClickedAt: ev.ClickedAt.UTC(),
		Referrer:  ev.Referrer,
		UserAgent: ev.UserAgent,
		IPHash:    ev.IPHash,
		Country:   ev.Country,
	})
	if err != nil {
		return fmt.Errorf("insert click: %w", err)
	}
	return nil
}

func (r *ClicksRepository) StatsByLinkID(ctx context.Context, linkID string) (int64, *time.Time, error) {
	id, err := primitive.ObjectIDFromHex(linkID)
	if err != nil {
		return 0, nil, fmt.Errorf("stats link id %q: %w", linkID, err)
	}

	cursor, err := r.coll.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"linkId": id}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": 1},
			"last":  bson.M{"$max": "$clickedAt"},
		}}},
	})
	if err != nil {
		return 0, nil, fmt.Errorf("aggregate clicks: %w", err)
	}
	defer cursor.Close(ctx)

	if !cursor.Next(ctx) {
		if err := cursor.Err(); err != nil {
			return 0, nil, fmt.Errorf("aggregate clicks: %w", err)
		}
		return 0, nil, nil
	}

	var stats clickStatsDoc
	if err := cursor.Decode(&stats); err != nil {
		return 0, nil, fmt.Errorf("decode click stats: %w", err)
	}

	last := stats.Last.UTC()
	return stats.Total, &last, nil
}
