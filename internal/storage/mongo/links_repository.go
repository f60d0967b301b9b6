package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/IgorGrieder/shortlink/internal/infrastructure/db"
	"github.com/IgorGrieder/shortlink/internal/processing/links"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type LinksRepository struct {
	coll *mongo.Collection
}

type linkDoc struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	Code            string             `bson:"code"`
	OriginalURL     string             `bson:"originalUrl"`
	CreatedAt       time.Time          `bson:"createdAt"`
	ExpiresAt       *time.Time         `bson:"expiresAt,omitempty"`
	CustomAlias     *string            `bson:"customAlias,omitempty"`
	IsActive        bool               `bson:"isActive"`
	CreatedByIPHash string             `bson:"createdByIpHash"`
}

func NewLinksRepository(m *db.Mongo) (*LinksRepository, error) {
	repo := &LinksRepository{coll: m.Collection("links")}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := repo.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "code", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_code"),
		},
		{
			Keys:    bson.D{{Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("createdAt_desc"),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create links indexes: %w", err)
	}

	return repo, nil
}

func (r *LinksRepository) Create(ctx context.Context, link *links.Link) error {
	if link == nil {
		return errors.New("link is nil")
	}

	doc := linkDoc{
		ID:              primitive.NewObjectID(),
		Code:            link.Code,
		OriginalURL:     link.OriginalURL,
		CreatedAt:       link.CreatedAt.UTC(),
		ExpiresAt:       link.ExpiresAt,
		CustomAlias:     link.CustomAlias,
		IsActive:        link.IsActive,
		CreatedByIPHash: link.CreatedByIPHash,
	}

	_, err := r.coll.InsertOne(ctx, doc)
	if err == nil {
		link.ID = doc.ID.Hex()
		return nil
	}

	if mongo.IsDuplicateKeyError(err) {
		return links.ErrCodeTaken
	}

	return fmt.Errorf("insert link: %w", err)
}

func (r *LinksRepository) FindByCode(ctx context.Context, code string) (*links.Link, error) {
	var doc linkDoc
	err := r.coll.FindOne(ctx, bson.M{"code": code}).Decode(&doc)
	if err == nil {
		return mapLinkDoc(doc), nil
	}

	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, links.ErrNotFound
	}

	return nil, fmt.Errorf("find link by code: %w", err)
}

func mapLinkDoc(doc linkDoc) *links.Link {
	out := &links.Link{
		ID:              doc.ID.Hex(),
		Code:            doc.Code,
		OriginalURL:     doc.OriginalURL,
		CreatedAt:       doc.CreatedAt.UTC(),
		CustomAlias:     doc.CustomAlias,
		IsActive:        doc.IsActive,
		CreatedByIPHash: doc.CreatedByIPHash,
	}
	if doc.ExpiresAt != nil {
		t := doc.ExpiresAt.UTC()
		out.ExpiresAt = &t
	}
	return out
}
