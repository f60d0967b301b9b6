package mongo

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestLinkDoc_BSONRoundTrip(t *testing.T) {
	alias := "promo"
	expires := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	in := linkDoc{
		ID:              primitive.NewObjectID(),
		Code:            alias,
		OriginalURL:     "https://example.com",
		CreatedAt:       time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		ExpiresAt:       &expires,
		CustomAlias:     &alias,
		IsActive:        true,
		CreatedByIPHash: "hash",
	}

	raw, err := bson.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out linkDoc
	if err := bson.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	link := mapLinkDoc(out)
	if link.ID != in.ID.Hex() {
		t.Fatalf("ID = %q, want %q", link.ID, in.ID.Hex())
	}
	if link.ExpiresAt == nil || !link.ExpiresAt.Equal(expires) {
		t.Fatalf("ExpiresAt = %v, want %v", link.ExpiresAt, expires)
	}
	if link.CustomAlias == nil || *link.CustomAlias != alias {
		t.Fatalf("CustomAlias = %v, want %q", link.CustomAlias, alias)
	}
	if !link.IsActive {
		t.Fatal("expected active link")
	}
}

func TestLinkDoc_OmitsEmptyOptionalFields(t *testing.T) {
	raw, err := bson.Marshal(linkDoc{Code: "abc1234", OriginalURL: "https://example.com"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"_id", "expiresAt", "customAlias"} {
		if _, ok := m[key]; ok {
			t.Fatalf("%s should be omitted, got %v", key, m[key])
		}
	}
	if m["isActive"] != false {
		t.Fatalf("isActive must always be written, got %v", m["isActive"])
	}
}
