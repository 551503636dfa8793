package session

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/redis/go-redis/v9"

	"github.com/harborhealth/appointment-agent/internal/dialogue"
)

func sampleState() *dialogue.State {
	st := dialogue.NewState()
	st.Dialogue = dialogue.StateScheduling
	st.Patient.FirstName = "Alice"
	st.Patient.LastName = "Johnson"
	st.Patient.DateOfBirth = "1990-03-15"
	st.Patient.PatientID = "PAT-100"
	return st
}

func TestRedisStoreRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStore(client, time.Hour, nil)

	st := sampleState()
	if err := store.Save(context.Background(), st); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Load(context.Background(), st.ConversationID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.ConversationID != st.ConversationID || got.Dialogue != dialogue.StateScheduling {
		t.Fatalf("loaded state mismatch: %+v", got)
	}
	if got.Patient.PatientID != "PAT-100" {
		t.Fatalf("patient fields lost: %+v", got.Patient)
	}
}

func TestRedisStoreMiss(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStore(client, time.Hour, nil)

	if _, err := store.Load(context.Background(), "CONV-missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestRedisStoreTTLExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStore(client, time.Minute, nil)

	st := sampleState()
	if err := store.Save(context.Background(), st); err != nil {
		t.Fatalf("Save: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	if _, err := store.Load(context.Background(), st.ConversationID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected expiry to surface as ErrSessionNotFound, got %v", err)
	}
}

func TestRedisStoreDelete(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStore(client, time.Hour, nil)

	st := sampleState()
	if err := store.Save(context.Background(), st); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Delete(context.Background(), st.ConversationID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Load(context.Background(), st.ConversationID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after delete, got %v", err)
	}
}

// fakeDynamo keeps items in a map, enough to exercise the store logic.
type fakeDynamo struct {
	items map[string]map[string]types.AttributeValue
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{items: make(map[string]map[string]types.AttributeValue)}
}

func (f *fakeDynamo) key(item map[string]types.AttributeValue) string {
	if v, ok := item["conversationId"].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}

func (f *fakeDynamo) PutItem(ctx context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.items[f.key(in.Item)] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) GetItem(ctx context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	item, ok := f.items[f.key(in.Key)]
	if !ok {
		return &dynamodb.GetItemOutput{}, nil
	}
	return &dynamodb.GetItemOutput{Item: item}, nil
}

func (f *fakeDynamo) DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	delete(f.items, f.key(in.Key))
	return &dynamodb.DeleteItemOutput{}, nil
}

func TestDynamoStoreRoundTrip(t *testing.T) {
	fake := newFakeDynamo()
	store := NewDynamoStore(fake, "sessions", time.Hour, nil)

	st := sampleState()
	if err := store.Save(context.Background(), st); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Load(context.Background(), st.ConversationID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Patient.FirstName != "Alice" || got.Dialogue != dialogue.StateScheduling {
		t.Fatalf("loaded state mismatch: %+v", got)
	}
}

func TestDynamoStoreMissAndDelete(t *testing.T) {
	fake := newFakeDynamo()
	store := NewDynamoStore(fake, "sessions", time.Hour, nil)

	if _, err := store.Load(context.Background(), "CONV-missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}

	st := sampleState()
	if err := store.Save(context.Background(), st); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Delete(context.Background(), st.ConversationID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Load(context.Background(), st.ConversationID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after delete, got %v", err)
	}
}
