package api_test

import (
	"context"
	"errors"
	"testing"

	"marquee/internal/api"
	"marquee/internal/recstore"
	"marquee/internal/services"
)

type fakeReader struct {
	calls  int
	record *recstore.RecordSet
	err    error
}

func (f *fakeReader) Recommendations(ctx context.Context, userID int64) (*recstore.RecordSet, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.record, nil
}

func TestParseUserIDRejectsNonNumeric(t *testing.T) {
	for _, raw := range []string{"", "abc", "12.5", "NaN", "Infinity", "1e3", "0x10"} {
		if _, err := api.ParseUserID(raw); !errors.Is(err, services.ErrValidation) {
			t.Fatalf("ParseUserID(%q): expected validation error, got %v", raw, err)
		}
	}
	if id, err := api.ParseUserID(" 610 "); err != nil || id != 610 {
		t.Fatalf("ParseUserID(610) = %d, %v", id, err)
	}
}

func TestForUserInvalidIDSkipsStore(t *testing.T) {
	reader := &fakeReader{}
	svc := api.NewRecommendationService(reader)
	_, err := svc.ForUser(context.Background(), "not-a-number")
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if reader.calls != 0 {
		t.Fatalf("store must not be reached on invalid input, got %d calls", reader.calls)
	}
}

func TestForUserEmptyRecordPassesThrough(t *testing.T) {
	reader := &fakeReader{record: recstore.Empty()}
	svc := api.NewRecommendationService(reader)
	resp, err := svc.ForUser(context.Background(), "999999")
	if err != nil {
		t.Fatalf("ForUser returned error: %v", err)
	}
	if resp.Items == nil || len(resp.Items) != 0 || resp.UpdatedAt != nil {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestForUserStoreErrorPropagates(t *testing.T) {
	reader := &fakeReader{err: services.Wrap(services.ErrStore, "recstore", "", "down", nil)}
	svc := api.NewRecommendationService(reader)
	if _, err := svc.ForUser(context.Background(), "610"); !errors.Is(err, services.ErrStore) {
		t.Fatalf("expected store error, got %v", err)
	}
}
