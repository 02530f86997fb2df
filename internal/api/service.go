package api

import (
	"context"
	"strconv"
	"strings"

	"marquee/internal/recstore"
	"marquee/internal/services"
)

// ParseUserID validates a raw user identifier before any store access. Any
// value that does not parse to an integer is rejected here so invalid input
// never reaches a backend.
func ParseUserID(raw string) (int64, error) {
	trimmed := strings.TrimSpace(raw)
	userID, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return 0, services.Wrap(services.ErrValidation, "", "", "Invalid userId", nil)
	}
	return userID, nil
}

// RecommendationService resolves raw user identifiers to stored
// recommendation records, shared by the HTTP handlers and the IPC surface.
type RecommendationService struct {
	reader recstore.Reader
}

// NewRecommendationService creates the service over the given reader.
func NewRecommendationService(reader recstore.Reader) *RecommendationService {
	return &RecommendationService{reader: reader}
}

// ForUser validates the raw identifier and fetches the user's record.
func (s *RecommendationService) ForUser(ctx context.Context, rawUserID string) (*RecommendationsResponse, error) {
	userID, err := ParseUserID(rawUserID)
	if err != nil {
		return nil, err
	}
	record, err := s.reader.Recommendations(services.WithUserID(ctx, userID), userID)
	if err != nil {
		return nil, err
	}
	items := record.Items
	if items == nil {
		items = []recstore.Item{}
	}
	return &RecommendationsResponse{Items: items, UpdatedAt: record.UpdatedAt}, nil
}
