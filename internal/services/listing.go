package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/brocante/apiserver/internal/store"
	"github.com/brocante/apiserver/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OfferRepository defines persistence operations for offers.
type OfferRepository interface {
	Search(ctx context.Context, params store.SearchParams) ([]types.Offer, int, error)
	Get(ctx context.Context, id int64) (types.Offer, error)
	Create(ctx context.Context, offer types.Offer) (types.Offer, error)
}

// EventPublisher publishes domain events to the message broker.
type EventPublisher interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
}

// SearchResult is the paged search response: total match count plus
// the requested page of offers.
type SearchResult struct {
	Count  int           `json:"count"`
	Offers []types.Offer `json:"offers"`
}

// PublishInput carries the fields of a new offer. Picture is required.
type PublishInput struct {
	Title       string
	Description string
	Price       float64
	Brand       string
	Size        string
	Condition   string
	Color       string
	City        string
	Picture     UploadFile
}

// ListingService encapsulates offer use-cases: search, single reads,
// and publishing with image upload.
type ListingService struct {
	offers     OfferRepository
	media      MediaStore
	events     EventPublisher
	offerTopic string
	log        *zap.Logger
}

// NewListingService constructs a ListingService. events may be nil, in
// which case offer-published events are not emitted.
func NewListingService(offers OfferRepository, media MediaStore, events EventPublisher, offerTopic string, log *zap.Logger) *ListingService {
	return &ListingService{
		offers:     offers,
		media:      media,
		events:     events,
		offerTopic: offerTopic,
		log:        log,
	}
}

// Search runs the filtered, sorted, paginated read plus the total
// count over the same filter.
func (s *ListingService) Search(ctx context.Context, params store.SearchParams) (SearchResult, error) {
	offers, count, err := s.offers.Search(ctx, params)
	if err != nil {
		return SearchResult{}, err
	}
	return SearchResult{Count: count, Offers: offers}, nil
}

// Get returns one offer with its owner resolved. Missing offers map to
// store.ErrNotFound; callers decide how to represent that.
func (s *ListingService) Get(ctx context.Context, id int64) (types.Offer, error) {
	return s.offers.Get(ctx, id)
}

// Publish creates a new offer owned by the given identity. The picture
// is uploaded first under a path scoped by the offer's media key, then
// the offer is written to the store in a single insert. If the insert
// fails the uploaded object is deleted again so no remote asset is
// orphaned.
func (s *ListingService) Publish(ctx context.Context, owner types.Identity, in PublishInput) (types.Offer, error) {
	mediaKey := uuid.NewString()

	offer := types.Offer{
		Name:        in.Title,
		Description: in.Description,
		Price:       in.Price,
		Details: []types.OfferDetail{
			{Label: "MARQUE", Value: in.Brand},
			{Label: "TAILLE", Value: in.Size},
			{Label: "ÉTAT", Value: in.Condition},
			{Label: "COULEUR", Value: in.Color},
			{Label: "EMPLACEMENT", Value: in.City},
		},
		OwnerID:  owner.ID,
		MediaKey: mediaKey,
	}

	objectKey := "offers/" + mediaKey + "/" + in.Picture.Filename
	ref, err := s.media.Upload(ctx, objectKey, in.Picture.Content, in.Picture.Size, in.Picture.ContentType)
	if err != nil {
		return types.Offer{}, err
	}
	offer.Image = &ref

	saved, err := s.offers.Create(ctx, offer)
	if err != nil {
		if derr := s.media.Delete(ctx, objectKey); derr != nil {
			s.log.Warn("orphaned offer image left in media store",
				zap.String("key", objectKey), zap.Error(derr))
		}
		return types.Offer{}, err
	}

	saved.Owner = &types.OwnerProfile{
		Username: owner.Account.Username,
		Phone:    owner.Account.Phone,
		Avatar:   owner.Account.Avatar,
	}

	s.publishEvent(ctx, saved)
	return saved, nil
}

// offerPublishedEvent is the broker payload emitted after a save.
type offerPublishedEvent struct {
	ID          int64     `json:"id"`
	Name        string    `json:"product_name"`
	Price       float64   `json:"product_price"`
	OwnerID     int64     `json:"owner_id"`
	PublishedAt time.Time `json:"published_at"`
}

// publishEvent emits the offer-published event. Best effort: a broker
// fault never fails the request that created the offer.
func (s *ListingService) publishEvent(ctx context.Context, offer types.Offer) {
	if s.events == nil {
		return
	}
	data, err := json.Marshal(offerPublishedEvent{
		ID:          offer.ID,
		Name:        offer.Name,
		Price:       offer.Price,
		OwnerID:     offer.OwnerID,
		PublishedAt: offer.CreatedAt,
	})
	if err != nil {
		return
	}
	if _, err := s.events.Publish(ctx, s.offerTopic, data, map[string]string{"event": "offer.published"}); err != nil {
		s.log.Warn("failed to publish offer event",
			zap.Int64("offer_id", offer.ID), zap.Error(err))
	}
}
