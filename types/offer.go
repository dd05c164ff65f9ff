package types

import "time"

// Offer represents a classified ad for a single item for sale.
type Offer struct {
	// ID is the unique identifier of the offer.
	ID int64 `json:"id" db:"id"`

	// Name is the product name shown in listings and search results.
	Name string `json:"product_name" db:"product_name"`

	// Description is the free-form product description.
	Description string `json:"product_description" db:"product_description"`

	// Price is the asking price in decimal currency units. The store is
	// currency-agnostic; interpretation is left to the clients.
	Price float64 `json:"product_price" db:"product_price"`

	// Details is the ordered collection of labeled attributes
	// (brand, size, condition, color, location) attached at publish time.
	Details []OfferDetail `json:"product_details" db:"product_details"`

	// Image references the uploaded product picture in the media store.
	Image *ImageRef `json:"product_image,omitempty" db:"product_image"`

	// OwnerID is a weak reference to the publishing user. It is a lookup
	// key only: the offer does not own the user's lifecycle and no
	// foreign-key constraint enforces it.
	OwnerID int64 `json:"-" db:"owner_id"`

	// Owner is the reduced owner profile resolved on reads.
	Owner *OwnerProfile `json:"owner,omitempty"`

	// MediaKey scopes the offer's uploaded objects in the media store.
	// Assigned before the first (and only) database write so the upload
	// path is known up front.
	MediaKey string `json:"-" db:"media_key"`

	// CreatedAt is the timestamp at which the offer was published.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the offer.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// OfferDetail is a single labeled attribute of an offer. Order is
// preserved as given at publish time.
type OfferDetail struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// OwnerProfile is the reduced owner representation embedded in offer
// responses.
type OwnerProfile struct {
	Username string    `json:"username"`
	Phone    string    `json:"phone,omitempty"`
	Avatar   *ImageRef `json:"avatar,omitempty"`
}

// ImageRef points at an object stored by the media-upload collaborator.
// URL is what clients render; the remaining fields identify the object
// for later management (e.g. compensating deletes).
type ImageRef struct {
	URL         string `json:"url"`
	Bucket      string `json:"bucket,omitempty"`
	Key         string `json:"key,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Size        int64  `json:"size,omitempty"`
}
