package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/brocante/apiserver/types"
)

// OfferRepository handles persistence for offers.
type OfferRepository struct {
	db *sql.DB
}

func NewOfferRepository(db *sql.DB) *OfferRepository {
	return &OfferRepository{db: db}
}

const offerSelect = `
	SELECT o.id, o.product_name, o.product_description, o.product_price,
		o.product_details, o.product_image, o.owner_id, o.media_key,
		o.created_at, o.updated_at,
		u.username, u.phone, u.avatar
	FROM offers o
	LEFT JOIN users u ON u.id = o.owner_id`

// Search returns the page of offers matching params plus the total
// count of matches. The count uses the same filter and ignores sort
// and pagination. Owners are resolved to their reduced profiles.
func (r *OfferRepository) Search(ctx context.Context, params SearchParams) ([]types.Offer, int, error) {
	clause := buildSearch(params)

	countQuery := `SELECT COUNT(1) FROM offers o`
	listQuery := offerSelect
	if clause.where != "" {
		countQuery += " WHERE " + clause.where
		listQuery += " WHERE " + clause.where
	}

	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, clause.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	n := len(clause.args)
	listQuery += " ORDER BY " + clause.orderBy
	listQuery += fmt.Sprintf(" OFFSET $%d LIMIT $%d", n+1, n+2)
	args := append(clause.args, clause.offset, clause.limit)

	rows, err := r.db.QueryContext(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	offers := make([]types.Offer, 0, clause.limit)
	for rows.Next() {
		offer, err := scanOffer(rows)
		if err != nil {
			return nil, 0, err
		}
		offers = append(offers, offer)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return offers, total, nil
}

func (r *OfferRepository) Get(ctx context.Context, id int64) (types.Offer, error) {
	const query = offerSelect + `
	WHERE o.id = $1`
	offer, err := scanOffer(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Offer{}, ErrNotFound
		}
		return types.Offer{}, err
	}
	return offer, nil
}

func (r *OfferRepository) Create(ctx context.Context, offer types.Offer) (types.Offer, error) {
	now := time.Now()
	offer.CreatedAt = now
	offer.UpdatedAt = now

	detailsJSON, err := json.Marshal(offer.Details)
	if err != nil {
		return types.Offer{}, err
	}
	imageJSON, err := marshalNullable(offer.Image)
	if err != nil {
		return types.Offer{}, err
	}

	const query = `
		INSERT INTO offers (product_name, product_description, product_price, product_details, product_image, owner_id, media_key, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		offer.Name,
		offer.Description,
		offer.Price,
		detailsJSON,
		imageJSON,
		offer.OwnerID,
		offer.MediaKey,
		offer.CreatedAt,
		offer.UpdatedAt,
	).Scan(&offer.ID); err != nil {
		return types.Offer{}, err
	}
	return offer, nil
}

func scanOffer(row rowScanner) (types.Offer, error) {
	var offer types.Offer
	var detailsJSON, imageJSON, ownerAvatarJSON []byte
	var ownerID sql.NullInt64
	var ownerUsername, ownerPhone sql.NullString
	err := row.Scan(
		&offer.ID,
		&offer.Name,
		&offer.Description,
		&offer.Price,
		&detailsJSON,
		&imageJSON,
		&ownerID,
		&offer.MediaKey,
		&offer.CreatedAt,
		&offer.UpdatedAt,
		&ownerUsername,
		&ownerPhone,
		&ownerAvatarJSON,
	)
	if err != nil {
		return types.Offer{}, err
	}

	_ = json.Unmarshal(detailsJSON, &offer.Details)
	if len(imageJSON) > 0 {
		var image types.ImageRef
		if err := json.Unmarshal(imageJSON, &image); err == nil {
			offer.Image = &image
		}
	}
	if ownerID.Valid {
		offer.OwnerID = ownerID.Int64
	}
	// A dangling owner reference leaves Owner nil; the offer itself
	// remains readable.
	if ownerUsername.Valid {
		owner := types.OwnerProfile{
			Username: ownerUsername.String,
			Phone:    ownerPhone.String,
		}
		if len(ownerAvatarJSON) > 0 {
			var avatar types.ImageRef
			if err := json.Unmarshal(ownerAvatarJSON, &avatar); err == nil {
				owner.Avatar = &avatar
			}
		}
		offer.Owner = &owner
	}
	return offer, nil
}
