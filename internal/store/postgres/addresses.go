package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/MikeMC777/fulfillment-ecom/internal/apperr"
	"github.com/MikeMC777/fulfillment-ecom/internal/user"
)

type AddressRepo struct{ db DBTX }

func (r *AddressRepo) GetAddress(ctx context.Context, id int64) (*user.Address, error) {
	var a user.Address
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, address_line, city, postal_code, country
		FROM addresses WHERE id=$1
	`, id).Scan(&a.ID, &a.UserID, &a.Line, &a.City, &a.PostalCode, &a.Country)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.ErrAddressNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}
