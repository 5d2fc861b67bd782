package device

import (
	"context"
	"errors"
	"time"

	"github.com/go-api-pool/internal/domain"
	"github.com/go-api-pool/internal/pkg/id"
)

// Store is the subset of the device repository Resolve needs.
type Store interface {
	GetByUserAndUUID(ctx context.Context, userID, uuid string) (*domain.Device, error)
	Put(ctx context.Context, d *domain.Device) error
}

// Resolve returns the user's existing Device for deviceUUID when found,
// otherwise creates a new one and persists it. Reuse is scoped per user: two
// users sharing a physical device each get their own row for the same uuid.
func Resolve(ctx context.Context, repo Store, deviceUUID *string, userID string) (*domain.Device, error) {
	if deviceUUID != nil {
		d, err := repo.GetByUserAndUUID(ctx, userID, *deviceUUID)
		if err == nil {
			return d, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}
	devUUID := id.New()
	if deviceUUID != nil {
		devUUID = *deviceUUID
	}
	now := time.Now().UTC()
	d := &domain.Device{
		DeviceID:  id.New(),
		UUID:      devUUID,
		UserID:    userID,
		Enable:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := repo.Put(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}
