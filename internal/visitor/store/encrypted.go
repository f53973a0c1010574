package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"frontdesk/internal/platform/fieldcrypt"
	"frontdesk/internal/visitor/models"
)

// Encrypted seals Name, Email and Phone before they reach the inner store.
type Encrypted struct {
	inner  Store
	cipher fieldcrypt.Cipher
}

func NewEncrypted(inner Store, cipher fieldcrypt.Cipher) *Encrypted {
	return &Encrypted{inner: inner, cipher: cipher}
}

func (e *Encrypted) seal(v *models.Visitor) (*models.Visitor, error) {
	c := v.Clone()
	if err := fieldcrypt.EncryptFields(e.cipher, &c.Name, &c.Email, &c.Phone); err != nil {
		return nil, fmt.Errorf("encrypt visitor fields: %w", err)
	}
	return c, nil
}

func (e *Encrypted) open(v *models.Visitor) error {
	if err := fieldcrypt.DecryptFields(e.cipher, &v.Name, &v.Email, &v.Phone); err != nil {
		return fmt.Errorf("decrypt visitor fields: %w", err)
	}
	return nil
}

func (e *Encrypted) Create(ctx context.Context, v *models.Visitor) error {
	sealed, err := e.seal(v)
	if err != nil {
		return err
	}
	return e.inner.Create(ctx, sealed)
}

func (e *Encrypted) Update(ctx context.Context, v *models.Visitor) error {
	sealed, err := e.seal(v)
	if err != nil {
		return err
	}
	return e.inner.Update(ctx, sealed)
}

func (e *Encrypted) Delete(ctx context.Context, id uuid.UUID) error {
	return e.inner.Delete(ctx, id)
}

func (e *Encrypted) FindByID(ctx context.Context, id uuid.UUID) (*models.Visitor, error) {
	v, err := e.inner.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := e.open(v); err != nil {
		return nil, err
	}
	return v, nil
}

func (e *Encrypted) List(ctx context.Context) ([]*models.Visitor, error) {
	visitors, err := e.inner.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, v := range visitors {
		if err := e.open(v); err != nil {
			return nil, err
		}
	}
	return visitors, nil
}
