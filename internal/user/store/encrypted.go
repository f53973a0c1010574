package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"frontdesk/internal/platform/fieldcrypt"
	"frontdesk/internal/user/models"
	"frontdesk/pkg/domain"
)

// Encrypted wraps a Store so that Name and Phone are encrypted at rest.
// Email stays in clear because it is the login lookup key.
type Encrypted struct {
	inner  Store
	cipher fieldcrypt.Cipher
}

func NewEncrypted(inner Store, cipher fieldcrypt.Cipher) *Encrypted {
	return &Encrypted{inner: inner, cipher: cipher}
}

func (e *Encrypted) seal(u *models.User) (*models.User, error) {
	c := u.Clone()
	if err := fieldcrypt.EncryptFields(e.cipher, &c.Name, &c.Phone); err != nil {
		return nil, fmt.Errorf("encrypt user fields: %w", err)
	}
	return c, nil
}

func (e *Encrypted) open(u *models.User, err error) (*models.User, error) {
	if err != nil {
		return nil, err
	}
	if err := fieldcrypt.DecryptFields(e.cipher, &u.Name, &u.Phone); err != nil {
		return nil, fmt.Errorf("decrypt user fields: %w", err)
	}
	return u, nil
}

func (e *Encrypted) openAll(users []*models.User, err error) ([]*models.User, error) {
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if _, err := e.open(u, nil); err != nil {
			return nil, err
		}
	}
	return users, nil
}

func (e *Encrypted) Create(ctx context.Context, user *models.User) error {
	sealed, err := e.seal(user)
	if err != nil {
		return err
	}
	return e.inner.Create(ctx, sealed)
}

func (e *Encrypted) Update(ctx context.Context, user *models.User) error {
	sealed, err := e.seal(user)
	if err != nil {
		return err
	}
	return e.inner.Update(ctx, sealed)
}

func (e *Encrypted) Delete(ctx context.Context, id uuid.UUID) error {
	return e.inner.Delete(ctx, id)
}

func (e *Encrypted) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return e.open(e.inner.FindByID(ctx, id))
}

func (e *Encrypted) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return e.open(e.inner.FindByEmail(ctx, email))
}

func (e *Encrypted) FindByVerificationToken(ctx context.Context, token string) (*models.User, error) {
	return e.open(e.inner.FindByVerificationToken(ctx, token))
}

func (e *Encrypted) FindByResetToken(ctx context.Context, token string) (*models.User, error) {
	return e.open(e.inner.FindByResetToken(ctx, token))
}

func (e *Encrypted) List(ctx context.Context) ([]*models.User, error) {
	return e.openAll(e.inner.List(ctx))
}

func (e *Encrypted) ListByRole(ctx context.Context, role domain.Role) ([]*models.User, error) {
	return e.openAll(e.inner.ListByRole(ctx, role))
}

func (e *Encrypted) ListByDepartment(ctx context.Context, department string) ([]*models.User, error) {
	return e.openAll(e.inner.ListByDepartment(ctx, department))
}
