package push

import (
	"context"
	"crypto/ecdh"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/google/uuid"

	"github.com/kopislukatan/storyapp/internal/common"
	"github.com/kopislukatan/storyapp/internal/models"
)

// Registrar creates and discards device-level push registrations. The local
// implementation stands in for a platform push service.
type Registrar interface {
	// Register mints a new registration. It fails with
	// common.ErrPermissionDenied when the user has not granted
	// notification permission.
	Register(ctx context.Context, vapidPublicKey string) (*models.Subscription, error)

	// Unregister discards the registration with the given endpoint.
	Unregister(ctx context.Context, endpoint string) error
}

// LocalRegistrar mints registrations locally: a unique endpoint plus a
// fresh P-256 key pair and auth secret, the same material a push service
// would hand back.
type LocalRegistrar struct {
	endpointBase string

	// permitted reports whether the user granted notification permission.
	permitted func() bool
}

func NewLocalRegistrar(endpointBase string, permitted func() bool) *LocalRegistrar {
	if permitted == nil {
		permitted = func() bool { return true }
	}
	return &LocalRegistrar{endpointBase: endpointBase, permitted: permitted}
}

func (r *LocalRegistrar) Register(ctx context.Context, vapidPublicKey string) (*models.Subscription, error) {
	if !r.permitted() {
		return nil, common.ErrPermissionDenied
	}
	if vapidPublicKey == "" {
		return nil, fmt.Errorf("missing application server key")
	}

	key, err := ecdh.P256().GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate subscription key: %w", err)
	}
	auth := make([]byte, 16)
	if _, err := rand.Read(auth); err != nil {
		return nil, fmt.Errorf("failed to generate auth secret: %w", err)
	}

	enc := base64.RawURLEncoding
	return &models.Subscription{
		Endpoint: r.endpointBase + "/" + uuid.NewString(),
		Keys: models.SubscriptionKeys{
			P256DH: enc.EncodeToString(key.PublicKey().Bytes()),
			Auth:   enc.EncodeToString(auth),
		},
	}, nil
}

func (r *LocalRegistrar) Unregister(ctx context.Context, endpoint string) error {
	return nil
}
