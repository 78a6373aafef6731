// Package identity derives a stable anonymous device identity and maps
// it to a durable identity on the memory backend.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/personachat/personachat/internal/memory"
	"github.com/personachat/personachat/internal/storage"
)

// Fixed keys in the durable KV store.
const (
	deviceKey        = "device_id"
	displayNameKey   = "display_name"
	mappingKeyPrefix = "memory_identity/"
	displayKeyPrefix = "display_name/"
)

// Registrar is the slice of the memory backend the resolver needs.
type Registrar interface {
	CreateIdentity(ctx context.Context, name string) (string, error)
	GetIdentity(ctx context.Context, identity string) error
}

// Resolver produces the memory identity used for the remainder of a
// session. The KV mapping is a cache; the backend stays authoritative
// for whether an identity still exists.
type Resolver struct {
	kv     storage.KV
	reg    Registrar
	logger *slog.Logger
}

// NewResolver creates a new resolver. reg may be nil, which disables
// memory entirely: Resolve then always reports no memory available.
func NewResolver(kv storage.KV, reg Registrar, logger *slog.Logger) *Resolver {
	return &Resolver{kv: kv, reg: reg, logger: logger}
}

// NewDeviceID generates a fresh random device identifier.
func NewDeviceID() string {
	return uuid.NewString()
}

// DeviceID reads the locally persisted device identifier, generating
// and persisting a new one on first use.
func (r *Resolver) DeviceID() (string, error) {
	id, ok, err := r.kv.Get(deviceKey)
	if err != nil {
		return "", fmt.Errorf("read device id: %w", err)
	}
	if ok && id != "" {
		return id, nil
	}

	id = NewDeviceID()
	if err := r.kv.Set(deviceKey, id); err != nil {
		return "", fmt.Errorf("persist device id: %w", err)
	}
	return id, nil
}

// SetDisplayName stores the user's display name for the given device.
func (r *Resolver) SetDisplayName(deviceID, name string) error {
	return r.kv.Set(displayKeyPrefix+deviceID, name)
}

// DisplayName returns the stored display name for the device, falling
// back to the device-independent legacy key.
func (r *Resolver) DisplayName(deviceID string) string {
	if name, ok, _ := r.kv.Get(displayKeyPrefix + deviceID); ok {
		return name
	}
	name, _, _ := r.kv.Get(displayNameKey)
	return name
}

// Resolve returns the memory identity for the device, following the
// create-or-reuse protocol:
//
//  1. An existing mapping is verified against the backend and reused.
//  2. A mapping the backend reports unknown is treated as stale and
//     replaced by exactly one new registration.
//  3. With no usable mapping, a new identity is registered and cached.
//
// Any backend failure is non-fatal: the empty result means memory is
// unavailable for this session and chat proceeds without it.
func (r *Resolver) Resolve(ctx context.Context, deviceID string) string {
	if r.reg == nil {
		return ""
	}

	mappingKey := mappingKeyPrefix + deviceID

	cached, ok, err := r.kv.Get(mappingKey)
	if err != nil {
		r.logger.WarnContext(ctx, "failed to read identity mapping, continuing without memory", "error", err)
		return ""
	}

	if ok && cached != "" {
		err := r.reg.GetIdentity(ctx, cached)
		if err == nil {
			r.logger.InfoContext(ctx, "reusing memory identity", "identity", cached)
			return cached
		}
		if !errors.Is(err, memory.ErrIdentityNotFound) {
			r.logger.WarnContext(ctx, "memory backend unreachable, continuing without memory", "error", err)
			return ""
		}
		r.logger.InfoContext(ctx, "stored memory identity is stale, registering a new one", "identity", cached)
	}

	created, err := r.reg.CreateIdentity(ctx, r.DisplayName(deviceID))
	if err != nil {
		r.logger.WarnContext(ctx, "memory identity registration failed, continuing without memory", "error", err)
		return ""
	}

	if err := r.kv.Set(mappingKey, created); err != nil {
		// The identity is still valid for this session even if the
		// mapping could not be cached.
		r.logger.WarnContext(ctx, "failed to persist identity mapping", "error", err)
	}

	return created
}
