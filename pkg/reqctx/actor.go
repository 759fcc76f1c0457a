package reqctx

import "context"

// Role values an authenticated request can carry.
const (
	RoleDoctor       = "doctor"
	RoleSubDoctor    = "subdoctor"
	RoleReceptionist = "receptionist"
)

// Actor identifies who is making the request and which tenant they belong
// to. Exactly one of the ID fields matches the Role.
type Actor struct {
	Role           string
	HospitalID     uint
	DoctorID       *uint
	SubDoctorID    *string
	ReceptionistID *uint
}

// WithActor stores the authenticated actor in the context.
func WithActor(ctx context.Context, actor *Actor) context.Context {
	return context.WithValue(ctx, keyActor, actor)
}

// ActorFromContext retrieves the actor from the context.
// Returns nil if the request is not authenticated.
func ActorFromContext(ctx context.Context) *Actor {
	v := ctx.Value(keyActor)
	if v == nil {
		return nil
	}
	actor, ok := v.(*Actor)
	if !ok {
		return nil
	}
	return actor
}

// MustActor retrieves the actor from the context.
// Panics if not set. Use only behind middleware that guarantees it.
func MustActor(ctx context.Context) *Actor {
	actor := ActorFromContext(ctx)
	if actor == nil {
		panic("reqctx: actor not found in context")
	}
	return actor
}

// HospitalIDFromContext returns the tenant id, or 0 when unauthenticated.
func HospitalIDFromContext(ctx context.Context) uint {
	actor := ActorFromContext(ctx)
	if actor == nil {
		return 0
	}
	return actor.HospitalID
}
