package identity

import (
	"errors"
	"strconv"
	"strings"

	"github.com/clipgate/ClipGate/app/models"
)

// Kind discriminates the accepted user identifier shapes.
type Kind int

const (
	KindEmail Kind = iota
	KindLegacyID
	KindNumericID
)

// ErrEmptyIdentifier is returned by Parse for blank input.
var ErrEmptyIdentifier = errors.New("identity: empty identifier")

// Identifier is a parsed user reference. Exactly the field matching Kind is
// set; the others stay zero.
type Identifier struct {
	Kind      Kind
	Email     string
	LegacyID  string
	NumericID uint
}

// Parse classifies a raw identifier string. Anything containing "@" is an
// email, a pure decimal number is a numeric id, everything else is treated as
// a legacy external id.
func Parse(raw string) (Identifier, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Identifier{}, ErrEmptyIdentifier
	}
	if strings.Contains(raw, "@") {
		return Identifier{Kind: KindEmail, Email: strings.ToLower(raw)}, nil
	}
	if n, err := strconv.ParseUint(raw, 10, 32); err == nil && n > 0 {
		return Identifier{Kind: KindNumericID, NumericID: uint(n)}, nil
	}
	return Identifier{Kind: KindLegacyID, LegacyID: raw}, nil
}

// UserLookup is the slice of the user repository the resolver needs.
type UserLookup interface {
	GetByEmail(email string) (*models.User, error)
	GetByLegacyExternalID(externalID string) (*models.User, error)
	GetByID(id uint) (*models.User, error)
}

// Resolver turns parsed identifiers into user records.
type Resolver struct {
	users UserLookup
}

func NewResolver(users UserLookup) *Resolver {
	return &Resolver{users: users}
}

// Resolve loads the user an identifier points at. Lookup errors, including
// not-found, pass through from the underlying repository.
func (r *Resolver) Resolve(id Identifier) (*models.User, error) {
	switch id.Kind {
	case KindEmail:
		return r.users.GetByEmail(id.Email)
	case KindLegacyID:
		return r.users.GetByLegacyExternalID(id.LegacyID)
	case KindNumericID:
		return r.users.GetByID(id.NumericID)
	default:
		return nil, ErrEmptyIdentifier
	}
}

// ResolveRaw is the common Parse-then-Resolve path for handler code.
func (r *Resolver) ResolveRaw(raw string) (*models.User, error) {
	id, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	return r.Resolve(id)
}
