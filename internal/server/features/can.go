package features

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/fintab/internal/common"
)

// Resource is anything with an owning user. A user owns itself.
type Resource interface {
	ResourceOwnerID() uuid.UUID
}

var (
	errNoPrincipal = errors.New("principal is missing")
	errNoFeatures  = errors.New("principal has no feature set")
)

func checkCall(p *Principal, f Feature) error {
	switch {
	case p == nil:
		return common.NewInternalError(errNoPrincipal)
	case p.Features == nil:
		return common.NewInternalError(errNoFeatures)
	case !f.Valid():
		return common.NewInternalError(fmt.Errorf("unknown feature %d", uint8(f)))
	}
	return nil
}

// Can reports whether p may use f. For UpdateUser with a resource the
// decision is scoped: p must own the resource or hold UpdateUserOthers.
// A nil resource skips the scoped rule.
func Can(p *Principal, f Feature, resource Resource) (bool, error) {
	if err := checkCall(p, f); err != nil {
		return false, err
	}

	if f == UpdateUser && resource != nil {
		return p.ID == resource.ResourceOwnerID() || p.Features.Has(UpdateUserOthers), nil
	}
	return p.Features.Has(f), nil
}
