package order

import (
	"go.uber.org/fx"

	catalogrepo "github.com/launderly/launderly/internal/repository/catalog"
	customerrepo "github.com/launderly/launderly/internal/repository/customer"
	orderrepo "github.com/launderly/launderly/internal/repository/order"
)

// Module provides the order service to Fx, binding the concrete
// repositories to the collaborator interfaces the service depends on.
var Module = fx.Options(
	fx.Provide(
		func(r *orderrepo.Repository) Repository { return r },
		func(r *customerrepo.Repository) CustomerDirectory { return r },
		func(r *catalogrepo.Repository) ServiceCatalog { return r },
		NewService,
	),
)
