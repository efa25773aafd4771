package catalog

import "go.uber.org/fx"

// Module provides the service-catalog repository to Fx.
var Module = fx.Provide(NewRepository)
