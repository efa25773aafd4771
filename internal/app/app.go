package app

import (
	"go.uber.org/fx"

	"github.com/launderly/launderly/internal/cache"
	"github.com/launderly/launderly/internal/config"
	"github.com/launderly/launderly/internal/database"
	"github.com/launderly/launderly/internal/logger"
	"github.com/launderly/launderly/internal/messaging"
	"github.com/launderly/launderly/internal/observability"
	repositorycatalog "github.com/launderly/launderly/internal/repository/catalog"
	repositorycustomer "github.com/launderly/launderly/internal/repository/customer"
	repositoryorder "github.com/launderly/launderly/internal/repository/order"
	httpserver "github.com/launderly/launderly/internal/server/http"
	servicecatalog "github.com/launderly/launderly/internal/service/catalog"
	servicecustomer "github.com/launderly/launderly/internal/service/customer"
	servicedashboard "github.com/launderly/launderly/internal/service/dashboard"
	serviceorder "github.com/launderly/launderly/internal/service/order"
	transporthttp "github.com/launderly/launderly/internal/transport/http"
	"github.com/launderly/launderly/internal/worker"
	workerorder "github.com/launderly/launderly/internal/worker/order"
)

// Core provides the foundational modules shared across executables.
var Core = fx.Options(
	config.Module,
	cache.Module,
	database.Module,
	logger.Module,
	messaging.Module,
	observability.Module,
	repositoryorder.Module,
	repositorycustomer.Module,
	repositorycatalog.Module,
	serviceorder.Module,
	servicecustomer.Module,
	servicecatalog.Module,
	servicedashboard.Module,
)

// HTTP wires the HTTP transport on top of the core modules.
var HTTP = fx.Options(
	Core,
	httpserver.Module,
	transporthttp.Module,
)

// Worker exposes background worker processing.
var Worker = fx.Options(
	Core,
	worker.Module,
	workerorder.Module,
)

// Module is the default application wiring (HTTP only).
var Module = HTTP
