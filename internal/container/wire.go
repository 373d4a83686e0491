//go:build wireinject
// +build wireinject

package container

import (
	"github.com/google/wire"

	accountrepo "github.com/narwhalmedia/classifieds/internal/account/repository"
	accountservice "github.com/narwhalmedia/classifieds/internal/account/service"
	adminservice "github.com/narwhalmedia/classifieds/internal/admin/service"
	listingrepo "github.com/narwhalmedia/classifieds/internal/listing/repository"
	listingservice "github.com/narwhalmedia/classifieds/internal/listing/service"
	referencerepo "github.com/narwhalmedia/classifieds/internal/reference/repository"
	referenceservice "github.com/narwhalmedia/classifieds/internal/reference/service"
	reportrepo "github.com/narwhalmedia/classifieds/internal/report/repository"
	reportservice "github.com/narwhalmedia/classifieds/internal/report/service"
	"github.com/narwhalmedia/classifieds/pkg/cache"
	"github.com/narwhalmedia/classifieds/pkg/config"
	"github.com/narwhalmedia/classifieds/pkg/events"
	"github.com/narwhalmedia/classifieds/pkg/interfaces"
	"github.com/narwhalmedia/classifieds/pkg/repository"
)

var infrastructureSet = wire.NewSet(
	ProvideDB,
	ProvideCache,
	wire.Bind(new(interfaces.Cache), new(*cache.ReferenceCache)),
	ProvideTTLPolicy,
	ProvidePaging,
	ProvideEventBus,
	wire.Bind(new(interfaces.EventBus), new(*events.InMemoryEventBus)),
	ProvideForwarder,
)

var repositorySet = wire.NewSet(
	listingrepo.NewGormRepository,
	wire.Bind(new(listingrepo.PostRepository), new(*listingrepo.GormRepository)),
	accountrepo.NewGormRepository,
	wire.Bind(new(accountrepo.UserRepository), new(*accountrepo.GormRepository)),
	referencerepo.NewGormRepository,
	wire.Bind(new(referencerepo.Repository), new(*referencerepo.GormRepository)),
	reportrepo.NewGormRepository,
	wire.Bind(new(reportrepo.ReportRepository), new(*reportrepo.GormRepository)),
	repository.NewAuditLog,
	wire.Bind(new(adminservice.AuditReader), new(*repository.AuditLog)),
)

var serviceSet = wire.NewSet(
	listingservice.NewPostService,
	wire.Bind(new(adminservice.PostModerator), new(*listingservice.PostService)),
	accountservice.NewUserService,
	wire.Bind(new(adminservice.UserModerator), new(*accountservice.UserService)),
	referenceservice.NewReferenceService,
	wire.Bind(new(adminservice.CategoryCatalog), new(*referenceservice.ReferenceService)),
	wire.Bind(new(reportservice.PostLookup), new(*listingservice.PostService)),
	reportservice.NewReportService,
	wire.Bind(new(adminservice.ReportQueue), new(*reportservice.ReportService)),
	ProvideBulkCoordinator,
	ProvideAdminSettings,
	adminservice.NewModerationService,
)

// InitializePortal builds the portal with all dependencies.
func InitializePortal(cfg *config.PortalConfig, log interfaces.Logger) (*Portal, func(), error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		serviceSet,
		wire.Struct(new(Portal), "*"),
	)
	return nil, nil, nil
}
