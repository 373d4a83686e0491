package container

import (
	"gorm.io/gorm"

	accountservice "github.com/narwhalmedia/classifieds/internal/account/service"
	adminservice "github.com/narwhalmedia/classifieds/internal/admin/service"
	infraevents "github.com/narwhalmedia/classifieds/internal/infrastructure/events"
	listingservice "github.com/narwhalmedia/classifieds/internal/listing/service"
	referenceservice "github.com/narwhalmedia/classifieds/internal/reference/service"
	reportservice "github.com/narwhalmedia/classifieds/internal/report/service"
	"github.com/narwhalmedia/classifieds/pkg/cache"
	"github.com/narwhalmedia/classifieds/pkg/config"
	"github.com/narwhalmedia/classifieds/pkg/events"
	"github.com/narwhalmedia/classifieds/pkg/interfaces"
)

// Portal holds the wired services of one portal process.
type Portal struct {
	Config    *config.PortalConfig
	Logger    interfaces.Logger
	DB        *gorm.DB
	Cache     *cache.ReferenceCache
	EventBus  *events.InMemoryEventBus
	Forwarder *infraevents.Forwarder // nil when forwarding is off
	Posts     *listingservice.PostService
	Users     *accountservice.UserService
	Reference *referenceservice.ReferenceService
	Reports   *reportservice.ReportService
	Admin     *adminservice.ModerationService
}
