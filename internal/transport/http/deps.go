package http

import (
	"log/slog"

	"github.com/vaxwatch/vaxwatch/internal/application/notify"
	"github.com/vaxwatch/vaxwatch/internal/application/subscription"
	"github.com/vaxwatch/vaxwatch/internal/infrastructure/dynamo"
	jwtinfra "github.com/vaxwatch/vaxwatch/internal/infrastructure/jwt"
	s3infra "github.com/vaxwatch/vaxwatch/internal/infrastructure/s3"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	RecordRepo     *dynamo.RecordRepo
	SubscriberRepo *dynamo.SubscriberRepo
	SupplyRepo     *dynamo.SupplyRepo
	DeliveryRepo   *dynamo.DeliveryRepo
	Notifier       *notify.Notifier
	S3Store        *s3infra.Store
	JWTProvider    *jwtinfra.Provider // nil disables admin routes in practice
	Alert          subscription.AlertFunc
	Logger         *slog.Logger
}
