package http

import (
	"github.com/bookswap-api/internal/application/notification"
	"github.com/bookswap-api/internal/infrastructure/catalog"
	"github.com/bookswap-api/internal/infrastructure/dynamo"
	"github.com/bookswap-api/internal/infrastructure/google"
	jwtinfra "github.com/bookswap-api/internal/infrastructure/jwt"
	"github.com/bookswap-api/internal/infrastructure/mailapi"
	s3infra "github.com/bookswap-api/internal/infrastructure/s3"
	"github.com/bookswap-api/internal/infrastructure/smtp"
)

// Deps holds all infrastructure dependencies for the router. The dispatcher
// is constructed in main so its worker pool lifecycle outlives any single
// request.
type Deps struct {
	UserRepo         *dynamo.UserRepo
	SessionRepo      *dynamo.SessionRepo
	OwnedBookRepo    *dynamo.OwnedBookRepo
	WantedBookRepo   *dynamo.WantedBookRepo
	ChatRepo         *dynamo.ChatRepo
	MessageRepo      *dynamo.MessageRepo
	SwapRepo         *dynamo.SwapRepo
	NotificationRepo *dynamo.NotificationRepo
	PreferenceRepo   *dynamo.PreferenceRepo
	NeighborhoodRepo *dynamo.NeighborhoodRepo
	FileRepo         *dynamo.FileRepo
	VerificationRepo *dynamo.VerificationRepo
	Cascade          *dynamo.CascadeWriter

	S3Store       *s3infra.Store
	Mailer        smtp.Mailer
	MailClient    *mailapi.Client
	CatalogClient *catalog.Client
	JWTProvider   *jwtinfra.Provider
	Dispatcher    *notification.Dispatcher
	GoogleAuth    *google.Verifier
}
