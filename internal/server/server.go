package server

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"failmarket/internal/ledger"
	"failmarket/internal/payments"
	"failmarket/internal/project"
	"failmarket/internal/search"
	"failmarket/internal/store"
	"failmarket/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-playground/form/v4"
	"github.com/gorilla/securecookie"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/sirupsen/logrus"
)

var decoder = form.NewDecoder()

type Service struct {
	logger *logrus.Logger
	config *types.Config

	userRepo *store.UserRepository

	projectSvc  *project.Service
	ledgerSvc   *ledger.Service
	searchSvc   *search.Service
	paymentsSvc *payments.Service

	cognitoClient *cognitoidentityprovider.Client
	presignClient *s3.PresignClient

	cookie *securecookie.SecureCookie

	jwksCache *jwk.Cache
	jwksURL   string

	server *http.Server
}

func New(
	config *types.Config,
	logger *logrus.Logger,
	cognitoClient *cognitoidentityprovider.Client,
	presignClient *s3.PresignClient,
	userRepo *store.UserRepository,
	projectSvc *project.Service,
	ledgerSvc *ledger.Service,
	searchSvc *search.Service,
	paymentsSvc *payments.Service,
	jwkCache *jwk.Cache,
	jwksURL string,
) (*Service, error) {
	mux := flow.New()

	hashKey, _ := base64.StdEncoding.DecodeString(config.CookieHashKey)
	blockKey, _ := base64.StdEncoding.DecodeString(config.CookieBlockKey)

	s := &Service{
		logger: logger,
		config: config,
		cookie: securecookie.New(hashKey, blockKey),

		userRepo: userRepo,

		projectSvc:  projectSvc,
		ledgerSvc:   ledgerSvc,
		searchSvc:   searchSvc,
		paymentsSvc: paymentsSvc,

		cognitoClient: cognitoClient,
		presignClient: presignClient,

		jwksCache: jwkCache,
		jwksURL:   jwksURL,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", config.ServerPort),
			Handler:           mux,
			ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
			ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
	}

	s.buildRouter(mux)

	return s, nil
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Service) buildRouter(r *flow.Mux) {
	r.Use(s.LoggingMiddleware)

	r.HandleFunc("/healthz", s.handleHealth, http.MethodGet)

	r.HandleFunc("/api/auth/register", s.handlePostRegister, http.MethodPost)
	r.HandleFunc("/api/auth/login", s.handlePostLogin, http.MethodPost)
	r.HandleFunc("/api/auth/logout", s.handlePostLogout, http.MethodPost)

	r.HandleFunc("/api/search", s.handleSearch, http.MethodGet)
	r.HandleFunc("/api/projects/popular", s.handleGetPopularProjects, http.MethodGet)

	r.HandleFunc("/api/webhooks/stripe", s.handleStripeWebhook, http.MethodPost)

	// /api/users/me must be registered before /api/users/:userID; flow
	// matches routes in declaration order.
	r.Group(func(r *flow.Mux) {
		r.Use(s.RequireAuth)

		r.HandleFunc("/api/users/me", s.handleGetCurrentUser, http.MethodGet)
		r.HandleFunc("/api/users/me", s.handleUpdateCurrentUser, http.MethodPatch)

		r.HandleFunc("/api/projects", s.handleCreateProject, http.MethodPost)
		r.HandleFunc("/api/projects/:projectID", s.handleUpdateProject, http.MethodPatch)
		r.HandleFunc("/api/projects/:projectID", s.handleDeleteProject, http.MethodDelete)

		r.HandleFunc("/api/projects/:projectID/helpful", s.handleAddHelpful, http.MethodPost)
		r.HandleFunc("/api/projects/:projectID/helpful", s.handleRemoveHelpful, http.MethodDelete)
		r.HandleFunc("/api/projects/:projectID/purchase", s.handlePurchaseProject, http.MethodPost)

		r.HandleFunc("/api/users/:userID/helpful", s.handleGetUserHelpfulProjects, http.MethodGet)
		r.HandleFunc("/api/users/:userID/purchases", s.handleGetUserPurchases, http.MethodGet)

		r.HandleFunc("/api/images/presign", s.handlePresignImage, http.MethodPost)
		r.HandleFunc("/api/wallet/topup", s.handleCreateTopup, http.MethodPost)
	})

	r.Group(func(r *flow.Mux) {
		r.Use(s.OptionalAuth)

		r.HandleFunc("/api/projects/:projectID", s.handleGetProject, http.MethodGet)
		r.HandleFunc("/api/users/:userID", s.handleGetUserProfile, http.MethodGet)
		r.HandleFunc("/api/users/:userID/posts", s.handleGetUserPosts, http.MethodGet)
	})
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
