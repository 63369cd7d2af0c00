package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"failmarket/internal/db"
	"failmarket/internal/ledger"
	"failmarket/internal/payments"
	"failmarket/internal/project"
	"failmarket/internal/search"
	"failmarket/internal/server"
	"failmarket/internal/store"

	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/lestrrat-go/httprc/v3"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var serveCommand = &cli.Command{
	Name:   "serve",
	Usage:  "Start the HTTP server",
	Action: serve,
}

func serve(cCtx *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	config, err := loadConfig()
	if err != nil {
		return err
	}

	awsConfig, err := loadAWSConfig(ctx)
	if err != nil {
		return err
	}

	cognitoClient := cognitoidentityprovider.NewFromConfig(awsConfig)
	presignClient := s3.NewPresignClient(s3.NewFromConfig(awsConfig))

	pool, err := db.Connect(ctx, config)
	if err != nil {
		return err
	}
	defer pool.Close()

	userRepo := store.NewUserRepository(pool)
	projectRepo := store.NewProjectRepository(pool)
	categoryRepo := store.NewCategoryRepository(pool)
	categoryMapRepo := store.NewCategoryMapRepository(pool)
	helpfulRepo := store.NewHelpfulRepository(pool)
	purchaseRepo := store.NewPurchaseRepository(pool)
	searchRepo := store.NewSearchRepository(pool)
	topupRepo := store.NewTopupRepository(pool)

	projectSvc := project.NewService(logger, projectRepo, categoryRepo, categoryMapRepo, helpfulRepo, purchaseRepo, userRepo)
	ledgerSvc := ledger.NewService(logger, helpfulRepo, purchaseRepo, projectRepo)
	searchSvc := search.NewService(searchRepo, categoryMapRepo, userRepo)
	paymentsSvc := payments.NewService(logger, topupRepo, config.StripeSecretKey, config.StripeWebhookSecret)

	jwkCache, err := jwk.NewCache(context.Background(), httprc.NewClient())
	if err != nil {
		return fmt.Errorf("failed to initialize jwk cache: %w", err)
	}

	jwksURL := fmt.Sprintf("%s/.well-known/jwks.json", config.CognitoIssuerURL)

	err = jwkCache.Register(context.Background(), jwksURL)
	if err != nil {
		return fmt.Errorf("failed to register cognito jwk with cache: %w", err)
	}

	srv, err := server.New(
		config,
		logger,
		cognitoClient,
		presignClient,
		userRepo,
		projectSvc,
		ledgerSvc,
		searchSvc,
		paymentsSvc,
		jwkCache,
		jwksURL,
	)
	if err != nil {
		return err
	}

	go func() {
		logger.WithField("port", config.ServerPort).Infof("server starting http://localhost:%d", config.ServerPort)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Stop(shutdownCtx)
}
