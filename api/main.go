package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/jimiolaniyan/vidhub/auth"
	"github.com/jimiolaniyan/vidhub/config"
	"github.com/jimiolaniyan/vidhub/logging"
	"github.com/jimiolaniyan/vidhub/media"
	"github.com/jimiolaniyan/vidhub/response"
	"github.com/jimiolaniyan/vidhub/transport"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("load config", zap.Error(err))
	}

	log := logging.New(cfg.Log, cfg.Env)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := connectMongo(ctx, cfg.Mongo)
	if err != nil {
		log.Fatal("connect to database", zap.Error(err))
	}
	defer func() { _ = client.Disconnect(context.Background()) }()
	log.Info("database connected", zap.String("database", cfg.Mongo.Database))

	accounts := auth.NewMongoRepository(client.Database(cfg.Mongo.Database).Collection("users"))
	if err := accounts.EnsureIndexes(ctx); err != nil {
		log.Fatal("ensure indexes", zap.Error(err))
	}

	uploader, err := media.NewS3Uploader(ctx, media.S3Config{
		Endpoint:  cfg.Media.Endpoint,
		Region:    cfg.Media.Region,
		Bucket:    cfg.Media.Bucket,
		AccessKey: cfg.Media.AccessKey,
		SecretKey: cfg.Media.SecretKey,
		PublicURL: cfg.Media.PublicURL,
		KeyPrefix: "users",
		Timeout:   cfg.Media.UploadTimeout,
	}, log.Named("media.uploader"))
	if err != nil {
		log.Fatal("media uploader", zap.Error(err))
	}

	tokens := auth.NewTokenIssuer(auth.TokenConfig{
		AccessSecret:  []byte(cfg.AccessToken.Secret),
		AccessTTL:     cfg.AccessToken.ExpiresIn,
		RefreshSecret: []byte(cfg.RefreshToken.Secret),
		RefreshTTL:    cfg.RefreshToken.ExpiresIn,
	})

	svc := auth.NewService(accounts, auth.NewBcryptHasher(cfg.Auth.BcryptCost), tokens, uploader, log.Named("auth.service"))
	stager := &media.Stager{Dir: cfg.Media.UploadDir, MaxSize: cfg.Media.MaxUploadSize}
	cookies := auth.NewCookiePolicy(cfg.IsProduction())
	hlog := log.Named("auth.handler")

	router := httprouter.New()
	router.Handler(http.MethodPost, "/api/v1/user/register", auth.RegisterAccountHandler(svc, stager, hlog))
	router.Handler(http.MethodPost, "/api/v1/user/login", auth.LoginHandler(svc, cookies, hlog))
	router.Handler(http.MethodGet, "/api/v1/user/logout", auth.RequireAuth(auth.LogoutHandler(svc, cookies, hlog), svc))
	router.Handler(http.MethodPost, "/api/v1/user/refreshtoken", auth.RefreshTokenHandler(svc, cookies, hlog))
	router.HandlerFunc(http.MethodGet, "/healthz", func(w http.ResponseWriter, r *http.Request) {
		_ = response.JSON(w, http.StatusOK, map[string]string{"status": "ok"}, "ok")
	})
	router.NotFound = transport.StaticFiles(cfg.StaticDir, cfg.Media.UploadDir)

	err = transport.ListenAndServe(ctx, router, transport.ServerConfig{
		Addr:            cfg.Addr(),
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     cfg.Server.IdleTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		AllowedOrigins:  cfg.CORS.AllowedOrigins,
	}, log.Named("transport"))
	if err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}

	log.Info("shutdown")
}

func connectMongo(ctx context.Context, cfg config.Mongo) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	return client, nil
}
