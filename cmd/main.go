package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/Krchnk/gw-crypto-dashboard/internal/config"
	"github.com/Krchnk/gw-crypto-dashboard/internal/handlers"
	"github.com/Krchnk/gw-crypto-dashboard/internal/market"
	"github.com/Krchnk/gw-crypto-dashboard/internal/sessions"
	"github.com/Krchnk/gw-crypto-dashboard/internal/storages/factory"

	cors "github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

var logger = logrus.New()

func init() {
	logger.SetFormatter(&logrus.JSONFormatter{})
	if lvl, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		logger.SetLevel(lvl)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}
}

func main() {
	configPath := flag.String("c", "config.env", "path to config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.WithError(err).Fatal("failed to load config")
	}
	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(lvl)
	}
	logger.WithFields(logrus.Fields{
		"port":        cfg.HTTPPort,
		"db_driver":   cfg.DBConfig.Driver,
		"hash_scheme": cfg.HashScheme,
		"market_url":  cfg.Market.BaseURL,
	}).Info("configuration loaded")

	store, err := factory.NewStorage(cfg)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to database")
	}
	defer store.Close()

	initCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	err = store.Initialize(initCtx)
	cancel()
	if err != nil {
		logger.WithError(err).Fatal("failed to initialize database")
	}
	logger.WithField("driver", cfg.DBConfig.Driver).Info("database ready")

	client := market.NewClient(cfg.Market.BaseURL, cfg.Market.APIKey, cfg.Market.Timeout)
	sessionStore := sessions.NewStore(cfg.Session.TTL)

	tmpl, err := handlers.LoadTemplates()
	if err != nil {
		logger.WithError(err).Fatal("failed to parse templates")
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.SetHTMLTemplate(tmpl)

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.Use(loggingMiddleware())

	h := handlers.NewHandler(store, client, sessionStore, cfg)
	h.Routes(router)

	logger.WithField("port", cfg.HTTPPort).Info("starting HTTP server")
	if err := router.Run(cfg.HTTPPort); err != nil {
		logger.WithError(err).Fatal("failed to run server")
	}
}

func loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		logger.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   path,
		}).Debug("request received")

		c.Next()

		fields := logrus.Fields{
			"method":   c.Request.Method,
			"path":     path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start),
		}

		if len(c.Errors) > 0 {
			logger.WithFields(fields).WithError(c.Errors.Last()).Error("request failed")
		} else {
			logger.WithFields(fields).Info("request completed")
		}
	}
}
