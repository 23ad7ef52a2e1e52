package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/rentkart/rentkart/internal/config"
	"github.com/rentkart/rentkart/internal/es"
	"github.com/rentkart/rentkart/internal/handlers"
	"github.com/rentkart/rentkart/internal/logging"
	"github.com/rentkart/rentkart/internal/mykafka"
	httpserver "github.com/rentkart/rentkart/internal/transport/http"
	loggingmw "github.com/rentkart/rentkart/pkg/middleware/logging"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	db, err := config.InitDB(context.Background(), configuration)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	logger := logging.New(configuration.LOG_LEVEL)

	jwtSecret := []byte(configuration.JWT_SECRET)

	prod := mykafka.NewProducer([]string{configuration.KAFKA_ADDRESS})

	var searchHandler *handlers.SearchHandler
	if configuration.ES_URL != "" {
		esClient, err := es.NewClient(configuration)
		if err != nil {
			log.Fatalf("elasticsearch init error: %v", err)
		}
		searchHandler = handlers.NewSearchHandler(esClient, "products")
	}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(loggingmw.RequestLogger(logger))

	deps := httpserver.Deps{
		JWTSecret:      jwtSecret,
		ProductHandler: &handlers.ProductHandler{DB: db, Producer: prod},
		UserHandler:    &handlers.UserHandler{DB: db, Producer: prod, JWTSecret: jwtSecret},
		OrderHandler:   &handlers.OrderHandler{DB: db, Producer: prod, Strict: configuration.STRICT_TRANSITIONS},
		ReservationHandler: &handlers.ReservationHandler{
			DB: db, Producer: prod, Strict: configuration.STRICT_TRANSITIONS,
		},
		ReportHandler: &handlers.ReportHandler{DB: db},
		UploadHandler: handlers.NewUploadHandler(configuration.UPLOAD_URL),
		SearchHandler: searchHandler,
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":" + configuration.PORT,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if err := prod.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	log.Println("shutdown complete")
}
