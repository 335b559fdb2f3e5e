// README: Entry point; loads config, wires module services, starts the HTTP server.
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

	"parcelbid/internal/config"
	httptransport "parcelbid/internal/http"
	"parcelbid/internal/infra"
	"parcelbid/internal/maps"
	"parcelbid/internal/modules/driver"
	"parcelbid/internal/modules/location"
	"parcelbid/internal/modules/matching"
	"parcelbid/internal/modules/notification"
	"parcelbid/internal/modules/order"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Firebase.ProjectID == "" {
		log.Fatal("PARCELBID_FIREBASE_PROJECT_ID is required")
	}
	verifier, err := infra.NewFirebaseVerifier(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile)
	if err != nil {
		log.Fatalf("firebase init: %v", err)
	}

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatal(err)
	}
	defer dbPool.Close()

	redisClient := infra.NewRedis(cfg.Redis.Addr)

	var geocoder order.Geocoder
	if cfg.Maps.APIKey != "" {
		geocoder, err = maps.NewGeocodeService(cfg.Maps.APIKey)
		if err != nil {
			log.Fatalf("maps init: %v", err)
		}
	}

	notificationStore := notification.NewStore(dbPool)
	notificationSvc := notification.NewService(notificationStore)

	driverStats := driver.NewStatsStore(dbPool)

	orderStore := order.NewStore(dbPool)
	orderSvc := order.NewService(orderStore, notificationSvc, driverStats, geocoder)

	locationStore := location.NewStore(dbPool, redisClient)
	locationSvc := location.NewService(locationStore, orderSvc)

	matchingSvc := matching.NewService(orderSvc, locationStore, cfg.Discovery.RadiusKm)

	handler := httptransport.NewRouter(httptransport.RouterDeps{
		Order:        orderSvc,
		Matching:     matchingSvc,
		Location:     locationSvc,
		Notification: notificationSvc,
		Verifier:     verifier,
	})

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: handler}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Printf("listening on %s", cfg.HTTP.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
