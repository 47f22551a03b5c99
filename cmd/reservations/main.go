package main

import (
	"github.com/joho/godotenv"

	"roomly/internal/reservations/handler"
	"roomly/internal/reservations/repository"
	"roomly/internal/reservations/service"
	"roomly/internal/reservations/validator"
	"roomly/pkg/app"
	"roomly/pkg/cache"
	"roomly/pkg/config"
	"roomly/pkg/events"
)

const ServiceName = "reservations"

func main() {
	// Missing .env is fine; the environment wins either way.
	_ = godotenv.Load()

	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Reservations service")
	reservationService, publisher := initServices(cfg)
	defer func() {
		if err := publisher.Close(); err != nil {
			cfg.Log.Error("Failed to close event publisher", "error", err)
		}
	}()

	roomCache := cache.NewRoomReservationCache(cfg.RoomCacheTTL)
	defer roomCache.Stop()

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewReservationHandler(reservationService, roomCache, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) (service.ReservationService, events.Publisher) {
	stayValidator := validator.NewStayValidator(cfg.Log, cfg.MaxStayDays)
	reservationRepo := repository.NewMongoReservationRepository(cfg)
	lockRepo := repository.NewReservationLockRepository(cfg)
	roomRepo := repository.NewMongoRoomRepository(cfg)

	publisher := initPublisher(cfg)

	reservationService := service.NewReservationService(
		reservationRepo,
		lockRepo,
		roomRepo,
		stayValidator,
		publisher,
		cfg,
	)

	cfg.Log.Info("Reservation service initialized", "database", cfg.MongoDatabaseName)
	return reservationService, publisher
}

func initPublisher(cfg *config.Config) events.Publisher {
	if len(cfg.KafkaBrokers) == 0 {
		cfg.Log.Info("No Kafka brokers configured, reservation events disabled")
		return events.NoopPublisher{}
	}

	publisher, err := events.NewKafkaPublisher(events.KafkaConfig{
		Brokers:      cfg.KafkaBrokers,
		Topic:        cfg.EventsTopic,
		BatchTimeout: cfg.KafkaBatchTimeout,
	})
	if err != nil {
		cfg.Log.Fatal("Failed to initialize Kafka publisher", "error", err)
	}

	cfg.Log.Info("Kafka publisher initialized", "topic", cfg.EventsTopic, "brokers", cfg.KafkaBrokers)
	return publisher
}
