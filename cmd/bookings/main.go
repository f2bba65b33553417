package main

import (
	bookinghandler "courtside/internal/bookings/handler"
	bookingrepo "courtside/internal/bookings/repository"
	bookingservice "courtside/internal/bookings/service"
	bookingvalidator "courtside/internal/bookings/validator"
	"courtside/internal/events"
	paymenthandler "courtside/internal/payments/handler"
	paymentrepo "courtside/internal/payments/repository"
	paymentservice "courtside/internal/payments/service"
	promohandler "courtside/internal/promos/handler"
	promorepo "courtside/internal/promos/repository"
	promoservice "courtside/internal/promos/service"
	promovalidator "courtside/internal/promos/validator"
	slotrepo "courtside/internal/slots/repository"
	slotservice "courtside/internal/slots/service"
	"courtside/internal/sweeper"
	"courtside/pkg/app"
	"courtside/pkg/config"
	"courtside/pkg/kafka"
	kafka_config "courtside/pkg/kafka/config"
	kafkamiddleware "courtside/pkg/kafka/middleware"
)

const (
	ServiceName    = "bookings"
	LifecycleTopic = "booking-lifecycle"
)

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetCatalog()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Bookings service")

	producer := initProducer(cfg)
	defer producer.Close()

	bookingService, promoService, slotService := initServices(cfg, producer)

	sw := sweeper.New(bookingService, slotService, cfg.SweepInterval, cfg.Log)
	sw.Start()

	serverApp := app.NewApplication(cfg)
	serverApp.RegisterWorker(sw)
	serverApp.SetApp(
		paymenthandler.NewCallbackHandler(bookingService, cfg.Log),
		bookinghandler.NewBookingHandler(bookingService, cfg.Log),
		promohandler.NewPromoHandler(promoService, cfg.Log),
	)
	serverApp.Run()
}

func initProducer(cfg *config.Config) *kafka.Producer {
	kafkaCfg := kafka_config.Load()
	producer, err := kafka.NewProducer(kafkaCfg, LifecycleTopic)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err, "topic", LifecycleTopic)
	}
	producer.Use(kafkamiddleware.LoggingProducerMiddleware(cfg.Log))
	cfg.Log.Info("Kafka producer initialized", "topic", LifecycleTopic)
	return producer
}

func initServices(cfg *config.Config, producer *kafka.Producer) (bookingservice.BookingService, promoservice.PromoService, slotservice.SlotService) {
	slotService := slotservice.NewSlotService(
		slotrepo.NewMongoSlotHoldRepository(cfg),
		slotrepo.NewMongoSlotLockRepository(cfg),
		cfg,
	)

	promoService := promoservice.NewPromoService(
		promorepo.NewMongoPromoRepository(cfg),
		promovalidator.NewPromoValidator(cfg.Log),
		cfg,
	)

	paymentService := paymentservice.NewPaymentService(
		paymentrepo.NewMongoPaymentRepository(cfg),
		cfg,
	)

	bookingService := bookingservice.NewBookingService(
		bookingrepo.NewMongoBookingRepository(cfg),
		slotService,
		promoService,
		paymentService,
		cfg.Client.Catalog,
		events.NewPublisher(producer, cfg.Log),
		bookingvalidator.NewBookingValidator(cfg.Log),
		cfg,
	)

	cfg.Log.Info("Booking service initialized", "database", cfg.MongoDatabaseName)
	return bookingService, promoService, slotService
}
