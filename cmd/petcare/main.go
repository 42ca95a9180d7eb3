package main

import (
	apihandler "petcare/internal/api/handler"
	appthandler "petcare/internal/appointments/handler"
	apptrepository "petcare/internal/appointments/repository"
	apptservice "petcare/internal/appointments/service"
	apptvalidator "petcare/internal/appointments/validator"
	authhandler "petcare/internal/auth/handler"
	authrepository "petcare/internal/auth/repository"
	authservice "petcare/internal/auth/service"
	authvalidator "petcare/internal/auth/validator"
	carthandler "petcare/internal/cart/handler"
	cartrepository "petcare/internal/cart/repository"
	cartservice "petcare/internal/cart/service"
	dashboardhandler "petcare/internal/dashboard/handler"
	dashboardservice "petcare/internal/dashboard/service"
	"petcare/internal/notifications"
	ownerhandler "petcare/internal/owners/handler"
	ownerrepository "petcare/internal/owners/repository"
	ownerservice "petcare/internal/owners/service"
	ownervalidator "petcare/internal/owners/validator"
	pethandler "petcare/internal/pets/handler"
	petrepository "petcare/internal/pets/repository"
	petservice "petcare/internal/pets/service"
	petvalidator "petcare/internal/pets/validator"
	producthandler "petcare/internal/products/handler"
	productrepository "petcare/internal/products/repository"
	productservice "petcare/internal/products/service"
	productvalidator "petcare/internal/products/validator"
	servicehandler "petcare/internal/vetservices/handler"
	servicerepository "petcare/internal/vetservices/repository"
	serviceservice "petcare/internal/vetservices/service"
	servicevalidator "petcare/internal/vetservices/validator"
	"petcare/pkg/app"
	"petcare/pkg/config"
	"petcare/pkg/contracts"
	mongotx "petcare/pkg/db/mongo"
	"petcare/pkg/kafka"
	kafka_config "petcare/pkg/kafka/config"
	kafka_middleware "petcare/pkg/kafka/middleware"
	"petcare/pkg/mailer"
)

const ServiceName = "petcare"

type repositories struct {
	users        authrepository.UserRepository
	owners       ownerrepository.OwnerRepository
	pets         petrepository.PetRepository
	services     servicerepository.ServiceRepository
	products     productrepository.ProductRepository
	appointments apptrepository.AppointmentRepository
	carts        cartrepository.CartRepository
}

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting PetCare web service")
	serverApp := app.NewApplication(cfg)

	repos := initRepositories(cfg)
	m := mailer.FromConfig(cfg)
	notifier := initNotifier(cfg, serverApp, repos, m)

	serverApp.SetApp(initHandlers(cfg, serverApp, repos, m, notifier)...)
	serverApp.Run()
}

func initRepositories(cfg *config.Config) repositories {
	return repositories{
		users:        authrepository.NewMongoUserRepository(cfg),
		owners:       ownerrepository.NewMongoOwnerRepository(cfg),
		pets:         petrepository.NewMongoPetRepository(cfg),
		services:     servicerepository.NewMongoServiceRepository(cfg),
		products:     productrepository.NewMongoProductRepository(cfg),
		appointments: apptrepository.NewMongoAppointmentRepository(cfg),
		carts:        cartrepository.NewMongoCartRepository(cfg),
	}
}

// initNotifier publishes appointment events to Kafka when brokers are configured.
// Without Kafka the vet is emailed in-process.
func initNotifier(cfg *config.Config, serverApp *app.Application, repos repositories, m mailer.Mailer) apptservice.Notifier {
	if !cfg.KafkaEnabled() {
		cfg.Log.Info("Kafka disabled, appointment emails are sent in-process")
		vetMailer := notifications.NewVetMailer(repos.users, repos.pets, repos.owners, repos.appointments, m, cfg.BaseURL, cfg.Log)
		return notifications.NewMailNotifier(vetMailer, cfg.Log)
	}

	kafkaCfg, err := kafka_config.Load(cfg.KafkaBrokers)
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}

	producer, err := kafka.NewProducer(kafkaCfg, cfg.KafkaAppointmentsTopic, cfg.KafkaAppointmentsTopic+".dlq", cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	serverApp.OnShutdown(func() {
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka producer", "error", err)
		}
	})

	cfg.Log.Info("Publishing appointment events", "topic", cfg.KafkaAppointmentsTopic, "brokers", cfg.KafkaBrokers)
	return notifications.NewKafkaNotifier(producer)
}

func initHandlers(cfg *config.Config, serverApp *app.Application, repos repositories, m mailer.Mailer, notifier apptservice.Notifier) []contracts.Handler {
	renderer := serverApp.Renderer()
	sessions := serverApp.Sessions()

	authService := authservice.NewAuthService(repos.users, authvalidator.NewUserValidator(cfg.Log), m, cfg)
	ownerService := ownerservice.NewOwnerService(repos.owners, repos.pets, ownervalidator.NewOwnerValidator(cfg.Log), cfg)
	petService := petservice.NewPetService(repos.pets, repos.owners, repos.appointments, petvalidator.NewPetValidator(cfg.Log), cfg)
	serviceService := serviceservice.NewServiceService(repos.services, servicevalidator.NewServiceValidator(cfg.Log), cfg)
	productService := productservice.NewProductService(repos.products, productvalidator.NewProductValidator(cfg.Log), cfg)
	appointmentService := apptservice.NewAppointmentService(
		repos.appointments,
		repos.owners,
		repos.pets,
		repos.users,
		notifier,
		apptvalidator.NewAppointmentValidator(cfg.Log),
		cfg,
	)
	cartService := cartservice.NewCartService(repos.carts, repos.products, mongotx.NewTransactionManager(cfg.Client.Mongo), cfg)
	dashboardService := dashboardservice.NewDashboardService(repos.pets, repos.owners, repos.appointments, appointmentService, cfg)

	cfg.Log.Info("Services initialized", "database", cfg.MongoDatabaseName)

	return []contracts.Handler{
		dashboardhandler.NewDashboardHandler(dashboardService, renderer, sessions, cfg.Log),
		authhandler.NewAuthHandler(authService, renderer, sessions, cfg),
		ownerhandler.NewOwnerHandler(ownerService, renderer, sessions, cfg.Log),
		pethandler.NewPetHandler(petService, renderer, sessions, cfg.Log),
		servicehandler.NewServiceHandler(serviceService, renderer, sessions, cfg.Log),
		producthandler.NewProductHandler(productService, renderer, sessions, cfg.Log),
		appthandler.NewAppointmentHandler(appointmentService, renderer, sessions, cfg.Log),
		carthandler.NewCartHandler(cartService, renderer, sessions, serverApp.Idempotency(), cfg.Log),
		apihandler.NewAPIHandler(repos.owners, repos.pets, repos.users, appointmentService, productService, cfg.Log, serverApp.APIGuards()...),
	}
}
