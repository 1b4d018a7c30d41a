package app

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/room-booking-backend/internal/api"
	"github.com/nekogravitycat/room-booking-backend/internal/auth"
	"github.com/nekogravitycat/room-booking-backend/internal/booking"
	"github.com/nekogravitycat/room-booking-backend/internal/pkg/events"
	"github.com/nekogravitycat/room-booking-backend/internal/pkg/logger"
	"github.com/nekogravitycat/room-booking-backend/internal/room"
	"github.com/nekogravitycat/room-booking-backend/internal/user"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	DBPool       *pgxpool.Pool
	JWTSecret    string
	JWTTTL       time.Duration
	BcryptCost   int
	KafkaBrokers []string
	KafkaTopic   string
	Logger       *logger.Logger
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router     *gin.Engine
	JWTManager *auth.JWTManager
	Publisher  events.Publisher
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) (*Container, error) {
	log := cfg.Logger
	if log == nil {
		log = logger.Discard()
	}

	// Init Components
	passwordHasher := auth.NewBcryptPasswordHasher(cfg.BcryptCost)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)

	publisher, err := newPublisher(cfg, log)
	if err != nil {
		return nil, err
	}

	// User Module
	userRepo := user.NewPgxRepository(cfg.DBPool)
	userService := user.NewService(userRepo, passwordHasher, log)

	// Booking and Room Modules share one conflict resolver over approved bookings.
	bookingRepo := booking.NewPgxRepository(cfg.DBPool)
	conflicts := booking.NewConflictResolver(bookingRepo)

	roomRepo := room.NewPgxRepository(cfg.DBPool)
	roomService := room.NewService(roomRepo, conflicts)

	bookingService := booking.NewService(bookingRepo, roomService, publisher, log)

	router, err := api.NewRouter(api.Config{
		IsProduction:   cfg.IsProduction,
		ProdOrigins:    cfg.ProdOrigins,
		UserService:    userService,
		RoomService:    roomService,
		BookingService: bookingService,
		JWTManager:     jwtManager,
		Logger:         log,
	})
	if err != nil {
		_ = publisher.Close()
		return nil, fmt.Errorf("build router: %w", err)
	}

	return &Container{
		Router:     router,
		JWTManager: jwtManager,
		Publisher:  publisher,
	}, nil
}

func newPublisher(cfg Config, log *logger.Logger) (events.Publisher, error) {
	if len(cfg.KafkaBrokers) == 0 {
		log.Info("event publishing disabled: no kafka brokers configured")
		return events.NopPublisher{}, nil
	}

	p, err := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	if err != nil {
		return nil, fmt.Errorf("create kafka publisher: %w", err)
	}
	log.Info("event publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	return p, nil
}
