package api

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/room-booking-backend/internal/auth"
	"github.com/nekogravitycat/room-booking-backend/internal/booking"
	bookingHttp "github.com/nekogravitycat/room-booking-backend/internal/booking/http"
	"github.com/nekogravitycat/room-booking-backend/internal/pkg/logger"
	"github.com/nekogravitycat/room-booking-backend/internal/pkg/validation"
	"github.com/nekogravitycat/room-booking-backend/internal/room"
	roomHttp "github.com/nekogravitycat/room-booking-backend/internal/room/http"
	"github.com/nekogravitycat/room-booking-backend/internal/user"
	userHttp "github.com/nekogravitycat/room-booking-backend/internal/user/http"
)

// Config holds everything NewRouter needs.
type Config struct {
	IsProduction bool
	ProdOrigins  string

	UserService    user.Service
	RoomService    room.Service
	BookingService booking.Service
	JWTManager     *auth.JWTManager
	Logger         *logger.Logger
}

// NewRouter initializes the HTTP router engine.
// It is responsible for assembling middleware (CORS, Logger, Auth) and registering routes for various modules.
func NewRouter(cfg Config) (*gin.Engine, error) {
	if err := validation.RegisterGin(); err != nil {
		return nil, err
	}

	log := cfg.Logger
	if log == nil {
		log = logger.Discard()
	}

	r := gin.New()

	// Global Middleware:
	// - RequestLogger: one structured line per request, tagged with a request id.
	// - Recovery: Captures panics to prevent server crashes and returns a 500 error.
	r.Use(RequestLogger(log), gin.Recovery())
	r.Use(cors.New(corsConfig(cfg.IsProduction, cfg.ProdOrigins)))

	// authMiddleware: Validates if the request contains a valid JWT.
	authMiddleware := auth.AuthRequired(cfg.JWTManager)
	// adminMiddleware: Further checks if the authenticated user is an admin.
	adminMiddleware := RequireAdmin(cfg.UserService)

	userHandler := userHttp.NewHandler(cfg.UserService, cfg.JWTManager)
	roomHandler := roomHttp.NewHandler(cfg.RoomService)
	bookingHandler := bookingHttp.NewHandler(cfg.BookingService)

	// Register API routes under /v1
	v1 := r.Group("/v1")
	{
		userHttp.RegisterRoutes(v1, userHandler, authMiddleware, adminMiddleware)
		roomHttp.RegisterRoutes(v1, roomHandler, authMiddleware, adminMiddleware)
		bookingHttp.RegisterRoutes(v1, bookingHandler, authMiddleware, adminMiddleware)
	}

	return r, nil
}

func corsConfig(isProduction bool, prodOrigins string) cors.Config {
	config := cors.DefaultConfig()
	if isProduction {
		var origins []string
		for _, o := range strings.Split(prodOrigins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		config.AllowOrigins = origins
	} else {
		config.AllowOrigins = []string{
			"http://localhost:3000",
			"http://localhost:8081", // Swagger
		}
	}
	config.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", HeaderRequestID}
	config.ExposeHeaders = []string{HeaderRequestID}
	config.MaxAge = 12 * time.Hour
	return config
}
