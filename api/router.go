// Package api contains all endpoints available
package api

import (
	"time"

	"voiceguard/audio-api/middleware"
	"voiceguard/audio-api/pkg/security"
	"voiceguard/audio-api/storage"

	cache "github.com/chenyahui/gin-cache"
	"github.com/chenyahui/gin-cache/persist"
	ginzap "github.com/gin-contrib/zap"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
)

const (
	gray  = "\x1b[90m"
	reset = "\x1b[0m"
)

var store = persist.NewMemoryStore(time.Minute)

// Deps holds every externally constructed handle the API needs. They are
// built once at process start and injected here so that nothing in this
// package owns a connection lifecycle.
type Deps struct {
	DB     *gorm.DB
	Store  storage.ObjectStorage
	Hasher *security.PasswordHasher
}

type API struct {
	DB     *gorm.DB
	Router *gin.Engine
	Store  storage.ObjectStorage
	Hasher *security.PasswordHasher
}

func NewRouter(d *Deps) (*API, error) {
	a := &API{
		DB:     d.DB,
		Store:  d.Store,
		Hasher: d.Hasher,
	}

	makeLogger()

	router := gin.New()
	a.Router = router

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     viper.GetStringSlice("host.cors_origins"),
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("requestID", v))
				}

				if v := c.GetString("userID"); v != "" {
					fields = append(fields, zap.String("userID", v))
				}

				return fields
			},
		}),
	)

	router.HandleMethodNotAllowed = true
	router.RedirectFixedPath = true
	router.MaxMultipartMemory = 5 << 20

	jwt := middleware.NewJWTMiddleware(d.DB)
	maxUploadSize := viper.GetInt64("upload.max_size")
	rateLimit := viper.GetInt("security.rate_limit")

	main := router.Group("/api")
	{
		// HEAD /api/heartbeat 		-> Used to check if the server is alive
		main.HEAD("/heartbeat", a.Heartbeat)

		// GET /api/validate		-> Validates a bearer token
		main.GET("/validate", jwt, a.Validate)
	}

	auth := router.Group("/auth",
		middleware.BodySizeLimiter(1<<20),
		middleware.RateLimiterMiddleware(middleware.RateLimiterConfig{
			RequestsPerSecond: rateLimit,
			Burst:             rateLimit * 2,
		}),
	)
	{
		// POST /auth/signup 		-> Registers a new user
		auth.POST("/signup", a.AuthSignup)

		// POST /auth/login 		-> Logs in a user and returns a bearer token
		auth.POST("/login", a.AuthLogin)

		// GET /auth/me			-> Returns the caller's profile and upload count
		auth.GET("/me", jwt, a.AuthMe)
	}

	audio := router.Group("/audio", jwt)
	{
		// POST /audio/upload		-> Uploads an audio file and runs the (simulated) analysis
		audio.POST("/upload", middleware.BodySizeLimiter(maxUploadSize), a.AudioUpload)

		// GET /audio/recent-files	-> Returns the caller's 5 most recent uploads
		audio.GET("/recent-files", a.AudioRecent)

		// GET /audio/files		-> Returns the caller's uploads in bulk
		audio.GET("/files", a.AudioFetchBulk)

		// GET /audio/file/:id		-> Streams a stored blob back. Blobs never change
		//				   so the response can be cached for a while
		audio.GET("/file/:id", cacheFor(60), a.AudioServe)
	}

	return a, nil
}

func makeLogger() {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + t.Format("15:04:05.000") + reset)
	}
	cfg.EncoderConfig.EncodeCaller = func(ec zapcore.EntryCaller, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + ec.TrimmedPath() + reset)
	}

	if lvl, err := zapcore.ParseLevel(viper.GetString("app.log_level")); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	cfg.DisableStacktrace = true

	log, _ := cfg.Build()
	zap.ReplaceGlobals(log)
}

func cacheFor(sec int) gin.HandlerFunc {
	return cache.CacheByRequestURI(store, time.Second*time.Duration(sec))
}
