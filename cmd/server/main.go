package main

import (
	"net"
	"net/http"
	"slices"
	"strconv"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yahyatoraman/pictionary/internal/game"
	"github.com/yahyatoraman/pictionary/internal/logger"
)

const releaseVersion = "1.0.0"

func CreateServer(allowedOrigins []string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(ctx *gin.Context) { ctx.String(http.StatusOK, "healthy") })

	if len(allowedOrigins) > 0 {
		r.Use(func(ctx *gin.Context) {
			origin := ctx.Request.Header.Get("Origin")
			if origin == "" || slices.Contains(allowedOrigins, origin) {
				ctx.Next()
				return
			}
			ctx.String(http.StatusForbidden, "forbidden origin")
			ctx.Abort()
		})

		r.Use(cors.New(cors.Config{
			AllowOrigins:     allowedOrigins,
			AllowCredentials: true,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders: []string{
				"Content-Type",
				"Upgrade",
				"Connection",
				"Sec-WebSocket-Key",
				"Sec-WebSocket-Version",
				"Sec-WebSocket-Extensions",
				"Sec-WebSocket-Protocol",
			},
		}))
	}

	return r
}

func serve(cfg *Config) error {
	logger.SetVerbose(cfg.verbose)
	logger.Infof("pictionary v%s starting", releaseVersion)

	words := game.DefaultWords()
	if cfg.wordsFile != "" {
		loaded, err := game.LoadWords(cfg.wordsFile)
		if err != nil {
			return err
		}
		if len(loaded) > 0 {
			words = loaded
		}
	}
	logger.Infof("word pool size: %d", len(words))

	session := game.NewSession(game.SessionConfigs{
		MaxPlayers:  cfg.maxPlayers,
		TickEvery:   cfg.turnTick,
		SettleDelay: cfg.settleDelay,
		Words:       words,
	}, game.NewTickerGen())

	started := make(chan struct{})
	go session.Run(started)
	<-started

	gameHandler := game.NewGameHandler(session, game.NewIdGen())

	r := CreateServer(cfg.allowedOrigins)
	r.GET("/ws", gameHandler.ConnectHandler)
	if cfg.publicURL != "" {
		r.GET("/qr", serveQR(cfg.publicURL))
	}

	addr := net.JoinHostPort(cfg.bind, strconv.Itoa(cfg.port))
	logger.Infof("listening on %s", addr)
	return r.Run(addr)
}

func main() {
	cfg := &Config{}
	if err := newCmd(cfg).Execute(); err != nil {
		logger.Fatalf("%v", err)
	}
}
