package routers

import (
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/StreamRack/StreamRack/engine"
	"github.com/StreamRack/StreamRack/log"
	"github.com/StreamRack/StreamRack/models"
	"github.com/gin-contrib/pprof"
	"github.com/gin-contrib/static"
	"github.com/gin-gonic/gin"
	cors "github.com/itsjamie/gin-cors"
	"github.com/spf13/viper"
)

var (
	BuildVersion  = "v1.0"
	BuildDateTime = ""
)

// APIHandler carries shared state for the HTTP handlers.
type APIHandler struct {
	RestartChan chan bool

	store    *models.GormStore
	settings *models.ServiceSettings

	runnersLock sync.Mutex
	runners     map[string]*engine.Runner
}

var API = &APIHandler{
	RestartChan: make(chan bool),
	runners:     map[string]*engine.Runner{},
}

var Router *gin.Engine

func errorLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		for _, err := range c.Errors {
			log.Error("handle ", c.Request.URL.Path, " err: ", err.Err)
		}
	}
}

// Init builds the gin router and loads the working service settings. It must
// run after models.Init.
func Init() (err error) {
	if viper.GetString("http.mode") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	API.store = models.DefaultStore()
	API.settings, err = loadSettings(API.store)
	if err != nil {
		return
	}

	Router = gin.New()
	Router.Use(gin.Recovery())
	Router.Use(errorLogger())
	Router.Use(cors.Middleware(cors.Config{
		Origins:         "*",
		Methods:         "GET, PUT, POST, DELETE",
		RequestHeaders:  "Origin, Authorization, Content-Type",
		MaxAge:          50 * time.Second,
		Credentials:     true,
		ValidateHeaders: false,
	}))
	if viper.GetBool("http.pprof") {
		pprof.Register(Router)
	}

	if dir := API.settings.HlsDirectory; dirExists(dir) {
		Router.Use(static.Serve("/hls", static.LocalFile(dir, false)))
	}
	if dir := API.settings.VodsDirectory; dirExists(dir) {
		Router.Use(static.Serve("/vods", static.LocalFile(dir, false)))
	}
	if dir := API.settings.CodsDirectory; dirExists(dir) {
		Router.Use(static.Serve("/cods", static.LocalFile(dir, false)))
	}

	api := Router.Group("/api/v1")
	{
		api.POST("/streams", API.StreamCreate)
		api.GET("/streams", API.StreamList)
		api.GET("/streams/:id", API.StreamGet)
		api.PUT("/streams/:id", API.StreamUpdate)
		api.GET("/streams/:id/config", API.StreamConfig)
		api.POST("/streams/:id/fixup", API.StreamFixup)
		api.POST("/streams/:id/start", API.StreamStart)
		api.POST("/streams/:id/stop", API.StreamStop)
		api.DELETE("/streams/:id", API.StreamDelete)
		api.POST("/streams/import", API.StreamImport)
		api.GET("/playlist.m3u", API.ServicePlaylist)
		api.GET("/playlist/input.m3u", API.InputPlaylist)

		api.POST("/subscribers", API.SubscriberCreate)
		api.GET("/subscribers", API.SubscriberList)
		api.GET("/subscribers/:id", API.SubscriberGet)
		api.DELETE("/subscribers/:id", API.SubscriberDelete)
		api.POST("/subscribers/:id/login", API.SubscriberLogin)
		api.POST("/subscribers/:id/devices", API.DeviceAdd)
		api.DELETE("/subscribers/:id/devices/:did", API.DeviceRemove)
		api.POST("/subscribers/:id/streams", API.EntitlementAdd)
		api.DELETE("/subscribers/:id/streams/:sid", API.EntitlementRemove)
		api.POST("/subscribers/:id/select_all", API.SelectAll)

		api.GET("/stats", API.ServerStats)
		api.POST("/restart", API.Restart)
	}
	Router.GET("/playlist/:uid/:passwd/:did/playlist.m3u", API.DevicePlaylist)
	return
}

func dirExists(dir string) bool {
	if dir == "" {
		return false
	}
	info, err := os.Stat(dir)
	return err == nil && info.IsDir()
}

// loadSettings fetches the server settings row named in the config, creating
// it on first run.
func loadSettings(store *models.GormStore) (*models.ServiceSettings, error) {
	id := viper.GetString("server.id")
	settings, err := store.GetSettings(id)
	if err == nil {
		return settings, nil
	}
	if err != models.ErrNotFound {
		return nil, err
	}
	name := viper.GetString("server.name")
	if name == "" {
		name = models.DefaultServiceName
	}
	settings = models.NewServiceSettings(name)
	if id != "" {
		settings.ID = id
	}
	log.InfoWithFields("creating default server settings", log.Fields{"server": settings.ID})
	return settings, store.SaveSettings(settings)
}

func abortError(c *gin.Context, code int, msg string) {
	c.AbortWithStatusJSON(code, gin.H{"error": msg})
}

func notFound(c *gin.Context, what string) {
	abortError(c, http.StatusNotFound, what+" not found")
}
