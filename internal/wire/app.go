package wire

import (
	"gorm.io/gorm"

	chathandler "gochat/internal/chat/handler"
	"gochat/internal/config"
	"gochat/internal/dbmongo"
	"gochat/internal/media"
	"gochat/internal/realtime"
	"gochat/internal/user"
)

// Application bundles everything main needs to serve traffic.
type Application struct {
	Config          *config.Config
	DB              *gorm.DB
	Mongo           *dbmongo.MongoClient
	Hub             *realtime.Hub
	UserHandler     *user.Handler
	ChatHandler     *chathandler.Handler
	RealtimeHandler *realtime.Handler
	MediaServer     *media.Server
}
