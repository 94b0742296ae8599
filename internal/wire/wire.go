//go:build wireinject
// +build wireinject

package wire

import (
	"github.com/google/wire"

	chathandler "gochat/internal/chat/handler"
	"gochat/internal/chat/repository"
	"gochat/internal/chat/service"
	"gochat/internal/config"
	"gochat/internal/dbmongo"
	"gochat/internal/dbmysql"
	"gochat/internal/media"
	"gochat/internal/realtime"
	"gochat/internal/user"
)

func InitializeApplication() (*Application, error) {
	wire.Build(
		config.Load,
		dbmysql.NewMySQL,
		dbmongo.NewMongoConnection,
		dbmongo.NewMediaStorage,

		user.NewUserRepository,
		user.NewContactRepository,
		user.NewBlockRepository,
		user.NewTokenRepository,
		user.NewUserService,
		user.NewHandler,

		repository.NewChatRepository,
		repository.NewMessageRepository,
		service.NewChatService,
		chathandler.NewHandler,

		realtime.NewHub,
		realtime.NewHandler,
		media.NewServer,

		wire.Bind(new(user.Uploader), new(*dbmongo.MediaStorage)),
		wire.Bind(new(service.Uploader), new(*dbmongo.MediaStorage)),
		wire.Bind(new(service.UserDirectory), new(user.UserRepository)),
		wire.Bind(new(service.BlockChecker), new(user.BlockRepository)),
		wire.Bind(new(service.Notifier), new(*realtime.Hub)),

		wire.Struct(new(Application), "*"),
	)
	return &Application{}, nil
}
