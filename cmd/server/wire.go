//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/Rifaque/ZeroLink/internal/config"
	"github.com/Rifaque/ZeroLink/internal/handler"
	"github.com/Rifaque/ZeroLink/internal/hub"
	"github.com/Rifaque/ZeroLink/internal/repository/mongo"
	"github.com/Rifaque/ZeroLink/internal/repository/postgres"
	"github.com/Rifaque/ZeroLink/internal/service"
)

// InitializeApp creates a new application.
func InitializeApp() (*App, func(), error) {
	wire.Build(
		config.Load,
		// Infrastructure Providers
		wire.NewSet(
			provideLogger,
			provideContext,
			providePostgresDB,
			provideMongoDB,
			provideVerifier,
			provideBlobStore,
		),
		// Repository Providers
		wire.NewSet(
			postgres.NewUserRepository,
			wire.Bind(new(service.IUserRepository), new(*postgres.UserRepository)),

			postgres.NewConversationRepository,
			wire.Bind(new(service.IConversationRepository), new(*postgres.ConversationRepository)),

			mongo.NewMessageRepository,
			wire.Bind(new(service.IMessageRepository), new(*mongo.MessageRepository)),
		),
		// Service Providers
		wire.NewSet(
			service.NewUserService,
			wire.Bind(new(service.IUserService), new(*service.UserService)),

			service.NewRoomService,
			wire.Bind(new(service.IRoomService), new(*service.RoomService)),
		),
		// Hub & Handler Providers
		hub.NewHub,
		handler.NewWebsocketHandler,
		handler.NewRestHandler,
		handler.NewRouter,
		// App Provider
		wire.NewSet(
			wire.Struct(new(App), "*"),
		),
	)
	return nil, nil, nil
}
