// Command authapp serves the registration and login API.
package main

import (
	"context"
	"log/slog"
	"os"

	"authapp/config"
	"authapp/internal/delivery"
	"authapp/internal/delivery/api"
	"authapp/internal/delivery/api/middleware"
	"authapp/internal/delivery/api/router/handler"
	"authapp/internal/infra/auth"
	logs "authapp/internal/infra/log"
	"authapp/internal/infra/persistence"
	"authapp/internal/usecase/impl"

	"go.uber.org/fx"
)

type serveParams struct {
	fx.In
	fx.Lifecycle

	Logger     *slog.Logger
	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		infraModule(),
		persistence.Module,
		authModule(),
		deliveryModule(),
		fx.Invoke(serve),
	).Run()
}

func infraModule() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
	)
}

// authModule provides the hashing and token primitives and the use case
// built on them.
func authModule() fx.Option {
	return fx.Provide(
		auth.NewBcryptHasher,
		auth.NewJWTService,
		impl.NewAuthService,
	)
}

func deliveryModule() fx.Option {
	return fx.Provide(
		middleware.NewAuthMiddleware,
		handler.NewAuthHandler,
		fx.Annotate(
			api.NewServer,
			fx.ResultTags(`group:"deliveries"`),
		),
	)
}

// serve starts every delivery once the start hooks registered before it
// (store ping and migrations) have succeeded.
func serve(ctx context.Context, params serveParams) {
	params.Append(fx.Hook{
		OnStart: func(context.Context) error {
			for _, d := range params.Deliveries {
				go func() {
					if err := d.Serve(ctx); err != nil {
						params.Logger.Error("Delivery stopped", slog.Any("error", err))
						os.Exit(1)
					}
				}()
			}

			return nil
		},
	})
}
