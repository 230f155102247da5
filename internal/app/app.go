package app

import (
	"log/slog"
	"os"

	"github.com/moviematch/core/internal/config"
	http_init "github.com/moviematch/core/internal/delivery/http/init"
	http_device_middleware "github.com/moviematch/core/internal/delivery/http/middleware/device"
	http_movie "github.com/moviematch/core/internal/delivery/http/movie"
	http_session "github.com/moviematch/core/internal/delivery/http/session"
	http_user "github.com/moviematch/core/internal/delivery/http/user"
	http_voting "github.com/moviematch/core/internal/delivery/http/voting"
	ws_session "github.com/moviematch/core/internal/delivery/ws/session"
	infra_kinopoisk "github.com/moviematch/core/internal/infra/kinopoisk"
	infra_pg_init "github.com/moviematch/core/internal/infra/postgres/init"
	infra_postgres_movie "github.com/moviematch/core/internal/infra/postgres/movie"
	infra_postgres_session "github.com/moviematch/core/internal/infra/postgres/session"
	infra_postgres_user "github.com/moviematch/core/internal/infra/postgres/user"
	infra_postgres_vote "github.com/moviematch/core/internal/infra/postgres/vote"
	infra_catalog_cache "github.com/moviematch/core/internal/infra/redis/catalogcache"
	infra_redis_init "github.com/moviematch/core/internal/infra/redis/init"
	infra_s3 "github.com/moviematch/core/internal/infra/s3"
	usecase_movie "github.com/moviematch/core/internal/usecase/movie"
	usecase_roulette "github.com/moviematch/core/internal/usecase/roulette"
	usecase_session "github.com/moviematch/core/internal/usecase/session"
	usecase_user "github.com/moviematch/core/internal/usecase/user"
	usecase_vote "github.com/moviematch/core/internal/usecase/vote"
)

func Go(cfg *config.Config) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	redisConn := infra_redis_init.MustEstablishConn(cfg.Redis)
	pgConn := infra_pg_init.MustEstablishConn(cfg.Postgres)

	s3Conn := infra_s3.MustEstablishConn(cfg.S3)
	coverStorage, err := infra_s3.New(cfg.S3.Bucket, s3Conn, cfg.S3.Prefix)
	if err != nil {
		panic(err)
	}

	catalog := infra_kinopoisk.New(cfg.Kinopoisk)
	catalogCache := infra_catalog_cache.New(redisConn, "catalog_cache")

	sessionRepository := infra_postgres_session.New(pgConn)
	voteRepository := infra_postgres_vote.New(pgConn)
	movieRepository := infra_postgres_movie.New(pgConn)
	userRepository := infra_postgres_user.New(pgConn)

	hub := ws_session.New(logger)

	userUC := usecase_user.New(userRepository)
	movieUC := usecase_movie.New(movieRepository, catalog, catalogCache)
	sessionUC := usecase_session.New(sessionRepository, userUC, movieUC, coverStorage, hub)
	voteUC := usecase_vote.New(voteRepository, sessionUC, hub)
	rouletteUC := usecase_roulette.New(sessionRepository, sessionUC, hub)

	deviceMiddleware := http_device_middleware.New(userUC)

	controllerPool := http_init.NewControllerPool()
	controllerPool.Add(http_user.New(userUC))
	controllerPool.Add(http_movie.New(movieUC))
	controllerPool.Add(http_session.New(sessionUC, deviceMiddleware))
	controllerPool.Add(http_voting.New(voteUC, sessionUC, rouletteUC, deviceMiddleware))
	controllerPool.Add(ws_session.NewController(hub, sessionUC))

	controllerPool.Register()
	controllerPool.RunAll(cfg.HTTP.Port)
}
