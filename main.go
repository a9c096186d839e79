package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo"

	"github.com/blogdesk/search-service/broker"
	"github.com/blogdesk/search-service/config/env"
	"github.com/blogdesk/search-service/internal/api"
	"github.com/blogdesk/search-service/internal/searchengine"
	"github.com/blogdesk/search-service/internal/synchronizer"
	"github.com/blogdesk/search-service/logger"
	"github.com/blogdesk/search-service/publisher"
	"github.com/blogdesk/search-service/shared"
	"github.com/blogdesk/search-service/tenant"
	"github.com/blogdesk/search-service/tracer"
	"github.com/blogdesk/search-service/wrapper"
)

const serviceName = "search-service"

func main() {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("\x1b[31;1mFailed to start %s: %v\x1b[0m\n", serviceName, r)
		}
	}()

	env.Load(serviceName)
	logger.SetDebugMode(env.BaseEnv().DebugMode)
	tracer.InitOpenTracing(serviceName)

	rabbitBroker := broker.NewRabbitMQBroker()
	router := tenant.NewRouter(tenant.EnvResolver(env.BaseEnv().DbMongoHost), tenant.ConnectMongo)
	engine := searchengine.NewEngine()
	accessor := synchronizer.NewContentAccessor(env.BaseEnv().ContentServiceBaseURL, env.BaseEnv().FetchTimeout)
	sync := synchronizer.New(accessor, engine, env.BaseEnv().FetchTimeout)
	reindexer := synchronizer.NewReindexer(router, engine)

	consumer := broker.NewConsumer(rabbitBroker)
	consumer.AddHandler(shared.EventPostCreated, sync.HandlePostUpserted)
	consumer.AddHandler(shared.EventPostUpdated, sync.HandlePostUpserted)
	consumer.AddHandler(shared.EventPostPublished, sync.HandlePostUpserted)
	consumer.AddHandler(shared.EventPostDeleted, sync.HandlePostDeleted)

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = wrapper.CustomHTTPErrorHandler
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"service": serviceName, "uptime": time.Since(start).String(), "startAt": env.BaseEnv().StartAt,
		})
	})
	restHandler := api.NewRestHandler(engine, reindexer, publisher.NewRabbitMQPublisher(rabbitBroker.Connection()))
	restHandler.Mount(e.Group("/api"))

	errServe := make(chan error, 2)
	go func() {
		errServe <- consumer.Serve()
	}()
	go func() {
		fmt.Printf("\x1b[34;1m⇨ HTTP server run at port [::]:%d\x1b[0m\n", env.BaseEnv().HTTPPort)
		errServe <- e.Start(fmt.Sprintf(":%d", env.BaseEnv().HTTPPort))
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errServe:
		if err != nil {
			logger.LogE("service stopped: " + err.Error())
		}
	case sig := <-quit:
		fmt.Printf("\x1b[33;1m%s: got signal %s, graceful shutdown...\x1b[0m\n", serviceName, sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	consumer.Shutdown(ctx)
	if err := e.Shutdown(ctx); err != nil {
		logger.LogE("http server shutdown: " + err.Error())
	}
	if err := router.ReleaseAll(ctx); err != nil {
		logger.LogE("tenant store release: " + err.Error())
	}
	if err := rabbitBroker.Disconnect(ctx); err != nil {
		logger.LogE("rabbitmq disconnect: " + err.Error())
	}

	fmt.Printf("\x1b[32;1m%s stopped\x1b[0m\n", serviceName)
}
