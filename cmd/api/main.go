// Package main provides launch of the whole application
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/QuietRecursion/ImageTagger/internal/config"
	"github.com/QuietRecursion/ImageTagger/internal/kafka"
	"github.com/QuietRecursion/ImageTagger/internal/mwlogger"
	"github.com/QuietRecursion/ImageTagger/internal/recognition"
	"github.com/QuietRecursion/ImageTagger/internal/repository"
	"github.com/QuietRecursion/ImageTagger/internal/service"
	"github.com/QuietRecursion/ImageTagger/internal/storage"
	"github.com/QuietRecursion/ImageTagger/internal/transport"
	wbfconfig "github.com/wb-go/wbf/config"
	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/ginext"
	wbfkafka "github.com/wb-go/wbf/kafka"
	"github.com/wb-go/wbf/zlog"
)

func main() {
	// инициализировать конфиг/ считать энвы
	appConfig := wbfconfig.New()
	appConfig.EnableEnv("")
	if err := appConfig.LoadEnvFiles("./.env"); err != nil {
		log.Printf("No .env file loaded: %s", err)
	}

	cfg, err := config.Load(appConfig)
	if err != nil {
		log.Fatalf("Invalid configuration: %s\nExiting app...", err)
	}

	// стартуем логгер
	zlog.InitConsole()
	if err := zlog.SetLevel("info"); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	// готовим заранее слушатель прерываний - контекст для всего приложения
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// подключиться к базе и накатить миграции
	dbConn := repository.ConnectWithRetries(cfg.PostgresDSN, 5, 10*time.Second)
	repository.MigrateWithRetries(dbConn.Master, "./migrations", 10, 15*time.Second)

	// подключиться к блоб-хранилищу для base64-загрузок
	strg := storage.NewImgStorage(cfg.Minio, 10*time.Second)
	// создаем экземпляр репо
	repo := repository.NewPostgresImageRepo(dbConn)
	// клиент провайдера распознавания
	detector := recognition.NewClient(cfg.Imagga)

	// подключиться к кафке как продюсер - если событийный стрим включен
	var pub *wbfkafka.Producer
	var eventPub service.EventPublisher
	if cfg.Kafka.Broker != "" {
		kafka.WaitReady(cfg.Kafka.Broker)
		kafka.EnsureTopics(ctx, cfg.Kafka.Broker, 10*time.Second, cfg.Kafka.Topic)
		pub = wbfkafka.NewProducer([]string{cfg.Kafka.Broker}, cfg.Kafka.Topic)
		eventPub = pub
	}

	// создаем экземпляр сервиса и хендлера HTTP
	var svc ImageAPIService = service.NewImageService(repo, detector, strg, eventPub)
	handlers := transport.NewImageHandler(svc)

	// сетапим сервер
	engine := ginext.New(cfg.GinMode)

	engine.GET("/ping", handlers.SimplePinger)
	engine.POST("/images", handlers.Create)     // прием картинки
	engine.GET("/images/:id", handlers.GetByID) // одна запись
	engine.GET("/images", handlers.List)        // список с тег-фильтрами

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: mwlogger.NewMWLogger(engine),
	}

	// Server launch
	go func() {
		log.Printf("Server running on http://localhost%s\n", srv.Addr)
		err := srv.ListenAndServe()
		if err != nil {
			switch {
			case errors.Is(err, http.ErrServerClosed):
				log.Println("Server gracefully stopping...")
			default:
				log.Printf("Server stopped: %v", err)
				stop()
			}
		}
	}()

	// ждем отмены контекста для запуска грейсфул закрытия соединений
	<-ctx.Done()

	shutdown(pub, dbConn)
	log.Println("Exiting app...")
}

func shutdown(pub *wbfkafka.Producer, dbConn *dbpg.DB) {
	log.Println("Interrupt received!!! Starting shutdown sequence...")

	// Closing Kafka connection if eventing was enabled:
	if pub != nil {
		if err := pub.Close(); err != nil {
			log.Println("Failed to close Kafka-producer:", err)
		}
		log.Println("Kafka-producer connection closed.")
	}

	// Closing DB connection
	if err := dbConn.Master.Close(); err != nil {
		log.Println("Failed to close DB-conn correctly:", err)
		return
	}
	log.Println("DBconn closed")
}
