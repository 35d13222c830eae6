package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"

	"github.com/quarkex/quarkex/config"
	"github.com/quarkex/quarkex/controllers"
	"github.com/quarkex/quarkex/jobs/cron"
	"github.com/quarkex/quarkex/ledger"
	"github.com/quarkex/quarkex/models"
	"github.com/quarkex/quarkex/mq_client"
	"github.com/quarkex/quarkex/routes"
	engine "github.com/quarkex/quarkex/server"
)

const matchingTopic = "matching"

func main() {
	godotenv.Load()

	if err := config.InitializeConfig(); err != nil {
		config.Logger.Fatalf("initialize config: %s", err.Error())
	}

	if err := config.DataBase.AutoMigrate(&models.Market{}, &models.Order{}, &models.Trade{}); err != nil {
		config.Logger.Fatalf("migrate: %s", err.Error())
	}

	server := engine.NewEngineServer(ledger.New(), mq_client.NewEventsPublisher())

	if err := server.Reload(); err != nil {
		config.Logger.Fatalf("reload markets: %s", err.Error())
	}

	marketsPath := os.Getenv("MARKETS_CONFIG")
	if marketsPath == "" {
		marketsPath = "config/markets.yml"
	}
	if configs, err := config.LoadMarkets(marketsPath); err == nil {
		server.Bootstrap(configs)
	} else {
		config.Logger.Warnf("markets config not loaded: %s", err.Error())
	}

	controllers.Server = server
	controllers.Ledger = server.Ledger

	go cron.Start(server)
	go consumeMatching(server)

	app := routes.SetupRouter()

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	config.Logger.Infof("quarkex-engine listening on :%s", port)
	if err := app.Listen(":" + port); err != nil {
		config.Logger.Fatalf("listen: %s", err.Error())
	}
}

func consumeMatching(server *engine.EngineServer) {
	reader := config.Kafka.NewReader(matchingTopic, "quarkex-engine")
	defer reader.Close()

	for {
		message, err := reader.ReadMessage(context.Background())
		if err != nil {
			config.Logger.Errorf("read matching message: %s", err.Error())
			continue
		}

		if err := server.Process(message.Value); err != nil {
			config.Logger.Errorf("process matching message: %s", err.Error())
		}
	}
}
