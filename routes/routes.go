package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/quarkex/quarkex/controllers"
	"github.com/quarkex/quarkex/routes/middlewares"
)

func SetupRouter() *fiber.App {
	app := fiber.New()

	app.Get("/api/v2/public/timestamp", controllers.GetTimestamp)
	app.Get("/api/v2/public/markets", controllers.GetMarkets)
	app.Get("/api/v2/public/markets/:market/depth", controllers.GetDepth)
	app.Get("/api/v2/public/markets/:market/trades", controllers.GetTrades)

	market := app.Group("/api/v2/market", middlewares.MemberAuth)
	market.Post("/orders", controllers.CreateOrder)
	market.Delete("/orders/:id", controllers.CancelOrder)
	market.Get("/orders/:id", controllers.GetOrder)
	market.Get("/balances", controllers.GetBalances)

	admin := app.Group("/api/v2/admin")
	admin.Post("/markets", controllers.CreateMarket)
	admin.Put("/markets/:symbol/state", controllers.SetMarketState)
	admin.Put("/markets/:symbol/fees", controllers.SetTradingFees)
	admin.Post("/deposits", controllers.Deposit)
	admin.Post("/withdraws", controllers.Withdraw)

	return app
}
