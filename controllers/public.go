package controllers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/quarkex/quarkex/matching"
	"github.com/quarkex/quarkex/models"
)

func GetTimestamp(c *fiber.Ctx) error {
	return c.JSON(time.Now().Unix())
}

func GetMarkets(c *fiber.Ctx) error {
	return c.JSON(Server.AllStats())
}

type depthResponse struct {
	Symbol string              `json:"symbol"`
	Bids   []matching.DepthRow `json:"bids"`
	Asks   []matching.DepthRow `json:"asks"`
}

func GetDepth(c *fiber.Ctx) error {
	symbol := c.Params("market")

	limit, err := strconv.Atoi(c.Query("limit", "100"))
	if err != nil || limit <= 0 {
		limit = 100
	}

	e := Server.GetEngineByMarket(symbol)
	if e == nil {
		return jsonError(c, fiber.StatusNotFound, "public.market.doesnt_exist")
	}

	bids, asks := e.OrderBook.DepthSnapshot(limit)

	return c.JSON(depthResponse{Symbol: symbol, Bids: bids, Asks: asks})
}

func GetTrades(c *fiber.Ctx) error {
	symbol := c.Params("market")

	limit, err := strconv.Atoi(c.Query("limit", "100"))
	if err != nil || limit <= 0 {
		limit = 100
	}

	trades, err := models.RecentTrades(symbol, limit)
	if err != nil {
		return mapDomainError(c, err)
	}

	return c.JSON(trades)
}
