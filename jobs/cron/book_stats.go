package cron

import (
	"github.com/go-redis/redis/v8"
	"github.com/jasonlvhit/gocron"

	"github.com/quarkex/quarkex/config"
	engine "github.com/quarkex/quarkex/server"
)

// BookStatsJob publishes every book's counters and top depth levels to
// redis for the read side.
type BookStatsJob struct {
	Server *engine.EngineServer
}

func (j *BookStatsJob) Process() {
	if config.Redis == nil {
		return
	}

	for _, stats := range j.Server.AllStats() {
		if err := config.Redis.SetKey("quarkex:stats:"+stats.Symbol, stats, redis.KeepTTL); err != nil {
			config.Logger.Errorf("[quarkex.cron] publish stats %s: %s", stats.Symbol, err.Error())
			continue
		}

		e := j.Server.GetEngineByMarket(stats.Symbol)
		if e == nil {
			continue
		}

		bids, asks := e.OrderBook.DepthSnapshot(50)
		snapshot := map[string]interface{}{"bids": bids, "asks": asks}
		if err := config.Redis.SetKey("quarkex:depth:"+stats.Symbol, snapshot, redis.KeepTTL); err != nil {
			config.Logger.Errorf("[quarkex.cron] publish depth %s: %s", stats.Symbol, err.Error())
		}
	}
}

// Start blocks, running the stats job on an interval.
func Start(server *engine.EngineServer) {
	job := &BookStatsJob{Server: server}

	gocron.Every(5).Seconds().Do(job.Process)

	<-gocron.Start()
}
