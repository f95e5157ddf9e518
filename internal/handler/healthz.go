package handler

import (
	"context"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingerFunc adapts a function, such as (*sql.DB).PingContext, to Pinger.
type PingerFunc func(ctx context.Context) error

func (f PingerFunc) Ping(ctx context.Context) error { return f(ctx) }

type ping struct {
	Service string `json:"service"`
	Status  string `json:"status"`
}

// Healthz handler.
type Healthz struct {
	log     *zap.Logger
	pingers map[string]Pinger
}

func NewHealthz(log *zap.Logger) *Healthz {
	return &Healthz{log: log, pingers: make(map[string]Pinger)}
}

// Add a pinger.
func (h *Healthz) Add(name string, p Pinger) {
	h.pingers[name] = p
}

// Show handle GET /
func (h *Healthz) Show(c *gin.Context) {
	var (
		wg    sync.WaitGroup
		pings = make([]ping, 0, len(h.pingers))
		down  = make([]bool, len(h.pingers))
	)
	for service := range h.pingers {
		pings = append(pings, ping{Service: service})
	}

	for i := range pings {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := h.pingers[pings[i].Service].Ping(c.Request.Context()); err != nil {
				h.log.Error("ping error", zap.String("service", pings[i].Service), zap.Error(err))
				pings[i].Status = err.Error()
				down[i] = true
				return
			}
			pings[i].Status = "UP"
		}(i)
	}
	wg.Wait()

	status := http.StatusOK
	for _, d := range down {
		if d {
			status = http.StatusServiceUnavailable
		}
	}
	c.JSON(status, pings)
}

// Mount handlers to router group.
func (h *Healthz) Mount(router *gin.RouterGroup) {
	router.GET("", h.Show)
}
