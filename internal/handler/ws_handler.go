/*
Package handler provides the HTTP handler function for WebSocket connection upgrading.

This file contains HandleWebSocket, which rate limits the caller, upgrades the
connection and hands it to the hub for the rest of its life.
*/
package handler

import (
	"net/http"

	"github.com/gorilla/websocket"

	"presencehub/internal/app/chat"
	"presencehub/internal/pkg/errs"
	"presencehub/internal/pkg/limiter"
	"presencehub/internal/pkg/logx"
	"presencehub/internal/pkg/resp"
)

// HandleWebSocket creates an HTTP HandlerFunc that turns requests into hub sessions.
// The handler blocks until the connection ends.
func HandleWebSocket(upgrader websocket.Upgrader, deps *AppDeps) http.HandlerFunc {
	opts := chat.ClientOptions{
		SendQueueSize: deps.Config.SendQueueSize,
		MaxFrameBytes: deps.Config.MaxFrameBytes,
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ip := limiter.ClientIP(r)

		if !deps.ConnectLimiter.Allow(ip) {
			logx.Warn("WebSocket connection rejected: Rate limit exceeded.", "ip", ip)
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		client := chat.NewClient(deps.Hub, conn, opts)

		logx.Info("WebSocket connection established.", "client_id", client.ID())

		client.Serve()
	}
}
