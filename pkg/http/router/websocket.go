package router

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/gobwas/ws"
	"github.com/lintang-b-s/navigatorx-ch/pkg/concurrent"
	"github.com/lintang-b-s/navigatorx-ch/pkg/http/router/controllers"
	http_server "github.com/lintang-b-s/navigatorx-ch/pkg/http/server"
	"github.com/mailru/easygo/netpoll"
	"go.uber.org/zap"
)

const (
	wsPoolSize  = 128
	wsPoolQueue = 64
	wsPoolSpawn = 16
)

// handleWebsocket serves the route query stream on config.WebsocketPort until ctx is done.
func (api *API) handleWebsocket(ctx context.Context, config http_server.Config,
	routingService controllers.RoutingService) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", config.WebsocketPort))
	if err != nil {
		return err
	}
	api.log.Info(fmt.Sprintf("route query websocket API run on port %d", config.WebsocketPort))

	acceptDesc, err := netpoll.HandleListener(ln, netpoll.EventRead|netpoll.EventOneShot)
	if err != nil {
		ln.Close()
		return err
	}

	api.poller, err = netpoll.New(nil)
	if err != nil {
		ln.Close()
		return err
	}

	api.pool = concurrent.NewPool(wsPoolSize, wsPoolQueue, wsPoolSpawn)
	api.hub = controllers.NewHub(routingService, config.Timeout, api.log)

	// accept is a channel to signal about next incoming connection Accept() results.
	accept := make(chan error, 1)
	fatal := make(chan error, 1)

	err = api.poller.Start(acceptDesc, func(ev netpoll.Event) {
		/*
			listener fd ada di epoll interest list, callback ini jalan waktu ada koneksi baru yang siap di-accept.
			EventOneShot: harus Resume supaya dapat event berikutnya.
		*/
		defer api.poller.Resume(acceptDesc)

		err := api.pool.ScheduleTimeout(time.Millisecond, func() {
			conn, err := ln.Accept()
			if err != nil {
				accept <- err
				return
			}

			accept <- nil
			api.handle(conn)
		})
		if err == nil {
			err = <-accept
		}
		if err == nil {
			return
		}

		var ne net.Error
		switch {
		case errors.Is(err, concurrent.ErrScheduleTimeout), errors.As(err, &ne) && ne.Timeout():
			// pool penuh, cooldown sebentar
			delay := 5 * time.Millisecond
			api.log.Sugar().Infof("accept error: %v; retrying in %s", err, delay)
			time.Sleep(delay)
		case errors.Is(err, net.ErrClosed):
		default:
			select {
			case fatal <- err:
			default:
			}
		}
	})
	if err != nil {
		ln.Close()
		return err
	}

	select {
	case <-ctx.Done():
		err = nil
	case err = <-fatal:
		api.log.Error("websocket accept error, shutting down", zap.Error(err))
	}

	_ = api.poller.Stop(acceptDesc)
	ln.Close()
	api.hub.RemoveAllUser()

	api.log.Info("websocket server stopped")
	return err
}

/*
handle. upgrade connection ke websocket lalu daftarkan fd-nya ke epoll, jadi tidak perlu satu goroutine per koneksi
yang idle. ref: https://sergey.kamardin.org/articles/million-websocket-and-go/
*/
func (api *API) handle(conn net.Conn) {
	br := bufio.NewReader(conn)

	rw := struct {
		io.Reader
		io.Writer
	}{br, conn}

	hs, err := ws.Upgrade(rw)
	if err != nil {
		api.log.Info("upgrade error", zap.Error(err), zap.String("connection", nameConn(conn)))
		conn.Close()
		return
	}

	api.log.Info("established websocket connection", zap.String("connection", nameConn(conn)),
		zap.String("protocol", hs.Protocol))

	user := api.hub.Register(conn)

	desc, err := netpoll.HandleRead(conn)
	if err != nil {
		api.log.Error("netpoll handle read", zap.Error(err))
		api.hub.Remove(user)
		conn.Close()
		return
	}

	err = api.poller.Start(desc, func(ev netpoll.Event) {
		if ev&(netpoll.EventReadHup|netpoll.EventHup) != 0 {
			// peer menutup koneksi
			api.log.Debug("user disconnected from websocket server", zap.Uint("user", user.GetID()))
			_ = api.poller.Stop(desc)
			api.hub.Remove(user)
			conn.Close()
			return
		}

		api.pool.Schedule(func() {
			if err := user.HandleRouteQuery(); err != nil {
				api.log.Debug("closing websocket connection", zap.Uint("user", user.GetID()), zap.Error(err))
				_ = api.poller.Stop(desc)
				api.hub.Remove(user)
			}
		})
	})
	if err != nil {
		api.log.Error("netpoll start", zap.Error(err))
		api.hub.Remove(user)
		conn.Close()
	}
}

func nameConn(conn net.Conn) string {
	return conn.LocalAddr().String() + " > " + conn.RemoteAddr().String()
}
