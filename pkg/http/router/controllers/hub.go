package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	da "github.com/lintang-b-s/navigatorx-ch/pkg/datastructure"
	"go.uber.org/zap"
)

// User. one websocket connection streaming vertex-id route queries, one json message per query.
type User struct {
	io   sync.Mutex
	conn io.ReadWriteCloser

	id  uint
	hub *Hub
}

func (u *User) GetID() uint {
	return u.id
}

func (u *User) readRequest() (*routeByVertexRequest, error) {
	u.io.Lock()
	defer u.io.Unlock()

	h, r, err := wsutil.NextReader(u.conn, ws.StateServerSide)
	if err != nil {
		return nil, err
	}
	if h.OpCode.IsControl() {
		return nil, wsutil.ControlFrameHandler(u.conn, ws.StateServerSide)(h, r)
	}

	req := &routeByVertexRequest{}
	decodeErr := json.NewDecoder(r).Decode(req)
	// sisa payload frame harus dibuang, kalau tidak frame berikutnya terbaca dari tengah
	if _, err := io.Copy(io.Discard, r); err != nil {
		return nil, err
	}
	if decodeErr != nil {
		return nil, &malformedRequestError{err: decodeErr}
	}
	return req, nil
}

// malformedRequestError. message arrived intact but is not a valid json request, the connection stays usable.
type malformedRequestError struct {
	err error
}

func (e *malformedRequestError) Error() string {
	return "malformed request: " + e.err.Error()
}

func (e *malformedRequestError) Unwrap() error {
	return e.err
}

// HandleRouteQuery reads one request from the connection and writes the route or an error envelope back.
// a malformed message gets a 400 envelope, any other read error closes the connection and the caller should then
// Remove the user.
func (u *User) HandleRouteQuery() error {
	req, err := u.readRequest()
	var malformed *malformedRequestError
	if errors.As(err, &malformed) {
		return u.writeError("", http.StatusBadRequest, malformed.Error())
	}
	if err != nil {
		u.conn.Close()
		return err
	}

	if req == nil {
		// control frame
		return nil
	}

	if err := validateRequest(req); err != nil {
		return u.writeError(req.ID, http.StatusBadRequest, err.Error())
	}

	ctx, cancel := context.WithTimeout(context.Background(), u.hub.queryTimeout)
	defer cancel()

	res, found, err := u.hub.routingService.ShortestPathByVertex(ctx, da.Index(req.Source), da.Index(req.Target),
		req.MaxWeight)
	if err != nil {
		u.hub.log.Debug("websocket route query failed", zap.Uint("user", u.id), zap.Error(err))
		return u.writeError(req.ID, statusOf(err), err.Error())
	}
	if !found {
		return u.writeError(req.ID, http.StatusNotFound, fmt.Sprintf("no route found from vertex %d to %d",
			req.Source, req.Target))
	}

	return u.write(envelope{"data": NewRouteByVertexResponse(req.ID, res)})
}

func (u *User) writeError(id string, status int, message string) error {
	resp := envelope{"error": newErrorResponse(status, message).Error}
	if id != "" {
		resp["id"] = id
	}
	return u.write(resp)
}

func (u *User) write(x interface{}) error {
	w := wsutil.NewWriter(u.conn, ws.StateServerSide, ws.OpText)
	encoder := json.NewEncoder(w)

	u.io.Lock()
	defer u.io.Unlock()

	if err := encoder.Encode(x); err != nil {
		return err
	}

	return w.Flush()
}

type Hub struct {
	mu  sync.RWMutex
	seq uint
	ns  map[uint]*User

	routingService RoutingService
	queryTimeout   time.Duration
	log            *zap.Logger
}

func NewHub(routingService RoutingService, queryTimeout time.Duration, log *zap.Logger) *Hub {
	return &Hub{
		ns:             make(map[uint]*User),
		routingService: routingService,
		queryTimeout:   queryTimeout,
		log:            log,
	}
}

func (h *Hub) Register(conn net.Conn) *User {
	user := &User{
		hub:  h,
		conn: conn,
	}

	h.mu.Lock()
	user.id = h.seq
	h.ns[user.id] = user
	h.seq++
	h.mu.Unlock()

	return user
}

// Remove. false kalau user sudah dihapus sebelumnya.
func (h *Hub) Remove(user *User) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.ns[user.id]; !ok {
		return false
	}
	delete(h.ns, user.id)
	return true
}

func (h *Hub) NumUsers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.ns)
}

// RemoveAllUser closes every connection, dipanggil waktu shutdown.
func (h *Hub) RemoveAllUser() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, user := range h.ns {
		user.conn.Close()
		delete(h.ns, id)
	}
}
