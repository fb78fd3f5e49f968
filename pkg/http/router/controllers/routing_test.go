package controllers

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gobwas/ws/wsutil"
	"github.com/julienschmidt/httprouter"
	"github.com/lintang-b-s/navigatorx-ch/pkg"
	da "github.com/lintang-b-s/navigatorx-ch/pkg/datastructure"
	helper "github.com/lintang-b-s/navigatorx-ch/pkg/http/router/routerhelper"
	"github.com/lintang-b-s/navigatorx-ch/pkg/http/usecases"
	"github.com/lintang-b-s/navigatorx-ch/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var errNoVertex = util.WrapErrorf(nil, util.ErrBadParamInput, "origin is too far from any road")

type mockRoutingService struct{}

func (m *mockRoutingService) ShortestPath(ctx context.Context, origLat, origLon, dstLat, dstLon float64) (usecases.RouteResult, bool, error) {
	switch {
	case origLat == 50:
		return usecases.RouteResult{}, false, errNoVertex
	case origLat == dstLat && origLon == dstLon:
		return usecases.RouteResult{Path: "??"}, true, nil
	case dstLat == 1:
		return usecases.RouteResult{}, false, nil
	}
	return usecases.RouteResult{Eta: 6, Dist: 333, Path: "?_ibE"}, true, nil
}

func (m *mockRoutingService) ShortestPathByVertex(ctx context.Context, s, t da.Index, maxWeight float64) (usecases.RouteResult, bool, error) {
	if s == 99 || t == 99 {
		return usecases.RouteResult{}, false, util.WrapErrorf(nil, util.ErrBadParamInput, "vertex 99 out of range")
	}
	if s == 5 {
		return usecases.RouteResult{}, false, nil
	}
	if s == 7 {
		return usecases.RouteResult{}, false, context.DeadlineExceeded
	}
	return usecases.RouteResult{Eta: 2 * float64(t-s), Dist: 111, Path: "??", Vertices: []da.Index{s, t}}, true, nil
}

func (m *mockRoutingService) DistanceMatrix(ctx context.Context, sources, targets []da.Index) ([][]float64, error) {
	matrix := make([][]float64, len(sources))
	for i, s := range sources {
		matrix[i] = make([]float64, len(targets))
		for j, t := range targets {
			if s == 4 {
				matrix[i][j] = pkg.INF_WEIGHT
				continue
			}
			matrix[i][j] = float64(t) - float64(s)
		}
	}
	return matrix, nil
}

func newTestRouter() *httprouter.Router {
	router := httprouter.New()
	New(&mockRoutingService{}, zap.NewNop()).Routes(helper.NewRouteGroup(router, "/api"))
	return router
}

func serve(router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestShortestPathHandler(t *testing.T) {
	router := newTestRouter()

	testCases := []struct {
		name     string
		query    string
		wantCode int
		wantBody string
	}{
		{"ok", "origin_lat=0&origin_lon=0&destination_lat=0&destination_lon=0.003", http.StatusOK, `"eta":6`},
		{"missing param", "origin_lat=0&origin_lon=0&destination_lat=0", http.StatusBadRequest, "destination_lon is required"},
		{"bad float", "origin_lat=abc&origin_lon=0&destination_lat=0&destination_lon=0", http.StatusBadRequest, "origin_lat is required"},
		{"latitude out of range", "origin_lat=91&origin_lon=0&destination_lat=0&destination_lon=0", http.StatusBadRequest, "validation error"},
		{"no nearby road", "origin_lat=50&origin_lon=0&destination_lat=0&destination_lon=0", http.StatusBadRequest, "too far"},
		{"no route", "origin_lat=0&origin_lon=0&destination_lat=1&destination_lon=0", http.StatusNotFound, "no route found"},
	}
	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(router, http.MethodGet, "/api/computeRoutes?"+tt.query, "")
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		})
	}
}

func TestShortestPathHandlerResponse(t *testing.T) {
	rec := serve(newTestRouter(), http.MethodGet,
		"/api/computeRoutes?origin_lat=0&origin_lon=0&destination_lat=0&destination_lon=0.003", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data shortestPathResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, shortestPathResponse{Eta: 6, Path: "?_ibE", Dist: 333}, resp.Data)
}

func TestShortestPathByVertexHandler(t *testing.T) {
	router := newTestRouter()

	testCases := []struct {
		name     string
		query    string
		wantCode int
		wantBody string
	}{
		{"ok", "source=1&target=3", http.StatusOK, `"vertices":[1,3]`},
		{"with max weight", "source=1&target=3&max_weight=10", http.StatusOK, `"eta":4`},
		{"negative max weight", "source=1&target=3&max_weight=-1", http.StatusBadRequest, "validation error"},
		{"bad max weight", "source=1&target=3&max_weight=x", http.StatusBadRequest, "max_weight"},
		{"negative vertex", "source=-1&target=3", http.StatusBadRequest, "source is required"},
		{"missing target", "source=1", http.StatusBadRequest, "target is required"},
		{"out of range", "source=99&target=3", http.StatusBadRequest, "out of range"},
		{"no route", "source=5&target=3", http.StatusNotFound, "no route found from vertex 5 to 3"},
		{"timeout", "source=7&target=3", http.StatusServiceUnavailable, "request cancelled"},
	}
	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(router, http.MethodGet, "/api/computeRouteByVertex?"+tt.query, "")
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
		})
	}
}

func TestDistanceMatrixHandler(t *testing.T) {
	router := newTestRouter()

	t.Run("ok", func(t *testing.T) {
		rec := serve(router, http.MethodPost, "/api/distanceMatrix", `{"sources":[0,4],"targets":[2,3]}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Data struct {
				Durations [][]*float64 `json:"durations"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Data.Durations, 2)
		require.NotNil(t, resp.Data.Durations[0][0])
		assert.Equal(t, 2.0, *resp.Data.Durations[0][0])
		assert.Equal(t, 3.0, *resp.Data.Durations[0][1])
		assert.Nil(t, resp.Data.Durations[1][0])
		assert.Nil(t, resp.Data.Durations[1][1])
	})

	testCases := []struct {
		name     string
		body     string
		wantBody string
	}{
		{"invalid json", `{"sources":`, "body must be a json object"},
		{"empty sources", `{"sources":[],"targets":[1]}`, "validation error"},
		{"missing targets", `{"sources":[1]}`, "validation error"},
	}
	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(router, http.MethodPost, "/api/distanceMatrix", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
		})
	}
}

func TestUserHandleRouteQuery(t *testing.T) {
	hub := NewHub(&mockRoutingService{}, time.Second, zap.NewNop())

	testCases := []struct {
		name     string
		request  string
		wantBody string
	}{
		{"ok", `{"id":"q1","source":1,"target":4}`, `"id":"q1"`},
		{"no route", `{"id":"q2","source":5,"target":4}`, "no route found"},
		{"invalid", `{"id":"q3","source":1,"target":4,"max_weight":-2}`, "validation error"},
		{"malformed json", `{"id":"q4","source":`, "malformed request"},
	}
	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			server, client := net.Pipe()
			defer client.Close()

			user := hub.Register(server)
			defer hub.Remove(user)

			errCh := make(chan error, 1)
			go func() {
				errCh <- user.HandleRouteQuery()
			}()

			require.NoError(t, wsutil.WriteClientText(client, []byte(tt.request)))
			msg, err := wsutil.ReadServerText(client)
			require.NoError(t, err)
			assert.Contains(t, string(msg), tt.wantBody)
			assert.NoError(t, <-errCh)
		})
	}
	assert.Equal(t, 0, hub.NumUsers())
}

func TestUserSurvivesMalformedMessage(t *testing.T) {
	hub := NewHub(&mockRoutingService{}, time.Second, zap.NewNop())
	server, client := net.Pipe()
	defer client.Close()
	user := hub.Register(server)
	defer hub.Remove(user)

	for _, tt := range []struct {
		request  string
		wantBody string
	}{
		{`not json`, "malformed request"},
		{`{"id":"q1","source":1,"target":4}`, `"id":"q1"`},
	} {
		errCh := make(chan error, 1)
		go func() {
			errCh <- user.HandleRouteQuery()
		}()
		require.NoError(t, wsutil.WriteClientText(client, []byte(tt.request)))
		msg, err := wsutil.ReadServerText(client)
		require.NoError(t, err)
		assert.Contains(t, string(msg), tt.wantBody)
		assert.NoError(t, <-errCh)
	}
}

func TestHubRemove(t *testing.T) {
	hub := NewHub(&mockRoutingService{}, time.Second, zap.NewNop())
	a, b := net.Pipe()
	defer b.Close()

	u1 := hub.Register(a)
	u2 := hub.Register(a)
	assert.NotEqual(t, u1.GetID(), u2.GetID())
	assert.Equal(t, 2, hub.NumUsers())

	assert.True(t, hub.Remove(u1))
	assert.False(t, hub.Remove(u1))
	assert.Equal(t, 1, hub.NumUsers())

	hub.RemoveAllUser()
	assert.Equal(t, 0, hub.NumUsers())
}
