package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/julienschmidt/httprouter"
	da "github.com/lintang-b-s/navigatorx-ch/pkg/datastructure"
	helper "github.com/lintang-b-s/navigatorx-ch/pkg/http/router/routerhelper"
	"go.uber.org/zap"
)

type routingAPI struct {
	routingService RoutingService
	log            *zap.Logger
}

func New(routingService RoutingService, log *zap.Logger) *routingAPI {
	return &routingAPI{
		routingService: routingService,
		log:            log,
	}
}

func (api *routingAPI) Routes(group *helper.RouteGroup) {
	group.GET("/computeRoutes", api.shortestPath)
	group.GET("/computeRouteByVertex", api.shortestPathByVertex)
	group.POST("/distanceMatrix", api.distanceMatrix)
}

func parseFloatParam(query url.Values, name string) (float64, error) {
	v, err := strconv.ParseFloat(query.Get(name), 64)
	if err != nil {
		return 0, fmt.Errorf("%s is required and must be a valid float", name)
	}
	return v, nil
}

func parseVertexParam(query url.Values, name string) (uint32, error) {
	v, err := strconv.ParseUint(query.Get(name), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%s is required and must be a valid vertex id", name)
	}
	return uint32(v), nil
}

// shortestPath godoc
//
//	@Summary	shortest path between two coordinates, each snapped to the nearest road vertex
//	@Tags		routing
//	@Produce	json
//	@Param		origin_lat		query		number	true	"origin latitude"
//	@Param		origin_lon		query		number	true	"origin longitude"
//	@Param		destination_lat	query		number	true	"destination latitude"
//	@Param		destination_lon	query		number	true	"destination longitude"
//	@Success	200				{object}	shortestPathResponse
//	@Failure	400				{object}	errorResponse
//	@Failure	404				{object}	errorResponse
//	@Router		/api/computeRoutes [get]
func (api *routingAPI) shortestPath(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var (
		request shortestPathRequest
		err     error
	)

	query := r.URL.Query()
	if request.OriginLat, err = parseFloatParam(query, "origin_lat"); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if request.OriginLon, err = parseFloatParam(query, "origin_lon"); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if request.DestinationLat, err = parseFloatParam(query, "destination_lat"); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if request.DestinationLon, err = parseFloatParam(query, "destination_lon"); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if err := validateRequest(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	res, found, err := api.routingService.ShortestPath(r.Context(), request.OriginLat, request.OriginLon,
		request.DestinationLat, request.DestinationLon)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}
	if !found {
		api.NotFoundResponse(w, r, fmt.Sprintf("no route found from %f,%f to %f,%f", request.OriginLat,
			request.OriginLon, request.DestinationLat, request.DestinationLon))
		return
	}

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewShortestPathResponse(res)}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

// shortestPathByVertex godoc
//
//	@Summary	shortest path between two vertex ids of the contracted graph
//	@Tags		routing
//	@Produce	json
//	@Param		source		query		integer	true	"source vertex id"
//	@Param		target		query		integer	true	"target vertex id"
//	@Param		max_weight	query		number	false	"search bound in minutes, 0 for unbounded"
//	@Success	200			{object}	routeByVertexResponse
//	@Failure	400			{object}	errorResponse
//	@Failure	404			{object}	errorResponse
//	@Router		/api/computeRouteByVertex [get]
func (api *routingAPI) shortestPathByVertex(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var (
		request routeByVertexRequest
		err     error
	)

	query := r.URL.Query()
	if request.Source, err = parseVertexParam(query, "source"); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if request.Target, err = parseVertexParam(query, "target"); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if query.Has("max_weight") {
		if request.MaxWeight, err = parseFloatParam(query, "max_weight"); err != nil {
			api.BadRequestResponse(w, r, err)
			return
		}
	}
	if err := validateRequest(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	res, found, err := api.routingService.ShortestPathByVertex(r.Context(), da.Index(request.Source),
		da.Index(request.Target), request.MaxWeight)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}
	if !found {
		api.NotFoundResponse(w, r, fmt.Sprintf("no route found from vertex %d to %d", request.Source, request.Target))
		return
	}

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewRouteByVertexResponse("", res)}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

// distanceMatrix godoc
//
//	@Summary	travel time matrix between source and target vertex ids
//	@Tags		routing
//	@Accept		json
//	@Produce	json
//	@Param		request	body		distanceMatrixRequest	true	"source and target vertex ids"
//	@Success	200		{object}	distanceMatrixResponse
//	@Failure	400		{object}	errorResponse
//	@Router		/api/distanceMatrix [post]
func (api *routingAPI) distanceMatrix(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var request distanceMatrixRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		api.BadRequestResponse(w, r, fmt.Errorf("body must be a json object: %w", err))
		return
	}
	if err := r.Body.Close(); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
	if err := validateRequest(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	matrix, err := api.routingService.DistanceMatrix(r.Context(), toIndices(request.Sources), toIndices(request.Targets))
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewDistanceMatrixResponse(matrix)}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}
