package controllers

import (
	"github.com/lintang-b-s/navigatorx-ch/pkg"
	da "github.com/lintang-b-s/navigatorx-ch/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-ch/pkg/http/usecases"
)

type shortestPathRequest struct {
	OriginLat      float64 `json:"origin_lat" validate:"min=-90,max=90"`
	OriginLon      float64 `json:"origin_lon" validate:"min=-180,max=180"`
	DestinationLat float64 `json:"destination_lat" validate:"min=-90,max=90"`
	DestinationLon float64 `json:"destination_lon" validate:"min=-180,max=180"`
}

type routeByVertexRequest struct {
	ID        string  `json:"id,omitempty"`
	Source    uint32  `json:"source"`
	Target    uint32  `json:"target"`
	MaxWeight float64 `json:"max_weight" validate:"min=0"`
}

type distanceMatrixRequest struct {
	Sources []uint32 `json:"sources" validate:"required,min=1,max=1000"`
	Targets []uint32 `json:"targets" validate:"required,min=1,max=1000"`
}

type shortestPathResponse struct {
	Eta  float64 `json:"eta"`
	Path string  `json:"path"`
	Dist float64 `json:"distance"`
}

func NewShortestPathResponse(res usecases.RouteResult) shortestPathResponse {
	return shortestPathResponse{
		Eta:  res.Eta,
		Path: res.Path,
		Dist: res.Dist,
	}
}

type routeByVertexResponse struct {
	ID string `json:"id,omitempty"`
	shortestPathResponse
	Vertices []uint32 `json:"vertices"`
}

func NewRouteByVertexResponse(id string, res usecases.RouteResult) routeByVertexResponse {
	vertices := make([]uint32, len(res.Vertices))
	for i, v := range res.Vertices {
		vertices[i] = uint32(v)
	}
	return routeByVertexResponse{
		ID:                   id,
		shortestPathResponse: NewShortestPathResponse(res),
		Vertices:             vertices,
	}
}

// distanceMatrixResponse. durations in minutes, null for unreachable pairs.
type distanceMatrixResponse struct {
	Durations [][]*float64 `json:"durations"`
}

func NewDistanceMatrixResponse(matrix [][]float64) distanceMatrixResponse {
	durations := make([][]*float64, len(matrix))
	for i, row := range matrix {
		durations[i] = make([]*float64, len(row))
		for j := range row {
			if row[j] >= pkg.INF_WEIGHT {
				continue
			}
			durations[i][j] = &row[j]
		}
	}
	return distanceMatrixResponse{Durations: durations}
}

func toIndices(ids []uint32) []da.Index {
	res := make([]da.Index, len(ids))
	for i, id := range ids {
		res[i] = da.Index(id)
	}
	return res
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
