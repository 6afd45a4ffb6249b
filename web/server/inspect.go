package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/df07/go-reflax-raytracer/pkg/core"
	"github.com/df07/go-reflax-raytracer/pkg/geometry"
	"github.com/df07/go-reflax-raytracer/pkg/material"
	"github.com/df07/go-reflax-raytracer/pkg/renderer"
)

// inspectTimeout bounds the wait for the control loop to answer
const inspectTimeout = 2 * time.Second

// InspectResponse represents the JSON response for object inspection
type InspectResponse struct {
	Hit          bool                   `json:"hit"`
	MaterialType string                 `json:"materialType"`
	GeometryType string                 `json:"geometryType"`
	Point        [3]float64             `json:"point"`
	Normal       [3]float64             `json:"normal"`
	Distance     float64                `json:"distance"`
	Properties   map[string]interface{} `json:"properties"`
}

func vec3Array(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

func hexColor(c core.Vec3) string {
	rgb := c.RGB()
	return fmt.Sprintf("#%02x%02x%02x", rgb[0], rgb[1], rgb[2])
}

// extractMaterialInfo describes the material at the hit point
func extractMaterialInfo(mat material.Material, properties map[string]interface{}) string {
	properties["color"] = hexColor(mat.Color)
	properties["reflectivity"] = mat.Reflectivity
	return mat.Kind.String()
}

// extractGeometryInfo describes the shape that was hit
func extractGeometryInfo(shape geometry.Shape, properties map[string]interface{}) string {
	switch s := shape.(type) {
	case *geometry.Sphere:
		properties["center"] = vec3Array(s.Center)
		properties["radius"] = s.Radius
		return "sphere"
	case *geometry.Triangle:
		properties["vertices"] = [3][3]float64{vec3Array(s.V0), vec3Array(s.V1), vec3Array(s.V2)}
		properties["textured"] = s.Textured()
		return "triangle"
	default:
		return "unknown"
	}
}

// inspectPixel casts a ray through display pixel (x, y), counted from the
// top left, and describes the first object hit
func inspectPixel(r *renderer.Render, x, y int) InspectResponse {
	width, height := r.Size()
	if x < 0 || x >= width || y < 0 || y >= height {
		return InspectResponse{}
	}

	origin, ray := r.PixelRay(x, height-1-y)
	hit, shape, ok := r.Scene().Intersect(origin, ray)
	if !ok {
		return InspectResponse{}
	}

	properties := make(map[string]interface{})
	return InspectResponse{
		Hit:          true,
		MaterialType: extractMaterialInfo(hit.Material, properties),
		GeometryType: extractGeometryInfo(shape, properties),
		Point:        vec3Array(hit.Point),
		Normal:       vec3Array(hit.Normal.Normalize()),
		Distance:     hit.Distance,
		Properties:   properties,
	}
}

// handleInspect asks the control loop what lies under a display pixel
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	x, errX := strconv.Atoi(r.URL.Query().Get("x"))
	y, errY := strconv.Atoi(r.URL.Query().Get("y"))
	if errX != nil || errY != nil {
		writeError(w, http.StatusBadRequest, "x and y must be integers")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), inspectTimeout)
	defer cancel()

	reply := make(chan InspectResponse, 1)
	if !s.enqueue(InspectEvent{X: x, Y: y, Reply: reply}) {
		writeError(w, http.StatusServiceUnavailable, "control loop busy")
		return
	}

	select {
	case resp := <-reply:
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	case <-ctx.Done():
		writeError(w, http.StatusServiceUnavailable, "control loop did not answer")
	}
}
