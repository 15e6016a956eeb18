package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"store-locator-service/internal/adapters/position"
	"store-locator-service/internal/api/dto"
	"store-locator-service/internal/domain"
	"store-locator-service/internal/ports"
	"store-locator-service/internal/services"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// StoreHandler exposes the catalog and the nearest-store searches.
type StoreHandler struct {
	Locator  *services.Locator
	Validate *validator.Validate
}

func NewStoreHandler(l *services.Locator) *StoreHandler {
	return &StoreHandler{Locator: l, Validate: validator.New()}
}

func (h *StoreHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	stores := h.Locator.Stores()
	res := dto.ListStoresResponse{Stores: make([]dto.StoreResponse, 0, len(stores))}
	for _, s := range stores {
		res.Stores = append(res.Stores, toStoreResponse(s))
	}

	writeJSON(w, r, http.StatusOK, res)
}

// search runs the browse view when zip is empty, a postal code search otherwise.
func (h *StoreHandler) search(r *http.Request, limit int) (domain.SearchResult, error) {
	zip := r.URL.Query().Get("zip")
	if strings.TrimSpace(zip) == "" {
		return h.Locator.Browse(r.Context(), limit), nil
	}
	return h.Locator.SearchByPostalCode(r.Context(), zip, limit)
}

// Nearest handles GET /stores/nearest?zip=&limit=.
func (h *StoreHandler) Nearest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	limit, err := parseLimit(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.search(r, limit)
	if err != nil {
		writeResolveError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, toSearchResponse(res))
}

// NearestGeoJSON handles GET /stores/nearest.geojson?zip=&limit=, returning
// the ranking as a FeatureCollection of store points.
func (h *StoreHandler) NearestGeoJSON(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	limit, err := parseLimit(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.search(r, limit)
	if err != nil {
		writeResolveError(w, r, err)
		return
	}

	fc := geojson.NewFeatureCollection()
	for i, s := range res.Stores {
		f := geojson.NewFeature(orb.Point{s.Lng, s.Lat})
		f.ID = s.Slug
		f.Properties["name"] = s.Name
		f.Properties["slug"] = s.Slug
		f.Properties["address"] = s.Address + ", " + s.City + ", " + s.State + " " + s.Zip
		f.Properties["url"] = storeURL(s.Slug)
		f.Properties["distance_miles"] = s.DistanceMiles
		f.Properties["distance_label"] = distanceLabel(s.DistanceMiles)
		f.Properties["rank"] = i + 1
		fc.Append(f)
	}

	body, err := fc.MarshalJSON()
	if err != nil {
		writeResolveError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// NearestByDevice handles POST /stores/nearest/device. The body is the
// browser's one-time geolocation result. An empty body falls back to the
// server's configured positioner, if any.
func (h *StoreHandler) NearestByDevice(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	limit, err := parseLimit(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var req dto.DeviceFixRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	var positioner ports.DevicePositioner
	switch err := dec.Decode(&req); {
	case errors.Is(err, io.EOF):
	case err != nil:
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	default:
		if err := dec.Decode(&struct{}{}); err != io.EOF {
			writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
			return
		}
		if err := h.Validate.Struct(req); err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid position: "+err.Error())
			return
		}
		positioner = positionerFor(req)
	}

	res, err := h.Locator.SearchByDevice(r.Context(), positioner, limit)
	if err != nil {
		writeResolveError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, toSearchResponse(res))
}

func positionerFor(req dto.DeviceFixRequest) ports.DevicePositioner {
	if req.Error != nil {
		return position.FromErrorCode(req.Error.Code)
	}

	fix := ports.Fix{Coordinate: domain.Coordinate{Lat: *req.Latitude, Lng: *req.Longitude}}
	if req.Timestamp > 0 {
		fix.Timestamp = time.UnixMilli(req.Timestamp)
	}
	return position.FromFix(fix, nil)
}
