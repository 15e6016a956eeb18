package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"store-locator-service/internal/api/dto"
	"store-locator-service/internal/domain"
	"store-locator-service/internal/platform/obs"
	"strconv"
)

const maxLimit = 100

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.ErrorContext(r.Context(), "encode failed",
			slog.String("req_id", obs.RequestID(r.Context())),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("err", err),
		)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, dto.ErrorResponse{Error: msg})
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, allow string) {
	w.Header().Set("Allow", allow)
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
}

var kindStatus = map[domain.ErrorKind]int{
	domain.KindInvalidFormat:          http.StatusBadRequest,
	domain.KindGeocodingFailed:        http.StatusNotFound,
	domain.KindGeolocationDenied:      http.StatusForbidden,
	domain.KindGeolocationFailed:      http.StatusUnprocessableEntity,
	domain.KindGeolocationUnavailable: http.StatusNotImplemented,
}

// writeResolveError maps a search failure to its status and fixed user
// message. The underlying cause is logged, never returned.
func writeResolveError(w http.ResponseWriter, r *http.Request, err error) {
	kind := domain.KindOf(err)
	status, ok := kindStatus[kind]
	if !ok {
		slog.ErrorContext(r.Context(), "search failed",
			slog.String("req_id", obs.RequestID(r.Context())),
			slog.Any("err", err),
		)
		writeError(w, r, http.StatusInternalServerError, domain.MsgInternal)
		return
	}

	slog.InfoContext(r.Context(), "search rejected",
		slog.String("req_id", obs.RequestID(r.Context())),
		slog.String("kind", kind.String()),
		slog.Any("err", err),
	)
	writeJSON(w, r, status, dto.ErrorResponse{Error: domain.UserMessage(err), Code: kind.String()})
}

var errBadLimit = errors.New("limit must be an integer between 1 and 100")

// parseLimit reads the optional "limit" query parameter. 0 means the
// configured default.
func parseLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > maxLimit {
		return 0, errBadLimit
	}
	return n, nil
}

func storeURL(slug string) string {
	return "/pages/" + slug
}

func distanceLabel(miles float64) string {
	return fmt.Sprintf("%.2f mi", miles)
}

func toStoreResponse(s domain.Store) dto.StoreResponse {
	return dto.StoreResponse{
		Name:    s.Name,
		Slug:    s.Slug,
		Address: s.Address,
		City:    s.City,
		State:   s.State,
		Zip:     s.Zip,
		Lat:     s.Lat,
		Lng:     s.Lng,
		URL:     storeURL(s.Slug),
	}
}

func toSearchResponse(res domain.SearchResult) dto.SearchResponse {
	out := dto.SearchResponse{
		Origin: dto.OriginResponse{
			Lat:        res.Origin.Coordinate.Lat,
			Lng:        res.Origin.Coordinate.Lng,
			Provenance: string(res.Origin.Provenance),
			Label:      res.Label,
		},
		Stores: make([]dto.RankedStoreResponse, 0, len(res.Stores)),
	}
	for i, s := range res.Stores {
		out.Stores = append(out.Stores, dto.RankedStoreResponse{
			StoreResponse: toStoreResponse(s.Store),
			DistanceMiles: s.DistanceMiles,
			DistanceLabel: distanceLabel(s.DistanceMiles),
			Selected:      i == 0,
		})
	}
	if len(out.Stores) == 0 {
		out.Message = domain.MsgNoStores
	}
	return out
}
