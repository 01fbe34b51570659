package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/example/order-service/internal/domain"
	"github.com/example/order-service/internal/usecase"
)

// UseCases — операции сервиса заказов, которые обслуживает HTTP-слой.
type UseCases struct {
	Create usecase.CreateOrder
	Get    usecase.GetOrder
	List   usecase.ListOrders
	Update usecase.UpdateOrder
	Delete usecase.DeleteOrder
}

type Server struct {
	Router *mux.Router
	UC     UseCases
	Log    *slog.Logger
}

func NewServer(uc UseCases, log *slog.Logger) *Server {
	s := &Server{Router: mux.NewRouter(), UC: uc, Log: log}
	s.Router.Use(RequestID, AccessLog(log), Metrics)
	s.Router.HandleFunc("/order", s.handleCreate).Methods(http.MethodPost)
	s.Router.HandleFunc("/order/list/all", s.handleList).Methods(http.MethodGet)
	s.Router.HandleFunc("/order/{orderId}", s.handleGet).Methods(http.MethodGet)
	s.Router.HandleFunc("/order/{orderId}", s.handleUpdate).Methods(http.MethodPut)
	s.Router.HandleFunc("/order/{orderId}", s.handleDelete).Methods(http.MethodDelete)
	s.Router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	return s
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	res, err := s.UC.Create.Execute(r.Context(), r.Body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	res, err := s.UC.Get.Execute(r.Context(), mux.Vars(r)["orderId"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	filters, err := parseListFilters(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.UC.List.Execute(r.Context(), filters)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	res, err := s.UC.Update.Execute(r.Context(), mux.Vars(r)["orderId"], r.Body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	res, err := s.UC.Delete.Execute(r.Context(), mux.Vars(r)["orderId"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// parseListFilters читает необязательные параметры запроса списка.
// Границы диапазонов включительны и независимы друг от друга.
func parseListFilters(q url.Values) (domain.ListFilters, error) {
	var f domain.ListFilters
	var violations []string
	if v := q.Get("min_value"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err != nil {
			violations = append(violations, "min_value must be an integer")
		} else {
			f.MinValue = &n
		}
	}
	if v := q.Get("max_value"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err != nil {
			violations = append(violations, "max_value must be an integer")
		} else {
			f.MaxValue = &n
		}
	}
	if v := q.Get("start_date"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err != nil {
			violations = append(violations, "start_date must be an RFC3339 timestamp")
		} else {
			f.StartDate = &t
		}
	}
	if v := q.Get("end_date"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err != nil {
			violations = append(violations, "end_date must be an RFC3339 timestamp")
		} else {
			f.EndDate = &t
		}
	}
	if len(violations) > 0 {
		return domain.ListFilters{}, &domain.ValidationError{Violations: violations}
	}
	return f, nil
}

type errorEnvelope struct {
	StatusCode int    `json:"statusCode"`
	Error      string `json:"error"`
	Message    string `json:"message"`
}

// writeError — единственная точка перевода доменных ошибок в статусы HTTP.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		vErr *domain.ValidationError
		tErr *domain.TotalMismatchError
		dErr *domain.DuplicateOrderError
		nErr *domain.NotFoundError
	)
	switch {
	case errors.As(err, &vErr), errors.As(err, &tErr), errors.As(err, &dErr):
		writeJSON(w, http.StatusBadRequest, errorEnvelope{
			StatusCode: http.StatusBadRequest, Error: "Bad Request", Message: err.Error(),
		})
	case errors.As(err, &nErr):
		writeJSON(w, http.StatusNotFound, errorEnvelope{
			StatusCode: http.StatusNotFound, Error: "Not Found", Message: err.Error(),
		})
	default:
		// внутренние детали наружу не отдаём
		s.Log.ErrorContext(r.Context(), "unexpected error", "error", err, "request_id", RequestIDFromContext(r.Context()))
		writeJSON(w, http.StatusInternalServerError, errorEnvelope{
			StatusCode: http.StatusInternalServerError, Error: "Internal Server Error", Message: "unexpected error",
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
