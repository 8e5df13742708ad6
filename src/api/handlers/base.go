package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"assetmanager/src/api/controllers"
	"assetmanager/src/utils"

	"github.com/sirupsen/logrus"
)

type Handler struct {
	AssetsController controllers.AssetsControllerI
	AuthController   controllers.AuthControllerI
	DummyUserID      int64
	Logger           *logrus.Logger
}

func NewHandler(controller *controllers.Controller, dummyUserID int64, logger *logrus.Logger) *Handler {
	return &Handler{
		AssetsController: controller.AssetsController,
		AuthController:   controller.AuthController,
		DummyUserID:      dummyUserID,
		Logger:           logger,
	}
}

func (h *Handler) respond(w http.ResponseWriter, _ *http.Request, data interface{}, status int) {
	res, err := json.Marshal(data)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = w.Write(res)
}

func (h *Handler) HandleErrors(w http.ResponseWriter, err error) {
	var httpErr *utils.HTTPError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		h.respond(w, nil, map[string]string{"error": "Request timed out"}, http.StatusGatewayTimeout)
	case errors.As(err, &httpErr):
		h.respond(w, nil, httpErr.Body(), httpErr.Code)
	case err != nil:
		h.Logger.WithError(err).Error("unhandled request error")
		h.respond(w, nil, map[string]string{"error": err.Error()}, http.StatusInternalServerError)
	default:
		h.respond(w, nil, map[string]string{"error": "Unhandled error"}, http.StatusInternalServerError)
	}
}
