package list_boats

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-BoatRental/internal/api/handlers"
	listBoats "github.com/m04kA/SMC-BoatRental/internal/usecase/list_boats"
)

const (
	msgCatalogUnavailable = "каталог лодок временно недоступен"
)

type Handler struct {
	useCase ListBoatsUseCase
	logger  Logger
}

func NewHandler(useCase ListBoatsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/boats
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	result, err := h.useCase.Execute(r.Context())
	if err != nil {
		switch {
		case errors.Is(err, listBoats.ErrCatalogUnavailable):
			h.logger.Warn("GET /boats - Catalog unavailable")
			handlers.RespondServiceUnavailable(w, msgCatalogUnavailable)

		default:
			h.logger.Error("GET /boats - Failed to list boats: %v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /boats - Boats listed: count=%d, catalog_version=%d", len(result.Boats), result.CatalogVersion)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
