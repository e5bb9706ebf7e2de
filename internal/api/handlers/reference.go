package handlers

import (
	"net/http"

	"github.com/Anshumanv28/Military-Assets-Management-System-frontend/internal/apiclient"
	"github.com/Anshumanv28/Military-Assets-Management-System-frontend/internal/domain/model"
)

type referenceResponse struct {
	Bases      []model.Base      `json:"bases"`
	AssetTypes []model.AssetType `json:"asset_types"`
	Assets     []model.Asset     `json:"assets"`
	Loading    bool              `json:"loading"`
	Error      string            `json:"error,omitempty"`
}

// GetReference — GET /api/v1/reference. Отдаёт кэш справочников;
// refresh=true перезагружает его. Ошибка частичной загрузки не мешает
// вернуть то, что загрузилось.
func (h *APIHandler) GetReference(w http.ResponseWriter, r *http.Request) {
	refs := h.console.Refs
	if r.URL.Query().Get("refresh") == "true" {
		_ = refs.Load(r.Context())
	} else {
		_ = refs.Wait(r.Context())
	}

	resp := referenceResponse{
		Bases:      refs.Bases(),
		AssetTypes: refs.AssetTypes(),
		Assets:     refs.Assets(),
		Loading:    refs.Loading(),
	}
	if err := refs.Err(); err != nil {
		resp.Error = apiclient.DisplayMessage(err, "Не удалось загрузить справочники")
	}
	writeJSON(w, http.StatusOK, resp)
}
