package handlers

import (
	"net/http"

	"golang.org/x/sync/errgroup"

	apierrors "github.com/Anshumanv28/Military-Assets-Management-System-frontend/internal/api/errors"
	"github.com/Anshumanv28/Military-Assets-Management-System-frontend/internal/apiclient"
	"github.com/Anshumanv28/Military-Assets-Management-System-frontend/internal/domain/model"
	"github.com/Anshumanv28/Military-Assets-Management-System-frontend/internal/listctl"
)

type dashboardResponse struct {
	Summary   *model.DashboardSummary `json:"summary"`
	Movements []model.Movement        `json:"movements"`
}

// GetDashboard — GET /api/v1/dashboard?base_id&asset_type_id&from&to.
// Сводка и детализация запрашиваются параллельно.
func (h *APIHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	v := r.URL.Query()
	criteria, err := listctl.ParseCriteria(v)
	if err != nil {
		apierrors.ValidationError(w, err.Error())
		return
	}
	q := apiclient.DashboardQuery{
		BaseID:      criteria.BaseID,
		AssetTypeID: model.ID(v.Get("asset_type_id")),
		From:        criteria.From,
		To:          criteria.To,
	}

	var resp dashboardResponse
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		s, err := h.console.Client.DashboardSummary(ctx, q)
		resp.Summary = s
		return err
	})
	g.Go(func() error {
		m, err := h.console.Client.DashboardMovements(ctx, q)
		resp.Movements = m
		return err
	})
	if err := g.Wait(); err != nil {
		apierrors.FromClientError(w, err, "Не удалось загрузить дашборд")
		return
	}
	if resp.Movements == nil {
		resp.Movements = []model.Movement{}
	}
	writeJSON(w, http.StatusOK, resp)
}
