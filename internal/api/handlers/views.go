package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/Anshumanv28/Military-Assets-Management-System-frontend/internal/api/errors"
	"github.com/Anshumanv28/Military-Assets-Management-System-frontend/internal/console"
	"github.com/Anshumanv28/Military-Assets-Management-System-frontend/internal/domain/model"
	"github.com/Anshumanv28/Military-Assets-Management-System-frontend/internal/domain/rbac"
	"github.com/Anshumanv28/Military-Assets-Management-System-frontend/internal/listctl"
	"github.com/Anshumanv28/Military-Assets-Management-System-frontend/internal/mutation"
)

// binding находит список ресурса из URL или пишет 404.
func (h *APIHandler) binding(w http.ResponseWriter, r *http.Request) (console.Binding, bool) {
	b, err := h.console.Binding(model.Resource(chi.URLParam(r, "resource")))
	if err != nil {
		apierrors.NotFound(w, err.Error())
		return nil, false
	}
	return b, true
}

// confirmerFor: confirm=true подтверждает разрушающее действие,
// без него действие отклоняется с 428.
func confirmerFor(r *http.Request) mutation.Confirmer {
	if r.URL.Query().Get("confirm") == "true" {
		return mutation.AlwaysConfirm
	}
	return mutation.ConfirmFunc(func(_ context.Context, _ mutation.Prompt) (bool, error) {
		return false, nil
	})
}

// ListView — GET /api/v1/views/{resource}.
// Параметры: base_id, status, q, from, to, page (с нуля), size, refresh.
func (h *APIHandler) ListView(w http.ResponseWriter, r *http.Request) {
	b, ok := h.binding(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	criteria, err := listctl.ParseCriteria(q)
	if err != nil {
		apierrors.ValidationError(w, err.Error())
		return
	}
	page, size, err := listctl.ParsePage(q, h.pageSize)
	if err != nil {
		apierrors.ValidationError(w, err.Error())
		return
	}

	if !b.Loaded() || q.Get("refresh") == "true" {
		if err := b.Load(r.Context()); err != nil {
			apierrors.FromClientError(w, err, "Не удалось загрузить список")
			return
		}
	}
	writeJSON(w, http.StatusOK, b.Query(h.principal(), criteria, page, size))
}

// RecordAction — POST /api/v1/views/{resource}/{id}/{action}.
// Поддерживаются approve, reject, cancel, expend. Тело expend — ExpendInput.
func (h *APIHandler) RecordAction(w http.ResponseWriter, r *http.Request) {
	b, ok := h.binding(w, r)
	if !ok {
		return
	}
	action, ok := rbac.ParseAction(chi.URLParam(r, "action"))
	if !ok || !isTransition(action) {
		apierrors.ValidationError(w, "Неизвестное действие: "+chi.URLParam(r, "action"))
		return
	}

	var body any
	if action == rbac.ActionExpend {
		var input model.ExpendInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil && !errors.Is(err, io.EOF) {
			apierrors.ValidationError(w, "Некорректное тело запроса")
			return
		}
		if input.Quantity <= 0 {
			apierrors.ValidationError(w, "Количество для списания должно быть положительным")
			return
		}
		body = input
	}

	id := model.ID(chi.URLParam(r, "id"))
	if err := b.Act(r.Context(), action, id, body, confirmerFor(r)); err != nil {
		apierrors.FromClientError(w, err, "Не удалось выполнить действие")
		return
	}
	h.logger.Info("Действие выполнено",
		slog.String("resource", string(b.Resource())),
		slog.String("id", id.String()),
		slog.String("action", string(action)),
	)
	w.WriteHeader(http.StatusNoContent)
}

// DeleteRecord — DELETE /api/v1/views/{resource}/{id}?confirm=true.
func (h *APIHandler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	b, ok := h.binding(w, r)
	if !ok {
		return
	}
	id := model.ID(chi.URLParam(r, "id"))
	if err := b.Act(r.Context(), rbac.ActionDelete, id, nil, confirmerFor(r)); err != nil {
		apierrors.FromClientError(w, err, "Не удалось удалить запись")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func isTransition(a rbac.Action) bool {
	switch a {
	case rbac.ActionApprove, rbac.ActionReject, rbac.ActionCancel, rbac.ActionExpend:
		return true
	}
	return false
}
