// endpoints.go — типизированные вызовы backend API: аутентификация,
// справочники, имущество, дашборд.
package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/Anshumanv28/Military-Assets-Management-System-frontend/internal/domain/model"
)

// LoginResponse — ответ POST /auth/login.
type LoginResponse struct {
	User         model.User `json:"user"`
	Token        string     `json:"token"`
	RefreshToken string     `json:"refreshToken"`
}

// RefreshResponse — ответ POST /auth/refresh. RefreshToken может отсутствовать.
type RefreshResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// Login отправляет учётные данные. Bearer не требуется.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	var resp LoginResponse
	err := c.Do(ctx, Request{
		Method:   http.MethodPost,
		Path:     "/auth/login",
		Body:     map[string]string{"email": email, "password": password},
		Fallback: "Неверный email или пароль",
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, fmt.Errorf("ответ /auth/login не содержит token")
	}
	return &resp, nil
}

// Profile возвращает профиль владельца текущего bearer.
func (c *Client) Profile(ctx context.Context) (*model.User, error) {
	var raw json.RawMessage
	err := c.Do(ctx, Request{
		Method:   http.MethodGet,
		Path:     "/auth/profile",
		Fallback: "Не удалось загрузить профиль",
	}, &raw)
	if err != nil {
		return nil, err
	}
	var user model.User
	if err := unwrapEntity(raw, &user); err != nil {
		return nil, fmt.Errorf("декодирование профиля: %w", err)
	}
	return &user, nil
}

// Refresh обменивает refresh-токен на новый access-токен.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*RefreshResponse, error) {
	var resp RefreshResponse
	err := c.Do(ctx, Request{
		Method:   http.MethodPost,
		Path:     "/auth/refresh",
		Body:     map[string]string{"refreshToken": refreshToken},
		Fallback: "Сессия истекла",
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, fmt.Errorf("ответ /auth/refresh не содержит token")
	}
	return &resp, nil
}

func limitQuery(limit int) url.Values {
	v := url.Values{}
	if limit > 0 {
		v.Set("limit", strconv.Itoa(limit))
	}
	return v
}

// ListBases возвращает справочник баз.
func (c *Client) ListBases(ctx context.Context, limit int) ([]model.Base, error) {
	var resp model.ListResponse[model.Base]
	err := c.Do(ctx, Request{
		Method:   http.MethodGet,
		Path:     "/bases",
		Query:    limitQuery(limit),
		Fallback: "Не удалось загрузить базы",
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// ListAssetTypes возвращает справочник типов имущества.
func (c *Client) ListAssetTypes(ctx context.Context, limit int) ([]model.AssetType, error) {
	var resp model.ListResponse[model.AssetType]
	err := c.Do(ctx, Request{
		Method:   http.MethodGet,
		Path:     "/asset-types",
		Query:    limitQuery(limit),
		Fallback: "Не удалось загрузить типы имущества",
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// AssetQuery — параметры GET /assets.
type AssetQuery = ListQuery

// ListAssets возвращает имущество в области видимости пользователя.
func (c *Client) ListAssets(ctx context.Context, q AssetQuery) (*model.ListResponse[model.Asset], error) {
	var resp model.ListResponse[model.Asset]
	err := c.Do(ctx, Request{
		Method:   http.MethodGet,
		Path:     "/" + string(model.ResourceAssets),
		Query:    q.values(),
		Fallback: "Не удалось загрузить имущество",
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Data == nil {
		resp.Data = []model.Asset{}
	}
	return &resp, nil
}

// DashboardQuery — параметры запросов дашборда.
type DashboardQuery struct {
	BaseID      model.ID
	AssetTypeID model.ID
	From        *openapi_types.Date
	To          *openapi_types.Date
}

func (q DashboardQuery) values() url.Values {
	v := url.Values{}
	if q.BaseID != "" {
		v.Set("base_id", q.BaseID.String())
	}
	if q.AssetTypeID != "" {
		v.Set("asset_type_id", q.AssetTypeID.String())
	}
	if q.From != nil {
		v.Set("start_date", q.From.String())
	}
	if q.To != nil {
		v.Set("end_date", q.To.String())
	}
	return v
}

// DashboardSummary возвращает сводку движения имущества.
func (c *Client) DashboardSummary(ctx context.Context, q DashboardQuery) (*model.DashboardSummary, error) {
	var raw json.RawMessage
	err := c.Do(ctx, Request{
		Method:   http.MethodGet,
		Path:     "/dashboard/summary",
		Query:    q.values(),
		Fallback: "Не удалось загрузить сводку",
	}, &raw)
	if err != nil {
		return nil, err
	}
	var summary model.DashboardSummary
	if err := unwrapEntity(raw, &summary); err != nil {
		return nil, fmt.Errorf("декодирование сводки: %w", err)
	}
	return &summary, nil
}

// DashboardMovements возвращает детализацию движения имущества.
func (c *Client) DashboardMovements(ctx context.Context, q DashboardQuery) ([]model.Movement, error) {
	var resp model.ListResponse[model.Movement]
	err := c.Do(ctx, Request{
		Method:   http.MethodGet,
		Path:     "/dashboard/movements",
		Query:    q.values(),
		Fallback: "Не удалось загрузить движение имущества",
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Data, nil
}
