package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/Anshumanv28/Military-Assets-Management-System-frontend/internal/api/handlers"
	"github.com/Anshumanv28/Military-Assets-Management-System-frontend/internal/apiclient"
	"github.com/Anshumanv28/Military-Assets-Management-System-frontend/internal/config"
	"github.com/Anshumanv28/Military-Assets-Management-System-frontend/internal/console"
	"github.com/Anshumanv28/Military-Assets-Management-System-frontend/internal/domain/model"
	"github.com/Anshumanv28/Military-Assets-Management-System-frontend/internal/domain/rbac"
	"github.com/Anshumanv28/Military-Assets-Management-System-frontend/internal/listctl"
	"github.com/Anshumanv28/Military-Assets-Management-System-frontend/internal/mutation"
	"github.com/Anshumanv28/Military-Assets-Management-System-frontend/internal/server"
	"github.com/Anshumanv28/Military-Assets-Management-System-frontend/internal/service"
	"github.com/Anshumanv28/Military-Assets-Management-System-frontend/internal/view"
)

func runLogin(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "login")
	email := fs.String("email", "", "email пользователя")
	password := fs.String("password", "", "пароль (без флага читается из stdin)")
	if _, err := parseArgs(fs, args, 0); err != nil {
		return err
	}

	var err error
	if *email == "" {
		if *email, err = a.readLine("Email: "); err != nil {
			return err
		}
	}
	if *password == "" {
		if *password, err = a.readLine("Пароль: "); err != nil {
			return err
		}
	}
	if *email == "" || *password == "" {
		return usageError{msg: "укажите email и пароль"}
	}

	user, err := a.console.Session.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Вход выполнен: %s (%s)\n", user.Name, user.Role)
	return nil
}

func runLogout(_ context.Context, a *app, args []string) error {
	if _, err := parseArgs(newFlagSet(a, "logout"), args, 0); err != nil {
		return err
	}
	a.console.Session.Logout()
	fmt.Fprintln(a.stdout, "Выход выполнен")
	return nil
}

func runWhoami(_ context.Context, a *app, args []string) error {
	if _, err := parseArgs(newFlagSet(a, "whoami"), args, 0); err != nil {
		return err
	}
	p := a.console.Session.Principal()
	if p == nil {
		fmt.Fprintln(a.stdout, "Вход не выполнен")
		return nil
	}
	base := "все базы"
	if p.Base() != "" {
		base = "база " + a.console.Refs.BaseName(p.Base())
	}
	fmt.Fprintf(a.stdout, "%s <%s>, роль %s, %s\n", p.Name, p.Email, p.Role, base)
	return nil
}

func runList(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "list")
	base := fs.String("base", "", "фильтр по базе (id)")
	status := fs.String("status", "", "фильтр по статусу")
	text := fs.String("q", "", "поиск по тексту")
	from := fs.String("from", "", "дата с (YYYY-MM-DD)")
	to := fs.String("to", "", "дата по (YYYY-MM-DD)")
	page := fs.Int("page", 1, "номер страницы (с 1)")
	size := fs.Int("size", a.cfg.PageSize, "размер страницы (1..500)")
	rest, err := parseArgs(fs, args, 1)
	if err != nil {
		return err
	}
	if *page < 1 {
		return usageError{msg: "номер страницы начинается с 1"}
	}

	b, err := a.binding(rest[0])
	if err != nil {
		return err
	}
	v := url.Values{}
	v.Set("base_id", *base)
	v.Set("status", *status)
	v.Set("q", *text)
	v.Set("from", *from)
	v.Set("to", *to)
	v.Set("page", strconv.Itoa(*page-1))
	v.Set("size", strconv.Itoa(*size))
	criteria, err := listctl.ParseCriteria(v)
	if err != nil {
		return usageError{msg: err.Error()}
	}
	index, pageSize, err := listctl.ParsePage(v, a.cfg.PageSize)
	if err != nil {
		return usageError{msg: err.Error()}
	}

	if err := b.Load(ctx); err != nil {
		return err
	}
	// Имена баз и имущества в таблице — из кэша справочников.
	if err := a.console.Refs.Wait(ctx); err != nil {
		return err
	}
	return view.RenderPage(a.stdout, b.Query(a.console.Session.Principal(), criteria, index, pageSize), a.console.Refs)
}

// transitionCommand — approve/reject/cancel <resource> <id>.
func transitionCommand(name string) func(ctx context.Context, a *app, args []string) error {
	return func(ctx context.Context, a *app, args []string) error {
		action, _ := rbac.ParseAction(name)
		fs := newFlagSet(a, name)
		yes := fs.BoolP("yes", "y", false, "не спрашивать подтверждение")
		rest, err := parseArgs(fs, args, 2)
		if err != nil {
			return err
		}
		return a.act(ctx, rest[0], action, model.ID(rest[1]), nil, *yes)
	}
}

func runExpend(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "expend")
	quantity := fs.Int("quantity", 0, "количество")
	reason := fs.String("reason", "", "причина списания")
	date := fs.String("date", "", "дата списания (YYYY-MM-DD)")
	yes := fs.BoolP("yes", "y", false, "не спрашивать подтверждение")
	rest, err := parseArgs(fs, args, 1)
	if err != nil {
		return err
	}
	if *quantity <= 0 {
		return usageError{msg: "--quantity должно быть положительным"}
	}

	input := model.ExpendInput{Quantity: *quantity, Reason: *reason}
	if *date != "" {
		c, err := listctl.ParseCriteria(url.Values{"from": {*date}})
		if err != nil {
			return usageError{msg: err.Error()}
		}
		input.ExpenditureDate = c.From
	}
	return a.act(ctx, string(model.ResourceAssignments), rbac.ActionExpend, model.ID(rest[0]), input, *yes)
}

func runDelete(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "delete")
	yes := fs.BoolP("yes", "y", false, "не спрашивать подтверждение")
	rest, err := parseArgs(fs, args, 2)
	if err != nil {
		return err
	}
	return a.act(ctx, rest[0], rbac.ActionDelete, model.ID(rest[1]), nil, *yes)
}

func runDashboard(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "dashboard")
	base := fs.String("base", "", "база (id)")
	assetType := fs.String("asset-type", "", "тип имущества (id)")
	from := fs.String("from", "", "дата с (YYYY-MM-DD)")
	to := fs.String("to", "", "дата по (YYYY-MM-DD)")
	if _, err := parseArgs(fs, args, 0); err != nil {
		return err
	}
	c, err := listctl.ParseCriteria(url.Values{"base_id": {*base}, "from": {*from}, "to": {*to}})
	if err != nil {
		return usageError{msg: err.Error()}
	}
	q := apiclient.DashboardQuery{BaseID: c.BaseID, AssetTypeID: model.ID(*assetType), From: c.From, To: c.To}

	summary, err := a.console.Client.DashboardSummary(ctx, q)
	if err != nil {
		return err
	}
	movements, err := a.console.Client.DashboardMovements(ctx, q)
	if err != nil {
		return err
	}
	if err := a.console.Refs.Wait(ctx); err != nil {
		return err
	}
	return view.RenderDashboard(a.stdout, summary, movements, a.console.Refs)
}

// runServe запускает мониторинг backend и локальный HTTP-сервер.
// Без активной сессии сервер всё равно стартует: вход — POST /api/v1/session.
func runServe(ctx context.Context, a *app, args []string) error {
	if _, err := parseArgs(newFlagSet(a, "serve"), args, 0); err != nil {
		return err
	}
	cfg := a.cfg

	dh, err := service.NewDephealthService(
		"asset-console", cfg.DephealthGroup,
		cfg.APIURL, cfg.APIHealthPath, cfg.DephealthCheckInterval,
		a.logger,
	)
	if err != nil {
		return fmt.Errorf("мониторинг зависимостей: %w", err)
	}
	if err := dh.Start(ctx); err != nil {
		return fmt.Errorf("запуск мониторинга зависимостей: %w", err)
	}
	defer dh.Stop()

	router := server.NewRouter(a.logger,
		handlers.NewAPIHandler(a.console, cfg.PageSize, a.logger),
		handlers.NewHealthHandler(dh),
	)
	srv := server.New(cfg, a.logger, router)
	a.logger.Info("asset-console serve",
		slog.String("version", config.Version),
		slog.String("api_url", cfg.APIURL),
		slog.Duration("api_timeout", cfg.APITimeout),
	)
	return srv.Run(ctx)
}

// act выполняет действие над записью; yes — подтверждение без вопроса.
func (a *app) act(ctx context.Context, resource string, action rbac.Action, id model.ID, body any, yes bool) error {
	b, err := a.binding(resource)
	if err != nil {
		return err
	}
	var confirmer mutation.Confirmer
	if yes {
		confirmer = mutation.AlwaysConfirm
	}
	start := time.Now()
	if err := b.Act(ctx, action, id, body, confirmer); err != nil {
		return err
	}
	a.logger.Debug("Действие выполнено", slog.Duration("duration", time.Since(start)))
	fmt.Fprintf(a.stdout, "%s %s #%s: выполнено\n", action, resource, id)
	return nil
}

func (a *app) binding(resource string) (console.Binding, error) {
	b, err := a.console.Binding(model.Resource(resource))
	if err != nil {
		return nil, usageError{msg: err.Error()}
	}
	return b, nil
}
