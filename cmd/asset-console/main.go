// Точка входа asset-console — консоль учёта военного имущества.
// Загружает конфигурацию, восстанавливает сессию из файла токенов,
// выполняет подкоманду (списки, действия над записями, дашборд)
// или запускает локальный HTTP-сервер консоли (serve).
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/Anshumanv28/Military-Assets-Management-System-frontend/internal/apiclient"
	"github.com/Anshumanv28/Military-Assets-Management-System-frontend/internal/config"
	"github.com/Anshumanv28/Military-Assets-Management-System-frontend/internal/console"
	"github.com/Anshumanv28/Military-Assets-Management-System-frontend/internal/mutation"
	"github.com/Anshumanv28/Military-Assets-Management-System-frontend/internal/tokenstore"
)

// command — подкоманда CLI.
type command struct {
	name    string
	usage   string
	summary string
	// session — команда требует активной сессии.
	session bool
	run     func(ctx context.Context, a *app, args []string) error
}

var commands = []command{
	{name: "login", usage: "login [--email E] [--password P]", summary: "Вход в систему", run: runLogin},
	{name: "logout", usage: "logout", summary: "Выход и удаление сохранённых токенов", run: runLogout},
	{name: "whoami", usage: "whoami", summary: "Текущий пользователь", run: runWhoami},
	{name: "list", usage: "list <resource> [--base B] [--status S] [--q TEXT] [--from D] [--to D] [--page N] [--size N]", summary: "Список записей ресурса", session: true, run: runList},
	{name: "approve", usage: "approve <resource> <id> [--yes]", summary: "Утвердить запись", session: true, run: transitionCommand("approve")},
	{name: "reject", usage: "reject <resource> <id> [--yes]", summary: "Отклонить запись", session: true, run: transitionCommand("reject")},
	{name: "cancel", usage: "cancel <resource> <id> [--yes]", summary: "Отменить запись", session: true, run: transitionCommand("cancel")},
	{name: "expend", usage: "expend <assignment-id> --quantity N [--reason R] [--date D] [--yes]", summary: "Списать имущество по закреплению", session: true, run: runExpend},
	{name: "delete", usage: "delete <resource> <id> [--yes]", summary: "Удалить запись", session: true, run: runDelete},
	{name: "dashboard", usage: "dashboard [--base B] [--asset-type T] [--from D] [--to D]", summary: "Сводка движения имущества", session: true, run: runDashboard},
	{name: "serve", usage: "serve", summary: "Локальный HTTP-сервер консоли", run: runServe},
}

// app — собранные компоненты процесса.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	console *console.Console
	stdout  io.Writer
	stderr  io.Writer
	stdin   *bufio.Reader
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run выполняет CLI и возвращает код завершения.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		printHelp(stdout)
		return 0
	}
	if args[0] == "version" {
		fmt.Fprintln(stdout, "asset-console", config.Version)
		return 0
	}

	cmd, ok := findCommand(args[0])
	if !ok {
		fmt.Fprintf(stderr, "неизвестная команда %q\n\n", args[0])
		printHelp(stderr)
		return 2
	}

	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(stderr, "Ошибка загрузки конфигурации:", err)
		return 1
	}

	// 2. Логирование в stderr, чтобы не смешиваться с таблицами
	logger := config.SetupLogger(cfg, stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(cfg, logger, stdin, stdout, stderr)
	if err != nil {
		logger.Error("Ошибка инициализации", slog.String("error", err.Error()))
		return 1
	}
	defer a.console.Close()

	// 3. Восстановление сессии, подписка справочников и списков
	a.console.Start(ctx)

	if cmd.session {
		if err := a.requireSession(ctx); err != nil {
			fmt.Fprintln(stderr, errorText(err))
			return 1
		}
	}

	if err := cmd.run(ctx, a, args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		var usage usageError
		if errors.As(err, &usage) {
			fmt.Fprintln(stderr, usage.Error())
			fmt.Fprintln(stderr, "использование: asset-console", cmd.usage)
			return 2
		}
		logger.Debug("Команда завершилась ошибкой",
			slog.String("command", cmd.name),
			slog.String("error", err.Error()),
		)
		fmt.Fprintln(stderr, errorText(err))
		return 1
	}
	return 0
}

// newApp собирает HTTP-клиент, хранилище токенов и консоль.
func newApp(cfg *config.Config, logger *slog.Logger, stdin io.Reader, stdout, stderr io.Writer) (*app, error) {
	httpClient, err := apiclient.NewHTTPClient(cfg.APITimeout, cfg.CACertPath)
	if err != nil {
		return nil, err
	}
	tokens, err := tokenstore.NewFileStore(cfg.TokenFile, cfg.TokenSecret)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:    cfg,
		logger: logger,
		stdout: stdout,
		stderr: stderr,
		stdin:  bufio.NewReader(stdin),
	}
	a.console = console.New(console.FromConfig(cfg, httpClient, tokens, mutation.ConfirmFunc(a.confirm)), logger)
	return a, nil
}

// requireSession проверяет вход и обновляет истекающий токен.
func (a *app) requireSession(ctx context.Context) error {
	if a.console.Session.Principal() == nil {
		return errNotLoggedIn
	}
	return a.console.Session.EnsureFresh(ctx)
}

// confirm спрашивает подтверждение в терминале.
func (a *app) confirm(_ context.Context, p mutation.Prompt) (bool, error) {
	fmt.Fprintf(a.stderr, "%s? [y/N] ", p.Message)
	line, err := a.stdin.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes", "д", "да":
		return true, nil
	}
	return false, nil
}

// readLine читает строку ввода с приглашением в stderr.
func (a *app) readLine(prompt string) (string, error) {
	fmt.Fprint(a.stderr, prompt)
	line, err := a.stdin.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func findCommand(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

func printHelp(w io.Writer) {
	fmt.Fprintln(w, "asset-console — консоль учёта военного имущества")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Команды:")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-10s %s\n", c.name, c.summary)
	}
	fmt.Fprintf(w, "  %-10s %s\n", "version", "Версия")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Ресурсы: assets, purchases, transfers, assignments, expenditures")
	fmt.Fprintln(w, "Конфигурация — переменные окружения MA_* (обязательна MA_API_URL).")
}

var errNotLoggedIn = errors.New("вход не выполнен: выполните asset-console login")

// errorText — сообщение об ошибке для терминала. Ошибки без
// пользовательского сообщения выводятся как есть.
func errorText(err error) string {
	if msg := mutation.Message(err, ""); msg != "" {
		return msg
	}
	return err.Error()
}

// usageError — ошибка аргументов команды.
type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

// newFlagSet создаёт FlagSet подкоманды.
func newFlagSet(a *app, name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

// parseArgs разбирает флаги и проверяет число позиционных аргументов.
func parseArgs(fs *pflag.FlagSet, args []string, positional int) ([]string, error) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil, err
		}
		return nil, usageError{msg: err.Error()}
	}
	rest := fs.Args()
	if len(rest) != positional {
		return nil, usageError{msg: fmt.Sprintf("ожидается аргументов: %d, получено: %d", positional, len(rest))}
	}
	return rest, nil
}
