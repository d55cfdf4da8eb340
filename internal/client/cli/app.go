package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/dmitrijs2005/gridplanner/internal/client/cache"
	"github.com/dmitrijs2005/gridplanner/internal/client/client"
	"github.com/dmitrijs2005/gridplanner/internal/client/comments"
	"github.com/dmitrijs2005/gridplanner/internal/client/config"
	"github.com/dmitrijs2005/gridplanner/internal/client/repositories/items"
	"github.com/dmitrijs2005/gridplanner/internal/client/services"
	"github.com/dmitrijs2005/gridplanner/internal/filex"
	"github.com/dmitrijs2005/gridplanner/internal/kv"
	"github.com/dmitrijs2005/gridplanner/internal/logging"
)

// Services is everything a command may call.
type Services struct {
	Auth     services.AuthService
	Grids    services.GridService
	Media    services.MediaService
	Shares   services.ShareService
	Comments services.CommentService
}

// ConnectFunc builds the services for one invocation. The returned closer
// releases whatever was opened.
type ConnectFunc func(ctx context.Context, cfg *config.Config, notifier cache.Notifier, logger logging.Logger) (*Services, func(), error)

type App struct {
	config   *config.Config
	reader   *bufio.Reader
	out      io.Writer
	errOut   io.Writer
	logger   logging.Logger
	notifier *cache.ChanNotifier
	connect  ConnectFunc

	svc    *Services
	closer func()
	user   string
}

func newApp(cfg *config.Config, connect ConnectFunc) *App {
	return &App{
		config:   cfg,
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
		errOut:   os.Stderr,
		notifier: cache.NewChanNotifier(32),
		connect:  connect,
	}
}

func (a *App) open(ctx context.Context) error {
	if a.svc != nil {
		return nil
	}
	level := slog.LevelWarn
	if a.config.Verbose {
		level = slog.LevelDebug
	}
	a.logger = logging.NewTextLogger(a.errOut, level)

	svc, closer, err := a.connect(ctx, a.config, a.notifier, a.logger)
	if err != nil {
		return err
	}
	a.svc, a.closer = svc, closer
	return nil
}

// requireSession loads the persisted tokens into the client.
func (a *App) requireSession(ctx context.Context) error {
	user, err := a.svc.Auth.Restore(ctx)
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			return fmt.Errorf("not logged in, run \"gridcli login\" first")
		}
		return err
	}
	a.user = user
	return nil
}

// finish prints background failures that arrived while the command ran
// and releases resources.
func (a *App) finish() {
	for _, n := range a.notifier.Drain() {
		fmt.Fprintf(a.errOut, "warning: %s\n", n)
	}
	if a.closer != nil {
		a.closer()
		a.closer = nil
	}
	a.svc = nil
}

// Connect is the production ConnectFunc.
func Connect(ctx context.Context, cfg *config.Config, notifier cache.Notifier, logger logging.Logger) (*Services, func(), error) {
	if _, err := filex.EnsureParentDir(cfg.DatabasePath); err != nil {
		return nil, nil, err
	}
	db, err := client.InitDatabase(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, nil, fmt.Errorf("error initializing database: %w", err)
	}

	var auth services.AuthService
	api, err := client.NewGRPCClient(cfg.ServerEndpointAddr,
		client.WithTimeout(cfg.RequestTimeout),
		client.WithTokenRefreshHook(func(access, refresh string) {
			if err := auth.SaveTokens(context.Background(), access, refresh); err != nil {
				logger.Warn(context.Background(), "persisting refreshed tokens failed", "error", err)
			}
		}),
	)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	auth = services.NewAuthService(api, db)

	closers := []func(){
		func() { _ = api.Close() },
		func() { _ = db.Close() },
	}

	var snapshots services.SnapshotStore
	if cfg.RedisAddr != "" {
		rc, err := kv.NewClient(ctx, cfg.RedisAddr)
		if err != nil {
			logger.Warn(ctx, "backups disabled", "error", err)
		} else {
			snapshots = kv.NewSnapshotStore(rc)
			closers = append(closers, func() { _ = rc.Close() })
		}
	}

	grids := services.NewGridService(services.GridOptions{
		Client:           api,
		Mirror:           items.NewSQLiteRepository(db),
		Snapshots:        snapshots,
		Notifier:         notifier,
		Logger:           logger,
		MinGridSize:      cfg.MinGridSize,
		AutosaveDebounce: cfg.AutosaveDebounce,
	})

	var watcher services.Watcher
	if cfg.PushURL != "" {
		watcher = comments.NewSubscriber(cfg.PushURL, logger)
	}

	svc := &Services{
		Auth:     auth,
		Grids:    grids,
		Media:    services.NewMediaService(api, grids, &http.Client{Timeout: cfg.RequestTimeout}, logger),
		Shares:   services.NewShareService(api),
		Comments: services.NewCommentService(api, watcher),
	}
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	return svc, closeAll, nil
}
