package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/dmitrijs2005/openpass/internal/advisor"
	"github.com/dmitrijs2005/openpass/internal/backup"
	"github.com/dmitrijs2005/openpass/internal/config"
	"github.com/dmitrijs2005/openpass/internal/dbx"
	"github.com/dmitrijs2005/openpass/internal/logging"
	"github.com/dmitrijs2005/openpass/internal/repositories/repomanager"
	"github.com/dmitrijs2005/openpass/internal/services"
	"github.com/dmitrijs2005/openpass/internal/session"
)

// openSession is a seam so tests can skip the 600k-iteration KDF.
var openSession = session.Open

type App struct {
	config      *config.Config
	exec        *dbx.Executor
	repomanager repomanager.RepositoryManager
	authService *services.AuthService
	vault       *services.VaultService
	exporter    *backup.Exporter
	advisor     advisor.Advisor
	log         logging.Logger

	reader *bufio.Reader
	out    io.Writer

	// advising tracks background advisor calls
	advising sync.WaitGroup
}

// NewApp builds the CLI on top of an open, migrated executor.
func NewApp(ctx context.Context, c *config.Config, exec *dbx.Executor, m repomanager.RepositoryManager, log logging.Logger) (*App, error) {
	as, err := services.NewAuthService(exec, m, c.BcryptCost, log)
	if err != nil {
		return nil, err
	}

	store, err := newBackupStore(ctx, c.Backup)
	if err != nil {
		return nil, err
	}

	a := &App{
		config:      c,
		exec:        exec,
		repomanager: m,
		authService: as,
		exporter:    backup.NewExporter(exec, m, store, log),
		log:         log,
		reader:      bufio.NewReader(os.Stdin),
		out:         &lockedWriter{w: os.Stdout},
	}

	if c.Advisor.Enabled {
		client, err := advisor.New(c.Advisor.APIKey,
			advisor.WithBaseURL(c.Advisor.BaseURL),
			advisor.WithModel(c.Advisor.Model),
			advisor.WithTimeout(c.Advisor.Timeout),
			advisor.WithRateLimit(c.Advisor.RPS),
		)
		if err != nil {
			return nil, err
		}
		a.advisor = client
	}

	return a, nil
}

func newBackupStore(ctx context.Context, c config.BackupConfig) (backup.ObjectStore, error) {
	switch strings.ToLower(c.Target) {
	case config.BackupTargetS3:
		return backup.NewS3Store(ctx, backup.S3Config{
			Bucket:    c.S3.Bucket,
			Region:    c.S3.Region,
			Endpoint:  c.S3.Endpoint,
			AccessKey: c.S3.AccessKey,
			SecretKey: c.S3.SecretKey,
		})
	case config.BackupTargetFile, "":
		return backup.NewFileStore(c.Dir), nil
	default:
		return nil, fmt.Errorf("unknown backup target %q", c.Target)
	}
}

// Run starts the REPL and blocks until the user exits or input ends. The
// session, if any, is closed on the way out.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	a.println("Welcome to openpass (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader, a.out)
}

// Close ends the current session and zeroes its key.
func (a *App) Close() {
	if a.vault != nil {
		a.vault.Session().Close()
		a.vault = nil
	}
}

func (a *App) isLoggedIn() bool {
	return a.vault != nil && !a.vault.Session().Closed()
}

func (a *App) getStatus() string {
	if !a.isLoggedIn() {
		return ""
	}
	return fmt.Sprintf("(%s)", a.vault.Session().User().UserName)
}

func (a *App) ownerID() string {
	return a.vault.Session().UserID()
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

// lockedWriter serializes writes from the REPL and advisor goroutines.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
