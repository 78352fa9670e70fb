package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"pocketbank-cli/internal/client"
	"pocketbank-cli/internal/config"
	"pocketbank-cli/internal/history"
	"pocketbank-cli/internal/notify"
	"pocketbank-cli/internal/payees"
	"pocketbank-cli/internal/recipient"
	"pocketbank-cli/internal/session"
	"pocketbank-cli/internal/transfer"
	"pocketbank-cli/internal/ui"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/log"
)

const usage = `usage: pocketbank-cli [command]

commands:
  shell     interactive banking session (default)
  watch     log in and stream server notifications
  history   log in and print the transaction history
  status    check that the server is reachable`

// app holds every component of one CLI process.
type app struct {
	cfg      *config.Config
	log      *log.Logger
	client   *client.Client
	guard    *session.Guard
	sessions *session.Manager
	queue    *notify.Queue
	history  *history.Store
	resolver *recipient.Resolver
	transfer *transfer.Orchestrator
	payees   *payees.Book
	out      *feed

	// needsLogin is raised by the guard and lowered after a successful login.
	needsLogin atomic.Bool
	notifying  atomic.Bool
}

func newApp(cfg *config.Config, logger *log.Logger) (*app, error) {
	c, err := client.NewClient(cfg.ServerURL, cfg.HTTPTimeout, logger.WithPrefix("client"))
	if err != nil {
		return nil, fmt.Errorf("failed to create bank client: %w", err)
	}

	book, err := payees.Open(cfg.PayeesPath)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, log: logger, client: c, payees: book, out: newFeed(os.Stdout)}
	a.needsLogin.Store(true)

	a.guard = session.NewGuard(func() { a.needsLogin.Store(true) }, logger.WithPrefix("session"))
	a.sessions = session.NewManager(c, a.guard, logger.WithPrefix("session"))
	a.queue = notify.New(c,
		notify.WithInterval(cfg.PollInterval),
		notify.WithTTL(cfg.NotifyTTL),
		notify.WithLogger(logger.WithPrefix("notify")))
	a.history = history.NewStore(c, a.guard, logger.WithPrefix("history"))
	a.resolver = recipient.NewResolver(c, logger.WithPrefix("recipient"))
	a.transfer = transfer.New(c, a.history, a.guard,
		transfer.WithTransferCeiling(cfg.MaxTransfer),
		transfer.WithDepositCeiling(cfg.MaxDeposit),
		transfer.WithLogger(logger.WithPrefix("transfer")))
	return a, nil
}

// startNotifications runs the queue and prints every appended message until
// the returned func is called.
func (a *app) startNotifications(ctx context.Context) func() {
	events, unsubscribe := a.queue.Subscribe()
	a.queue.Start(ctx)
	a.notifying.Store(true)

	done := make(chan struct{})
	go func() {
		defer close(done)
		relay(events, a.out, a.log)
	}()

	return func() {
		a.notifying.Store(false)
		a.queue.Stop()
		unsubscribe()
		<-done
	}
}

// relay prints queue events until events is closed. A message dismissed
// while its line is still held by the feed is never printed.
func relay(events <-chan notify.Event, out *feed, logger *log.Logger) {
	for ev := range events {
		switch ev.Kind {
		case notify.Appended:
			out.notice(ev.Notification.ID, ui.Notification(ev.Notification))
		case notify.Dismissed:
			out.dismissed(ev.Notification.ID)
			logger.Debug("notification dismissed", "id", ev.Notification.ID, "reason", ev.Reason)
		}
	}
}

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "pocketbank"})

	cfg, err := config.Load(logger)
	if err != nil {
		logger.Fatal("invalid configuration", "err", err)
	}
	logger.SetLevel(cfg.LogLevel)

	command := "shell"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(cfg, logger)
	if err != nil {
		logger.Fatal("startup failed", "err", err)
	}

	switch command {
	case "shell":
		err = a.shell(ctx)
	case "watch":
		err = a.watch(ctx)
	case "history":
		err = a.printHistory(ctx)
	case "status":
		err = a.status(ctx)
	case "help", "-h", "--help":
		fmt.Println(usage)
		return
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	if err != nil && !errors.Is(err, huh.ErrUserAborted) && !errors.Is(err, context.Canceled) {
		logger.Error("command failed", "command", command, "err", err)
		os.Exit(1)
	}
}

func (a *app) watch(ctx context.Context) error {
	if err := a.ensureLogin(ctx); err != nil {
		return err
	}
	stop := a.startNotifications(ctx)
	defer stop()

	fmt.Printf("Watching notifications from %s (Ctrl+C to stop)\n", a.client.BaseURL())
	<-ctx.Done()
	return nil
}

func (a *app) printHistory(ctx context.Context) error {
	if err := a.ensureLogin(ctx); err != nil {
		return err
	}
	snap, err := a.history.Refresh(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Account %s\n", snap.OwnAccount)
	fmt.Println(ui.History(snap.Rows()))
	return nil
}

func (a *app) status(ctx context.Context) error {
	active, err := a.sessions.Probe(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Server %s is reachable\n", a.client.BaseURL())
	if active {
		fmt.Println("Session: active")
	} else {
		fmt.Println("Session: not logged in")
	}
	return nil
}
