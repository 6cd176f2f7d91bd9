// @title			GuildTask API
// @version		1.0
// @description	Guild task lifecycle, community contributions and member progression.
// @BasePath		/api/v1
// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mtlprog/guildtask/internal/config"
	"github.com/mtlprog/guildtask/internal/database"
	"github.com/mtlprog/guildtask/internal/domain"
	"github.com/mtlprog/guildtask/internal/handler"
	"github.com/mtlprog/guildtask/internal/logger"
	"github.com/mtlprog/guildtask/internal/repository"
	"github.com/mtlprog/guildtask/internal/service"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

func main() {
	app := &cli.App{
		Name:  "guildtask",
		Usage: "Guild task lifecycle and contribution engine",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:     "database-url",
				Aliases:  []string{"d"},
				Value:    config.DefaultDatabaseURL,
				Usage:    "PostgreSQL database URL",
				EnvVars:  []string{"DATABASE_URL"},
				Required: true,
			},
			&cli.IntFlag{
				Name:    "db-max-conns",
				Value:   config.DefaultMaxConns,
				Usage:   "Maximum database pool connections",
				EnvVars: []string{"DB_MAX_CONNS"},
			},
		},
		Before: func(c *cli.Context) error {
			logger.Setup(os.Stdout, logger.ParseLevel(c.String("log-level")))
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Start the web server and the task scheduler",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "port",
						Aliases: []string{"p"},
						Value:   config.DefaultPort,
						Usage:   "HTTP server port",
						EnvVars: []string{"PORT"},
					},
					&cli.DurationFlag{
						Name:    "sweep-interval",
						Value:   config.DefaultSweepInterval,
						Usage:   "How often to spawn recurring tasks and expire overdue ones (0 disables)",
						EnvVars: []string{"SWEEP_INTERVAL"},
					},
					systemActorFlag(),
					&cli.IntFlag{
						Name:    "leaderboard-size",
						Value:   config.DefaultLeaderboardSize,
						Usage:   "Default number of members on the leaderboard",
						EnvVars: []string{"LEADERBOARD_SIZE"},
					},
				},
				Action: runServe,
			},
			{
				Name:   "sweep",
				Usage:  "Spawn due recurring tasks and expire overdue tasks once",
				Flags:  []cli.Flag{systemActorFlag()},
				Action: runSweep,
			},
			{
				Name:  "recurring",
				Usage: "Manage recurring community task definitions",
				Subcommands: []*cli.Command{
					{
						Name:  "import",
						Usage: "Import definitions from a YAML file",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:     "file",
								Aliases:  []string{"f"},
								Usage:    "Path to the definitions file",
								Required: true,
							},
						},
						Action: runRecurringImport,
					},
				},
			},
			{
				Name:  "member",
				Usage: "Manage guild members",
				Subcommands: []*cli.Command{
					{
						Name:  "add",
						Usage: "Register a member (or refresh their roles) and print a new API token",
						Flags: []cli.Flag{
							&cli.Int64Flag{Name: "user-id", Usage: "Chat user id", Required: true},
							&cli.StringFlag{Name: "username", Usage: "Display name", Required: true},
							&cli.BoolFlag{Name: "owner", Usage: "Guild owner"},
							&cli.BoolFlag{Name: "officer", Usage: "Guild officer"},
							&cli.BoolFlag{Name: "admin", Usage: "Server administrator"},
						},
						Action: runMemberAdd,
					},
				},
			},
			{
				Name:  "tasks",
				Usage: "Administrative task operations",
				Subcommands: []*cli.Command{
					{
						Name:  "list",
						Usage: "Print the oldest tasks in a status",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "status", Value: string(domain.TaskStatusUnapproved), Usage: "Task status"},
							&cli.IntFlag{Name: "limit", Value: 20, Usage: "Maximum number of tasks"},
						},
						Action: runTasksList,
					},
					{
						Name:   "clear",
						Usage:  "Delete every task and its history",
						Action: runTasksClear,
					},
				},
			},
		},
		Action: runServe,
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func systemActorFlag() cli.Flag {
	return &cli.Int64Flag{
		Name:    "system-actor-id",
		Value:   config.DefaultSystemActorID,
		Usage:   "User id recorded as creator of scheduler-spawned tasks",
		EnvVars: []string{"SYSTEM_ACTOR_ID"},
	}
}

// openDatabase connects and migrates. The caller closes the returned DB.
func openDatabase(c *cli.Context) (*database.DB, error) {
	ctx := c.Context

	db, err := database.New(ctx, c.String("database-url"), database.WithMaxConns(int32(c.Int("db-max-conns"))))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := database.RunMigrations(ctx, db.Pool()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

func newTaskService(pool *pgxpool.Pool) *service.TaskService {
	return service.NewTaskService(
		pool,
		repository.NewTaskRepository(pool),
		repository.NewTaskEventRepository(pool),
		repository.NewContributionRepository(pool),
		repository.NewMemberRepository(pool),
		service.SystemClock{},
	)
}

func newScheduler(c *cli.Context, pool *pgxpool.Pool) *service.Scheduler {
	return service.NewScheduler(
		newTaskService(pool),
		repository.NewRecurringRepository(pool),
		c.Int64("system-actor-id"),
	)
}

func runServe(c *cli.Context) error {
	port := c.String("port")
	if port == "" {
		port = config.DefaultPort
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	h := handler.New(db.Pool(), handler.WithLeaderboardSize(c.Int("leaderboard-size")))

	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	server := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("starting server", "server_addr", "http://localhost:"+port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	if interval := c.Duration("sweep-interval"); interval > 0 {
		scheduler := newScheduler(c, db.Pool())
		g.Go(func() error {
			return scheduler.Run(gctx, interval)
		})
	} else {
		slog.Warn("scheduler disabled")
	}

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	slog.Info("server stopped")
	return nil
}

func runSweep(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	result, err := newScheduler(c, db.Pool()).RunOnce(c.Context)
	slog.Info("sweep finished",
		"spawned", result.Spawned,
		"expired", result.Expired,
	)
	if err != nil {
		return fmt.Errorf("sweep: %w", err)
	}
	return nil
}

func runRecurringImport(c *cli.Context) error {
	defs, err := config.LoadRecurring(c.String("file"))
	if err != nil {
		return err
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	n, err := service.ImportRecurring(c.Context, repository.NewRecurringRepository(db.Pool()), defs)
	if err != nil {
		return fmt.Errorf("imported %d of %d definitions: %w", n, len(defs), err)
	}

	slog.Info("recurring definitions imported", "count", n)
	return nil
}

func runMemberAdd(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	members := service.NewMemberService(repository.NewMemberRepository(db.Pool()))
	member, token, err := members.Register(c.Context, service.RegisterParams{
		UserID:   c.Int64("user-id"),
		Username: c.String("username"),
		Owner:    c.Bool("owner"),
		Officer:  c.Bool("officer"),
		Admin:    c.Bool("admin"),
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "member %d (%s) token: %s\n", member.UserID, member.Username, token)
	return nil
}

func runTasksList(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	status := domain.TaskStatus(strings.ToUpper(c.String("status")))
	tasks, err := newTaskService(db.Pool()).TasksByStatus(c.Context, status, c.Int("limit"))
	if err != nil {
		return err
	}

	for _, t := range tasks {
		fmt.Fprintf(c.App.Writer, "%d\t%s\t%s\ttier %d\tby %d\t%s\n",
			t.ID, t.Kind, t.Category, t.Tier, t.CreatedBy, t.CreatedAt.Format(time.RFC3339))
	}
	return nil
}

func runTasksClear(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	n, err := newTaskService(db.Pool()).ClearAll(c.Context)
	if err != nil {
		return err
	}

	slog.Info("tasks cleared", "count", n)
	return nil
}
