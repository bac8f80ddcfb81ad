package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/seu-repo/imob-crm/internal/adapter/queue"
	"github.com/seu-repo/imob-crm/internal/bootstrap"
	"github.com/seu-repo/imob-crm/internal/domain"
	"github.com/seu-repo/imob-crm/internal/ports"
	"github.com/seu-repo/imob-crm/internal/service/auth"
	"github.com/seu-repo/imob-crm/internal/service/crm"
	"github.com/seu-repo/imob-crm/internal/service/events"
	"github.com/seu-repo/imob-crm/internal/service/task"
	"github.com/seu-repo/imob-crm/internal/service/user"
	"github.com/seu-repo/imob-crm/pkg/config"
	applogger "github.com/seu-repo/imob-crm/pkg/logger"
)

var (
	configFile string
	verbose    bool

	rootCmd = &cobra.Command{
		Use:   "crmctl",
		Short: "Administration tool for the Imob CRM back office",
		Long: `crmctl works directly on the storage configured for the server. It seeds
users, leads and tasks from a YAML file and prints the role table or the
upcoming agenda.`,
		SilenceUsage: true,
	}
)

// env is the opened stack a command works with.
type env struct {
	cfg     *config.Config
	log     *zap.Logger
	storage *bootstrap.Storage
	mq      ports.MessageQueue

	crm   *crm.Service
	tasks *task.Service
	users *user.Service
}

func openEnv(ctx context.Context) (*env, error) {
	var (
		cfg *config.Config
		err error
	)
	if configFile != "" {
		cfg, err = config.LoadFile(configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	logCfg := cfg.Logging
	logCfg.Output = "stdout"
	logCfg.Format = "console"
	if !verbose {
		logCfg.Level = "warn"
	}
	log, err := applogger.New(logCfg)
	if err != nil {
		return nil, err
	}

	storage, err := bootstrap.OpenStorage(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	mq, err := queue.New(cfg.Queue, log)
	if err != nil {
		storage.Close()
		return nil, err
	}

	store := storage.Store
	publisher := events.NewQueuePublisher(mq, cfg.Queue.Subject, log)
	authService := auth.NewService(store.Users(), storage.Cache(cfg), cfg.JWT, cfg.Cache.UserSessionTTL, log)

	return &env{
		cfg:     cfg,
		log:     log,
		storage: storage,
		mq:      mq,
		crm:     crm.NewService(store.Leads(), store.Clients(), storage.IDs, publisher, log),
		tasks:   task.NewService(store.Tasks(), storage.IDs, publisher, cfg.Region.Location(), log),
		users:   user.NewService(store.Users(), storage.IDs, authService, publisher, log),
	}, nil
}

func (e *env) Close() {
	if err := e.mq.Close(); err != nil {
		e.log.Warn("Failed to close queue", zap.Error(err))
	}
	e.storage.Close()
	_ = e.log.Sync()
}

func withEnv(run func(ctx context.Context, e *env, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := openEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()
		return run(ctx, e, args)
	}
}

var seedCmd = &cobra.Command{
	Use:   "seed [file]",
	Short: "Create the first administrator and load users, leads and tasks from YAML",
	Args:  cobra.MaximumNArgs(1),
	RunE: withEnv(func(ctx context.Context, e *env, args []string) error {
		admin, err := bootstrap.SeedAdmin(ctx, e.cfg.Seed, e.storage.Store.Users(), e.users, e.log)
		if err != nil {
			return err
		}
		if admin != nil {
			fmt.Printf("Administrator %s <%s> created (%s)\n", admin.Name, admin.Email, admin.Status)
		}
		if len(args) == 0 {
			return nil
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read seed file: %w", err)
		}
		file, err := parseSeedFile(data, e.cfg.Region.Location())
		if err != nil {
			return err
		}
		res, err := file.apply(ctx, e.users, e.crm, e.tasks)
		if err != nil {
			return err
		}
		fmt.Printf("Seeded %d users, %d leads, %d tasks\n", res.users, res.leads, res.tasks)
		return nil
	}),
}

var rolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "Print the role table",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printRoles(cmd.OutOrStdout(), domain.DefaultRoles())
	},
}

var upcomingLimit int

var upcomingCmd = &cobra.Command{
	Use:   "upcoming",
	Short: "Print the next pending tasks",
	Args:  cobra.NoArgs,
	RunE: withEnv(func(ctx context.Context, e *env, args []string) error {
		tasks, err := e.tasks.GetUpcomingTasks(ctx, upcomingLimit)
		if err != nil {
			return err
		}
		return printTasks(os.Stdout, tasks)
	}),
}

var calendarProvider string

var calendarCmd = &cobra.Command{
	Use:   "calendar-link <task-id>",
	Short: "Print a Google or Outlook calendar link for a task",
	Args:  cobra.ExactArgs(1),
	RunE: withEnv(func(ctx context.Context, e *env, args []string) error {
		link, err := e.tasks.CalendarLink(ctx, args[0], ports.CalendarProvider(calendarProvider))
		if err != nil {
			return err
		}
		fmt.Println(link)
		return nil
	}),
}

func printRoles(out io.Writer, roles []domain.Role) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RÔLE\tPERMISSIONS\tDESCRIPTION")
	for _, r := range roles {
		fmt.Fprintf(w, "%s\t%d\t%s\n", r.Name, len(r.Permissions), r.Description)
	}
	return w.Flush()
}

func printTasks(out io.Writer, tasks []domain.Task) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tHEURE\tTYPE\tTITRE\tCLIENT")
	for _, t := range tasks {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, t.Date.Format("02/01/2006"), t.Time, t.Type, t.Title, strings.TrimSpace(t.Client))
	}
	return w.Flush()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file (default: ./configs/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	upcomingCmd.Flags().IntVarP(&upcomingLimit, "limit", "n", 5, "Number of tasks to print")
	calendarCmd.Flags().StringVarP(&calendarProvider, "provider", "p", string(ports.CalendarGoogle), "Calendar provider (google or outlook)")

	rootCmd.AddCommand(seedCmd, rolesCmd, upcomingCmd, calendarCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
