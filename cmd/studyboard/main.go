package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"studyboard/internal/access"
	"studyboard/internal/app"
	"studyboard/internal/config"
	"studyboard/internal/db"
	"studyboard/internal/domain"
	"studyboard/internal/server"
)

var rootCmd = &cobra.Command{
	Use:   "studyboard",
	Short: "Studyboard CLI",
	Long: `Studyboard is a small workspace for school projects and study activities.
- Actors log in with a name and password; the session survives restarts.
- Projects hold a kanban board, documents and a checklist; only actors on the access list see them.
- Activities are short help requests or progress notes; pinned ones come first.
- Roles: admin manages everything, member creates and edits, viewer reads and comments.
Seed data comes from studyboard.yml (or the built-in default) and is loaded fresh on every start.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_, err := db.EnsureWorkspace(viper.GetString("workspace"))
		return err
	},
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("STUDYBOARD")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringP("workspace", "w", ".", "workspace directory")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error); overrides the config file")
	_ = viper.BindPFlag("workspace", rootCmd.PersistentFlags().Lookup("workspace"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	_ = viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func registerCommands() {
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(loginCmd())
	rootCmd.AddCommand(logoutCmd())
	rootCmd.AddCommand(whoamiCmd())
	rootCmd.AddCommand(projectsCmd())
	rootCmd.AddCommand(boardCmd())
	rootCmd.AddCommand(activitiesCmd())
	rootCmd.AddCommand(todayCmd())
	rootCmd.AddCommand(askCmd())
	rootCmd.AddCommand(configCmd())
}

// apiKey reads the assistant key, accepting the bare API_KEY used by older setups.
func apiKey() string {
	if k := viper.GetString("ai-api-key"); k != "" {
		return k
	}
	return os.Getenv("API_KEY")
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(viper.GetString("workspace"))
	if err != nil {
		return nil, err
	}
	if lvl := viper.GetString("log-level"); lvl != "" {
		cfg.App.LogLevel = lvl
	}
	return cfg, nil
}

func withApp(ctx context.Context, fn func(context.Context, *app.App) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := app.Bootstrap(ctx, app.Options{
		Workspace: viper.GetString("workspace"),
		Config:    cfg,
		APIKey:    apiKey(),
	})
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

func serveCmd() *cobra.Command {
	var addr, basePath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			secret := viper.GetString("jwt-secret")
			if secret == "" {
				return fmt.Errorf("STUDYBOARD_JWT_SECRET is required for bearer auth")
			}
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				handler, err := server.New(server.Config{
					Engine:   a.Engine,
					Metrics:  a.Metrics,
					BasePath: basePath,
					Auth:     server.AuthConfig{JWTSecret: secret, Logger: a.Logger.Named("http")},
				})
				if err != nil {
					return err
				}
				srv := &http.Server{Addr: addr, Handler: handler}
				go func() {
					<-ctx.Done()
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					srv.Shutdown(shutdownCtx)
				}()
				a.Logger.Infof("serving studyboard API on http://%s%s (OpenAPI at %s/openapi.json, Swagger UI at /docs, metrics at /metrics)", addr, basePath, basePath)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "listen address")
	cmd.Flags().StringVar(&basePath, "base-path", "/v0", "API base path")
	return cmd
}

func loginCmd() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "login <name>",
		Short: "Log in as an actor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("password") {
				fmt.Fprint(os.Stderr, "password: ")
				line, err := bufio.NewReader(os.Stdin).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read password: %w", err)
				}
				password = line
			}
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				actor, ok, err := a.Engine.Login(ctx, strings.TrimSpace(args[0]), strings.TrimSpace(password))
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("invalid credentials")
				}
				actor.Password = ""
				if viper.GetBool("json") {
					return printJSON(actor)
				}
				fmt.Printf("Logged in as %s (%s)\n", actor.Name, actor.Role)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				if err := a.Engine.Logout(ctx); err != nil {
					return err
				}
				fmt.Println("Logged out")
				return nil
			})
		},
	}
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in actor and what they may do",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				actor, err := a.Engine.Me()
				if err != nil {
					return err
				}
				caps, err := a.Engine.Capabilities(ctx, "")
				if err != nil {
					return err
				}
				actor.Password = ""
				if viper.GetBool("json") {
					return printJSON(map[string]any{"actor": actor, "capabilities": caps})
				}
				fmt.Printf("%s (id %s, role %s)\n", actor.Name, actor.ID, actor.Role)
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"Action", "Allowed"})
				for _, action := range access.Actions {
					tw.AppendRow(table.Row{action, caps[action]})
				}
				tw.Render()
				return nil
			})
		},
	}
}

func projectsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List visible projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				items, err := a.Engine.Projects(ctx)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(items)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Name", "Discipline", "Due", "Status", "Members"})
				for _, p := range items {
					tw.AppendRow(table.Row{p.ID, p.Name, p.Discipline, p.DueDate, p.Status, strings.Join(p.Members, ", ")})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Show project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				p, err := a.Engine.Project(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSONOrTable(p)
			})
		},
	})
	return cmd
}

func boardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "board <project-id>",
		Short: "Show the project's kanban board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				b, err := a.Engine.Board(ctx, args[0])
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(b)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"Column", "ID", "Title", "Responsible", "Priority", "Deadline"})
				for _, col := range []struct {
					name  string
					tasks []domain.Task
				}{{"A fazer", b.Todo}, {"Em progresso", b.Progress}, {"Concluído", b.Done}} {
					for _, t := range col.tasks {
						deadline := ""
						if t.Deadline != nil {
							deadline = t.Deadline.String()
						}
						tw.AppendRow(table.Row{col.name, t.ID, t.Title, t.Responsible, t.Priority, deadline})
					}
				}
				tw.Render()
				return nil
			})
		},
	}
}

func activitiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "activities",
		Short: "List visible activities, pinned first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				items, err := a.Engine.Activities(ctx)
				if err != nil {
					return err
				}
				return printActivities(items)
			})
		},
	}
}

func todayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "Show the dashboard: active projects and activities due today",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				d, err := a.Engine.Dashboard(ctx)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(d)
				}
				fmt.Printf("Olá, %s! Hoje é %s.\n", d.Actor.Name, d.Today)
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"Project", "Status", "Due"})
				for _, p := range d.ActiveProjects {
					tw.AppendRow(table.Row{p.Name, p.Status, p.DueDate})
				}
				tw.Render()
				if len(d.DailyActivities) == 0 {
					fmt.Println("Nenhuma atividade para hoje.")
					return nil
				}
				return printActivities(d.DailyActivities)
			})
		},
	}
}

func askCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <prompt>",
		Short: "Ask the study assistant",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				answer, err := a.Engine.Ask(ctx, strings.Join(args, " "))
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(map[string]string{"answer": answer})
				}
				fmt.Println(answer)
				return nil
			})
		},
	}
}

func configCmd() *cobra.Command {
	cfg := &cobra.Command{
		Use:   "config",
		Short: "Inspect studyboard.yml",
		Long:  "Config holds the timezone, session key, assistant and attachment settings, and the seed users, projects and activities.",
	}
	cfg.AddCommand(configShowCmd())
	cfg.AddCommand(configValidateCmd())
	cfg.AddCommand(configInitCmd())
	return cfg
}

func configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show loaded config",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if viper.GetBool("json") {
				return printJSON(cfg)
			}
			out, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			fmt.Print(string(out))
			return nil
		},
	}
}

func configValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate studyboard.yml in the workspace",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.Path(viper.GetString("workspace"))
			if _, err := config.FromFile(path); err != nil {
				return err
			}
			fmt.Printf("%s is valid\n", path)
			return nil
		},
	}
}

func configInitCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default studyboard.yml",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.Path(viper.GetString("workspace"))
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists; use --force to overwrite", path)
			}
			if err := os.WriteFile(path, []byte(config.GenerateDefault()), 0o644); err != nil {
				return err
			}
			fmt.Printf("Wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func printActivities(items []domain.Activity) error {
	if viper.GetBool("json") {
		return printJSON(items)
	}
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(table.Row{"ID", "Pinned", "Discipline", "Status", "User", "Due", "Comments"})
	for _, a := range items {
		due := ""
		if a.DueDate != nil {
			due = a.DueDate.String()
		}
		pin := ""
		if a.Pinned {
			pin = "*"
		}
		tw.AppendRow(table.Row{a.ID, pin, a.Discipline, a.Status, a.User, due, len(a.Comments)})
	}
	tw.Render()
	return nil
}

func printJSONOrTable(v any) error {
	if viper.GetBool("json") {
		return printJSON(v)
	}
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
