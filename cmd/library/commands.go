package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/Astemirdum/perpustakaan/library/app"
	"github.com/Astemirdum/perpustakaan/library/config"
	"github.com/Astemirdum/perpustakaan/pkg/logger"
	"github.com/Astemirdum/perpustakaan/pkg/validate"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

type rootFlags struct {
	driver string
	port   string
	debug  bool
}

func newRootCmd() *cobra.Command {
	var f rootFlags
	root := &cobra.Command{
		Use:          "library",
		Short:        "Library catalog and borrowing service",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&f.driver, "storage", "", "storage driver: memory, postgres or sqlite3 (overrides STORAGE_DRIVER)")
	root.PersistentFlags().BoolVar(&f.debug, "debug", false, "debug logging")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the http api and the overdue sweeper",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log := f.load()
			defer log.Sync() //nolint:errcheck
			return app.Run(cfg, log)
		},
	}
	serve.Flags().StringVar(&f.port, "port", "", "listen port (overrides LIBRARY_HTTP_PORT)")

	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log := f.load()
			if cfg.Storage.Driver == config.DriverMemory {
				return fmt.Errorf("storage driver %q has no migrations", cfg.Storage.Driver)
			}
			repo, err := app.NewRepository(cmd.Context(), cfg.Storage, &cfg.Database, log)
			if err != nil {
				return err
			}
			log.Info("migrations applied", zap.String("driver", cfg.Storage.Driver))
			return repo.Close()
		},
	}

	sweep := &cobra.Command{
		Use:   "sweep",
		Short: "Mark borrow records past their due date as overdue",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log := f.load()
			a, err := app.New(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()
			n, err := a.Ledger.SweepOverdue(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d records updated\n", n)
			return nil
		},
	}

	root.AddCommand(serve, migrate, sweep, newAdminCmd(&f))
	return root
}

func newAdminCmd(f *rootFlags) *cobra.Command {
	var req app.AdminRequest
	create := &cobra.Command{
		Use:   "create",
		Short: "Create an account with the admin role",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log := f.load()
			if cfg.Storage.Driver == config.DriverMemory {
				return fmt.Errorf("admin create needs persistent storage, use ADMIN_USERNAME with the memory driver")
			}
			if req.Password == "" {
				password, err := readPassword(cmd)
				if err != nil {
					return err
				}
				req.Password = password
			}
			if req.Name == "" {
				req.Name = req.Username
			}
			if err := validate.NewCustomValidator().Validate(req); err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()
			a, err := app.New(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			u, err := a.Accounts.CreateAdmin(ctx, req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "admin %s created with id %s\n", u.Username, u.ID)
			return nil
		},
	}
	create.Flags().StringVarP(&req.Username, "username", "u", "", "login name")
	create.Flags().StringVarP(&req.Email, "email", "e", "", "email address")
	create.Flags().StringVar(&req.Name, "name", "", "display name, defaults to username")
	create.Flags().StringVar(&req.Phone, "phone", "", "phone number")
	create.Flags().StringVar(&req.Password, "password", "", "password, prompted when empty")
	_ = create.MarkFlagRequired("username")
	_ = create.MarkFlagRequired("email")

	admin := &cobra.Command{
		Use:   "admin",
		Short: "Manage administrator accounts",
	}
	admin.AddCommand(create)
	return admin
}

func (f *rootFlags) load() (*config.Config, *zap.Logger) {
	ops := []config.Option{
		config.WithStorageDriver(f.driver),
		config.WithPort(f.port),
		config.WithWriteTimeout(time.Minute),
	}
	if f.debug {
		ops = append(ops, config.WithLogLevel(zapcore.DebugLevel))
	}
	cfg := config.NewConfig(ops...)
	return cfg, logger.NewLogger(cfg.Log, "library")
}

func readPassword(cmd *cobra.Command) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), "Password: ")
	if term.IsTerminal(int(syscall.Stdin)) {
		bytePassword, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Fprintln(cmd.OutOrStdout())
		if err != nil {
			return "", err
		}
		return string(bytePassword), nil
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
