package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/aarav-aiphi/Backend/internal/auth"
	"github.com/aarav-aiphi/Backend/pkg/config"
	"github.com/aarav-aiphi/Backend/pkg/db"
	"github.com/aarav-aiphi/Backend/pkg/enums"
	"github.com/aarav-aiphi/Backend/pkg/logger"
	"github.com/aarav-aiphi/Backend/pkg/migrate"
)

// grantPasswordEnv holds the password for accounts created by -cmd=grant.
const grantPasswordEnv = "AIAZENT_GRANT_PASSWORD"

type options struct {
	cmd       string
	dir       string
	embedded  bool
	name      string
	version   string
	email     string
	role      string
	firstName string
	lastName  string
}

func main() {
	var o options
	flag.StringVar(&o.cmd, "cmd", "up", "up|down|status|version|create|validate|grant")
	flag.StringVar(&o.dir, "dir", migrate.DefaultDir, "goose migrations directory")
	flag.BoolVar(&o.embedded, "embedded", false, "use the migrations compiled into the binary")
	flag.StringVar(&o.name, "name", "", "migration name (create)")
	flag.StringVar(&o.version, "version", "", "target version YYYYMMDDHHMMSS (version)")
	flag.StringVar(&o.email, "email", "", "account email (grant)")
	flag.StringVar(&o.role, "role", string(enums.UserRoleAdmin), "admin|superadmin (grant)")
	flag.StringVar(&o.firstName, "first-name", "", "first name for a new account (grant)")
	flag.StringVar(&o.lastName, "last-name", "", "last name for a new account (grant)")
	flag.Parse()

	_ = godotenv.Load()

	if err := run(o); err != nil {
		fmt.Fprintf(os.Stderr, "migrate %s: %v\n", o.cmd, err)
		os.Exit(1)
	}
}

func run(o options) error {
	// create and validate only touch files.
	switch o.cmd {
	case "create":
		if o.name == "" {
			return errors.New("missing -name")
		}
		path, err := migrate.CreateSQLMigration(o.dir, o.name)
		if err != nil {
			return err
		}
		fmt.Println("created migration:", path)
		return nil
	case "validate":
		if err := migrate.ValidateDir(o.dir); err != nil {
			return fmt.Errorf("%s:\n%w", o.dir, err)
		}
		if err := migrate.ValidateFS(migrate.Embedded, "migrations"); err != nil {
			return fmt.Errorf("embedded:\n%w", err)
		}
		fmt.Println("migration validation passed")
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logg := logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx := logg.WithFields(context.Background(), map[string]any{"env": cfg.App.Env, "cmd": o.cmd, "dir": o.dir})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer dbClient.Close()

	if o.cmd == "grant" {
		return grant(ctx, dbClient, cfg.Password, o)
	}

	sqlDB, err := dbClient.DB().DB()
	if err != nil {
		return err
	}
	source := migrate.DirFS(o.dir)
	if o.embedded {
		source = migrate.EmbeddedFS()
	}
	m, err := migrate.New(sqlDB, source)
	if err != nil {
		return err
	}

	switch o.cmd {
	case "up":
		applied, err := m.Up(ctx)
		for _, a := range applied {
			fmt.Printf("applied %d %s (%s)\n", a.Version, a.Path, a.Duration)
		}
		if err == nil && len(applied) == 0 {
			fmt.Println("no pending migrations")
		}
		return err
	case "down":
		rolled, err := m.Down(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("rolled back %d %s\n", rolled.Version, rolled.Path)
		return nil
	case "status":
		states, err := m.Status(ctx)
		if err != nil {
			return err
		}
		for _, st := range states {
			when := "pending"
			if st.Applied {
				when = st.AppliedAt.UTC().Format(time.RFC3339)
			}
			fmt.Printf("%-14d %-25s %s\n", st.Version, when, st.Path)
		}
		return nil
	case "version":
		if o.version == "" {
			return errors.New("missing -version")
		}
		return m.MigrateTo(ctx, o.version)
	}
	return fmt.Errorf("unknown command %q", o.cmd)
}

func grant(ctx context.Context, conn *db.Client, pw config.PasswordConfig, o options) error {
	role, err := enums.ParseUserRole(o.role)
	if err != nil {
		return fmt.Errorf("invalid -role: %w", err)
	}
	provisioner, err := auth.NewProvisionService(auth.ProvisionServiceParams{DB: conn, PasswordConfig: pw})
	if err != nil {
		return err
	}
	user, err := provisioner.Provision(ctx, auth.ProvisionRequest{
		Email:     o.email,
		FirstName: o.firstName,
		LastName:  o.lastName,
		Password:  os.Getenv(grantPasswordEnv),
		Role:      role,
	})
	if err != nil {
		return err
	}
	fmt.Printf("granted %s to %s (%s)\n", user.Role, user.Email, user.ID)
	return nil
}
