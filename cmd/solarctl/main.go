// Command solarctl tareas de operación: aplicar migraciones y crear el primer admin.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/jhoicas/Solar-Invoicing-api/internal/application/dto"
	"github.com/jhoicas/Solar-Invoicing-api/internal/application/usecase"
	"github.com/jhoicas/Solar-Invoicing-api/internal/domain"
	"github.com/jhoicas/Solar-Invoicing-api/internal/domain/entity"
	"github.com/jhoicas/Solar-Invoicing-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Solar-Invoicing-api/pkg/config"
	"github.com/jhoicas/Solar-Invoicing-api/pkg/logger"
)

type options struct {
	DB       config.DBConfig
	LogLevel string
	Email    string
	Password string
}

func main() {
	opts := &options{
		DB: config.DBConfig{
			Host:    "localhost",
			Port:    5432,
			User:    "postgres",
			DBName:  "solar_invoicing",
			SSLMode: "disable",
		},
		LogLevel: "info",
	}

	dbFlags := []cli.Flag{
		&cli.StringFlag{
			Name:        "database-url",
			EnvVars:     []string{"DATABASE_URL"},
			Destination: &(opts.DB.DatabaseURL),
		},
		&cli.StringFlag{
			Name:        "db-host",
			EnvVars:     []string{"DB_HOST"},
			Value:       opts.DB.Host,
			Destination: &(opts.DB.Host),
		},
		&cli.IntFlag{
			Name:        "db-port",
			EnvVars:     []string{"DB_PORT"},
			Value:       opts.DB.Port,
			Destination: &(opts.DB.Port),
		},
		&cli.StringFlag{
			Name:        "db-user",
			EnvVars:     []string{"DB_USER"},
			Value:       opts.DB.User,
			Destination: &(opts.DB.User),
		},
		&cli.StringFlag{
			Name:        "db-password",
			EnvVars:     []string{"DB_PASSWORD"},
			Destination: &(opts.DB.Password),
		},
		&cli.StringFlag{
			Name:        "db-name",
			EnvVars:     []string{"DB_NAME"},
			Value:       opts.DB.DBName,
			Destination: &(opts.DB.DBName),
		},
		&cli.StringFlag{
			Name:        "db-sslmode",
			EnvVars:     []string{"DB_SSLMODE"},
			Value:       opts.DB.SSLMode,
			Destination: &(opts.DB.SSLMode),
		},
		&cli.StringFlag{
			Name:        "log-level",
			EnvVars:     []string{"LOG_LEVEL"},
			Value:       opts.LogLevel,
			Destination: &(opts.LogLevel),
		},
	}

	app := &cli.App{
		Name:  "solarctl",
		Usage: "operación de la base de datos de Solar Invoicing",
		Flags: dbFlags,
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "aplica las migraciones pendientes",
				Action: func(c *cli.Context) error { return runMigrate(c, opts) },
			},
			{
				Name:  "seed-admin",
				Usage: "crea un usuario admin si el email no existe",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "email",
						EnvVars:     []string{"SEED_ADMIN_EMAIL"},
						Required:    true,
						Destination: &(opts.Email),
					},
					&cli.StringFlag{
						Name:        "password",
						EnvVars:     []string{"SEED_ADMIN_PASSWORD"},
						Required:    true,
						Destination: &(opts.Password),
					},
				},
				Action: func(c *cli.Context) error { return runSeedAdmin(c, opts) },
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "solarctl:", err)
		os.Exit(1)
	}
}

func runMigrate(c *cli.Context, opts *options) error {
	log := logger.New(logger.Config{Env: "development", Level: opts.LogLevel})
	pool, err := postgres.NewPool(c.Context, opts.DB)
	if err != nil {
		return err
	}
	defer pool.Close()

	applied, err := postgres.Migrate(c.Context, pool, log)
	if err != nil {
		return err
	}
	log.Info().Int("applied", len(applied)).Strs("migrations", applied).Msg("migraciones al día")
	return nil
}

func runSeedAdmin(c *cli.Context, opts *options) error {
	log := logger.New(logger.Config{Env: "development", Level: opts.LogLevel})
	pool, err := postgres.NewPool(c.Context, opts.DB)
	if err != nil {
		return err
	}
	defer pool.Close()

	ctx, cancel := context.WithTimeout(c.Context, 10*time.Second)
	defer cancel()

	userUC := usecase.NewUserUseCase(postgres.NewUserRepository(pool))
	user, err := userUC.Create(ctx, dto.CreateUserRequest{
		Email:    opts.Email,
		Password: opts.Password,
		Role:     entity.RoleAdmin,
	})
	if errors.Is(err, domain.ErrEmailAlreadyExists) {
		log.Warn().Str("email", opts.Email).Msg("el usuario ya existe, no se modifica")
		return nil
	}
	if err != nil {
		return err
	}
	log.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("admin creado")
	return nil
}
