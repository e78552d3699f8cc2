// Command foodgramctl runs maintenance tasks against the Foodgram database:
// reference data imports, development OAuth clients and token cleanup.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/franciscosanchezn/gin-foodgram-api/internal/auth"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/config"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/database"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/loader"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/models"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/services"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
	"gorm.io/gorm"
)

const name = "foodgramctl"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp(os.Stdout).Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:   name,
		Usage:  "Foodgram maintenance commands",
		Writer: out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Value: "info",
				Usage: "log level (trace, debug, info, warn, error)",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if err := godotenv.Load(); err != nil {
				log.Debug("No .env file found, using system environment variables")
			}
			level, err := log.ParseLevel(cmd.String("log-level"))
			if err != nil {
				return ctx, err
			}
			log.SetFormatter(&log.JSONFormatter{})
			log.SetLevel(level)
			return ctx, nil
		},
		Commands: []*cli.Command{
			ingredientsCmd(),
			tagsCmd(),
			clientCmd(),
			tokensCmd(),
		},
	}
}

// openDatabase connects with the same settings the API server uses
func openDatabase() (*gorm.DB, error) {
	conf, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	db, err := database.InitDatabase(conf.Database())
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func closeDatabase(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}

func importFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "file",
			Aliases:  []string{"f"},
			Usage:    "JSON or YAML file to import",
			Required: true,
		},
		&cli.IntFlag{
			Name:  "batch-size",
			Value: loader.DefaultBatchSize,
			Usage: "rows per INSERT",
		},
	}
}

func ingredientsCmd() *cli.Command {
	return &cli.Command{
		Name:  "ingredients",
		Usage: "Import ingredients ([{name, measurement_unit}]); existing names are skipped",
		Flags: importFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			items, err := loader.ReadFile[models.Ingredient](cmd.String("file"))
			if err != nil {
				return err
			}
			return runImport(cmd, func(l *loader.Loader) (loader.Result, error) {
				return l.Ingredients(ctx, items)
			})
		},
	}
}

func tagsCmd() *cli.Command {
	return &cli.Command{
		Name:  "tags",
		Usage: "Import tags ([{name, color, slug}]); existing names or slugs are skipped",
		Flags: importFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			tags, err := loader.ReadFile[models.Tag](cmd.String("file"))
			if err != nil {
				return err
			}
			return runImport(cmd, func(l *loader.Loader) (loader.Result, error) {
				return l.Tags(ctx, tags)
			})
		},
	}
}

func runImport(cmd *cli.Command, load func(*loader.Loader) (loader.Result, error)) error {
	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer closeDatabase(db)

	result, err := load(loader.New(db, cmd.Int("batch-size")))
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.Root().Writer, "inserted: %d, skipped: %d\n", result.Inserted, result.Skipped)
	return nil
}

func clientCmd() *cli.Command {
	return &cli.Command{
		Name:  "client",
		Usage: "Create a development user and an OAuth2 client owned by it",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "role",
				Value: models.RoleAdmin,
				Usage: "role of the owning user (admin or user)",
				Validator: func(role string) error {
					if role != models.RoleAdmin && role != models.RoleUser {
						return fmt.Errorf("role must be %q or %q", models.RoleAdmin, models.RoleUser)
					}
					return nil
				},
			},
			&cli.StringFlag{
				Name:  "password",
				Value: "dev-password-123",
				Usage: "password of a newly created user",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			db, err := openDatabase()
			if err != nil {
				return err
			}
			defer closeDatabase(db)

			role := cmd.String("role")
			user, err := devUser(ctx, services.NewUserService(db), role, cmd.String("password"))
			if err != nil {
				return err
			}

			client := &models.OAuthClient{
				Name:   fmt.Sprintf("Development %s Client", role),
				Domain: "http://localhost",
				UserID: user.ID,
				Scopes: "read write",
			}
			secret, err := services.NewClientService(db).RegisterClient(ctx, client)
			if err != nil {
				return err
			}

			out := cmd.Root().Writer
			fmt.Fprintf(out, "Development OAuth client created for role '%s'\n", role)
			fmt.Fprintf(out, "User: %s (ID: %d)\n", user.Email, user.ID)
			fmt.Fprintf(out, "Client ID: %s\n", client.ID)
			fmt.Fprintf(out, "Client Secret: %s\n\n", secret)
			fmt.Fprintln(out, "curl -X POST http://localhost:8080/oauth/token \\")
			fmt.Fprintln(out, "  -d 'grant_type=client_credentials' \\")
			fmt.Fprintf(out, "  -d 'client_id=%s' \\\n", client.ID)
			fmt.Fprintf(out, "  -d 'client_secret=%s'\n", secret)
			return nil
		},
	}
}

// devUser finds or creates <role>@foodgram.local
func devUser(ctx context.Context, users services.UserService, role, password string) (*models.User, error) {
	email := role + "@foodgram.local"
	user, err := users.GetUserByEmail(ctx, email)
	if err == nil {
		log.WithFields(log.Fields{"user_id": user.ID, "role": user.Role}).Info("Using existing user")
		return user, nil
	}
	if !errors.Is(err, services.ErrUserNotFound) {
		return nil, err
	}

	user = &models.User{
		Email:     email,
		Username:  "dev_" + role,
		FirstName: "Development",
		LastName:  role,
		Password:  password,
		Role:      role,
	}
	if err := users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func tokensCmd() *cli.Command {
	return &cli.Command{
		Name:  "tokens",
		Usage: "Manage issued OAuth2 tokens",
		Commands: []*cli.Command{
			{
				Name:  "purge",
				Usage: "Delete tokens whose access and refresh lifetimes have both ended",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					db, err := openDatabase()
					if err != nil {
						return err
					}
					defer closeDatabase(db)

					purged, err := auth.NewGormTokenStore(db).PurgeExpired(ctx, time.Now())
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.Root().Writer, "purged: %d\n", purged)
					return nil
				},
			},
		},
	}
}
