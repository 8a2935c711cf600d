package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/dimitrije/folio-api/internal/auth"
	"github.com/dimitrije/folio-api/internal/database"
	"github.com/dimitrije/folio-api/internal/models"
	"github.com/dimitrije/folio-api/internal/services"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const minPasswordLength = 8

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var (
	email       string
	password    string
	role        string
	databaseURL string
)

var rootCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an admin account for the portfolio CMS",
	Long: `Create an admin account in the admin_users table.

The password is bcrypt-hashed before it is stored. Nothing is written when an
account with the same email already exists.`,
	SilenceUsage: true,
	RunE:         runCreateAdmin,
}

func init() {
	rootCmd.Flags().StringVar(&email, "email", "", "admin email address (required)")
	rootCmd.Flags().StringVar(&password, "password", "", "admin password, at least 8 characters (required)")
	rootCmd.Flags().StringVar(&role, "role", models.RoleAdmin, "role to grant (admin or viewer)")
	rootCmd.Flags().StringVar(&databaseURL, "database-url", "", "postgres connection string (defaults to $DATABASE_URL)")
	_ = rootCmd.MarkFlagRequired("email")
	_ = rootCmd.MarkFlagRequired("password")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func validateInput(email, password, role string) error {
	var errs []error
	if !emailPattern.MatchString(email) {
		errs = append(errs, fmt.Errorf("invalid email address: %q", email))
	}
	if len(password) < minPasswordLength {
		errs = append(errs, fmt.Errorf("password must be at least %d characters", minPasswordLength))
	}
	if role != models.RoleAdmin && role != models.RoleViewer {
		errs = append(errs, fmt.Errorf("unknown role: %q", role))
	}
	return errors.Join(errs...)
}

func runCreateAdmin(cmd *cobra.Command, _ []string) error {
	_ = godotenv.Load()

	if err := validateInput(email, password, role); err != nil {
		return err
	}

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	db, err := database.New(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	admins := services.NewAdminService(db)

	exists, err := admins.Exists(ctx, email)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("an account for %s already exists", auth.NormalizeEmail(email))
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	admin, err := admins.Create(ctx, email, hash, role)
	if errors.Is(err, services.ErrAdminExists) {
		return fmt.Errorf("an account for %s already exists", auth.NormalizeEmail(email))
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created %s account for %s (%s)\n", admin.Role, admin.Email, admin.ID)
	return nil
}
