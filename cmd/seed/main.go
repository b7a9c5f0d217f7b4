package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"landrecords/internal/auth"
	"landrecords/internal/config"
	"landrecords/internal/db"
	"landrecords/internal/errors"
	"landrecords/internal/logger"
	"landrecords/internal/repository"
	"landrecords/internal/service"
)

// seed bootstraps an administrator. With -promote it grants the flag to an
// existing user; otherwise it registers the ADMIN_* user from the environment
// (if missing) and promotes it.
func main() {
	promote := flag.String("promote", "", "username of an existing user to make administrator")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logger.New(logger.Options{ServiceName: "landrecords-seed", Level: cfg.Log.Level, Format: cfg.Log.Format})
	ctx := context.Background()

	if err := run(ctx, cfg, log, *promote); err != nil {
		log.Error(ctx, "seed failed", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger, promote string) error {
	gormDB, err := db.New(cfg.DB)
	if err != nil {
		return err
	}
	if err := db.Migrate(gormDB); err != nil {
		return err
	}

	repos := repository.New(gormDB)
	// No cache: the server drops its cached profile on its own TTL.
	users := service.NewUserService(repos.Users, nil)

	username := promote
	if username == "" {
		username, err = ensureAdminUser(ctx, cfg, repos, users, log)
		if err != nil {
			return err
		}
	}

	user, err := users.PromoteToAdmin(ctx, username)
	if err != nil {
		return fmt.Errorf("promote %q: %w", username, err)
	}
	log.Info(ctx, "administrator ready", map[string]any{"user_id": user.ID.String(), "username": user.Username})
	return nil
}

func ensureAdminUser(ctx context.Context, cfg *config.Config, repos repository.Repositories, users service.UserService, log *logger.Logger) (string, error) {
	admin := cfg.Admin
	if admin.Username == "" || admin.Password == "" || admin.Email == "" || admin.Aadhaar == "" {
		return "", fmt.Errorf("ADMIN_USERNAME, ADMIN_EMAIL, ADMIN_PASSWORD and ADMIN_AADHAAR are required without -promote")
	}

	authService := service.NewAuthService(
		repos.Users,
		users,
		auth.NewJWTService(cfg.JWT),
		nil,
		auth.NewPasswordHasher(cfg.Password),
		nil,
		log,
	)
	_, err := authService.Register(ctx, service.RegisterInput{
		Username:      admin.Username,
		Email:         admin.Email,
		Password:      admin.Password,
		FullName:      admin.FullName,
		AadhaarNumber: admin.Aadhaar,
	})
	switch {
	case err == nil:
		log.Info(ctx, "administrator registered", map[string]any{"username": admin.Username})
	case errors.Is(err, errors.ErrUsernameTaken):
		log.Info(ctx, "administrator already registered", map[string]any{"username": admin.Username})
	default:
		return "", err
	}
	return admin.Username, nil
}
