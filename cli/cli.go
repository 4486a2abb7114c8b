package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"movura-admin/config"
	"movura-admin/core/auth"
	"movura-admin/core/store"
	"movura-admin/core/utils"
)

func Run() {
	createUserCmd := flag.NewFlagSet("create-user", flag.ExitOnError)
	identity := createUserCmd.String("u", "", "identity (email)")
	password := createUserCmd.String("p", "", "password")
	fullName := createUserCmd.String("n", "", "full name")
	roles := createUserCmd.String("r", "operator", "comma separated roles")
	firstLogin := createUserCmd.Bool("first-login", true, "force password change on first login")

	if len(os.Args) < 2 {
		fmt.Println("commands: create-user")
		return
	}

	switch os.Args[1] {
	case "create-user":
		_ = createUserCmd.Parse(os.Args[2:])
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "config: %v\n", err)
			os.Exit(1)
		}
		logger := utils.NewLogger()
		if err := utils.ValidateIdentity(*identity); err != nil {
			logger.Fatalf("identity: %v", err)
		}
		if err := utils.ValidateSecret(*password, cfg.Security.MinSecretLength); err != nil {
			logger.Fatalf("password: %v", err)
		}
		db, err := store.NewDB(cfg, logger)
		if err != nil {
			logger.Fatalf("db: %v", err)
		}
		defer db.Close()
		if err := store.ApplyMigrations(context.Background(), db, logger); err != nil {
			logger.Fatalf("migrations: %v", err)
		}
		us := store.NewUsersStore(db)
		ph := auth.MustHashPassword(*password, cfg.Pepper)
		u := &store.User{
			Identity:     *identity,
			FullName:     *fullName,
			PasswordHash: ph.Hash,
			Salt:         ph.Salt,
			FirstLogin:   *firstLogin,
			Active:       true,
			CreatedAt:    time.Now().UTC(),
		}
		if _, err := us.Create(context.Background(), u, splitRoles(*roles)); err != nil {
			logger.Fatalf("create: %v", err)
		}
		fmt.Println("user created")
	default:
		fmt.Println("unknown command")
	}
}

func splitRoles(r string) []string {
	var res []string
	for _, part := range strings.Split(r, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			res = append(res, part)
		}
	}
	return res
}
