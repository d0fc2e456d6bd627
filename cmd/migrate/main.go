package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/samirrijal/pokedex/internal/adapters/postgres"
	"github.com/samirrijal/pokedex/internal/core/domain"
	"github.com/samirrijal/pokedex/internal/pkg/config"
)

const usage = `usage:
  migrate up
  migrate seed-user <username> <fqname> [roles]   (roles comma-separated, default "push")`

func main() {
	if len(os.Args) < 2 {
		log.Fatal(usage)
	}

	cfg, err := config.Load("pokedex-migrate")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	db, err := postgres.New(ctx, cfg.Database.DSN(), 2)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	switch os.Args[1] {
	case "up":
		runMigrations(ctx, db.Pool)
	case "seed-user":
		if len(os.Args) < 4 {
			log.Fatal(usage)
		}
		roles := []string{domain.RolePush}
		if len(os.Args) > 4 {
			roles = splitRoles(os.Args[4])
		}
		seedUser(ctx, postgres.NewUserRepo(db), os.Args[2], os.Args[3], roles)
	default:
		log.Fatalf("unknown command: %s\n%s", os.Args[1], usage)
	}
}

func runMigrations(ctx context.Context, pool *pgxpool.Pool) {
	files, err := filepath.Glob("migrations/*.sql")
	if err != nil || len(files) == 0 {
		log.Fatalf("no migrations found in ./migrations (run from the repository root)")
	}
	sort.Strings(files)

	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			log.Fatalf("read %s: %v", f, err)
		}

		if _, err := pool.Exec(ctx, string(data)); err != nil {
			log.Fatalf("exec %s: %v", f, err)
		}

		fmt.Printf("OK  %s\n", f)
	}

	log.Println("all migrations applied")
}

func seedUser(ctx context.Context, users *postgres.UserRepo, username, fqname string, roles []string) {
	u := &domain.User{Username: username, FQName: fqname, Roles: roles}
	if err := users.Create(ctx, u); err != nil {
		log.Fatalf("create user: %v", err)
	}
	fmt.Printf("created user %s (%s) id=%s roles=%s\n", u.Username, u.FQName, u.ID, strings.Join(u.Roles, ","))
}

func splitRoles(s string) []string {
	var roles []string
	for _, r := range strings.Split(s, ",") {
		if r = strings.TrimSpace(r); r != "" {
			roles = append(roles, r)
		}
	}
	return roles
}
