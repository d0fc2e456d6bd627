// Command pushtoken signs a bearer token for an existing user id with the
// configured secret. It is a development helper; tokens are not tracked.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/samirrijal/pokedex/internal/auth"
	"github.com/samirrijal/pokedex/internal/pkg/config"
)

func main() {
	ttl := flag.Duration("ttl", 0, "token lifetime (0 = no expiry)")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: pushtoken [-ttl 24h] <user-id>")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load("pokedex-pushtoken")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	verifier, err := auth.NewVerifier(cfg.Auth.JWTSecret)
	if err != nil {
		log.Fatalf("auth: %v", err)
	}

	token, err := verifier.Issue(flag.Arg(0), *ttl)
	if err != nil {
		log.Fatalf("issue: %v", err)
	}
	fmt.Println(token)
}
