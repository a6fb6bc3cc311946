package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"mongo-tracing/internal/auth/adapter/security"
	"mongo-tracing/internal/auth/domain/repository"
	"mongo-tracing/internal/config"
)

// runToken implements "mongo-tracing token": it prints a signed access token
// for the configured AUTH_JWT_SECRET.
func runToken(args []string, cfg config.AuthConfig, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	fs.SetOutput(stderr)
	subject := fs.String("subject", "", "token subject, for example a service name")
	scopes := fs.String("scopes", repository.ScopeOrdersRead, "comma separated scopes")
	ttl := fs.Duration("ttl", cfg.TokenTTL, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg.TokenTTL = *ttl
	svc, err := security.NewJWTokenService(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "token: %v\n", err)
		return 1
	}

	var granted []string
	for _, scope := range strings.Split(*scopes, ",") {
		if scope = strings.TrimSpace(scope); scope != "" {
			granted = append(granted, scope)
		}
	}
	token, err := svc.GenerateToken(context.Background(), *subject, granted)
	if err != nil {
		fmt.Fprintf(stderr, "token: %v\n", err)
		return 1
	}
	fmt.Fprintln(stdout, token)
	return 0
}
