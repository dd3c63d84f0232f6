package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/quillpost/quillpost/internal/auth"
	"github.com/quillpost/quillpost/internal/model"
	"github.com/quillpost/quillpost/internal/repository"
)

type output struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	AccessToken string `json:"access_token,omitempty"`
	ExpiresAt   string `json:"expires_at,omitempty"`
}

func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		email       = flag.String("email", "", "Email of the account to create")
		migrate     = flag.Bool("migrate", false, "Apply schema migrations before creating the user")
		issueToken  = flag.Bool("token", false, "Print a bearer token for the new user (requires JWT_SECRET)")
		ttl         = flag.Duration("ttl", time.Hour, "Lifetime of the printed token")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *databaseURL == "" {
		fail("DATABASE_URL is required")
	}
	if strings.TrimSpace(*email) == "" {
		fail("-email is required")
	}

	// The password is read from stdin so it never appears in shell history.
	password, err := readPassword()
	if err != nil {
		fail(err.Error())
	}

	var tokens *auth.TokenCodec
	if *issueToken {
		tokens, err = auth.NewTokenCodec([]byte(os.Getenv("JWT_SECRET")), *ttl)
		if err != nil {
			fail("token configuration: " + err.Error())
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if *migrate {
		if err := repository.Migrate(ctx, *databaseURL); err != nil {
			fail("migrate: " + err.Error())
		}
	}

	repo, err := repository.New(ctx, *databaseURL, repository.PoolOptions{MaxConns: 1, MinConns: 1})
	if err != nil {
		fail("connect database: " + err.Error())
	}
	defer repo.Close()

	hasher, err := auth.NewHasher(auth.DefaultHashParams())
	if err != nil {
		fail("hasher: " + err.Error())
	}
	hash, err := hasher.Hash(password)
	if err != nil {
		fail("hash password: " + err.Error())
	}

	user := &model.User{
		ID:           ulid.Make().String(),
		Email:        *email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			fail("email " + *email + " is already registered")
		}
		fail("create user: " + err.Error())
	}

	out := output{UserID: user.ID, Email: user.Email}
	if tokens != nil {
		signed, expiresAt, err := tokens.Issue(user.ID, time.Now(), 0)
		if err != nil {
			fail("issue token: " + err.Error())
		}
		out.AccessToken = signed
		out.ExpiresAt = expiresAt.UTC().Format(time.RFC3339)
	}

	switch strings.ToLower(*format) {
	case "plain":
		if out.AccessToken != "" {
			fmt.Println(out.AccessToken)
		} else {
			fmt.Println(out.UserID)
		}
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fail("invalid format; use plain or json")
	}
}

func readPassword() (string, error) {
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read password from stdin: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if len(password) < 8 {
		return "", errors.New("password must be at least 8 characters")
	}
	return password, nil
}

func fail(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
