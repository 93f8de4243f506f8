package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/term"

	"github.com/centsible/centsible-go/internal/crypto"
	"github.com/centsible/centsible-go/internal/model"
	"github.com/centsible/centsible-go/internal/repository"
)

const defaultDSN = "root:password@tcp(127.0.0.1:3306)/centsible?parseTime=true"

// adduser creates an account directly in the database. Registration
// over the API only ever creates "user" accounts, so the first admin
// has to come from here.
func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("adduser", flag.ContinueOnError)
	fs.SetOutput(stderr)

	name := fs.String("name", "", "Display name")
	email := fs.String("email", "", "Email address")
	role := fs.String("role", "admin", "Role: admin, user, or read-only")
	passwordFlag := fs.String("password", "", "Password (optional, will prompt if omitted)")
	generate := fs.Bool("generate", false, "Generate a random password and print it")
	dsn := fs.String("dsn", "", "MySQL DSN (defaults to DATABASE_DSN env)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *name == "" || *email == "" {
		fmt.Fprintln(stdout, "Usage: adduser -name <name> -email <email> [-role <role>] [-password <password> | -generate] [-dsn <dsn>]")
		fs.PrintDefaults()
		return fmt.Errorf("missing required flags: name, email")
	}

	userRole := model.Role(*role)
	if !userRole.Valid() {
		return fmt.Errorf("invalid role %q: must be admin, user, or read-only", *role)
	}

	password := *passwordFlag
	switch {
	case *generate && password != "":
		return fmt.Errorf("use either -password or -generate, not both")
	case *generate:
		var err error
		password, err = crypto.GeneratePassword(crypto.DefaultPasswordLength)
		if err != nil {
			return fmt.Errorf("failed to generate password: %w", err)
		}
	case password == "":
		fmt.Fprint(stdout, "Password: ")
		var err error
		password, err = readPassword(stdin)
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(stdout)
	}

	if len(strings.TrimSpace(password)) < 6 {
		return fmt.Errorf("password must be at least 6 characters")
	}

	if *dsn == "" {
		*dsn = os.Getenv("DATABASE_DSN")
	}
	if *dsn == "" {
		*dsn = defaultDSN
	}

	db, err := repository.NewDB(*dsn, repository.PoolConfig{MaxOpenConns: 2, MaxIdleConns: 1})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := repository.Migrate(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	hash, err := crypto.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(*name),
		Email:        strings.ToLower(strings.TrimSpace(*email)),
		PasswordHash: hash,
		Role:         userRole,
	}

	if err := repository.NewUserRepository(db).Create(context.Background(), user); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Fprintf(stdout, "User %s (%s) created with id %s\n", user.Name, user.Role, user.ID)
	if *generate {
		fmt.Fprintf(stdout, "Generated password: %s\n", password)
	}
	return nil
}

func readPassword(stdin io.Reader) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		bytePassword, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(bytePassword), nil
	}

	// Fallback for non-terminal input (tests, pipes).
	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
