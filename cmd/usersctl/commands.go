package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/Krchnk/gw-crypto-dashboard/internal/dashboard"
	"github.com/Krchnk/gw-crypto-dashboard/internal/storages"
	"github.com/google/subcommands"
)

// Register adds the account commands to c.
func Register(c *subcommands.Commander, e *env) {
	c.Register(&initCmd{env: e}, "database")
	c.Register(&listCmd{env: e}, "accounts")
	c.Register(&addCmd{env: e}, "accounts")
	c.Register(&passwdCmd{env: e}, "accounts")
}

type initCmd struct {
	env *env
}

func (*initCmd) Name() string     { return "init" }
func (*initCmd) Synopsis() string { return "create the users table if it does not exist" }
func (*initCmd) Usage() string {
	return `init

  Connects to the configured database and applies pending migrations.
`
}
func (*initCmd) SetFlags(*flag.FlagSet) {}

func (c *initCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	store, err := c.env.open(ctx)
	if err != nil {
		fmt.Fprintf(c.env.errOut, "Error opening database: %v\n", err)
		return subcommands.ExitFailure
	}
	defer store.Close()

	fmt.Fprintln(c.env.out, "database initialized")
	return subcommands.ExitSuccess
}

type listCmd struct {
	env *env
}

func (*listCmd) Name() string     { return "list" }
func (*listCmd) Synopsis() string { return "print every registered email" }
func (*listCmd) Usage() string {
	return `list

  Prints one registered email per line.
`
}
func (*listCmd) SetFlags(*flag.FlagSet) {}

func (c *listCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	store, err := c.env.open(ctx)
	if err != nil {
		fmt.Fprintf(c.env.errOut, "Error opening database: %v\n", err)
		return subcommands.ExitFailure
	}
	defer store.Close()

	ids, err := store.ListIdentifiers(ctx)
	if err != nil {
		fmt.Fprintf(c.env.errOut, "Error listing accounts: %v\n", err)
		return subcommands.ExitFailure
	}
	for _, id := range ids {
		fmt.Fprintln(c.env.out, id)
	}
	return subcommands.ExitSuccess
}

type addCmd struct {
	env   *env
	email string
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "register a new account" }
func (*addCmd) Usage() string {
	return `add -email <email>

  Registers an account. The password is read from the terminal, or from the
  first line of stdin when it is not a terminal.
`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.email, "email", "", "account email (required)")
}

func (c *addCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := dashboard.ValidateEmail(c.email); err != nil {
		fmt.Fprintln(c.env.errOut, "Error: -email must be a valid email address.")
		return subcommands.ExitUsageError
	}

	password, err := c.env.readPassword("Password: ")
	if err != nil {
		fmt.Fprintf(c.env.errOut, "Error reading password: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := dashboard.ValidatePassword(password); err != nil {
		fmt.Fprintf(c.env.errOut, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	store, err := c.env.open(ctx)
	if err != nil {
		fmt.Fprintf(c.env.errOut, "Error opening database: %v\n", err)
		return subcommands.ExitFailure
	}
	defer store.Close()

	if err := store.Register(ctx, c.email, password); err != nil {
		if errors.Is(err, storages.ErrIdentifierExists) {
			fmt.Fprintf(c.env.errOut, "Error: %s is already registered.\n", c.email)
		} else {
			fmt.Fprintf(c.env.errOut, "Error registering account: %v\n", err)
		}
		return subcommands.ExitFailure
	}

	fmt.Fprintf(c.env.out, "registered %s\n", c.email)
	return subcommands.ExitSuccess
}

type passwdCmd struct {
	env   *env
	email string
}

func (*passwdCmd) Name() string     { return "passwd" }
func (*passwdCmd) Synopsis() string { return "set a new password for an account" }
func (*passwdCmd) Usage() string {
	return `passwd -email <email>

  Replaces the password of an existing account. The stored hash uses the
  configured HASH_SCHEME.
`
}

func (c *passwdCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.email, "email", "", "account email (required)")
}

func (c *passwdCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.email == "" {
		fmt.Fprintln(c.env.errOut, "Error: -email is required.")
		return subcommands.ExitUsageError
	}

	password, err := c.env.readPassword("New password: ")
	if err != nil {
		fmt.Fprintf(c.env.errOut, "Error reading password: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := dashboard.ValidatePassword(password); err != nil {
		fmt.Fprintf(c.env.errOut, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	store, err := c.env.open(ctx)
	if err != nil {
		fmt.Fprintf(c.env.errOut, "Error opening database: %v\n", err)
		return subcommands.ExitFailure
	}
	defer store.Close()

	if err := store.UpdatePassword(ctx, c.email, password); err != nil {
		if errors.Is(err, storages.ErrUserNotFound) {
			fmt.Fprintf(c.env.errOut, "Error: no account for %s.\n", c.email)
		} else {
			fmt.Fprintf(c.env.errOut, "Error updating password: %v\n", err)
		}
		return subcommands.ExitFailure
	}

	fmt.Fprintf(c.env.out, "password updated for %s\n", c.email)
	return subcommands.ExitSuccess
}
