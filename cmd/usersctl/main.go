// Command usersctl manages dashboard accounts from the shell.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"
)

func main() {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetLevel(logrus.WarnLevel)

	configPath := flag.String("c", "config.env", "path to config file")
	e := newEnv(configPath)

	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	Register(subcommands.DefaultCommander, e)

	flag.Parse()
	os.Exit(int(subcommands.Execute(context.Background())))
}
