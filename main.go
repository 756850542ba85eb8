/*
A tool for building the translated string maps of an interactive simulation:
it scans the sim's module sources for string accesses, resolves each key
through its locale fallback chain, and assembles the final per-locale maps.

Various program settings are controlled by a TOML config file, which must be
available for the program to run. By default, the program will look for a file
called 'simstrings.toml' in the same directory as its binary.

The program must be run with a 'command' argument to indicate what you would
like it to do. Available commands are:

  - build: Assembles the string map for the configured locales and writes it to the output directory.
  - conglomerate: Merges every locale's translation file into one development-strings file.
  - fetch: Loads strings over HTTP from a running strings server, as unbuilt mode does.
  - init-db: Initializes the build-report database.
  - report: Records a build's resolution audit and prints the keys that fell back to another locale.
  - serve: Starts an HTTP server providing a JSON API for string files, conglomerates and reports.
  - watch: Regenerates the development-strings conglomerate whenever a translation file changes.
  - help: Prints usage instructions
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/phetsims/simstrings/config"
	"github.com/phetsims/simstrings/report"
	"github.com/phetsims/simstrings/server"
)

var (
	configPath string
)

func init() {
	defaultConfigPath := filepath.FromSlash("./simstrings.toml")
	flag.StringVar(&configPath, "config", defaultConfigPath, "Full `path` and file name to the config file")
}

type Command interface {
	Run(config.Config)
}

type CommandFunc func(config.Config)

func (f CommandFunc) Run(c config.Config) {
	f(c)
}

func checkFatal(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// Converts os.Args to one of the cmd* constants.
func parseArgs(args []string) (command string) {
	if len(args) < 1 {
		return cmdMissing
	}

	switch args[0] {
	case cmdHelp, cmdBuild, cmdConglomerate, cmdFetch, cmdInitDb, cmdReport, cmdServe, cmdWatch:
		return args[0]
	}

	return cmdUnrecognised
}

// Prints a normal usage message.
func printUsage(c config.Config) {
	flag.PrintDefaults()
}

// Prints a usage message indicating that a command must be given.
func printMissingCommandUsage(c config.Config) {
	fmt.Fprintf(os.Stderr, "No command given. Command can be one of: %v\n\n", strings.Join(availableCommands(), ", "))
	printUsage(c)
}

// Prints a usage message indicating that the given command was not recognised.
func printUnrecognisedCommandUsage(cmd string) CommandFunc {
	return func(c config.Config) {
		fmt.Fprintf(os.Stderr, "Command '%v' not recognised. Command must be one of: %v\n\n", cmd, strings.Join(availableCommands(), ", "))
		printUsage(c)
	}
}

func main() {
	flag.Parse()
	config, cfgErr := config.Load(configPath)
	var command = parseArgs(flag.Args())

	var commandFunc = CommandFunc(printMissingCommandUsage)
	switch command {
	case cmdUnrecognised:
		commandFunc = printUnrecognisedCommandUsage(flag.Args()[0])
	case cmdBuild:
		commandFunc = CommandFunc(build)
	case cmdConglomerate:
		commandFunc = CommandFunc(generateConglomerate)
	case cmdFetch:
		commandFunc = CommandFunc(fetchStrings)
	case cmdInitDb:
		commandFunc = CommandFunc(initDb)
	case cmdReport:
		commandFunc = CommandFunc(report.Run)
	case cmdServe:
		commandFunc = CommandFunc(server.Serve)
	case cmdWatch:
		commandFunc = CommandFunc(watchTranslations)
	}

	// Invalid config only matters for non-'help' commands
	if command != cmdUnrecognised && command != cmdMissing && command != cmdHelp {
		checkFatal(cfgErr)
	}

	commandFunc.Run(config)
}
