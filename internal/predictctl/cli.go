package predictctl

import (
	"fmt"
	"io"
	"os"
)

// Config holds the persistent flags shared by all commands.
type Config struct {
	Target   string
	Protocol string
	LogLvl   string
}

func defaultConfig() *Config {
	return &Config{
		Target:   envStr("PREDICTCTL_TARGET", "127.0.0.1:8080"),
		Protocol: envStr("PREDICTCTL_PROTOCOL", "grpc"),
		LogLvl:   envStr("PREDICTCTL_LOG_LEVEL", "info"),
	}
}

// Main is the process entry point.
func Main() { os.Exit(MainWithArgs(os.Args[1:])) }

// MainWithArgs runs the command tree and returns the process exit code:
// 0 on success, 2 for usage errors, 1 otherwise.
func MainWithArgs(args []string) int {
	return mainWithIO(args, os.Stdout, os.Stderr)
}

func mainWithIO(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		root := buildRootCmdWith(defaultConfig(), stdout)
		root.SetOut(stderr)
		_ = root.Usage()
		return 2
	}
	root := buildRootCmdWith(defaultConfig(), stdout)
	root.SetArgs(args)
	root.SetErr(stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(stderr, err.Error())
		return 1
	}
	return 0
}
