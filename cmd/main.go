package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Vovarama1992/audioproc/internal/config"
	"github.com/Vovarama1992/audioproc/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {

	// =========================================================================
	// ENV / LOGGER
	// =========================================================================

	_ = godotenv.Load()

	env, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "config error: %v\n", err)
		return exitConfig
	}

	log, closeLog, err := logging.New(env.LogLevel, env.LogFile, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "logger error: %v\n", err)
		return exitConfig
	}
	defer closeLog()
	defer log.Sync()

	// =========================================================================
	// WIRING
	// =========================================================================

	a := newApp(ctx, env, log, stdin, stdout)
	defer a.close()

	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	// =========================================================================
	// EXECUTE
	// =========================================================================

	cmd, execErr := root.ExecuteContextC(ctx)
	code := exitCode(execErr)
	if execErr != nil {
		fmt.Fprintf(stderr, "error: %v\n", execErr)
	}

	name := root.Name()
	if cmd != nil {
		name = cmd.CommandPath()
	}
	a.outcome(name, code, execErr)
	log.Debug("exit", zap.Int("code", code))
	return code
}
