package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/taskhub/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   gRPC bind address (e.g., ":50051")
//	-w string   HTTP/WebSocket bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-i int      session idle timeout, minutes
//	-k int      idle sweep interval, seconds
//	-t int      account confirmation token validity, minutes
//	-r int      password reset token validity, minutes
//	-l string   log backend (slog|zap)
//	-v string   log level
//
// Durations are accepted as integers and converted to time.Duration values.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-w", "-d", "-i", "-k", "-t", "-r", "-l", "-v"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port of the gRPC API")
	fs.StringVar(&config.EndpointAddrHTTP, "w", config.EndpointAddrHTTP, "address and port of the websocket endpoint")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")

	idleTimeout := fs.Int("i", int(config.SessionIdleTimeout.Minutes()), "session idle timeout (in minutes)")
	sweepInterval := fs.Int("k", int(config.IdleSweepInterval.Seconds()), "idle sweep interval (in seconds)")
	accountValidity := fs.Int("t", int(config.AccountTokenValidity.Minutes()), "account token validity (in minutes)")
	resetValidity := fs.Int("r", int(config.ResetTokenValidity.Minutes()), "reset token validity (in minutes)")

	fs.StringVar(&config.LogBackend, "l", config.LogBackend, "log backend (slog|zap)")
	fs.StringVar(&config.LogLevel, "v", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.SessionIdleTimeout = time.Duration(*idleTimeout) * time.Minute
	config.IdleSweepInterval = time.Duration(*sweepInterval) * time.Second
	config.AccountTokenValidity = time.Duration(*accountValidity) * time.Minute
	config.ResetTokenValidity = time.Duration(*resetValidity) * time.Minute
}
