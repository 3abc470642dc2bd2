package config

import (
	"flag"

	"github.com/dmitrijs2005/fintab/internal/flagx"
)

var serverFlags = []string{"-a", "-g", "-d", "-e", "-s", "-t", "-o", "-l"}

// Positional returns the arguments that are neither server flags, their
// values, nor the -c / -config path.
func Positional(args []string) []string {
	return flagx.Rest(args, append([]string{"-c", "-config"}, serverFlags...))
}

// parseFlags populates Config fields from command-line flags.
//
//	-a string     HTTP bind address (e.g. ":3000")
//	-g string     gRPC bind address (e.g. ":50051")
//	-d string     PostgreSQL DSN, or "memory"
//	-e string     environment name ("production" enables secure cookies)
//	-s duration   session lifetime
//	-t duration   activation token lifetime
//	-o string     web origin used in activation links
//	-l string     log level
//
// Args are filtered through flagx.FilterArgs so -c and unrelated flags pass.
func parseFlags(config *Config, args []string) {
	args = flagx.FilterArgs(args, serverFlags)

	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "HTTP address and port")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "gRPC address and port")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.Environment, "e", config.Environment, "environment")
	fs.DurationVar(&config.SessionTTL, "s", config.SessionTTL, "session lifetime")
	fs.DurationVar(&config.ActivationTokenTTL, "t", config.ActivationTokenTTL, "activation token lifetime")
	fs.StringVar(&config.WebOrigin, "o", config.WebOrigin, "web origin")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
