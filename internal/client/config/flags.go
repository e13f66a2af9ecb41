package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/gophdash/internal/flagx"
)

// parseFlags populates cfg from command-line flags:
//
//	-a string    base URL of the dashboard API
//	-g string    address of the gRPC endpoint
//	-s string    storage backend (sqlite, postgres, redis, memory, s3)
//	-d string    storage DSN
//	-t duration  request timeout
//	-f string    token format (opaque, jwt)
//	-u string    user fixture file
//	-l string    log level
//
// Only these flags are read from os.Args, see flagx.FilterArgs.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-g", "-s", "-d", "-t", "-f", "-u", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.APIURL, "a", cfg.APIURL, "base URL of the dashboard API")
	fs.StringVar(&cfg.GRPCAddr, "g", cfg.GRPCAddr, "address and port of the gRPC endpoint")
	fs.StringVar(&cfg.StoreBackend, "s", cfg.StoreBackend, "storage backend")
	fs.StringVar(&cfg.StoreDSN, "d", cfg.StoreDSN, "storage DSN")
	fs.DurationVar(&cfg.RequestTimeout, "t", cfg.RequestTimeout, "request timeout")
	fs.StringVar(&cfg.TokenFormat, "f", cfg.TokenFormat, "token format (opaque or jwt)")
	fs.StringVar(&cfg.UsersFile, "u", cfg.UsersFile, "user fixture file")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
