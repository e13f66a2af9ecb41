package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/gophdash/internal/flagx"
)

// parseFlags populates Config from command-line flags:
//
//	-a string   HTTP listen address
//	-g string   gRPC listen address
//	-s string   storage backend
//	-d string   storage DSN
//	-k string   token signing secret
//	-l string   log level
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-g", "-s", "-d", "-k", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.HTTPAddr, "a", cfg.HTTPAddr, "HTTP listen address")
	fs.StringVar(&cfg.GRPCAddr, "g", cfg.GRPCAddr, "gRPC listen address")
	fs.StringVar(&cfg.StoreBackend, "s", cfg.StoreBackend, "storage backend")
	fs.StringVar(&cfg.StoreDSN, "d", cfg.StoreDSN, "storage DSN")
	fs.StringVar(&cfg.TokenSecret, "k", cfg.TokenSecret, "token signing secret")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
