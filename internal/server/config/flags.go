package config

import (
	"flag"
	"time"

	"github.com/abanwa/twitter/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g. ":5000")
//	-g string   gRPC health bind address (e.g. ":50051")
//	-b string   store backend: mongo, postgres or memory
//	-m string   MongoDB URI
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      session token validity, minutes
//	-i string   image bucket; empty keeps images in memory
//
// Only these flags are looked at; the rest of the command line belongs to
// other flag sets (see flagx.FilterArgs).
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, "a", "g", "b", "m", "d", "s", "t", "i")

	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "HTTP address and port")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "gRPC health address and port")
	fs.StringVar(&config.StoreBackend, "b", config.StoreBackend, "store backend (mongo|postgres|memory)")
	fs.StringVar(&config.MongoURI, "m", config.MongoURI, "MongoDB URI")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.S3Bucket, "i", config.S3Bucket, "image bucket")
	validity := fs.Int("t", int(config.TokenValidityDuration.Minutes()), "token validity (in minutes)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	config.TokenValidityDuration = time.Duration(*validity) * time.Minute
	return nil
}
