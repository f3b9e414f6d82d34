package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and addresses, ints for sizes.
type Config struct {
	Env     string // application environment (e.g. "dev", "prod")
	Port    string // HTTP port to listen on
	DBUser  string // database username
	DBPass  string // database password (optional)
	DBHost  string // database host address
	DBPort  string // database port number
	DBName  string // database name
	AMQPURL string // RabbitMQ broker URL (optional; empty disables event publishing)

	// CompleteSweepMin is the interval in minutes between sweeps that
	// close out schedules whose arrival time has passed.
	CompleteSweepMin int
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:              must("APP_ENV"),  // environment (dev/test/prod)
		Port:             must("APP_PORT"), // port to bind the HTTP server
		DBUser:           must("DB_USER"),  // database user
		DBPass:           os.Getenv("DB_PASS"),
		DBHost:           must("DB_HOST"),
		DBPort:           must("DB_PORT"),
		DBName:           must("DB_NAME"),
		AMQPURL:          os.Getenv("AMQP_URL"),
		CompleteSweepMin: intOr("COMPLETE_SWEEP_MIN", 5),
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// intOr retrieves an optional integer environment variable, falling
// back to the given default when unset.  A set-but-invalid value is
// still fatal.
func intOr(key string, def int) int {
	s, ok := os.LookupEnv(key)
	if !ok || s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
