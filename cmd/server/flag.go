package main

import (
	"flag"
	"fmt"
	"strconv"
	"strings"
)

const (
	environmentVariablePort               = "PORT"
	environmentVariableMongoURI           = "MONGO_URI"
	environmentVariablePostgresURL        = "POSTGRES_URL"
	environmentVariableFirestoreProjectID = "FIRESTORE_PROJECT_ID"
	environmentVariableRedisURL           = "REDIS_URL"
	environmentVariableTokenKey           = "TOKEN_KEY"
	environmentVariableStopSeconds        = "STOP_SECONDS"
	environmentVariableDebugMessages      = "DEBUG_MESSAGES"
)

const (
	defaultHTTPPort    = 8000
	defaultStopSeconds = 5
)

// mainFlags are the configuration options which can be easily configured at run startup for different environments.
type mainFlags struct {
	httpPort           int
	mongoURI           string
	postgresURL        string
	firestoreProjectID string
	redisURL           string
	tokenKey           string
	stopSec            int
	debugMessages      bool
}

// usage prints how to run the server to the flagset's output.
func usage(fs *flag.FlagSet) {
	envVars := []string{
		environmentVariablePort,
		environmentVariableMongoURI,
		environmentVariablePostgresURL,
		environmentVariableFirestoreProjectID,
		environmentVariableRedisURL,
		environmentVariableTokenKey,
		environmentVariableStopSeconds,
		environmentVariableDebugMessages,
	}
	fmt.Fprintf(fs.Output(), "Runs the game server\n")
	fmt.Fprintf(fs.Output(), "Reads environment variables when possible: [%s]\n", strings.Join(envVars, ","))
	fmt.Fprintf(fs.Output(), "Usage of %s:\n", fs.Name())
	fs.PrintDefaults()
}

// newFlagSet creates a flagSet that populates the specified mainFlags.
func (m *mainFlags) newFlagSet(osLookupEnvFunc func(string) (string, bool)) *flag.FlagSet {
	fs := flag.NewFlagSet("main", flag.ExitOnError)
	fs.Usage = func() {
		usage(fs) // [lazy evaluation]
	}
	envValue := func(key string) string {
		if envValue, ok := osLookupEnvFunc(key); ok {
			return envValue
		}
		return ""
	}
	envValueInt := func(key string, defaultValue int) int {
		v1 := envValue(key)
		v2, err := strconv.Atoi(v1)
		if err != nil {
			return defaultValue
		}
		return v2
	}
	envPresent := func(key string) bool {
		_, ok := osLookupEnvFunc(key)
		return ok
	}
	fs.IntVar(&m.httpPort, "port", envValueInt(environmentVariablePort, defaultHTTPPort), "The TCP port to serve http requests on.")
	fs.StringVar(&m.mongoURI, "mongo-uri", envValue(environmentVariableMongoURI), "The connection URI of the MongoDB server that stores game snapshots and trivia questions.")
	fs.StringVar(&m.postgresURL, "postgres-url", envValue(environmentVariablePostgresURL), "The connection URI of the PostgreSQL database that stores game snapshots.  Used when no mongo uri is set.")
	fs.StringVar(&m.firestoreProjectID, "firestore-project-id", envValue(environmentVariableFirestoreProjectID), "The google cloud project whose Firestore stores game snapshots.  Used when no mongo uri or postgres url is set.")
	fs.StringVar(&m.redisURL, "redis-url", envValue(environmentVariableRedisURL), "The connection URI of the redis server that tracks user presence.  Presence is tracked in memory when unset.")
	fs.StringVar(&m.tokenKey, "token-key", envValue(environmentVariableTokenKey), "The HMAC key session tokens are signed with.  A random key is generated when unset.")
	fs.IntVar(&m.stopSec, "stop-sec", envValueInt(environmentVariableStopSeconds, defaultStopSeconds), "The number of seconds the server may take to shut down.")
	fs.BoolVar(&m.debugMessages, "debug-messages", envPresent(environmentVariableDebugMessages), "Logs message events as they are passed between components.")
	return fs
}

// newMainFlags creates a new, populated mainFlags structure.
// Fields are populated from command line arguments.
// If fields are not specified on the command line, environment variable values are used before defaulting to other defaults.
func newMainFlags(osArgs []string, osLookupEnvFunc func(string) (string, bool)) mainFlags {
	if len(osArgs) == 0 {
		osArgs = []string{""}
	}
	programArgs := osArgs[1:]
	var m mainFlags
	fs := m.newFlagSet(osLookupEnvFunc)
	fs.Parse(programArgs)
	return m
}
