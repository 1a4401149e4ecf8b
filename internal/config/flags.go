package config

import (
	"flag"
	"fmt"
	"net"
	"strconv"
	"time"
)

// NetAddress is a flag.Value for the -a listen address.
type NetAddress struct {
	Host string
	Port int
}

// parseFlags reads the server flags from args:
//
//	-a                 listen address host:port
//	-e                 storage engine (sqlite, postgres, redis, dynamodb)
//	-d                 postgres DSN
//	-sqlite-path       SQLite database file
//	-redis-address     redis host:port
//	-dynamodb-table    DynamoDB table name
//	-dynamodb-endpoint DynamoDB endpoint override
//	-c, -config        JSON config file
//	-request-timeout   per request timeout
//	-conflict-retries  retries of user writes that lost a race
//	-stats-interval    stats reporter period
func parseFlags(args []string) (*StructuredConfig, error) {
	fs := flag.NewFlagSet("go-secret-keeper", flag.ContinueOnError)

	var serverAddress NetAddress
	var engine string
	var databaseDSN string
	var sqlitePath string
	var redisAddress string
	var dynamoTable string
	var dynamoEndpoint string
	var jsonConfigPath string
	var requestTimeout time.Duration
	var conflictRetries uint64
	var statsInterval time.Duration

	fs.Var(&serverAddress, "a", "Net address host:port")
	fs.StringVar(&engine, "e", "", "Storage engine: sqlite, postgres, redis, dynamodb")
	fs.StringVar(&databaseDSN, "d", "", "Database DSN")
	fs.StringVar(&sqlitePath, "sqlite-path", "", "SQLite database file")
	fs.StringVar(&redisAddress, "redis-address", "", "Redis address host:port")
	fs.StringVar(&dynamoTable, "dynamodb-table", "", "DynamoDB table name")
	fs.StringVar(&dynamoEndpoint, "dynamodb-endpoint", "", "DynamoDB endpoint override")
	fs.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	fs.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	fs.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 30s, 1m)")
	fs.Uint64Var(&conflictRetries, "conflict-retries", 0, "Retries of user writes that lost a concurrency race")
	fs.DurationVar(&statsInterval, "stats-interval", 0, "Stats reporter period (e.g., 1m)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	return &StructuredConfig{
		App: App{
			ConflictRetries: conflictRetries,
		},
		Storage: Storage{
			Engine:   engine,
			DB:       DB{DSN: databaseDSN},
			SQLite:   SQLite{Path: sqlitePath},
			Redis:    Redis{Address: redisAddress},
			DynamoDB: DynamoDB{Table: dynamoTable, Endpoint: dynamoEndpoint},
		},
		Server: Server{
			HTTPAddress:    serverAddress.String(),
			RequestTimeout: requestTimeout,
		},
		Workers:      Workers{StatsInterval: statsInterval},
		JSONFilePath: jsonConfigPath,
	}, nil
}

func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}
	return net.JoinHostPort(a.Host, strconv.Itoa(a.Port))
}

// Set accepts "host:port" where host is empty, localhost or an IP literal.
func (a *NetAddress) Set(s string) error {
	host, rawPort, err := net.SplitHostPort(s)
	if err != nil {
		return fmt.Errorf("need address in a form `host:port`: %w", err)
	}

	port, err := strconv.Atoi(rawPort)
	if err != nil {
		return fmt.Errorf("invalid port %q: %w", rawPort, err)
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("port %d is out of range", port)
	}
	if host != "" && host != "localhost" && net.ParseIP(host) == nil {
		return fmt.Errorf("invalid IP address %q", host)
	}

	a.Host, a.Port = host, port
	return nil
}
