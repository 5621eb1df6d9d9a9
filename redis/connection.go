// Package redis provides backing store adapters persisting container fields
// in Redis: sets as Redis sets, lists as Redis lists and maps as Redis hashes,
// one key per owner and field.
package redis

import (
	"context"
	"crypto/tls"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/sethvargo/go-retry"

	"github.com/sharedcode/sco"
)

// Redis configurable options.
type Options struct {
	// Redis server(cluster) address.
	Address string
	// Password required when connecting to the Redis server.
	Password string
	// DB to connect to.
	DB int
	// TLS config.
	TLSConfig *tls.Config
	// KeyPrefix namespaces every key this package writes. Defaults to "sco".
	KeyPrefix string
}

// Connection contains the Redis client connection object and the Options used
// to connect.
type Connection struct {
	Client  *redis.Client
	Options Options
}

// DefaultOptions.
func DefaultOptions() Options {
	return Options{
		Address:  "localhost:6379",
		Password: "", // no password set
		DB:       0,  // use default DB
	}
}

var connection *Connection
var mux sync.Mutex

// Returns true if connection instance is valid.
func IsConnectionInstantiated() bool {
	return connection != nil
}

// Creates a singleton connection and returns it for every call.
func OpenConnection(options Options) (*Connection, error) {
	if connection != nil {
		return connection, nil
	}
	mux.Lock()
	defer mux.Unlock()

	if connection != nil {
		return connection, nil
	}

	connection = openConnection(options)
	return connection, nil
}

// Close the singleton connection if open.
func CloseConnection() error {
	if connection == nil {
		return nil
	}
	mux.Lock()
	defer mux.Unlock()
	if connection == nil {
		return nil
	}
	err := closeConnection(connection)
	connection = nil
	return err
}

func openConnection(options Options) *Connection {
	if options.KeyPrefix == "" {
		options.KeyPrefix = "sco"
	}
	client := redis.NewClient(&redis.Options{
		TLSConfig: options.TLSConfig,
		Addr:      options.Address,
		Password:  options.Password,
		DB:        options.DB})

	c := Connection{
		Client:  client,
		Options: options,
	}
	return &c
}

func closeConnection(c *Connection) error {
	if c == nil || c.Client == nil {
		return nil
	}
	err := c.Client.Close()
	c.Client = nil
	return err
}

// Ping tests connectivity, retrying transient failures with backoff.
func Ping(ctx context.Context) error {
	if connection == nil {
		return fmt.Errorf("Redis connection is not open, 'can't ping")
	}
	return sco.Retry(ctx, func(ctx context.Context) error {
		if err := connection.Client.Ping(ctx).Err(); err != nil && sco.ShouldRetry(err) {
			return retry.RetryableError(err)
		} else if err != nil {
			return err
		}
		return nil
	}, nil)
}

// fieldKey builds the Redis key of one owner+field container.
func fieldKey(prefix string, fieldNo int, owner sco.UUID) string {
	return fmt.Sprintf("%s:%d:%s", prefix, fieldNo, owner.String())
}
