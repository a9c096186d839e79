package tenant

import (
	"context"
	"os"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
)

// MongoConn mongo backed store handle scoped to one tenant database
type MongoConn struct {
	uri    string
	client *mongo.Client
	db     *mongo.Database
}

// URI method
func (m *MongoConn) URI() string {
	return m.uri
}

// DB tenant database
func (m *MongoConn) DB() *mongo.Database {
	return m.db
}

// Release method
func (m *MongoConn) Release(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// ConnectMongo dial mongodb with bounded timeouts, ConnectorFunc for the router
func ConnectMongo(ctx context.Context, uri string) (StoreConn, error) {
	connDSN, err := connstring.ParseAndValidate(uri)
	if err != nil {
		return nil, err
	}

	client, err := mongo.Connect(ctx,
		options.Client().ApplyURI(connDSN.String()),
		options.Client().SetConnectTimeout(10*time.Second),
		options.Client().SetServerSelectionTimeout(10*time.Second),
	)
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		client.Disconnect(ctx)
		return nil, err
	}

	dbName := connDSN.Database
	if dbName == "" {
		dbName = "blogdesk"
	}
	return &MongoConn{uri: uri, client: client, db: client.Database(dbName)}, nil
}

// EnvResolver layered url lookup, tenant specific override via
// MONGODB_TENANT_<ID> environment, else tenant database on the default host
func EnvResolver(defaultHost string) ResolverFunc {
	replacer := strings.NewReplacer("-", "_", ".", "_")
	return func(tenantID string) (string, bool) {
		key := "MONGODB_TENANT_" + strings.ToUpper(replacer.Replace(tenantID))
		if override := os.Getenv(key); override != "" {
			return override, true
		}
		if defaultHost == "" {
			return "", false
		}
		return strings.TrimSuffix(defaultHost, "/") + "/blog_" + tenantID, true
	}
}
