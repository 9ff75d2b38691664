package mystore

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"

	"cloud.google.com/go/datastore"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type backend string

const (
	backendMemory    backend = "memory"
	backendDatastore backend = "datastore"
	backendMongo     backend = "mongodb"

	defaultMongoDatabase = "shop"
)

// Database is the process-wide connection that all stores share.
type Database struct {
	backend         backend
	datastoreClient *datastore.Client
	mongoDatabase   *mongo.Database
	memory          *memoryDatabase
}

// Open connects to the database identified by databaseURL:
//
//	memory://
//	datastore://<project-id>
//	mongodb://<host>[:port]/<database>  (or mongodb+srv://)
//
// The returned cleanup function closes the connection.
func Open(c context.Context, databaseURL string) (*Database, func(), error) {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("error parsing database-url: %s", err)
	}

	switch u.Scheme {
	case "memory":
		return NewInMemoryDatabase(), func() {}, nil

	case "datastore":
		return openDatastore(c, u.Host)

	case "mongodb", "mongodb+srv":
		return openMongo(c, databaseURL, mongoDatabaseName(u))

	default:
		return nil, nil, fmt.Errorf("unsupported database-url scheme '%s'", u.Scheme)
	}
}

func NewInMemoryDatabase() *Database {
	return &Database{
		backend: backendMemory,
		memory:  &memoryDatabase{},
	}
}

func (db *Database) Backend() string {
	return string(db.backend)
}

func openDatastore(c context.Context, projectID string) (*Database, func(), error) {
	if projectID == "" {
		return nil, nil, fmt.Errorf("missing project-id in datastore database-url")
	}

	client, err := datastore.NewClient(c, projectID)
	if err != nil {
		return nil, nil, fmt.Errorf("error creating datastore-client: %s", err)
	}

	log.Printf("Connected to datastore of project %s", projectID)

	return &Database{
			backend:         backendDatastore,
			datastoreClient: client,
		}, func() {
			client.Close()
		}, nil
}

func openMongo(c context.Context, databaseURL string, databaseName string) (*Database, func(), error) {
	client, err := mongo.Connect(c, options.Client().ApplyURI(databaseURL))
	if err != nil {
		return nil, nil, fmt.Errorf("error creating mongodb-client: %s", err)
	}

	err = client.Ping(c, readpref.Primary())
	if err != nil {
		client.Disconnect(c)
		return nil, nil, fmt.Errorf("error connecting to mongodb: %s", err)
	}

	log.Printf("Connected to mongodb database %s", databaseName)

	return &Database{
			backend:       backendMongo,
			mongoDatabase: client.Database(databaseName),
		}, func() {
			client.Disconnect(context.Background())
		}, nil
}

func mongoDatabaseName(u *url.URL) string {
	name := strings.Trim(u.Path, "/")
	if name == "" {
		return defaultMongoDatabase
	}
	return name
}
