package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/cobra"

	"github.com/MarcGrol/catalogshop/lib/myconfig"
	"github.com/MarcGrol/catalogshop/lib/mycontext"
	"github.com/MarcGrol/catalogshop/lib/myevents"
	"github.com/MarcGrol/catalogshop/lib/myhttp"
	"github.com/MarcGrol/catalogshop/lib/mypublisher"
	"github.com/MarcGrol/catalogshop/lib/mypubsub"
	"github.com/MarcGrol/catalogshop/lib/mystore"
	"github.com/MarcGrol/catalogshop/lib/mytime"
	"github.com/MarcGrol/catalogshop/lib/myuuid"
	"github.com/MarcGrol/catalogshop/services/cart"
	"github.com/MarcGrol/catalogshop/services/catalog"
	"github.com/MarcGrol/catalogshop/services/warmup"
)

const forwardInterval = 10 * time.Second

type serveFlags struct {
	configFile  string
	port        int
	databaseURL string
}

func main() {
	err := newRootCmd().ExecuteContext(context.Background())
	if err != nil {
		log.Printf("Error: %s", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := serveFlags{}

	cmd := &cobra.Command{
		Use:           "catalogshop",
		Short:         "Product catalog and shopping cart webserver",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), flags)
		},
	}
	cmd.Flags().StringVar(&flags.configFile, "config", "", "optional yaml config file")
	cmd.Flags().IntVar(&flags.port, "port", 0, "port to listen on (default 8080)")
	cmd.Flags().StringVar(&flags.databaseURL, "database-url", "", "memory://, datastore://<project> or mongodb://<host>/<database>")

	return cmd
}

func serve(c context.Context, flags serveFlags) error {
	cfg, err := myconfig.Load(flags.configFile)
	if err != nil {
		return fmt.Errorf("error loading config: %s", err)
	}
	cfg = cfg.WithOverrides(flags.port, flags.databaseURL)
	err = cfg.Validate()
	if err != nil {
		return fmt.Errorf("invalid config: %s", err)
	}
	mycontext.SetProjectID(cfg.GoogleCloudProject)

	db, dbCleanup, err := mystore.Open(c, cfg.ResolvedDatabaseURL())
	if err != nil {
		return fmt.Errorf("error opening database: %s", err)
	}
	defer dbCleanup()

	pubsub, pubsubCleanup, err := mypubsub.New(c, cfg.GoogleCloudProject)
	if err != nil {
		return fmt.Errorf("error creating pubsub: %s", err)
	}
	defer pubsubCleanup()

	router, publisher, err := createRouter(c, db, pubsub)
	if err != nil {
		return fmt.Errorf("error registering endpoints: %s", err)
	}

	c, cancel := context.WithCancel(c)
	defer cancel()
	go publisher.RunForwarder(c, forwardInterval)

	return startWebServerBlocking(cfg, db, router)
}

func createRouter(c context.Context, db *mystore.Database, pubsub mypubsub.PubSub) (*mux.Router, *mypublisher.OutboxPublisher, error) {
	router := mux.NewRouter()
	nower := mytime.RealNower{}
	uuider := myuuid.RealUUIDer{}

	// events are stored in the same database as the entities they describe
	publisher := mypublisher.New(mystore.New[myevents.EventEnvelope](db), pubsub, nower)
	err := publisher.RegisterEndpoints(c, router)
	if err != nil {
		return nil, nil, err
	}

	productStore := mystore.New[catalog.Product](db)
	cartStore := mystore.New[cart.Cart](db)

	err = warmup.NewService(productStore).RegisterEndpoints(c, router)
	if err != nil {
		return nil, nil, err
	}

	err = catalog.NewService(productStore, nower, uuider, publisher).RegisterEndpoints(c, router)
	if err != nil {
		return nil, nil, err
	}

	err = cart.NewService(cartStore, productStore, nower, uuider, publisher).RegisterEndpoints(c, router)
	if err != nil {
		return nil, nil, err
	}

	return router, publisher, nil
}

func startWebServerBlocking(cfg myconfig.Config, db *mystore.Database, router *mux.Router) error {
	log.Printf("Starting webserver on port %d with %s database (try http://localhost:%d)", cfg.Port, db.Backend(), cfg.Port)
	err := http.ListenAndServe(cfg.Address(), myhttp.MethodOverride(router))
	if err != nil {
		return fmt.Errorf("error starting webserver on port %d: %s", cfg.Port, err)
	}
	return nil
}
