package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jeanmiche7488/mim/pkg/logging"
	"github.com/jeanmiche7488/mim/pkg/mongodb"

	"github.com/jeanmiche7488/mim/internal/application"
	"github.com/jeanmiche7488/mim/internal/domain"
	mongoRepo "github.com/jeanmiche7488/mim/internal/infrastructure/mongodb"
)

// One-shot distribution runner: claims a stock pool, allocates it over the
// active stores and prints the result as JSON.

var (
	mongoURI   = flag.String("mongo-uri", "mongodb://localhost:27017", "MongoDB connection URI")
	dbName     = flag.String("db", "mim_db", "Database name")
	replicaSet = flag.String("replica-set", "", "Replica set name, enables transactional persistence")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <stock-to-dispatch-id> [user-id]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}
	stockID := flag.Arg(0)
	userID := flag.Arg(1)

	logger := logging.New(logging.DefaultConfig("distribute-cli"))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongodb.NewClient(ctx, &mongodb.Config{
		URI:            *mongoURI,
		Database:       *dbName,
		ConnectTimeout: 10 * time.Second,
		MaxPoolSize:    10,
		MinPoolSize:    1,
		ReplicaSet:     *replicaSet,
	})
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Close(context.Background())

	// No Prometheus registry in the CLI, query logging only
	db := mongodb.NewInstrumentedDatabase(client.Database(), nil, logger)
	stockRepo := mongoRepo.NewStockRepository(db)
	parameterRepo := mongoRepo.NewParameterRepository(db)
	storeRepo := mongoRepo.NewStoreRepository(db)
	distributionRepo := mongoRepo.NewDistributionRepository(db)

	var txRunner domain.TransactionRunner = mongoRepo.NewNoopTransactionRunner()
	if *replicaSet != "" {
		txRunner = mongoRepo.NewSessionTransactionRunner(client)
	}

	service := application.NewDistributionService(
		stockRepo, parameterRepo, storeRepo, distributionRepo,
		txRunner, nil, nil, nil, logger,
	)

	result := service.Calculate(ctx, application.CalculateDistributionCommand{
		StockToDispatchID: stockID,
		UserID:            userID,
	})

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode result: %v", err)
	}
	fmt.Println(string(out))

	if !result.Success {
		os.Exit(1)
	}
}
