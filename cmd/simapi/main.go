package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	kinesisService "github.com/aws/aws-sdk-go-v2/service/kinesis"
	"github.com/gorilla/mux"

	"github.com/Vin-it-9/Rockwell-Hackthon/internal/httpapi"
	"github.com/Vin-it-9/Rockwell-Hackthon/internal/runstore"
	"github.com/Vin-it-9/Rockwell-Hackthon/internal/simservice"
	"github.com/Vin-it-9/Rockwell-Hackthon/internal/telemetry"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	awsCfg, err := config.LoadDefaultConfig(context.Background())
	if err != nil {
		slog.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	var runStorage runstore.RunStorage
	storageType := os.Getenv("STORAGE_TYPE")

	if storageType == "dynamodb" {
		dynamoClient := dynamodb.NewFromConfig(awsCfg)
		tableName := os.Getenv("DYNAMODB_RUNS_TABLE")
		if tableName == "" {
			slog.Error("DYNAMODB_RUNS_TABLE environment variable not set")
			os.Exit(1)
		}
		runStorage = runstore.NewDynamoRunStore(dynamoClient, tableName)
		slog.Info("using DynamoDB run storage", "table", tableName)
	} else {
		runStorage = runstore.NewMemoryRunStore()
		slog.Info("using in-memory run storage")
	}

	var streamer *telemetry.Streamer
	var feed *telemetry.Feed
	moveStream := os.Getenv("KINESIS_MOVE_STREAM")
	if moveStream != "" {
		kinesisClient := kinesisService.NewFromConfig(awsCfg)
		streamer = telemetry.NewStreamer(kinesisClient, moveStream)

		feed = telemetry.NewFeed(500)
		consumer := telemetry.NewConsumer(kinesisClient, moveStream, feed)
		go consumer.Start(context.Background())
	} else {
		streamer = telemetry.NewStreamer(nil, "")
	}

	simService := simservice.New(runStorage, streamer)
	handler := httpapi.NewHandler(simService, feed)

	router := mux.NewRouter()

	pathPrefix := os.Getenv("PATH_PREFIX")
	if pathPrefix != "" {
		simRouter := router.PathPrefix(pathPrefix).Subrouter()
		handler.RegisterRoutes(simRouter)
	} else {
		handler.RegisterRoutes(router)
	}

	router.Use(httpapi.CORSMiddleware)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	slog.Info("simapi starting", "port", port)
	if err := http.ListenAndServe(":"+port, router); err != nil {
		slog.Error("simapi failed to start", "error", err)
		os.Exit(1)
	}
}
