package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quotescout/m/v2/app/auth"
	"quotescout/m/v2/app/config"
	"quotescout/m/v2/app/db/mongo"
	"quotescout/m/v2/app/db/redis"
	"quotescout/m/v2/app/ledger"
	"quotescout/m/v2/app/openai"
	"quotescout/m/v2/app/payments"
	"quotescout/m/v2/app/pdf"
	"quotescout/m/v2/app/quotes"
	"quotescout/m/v2/app/server"
	"quotescout/m/v2/app/status"
	"quotescout/m/v2/app/util"
	"quotescout/m/v2/app/workers"

	"github.com/DataDog/datadog-go/v5/statsd"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v78"
	"github.com/valyala/fasthttp"
)

func main() {
	done := make(chan struct{}, 1)
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	_ = godotenv.Load()

	env := util.Env("ENV", "dev")
	dataDogClient, err := statsd.New(util.Env("DATADOG_AGENT_ADDRESS", "127.0.0.1:8125"), statsd.WithNamespace("quotescout."))
	if err != nil && env == "production" {
		log.Fatalf("error creating main DataDog client: %v", err)
	}

	cfg := &config.Config{
		AuthServiceKey:       util.Env("SUPABASE_SERVICE_KEY"),
		AuthURL:              util.Env("SUPABASE_URL"),
		DataDogClient:        dataDogClient,
		Environment:          env,
		FrontendURL:          util.Env("FRONTEND_URL", "http://localhost:3000"),
		ListenAddress:        util.Env("BACKEND_LISTEN_ADDRESS", ":8080"),
		MongoDBConnection:    util.Env("MONGO_DB_CONNECTION_STRING"),
		MongoDBName:          util.Env("MONGO_DB_NAME", "quotescout"),
		OpenAIAPIEndpoint:    util.Env("OPENAI_API_ENDPOINT", openai.DefaultEndpoint),
		OpenAIAPIKey:         util.Env("OPENAI_API_KEY"),
		StatusWorkerInterval: time.Minute,
		StripeEndpointSecret: util.Env("STRIPE_SIGNING_SECRET"),
		StripeEndpointSuffix: util.Env("STRIPE_ENDPOINT_SUFFIX", ""),
		StripeToken:          util.Env("STRIPE_SECRET_KEY"),
		Redis: config.Redis{
			Host:     util.Env("REDIS_HOST"),
			Port:     util.Env("REDIS_PORT", "6379"),
			Password: util.Env("REDIS_PASSWORD", ""),
		},
	}

	err = dataDogClient.Count("main.start", 1, []string{"env:" + cfg.Environment}, 1)
	if err != nil {
		log.Errorf("error sending metric: %v", err)
	}
	if cfg.Environment == "production" {
		log.SetFormatter(&log.JSONFormatter{
			DisableTimestamp: true,
		})
	} else {
		log.SetFormatter(&log.TextFormatter{
			FullTimestamp: true,
			DisableColors: false,
		})
		log.SetLevel(log.TraceLevel)
	}

	redisClient := redis.NewClient(cfg.Redis)
	mongoClient := mongo.NewClient(cfg.MongoDBConnection, cfg.MongoDBName)

	stripe.Key = cfg.StripeToken
	stripe.SetAppInfo(&stripe.AppInfo{
		Name:    "quotescout",
		Version: "0.0.1",
		URL:     cfg.FrontendURL,
	})

	verifier := auth.NewVerifier(cfg, redisClient)
	usageLedger := ledger.NewLedger(mongoClient)
	openAI := openai.NewAPI(cfg)
	extractor := quotes.NewExtractor(openAI)
	renderer := pdf.NewRenderer()
	billing := payments.NewStripe(cfg, mongoClient, usageLedger)
	srv := server.NewServer(cfg, verifier, mongoClient, usageLedger, extractor, renderer, billing, billing)

	statusWorker := workers.NewWorker(cfg.StatusWorkerInterval, status.New(mongoClient, redisClient, openAI, dataDogClient).Publish)
	go statusWorker.Start()

	go TearDown(sigs, done, mongoClient, statusWorker)

	handler := fasthttp.TimeoutHandler(srv.Router().Handler, time.Second*120, "Request timeout")
	go func() {
		err := fasthttp.ListenAndServe(cfg.ListenAddress, handler)
		util.Assert(err == nil, "ListenAndServe:", err)
	}()
	log.Infof("quotescout started successfully on %s", cfg.ListenAddress)

	<-done
	log.Info("Done")
}

func TearDown(sigs chan os.Signal, done chan struct{}, mongoClient *mongo.Client, statusWorker *workers.Worker) {
	<-sigs
	log.Info("quotescout shutting down")
	statusWorker.StopWorker()

	err := mongoClient.Disconnect(context.Background())
	if err != nil {
		log.Errorf("TearDown: Disconnecting from MongoDB: %v", err)
	}
	done <- struct{}{}
}
