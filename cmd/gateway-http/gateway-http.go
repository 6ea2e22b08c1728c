package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	awsSession "github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/go-kit/kit/log"
	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/letsgo/activities/core"
	handler "github.com/letsgo/activities/handler/http"
	"github.com/letsgo/activities/platform/cache"
	"github.com/letsgo/activities/platform/metrics"
	"github.com/letsgo/activities/platform/redis"
	"github.com/letsgo/activities/service/action"
	"github.com/letsgo/activities/service/activity"
	"github.com/letsgo/activities/service/block"
	"github.com/letsgo/activities/service/comment"
	"github.com/letsgo/activities/service/follower"
	"github.com/letsgo/activities/service/like"
	"github.com/letsgo/activities/service/rsvp"
	"github.com/letsgo/activities/service/user"
)

// Logging and telemetry identifiers.
const (
	component        = "gateway-http"
	namespaceService = "service"
	namespaceSource  = "source"
	subsystemQueue   = "queue"
	storeCache       = "redis"
	storeService     = "postgres"
)

// Versions.
const (
	versionCurrent = "v1"
)

// Supported source types.
const (
	sourceNop = "nop"
	sourceSQS = "sqs"
)

// Timeouts.
const (
	defaultReadTimeout  = 2 * time.Second
	defaultWriteTimeout = 3 * time.Second
)

// Buildtime vars.
var (
	revision = "0000000-dev"
)

func main() {
	var (
		begin = time.Now()

		aggregationLimit = flag.Int("feed.aggregation.limit", 5, "Number of items carried per nested aggregate")
		awsID            = flag.String("aws.id", "", "Identifier for AWS requests")
		awsRegion        = flag.String("aws.region", "us-east-1", "AWS Region to operate in")
		awsSecret        = flag.String("aws.secret", "", "Identification secret for AWS requests")
		listenAddr       = flag.String("listen.addr", ":8084", "HTTP bind address for main API")
		lookbackDays     = flag.Int("feed.lookback.days", 14, "Size of the upcoming feed look-back window in days")
		namespace        = flag.String("namespace", "letsgo", "Namespace all state is isolated in")
		postgresURL      = flag.String("postgres.url", "", "Postgres URL to connect to")
		redisAddr        = flag.String("redis.addr", ":6379", "Redis address to connect to")
		source           = flag.String("source", sourceNop, "Source type used for state change propagations")
		telemetryAddr    = flag.String("telemetry.addr", ":9000", "HTTP bind address where prometheus telemetry is exposed")
	)
	flag.Parse()

	// Setup logging.
	logger := log.With(
		log.NewJSONLogger(os.Stdout),
		"caller", log.Caller(3),
		"component", component,
		"revision", revision,
	)

	hostname, err := os.Hostname()
	if err != nil {
		logger.Log("err", err, "lifecycle", "abort")
		os.Exit(1)
	}

	logger = log.With(logger, "host", hostname)

	// Setup instrumentation.
	go func(addr string) {
		logger.Log(
			"duration", time.Since(begin).Nanoseconds(),
			"lifecycle", "start",
			"listen", addr,
			"sub", "telemetry",
		)

		http.Handle("/metrics", promhttp.Handler())

		err := http.ListenAndServe(addr, nil)
		if err != nil {
			logger.Log("err", err, "lifecycle", "abort", "sub", "telemetry")
			os.Exit(1)
		}
	}(*telemetryAddr)

	serviceErrCount, serviceOpCount, serviceOpLatency := metrics.KeyMetrics(
		namespaceService,
		metrics.FieldComponent,
		metrics.FieldMethod,
		metrics.FieldNamespace,
		metrics.FieldService,
		metrics.FieldStore,
	)

	sourceFieldKeys := []string{
		metrics.FieldComponent,
		metrics.FieldMethod,
		metrics.FieldNamespace,
		metrics.FieldSource,
		metrics.FieldStore,
	}

	sourceErrCount, sourceOpCount, sourceOpLatency := metrics.KeyMetrics(
		namespaceSource,
		sourceFieldKeys...,
	)

	sourceQueueLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespaceSource,
			Subsystem: subsystemQueue,
			Name:      "latency_seconds",
			Help:      "Distribution of message queue latency in seconds",
			Buckets:   metrics.BucketsQueue,
		},
		sourceFieldKeys,
	)
	prometheus.MustRegister(sourceQueueLatency)

	// Setup clients.
	var (
		aSession = awsSession.New(&aws.Config{
			Credentials: credentials.NewStaticCredentials(*awsID, *awsSecret, ""),
			Region:      aws.String(*awsRegion),
		})
		redisPool = redis.Pool(*redisAddr, "")
		sqsAPI    = sqs.New(aSession)
	)

	pgClient, err := sqlx.Connect(storeService, *postgresURL)
	if err != nil {
		logger.Log("err", err, "lifecycle", "abort")
		os.Exit(1)
	}

	// Setup caches.
	countsCache := cache.RedisCountService(redisPool)

	// Setup sources.
	var followerSource follower.Source

	switch *source {
	case sourceNop:
		followerSource = follower.NopSource()
	case sourceSQS:
		followerSource, err = follower.SQSSource(sqsAPI)
		if err != nil {
			logger.Log("err", err, "lifecycle", "abort")
			os.Exit(1)
		}
	default:
		logger.Log(
			"err", fmt.Sprintf("Source type '%s' not supported", *source),
			"lifecycle", "abort",
		)
		os.Exit(1)
	}

	followerSource = follower.InstrumentSourceMiddleware(
		component,
		*source,
		sourceErrCount,
		sourceOpCount,
		sourceOpLatency,
		sourceQueueLatency,
	)(followerSource)
	followerSource = follower.LogSourceMiddleware(*source, logger)(followerSource)

	// Setup services.
	var actions action.Service
	actions = action.PostgresService(pgClient)
	actions = action.InstrumentServiceMiddleware(
		component,
		storeService,
		serviceErrCount,
		serviceOpCount,
		serviceOpLatency,
	)(actions)
	actions = action.LogServiceMiddleware(logger, storeService)(actions)

	var activities activity.Service
	activities = activity.PostgresService(pgClient)
	activities = activity.InstrumentServiceMiddleware(
		component,
		storeService,
		serviceErrCount,
		serviceOpCount,
		serviceOpLatency,
	)(activities)
	activities = activity.LogServiceMiddleware(logger, storeService)(activities)

	var blocks block.Service
	blocks = block.PostgresService(pgClient)
	blocks = block.InstrumentServiceMiddleware(
		component,
		storeService,
		serviceErrCount,
		serviceOpCount,
		serviceOpLatency,
	)(blocks)
	blocks = block.LogServiceMiddleware(logger, storeService)(blocks)

	var comments comment.Service
	comments = comment.PostgresService(pgClient)
	comments = comment.InstrumentServiceMiddleware(
		component,
		storeService,
		serviceErrCount,
		serviceOpCount,
		serviceOpLatency,
	)(comments)
	comments = comment.LogServiceMiddleware(logger, storeService)(comments)

	var follows follower.Service
	follows = follower.PostgresService(pgClient)
	follows = follower.InstrumentServiceMiddleware(
		component,
		storeService,
		serviceErrCount,
		serviceOpCount,
		serviceOpLatency,
	)(follows)
	follows = follower.LogServiceMiddleware(logger, storeService)(follows)
	// Combine follower service and source.
	follows = follower.SourcingServiceMiddleware(followerSource)(follows)

	var likes like.Service
	likes = like.PostgresService(pgClient)
	likes = like.InstrumentServiceMiddleware(
		component,
		storeService,
		serviceErrCount,
		serviceOpCount,
		serviceOpLatency,
	)(likes)
	likes = like.LogServiceMiddleware(logger, storeService)(likes)
	// Wrap service with caching.
	likes = like.CacheServiceMiddleware(countsCache)(likes)

	var rsvps rsvp.Service
	rsvps = rsvp.PostgresService(pgClient)
	rsvps = rsvp.InstrumentServiceMiddleware(
		component,
		storeService,
		serviceErrCount,
		serviceOpCount,
		serviceOpLatency,
	)(rsvps)
	rsvps = rsvp.LogServiceMiddleware(logger, storeService)(rsvps)
	// Wrap service with caching.
	rsvps = rsvp.CacheServiceMiddleware(countsCache)(rsvps)

	var users user.Service
	users = user.PostgresService(pgClient)
	users = user.InstrumentServiceMiddleware(
		component,
		storeService,
		serviceErrCount,
		serviceOpCount,
		serviceOpLatency,
	)(users)
	users = user.LogServiceMiddleware(logger, storeService)(users)

	// Setup core.
	var (
		resolveActivity = core.ResolveActivity(
			activities,
			comments,
			likes,
			rsvps,
			users,
			*aggregationLimit,
		)
		resolveComment = core.ResolveComment(
			comments,
			likes,
			users,
			*aggregationLimit,
		)
		lookback = time.Duration(*lookbackDays) * 24 * time.Hour
	)

	// Setup middlewares.
	withUser := handler.Chain(
		handler.CtxPrepare(versionCurrent),
		handler.Log(logger),
		handler.Instrument(component),
		handler.SecureHeaders(),
		handler.CORS(),
		handler.Gzip(),
		handler.CtxUser(users, *namespace),
	)

	// Setup Router.
	router := mux.NewRouter().StrictSlash(true)

	router.Methods("GET").Path(`/health`).Name("healthcheck").HandlerFunc(
		handler.Wrap(
			handler.CtxPrepare(versionCurrent),
			handler.Health(pgClient, redisPool),
		),
	)

	current := router.PathPrefix(fmt.Sprintf("/%s", versionCurrent)).Subrouter()

	// Activity routes.
	current.Methods("GET").Path(`/activities/{activityID:[0-9]+}`).Name("activityRetrieve").HandlerFunc(
		handler.Wrap(
			withUser,
			handler.ActivityRetrieve(
				core.ActivityRetrieve(activities, follows, rsvps, resolveActivity),
				*namespace,
			),
		),
	)

	// Feed routes.
	current.Methods("GET").Path(`/feed`).Name("feedSelf").HandlerFunc(
		handler.Wrap(
			withUser,
			handler.FeedSelf(
				core.FeedSelf(actions, activities, comments, resolveActivity, resolveComment),
				*namespace,
			),
		),
	)

	current.Methods("GET").Path(`/feed/public`).Name("feedPublic").HandlerFunc(
		handler.Wrap(
			withUser,
			handler.FeedPublic(
				core.FeedPublic(activities, resolveActivity),
				*namespace,
			),
		),
	)

	current.Methods("GET").Path(`/users/{userID:[0-9]+}/feed`).Name("feedProfile").HandlerFunc(
		handler.Wrap(
			withUser,
			handler.FeedProfile(
				core.FeedProfile(activities, follows, resolveActivity),
				*namespace,
			),
		),
	)

	current.Methods("GET").Path(`/users/{userID:[0-9]+}/feed/upcoming`).Name("feedUpcoming").HandlerFunc(
		handler.Wrap(
			withUser,
			handler.FeedUpcoming(
				core.FeedUpcoming(activities, rsvps, resolveActivity, lookback),
				*namespace,
			),
		),
	)

	// Relation routes.
	current.Methods("GET").Path(`/users/{userID:[0-9]+}/follow-state`).Name("followState").HandlerFunc(
		handler.Wrap(
			withUser,
			handler.FollowState(
				core.FollowState(blocks, follows),
				*namespace,
			),
		),
	)

	current.Methods("POST").Path(`/users/follow-states`).Name("followStates").HandlerFunc(
		handler.Wrap(
			withUser,
			handler.FollowStates(
				users,
				core.FollowStates(blocks, follows),
				*namespace,
			),
		),
	)

	// Setup server.
	server := &http.Server{
		Addr:         *listenAddr,
		Handler:      router,
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
	}

	logger.Log(
		"duration", time.Since(begin).Nanoseconds(),
		"lifecycle", "start",
		"listen", *listenAddr,
		"sub", "api",
	)

	err = server.ListenAndServe()
	if err != nil {
		logger.Log("err", err, "lifecycle", "abort", "sub", "api")
		os.Exit(1)
	}
}
