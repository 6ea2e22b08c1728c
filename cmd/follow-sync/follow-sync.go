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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/letsgo/activities/platform/cache"
	"github.com/letsgo/activities/platform/metrics"
	"github.com/letsgo/activities/platform/redis"
	"github.com/letsgo/activities/service/follower"
)

// Logging and telemetry identifiers.
const (
	component       = "follow-sync"
	namespaceSource = "source"
	subsystemQueue  = "queue"
	sourceService   = "sqs"
)

// Counter key prefixes.
const (
	keyFollowers = "followers"
	keyFollows   = "follows"
)

// Buildtime vars.
var (
	revision = "0000000-dev"
)

func main() {
	var (
		begin = time.Now()

		awsID         = flag.String("aws.id", "", "Identifier for AWS requests")
		awsRegion     = flag.String("aws.region", "us-east-1", "AWS Region to operate in")
		awsSecret     = flag.String("aws.secret", "", "Identification secret for AWS requests")
		redisAddr     = flag.String("redis.addr", ":6379", "Redis address to connect to")
		telemetryAddr = flag.String("telemetry.addr", ":9001", "HTTP bind address where prometheus telemetry is exposed")
	)
	flag.Parse()

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

	counts := cache.RedisCountService(redisPool)

	followerSource, err := follower.SQSSource(sqsAPI)
	if err != nil {
		logger.Log("err", err, "lifecycle", "abort")
		os.Exit(1)
	}

	followerSource = follower.InstrumentSourceMiddleware(
		component,
		sourceService,
		sourceErrCount,
		sourceOpCount,
		sourceOpLatency,
		sourceQueueLatency,
	)(followerSource)
	followerSource = follower.LogSourceMiddleware(sourceService, logger)(followerSource)

	logger.Log(
		"duration", time.Since(begin).Nanoseconds(),
		"lifecycle", "start",
		"sub", "worker",
	)

	err = consumeStateChanges(followerSource, counts)
	if err != nil {
		logger.Log("err", err, "lifecycle", "abort")
		os.Exit(1)
	}
}

func consumeStateChanges(
	src follower.Source,
	counts cache.CountService,
) error {
	for {
		change, err := src.Consume()
		if err != nil {
			if follower.IsEmptySource(err) {
				continue
			}
			return err
		}

		err = applyStateChange(counts, change)
		if err != nil {
			return err
		}

		err = src.Ack(change.AckID)
		if err != nil {
			return err
		}
	}
}

// applyStateChange keeps per-user follow counters in sync with accepted
// follow edges. Only transitions into and out of the accepted state move
// the counters.
func applyStateChange(
	counts cache.CountService,
	change *follower.StateChange,
) error {
	var (
		wasAccepted = isAccepted(change.Old)
		isNow       = isAccepted(change.New)
	)

	if wasAccepted == isNow {
		return nil
	}

	edge := change.New
	if edge == nil {
		edge = change.Old
	}

	apply := counts.Incr

	if wasAccepted {
		apply = counts.Decr
	}

	_, err := apply(
		change.Namespace,
		counterKey(keyFollowers, edge.UserID),
	)
	if err != nil {
		return err
	}

	_, err = apply(
		change.Namespace,
		counterKey(keyFollows, edge.FollowerID),
	)

	return err
}

func counterKey(prefix string, id uint64) string {
	return fmt.Sprintf("%s%s%d", prefix, cache.KeySeparator, id)
}

func isAccepted(f *follower.Follow) bool {
	return f != nil && f.Enabled && f.Status == follower.StatusAccepted
}
