package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"awslite/internal/adminengine"
	"awslite/internal/apigatewayengine"
	"awslite/internal/cloudwatchlogsengine"
	"awslite/internal/cognitoengine"
	"awslite/internal/dynamodbengine"
	"awslite/internal/eventbridgeengine"
	"awslite/internal/firehoseengine"
	"awslite/internal/httputil"
	"awslite/internal/kinesisengine"
	"awslite/internal/kmsengine"
	"awslite/internal/lambdaengine"
	"awslite/internal/memorydbengine"
	"awslite/internal/s3engine"
	"awslite/internal/secretsmanagerengine"
	"awslite/internal/sesengine"
	"awslite/internal/sfnengine"
	"awslite/internal/snsengine"
	"awslite/internal/sqsengine"
	"awslite/internal/ssmengine"
)

var (
	flagSQSPort             = pflag.Int("sqs-port", 4566, "The SQS server port")
	flagS3Port              = pflag.Int("s3-port", 4567, "The S3 server port")
	flagSNSPort             = pflag.Int("sns-port", 4568, "The SNS server port")
	flagDynamoDBPort        = pflag.Int("dynamodb-port", 4569, "The DynamoDB server port")
	flagAdminPort           = pflag.Int("admin-port", 4570, "The admin/introspection server port")
	flagLambdaPort          = pflag.Int("lambda-port", 4571, "The Lambda server port")
	flagFirehosePort        = pflag.Int("firehose-port", 4572, "The Firehose server port")
	flagMemoryDBPort        = pflag.Int("memorydb-port", 4573, "The MemoryDB server port")
	flagCognitoPort         = pflag.Int("cognito-port", 4574, "The Cognito server port")
	flagAPIGatewayPort      = pflag.Int("apigateway-port", 4575, "The API Gateway server port")
	flagKMSPort             = pflag.Int("kms-port", 4576, "The KMS server port")
	flagSecretsManagerPort  = pflag.Int("secretsmanager-port", 4577, "The Secrets Manager server port")
	flagKinesisPort         = pflag.Int("kinesis-port", 4578, "The Kinesis server port")
	flagEventBridgePort     = pflag.Int("eventbridge-port", 4579, "The EventBridge server port")
	flagStepFunctionsPort   = pflag.Int("stepfunctions-port", 4580, "The Step Functions server port")
	flagSSMPort             = pflag.Int("ssm-port", 4581, "The SSM server port")
	flagCloudWatchLogsPort  = pflag.Int("cloudwatchlogs-port", 4582, "The CloudWatch Logs server port")
	flagSESPort             = pflag.Int("ses-port", 4583, "The SES server port")
	flagRegion              = pflag.String("region", sqsengine.DefaultRegion, "The default AWS region")
	flagAccountID           = pflag.String("account-id", sqsengine.DefaultAccountID, "The default AWS account id")
	flagShutdownGracePeriod = pflag.Duration("shutdown-grace-period", 30*time.Second, "The server shutdown grace period")
	flagLogFormat           = pflag.String("log-format", "json", "The log format (json|text)")
	flagLogLevel            = pflag.String("log-level", slog.LevelInfo.String(),
		fmt.Sprintf(
			"The log level (%s>%s>%s>%s) (not case sensitive, from least to most restrictive)",
			slog.LevelDebug.String(),
			slog.LevelInfo.String(),
			slog.LevelWarn.String(),
			slog.LevelError.String(),
		))
)

func main() {
	pflag.Parse()

	//
	// logger setup
	//
	logLeveler := new(slog.LevelVar)
	if err := logLeveler.UnmarshalText([]byte(*flagLogLevel)); err != nil {
		fmt.Fprintf(os.Stderr, "invalid log level: %v\n", err)
		os.Exit(1)
	}
	switch *flagLogFormat {
	case "text":
		slog.SetDefault(
			slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				AddSource: false,
				Level:     logLeveler,
			})),
		)
	default:
		slog.SetDefault(
			slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				AddSource: false,
				Level:     logLeveler,
			})),
		)
	}
	slog.Info("awslite starting", slog.String("log_level", logLeveler.Level().String()))

	//
	// server setup
	//
	clock := clockwork.NewRealClock()
	region, account := *flagRegion, *flagAccountID

	sqsServer := sqsengine.NewServer(clock)
	s3Server := s3engine.NewServer(clock, region)
	snsServer := snsengine.NewServer(clock, region, account)
	dynamodbServer := dynamodbengine.NewServer(clock)
	kinesisServer := kinesisengine.NewServer(clock, region, account)
	firehoseServer := firehoseengine.NewServer(clock, region, account)
	eventbridgeServer := eventbridgeengine.NewServer(clock, region, account)
	sfnServer := sfnengine.NewServer(clock, region, account)
	ssmServer := ssmengine.NewServer(clock)
	cloudwatchlogsServer := cloudwatchlogsengine.NewServer(clock)
	kmsServer := kmsengine.NewServer(clock, region, account)
	secretsmanagerServer := secretsmanagerengine.NewServer(clock, region, account)
	cognitoServer := cognitoengine.NewServer(clock, region, account)
	memorydbServer := memorydbengine.NewServer(clock, region, account)
	lambdaServer := lambdaengine.NewServer(clock, region, account)
	apigatewayServer := apigatewayengine.NewServer(clock, region, account)
	sesServer := sesengine.NewServer(clock)

	defaultQueue, createErr := sqsengine.NewQueueFromCreateQueueInput(clock, sqsengine.Authorization{
		AccountID: account,
		Region:    sqsengine.Some(region),
	}, &sqs.CreateQueueInput{
		QueueName: aws.String(sqsengine.DefaultQueueName),
	})
	if createErr != nil {
		slog.Error("failed to create default queue", slog.Any("err", createErr))
		os.Exit(1)
	}
	queues := sqsServer.Accounts().EnsureQueues(account)
	if err := queues.AddQueue(defaultQueue); err != nil {
		slog.Error("failed to register default queue", slog.Any("err", err))
		os.Exit(1)
	}
	defaultQueue.Start(context.Background())
	slog.Info("created default queue", slog.String("queue_url", defaultQueue.URL))

	adminServer := adminengine.NewServer(
		adminengine.Source{Name: "sqs", Entities: func() []any {
			var out []any
			for q := range sqsServer.EachQueue() {
				out = append(out, q.Name)
			}
			return out
		}},
		adminengine.Source{Name: "s3", Entities: func() []any {
			return adminengine.Collect(s3Server.Buckets().ListBuckets())
		}},
		adminengine.Source{Name: "sns", Entities: func() []any {
			return adminengine.Collect(snsServer.Registry().ListTopics())
		}},
		adminengine.Source{Name: "dynamodb", Entities: func() []any {
			var out []any
			dynamodbServer.Registry().EachTable(func(t *dynamodbengine.Table) bool {
				out = append(out, t.Name)
				return true
			})
			return out
		}},
		adminengine.Source{Name: "kinesis", Entities: func() []any {
			return adminengine.Collect(kinesisServer.Registry().ListStreams())
		}},
		adminengine.Source{Name: "firehose", Entities: func() []any {
			return adminengine.Collect(firehoseServer.Registry().ListDeliveryStreams())
		}},
		adminengine.Source{Name: "eventbridge", Entities: func() []any {
			var out []any
			eventbridgeServer.Registry().EachBus(func(b *eventbridgeengine.EventBus) bool {
				out = append(out, b.Name)
				return true
			})
			return out
		}},
		adminengine.Source{Name: "stepfunctions", Entities: func() []any {
			return adminengine.Collect(sfnServer.Registry().ListStateMachines())
		}},
		adminengine.Source{Name: "ssm", Entities: func() []any {
			return adminengine.Collect(ssmServer.Registry().DescribeParameters())
		}},
		adminengine.Source{Name: "cloudwatchlogs", Entities: func() []any {
			return adminengine.Collect(cloudwatchlogsServer.Registry().DescribeLogGroups(""))
		}},
		adminengine.Source{Name: "kms", Entities: func() []any {
			return adminengine.Collect(kmsServer.Registry().ListKeys())
		}},
		adminengine.Source{Name: "secretsmanager", Entities: func() []any {
			return adminengine.Collect(secretsmanagerServer.Registry().ListSecrets())
		}},
		adminengine.Source{Name: "cognito", Entities: func() []any {
			return adminengine.Collect(cognitoServer.Registry().ListUserPools())
		}},
		adminengine.Source{Name: "memorydb", Entities: func() []any {
			return adminengine.Collect(memorydbServer.Registry().ListClusters())
		}},
		adminengine.Source{Name: "lambda", Entities: func() []any {
			return adminengine.Collect(lambdaServer.Registry().ListFunctions())
		}},
		adminengine.Source{Name: "apigateway", Entities: func() []any {
			return adminengine.Collect(apigatewayServer.Registry().ListRestAPIs())
		}},
		adminengine.Source{Name: "ses", Entities: func() []any {
			return adminengine.Collect(sesServer.Registry().ListIdentities())
		}},
	)

	type namedServer struct {
		name   string
		addr   string
		http   *http.Server
	}
	servers := []namedServer{
		{"sqs", fmt.Sprintf(":%d", *flagSQSPort), &http.Server{Handler: httputil.Logged(sqsServer)}},
		{"s3", fmt.Sprintf(":%d", *flagS3Port), &http.Server{Handler: httputil.Logged(s3Server)}},
		{"sns", fmt.Sprintf(":%d", *flagSNSPort), &http.Server{Handler: httputil.Logged(snsServer)}},
		{"dynamodb", fmt.Sprintf(":%d", *flagDynamoDBPort), &http.Server{Handler: httputil.Logged(dynamodbServer)}},
		{"admin", fmt.Sprintf(":%d", *flagAdminPort), &http.Server{Handler: httputil.Logged(adminServer)}},
		{"lambda", fmt.Sprintf(":%d", *flagLambdaPort), &http.Server{Handler: httputil.Logged(lambdaServer)}},
		{"firehose", fmt.Sprintf(":%d", *flagFirehosePort), &http.Server{Handler: httputil.Logged(firehoseServer)}},
		{"memorydb", fmt.Sprintf(":%d", *flagMemoryDBPort), &http.Server{Handler: httputil.Logged(memorydbServer)}},
		{"cognito", fmt.Sprintf(":%d", *flagCognitoPort), &http.Server{Handler: httputil.Logged(cognitoServer)}},
		{"apigateway", fmt.Sprintf(":%d", *flagAPIGatewayPort), &http.Server{Handler: httputil.Logged(apigatewayServer)}},
		{"kms", fmt.Sprintf(":%d", *flagKMSPort), &http.Server{Handler: httputil.Logged(kmsServer)}},
		{"secretsmanager", fmt.Sprintf(":%d", *flagSecretsManagerPort), &http.Server{Handler: httputil.Logged(secretsmanagerServer)}},
		{"kinesis", fmt.Sprintf(":%d", *flagKinesisPort), &http.Server{Handler: httputil.Logged(kinesisServer)}},
		{"eventbridge", fmt.Sprintf(":%d", *flagEventBridgePort), &http.Server{Handler: httputil.Logged(eventbridgeServer)}},
		{"stepfunctions", fmt.Sprintf(":%d", *flagStepFunctionsPort), &http.Server{Handler: httputil.Logged(sfnServer)}},
		{"ssm", fmt.Sprintf(":%d", *flagSSMPort), &http.Server{Handler: httputil.Logged(ssmServer)}},
		{"cloudwatchlogs", fmt.Sprintf(":%d", *flagCloudWatchLogsPort), &http.Server{Handler: httputil.Logged(cloudwatchlogsServer)}},
		{"ses", fmt.Sprintf(":%d", *flagSESPort), &http.Server{Handler: httputil.Logged(sesServer)}},
	}
	for i := range servers {
		servers[i].http.Addr = servers[i].addr
	}

	group, groupCtx := errgroup.WithContext(context.Background())
	group.Go(func() error {
		t := time.NewTicker(10 * time.Second)
		prevTimestamp := time.Now()
		defer t.Stop()
		prevStats := make(map[string]sqsengine.QueueStats)
		for {
			select {
			case <-groupCtx.Done():
				return nil
			case <-t.C:
				prevStats = printStatistics(sqsServer, time.Since(prevTimestamp), prevStats)
				prevTimestamp = time.Now()
			}
		}
	})
	for _, srv := range servers {
		srv := srv
		group.Go(func() error {
			slog.Info(srv.name+" server listening", slog.String("addr", srv.addr))
			return srv.http.ListenAndServe()
		})
	}
	group.Go(func() error {
		updateLogLevel := make(chan os.Signal, 1)
		updateLogLevelSignals := []os.Signal{
			syscall.SIGUSR1,
			syscall.SIGUSR2,
		}
		signal.Notify(updateLogLevel, updateLogLevelSignals...)
		defer signal.Reset(updateLogLevelSignals...)
		increaseLogLevel := func() {
			switch logLeveler.Level() {
			case slog.LevelInfo:
				logLeveler.Set(slog.LevelDebug)
			case slog.LevelWarn:
				logLeveler.Set(slog.LevelInfo)
			case slog.LevelError:
				logLeveler.Set(slog.LevelWarn)
			}
		}
		decreaseLogLevel := func() {
			switch logLeveler.Level() {
			case slog.LevelDebug:
				logLeveler.Set(slog.LevelInfo)
			case slog.LevelInfo:
				logLeveler.Set(slog.LevelWarn)
			case slog.LevelWarn:
				logLeveler.Set(slog.LevelError)
			}
		}
		for {
			select {
			case <-groupCtx.Done():
				return nil
			case sig := <-updateLogLevel:
				switch sig {
				case syscall.SIGUSR1:
					decreaseLogLevel()
				case syscall.SIGUSR2:
					increaseLogLevel()
				}
				continue
			}
		}
	})
	group.Go(func() error {
		ctx, done := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer done()
		shutdownAll := func() error {
			shutdownContext, shutdownComplete := context.WithTimeout(context.Background(), *flagShutdownGracePeriod)
			defer shutdownComplete()
			var firstErr error
			for _, srv := range servers {
				if err := srv.http.Shutdown(shutdownContext); err != nil && firstErr == nil {
					firstErr = err
				}
			}
			return firstErr
		}
		select {
		case <-groupCtx.Done():
			return shutdownAll()
		case <-ctx.Done():
			sqsServer.Close()
			return shutdownAll()
		}
	})
	if err := group.Wait(); err != nil {
		if !errors.Is(err, http.ErrServerClosed) {
			slog.Info("server exiting with error", slog.Any("err", err))
			os.Exit(1)
		}
	}
}

func printStatistics(server *sqsengine.Server, elapsed time.Duration, prev map[string]sqsengine.QueueStats) map[string]sqsengine.QueueStats {
	elapsedSeconds := float64(elapsed) / float64(time.Second)
	newStats := make(map[string]sqsengine.QueueStats)
	for q := range server.EachQueue() {
		prevStats := prev[q.Name]
		stats := q.Stats()
		changeMessagesSent := float64(stats.TotalMessagesSent - prevStats.TotalMessagesSent)
		changeMessagesReceived := float64(stats.TotalMessagesReceived - prevStats.TotalMessagesReceived)
		changeMessagesChangedVisibility := float64(stats.TotalMessagesChangedVisibility - prevStats.TotalMessagesChangedVisibility)
		changeMessagesDeleted := float64(stats.TotalMessagesDeleted - prevStats.TotalMessagesDeleted)
		changeMessagesPurged := float64(stats.TotalMessagesPurged - prevStats.TotalMessagesPurged)
		slog.Debug(
			"statistics",
			slog.String("queue", q.Name),
			slog.Int64("num_messages", stats.NumMessages),
			slog.Int64("num_messages_ready", stats.NumMessagesReady),
			slog.Int64("num_messages_inflight", stats.NumMessagesInflight),
			slog.Int64("num_messages_delayed", stats.NumMessagesDelayed),
			slog.String("sent_rate", fmt.Sprintf("%0.2f/sec", changeMessagesSent/elapsedSeconds)),
			slog.String("received_rate", fmt.Sprintf("%0.2f/sec", changeMessagesReceived/elapsedSeconds)),
			slog.String("changed_visibility_rate", fmt.Sprintf("%0.2f/sec", changeMessagesChangedVisibility/elapsedSeconds)),
			slog.String("deleted_rate", fmt.Sprintf("%0.2f/sec", changeMessagesDeleted/elapsedSeconds)),
			slog.String("purged_rate", fmt.Sprintf("%0.2f/sec", changeMessagesPurged/elapsedSeconds)),
		)
		if hot := q.HotMessageGroups(); len(hot) > 0 {
			slog.Info("hot message groups", slog.String("queue", q.Name), slog.Any("groups", hot))
		}
		newStats[q.Name] = stats
	}
	return newStats
}
