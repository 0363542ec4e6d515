// Command pipelined is a demo wiring of the pipeline core: it starts a
// Manager, creates one pipeline around a SimpleGraph, optionally attaches
// the NATS line-protocol connector as a forward-channel producer, optionally
// runs a warehouse Avro checkpointer (it is not connected to the pipeline's
// outputs, so nothing submits records to it), and serves Prometheus metrics.
//
// Modeled on the teacher's cmd/cc-backend/main.go: flag parsing, JSON
// config loading, signal-driven graceful shutdown via a sync.WaitGroup.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/ClusterCockpit/cc-pipeline/internal/cclog"
	"github.com/ClusterCockpit/cc-pipeline/internal/config"
	"github.com/ClusterCockpit/cc-pipeline/internal/connectors/natsline"
	"github.com/ClusterCockpit/cc-pipeline/internal/pipeline"
	"github.com/ClusterCockpit/cc-pipeline/pkg/warehouse"
)

func main() {
	var flagConfigFile string
	flag.StringVar(&flagConfigFile, "config", "", "Path to a pipeline config JSON file")
	flag.Parse()

	if err := config.Init(flagConfigFile); err != nil {
		cclog.Fatalf("[PIPELINED]> config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	metrics := pipeline.NewMetrics(prometheus.DefaultRegisterer)

	mgr := pipeline.NewManager(config.Keys.ManagerDepth,
		rate.Limit(config.Keys.CreateRatePerSec), config.Keys.CreateBurst)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		mgr.Run(ctx)
	}()

	graph := pipeline.NewSimpleGraph("out")
	addr, err := mgr.Create(ctx, pipeline.CreateSpec{Graph: graph, Depth: config.Keys.PipelineDepth})
	if err != nil {
		cclog.Fatalf("[PIPELINED]> creating demo pipeline: %v", err)
	}
	cclog.Infof("[PIPELINED]> demo pipeline %d running", addr.ID())

	var natsConn *natsline.Connector
	if config.Keys.Nats.Address != "" {
		natsConn, err = natsline.NewConnector(config.Keys.Nats, addr, pipeline.DefaultInputPort)
		if err != nil {
			cclog.Errorf("[PIPELINED]> NATS connector unavailable: %v", err)
		} else if err := natsConn.Start(config.Keys.Nats.Subscriptions); err != nil {
			cclog.Errorf("[PIPELINED]> NATS subscribe: %v", err)
		}
	}

	var checkpointer *warehouse.Checkpointer
	if config.Keys.Warehouse.CheckpointDir != "" {
		schema := warehouse.NewSchema("event", []warehouse.FieldDef{
			{Name: "measurement", Type: warehouse.TypeString},
			{Name: "cluster", Type: warehouse.TypeString},
			{Name: "host", Type: warehouse.TypeString},
		})
		interval := 60 * time.Second
		if d, err := time.ParseDuration(config.Keys.Warehouse.CheckpointInterval); err == nil {
			interval = d
		}
		checkpointer, err = warehouse.NewCheckpointer(schema, config.Keys.Warehouse.CheckpointDir, interval, 1024)
		if err != nil {
			cclog.Errorf("[PIPELINED]> warehouse checkpointer unavailable: %v", err)
		} else {
			wg.Add(1)
			go func() {
				defer wg.Done()
				checkpointer.Run(ctx)
			}()
		}
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	metricsSrv := &http.Server{Addr: config.Keys.MetricsAddr, Handler: mux, ReadTimeout: 10 * time.Second}
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			cclog.Errorf("[PIPELINED]> metrics server: %v", err)
		}
	}()

	metrics.SetOverflowDepth("demo", 0)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	cclog.Info("[PIPELINED]> shutting down")

	if natsConn != nil {
		natsConn.Close()
	}
	metricsSrv.Shutdown(context.Background())
	cancel()
	mgr.Wait()
	wg.Wait()
	cclog.Info("[PIPELINED]> graceful shutdown complete")
}
