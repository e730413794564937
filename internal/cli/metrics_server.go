package cli

import (
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StartMetricsServer serves g on addr under /metrics. The returned func stops
// the server and waits for it to exit.
func StartMetricsServer(addr string, g prometheus.Gatherer) (string, func(), error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, fmt.Errorf("failed to listen on metrics addr %s: %w", addr, err)
	}

	router := mux.NewRouter()
	router.PathPrefix("/metrics").Handler(promhttp.HandlerFor(g, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Handler:           handlers.CompressHandler(router),
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = srv.Serve(listener)
	}()

	return "http://" + listener.Addr().String() + "/metrics", func() {
		_ = srv.Close()
		wg.Wait()
	}, nil
}
