// Command schedulerdemo runs a standalone Scheduler with a small set of
// demo tasks and exposes its health, metrics, and debug surfaces over
// plain net/http — no router library, matching the control plane this
// scheduler core was split out of.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/riftengine/taskcore/clock"
	"github.com/riftengine/taskcore/scheduler"
	"github.com/riftengine/taskcore/taskid"
	"github.com/riftengine/taskcore/trace"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func main() {
	hub := trace.NewHub()

	var sink trace.Sink
	if addr := os.Getenv("TASKCORE_REDIS_ADDR"); addr != "" {
		redisSink, err := trace.NewRedisSink(addr, os.Getenv("TASKCORE_REDIS_PASSWORD"), 0, "taskcore:trace")
		if err != nil {
			log.Printf("trace: continuing without redis sink: %v", err)
		} else {
			sink = redisSink
			defer redisSink.Close()
		}
	}

	cfg := scheduler.DefaultConfig()
	if n := os.Getenv("TASKCORE_WORKERS"); n != "" {
		var workers int
		fmt.Sscanf(n, "%d", &workers)
		if workers > 0 {
			cfg.Workers = workers
		}
	}

	sched := scheduler.New(cfg, clock.Monotonic{}, hub, sink)
	sched.Start()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go hub.Run(ctx)
	go sched.Run(ctx, 16*time.Millisecond)

	seedDemoWorkload(sched)

	http.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	http.HandleFunc("/scheduler/debug/snapshot", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(sched.Snapshot())
	})

	http.HandleFunc("/scheduler/debug/trace", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if id := r.URL.Query().Get("task_id"); id != "" {
			json.NewEncoder(w).Encode(sched.TraceStore().ForTask(id))
			return
		}
		json.NewEncoder(w).Encode(sched.TraceStore().Snapshot())
	})

	http.HandleFunc("/scheduler/trace/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("websocket upgrade failed: %v", err)
			return
		}
		hub.Register(conn)
	})

	http.Handle("/metrics", promhttp.Handler())

	addr := ":8080"
	if v := os.Getenv("TASKCORE_ADDR"); v != "" {
		addr = v
	}

	srv := &http.Server{Addr: addr}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := sched.Shutdown(shutdownCtx); err != nil {
			log.Printf("scheduler shutdown: %v", err)
		}
		srv.Shutdown(shutdownCtx)
	}()

	log.Printf("taskcore scheduler demo listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}

// seedDemoWorkload submits a small mix of combinators so the debug
// surfaces have something to show immediately after startup.
func seedDemoWorkload(sched *scheduler.Scheduler) {
	for i := 0; i < 3; i++ {
		i := i
		if _, err := scheduler.Fn(sched, taskid.Normal, func() int {
			return i * i
		}); err != nil {
			log.Printf("seed: fn submit failed: %v", err)
		}
	}

	if _, err := scheduler.ForLoop(sched, taskid.Background, 0, 100, func(int64) {}); err != nil {
		log.Printf("seed: for-loop submit failed: %v", err)
	}
}
