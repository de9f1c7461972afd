package main

import (
	"context"
	"log"
	"os"

	"kubesim/cmd"
	"kubesim/pkg/logging"
	"kubesim/redis"
	"kubesim/server"
)

func main() {
	logging.Init(logLevelFromEnv(), os.Stderr)

	if len(os.Args) > 2 && os.Args[1] == "-mode" {
		switch os.Args[2] {
		case "server":
			runServer()
		case "cli":
			os.Args = append(os.Args[:1], os.Args[3:]...)
			cmd.Execute()
		default:
			log.Fatalf("invalid mode %q, must be 'server' or 'cli'", os.Args[2])
		}
		return
	}

	cmd.Execute()
}

func runServer() {
	mirror, err := redis.FromEnv(context.Background())
	if err != nil {
		log.Fatalf("redis mirror: %v", err)
	}
	defer mirror.Close()

	addr := os.Getenv("KUBESIM_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	if err := server.NewAPIServer(addr, mirror).Start(); err != nil {
		log.Fatalf("api server: %v", err)
	}
}

func logLevelFromEnv() logging.LogLevel {
	switch os.Getenv("KUBESIM_LOG") {
	case "debug":
		return logging.LevelDebug
	case "warn":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}
