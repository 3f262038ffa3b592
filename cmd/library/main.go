package main

import (
	stdLog "log"
	"os"

	"github.com/joho/godotenv"
)

//go:generate swag init -g cmd/library/main.go -d ../../ -o ../../swagger --outputTypes go,json,yaml

// @title Perpustakaan API
// @version 1.0
// @description Library catalog and borrowing service.
// @host localhost:8060
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		stdLog.Fatal("load envs from .env ", err)
	}
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
