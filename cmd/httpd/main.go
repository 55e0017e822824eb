package main

import (
	"os"

	"github.com/dj0804/GrievanceInsight/internal/bootstrap"
)

func main() {
	os.Exit(bootstrap.Start())
}
