// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"

	"github.com/MKhiriev/go-secure-vault/internal/client"
	"github.com/MKhiriev/go-secure-vault/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := client.NewRootCommand(models.NewAppBuildInfo(buildVersion, buildDate, buildCommit), client.Options{})
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("✗"), client.ErrorMessage(err))
		stop()
		os.Exit(1)
	}
}
