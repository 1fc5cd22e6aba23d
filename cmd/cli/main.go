package main

import (
	"fmt"
	"os"

	"github.com/crucial707/pr-notify/cmd/cli/cache"
	"github.com/crucial707/pr-notify/cmd/cli/cronexpr"
	"github.com/crucial707/pr-notify/cmd/cli/root"
	"github.com/crucial707/pr-notify/cmd/cli/schedules"
)

func main() {
	rootCmd := root.GetRoot()
	schedules.Init(rootCmd)
	cache.Init(rootCmd)
	cronexpr.Init(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}
