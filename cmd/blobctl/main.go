package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "blobctl",
		Short: "Operator CLI for inspecting and managing blob storage backends",
	}

	rootCmd.AddCommand(UploadCmd())
	rootCmd.AddCommand(ServeCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
