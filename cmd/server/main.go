package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	godotenv.Load()

	var cfgFile string
	root := &cobra.Command{
		Use:          "yt2mp3",
		Short:        "HTTP service converting video URLs to MP3 artifacts",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cfgFile)
		},
	}
	root.Flags().StringVar(&cfgFile, "config", "", "path to an optional config.yaml")

	if err := root.Execute(); err != nil {
		log.Fatalf("yt2mp3: %v", err)
	}
}
