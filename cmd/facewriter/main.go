package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"facewriter/internal/config"
	"facewriter/internal/gateway"
	"facewriter/internal/server"

	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:   "facewriter",
		Short: "AI-assisted content authoring workspace",
	}
	configPath string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(generateCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the workspace HTTP API",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		if cfg.AI.APIKey == "" {
			log.Fatalf("AI API key not configured")
		}

		srv, err := server.New(cfg, nil)
		if err != nil {
			log.Fatalf("Failed to initialize server: %v", err)
		}

		log.Printf("Listening on %s", cfg.Server.Addr)
		if err := http.ListenAndServe(cfg.Server.Addr, srv.Routes()); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	},
}

var (
	briefGoal     string
	briefAudience string
	briefType     string
	briefTune     string
	briefKeywords string
	briefLanguage string
	outPath       string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a single article from a brief and print it",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		if cfg.AI.APIKey == "" {
			log.Fatalf("AI API key not configured")
		}
		if briefGoal == "" {
			log.Fatalf("--goal is required")
		}

		ctx := context.Background()
		gw, err := gateway.New(ctx, gateway.Options{
			Provider:   cfg.AI.Provider,
			APIKey:     cfg.AI.APIKey,
			Model:      cfg.AI.Model,
			ImageModel: cfg.AI.ImageModel,
			BaseURL:    cfg.AI.BaseURL,
		})
		if err != nil {
			log.Fatalf("Failed to create gateway: %v", err)
		}

		article, err := gw.GenerateArticle(ctx, gateway.ArticleParams{
			Goal:          briefGoal,
			Audience:      briefAudience,
			ContentType:   briefType,
			NarrativeTune: briefTune,
			Keywords:      briefKeywords,
			Language:      briefLanguage,
		})
		if err != nil {
			log.Fatalf("Generation failed: %v", err)
		}

		output := fmt.Sprintf("# %s\n\n%s\n", article.Title, article.Content)
		if outPath == "" {
			fmt.Print(output)
			return
		}
		if err := os.WriteFile(outPath, []byte(output), 0o644); err != nil {
			log.Fatalf("Failed to write %s: %v", outPath, err)
		}
		fmt.Printf("Article written to %s\n", outPath)
	},
}

func init() {
	generateCmd.Flags().StringVar(&briefGoal, "goal", "", "Primary goal of the article")
	generateCmd.Flags().StringVar(&briefAudience, "audience", "", "Target audience")
	generateCmd.Flags().StringVar(&briefType, "type", "Blog Post", "Content type")
	generateCmd.Flags().StringVar(&briefTune, "tune", "Professional", "Narrative tune")
	generateCmd.Flags().StringVar(&briefKeywords, "keywords", "", "Keywords to include")
	generateCmd.Flags().StringVar(&briefLanguage, "language", "English", "Output language")
	generateCmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the article to a file instead of stdout")
}
