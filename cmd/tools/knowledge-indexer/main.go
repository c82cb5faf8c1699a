// cmd/tools/knowledge-indexer/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"advisory-workers/internal/common/config"
	"advisory-workers/internal/common/database"
	"advisory-workers/internal/common/ollama"
)

func main() {
	indexCmd := flag.NewFlagSet("index", flag.ExitOnError)
	indexPath := indexCmd.String("path", "configs/knowledge-base.json", "Path to the knowledge base file")
	configPath := indexCmd.String("config", "", "Config file (defaults to configs/config.yaml)")
	recreate := indexCmd.Bool("recreate", false, "Drop and recreate the index")

	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	validatePath := validateCmd.String("path", "configs/knowledge-base.json", "Path to the knowledge base file")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "index":
		_ = indexCmd.Parse(os.Args[2:])
		n, err := runIndex(*indexPath, *configPath, *recreate)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Indexing failed after %d documents: %v\n", n, err)
			os.Exit(1)
		}
		fmt.Printf("Indexed %d documents.\n", n)

	case "validate":
		_ = validateCmd.Parse(os.Args[2:])
		kb, err := loadKnowledgeBase(*validatePath)
		if err == nil {
			err = validateKnowledgeBase(kb)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Knowledge base validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Knowledge base validation passed. Found %d documents.\n", len(kb.Documents))

	default:
		help()
	}
}

func runIndex(path, configPath string, recreate bool) (int, error) {
	kb, err := loadKnowledgeBase(path)
	if err != nil {
		return 0, err
	}
	if err := validateKnowledgeBase(kb); err != nil {
		return 0, err
	}

	var cfg *config.Config
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return 0, err
	}

	es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	if err != nil {
		return 0, err
	}
	emb := cfg.APIs.Embedding
	embedder := ollama.NewClient(&ollama.Config{
		BaseURL: emb.BaseURL,
		Model:   emb.Model,
		Timeout: config.GetDuration(emb.Timeout),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	return NewIndexer(es, embedder, cfg.Advisory.KnowledgeIndex).Run(ctx, kb, recreate)
}

func help() {
	fmt.Print(`
Usage: knowledge-indexer <command> [flags]

Commands:
  index     Embed the knowledge base and write it to Elasticsearch
  validate  Check the knowledge base file
  help      Show this help message

Examples:
  knowledge-indexer validate -path configs/knowledge-base.json
  knowledge-indexer index -path configs/knowledge-base.json -recreate

Use 'knowledge-indexer <command> -h' for more information about a command.
`+"\n")
}
