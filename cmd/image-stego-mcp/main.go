package main

import (
	"fmt"
	"log"
	"os"

	"github.com/ironsheep/image-stego-mcp/internal/config"
	"github.com/ironsheep/image-stego-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("image-stego-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("image-stego-mcp - MCP server for metadata hidden in image pixels")
			fmt.Println()
			fmt.Println("Usage: image-stego-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Printf("  %s=path.yaml Read defaults from a YAML file (overridden by the variables below)\n", config.EnvConfigFile)
			fmt.Printf("  %s=debug     Enable debug logging\n", config.EnvLogLevel)
			fmt.Printf("  %s=all       Default channel: all, red, green or blue\n", config.EnvChannel)
			fmt.Printf("  %s=0       Default bit plane, 0-7\n", config.EnvBitPlane)
			fmt.Printf("  %s=N         Batch concurrency (default: number of CPUs)\n", config.EnvWorkers)
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
			return
		}
	}

	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if cfg.Debug {
		log.Printf("Image Stego MCP Server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
		log.Printf("Defaults: channel=%s bit_plane=%d workers=%d", cfg.Options.Channel, cfg.Options.Plane, cfg.Workers)
	}

	srv := server.New(cfg)
	if err := srv.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
