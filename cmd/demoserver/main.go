// Command demoserver runs the self-contained analyzer backend used for local
// development and demos. It serves the analyzer endpoints the gateway and
// CLI talk to.
// Usage: go run ./cmd/demoserver [addr]
// Default addr: :9999
package main

import (
	"log"
	"os"

	"github.com/peternemser-ui/font-scanner-sub013/internal/demoserver"
)

func main() {
	cfg := demoserver.DefaultConfig()

	// Optional: custom listen address from the command line.
	if len(os.Args) > 1 {
		cfg.Addr = os.Args[1]
	}

	srv, err := demoserver.NewServer(cfg)
	if err != nil {
		log.Fatalf("Starting demo server: %v", err)
	}
	defer srv.Close()

	log.Printf("Demo analyzer backend listening on %s", cfg.Addr)
	log.Printf("Endpoints: /api/broken-links /api/gdpr /api/local-seo /api/mobile /api/fonts")
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
