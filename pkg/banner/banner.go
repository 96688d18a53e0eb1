package banner

import "fmt"

const banner = `
 █████╗ ██╗███╗   ██╗ ██████╗
██╔══██╗██║████╗  ██║██╔═══██╗
███████║██║██╔██╗ ██║██║   ██║
██╔══██║██║██║╚██╗██║██║   ██║
██║  ██║██║██║ ╚████║╚██████╔╝
╚═╝  ╚═╝╚═╝╚═╝  ╚═══╝ ╚═════╝
`

// Print writes the startup banner with the effective runtime info.
func Print(addr, frontend, source, version string) {
	fmt.Print(banner)
	fmt.Println("== Config =====================================================")
	fmt.Printf("Listen:    %s\n", addr)
	if frontend == "" {
		frontend = "nethttp"
	}
	fmt.Printf("Frontend:  %s\n", frontend)
	if version != "" {
		fmt.Printf("Version:   %s\n", version)
	}
	if source != "" {
		fmt.Printf("Config source: %s\n", source)
	}
	fmt.Println("\n== Ops ========================================================")
	fmt.Println("GET /healthz  - liveness probe")
	fmt.Println("GET /readyz   - readiness probe")
	fmt.Println("GET /metrics  - prometheus metrics")
	fmt.Println("GET /docs/    - API docs")
	fmt.Println()
}
