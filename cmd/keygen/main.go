// Command keygen re-derives the organizer token for a group code. Useful
// when an organizer loses the token issued at group creation.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/elfworks/santa-api-go/pkg/auth"
)

func main() {
	// Load .env from project root
	_ = godotenv.Load("../.env")
	_ = godotenv.Load(".env")

	if len(os.Args) < 2 {
		fmt.Println("Usage: keygen <group-code>")
		os.Exit(1)
	}

	if os.Getenv("LINK_SECRET") == "" {
		fmt.Println("Error: LINK_SECRET not found in environment")
		os.Exit(1)
	}

	code := os.Args[1]
	token := auth.OrganizerToken(code)
	fmt.Printf("Organizer token for %s:\n%s\n", code, token)
}
