// Command issue-token prints an operator token for the control panel, or a
// fresh signing secret with -new-secret.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"social-listening-gateway/internal/utils"

	"github.com/joho/godotenv"
)

func main() {
	operator := flag.String("operator", "", "operator name embedded in the token")
	ttl := flag.Duration("ttl", 12*time.Hour, "token lifetime")
	newSecret := flag.Bool("new-secret", false, "print a new PANEL_SIGNING_SECRET and exit")
	flag.Parse()

	if *newSecret {
		key, err := utils.GenerateHMACKey()
		if err != nil {
			fmt.Fprintln(os.Stderr, "generate secret:", err)
			os.Exit(1)
		}
		fmt.Println(key)
		return
	}

	_ = godotenv.Load()
	secret := os.Getenv("PANEL_SIGNING_SECRET")
	if secret == "" {
		fmt.Fprintln(os.Stderr, "PANEL_SIGNING_SECRET is not set")
		os.Exit(1)
	}

	token, err := utils.GenerateJWTToken(*operator, []byte(secret), *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, "issue token:", err)
		os.Exit(2)
	}
	fmt.Println(token)
}
